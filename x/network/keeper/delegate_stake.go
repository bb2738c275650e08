package keeper

import (
	"context"
	"math/big"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

// DelegateSharesBurn is the share amount locked in a pool on its first
// deposit so the share price cannot be inflated by a lone depositor.
const DelegateSharesBurn uint64 = 1000

var one = sdkmath.OneUint()

// ConvertToShares returns balance*(totalShares+1)/(totalBalance+1).
func ConvertToShares(balance, totalShares, totalBalance sdkmath.Uint) sdkmath.Uint {
	return mulDiv(balance, totalShares.Add(one), totalBalance.Add(one))
}

// ConvertToBalance returns shares*(totalBalance+1)/(totalShares+1).
func ConvertToBalance(shares, totalShares, totalBalance sdkmath.Uint) sdkmath.Uint {
	return mulDiv(shares, totalBalance.Add(one), totalShares.Add(one))
}

func mulDiv(a, b, c sdkmath.Uint) sdkmath.Uint {
	if c.IsZero() {
		return sdkmath.ZeroUint()
	}
	product := new(big.Int).Mul(a.BigInt(), b.BigInt())
	return sdkmath.NewUintFromBigInt(product.Quo(product, c.BigInt()))
}

// GetDelegatePool returns the share and balance totals of a subnet's pool.
func (k Keeper) GetDelegatePool(ctx context.Context, subnetID uint32) types.DelegatePool {
	store := k.getStore(ctx)
	return types.DelegatePool{
		SubnetID:     subnetID,
		TotalShares:  getUint(store, GetTotalSubnetDelegateSharesKey(subnetID)),
		TotalBalance: getUint(store, GetTotalSubnetDelegateBalanceKey(subnetID)),
	}
}

// GetDelegateShares returns the shares account holds in subnet's pool.
func (k Keeper) GetDelegateShares(ctx context.Context, account sdk.AccAddress, subnetID uint32) sdkmath.Uint {
	return getUint(k.getStore(ctx), GetDelegateSharesKey(subnetID, account))
}

// GetDelegateBalance values account's shares at the current pool price.
func (k Keeper) GetDelegateBalance(ctx context.Context, account sdk.AccAddress, subnetID uint32) sdkmath.Uint {
	pool := k.GetDelegatePool(ctx, subnetID)
	return ConvertToBalance(k.GetDelegateShares(ctx, account, subnetID), pool.TotalShares, pool.TotalBalance)
}

// GetTotalDelegateStake returns the network-wide delegate pool balance.
func (k Keeper) GetTotalDelegateStake(ctx context.Context) sdkmath.Uint {
	return getUint(k.getStore(ctx), TotalDelegateStakeKey)
}

// AddDelegateStake deposits amount into subnet's delegate pool and returns
// the shares minted to account.
func (k Keeper) AddDelegateStake(ctx context.Context, account sdk.AccAddress, subnetID uint32, amount sdkmath.Uint) (sdkmath.Uint, error) {
	if _, found := k.GetSubnet(ctx, subnetID); !found {
		return sdkmath.ZeroUint(), types.ErrSubnetNotFound.Wrapf("subnet %d", subnetID)
	}
	if amount.IsNil() || amount.IsZero() {
		return sdkmath.ZeroUint(), types.ErrInvalidAmount.Wrap("delegate amount must be positive")
	}
	if err := types.CheckBalance(amount); err != nil {
		return sdkmath.ZeroUint(), err
	}
	if err := k.checkStakeRateLimit(ctx, account); err != nil {
		return sdkmath.ZeroUint(), err
	}
	if !k.ledger.Withdrawable(ctx, account, amount) {
		return sdkmath.ZeroUint(), types.ErrNotEnoughBalanceToStake.Wrapf("account %s cannot withdraw %s", account, amount)
	}

	pool := k.GetDelegatePool(ctx, subnetID)
	if err := types.CheckBalance(pool.TotalBalance.Add(amount)); err != nil {
		return sdkmath.ZeroUint(), err
	}

	var poolShares, minted sdkmath.Uint
	if pool.TotalShares.IsZero() {
		poolShares = amount
		burn := sdkmath.NewUint(DelegateSharesBurn)
		if poolShares.LTE(burn) {
			return sdkmath.ZeroUint(), types.ErrCouldNotConvertToShares.Wrapf(
				"first deposit %s must exceed %d burned shares", amount, DelegateSharesBurn,
			)
		}
		minted = poolShares.Sub(burn)
	} else {
		poolShares = ConvertToShares(amount, pool.TotalShares, pool.TotalBalance)
		minted = poolShares
	}
	if minted.IsZero() {
		return sdkmath.ZeroUint(), types.ErrCouldNotConvertToShares.Wrapf("deposit %s converts to zero shares", amount)
	}

	if !k.ledger.Debit(ctx, account, amount) {
		return sdkmath.ZeroUint(), types.ErrBalanceWithdrawalFailed.Wrapf("debit of %s from %s failed", amount, account)
	}

	store := k.getStore(ctx)
	sharesKey := GetDelegateSharesKey(subnetID, account)
	setUint(store, sharesKey, getUint(store, sharesKey).Add(minted))
	setPool(store, subnetID, pool.TotalShares.Add(poolShares), pool.TotalBalance.Add(amount))
	setUint(store, TotalDelegateStakeKey, getUint(store, TotalDelegateStakeKey).Add(amount))
	k.markStakeUpdate(ctx, account)

	recordMetric(ctx, func() { k.metrics.StakeAdded.WithLabelValues("delegate").Add(uintToFloat(amount)) })
	recordMetric(ctx, func() { k.metrics.DelegateShares.WithLabelValues("minted").Add(uintToFloat(minted)) })
	k.emitEvent(ctx, types.EventTypeNetworkDelegateStakeAdded,
		sdk.NewAttribute(types.AttributeKeyAccount, account.String()),
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
		sdk.NewAttribute(types.AttributeKeyShares, minted.String()),
	)
	return minted, nil
}

// RemoveDelegateStake redeems shares from subnet's pool and credits the
// resulting balance to account.
func (k Keeper) RemoveDelegateStake(ctx context.Context, account sdk.AccAddress, subnetID uint32, shares sdkmath.Uint) (sdkmath.Uint, error) {
	if shares.IsNil() || shares.IsZero() {
		return sdkmath.ZeroUint(), types.ErrInvalidAmount.Wrap("shares must be positive")
	}
	held := k.GetDelegateShares(ctx, account, subnetID)
	if held.LT(shares) {
		return sdkmath.ZeroUint(), types.ErrNotEnoughDelegateShares.Wrapf("holding %s shares, requested %s", held, shares)
	}
	if err := k.checkStakeRateLimit(ctx, account); err != nil {
		return sdkmath.ZeroUint(), err
	}

	pool := k.GetDelegatePool(ctx, subnetID)
	balance := types.MinUint(ConvertToBalance(shares, pool.TotalShares, pool.TotalBalance), pool.TotalBalance)
	if balance.IsZero() {
		return sdkmath.ZeroUint(), types.ErrCouldNotConvertToBalance.Wrapf("%s shares convert to zero balance", shares)
	}
	if err := types.CheckBalance(balance); err != nil {
		return sdkmath.ZeroUint(), err
	}

	store := k.getStore(ctx)
	setUint(store, GetDelegateSharesKey(subnetID, account), held.Sub(shares))
	setPool(store, subnetID, types.SaturatingSub(pool.TotalShares, shares), pool.TotalBalance.Sub(balance))
	setUint(store, TotalDelegateStakeKey, types.SaturatingSub(getUint(store, TotalDelegateStakeKey), balance))
	k.markStakeUpdate(ctx, account)
	k.ledger.Credit(ctx, account, balance)

	recordMetric(ctx, func() { k.metrics.StakeRemoved.WithLabelValues("delegate").Add(uintToFloat(balance)) })
	recordMetric(ctx, func() { k.metrics.DelegateShares.WithLabelValues("burned").Add(uintToFloat(shares)) })
	k.emitEvent(ctx, types.EventTypeNetworkDelegateStakeRemoved,
		sdk.NewAttribute(types.AttributeKeyAccount, account.String()),
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyAmount, balance.String()),
		sdk.NewAttribute(types.AttributeKeyShares, shares.String()),
	)
	return balance, nil
}

// IncreaseDelegatePool adds emissions to a pool without minting shares,
// raising the share price. Pools without shares are left untouched and the
// call reports false.
func (k Keeper) IncreaseDelegatePool(ctx context.Context, subnetID uint32, amount sdkmath.Uint) bool {
	if amount.IsZero() {
		return false
	}
	pool := k.GetDelegatePool(ctx, subnetID)
	if pool.TotalShares.IsZero() {
		return false
	}
	store := k.getStore(ctx)
	newBalance := pool.TotalBalance.Add(amount)
	if types.CheckBalance(newBalance) != nil {
		return false
	}
	setPool(store, subnetID, pool.TotalShares, newBalance)
	setUint(store, TotalDelegateStakeKey, getUint(store, TotalDelegateStakeKey).Add(amount))
	return true
}

// setPool writes the share and balance totals of a pool together.
func setPool(store storetypes.KVStore, subnetID uint32, totalShares, totalBalance sdkmath.Uint) {
	setUint(store, GetTotalSubnetDelegateSharesKey(subnetID), totalShares)
	setUint(store, GetTotalSubnetDelegateBalanceKey(subnetID), totalBalance)
}

// IterateDelegateShares walks every (subnet, account) share entry.
func (k Keeper) IterateDelegateShares(ctx context.Context, cb func(subnetID uint32, account sdk.AccAddress, shares sdkmath.Uint) (stop bool)) {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, DelegateSharesPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()[len(DelegateSharesPrefix):]
		if len(key) < 5 {
			continue
		}
		account, _ := parseLengthPrefixed(key[4:])
		shares, err := sdkmath.ParseUint(string(iterator.Value()))
		if err != nil {
			panic(err)
		}
		if cb(parseSubnetID(key), account, shares) {
			break
		}
	}
}

// IterateDelegatePools walks every subnet pool with shares.
func (k Keeper) IterateDelegatePools(ctx context.Context, cb func(pool types.DelegatePool) (stop bool)) {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, TotalSubnetDelegateSharesPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		subnetID := parseSubnetID(iterator.Key()[len(TotalSubnetDelegateSharesPrefix):])
		if cb(k.GetDelegatePool(ctx, subnetID)) {
			break
		}
	}
}
