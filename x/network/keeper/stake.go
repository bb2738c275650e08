package keeper

import (
	"context"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

// GetAccountSubnetStake returns the direct stake of account in subnet.
func (k Keeper) GetAccountSubnetStake(ctx context.Context, account sdk.AccAddress, subnetID uint32) sdkmath.Uint {
	return getUint(k.getStore(ctx), GetAccountSubnetStakeKey(account, subnetID))
}

// GetTotalAccountStake returns the direct stake of account across all subnets.
func (k Keeper) GetTotalAccountStake(ctx context.Context, account sdk.AccAddress) sdkmath.Uint {
	return getUint(k.getStore(ctx), GetTotalAccountStakeKey(account))
}

// GetTotalSubnetStake returns the direct stake held in subnet.
func (k Keeper) GetTotalSubnetStake(ctx context.Context, subnetID uint32) sdkmath.Uint {
	return getUint(k.getStore(ctx), GetTotalSubnetStakeKey(subnetID))
}

// GetTotalStake returns the network-wide direct stake.
func (k Keeper) GetTotalStake(ctx context.Context) sdkmath.Uint {
	return getUint(k.getStore(ctx), TotalStakeKey)
}

// AddStake moves amount from the account's ledger balance into its stake in
// subnet. The account must own a node in the subnet.
func (k Keeper) AddStake(ctx context.Context, account sdk.AccAddress, subnetID uint32, amount sdkmath.Uint) error {
	if _, found := k.GetSubnetNode(ctx, subnetID, account); !found {
		return types.ErrSubnetNodeNotFound.Wrapf("account %s has no node in subnet %d", account, subnetID)
	}
	if err := k.validateAddStake(ctx, account, subnetID, amount); err != nil {
		return err
	}
	return k.applyAddStake(ctx, account, subnetID, amount)
}

// validateAddStake runs every AddStake precondition without writing.
func (k Keeper) validateAddStake(ctx context.Context, account sdk.AccAddress, subnetID uint32, amount sdkmath.Uint) error {
	if amount.IsNil() || amount.IsZero() {
		return types.ErrInvalidAmount.Wrap("stake amount must be positive")
	}
	if err := types.CheckBalance(amount); err != nil {
		return err
	}
	if err := k.checkStakeRateLimit(ctx, account); err != nil {
		return err
	}
	if !k.ledger.Withdrawable(ctx, account, amount) {
		return types.ErrNotEnoughBalanceToStake.Wrapf("account %s cannot withdraw %s", account, amount)
	}

	params := k.GetParams(ctx)
	resulting := k.GetAccountSubnetStake(ctx, account, subnetID).Add(amount)
	if resulting.LT(params.MinStakeBalance) {
		return types.ErrMinStakeNotReached.Wrapf("resulting stake %s below minimum %s", resulting, params.MinStakeBalance)
	}
	if resulting.GT(params.MaxStakeBalance) {
		return types.ErrMaxStakeReached.Wrapf("resulting stake %s above maximum %s", resulting, params.MaxStakeBalance)
	}
	return nil
}

func (k Keeper) applyAddStake(ctx context.Context, account sdk.AccAddress, subnetID uint32, amount sdkmath.Uint) error {
	if !k.ledger.Debit(ctx, account, amount) {
		return types.ErrBalanceWithdrawalFailed.Wrapf("debit of %s from %s failed", amount, account)
	}

	store := k.getStore(ctx)
	increaseStake(store, account, subnetID, amount)
	k.markStakeUpdate(ctx, account)

	recordMetric(ctx, func() { k.metrics.StakeAdded.WithLabelValues("direct").Add(uintToFloat(amount)) })
	k.emitEvent(ctx, types.EventTypeNetworkStakeAdded,
		sdk.NewAttribute(types.AttributeKeyAccount, account.String()),
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
	)
	return nil
}

// RemoveStake returns amount of the account's stake in subnet to its ledger
// balance. While the account still owns a node there, the remaining stake may
// not drop below MinStakeBalance.
func (k Keeper) RemoveStake(ctx context.Context, account sdk.AccAddress, subnetID uint32, amount sdkmath.Uint) error {
	if amount.IsNil() || amount.IsZero() {
		return types.ErrInvalidAmount.Wrap("stake amount must be positive")
	}
	if err := types.CheckBalance(amount); err != nil {
		return err
	}

	current := k.GetAccountSubnetStake(ctx, account, subnetID)
	if current.LT(amount) {
		return types.ErrNotEnoughStakeToWithdraw.Wrapf("stake %s below requested %s", current, amount)
	}
	remaining := current.Sub(amount)
	if _, hasNode := k.GetSubnetNode(ctx, subnetID, account); hasNode {
		params := k.GetParams(ctx)
		if remaining.LT(params.MinStakeBalance) {
			return types.ErrMinStakeNotReached.Wrapf(
				"remaining stake %s below minimum %s while node is registered", remaining, params.MinStakeBalance,
			)
		}
	}
	if err := k.checkStakeRateLimit(ctx, account); err != nil {
		return err
	}

	store := k.getStore(ctx)
	decreaseStake(store, account, subnetID, amount)
	k.markStakeUpdate(ctx, account)
	k.ledger.Credit(ctx, account, amount)

	recordMetric(ctx, func() { k.metrics.StakeRemoved.WithLabelValues("direct").Add(uintToFloat(amount)) })
	k.emitEvent(ctx, types.EventTypeNetworkStakeRemoved,
		sdk.NewAttribute(types.AttributeKeyAccount, account.String()),
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
	)
	return nil
}

// IncreaseAccountStake credits emissions straight into stake. It bypasses the
// rate limit and moves nothing through the ledger.
func (k Keeper) IncreaseAccountStake(ctx context.Context, account sdk.AccAddress, subnetID uint32, amount sdkmath.Uint) error {
	if amount.IsZero() {
		return nil
	}
	resulting := k.GetTotalStake(ctx).Add(amount)
	if err := types.CheckBalance(resulting); err != nil {
		return err
	}
	increaseStake(k.getStore(ctx), account, subnetID, amount)
	return nil
}

// decreaseAccountStake burns up to amount of stake and returns what was burned.
func (k Keeper) decreaseAccountStake(ctx context.Context, account sdk.AccAddress, subnetID uint32, amount sdkmath.Uint) sdkmath.Uint {
	current := k.GetAccountSubnetStake(ctx, account, subnetID)
	burned := types.MinUint(current, amount)
	if burned.IsZero() {
		return burned
	}
	decreaseStake(k.getStore(ctx), account, subnetID, burned)
	return burned
}

// increaseStake and decreaseStake are the only writers of the four stake
// aggregates; every entry change goes through them.
func increaseStake(store storetypes.KVStore, account sdk.AccAddress, subnetID uint32, amount sdkmath.Uint) {
	for _, key := range [][]byte{
		GetAccountSubnetStakeKey(account, subnetID),
		GetTotalAccountStakeKey(account),
		GetTotalSubnetStakeKey(subnetID),
		TotalStakeKey,
	} {
		setUint(store, key, getUint(store, key).Add(amount))
	}
	store.Set(GetSubnetAccountKey(subnetID, account), []byte{1})
}

func decreaseStake(store storetypes.KVStore, account sdk.AccAddress, subnetID uint32, amount sdkmath.Uint) {
	for _, key := range [][]byte{
		GetAccountSubnetStakeKey(account, subnetID),
		GetTotalAccountStakeKey(account),
		GetTotalSubnetStakeKey(subnetID),
		TotalStakeKey,
	} {
		setUint(store, key, types.SaturatingSub(getUint(store, key), amount))
	}
	if getUint(store, GetAccountSubnetStakeKey(account, subnetID)).IsZero() {
		store.Delete(GetSubnetAccountKey(subnetID, account))
	}
}

func (k Keeper) checkStakeRateLimit(ctx context.Context, account sdk.AccAddress) error {
	params := k.GetParams(ctx)
	if params.StakeRateLimit == 0 {
		return nil
	}
	last, ok := getInt64(k.getStore(ctx), GetStakeUpdateBlockKey(account))
	if !ok {
		return nil
	}
	height := sdk.UnwrapSDKContext(ctx).BlockHeight()
	if height-last < params.StakeRateLimit {
		return types.ErrStakeRateLimitExceeded.Wrapf(
			"last stake change at block %d, next allowed at %d", last, last+params.StakeRateLimit,
		)
	}
	return nil
}

func (k Keeper) markStakeUpdate(ctx context.Context, account sdk.AccAddress) {
	setInt64(k.getStore(ctx), GetStakeUpdateBlockKey(account), sdk.UnwrapSDKContext(ctx).BlockHeight())
}

// GetSubnetStakers returns every account with direct stake in subnet, in key order.
func (k Keeper) GetSubnetStakers(ctx context.Context, subnetID uint32) []sdk.AccAddress {
	store := k.getStore(ctx)
	prefix := GetSubnetAccountsPrefix(subnetID)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var accounts []sdk.AccAddress
	for ; iterator.Valid(); iterator.Next() {
		account, _ := parseLengthPrefixed(iterator.Key()[len(prefix):])
		if account != nil {
			accounts = append(accounts, account)
		}
	}
	return accounts
}

// IterateAccountStakes walks every (account, subnet) direct stake entry.
func (k Keeper) IterateAccountStakes(ctx context.Context, cb func(account sdk.AccAddress, subnetID uint32, amount sdkmath.Uint) (stop bool)) {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, AccountSubnetStakePrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		account, rest := parseLengthPrefixed(iterator.Key()[len(AccountSubnetStakePrefix):])
		if account == nil || len(rest) != 4 {
			continue
		}
		amount, err := sdkmath.ParseUint(string(iterator.Value()))
		if err != nil {
			panic(err)
		}
		if cb(account, parseSubnetID(rest), amount) {
			break
		}
	}
}
