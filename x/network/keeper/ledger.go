package keeper

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

var _ types.Ledger = BankLedger{}

// BankLedger backs the network ledger with bank balances in a single denom.
// Staked and bonded funds sit in the module account. Emissions are credited
// to stake without moving coins, so the module mints any shortfall when
// paying out.
type BankLedger struct {
	bank    types.BankKeeper
	account types.AccountKeeper
	denom   string
}

// NewBankLedger returns a ledger over bank for denom.
func NewBankLedger(bank types.BankKeeper, account types.AccountKeeper, denom string) BankLedger {
	return BankLedger{bank: bank, account: account, denom: denom}
}

func (l BankLedger) coins(amount sdkmath.Uint) sdk.Coins {
	return sdk.NewCoins(sdk.NewCoin(l.denom, sdkmath.NewIntFromBigInt(amount.BigInt())))
}

// Withdrawable reports whether addr can spend amount right now.
func (l BankLedger) Withdrawable(ctx context.Context, addr sdk.AccAddress, amount sdkmath.Uint) bool {
	spendable := l.bank.SpendableCoins(ctx, addr).AmountOf(l.denom)
	return spendable.GTE(sdkmath.NewIntFromBigInt(amount.BigInt()))
}

// Debit moves amount from addr into the module account.
func (l BankLedger) Debit(ctx context.Context, addr sdk.AccAddress, amount sdkmath.Uint) bool {
	if amount.IsZero() {
		return true
	}
	if !l.Withdrawable(ctx, addr, amount) {
		return false
	}
	return l.bank.SendCoinsFromAccountToModule(ctx, addr, types.ModuleName, l.coins(amount)) == nil
}

// Credit pays amount from the module account to addr.
func (l BankLedger) Credit(ctx context.Context, addr sdk.AccAddress, amount sdkmath.Uint) {
	if amount.IsZero() {
		return
	}
	held := l.bank.GetBalance(ctx, l.account.GetModuleAddress(types.ModuleName), l.denom).Amount
	need := sdkmath.NewIntFromBigInt(amount.BigInt())
	if held.LT(need) {
		if err := l.bank.MintCoins(ctx, types.ModuleName, sdk.NewCoins(sdk.NewCoin(l.denom, need.Sub(held)))); err != nil {
			panic(fmt.Errorf("network ledger: mint %s%s: %w", need.Sub(held), l.denom, err))
		}
	}
	if err := l.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, addr, l.coins(amount)); err != nil {
		panic(fmt.Errorf("network ledger: credit %s%s to %s: %w", amount, l.denom, addr, err))
	}
}

// Balance returns addr's balance in the ledger denom.
func (l BankLedger) Balance(ctx context.Context, addr sdk.AccAddress) sdkmath.Uint {
	amount := l.bank.GetBalance(ctx, addr, l.denom).Amount
	if amount.IsNegative() {
		return sdkmath.ZeroUint()
	}
	return sdkmath.NewUintFromBigInt(amount.BigInt())
}
