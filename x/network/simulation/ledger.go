package simulation

import (
	"context"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

// LedgerStoreKey names the store StoreLedger keeps balances in.
const LedgerStoreKey = "sim_ledger"

// StoreLedger is a types.Ledger keeping balances in a KV store. Mounted in the
// same multistore as the network store, cache contexts cover its writes too.
type StoreLedger struct {
	key storetypes.StoreKey
}

var _ types.Ledger = StoreLedger{}

// NewStoreLedger returns a ledger over the store at key.
func NewStoreLedger(key storetypes.StoreKey) StoreLedger {
	return StoreLedger{key: key}
}

func (l StoreLedger) store(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(l.key)
}

// Balance returns the balance of addr.
func (l StoreLedger) Balance(ctx context.Context, addr sdk.AccAddress) sdkmath.Uint {
	bz := l.store(ctx).Get(addr)
	if bz == nil {
		return sdkmath.ZeroUint()
	}
	return sdkmath.NewUintFromString(string(bz))
}

func (l StoreLedger) set(ctx context.Context, addr sdk.AccAddress, v sdkmath.Uint) {
	l.store(ctx).Set(addr, []byte(v.String()))
}

// Withdrawable reports whether addr holds at least amount.
func (l StoreLedger) Withdrawable(ctx context.Context, addr sdk.AccAddress, amount sdkmath.Uint) bool {
	return l.Balance(ctx, addr).GTE(amount)
}

// Debit removes amount from addr when the balance covers it.
func (l StoreLedger) Debit(ctx context.Context, addr sdk.AccAddress, amount sdkmath.Uint) bool {
	balance := l.Balance(ctx, addr)
	if balance.LT(amount) {
		return false
	}
	l.set(ctx, addr, balance.Sub(amount))
	return true
}

// Credit adds amount to addr.
func (l StoreLedger) Credit(ctx context.Context, addr sdk.AccAddress, amount sdkmath.Uint) {
	l.set(ctx, addr, l.Balance(ctx, addr).Add(amount))
}

// Fund credits amount to addr.
func (l StoreLedger) Fund(ctx context.Context, addr sdk.AccAddress, amount uint64) {
	l.Credit(ctx, addr, sdkmath.NewUint(amount))
}
