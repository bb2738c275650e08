package types

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Ledger is the external balance store. Debit is all-or-nothing: a false
// return leaves the balance untouched.
type Ledger interface {
	Withdrawable(ctx context.Context, addr sdk.AccAddress, amount sdkmath.Uint) bool
	Debit(ctx context.Context, addr sdk.AccAddress, amount sdkmath.Uint) bool
	Credit(ctx context.Context, addr sdk.AccAddress, amount sdkmath.Uint)
	Balance(ctx context.Context, addr sdk.AccAddress) sdkmath.Uint
}

// RandomnessSource yields a seed bound to the current block for the given subject.
type RandomnessSource interface {
	Random(ctx context.Context, subject []byte) [32]byte
}

// BankKeeper defines the expected bank keeper used by the ledger adapter
type BankKeeper interface {
	SpendableCoins(ctx context.Context, addr sdk.AccAddress) sdk.Coins
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
}

// AccountKeeper defines the expected account keeper
type AccountKeeper interface {
	GetModuleAddress(moduleName string) sdk.AccAddress
}
