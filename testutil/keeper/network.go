package keeper

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/codec/address"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/tensornet/x/network/keeper"
	"github.com/paw-chain/tensornet/x/network/simulation"
	"github.com/paw-chain/tensornet/x/network/types"
)

// LedgerStoreKey is the store the test ledger keeps balances in.
const LedgerStoreKey = "test_ledger"

// BondDenom is the denom the bank-backed test keeper stakes with.
const BondDenom = "utensor"

// StoreLedger is the store-backed ledger the test keeper runs over. Fund is
// the test faucet.
type StoreLedger = simulation.StoreLedger

// HashRandomness derives seeds from the subject alone, so selection is
// deterministic across runs and independent of block headers.
type HashRandomness struct{}

// Random returns sha256(subject).
func (HashRandomness) Random(_ context.Context, subject []byte) [32]byte {
	return sha256.Sum256(subject)
}

// NetworkKeeper creates a test keeper for the network module over a
// store-backed ledger.
func NetworkKeeper(t testing.TB) (*keeper.Keeper, sdk.Context, StoreLedger) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	ledgerKey := storetypes.NewKVStoreKey(LedgerStoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(ledgerKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	ledger := simulation.NewStoreLedger(ledgerKey)
	authority := authtypes.NewModuleAddress(govtypes.ModuleName)
	k := keeper.NewKeeper(types.ModuleCdc, storeKey, ledger, HashRandomness{}, authority.String())

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Height: 1, ChainID: "tensornet-test-1"}, false, log.NewNopLogger())
	return k, ctx, ledger
}

// NetworkKeeperWithBank creates a test keeper whose ledger is the bank
// module, escrowing stake in the network module account.
func NetworkKeeperWithBank(t testing.TB) (*keeper.Keeper, sdk.Context, bankkeeper.BaseKeeper) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	authStoreKey := storetypes.NewKVStoreKey(authtypes.StoreKey)
	bankStoreKey := storetypes.NewKVStoreKey(banktypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(authStoreKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(bankStoreKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	registry := codectypes.NewInterfaceRegistry()
	authtypes.RegisterInterfaces(registry)
	banktypes.RegisterInterfaces(registry)
	cdc := codec.NewProtoCodec(registry)
	authority := authtypes.NewModuleAddress(govtypes.ModuleName)

	maccPerms := map[string][]string{
		types.ModuleName: {authtypes.Minter},
	}
	accountKeeper := authkeeper.NewAccountKeeper(
		cdc,
		runtime.NewKVStoreService(authStoreKey),
		authtypes.ProtoBaseAccount,
		maccPerms,
		address.NewBech32Codec(sdk.GetConfig().GetBech32AccountAddrPrefix()),
		sdk.GetConfig().GetBech32AccountAddrPrefix(),
		authority.String(),
	)
	bankKeeper := bankkeeper.NewBaseKeeper(
		cdc,
		runtime.NewKVStoreService(bankStoreKey),
		accountKeeper,
		map[string]bool{},
		authority.String(),
		log.NewNopLogger(),
	)

	ledger := keeper.NewBankLedger(bankKeeper, accountKeeper, BondDenom)
	k := keeper.NewKeeper(types.ModuleCdc, storeKey, ledger, HashRandomness{}, authority.String())

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Height: 1, ChainID: "tensornet-test-1"}, false, log.NewNopLogger())
	return k, ctx, bankKeeper
}

// FundAccount mints amount of BondDenom to addr through the network module.
func FundAccount(t testing.TB, ctx sdk.Context, bank bankkeeper.BaseKeeper, addr sdk.AccAddress, amount int64) {
	coins := sdk.NewCoins(sdk.NewInt64Coin(BondDenom, amount))
	require.NoError(t, bank.MintCoins(ctx, types.ModuleName, coins))
	require.NoError(t, bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, addr, coins))
}

// TestAddr returns a deterministic 20-byte account address.
func TestAddr(i int) sdk.AccAddress {
	bz := make([]byte, 20)
	copy(bz, "tensornet-test")
	binary.BigEndian.PutUint32(bz[16:], uint32(i)) // #nosec G115 -- small test indices
	return sdk.AccAddress(bz)
}

// TestPeerID returns a deterministic sha2-256 multihash peer id.
func TestPeerID(i int) string {
	digest := sha256.Sum256([]byte(fmt.Sprintf("peer-%d", i)))
	return base58.Encode(append([]byte{0x12, 0x20}, digest[:]...))
}
