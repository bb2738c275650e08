// Package simulation drives the network module through whole epochs on an
// in-memory store, for operators tuning parameters and for tests.
package simulation

import (
	"crypto/sha256"
	"encoding/binary"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	"github.com/paw-chain/tensornet/x/network/keeper"
	"github.com/paw-chain/tensornet/x/network/types"
)

// ChainID is the chain id of simulated blocks.
const ChainID = "tensornet-sim-1"

// genesisTime anchors simulated block times.
var genesisTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness is a network keeper over a fresh in-memory multistore.
type Harness struct {
	Keeper *keeper.Keeper
	Ledger StoreLedger

	ctx  sdk.Context
	seed int64
}

// NewHarness mounts the network and ledger stores and returns a harness at
// height 1. Seeds derive block header hashes, so role selection is
// reproducible for a given seed.
func NewHarness(logger log.Logger, seed int64) (*Harness, error) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	ledgerKey := storetypes.NewKVStoreKey(LedgerStoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(ledgerKey, storetypes.StoreTypeIAVL, db)
	if err := stateStore.LoadLatestVersion(); err != nil {
		return nil, err
	}

	ledger := NewStoreLedger(ledgerKey)
	authority := authtypes.NewModuleAddress(govtypes.ModuleName)
	k := keeper.NewKeeper(types.ModuleCdc, storeKey, ledger, keeper.BlockRandomness{}, authority.String())

	h := &Harness{
		Keeper: k,
		Ledger: ledger,
		ctx:    sdk.NewContext(stateStore, cmtproto.Header{ChainID: ChainID}, false, logger),
		seed:   seed,
	}
	h.SetHeight(1)
	return h, nil
}

// Context returns the context of the current block.
func (h *Harness) Context() sdk.Context {
	return h.ctx
}

// Authority returns the address allowed to change params.
func (h *Harness) Authority() string {
	return h.Keeper.GetAuthority()
}

// SetHeight moves to height with a fresh event manager, a seed-derived header
// hash and a block time six seconds per block after genesis.
func (h *Harness) SetHeight(height int64) {
	bz := make([]byte, 16)
	binary.BigEndian.PutUint64(bz, uint64(h.seed))     // #nosec G115 -- seed bits only
	binary.BigEndian.PutUint64(bz[8:], uint64(height)) // #nosec G115 -- heights are positive
	hash := sha256.Sum256(bz)

	h.ctx = h.ctx.
		WithBlockHeight(height).
		WithBlockTime(genesisTime.Add(time.Duration(height) * 6 * time.Second)).
		WithHeaderHash(hash[:]).
		WithEventManager(sdk.NewEventManager())
}

// BeginBlock moves to height and runs the network begin blocker.
func (h *Harness) BeginBlock(height int64) error {
	h.SetHeight(height)
	return h.Keeper.BeginBlocker(h.ctx)
}
