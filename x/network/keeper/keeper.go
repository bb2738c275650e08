package keeper

import (
	"context"
	"fmt"
	"strconv"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

// Keeper of the network store
type Keeper struct {
	storeKey   storetypes.StoreKey
	cdc        *codec.LegacyAmino
	ledger     types.Ledger
	randomness types.RandomnessSource
	authority  string
	hooks      types.NetworkHooks

	metrics *NetworkMetrics
}

type kvStoreProvider interface {
	KVStore(key storetypes.StoreKey) storetypes.KVStore
}

// NewKeeper creates a new network Keeper instance. A nil randomness source
// falls back to block-hash randomness.
func NewKeeper(
	cdc *codec.LegacyAmino,
	key storetypes.StoreKey,
	ledger types.Ledger,
	randomness types.RandomnessSource,
	authority string,
) *Keeper {
	if randomness == nil {
		randomness = BlockRandomness{}
	}
	return &Keeper{
		storeKey:   key,
		cdc:        cdc,
		ledger:     ledger,
		randomness: randomness,
		authority:  authority,
		metrics:    NewNetworkMetrics(),
	}
}

// SetHooks sets the network hooks. It panics if hooks were already set.
func (k *Keeper) SetHooks(hooks types.NetworkHooks) *Keeper {
	if k.hooks != nil {
		panic("cannot set network hooks twice")
	}
	k.hooks = hooks
	return k
}

// GetAuthority returns the module's authority.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// getStore returns the KVStore for the network module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	if provider, ok := ctx.(kvStoreProvider); ok {
		return provider.KVStore(k.storeKey)
	}

	unwrapped := sdk.UnwrapSDKContext(ctx)
	return unwrapped.KVStore(k.storeKey)
}

// validateAuthority gates the governance-only messages.
func (k Keeper) validateAuthority(authority string) error {
	if authority != k.authority {
		return govtypes.ErrInvalidSigner.Wrapf("invalid authority; expected %s, got %s", k.authority, authority)
	}
	return nil
}

// CurrentEpoch returns block height / EpochLength.
func (k Keeper) CurrentEpoch(ctx context.Context) uint64 {
	return k.epochAt(ctx, sdk.UnwrapSDKContext(ctx).BlockHeight())
}

func (k Keeper) epochAt(ctx context.Context, height int64) uint64 {
	params := k.GetParams(ctx)
	if params.EpochLength == 0 {
		return 0
	}
	return types.SaturateInt64ToUint64(height) / params.EpochLength
}

func (k Keeper) emitEvent(ctx context.Context, eventType string, attrs ...sdk.Attribute) {
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(sdk.NewEvent(eventType, attrs...))
}

func formatSubnet(subnetID uint32) string {
	return strconv.FormatUint(uint64(subnetID), 10)
}

func formatUint64(v uint64) string {
	return strconv.FormatUint(v, 10)
}
