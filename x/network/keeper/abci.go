package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
	sharedabci "github.com/paw-chain/tensornet/x/shared/abci"
)

// BeginBlocker runs the epoch boundary work. On the first block of epoch e it
// settles epoch e-1, elects the roles of epoch e and drops role sets older
// than e-1. Other blocks are a no-op.
func (k Keeper) BeginBlocker(ctx context.Context) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	params := k.GetParams(ctx)

	height := sdkCtx.BlockHeight()
	if height <= 0 || types.SaturateInt64ToUint64(height)%params.EpochLength != 0 {
		return nil
	}
	epoch := types.SaturateInt64ToUint64(height) / params.EpochLength

	handler := sharedabci.NewBlockerErrorHandler(sdkCtx, types.ModuleName)
	if epoch > 0 {
		handler.Guard("distribute_epoch_rewards", func() {
			k.DistributeEpochRewards(ctx, epoch-1)
		})
	}
	handler.Guard("select_epoch_roles", func() {
		k.SelectEpochRoles(ctx, epoch)
	})
	handler.Guard("clear_stale_role_sets", func() {
		if cleared := k.ClearStaleRoleSets(ctx, epoch); cleared > 0 {
			k.Logger(ctx).Debug("stale role sets cleared", "epoch", epoch, "keys", cleared)
		}
	})

	k.emitEvent(ctx, types.EventTypeNetworkEpochStarted,
		sdk.NewAttribute(types.AttributeKeyEpoch, formatUint64(epoch)),
	)
	return nil
}
