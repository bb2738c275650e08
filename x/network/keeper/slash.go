package keeper

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

// SlashAmount returns the stake burned from a validator holding stake whose
// submission reached ratio attestation. The punishment shrinks linearly as
// ratio approaches full attestation and is capped at MaxSlashAmount.
func SlashAmount(stake sdkmath.Uint, ratio uint64, params types.Params) sdkmath.Uint {
	if ratio > types.PercentageFactor {
		ratio = types.PercentageFactor
	}
	effective := types.PercentMulUint64(params.SlashPercentage, types.PercentageFactor-ratio)
	return types.MinUint(types.PercentOf(stake, effective), params.MaxSlashAmount)
}

// slashValidator burns the validator's stake in subnet for a failed epoch.
// A node left under MinStakeBalance is removed.
func (k Keeper) slashValidator(ctx context.Context, subnet types.Subnet, validator sdk.AccAddress, ratio uint64, params types.Params) (sdkmath.Uint, error) {
	amount := SlashAmount(k.GetAccountSubnetStake(ctx, validator, subnet.ID), ratio, params)
	burned := k.decreaseAccountStake(ctx, validator, subnet.ID, amount)

	if !burned.IsZero() {
		recordMetric(ctx, func() { k.metrics.Slashes.Inc() })
		recordMetric(ctx, func() { k.metrics.SlashedAmount.Add(uintToFloat(burned)) })
		k.emitEvent(ctx, types.EventTypeNetworkValidatorSlashed,
			sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnet.ID)),
			sdk.NewAttribute(types.AttributeKeyValidator, validator.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, burned.String()),
			sdk.NewAttribute(types.AttributeKeyRatio, formatUint64(ratio)),
		)
		k.Logger(ctx).Info("validator slashed",
			"subnet_id", subnet.ID, "validator", validator.String(), "amount", burned.String(), "ratio", ratio)

		if k.hooks != nil {
			if err := k.hooks.AfterAccountSlashed(ctx, subnet.ID, validator, burned); err != nil {
				return burned, err
			}
		}
	}

	if _, found := k.GetSubnetNode(ctx, subnet.ID, validator); !found {
		return burned, nil
	}
	if k.GetAccountSubnetStake(ctx, validator, subnet.ID).LT(params.MinStakeBalance) {
		if err := k.RemoveSubnetNode(ctx, validator, subnet.ID, types.RemovalReasonSlashed); err != nil {
			return burned, err
		}
	}
	return burned, nil
}
