package keeper

import (
	"context"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

// MinSubnetNodes returns the node floor for a subnet serving memoryMB:
// ceil(memoryMB / BaseNodeMemoryMB) clamped to [MinSubnetNodes, MaxSubnetNodes].
func (k Keeper) MinSubnetNodes(ctx context.Context, memoryMB uint64) uint32 {
	params := k.GetParams(ctx)
	return minSubnetNodes(params, memoryMB)
}

func minSubnetNodes(params types.Params, memoryMB uint64) uint32 {
	needed := uint64(0)
	if params.BaseNodeMemoryMB > 0 {
		needed = memoryMB / params.BaseNodeMemoryMB
		if memoryMB%params.BaseNodeMemoryMB != 0 {
			needed++
		}
	}
	if needed < uint64(params.MinSubnetNodes) {
		return params.MinSubnetNodes
	}
	if needed > uint64(params.MaxSubnetNodes) {
		return params.MaxSubnetNodes
	}
	return types.SaturateUint64ToUint32(needed)
}

// RegisterSubnet creates an inactive subnet at a unique path and returns its ID.
func (k Keeper) RegisterSubnet(ctx context.Context, path string, memoryMB uint64) (uint32, error) {
	if err := types.ValidateSubnetPath(path); err != nil {
		return 0, err
	}
	if memoryMB == 0 {
		return 0, types.ErrInvalidMemory.Wrap("subnet memory must be positive")
	}
	store := k.getStore(ctx)
	if store.Has(GetSubnetPathKey(path)) {
		return 0, types.ErrSubnetPathExists.Wrapf("path %q", path)
	}

	params := k.GetParams(ctx)
	id := k.nextSubnetID(ctx)
	subnet := types.Subnet{
		ID:              id,
		Path:            path,
		MemoryMB:        memoryMB,
		MinNodes:        minSubnetNodes(params, memoryMB),
		MaxNodes:        params.MaxSubnetNodes,
		RegisteredBlock: sdk.UnwrapSDKContext(ctx).BlockHeight(),
	}
	k.SetSubnet(ctx, subnet)
	setUint64(store, NextSubnetIDKey, uint64(id)+1)

	k.emitEvent(ctx, types.EventTypeNetworkSubnetRegistered,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(id)),
		sdk.NewAttribute(types.AttributeKeySubnetPath, path),
	)
	k.Logger(ctx).Info("subnet registered", "subnet_id", id, "path", path, "min_nodes", subnet.MinNodes)
	return id, nil
}

// ActivateSubnet opens a subnet to role selection once MinNodes nodes joined.
func (k Keeper) ActivateSubnet(ctx context.Context, subnetID uint32) error {
	subnet, found := k.GetSubnet(ctx, subnetID)
	if !found {
		return types.ErrSubnetNotFound.Wrapf("subnet %d", subnetID)
	}
	if subnet.Activated {
		return types.ErrSubnetAlreadyActivated.Wrapf("subnet %d", subnetID)
	}
	count := k.GetSubnetNodeCount(ctx, subnetID)
	if count < subnet.MinNodes {
		return types.ErrSubnetMinNodesNotMet.Wrapf("subnet %d has %d of %d nodes", subnetID, count, subnet.MinNodes)
	}

	subnet.Activated = true
	subnet.ActivatedBlock = sdk.UnwrapSDKContext(ctx).BlockHeight()
	k.SetSubnet(ctx, subnet)

	k.emitEvent(ctx, types.EventTypeNetworkSubnetActivated,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
	)
	return nil
}

func (k Keeper) nextSubnetID(ctx context.Context) uint32 {
	id := getUint64(k.getStore(ctx), NextSubnetIDKey)
	if id == 0 {
		id = 1
	}
	return types.SaturateUint64ToUint32(id)
}

// GetNextSubnetID returns the ID the next registered subnet will receive.
func (k Keeper) GetNextSubnetID(ctx context.Context) uint32 {
	return k.nextSubnetID(ctx)
}

// SetNextSubnetID sets the subnet ID counter.
func (k Keeper) SetNextSubnetID(ctx context.Context, id uint32) {
	setUint64(k.getStore(ctx), NextSubnetIDKey, uint64(id))
}

// GetSubnet returns a subnet by ID.
func (k Keeper) GetSubnet(ctx context.Context, subnetID uint32) (types.Subnet, bool) {
	var subnet types.Subnet
	found := k.getRecord(k.getStore(ctx), GetSubnetKey(subnetID), &subnet)
	return subnet, found
}

// GetSubnetByPath resolves a subnet through the path index.
func (k Keeper) GetSubnetByPath(ctx context.Context, path string) (types.Subnet, bool) {
	bz := k.getStore(ctx).Get(GetSubnetPathKey(path))
	if len(bz) != 4 {
		return types.Subnet{}, false
	}
	return k.GetSubnet(ctx, parseSubnetID(bz))
}

// SetSubnet stores a subnet and its path index.
func (k Keeper) SetSubnet(ctx context.Context, subnet types.Subnet) {
	store := k.getStore(ctx)
	k.setRecord(store, GetSubnetKey(subnet.ID), subnet)
	store.Set(GetSubnetPathKey(subnet.Path), subnetBytes(subnet.ID))
}

// GetAllSubnets returns every subnet in ID order.
func (k Keeper) GetAllSubnets(ctx context.Context) []types.Subnet {
	var subnets []types.Subnet
	k.IterateSubnets(ctx, func(s types.Subnet) bool {
		subnets = append(subnets, s)
		return false
	})
	return subnets
}

// IterateSubnets walks subnets in ID order.
func (k Keeper) IterateSubnets(ctx context.Context, cb func(types.Subnet) (stop bool)) {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, SubnetPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var subnet types.Subnet
		k.cdc.MustUnmarshal(iterator.Value(), &subnet)
		if cb(subnet) {
			break
		}
	}
}

// GetSubnetPenaltyCount returns the subnet's fault counter.
func (k Keeper) GetSubnetPenaltyCount(ctx context.Context, subnetID uint32) uint64 {
	return getUint64(k.getStore(ctx), GetSubnetPenaltyKey(subnetID))
}

func (k Keeper) setSubnetPenaltyCount(ctx context.Context, subnetID uint32, v uint64) {
	setUint64(k.getStore(ctx), GetSubnetPenaltyKey(subnetID), v)
}

func (k Keeper) incrementSubnetPenalty(ctx context.Context, subnetID uint32, reason string) {
	count := types.SaturatingAddUint64(k.GetSubnetPenaltyCount(ctx, subnetID), 1)
	k.setSubnetPenaltyCount(ctx, subnetID, count)
	recordMetric(ctx, func() { k.metrics.Penalties.WithLabelValues("subnet", reason).Inc() })
	k.emitEvent(ctx, types.EventTypeNetworkPenaltyIncremented,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyReason, reason),
		sdk.NewAttribute(types.AttributeKeyCounter, formatUint64(count)),
	)
}

func (k Keeper) decrementSubnetPenalty(ctx context.Context, subnetID uint32) {
	k.setSubnetPenaltyCount(ctx, subnetID, types.SaturatingSubUint64(k.GetSubnetPenaltyCount(ctx, subnetID), 1))
}

// GetAccountPenaltyCount returns the account's fault counter.
func (k Keeper) GetAccountPenaltyCount(ctx context.Context, account sdk.AccAddress) uint64 {
	return getUint64(k.getStore(ctx), GetAccountPenaltyKey(account))
}

func (k Keeper) setAccountPenaltyCount(ctx context.Context, account sdk.AccAddress, v uint64) {
	setUint64(k.getStore(ctx), GetAccountPenaltyKey(account), v)
}

func (k Keeper) incrementAccountPenalty(ctx context.Context, account sdk.AccAddress, reason string) {
	count := types.SaturatingAddUint64(k.GetAccountPenaltyCount(ctx, account), 1)
	k.setAccountPenaltyCount(ctx, account, count)
	recordMetric(ctx, func() { k.metrics.Penalties.WithLabelValues("account", reason).Inc() })
	k.emitEvent(ctx, types.EventTypeNetworkPenaltyIncremented,
		sdk.NewAttribute(types.AttributeKeyAccount, account.String()),
		sdk.NewAttribute(types.AttributeKeyReason, reason),
		sdk.NewAttribute(types.AttributeKeyCounter, formatUint64(count)),
	)
}
