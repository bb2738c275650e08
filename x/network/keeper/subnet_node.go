package keeper

import (
	"context"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

// AddSubnetNode registers account in subnet under peerID and stakes the
// initial amount. Every precondition, stake included, is checked first.
func (k Keeper) AddSubnetNode(ctx context.Context, account sdk.AccAddress, subnetID uint32, peerID string, stake sdkmath.Uint) error {
	subnet, found := k.GetSubnet(ctx, subnetID)
	if !found {
		return types.ErrSubnetNotFound.Wrapf("subnet %d", subnetID)
	}
	if err := types.ValidatePeerID(peerID); err != nil {
		return err
	}
	if _, exists := k.GetSubnetNode(ctx, subnetID, account); exists {
		return types.ErrSubnetNodeExists.Wrapf("account %s in subnet %d", account, subnetID)
	}
	store := k.getStore(ctx)
	if store.Has(GetSubnetPeerIDKey(subnetID, peerID)) {
		return types.ErrPeerIDExists.Wrapf("peer id %s in subnet %d", peerID, subnetID)
	}
	if k.GetSubnetNodeCount(ctx, subnetID) >= subnet.MaxNodes {
		return types.ErrSubnetNodesMax.Wrapf("subnet %d holds %d nodes", subnetID, subnet.MaxNodes)
	}
	if err := k.validateAddStake(ctx, account, subnetID, stake); err != nil {
		return err
	}

	node := types.SubnetNode{
		SubnetID:  subnetID,
		Account:   account.String(),
		PeerID:    peerID,
		InitEpoch: k.CurrentEpoch(ctx),
	}
	k.SetSubnetNode(ctx, node)
	if err := k.applyAddStake(ctx, account, subnetID, stake); err != nil {
		return err
	}

	k.emitEvent(ctx, types.EventTypeNetworkSubnetNodeAdded,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyAccount, account.String()),
		sdk.NewAttribute(types.AttributeKeyPeerID, peerID),
	)
	return nil
}

// RemoveSubnetNode drops account's node from subnet. Its stake is left in
// place for the owner to withdraw.
func (k Keeper) RemoveSubnetNode(ctx context.Context, account sdk.AccAddress, subnetID uint32, reason string) error {
	node, found := k.GetSubnetNode(ctx, subnetID, account)
	if !found {
		return types.ErrSubnetNodeNotFound.Wrapf("account %s in subnet %d", account, subnetID)
	}

	store := k.getStore(ctx)
	store.Delete(GetSubnetNodeKey(subnetID, account))
	store.Delete(GetSubnetPeerIDKey(subnetID, node.PeerID))

	k.emitEvent(ctx, types.EventTypeNetworkSubnetNodeRemoved,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyAccount, account.String()),
		sdk.NewAttribute(types.AttributeKeyPeerID, node.PeerID),
		sdk.NewAttribute(types.AttributeKeyReason, reason),
	)
	k.Logger(ctx).Info("subnet node removed", "subnet_id", subnetID, "account", account.String(), "reason", reason)

	if k.hooks != nil {
		if err := k.hooks.AfterSubnetNodeRemoved(ctx, subnetID, account, reason); err != nil {
			return err
		}
	}
	recordMetric(ctx, func() { k.metrics.NodeRemovals.WithLabelValues(reason).Inc() })
	return nil
}

// GetSubnetNode returns account's node in subnet.
func (k Keeper) GetSubnetNode(ctx context.Context, subnetID uint32, account sdk.AccAddress) (types.SubnetNode, bool) {
	var node types.SubnetNode
	found := k.getRecord(k.getStore(ctx), GetSubnetNodeKey(subnetID, account), &node)
	return node, found
}

// GetSubnetNodeByPeerID resolves a node through the peer id index.
func (k Keeper) GetSubnetNodeByPeerID(ctx context.Context, subnetID uint32, peerID string) (types.SubnetNode, bool) {
	bz := k.getStore(ctx).Get(GetSubnetPeerIDKey(subnetID, peerID))
	if bz == nil {
		return types.SubnetNode{}, false
	}
	return k.GetSubnetNode(ctx, subnetID, sdk.AccAddress(bz))
}

// SetSubnetNode stores a node and its peer id index.
func (k Keeper) SetSubnetNode(ctx context.Context, node types.SubnetNode) {
	account := sdk.MustAccAddressFromBech32(node.Account)
	store := k.getStore(ctx)
	k.setRecord(store, GetSubnetNodeKey(node.SubnetID, account), node)
	store.Set(GetSubnetPeerIDKey(node.SubnetID, node.PeerID), account)
}

// GetSubnetNodes returns every node of subnet ordered by account bytes.
func (k Keeper) GetSubnetNodes(ctx context.Context, subnetID uint32) []types.SubnetNode {
	var nodes []types.SubnetNode
	k.IterateSubnetNodes(ctx, subnetID, func(n types.SubnetNode) bool {
		nodes = append(nodes, n)
		return false
	})
	return nodes
}

// GetSubnetNodesByClass returns the nodes of at least class at epoch.
func (k Keeper) GetSubnetNodesByClass(ctx context.Context, subnetID uint32, class types.NodeClass, epoch uint64) []types.SubnetNode {
	params := k.GetParams(ctx)
	var nodes []types.SubnetNode
	k.IterateSubnetNodes(ctx, subnetID, func(n types.SubnetNode) bool {
		if n.HasClass(class, epoch, params) {
			nodes = append(nodes, n)
		}
		return false
	})
	return nodes
}

// GetSubnetNodeCount returns the number of nodes in subnet.
func (k Keeper) GetSubnetNodeCount(ctx context.Context, subnetID uint32) uint32 {
	var count uint32
	k.IterateSubnetNodes(ctx, subnetID, func(types.SubnetNode) bool {
		count++
		return false
	})
	return count
}

// IterateSubnetNodes walks subnet's nodes ordered by account bytes.
func (k Keeper) IterateSubnetNodes(ctx context.Context, subnetID uint32, cb func(types.SubnetNode) (stop bool)) {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, GetSubnetNodesPrefix(subnetID))
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var node types.SubnetNode
		k.cdc.MustUnmarshal(iterator.Value(), &node)
		if cb(node) {
			break
		}
	}
}

// IterateAllSubnetNodes walks every node of every subnet.
func (k Keeper) IterateAllSubnetNodes(ctx context.Context, cb func(types.SubnetNode) (stop bool)) {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, SubnetNodePrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var node types.SubnetNode
		k.cdc.MustUnmarshal(iterator.Value(), &node)
		if cb(node) {
			break
		}
	}
}
