package keeper

import (
	"context"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
	sharedabci "github.com/paw-chain/tensornet/x/shared/abci"
)

// SelectEpochRoles elects the validator and accountants of every activated
// subnet for epoch. Each subnet runs in its own cache context; a failing
// subnet is logged and skipped.
func (k Keeper) SelectEpochRoles(ctx context.Context, epoch uint64) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	handler := sharedabci.NewBlockerErrorHandler(sdkCtx, types.ModuleName)

	selected := 0
	for _, subnet := range k.GetAllSubnets(ctx) {
		if !subnet.Activated {
			continue
		}
		cacheCtx, write := cacheContext(sdkCtx)
		ok, err := k.selectSubnetRoles(cacheCtx, subnet, epoch)
		if handler.WrapSubnetError("select_roles", subnet.ID, sharedabci.SeverityHigh, err) {
			continue
		}
		write()
		if ok {
			selected++
		}
	}
	k.Logger(ctx).Info("epoch roles selected", "epoch", epoch, "subnets", selected)
}

// selectSubnetRoles reports false when the subnet sits this epoch out.
func (k Keeper) selectSubnetRoles(ctx context.Context, subnet types.Subnet, epoch uint64) (bool, error) {
	params := k.GetParams(ctx)
	submittable := k.GetSubnetNodesByClass(ctx, subnet.ID, types.NodeClassSubmittable, epoch)
	if len(submittable) < int(subnet.MinNodes) {
		k.Logger(ctx).Debug("subnet below minimum eligible nodes",
			"subnet_id", subnet.ID, "eligible", len(submittable), "min_nodes", subnet.MinNodes)
		return false, nil
	}

	idx, ok := k.drawIndex(ctx, purposeValidator, subnet.ID, epoch, 0, types.SaturateIntToUint32(len(submittable)))
	if !ok {
		k.Logger(ctx).Info("no validator selection this epoch", "subnet_id", subnet.ID, "epoch", epoch)
		return false, nil
	}
	validator := submittable[idx]
	validatorAddr, err := sdk.AccAddressFromBech32(validator.Account)
	if err != nil {
		return false, err
	}

	accountants, err := k.selectAccountants(ctx, subnet.ID, epoch, validator.Account, params)
	if err != nil {
		return false, err
	}

	store := k.getStore(ctx)
	store.Set(GetSubnetValidatorKey(epoch, subnet.ID), validatorAddr)
	for _, acc := range accountants {
		store.Set(GetSubnetAccountantKey(epoch, subnet.ID, acc), []byte{1})
	}
	store.Set(GetSubnetInConsensusKey(epoch, subnet.ID), []byte{1})

	k.emitEvent(ctx, types.EventTypeNetworkRolesSelected,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnet.ID)),
		sdk.NewAttribute(types.AttributeKeyEpoch, formatUint64(epoch)),
		sdk.NewAttribute(types.AttributeKeyValidator, validator.Account),
		sdk.NewAttribute(types.AttributeKeyNodesCount, formatUint64(uint64(len(accountants)))),
	)
	return true, nil
}

// selectAccountants draws up to AccountantsPerEpoch distinct accountant-class
// nodes other than the validator, preferring nodes that did not serve in the
// previous epoch. The preference is dropped when it leaves nobody.
func (k Keeper) selectAccountants(ctx context.Context, subnetID uint32, epoch uint64, validator string, params types.Params) ([]sdk.AccAddress, error) {
	previous := make(map[string]bool)
	if epoch > 0 {
		for _, acc := range k.GetSubnetAccountants(ctx, subnetID, epoch-1) {
			previous[acc.String()] = true
		}
	}

	var fresh, all []types.SubnetNode
	for _, node := range k.GetSubnetNodesByClass(ctx, subnetID, types.NodeClassAccountant, epoch) {
		if node.Account == validator {
			continue
		}
		all = append(all, node)
		if !previous[node.Account] {
			fresh = append(fresh, node)
		}
	}
	candidates := fresh
	if len(candidates) == 0 {
		candidates = all
	}

	var chosen []sdk.AccAddress
	for round := uint32(0); round < params.AccountantsPerEpoch && len(candidates) > 0; round++ {
		idx, ok := k.drawIndex(ctx, purposeAccountant, subnetID, epoch, round, types.SaturateIntToUint32(len(candidates)))
		if !ok {
			break
		}
		addr, err := sdk.AccAddressFromBech32(candidates[idx].Account)
		if err != nil {
			return nil, err
		}
		chosen = append(chosen, addr)
		candidates = append(candidates[:idx:idx], candidates[idx+1:]...)
	}
	return chosen, nil
}

// GetSubnetValidator returns the validator elected for (subnet, epoch).
func (k Keeper) GetSubnetValidator(ctx context.Context, subnetID uint32, epoch uint64) (sdk.AccAddress, bool) {
	bz := k.getStore(ctx).Get(GetSubnetValidatorKey(epoch, subnetID))
	if bz == nil {
		return nil, false
	}
	return sdk.AccAddress(bz), true
}

// GetSubnetAccountants returns the accountants elected for (subnet, epoch) in key order.
func (k Keeper) GetSubnetAccountants(ctx context.Context, subnetID uint32, epoch uint64) []sdk.AccAddress {
	store := k.getStore(ctx)
	prefix := GetSubnetAccountantsPrefix(epoch, subnetID)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var accountants []sdk.AccAddress
	for ; iterator.Valid(); iterator.Next() {
		acc, _ := parseLengthPrefixed(iterator.Key()[len(prefix):])
		if acc != nil {
			accountants = append(accountants, acc)
		}
	}
	return accountants
}

// IsElectedAccountant reports whether account audits subnet in epoch.
func (k Keeper) IsElectedAccountant(ctx context.Context, subnetID uint32, epoch uint64, account sdk.AccAddress) bool {
	return k.getStore(ctx).Has(GetSubnetAccountantKey(epoch, subnetID, account))
}

// GetSubnetsInConsensus returns the subnets awaiting rewards for epoch.
func (k Keeper) GetSubnetsInConsensus(ctx context.Context, epoch uint64) []uint32 {
	store := k.getStore(ctx)
	prefix := GetSubnetsInConsensusPrefix(epoch)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var ids []uint32
	for ; iterator.Valid(); iterator.Next() {
		ids = append(ids, parseSubnetID(iterator.Key()[len(prefix):]))
	}
	return ids
}

// drainSubnetsInConsensus returns and clears the in-consensus set of epoch.
func (k Keeper) drainSubnetsInConsensus(ctx context.Context, epoch uint64) []uint32 {
	ids := k.GetSubnetsInConsensus(ctx, epoch)
	store := k.getStore(ctx)
	for _, id := range ids {
		store.Delete(GetSubnetInConsensusKey(epoch, id))
	}
	return ids
}

// ClearStaleRoleSets deletes role and consensus sets older than epoch-1.
func (k Keeper) ClearStaleRoleSets(ctx context.Context, epoch uint64) int {
	if epoch < 2 {
		return 0
	}
	store := k.getStore(ctx)
	cutoff := epochBytes(epoch - 1)

	cleared := 0
	for _, prefix := range [][]byte{SubnetValidatorPrefix, SubnetAccountantsPrefix, SubnetsInConsensusPrefix} {
		iterator := store.Iterator(prefix, concat(prefix, cutoff))
		var keys [][]byte
		for ; iterator.Valid(); iterator.Next() {
			keys = append(keys, append([]byte(nil), iterator.Key()...))
		}
		iterator.Close()
		for _, key := range keys {
			store.Delete(key)
		}
		cleared += len(keys)
	}
	return cleared
}
