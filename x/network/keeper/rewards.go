package keeper

import (
	"context"
	"sort"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
	sharedabci "github.com/paw-chain/tensornet/x/shared/abci"
)

// DistributeEpochRewards runs the reward tick for epoch over the subnets that
// were in consensus during it. The in-consensus set is drained first. Each
// subnet is settled in its own cache context so one failing subnet cannot
// stop the others.
func (k Keeper) DistributeEpochRewards(ctx context.Context, epoch uint64) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	handler := sharedabci.NewBlockerErrorHandler(sdkCtx, types.ModuleName)
	params := k.GetParams(ctx)

	subnetIDs := k.drainSubnetsInConsensus(ctx, epoch)
	if len(subnetIDs) == 0 {
		return
	}

	subnets := make(map[uint32]types.Subnet, len(subnetIDs))
	stakes := make(map[uint32]sdkmath.Uint, len(subnetIDs))
	total := sdkmath.ZeroUint()
	for _, id := range subnetIDs {
		subnet, found := k.GetSubnet(ctx, id)
		if !found {
			continue
		}
		subnets[id] = subnet
		stakes[id] = k.cappedSubnetStake(ctx, id, params.MaxStakeBalance)
		total = total.Add(stakes[id])
	}

	weights := make([]types.SubnetWeight, 0, len(subnets))
	for _, id := range subnetIDs {
		if _, ok := subnets[id]; !ok {
			continue
		}
		weight := types.PercentDiv(stakes[id], total).Uint64()
		if weight < types.MinSubnetRewardWeight {
			cacheCtx, write := cacheContext(sdkCtx)
			err := k.settleExcludedSubnet(cacheCtx, subnets[id], epoch)
			if handler.WrapSubnetError("settle_excluded_subnet", id, sharedabci.SeverityMedium, err) {
				continue
			}
			write()
			continue
		}
		weights = append(weights, types.SubnetWeight{SubnetID: id, Weight: weight})
	}

	weights = types.RedistributeWeights(weights, types.SubnetWeightCap(params.MaxSubnetRewardWeight, len(weights)))

	rewarded := 0
	for _, w := range weights {
		cacheCtx, write := cacheContext(sdkCtx)
		ok, err := k.rewardSubnet(cacheCtx, subnets[w.SubnetID], epoch, w.Weight, params)
		if handler.WrapSubnetError("reward_subnet", w.SubnetID, sharedabci.SeverityHigh, err) {
			continue
		}
		write()
		if ok {
			rewarded++
		}
	}

	recordMetric(ctx, func() { k.metrics.Epoch.Set(float64(epoch)) })
	k.emitEvent(ctx, types.EventTypeNetworkEpochRewardsApplied,
		sdk.NewAttribute(types.AttributeKeyEpoch, formatUint64(epoch)),
		sdk.NewAttribute(types.AttributeKeyCounter, formatUint64(uint64(rewarded))),
	)
	k.Logger(ctx).Info("epoch rewards applied", "epoch", epoch, "subnets", len(subnetIDs), "rewarded", rewarded)
}

// cappedSubnetStake sums each staker's stake in subnet capped at maxStake.
func (k Keeper) cappedSubnetStake(ctx context.Context, subnetID uint32, maxStake sdkmath.Uint) sdkmath.Uint {
	total := sdkmath.ZeroUint()
	for _, account := range k.GetSubnetStakers(ctx, subnetID) {
		total = total.Add(types.MinUint(k.GetAccountSubnetStake(ctx, account, subnetID), maxStake))
	}
	return total
}

// settleExcludedSubnet handles a subnet whose weight fell under the floor: it
// earns nothing this epoch and its penalty counter grows.
func (k Keeper) settleExcludedSubnet(ctx context.Context, subnet types.Subnet, epoch uint64) error {
	k.incrementSubnetPenalty(ctx, subnet.ID, "low_weight")
	if submission, found := k.GetRewardsSubmission(ctx, subnet.ID, epoch); found {
		submission.Complete = true
		k.SetRewardsSubmission(ctx, submission)
	}
	k.penalizeSilentAccountants(ctx, subnet.ID, epoch)
	return nil
}

// rewardSubnet evaluates the consensus outcome of one subnet for epoch and
// pays out weight of the epoch emission when consensus was reached. It
// reports whether rewards were paid.
func (k Keeper) rewardSubnet(ctx context.Context, subnet types.Subnet, epoch uint64, weight uint64, params types.Params) (bool, error) {
	k.penalizeSilentAccountants(ctx, subnet.ID, epoch)

	submission, found := k.GetRewardsSubmission(ctx, subnet.ID, epoch)
	if !found {
		k.incrementSubnetPenalty(ctx, subnet.ID, "no_submission")
		validator, elected := k.GetSubnetValidator(ctx, subnet.ID, epoch)
		if !elected {
			return false, nil
		}
		k.incrementAccountPenalty(ctx, validator, "no_submission")
		_, err := k.slashValidator(ctx, subnet, validator, 0, params)
		return false, err
	}

	validator, err := sdk.AccAddressFromBech32(submission.Validator)
	if err != nil {
		return false, err
	}
	submission.Complete = true
	k.SetRewardsSubmission(ctx, submission)

	ratio := submission.AttestationRatio()
	if ratio > types.PercentageFactor {
		ratio = types.PercentageFactor
	}

	if len(submission.Data) < int(subnet.MinNodes) {
		k.incrementSubnetPenalty(ctx, subnet.ID, "broken")
		if ratio >= params.MinAttestationPercentage {
			k.incrementAccountPenalty(ctx, validator, "broken_attested")
		}
		k.emitEvent(ctx, types.EventTypeNetworkSubnetBroken,
			sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnet.ID)),
			sdk.NewAttribute(types.AttributeKeyEpoch, formatUint64(epoch)),
			sdk.NewAttribute(types.AttributeKeyRatio, formatUint64(ratio)),
		)
		return false, nil
	}

	if ratio < params.MinAttestationPercentage {
		k.incrementAccountPenalty(ctx, validator, "low_attestation")
		_, err := k.slashValidator(ctx, subnet, validator, ratio, params)
		return false, err
	}

	allotment := types.PercentOf(params.RewardPerEpoch, weight)
	nodeAllotment := allotment
	delegateCut := types.PercentOf(allotment, params.DelegateRewardPercentage)
	if k.IncreaseDelegatePool(ctx, subnet.ID, delegateCut) {
		nodeAllotment = allotment.Sub(delegateCut)
		recordMetric(ctx, func() { k.metrics.RewardsDistributed.WithLabelValues("delegate").Add(uintToFloat(delegateCut)) })
	}

	if err := k.distributeNodeRewards(ctx, subnet, submission, nodeAllotment, epoch, params); err != nil {
		return false, err
	}

	bonus := types.PercentOf(params.ValidatorReward, ratio)
	if err := k.IncreaseAccountStake(ctx, validator, subnet.ID, bonus); err != nil {
		return false, err
	}
	recordMetric(ctx, func() { k.metrics.RewardsDistributed.WithLabelValues("validator").Add(uintToFloat(bonus)) })
	k.decrementSubnetPenalty(ctx, subnet.ID)

	if err := k.applyAbsences(ctx, subnet, submission, ratio, epoch, params); err != nil {
		return false, err
	}

	k.emitEvent(ctx, types.EventTypeNetworkSubnetRewarded,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnet.ID)),
		sdk.NewAttribute(types.AttributeKeyEpoch, formatUint64(epoch)),
		sdk.NewAttribute(types.AttributeKeyWeight, formatUint64(weight)),
		sdk.NewAttribute(types.AttributeKeyRatio, formatUint64(ratio)),
		sdk.NewAttribute(types.AttributeKeyAmount, allotment.String()),
	)
	return true, nil
}

type scoredNode struct {
	account sdk.AccAddress
	stake   sdkmath.Uint
	score   sdkmath.Uint
}

// distributeNodeRewards splits nodeAllotment across the scored submittable
// nodes by a blend of stake share and score share, in account order.
func (k Keeper) distributeNodeRewards(
	ctx context.Context,
	subnet types.Subnet,
	submission types.EpochRewardsSubmission,
	nodeAllotment sdkmath.Uint,
	epoch uint64,
	params types.Params,
) error {
	var nodes []scoredNode
	totalStake := sdkmath.ZeroUint()
	for _, entry := range submission.Data {
		node, found := k.GetSubnetNodeByPeerID(ctx, subnet.ID, entry.PeerID)
		if !found || !node.HasClass(types.NodeClassSubmittable, epoch, params) {
			continue
		}
		account, err := sdk.AccAddressFromBech32(node.Account)
		if err != nil {
			return err
		}
		stake := types.MinUint(k.GetAccountSubnetStake(ctx, account, subnet.ID), params.MaxStakeBalance)
		nodes = append(nodes, scoredNode{account: account, stake: stake, score: entry.Score})
		totalStake = totalStake.Add(stake)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].account.String() < nodes[j].account.String()
	})

	scoreWeight := types.PercentageFactor - params.StakeRewardWeight
	for _, n := range nodes {
		if n.stake.IsZero() {
			continue
		}
		stakePct := types.PercentDiv(n.stake, totalStake).Uint64()
		scorePct := types.PercentDiv(n.score, submission.Sum).Uint64()
		weight := types.PercentMulUint64(stakePct, params.StakeRewardWeight) + types.PercentMulUint64(scorePct, scoreWeight)
		if weight == 0 {
			continue
		}
		reward := types.PercentOf(nodeAllotment, weight)
		if reward.IsZero() {
			continue
		}
		if err := k.IncreaseAccountStake(ctx, n.account, subnet.ID, reward); err != nil {
			return err
		}
		recordMetric(ctx, func() { k.metrics.RewardsDistributed.WithLabelValues("node").Add(uintToFloat(reward)) })
	}
	return nil
}

// applyAbsences tracks sequential absences from the score vector. Absences
// only count when attestation reached NodeRemovalConsensusPercentage; nodes
// over MaxSequentialAbsences are removed. Attesters that were scored have
// their counter lowered.
func (k Keeper) applyAbsences(
	ctx context.Context,
	subnet types.Subnet,
	submission types.EpochRewardsSubmission,
	ratio uint64,
	epoch uint64,
	params types.Params,
) error {
	present := make(map[string]bool, len(submission.Data))
	for _, entry := range submission.Data {
		present[entry.PeerID] = true
	}

	if ratio >= params.NodeRemovalConsensusPercentage {
		for _, node := range k.GetSubnetNodesByClass(ctx, subnet.ID, types.NodeClassSubmittable, epoch) {
			if present[node.PeerID] {
				continue
			}
			node.Absences++
			if node.Absences > params.MaxSequentialAbsences {
				if err := k.RemoveSubnetNode(ctx, sdk.MustAccAddressFromBech32(node.Account), subnet.ID, types.RemovalReasonAbsence); err != nil {
					return err
				}
				continue
			}
			k.SetSubnetNode(ctx, node)
		}
	}

	for _, attest := range submission.Attests {
		account, err := sdk.AccAddressFromBech32(attest.Account)
		if err != nil {
			return err
		}
		node, found := k.GetSubnetNode(ctx, subnet.ID, account)
		if !found || !present[node.PeerID] || node.Absences == 0 {
			continue
		}
		node.Absences--
		k.SetSubnetNode(ctx, node)
	}
	return nil
}

// penalizeSilentAccountants bumps the penalty counter of every accountant
// elected for epoch that filed no report.
func (k Keeper) penalizeSilentAccountants(ctx context.Context, subnetID uint32, epoch uint64) {
	for _, accountant := range k.GetSubnetAccountants(ctx, subnetID, epoch) {
		if _, filed := k.GetAccountantReport(ctx, subnetID, epoch, accountant); filed {
			continue
		}
		k.incrementAccountPenalty(ctx, accountant, "missing_accountant_report")
	}
}
