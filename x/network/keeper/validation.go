package keeper

import (
	"context"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

// SubmitRewards records the elected validator's score vector for the current
// epoch. Entries for peers that are not submittable nodes are dropped, and
// duplicate peers keep their first score. The validator attests its own
// submission. An empty vector is accepted and marks the subnet as broken.
func (k Keeper) SubmitRewards(ctx context.Context, validator sdk.AccAddress, subnetID uint32, data []types.NodeScore) error {
	if _, found := k.GetSubnet(ctx, subnetID); !found {
		return types.ErrSubnetNotFound.Wrapf("subnet %d", subnetID)
	}
	epoch := k.CurrentEpoch(ctx)
	elected, found := k.GetSubnetValidator(ctx, subnetID, epoch)
	if !found || !elected.Equals(validator) {
		return types.ErrInvalidValidator.Wrapf("%s is not the validator of subnet %d in epoch %d", validator, subnetID, epoch)
	}
	if _, exists := k.GetRewardsSubmission(ctx, subnetID, epoch); exists {
		return types.ErrRewardsAlreadySubmitted.Wrapf("subnet %d epoch %d", subnetID, epoch)
	}
	if err := types.ValidateScores(data); err != nil {
		return err
	}

	params := k.GetParams(ctx)
	seen := make(map[string]bool, len(data))
	filtered := make([]types.NodeScore, 0, len(data))
	sum := sdkmath.ZeroUint()
	for _, entry := range data {
		if seen[entry.PeerID] {
			continue
		}
		node, ok := k.GetSubnetNodeByPeerID(ctx, subnetID, entry.PeerID)
		if !ok || !node.HasClass(types.NodeClassSubmittable, epoch, params) {
			continue
		}
		seen[entry.PeerID] = true
		filtered = append(filtered, entry)
		sum = sum.Add(entry.Score)
	}
	if err := types.CheckBalance(sum); err != nil {
		return types.ErrInvalidScore.Wrapf("score sum: %v", err)
	}

	included := k.GetSubnetNodesByClass(ctx, subnetID, types.NodeClassIncluded, epoch)
	height := sdk.UnwrapSDKContext(ctx).BlockHeight()
	submission := types.EpochRewardsSubmission{
		SubnetID:   subnetID,
		Epoch:      epoch,
		Validator:  validator.String(),
		NodesCount: types.SaturateIntToUint32(len(included)),
		Sum:        sum,
		Data:       filtered,
		Block:      height,
	}
	submission.AddAttestation(validator.String(), height)
	k.SetRewardsSubmission(ctx, submission)

	recordMetric(ctx, func() { k.metrics.Submissions.WithLabelValues(submissionKind(filtered)).Inc() })
	k.emitEvent(ctx, types.EventTypeNetworkRewardsSubmitted,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyEpoch, formatUint64(epoch)),
		sdk.NewAttribute(types.AttributeKeyValidator, validator.String()),
		sdk.NewAttribute(types.AttributeKeyNodesCount, formatUint64(uint64(submission.NodesCount))),
	)
	return nil
}

func submissionKind(data []types.NodeScore) string {
	if len(data) == 0 {
		return "empty"
	}
	return "scored"
}

// Attest records account's agreement with the current epoch's submission.
func (k Keeper) Attest(ctx context.Context, account sdk.AccAddress, subnetID uint32) error {
	epoch := k.CurrentEpoch(ctx)
	submission, found := k.GetRewardsSubmission(ctx, subnetID, epoch)
	if !found {
		return types.ErrNoRewardsSubmission.Wrapf("subnet %d epoch %d", subnetID, epoch)
	}
	if submission.Complete {
		return types.ErrSubmissionComplete.Wrapf("subnet %d epoch %d", subnetID, epoch)
	}
	node, found := k.GetSubnetNode(ctx, subnetID, account)
	if !found {
		return types.ErrSubnetNodeNotFound.Wrapf("account %s in subnet %d", account, subnetID)
	}
	if !node.HasClass(types.NodeClassIncluded, epoch, k.GetParams(ctx)) {
		return types.ErrNodeNotEligible.Wrapf("node %s has not reached included class", account)
	}
	if !submission.AddAttestation(account.String(), sdk.UnwrapSDKContext(ctx).BlockHeight()) {
		return types.ErrAlreadyAttested.Wrapf("account %s in subnet %d epoch %d", account, subnetID, epoch)
	}
	k.SetRewardsSubmission(ctx, submission)

	recordMetric(ctx, func() { k.metrics.Attestations.Inc() })
	k.emitEvent(ctx, types.EventTypeNetworkAttestation,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyEpoch, formatUint64(epoch)),
		sdk.NewAttribute(types.AttributeKeyAccount, account.String()),
	)
	return nil
}

// SubmitAccountantData files an elected accountant's audit report for the current epoch.
func (k Keeper) SubmitAccountantData(ctx context.Context, accountant sdk.AccAddress, subnetID uint32, data []byte) error {
	if err := types.ValidatePayload(data); err != nil {
		return err
	}
	epoch := k.CurrentEpoch(ctx)
	if !k.IsElectedAccountant(ctx, subnetID, epoch, accountant) {
		return types.ErrNotAccountant.Wrapf("%s is not an accountant of subnet %d in epoch %d", accountant, subnetID, epoch)
	}
	store := k.getStore(ctx)
	key := GetAccountantReportKey(subnetID, epoch, accountant)
	if store.Has(key) {
		return types.ErrAccountantDataExists.Wrapf("subnet %d epoch %d", subnetID, epoch)
	}

	report := types.AccountantReport{
		SubnetID:   subnetID,
		Epoch:      epoch,
		Accountant: accountant.String(),
		Data:       data,
		Block:      sdk.UnwrapSDKContext(ctx).BlockHeight(),
	}
	k.setRecord(store, key, report)

	k.emitEvent(ctx, types.EventTypeNetworkAccountantReport,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyEpoch, formatUint64(epoch)),
		sdk.NewAttribute(types.AttributeKeyAccountant, accountant.String()),
	)
	return nil
}

// GetAccountantReport returns the report accountant filed for (subnet, epoch).
func (k Keeper) GetAccountantReport(ctx context.Context, subnetID uint32, epoch uint64, accountant sdk.AccAddress) (types.AccountantReport, bool) {
	var report types.AccountantReport
	found := k.getRecord(k.getStore(ctx), GetAccountantReportKey(subnetID, epoch, accountant), &report)
	return report, found
}

// GetRewardsSubmission returns the submission for (subnet, epoch).
func (k Keeper) GetRewardsSubmission(ctx context.Context, subnetID uint32, epoch uint64) (types.EpochRewardsSubmission, bool) {
	var submission types.EpochRewardsSubmission
	found := k.getRecord(k.getStore(ctx), GetSubmissionKey(subnetID, epoch), &submission)
	return submission, found
}

// SetRewardsSubmission stores a submission.
func (k Keeper) SetRewardsSubmission(ctx context.Context, submission types.EpochRewardsSubmission) {
	k.setRecord(k.getStore(ctx), GetSubmissionKey(submission.SubnetID, submission.Epoch), submission)
}

// IterateRewardsSubmissions walks every stored submission.
func (k Keeper) IterateRewardsSubmissions(ctx context.Context, cb func(types.EpochRewardsSubmission) (stop bool)) {
	k.iterateSubmissions(ctx, SubmissionPrefix, cb)
}

// UnconfirmedEpochCount counts the subnet's submissions that have not been rewarded.
func (k Keeper) UnconfirmedEpochCount(ctx context.Context, subnetID uint32) uint64 {
	var count uint64
	k.iterateSubmissions(ctx, GetSubnetSubmissionsPrefix(subnetID), func(s types.EpochRewardsSubmission) bool {
		if !s.Complete {
			count++
		}
		return false
	})
	return count
}

func (k Keeper) iterateSubmissions(ctx context.Context, prefix []byte, cb func(types.EpochRewardsSubmission) (stop bool)) {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var submission types.EpochRewardsSubmission
		k.cdc.MustUnmarshal(iterator.Value(), &submission)
		if cb(submission) {
			break
		}
	}
}
