package keeper

import (
	"context"
	"sort"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

// Propose opens a bonded dispute by an accountant against the node behind
// defendantPeerID. The accountant set at filing becomes the voter roll.
func (k Keeper) Propose(ctx context.Context, plaintiff sdk.AccAddress, subnetID uint32, defendantPeerID string, data []byte) (uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	params := k.GetParams(ctx)
	epoch := k.CurrentEpoch(ctx)

	subnet, found := k.GetSubnet(ctx, subnetID)
	if !found {
		return 0, types.ErrSubnetNotFound.Wrapf("subnet %d", subnetID)
	}
	if err := types.ValidatePayload(data); err != nil {
		return 0, err
	}
	plaintiffNode, found := k.GetSubnetNode(ctx, subnetID, plaintiff)
	if !found || !plaintiffNode.HasClass(types.NodeClassAccountant, epoch, params) {
		return 0, types.ErrNotAccountant.Wrapf("account %s in subnet %d", plaintiff, subnetID)
	}
	defendantNode, found := k.GetSubnetNodeByPeerID(ctx, subnetID, defendantPeerID)
	if !found {
		return 0, types.ErrPeerIDNotFound.Wrapf("peer %s in subnet %d", defendantPeerID, subnetID)
	}
	if defendantNode.Account == plaintiffNode.Account {
		return 0, types.ErrInvalidDefendant.Wrap("plaintiff cannot accuse itself")
	}
	defendant, err := sdk.AccAddressFromBech32(defendantNode.Account)
	if err != nil {
		return 0, err
	}

	accountants := k.GetSubnetNodesByClass(ctx, subnetID, types.NodeClassAccountant, epoch)
	if len(accountants) < int(subnet.MinNodes) {
		return 0, types.ErrNotEnoughAccountants.Wrapf("%d accountants, subnet requires %d", len(accountants), subnet.MinNodes)
	}

	store := k.getStore(ctx)
	activeKey := GetActiveProposalKey(subnetID, plaintiff, defendant)
	if store.Has(activeKey) {
		return 0, types.ErrProposalExists.Wrapf("plaintiff %s against %s", plaintiff, defendant)
	}
	if !k.ledger.Debit(ctx, plaintiff, params.ProposalBond) {
		return 0, types.ErrNotEnoughBalanceToBond.Wrapf("account %s cannot bond %s", plaintiff, params.ProposalBond)
	}

	voters := make([]string, 0, len(accountants))
	for _, node := range accountants {
		voters = append(voters, node.Account)
	}
	sort.Strings(voters)

	id := k.nextProposalID(store, subnetID)
	proposal := types.Proposal{
		ID:              id,
		SubnetID:        subnetID,
		Plaintiff:       plaintiff.String(),
		Defendant:       defendant.String(),
		DefendantPeerID: defendantPeerID,
		PlaintiffBond:   params.ProposalBond,
		DefendantBond:   sdkmath.ZeroUint(),
		EligibleVoters:  voters,
		Yays:            []string{plaintiff.String()},
		StartBlock:      sdkCtx.BlockHeight(),
		PlaintiffData:   data,
	}
	k.SetProposal(ctx, proposal)
	store.Set(activeKey, sdk.Uint64ToBigEndian(id))

	recordMetric(ctx, func() { k.metrics.Proposals.WithLabelValues("created").Inc() })
	k.emitEvent(ctx, types.EventTypeNetworkProposalCreated,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyProposalID, formatUint64(id)),
		sdk.NewAttribute(types.AttributeKeyPlaintiff, plaintiff.String()),
		sdk.NewAttribute(types.AttributeKeyDefendant, defendant.String()),
		sdk.NewAttribute(types.AttributeKeyPeerID, defendantPeerID),
	)
	k.Logger(ctx).Info("proposal created", "subnet_id", subnetID, "proposal_id", id,
		"plaintiff", plaintiff.String(), "defendant", defendant.String())
	return id, nil
}

// ChallengeProposal lets the defendant counter-bond before the challenge
// deadline, which opens voting.
func (k Keeper) ChallengeProposal(ctx context.Context, defendant sdk.AccAddress, subnetID uint32, proposalID uint64, data []byte) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	params := k.GetParams(ctx)

	proposal, err := k.openProposal(ctx, subnetID, proposalID)
	if err != nil {
		return err
	}
	if proposal.Defendant != defendant.String() {
		return types.ErrNotDefendant.Wrapf("account %s", defendant)
	}
	if proposal.Challenged() {
		return types.ErrProposalChallenged.Wrapf("proposal %d", proposalID)
	}
	if sdkCtx.BlockHeight() >= proposal.StartBlock+params.ChallengePeriod {
		return types.ErrChallengePeriodPassed.Wrapf("deadline was block %d", proposal.StartBlock+params.ChallengePeriod)
	}
	if err := types.ValidatePayload(data); err != nil {
		return err
	}
	if !k.ledger.Debit(ctx, defendant, proposal.PlaintiffBond) {
		return types.ErrNotEnoughBalanceToBond.Wrapf("account %s cannot bond %s", defendant, proposal.PlaintiffBond)
	}

	proposal.DefendantBond = proposal.PlaintiffBond
	proposal.DefendantData = data
	proposal.ChallengeBlock = sdkCtx.BlockHeight()
	proposal.Nays = []string{defendant.String()}
	k.SetProposal(ctx, proposal)

	k.emitEvent(ctx, types.EventTypeNetworkProposalChallenged,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyProposalID, formatUint64(proposalID)),
		sdk.NewAttribute(types.AttributeKeyDefendant, defendant.String()),
	)
	return nil
}

// VoteProposal records a ballot from a member of the voter roll.
func (k Keeper) VoteProposal(ctx context.Context, voter sdk.AccAddress, subnetID uint32, proposalID uint64, vote types.VoteOption) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	params := k.GetParams(ctx)

	if vote != types.VoteOptionYay && vote != types.VoteOptionNay {
		return types.ErrInvalidVote.Wrapf("option %d", vote)
	}
	proposal, err := k.openProposal(ctx, subnetID, proposalID)
	if err != nil {
		return err
	}
	if !proposal.Challenged() {
		return types.ErrProposalNotChallenged.Wrapf("proposal %d", proposalID)
	}
	if sdkCtx.BlockHeight() >= proposal.ChallengeBlock+params.VotingPeriod {
		return types.ErrVotingPeriodPassed.Wrapf("deadline was block %d", proposal.ChallengeBlock+params.VotingPeriod)
	}
	account := voter.String()
	if !proposal.IsEligibleVoter(account) {
		return types.ErrNotEligibleVoter.Wrapf("account %s", account)
	}
	if proposal.HasVoted(account) {
		return types.ErrAlreadyVoted.Wrapf("account %s", account)
	}

	if vote == types.VoteOptionYay {
		proposal.Yays = append(proposal.Yays, account)
	} else {
		proposal.Nays = append(proposal.Nays, account)
	}
	k.SetProposal(ctx, proposal)

	k.emitEvent(ctx, types.EventTypeNetworkProposalVote,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(subnetID)),
		sdk.NewAttribute(types.AttributeKeyProposalID, formatUint64(proposalID)),
		sdk.NewAttribute(types.AttributeKeyAccount, account),
		sdk.NewAttribute(types.AttributeKeyVote, formatUint64(uint64(vote))),
	)
	return nil
}

// ExecuteProposal resolves a proposal once its deadline has passed and
// settles both bonds.
func (k Keeper) ExecuteProposal(ctx context.Context, subnetID uint32, proposalID uint64) (types.ProposalOutcome, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	params := k.GetParams(ctx)
	height := sdkCtx.BlockHeight()

	proposal, err := k.openProposal(ctx, subnetID, proposalID)
	if err != nil {
		return types.ProposalOutcomePending, err
	}

	var outcome types.ProposalOutcome
	if !proposal.Challenged() {
		if deadline := proposal.StartBlock + params.ChallengePeriod; height < deadline {
			return types.ProposalOutcomePending, types.ErrChallengePeriodActive.Wrapf("deadline is block %d", deadline)
		}
		outcome = types.ProposalOutcomePlaintiffWins
	} else {
		if deadline := proposal.ChallengeBlock + params.VotingPeriod; height < deadline {
			return types.ProposalOutcomePending, types.ErrVotingPeriodActive.Wrapf("deadline is block %d", deadline)
		}
		outcome = tallyProposal(proposal, params)
	}

	if err := k.settleProposal(ctx, &proposal, outcome); err != nil {
		return types.ProposalOutcomePending, err
	}
	return outcome, nil
}

// tallyProposal applies quorum over the voter roll, then the consensus
// threshold over the votes cast.
func tallyProposal(p types.Proposal, params types.Params) types.ProposalOutcome {
	votes := uint64(len(p.Yays) + len(p.Nays))
	if types.RatioPercent(votes, uint64(len(p.EligibleVoters))) < params.ProposalQuorum {
		return types.ProposalOutcomeVoid
	}
	switch {
	case types.RatioPercent(uint64(len(p.Yays)), votes) >= params.ProposalConsensusThreshold:
		return types.ProposalOutcomePlaintiffWins
	case types.RatioPercent(uint64(len(p.Nays)), votes) >= params.ProposalConsensusThreshold:
		return types.ProposalOutcomeDefendantWins
	default:
		return types.ProposalOutcomeVoid
	}
}

func (k Keeper) settleProposal(ctx context.Context, p *types.Proposal, outcome types.ProposalOutcome) error {
	plaintiff := sdk.MustAccAddressFromBech32(p.Plaintiff)
	defendant := sdk.MustAccAddressFromBech32(p.Defendant)

	switch outcome {
	case types.ProposalOutcomePlaintiffWins:
		k.ledger.Credit(ctx, plaintiff, p.PlaintiffBond)
		k.splitBond(ctx, p.DefendantBond, p.Yays, plaintiff)
		if _, found := k.GetSubnetNode(ctx, p.SubnetID, defendant); found {
			if err := k.RemoveSubnetNode(ctx, defendant, p.SubnetID, types.RemovalReasonProposal); err != nil {
				return err
			}
		}
		k.incrementAccountPenalty(ctx, defendant, "proposal_lost")
	case types.ProposalOutcomeDefendantWins:
		k.ledger.Credit(ctx, defendant, p.DefendantBond)
		k.splitBond(ctx, p.PlaintiffBond, p.Nays, defendant)
	default:
		k.ledger.Credit(ctx, plaintiff, p.PlaintiffBond)
		if !p.DefendantBond.IsZero() {
			k.ledger.Credit(ctx, defendant, p.DefendantBond)
		}
	}

	return k.concludeProposal(ctx, p, outcome)
}

// splitBond pays bond evenly across winners; the division remainder goes to
// principal.
func (k Keeper) splitBond(ctx context.Context, bond sdkmath.Uint, winners []string, principal sdk.AccAddress) {
	if bond.IsZero() || len(winners) == 0 {
		if !bond.IsZero() {
			k.ledger.Credit(ctx, principal, bond)
		}
		return
	}
	n := sdkmath.NewUint(uint64(len(winners)))
	share := bond.Quo(n)
	remainder := bond.Sub(share.Mul(n))
	if !share.IsZero() {
		for _, winner := range winners {
			k.ledger.Credit(ctx, sdk.MustAccAddressFromBech32(winner), share)
		}
	}
	if !remainder.IsZero() {
		k.ledger.Credit(ctx, principal, remainder)
	}
}

// CancelProposal withdraws an unchallenged proposal and refunds its bond.
func (k Keeper) CancelProposal(ctx context.Context, plaintiff sdk.AccAddress, subnetID uint32, proposalID uint64) error {
	proposal, err := k.openProposal(ctx, subnetID, proposalID)
	if err != nil {
		return err
	}
	if proposal.Plaintiff != plaintiff.String() {
		return types.ErrNotPlaintiff.Wrapf("account %s", plaintiff)
	}
	if proposal.Challenged() {
		return types.ErrProposalChallenged.Wrapf("proposal %d", proposalID)
	}
	k.ledger.Credit(ctx, plaintiff, proposal.PlaintiffBond)
	return k.concludeProposal(ctx, &proposal, types.ProposalOutcomeCancelled)
}

func (k Keeper) concludeProposal(ctx context.Context, p *types.Proposal, outcome types.ProposalOutcome) error {
	p.Complete = true
	p.Outcome = outcome
	k.SetProposal(ctx, *p)
	k.getStore(ctx).Delete(GetActiveProposalKey(p.SubnetID,
		sdk.MustAccAddressFromBech32(p.Plaintiff), sdk.MustAccAddressFromBech32(p.Defendant)))

	recordMetric(ctx, func() { k.metrics.Proposals.WithLabelValues(outcome.String()).Inc() })
	eventType := types.EventTypeNetworkProposalExecuted
	if outcome == types.ProposalOutcomeCancelled {
		eventType = types.EventTypeNetworkProposalCancelled
	}
	k.emitEvent(ctx, eventType,
		sdk.NewAttribute(types.AttributeKeySubnetID, formatSubnet(p.SubnetID)),
		sdk.NewAttribute(types.AttributeKeyProposalID, formatUint64(p.ID)),
		sdk.NewAttribute(types.AttributeKeyOutcome, outcome.String()),
	)
	k.Logger(ctx).Info("proposal resolved", "subnet_id", p.SubnetID, "proposal_id", p.ID, "outcome", outcome.String())

	if k.hooks != nil {
		return k.hooks.AfterProposalResolved(ctx, p.SubnetID, p.ID, outcome)
	}
	return nil
}

// openProposal loads a proposal that has not reached a terminal state.
func (k Keeper) openProposal(ctx context.Context, subnetID uint32, proposalID uint64) (types.Proposal, error) {
	proposal, found := k.GetProposal(ctx, subnetID, proposalID)
	if !found {
		return proposal, types.ErrProposalNotFound.Wrapf("proposal %d in subnet %d", proposalID, subnetID)
	}
	if proposal.Complete {
		return proposal, types.ErrProposalConcluded.Wrapf("proposal %d ended %s", proposalID, proposal.Outcome)
	}
	return proposal, nil
}

func (k Keeper) nextProposalID(store storetypes.KVStore, subnetID uint32) uint64 {
	key := GetNextProposalIDKey(subnetID)
	id := getUint64(store, key)
	if id == 0 {
		id = 1
	}
	setUint64(store, key, id+1)
	return id
}

// GetNextProposalID returns the id the next proposal in subnet will receive.
func (k Keeper) GetNextProposalID(ctx context.Context, subnetID uint32) uint64 {
	id := getUint64(k.getStore(ctx), GetNextProposalIDKey(subnetID))
	if id == 0 {
		return 1
	}
	return id
}

// SetNextProposalID overrides the proposal counter of subnet.
func (k Keeper) SetNextProposalID(ctx context.Context, subnetID uint32, id uint64) {
	setUint64(k.getStore(ctx), GetNextProposalIDKey(subnetID), id)
}

// GetProposal returns proposal proposalID of subnet.
func (k Keeper) GetProposal(ctx context.Context, subnetID uint32, proposalID uint64) (types.Proposal, bool) {
	var proposal types.Proposal
	found := k.getRecord(k.getStore(ctx), GetProposalKey(subnetID, proposalID), &proposal)
	return proposal, found
}

// SetProposal stores proposal.
func (k Keeper) SetProposal(ctx context.Context, proposal types.Proposal) {
	k.setRecord(k.getStore(ctx), GetProposalKey(proposal.SubnetID, proposal.ID), proposal)
}

// IterateProposals walks every stored proposal.
func (k Keeper) IterateProposals(ctx context.Context, cb func(types.Proposal) (stop bool)) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), ProposalPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var proposal types.Proposal
		k.cdc.MustUnmarshal(iterator.Value(), &proposal)
		if cb(proposal) {
			break
		}
	}
}

// restoreActiveProposal rebuilds the open-proposal index for an imported
// proposal.
func (k Keeper) restoreActiveProposal(ctx context.Context, p types.Proposal) {
	if p.Complete {
		return
	}
	k.getStore(ctx).Set(GetActiveProposalKey(p.SubnetID,
		sdk.MustAccAddressFromBech32(p.Plaintiff), sdk.MustAccAddressFromBech32(p.Defendant)),
		sdk.Uint64ToBigEndian(p.ID))
}
