package keeper_test

import (
	"context"
	"errors"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/paw-chain/tensornet/x/network/keeper"
	"github.com/paw-chain/tensornet/x/network/types"
	sharedabci "github.com/paw-chain/tensornet/x/shared/abci"
)

var errHookFailed = errors.New("hook failed")

type recordingHooks struct {
	removed      []string
	slashed      []sdkmath.Uint
	resolved     []types.ProposalOutcome
	failResolved bool
	failSlashed  bool
	failRemoved  bool
}

var _ types.NetworkHooks = (*recordingHooks)(nil)

func (h *recordingHooks) AfterSubnetNodeRemoved(_ context.Context, _ uint32, _ sdk.AccAddress, reason string) error {
	if h.failRemoved {
		return errHookFailed
	}
	h.removed = append(h.removed, reason)
	return nil
}

func (h *recordingHooks) AfterAccountSlashed(_ context.Context, _ uint32, _ sdk.AccAddress, amount sdkmath.Uint) error {
	if h.failSlashed {
		return errHookFailed
	}
	h.slashed = append(h.slashed, amount)
	return nil
}

func (h *recordingHooks) AfterProposalResolved(_ context.Context, _ uint32, _ uint64, outcome types.ProposalOutcome) error {
	if h.failResolved {
		return errHookFailed
	}
	h.resolved = append(h.resolved, outcome)
	return nil
}

func (s *KeeperTestSuite) TestHooksObserveRemovalAndSlash() {
	hooks := &recordingHooks{}
	s.keeper.SetHooks(hooks)
	id, nodes := s.createActiveSubnet("hooks", 3)
	s.startEpoch(1)
	s.startEpoch(2)

	s.Require().Equal([]sdkmath.Uint{sdkmath.NewUint(500_000)}, hooks.slashed)

	s.Require().NoError(s.keeper.RemoveSubnetNode(s.ctx, nodes[0].addr, id, types.RemovalReasonVoluntary))
	s.Require().Equal([]string{types.RemovalReasonVoluntary}, hooks.removed)
}

func (s *KeeperTestSuite) TestFailedRemovalIsNotCounted() {
	s.keeper.SetHooks(&recordingHooks{failRemoved: true})
	id, nodes := s.createSubnet("hooks-fail", 3)
	removals := keeper.GetNetworkMetrics().NodeRemovals.WithLabelValues(types.RemovalReasonVoluntary)
	before := testutil.ToFloat64(removals)

	err := s.keeper.RemoveSubnetNode(s.ctx, nodes[0].addr, id, types.RemovalReasonVoluntary)
	s.Require().ErrorIs(err, errHookFailed)
	s.Require().Equal(before, testutil.ToFloat64(removals))
}

func (s *KeeperTestSuite) TestHooksObserveProposalResolution() {
	hooks := &recordingHooks{}
	s.keeper.SetHooks(hooks)
	id, nodes := s.createSubnet("hooks-proposal", 4)
	proposalID, err := s.keeper.Propose(s.ctx, nodes[0].addr, id, nodes[1].peerID, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.keeper.CancelProposal(s.ctx, nodes[0].addr, id, proposalID))

	s.Require().Equal([]types.ProposalOutcome{types.ProposalOutcomeCancelled}, hooks.resolved)
}

// A failing subnet is rolled back without stopping the others.
func (s *KeeperTestSuite) TestRewardTickIsolatesFailingSubnet() {
	s.keeper.SetHooks(&recordingHooks{failSlashed: true})
	a, aNodes := s.createActiveSubnet("isolate-a", 3)
	b, bNodes := s.createActiveSubnet("isolate-b", 3)
	s.startEpoch(1)

	av := s.validatorIndex(a, 1, aNodes)
	s.Require().NoError(s.keeper.SubmitRewards(s.ctx, aNodes[av].addr, a, scoresFor(aNodes, 1)))
	s.attestWith(a, aNodes, av, 2)
	bv := s.validatorIndex(b, 1, bNodes)
	slashes := testutil.ToFloat64(keeper.GetNetworkMetrics().Slashes)
	s.startEpoch(2)

	s.Require().True(s.stakeOf(a, aNodes[av]).GT(sdkmath.NewUint(testStake)))
	// Subnet b failed while slashing its silent validator.
	s.Require().Equal(sdkmath.NewUint(testStake), s.stakeOf(b, bNodes[bv]))
	s.Require().Zero(s.keeper.GetSubnetPenaltyCount(s.ctx, b))
	// The rolled back slash is not counted either.
	s.Require().Equal(slashes, testutil.ToFloat64(keeper.GetNetworkMetrics().Slashes))
	s.Require().True(hasEvent(s.ctx.EventManager().Events(), sharedabci.EventTypeBlockerError))

	msg, broken := keeperInvariants(s)
	s.Require().False(broken, msg)
}
