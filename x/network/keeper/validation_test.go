package keeper_test

import (
	sdkmath "cosmossdk.io/math"

	keepertest "github.com/paw-chain/tensornet/testutil/keeper"
	"github.com/paw-chain/tensornet/x/network/types"
)

func (s *KeeperTestSuite) TestSubmitRewards() {
	id, nodes := s.createActiveSubnet("submit", 5)
	s.startEpoch(1)
	s.midEpoch(1)
	v := s.validatorIndex(id, 1, nodes)
	other := nodes[(v+1)%len(nodes)]

	err := s.keeper.SubmitRewards(s.ctx, other.addr, id, scoresFor(nodes, 10))
	s.Require().ErrorIs(err, types.ErrInvalidValidator)

	data := scoresFor(nodes, 10)
	data = append(data,
		types.NodeScore{PeerID: nodes[0].peerID, Score: sdkmath.NewUint(999)}, // duplicate keeps the first score
		types.NodeScore{PeerID: keepertest.TestPeerID(31337), Score: sdkmath.NewUint(50)},
	)
	s.Require().NoError(s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, data))

	submission, found := s.keeper.GetRewardsSubmission(s.ctx, id, 1)
	s.Require().True(found)
	s.Require().Len(submission.Data, len(nodes))
	s.Require().Equal(sdkmath.NewUint(10*uint64(len(nodes))), submission.Sum)
	score, _ := submission.ScoreFor(nodes[0].peerID)
	s.Require().Equal(sdkmath.NewUint(10), score)
	s.Require().Equal(uint32(len(nodes)), submission.NodesCount)
	s.Require().True(submission.HasAttested(nodes[v].addr.String()))
	s.Require().False(submission.Complete)
	s.Require().Equal(uint64(1), s.keeper.UnconfirmedEpochCount(s.ctx, id))

	err = s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, data)
	s.Require().ErrorIs(err, types.ErrRewardsAlreadySubmitted)
}

func (s *KeeperTestSuite) TestSubmitRewardsRejectsBadScores() {
	id, nodes := s.createActiveSubnet("submit-bad", 3)
	s.startEpoch(1)
	v := s.validatorIndex(id, 1, nodes)

	err := s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, []types.NodeScore{{PeerID: "", Score: sdkmath.NewUint(1)}})
	s.Require().ErrorIs(err, types.ErrInvalidScore)
	err = s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, []types.NodeScore{{PeerID: nodes[0].peerID, Score: types.MaxBalance.AddUint64(1)}})
	s.Require().ErrorIs(err, types.ErrInvalidScore)
	err = s.keeper.SubmitRewards(s.ctx, nodes[v].addr, 12, nil)
	s.Require().ErrorIs(err, types.ErrSubnetNotFound)

	// Roles only count for the epoch they were elected in.
	s.atHeight(int64(2*epochLength) + 1)
	err = s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, scoresFor(nodes, 1))
	s.Require().ErrorIs(err, types.ErrInvalidValidator)
}

func (s *KeeperTestSuite) TestAttest() {
	id, nodes := s.createActiveSubnet("attest", 5)
	s.startEpoch(1)
	v := s.validatorIndex(id, 1, nodes)
	other := nodes[(v+1)%len(nodes)]

	s.Require().ErrorIs(s.keeper.Attest(s.ctx, other.addr, id), types.ErrNoRewardsSubmission)
	s.Require().NoError(s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, scoresFor(nodes, 1)))

	s.Require().NoError(s.keeper.Attest(s.ctx, other.addr, id))
	s.Require().ErrorIs(s.keeper.Attest(s.ctx, other.addr, id), types.ErrAlreadyAttested)
	s.Require().ErrorIs(s.keeper.Attest(s.ctx, nodes[v].addr, id), types.ErrAlreadyAttested)
	s.Require().ErrorIs(s.keeper.Attest(s.ctx, keepertest.TestAddr(4444), id), types.ErrSubnetNodeNotFound)
	s.Require().True(hasEvent(s.ctx.EventManager().Events(), types.EventTypeNetworkAttestation))

	submission, _ := s.keeper.GetRewardsSubmission(s.ctx, id, 1)
	s.Require().Len(submission.Attests, 2)
	s.Require().Equal(types.RatioPercent(2, 5), submission.AttestationRatio())

	submission.Complete = true
	s.keeper.SetRewardsSubmission(s.ctx, submission)
	third := nodes[(v+2)%len(nodes)]
	s.Require().ErrorIs(s.keeper.Attest(s.ctx, third.addr, id), types.ErrSubmissionComplete)
}

func (s *KeeperTestSuite) TestAttestRequiresIncludedClass() {
	id, nodes := s.createActiveSubnet("attest-class", 3)
	s.Require().NoError(s.keeper.SetNodeTenure(s.ctx, 1, 1, 1))
	s.startEpoch(1)
	v := s.validatorIndex(id, 1, nodes)

	// A node joining in epoch 1 is only registered until epoch 2.
	newcomer := keepertest.TestAddr(4500)
	s.ledger.Fund(s.ctx, newcomer, testFunds)
	s.Require().NoError(s.keeper.AddSubnetNode(s.ctx, newcomer, id, keepertest.TestPeerID(4500), sdkmath.NewUint(testStake)))

	data := append(scoresFor(nodes, 5), types.NodeScore{PeerID: keepertest.TestPeerID(4500), Score: sdkmath.NewUint(5)})
	s.Require().NoError(s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, data))
	submission, _ := s.keeper.GetRewardsSubmission(s.ctx, id, 1)
	s.Require().Len(submission.Data, len(nodes), "unqualified peer kept in the score vector")
	s.Require().Equal(uint32(len(nodes)), submission.NodesCount)

	s.Require().ErrorIs(s.keeper.Attest(s.ctx, newcomer, id), types.ErrNodeNotEligible)
}

func (s *KeeperTestSuite) TestSubmitAccountantData() {
	id, nodes := s.createActiveSubnet("audit", 6)
	s.startEpoch(1)
	accountants := s.keeper.GetSubnetAccountants(s.ctx, id, 1)
	s.Require().NotEmpty(accountants)
	accountant := accountants[0]

	v := s.validatorIndex(id, 1, nodes)
	err := s.keeper.SubmitAccountantData(s.ctx, nodes[v].addr, id, []byte("audit"))
	s.Require().ErrorIs(err, types.ErrNotAccountant)

	tooLarge := make([]byte, types.MaxAccountantDataLength+1)
	s.Require().ErrorIs(s.keeper.SubmitAccountantData(s.ctx, accountant, id, tooLarge), types.ErrInvalidData)

	s.Require().NoError(s.keeper.SubmitAccountantData(s.ctx, accountant, id, []byte("audit")))
	report, found := s.keeper.GetAccountantReport(s.ctx, id, 1, accountant)
	s.Require().True(found)
	s.Require().Equal([]byte("audit"), report.Data)
	s.Require().Equal(accountant.String(), report.Accountant)

	err = s.keeper.SubmitAccountantData(s.ctx, accountant, id, []byte("again"))
	s.Require().ErrorIs(err, types.ErrAccountantDataExists)
}
