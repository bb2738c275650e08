package keeper_test

import (
	sdkmath "cosmossdk.io/math"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	keepertest "github.com/paw-chain/tensornet/testutil/keeper"
	"github.com/paw-chain/tensornet/x/network/keeper"
	"github.com/paw-chain/tensornet/x/network/types"
)

func (s *KeeperTestSuite) queryServer() types.QueryServer {
	return keeper.NewQueryServerImpl(*s.keeper)
}

func (s *KeeperTestSuite) requireCode(err error, code codes.Code) {
	s.Require().Error(err)
	st, ok := status.FromError(err)
	s.Require().True(ok, "not a grpc status: %v", err)
	s.Require().Equal(code, st.Code())
}

func (s *KeeperTestSuite) TestQueryParams() {
	resp, err := s.queryServer().Params(s.ctx, &types.QueryParamsRequest{})
	s.Require().NoError(err)
	s.Require().Equal(s.keeper.GetParams(s.ctx), resp.Params)

	_, err = s.queryServer().Params(s.ctx, nil)
	s.requireCode(err, codes.InvalidArgument)
}

func (s *KeeperTestSuite) TestQuerySubnet() {
	id, _ := s.createSubnet("query/subnet", 3)
	qs := s.queryServer()

	byID, err := qs.Subnet(s.ctx, &types.QuerySubnetRequest{ID: id})
	s.Require().NoError(err)
	s.Require().Equal("query/subnet", byID.Subnet.Path)
	s.Require().Equal(uint32(3), byID.NodeCount)
	s.Require().Equal(sdkmath.NewUint(3*testStake), byID.Stake)

	byPath, err := qs.Subnet(s.ctx, &types.QuerySubnetRequest{Path: "query/subnet"})
	s.Require().NoError(err)
	s.Require().Equal(byID, byPath)

	_, err = qs.Subnet(s.ctx, &types.QuerySubnetRequest{})
	s.requireCode(err, codes.InvalidArgument)
	_, err = qs.Subnet(s.ctx, &types.QuerySubnetRequest{ID: 404})
	s.requireCode(err, codes.NotFound)
}

func (s *KeeperTestSuite) TestQuerySubnetNodes() {
	id, _ := s.createSubnet("query/nodes", 3)
	s.Require().NoError(s.keeper.SetNodeTenure(s.ctx, 1, 2, 3))
	s.atHeight(int64(epochLength))
	late := keepertest.TestAddr(8200)
	s.ledger.Fund(s.ctx, late, testFunds)
	s.Require().NoError(s.keeper.AddSubnetNode(s.ctx, late, id, keepertest.TestPeerID(8200), sdkmath.NewUint(testStake)))
	qs := s.queryServer()

	all, err := qs.SubnetNodes(s.ctx, &types.QuerySubnetNodesRequest{SubnetID: id})
	s.Require().NoError(err)
	s.Require().Equal(uint64(1), all.Epoch)
	s.Require().Len(all.Nodes, 4)

	included, err := qs.SubnetNodes(s.ctx, &types.QuerySubnetNodesRequest{SubnetID: id, Class: types.NodeClassIncluded.String()})
	s.Require().NoError(err)
	s.Require().Len(included.Nodes, 3)

	submittable, err := qs.SubnetNodes(s.ctx, &types.QuerySubnetNodesRequest{SubnetID: id, Class: types.NodeClassSubmittable.String()})
	s.Require().NoError(err)
	s.Require().Empty(submittable.Nodes)

	_, err = qs.SubnetNodes(s.ctx, &types.QuerySubnetNodesRequest{SubnetID: id, Class: "royalty"})
	s.requireCode(err, codes.InvalidArgument)
	_, err = qs.SubnetNodes(s.ctx, &types.QuerySubnetNodesRequest{SubnetID: 404})
	s.requireCode(err, codes.NotFound)
}

func (s *KeeperTestSuite) TestQueryEpochState() {
	id, nodes := s.createActiveSubnet("query/epoch", 3)
	s.startEpoch(1)
	v := s.validatorIndex(id, 1, nodes)
	s.Require().NoError(s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, scoresFor(nodes, 1)))
	accountant := s.keeper.GetSubnetAccountants(s.ctx, id, 1)[0]
	s.Require().NoError(s.keeper.SubmitAccountantData(s.ctx, accountant, id, []byte("books")))
	qs := s.queryServer()

	count, err := qs.UnconfirmedEpochCount(s.ctx, &types.QueryUnconfirmedEpochCountRequest{SubnetID: id})
	s.Require().NoError(err)
	s.Require().Equal(uint64(1), count.Count)

	submission, err := qs.RewardsSubmission(s.ctx, &types.QueryRewardsSubmissionRequest{SubnetID: id, Epoch: 1})
	s.Require().NoError(err)
	s.Require().Equal(nodes[v].addr.String(), submission.Submission.Validator)
	_, err = qs.RewardsSubmission(s.ctx, &types.QueryRewardsSubmissionRequest{SubnetID: id, Epoch: 9})
	s.requireCode(err, codes.NotFound)

	report, err := qs.AccountantReport(s.ctx, &types.QueryAccountantReportRequest{SubnetID: id, Epoch: 1, Accountant: accountant.String()})
	s.Require().NoError(err)
	s.Require().Equal([]byte("books"), report.Report.Data)
	_, err = qs.AccountantReport(s.ctx, &types.QueryAccountantReportRequest{SubnetID: id, Epoch: 1, Accountant: "bogus"})
	s.requireCode(err, codes.InvalidArgument)
	_, err = qs.AccountantReport(s.ctx, &types.QueryAccountantReportRequest{SubnetID: id, Epoch: 2, Accountant: accountant.String()})
	s.requireCode(err, codes.NotFound)
}

func (s *KeeperTestSuite) TestQueryProposal() {
	id, nodes := s.createSubnet("query/proposal", 3)
	proposalID, err := s.keeper.Propose(s.ctx, nodes[0].addr, id, nodes[1].peerID, nil)
	s.Require().NoError(err)
	qs := s.queryServer()

	resp, err := qs.Proposal(s.ctx, &types.QueryProposalRequest{SubnetID: id, ProposalID: proposalID})
	s.Require().NoError(err)
	s.Require().Equal(nodes[0].addr.String(), resp.Proposal.Plaintiff)
	_, err = qs.Proposal(s.ctx, &types.QueryProposalRequest{SubnetID: id, ProposalID: 7})
	s.requireCode(err, codes.NotFound)
}

func (s *KeeperTestSuite) TestQueryStakes() {
	id, nodes := s.createSubnet("query/stake", 3)
	delegator := keepertest.TestAddr(8300)
	s.ledger.Fund(s.ctx, delegator, testFunds)
	shares, err := s.keeper.AddDelegateStake(s.ctx, delegator, id, sdkmath.NewUint(1_000_000))
	s.Require().NoError(err)
	qs := s.queryServer()

	stake, err := qs.AccountStake(s.ctx, &types.QueryAccountStakeRequest{Account: nodes[0].addr.String(), SubnetID: id})
	s.Require().NoError(err)
	s.Require().Equal(sdkmath.NewUint(testStake), stake.Stake)
	s.Require().Equal(sdkmath.NewUint(testStake), stake.AccountTotal)
	_, err = qs.AccountStake(s.ctx, &types.QueryAccountStakeRequest{Account: "nope"})
	s.requireCode(err, codes.InvalidArgument)

	delegated, err := qs.DelegateStake(s.ctx, &types.QueryDelegateStakeRequest{Account: delegator.String(), SubnetID: id})
	s.Require().NoError(err)
	s.Require().Equal(shares, delegated.Shares)
	s.Require().True(delegated.Balance.LTE(sdkmath.NewUint(1_000_000)))
	s.Require().Equal(sdkmath.NewUint(1_000_000), delegated.Pool.TotalBalance)

	empty, err := qs.DelegateStake(s.ctx, &types.QueryDelegateStakeRequest{Account: nodes[0].addr.String(), SubnetID: id})
	s.Require().NoError(err)
	s.Require().True(empty.Shares.IsZero())
	s.Require().True(empty.Balance.IsZero())

	floor, err := qs.MinSubnetNodes(s.ctx, &types.QueryMinSubnetNodesRequest{MemoryMB: 80_000})
	s.Require().NoError(err)
	s.Require().Equal(uint32(5), floor.MinNodes)
	_, err = qs.MinSubnetNodes(s.ctx, &types.QueryMinSubnetNodesRequest{})
	s.requireCode(err, codes.InvalidArgument)
}

func (s *KeeperTestSuite) TestQueryPenalties() {
	id, nodes := s.createActiveSubnet("query/penalties", 3)
	s.startEpoch(1)
	v := s.validatorIndex(id, 1, nodes)
	s.startEpoch(2)
	qs := s.queryServer()

	resp, err := qs.Penalties(s.ctx, &types.QueryPenaltiesRequest{Account: nodes[v].addr.String(), SubnetID: id})
	s.Require().NoError(err)
	s.Require().Equal(uint64(1), resp.AccountPenalties)
	s.Require().Equal(uint64(1), resp.SubnetPenalties)

	_, err = qs.Penalties(s.ctx, &types.QueryPenaltiesRequest{})
	s.requireCode(err, codes.InvalidArgument)
	_, err = qs.Penalties(s.ctx, &types.QueryPenaltiesRequest{Account: "nope"})
	s.requireCode(err, codes.InvalidArgument)
}
