package keeper_test

import (
	sdkmath "cosmossdk.io/math"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	keepertest "github.com/paw-chain/tensornet/testutil/keeper"
	"github.com/paw-chain/tensornet/x/network/keeper"
	"github.com/paw-chain/tensornet/x/network/types"
)

func (s *KeeperTestSuite) msgServer() types.MsgServer {
	return keeper.NewMsgServerImpl(*s.keeper)
}

func (s *KeeperTestSuite) TestMsgRegisterSubnet() {
	ms := s.msgServer()

	resp, err := ms.RegisterSubnet(s.ctx, &types.MsgRegisterSubnet{
		Authority: s.keeper.GetAuthority(),
		Path:      "msg/subnet",
		MemoryMB:  testMemoryMB,
	})
	s.Require().NoError(err)
	s.Require().Equal(uint32(1), resp.SubnetID)

	_, err = ms.RegisterSubnet(s.ctx, &types.MsgRegisterSubnet{
		Authority: keepertest.TestAddr(1).String(),
		Path:      "msg/other",
		MemoryMB:  testMemoryMB,
	})
	s.Require().ErrorIs(err, govtypes.ErrInvalidSigner)
	s.Require().ErrorContains(err, keepertest.TestAddr(1).String())

	_, err = ms.RegisterSubnet(s.ctx, &types.MsgRegisterSubnet{Authority: "bogus", Path: "msg/x", MemoryMB: 1})
	s.Require().ErrorIs(err, types.ErrInvalidAddress)
	_, found := s.keeper.GetSubnetByPath(s.ctx, "msg/other")
	s.Require().False(found)
}

func (s *KeeperTestSuite) TestMsgNodeLifecycle() {
	id, _ := s.createSubnet("msg/nodes", 2)
	ms := s.msgServer()
	account := keepertest.TestAddr(9100)
	s.ledger.Fund(s.ctx, account, testFunds)
	s.Require().NoError(s.keeper.SetStakeRateLimit(s.ctx, 0))

	_, err := ms.AddSubnetNode(s.ctx, &types.MsgAddSubnetNode{
		Account:  account.String(),
		SubnetID: id,
		PeerID:   keepertest.TestPeerID(9100),
		Stake:    sdkmath.NewUint(testStake),
	})
	s.Require().NoError(err)

	_, err = ms.ActivateSubnet(s.ctx, &types.MsgActivateSubnet{Signer: account.String(), SubnetID: id})
	s.Require().NoError(err)

	_, err = ms.AddStake(s.ctx, &types.MsgAddStake{Account: account.String(), SubnetID: id, Amount: sdkmath.NewUint(500)})
	s.Require().NoError(err)
	_, err = ms.RemoveStake(s.ctx, &types.MsgRemoveStake{Account: account.String(), SubnetID: id, Amount: sdkmath.NewUint(500)})
	s.Require().NoError(err)
	_, err = ms.AddStake(s.ctx, &types.MsgAddStake{Account: account.String(), SubnetID: id, Amount: sdkmath.ZeroUint()})
	s.Require().ErrorIs(err, types.ErrInvalidAmount)

	_, err = ms.RemoveSubnetNode(s.ctx, &types.MsgRemoveSubnetNode{Account: account.String(), SubnetID: id})
	s.Require().NoError(err)
	_, found := s.keeper.GetSubnetNode(s.ctx, id, account)
	s.Require().False(found)
	s.Require().Equal(sdkmath.NewUint(testStake), s.keeper.GetAccountSubnetStake(s.ctx, account, id))
}

func (s *KeeperTestSuite) TestMsgDelegateStake() {
	id, _ := s.createSubnet("msg/delegate", 3)
	s.Require().NoError(s.keeper.SetStakeRateLimit(s.ctx, 0))
	ms := s.msgServer()
	delegator := keepertest.TestAddr(9200)
	s.ledger.Fund(s.ctx, delegator, testFunds)

	added, err := ms.AddDelegateStake(s.ctx, &types.MsgAddDelegateStake{Account: delegator.String(), SubnetID: id, Amount: sdkmath.NewUint(2_000_000)})
	s.Require().NoError(err)
	s.Require().False(added.Shares.IsZero())

	removed, err := ms.RemoveDelegateStake(s.ctx, &types.MsgRemoveDelegateStake{Account: delegator.String(), SubnetID: id, Shares: added.Shares})
	s.Require().NoError(err)
	s.Require().True(removed.Amount.LTE(sdkmath.NewUint(2_000_000)))
}

func (s *KeeperTestSuite) TestMsgEpochFlow() {
	id, nodes := s.createActiveSubnet("msg/epoch", 3)
	s.startEpoch(1)
	ms := s.msgServer()
	v := s.validatorIndex(id, 1, nodes)
	other := nodes[(v+1)%len(nodes)]

	_, err := ms.SubmitRewards(s.ctx, &types.MsgSubmitRewards{Validator: nodes[v].addr.String(), SubnetID: id, Data: scoresFor(nodes, 2)})
	s.Require().NoError(err)
	_, err = ms.Attest(s.ctx, &types.MsgAttest{Account: other.addr.String(), SubnetID: id})
	s.Require().NoError(err)

	accountant := s.keeper.GetSubnetAccountants(s.ctx, id, 1)[0]
	_, err = ms.SubmitAccountantData(s.ctx, &types.MsgSubmitAccountantData{Accountant: accountant.String(), SubnetID: id, Data: []byte("ok")})
	s.Require().NoError(err)

	submission, _ := s.keeper.GetRewardsSubmission(s.ctx, id, 1)
	s.Require().Len(submission.Attests, 2)
}

func (s *KeeperTestSuite) TestMsgProposalFlow() {
	id, nodes := s.createSubnet("msg/proposal", 3)
	ms := s.msgServer()

	proposed, err := ms.Propose(s.ctx, &types.MsgPropose{Plaintiff: nodes[0].addr.String(), SubnetID: id, DefendantPeerID: nodes[1].peerID})
	s.Require().NoError(err)
	s.atHeight(2)
	_, err = ms.ChallengeProposal(s.ctx, &types.MsgChallengeProposal{Defendant: nodes[1].addr.String(), SubnetID: id, ProposalID: proposed.ProposalID})
	s.Require().NoError(err)
	_, err = ms.VoteProposal(s.ctx, &types.MsgVoteProposal{Voter: nodes[2].addr.String(), SubnetID: id, ProposalID: proposed.ProposalID, Vote: types.VoteOptionYay})
	s.Require().NoError(err)
	_, err = ms.VoteProposal(s.ctx, &types.MsgVoteProposal{Voter: nodes[2].addr.String(), SubnetID: id, ProposalID: proposed.ProposalID, Vote: types.VoteOptionUnspecified})
	s.Require().ErrorIs(err, types.ErrInvalidVote)

	s.atHeight(2 + s.keeper.GetParams(s.ctx).VotingPeriod)
	executed, err := ms.ExecuteProposal(s.ctx, &types.MsgExecuteProposal{Signer: nodes[2].addr.String(), SubnetID: id, ProposalID: proposed.ProposalID})
	s.Require().NoError(err)
	s.Require().Equal(types.ProposalOutcomePlaintiffWins, executed.Outcome)

	second, err := ms.Propose(s.ctx, &types.MsgPropose{Plaintiff: nodes[0].addr.String(), SubnetID: id, DefendantPeerID: nodes[2].peerID})
	s.Require().ErrorIs(err, types.ErrNotEnoughAccountants)
	s.Require().Nil(second)
}

func (s *KeeperTestSuite) TestMsgCancelProposal() {
	id, nodes := s.createSubnet("msg/cancel", 3)
	ms := s.msgServer()
	proposed, err := ms.Propose(s.ctx, &types.MsgPropose{Plaintiff: nodes[0].addr.String(), SubnetID: id, DefendantPeerID: nodes[1].peerID})
	s.Require().NoError(err)

	_, err = ms.CancelProposal(s.ctx, &types.MsgCancelProposal{Plaintiff: nodes[0].addr.String(), SubnetID: id, ProposalID: proposed.ProposalID})
	s.Require().NoError(err)
	s.Require().Equal(sdkmath.NewUint(startBalance), s.balanceOf(nodes[0]))
}

// A message failing after it wrote state leaves nothing behind.
func (s *KeeperTestSuite) TestMsgFailureIsAtomic() {
	id, nodes := s.createSubnet("msg/atomic", 3)
	hooks := &recordingHooks{failResolved: true}
	s.keeper.SetHooks(hooks)
	ms := s.msgServer()

	proposed, err := ms.Propose(s.ctx, &types.MsgPropose{Plaintiff: nodes[0].addr.String(), SubnetID: id, DefendantPeerID: nodes[1].peerID})
	s.Require().NoError(err)
	s.atHeight(1 + s.keeper.GetParams(s.ctx).ChallengePeriod)

	// Settlement refunds the bond and removes the defendant before the hook fails.
	_, err = ms.ExecuteProposal(s.ctx, &types.MsgExecuteProposal{Signer: nodes[2].addr.String(), SubnetID: id, ProposalID: proposed.ProposalID})
	s.Require().ErrorIs(err, errHookFailed)
	s.Require().Equal(sdkmath.NewUint(startBalance-bond), s.balanceOf(nodes[0]))
	_, found := s.keeper.GetSubnetNode(s.ctx, id, nodes[1].addr)
	s.Require().True(found)
	proposal, _ := s.keeper.GetProposal(s.ctx, id, proposed.ProposalID)
	s.Require().False(proposal.Complete)
	s.Require().Zero(s.keeper.GetAccountPenaltyCount(s.ctx, nodes[1].addr))

	_, err = ms.UpdateParams(s.ctx, &types.MsgUpdateParams{Authority: s.keeper.GetAuthority(), Params: types.Params{}})
	s.Require().Error(err)
	s.Require().Equal(types.DefaultParams().EpochLength, s.keeper.GetParams(s.ctx).EpochLength)
}

func (s *KeeperTestSuite) TestMsgUpdateParams() {
	ms := s.msgServer()
	params := s.keeper.GetParams(s.ctx)
	params.AccountantsPerEpoch = 5

	_, err := ms.UpdateParams(s.ctx, &types.MsgUpdateParams{Authority: keepertest.TestAddr(3).String(), Params: params})
	s.Require().ErrorIs(err, govtypes.ErrInvalidSigner)

	_, err = ms.UpdateParams(s.ctx, &types.MsgUpdateParams{Authority: s.keeper.GetAuthority(), Params: params})
	s.Require().NoError(err)
	s.Require().Equal(uint32(5), s.keeper.GetParams(s.ctx).AccountantsPerEpoch)
	s.Require().True(hasEvent(s.ctx.EventManager().Events(), types.EventTypeNetworkParamsUpdated))
}

func (s *KeeperTestSuite) TestMsgSetParam() {
	ms := s.msgServer()
	authority := s.keeper.GetAuthority()

	_, err := ms.SetParam(s.ctx, &types.MsgSetParam{Authority: authority, Key: "reward_per_epoch", Value: "42"})
	s.Require().NoError(err)
	s.Require().Equal(sdkmath.NewUint(42), s.keeper.GetParams(s.ctx).RewardPerEpoch)

	_, err = ms.SetParam(s.ctx, &types.MsgSetParam{Authority: keepertest.TestAddr(3).String(), Key: "reward_per_epoch", Value: "1"})
	s.Require().ErrorIs(err, govtypes.ErrInvalidSigner)
	_, err = ms.SetParam(s.ctx, &types.MsgSetParam{Authority: authority, Key: "no_such_param", Value: "1"})
	s.Require().ErrorIs(err, types.ErrInvalidParams)
	// A value that breaks cross-field validation is rejected whole.
	_, err = ms.SetParam(s.ctx, &types.MsgSetParam{Authority: authority, Key: "min_attestation_percentage", Value: "9000"})
	s.Require().Error(err)
	s.Require().Equal(types.DefaultParams().MinAttestationPercentage, s.keeper.GetParams(s.ctx).MinAttestationPercentage)
}
