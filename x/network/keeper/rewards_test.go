package keeper_test

import (
	sdkmath "cosmossdk.io/math"

	keepertest "github.com/paw-chain/tensornet/testutil/keeper"
	"github.com/paw-chain/tensornet/x/network/types"
)

// attestWith has the first n nodes of nodes other than the validator at v
// attest the subnet's current submission.
func (s *KeeperTestSuite) attestWith(id uint32, nodes []testNode, v int, n int, skip ...int) {
	skipped := map[int]bool{v: true}
	for _, i := range skip {
		skipped[i] = true
	}
	for i := range nodes {
		if n == 0 {
			return
		}
		if skipped[i] {
			continue
		}
		s.Require().NoError(s.keeper.Attest(s.ctx, nodes[i].addr, id))
		n--
	}
	s.Require().Zero(n, "not enough attesters")
}

func without(nodes []testNode, i int) []testNode {
	out := make([]testNode, 0, len(nodes)-1)
	out = append(out, nodes[:i]...)
	return append(out, nodes[i+1:]...)
}

func (s *KeeperTestSuite) TestRewardsEndToEnd() {
	s.Require().NoError(s.keeper.SetMinAttestationPercentage(s.ctx, 6_000))
	id, nodes := s.createActiveSubnet("rewards", 10)
	s.startEpoch(1)
	s.midEpoch(1)

	v := s.validatorIndex(id, 1, nodes)
	absent := (v + 1) % len(nodes)
	// attestWith picks attesters in index order, so the first other node attests.
	returning := 0
	for returning == v || returning == absent {
		returning++
	}
	node, _ := s.keeper.GetSubnetNode(s.ctx, id, nodes[returning].addr)
	node.Absences = 1
	s.keeper.SetSubnetNode(s.ctx, node)

	accountants := s.keeper.GetSubnetAccountants(s.ctx, id, 1)
	s.Require().Len(accountants, 2)
	s.Require().NoError(s.keeper.SubmitAccountantData(s.ctx, accountants[0], id, []byte("ok")))

	// Nine of ten scored; the validator and six peers attest.
	s.Require().NoError(s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, scoresFor(without(nodes, absent), 100)))
	s.attestWith(id, nodes, v, 6, absent)

	s.startEpoch(2)

	submission, _ := s.keeper.GetRewardsSubmission(s.ctx, id, 1)
	s.Require().True(submission.Complete)
	s.Require().Equal(uint64(7_000), submission.AttestationRatio())

	// Nine equal nodes: 1111 of stake and 1111 of score blend to 1110 of the emission.
	nodeReward := uint64(1_110_000_000)
	validatorBonus := uint64(70_000_000)
	for i, n := range nodes {
		switch i {
		case v:
			s.Require().Equal(sdkmath.NewUint(testStake+nodeReward+validatorBonus), s.stakeOf(id, n))
		case absent:
			s.Require().Equal(sdkmath.NewUint(testStake), s.stakeOf(id, n))
		default:
			s.Require().Equal(sdkmath.NewUint(testStake+nodeReward), s.stakeOf(id, n), "node %d", i)
		}
	}
	s.Require().Equal(sdkmath.NewUint(10*testStake+9*nodeReward+validatorBonus), s.keeper.GetTotalStake(s.ctx))

	node, found := s.keeper.GetSubnetNode(s.ctx, id, nodes[absent].addr)
	s.Require().True(found)
	s.Require().Equal(uint32(1), node.Absences)
	node, _ = s.keeper.GetSubnetNode(s.ctx, id, nodes[returning].addr)
	s.Require().Zero(node.Absences)

	s.Require().Zero(s.keeper.GetAccountPenaltyCount(s.ctx, accountants[0]))
	s.Require().Equal(uint64(1), s.keeper.GetAccountPenaltyCount(s.ctx, accountants[1]))
	s.Require().Zero(s.keeper.GetAccountPenaltyCount(s.ctx, nodes[v].addr))
	s.Require().Zero(s.keeper.GetSubnetPenaltyCount(s.ctx, id))
	s.Require().Zero(s.keeper.UnconfirmedEpochCount(s.ctx, id))

	events := s.ctx.EventManager().Events()
	s.Require().True(hasEvent(events, types.EventTypeNetworkSubnetRewarded))
	s.Require().True(hasEvent(events, types.EventTypeNetworkEpochRewardsApplied))
	s.Require().False(hasEvent(events, types.EventTypeNetworkValidatorSlashed))
	s.Require().Empty(s.keeper.GetSubnetsInConsensus(s.ctx, 1))

	msg, broken := keeperInvariants(s)
	s.Require().False(broken, msg)
}

func (s *KeeperTestSuite) TestCleanEpochLowersSubnetPenalty() {
	id, nodes := s.createActiveSubnet("recovering", 5)
	s.startEpoch(1)
	s.startEpoch(2)
	s.Require().Equal(uint64(1), s.keeper.GetSubnetPenaltyCount(s.ctx, id))

	v := s.validatorIndex(id, 2, nodes)
	s.Require().NoError(s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, scoresFor(nodes, 1)))
	s.attestWith(id, nodes, v, 4)
	s.startEpoch(3)

	s.Require().True(hasEvent(s.ctx.EventManager().Events(), types.EventTypeNetworkSubnetRewarded))
	s.Require().Zero(s.keeper.GetSubnetPenaltyCount(s.ctx, id))
}

func (s *KeeperTestSuite) TestRewardsFundDelegatePool() {
	id, nodes := s.createActiveSubnet("rewards-delegate", 10)
	delegator := keepertest.TestAddr(6200)
	s.ledger.Fund(s.ctx, delegator, testFunds)
	_, err := s.keeper.AddDelegateStake(s.ctx, delegator, id, sdkmath.NewUint(1_000_000))
	s.Require().NoError(err)

	s.startEpoch(1)
	v := s.validatorIndex(id, 1, nodes)
	s.Require().NoError(s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, scoresFor(nodes, 7)))
	s.attestWith(id, nodes, v, 9)
	s.startEpoch(2)

	// 10% of the allotment goes to delegators, the rest splits ten ways.
	pool := s.keeper.GetDelegatePool(s.ctx, id)
	s.Require().Equal(sdkmath.NewUint(1_001_000_000), pool.TotalBalance)
	s.Require().Equal(pool.TotalBalance, s.keeper.GetTotalDelegateStake(s.ctx))
	s.Require().Equal(sdkmath.NewUint(testStake+900_000_000+100_000_000), s.stakeOf(id, nodes[v]))
	s.Require().Equal(sdkmath.NewUint(testStake+900_000_000), s.stakeOf(id, nodes[(v+1)%len(nodes)]))

	msg, broken := keeperInvariants(s)
	s.Require().False(broken, msg)
}

func (s *KeeperTestSuite) TestRewardsSplitAcrossSubnets() {
	a, aNodes := s.createActiveSubnet("split-a", 5)
	b, bNodes := s.createActiveSubnet("split-b", 5)
	s.startEpoch(1)

	for _, subnet := range []struct {
		id    uint32
		nodes []testNode
	}{{a, aNodes}, {b, bNodes}} {
		v := s.validatorIndex(subnet.id, 1, subnet.nodes)
		s.Require().NoError(s.keeper.SubmitRewards(s.ctx, subnet.nodes[v].addr, subnet.id, scoresFor(subnet.nodes, 1)))
		s.attestWith(subnet.id, subnet.nodes, v, 4)
	}
	s.startEpoch(2)

	// Equal stake halves the emission; each node holds a fifth of its subnet.
	for _, subnet := range []struct {
		id    uint32
		nodes []testNode
	}{{a, aNodes}, {b, bNodes}} {
		validator, _ := s.keeper.GetSubnetValidator(s.ctx, subnet.id, 1)
		for _, n := range subnet.nodes {
			want := uint64(testStake + 1_000_000_000)
			if n.addr.Equals(validator) {
				want += 100_000_000
			}
			s.Require().Equal(sdkmath.NewUint(want), s.stakeOf(subnet.id, n))
		}
	}
}

func (s *KeeperTestSuite) TestAttestationAtFloorIsRewarded() {
	s.Require().NoError(s.keeper.SetMinAttestationPercentage(s.ctx, 7_000))
	id, nodes := s.createActiveSubnet("floor", 10)
	s.startEpoch(1)
	v := s.validatorIndex(id, 1, nodes)
	absent := (v + 1) % len(nodes)

	s.Require().NoError(s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, scoresFor(without(nodes, absent), 3)))
	s.attestWith(id, nodes, v, 6, absent)
	s.startEpoch(2)

	events := s.ctx.EventManager().Events()
	s.Require().True(hasEvent(events, types.EventTypeNetworkSubnetRewarded))
	s.Require().False(hasEvent(events, types.EventTypeNetworkValidatorSlashed))
	s.Require().Zero(s.keeper.GetAccountPenaltyCount(s.ctx, nodes[v].addr))

	// The bonus scales with the 70% ratio on top of the node reward.
	bonus := types.PercentOf(s.keeper.GetParams(s.ctx).ValidatorReward, 7_000)
	s.Require().Equal(sdkmath.NewUint(70_000_000), bonus)
	nodeReward := s.stakeOf(id, nodes[(v+2)%len(nodes)]).SubUint64(testStake)
	s.Require().Equal(sdkmath.NewUint(testStake).Add(nodeReward).Add(bonus), s.stakeOf(id, nodes[v]))

	// 70% clears the removal consensus, so the absence counts.
	node, _ := s.keeper.GetSubnetNode(s.ctx, id, nodes[absent].addr)
	s.Require().Equal(uint32(1), node.Absences)
}

func (s *KeeperTestSuite) TestLowAttestationSlashesValidator() {
	id, nodes := s.createActiveSubnet("low-attest", 10)
	s.startEpoch(1)
	v := s.validatorIndex(id, 1, nodes)
	s.Require().NoError(s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, scoresFor(nodes, 1)))
	s.startEpoch(2)

	// Only the validator attested: 10% attestation scales the 5% slash to 4.5%.
	s.Require().Equal(sdkmath.NewUint(testStake-450_000), s.stakeOf(id, nodes[v]))
	s.Require().Equal(uint64(1), s.keeper.GetAccountPenaltyCount(s.ctx, nodes[v].addr))
	for i, n := range nodes {
		if i != v {
			s.Require().Equal(sdkmath.NewUint(testStake), s.stakeOf(id, n))
		}
	}

	events := s.ctx.EventManager().Events()
	s.Require().False(hasEvent(events, types.EventTypeNetworkSubnetRewarded))
	amount, ok := eventAttribute(events, types.EventTypeNetworkValidatorSlashed, types.AttributeKeyAmount)
	s.Require().True(ok)
	s.Require().Equal("450000", amount)

	msg, broken := keeperInvariants(s)
	s.Require().False(broken, msg)
}

func (s *KeeperTestSuite) TestMissingSubmissionPenalizesSubnetAndValidator() {
	id, nodes := s.createActiveSubnet("silent", 5)
	s.startEpoch(1)
	v := s.validatorIndex(id, 1, nodes)
	s.startEpoch(2)

	s.Require().Equal(uint64(1), s.keeper.GetSubnetPenaltyCount(s.ctx, id))
	s.Require().Equal(uint64(1), s.keeper.GetAccountPenaltyCount(s.ctx, nodes[v].addr))
	s.Require().Equal(sdkmath.NewUint(testStake-500_000), s.stakeOf(id, nodes[v]))
	s.Require().True(hasEvent(s.ctx.EventManager().Events(), types.EventTypeNetworkValidatorSlashed))
}

func (s *KeeperTestSuite) TestSlashCappedAtMaxSlashAmount() {
	s.Require().NoError(s.keeper.SetMaxSlashAmount(s.ctx, sdkmath.NewUint(1_000)))
	id, nodes := s.createActiveSubnet("slash-cap", 3)
	s.startEpoch(1)
	v := s.validatorIndex(id, 1, nodes)
	s.startEpoch(2)

	s.Require().Equal(sdkmath.NewUint(testStake-1_000), s.stakeOf(id, nodes[v]))
}

func (s *KeeperTestSuite) TestSlashBelowMinimumRemovesNode() {
	id, nodes := s.createActiveSubnet("slash-remove", 3)
	s.Require().NoError(s.keeper.SetMinStakeBalance(s.ctx, sdkmath.NewUint(9_600_000)))
	s.startEpoch(1)
	v := s.validatorIndex(id, 1, nodes)
	s.startEpoch(2)

	_, found := s.keeper.GetSubnetNode(s.ctx, id, nodes[v].addr)
	s.Require().False(found)
	// The slashed remainder stays withdrawable.
	s.Require().Equal(sdkmath.NewUint(testStake-500_000), s.stakeOf(id, nodes[v]))
	reason, ok := eventAttribute(s.ctx.EventManager().Events(), types.EventTypeNetworkSubnetNodeRemoved, types.AttributeKeyReason)
	s.Require().True(ok)
	s.Require().Equal(types.RemovalReasonSlashed, reason)
}

func (s *KeeperTestSuite) TestBrokenSubnet() {
	tests := []struct {
		name             string
		attesters        int
		validatorPenalty uint64
	}{
		{"attested", 4, 1},
		{"unattested", 0, 0},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			id, nodes := s.createActiveSubnet("broken", 5)
			s.startEpoch(1)
			v := s.validatorIndex(id, 1, nodes)
			s.Require().NoError(s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, nil))
			s.attestWith(id, nodes, v, tc.attesters)
			s.startEpoch(2)

			s.Require().Equal(uint64(1), s.keeper.GetSubnetPenaltyCount(s.ctx, id))
			s.Require().Equal(tc.validatorPenalty, s.keeper.GetAccountPenaltyCount(s.ctx, nodes[v].addr))
			s.Require().Equal(sdkmath.NewUint(testStake), s.stakeOf(id, nodes[v]))

			events := s.ctx.EventManager().Events()
			s.Require().True(hasEvent(events, types.EventTypeNetworkSubnetBroken))
			s.Require().False(hasEvent(events, types.EventTypeNetworkValidatorSlashed))
			s.Require().False(hasEvent(events, types.EventTypeNetworkSubnetRewarded))
		})
	}
}

func (s *KeeperTestSuite) TestAbsentNodeRemovedAfterMaxAbsences() {
	id, nodes := s.createActiveSubnet("absences", 10)
	s.startEpoch(1)
	v := s.validatorIndex(id, 1, nodes)
	absent := (v + 1) % len(nodes)
	returning := (v + 2) % len(nodes)
	params := s.keeper.GetParams(s.ctx)

	node, _ := s.keeper.GetSubnetNode(s.ctx, id, nodes[absent].addr)
	node.Absences = params.MaxSequentialAbsences
	s.keeper.SetSubnetNode(s.ctx, node)
	node, _ = s.keeper.GetSubnetNode(s.ctx, id, nodes[returning].addr)
	node.Absences = 2
	s.keeper.SetSubnetNode(s.ctx, node)

	s.Require().NoError(s.keeper.SubmitRewards(s.ctx, nodes[v].addr, id, scoresFor(without(nodes, absent), 1)))
	s.attestWith(id, nodes, v, 8, absent)
	s.startEpoch(2)

	_, found := s.keeper.GetSubnetNode(s.ctx, id, nodes[absent].addr)
	s.Require().False(found)
	reason, ok := eventAttribute(s.ctx.EventManager().Events(), types.EventTypeNetworkSubnetNodeRemoved, types.AttributeKeyReason)
	s.Require().True(ok)
	s.Require().Equal(types.RemovalReasonAbsence, reason)

	// A scored attester works its counter back down.
	node, _ = s.keeper.GetSubnetNode(s.ctx, id, nodes[returning].addr)
	s.Require().Equal(uint32(1), node.Absences)
}

func (s *KeeperTestSuite) TestLowWeightSubnetExcluded() {
	big, bigNodes := s.createSubnetWithStake("big", 3, 10_000_000_000)
	s.Require().NoError(s.keeper.ActivateSubnet(s.ctx, big))
	tiny, tinyNodes := s.createSubnetWithStake("tiny", 3, 1_000_000)
	s.Require().NoError(s.keeper.ActivateSubnet(s.ctx, tiny))
	s.startEpoch(1)

	bv := s.validatorIndex(big, 1, bigNodes)
	s.Require().NoError(s.keeper.SubmitRewards(s.ctx, bigNodes[bv].addr, big, scoresFor(bigNodes, 1)))
	s.attestWith(big, bigNodes, bv, 2)
	tv := s.validatorIndex(tiny, 1, tinyNodes)
	s.startEpoch(2)

	// Under 0.01% of the stake: no reward, no slash, one penalty.
	s.Require().Equal(uint64(1), s.keeper.GetSubnetPenaltyCount(s.ctx, tiny))
	s.Require().Equal(sdkmath.NewUint(1_000_000), s.stakeOf(tiny, tinyNodes[tv]))
	s.Require().Zero(s.keeper.GetAccountPenaltyCount(s.ctx, tinyNodes[tv].addr))

	s.Require().True(s.stakeOf(big, bigNodes[bv]).GT(sdkmath.NewUint(10_000_000_000)))
	s.Require().Zero(s.keeper.GetSubnetPenaltyCount(s.ctx, big))
}
