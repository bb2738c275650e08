package keeper_test

import (
	"github.com/paw-chain/tensornet/x/network/types"
)

func (s *KeeperTestSuite) TestSelectEpochRoles() {
	id, nodes := s.createActiveSubnet("select", 10)
	s.startEpoch(1)

	v := s.validatorIndex(id, 1, nodes)
	accountants := s.keeper.GetSubnetAccountants(s.ctx, id, 1)
	s.Require().Len(accountants, int(s.keeper.GetParams(s.ctx).AccountantsPerEpoch))
	s.Require().NotEqual(accountants[0], accountants[1])
	for _, acc := range accountants {
		s.Require().False(acc.Equals(nodes[v].addr), "validator elected as its own accountant")
		s.Require().True(s.keeper.IsElectedAccountant(s.ctx, id, 1, acc))
	}
	s.Require().Equal([]uint32{id}, s.keeper.GetSubnetsInConsensus(s.ctx, 1))
	s.Require().True(hasEvent(s.ctx.EventManager().Events(), types.EventTypeNetworkRolesSelected))
	s.Require().True(hasEvent(s.ctx.EventManager().Events(), types.EventTypeNetworkEpochStarted))
}

func (s *KeeperTestSuite) TestSelectionIsDeterministic() {
	id, _ := s.createActiveSubnet("deterministic", 10)
	s.atHeight(int64(epochLength))

	cacheCtx, _ := s.ctx.CacheContext()
	s.keeper.SelectEpochRoles(cacheCtx, 1)
	first, _ := s.keeper.GetSubnetValidator(cacheCtx, id, 1)

	s.keeper.SelectEpochRoles(s.ctx, 1)
	second, _ := s.keeper.GetSubnetValidator(s.ctx, id, 1)
	s.Require().Equal(first, second)
}

func (s *KeeperTestSuite) TestAccountantsRotate() {
	id, _ := s.createActiveSubnet("rotate", 10)
	s.startEpoch(1)
	previous := s.keeper.GetSubnetAccountants(s.ctx, id, 1)
	s.startEpoch(2)
	current := s.keeper.GetSubnetAccountants(s.ctx, id, 2)

	s.Require().NotEmpty(current)
	for _, acc := range current {
		for _, prev := range previous {
			s.Require().False(acc.Equals(prev), "accountant %s served twice in a row", acc)
		}
	}
}

func (s *KeeperTestSuite) TestAccountantsFallBackWhenEveryoneServed() {
	// Three nodes leave at most two candidates, who may both have served
	// the previous epoch.
	id, _ := s.createActiveSubnet("fallback", 3)
	s.startEpoch(1)
	s.startEpoch(2)
	s.Require().NotEmpty(s.keeper.GetSubnetAccountants(s.ctx, id, 2))
}

func (s *KeeperTestSuite) TestSelectionSkipsIneligibleSubnets() {
	inactive, _ := s.createSubnet("inactive", 5)
	young, _ := s.createActiveSubnet("young", 3)
	// Nodes joined in epoch 0 need four epochs before they can validate.
	s.Require().NoError(s.keeper.SetNodeTenure(s.ctx, 2, 4, 8))
	s.startEpoch(1)

	_, found := s.keeper.GetSubnetValidator(s.ctx, inactive, 1)
	s.Require().False(found)
	_, found = s.keeper.GetSubnetValidator(s.ctx, young, 1)
	s.Require().False(found)
	s.Require().Empty(s.keeper.GetSubnetsInConsensus(s.ctx, 1))

	s.startEpoch(4)
	_, found = s.keeper.GetSubnetValidator(s.ctx, young, 4)
	s.Require().True(found)
	// Submittable but not yet accountants.
	s.Require().Empty(s.keeper.GetSubnetAccountants(s.ctx, young, 4))
}

func (s *KeeperTestSuite) TestClearStaleRoleSets() {
	id, _ := s.createActiveSubnet("stale", 5)
	for epoch := uint64(1); epoch <= 3; epoch++ {
		s.atHeight(int64(epoch * epochLength))
		s.keeper.SelectEpochRoles(s.ctx, epoch)
	}

	s.Require().Equal(0, s.keeper.ClearStaleRoleSets(s.ctx, 1))
	s.Require().Positive(s.keeper.ClearStaleRoleSets(s.ctx, 3))

	_, found := s.keeper.GetSubnetValidator(s.ctx, id, 1)
	s.Require().False(found)
	s.Require().Empty(s.keeper.GetSubnetAccountants(s.ctx, id, 1))
	s.Require().Empty(s.keeper.GetSubnetsInConsensus(s.ctx, 1))
	for _, epoch := range []uint64{2, 3} {
		_, found = s.keeper.GetSubnetValidator(s.ctx, id, epoch)
		s.Require().True(found, "epoch %d roles cleared", epoch)
	}
}

func (s *KeeperTestSuite) TestValidatorDrawnFromSubmittableNodes() {
	id, nodes := s.createActiveSubnet("submittable-only", 3)
	s.Require().NoError(s.keeper.SetNodeTenure(s.ctx, 0, 1, 1))

	// Join a node in epoch 1: it cannot validate until epoch 2.
	s.atHeight(int64(epochLength))
	late := nodes[0]
	s.Require().NoError(s.keeper.RemoveSubnetNode(s.ctx, late.addr, id, types.RemovalReasonVoluntary))
	s.Require().NoError(s.keeper.AddSubnetNode(s.ctx, late.addr, id, late.peerID, s.keeper.GetParams(s.ctx).MinStakeBalance))

	// Two submittable nodes remain against a minimum of three.
	s.keeper.SelectEpochRoles(s.ctx, 1)
	_, found := s.keeper.GetSubnetValidator(s.ctx, id, 1)
	s.Require().False(found)

	s.atHeight(int64(2 * epochLength))
	s.keeper.SelectEpochRoles(s.ctx, 2)
	_, found = s.keeper.GetSubnetValidator(s.ctx, id, 2)
	s.Require().True(found)
}
