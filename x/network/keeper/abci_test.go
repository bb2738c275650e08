package keeper_test

import (
	"github.com/paw-chain/tensornet/x/network/types"
)

func (s *KeeperTestSuite) TestBeginBlockerIgnoresInnerBlocks() {
	id, _ := s.createActiveSubnet("inner", 3)
	s.midEpoch(1)
	s.Require().NoError(s.keeper.BeginBlocker(s.ctx))

	s.Require().Empty(s.ctx.EventManager().Events())
	_, found := s.keeper.GetSubnetValidator(s.ctx, id, 1)
	s.Require().False(found)
}

func (s *KeeperTestSuite) TestBeginBlockerAtBoundary() {
	id, _ := s.createActiveSubnet("boundary", 3)
	s.startEpoch(1)

	epoch, found := eventAttribute(s.ctx.EventManager().Events(), types.EventTypeNetworkEpochStarted, types.AttributeKeyEpoch)
	s.Require().True(found)
	s.Require().Equal("1", epoch)
	_, found = s.keeper.GetSubnetValidator(s.ctx, id, 1)
	s.Require().True(found)

	// The next boundary settles epoch 1 and elects epoch 2.
	s.startEpoch(2)
	s.Require().True(hasEvent(s.ctx.EventManager().Events(), types.EventTypeNetworkEpochRewardsApplied))
	s.Require().Empty(s.keeper.GetSubnetsInConsensus(s.ctx, 1))
	_, found = s.keeper.GetSubnetValidator(s.ctx, id, 2)
	s.Require().True(found)
}

func (s *KeeperTestSuite) TestBeginBlockerSkipsGenesisHeight() {
	s.atHeight(0)
	s.Require().NoError(s.keeper.BeginBlocker(s.ctx))
	s.Require().Empty(s.ctx.EventManager().Events())
}
