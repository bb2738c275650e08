package keeper_test

import (
	sdkmath "cosmossdk.io/math"

	keepertest "github.com/paw-chain/tensornet/testutil/keeper"
	"github.com/paw-chain/tensornet/x/network/keeper"
	"github.com/paw-chain/tensornet/x/network/types"
)

func keeperInvariants(s *KeeperTestSuite) (string, bool) {
	return keeper.AllInvariants(*s.keeper)(s.ctx)
}

func (s *KeeperTestSuite) TestInvariantsHoldOnEmptyState() {
	msg, broken := keeperInvariants(s)
	s.Require().False(broken, msg)
}

func (s *KeeperTestSuite) TestInvariantsHoldAfterStakeChanges() {
	id, nodes := s.createActiveSubnet("inv", 4)
	s.Require().NoError(s.keeper.SetStakeRateLimit(s.ctx, 0))

	s.Require().NoError(s.keeper.AddStake(s.ctx, nodes[0].addr, id, sdkmath.NewUint(1_000)))
	s.Require().NoError(s.keeper.RemoveStake(s.ctx, nodes[1].addr, id, sdkmath.NewUint(2_000)))
	s.Require().NoError(s.keeper.RemoveSubnetNode(s.ctx, nodes[2].addr, id, types.RemovalReasonVoluntary))

	delegator := keepertest.TestAddr(6500)
	s.ledger.Fund(s.ctx, delegator, testFunds)
	_, err := s.keeper.AddDelegateStake(s.ctx, delegator, id, sdkmath.NewUint(5_000_000))
	s.Require().NoError(err)

	msg, broken := keeper.StakeAggregatesInvariant(*s.keeper)(s.ctx)
	s.Require().False(broken, msg)
	msg, broken = keeper.DelegatePoolInvariant(*s.keeper)(s.ctx)
	s.Require().False(broken, msg)
	msg, broken = keeper.NodeIndexInvariant(*s.keeper)(s.ctx)
	s.Require().False(broken, msg)
}

func (s *KeeperTestSuite) TestNodeIndexInvariantDetectsOrphans() {
	s.keeper.SetSubnetNode(s.ctx, types.SubnetNode{
		SubnetID: 99,
		Account:  keepertest.TestAddr(6600).String(),
		PeerID:   keepertest.TestPeerID(6600),
	})

	msg, broken := keeper.NodeIndexInvariant(*s.keeper)(s.ctx)
	s.Require().True(broken)
	s.Require().Contains(msg, "unknown subnet")
}

func (s *KeeperTestSuite) TestNodeIndexInvariantDetectsOverfullSubnet() {
	id, _ := s.createSubnet("overfull", 4)
	subnet, _ := s.keeper.GetSubnet(s.ctx, id)
	subnet.MaxNodes = 3
	s.keeper.SetSubnet(s.ctx, subnet)

	msg, broken := keeperInvariants(s)
	s.Require().True(broken)
	s.Require().Contains(msg, "exceed maximum")
}
