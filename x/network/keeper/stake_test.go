package keeper_test

import (
	sdkmath "cosmossdk.io/math"

	keepertest "github.com/paw-chain/tensornet/testutil/keeper"
	"github.com/paw-chain/tensornet/x/network/types"
)

func (s *KeeperTestSuite) TestAddStake() {
	id, nodes := s.createSubnet("stake", 3)
	node := nodes[0]
	amount := sdkmath.NewUint(5_000_000)

	// The initial stake at height 1 started the rate-limit window.
	err := s.keeper.AddStake(s.ctx, node.addr, id, amount)
	s.Require().ErrorIs(err, types.ErrStakeRateLimitExceeded)

	s.atHeight(1 + s.keeper.GetParams(s.ctx).StakeRateLimit)
	s.Require().NoError(s.keeper.AddStake(s.ctx, node.addr, id, amount))

	want := sdkmath.NewUint(testStake).Add(amount)
	s.Require().Equal(want, s.stakeOf(id, node))
	s.Require().Equal(want, s.keeper.GetTotalAccountStake(s.ctx, node.addr))
	s.Require().Equal(sdkmath.NewUint(3*testStake).Add(amount), s.keeper.GetTotalSubnetStake(s.ctx, id))
	s.Require().Equal(sdkmath.NewUint(3*testStake).Add(amount), s.keeper.GetTotalStake(s.ctx))
	s.Require().Equal(sdkmath.NewUint(testFunds-testStake).Sub(amount), s.ledger.Balance(s.ctx, node.addr))
	s.Require().True(hasEvent(s.ctx.EventManager().Events(), types.EventTypeNetworkStakeAdded))
}

func (s *KeeperTestSuite) TestAddStakeRejections() {
	id, nodes := s.createSubnet("stake-reject", 3)
	s.Require().NoError(s.keeper.SetStakeRateLimit(s.ctx, 0))
	params := s.keeper.GetParams(s.ctx)

	tests := []struct {
		name   string
		amount sdkmath.Uint
		node   testNode
		err    error
	}{
		{"zero amount", sdkmath.ZeroUint(), nodes[0], types.ErrInvalidAmount},
		{"over balance", sdkmath.NewUint(testFunds), nodes[0], types.ErrNotEnoughBalanceToStake},
		{"no node", sdkmath.NewUint(1), testNode{addr: keepertest.TestAddr(4242)}, types.ErrSubnetNodeNotFound},
		{"beyond ledger range", types.MaxBalance.AddUint64(1), nodes[0], types.ErrBalanceConversion},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.Require().ErrorIs(s.keeper.AddStake(s.ctx, tc.node.addr, id, tc.amount), tc.err)
		})
	}

	s.Run("max stake reached", func() {
		rich := nodes[1]
		s.ledger.Fund(s.ctx, rich.addr, params.MaxStakeBalance.Uint64())
		err := s.keeper.AddStake(s.ctx, rich.addr, id, params.MaxStakeBalance)
		s.Require().ErrorIs(err, types.ErrMaxStakeReached)
	})
	s.Require().Equal(sdkmath.NewUint(testStake), s.stakeOf(id, nodes[0]))
}

func (s *KeeperTestSuite) TestRemoveStake() {
	id, nodes := s.createSubnet("unstake", 3)
	s.Require().NoError(s.keeper.SetStakeRateLimit(s.ctx, 0))
	node := nodes[0]
	minStake := s.keeper.GetParams(s.ctx).MinStakeBalance

	// A registered node keeps at least the minimum stake.
	excess := sdkmath.NewUint(testStake).Sub(minStake)
	err := s.keeper.RemoveStake(s.ctx, node.addr, id, excess.AddUint64(1))
	s.Require().ErrorIs(err, types.ErrMinStakeNotReached)
	s.Require().NoError(s.keeper.RemoveStake(s.ctx, node.addr, id, excess))
	s.Require().Equal(minStake, s.stakeOf(id, node))

	err = s.keeper.RemoveStake(s.ctx, node.addr, id, minStake.AddUint64(1))
	s.Require().ErrorIs(err, types.ErrNotEnoughStakeToWithdraw)

	// Once the node is gone the rest can leave too.
	s.Require().NoError(s.keeper.RemoveSubnetNode(s.ctx, node.addr, id, types.RemovalReasonVoluntary))
	s.Require().NoError(s.keeper.RemoveStake(s.ctx, node.addr, id, minStake))
	s.Require().True(s.stakeOf(id, node).IsZero())
	s.Require().True(s.keeper.GetTotalAccountStake(s.ctx, node.addr).IsZero())
	s.Require().Equal(sdkmath.NewUint(testFunds), s.ledger.Balance(s.ctx, node.addr))
	s.Require().NotContains(s.keeper.GetSubnetStakers(s.ctx, id), node.addr)
	s.Require().Len(s.keeper.GetSubnetStakers(s.ctx, id), 2)
	s.Require().True(hasEvent(s.ctx.EventManager().Events(), types.EventTypeNetworkStakeRemoved))
}

func (s *KeeperTestSuite) TestRemoveStakeRateLimited() {
	id, nodes := s.createSubnet("unstake-limit", 3)
	err := s.keeper.RemoveStake(s.ctx, nodes[0].addr, id, sdkmath.NewUint(1))
	s.Require().ErrorIs(err, types.ErrStakeRateLimitExceeded)
}

func (s *KeeperTestSuite) TestStakeAggregatesStayConsistent() {
	a, aNodes := s.createSubnet("agg-a", 3)
	b, _ := s.createSubnet("agg-b", 3)
	s.Require().NoError(s.keeper.SetStakeRateLimit(s.ctx, 0))

	// One account staking in both subnets.
	shared := aNodes[0]
	s.Require().NoError(s.keeper.AddSubnetNode(s.ctx, shared.addr, b, keepertest.TestPeerID(8888), sdkmath.NewUint(testStake)))
	s.Require().Equal(sdkmath.NewUint(2*testStake), s.keeper.GetTotalAccountStake(s.ctx, shared.addr))

	s.Require().NoError(s.keeper.IncreaseAccountStake(s.ctx, shared.addr, a, sdkmath.NewUint(123)))
	s.Require().Equal(sdkmath.NewUint(testStake+123), s.stakeOf(a, shared))
	s.Require().Equal(sdkmath.NewUint(3*testStake+123), s.keeper.GetTotalSubnetStake(s.ctx, a))
	s.Require().Equal(sdkmath.NewUint(7*testStake+123), s.keeper.GetTotalStake(s.ctx))

	s.Require().NoError(s.keeper.IncreaseAccountStake(s.ctx, shared.addr, a, sdkmath.ZeroUint()))
	s.Require().Error(s.keeper.IncreaseAccountStake(s.ctx, shared.addr, a, types.MaxBalance))

	msg, broken := keeperInvariants(s)
	s.Require().False(broken, msg)
}
