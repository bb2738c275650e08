package keeper_test

import (
	"sort"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	keepertest "github.com/paw-chain/tensornet/testutil/keeper"
	"github.com/paw-chain/tensornet/x/network/keeper"
	"github.com/paw-chain/tensornet/x/network/types"
)

func (s *KeeperTestSuite) TestDefaultParamsWhenUnset() {
	k, ctx, _ := keepertest.NetworkKeeper(s.T())
	s.Require().Equal(types.DefaultParams(), k.GetParams(ctx))
}

func (s *KeeperTestSuite) TestParamSetters() {
	s.ctx = s.ctx.WithEventManager(sdk.NewEventManager())
	s.Require().NoError(s.keeper.SetEpochLength(s.ctx, 50))
	s.Require().NoError(s.keeper.SetMaxSlashAmount(s.ctx, sdkmath.NewUint(42)))
	s.Require().NoError(s.keeper.SetChallengePeriod(s.ctx, 7))

	params := s.keeper.GetParams(s.ctx)
	s.Require().Equal(uint64(50), params.EpochLength)
	s.Require().Equal(sdkmath.NewUint(42), params.MaxSlashAmount)
	s.Require().Equal(int64(7), params.ChallengePeriod)

	value, found := eventAttribute(s.ctx.EventManager().Events(), types.EventTypeNetworkParamsUpdated, types.AttributeKeyParam)
	s.Require().True(found)
	s.Require().Equal("epoch_length", value)
}

func (s *KeeperTestSuite) TestParamSettersRejectInvalidSet() {
	before := s.keeper.GetParams(s.ctx)

	s.Require().ErrorIs(s.keeper.SetEpochLength(s.ctx, 0), types.ErrInvalidEpochLength)
	s.Require().ErrorIs(s.keeper.SetMaxStakeBalance(s.ctx, before.MinStakeBalance), types.ErrInvalidMaxStake)
	s.Require().ErrorIs(s.keeper.SetNodeTenure(s.ctx, 3, 2, 1), types.ErrInvalidTenure)
	s.Require().ErrorIs(s.keeper.SetNodeRemovalConsensusPercentage(s.ctx, 0), types.ErrInvalidPercentage)
	s.Require().ErrorIs(s.keeper.SetProposalConsensusThreshold(s.ctx, types.HalfPercentageFactor), types.ErrInvalidPercentage)
	s.Require().ErrorIs(s.keeper.SetVotingPeriod(s.ctx, 0), types.ErrInvalidPeriod)

	s.Require().Equal(before, s.keeper.GetParams(s.ctx))
}

func (s *KeeperTestSuite) TestSetParamByKey() {
	tests := []struct {
		key   string
		value string
		check func(types.Params)
		err   error
	}{
		{"epoch_length", "25", func(p types.Params) { s.Require().Equal(uint64(25), p.EpochLength) }, nil},
		{"max_subnet_nodes", "128", func(p types.Params) { s.Require().Equal(uint32(128), p.MaxSubnetNodes) }, nil},
		{"voting_period", "90", func(p types.Params) { s.Require().Equal(int64(90), p.VotingPeriod) }, nil},
		{"proposal_bond", "123456789", func(p types.Params) { s.Require().Equal(sdkmath.NewUint(123456789), p.ProposalBond) }, nil},
		{"node_accountant_epochs", "6", func(p types.Params) { s.Require().Equal(uint64(6), p.NodeAccountantEpochs) }, nil},
		{"node_submittable_epochs", "3", func(p types.Params) { s.Require().Equal(uint64(3), p.NodeSubmittableEpochs) }, nil},
		{"node_included_epochs", "2", func(p types.Params) { s.Require().Equal(uint64(2), p.NodeIncludedEpochs) }, nil},
		{"node_included_epochs", "4", nil, types.ErrInvalidTenure},
		{"node_removal_consensus_percentage", "5000", func(p types.Params) {
			s.Require().Equal(uint64(5000), p.NodeRemovalConsensusPercentage)
		}, nil},
		{"epoch_length", "ten", nil, types.ErrInvalidParams},
		{"voting_period", "1.5", nil, types.ErrInvalidParams},
		{"proposal_bond", "-5", nil, types.ErrInvalidParams},
		{"no_such_param", "1", nil, types.ErrInvalidParams},
		{"epoch_length", "0", nil, types.ErrInvalidEpochLength},
	}
	for _, tc := range tests {
		s.Run(tc.key+"="+tc.value, func() {
			err := s.keeper.SetParamByKey(s.ctx, tc.key, tc.value)
			if tc.err != nil {
				s.Require().ErrorIs(err, tc.err)
				return
			}
			s.Require().NoError(err)
			tc.check(s.keeper.GetParams(s.ctx))
		})
	}
}

func (s *KeeperTestSuite) TestParamKeys() {
	keys := keeper.ParamKeys()
	s.Require().True(sort.StringsAreSorted(keys))
	s.Require().Len(keys, 26)
	s.Require().Contains(keys, "min_attestation_percentage")
	s.Require().Contains(keys, "node_submittable_epochs")
	s.Require().NotContains(keys, "node_tenure")
}
