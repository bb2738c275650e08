package keeper

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

// InitGenesis initializes the network module's state from a genesis state.
// Stake aggregates and the staker sets are rebuilt from the entries.
func (k Keeper) InitGenesis(ctx context.Context, data types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return fmt.Errorf("invalid network genesis: %w", err)
	}
	if err := k.SetParams(ctx, data.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}
	k.SetNextSubnetID(ctx, data.NextSubnetID)

	for _, subnet := range data.Subnets {
		k.SetSubnet(ctx, subnet)
	}
	for _, node := range data.Nodes {
		k.SetSubnetNode(ctx, node)
	}

	store := k.getStore(ctx)
	for _, entry := range data.Stakes {
		increaseStake(store, sdk.MustAccAddressFromBech32(entry.Account), entry.SubnetID, entry.Amount)
	}

	delegateTotal := sdkmath.ZeroUint()
	for _, pool := range data.DelegatePools {
		setPool(store, pool.SubnetID, pool.TotalShares, pool.TotalBalance)
		delegateTotal = delegateTotal.Add(pool.TotalBalance)
	}
	setUint(store, TotalDelegateStakeKey, delegateTotal)
	for _, entry := range data.DelegateStakes {
		setUint(store, GetDelegateSharesKey(entry.SubnetID, sdk.MustAccAddressFromBech32(entry.Account)), entry.Shares)
	}

	for _, submission := range data.Submissions {
		k.SetRewardsSubmission(ctx, submission)
	}
	for _, proposal := range data.Proposals {
		k.SetProposal(ctx, proposal)
		k.restoreActiveProposal(ctx, proposal)
	}
	for _, counter := range data.NextProposalIDs {
		k.SetNextProposalID(ctx, counter.SubnetID, counter.Value)
	}
	for _, counter := range data.AccountPenalties {
		k.setAccountPenaltyCount(ctx, sdk.MustAccAddressFromBech32(counter.Account), counter.Value)
	}
	for _, counter := range data.SubnetPenalties {
		k.setSubnetPenaltyCount(ctx, counter.SubnetID, counter.Value)
	}
	return nil
}

// ExportGenesis returns the network module's exported genesis.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := &types.GenesisState{
		Params:       k.GetParams(ctx),
		NextSubnetID: k.GetNextSubnetID(ctx),
		Subnets:      k.GetAllSubnets(ctx),
	}

	k.IterateAllSubnetNodes(ctx, func(node types.SubnetNode) bool {
		gs.Nodes = append(gs.Nodes, node)
		return false
	})
	k.IterateAccountStakes(ctx, func(account sdk.AccAddress, subnetID uint32, amount sdkmath.Uint) bool {
		gs.Stakes = append(gs.Stakes, types.AccountStakeEntry{Account: account.String(), SubnetID: subnetID, Amount: amount})
		return false
	})
	k.IterateDelegatePools(ctx, func(pool types.DelegatePool) bool {
		gs.DelegatePools = append(gs.DelegatePools, pool)
		return false
	})
	k.IterateDelegateShares(ctx, func(subnetID uint32, account sdk.AccAddress, shares sdkmath.Uint) bool {
		gs.DelegateStakes = append(gs.DelegateStakes, types.DelegateStakeEntry{Account: account.String(), SubnetID: subnetID, Shares: shares})
		return false
	})
	k.IterateRewardsSubmissions(ctx, func(s types.EpochRewardsSubmission) bool {
		gs.Submissions = append(gs.Submissions, s)
		return false
	})
	k.IterateProposals(ctx, func(p types.Proposal) bool {
		gs.Proposals = append(gs.Proposals, p)
		return false
	})

	store := k.getStore(ctx)
	iterateCounters(store, NextProposalIDPrefix, func(key []byte, value uint64) {
		gs.NextProposalIDs = append(gs.NextProposalIDs, types.SubnetCounter{SubnetID: parseSubnetID(key), Value: value})
	})
	iterateCounters(store, SubnetPenaltyPrefix, func(key []byte, value uint64) {
		gs.SubnetPenalties = append(gs.SubnetPenalties, types.SubnetCounter{SubnetID: parseSubnetID(key), Value: value})
	})
	iterateCounters(store, AccountPenaltyPrefix, func(key []byte, value uint64) {
		account, _ := parseLengthPrefixed(key)
		gs.AccountPenalties = append(gs.AccountPenalties, types.AccountCounter{Account: account.String(), Value: value})
	})
	return gs, nil
}

// iterateCounters walks the big-endian counters under prefix, passing each
// key with the prefix stripped.
func iterateCounters(store storetypes.KVStore, prefix []byte, cb func(key []byte, value uint64)) {
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		cb(iterator.Key()[len(prefix):], sdk.BigEndianToUint64(iterator.Value()))
	}
}
