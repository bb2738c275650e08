package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// GenesisState is the full exported state of the network module. Stake
// aggregates are not carried: they are rebuilt from the per-account entries on
// import. Epoch role sets are not carried either; the next boundary recomputes them.
type GenesisState struct {
	Params           Params                   `json:"params" yaml:"params"`
	NextSubnetID     uint32                   `json:"next_subnet_id" yaml:"next_subnet_id"`
	Subnets          []Subnet                 `json:"subnets" yaml:"subnets"`
	Nodes            []SubnetNode             `json:"nodes" yaml:"nodes"`
	Stakes           []AccountStakeEntry      `json:"stakes" yaml:"stakes"`
	DelegateStakes   []DelegateStakeEntry     `json:"delegate_stakes" yaml:"delegate_stakes"`
	DelegatePools    []DelegatePool           `json:"delegate_pools" yaml:"delegate_pools"`
	Submissions      []EpochRewardsSubmission `json:"submissions" yaml:"submissions"`
	Proposals        []Proposal               `json:"proposals" yaml:"proposals"`
	NextProposalIDs  []SubnetCounter          `json:"next_proposal_ids" yaml:"next_proposal_ids"`
	AccountPenalties []AccountCounter         `json:"account_penalties" yaml:"account_penalties"`
	SubnetPenalties  []SubnetCounter          `json:"subnet_penalties" yaml:"subnet_penalties"`
}

// AccountStakeEntry is one (account, subnet) direct stake balance.
type AccountStakeEntry struct {
	Account  string       `json:"account" yaml:"account"`
	SubnetID uint32       `json:"subnet_id" yaml:"subnet_id"`
	Amount   sdkmath.Uint `json:"amount" yaml:"amount"`
}

// DelegateStakeEntry is one (account, subnet) delegate share balance.
type DelegateStakeEntry struct {
	Account  string       `json:"account" yaml:"account"`
	SubnetID uint32       `json:"subnet_id" yaml:"subnet_id"`
	Shares   sdkmath.Uint `json:"shares" yaml:"shares"`
}

// DelegatePool is the share and balance total of a subnet's delegate pool.
type DelegatePool struct {
	SubnetID     uint32       `json:"subnet_id" yaml:"subnet_id"`
	TotalShares  sdkmath.Uint `json:"total_shares" yaml:"total_shares"`
	TotalBalance sdkmath.Uint `json:"total_balance" yaml:"total_balance"`
}

// SubnetCounter is a per-subnet counter value.
type SubnetCounter struct {
	SubnetID uint32 `json:"subnet_id" yaml:"subnet_id"`
	Value    uint64 `json:"value" yaml:"value"`
}

// AccountCounter is a per-account counter value.
type AccountCounter struct {
	Account string `json:"account" yaml:"account"`
	Value   uint64 `json:"value" yaml:"value"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:       DefaultParams(),
		NextSubnetID: 1,
	}
}

// Validate performs basic genesis state validation returning an error upon any
// failure.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}

	subnets := make(map[uint32]Subnet, len(gs.Subnets))
	paths := make(map[string]bool, len(gs.Subnets))
	for i, s := range gs.Subnets {
		if s.ID == 0 {
			return fmt.Errorf("subnet %d: id cannot be zero", i)
		}
		if s.ID >= gs.NextSubnetID {
			return fmt.Errorf("subnet %d: id %d not below next subnet id %d", i, s.ID, gs.NextSubnetID)
		}
		if _, dup := subnets[s.ID]; dup {
			return fmt.Errorf("subnet %d: duplicate id %d", i, s.ID)
		}
		if err := ValidateSubnetPath(s.Path); err != nil {
			return fmt.Errorf("subnet %d: %w", s.ID, err)
		}
		if paths[s.Path] {
			return fmt.Errorf("subnet %d: duplicate path %q", s.ID, s.Path)
		}
		if s.MinNodes == 0 || s.MaxNodes < s.MinNodes {
			return fmt.Errorf("subnet %d: invalid node bounds [%d, %d]", s.ID, s.MinNodes, s.MaxNodes)
		}
		subnets[s.ID] = s
		paths[s.Path] = true
	}

	type nodeKey struct {
		subnet uint32
		key    string
	}
	seenNodes := make(map[nodeKey]bool)
	seenPeers := make(map[nodeKey]bool)
	nodeCount := make(map[uint32]uint32)
	for i, n := range gs.Nodes {
		if _, ok := subnets[n.SubnetID]; !ok {
			return fmt.Errorf("node %d: unknown subnet %d", i, n.SubnetID)
		}
		if _, err := sdk.AccAddressFromBech32(n.Account); err != nil {
			return fmt.Errorf("node %d: invalid account %s: %w", i, n.Account, err)
		}
		if err := ValidatePeerID(n.PeerID); err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		if seenNodes[nodeKey{n.SubnetID, n.Account}] {
			return fmt.Errorf("node %d: duplicate node for %s in subnet %d", i, n.Account, n.SubnetID)
		}
		if seenPeers[nodeKey{n.SubnetID, n.PeerID}] {
			return fmt.Errorf("node %d: duplicate peer id %s in subnet %d", i, n.PeerID, n.SubnetID)
		}
		seenNodes[nodeKey{n.SubnetID, n.Account}] = true
		seenPeers[nodeKey{n.SubnetID, n.PeerID}] = true
		nodeCount[n.SubnetID]++
	}
	for id, count := range nodeCount {
		if count > subnets[id].MaxNodes {
			return fmt.Errorf("subnet %d: %d nodes exceed maximum %d", id, count, subnets[id].MaxNodes)
		}
	}

	for i, st := range gs.Stakes {
		if _, ok := subnets[st.SubnetID]; !ok {
			return fmt.Errorf("stake %d: unknown subnet %d", i, st.SubnetID)
		}
		if _, err := sdk.AccAddressFromBech32(st.Account); err != nil {
			return fmt.Errorf("stake %d: invalid account %s: %w", i, st.Account, err)
		}
		if st.Amount.IsNil() || st.Amount.IsZero() || st.Amount.GT(MaxBalance) {
			return fmt.Errorf("stake %d: amount out of range", i)
		}
	}

	pools := make(map[uint32]DelegatePool, len(gs.DelegatePools))
	for _, p := range gs.DelegatePools {
		if _, ok := subnets[p.SubnetID]; !ok {
			return fmt.Errorf("delegate pool: unknown subnet %d", p.SubnetID)
		}
		pools[p.SubnetID] = p
	}
	shareSums := make(map[uint32]sdkmath.Uint)
	for i, d := range gs.DelegateStakes {
		pool, ok := pools[d.SubnetID]
		if !ok {
			return fmt.Errorf("delegate stake %d: subnet %d has no pool", i, d.SubnetID)
		}
		if _, err := sdk.AccAddressFromBech32(d.Account); err != nil {
			return fmt.Errorf("delegate stake %d: invalid account %s: %w", i, d.Account, err)
		}
		sum, ok := shareSums[d.SubnetID]
		if !ok {
			sum = sdkmath.ZeroUint()
		}
		shareSums[d.SubnetID] = sum.Add(d.Shares)
		if shareSums[d.SubnetID].GT(pool.TotalShares) {
			return fmt.Errorf("delegate stake %d: shares exceed pool total for subnet %d", i, d.SubnetID)
		}
	}

	seenProposals := make(map[nodeKey]bool)
	for i, p := range gs.Proposals {
		if _, ok := subnets[p.SubnetID]; !ok {
			return fmt.Errorf("proposal %d: unknown subnet %d", i, p.SubnetID)
		}
		key := nodeKey{p.SubnetID, fmt.Sprint(p.ID)}
		if seenProposals[key] {
			return fmt.Errorf("proposal %d: duplicate id %d in subnet %d", i, p.ID, p.SubnetID)
		}
		seenProposals[key] = true
	}
	return nil
}
