package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Params holds every tunable threshold of the network module. Block-valued
// fields count blocks, epoch-valued fields count epochs and percentage fields
// are scaled by PercentageFactor.
type Params struct {
	EpochLength uint64 `json:"epoch_length" yaml:"epoch_length"`

	MinStakeBalance sdkmath.Uint `json:"min_stake_balance" yaml:"min_stake_balance"`
	MaxStakeBalance sdkmath.Uint `json:"max_stake_balance" yaml:"max_stake_balance"`
	StakeRateLimit  int64        `json:"stake_rate_limit" yaml:"stake_rate_limit"`

	MinSubnetNodes   uint32 `json:"min_subnet_nodes" yaml:"min_subnet_nodes"`
	MaxSubnetNodes   uint32 `json:"max_subnet_nodes" yaml:"max_subnet_nodes"`
	BaseNodeMemoryMB uint64 `json:"base_node_memory_mb" yaml:"base_node_memory_mb"`

	NodeIncludedEpochs    uint64 `json:"node_included_epochs" yaml:"node_included_epochs"`
	NodeSubmittableEpochs uint64 `json:"node_submittable_epochs" yaml:"node_submittable_epochs"`
	NodeAccountantEpochs  uint64 `json:"node_accountant_epochs" yaml:"node_accountant_epochs"`
	AccountantsPerEpoch   uint32 `json:"accountants_per_epoch" yaml:"accountants_per_epoch"`

	MinAttestationPercentage       uint64 `json:"min_attestation_percentage" yaml:"min_attestation_percentage"`
	NodeRemovalConsensusPercentage uint64 `json:"node_removal_consensus_percentage" yaml:"node_removal_consensus_percentage"`
	MaxSequentialAbsences          uint32 `json:"max_sequential_absences" yaml:"max_sequential_absences"`

	SlashPercentage uint64       `json:"slash_percentage" yaml:"slash_percentage"`
	MaxSlashAmount  sdkmath.Uint `json:"max_slash_amount" yaml:"max_slash_amount"`

	RewardPerEpoch           sdkmath.Uint `json:"reward_per_epoch" yaml:"reward_per_epoch"`
	ValidatorReward          sdkmath.Uint `json:"validator_reward" yaml:"validator_reward"`
	StakeRewardWeight        uint64       `json:"stake_reward_weight" yaml:"stake_reward_weight"`
	MaxSubnetRewardWeight    uint64       `json:"max_subnet_reward_weight" yaml:"max_subnet_reward_weight"`
	DelegateRewardPercentage uint64       `json:"delegate_reward_percentage" yaml:"delegate_reward_percentage"`

	ProposalBond               sdkmath.Uint `json:"proposal_bond" yaml:"proposal_bond"`
	ChallengePeriod            int64        `json:"challenge_period" yaml:"challenge_period"`
	VotingPeriod               int64        `json:"voting_period" yaml:"voting_period"`
	ProposalQuorum             uint64       `json:"proposal_quorum" yaml:"proposal_quorum"`
	ProposalConsensusThreshold uint64       `json:"proposal_consensus_threshold" yaml:"proposal_consensus_threshold"`
}

// MinSubnetRewardWeight is the 0.01% floor under which a subnet earns nothing.
const MinSubnetRewardWeight uint64 = 1

// DefaultParams returns default network parameters
func DefaultParams() Params {
	return Params{
		EpochLength:                    100,
		MinStakeBalance:                sdkmath.NewUint(1_000_000),       // 1 token with 6 decimals
		MaxStakeBalance:                sdkmath.NewUint(1_000_000_000_000), // 1M tokens
		StakeRateLimit:                 10,
		MinSubnetNodes:                 3,
		MaxSubnetNodes:                 254,
		BaseNodeMemoryMB:               16_000,
		NodeIncludedEpochs:             2,
		NodeSubmittableEpochs:          4,
		NodeAccountantEpochs:           8,
		AccountantsPerEpoch:            2,
		MinAttestationPercentage:       6600, // 66%
		NodeRemovalConsensusPercentage: 6000, // 60%
		MaxSequentialAbsences:          3,
		SlashPercentage:                500, // 5%
		MaxSlashAmount:                 sdkmath.NewUint(100_000_000),
		RewardPerEpoch:                 sdkmath.NewUint(10_000_000_000),
		ValidatorReward:                sdkmath.NewUint(100_000_000),
		StakeRewardWeight:              4000, // 40% stake, 60% score
		MaxSubnetRewardWeight:          5000, // 50%
		DelegateRewardPercentage:       1000, // 10%
		ProposalBond:                   sdkmath.NewUint(10_000_000),
		ChallengePeriod:                600,
		VotingPeriod:                   1200,
		ProposalQuorum:                 7500, // 75%
		ProposalConsensusThreshold:     6600, // 66%
	}
}

// Validate checks every parameter against its range and against the related
// thresholds. Each failure carries the specific parameter error.
func (p Params) Validate() error {
	if p.EpochLength == 0 {
		return ErrInvalidEpochLength.Wrap("epoch length must be positive")
	}
	if err := p.validateStake(); err != nil {
		return err
	}
	if err := p.validateSubnetNodes(); err != nil {
		return err
	}
	if p.NodeIncludedEpochs > p.NodeSubmittableEpochs || p.NodeSubmittableEpochs > p.NodeAccountantEpochs {
		return ErrInvalidTenure.Wrapf(
			"tenure thresholds must be ordered included <= submittable <= accountant, got %d/%d/%d",
			p.NodeIncludedEpochs, p.NodeSubmittableEpochs, p.NodeAccountantEpochs,
		)
	}
	if p.AccountantsPerEpoch == 0 || p.AccountantsPerEpoch > p.MaxSubnetNodes {
		return ErrInvalidAccountants.Wrapf("accountants per epoch must be in [1, %d], got %d", p.MaxSubnetNodes, p.AccountantsPerEpoch)
	}
	if err := p.validateConsensus(); err != nil {
		return err
	}
	if err := p.validateSlashing(); err != nil {
		return err
	}
	if err := p.validateRewards(); err != nil {
		return err
	}
	return p.validateProposals()
}

func (p Params) validateStake() error {
	if isNilOrZero(p.MinStakeBalance) {
		return ErrInvalidMinStake.Wrap("minimum stake balance must be positive")
	}
	if p.MaxStakeBalance.IsNil() || p.MaxStakeBalance.LTE(p.MinStakeBalance) {
		return ErrInvalidMaxStake.Wrapf("maximum stake balance must exceed minimum %s", p.MinStakeBalance)
	}
	if p.MaxStakeBalance.GT(MaxBalance) {
		return ErrInvalidMaxStake.Wrapf("maximum stake balance exceeds %s", MaxBalance)
	}
	if p.StakeRateLimit < 0 {
		return ErrInvalidRateLimit.Wrapf("stake rate limit cannot be negative, got %d", p.StakeRateLimit)
	}
	return nil
}

func (p Params) validateSubnetNodes() error {
	if p.MinSubnetNodes == 0 {
		return ErrInvalidMinSubnetNodes.Wrap("minimum subnet nodes must be positive")
	}
	if p.MaxSubnetNodes <= p.MinSubnetNodes {
		return ErrInvalidMaxSubnetNodes.Wrapf("maximum subnet nodes must exceed minimum %d", p.MinSubnetNodes)
	}
	if p.BaseNodeMemoryMB == 0 {
		return ErrInvalidBaseMemory.Wrap("base node memory must be positive")
	}
	return nil
}

func (p Params) validateConsensus() error {
	if err := validatePercentage("min attestation percentage", p.MinAttestationPercentage, 1, PercentageFactor); err != nil {
		return err
	}
	if err := validatePercentage("node removal consensus percentage", p.NodeRemovalConsensusPercentage, 1, PercentageFactor); err != nil {
		return err
	}
	if p.MaxSequentialAbsences == 0 {
		return ErrInvalidMaxAbsences.Wrap("maximum sequential absences must be positive")
	}
	return nil
}

func (p Params) validateSlashing() error {
	if p.SlashPercentage > PercentageFactor {
		return ErrInvalidSlashPercentage.Wrapf("slash percentage must be <= %d, got %d", PercentageFactor, p.SlashPercentage)
	}
	if isNilOrZero(p.MaxSlashAmount) || p.MaxSlashAmount.GT(MaxBalance) {
		return ErrInvalidMaxSlashAmount.Wrapf("maximum slash amount must be in [1, %s]", MaxBalance)
	}
	return nil
}

func (p Params) validateRewards() error {
	if p.RewardPerEpoch.IsNil() || p.RewardPerEpoch.GT(MaxBalance) {
		return ErrInvalidAmount.Wrap("reward per epoch out of range")
	}
	if p.ValidatorReward.IsNil() || p.ValidatorReward.GT(MaxBalance) {
		return ErrInvalidAmount.Wrap("validator reward out of range")
	}
	if err := validatePercentage("stake reward weight", p.StakeRewardWeight, 0, PercentageFactor); err != nil {
		return err
	}
	if err := validatePercentage("max subnet reward weight", p.MaxSubnetRewardWeight, MinSubnetRewardWeight, PercentageFactor); err != nil {
		return err
	}
	return validatePercentage("delegate reward percentage", p.DelegateRewardPercentage, 0, PercentageFactor-1)
}

func (p Params) validateProposals() error {
	if isNilOrZero(p.ProposalBond) || p.ProposalBond.GT(MaxBalance) {
		return ErrInvalidAmount.Wrap("proposal bond must be positive and fit the ledger balance type")
	}
	if p.ChallengePeriod <= 0 {
		return ErrInvalidPeriod.Wrapf("challenge period must be positive, got %d", p.ChallengePeriod)
	}
	if p.VotingPeriod <= 0 {
		return ErrInvalidPeriod.Wrapf("voting period must be positive, got %d", p.VotingPeriod)
	}
	if err := validatePercentage("proposal quorum", p.ProposalQuorum, 1, PercentageFactor); err != nil {
		return err
	}
	// A strict majority threshold keeps both sides from winning at once.
	return validatePercentage("proposal consensus threshold", p.ProposalConsensusThreshold, HalfPercentageFactor+1, PercentageFactor)
}

func validatePercentage(name string, value, lo, hi uint64) error {
	if value < lo || value > hi {
		return ErrInvalidPercentage.Wrapf("%s must be in [%d, %d], got %d", name, lo, hi, value)
	}
	return nil
}

func isNilOrZero(u sdkmath.Uint) bool {
	return u.IsNil() || u.IsZero()
}

// String implements fmt.Stringer for log output.
func (p Params) String() string {
	return fmt.Sprintf(
		"epoch_length=%d min_stake=%s max_stake=%s min_nodes=%d max_nodes=%d min_attestation=%d slash=%d",
		p.EpochLength, p.MinStakeBalance, p.MaxStakeBalance, p.MinSubnetNodes, p.MaxSubnetNodes,
		p.MinAttestationPercentage, p.SlashPercentage,
	)
}
