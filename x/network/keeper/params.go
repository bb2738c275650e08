package keeper

import (
	"context"
	"sort"
	"strconv"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cast"

	"github.com/paw-chain/tensornet/x/network/types"
)

// GetParams returns the current module parameters, or the defaults when none are stored.
func (k Keeper) GetParams(ctx context.Context) types.Params {
	var params types.Params
	if !k.getRecord(k.getStore(ctx), ParamsKey, &params) {
		return types.DefaultParams()
	}
	return params
}

// SetParams validates and stores the module parameters.
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	k.setRecord(k.getStore(ctx), ParamsKey, params)
	return nil
}

// updateParams applies mutate to a copy of the stored params and commits the
// copy only when the whole set still validates.
func (k Keeper) updateParams(ctx context.Context, name string, mutate func(*types.Params)) error {
	params := k.GetParams(ctx)
	mutate(&params)
	if err := k.SetParams(ctx, params); err != nil {
		return err
	}
	k.emitEvent(ctx, types.EventTypeNetworkParamsUpdated, sdk.NewAttribute(types.AttributeKeyParam, name))
	k.Logger(ctx).Info("network param updated", "param", name)
	return nil
}

func (k Keeper) SetEpochLength(ctx context.Context, v uint64) error {
	return k.updateParams(ctx, "epoch_length", func(p *types.Params) { p.EpochLength = v })
}

func (k Keeper) SetMinStakeBalance(ctx context.Context, v sdkmath.Uint) error {
	return k.updateParams(ctx, "min_stake_balance", func(p *types.Params) { p.MinStakeBalance = v })
}

func (k Keeper) SetMaxStakeBalance(ctx context.Context, v sdkmath.Uint) error {
	return k.updateParams(ctx, "max_stake_balance", func(p *types.Params) { p.MaxStakeBalance = v })
}

func (k Keeper) SetStakeRateLimit(ctx context.Context, blocks int64) error {
	return k.updateParams(ctx, "stake_rate_limit", func(p *types.Params) { p.StakeRateLimit = blocks })
}

func (k Keeper) SetMinSubnetNodes(ctx context.Context, v uint32) error {
	return k.updateParams(ctx, "min_subnet_nodes", func(p *types.Params) { p.MinSubnetNodes = v })
}

func (k Keeper) SetMaxSubnetNodes(ctx context.Context, v uint32) error {
	return k.updateParams(ctx, "max_subnet_nodes", func(p *types.Params) { p.MaxSubnetNodes = v })
}

func (k Keeper) SetBaseNodeMemoryMB(ctx context.Context, v uint64) error {
	return k.updateParams(ctx, "base_node_memory_mb", func(p *types.Params) { p.BaseNodeMemoryMB = v })
}

// SetNodeTenure updates the three class thresholds together so they can be
// moved past each other in one step.
func (k Keeper) SetNodeTenure(ctx context.Context, included, submittable, accountant uint64) error {
	return k.updateParams(ctx, "node_tenure", func(p *types.Params) {
		p.NodeIncludedEpochs = included
		p.NodeSubmittableEpochs = submittable
		p.NodeAccountantEpochs = accountant
	})
}

func (k Keeper) SetAccountantsPerEpoch(ctx context.Context, v uint32) error {
	return k.updateParams(ctx, "accountants_per_epoch", func(p *types.Params) { p.AccountantsPerEpoch = v })
}

func (k Keeper) SetMinAttestationPercentage(ctx context.Context, v uint64) error {
	return k.updateParams(ctx, "min_attestation_percentage", func(p *types.Params) { p.MinAttestationPercentage = v })
}

func (k Keeper) SetNodeRemovalConsensusPercentage(ctx context.Context, v uint64) error {
	return k.updateParams(ctx, "node_removal_consensus_percentage", func(p *types.Params) { p.NodeRemovalConsensusPercentage = v })
}

func (k Keeper) SetMaxSequentialAbsences(ctx context.Context, v uint32) error {
	return k.updateParams(ctx, "max_sequential_absences", func(p *types.Params) { p.MaxSequentialAbsences = v })
}

func (k Keeper) SetSlashPercentage(ctx context.Context, v uint64) error {
	return k.updateParams(ctx, "slash_percentage", func(p *types.Params) { p.SlashPercentage = v })
}

func (k Keeper) SetMaxSlashAmount(ctx context.Context, v sdkmath.Uint) error {
	return k.updateParams(ctx, "max_slash_amount", func(p *types.Params) { p.MaxSlashAmount = v })
}

func (k Keeper) SetRewardPerEpoch(ctx context.Context, v sdkmath.Uint) error {
	return k.updateParams(ctx, "reward_per_epoch", func(p *types.Params) { p.RewardPerEpoch = v })
}

func (k Keeper) SetValidatorReward(ctx context.Context, v sdkmath.Uint) error {
	return k.updateParams(ctx, "validator_reward", func(p *types.Params) { p.ValidatorReward = v })
}

func (k Keeper) SetStakeRewardWeight(ctx context.Context, v uint64) error {
	return k.updateParams(ctx, "stake_reward_weight", func(p *types.Params) { p.StakeRewardWeight = v })
}

func (k Keeper) SetMaxSubnetRewardWeight(ctx context.Context, v uint64) error {
	return k.updateParams(ctx, "max_subnet_reward_weight", func(p *types.Params) { p.MaxSubnetRewardWeight = v })
}

func (k Keeper) SetDelegateRewardPercentage(ctx context.Context, v uint64) error {
	return k.updateParams(ctx, "delegate_reward_percentage", func(p *types.Params) { p.DelegateRewardPercentage = v })
}

func (k Keeper) SetProposalBond(ctx context.Context, v sdkmath.Uint) error {
	return k.updateParams(ctx, "proposal_bond", func(p *types.Params) { p.ProposalBond = v })
}

func (k Keeper) SetChallengePeriod(ctx context.Context, blocks int64) error {
	return k.updateParams(ctx, "challenge_period", func(p *types.Params) { p.ChallengePeriod = blocks })
}

func (k Keeper) SetVotingPeriod(ctx context.Context, blocks int64) error {
	return k.updateParams(ctx, "voting_period", func(p *types.Params) { p.VotingPeriod = blocks })
}

func (k Keeper) SetProposalQuorum(ctx context.Context, v uint64) error {
	return k.updateParams(ctx, "proposal_quorum", func(p *types.Params) { p.ProposalQuorum = v })
}

func (k Keeper) SetProposalConsensusThreshold(ctx context.Context, v uint64) error {
	return k.updateParams(ctx, "proposal_consensus_threshold", func(p *types.Params) { p.ProposalConsensusThreshold = v })
}

type paramSetter func(k Keeper, ctx context.Context, value string) error

func uint64Setter(set func(Keeper, context.Context, uint64) error) paramSetter {
	return func(k Keeper, ctx context.Context, value string) error {
		v, err := cast.ToUint64E(value)
		if err != nil {
			return types.ErrInvalidParams.Wrapf("expected unsigned integer, got %q", value)
		}
		return set(k, ctx, v)
	}
}

func uint32Setter(set func(Keeper, context.Context, uint32) error) paramSetter {
	return func(k Keeper, ctx context.Context, value string) error {
		v, err := cast.ToUint32E(value)
		if err != nil {
			return types.ErrInvalidParams.Wrapf("expected unsigned integer, got %q", value)
		}
		return set(k, ctx, v)
	}
}

func int64Setter(set func(Keeper, context.Context, int64) error) paramSetter {
	return func(k Keeper, ctx context.Context, value string) error {
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return types.ErrInvalidParams.Wrapf("expected integer, got %q", value)
		}
		return set(k, ctx, v)
	}
}

func uintSetter(set func(Keeper, context.Context, sdkmath.Uint) error) paramSetter {
	return func(k Keeper, ctx context.Context, value string) error {
		v, err := sdkmath.ParseUint(value)
		if err != nil {
			return types.ErrInvalidParams.Wrapf("expected amount, got %q", value)
		}
		return set(k, ctx, v)
	}
}

// tenureSetter moves one tenure threshold through SetNodeTenure, keeping the
// other two at their stored values.
func tenureSetter(apply func(p *types.Params, v uint64)) paramSetter {
	return uint64Setter(func(k Keeper, ctx context.Context, v uint64) error {
		p := k.GetParams(ctx)
		apply(&p, v)
		return k.SetNodeTenure(ctx, p.NodeIncludedEpochs, p.NodeSubmittableEpochs, p.NodeAccountantEpochs)
	})
}

var paramSetters = map[string]paramSetter{
	"epoch_length":                      uint64Setter(Keeper.SetEpochLength),
	"min_stake_balance":                 uintSetter(Keeper.SetMinStakeBalance),
	"max_stake_balance":                 uintSetter(Keeper.SetMaxStakeBalance),
	"stake_rate_limit":                  int64Setter(Keeper.SetStakeRateLimit),
	"min_subnet_nodes":                  uint32Setter(Keeper.SetMinSubnetNodes),
	"max_subnet_nodes":                  uint32Setter(Keeper.SetMaxSubnetNodes),
	"base_node_memory_mb":               uint64Setter(Keeper.SetBaseNodeMemoryMB),
	"node_included_epochs":              tenureSetter(func(p *types.Params, v uint64) { p.NodeIncludedEpochs = v }),
	"node_submittable_epochs":           tenureSetter(func(p *types.Params, v uint64) { p.NodeSubmittableEpochs = v }),
	"node_accountant_epochs":            tenureSetter(func(p *types.Params, v uint64) { p.NodeAccountantEpochs = v }),
	"accountants_per_epoch":             uint32Setter(Keeper.SetAccountantsPerEpoch),
	"min_attestation_percentage":        uint64Setter(Keeper.SetMinAttestationPercentage),
	"node_removal_consensus_percentage": uint64Setter(Keeper.SetNodeRemovalConsensusPercentage),
	"max_sequential_absences":           uint32Setter(Keeper.SetMaxSequentialAbsences),
	"slash_percentage":                  uint64Setter(Keeper.SetSlashPercentage),
	"max_slash_amount":                  uintSetter(Keeper.SetMaxSlashAmount),
	"reward_per_epoch":                  uintSetter(Keeper.SetRewardPerEpoch),
	"validator_reward":                  uintSetter(Keeper.SetValidatorReward),
	"stake_reward_weight":               uint64Setter(Keeper.SetStakeRewardWeight),
	"max_subnet_reward_weight":          uint64Setter(Keeper.SetMaxSubnetRewardWeight),
	"delegate_reward_percentage":        uint64Setter(Keeper.SetDelegateRewardPercentage),
	"proposal_bond":                     uintSetter(Keeper.SetProposalBond),
	"challenge_period":                  int64Setter(Keeper.SetChallengePeriod),
	"voting_period":                     int64Setter(Keeper.SetVotingPeriod),
	"proposal_quorum":                   uint64Setter(Keeper.SetProposalQuorum),
	"proposal_consensus_threshold":      uint64Setter(Keeper.SetProposalConsensusThreshold),
}

// SetParamByKey parses value for the named tunable and applies its setter.
func (k Keeper) SetParamByKey(ctx context.Context, key, value string) error {
	setter, ok := paramSetters[key]
	if !ok {
		return types.ErrInvalidParams.Wrapf("unknown param %q", key)
	}
	return setter(k, ctx, value)
}

// ParamKeys lists the names accepted by SetParamByKey.
func ParamKeys() []string {
	keys := make([]string, 0, len(paramSetters))
	for key := range paramSetters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
