package keeper

import (
	"context"

	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hashicorp/go-metrics"

	"github.com/paw-chain/tensornet/x/network/types"
)

var _ types.MsgServer = msgServer{}

type msgServer struct {
	Keeper
}

// NewMsgServerImpl returns an implementation of the MsgServer interface
func NewMsgServerImpl(keeper Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

// basicValidator is satisfied by every network message.
type basicValidator interface {
	ValidateBasic() error
}

// execute validates msg and runs fn inside a cache context that is written
// back only when fn succeeds.
func (ms msgServer) execute(goCtx context.Context, msgType string, msg basicValidator, fn func(ctx sdk.Context) error) error {
	if err := msg.ValidateBasic(); err != nil {
		recordMsg(msgType, "invalid")
		return err
	}

	ctx := sdk.UnwrapSDKContext(goCtx)
	cacheCtx, write := cacheContext(ctx)
	if err := fn(cacheCtx); err != nil {
		recordMsg(msgType, "failed")
		ms.Logger(ctx).Debug("network msg rejected", "type", msgType, "error", err.Error())
		return err
	}
	write()
	recordMsg(msgType, "ok")
	return nil
}

func recordMsg(msgType, result string) {
	telemetry.IncrCounterWithLabels(
		[]string{types.ModuleName, "msg"},
		1,
		[]metrics.Label{
			telemetry.NewLabel("type", msgType),
			telemetry.NewLabel("result", result),
		},
	)
}

// RegisterSubnet registers a subnet under the governance authority.
func (ms msgServer) RegisterSubnet(goCtx context.Context, msg *types.MsgRegisterSubnet) (*types.MsgRegisterSubnetResponse, error) {
	var id uint32
	err := ms.execute(goCtx, types.TypeMsgRegisterSubnet, msg, func(ctx sdk.Context) error {
		if err := ms.validateAuthority(msg.Authority); err != nil {
			return err
		}
		var err error
		id, err = ms.Keeper.RegisterSubnet(ctx, msg.Path, msg.MemoryMB)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgRegisterSubnetResponse{SubnetID: id}, nil
}

func (ms msgServer) ActivateSubnet(goCtx context.Context, msg *types.MsgActivateSubnet) (*types.MsgActivateSubnetResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgActivateSubnet, msg, func(ctx sdk.Context) error {
		return ms.Keeper.ActivateSubnet(ctx, msg.SubnetID)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgActivateSubnetResponse{}, nil
}

func (ms msgServer) AddSubnetNode(goCtx context.Context, msg *types.MsgAddSubnetNode) (*types.MsgAddSubnetNodeResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgAddSubnetNode, msg, func(ctx sdk.Context) error {
		return ms.Keeper.AddSubnetNode(ctx, sdk.MustAccAddressFromBech32(msg.Account), msg.SubnetID, msg.PeerID, msg.Stake)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgAddSubnetNodeResponse{}, nil
}

func (ms msgServer) RemoveSubnetNode(goCtx context.Context, msg *types.MsgRemoveSubnetNode) (*types.MsgRemoveSubnetNodeResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgRemoveSubnetNode, msg, func(ctx sdk.Context) error {
		return ms.Keeper.RemoveSubnetNode(ctx, sdk.MustAccAddressFromBech32(msg.Account), msg.SubnetID, types.RemovalReasonVoluntary)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgRemoveSubnetNodeResponse{}, nil
}

func (ms msgServer) AddStake(goCtx context.Context, msg *types.MsgAddStake) (*types.MsgAddStakeResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgAddStake, msg, func(ctx sdk.Context) error {
		return ms.Keeper.AddStake(ctx, sdk.MustAccAddressFromBech32(msg.Account), msg.SubnetID, msg.Amount)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgAddStakeResponse{}, nil
}

func (ms msgServer) RemoveStake(goCtx context.Context, msg *types.MsgRemoveStake) (*types.MsgRemoveStakeResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgRemoveStake, msg, func(ctx sdk.Context) error {
		return ms.Keeper.RemoveStake(ctx, sdk.MustAccAddressFromBech32(msg.Account), msg.SubnetID, msg.Amount)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgRemoveStakeResponse{}, nil
}

func (ms msgServer) AddDelegateStake(goCtx context.Context, msg *types.MsgAddDelegateStake) (*types.MsgAddDelegateStakeResponse, error) {
	resp := &types.MsgAddDelegateStakeResponse{}
	err := ms.execute(goCtx, types.TypeMsgAddDelegateStake, msg, func(ctx sdk.Context) error {
		var err error
		resp.Shares, err = ms.Keeper.AddDelegateStake(ctx, sdk.MustAccAddressFromBech32(msg.Account), msg.SubnetID, msg.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (ms msgServer) RemoveDelegateStake(goCtx context.Context, msg *types.MsgRemoveDelegateStake) (*types.MsgRemoveDelegateStakeResponse, error) {
	resp := &types.MsgRemoveDelegateStakeResponse{}
	err := ms.execute(goCtx, types.TypeMsgRemoveDelegateStake, msg, func(ctx sdk.Context) error {
		var err error
		resp.Amount, err = ms.Keeper.RemoveDelegateStake(ctx, sdk.MustAccAddressFromBech32(msg.Account), msg.SubnetID, msg.Shares)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (ms msgServer) SubmitRewards(goCtx context.Context, msg *types.MsgSubmitRewards) (*types.MsgSubmitRewardsResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgSubmitRewards, msg, func(ctx sdk.Context) error {
		return ms.Keeper.SubmitRewards(ctx, sdk.MustAccAddressFromBech32(msg.Validator), msg.SubnetID, msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgSubmitRewardsResponse{}, nil
}

func (ms msgServer) Attest(goCtx context.Context, msg *types.MsgAttest) (*types.MsgAttestResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgAttest, msg, func(ctx sdk.Context) error {
		return ms.Keeper.Attest(ctx, sdk.MustAccAddressFromBech32(msg.Account), msg.SubnetID)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgAttestResponse{}, nil
}

func (ms msgServer) SubmitAccountantData(goCtx context.Context, msg *types.MsgSubmitAccountantData) (*types.MsgSubmitAccountantDataResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgSubmitAccountantData, msg, func(ctx sdk.Context) error {
		return ms.Keeper.SubmitAccountantData(ctx, sdk.MustAccAddressFromBech32(msg.Accountant), msg.SubnetID, msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgSubmitAccountantDataResponse{}, nil
}

func (ms msgServer) Propose(goCtx context.Context, msg *types.MsgPropose) (*types.MsgProposeResponse, error) {
	resp := &types.MsgProposeResponse{}
	err := ms.execute(goCtx, types.TypeMsgPropose, msg, func(ctx sdk.Context) error {
		var err error
		resp.ProposalID, err = ms.Keeper.Propose(ctx, sdk.MustAccAddressFromBech32(msg.Plaintiff), msg.SubnetID, msg.DefendantPeerID, msg.Data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (ms msgServer) ChallengeProposal(goCtx context.Context, msg *types.MsgChallengeProposal) (*types.MsgChallengeProposalResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgChallengeProposal, msg, func(ctx sdk.Context) error {
		return ms.Keeper.ChallengeProposal(ctx, sdk.MustAccAddressFromBech32(msg.Defendant), msg.SubnetID, msg.ProposalID, msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgChallengeProposalResponse{}, nil
}

func (ms msgServer) VoteProposal(goCtx context.Context, msg *types.MsgVoteProposal) (*types.MsgVoteProposalResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgVoteProposal, msg, func(ctx sdk.Context) error {
		return ms.Keeper.VoteProposal(ctx, sdk.MustAccAddressFromBech32(msg.Voter), msg.SubnetID, msg.ProposalID, msg.Vote)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgVoteProposalResponse{}, nil
}

func (ms msgServer) ExecuteProposal(goCtx context.Context, msg *types.MsgExecuteProposal) (*types.MsgExecuteProposalResponse, error) {
	resp := &types.MsgExecuteProposalResponse{}
	err := ms.execute(goCtx, types.TypeMsgExecuteProposal, msg, func(ctx sdk.Context) error {
		var err error
		resp.Outcome, err = ms.Keeper.ExecuteProposal(ctx, msg.SubnetID, msg.ProposalID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (ms msgServer) CancelProposal(goCtx context.Context, msg *types.MsgCancelProposal) (*types.MsgCancelProposalResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgCancelProposal, msg, func(ctx sdk.Context) error {
		return ms.Keeper.CancelProposal(ctx, sdk.MustAccAddressFromBech32(msg.Plaintiff), msg.SubnetID, msg.ProposalID)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgCancelProposalResponse{}, nil
}

// UpdateParams replaces the parameter set under the governance authority.
func (ms msgServer) UpdateParams(goCtx context.Context, msg *types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgUpdateParams, msg, func(ctx sdk.Context) error {
		if err := ms.validateAuthority(msg.Authority); err != nil {
			return err
		}
		if err := ms.SetParams(ctx, msg.Params); err != nil {
			return err
		}
		ms.emitEvent(ctx, types.EventTypeNetworkParamsUpdated,
			sdk.NewAttribute(types.AttributeKeyParam, "all"),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgUpdateParamsResponse{}, nil
}

// SetParam updates one tunable by name under the governance authority.
func (ms msgServer) SetParam(goCtx context.Context, msg *types.MsgSetParam) (*types.MsgSetParamResponse, error) {
	err := ms.execute(goCtx, types.TypeMsgSetParam, msg, func(ctx sdk.Context) error {
		if err := ms.validateAuthority(msg.Authority); err != nil {
			return err
		}
		return ms.SetParamByKey(ctx, msg.Key, msg.Value)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgSetParamResponse{}, nil
}
