package types

import (
	"github.com/cosmos/cosmos-sdk/codec"
)

// RegisterLegacyAminoCodec registers the x/network messages and records on the
// provided LegacyAmino codec.
func RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&MsgRegisterSubnet{}, "tensornet/network/MsgRegisterSubnet", nil)
	cdc.RegisterConcrete(&MsgActivateSubnet{}, "tensornet/network/MsgActivateSubnet", nil)
	cdc.RegisterConcrete(&MsgAddSubnetNode{}, "tensornet/network/MsgAddSubnetNode", nil)
	cdc.RegisterConcrete(&MsgRemoveSubnetNode{}, "tensornet/network/MsgRemoveSubnetNode", nil)
	cdc.RegisterConcrete(&MsgAddStake{}, "tensornet/network/MsgAddStake", nil)
	cdc.RegisterConcrete(&MsgRemoveStake{}, "tensornet/network/MsgRemoveStake", nil)
	cdc.RegisterConcrete(&MsgAddDelegateStake{}, "tensornet/network/MsgAddDelegateStake", nil)
	cdc.RegisterConcrete(&MsgRemoveDelegateStake{}, "tensornet/network/MsgRemoveDelegateStake", nil)
	cdc.RegisterConcrete(&MsgSubmitRewards{}, "tensornet/network/MsgSubmitRewards", nil)
	cdc.RegisterConcrete(&MsgAttest{}, "tensornet/network/MsgAttest", nil)
	cdc.RegisterConcrete(&MsgSubmitAccountantData{}, "tensornet/network/MsgSubmitAccountantData", nil)
	cdc.RegisterConcrete(&MsgPropose{}, "tensornet/network/MsgPropose", nil)
	cdc.RegisterConcrete(&MsgChallengeProposal{}, "tensornet/network/MsgChallengeProposal", nil)
	cdc.RegisterConcrete(&MsgVoteProposal{}, "tensornet/network/MsgVoteProposal", nil)
	cdc.RegisterConcrete(&MsgExecuteProposal{}, "tensornet/network/MsgExecuteProposal", nil)
	cdc.RegisterConcrete(&MsgCancelProposal{}, "tensornet/network/MsgCancelProposal", nil)
	cdc.RegisterConcrete(&MsgUpdateParams{}, "tensornet/network/MsgUpdateParams", nil)
	cdc.RegisterConcrete(&MsgSetParam{}, "tensornet/network/MsgSetParam", nil)
}

var (
	// ModuleCdc encodes every stored network record.
	ModuleCdc = codec.NewLegacyAmino()
)

func init() {
	RegisterLegacyAminoCodec(ModuleCdc)
	ModuleCdc.Seal()
}
