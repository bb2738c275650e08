package types

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message type names
const (
	TypeMsgRegisterSubnet       = "register_subnet"
	TypeMsgActivateSubnet       = "activate_subnet"
	TypeMsgAddSubnetNode        = "add_subnet_node"
	TypeMsgRemoveSubnetNode     = "remove_subnet_node"
	TypeMsgAddStake             = "add_stake"
	TypeMsgRemoveStake          = "remove_stake"
	TypeMsgAddDelegateStake     = "add_delegate_stake"
	TypeMsgRemoveDelegateStake  = "remove_delegate_stake"
	TypeMsgSubmitRewards        = "submit_rewards"
	TypeMsgAttest               = "attest"
	TypeMsgSubmitAccountantData = "submit_accountant_data"
	TypeMsgPropose              = "propose"
	TypeMsgChallengeProposal    = "challenge_proposal"
	TypeMsgVoteProposal         = "vote_proposal"
	TypeMsgExecuteProposal      = "execute_proposal"
	TypeMsgCancelProposal       = "cancel_proposal"
	TypeMsgUpdateParams         = "update_params"
	TypeMsgSetParam             = "set_param"
)

// MsgServer is the transaction surface of the network module.
type MsgServer interface {
	RegisterSubnet(context.Context, *MsgRegisterSubnet) (*MsgRegisterSubnetResponse, error)
	ActivateSubnet(context.Context, *MsgActivateSubnet) (*MsgActivateSubnetResponse, error)
	AddSubnetNode(context.Context, *MsgAddSubnetNode) (*MsgAddSubnetNodeResponse, error)
	RemoveSubnetNode(context.Context, *MsgRemoveSubnetNode) (*MsgRemoveSubnetNodeResponse, error)
	AddStake(context.Context, *MsgAddStake) (*MsgAddStakeResponse, error)
	RemoveStake(context.Context, *MsgRemoveStake) (*MsgRemoveStakeResponse, error)
	AddDelegateStake(context.Context, *MsgAddDelegateStake) (*MsgAddDelegateStakeResponse, error)
	RemoveDelegateStake(context.Context, *MsgRemoveDelegateStake) (*MsgRemoveDelegateStakeResponse, error)
	SubmitRewards(context.Context, *MsgSubmitRewards) (*MsgSubmitRewardsResponse, error)
	Attest(context.Context, *MsgAttest) (*MsgAttestResponse, error)
	SubmitAccountantData(context.Context, *MsgSubmitAccountantData) (*MsgSubmitAccountantDataResponse, error)
	Propose(context.Context, *MsgPropose) (*MsgProposeResponse, error)
	ChallengeProposal(context.Context, *MsgChallengeProposal) (*MsgChallengeProposalResponse, error)
	VoteProposal(context.Context, *MsgVoteProposal) (*MsgVoteProposalResponse, error)
	ExecuteProposal(context.Context, *MsgExecuteProposal) (*MsgExecuteProposalResponse, error)
	CancelProposal(context.Context, *MsgCancelProposal) (*MsgCancelProposalResponse, error)
	UpdateParams(context.Context, *MsgUpdateParams) (*MsgUpdateParamsResponse, error)
	SetParam(context.Context, *MsgSetParam) (*MsgSetParamResponse, error)
}

// MsgRegisterSubnet registers a new subnet. Authority gated.
type MsgRegisterSubnet struct {
	Authority string `json:"authority"`
	Path      string `json:"path"`
	MemoryMB  uint64 `json:"memory_mb"`
}

type MsgRegisterSubnetResponse struct {
	SubnetID uint32 `json:"subnet_id"`
}

// MsgActivateSubnet opens a registered subnet to consensus once it has enough nodes.
type MsgActivateSubnet struct {
	Signer   string `json:"signer"`
	SubnetID uint32 `json:"subnet_id"`
}

type MsgActivateSubnetResponse struct{}

// MsgAddSubnetNode joins a subnet with an initial stake.
type MsgAddSubnetNode struct {
	Account  string       `json:"account"`
	SubnetID uint32       `json:"subnet_id"`
	PeerID   string       `json:"peer_id"`
	Stake    sdkmath.Uint `json:"stake"`
}

type MsgAddSubnetNodeResponse struct{}

// MsgRemoveSubnetNode leaves a subnet. Stake stays until removed.
type MsgRemoveSubnetNode struct {
	Account  string `json:"account"`
	SubnetID uint32 `json:"subnet_id"`
}

type MsgRemoveSubnetNodeResponse struct{}

type MsgAddStake struct {
	Account  string       `json:"account"`
	SubnetID uint32       `json:"subnet_id"`
	Amount   sdkmath.Uint `json:"amount"`
}

type MsgAddStakeResponse struct{}

type MsgRemoveStake struct {
	Account  string       `json:"account"`
	SubnetID uint32       `json:"subnet_id"`
	Amount   sdkmath.Uint `json:"amount"`
}

type MsgRemoveStakeResponse struct{}

type MsgAddDelegateStake struct {
	Account  string       `json:"account"`
	SubnetID uint32       `json:"subnet_id"`
	Amount   sdkmath.Uint `json:"amount"`
}

type MsgAddDelegateStakeResponse struct {
	Shares sdkmath.Uint `json:"shares"`
}

type MsgRemoveDelegateStake struct {
	Account  string       `json:"account"`
	SubnetID uint32       `json:"subnet_id"`
	Shares   sdkmath.Uint `json:"shares"`
}

type MsgRemoveDelegateStakeResponse struct {
	Amount sdkmath.Uint `json:"amount"`
}

// MsgSubmitRewards carries the elected validator's score vector for the current epoch.
type MsgSubmitRewards struct {
	Validator string      `json:"validator"`
	SubnetID  uint32      `json:"subnet_id"`
	Data      []NodeScore `json:"data"`
}

type MsgSubmitRewardsResponse struct{}

type MsgAttest struct {
	Account  string `json:"account"`
	SubnetID uint32 `json:"subnet_id"`
}

type MsgAttestResponse struct{}

type MsgSubmitAccountantData struct {
	Accountant string `json:"accountant"`
	SubnetID   uint32 `json:"subnet_id"`
	Data       []byte `json:"data"`
}

type MsgSubmitAccountantDataResponse struct{}

type MsgPropose struct {
	Plaintiff       string `json:"plaintiff"`
	SubnetID        uint32 `json:"subnet_id"`
	DefendantPeerID string `json:"defendant_peer_id"`
	Data            []byte `json:"data"`
}

type MsgProposeResponse struct {
	ProposalID uint64 `json:"proposal_id"`
}

type MsgChallengeProposal struct {
	Defendant  string `json:"defendant"`
	SubnetID   uint32 `json:"subnet_id"`
	ProposalID uint64 `json:"proposal_id"`
	Data       []byte `json:"data"`
}

type MsgChallengeProposalResponse struct{}

type MsgVoteProposal struct {
	Voter      string     `json:"voter"`
	SubnetID   uint32     `json:"subnet_id"`
	ProposalID uint64     `json:"proposal_id"`
	Vote       VoteOption `json:"vote"`
}

type MsgVoteProposalResponse struct{}

// MsgExecuteProposal resolves a proposal past its deadline. Anyone may sign.
type MsgExecuteProposal struct {
	Signer     string `json:"signer"`
	SubnetID   uint32 `json:"subnet_id"`
	ProposalID uint64 `json:"proposal_id"`
}

type MsgExecuteProposalResponse struct {
	Outcome ProposalOutcome `json:"outcome"`
}

type MsgCancelProposal struct {
	Plaintiff  string `json:"plaintiff"`
	SubnetID   uint32 `json:"subnet_id"`
	ProposalID uint64 `json:"proposal_id"`
}

type MsgCancelProposalResponse struct{}

// MsgUpdateParams replaces the whole parameter set. Authority gated.
type MsgUpdateParams struct {
	Authority string `json:"authority"`
	Params    Params `json:"params"`
}

type MsgUpdateParamsResponse struct{}

// MsgSetParam updates a single tunable by name. Authority gated.
type MsgSetParam struct {
	Authority string `json:"authority"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

type MsgSetParamResponse struct{}

func validateAddress(field, addr string) error {
	if _, err := sdk.AccAddressFromBech32(addr); err != nil {
		return ErrInvalidAddress.Wrapf("invalid %s address %q: %v", field, addr, err)
	}
	return nil
}

func validatePositive(field string, amount sdkmath.Uint) error {
	if amount.IsNil() || amount.IsZero() {
		return ErrInvalidAmount.Wrapf("%s must be positive", field)
	}
	return CheckBalance(amount)
}

func signer(addr string) []sdk.AccAddress {
	acc, _ := sdk.AccAddressFromBech32(addr)
	return []sdk.AccAddress{acc}
}

// ValidateBasic performs stateless checks on MsgRegisterSubnet.
func (msg *MsgRegisterSubnet) ValidateBasic() error {
	if err := validateAddress("authority", msg.Authority); err != nil {
		return err
	}
	if msg.MemoryMB == 0 {
		return ErrInvalidMemory.Wrap("subnet memory must be positive")
	}
	return ValidateSubnetPath(msg.Path)
}

// GetSigners returns the expected signers for MsgRegisterSubnet
func (msg *MsgRegisterSubnet) GetSigners() []sdk.AccAddress { return signer(msg.Authority) }

// ValidateBasic performs stateless checks on MsgActivateSubnet.
func (msg *MsgActivateSubnet) ValidateBasic() error {
	return validateAddress("signer", msg.Signer)
}

// GetSigners returns the expected signers for MsgActivateSubnet
func (msg *MsgActivateSubnet) GetSigners() []sdk.AccAddress { return signer(msg.Signer) }

// ValidateBasic performs stateless checks on MsgAddSubnetNode.
func (msg *MsgAddSubnetNode) ValidateBasic() error {
	if err := validateAddress("account", msg.Account); err != nil {
		return err
	}
	if err := ValidatePeerID(msg.PeerID); err != nil {
		return err
	}
	return validatePositive("stake", msg.Stake)
}

// GetSigners returns the expected signers for MsgAddSubnetNode
func (msg *MsgAddSubnetNode) GetSigners() []sdk.AccAddress { return signer(msg.Account) }

// ValidateBasic performs stateless checks on MsgRemoveSubnetNode.
func (msg *MsgRemoveSubnetNode) ValidateBasic() error {
	return validateAddress("account", msg.Account)
}

// GetSigners returns the expected signers for MsgRemoveSubnetNode
func (msg *MsgRemoveSubnetNode) GetSigners() []sdk.AccAddress { return signer(msg.Account) }

// ValidateBasic performs stateless checks on MsgAddStake.
func (msg *MsgAddStake) ValidateBasic() error {
	if err := validateAddress("account", msg.Account); err != nil {
		return err
	}
	return validatePositive("amount", msg.Amount)
}

// GetSigners returns the expected signers for MsgAddStake
func (msg *MsgAddStake) GetSigners() []sdk.AccAddress { return signer(msg.Account) }

// ValidateBasic performs stateless checks on MsgRemoveStake.
func (msg *MsgRemoveStake) ValidateBasic() error {
	if err := validateAddress("account", msg.Account); err != nil {
		return err
	}
	return validatePositive("amount", msg.Amount)
}

// GetSigners returns the expected signers for MsgRemoveStake
func (msg *MsgRemoveStake) GetSigners() []sdk.AccAddress { return signer(msg.Account) }

// ValidateBasic performs stateless checks on MsgAddDelegateStake.
func (msg *MsgAddDelegateStake) ValidateBasic() error {
	if err := validateAddress("account", msg.Account); err != nil {
		return err
	}
	return validatePositive("amount", msg.Amount)
}

// GetSigners returns the expected signers for MsgAddDelegateStake
func (msg *MsgAddDelegateStake) GetSigners() []sdk.AccAddress { return signer(msg.Account) }

// ValidateBasic performs stateless checks on MsgRemoveDelegateStake.
func (msg *MsgRemoveDelegateStake) ValidateBasic() error {
	if err := validateAddress("account", msg.Account); err != nil {
		return err
	}
	return validatePositive("shares", msg.Shares)
}

// GetSigners returns the expected signers for MsgRemoveDelegateStake
func (msg *MsgRemoveDelegateStake) GetSigners() []sdk.AccAddress { return signer(msg.Account) }

// ValidateBasic performs stateless checks on MsgSubmitRewards. An empty
// score vector is valid: it reports the subnet as broken.
func (msg *MsgSubmitRewards) ValidateBasic() error {
	if err := validateAddress("validator", msg.Validator); err != nil {
		return err
	}
	return ValidateScores(msg.Data)
}

// GetSigners returns the expected signers for MsgSubmitRewards
func (msg *MsgSubmitRewards) GetSigners() []sdk.AccAddress { return signer(msg.Validator) }

// ValidateBasic performs stateless checks on MsgAttest.
func (msg *MsgAttest) ValidateBasic() error {
	return validateAddress("account", msg.Account)
}

// GetSigners returns the expected signers for MsgAttest
func (msg *MsgAttest) GetSigners() []sdk.AccAddress { return signer(msg.Account) }

// ValidateBasic performs stateless checks on MsgSubmitAccountantData.
func (msg *MsgSubmitAccountantData) ValidateBasic() error {
	if err := validateAddress("accountant", msg.Accountant); err != nil {
		return err
	}
	return ValidatePayload(msg.Data)
}

// GetSigners returns the expected signers for MsgSubmitAccountantData
func (msg *MsgSubmitAccountantData) GetSigners() []sdk.AccAddress { return signer(msg.Accountant) }

// ValidateBasic performs stateless checks on MsgPropose.
func (msg *MsgPropose) ValidateBasic() error {
	if err := validateAddress("plaintiff", msg.Plaintiff); err != nil {
		return err
	}
	if err := ValidatePeerID(msg.DefendantPeerID); err != nil {
		return err
	}
	return ValidatePayload(msg.Data)
}

// GetSigners returns the expected signers for MsgPropose
func (msg *MsgPropose) GetSigners() []sdk.AccAddress { return signer(msg.Plaintiff) }

// ValidateBasic performs stateless checks on MsgChallengeProposal.
func (msg *MsgChallengeProposal) ValidateBasic() error {
	if err := validateAddress("defendant", msg.Defendant); err != nil {
		return err
	}
	return ValidatePayload(msg.Data)
}

// GetSigners returns the expected signers for MsgChallengeProposal
func (msg *MsgChallengeProposal) GetSigners() []sdk.AccAddress { return signer(msg.Defendant) }

// ValidateBasic performs stateless checks on MsgVoteProposal.
func (msg *MsgVoteProposal) ValidateBasic() error {
	if err := validateAddress("voter", msg.Voter); err != nil {
		return err
	}
	if msg.Vote != VoteOptionYay && msg.Vote != VoteOptionNay {
		return ErrInvalidVote.Wrapf("vote option %d", msg.Vote)
	}
	return nil
}

// GetSigners returns the expected signers for MsgVoteProposal
func (msg *MsgVoteProposal) GetSigners() []sdk.AccAddress { return signer(msg.Voter) }

// ValidateBasic performs stateless checks on MsgExecuteProposal.
func (msg *MsgExecuteProposal) ValidateBasic() error {
	return validateAddress("signer", msg.Signer)
}

// GetSigners returns the expected signers for MsgExecuteProposal
func (msg *MsgExecuteProposal) GetSigners() []sdk.AccAddress { return signer(msg.Signer) }

// ValidateBasic performs stateless checks on MsgCancelProposal.
func (msg *MsgCancelProposal) ValidateBasic() error {
	return validateAddress("plaintiff", msg.Plaintiff)
}

// GetSigners returns the expected signers for MsgCancelProposal
func (msg *MsgCancelProposal) GetSigners() []sdk.AccAddress { return signer(msg.Plaintiff) }

// ValidateBasic performs stateless checks on MsgUpdateParams.
func (msg *MsgUpdateParams) ValidateBasic() error {
	if err := validateAddress("authority", msg.Authority); err != nil {
		return err
	}
	return msg.Params.Validate()
}

// GetSigners returns the expected signers for MsgUpdateParams
func (msg *MsgUpdateParams) GetSigners() []sdk.AccAddress { return signer(msg.Authority) }

// ValidateBasic performs stateless checks on MsgSetParam.
func (msg *MsgSetParam) ValidateBasic() error {
	if err := validateAddress("authority", msg.Authority); err != nil {
		return err
	}
	if msg.Key == "" {
		return ErrInvalidParams.Wrap("param key cannot be empty")
	}
	return nil
}

// GetSigners returns the expected signers for MsgSetParam
func (msg *MsgSetParam) GetSigners() []sdk.AccAddress { return signer(msg.Authority) }
