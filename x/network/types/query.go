package types

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// QueryServer is the read-only surface of the network module.
type QueryServer interface {
	Params(context.Context, *QueryParamsRequest) (*QueryParamsResponse, error)
	Subnet(context.Context, *QuerySubnetRequest) (*QuerySubnetResponse, error)
	SubnetNodes(context.Context, *QuerySubnetNodesRequest) (*QuerySubnetNodesResponse, error)
	UnconfirmedEpochCount(context.Context, *QueryUnconfirmedEpochCountRequest) (*QueryUnconfirmedEpochCountResponse, error)
	RewardsSubmission(context.Context, *QueryRewardsSubmissionRequest) (*QueryRewardsSubmissionResponse, error)
	Proposal(context.Context, *QueryProposalRequest) (*QueryProposalResponse, error)
	AccountantReport(context.Context, *QueryAccountantReportRequest) (*QueryAccountantReportResponse, error)
	MinSubnetNodes(context.Context, *QueryMinSubnetNodesRequest) (*QueryMinSubnetNodesResponse, error)
	AccountStake(context.Context, *QueryAccountStakeRequest) (*QueryAccountStakeResponse, error)
	DelegateStake(context.Context, *QueryDelegateStakeRequest) (*QueryDelegateStakeResponse, error)
	Penalties(context.Context, *QueryPenaltiesRequest) (*QueryPenaltiesResponse, error)
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `json:"params"`
}

// QuerySubnetRequest looks a subnet up by ID, or by Path when ID is zero.
type QuerySubnetRequest struct {
	ID   uint32 `json:"id"`
	Path string `json:"path"`
}

type QuerySubnetResponse struct {
	Subnet    Subnet       `json:"subnet"`
	NodeCount uint32       `json:"node_count"`
	Stake     sdkmath.Uint `json:"stake"`
	Penalties uint64       `json:"penalties"`
}

// QuerySubnetNodesRequest lists nodes of at least Class ("" lists every node).
type QuerySubnetNodesRequest struct {
	SubnetID uint32 `json:"subnet_id"`
	Class    string `json:"class"`
}

type QuerySubnetNodesResponse struct {
	Epoch uint64       `json:"epoch"`
	Nodes []SubnetNode `json:"nodes"`
}

type QueryUnconfirmedEpochCountRequest struct {
	SubnetID uint32 `json:"subnet_id"`
}

type QueryUnconfirmedEpochCountResponse struct {
	Count uint64 `json:"count"`
}

type QueryRewardsSubmissionRequest struct {
	SubnetID uint32 `json:"subnet_id"`
	Epoch    uint64 `json:"epoch"`
}

type QueryRewardsSubmissionResponse struct {
	Submission EpochRewardsSubmission `json:"submission"`
}

type QueryProposalRequest struct {
	SubnetID   uint32 `json:"subnet_id"`
	ProposalID uint64 `json:"proposal_id"`
}

type QueryProposalResponse struct {
	Proposal Proposal `json:"proposal"`
}

type QueryAccountantReportRequest struct {
	SubnetID   uint32 `json:"subnet_id"`
	Epoch      uint64 `json:"epoch"`
	Accountant string `json:"accountant"`
}

type QueryAccountantReportResponse struct {
	Report AccountantReport `json:"report"`
}

type QueryMinSubnetNodesRequest struct {
	MemoryMB uint64 `json:"memory_mb"`
}

type QueryMinSubnetNodesResponse struct {
	MinNodes uint32 `json:"min_nodes"`
}

type QueryAccountStakeRequest struct {
	Account  string `json:"account"`
	SubnetID uint32 `json:"subnet_id"`
}

type QueryAccountStakeResponse struct {
	Stake        sdkmath.Uint `json:"stake"`
	AccountTotal sdkmath.Uint `json:"account_total"`
}

type QueryDelegateStakeRequest struct {
	Account  string `json:"account"`
	SubnetID uint32 `json:"subnet_id"`
}

type QueryDelegateStakeResponse struct {
	Shares  sdkmath.Uint `json:"shares"`
	Balance sdkmath.Uint `json:"balance"`
	Pool    DelegatePool `json:"pool"`
}

// QueryPenaltiesRequest reads the account counter when Account is set and the
// subnet counter when SubnetID is set.
type QueryPenaltiesRequest struct {
	Account  string `json:"account"`
	SubnetID uint32 `json:"subnet_id"`
}

type QueryPenaltiesResponse struct {
	AccountPenalties uint64 `json:"account_penalties"`
	SubnetPenalties  uint64 `json:"subnet_penalties"`
}
