package keeper

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/paw-chain/tensornet/x/network/types"
)

var _ types.QueryServer = queryServer{}

type queryServer struct {
	Keeper
}

// NewQueryServerImpl returns an implementation of the QueryServer interface
func NewQueryServerImpl(keeper Keeper) types.QueryServer {
	return queryServer{Keeper: keeper}
}

// Params returns the module parameters
func (qs queryServer) Params(ctx context.Context, req *types.QueryParamsRequest) (*types.QueryParamsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	return &types.QueryParamsResponse{Params: qs.GetParams(ctx)}, nil
}

// Subnet returns a subnet by ID or path along with its aggregates.
func (qs queryServer) Subnet(ctx context.Context, req *types.QuerySubnetRequest) (*types.QuerySubnetResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}

	var (
		subnet types.Subnet
		found  bool
	)
	switch {
	case req.ID != 0:
		subnet, found = qs.GetSubnet(ctx, req.ID)
	case req.Path != "":
		subnet, found = qs.GetSubnetByPath(ctx, req.Path)
	default:
		return nil, status.Error(codes.InvalidArgument, "subnet id or path required")
	}
	if !found {
		return nil, status.Error(codes.NotFound, "subnet not found")
	}

	return &types.QuerySubnetResponse{
		Subnet:    subnet,
		NodeCount: qs.GetSubnetNodeCount(ctx, subnet.ID),
		Stake:     qs.GetTotalSubnetStake(ctx, subnet.ID),
		Penalties: qs.GetSubnetPenaltyCount(ctx, subnet.ID),
	}, nil
}

// SubnetNodes lists nodes of a subnet holding at least the requested class at
// the current epoch.
func (qs queryServer) SubnetNodes(ctx context.Context, req *types.QuerySubnetNodesRequest) (*types.QuerySubnetNodesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	if _, found := qs.GetSubnet(ctx, req.SubnetID); !found {
		return nil, status.Error(codes.NotFound, "subnet not found")
	}

	epoch := qs.CurrentEpoch(ctx)
	if req.Class == "" {
		return &types.QuerySubnetNodesResponse{Epoch: epoch, Nodes: qs.GetSubnetNodes(ctx, req.SubnetID)}, nil
	}
	class, err := types.ParseNodeClass(req.Class)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &types.QuerySubnetNodesResponse{
		Epoch: epoch,
		Nodes: qs.GetSubnetNodesByClass(ctx, req.SubnetID, class, epoch),
	}, nil
}

// UnconfirmedEpochCount counts the subnet's submissions not yet rewarded.
func (qs queryServer) UnconfirmedEpochCount(ctx context.Context, req *types.QueryUnconfirmedEpochCountRequest) (*types.QueryUnconfirmedEpochCountResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	return &types.QueryUnconfirmedEpochCountResponse{Count: qs.Keeper.UnconfirmedEpochCount(ctx, req.SubnetID)}, nil
}

func (qs queryServer) RewardsSubmission(ctx context.Context, req *types.QueryRewardsSubmissionRequest) (*types.QueryRewardsSubmissionResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	submission, found := qs.GetRewardsSubmission(ctx, req.SubnetID, req.Epoch)
	if !found {
		return nil, status.Error(codes.NotFound, "rewards submission not found")
	}
	return &types.QueryRewardsSubmissionResponse{Submission: submission}, nil
}

func (qs queryServer) Proposal(ctx context.Context, req *types.QueryProposalRequest) (*types.QueryProposalResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	proposal, found := qs.GetProposal(ctx, req.SubnetID, req.ProposalID)
	if !found {
		return nil, status.Error(codes.NotFound, "proposal not found")
	}
	return &types.QueryProposalResponse{Proposal: proposal}, nil
}

func (qs queryServer) AccountantReport(ctx context.Context, req *types.QueryAccountantReportRequest) (*types.QueryAccountantReportResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	accountant, err := sdk.AccAddressFromBech32(req.Accountant)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid accountant address")
	}
	report, found := qs.GetAccountantReport(ctx, req.SubnetID, req.Epoch, accountant)
	if !found {
		return nil, status.Error(codes.NotFound, "accountant report not found")
	}
	return &types.QueryAccountantReportResponse{Report: report}, nil
}

// MinSubnetNodes returns the node floor a subnet of MemoryMB would receive.
func (qs queryServer) MinSubnetNodes(ctx context.Context, req *types.QueryMinSubnetNodesRequest) (*types.QueryMinSubnetNodesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	if req.MemoryMB == 0 {
		return nil, status.Error(codes.InvalidArgument, "memory must be positive")
	}
	return &types.QueryMinSubnetNodesResponse{MinNodes: qs.Keeper.MinSubnetNodes(ctx, req.MemoryMB)}, nil
}

func (qs queryServer) AccountStake(ctx context.Context, req *types.QueryAccountStakeRequest) (*types.QueryAccountStakeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	account, err := sdk.AccAddressFromBech32(req.Account)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid account address")
	}
	return &types.QueryAccountStakeResponse{
		Stake:        qs.GetAccountSubnetStake(ctx, account, req.SubnetID),
		AccountTotal: qs.GetTotalAccountStake(ctx, account),
	}, nil
}

func (qs queryServer) DelegateStake(ctx context.Context, req *types.QueryDelegateStakeRequest) (*types.QueryDelegateStakeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	account, err := sdk.AccAddressFromBech32(req.Account)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid account address")
	}
	shares := qs.GetDelegateShares(ctx, account, req.SubnetID)
	balance := sdkmath.ZeroUint()
	if !shares.IsZero() {
		balance = qs.GetDelegateBalance(ctx, account, req.SubnetID)
	}
	return &types.QueryDelegateStakeResponse{
		Shares:  shares,
		Balance: balance,
		Pool:    qs.GetDelegatePool(ctx, req.SubnetID),
	}, nil
}

func (qs queryServer) Penalties(ctx context.Context, req *types.QueryPenaltiesRequest) (*types.QueryPenaltiesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	if req.Account == "" && req.SubnetID == 0 {
		return nil, status.Error(codes.InvalidArgument, "account or subnet id required")
	}

	resp := &types.QueryPenaltiesResponse{}
	if req.Account != "" {
		account, err := sdk.AccAddressFromBech32(req.Account)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "invalid account address")
		}
		resp.AccountPenalties = qs.GetAccountPenaltyCount(ctx, account)
	}
	if req.SubnetID != 0 {
		resp.SubnetPenalties = qs.GetSubnetPenaltyCount(ctx, req.SubnetID)
	}
	return resp, nil
}
