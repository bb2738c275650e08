package types

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// NetworkHooks lets other modules react to membership and penalty changes.
type NetworkHooks interface {
	// AfterSubnetNodeRemoved is called once a node has left its subnet, for any reason.
	AfterSubnetNodeRemoved(ctx context.Context, subnetID uint32, account sdk.AccAddress, reason string) error

	// AfterAccountSlashed is called after stake has been burned from account.
	AfterAccountSlashed(ctx context.Context, subnetID uint32, account sdk.AccAddress, amount sdkmath.Uint) error

	// AfterProposalResolved is called when a dispute reaches a terminal state.
	AfterProposalResolved(ctx context.Context, subnetID uint32, proposalID uint64, outcome ProposalOutcome) error
}

// MultiNetworkHooks combines multiple network hooks into a single hook that calls all of them.
type MultiNetworkHooks []NetworkHooks

// NewMultiNetworkHooks creates a new MultiNetworkHooks from a list of hooks.
func NewMultiNetworkHooks(hooks ...NetworkHooks) MultiNetworkHooks {
	return hooks
}

// AfterSubnetNodeRemoved calls AfterSubnetNodeRemoved on all registered hooks.
func (h MultiNetworkHooks) AfterSubnetNodeRemoved(ctx context.Context, subnetID uint32, account sdk.AccAddress, reason string) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.AfterSubnetNodeRemoved(ctx, subnetID, account, reason); err != nil {
			return err
		}
	}
	return nil
}

// AfterAccountSlashed calls AfterAccountSlashed on all registered hooks.
func (h MultiNetworkHooks) AfterAccountSlashed(ctx context.Context, subnetID uint32, account sdk.AccAddress, amount sdkmath.Uint) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.AfterAccountSlashed(ctx, subnetID, account, amount); err != nil {
			return err
		}
	}
	return nil
}

// AfterProposalResolved calls AfterProposalResolved on all registered hooks.
func (h MultiNetworkHooks) AfterProposalResolved(ctx context.Context, subnetID uint32, proposalID uint64, outcome ProposalOutcome) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.AfterProposalResolved(ctx, subnetID, proposalID, outcome); err != nil {
			return err
		}
	}
	return nil
}
