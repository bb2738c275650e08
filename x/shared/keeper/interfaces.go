// Package keeper provides shared keeper interfaces for cross-module communication.
// Versioned interfaces keep the API contract stable for consumers outside x/network.
package keeper

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	networktypes "github.com/paw-chain/tensornet/x/network/types"
)

// NetworkKeeperV1 is the read-only view of the network module other modules
// and tools depend on instead of the concrete keeper.
type NetworkKeeperV1 interface {
	// CurrentEpoch returns the epoch of the block in ctx.
	CurrentEpoch(ctx context.Context) uint64

	// GetSubnet returns a registered subnet by id.
	GetSubnet(ctx context.Context, subnetID uint32) (networktypes.Subnet, bool)

	// GetAccountSubnetStake returns the direct stake of account in subnet.
	GetAccountSubnetStake(ctx context.Context, account sdk.AccAddress, subnetID uint32) sdkmath.Uint
}

// NetworkKeeperV1Extended adds the roster and role queries.
type NetworkKeeperV1Extended interface {
	NetworkKeeperV1

	// GetAllSubnets returns every registered subnet in id order.
	GetAllSubnets(ctx context.Context) []networktypes.Subnet

	// GetSubnetNodes returns the nodes of subnet in account order.
	GetSubnetNodes(ctx context.Context, subnetID uint32) []networktypes.SubnetNode

	// GetSubnetValidator returns the validator elected for subnet in epoch.
	GetSubnetValidator(ctx context.Context, subnetID uint32, epoch uint64) (sdk.AccAddress, bool)

	// GetTotalSubnetStake returns the direct stake held in subnet.
	GetTotalSubnetStake(ctx context.Context, subnetID uint32) sdkmath.Uint

	// GetSubnetPenaltyCount returns the penalty counter of subnet.
	GetSubnetPenaltyCount(ctx context.Context, subnetID uint32) uint64
}

// NetworkKeeperVersion is the current network keeper interface version.
const NetworkKeeperVersion = "v1.0.0"
