package keeper

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

// RegisterInvariants registers all network module invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "stake-aggregates", StakeAggregatesInvariant(k))
	ir.RegisterRoute(types.ModuleName, "delegate-pools", DelegatePoolInvariant(k))
	ir.RegisterRoute(types.ModuleName, "node-index", NodeIndexInvariant(k))
}

// AllInvariants runs all invariants of the network module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := StakeAggregatesInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		res, stop = DelegatePoolInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return NodeIndexInvariant(k)(ctx)
	}
}

// StakeAggregatesInvariant checks that the per-account, per-subnet and
// network totals equal the sums of the (account, subnet) entries.
func StakeAggregatesInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		byAccount := make(map[string]sdkmath.Uint)
		bySubnet := make(map[uint32]sdkmath.Uint)
		total := sdkmath.ZeroUint()

		k.IterateAccountStakes(ctx, func(account sdk.AccAddress, subnetID uint32, amount sdkmath.Uint) bool {
			byAccount[account.String()] = addOrInit(byAccount[account.String()], amount)
			bySubnet[subnetID] = addOrInit(bySubnet[subnetID], amount)
			total = total.Add(amount)
			return false
		})

		var (
			broken bool
			msg    string
		)
		for addr, sum := range byAccount {
			if got := k.GetTotalAccountStake(ctx, sdk.MustAccAddressFromBech32(addr)); !got.Equal(sum) {
				broken = true
				msg += fmt.Sprintf("account %s: total %s, entries sum %s\n", addr, got, sum)
			}
		}
		for id, sum := range bySubnet {
			if got := k.GetTotalSubnetStake(ctx, id); !got.Equal(sum) {
				broken = true
				msg += fmt.Sprintf("subnet %d: total %s, entries sum %s\n", id, got, sum)
			}
		}
		if got := k.GetTotalStake(ctx); !got.Equal(total) {
			broken = true
			msg += fmt.Sprintf("network total %s, entries sum %s\n", got, total)
		}

		return sdk.FormatInvariant(types.ModuleName, "stake-aggregates", msg), broken
	}
}

// DelegatePoolInvariant checks that holder shares never exceed a pool's
// shares and that pool balances add up to the network delegate total.
func DelegatePoolInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		held := make(map[uint32]sdkmath.Uint)
		k.IterateDelegateShares(ctx, func(subnetID uint32, _ sdk.AccAddress, shares sdkmath.Uint) bool {
			held[subnetID] = addOrInit(held[subnetID], shares)
			return false
		})

		var (
			broken bool
			msg    string
		)
		balances := sdkmath.ZeroUint()
		k.IterateDelegatePools(ctx, func(pool types.DelegatePool) bool {
			balances = balances.Add(pool.TotalBalance)
			if sum, ok := held[pool.SubnetID]; ok && sum.GT(pool.TotalShares) {
				broken = true
				msg += fmt.Sprintf("subnet %d: holders own %s of %s shares\n", pool.SubnetID, sum, pool.TotalShares)
			}
			delete(held, pool.SubnetID)
			return false
		})
		for id, sum := range held {
			if !sum.IsZero() {
				broken = true
				msg += fmt.Sprintf("subnet %d: %s shares held without a pool\n", id, sum)
			}
		}
		if got := k.GetTotalDelegateStake(ctx); !got.Equal(balances) {
			broken = true
			msg += fmt.Sprintf("delegate total %s, pool balances sum %s\n", got, balances)
		}

		return sdk.FormatInvariant(types.ModuleName, "delegate-pools", msg), broken
	}
}

// NodeIndexInvariant checks that every node is reachable through its peer id
// and that no subnet holds more nodes than its maximum.
func NodeIndexInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			broken bool
			msg    string
		)
		counts := make(map[uint32]uint32)
		k.IterateAllSubnetNodes(ctx, func(node types.SubnetNode) bool {
			counts[node.SubnetID]++
			byPeer, found := k.GetSubnetNodeByPeerID(ctx, node.SubnetID, node.PeerID)
			if !found || byPeer.Account != node.Account {
				broken = true
				msg += fmt.Sprintf("subnet %d: peer %s does not resolve to %s\n", node.SubnetID, node.PeerID, node.Account)
			}
			return false
		})
		for id, count := range counts {
			subnet, found := k.GetSubnet(ctx, id)
			if !found {
				broken = true
				msg += fmt.Sprintf("subnet %d: %d nodes in unknown subnet\n", id, count)
				continue
			}
			if count > subnet.MaxNodes {
				broken = true
				msg += fmt.Sprintf("subnet %d: %d nodes exceed maximum %d\n", id, count, subnet.MaxNodes)
			}
		}

		return sdk.FormatInvariant(types.ModuleName, "node-index", msg), broken
	}
}

func addOrInit(acc, v sdkmath.Uint) sdkmath.Uint {
	if acc.IsNil() {
		return v
	}
	return acc.Add(v)
}
