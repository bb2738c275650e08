package keeper

import (
	"context"
	"math/big"
	"sync"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NetworkMetrics holds all Prometheus metrics for the network module
type NetworkMetrics struct {
	// Stake metrics
	StakeAdded     *prometheus.CounterVec
	StakeRemoved   *prometheus.CounterVec
	DelegateShares *prometheus.CounterVec

	// Consensus metrics
	Submissions  *prometheus.CounterVec
	Attestations prometheus.Counter
	Penalties    *prometheus.CounterVec
	NodeRemovals *prometheus.CounterVec

	// Emission metrics
	RewardsDistributed *prometheus.CounterVec
	Slashes            prometheus.Counter
	SlashedAmount      prometheus.Counter
	Epoch              prometheus.Gauge

	// Dispute metrics
	Proposals *prometheus.CounterVec
}

var (
	networkMetricsOnce sync.Once
	networkMetrics     *NetworkMetrics
)

// NewNetworkMetrics creates and registers network metrics (singleton pattern)
func NewNetworkMetrics() *NetworkMetrics {
	networkMetricsOnce.Do(func() {
		networkMetrics = &NetworkMetrics{
			StakeAdded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tensornet",
					Subsystem: "network",
					Name:      "stake_added_total",
					Help:      "Total stake moved in from the ledger",
				},
				[]string{"kind"},
			),
			StakeRemoved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tensornet",
					Subsystem: "network",
					Name:      "stake_removed_total",
					Help:      "Total stake returned to the ledger",
				},
				[]string{"kind"},
			),
			DelegateShares: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tensornet",
					Subsystem: "network",
					Name:      "delegate_shares_total",
					Help:      "Delegate pool shares minted and burned",
				},
				[]string{"direction"},
			),
			Submissions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tensornet",
					Subsystem: "network",
					Name:      "rewards_submissions_total",
					Help:      "Validator score submissions",
				},
				[]string{"kind"},
			),
			Attestations: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "tensornet",
					Subsystem: "network",
					Name:      "attestations_total",
					Help:      "Attestations recorded on submissions",
				},
			),
			Penalties: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tensornet",
					Subsystem: "network",
					Name:      "penalties_total",
					Help:      "Penalty counter increments",
				},
				[]string{"target", "reason"},
			),
			NodeRemovals: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tensornet",
					Subsystem: "network",
					Name:      "node_removals_total",
					Help:      "Subnet nodes removed",
				},
				[]string{"reason"},
			),
			RewardsDistributed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tensornet",
					Subsystem: "network",
					Name:      "rewards_distributed_total",
					Help:      "Emission credited to stake",
				},
				[]string{"recipient"},
			),
			Slashes: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "tensornet",
					Subsystem: "network",
					Name:      "slashes_total",
					Help:      "Validator slashing events",
				},
			),
			SlashedAmount: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "tensornet",
					Subsystem: "network",
					Name:      "slashed_amount_total",
					Help:      "Stake burned by slashing",
				},
			),
			Epoch: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "tensornet",
					Subsystem: "network",
					Name:      "rewarded_epoch",
					Help:      "Last epoch the reward tick settled",
				},
			),
			Proposals: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tensornet",
					Subsystem: "network",
					Name:      "proposals_total",
					Help:      "Dispute proposals by lifecycle stage",
				},
				[]string{"outcome"},
			),
		}
	})
	return networkMetrics
}

// GetNetworkMetrics returns the singleton network metrics instance
func GetNetworkMetrics() *NetworkMetrics {
	if networkMetrics == nil {
		return NewNetworkMetrics()
	}
	return networkMetrics
}

// uintToFloat converts an amount for metric reporting. Precision loss above
// 2^53 is acceptable here.
func uintToFloat(v sdkmath.Uint) float64 {
	if v.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	return f
}

type metricsBufferKey struct{}

// metricsBuffer queues metric updates made on a branched store until the
// branch is written back.
type metricsBuffer struct {
	updates []func()
}

// recordMetric applies update now, or queues it when ctx is a branch created
// by cacheContext that has not been written yet.
func recordMetric(ctx context.Context, update func()) {
	if buf, ok := ctx.Value(metricsBufferKey{}).(*metricsBuffer); ok {
		buf.updates = append(buf.updates, update)
		return
	}
	update()
}

// cacheContext branches ctx like sdk.Context.CacheContext. Metrics recorded on
// the branch reach Prometheus only through write; a discarded branch leaves
// no counts behind.
func cacheContext(ctx sdk.Context) (sdk.Context, func()) {
	buf := &metricsBuffer{}
	cacheCtx, commit := ctx.CacheContext()
	cacheCtx = cacheCtx.WithContext(context.WithValue(cacheCtx.Context(), metricsBufferKey{}, buf))
	return cacheCtx, func() {
		commit()
		for _, update := range buf.updates {
			recordMetric(ctx, update)
		}
		buf.updates = nil
	}
}
