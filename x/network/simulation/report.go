package simulation

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/prometheus/client_golang/prometheus"

	sharedkeeper "github.com/paw-chain/tensornet/x/shared/keeper"
)

// MetricsPrefix selects the network module metrics a report carries.
const MetricsPrefix = "tensornet_network_"

// NodeReport is the end state of one node.
type NodeReport struct {
	Account string `json:"account"`
	PeerID  string `json:"peer_id"`
	Stake   string `json:"stake"`
}

// SubnetReport is the end state of one subnet.
type SubnetReport struct {
	ID         uint32       `json:"id"`
	Path       string       `json:"path"`
	Activated  bool         `json:"activated"`
	TotalStake string       `json:"total_stake"`
	Penalties  uint64       `json:"penalties"`
	Nodes      []NodeReport `json:"nodes"`
}

// Report summarises a simulation run.
type Report struct {
	RunID          string             `json:"run_id"`
	Epochs         uint64             `json:"epochs"`
	FinalEpoch     uint64             `json:"final_epoch"`
	TotalStake     string             `json:"total_stake"`
	BlockerErrors  int                `json:"blocker_errors"`
	SkippedActions int                `json:"skipped_actions"`
	Subnets        []SubnetReport     `json:"subnets"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

// BuildReport reads the subnet roster and stake through the read-only
// network keeper interface.
func BuildReport(ctx context.Context, k sharedkeeper.NetworkKeeperV1Extended, epochs uint64) Report {
	report := Report{
		Epochs:     epochs,
		FinalEpoch: k.CurrentEpoch(ctx),
	}
	total := sdkmath.ZeroUint()
	for _, subnet := range k.GetAllSubnets(ctx) {
		subnetStake := k.GetTotalSubnetStake(ctx, subnet.ID)
		total = total.Add(subnetStake)

		sr := SubnetReport{
			ID:         subnet.ID,
			Path:       subnet.Path,
			Activated:  subnet.Activated,
			TotalStake: subnetStake.String(),
			Penalties:  k.GetSubnetPenaltyCount(ctx, subnet.ID),
		}
		for _, node := range k.GetSubnetNodes(ctx, subnet.ID) {
			nr := NodeReport{Account: node.Account, PeerID: node.PeerID, Stake: "0"}
			if acc, err := sdk.AccAddressFromBech32(node.Account); err == nil {
				nr.Stake = k.GetAccountSubnetStake(ctx, acc, subnet.ID).String()
			}
			sr.Nodes = append(sr.Nodes, nr)
		}
		report.Subnets = append(report.Subnets, sr)
	}
	report.TotalStake = total.String()
	report.Metrics = GatherMetrics(prometheus.DefaultGatherer)
	return report
}

// GatherMetrics sums every counter and gauge under MetricsPrefix across
// label values. Gather errors yield whatever families were collected.
func GatherMetrics(g prometheus.Gatherer) map[string]float64 {
	families, _ := g.Gather()
	out := make(map[string]float64)
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, MetricsPrefix) {
			continue
		}
		var sum float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				sum += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				sum += m.GetGauge().GetValue()
			}
		}
		out[strings.TrimPrefix(name, MetricsPrefix)] = sum
	}
	return out
}

// WriteText renders r for a terminal.
func (r Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", r.RunID)
	fmt.Fprintf(&b, "epochs played: %d (final epoch %d)\n", r.Epochs, r.FinalEpoch)
	fmt.Fprintf(&b, "total stake:   %s\n", r.TotalStake)
	fmt.Fprintf(&b, "blocker errors: %d, skipped actions: %d\n", r.BlockerErrors, r.SkippedActions)
	for _, s := range r.Subnets {
		fmt.Fprintf(&b, "\nsubnet %d %s activated=%t stake=%s penalties=%d\n", s.ID, s.Path, s.Activated, s.TotalStake, s.Penalties)
		for _, n := range s.Nodes {
			fmt.Fprintf(&b, "  %s %s\n", n.Account, n.Stake)
		}
	}
	if len(r.Metrics) > 0 {
		names := make([]string, 0, len(r.Metrics))
		for name := range r.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\nmetrics:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  %s %g\n", name, r.Metrics[name])
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
