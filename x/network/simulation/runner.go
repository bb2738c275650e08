package simulation

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"github.com/paw-chain/tensornet/x/network/keeper"
	"github.com/paw-chain/tensornet/x/network/types"
	sharedabci "github.com/paw-chain/tensornet/x/shared/abci"
)

// maxScore bounds the scores simulated validators hand out.
const maxScore = 1_000

// Node is a simulated subnet node.
type Node struct {
	Account sdk.AccAddress
	PeerID  string
}

// NodeAt returns the deterministic identity of node i of subnet.
func NodeAt(subnet, i int) Node {
	digest := sha256.Sum256([]byte(fmt.Sprintf("sim-node-%d-%d", subnet, i)))
	return Node{
		Account: sdk.AccAddress(digest[:20]),
		PeerID:  base58.Encode(append([]byte{0x12, 0x20}, digest[:]...)),
	}
}

// Runner plays a Config against a Harness.
type Runner struct {
	cfg     Config
	harness *Harness
	rng     *rand.Rand
	logger  log.Logger
	runID   string

	subnets       map[uint32][]Node
	// blockerErrors counts handled begin blocker failures.
	blockerErrors int
	skipped       int
}

// NewRunner builds a harness for cfg, applies its param overrides and
// registers its subnets.
func NewRunner(logger log.Logger, cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h, err := NewHarness(logger, cfg.Seed)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	r := &Runner{
		runID:   runID,
		cfg:     cfg,
		harness: h,
		rng:     rand.New(rand.NewPCG(uint64(cfg.Seed), 0x74656e736f726e65)), // #nosec G115 G404 -- reproducible draws
		logger:  logger.With("module", "simulation", "run_id", runID),
		subnets: make(map[uint32][]Node),
	}
	if err := r.applyParams(); err != nil {
		return nil, err
	}
	if err := r.setupSubnets(); err != nil {
		return nil, err
	}
	return r, nil
}

// Harness returns the harness the runner drives.
func (r *Runner) Harness() *Harness {
	return r.harness
}

func (r *Runner) applyParams() error {
	ctx := r.harness.Context()
	k := r.harness.Keeper

	keys := make([]string, 0, len(r.cfg.ParamOverrides))
	for key := range r.cfg.ParamOverrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := k.SetParamByKey(ctx, key, r.cfg.ParamOverrides[key]); err != nil {
			return errorsmod.Wrapf(err, "param %s", key)
		}
	}
	if t := r.cfg.Tenure; t != nil {
		if err := k.SetNodeTenure(ctx, t.Included, t.Submittable, t.Accountant); err != nil {
			return errorsmod.Wrap(err, "node tenure")
		}
	}
	return nil
}

func (r *Runner) setupSubnets() error {
	ctx := r.harness.Context()
	k := r.harness.Keeper
	stake := sdkmath.NewUint(r.cfg.Stake)

	for s := 0; s < r.cfg.Subnets; s++ {
		id, err := k.RegisterSubnet(ctx, fmt.Sprintf("sim/subnet-%d", s), r.cfg.MemoryMB)
		if err != nil {
			return err
		}
		nodes := make([]Node, r.cfg.NodesPerSubnet)
		for i := range nodes {
			nodes[i] = NodeAt(s, i)
			r.harness.Ledger.Credit(ctx, nodes[i].Account, stake.MulUint64(2))
			if err := k.AddSubnetNode(ctx, nodes[i].Account, id, nodes[i].PeerID, stake); err != nil {
				return errorsmod.Wrapf(err, "subnet %d node %d", id, i)
			}
		}
		if err := k.ActivateSubnet(ctx, id); err != nil {
			return err
		}
		r.subnets[id] = nodes
	}
	return nil
}

// Run plays every configured epoch and settles the last one. It stops early
// when ctx is done.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	k := r.harness.Keeper
	epochLength := k.GetParams(r.harness.Context()).EpochLength
	if epochLength > math.MaxInt64/(r.cfg.Epochs+2) {
		return Report{}, ErrInvalidConfig.Wrap("epochs overflow block height")
	}

	for epoch := uint64(1); epoch <= r.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		if err := r.beginEpoch(epoch, epochLength); err != nil {
			return Report{}, err
		}
		r.harness.SetHeight(int64(epoch*epochLength + epochLength/2)) // #nosec G115 -- bounded above
		if err := r.playEpoch(epoch); err != nil {
			return Report{}, err
		}
	}
	if err := r.beginEpoch(r.cfg.Epochs+1, epochLength); err != nil {
		return Report{}, err
	}

	report := BuildReport(r.harness.Context(), k, r.cfg.Epochs)
	report.RunID = r.runID
	report.BlockerErrors = r.blockerErrors
	report.SkippedActions = r.skipped
	if msg, broken := keeper.AllInvariants(*k)(r.harness.Context()); broken {
		return report, ErrInvariantBroken.Wrap(msg)
	}
	return report, nil
}

func (r *Runner) beginEpoch(epoch, epochLength uint64) error {
	if err := r.harness.BeginBlock(int64(epoch * epochLength)); err != nil { // #nosec G115 -- bounded in Run
		return err
	}
	for _, e := range r.harness.Context().EventManager().Events() {
		if e.Type == sharedabci.EventTypeBlockerError {
			r.blockerErrors++
		}
	}
	r.logger.Debug("epoch started", "epoch", epoch, "height", r.harness.Context().BlockHeight())
	return nil
}

func (r *Runner) subnetIDs() []uint32 {
	ids := make([]uint32, 0, len(r.subnets))
	for id := range r.subnets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// playEpoch has each elected validator submit scores, the other nodes attest
// and the accountants file reports.
func (r *Runner) playEpoch(epoch uint64) error {
	ctx := r.harness.Context()
	k := r.harness.Keeper

	for _, id := range r.subnetIDs() {
		validator, found := k.GetSubnetValidator(ctx, id, epoch)
		if !found {
			continue
		}
		if r.rng.Float64() < r.cfg.MissRate {
			r.logger.Debug("validator skips submission", "subnet_id", id, "epoch", epoch)
			continue
		}

		nodes := r.subnets[id]
		scores := make([]types.NodeScore, 0, len(nodes))
		for _, n := range nodes {
			scores = append(scores, types.NodeScore{
				PeerID: n.PeerID,
				Score:  sdkmath.NewUint(1 + r.rng.Uint64N(maxScore)),
			})
		}
		if err := k.SubmitRewards(ctx, validator, id, scores); err != nil {
			return errorsmod.Wrapf(err, "subnet %d epoch %d submit", id, epoch)
		}

		attesters := int(math.Ceil(r.cfg.AttestRatio * float64(len(nodes))))
		for _, n := range nodes[:attesters] {
			err := k.Attest(ctx, n.Account, id)
			switch {
			case err == nil:
			case errorsmod.IsOf(err, types.ErrAlreadyAttested, types.ErrNodeNotEligible, types.ErrSubnetNodeNotFound):
				r.skipped++
			default:
				return errorsmod.Wrapf(err, "subnet %d epoch %d attest", id, epoch)
			}
		}

		for _, accountant := range k.GetSubnetAccountants(ctx, id, epoch) {
			data := []byte(fmt.Sprintf("subnet=%d epoch=%d", id, epoch))
			if err := k.SubmitAccountantData(ctx, accountant, id, data); err != nil {
				return errorsmod.Wrapf(err, "subnet %d epoch %d accountant report", id, epoch)
			}
		}
	}
	return nil
}

// Run builds a runner for cfg and plays it.
func Run(ctx context.Context, logger log.Logger, cfg Config) (Report, error) {
	r, err := NewRunner(logger, cfg)
	if err != nil {
		return Report{}, err
	}
	return r.Run(ctx)
}
