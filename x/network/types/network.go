package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Subnet is a registered compute-provider group.
type Subnet struct {
	ID              uint32 `json:"id" yaml:"id"`
	Path            string `json:"path" yaml:"path"`
	MemoryMB        uint64 `json:"memory_mb" yaml:"memory_mb"`
	MinNodes        uint32 `json:"min_nodes" yaml:"min_nodes"`
	MaxNodes        uint32 `json:"max_nodes" yaml:"max_nodes"`
	Activated       bool   `json:"activated" yaml:"activated"`
	RegisteredBlock int64  `json:"registered_block" yaml:"registered_block"`
	ActivatedBlock  int64  `json:"activated_block" yaml:"activated_block"`
}

// NodeClass is the tenure-derived role a subnet node may play.
type NodeClass uint8

const (
	NodeClassRegistered NodeClass = iota
	NodeClassIncluded
	NodeClassSubmittable
	NodeClassAccountant
)

var nodeClassNames = map[NodeClass]string{
	NodeClassRegistered:  "registered",
	NodeClassIncluded:    "included",
	NodeClassSubmittable: "submittable",
	NodeClassAccountant:  "accountant",
}

func (c NodeClass) String() string {
	if name, ok := nodeClassNames[c]; ok {
		return name
	}
	return fmt.Sprintf("NodeClass(%d)", uint8(c))
}

// ParseNodeClass maps a class name back to its NodeClass.
func ParseNodeClass(name string) (NodeClass, error) {
	for class, n := range nodeClassNames {
		if n == name {
			return class, nil
		}
	}
	return NodeClassRegistered, ErrInvalidData.Wrapf("unknown node class %q", name)
}

// SubnetNode is an account's participation slot within a subnet.
type SubnetNode struct {
	SubnetID  uint32 `json:"subnet_id" yaml:"subnet_id"`
	Account   string `json:"account" yaml:"account"`
	PeerID    string `json:"peer_id" yaml:"peer_id"`
	InitEpoch uint64 `json:"init_epoch" yaml:"init_epoch"`
	Absences  uint32 `json:"absences" yaml:"absences"`
}

// Class returns the role the node qualifies for at epoch.
func (n SubnetNode) Class(epoch uint64, p Params) NodeClass {
	if epoch < n.InitEpoch {
		return NodeClassRegistered
	}
	tenure := epoch - n.InitEpoch
	switch {
	case tenure >= p.NodeAccountantEpochs:
		return NodeClassAccountant
	case tenure >= p.NodeSubmittableEpochs:
		return NodeClassSubmittable
	case tenure >= p.NodeIncludedEpochs:
		return NodeClassIncluded
	default:
		return NodeClassRegistered
	}
}

// HasClass reports whether the node is at least class at epoch.
func (n SubnetNode) HasClass(class NodeClass, epoch uint64, p Params) bool {
	return n.Class(epoch, p) >= class
}

// NodeScore is a validator-reported score for one peer.
type NodeScore struct {
	PeerID string       `json:"peer_id" yaml:"peer_id"`
	Score  sdkmath.Uint `json:"score" yaml:"score"`
}

// Attestation records that an account agreed with a submission.
type Attestation struct {
	Account string `json:"account" yaml:"account"`
	Block   int64  `json:"block" yaml:"block"`
}

// EpochRewardsSubmission is the validator's score vector for one (subnet, epoch).
type EpochRewardsSubmission struct {
	SubnetID   uint32        `json:"subnet_id" yaml:"subnet_id"`
	Epoch      uint64        `json:"epoch" yaml:"epoch"`
	Validator  string        `json:"validator" yaml:"validator"`
	NodesCount uint32        `json:"nodes_count" yaml:"nodes_count"`
	Sum        sdkmath.Uint  `json:"sum" yaml:"sum"`
	Attests    []Attestation `json:"attests" yaml:"attests"`
	Data       []NodeScore   `json:"data" yaml:"data"`
	Complete   bool          `json:"complete" yaml:"complete"`
	Block      int64         `json:"block" yaml:"block"`
}

// HasAttested reports whether account is in the attestation set.
func (s EpochRewardsSubmission) HasAttested(account string) bool {
	_, found := s.attestIndex(account)
	return found
}

// AddAttestation inserts account keeping Attests sorted. It returns false when
// the account already attested.
func (s *EpochRewardsSubmission) AddAttestation(account string, block int64) bool {
	i, found := s.attestIndex(account)
	if found {
		return false
	}
	s.Attests = append(s.Attests, Attestation{})
	copy(s.Attests[i+1:], s.Attests[i:])
	s.Attests[i] = Attestation{Account: account, Block: block}
	return true
}

// AttestationRatio is len(Attests)/NodesCount as a percentage.
func (s EpochRewardsSubmission) AttestationRatio() uint64 {
	return RatioPercent(uint64(len(s.Attests)), uint64(s.NodesCount))
}

// ScoreFor returns the score reported for peerID.
func (s EpochRewardsSubmission) ScoreFor(peerID string) (sdkmath.Uint, bool) {
	for _, d := range s.Data {
		if d.PeerID == peerID {
			return d.Score, true
		}
	}
	return sdkmath.ZeroUint(), false
}

func (s EpochRewardsSubmission) attestIndex(account string) (int, bool) {
	lo, hi := 0, len(s.Attests)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.Attests[mid].Account < account {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(s.Attests) && s.Attests[lo].Account == account
}

// AccountantReport is the audit payload an elected accountant files for an epoch.
type AccountantReport struct {
	SubnetID   uint32 `json:"subnet_id" yaml:"subnet_id"`
	Epoch      uint64 `json:"epoch" yaml:"epoch"`
	Accountant string `json:"accountant" yaml:"accountant"`
	Data       []byte `json:"data" yaml:"data"`
	Block      int64  `json:"block" yaml:"block"`
}

// ProposalOutcome is the resolution of a dispute.
type ProposalOutcome uint32

const (
	ProposalOutcomePending ProposalOutcome = iota
	ProposalOutcomePlaintiffWins
	ProposalOutcomeDefendantWins
	ProposalOutcomeVoid
	ProposalOutcomeCancelled
)

func (o ProposalOutcome) String() string {
	switch o {
	case ProposalOutcomePending:
		return "pending"
	case ProposalOutcomePlaintiffWins:
		return "plaintiff_wins"
	case ProposalOutcomeDefendantWins:
		return "defendant_wins"
	case ProposalOutcomeVoid:
		return "void"
	case ProposalOutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("ProposalOutcome(%d)", uint32(o))
	}
}

// VoteOption is a ballot cast on a challenged proposal.
type VoteOption uint32

const (
	VoteOptionUnspecified VoteOption = iota
	VoteOptionYay
	VoteOptionNay
)

// Proposal is a bonded accusation of dishonesty against a subnet node.
type Proposal struct {
	ID              uint64          `json:"id" yaml:"id"`
	SubnetID        uint32          `json:"subnet_id" yaml:"subnet_id"`
	Plaintiff       string          `json:"plaintiff" yaml:"plaintiff"`
	Defendant       string          `json:"defendant" yaml:"defendant"`
	DefendantPeerID string          `json:"defendant_peer_id" yaml:"defendant_peer_id"`
	PlaintiffBond   sdkmath.Uint    `json:"plaintiff_bond" yaml:"plaintiff_bond"`
	DefendantBond   sdkmath.Uint    `json:"defendant_bond" yaml:"defendant_bond"`
	EligibleVoters  []string        `json:"eligible_voters" yaml:"eligible_voters"`
	Yays            []string        `json:"yays" yaml:"yays"`
	Nays            []string        `json:"nays" yaml:"nays"`
	StartBlock      int64           `json:"start_block" yaml:"start_block"`
	ChallengeBlock  int64           `json:"challenge_block" yaml:"challenge_block"`
	PlaintiffData   []byte          `json:"plaintiff_data" yaml:"plaintiff_data"`
	DefendantData   []byte          `json:"defendant_data" yaml:"defendant_data"`
	Complete        bool            `json:"complete" yaml:"complete"`
	Outcome         ProposalOutcome `json:"outcome" yaml:"outcome"`
}

// Challenged reports whether the defendant posted a counter-bond.
func (p Proposal) Challenged() bool {
	return p.ChallengeBlock != 0
}

// IsEligibleVoter reports whether account belongs to the filing snapshot.
func (p Proposal) IsEligibleVoter(account string) bool {
	return containsSorted(p.EligibleVoters, account)
}

// HasVoted reports whether account appears in either vote set.
func (p Proposal) HasVoted(account string) bool {
	return contains(p.Yays, account) || contains(p.Nays, account)
}

func containsSorted(list []string, s string) bool {
	lo, hi := 0, len(list)
	for lo < hi {
		mid := (lo + hi) / 2
		if list[mid] < s {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(list) && list[lo] == s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
