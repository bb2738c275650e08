package types

// Event types for the network module
// All event types use lowercase with underscore separator (module_action format)
const (
	// Stake events
	EventTypeNetworkStakeAdded           = "network_stake_added"
	EventTypeNetworkStakeRemoved         = "network_stake_removed"
	EventTypeNetworkDelegateStakeAdded   = "network_delegate_stake_added"
	EventTypeNetworkDelegateStakeRemoved = "network_delegate_stake_removed"

	// Subnet events
	EventTypeNetworkSubnetRegistered  = "network_subnet_registered"
	EventTypeNetworkSubnetActivated   = "network_subnet_activated"
	EventTypeNetworkSubnetNodeAdded   = "network_subnet_node_added"
	EventTypeNetworkSubnetNodeRemoved = "network_subnet_node_removed"

	// Epoch events
	EventTypeNetworkRolesSelected       = "network_roles_selected"
	EventTypeNetworkRewardsSubmitted    = "network_rewards_submitted"
	EventTypeNetworkAttestation         = "network_attestation"
	EventTypeNetworkAccountantReport    = "network_accountant_report"
	EventTypeNetworkSubnetRewarded      = "network_subnet_rewarded"
	EventTypeNetworkSubnetBroken        = "network_subnet_broken"
	EventTypeNetworkValidatorSlashed    = "network_validator_slashed"
	EventTypeNetworkPenaltyIncremented  = "network_penalty_incremented"
	EventTypeNetworkEpochRewardsApplied = "network_epoch_rewards_applied"
	EventTypeNetworkEpochStarted        = "network_epoch_started"

	// Proposal events
	EventTypeNetworkProposalCreated    = "network_proposal_created"
	EventTypeNetworkProposalChallenged = "network_proposal_challenged"
	EventTypeNetworkProposalVote       = "network_proposal_vote"
	EventTypeNetworkProposalExecuted   = "network_proposal_executed"
	EventTypeNetworkProposalCancelled  = "network_proposal_cancelled"

	// Admin events
	EventTypeNetworkParamsUpdated = "network_params_updated"
)

// Event attribute keys for the network module
const (
	AttributeKeySubnetID   = "subnet_id"
	AttributeKeySubnetPath = "subnet_path"
	AttributeKeyAccount    = "account"
	AttributeKeyPeerID     = "peer_id"
	AttributeKeyAmount     = "amount"
	AttributeKeyShares     = "shares"
	AttributeKeyEpoch      = "epoch"
	AttributeKeyValidator  = "validator"
	AttributeKeyAccountant = "accountant"
	AttributeKeyNodesCount = "nodes_count"
	AttributeKeyRatio      = "attestation_ratio"
	AttributeKeyWeight     = "weight"
	AttributeKeyReason     = "reason"
	AttributeKeyCounter    = "counter"

	AttributeKeyProposalID = "proposal_id"
	AttributeKeyPlaintiff  = "plaintiff"
	AttributeKeyDefendant  = "defendant"
	AttributeKeyVote       = "vote"
	AttributeKeyOutcome    = "outcome"
	AttributeKeyParam      = "param"
)

// Node removal reasons reported in events and hooks.
const (
	RemovalReasonVoluntary = "voluntary"
	RemovalReasonAbsence   = "absence"
	RemovalReasonSlashed   = "slashed"
	RemovalReasonProposal  = "proposal"
)
