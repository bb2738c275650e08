package types

import (
	sdkerrors "cosmossdk.io/errors"
)

// Network module sentinel errors

var (
	// Generic validation errors
	ErrInvalidAmount  = sdkerrors.Register(ModuleName, 2, "invalid amount")
	ErrInvalidAddress = sdkerrors.Register(ModuleName, 3, "invalid address")
	ErrInvalidPeerID  = sdkerrors.Register(ModuleName, 4, "invalid peer id")
	ErrInvalidData    = sdkerrors.Register(ModuleName, 5, "invalid data payload")
	ErrUnauthorized   = sdkerrors.Register(ModuleName, 6, "unauthorized operation")

	// Subnet registry errors
	ErrSubnetNotFound         = sdkerrors.Register(ModuleName, 10, "subnet not found")
	ErrSubnetPathExists       = sdkerrors.Register(ModuleName, 11, "subnet path already registered")
	ErrInvalidSubnetPath      = sdkerrors.Register(ModuleName, 12, "invalid subnet path")
	ErrSubnetNotActivated     = sdkerrors.Register(ModuleName, 13, "subnet not activated")
	ErrSubnetAlreadyActivated = sdkerrors.Register(ModuleName, 14, "subnet already activated")
	ErrSubnetNodesMax         = sdkerrors.Register(ModuleName, 15, "subnet node capacity reached")
	ErrSubnetMinNodesNotMet   = sdkerrors.Register(ModuleName, 16, "subnet minimum node count not met")
	ErrSubnetNodeExists       = sdkerrors.Register(ModuleName, 17, "account already has a node in subnet")
	ErrPeerIDExists           = sdkerrors.Register(ModuleName, 18, "peer id already registered in subnet")
	ErrSubnetNodeNotFound     = sdkerrors.Register(ModuleName, 19, "subnet node not found")
	ErrPeerIDNotFound         = sdkerrors.Register(ModuleName, 20, "peer id not found in subnet")
	ErrInvalidMemory          = sdkerrors.Register(ModuleName, 21, "invalid subnet memory requirement")

	// Stake ledger errors
	ErrNotEnoughBalanceToStake  = sdkerrors.Register(ModuleName, 30, "not enough withdrawable balance to stake")
	ErrNotEnoughStakeToWithdraw = sdkerrors.Register(ModuleName, 31, "not enough stake to withdraw")
	ErrMinStakeNotReached       = sdkerrors.Register(ModuleName, 32, "resulting stake below minimum stake balance")
	ErrMaxStakeReached          = sdkerrors.Register(ModuleName, 33, "resulting stake above maximum stake balance")
	ErrStakeRateLimitExceeded   = sdkerrors.Register(ModuleName, 34, "stake rate limit exceeded")
	ErrBalanceWithdrawalFailed  = sdkerrors.Register(ModuleName, 35, "ledger withdrawal failed")
	ErrBalanceConversion        = sdkerrors.Register(ModuleName, 36, "amount does not fit ledger balance type")
	ErrCouldNotConvertToShares  = sdkerrors.Register(ModuleName, 37, "deposit converts to zero shares")
	ErrCouldNotConvertToBalance = sdkerrors.Register(ModuleName, 38, "shares convert to zero balance")
	ErrNotEnoughDelegateShares  = sdkerrors.Register(ModuleName, 39, "not enough delegate stake shares")

	// Validation and attestation errors
	ErrInvalidValidator         = sdkerrors.Register(ModuleName, 50, "account is not the elected validator for this epoch")
	ErrRewardsAlreadySubmitted  = sdkerrors.Register(ModuleName, 51, "rewards already submitted for this epoch")
	ErrNoRewardsSubmission      = sdkerrors.Register(ModuleName, 52, "no rewards submission for this epoch")
	ErrAlreadyAttested          = sdkerrors.Register(ModuleName, 53, "account already attested")
	ErrNodeNotEligible          = sdkerrors.Register(ModuleName, 54, "subnet node not eligible for this action yet")
	ErrSubmissionComplete       = sdkerrors.Register(ModuleName, 55, "rewards submission already completed")
	ErrNotAccountant            = sdkerrors.Register(ModuleName, 56, "account is not an accountant")
	ErrAccountantDataExists     = sdkerrors.Register(ModuleName, 57, "accountant data already submitted for this epoch")
	ErrNoSelection              = sdkerrors.Register(ModuleName, 58, "no eligible selection this epoch")
	ErrInvalidScore             = sdkerrors.Register(ModuleName, 59, "invalid node score")
	ErrTooManyScores            = sdkerrors.Register(ModuleName, 60, "submission exceeds subnet node capacity")
	ErrAccountantReportNotFound = sdkerrors.Register(ModuleName, 61, "accountant report not found")

	// Dispute errors
	ErrProposalNotFound       = sdkerrors.Register(ModuleName, 70, "proposal not found")
	ErrProposalExists         = sdkerrors.Register(ModuleName, 71, "active proposal against defendant already exists")
	ErrProposalConcluded      = sdkerrors.Register(ModuleName, 72, "proposal concluded")
	ErrProposalChallenged     = sdkerrors.Register(ModuleName, 73, "proposal already challenged")
	ErrProposalNotChallenged  = sdkerrors.Register(ModuleName, 74, "proposal not challenged")
	ErrNotDefendant           = sdkerrors.Register(ModuleName, 75, "account is not the defendant")
	ErrNotPlaintiff           = sdkerrors.Register(ModuleName, 76, "account is not the plaintiff")
	ErrInvalidDefendant       = sdkerrors.Register(ModuleName, 77, "invalid defendant")
	ErrNotEnoughAccountants   = sdkerrors.Register(ModuleName, 78, "not enough accountants to open a proposal")
	ErrNotEnoughBalanceToBond = sdkerrors.Register(ModuleName, 79, "not enough balance to post bond")
	ErrChallengePeriodPassed  = sdkerrors.Register(ModuleName, 80, "challenge period passed")
	ErrChallengePeriodActive  = sdkerrors.Register(ModuleName, 81, "challenge period still active")
	ErrVotingPeriodPassed     = sdkerrors.Register(ModuleName, 82, "voting period passed")
	ErrVotingPeriodActive     = sdkerrors.Register(ModuleName, 83, "voting period still active")
	ErrNotEligibleVoter       = sdkerrors.Register(ModuleName, 84, "account is not an eligible voter")
	ErrAlreadyVoted           = sdkerrors.Register(ModuleName, 85, "account already voted")
	ErrInvalidVote            = sdkerrors.Register(ModuleName, 86, "invalid vote option")

	// Parameter errors
	ErrInvalidParams          = sdkerrors.Register(ModuleName, 100, "invalid parameters")
	ErrInvalidMinStake        = sdkerrors.Register(ModuleName, 101, "invalid minimum stake balance")
	ErrInvalidMaxStake        = sdkerrors.Register(ModuleName, 102, "invalid maximum stake balance")
	ErrInvalidMinSubnetNodes  = sdkerrors.Register(ModuleName, 103, "invalid minimum subnet nodes")
	ErrInvalidMaxSubnetNodes  = sdkerrors.Register(ModuleName, 104, "invalid maximum subnet nodes")
	ErrInvalidPercentage      = sdkerrors.Register(ModuleName, 105, "invalid percentage")
	ErrInvalidSlashPercentage = sdkerrors.Register(ModuleName, 106, "invalid slash percentage")
	ErrInvalidMaxSlashAmount  = sdkerrors.Register(ModuleName, 107, "invalid maximum slash amount")
	ErrInvalidRateLimit       = sdkerrors.Register(ModuleName, 108, "invalid rate limit")
	ErrInvalidEpochLength     = sdkerrors.Register(ModuleName, 109, "invalid epoch length")
	ErrInvalidTenure          = sdkerrors.Register(ModuleName, 110, "invalid node tenure thresholds")
	ErrInvalidPeriod          = sdkerrors.Register(ModuleName, 111, "invalid proposal period")
	ErrInvalidMaxAbsences     = sdkerrors.Register(ModuleName, 112, "invalid maximum sequential absences")
	ErrInvalidAccountants     = sdkerrors.Register(ModuleName, 113, "invalid accountants per epoch")
	ErrInvalidBaseMemory      = sdkerrors.Register(ModuleName, 114, "invalid base node memory")
)
