package types

import (
	"regexp"
)

const (
	MaxSubnetPathLength = 256
	// MaxAccountantDataLength bounds accountant reports and proposal evidence.
	MaxAccountantDataLength = 16 * 1024
	MaxScoresPerSubmission  = 1024
)

var subnetPathRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]*$`)

// ValidateSubnetPath checks the human-readable subnet path.
func ValidateSubnetPath(path string) error {
	if path == "" {
		return ErrInvalidSubnetPath.Wrap("subnet path cannot be empty")
	}
	if len(path) > MaxSubnetPathLength {
		return ErrInvalidSubnetPath.Wrapf("subnet path exceeds %d characters", MaxSubnetPathLength)
	}
	if !subnetPathRegex.MatchString(path) {
		return ErrInvalidSubnetPath.Wrapf("subnet path %q contains invalid characters", path)
	}
	return nil
}

// ValidatePayload bounds evidentiary and report payloads.
func ValidatePayload(data []byte) error {
	if len(data) > MaxAccountantDataLength {
		return ErrInvalidData.Wrapf("payload of %d bytes exceeds %d", len(data), MaxAccountantDataLength)
	}
	return nil
}

// ValidateScores checks a validator's score vector before it is filtered.
func ValidateScores(data []NodeScore) error {
	if len(data) > MaxScoresPerSubmission {
		return ErrTooManyScores.Wrapf("%d scores exceed %d", len(data), MaxScoresPerSubmission)
	}
	for i, d := range data {
		if d.PeerID == "" {
			return ErrInvalidScore.Wrapf("score %d has empty peer id", i)
		}
		if d.Score.IsNil() || d.Score.GT(MaxBalance) {
			return ErrInvalidScore.Wrapf("score %d for %s out of range", i, d.PeerID)
		}
	}
	return nil
}
