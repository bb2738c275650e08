package types

import (
	"github.com/mr-tron/base58"
)

// Multihash codes accepted in a libp2p peer id.
const (
	multihashIdentity = 0x00
	multihashSHA256   = 0x12

	sha256DigestLength = 32
	// maxInlineKeyLength bounds identity-multihash peer ids (inlined ed25519 keys).
	maxInlineKeyLength = 42

	MaxPeerIDLength = 128
)

// ValidatePeerID checks that peerID is a base58btc-encoded libp2p multihash:
// either a sha2-256 digest ("Qm...") or an inlined public key ("12D3KooW...").
func ValidatePeerID(peerID string) error {
	if peerID == "" {
		return ErrInvalidPeerID.Wrap("peer id cannot be empty")
	}
	if len(peerID) > MaxPeerIDLength {
		return ErrInvalidPeerID.Wrapf("peer id longer than %d characters", MaxPeerIDLength)
	}
	raw, err := base58.Decode(peerID)
	if err != nil {
		return ErrInvalidPeerID.Wrapf("peer id %q is not base58: %v", peerID, err)
	}
	if len(raw) < 2 {
		return ErrInvalidPeerID.Wrapf("peer id %q too short", peerID)
	}

	code, length, digest := raw[0], int(raw[1]), raw[2:]
	if len(digest) != length {
		return ErrInvalidPeerID.Wrapf("peer id %q declares %d digest bytes, has %d", peerID, length, len(digest))
	}
	switch code {
	case multihashSHA256:
		if length != sha256DigestLength {
			return ErrInvalidPeerID.Wrapf("sha2-256 peer id %q must carry a %d byte digest", peerID, sha256DigestLength)
		}
	case multihashIdentity:
		if length == 0 || length > maxInlineKeyLength {
			return ErrInvalidPeerID.Wrapf("identity peer id %q has invalid key length %d", peerID, length)
		}
	default:
		return ErrInvalidPeerID.Wrapf("peer id %q uses unsupported multihash code 0x%x", peerID, code)
	}
	return nil
}
