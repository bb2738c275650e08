package keeper

import (
	"context"
	"crypto/sha256"
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tensornet/x/network/types"
)

// Selection purposes mixed into the randomness subject.
const (
	purposeValidator  = "validator"
	purposeAccountant = "accountant"
)

// BlockRandomness derives seeds from the block header hash, height and time.
// It is predictable to the block proposer and only suitable where a proposer
// gains nothing from biasing role selection.
type BlockRandomness struct{}

var _ types.RandomnessSource = BlockRandomness{}

// Random implements types.RandomnessSource.
func (BlockRandomness) Random(ctx context.Context, subject []byte) [32]byte {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	hasher := sha256.New()

	hasher.Write(sdkCtx.HeaderHash())

	heightBz := make([]byte, 8)
	binary.BigEndian.PutUint64(heightBz, types.SaturateInt64ToUint64(sdkCtx.BlockHeight()))
	hasher.Write(heightBz)

	timeBz := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBz, types.SaturateInt64ToUint64(sdkCtx.BlockTime().Unix()))
	hasher.Write(timeBz)

	hasher.Write(subject)

	var seed [32]byte
	copy(seed[:], hasher.Sum(nil))
	return seed
}

// selectionSubject is purpose || subnet id || epoch || salt.
func selectionSubject(purpose string, subnetID uint32, epoch uint64, salt uint32) []byte {
	bz := make([]byte, 0, len(purpose)+16)
	bz = append(bz, purpose...)
	bz = binary.BigEndian.AppendUint32(bz, subnetID)
	bz = binary.BigEndian.AppendUint64(bz, epoch)
	bz = binary.BigEndian.AppendUint32(bz, salt)
	return bz
}

// drawIndex picks an index in [0, n) for one selection round. round separates
// successive draws of the same purpose within an epoch.
func (k Keeper) drawIndex(ctx context.Context, purpose string, subnetID uint32, epoch uint64, round uint32, n uint32) (uint32, bool) {
	draw := func(salt uint32) uint32 {
		subject := selectionSubject(purpose, subnetID, epoch, round*types.MaxSelectionAttempts+salt)
		return types.SeedToUint32(k.randomness.Random(ctx, subject))
	}
	return types.UniformIndex(n, draw, types.MaxSelectionAttempts)
}
