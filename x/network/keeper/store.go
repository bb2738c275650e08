package keeper

import (
	"encoding/binary"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Amounts are stored as decimal strings and counters as big-endian integers.
// Zero values are deleted rather than written.

func getUint(store storetypes.KVStore, key []byte) sdkmath.Uint {
	bz := store.Get(key)
	if bz == nil {
		return sdkmath.ZeroUint()
	}
	v, err := sdkmath.ParseUint(string(bz))
	if err != nil {
		panic(err)
	}
	return v
}

func setUint(store storetypes.KVStore, key []byte, v sdkmath.Uint) {
	if v.IsZero() {
		store.Delete(key)
		return
	}
	store.Set(key, []byte(v.String()))
}

func getUint64(store storetypes.KVStore, key []byte) uint64 {
	bz := store.Get(key)
	if bz == nil {
		return 0
	}
	return sdk.BigEndianToUint64(bz)
}

func setUint64(store storetypes.KVStore, key []byte, v uint64) {
	if v == 0 {
		store.Delete(key)
		return
	}
	store.Set(key, sdk.Uint64ToBigEndian(v))
}

func getInt64(store storetypes.KVStore, key []byte) (int64, bool) {
	bz := store.Get(key)
	if len(bz) != 8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(bz)), true // #nosec G115 -- round-trips setInt64
}

func setInt64(store storetypes.KVStore, key []byte, v int64) {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(v)) // #nosec G115 -- block heights are non-negative
	store.Set(key, bz)
}

func (k Keeper) getRecord(store storetypes.KVStore, key []byte, ptr interface{}) bool {
	bz := store.Get(key)
	if bz == nil {
		return false
	}
	k.cdc.MustUnmarshal(bz, ptr)
	return true
}

func (k Keeper) setRecord(store storetypes.KVStore, key []byte, record interface{}) {
	store.Set(key, k.cdc.MustMarshal(record))
}

// collectKeys gathers every key under prefix so callers can delete while
// not holding an open iterator.
func collectKeys(store storetypes.KVStore, prefix []byte) [][]byte {
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var keys [][]byte
	for ; iterator.Valid(); iterator.Next() {
		keys = append(keys, append([]byte(nil), iterator.Key()...))
	}
	return keys
}
