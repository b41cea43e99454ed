package codec

import (
	"encoding/binary"
	"fmt"
)

// UpdateStateSize is the encoded size of an update-state record.
const UpdateStateSize = 5 * 8

// UpdateState is the checkpoint of one update stream.
type UpdateState struct {
	StateID int64
	Pts     int64
	Qts     int64
	Date    int64
	Seq     int64
}

// EncodeUpdateState packs s as five little-endian int64 values. Unset
// counters are zero.
func EncodeUpdateState(s UpdateState) []byte {
	out := make([]byte, UpdateStateSize)
	binary.LittleEndian.PutUint64(out[0:8], uint64(s.StateID))
	binary.LittleEndian.PutUint64(out[8:16], uint64(s.Pts))
	binary.LittleEndian.PutUint64(out[16:24], uint64(s.Qts))
	binary.LittleEndian.PutUint64(out[24:32], uint64(s.Date))
	binary.LittleEndian.PutUint64(out[32:40], uint64(s.Seq))
	return out
}

// DecodeUpdateState unpacks a record written by [EncodeUpdateState].
func DecodeUpdateState(data []byte) (UpdateState, error) {
	if len(data) != UpdateStateSize {
		return UpdateState{}, fmt.Errorf("%w: update state needs %d bytes, got %d: 0x%x", ErrDecode, UpdateStateSize, len(data), data)
	}
	return UpdateState{
		StateID: int64(binary.LittleEndian.Uint64(data[0:8])),
		Pts:     int64(binary.LittleEndian.Uint64(data[8:16])),
		Qts:     int64(binary.LittleEndian.Uint64(data[16:24])),
		Date:    int64(binary.LittleEndian.Uint64(data[24:32])),
		Seq:     int64(binary.LittleEndian.Uint64(data[32:40])),
	}, nil
}

// EncodeStateID returns the hash field under which a state is stored.
func EncodeStateID(stateID int64) []byte {
	return PutInt64(stateID)
}
