package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrDecode is returned when stored bytes cannot be turned back into a value.
var ErrDecode = errors.New("decode error")

const (
	boolTrue  = 't'
	boolFalse = 'f'

	int64Size = 8
)

// Codec packs a typed value into bytes and back.
//
// Pack never fails for a valid value. Unpack fails only with an error
// wrapping [ErrDecode].
type Codec[T any] interface {
	Pack(value T) []byte
	Unpack(data []byte) (T, error)
}

// Int64 stores a signed 64-bit integer as 8 little-endian bytes.
type Int64 struct{}

func (Int64) Pack(value int64) []byte {
	return PutInt64(value)
}

func (Int64) Unpack(data []byte) (int64, error) {
	if len(data) != int64Size {
		return 0, fmt.Errorf("%w: int64 needs %d bytes, got %d: 0x%x", ErrDecode, int64Size, len(data), data)
	}
	return int64(binary.LittleEndian.Uint64(data)), nil
}

// Bool stores true as 't' and false as 'f'.
type Bool struct{}

func (Bool) Pack(value bool) []byte {
	if value {
		return []byte{boolTrue}
	}
	return []byte{boolFalse}
}

func (Bool) Unpack(data []byte) (bool, error) {
	if len(data) == 1 {
		switch data[0] {
		case boolTrue:
			return true, nil
		case boolFalse:
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: invalid bool value: 0x%x", ErrDecode, data)
}

// String stores UTF-8 text without a length prefix.
type String struct{}

func (String) Pack(value string) []byte {
	return []byte(value)
}

func (String) Unpack(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid utf-8 string: 0x%x", ErrDecode, data)
	}
	return string(data), nil
}

// Bytes stores its value unchanged.
type Bytes struct{}

func (Bytes) Pack(value []byte) []byte {
	return cloneBytes(value)
}

func (Bytes) Unpack(data []byte) ([]byte, error) {
	return cloneBytes(data), nil
}

// PutInt64 returns the 8-byte little-endian encoding of v. It is the encoding
// used for state hash fields and username/phone pointers.
func PutInt64(v int64) []byte {
	out := make([]byte, int64Size)
	binary.LittleEndian.PutUint64(out, uint64(v))
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
