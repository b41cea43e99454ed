package mtredis

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/mtredis/codec"
)

var (
	// ErrDecode is returned when a stored value cannot be decoded. The error
	// message carries the offending bytes or tag.
	ErrDecode = codec.ErrDecode
	// ErrInvalidPeerType is returned for an unknown peer type name on write
	// or an unknown tag on read. It wraps ErrDecode.
	ErrInvalidPeerType = codec.ErrInvalidPeerType
	// ErrPeerNotFound is returned when a peer id, username or phone number
	// has no stored record or pointer.
	ErrPeerNotFound = errors.New("peer not found")
	// ErrVersion is the parent of every error returned by the version gate.
	ErrVersion = errors.New("storage version error")
	// ErrVersionTooNew is returned by Open when the stored schema version is
	// newer than CurrentVersion.
	ErrVersionTooNew = fmt.Errorf("%w: version too new", ErrVersion)
	// ErrUpgradeNotImplemented is returned by Open when the stored schema
	// version is older than CurrentVersion.
	ErrUpgradeNotImplemented = fmt.Errorf("%w: upgrade not implemented", ErrVersion)
	// ErrRedisRequired is returned by Build when no Redis client was supplied.
	ErrRedisRequired = errors.New("redis client required")
)
