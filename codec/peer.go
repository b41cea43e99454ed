package codec

import (
	"encoding/binary"
	"fmt"
)

// ErrInvalidPeerType is returned for an unknown peer type name or tag. It
// wraps [ErrDecode] so decode paths can be matched either way.
var ErrInvalidPeerType = fmt.Errorf("%w: invalid peer type", ErrDecode)

// PeerRecordSize is the encoded size of a peer record.
const PeerRecordSize = 4 + 8 + 8

// channelIDOffset converts between stored channel ids and public ids.
const channelIDOffset int64 = 1_000_000_000_000

// PeerType is the tag stored in the first four bytes of a peer record.
type PeerType int32

const (
	PeerBot        PeerType = 1
	PeerUser       PeerType = 2
	PeerGroup      PeerType = 3
	PeerSupergroup PeerType = 4
	PeerChannel    PeerType = 5
)

// ParsePeerType maps the client library's peer type names to tags.
func ParsePeerType(name string) (PeerType, error) {
	switch name {
	case "bot":
		return PeerBot, nil
	case "user":
		return PeerUser, nil
	case "group":
		return PeerGroup, nil
	case "supergroup":
		return PeerSupergroup, nil
	case "channel":
		return PeerChannel, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeerType, name)
	}
}

func (t PeerType) String() string {
	switch t {
	case PeerBot:
		return "bot"
	case PeerUser:
		return "user"
	case PeerGroup:
		return "group"
	case PeerSupergroup:
		return "supergroup"
	case PeerChannel:
		return "channel"
	default:
		return fmt.Sprintf("PeerType(%d)", int32(t))
	}
}

// Valid reports whether t is one of the five known tags.
func (t PeerType) Valid() bool {
	return t >= PeerBot && t <= PeerChannel
}

// InputPeer is a decoded peer identity. The concrete type is one of
// [InputPeerUser], [InputPeerChat] or [InputPeerChannel].
type InputPeer interface {
	// PeerID returns the public id of the peer.
	PeerID() int64
	inputPeer()
}

// InputPeerUser identifies a user or bot.
type InputPeerUser struct {
	UserID     int64
	AccessHash int64
}

// InputPeerChat identifies a basic group. Basic groups carry no access hash.
type InputPeerChat struct {
	ChatID int64
}

// InputPeerChannel identifies a channel or supergroup.
type InputPeerChannel struct {
	ChannelID  int64
	AccessHash int64
}

func (p InputPeerUser) PeerID() int64    { return p.UserID }
func (p InputPeerChat) PeerID() int64    { return p.ChatID }
func (p InputPeerChannel) PeerID() int64 { return p.ChannelID }

func (InputPeerUser) inputPeer()    {}
func (InputPeerChat) inputPeer()    {}
func (InputPeerChannel) inputPeer() {}

// EncodePeer builds a peer record. id is stored verbatim under the tag.
func EncodePeer(peerType PeerType, id, accessHash int64) ([]byte, error) {
	if !peerType.Valid() {
		return nil, fmt.Errorf("%w: tag %d", ErrInvalidPeerType, int32(peerType))
	}

	out := make([]byte, PeerRecordSize)
	binary.LittleEndian.PutUint32(out[0:4], uint32(peerType))
	binary.LittleEndian.PutUint64(out[4:12], uint64(id))
	binary.LittleEndian.PutUint64(out[12:20], uint64(accessHash))
	return out, nil
}

// DecodePeer reads a peer record and converts the stored id to the public
// id of the peer kind.
func DecodePeer(data []byte) (InputPeer, error) {
	if len(data) != PeerRecordSize {
		return nil, fmt.Errorf("%w: peer record needs %d bytes, got %d: 0x%x", ErrDecode, PeerRecordSize, len(data), data)
	}

	tag := PeerType(int32(binary.LittleEndian.Uint32(data[0:4])))
	id := int64(binary.LittleEndian.Uint64(data[4:12]))
	accessHash := int64(binary.LittleEndian.Uint64(data[12:20]))

	switch tag {
	case PeerBot, PeerUser:
		return InputPeerUser{UserID: id, AccessHash: accessHash}, nil
	case PeerGroup:
		return InputPeerChat{ChatID: -id}, nil
	case PeerSupergroup, PeerChannel:
		return InputPeerChannel{ChannelID: -(channelIDOffset + id), AccessHash: accessHash}, nil
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrInvalidPeerType, int32(tag))
	}
}
