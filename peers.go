package mtredis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MrEthical07/mtredis/codec"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type (
	// InputPeer is a decoded peer identity: InputPeerUser, InputPeerChat or
	// InputPeerChannel.
	InputPeer        = codec.InputPeer
	InputPeerUser    = codec.InputPeerUser
	InputPeerChat    = codec.InputPeerChat
	InputPeerChannel = codec.InputPeerChannel
)

// PeerUpdate is one entry of an UpdatePeers call.
type PeerUpdate struct {
	// ID is the stored peer id, written verbatim.
	ID         int64
	AccessHash int64
	// Type is one of "bot", "user", "group", "supergroup", "channel".
	Type string
	// PhoneNumber, when set, also points P:phone:<PhoneNumber> at ID.
	PhoneNumber string
}

// UsernameUpdate points every username in Usernames at peer ID.
type UsernameUpdate struct {
	ID        int64
	Usernames []string
}

// UpdatePeers writes one record per entry, plus phone pointers, in a single
// MSET. An empty list is a no-op. Any entry with an unknown type aborts the
// whole call before anything is written.
func (s *Storage) UpdatePeers(ctx context.Context, peers []PeerUpdate) error {
	if len(peers) == 0 {
		return nil
	}

	values := make([]any, 0, len(peers)*2)
	pointers := 0
	for _, p := range peers {
		peerType, err := codec.ParsePeerType(p.Type)
		if err != nil {
			return fmt.Errorf("peer %d: %w", p.ID, err)
		}
		record, err := codec.EncodePeer(peerType, p.ID, p.AccessHash)
		if err != nil {
			return fmt.Errorf("peer %d: %w", p.ID, err)
		}
		values = append(values, s.peerKey(p.ID), record)

		if p.PhoneNumber != "" {
			values = append(values, s.phoneKey(p.PhoneNumber), codec.PutInt64(p.ID))
			pointers++
		}
	}

	if err := s.mset(ctx, values); err != nil {
		return err
	}
	s.metrics.Add(MetricPeersUpserted, uint64(len(peers)))
	s.metrics.Add(MetricPointersWritten, uint64(pointers))
	s.logger.Debug("peers updated", zap.Int("peers", len(peers)), zap.Int("phone_pointers", pointers))
	s.emitAudit(ctx, AuditPeersUpdated, true, 0, nil, map[string]string{
		"peers":          strconv.Itoa(len(peers)),
		"phone_pointers": strconv.Itoa(pointers),
	})
	return nil
}

// UpdateUsernames writes username pointers in a single MSET. Entries with no
// usernames are skipped; if nothing remains the call is a no-op.
func (s *Storage) UpdateUsernames(ctx context.Context, updates []UsernameUpdate) error {
	values := make([]any, 0, len(updates)*2)
	for _, u := range updates {
		pointer := codec.PutInt64(u.ID)
		for _, username := range u.Usernames {
			if username == "" {
				continue
			}
			values = append(values, s.usernameKey(username), pointer)
		}
	}
	if len(values) == 0 {
		return nil
	}

	if err := s.mset(ctx, values); err != nil {
		return err
	}
	s.metrics.Add(MetricPointersWritten, uint64(len(values)/2))
	s.logger.Debug("usernames updated", zap.Int("pointers", len(values)/2))
	s.emitAudit(ctx, AuditUsernamesUpdated, true, 0, nil, map[string]string{
		"username_pointers": strconv.Itoa(len(values) / 2),
	})
	return nil
}

// PeerByID returns the peer stored under id. A missing record yields
// ErrPeerNotFound.
func (s *Storage) PeerByID(ctx context.Context, id int64) (InputPeer, error) {
	s.metrics.Inc(MetricPeerLookup)

	data, err := s.get(ctx, s.peerKey(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.metrics.Inc(MetricPeerNotFound)
			return nil, fmt.Errorf("%w: id %d", ErrPeerNotFound, id)
		}
		return nil, err
	}

	peer, err := codec.DecodePeer(data)
	if err != nil {
		s.metrics.Inc(MetricDecodeFailure)
		return nil, fmt.Errorf("peer %d: %w", id, err)
	}
	return peer, nil
}

// PeerByUsername resolves a username pointer and returns the peer it names.
func (s *Storage) PeerByUsername(ctx context.Context, username string) (InputPeer, error) {
	return s.peerByPointer(ctx, s.usernameKey(username), "username", username)
}

// PeerByPhoneNumber resolves a phone pointer and returns the peer it names.
func (s *Storage) PeerByPhoneNumber(ctx context.Context, phoneNumber string) (InputPeer, error) {
	return s.peerByPointer(ctx, s.phoneKey(phoneNumber), "phone number", phoneNumber)
}

// peerByPointer is two independent round trips. A record removed between
// them surfaces as ErrPeerNotFound for the id.
func (s *Storage) peerByPointer(ctx context.Context, key, kind, value string) (InputPeer, error) {
	data, err := s.get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.metrics.Inc(MetricPeerLookup)
			s.metrics.Inc(MetricPeerNotFound)
			return nil, fmt.Errorf("%w: %s %s", ErrPeerNotFound, kind, value)
		}
		return nil, err
	}

	id, err := codec.Int64{}.Unpack(data)
	if err != nil {
		s.metrics.Inc(MetricDecodeFailure)
		return nil, fmt.Errorf("%s %s: %w", kind, value, err)
	}
	return s.PeerByID(ctx, id)
}

func (s *Storage) get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := s.redis.Get(ctx, key).Bytes()
	s.observe(start)
	return data, err
}

func (s *Storage) mset(ctx context.Context, values []any) error {
	start := time.Now()
	err := s.redis.MSet(ctx, values...).Err()
	s.observe(start)
	return err
}
