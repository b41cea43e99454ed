package mtredis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MrEthical07/mtredis/codec"
)

func TestUpdatePeersThenPeerByID(t *testing.T) {
	s, _, _ := newTestStorage(t)
	ctx := context.Background()

	if err := s.UpdatePeers(ctx, []PeerUpdate{{ID: 100, AccessHash: 555, Type: "user"}}); err != nil {
		t.Fatalf("update peers: %v", err)
	}

	peer, err := s.PeerByID(ctx, 100)
	if err != nil {
		t.Fatalf("peer by id: %v", err)
	}
	user, ok := peer.(InputPeerUser)
	if !ok {
		t.Fatalf("expected user peer, got %T", peer)
	}
	if user.UserID != 100 || user.AccessHash != 555 {
		t.Fatalf("unexpected peer %+v", user)
	}
}

func TestUpdatePeersWritesAllKinds(t *testing.T) {
	s, _, _ := newTestStorage(t)
	ctx := context.Background()

	peers := []PeerUpdate{
		{ID: 1, AccessHash: 11, Type: "bot"},
		{ID: 2, AccessHash: 22, Type: "user"},
		{ID: 3, Type: "group"},
		{ID: 4, AccessHash: 44, Type: "supergroup"},
		{ID: 5, AccessHash: 55, Type: "channel"},
	}
	if err := s.UpdatePeers(ctx, peers); err != nil {
		t.Fatalf("update peers: %v", err)
	}

	want := map[int64]InputPeer{
		1: InputPeerUser{UserID: 1, AccessHash: 11},
		2: InputPeerUser{UserID: 2, AccessHash: 22},
		3: InputPeerChat{ChatID: -3},
		4: InputPeerChannel{ChannelID: -1_000_000_000_004, AccessHash: 44},
		5: InputPeerChannel{ChannelID: -1_000_000_000_005, AccessHash: 55},
	}
	for id, expected := range want {
		got, err := s.PeerByID(ctx, id)
		if err != nil {
			t.Fatalf("peer %d: %v", id, err)
		}
		if got != expected {
			t.Fatalf("peer %d: expected %+v, got %+v", id, expected, got)
		}
	}
	if got := s.MetricsSnapshot().Counters[MetricPeersUpserted]; got != uint64(len(peers)) {
		t.Fatalf("expected %d upserted peers, got %d", len(peers), got)
	}
}

func TestUpdatePeersOverwritesRecord(t *testing.T) {
	s, _, _ := newTestStorage(t)
	ctx := context.Background()

	if err := s.UpdatePeers(ctx, []PeerUpdate{{ID: 9, AccessHash: 1, Type: "user"}}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := s.UpdatePeers(ctx, []PeerUpdate{{ID: 9, AccessHash: 2, Type: "bot"}}); err != nil {
		t.Fatalf("second update: %v", err)
	}

	peer, err := s.PeerByID(ctx, 9)
	if err != nil {
		t.Fatalf("peer by id: %v", err)
	}
	if peer != (InputPeerUser{UserID: 9, AccessHash: 2}) {
		t.Fatalf("expected overwritten record, got %+v", peer)
	}
}

func TestUpdatePeersEmptyIsNoOp(t *testing.T) {
	s, mr, _ := newTestStorage(t)

	if err := s.UpdatePeers(context.Background(), nil); err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}

func TestUpdatePeersRejectsUnknownTypeBeforeWriting(t *testing.T) {
	s, mr, _ := newTestStorage(t)

	err := s.UpdatePeers(context.Background(), []PeerUpdate{
		{ID: 1, Type: "user"},
		{ID: 2, Type: "forum"},
	})
	if !errors.Is(err, ErrInvalidPeerType) {
		t.Fatalf("expected invalid peer type, got %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected nothing written, got %v", keys)
	}
}

func TestPeerByIDNotFound(t *testing.T) {
	s, _, _ := newTestStorage(t)

	_, err := s.PeerByID(context.Background(), 999)
	if !errors.Is(err, ErrPeerNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(err.Error(), "999") {
		t.Fatalf("expected id in error, got %q", err.Error())
	}
	if got := s.MetricsSnapshot().Counters[MetricPeerNotFound]; got != 1 {
		t.Fatalf("expected 1 miss, got %d", got)
	}
}

func TestPeerByIDRejectsUnknownTag(t *testing.T) {
	s, mr, _ := newTestStorage(t)

	record, err := codec.EncodePeer(codec.PeerUser, 7, 7)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	record[0] = 42
	if err := mr.Set("test:peer:7", string(record)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err = s.PeerByID(context.Background(), 7)
	if !errors.Is(err, ErrInvalidPeerType) || !errors.Is(err, ErrDecode) {
		t.Fatalf("expected invalid peer type, got %v", err)
	}
}

func TestPeerByPhoneNumberFollowsPointer(t *testing.T) {
	s, mr, _ := newTestStorage(t)
	ctx := context.Background()

	err := s.UpdatePeers(ctx, []PeerUpdate{{ID: 100, AccessHash: 555, Type: "user", PhoneNumber: "15550001111"}})
	if err != nil {
		t.Fatalf("update peers: %v", err)
	}

	raw, err := mr.Get("test:phone:15550001111")
	if err != nil {
		t.Fatalf("pointer missing: %v", err)
	}
	if raw != string(codec.PutInt64(100)) {
		t.Fatalf("unexpected pointer bytes %x", raw)
	}

	peer, err := s.PeerByPhoneNumber(ctx, "15550001111")
	if err != nil {
		t.Fatalf("peer by phone: %v", err)
	}
	if peer.PeerID() != 100 {
		t.Fatalf("expected peer 100, got %d", peer.PeerID())
	}
}

func TestPeerByUsernameFollowsPointer(t *testing.T) {
	s, _, _ := newTestStorage(t)
	ctx := context.Background()

	if err := s.UpdatePeers(ctx, []PeerUpdate{{ID: 77, AccessHash: 1, Type: "channel"}}); err != nil {
		t.Fatalf("update peers: %v", err)
	}
	if err := s.UpdateUsernames(ctx, []UsernameUpdate{{ID: 77, Usernames: []string{"news", "news_mirror"}}}); err != nil {
		t.Fatalf("update usernames: %v", err)
	}

	for _, name := range []string{"news", "news_mirror"} {
		peer, err := s.PeerByUsername(ctx, name)
		if err != nil {
			t.Fatalf("peer by username %q: %v", name, err)
		}
		if peer != (InputPeerChannel{ChannelID: -1_000_000_000_077, AccessHash: 1}) {
			t.Fatalf("unexpected peer %+v", peer)
		}
	}
	if got := s.MetricsSnapshot().Counters[MetricPointersWritten]; got != 2 {
		t.Fatalf("expected 2 pointers written, got %d", got)
	}
}

func TestPeerByUsernameMissingPointer(t *testing.T) {
	s, _, _ := newTestStorage(t)

	_, err := s.PeerByUsername(context.Background(), "ghost")
	if !errors.Is(err, ErrPeerNotFound) || !strings.Contains(err.Error(), "username ghost") {
		t.Fatalf("expected username not found, got %v", err)
	}
}

func TestPeerByPhoneNumberMissingPointer(t *testing.T) {
	s, _, _ := newTestStorage(t)

	_, err := s.PeerByPhoneNumber(context.Background(), "123")
	if !errors.Is(err, ErrPeerNotFound) || !strings.Contains(err.Error(), "phone number 123") {
		t.Fatalf("expected phone number not found, got %v", err)
	}
}

func TestPeerByUsernameDanglingPointer(t *testing.T) {
	s, _, _ := newTestStorage(t)
	ctx := context.Background()

	if err := s.UpdateUsernames(ctx, []UsernameUpdate{{ID: 5150, Usernames: []string{"orphan"}}}); err != nil {
		t.Fatalf("update usernames: %v", err)
	}

	_, err := s.PeerByUsername(ctx, "orphan")
	if !errors.Is(err, ErrPeerNotFound) || !strings.Contains(err.Error(), "id 5150") {
		t.Fatalf("expected id not found at second hop, got %v", err)
	}
}

func TestUpdateUsernamesSkipsEmpty(t *testing.T) {
	s, mr, _ := newTestStorage(t)

	err := s.UpdateUsernames(context.Background(), []UsernameUpdate{{ID: 1}, {ID: 2, Usernames: []string{""}}})
	if err != nil {
		t.Fatalf("update usernames: %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}
