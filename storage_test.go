package mtredis

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/mtredis/codec"
)

func TestOpenInitializesFreshSession(t *testing.T) {
	s, mr, _ := newTestStorage(t)
	ctx := context.Background()

	if err := s.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}

	raw := mr.HGet("test:session", FieldVersion)
	if raw != string(codec.PutInt64(1)) {
		t.Fatalf("expected stored version 1, got %x", raw)
	}
	if got := s.MetricsSnapshot().Counters[MetricSessionOpened]; got != 1 {
		t.Fatalf("expected 1 opened session, got %d", got)
	}
}

func TestOpenIsNoOpForCurrentVersion(t *testing.T) {
	s, mr, _ := newTestStorage(t)
	ctx := context.Background()

	if err := s.Open(ctx); err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s.Open(ctx); err != nil {
		t.Fatalf("second open: %v", err)
	}

	keys, err := mr.HKeys("test:session")
	if err != nil {
		t.Fatalf("hkeys: %v", err)
	}
	if len(keys) != 1 || keys[0] != FieldVersion {
		t.Fatalf("expected only the version field, got %v", keys)
	}
}

func TestOpenRejectsNewerVersion(t *testing.T) {
	s, _, _ := newTestStorage(t)
	ctx := context.Background()

	if err := s.Version().Set(ctx, 2); err != nil {
		t.Fatalf("seed version: %v", err)
	}

	err := s.Open(ctx)
	if !errors.Is(err, ErrVersionTooNew) || !errors.Is(err, ErrVersion) {
		t.Fatalf("expected version too new, got %v", err)
	}
	if got := s.MetricsSnapshot().Counters[MetricVersionRejected]; got != 1 {
		t.Fatalf("expected 1 version rejection, got %d", got)
	}

	v, ok, err := s.Version().Get(ctx)
	if err != nil || !ok || v != 2 {
		t.Fatalf("stored version must be left alone, got %d %v %v", v, ok, err)
	}
}

func TestOpenRejectsOlderVersion(t *testing.T) {
	s, _, _ := newTestStorage(t)
	ctx := context.Background()

	if err := s.Version().Set(ctx, 0); err != nil {
		t.Fatalf("seed version: %v", err)
	}

	err := s.Open(ctx)
	if !errors.Is(err, ErrUpgradeNotImplemented) {
		t.Fatalf("expected upgrade not implemented, got %v", err)
	}
}

func TestOpenPropagatesDecodeError(t *testing.T) {
	s, mr, _ := newTestStorage(t)

	mr.HSet("test:session", FieldVersion, "bad")

	if err := s.Open(context.Background()); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestCloseWritesDate(t *testing.T) {
	s, _, _ := newTestStorage(t)
	ctx := context.Background()

	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	date, ok, err := s.Date().Get(ctx)
	if err != nil || !ok {
		t.Fatalf("read date: %v %v", ok, err)
	}
	if date != fixedNow.Unix() {
		t.Fatalf("expected date %d, got %d", fixedNow.Unix(), date)
	}
}

func TestDeleteRemovesSessionFieldsOnly(t *testing.T) {
	s, mr, _ := newTestStorage(t)
	ctx := context.Background()

	if err := s.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.AuthKey().Set(ctx, []byte{1, 2, 3}); err != nil {
		t.Fatalf("set auth key: %v", err)
	}
	if err := s.UserID().Set(ctx, 42); err != nil {
		t.Fatalf("set user id: %v", err)
	}
	if err := s.SetUpdateState(ctx, UpdateState{StateID: 1, Pts: 10}); err != nil {
		t.Fatalf("set state: %v", err)
	}
	if err := s.UpdatePeers(ctx, []PeerUpdate{{ID: 100, AccessHash: 555, Type: "user"}}); err != nil {
		t.Fatalf("update peers: %v", err)
	}

	if err := s.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if mr.Exists("test:session") {
		t.Fatal("expected session hash to be gone")
	}
	if !mr.Exists("test:state") {
		t.Fatal("update states must survive Delete")
	}
	if _, err := s.PeerByID(ctx, 100); err != nil {
		t.Fatalf("peer must survive Delete: %v", err)
	}
}

func TestStorageUsesPrefixForEveryKey(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()

	a, err := NewStorage(client, "alpha")
	if err != nil {
		t.Fatalf("build alpha: %v", err)
	}
	b, err := NewStorage(client, "beta")
	if err != nil {
		t.Fatalf("build beta: %v", err)
	}

	if err := a.DCID().Set(ctx, 2); err != nil {
		t.Fatalf("set dc: %v", err)
	}
	if _, ok, err := b.DCID().Get(ctx); err != nil || ok {
		t.Fatalf("beta must not see alpha's fields: ok=%v err=%v", ok, err)
	}
	if a.Prefix() != "alpha" {
		t.Fatalf("unexpected prefix %q", a.Prefix())
	}
}

func TestStorageReturnsRedisErrorsUnchanged(t *testing.T) {
	s, mr, _ := newTestStorage(t)

	mr.SetError("LOADING")
	defer mr.SetError("")

	_, _, err := s.DCID().Get(context.Background())
	if err == nil {
		t.Fatal("expected redis error")
	}
	if errors.Is(err, ErrDecode) || errors.Is(err, ErrPeerNotFound) {
		t.Fatalf("redis error must not be classified, got %v", err)
	}
}

func TestCloseCountsOnlySuccessfulSaves(t *testing.T) {
	s, mr, _ := newTestStorage(t)
	ctx := context.Background()

	mr.SetError("READONLY")
	if err := s.Close(ctx); err == nil {
		t.Fatal("expected close to fail while redis rejects writes")
	}
	mr.SetError("")

	if got := s.MetricsSnapshot().Counters[MetricSessionClosed]; got != 0 {
		t.Fatalf("failed close must not be counted, got %d", got)
	}

	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := s.MetricsSnapshot().Counters[MetricSessionClosed]; got != 1 {
		t.Fatalf("expected one closed session, got %d", got)
	}
}
