package mtredis

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/MrEthical07/mtredis/codec"
	"github.com/redis/go-redis/v9"
)

// UpdateState is the checkpoint of one update stream.
type UpdateState = codec.UpdateState

// UpdateState returns the checkpoint stored for stateID. ok is false when
// none is stored.
func (s *Storage) UpdateState(ctx context.Context, stateID int64) (state UpdateState, ok bool, err error) {
	start := time.Now()
	data, err := s.redis.HGet(ctx, s.stateKey, string(codec.EncodeStateID(stateID))).Bytes()
	s.observe(start)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.metrics.Inc(MetricStateRead)
			return UpdateState{}, false, nil
		}
		return UpdateState{}, false, err
	}
	s.metrics.Inc(MetricStateRead)

	state, err = codec.DecodeUpdateState(data)
	if err != nil {
		s.metrics.Inc(MetricDecodeFailure)
		return UpdateState{}, false, err
	}
	return state, true, nil
}

// UpdateStates returns every stored checkpoint ordered by state id.
func (s *Storage) UpdateStates(ctx context.Context) ([]UpdateState, error) {
	start := time.Now()
	raw, err := s.redis.HGetAll(ctx, s.stateKey).Result()
	s.observe(start)
	if err != nil {
		return nil, err
	}
	s.metrics.Inc(MetricStateRead)

	states := make([]UpdateState, 0, len(raw))
	for _, value := range raw {
		state, err := codec.DecodeUpdateState([]byte(value))
		if err != nil {
			s.metrics.Inc(MetricDecodeFailure)
			return nil, err
		}
		states = append(states, state)
	}
	slices.SortFunc(states, func(a, b UpdateState) int {
		switch {
		case a.StateID < b.StateID:
			return -1
		case a.StateID > b.StateID:
			return 1
		default:
			return 0
		}
	})
	return states, nil
}

// SetUpdateState stores state under state.StateID, replacing any previous
// checkpoint. Counters left at zero are stored as zero.
func (s *Storage) SetUpdateState(ctx context.Context, state UpdateState) error {
	start := time.Now()
	err := s.redis.HSet(ctx, s.stateKey, string(codec.EncodeStateID(state.StateID)), codec.EncodeUpdateState(state)).Err()
	s.observe(start)
	if err != nil {
		return err
	}
	s.metrics.Inc(MetricStateWrite)
	return nil
}

// DeleteUpdateState removes the checkpoint for stateID if present.
func (s *Storage) DeleteUpdateState(ctx context.Context, stateID int64) error {
	start := time.Now()
	err := s.redis.HDel(ctx, s.stateKey, string(codec.EncodeStateID(stateID))).Err()
	s.observe(start)
	if err != nil {
		return err
	}
	s.metrics.Inc(MetricStateDelete)
	return nil
}
