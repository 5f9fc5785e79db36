package session

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Save writes v under key wrapped in a {"version","data"} envelope
func Save[T any](ctx context.Context, s Store, key string, version int, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "session: encode %s", key)
	}
	blob, err := json.Marshal(envelope{Version: version, Data: data})
	if err != nil {
		return eris.Wrapf(err, "session: encode %s", key)
	}
	return s.Set(ctx, key, blob)
}

// Load reads the blob under key. A blob written with another version or
// one that cannot be decoded is removed and reported as absent.
func Load[T any](ctx context.Context, s Store, key string, version int) (T, bool, error) {
	var zero T
	blob, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}

	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil || env.Version != version || len(env.Data) == 0 {
		zap.L().Warn("discarding stale session blob",
			zap.String("key", key),
			zap.Int("stored_version", env.Version),
			zap.Int("expected_version", version),
		)
		return zero, false, s.Remove(ctx, key)
	}

	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		zap.L().Warn("discarding undecodable session blob", zap.String("key", key), zap.Error(err))
		return zero, false, s.Remove(ctx, key)
	}
	return v, true, nil
}
