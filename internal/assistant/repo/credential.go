package repo

import (
	"context"
	"errors"

	"github.com/geoassist/server/internal/assistant/model"
	errx "github.com/geoassist/server/internal/core/error"
	logx "github.com/geoassist/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// credentialKey is the fixed key the API credential persists under. The
// value is read at startup and written only on explicit save.
const credentialKey = "geoassist:api_key"

type RedisCredentialStore struct {
	rdb redis.Cmdable
}

func NewRedisCredentialStore(rdb redis.Cmdable) *RedisCredentialStore {
	return &RedisCredentialStore{rdb: rdb}
}

func (s *RedisCredentialStore) Save(ctx context.Context, credential string) error {
	if err := s.rdb.Set(ctx, credentialKey, credential, 0).Err(); err != nil {
		logx.Error().Err(err).Msg("failed to persist credential")
		return errx.WrapRedis(err)
	}
	return nil
}

// Load returns the stored credential, or the empty string without error when
// none has been saved yet.
func (s *RedisCredentialStore) Load(ctx context.Context) (string, error) {
	v, err := s.rdb.Get(ctx, credentialKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		logx.Error().Err(err).Msg("failed to load credential")
		return "", errx.WrapRedis(err)
	}
	return v, nil
}

var _ model.CredentialStore = (*RedisCredentialStore)(nil)
