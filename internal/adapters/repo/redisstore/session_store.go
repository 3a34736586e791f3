// Package redisstore keeps the CLI session in redis so several machines or
// containers can share one login.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/bnema/coffeeviz-cli/internal/ports"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const (
	addrKey       = "redis.addr"
	prefixKey     = "redis.key_prefix"
	ttlKey        = "redis.ttl"
	defaultAddr   = "127.0.0.1:6379"
	defaultPrefix = "cvz:"
	sessionKey    = "session"
)

var ErrNilClient = errors.New("redis client is nil")

type sessionBlob struct {
	Credential string            `json:"credential"`
	Principal  *domain.Principal `json:"principal,omitempty"`
	SavedAt    time.Time         `json:"savedAt"`
}

type SessionStore struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewClient builds a client for the configured redis.addr.
func NewClient(cfg *viper.Viper) *redis.Client {
	addr := defaultAddr
	if cfg != nil && cfg.GetString(addrKey) != "" {
		addr = cfg.GetString(addrKey)
	}
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewSessionStore stores the session under <redis.key_prefix>session. A
// zero redis.ttl keeps it until logout.
func NewSessionStore(rdb *redis.Client, cfg *viper.Viper) (*SessionStore, error) {
	if rdb == nil {
		return nil, ErrNilClient
	}
	if cfg == nil {
		cfg = viper.New()
	}

	prefix := defaultPrefix
	if cfg.IsSet(prefixKey) {
		prefix = cfg.GetString(prefixKey)
	}

	ttl := cfg.GetDuration(ttlKey)
	if ttl < 0 {
		return nil, fmt.Errorf("redis ttl must not be negative, got %s", ttl)
	}

	return &SessionStore{rdb: rdb, key: prefix + sessionKey, ttl: ttl}, nil
}

func (s *SessionStore) Key() string {
	return s.key
}

func (s *SessionStore) Load(ctx context.Context) (domain.Session, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, nil
		}
		return domain.Session{}, fmt.Errorf("get session from redis: %w", err)
	}

	var blob sessionBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return domain.Session{}, fmt.Errorf("decode session blob: %w", err)
	}

	return domain.Session{Credential: blob.Credential, Principal: blob.Principal}, nil
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	data, err := json.Marshal(sessionBlob{
		Credential: session.Credential,
		Principal:  session.Principal,
		SavedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode session blob: %w", err)
	}

	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session in redis: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("delete session from redis: %w", err)
	}
	return nil
}
