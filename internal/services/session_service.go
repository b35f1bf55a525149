package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/hkdf"
)

var errSessionMissing = errors.New("session not found")

// SessionStore keeps server-side sessions: session id -> external identity.
type SessionStore interface {
	Save(ctx context.Context, sessionID, externalID string, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore stores sessions under session:<id> with a TTL.
type RedisSessionStore struct {
	redis *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{redis: client}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (s *RedisSessionStore) Save(ctx context.Context, sessionID, externalID string, ttl time.Duration) error {
	return s.redis.Set(ctx, sessionKey(sessionID), externalID, ttl).Err()
}

func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (string, error) {
	externalID, err := s.redis.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return "", errSessionMissing
	}
	return externalID, err
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, sessionKey(sessionID)).Err()
}

// MemorySessionStore is the single-process fallback when Redis is down.
type MemorySessionStore struct {
	cache *expirable.LRU[string, string]
}

func NewMemorySessionStore(size int, ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{cache: expirable.NewLRU[string, string](size, nil, ttl)}
}

// Save ignores ttl; every entry uses the store-wide TTL.
func (s *MemorySessionStore) Save(_ context.Context, sessionID, externalID string, _ time.Duration) error {
	s.cache.Add(sessionID, externalID)
	return nil
}

func (s *MemorySessionStore) Load(_ context.Context, sessionID string) (string, error) {
	externalID, ok := s.cache.Get(sessionID)
	if !ok {
		return "", errSessionMissing
	}
	return externalID, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.cache.Remove(sessionID)
	return nil
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// SessionManager issues opaque session tokens. The token is an HS256 JWT whose
// jti names the server-side record, so deleting the record revokes it.
type SessionManager struct {
	store      SessionStore
	signingKey []byte
	ttl        time.Duration
}

func NewSessionManager(store SessionStore, secret string, ttl time.Duration) (*SessionManager, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("dinostore session token v1")), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return &SessionManager{store: store, signingKey: key, ttl: ttl}, nil
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Create binds a new session to externalID and returns its token.
func (m *SessionManager) Create(ctx context.Context, externalID string) (string, time.Time, error) {
	sessionID := uuid.NewString()
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	if err := m.store.Save(ctx, sessionID, externalID, m.ttl); err != nil {
		return "", time.Time{}, fmt.Errorf("save session: %w", err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   externalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}).SignedString(m.signingKey)
	if err != nil {
		m.store.Delete(ctx, sessionID)
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	log.WithField("external_id", externalID).Info("[SESSION] Session created")
	return token, expiresAt, nil
}

// Resolve returns the external identity bound to token.
func (m *SessionManager) Resolve(ctx context.Context, token string) (string, error) {
	claims, err := m.parse(token, true)
	if err != nil {
		return "", err
	}

	externalID, err := m.store.Load(ctx, claims.ID)
	if errors.Is(err, errSessionMissing) {
		return "", fmt.Errorf("%w: session ended", ErrUnauthenticated)
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if externalID != claims.Subject {
		return "", fmt.Errorf("%w: session subject mismatch", ErrUnauthenticated)
	}
	return externalID, nil
}

// Destroy removes the server-side session. Unknown or expired tokens are a no-op.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	claims, err := m.parse(token, false)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	log.WithField("external_id", claims.Subject).Info("[SESSION] Session destroyed")
	return nil
}

func (m *SessionManager) parse(token string, validate bool) (*sessionClaims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no session token", ErrUnauthenticated)
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if !validate {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.signingKey, nil
	}, opts...)
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, fmt.Errorf("%w: invalid session token", ErrUnauthenticated)
	}
	return claims, nil
}
