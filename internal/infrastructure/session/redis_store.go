package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/clinica-portal/internal/application/ports"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
)

var _ ports.SessionProvider = (*RedisStore)(nil)

const keyPrefix = "session:"

// record valor guardado en Redis por sesión.
type record struct {
	IdentityID string `json:"identity_id"`
	Role       string `json:"role"`
	IssuedAt   int64  `json:"issued_at"`
}

// RedisStore sesiones en servidor: el token es opaco y la sesión vive en Redis con TTL.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore construye el store sobre un cliente ya conectado.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Issue crea la sesión con un token aleatorio de 32 bytes.
func (s *RedisStore) Issue(ctx context.Context, sess entity.Session) (string, error) {
	if !sess.Valid() {
		return "", fmt.Errorf("session: sesión inválida")
	}
	token, err := newToken()
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(record{IdentityID: sess.IdentityID, Role: sess.Role.String(), IssuedAt: time.Now().Unix()})
	if err != nil {
		return "", fmt.Errorf("session: encode: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+token, b, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session: set: %w", err)
	}
	return token, nil
}

// Resolve lee la sesión. Errores de Redis se propagan; el guard los trata como no autenticado.
func (s *RedisStore) Resolve(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, nil
	}
	b, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: get: %w", err)
	}
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, nil
	}
	role, err := entity.ParseRole(rec.Role)
	if err != nil || rec.IdentityID == "" {
		return nil, nil
	}
	return &entity.Session{IdentityID: rec.IdentityID, Role: role}, nil
}

// Revoke borra la sesión. Revocar un token inexistente no es error.
func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session: del: %w", err)
	}
	return nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session: token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
