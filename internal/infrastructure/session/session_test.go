package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/infrastructure/session"
	pkgjwt "github.com/jhoicas/clinica-portal/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testIssuer = "clinica-portal-test"
)

// ──────────────────────────────────────────────────────────────────────────────
// JWTProvider
// ──────────────────────────────────────────────────────────────────────────────

func TestJWTProvider_IssueYResolve(t *testing.T) {
	p := session.NewJWTProvider(testSecret, testIssuer, time.Hour)
	ctx := context.Background()

	tok, err := p.Issue(ctx, entity.Session{IdentityID: "id-1", Role: entity.RoleDoctor})
	require.NoError(t, err)

	sess, err := p.Resolve(ctx, tok)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "id-1", sess.IdentityID)
	assert.Equal(t, entity.RoleDoctor, sess.Role)
}

func TestJWTProvider_TokenInvalido_SinSesionSinError(t *testing.T) {
	p := session.NewJWTProvider(testSecret, testIssuer, time.Hour)
	for _, tok := range []string{"", "token.invalido.aqui", "abc"} {
		sess, err := p.Resolve(context.Background(), tok)
		assert.NoError(t, err)
		assert.Nil(t, sess)
	}
}

func TestJWTProvider_TokenExpirado(t *testing.T) {
	p := session.NewJWTProvider(testSecret, testIssuer, -time.Minute)
	tok, err := p.Issue(context.Background(), entity.Session{IdentityID: "id-1", Role: entity.RoleAdmin})
	require.NoError(t, err)

	sess, err := p.Resolve(context.Background(), tok)
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestJWTProvider_RolDesconocido_SinSesion(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "id-1", "superuser", testIssuer, 60*time.Minute)
	require.NoError(t, err)

	sess, err := session.NewJWTProvider(testSecret, testIssuer, time.Hour).Resolve(context.Background(), tok)
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestJWTProvider_OtroSecret_SinSesion(t *testing.T) {
	tok, err := session.NewJWTProvider("otro-secret", testIssuer, time.Hour).
		Issue(context.Background(), entity.Session{IdentityID: "id-1", Role: entity.RoleAdmin})
	require.NoError(t, err)

	sess, err := session.NewJWTProvider(testSecret, testIssuer, time.Hour).Resolve(context.Background(), tok)
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

// ──────────────────────────────────────────────────────────────────────────────
// RedisStore (miniredis)
// ──────────────────────────────────────────────────────────────────────────────

func newRedisStore(t *testing.T, ttl time.Duration) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return session.NewRedisStore(client, ttl), mr
}

func TestRedisStore_IssueResolveRevoke(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()

	tok, err := store.Issue(ctx, entity.Session{IdentityID: "id-9", Role: entity.RolePatient})
	require.NoError(t, err)
	assert.Len(t, tok, 64)

	sess, err := store.Resolve(ctx, tok)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "id-9", sess.IdentityID)
	assert.Equal(t, entity.RolePatient, sess.Role)

	require.NoError(t, store.Revoke(ctx, tok))
	sess, err = store.Resolve(ctx, tok)
	require.NoError(t, err)
	assert.Nil(t, sess, "tras revocar no debe haber sesión")

	assert.NoError(t, store.Revoke(ctx, tok), "revocar dos veces no es error")
}

func TestRedisStore_Expira(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	tok, err := store.Issue(ctx, entity.Session{IdentityID: "id-1", Role: entity.RoleStaff})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	sess, err := store.Resolve(ctx, tok)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestRedisStore_TokenDesconocido(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	sess, err := store.Resolve(context.Background(), "no-existe")
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestRedisStore_ValorCorrupto_SinSesion(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	require.NoError(t, mr.Set("session:abc", "{no-json"))
	sess, err := store.Resolve(context.Background(), "abc")
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestRedisStore_RedisCaido_RetornaError(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	mr.Close()
	sess, err := store.Resolve(context.Background(), "abc")
	assert.Error(t, err, "un backend caído debe reportarse para que el guard falle cerrado")
	assert.Nil(t, sess)
}

func TestRedisStore_SesionInvalida_NoSeEmite(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	_, err := store.Issue(context.Background(), entity.Session{IdentityID: "", Role: entity.RoleAdmin})
	assert.Error(t, err)
}
