package auth_service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joy095/parlour/logger"
	"github.com/joy095/parlour/store"
	"github.com/joy095/parlour/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-at-least-32-characters"

func TestMain(m *testing.M) {
	logger.Silence()
	os.Exit(m.Run())
}

func newTestService(t *testing.T) (*AuthService, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	svc, err := NewAuthService(s, testSecret, 8*time.Hour)
	require.NoError(t, err)

	created, err := svc.ProvisionAdmin(context.Background(), "admin", "Admin@123")
	require.NoError(t, err)
	require.True(t, created)
	return svc, s
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	_, err := NewAuthService(store.NewMemoryStore(), "", time.Hour)
	assert.Error(t, err)

	_, err = NewAuthService(store.NewMemoryStore(), testSecret, 0)
	assert.Error(t, err)
}

func TestLoginAndVerifyRoundTrip(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "admin", "Admin@123")
	require.NoError(t, err)
	assert.Equal(t, "admin", res.Username)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), res.ExpiresAt, time.Minute)

	claims, err := svc.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	admin, err := s.FindAdminByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, admin.ID.String(), claims.AdminID)
	assert.NotNil(t, admin.LastLogin)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "Admin@123")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "Admin@123")
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	svc, _ := newTestService(t)

	issued := time.Now().Add(-9 * time.Hour)
	svc.now = func() time.Time { return issued }
	res, err := svc.Login(context.Background(), "admin", "Admin@123")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.VerifyToken(res.Token)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Login(context.Background(), "admin", "Admin@123")
	require.NoError(t, err)

	parts := strings.Split(res.Token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.VerifyToken(tampered)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	_, err = svc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	_, err = svc.VerifyToken("")
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
}

func TestVerifyTokenRejectsOtherSecretAndAlgorithm(t *testing.T) {
	svc, _ := newTestService(t)

	claims := Claims{
		AdminID:  uuid.NewString(),
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)
	_, err = svc.VerifyToken(foreign)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.VerifyToken(hs512)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.VerifyToken(none)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
}

func TestVerifyTokenRequiresExpiry(t *testing.T) {
	svc, _ := newTestService(t)

	claims := Claims{AdminID: uuid.NewString(), Username: "admin"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	admin, err := s.FindAdminByUsername(ctx, "admin")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, admin.ID, "wrong", "newpass1")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, admin.ID, "Admin@123", "abc")
	assert.ErrorIs(t, err, utils.ErrWeakPassword)

	// "密码" and "éàü" are six bytes but fewer than six characters.
	err = svc.ChangePassword(ctx, admin.ID, "Admin@123", "密码")
	assert.ErrorIs(t, err, utils.ErrWeakPassword)
	err = svc.ChangePassword(ctx, admin.ID, "Admin@123", "éàü")
	assert.ErrorIs(t, err, utils.ErrWeakPassword)

	err = svc.ChangePassword(ctx, admin.ID, "", "newpass1")
	assert.ErrorIs(t, err, utils.ErrValidation)

	err = svc.ChangePassword(ctx, uuid.New(), "Admin@123", "newpass1")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	require.NoError(t, svc.ChangePassword(ctx, admin.ID, "Admin@123", "newpass1"))

	_, err = svc.Login(ctx, "admin", "Admin@123")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "admin", "newpass1")
	assert.NoError(t, err)
}

func TestProvisionAdminUpdatesExisting(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.ProvisionAdmin(ctx, "admin", "another-pass")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.Login(ctx, "admin", "another-pass")
	assert.NoError(t, err)

	_, err = svc.ProvisionAdmin(ctx, "admin", "123")
	assert.ErrorIs(t, err, utils.ErrWeakPassword)

	_, err = svc.ProvisionAdmin(ctx, "admin", "密码密")
	assert.ErrorIs(t, err, utils.ErrWeakPassword)

	created, err = svc.ProvisionAdmin(ctx, "admin", "密码密码密码")
	require.NoError(t, err)
	assert.False(t, created)
	_, err = svc.Login(ctx, "admin", "密码密码密码")
	assert.NoError(t, err)
}
