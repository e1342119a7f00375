// README: JWT manager tests (round trip, tampering, expiry).
package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridehail/internal/modules/user"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	ctx := context.Background()

	token, err := m.Issue(ctx, Principal{UserID: 42, Role: user.RoleDriver})
	require.NoError(t, err)

	sub, err := subjectOf(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sub)

	p, err := m.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: 42, Role: user.RoleDriver}, p)

	require.NoError(t, m.Revoke(ctx, token))
}

func TestJWTRejects(t *testing.T) {
	ctx := context.Background()
	m := NewJWTManager("test-secret", time.Hour)
	token, err := m.Issue(ctx, Principal{UserID: 7, Role: user.RolePassenger})
	require.NoError(t, err)

	t.Run("tampered signature", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err := m.Verify(ctx, parts[0]+"."+parts[1]+"."+string(sig))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		_, err := NewJWTManager("other-secret", time.Hour).Verify(ctx, token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager("test-secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Verify(ctx, token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		claims := Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = m.Verify(ctx, forged)
		require.True(t, errors.Is(err, ErrInvalidToken))
	})
}

// subjectOf reads the subject of token without verifying it.
func subjectOf(token string) (int64, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return 0, err
	}
	return strconv.ParseInt(claims.Subject, 10, 64)
}
