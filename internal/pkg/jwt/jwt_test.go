package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	svc := New("secret", time.Hour)

	token, err := svc.Issue(42, "manager")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "manager", claims.Role)
}

func TestValidateRejects(t *testing.T) {
	svc := New("secret", time.Hour)

	expired, err := New("secret", -time.Minute).Issue(1, "owner")
	require.NoError(t, err)
	foreign, err := New("other-secret", time.Hour).Issue(1, "owner")
	require.NoError(t, err)
	noRole, err := svc.Issue(1, "")
	require.NoError(t, err)
	none, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{UserID: 1, Role: "owner"}).
		SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"expired":      expired,
		"wrong secret": foreign,
		"missing role": noRole,
		"alg none":     none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
