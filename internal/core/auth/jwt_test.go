package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTer_IssueParse(t *testing.T) {
	j := NewJWTer("secret", "arena", time.Hour)
	tok, err := j.Issue(42, "admin")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", c.UID)
	assert.Equal(t, "admin", c.Role)
	assert.Equal(t, "arena", c.Issuer)
}

func TestJWTer_RejectsForeignAndExpired(t *testing.T) {
	j := NewJWTer("secret", "arena", time.Minute)
	other := NewJWTer("other", "arena", time.Minute)

	tok, err := other.Issue(1, "user")
	require.NoError(t, err)
	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	past := time.Now().Add(-time.Hour)
	j.now = func() time.Time { return past }
	old, err := j.Issue(1, "user")
	require.NoError(t, err)
	j.now = nil
	_, err = j.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTer_WrongIssuer(t *testing.T) {
	tok, err := NewJWTer("secret", "someone-else", time.Minute).Issue(1, "user")
	require.NoError(t, err)
	_, err = NewJWTer("secret", "arena", time.Minute).Parse(tok)
	assert.Error(t, err)
}

func TestJWTer_NoSecret(t *testing.T) {
	_, err := NewJWTer("", "arena", time.Minute).Issue(1, "user")
	assert.Error(t, err)
}
