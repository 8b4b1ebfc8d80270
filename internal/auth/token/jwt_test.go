package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"
)

func TestIssueParseRoundTrip(t *testing.T) {
	m := New("test-secret", "trademonke", time.Hour)
	uid := uuid.New()

	raw, claims, err := m.Issue(context.Background(), uid, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.NotEmpty(t, claims.JTI)

	parsed, err := m.Parse(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, uid, parsed.UserID)
	assert.Equal(t, "user@example.com", parsed.Email)
	assert.Equal(t, claims.JTI, parsed.JTI)
}

func TestParseWrongSecret(t *testing.T) {
	m := New("secret-a", "trademonke", time.Hour)
	raw, _, err := m.Issue(context.Background(), uuid.New(), "user@example.com")
	require.NoError(t, err)

	other := New("secret-b", "trademonke", time.Hour)
	_, err = other.Parse(context.Background(), raw)
	assert.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	m := New("test-secret", "trademonke", -time.Minute)
	raw, _, err := m.Issue(context.Background(), uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = m.Parse(context.Background(), raw)
	assert.Error(t, err)
}

func TestJTIUniquePerToken(t *testing.T) {
	m := New("test-secret", "trademonke", time.Hour)
	uid := uuid.New()

	_, c1, err := m.Issue(context.Background(), uid, "user@example.com")
	require.NoError(t, err)
	_, c2, err := m.Issue(context.Background(), uid, "user@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, c1.JTI, c2.JTI)
}
