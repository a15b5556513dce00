package flash

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	s, err := NewSigner("development key")
	require.NoError(t, err)

	token, err := s.Sign("New entry was successfully posted")
	require.NoError(t, err)

	msg, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "New entry was successfully posted", msg)
}

func TestNewSigner_EmptySecret(t *testing.T) {
	_, err := NewSigner("")
	require.Error(t, err)
}

func TestVerify_RejectsOtherSecret(t *testing.T) {
	a, err := NewSigner("secret a")
	require.NoError(t, err)
	b, err := NewSigner("secret b")
	require.NoError(t, err)

	token, err := a.Sign("hello")
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.Error(t, err)
}

func TestVerify_RejectsTampered(t *testing.T) {
	s, err := NewSigner("development key")
	require.NoError(t, err)

	token, err := s.Sign("hello")
	require.NoError(t, err)

	forged, err := s.Sign("forged")
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	require.Len(t, parts, 3)
	require.Len(t, forgedParts, 3)

	// payload of one token with the signature of another
	_, err = s.Verify(parts[0] + "." + forgedParts[1] + "." + parts[2])
	assert.Error(t, err)

	_, err = s.Verify("not-a-token")
	assert.Error(t, err)
}

func TestVerify_RejectsExpired(t *testing.T) {
	s, err := NewSigner("development key")
	require.NoError(t, err)

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return start }

	token, err := s.Sign("hello")
	require.NoError(t, err)

	s.now = func() time.Time { return start.Add(s.TTL() - time.Second) }
	_, err = s.Verify(token)
	require.NoError(t, err)

	s.now = func() time.Time { return start.Add(s.TTL() + time.Minute) }
	_, err = s.Verify(token)
	assert.Error(t, err)
}
