package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rastrodeliberdade/rider-platform/internal/api"
)

const testSecret = "super-long-signing-key-for-hs512-tests-never-use-in-production"

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer(testSecret, 15*time.Minute, "test-issuer")
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := newTestIssuer()
	principal := &Principal{Email: "marlon@rastrodeliberdade.com"}

	token, err := issuer.Issue(principal)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, principal.Email, subject)
}

func TestTokenIssuer_NilPrincipalPanics(t *testing.T) {
	issuer := newTestIssuer()

	assert.Panics(t, func() {
		_, _ = issuer.Issue(nil)
	})
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := newTestIssuer()

	// Issue in the past so the token is already expired when verified.
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := issuer.Issue(&Principal{Email: "a@x.com"})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, api.ErrTokenExpired)
}

func TestTokenIssuer_TamperedSignature(t *testing.T) {
	issuer := newTestIssuer()

	token, err := issuer.Issue(&Principal{Email: "a@x.com"})
	require.NoError(t, err)

	// Flip one byte in the signature segment.
	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	_, err = issuer.Verify(string(tampered))
	assert.ErrorIs(t, err, api.ErrTokenInvalidSignature)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := newTestIssuer()
	other := NewTokenIssuer("a-completely-different-signing-key-of-sufficient-size", 15*time.Minute, "test-issuer")

	token, err := issuer.Issue(&Principal{Email: "a@x.com"})
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, api.ErrTokenInvalidSignature)
}

func TestTokenIssuer_Malformed(t *testing.T) {
	issuer := newTestIssuer()

	_, err := issuer.Verify("not.a.jwt")
	assert.ErrorIs(t, err, api.ErrTokenMalformed)

	_, err = issuer.Verify("")
	assert.ErrorIs(t, err, api.ErrTokenMalformed)
}

func TestTokenIssuer_ClaimsCarryConfiguredTTL(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Minute, "test-issuer")

	fixed := time.Now()
	issuer.now = func() time.Time { return fixed }

	token, err := issuer.Issue(&Principal{Email: "a@x.com"})
	require.NoError(t, err)

	// Just past the TTL the token must be rejected as expired.
	issuer.now = func() time.Time { return fixed.Add(2 * time.Minute) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, api.ErrTokenExpired)
}
