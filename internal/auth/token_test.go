package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puzzlewager/puzzlewager/internal/chain"
)

func testAddr(t *testing.T) chain.Address {
	t.Helper()
	a, err := chain.ParseAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b")
	require.NoError(t, err)
	return a
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := NewManager([]byte("test-secret"), "puzzlewager", time.Hour)
	addr := testAddr(t)

	token, err := m.Issue(addr)
	require.NoError(t, err)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issued := NewManager([]byte("secret-a"), "puzzlewager", time.Hour)
	token, err := issued.Issue(testAddr(t))
	require.NoError(t, err)

	verifier := NewManager([]byte("secret-b"), "puzzlewager", time.Hour)
	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager([]byte("test-secret"), "puzzlewager", -time.Hour)
	// a non-positive ttl falls back to the 24h default, so build an
	// already-expired manager explicitly
	m.ttl = -time.Hour

	token, err := m.Issue(testAddr(t))
	require.NoError(t, err)
	_, err = m.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager([]byte("test-secret"), "puzzlewager", time.Hour)
	_, err := m.Verify("not-a-token")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	m := NewManager([]byte("test-secret"), "puzzlewager", time.Hour)
	addr := testAddr(t)
	token, err := m.Issue(addr)
	require.NoError(t, err)

	var seen chain.Address
	var seenOK bool
	handler := m.Middleware(func(w http.ResponseWriter, r *http.Request) {
		seen, seenOK = AddressFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	// no token
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// bad token
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// valid token
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, seenOK)
	assert.Equal(t, addr, seen)
}

func TestOptionalAllowsAnonymous(t *testing.T) {
	m := NewManager([]byte("test-secret"), "puzzlewager", time.Hour)

	var seenOK bool
	handler := m.Optional(func(w http.ResponseWriter, r *http.Request) {
		_, seenOK = AddressFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, seenOK)

	token, err := m.Issue(testAddr(t))
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seenOK)
}
