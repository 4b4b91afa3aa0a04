package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockVerifier struct {
	VerifyTokenFunc func(token string) (*Identity, error)
}

func (m *mockVerifier) VerifyToken(token string) (*Identity, error) {
	return m.VerifyTokenFunc(token)
}

func identityEcho(t *testing.T, captured **Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := IdentityFromContext(r.Context()); ok {
			*captured = identity
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	userID, err := uuid.NewV4()
	require.NoError(t, err)

	verifier := &mockVerifier{
		VerifyTokenFunc: func(token string) (*Identity, error) {
			if token == "good" {
				return &Identity{UserID: userID, Role: RoleAdmin}, nil
			}
			return nil, ErrInvalidToken
		},
	}

	t.Run("valid_cookie_attaches_identity", func(t *testing.T) {
		var captured *Identity
		handler := Authenticate(verifier)(identityEcho(t, &captured))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "good"})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, captured)
		assert.Equal(t, userID, captured.UserID)
	})

	t.Run("missing_cookie_passes_through_anonymously", func(t *testing.T) {
		var captured *Identity
		handler := Authenticate(verifier)(identityEcho(t, &captured))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, captured)
	})

	t.Run("bad_token_passes_through_anonymously", func(t *testing.T) {
		var captured *Identity
		handler := Authenticate(verifier)(identityEcho(t, &captured))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "tampered"})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, captured)
	})

	t.Run("verifier_error_is_anonymous", func(t *testing.T) {
		broken := &mockVerifier{
			VerifyTokenFunc: func(token string) (*Identity, error) {
				return nil, errors.New("key rotation in progress")
			},
		}
		var captured *Identity
		handler := Authenticate(broken)(identityEcho(t, &captured))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "good"})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Nil(t, captured)
	})
}

func TestRequireRole(t *testing.T) {
	userID, err := uuid.NewV4()
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no_identity", func(t *testing.T) {
		handler := RequireRole(RoleAdmin)(next)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong_role", func(t *testing.T) {
		handler := RequireRole(RoleAdmin)(next)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), &Identity{UserID: userID, Role: RoleCustomer}))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("matching_role", func(t *testing.T) {
		handler := RequireRole(RoleAdmin)(next)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), &Identity{UserID: userID, Role: RoleAdmin}))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
