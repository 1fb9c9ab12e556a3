package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pharmacy-desk/internal/common"
)

const testSecret = "desk-test-secret"

func signToken(t *testing.T, alg jwa.SignatureAlgorithm, subject string, now time.Time) string {
	t.Helper()
	token, err := jwt.NewBuilder().
		Subject(subject).
		Issuer("pharmacy-auth").
		Audience([]string{"pharmacy-desk"}).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(15 * time.Minute)).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(alg, []byte(testSecret)))
	require.NoError(t, err)
	return string(signed)
}

func newVerifier(t *testing.T, now time.Time) *Verifier {
	t.Helper()
	v, err := NewVerifier(Config{Secret: testSecret, Issuer: "pharmacy-auth", Audience: "pharmacy-desk"})
	require.NoError(t, err)
	v.WithNow(func() time.Time { return now })
	return v
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := NewVerifier(Config{Secret: "  "})
	require.Error(t, err)
}

func TestParseAccessToken(t *testing.T) {
	now := time.Now()
	v := newVerifier(t, now)

	subject, err := v.ParseAccessToken(signToken(t, jwa.HS256, "cashier-7", now))
	require.NoError(t, err)
	require.Equal(t, "cashier-7", subject)

	_, err = v.ParseAccessToken(signToken(t, jwa.HS384, "cashier-7", now))
	require.Error(t, err)

	_, err = v.ParseAccessToken(signToken(t, jwa.HS256, "", now))
	require.Error(t, err)

	_, err = v.ParseAccessToken("not-a-jwt")
	require.Error(t, err)
}

func TestRequireAuthStoresIdentityAndToken(t *testing.T) {
	now := time.Now()
	mw := Middleware{Verifier: newVerifier(t, now)}
	token := signToken(t, jwa.HS256, "cashier-7", now)

	var gotUser, gotToken string
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = common.UserID(r.Context())
		gotToken = common.AccessToken(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drafts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "cashier-7", gotUser)
	require.Equal(t, token, gotToken)
}

func TestRequireAuthRejects(t *testing.T) {
	now := time.Now()
	mw := Middleware{Verifier: newVerifier(t, now)}
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Basic abc", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/drafts", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code, header)
	}
}
