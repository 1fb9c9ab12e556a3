package auth

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"
)

type claims struct {
	issuer  string
	subject string
	nbf     time.Time
	exp     time.Time
}

func buildToken(t *testing.T, c claims) jwt.Token {
	t.Helper()
	b := jwt.NewBuilder().
		Issuer(c.issuer).
		Audience([]string{"pharmacy-desk"}).
		IssuedAt(c.nbf).
		NotBefore(c.nbf)
	if c.subject != "" {
		b = b.Subject(c.subject)
	}
	if !c.exp.IsZero() {
		b = b.Expiration(c.exp)
	}
	token, err := b.Build()
	require.NoError(t, err)
	return token
}

func TestTokenValidator(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	validator := TokenValidator{Issuer: "pharmacy-auth", Audience: "pharmacy-desk", ClockSkew: time.Second, Algorithm: jwa.HS256}
	good := claims{issuer: "pharmacy-auth", subject: "cashier-7", nbf: now, exp: now.Add(time.Minute)}

	with := func(mut func(*claims)) claims {
		c := good
		mut(&c)
		return c
	}

	cases := []struct {
		name    string
		claims  claims
		alg     jwa.SignatureAlgorithm
		wantErr bool
	}{
		{"valid", good, jwa.HS256, false},
		{"issuer mismatch", with(func(c *claims) { c.issuer = "someone-else" }), jwa.HS256, true},
		{"expired", with(func(c *claims) { c.nbf, c.exp = now.Add(-2*time.Hour), now.Add(-time.Minute) }), jwa.HS256, true},
		{"not yet valid", with(func(c *claims) { c.nbf, c.exp = now.Add(5*time.Minute), now.Add(10*time.Minute) }), jwa.HS256, true},
		{"no expiry", with(func(c *claims) { c.exp = time.Time{} }), jwa.HS256, true},
		{"no subject", with(func(c *claims) { c.subject = "" }), jwa.HS256, true},
		{"algorithm mismatch", good, jwa.RS256, true},
		{"missing algorithm", good, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subject, err := validator.Validate(buildToken(t, tc.claims), tc.alg, now)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "cashier-7", subject)
		})
	}
}
