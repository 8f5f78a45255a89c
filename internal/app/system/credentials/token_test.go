package credentials_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newIssuer(t *testing.T, c *clock) *credentials.Issuer {
	t.Helper()
	iss, err := credentials.NewIssuer(testSecret, time.Hour,
		credentials.WithClock(c.now), credentials.WithIssuerName("ngohub"))
	require.NoError(t, err)
	return iss
}

func TestIssueCheck_RoundTrip(t *testing.T) {
	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	iss := newIssuer(t, c)

	for _, d := range []credentials.Discriminant{credentials.Organization, credentials.Individual} {
		t.Run(string(d), func(t *testing.T) {
			tok, err := iss.Issue("65f000000000000000000001", d)
			require.NoError(t, err)
			assert.Equal(t, c.t.Add(time.Hour), tok.ExpiresAt)

			sub, err := iss.Check(tok.Value)
			require.NoError(t, err)
			assert.Equal(t, "65f000000000000000000001", sub.ID)
			assert.Equal(t, d, sub.Discriminant)
		})
	}
}

func TestCheck_TamperedAndExpiredFailIdentically(t *testing.T) {
	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	iss := newIssuer(t, c)

	for _, d := range []credentials.Discriminant{credentials.Organization, credentials.Individual} {
		t.Run(string(d), func(t *testing.T) {
			c.t = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
			tok, err := iss.Issue("subject-1", d)
			require.NoError(t, err)

			parts := strings.Split(tok.Value, ".")
			require.Len(t, parts, 3)
			sig := []byte(parts[2])
			if sig[0] == 'A' {
				sig[0] = 'B'
			} else {
				sig[0] = 'A'
			}
			tampered := parts[0] + "." + parts[1] + "." + string(sig)

			_, tamperErr := iss.Check(tampered)
			require.Error(t, tamperErr)

			c.t = c.t.Add(2 * time.Hour)
			_, expiredErr := iss.Check(tok.Value)
			require.Error(t, expiredErr)

			assert.Equal(t, apperr.KindInvalidCredential, apperr.KindOf(tamperErr))
			assert.Equal(t, apperr.KindInvalidCredential, apperr.KindOf(expiredErr))
			assert.Equal(t, tamperErr.(*apperr.Error).Message, expiredErr.(*apperr.Error).Message)
		})
	}
}

func TestCheck_WrongSecret(t *testing.T) {
	c := &clock{t: time.Now()}
	iss := newIssuer(t, c)
	other, err := credentials.NewIssuer("another-secret-that-is-32-bytes-long!!", time.Hour,
		credentials.WithClock(c.now), credentials.WithIssuerName("ngohub"))
	require.NoError(t, err)

	tok, err := other.Issue("subject-1", credentials.Organization)
	require.NoError(t, err)

	_, err = iss.Check(tok.Value)
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredential))
}

func TestCheck_RejectsUnknownDiscriminant(t *testing.T) {
	c := &clock{t: time.Now()}
	iss := newIssuer(t, c)

	claims := credentials.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-1",
			Issuer:    "ngohub",
			IssuedAt:  jwt.NewNumericDate(c.t),
			ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour)),
		},
		Kind:        "admin",
		KindVersion: credentials.DiscriminantVersion,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = iss.Check(signed)
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredential))
}

func TestCheck_RejectsOtherVersion(t *testing.T) {
	c := &clock{t: time.Now()}
	iss := newIssuer(t, c)

	claims := credentials.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-1",
			Issuer:    "ngohub",
			IssuedAt:  jwt.NewNumericDate(c.t),
			ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour)),
		},
		Kind:        credentials.Organization,
		KindVersion: credentials.DiscriminantVersion + 1,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = iss.Check(signed)
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredential))
}

func TestCheck_RejectsNoneAlgorithm(t *testing.T) {
	c := &clock{t: time.Now()}
	iss := newIssuer(t, c)

	claims := credentials.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-1",
			Issuer:    "ngohub",
			ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour)),
		},
		Kind:        credentials.Individual,
		KindVersion: credentials.DiscriminantVersion,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.Check(signed)
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredential))
}

func TestIssue_RejectsInvalidInput(t *testing.T) {
	iss := newIssuer(t, &clock{t: time.Now()})

	_, err := iss.Issue("", credentials.Organization)
	assert.Error(t, err)
	_, err = iss.Issue("subject-1", "admin")
	assert.Error(t, err)
}

func TestNewIssuer_Validation(t *testing.T) {
	_, err := credentials.NewIssuer("", time.Hour)
	assert.Error(t, err)
	_, err = credentials.NewIssuer(testSecret, 0)
	assert.Error(t, err)
}
