package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
)

// Discriminant tags which principal variant a token authenticates.
type Discriminant string

const (
	Organization Discriminant = "organization"
	Individual   Discriminant = "individual"
)

// DiscriminantVersion is bumped whenever the discriminant set changes.
// Tokens minted under another version are rejected.
const DiscriminantVersion = 1

// Valid reports whether d is a member of the closed enumeration.
func (d Discriminant) Valid() bool {
	return d == Organization || d == Individual
}

// Claims is the signed token payload.
type Claims struct {
	jwt.RegisteredClaims
	Kind        Discriminant `json:"kind"`
	KindVersion int          `json:"kind_v"`
}

// Token is an issued access token.
type Token struct {
	Value        string
	SubjectID    string
	Discriminant Discriminant
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// Subject is what a verified token resolves to.
type Subject struct {
	ID           string
	Discriminant Discriminant
}

// Issuer signs and verifies HS256 access tokens with one shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// IssuerOption customises an Issuer.
type IssuerOption func(*Issuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// WithIssuerName sets the iss claim.
func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) { i.issuer = name }
}

// NewIssuer returns an Issuer. ttl must be positive.
func NewIssuer(secret string, ttl time.Duration, opts ...IssuerOption) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	i := &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// TTL returns the fixed token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for subjectID with discriminant d.
func (i *Issuer) Issue(subjectID string, d Discriminant) (Token, error) {
	if subjectID == "" {
		return Token{}, errors.New("token subject is empty")
	}
	if !d.Valid() {
		return Token{}, fmt.Errorf("unknown discriminant %q", d)
	}

	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Kind:        d,
		KindVersion: DiscriminantVersion,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{
		Value:        signed,
		SubjectID:    subjectID,
		Discriminant: d,
		IssuedAt:     now,
		ExpiresAt:    exp,
	}, nil
}

// Check verifies signature and expiry and returns the subject. Every failure
// is an InvalidCredential so callers cannot tell tampering from expiry.
func (i *Issuer) Check(value string) (Subject, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(value, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return Subject{}, apperr.InvalidCredential("Invalid or expired access token", err)
	}
	if claims.Subject == "" {
		return Subject{}, apperr.InvalidCredential("Invalid or expired access token", errors.New("missing subject"))
	}
	if claims.KindVersion != DiscriminantVersion || !claims.Kind.Valid() {
		return Subject{}, apperr.InvalidCredential("Invalid or expired access token",
			fmt.Errorf("unsupported discriminant %q v%d", claims.Kind, claims.KindVersion))
	}
	return Subject{ID: claims.Subject, Discriminant: claims.Kind}, nil
}
