package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

var (
	// ErrMissingCredential is returned when no token was presented
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredential is returned for expired, malformed or badly signed tokens
	ErrInvalidCredential = errors.New("invalid credential")
)

// Claims is the data carried by an access token. The subject is the user ID.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier validates access tokens and resolves the identity they carry.
// It is stateless and safe for concurrent use.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifier creates a Verifier for HS256 tokens signed with secret
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// Issue signs a token for user valid for ttl.
// Token issuance belongs to the account service; this exists for tooling and tests.
func (v *Verifier) Issue(user domain.User, ttl time.Duration) (string, error) {
	now := v.now()
	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Verify parses token and returns the identity it was issued for
func (v *Verifier) Verify(token string) (domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return domain.User{}, ErrMissingCredential
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !parsed.Valid || claims.Subject == "" || claims.Email == "" {
		return domain.User{}, ErrInvalidCredential
	}

	return domain.User{ID: claims.Subject, Email: claims.Email}, nil
}

// CredentialFromRequest extracts the bearer token from the Authorization
// header, falling back to the "token" query parameter for browser
// websocket clients that cannot set headers.
func CredentialFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
