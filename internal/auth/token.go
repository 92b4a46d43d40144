package auth

import (
    "errors"
    "fmt"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed validity window of every issued token.
const TokenTTL = 24 * time.Hour

var (
    ErrTokenExpired = errors.New("token expired")
    ErrTokenInvalid = errors.New("invalid token")
)

// Payload is the identity carried inside an access token.
type Payload struct {
    UserID string `json:"userId"`
    Email  string `json:"email"`
    Role   string `json:"role"`
}

// Claims is the decoded token: payload plus iat/exp.
type Claims struct {
    Payload
    jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access tokens with a shared secret.
type TokenService struct {
    secret []byte
    now    func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
    return func(s *TokenService) { s.now = now }
}

// NewTokenService returns a service bound to secret. An empty secret is rejected.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
    if secret == "" {
        return nil, errors.New("jwt secret is required")
    }
    s := &TokenService{secret: []byte(secret), now: time.Now}
    for _, opt := range opts {
        opt(s)
    }
    return s, nil
}

// Issue signs the identity with iat=now and exp=now+TokenTTL.
func (s *TokenService) Issue(p Payload) (string, error) {
    now := s.now()
    claims := Claims{
        Payload: p,
        RegisteredClaims: jwt.RegisteredClaims{
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
    if err != nil {
        return "", fmt.Errorf("sign token: %w", err)
    }
    return signed, nil
}

// Verify checks signature and expiry. The returned error matches exactly one
// of ErrTokenExpired or ErrTokenInvalid.
func (s *TokenService) Verify(token string) (Claims, error) {
    var claims Claims
    parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
        }
        return s.secret, nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithTimeFunc(s.now),
    )
    if err != nil {
        // Signature is checked before claims, so an expiry error implies an
        // authentic token.
        if errors.Is(err, jwt.ErrTokenExpired) {
            return Claims{}, ErrTokenExpired
        }
        return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
    }
    if !parsed.Valid || claims.UserID == "" {
        return Claims{}, ErrTokenInvalid
    }
    return claims, nil
}
