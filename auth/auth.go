package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/bcrypt"
)

const tokenCacheSize = 1024

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Claims carries the authenticated identity extracted from a bearer token.
type Claims struct {
	UserID string
	Role   string
}

type cachedClaims struct {
	claims    Claims
	expiresAt time.Time
}

// Authenticator issues and verifies the HS256 bearer tokens that gate every
// mutating route. Verified tokens are cached until they expire so that hot
// clients don't pay for signature checks on every request.
type Authenticator struct {
	secret []byte
	expiry time.Duration
	cache  *lru.Cache[string, cachedClaims]
}

func NewAuthenticator(secret string, expiry time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("a signing secret is required")
	}
	if expiry <= 0 {
		return nil, errors.New("token expiry must be positive")
	}

	cache, err := lru.New[string, cachedClaims](tokenCacheSize)
	if err != nil {
		return nil, err
	}

	return &Authenticator{secret: []byte(secret), expiry: expiry, cache: cache}, nil
}

// IssueToken signs a token for the given user.
func (a *Authenticator) IssueToken(userID string, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(a.expiry).Unix(),
	})
	return token.SignedString(a.secret)
}

// VerifyToken parses and validates a bearer token.
func (a *Authenticator) VerifyToken(raw string) (Claims, error) {
	if cached, found := a.cache.Get(raw); found {
		if time.Now().Before(cached.expiresAt) {
			return cached.claims, nil
		}
		a.cache.Remove(raw)
		return Claims{}, ErrInvalidToken
	}

	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	subject, _ := mapClaims["sub"].(string)
	if subject == "" {
		return Claims{}, ErrInvalidToken
	}
	role, _ := mapClaims["role"].(string)

	claims := Claims{UserID: subject, Role: role}

	expiresAt := time.Now().Add(a.expiry)
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}
	a.cache.Add(raw, cachedClaims{claims: claims, expiresAt: expiresAt})

	return claims, nil
}

// HashPassword returns the bcrypt hash stored in the user document.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a candidate password against the stored hash.
func CheckPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
