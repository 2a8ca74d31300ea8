package jwt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"blackjack-server/internal/config"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Issuer issues the JWT
const Issuer = "blackjack-server"

// Audience is the intended JWT audience
const Audience = "blackjack-client"

var (
	mu     sync.RWMutex
	secret []byte
	ttl    time.Duration
)

// Claims identify a member of a room
type Claims struct {
	RoomID string `json:"room"`
	jwtgo.RegisteredClaims
}

// LoadKeys will load the signing secret from the configuration
// this method should only be called once.
func LoadKeys() error {
	cfg := config.Instance()
	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret is not configured")
	}

	SetKey([]byte(cfg.JWT.Secret), cfg.JWTTTL())
	return nil
}

// SetKey sets the HMAC secret and the token lifetime
// A ttl of zero issues tokens that never expire
func SetKey(key []byte, tokenTTL time.Duration) {
	mu.Lock()
	defer mu.Unlock()

	secret = key
	ttl = tokenTTL
}

func key() ([]byte, time.Duration) {
	mu.RLock()
	defer mu.RUnlock()

	if secret == nil {
		panic("LoadKeys() not called")
	}

	return secret, ttl
}

// Sign will sign a JWT for the member of the room
func Sign(roomID, memberID string) (string, error) {
	k, tokenTTL := key()

	now := time.Now()
	claims := Claims{
		RoomID: roomID,
		RegisteredClaims: jwtgo.RegisteredClaims{
			Audience: jwtgo.ClaimStrings{Audience},
			ID:       uuid.New().String(),
			IssuedAt: jwtgo.NewNumericDate(now),
			Issuer:   Issuer,
			Subject:  memberID,
		},
	}

	if tokenTTL > 0 {
		claims.ExpiresAt = jwtgo.NewNumericDate(now.Add(tokenTTL))
	}

	return jwtgo.NewWithClaims(jwtgo.SigningMethodHS256, claims).SignedString(k)
}

// ValidMember will validate a signed JWT and return the room and member it was issued for
func ValidMember(signedString string) (roomID string, memberID string, err error) {
	k, _ := key()

	token, err := jwtgo.ParseWithClaims(signedString, &Claims{}, func(token *jwtgo.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtgo.SigningMethodHMAC); !ok {
			return nil, errors.New("expected HS256 signing method")
		}

		return k, nil
	}, jwtgo.WithAudience(Audience), jwtgo.WithIssuer(Issuer))

	if err != nil {
		return "", "", err
	}

	if !token.Valid {
		logrus.Warn("token claims were not valid. did not expect to reach this code")
		return "", "", errors.New("claims were not valid")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return "", "", fmt.Errorf("expected *jwt.Claims, got %T", token.Claims)
	}

	if claims.Subject == "" || claims.RoomID == "" {
		return "", "", errors.New("missing subject or room")
	}

	return claims.RoomID, claims.Subject, nil
}
