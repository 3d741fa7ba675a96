// Package auth mints realtime room access tokens compatible with
// LiveKit-style video grants.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

// Ensure RoomTokenIssuer implements the port
var _ driven.RoomTokenIssuer = (*RoomTokenIssuer)(nil)

// DefaultTokenTTL is used when a mint request carries no explicit TTL.
const DefaultTokenTTL = time.Hour

// videoGrant is the grant claim block expected by the realtime server.
type videoGrant struct {
	Room           string `json:"room,omitempty"`
	RoomJoin       bool   `json:"roomJoin,omitempty"`
	CanPublish     bool   `json:"canPublish,omitempty"`
	CanSubscribe   bool   `json:"canSubscribe,omitempty"`
	CanPublishData bool   `json:"canPublishData,omitempty"`
}

// roomClaims wraps the video grant for JWT compatibility. Identity rides in
// the registered Subject claim; Name is the display name shown to other
// participants.
type roomClaims struct {
	Name  string     `json:"name,omitempty"`
	Video videoGrant `json:"video"`
	jwt.RegisteredClaims
}

// RoomTokenIssuer signs room access tokens with an API key/secret pair.
type RoomTokenIssuer struct {
	apiKey    string
	apiSecret []byte
}

// NewRoomTokenIssuer creates a token issuer.
func NewRoomTokenIssuer(apiKey, apiSecret string) (*RoomTokenIssuer, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("realtime API key and secret are required")
	}
	return &RoomTokenIssuer{
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
	}, nil
}

// Mint creates a signed token granting the identity access to one room.
func (i *RoomTokenIssuer) Mint(identity, name string, grants driven.RoomGrants, ttl time.Duration) (string, error) {
	if identity == "" {
		return "", fmt.Errorf("identity is required")
	}
	if grants.Room == "" {
		return "", fmt.Errorf("room is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := roomClaims{
		Name: name,
		Video: videoGrant{
			Room:           grants.Room,
			RoomJoin:       grants.RoomJoin,
			CanPublish:     grants.CanPublish,
			CanSubscribe:   grants.CanSubscribe,
			CanPublishData: grants.CanPublishData,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.apiKey,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.apiSecret)
}

// parse validates a token and extracts its claims. Used by tests and by
// callers that need to introspect a previously minted token.
func (i *RoomTokenIssuer) parse(tokenString string) (*roomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &roomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.apiSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*roomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
