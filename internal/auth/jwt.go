package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yectos/projects-api/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	keyCacheTTL = 6 * time.Hour
	// minRefreshInterval bounds how often tokens with an unknown kid can
	// trigger a JWKS fetch
	minRefreshInterval = time.Minute
)

// JWTValidator validates RS256 ID tokens against the signing keys published
// by the identity provider's JWKS endpoint
type JWTValidator struct {
	config     *config.AuthConfig
	httpClient *http.Client

	mu         sync.RWMutex
	publicKeys map[string]*rsa.PublicKey
	lastUpdate time.Time
	lastFetch  time.Time
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		config:     cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		publicKeys: make(map[string]*rsa.PublicKey),
	}
}

// ValidateToken validates a JWT token and returns user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"RS256"})}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.config.Audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("missing kid in header")
		}
		return v.getPublicKey(kid)
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	subject, _ := claims.GetSubject()
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &UserContext{
		UserID:      subject,
		DisplayName: extractString(claims, "name", "preferred_username"),
		Email:       extractString(claims, "email"),
		Provider:    extractProvider(claims),
	}, nil
}

func (v *JWTValidator) getPublicKey(kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, exists := v.publicKeys[kid]
	fresh := time.Since(v.lastUpdate) < keyCacheTTL
	throttled := time.Since(v.lastFetch) < minRefreshInterval
	v.mu.RUnlock()
	if exists && (fresh || throttled) {
		return key, nil
	}
	if throttled {
		return nil, fmt.Errorf("public key not found for kid: %s", kid)
	}

	if err := v.refreshPublicKeys(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	key, exists = v.publicKeys[kid]
	if !exists {
		return nil, fmt.Errorf("public key not found for kid: %s", kid)
	}
	return key, nil
}

type jwks struct {
	Keys []struct {
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
		Kty string `json:"kty"`
		Use string `json:"use"`
	} `json:"keys"`
}

func (v *JWTValidator) refreshPublicKeys() error {
	if v.config.JWKSURL == "" {
		return fmt.Errorf("JWKS URL not configured")
	}

	// recorded before fetching so failed fetches are rate limited as well
	v.mu.Lock()
	if time.Since(v.lastFetch) < minRefreshInterval {
		v.mu.Unlock()
		return nil
	}
	v.lastFetch = time.Now()
	v.mu.Unlock()

	resp, err := v.httpClient.Get(v.config.JWKSURL)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var set jwks
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			continue
		}
		e := 0
		for _, b := range eBytes {
			e = e<<8 + int(b)
		}
		keys[k.Kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}
	}

	v.mu.Lock()
	v.publicKeys = keys
	v.lastUpdate = time.Now()
	v.mu.Unlock()
	return nil
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key]; ok {
			if str, ok := val.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}

// extractProvider reads the sign-in provider, which identity platforms nest
// under a provider-specific object
func extractProvider(claims jwt.MapClaims) string {
	if nested, ok := claims["firebase"].(map[string]interface{}); ok {
		if p, ok := nested["sign_in_provider"].(string); ok {
			return p
		}
	}
	return extractString(claims, "idp", "amr")
}
