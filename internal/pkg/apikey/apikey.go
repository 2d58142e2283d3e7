// Package apikey generates merchant key pairs and verifies presented secrets
// against their stored verifiers.
package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/internal/pkg/apperror"
)

const (
	publicMarker = "pk_"
	secretMarker = "sk_"

	// DisplayPrefixLen is how much of the secret is kept for display and candidate lookup.
	DisplayPrefixLen = 12

	tokenBytes       = 32
	saltBytes        = 16
	derivedKeyLen    = 32
	pbkdf2Iterations = 10000
	verifierScheme   = "pbkdf2_sha256"
)

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Material is the output of Generate. SecretKey must be shown to the caller
// once and then dropped.
type Material struct {
	PublicKey      string
	SecretKey      string
	SecretVerifier string
	SecretPrefix   string
}

// Generate produces a fresh public/secret pair for keyType.
func Generate(keyType models.KeyType) (*Material, error) {
	if !keyType.Valid() {
		return nil, apperror.Validationf("invalid key type %q: must be test or live", keyType)
	}

	public, err := randomToken()
	if err != nil {
		return nil, err
	}
	secret, err := randomToken()
	if err != nil {
		return nil, err
	}

	secretKey := secretMarker + string(keyType) + "_" + secret
	verifier, err := NewVerifier(secretKey)
	if err != nil {
		return nil, err
	}

	return &Material{
		PublicKey:      publicMarker + string(keyType) + "_" + public,
		SecretKey:      secretKey,
		SecretVerifier: verifier,
		SecretPrefix:   DisplayPrefix(secretKey),
	}, nil
}

// DisplayPrefix returns the leading characters of a secret used to narrow lookups.
func DisplayPrefix(secretKey string) string {
	if len(secretKey) < DisplayPrefixLen {
		return secretKey
	}
	return secretKey[:DisplayPrefixLen]
}

// NewVerifier derives a salted one-way verifier for secretKey.
// Format: pbkdf2_sha256$<iterations>$<salt>$<digest>, salt and digest base64 raw-url.
func NewVerifier(secretKey string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	digest := pbkdf2.Key([]byte(secretKey), salt, pbkdf2Iterations, derivedKeyLen, sha256.New)
	return strings.Join([]string{
		verifierScheme,
		strconv.Itoa(pbkdf2Iterations),
		base64.RawURLEncoding.EncodeToString(salt),
		base64.RawURLEncoding.EncodeToString(digest),
	}, "$"), nil
}

// Verify recomputes the digest of secretKey with the verifier's salt and
// compares in constant time. Malformed verifiers never match.
func Verify(secretKey, verifier string) bool {
	parts := strings.Split(verifier, "$")
	if len(parts) != 4 || parts[0] != verifierScheme {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	expected, err := base64.RawURLEncoding.DecodeString(parts[3])
	if err != nil || len(expected) == 0 {
		return false
	}
	actual := pbkdf2.Key([]byte(secretKey), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

func randomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return strings.ToLower(tokenEncoding.EncodeToString(b)), nil
}
