package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dmitrijs2005/ageguard/internal/common"
	"golang.org/x/crypto/hkdf"
)

// consentTokenBytes is the entropy of a consent token: 256 bits.
const consentTokenBytes = 32

var consentKeyInfo = []byte("ageguard consent token v1")

// ConsentTokens mints consent tokens and hashes them for storage. The
// stored hash is HMAC-SHA256 under a key derived from the server secret, so
// a leaked table does not yield usable links.
type ConsentTokens struct {
	key []byte
}

// NewConsentTokens derives the hashing key from secret with HKDF-SHA256.
func NewConsentTokens(secret []byte) (*ConsentTokens, error) {
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, consentKeyInfo), key); err != nil {
		return nil, fmt.Errorf("derive consent key: %w", err)
	}
	return &ConsentTokens{key: key}, nil
}

// New returns a fresh opaque token and its storage hash.
func (c *ConsentTokens) New() (token, hash string, err error) {
	token, err = common.MakeRandURLToken(consentTokenBytes)
	if err != nil {
		return "", "", err
	}
	return token, c.Hash(token), nil
}

// Hash returns the hex HMAC of token.
func (c *ConsentTokens) Hash(token string) string {
	m := hmac.New(sha256.New, c.key)
	m.Write([]byte(token))
	return hex.EncodeToString(m.Sum(nil))
}
