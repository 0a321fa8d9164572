package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignedLink is the payload carried by a download token.
type SignedLink struct {
	ID        string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner creates and validates expiring download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token of the form `id.expiry.path.signature`.
func (s *SignedURLSigner) Sign(id, relPath string) (string, time.Time, error) {
	if id == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("id and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	return strings.Join([]string{id, exp, encodedPath, s.mac(id, exp, encodedPath)}, "."), expiresAt, nil
}

// Verify validates a token signature and expiry.
func (s *SignedURLSigner) Verify(token string) (SignedLink, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return SignedLink{}, fmt.Errorf("invalid token format")
	}
	id, exp, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.mac(id, exp, encodedPath)), []byte(signature)) {
		return SignedLink{}, fmt.Errorf("invalid token signature")
	}
	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return SignedLink{}, fmt.Errorf("invalid token expiry")
	}
	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return SignedLink{}, fmt.Errorf("decode path: %w", err)
	}
	link := SignedLink{ID: id, Path: string(rawPath), ExpiresAt: time.Unix(expUnix, 0)}
	if s.now().After(link.ExpiresAt) {
		return SignedLink{}, fmt.Errorf("token expired")
	}
	return link, nil
}

func (s *SignedURLSigner) mac(id, exp, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(id + "|" + exp + "|" + encodedPath))
	return hex.EncodeToString(mac.Sum(nil))
}
