package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/api/models"

	"golang.org/x/crypto/bcrypt"
)

const codeSignatureLength = 20

// ConfirmationCodes issues and checks the codes mailed on signup. A code is
// "<base36 unix seconds>-<truncated hex HMAC>"; the HMAC binds it to the user's
// id, username and email, so changing any of them invalidates old codes.
type ConfirmationCodes struct {
	secret   []byte
	ttl      time.Duration
	hashCost int
	now      func() time.Time
}

// NewConfirmationCodes: ttl 0 means codes never expire.
func NewConfirmationCodes(secret string, ttl time.Duration) *ConfirmationCodes {
	return &ConfirmationCodes{
		secret:   []byte(secret),
		ttl:      ttl,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Generate returns a fresh code and the bcrypt hash to store for it.
func (c *ConfirmationCodes) Generate(user *models.User) (code, hash string, err error) {
	ts := strconv.FormatInt(c.now().Unix(), 36)
	code = ts + "-" + c.sign(user, ts)

	hashed, err := bcrypt.GenerateFromPassword([]byte(code), c.hashCost)
	if err != nil {
		return "", "", fmt.Errorf("hash confirmation code: %w", err)
	}
	return code, string(hashed), nil
}

// Verify checks signature, age and the stored hash.
func (c *ConfirmationCodes) Verify(user *models.User, code string) bool {
	ts, sig, ok := strings.Cut(code, "-")
	if !ok || ts == "" {
		return false
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(user, ts))) {
		return false
	}

	issued, err := strconv.ParseInt(ts, 36, 64)
	if err != nil {
		return false
	}
	if c.ttl > 0 && c.now().Sub(time.Unix(issued, 0)) > c.ttl {
		return false
	}

	if user.ConfirmationCode == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.ConfirmationCode), []byte(code)) == nil
}

func (c *ConfirmationCodes) sign(user *models.User, ts string) string {
	mac := hmac.New(sha256.New, c.secret)
	fmt.Fprintf(mac, "%d|%s|%s|%s", user.ID, user.Username, user.Email, ts)
	return hex.EncodeToString(mac.Sum(nil))[:codeSignatureLength]
}
