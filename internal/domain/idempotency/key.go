package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxOpaqueKeyLength bounds client supplied opaque keys
const MaxOpaqueKeyLength = 128

// ParseNumericKey validates a server-issued numeric key
func ParseNumericKey(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: key is missing", ErrWrongKeyFormat)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q is not a positive number", ErrWrongKeyFormat, raw)
	}
	return n, nil
}

// ValidateOpaqueKey validates a client chosen token
func ValidateOpaqueKey(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: key is missing", ErrWrongKeyFormat)
	}
	if len(raw) > MaxOpaqueKeyLength {
		return "", fmt.Errorf("%w: key longer than %d characters", ErrWrongKeyFormat, MaxOpaqueKeyLength)
	}
	return raw, nil
}

// DeriveKey builds a key from request parameters: the hex SHA-256 of the sorted
// k=v pairs followed by the timestamp. Without parameters a random token is used.
func DeriveKey(params map[string]string, now time.Time) string {
	if len(params) == 0 {
		return uuid.NewString()
	}
	return HashParameters(params) + "-" + strconv.FormatInt(now.UnixNano(), 10)
}

// HashParameters returns a stable hex SHA-256 digest of params
func HashParameters(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for i, k := range keys {
		if i > 0 {
			h.Write([]byte{'&'})
		}
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(params[k]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashRequest returns the digest stored alongside a response to detect key reuse
func HashRequest(query string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
