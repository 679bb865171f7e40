package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/washantonfcb10/perpscope/internal/domain/entity"
)

// NormalizeAddress validates that s is an exchange wallet address
// ("0x" followed by 40 hex characters) and returns its canonical
// lowercase form. Registry uniqueness is case-insensitive, so the
// canonical form is what gets stored and compared.
func NormalizeAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return "", entity.ErrInvalidAddress
	}
	if !common.IsHexAddress(s) {
		return "", entity.ErrInvalidAddress
	}
	return strings.ToLower(s), nil
}

// ShortenAddress truncates a wallet address for log output,
// e.g. "0x1234...abcd". Data returned to callers always carries the
// full address; this is display-only.
func ShortenAddress(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}
