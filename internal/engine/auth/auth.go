package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"shiftdesk/internal/domain"
)

// Capability names an action gated by role. Every mutating operation consults
// Require instead of checking roles at call sites.
type Capability string

const (
	CapManageUsers Capability = "manage-users"
	CapManageStock Capability = "manage-stock"
	CapViewStock   Capability = "view-stock"
)

// ForbiddenError indicates a missing capability.
type ForbiddenError struct {
	Capability Capability
}

func (e ForbiddenError) Error() string {
	return fmt.Sprintf("capability %s required", e.Capability)
}

// Has reports whether the user's role grants the capability.
func Has(u domain.User, cap Capability) bool {
	switch cap {
	case CapManageUsers:
		return u.Role == domain.RoleManager
	case CapManageStock, CapViewStock:
		return u.Role == domain.RoleSupervisor || u.Role == domain.RoleManager
	}
	return false
}

// Require returns ForbiddenError when the user lacks the capability.
func Require(u domain.User, cap Capability) error {
	if !Has(u, cap) {
		return ForbiddenError{Capability: cap}
	}
	return nil
}

// HashPassword returns the stable SHA-256 hex digest stored for a password.
// Plaintext passwords never reach the record store.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(password)))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword compares a supplied password against the stored digest.
func VerifyPassword(password, digest string) bool {
	return HashPassword(password) == digest
}
