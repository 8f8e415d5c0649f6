package auth_test

import (
	"errors"
	"testing"

	"shiftdesk/internal/domain"
	"shiftdesk/internal/engine/auth"
)

func TestCapabilityMatrix(t *testing.T) {
	cases := []struct {
		role domain.Role
		cap  auth.Capability
		want bool
	}{
		{domain.RoleManager, auth.CapManageUsers, true},
		{domain.RoleSupervisor, auth.CapManageUsers, false},
		{domain.RoleWorker, auth.CapManageUsers, false},
		{domain.RoleManager, auth.CapManageStock, true},
		{domain.RoleSupervisor, auth.CapManageStock, true},
		{domain.RoleWorker, auth.CapManageStock, false},
		{domain.RoleManager, auth.CapViewStock, true},
		{domain.RoleSupervisor, auth.CapViewStock, true},
		{domain.RoleWorker, auth.CapViewStock, false},
	}
	for _, c := range cases {
		got := auth.Has(domain.User{Role: c.role}, c.cap)
		if got != c.want {
			t.Errorf("Has(%s, %s) = %v, want %v", c.role, c.cap, got, c.want)
		}
	}
}

func TestRequireReturnsTypedError(t *testing.T) {
	err := auth.Require(domain.User{Role: domain.RoleWorker}, auth.CapManageUsers)
	var fe auth.ForbiddenError
	if !errors.As(err, &fe) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
	if fe.Capability != auth.CapManageUsers {
		t.Fatalf("capability = %s", fe.Capability)
	}
	if err := auth.Require(domain.User{Role: domain.RoleManager}, auth.CapManageUsers); err != nil {
		t.Fatalf("manager refused: %v", err)
	}
}

func TestPasswordDigest(t *testing.T) {
	digest := auth.HashPassword("123456")
	if len(digest) != 64 {
		t.Fatalf("digest length = %d, want 64 hex chars", len(digest))
	}
	if !auth.VerifyPassword("123456", digest) {
		t.Fatalf("verify rejected matching password")
	}
	if auth.VerifyPassword("654321", digest) {
		t.Fatalf("verify accepted wrong password")
	}
	// surrounding whitespace is trimmed before hashing
	if !auth.VerifyPassword("  123456  ", digest) {
		t.Fatalf("trimmed password should verify")
	}
}
