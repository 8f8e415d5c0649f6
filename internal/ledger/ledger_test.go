package ledger_test

import (
	"testing"
	"time"

	"shiftdesk/internal/domain"
	"shiftdesk/internal/ledger"
)

func TestManagerEventsSelfApprove(t *testing.T) {
	mgr := domain.User{ID: "m1", Role: domain.RoleManager}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ev := ledger.NewEvent(mgr, ledger.ActionEdit, "typo", now)
	if ev.Approved == nil || !*ev.Approved {
		t.Fatalf("manager event not approved: %+v", ev)
	}
	if ev.ApprovedBy == nil || *ev.ApprovedBy != "m1" {
		t.Fatalf("approver = %v, want m1", ev.ApprovedBy)
	}
	if ledger.Pending(ev) {
		t.Fatalf("approved event reported pending")
	}
	if ev.Timestamp != "2024-01-01T12:00:00Z" {
		t.Fatalf("timestamp = %s", ev.Timestamp)
	}
}

func TestNonManagerEventsStayPending(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleWorker, domain.RoleSupervisor} {
		ev := ledger.NewEvent(domain.User{ID: "u1", Role: role}, ledger.ActionAdjust, "recount", time.Now())
		if ev.Approved != nil || ev.ApprovedBy != nil {
			t.Fatalf("%s event should be pending: %+v", role, ev)
		}
		if !ledger.Pending(ev) {
			t.Fatalf("%s event not reported pending", role)
		}
	}
}

func TestLastModifiedIsFinalElement(t *testing.T) {
	if got := ledger.LastModified(nil); got != "" {
		t.Fatalf("empty history last modified = %q", got)
	}
	history := []domain.EditEvent{
		{Timestamp: "2024-01-01T10:00:00Z"},
		{Timestamp: "2024-01-02T09:00:00Z"},
	}
	if got := ledger.LastModified(history); got != "2024-01-02T09:00:00Z" {
		t.Fatalf("last modified = %q", got)
	}
}
