// Package ledger builds the immutable edit-history entries appended to tasks
// and stock items. Entries are never rewritten or pruned; an object's
// "last modified" is the final element by position, which matches timestamp
// order because all mutation is serialized through the engine.
package ledger

import (
	"time"

	"github.com/google/uuid"

	"shiftdesk/internal/domain"
)

// Actions recorded in edit histories.
const (
	ActionEdit       = "edit"
	ActionComplete   = "complete"
	ActionUncomplete = "uncomplete"
	ActionAdjust     = "adjust"
)

// NewEvent constructs one EditEvent for a mutation performed by actor at now.
// Approved and ApprovedBy are set together iff the actor holds the manager
// role at this moment; otherwise both stay unset, signifying pending. Reason
// is the human-supplied justification, mandatory for edit and adjust and
// absent for completion toggles; callers enforce that, not this package.
func NewEvent(actor domain.User, action, reason string, now time.Time) domain.EditEvent {
	ev := domain.EditEvent{
		ID:        uuid.New().String(),
		UserID:    actor.ID,
		Timestamp: now.UTC().Format(time.RFC3339),
		Action:    action,
		Reason:    reason,
	}
	if actor.Role == domain.RoleManager {
		approved := true
		ev.Approved = &approved
		ev.ApprovedBy = &actor.ID
	}
	return ev
}

// Pending reports whether the event still awaits approval.
func Pending(ev domain.EditEvent) bool {
	return ev.Approved == nil
}

// LastModified returns the timestamp of the final history element, or "" for
// an empty history.
func LastModified(history []domain.EditEvent) string {
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1].Timestamp
}
