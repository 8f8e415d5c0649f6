package engine

import (
	"context"
	"fmt"
	"sort"

	"shiftdesk/internal/domain"
	"shiftdesk/internal/store"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
	timeLayout  = "15:04:05"
)

// CheckIn opens the actor's attendance for the current day. Allowed at most
// once per user per day. Lateness is decided here, once, by comparing the
// zero-padded HH:mm clock against the shift's start boundary. Plain string
// comparison, correct because both operands are fixed width.
func (e Engine) CheckIn(ctx context.Context, actor domain.User) (domain.Attendance, error) {
	shiftStart := e.Config.ShiftStart(actor.Shift)
	if shiftStart == "" {
		return domain.Attendance{}, fmt.Errorf("no shift %d configured", actor.Shift)
	}
	now := e.now()

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Attendance{}, err
	}
	defer tx.Rollback()

	recs, err := e.Store.LoadAttendancesTx(ctx, tx)
	if err != nil {
		return domain.Attendance{}, err
	}
	today := now.Format(dateLayout)
	if _, exists := store.AttendanceFor(recs, actor.ID, today); exists {
		return domain.Attendance{}, fmt.Errorf("already checked in on %s", today)
	}
	rec := domain.Attendance{
		ID:      newID(),
		UserID:  actor.ID,
		Date:    today,
		CheckIn: now.Format(timeLayout),
		IsLate:  now.Format(clockLayout) > shiftStart,
	}
	recs = append(recs, rec)
	if err := e.Store.SaveAttendances(ctx, tx, recs); err != nil {
		return domain.Attendance{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Attendance{}, err
	}
	return rec, nil
}

// CheckOut closes the actor's open attendance for the current day. Refused
// when no record exists for today or the record is already closed; the store
// is left untouched in both cases.
func (e Engine) CheckOut(ctx context.Context, actor domain.User) (domain.Attendance, error) {
	now := e.now()

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Attendance{}, err
	}
	defer tx.Rollback()

	recs, err := e.Store.LoadAttendancesTx(ctx, tx)
	if err != nil {
		return domain.Attendance{}, err
	}
	today := now.Format(dateLayout)
	i, exists := store.AttendanceFor(recs, actor.ID, today)
	if !exists {
		return domain.Attendance{}, fmt.Errorf("not checked in on %s", today)
	}
	if recs[i].CheckOut != nil {
		return domain.Attendance{}, fmt.Errorf("already checked out on %s", today)
	}
	out := now.Format(timeLayout)
	recs[i].CheckOut = &out
	if err := e.Store.SaveAttendances(ctx, tx, recs); err != nil {
		return domain.Attendance{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Attendance{}, err
	}
	return recs[i], nil
}

// Attendances lists a user's records, most recent day first.
func (e Engine) Attendances(ctx context.Context, userID string) ([]domain.Attendance, error) {
	recs, err := e.Store.LoadAttendances(ctx)
	if err != nil {
		return nil, err
	}
	var mine []domain.Attendance
	for _, a := range recs {
		if a.UserID == userID {
			mine = append(mine, a)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].Date > mine[j].Date })
	return mine, nil
}
