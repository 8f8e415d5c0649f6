package store

import (
	"context"
	"database/sql"

	"shiftdesk/internal/domain"
)

func (s Store) LoadAttendances(ctx context.Context) ([]domain.Attendance, error) {
	var recs []domain.Attendance
	if err := s.Load(ctx, CollectionAttendances, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s Store) LoadAttendancesTx(ctx context.Context, tx *sql.Tx) ([]domain.Attendance, error) {
	var recs []domain.Attendance
	if err := s.LoadTx(ctx, tx, CollectionAttendances, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s Store) SaveAttendances(ctx context.Context, tx *sql.Tx, recs []domain.Attendance) error {
	return s.Save(ctx, tx, CollectionAttendances, recs)
}

// AttendanceFor finds the record for a user on a calendar day. At most one
// exists per (user, date).
func AttendanceFor(recs []domain.Attendance, userID, date string) (int, bool) {
	for i, a := range recs {
		if a.UserID == userID && a.Date == date {
			return i, true
		}
	}
	return -1, false
}
