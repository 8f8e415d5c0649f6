package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"shiftdesk/internal/config"
	"shiftdesk/internal/db"
	"shiftdesk/internal/domain"
	"shiftdesk/internal/engine"
	"shiftdesk/internal/engine/auth"
	"shiftdesk/internal/migrate"
)

type testEnv struct {
	Engine  engine.Engine
	Manager domain.User
	Ctx     context.Context
}

// newTestEnv opens a throwaway workspace at the given wall clock, seeds the
// bootstrap manager and logs them in.
func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn, config.Default())
	eng.Now = func() time.Time { return now }
	ctx := context.Background()
	created, err := eng.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !created {
		t.Fatalf("expected bootstrap to seed users")
	}
	mgr, ok, err := eng.Authenticate(ctx, "hakim", "123456")
	if err != nil || !ok {
		t.Fatalf("authenticate bootstrap manager: ok=%v err=%v", ok, err)
	}
	return &testEnv{Engine: eng, Manager: mgr, Ctx: ctx}
}

func (env *testEnv) addUser(t *testing.T, username string, role domain.Role, shift int) domain.User {
	t.Helper()
	u, err := env.Engine.AddUser(env.Ctx, env.Manager, engine.AddUserOptions{
		Username: username,
		Password: "pass-" + username,
		Name:     username,
		Role:     role,
		Shift:    shift,
	})
	if err != nil {
		t.Fatalf("add user %s: %v", username, err)
	}
	return u
}

func TestBootstrapSeedsSingleManager(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	// second bootstrap is a no-op
	created, err := env.Engine.Bootstrap(env.Ctx)
	if err != nil {
		t.Fatalf("rebootstrap: %v", err)
	}
	if created {
		t.Fatalf("expected second bootstrap to be a no-op")
	}
	if env.Manager.Role != domain.RoleManager {
		t.Fatalf("bootstrap role = %s, want manager", env.Manager.Role)
	}
	users, err := env.Engine.ListUsers(env.Ctx, env.Manager)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected exactly one seeded user, got %d", len(users))
	}
}

func TestAuthenticateRejectsWithoutError(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	if _, ok, err := env.Engine.Authenticate(env.Ctx, "hakim", "wrong"); ok || err != nil {
		t.Fatalf("wrong password: ok=%v err=%v, want ok=false err=nil", ok, err)
	}
	if _, ok, err := env.Engine.Authenticate(env.Ctx, "ghost", "123456"); ok || err != nil {
		t.Fatalf("unknown user: ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestCheckInLatenessBoundary(t *testing.T) {
	// shift 1 starts at 07:00
	early := newTestEnv(t, time.Date(2024, 1, 1, 6, 55, 0, 0, time.UTC))
	rec, err := early.Engine.CheckIn(early.Ctx, early.Manager)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if rec.IsLate {
		t.Fatalf("06:55 check-in marked late")
	}

	late := newTestEnv(t, time.Date(2024, 1, 1, 7, 15, 0, 0, time.UTC))
	rec, err = late.Engine.CheckIn(late.Ctx, late.Manager)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if !rec.IsLate {
		t.Fatalf("07:15 check-in not marked late")
	}

	exact := newTestEnv(t, time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC))
	rec, err = exact.Engine.CheckIn(exact.Ctx, exact.Manager)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if rec.IsLate {
		t.Fatalf("07:00 sharp counted as late")
	}
}

func TestCheckInOncePerDay(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	if _, err := env.Engine.CheckIn(env.Ctx, env.Manager); err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	if _, err := env.Engine.CheckIn(env.Ctx, env.Manager); err == nil {
		t.Fatalf("expected second check-in to be rejected")
	}
	recs, err := env.Engine.Attendances(env.Ctx, env.Manager.ID)
	if err != nil {
		t.Fatalf("attendances: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record after rejected retry, got %d", len(recs))
	}
}

func TestCheckOutTransitions(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	// checkout before checkin is refused with no record created
	if _, err := env.Engine.CheckOut(env.Ctx, env.Manager); err == nil {
		t.Fatalf("expected checkout without checkin to fail")
	}
	recs, _ := env.Engine.Attendances(env.Ctx, env.Manager.ID)
	if len(recs) != 0 {
		t.Fatalf("refused checkout created %d records", len(recs))
	}

	if _, err := env.Engine.CheckIn(env.Ctx, env.Manager); err != nil {
		t.Fatalf("check in: %v", err)
	}
	env.Engine.Now = func() time.Time { return time.Date(2024, 1, 1, 16, 30, 0, 0, time.UTC) }
	rec, err := env.Engine.CheckOut(env.Ctx, env.Manager)
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if rec.CheckOut == nil || *rec.CheckOut != "16:30:00" {
		t.Fatalf("check out time = %v, want 16:30:00", rec.CheckOut)
	}
	if _, err := env.Engine.CheckOut(env.Ctx, env.Manager); err == nil {
		t.Fatalf("expected double checkout to be rejected")
	}
}

func TestLateFlagIsPermanent(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 7, 30, 0, 0, time.UTC))
	if _, err := env.Engine.CheckIn(env.Ctx, env.Manager); err != nil {
		t.Fatalf("check in: %v", err)
	}
	env.Engine.Now = func() time.Time { return time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC) }
	rec, err := env.Engine.CheckOut(env.Ctx, env.Manager)
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if !rec.IsLate {
		t.Fatalf("late flag lost across checkout")
	}
}

func TestTaskHistoryAppendOnly(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	task, err := env.Engine.CreateTask(env.Ctx, env.Manager, "Clean lobby", "Vacuum and dust")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.EditHistory == nil || len(task.EditHistory) != 0 {
		t.Fatalf("new task history = %v, want empty non-nil", task.EditHistory)
	}

	task, err = env.Engine.EditTask(env.Ctx, env.Manager, task.ID, "Clean lobby", "Vacuum, dust, mop", "scope grew")
	if err != nil {
		t.Fatalf("edit task: %v", err)
	}
	if len(task.EditHistory) != 1 {
		t.Fatalf("history length = %d, want 1", len(task.EditHistory))
	}
	ev := task.EditHistory[0]
	if ev.Action != "edit" || ev.Reason != "scope grew" || ev.UserID != env.Manager.ID {
		t.Fatalf("unexpected edit event %+v", ev)
	}

	task, err = env.Engine.ToggleTask(env.Ctx, env.Manager, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !task.Completed || len(task.EditHistory) != 2 || task.EditHistory[1].Action != "complete" {
		t.Fatalf("toggle state %+v", task)
	}
	task, err = env.Engine.ToggleTask(env.Ctx, env.Manager, task.ID)
	if err != nil {
		t.Fatalf("untoggle: %v", err)
	}
	if task.Completed || len(task.EditHistory) != 3 || task.EditHistory[2].Action != "uncomplete" {
		t.Fatalf("untoggle state %+v", task)
	}
	// earlier entries untouched
	if task.EditHistory[0].ID != ev.ID {
		t.Fatalf("history rewritten")
	}
}

func TestEditTaskRequiresReason(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	task, err := env.Engine.CreateTask(env.Ctx, env.Manager, "Restock bar", "Beverages")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := env.Engine.EditTask(env.Ctx, env.Manager, task.ID, "Restock bar", "Beverages and snacks", ""); err == nil {
		t.Fatalf("expected edit without reason to fail")
	}
	got, err := env.Engine.GetTask(env.Ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Description != "Beverages" || len(got.EditHistory) != 0 {
		t.Fatalf("rejected edit left side effects: %+v", got)
	}
}

func TestManagerEditsSelfApprove(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	worker := env.addUser(t, "amira", domain.RoleWorker, 2)

	task, err := env.Engine.CreateTask(env.Ctx, worker, "Turn down rooms", "Floor 3")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	task, err = env.Engine.EditTask(env.Ctx, env.Manager, task.ID, "Turn down rooms", "Floors 3 and 4", "added floor")
	if err != nil {
		t.Fatalf("manager edit: %v", err)
	}
	ev := task.EditHistory[0]
	if ev.Approved == nil || !*ev.Approved {
		t.Fatalf("manager edit not self-approved: %+v", ev)
	}
	if ev.ApprovedBy == nil || *ev.ApprovedBy != env.Manager.ID {
		t.Fatalf("approver = %v, want manager id", ev.ApprovedBy)
	}

	task, err = env.Engine.EditTask(env.Ctx, worker, task.ID, "Turn down rooms", "Floors 3, 4 and 5", "another floor")
	if err != nil {
		t.Fatalf("worker edit: %v", err)
	}
	ev = task.EditHistory[1]
	if ev.Approved != nil || ev.ApprovedBy != nil {
		t.Fatalf("worker edit should stay pending: %+v", ev)
	}
}

func TestAddUserRequiresManager(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	worker := env.addUser(t, "amira", domain.RoleWorker, 2)

	_, err := env.Engine.AddUser(env.Ctx, worker, engine.AddUserOptions{
		Username: "intruder",
		Password: "secret",
		Name:     "Intruder",
		Role:     domain.RoleWorker,
		Shift:    1,
	})
	var fe auth.ForbiddenError
	if !errors.As(err, &fe) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
	users, err := env.Engine.ListUsers(env.Ctx, env.Manager)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("rejected AddUser changed the collection: %d users", len(users))
	}
}

func TestAddUserDuplicateUsername(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	env.addUser(t, "amira", domain.RoleWorker, 2)
	_, err := env.Engine.AddUser(env.Ctx, env.Manager, engine.AddUserOptions{
		Username: "amira",
		Password: "other",
		Name:     "Other Amira",
		Role:     domain.RoleWorker,
		Shift:    1,
	})
	if err == nil {
		t.Fatalf("expected duplicate username rejection")
	}
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	if err := env.Engine.ChangePassword(env.Ctx, env.Manager, "wrong", "new-secret"); err == nil {
		t.Fatalf("expected wrong current password to be rejected")
	}
	if _, ok, _ := env.Engine.Authenticate(env.Ctx, "hakim", "123456"); !ok {
		t.Fatalf("rejected change still replaced the digest")
	}
	if err := env.Engine.ChangePassword(env.Ctx, env.Manager, "123456", "new-secret"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, ok, _ := env.Engine.Authenticate(env.Ctx, "hakim", "123456"); ok {
		t.Fatalf("old password still accepted")
	}
	if _, ok, _ := env.Engine.Authenticate(env.Ctx, "hakim", "new-secret"); !ok {
		t.Fatalf("new password not accepted")
	}
}

func TestStockCapabilities(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	worker := env.addUser(t, "amira", domain.RoleWorker, 2)
	supervisor := env.addUser(t, "nadia", domain.RoleSupervisor, 1)

	var fe auth.ForbiddenError
	if _, err := env.Engine.Stock(env.Ctx, worker); !errors.As(err, &fe) {
		t.Fatalf("worker stock view: %v, want ForbiddenError", err)
	}
	if _, err := env.Engine.AddStockItem(env.Ctx, worker, "Towels", 10, "pcs"); !errors.As(err, &fe) {
		t.Fatalf("worker stock add: %v, want ForbiddenError", err)
	}

	item, err := env.Engine.AddStockItem(env.Ctx, supervisor, "Towels", 10, "pcs")
	if err != nil {
		t.Fatalf("supervisor add stock: %v", err)
	}
	if _, err := env.Engine.AdjustStock(env.Ctx, supervisor, item.ID, 8, ""); err == nil {
		t.Fatalf("expected adjust without reason to fail")
	}
	item, err = env.Engine.AdjustStock(env.Ctx, supervisor, item.ID, 8, "two damaged")
	if err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if item.Quantity != 8 || len(item.EditHistory) != 1 {
		t.Fatalf("adjust state %+v", item)
	}
	ev := item.EditHistory[0]
	if ev.Action != "adjust" || ev.Approved != nil {
		t.Fatalf("supervisor adjust event %+v", ev)
	}

	items, err := env.Engine.Stock(env.Ctx, env.Manager)
	if err != nil {
		t.Fatalf("manager stock view: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("stock length = %d", len(items))
	}
}

func TestAttendancesSortedMostRecentFirst(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	if _, err := env.Engine.CheckIn(env.Ctx, env.Manager); err != nil {
		t.Fatalf("day 1 check-in: %v", err)
	}
	env.Engine.Now = func() time.Time { return time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC) }
	if _, err := env.Engine.CheckIn(env.Ctx, env.Manager); err != nil {
		t.Fatalf("day 2 check-in: %v", err)
	}
	recs, err := env.Engine.Attendances(env.Ctx, env.Manager.ID)
	if err != nil {
		t.Fatalf("attendances: %v", err)
	}
	if len(recs) != 2 || recs[0].Date != "2024-01-02" || recs[1].Date != "2024-01-01" {
		t.Fatalf("unexpected order: %+v", recs)
	}
}
