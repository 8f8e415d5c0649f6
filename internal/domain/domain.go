package domain

// Role of a user account.
type Role string

const (
	RoleWorker     Role = "worker"
	RoleSupervisor Role = "supervisor"
	RoleManager    Role = "manager"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleWorker, RoleSupervisor, RoleManager:
		return true
	}
	return false
}

type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	PasswordDigest string `json:"password"`
	Name           string `json:"name"`
	Role           Role   `json:"role" enum:"worker,supervisor,manager"`
	Shift          int    `json:"shift"`
}

// Attendance records one check-in (and optional check-out) for a user on a
// calendar day. At most one record exists per (UserID, Date). IsLate is
// computed once at check-in and never recomputed.
type Attendance struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	Date     string  `json:"date"`
	CheckIn  string  `json:"check_in"`
	CheckOut *string `json:"check_out,omitempty"`
	IsLate   bool    `json:"is_late"`
}

type Task struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Completed   bool        `json:"completed"`
	Date        string      `json:"date"`
	Shift       int         `json:"shift"`
	EditHistory []EditEvent `json:"edit_history"`
}

// EditEvent is one immutable entry in an object's edit history. Approved and
// ApprovedBy are set together, and only when the acting user held the manager
// role at the moment of the mutation.
type EditEvent struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Timestamp  string  `json:"timestamp" format:"date-time"`
	Action     string  `json:"action" enum:"edit,complete,uncomplete,adjust"`
	Reason     string  `json:"reason,omitempty"`
	Approved   *bool   `json:"approved,omitempty"`
	ApprovedBy *string `json:"approved_by,omitempty"`
}

type StockItem struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Quantity    int         `json:"quantity"`
	Unit        string      `json:"unit"`
	LastUpdated string      `json:"last_updated" format:"date-time"`
	EditHistory []EditEvent `json:"edit_history"`
}
