package server

import (
	"shiftdesk/internal/domain"
	"shiftdesk/internal/ledger"
)

// Request payloads

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AddUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role" enum:"worker,supervisor,manager"`
	Shift    int    `json:"shift" minimum:"1" maximum:"3"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type EditTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

type AddStockItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity" minimum:"0"`
	Unit     string `json:"unit"`
}

type AdjustStockRequest struct {
	Quantity int    `json:"quantity" minimum:"0"`
	Reason   string `json:"reason"`
}

// Response payloads

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse never carries the password digest.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role" enum:"worker,supervisor,manager"`
	Shift    int    `json:"shift"`
}

type AttendanceResponse struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	Date     string  `json:"date"`
	CheckIn  string  `json:"check_in"`
	CheckOut *string `json:"check_out,omitempty"`
	IsLate   bool    `json:"is_late"`
}

type EditEventResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Timestamp  string  `json:"timestamp" format:"date-time"`
	Action     string  `json:"action" enum:"edit,complete,uncomplete,adjust"`
	Reason     string  `json:"reason,omitempty"`
	Approved   *bool   `json:"approved,omitempty"`
	ApprovedBy *string `json:"approved_by,omitempty"`
}

type TaskResponse struct {
	ID           string              `json:"id"`
	UserID       string              `json:"user_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Completed    bool                `json:"completed"`
	Date         string              `json:"date"`
	Shift        int                 `json:"shift"`
	EditHistory  []EditEventResponse `json:"edit_history"`
	LastModified string              `json:"last_modified,omitempty" format:"date-time"`
}

type StockItemResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Quantity     int                 `json:"quantity"`
	Unit         string              `json:"unit"`
	LastUpdated  string              `json:"last_updated" format:"date-time"`
	EditHistory  []EditEventResponse `json:"edit_history"`
	LastModified string              `json:"last_modified,omitempty" format:"date-time"`
}

// Conversion helpers

func userResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     string(u.Role),
		Shift:    u.Shift,
	}
}

func attendanceResponse(a domain.Attendance) AttendanceResponse {
	return AttendanceResponse(a)
}

func editEventResponses(history []domain.EditEvent) []EditEventResponse {
	out := make([]EditEventResponse, 0, len(history))
	for _, ev := range history {
		out = append(out, EditEventResponse(ev))
	}
	return out
}

func taskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		UserID:       t.UserID,
		Title:        t.Title,
		Description:  t.Description,
		Completed:    t.Completed,
		Date:         t.Date,
		Shift:        t.Shift,
		EditHistory:  editEventResponses(t.EditHistory),
		LastModified: ledger.LastModified(t.EditHistory),
	}
}

func stockItemResponse(it domain.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:           it.ID,
		Name:         it.Name,
		Quantity:     it.Quantity,
		Unit:         it.Unit,
		LastUpdated:  it.LastUpdated,
		EditHistory:  editEventResponses(it.EditHistory),
		LastModified: ledger.LastModified(it.EditHistory),
	}
}

func mapUsers(in []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(in))
	for _, u := range in {
		out = append(out, userResponse(u))
	}
	return out
}

func mapAttendances(in []domain.Attendance) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(in))
	for _, a := range in {
		out = append(out, attendanceResponse(a))
	}
	return out
}

func mapTasks(in []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(in))
	for _, t := range in {
		out = append(out, taskResponse(t))
	}
	return out
}

func mapStock(in []domain.StockItem) []StockItemResponse {
	out := make([]StockItemResponse, 0, len(in))
	for _, it := range in {
		out = append(out, stockItemResponse(it))
	}
	return out
}
