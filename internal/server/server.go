package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"shiftdesk/internal/domain"
	"shiftdesk/internal/engine"
	"shiftdesk/internal/engine/auth"
	"shiftdesk/internal/store"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"forbidden"`
	Message string         `json:"message" example:"capability manage-users required"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the ShiftDesk API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("ShiftDesk API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerLogin(group, cfg.Engine, cfg.Auth)
	registerMe(group, cfg.Engine)
	registerAttendance(group, cfg.Engine)
	registerTasks(group, cfg.Engine)
	registerUsers(group, cfg.Engine)
	registerStock(group, cfg.Engine)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var fe auth.ForbiddenError
	if errors.As(err, &fe) {
		return newAPIError(http.StatusForbidden, "forbidden", err.Error(), map[string]any{"capability": string(fe.Capability)})
	}
	var ce *store.CorruptDataError
	if errors.As(err, &ce) {
		return newAPIError(http.StatusInternalServerError, "corrupt_data", err.Error(), map[string]any{"collection": ce.Collection})
	}
	if errors.Is(err, engine.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "already"):
		return newAPIError(http.StatusConflict, "conflict", msg, nil)
	case strings.Contains(lowered, "incorrect"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "required") || strings.Contains(lowered, "must not"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerLogin(api huma.API, e engine.Engine, authCfg AuthConfig) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/login",
		Summary:     "Authenticate and obtain a session token",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body LoginRequest `json:"body"`
	}) (*struct {
		Body LoginResponse `json:"body"`
	}, error) {
		if input.Body.Username == "" || input.Body.Password == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "username and password are required", nil)
		}
		u, ok, err := e.Authenticate(ctx, input.Body.Username, input.Body.Password)
		if err != nil {
			return nil, handleError(err)
		}
		if !ok {
			return nil, newAPIError(http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
		}
		token, err := issueToken(u, authCfg, e.Now())
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body LoginResponse `json:"body"`
		}{Body: LoginResponse{Token: token, User: userResponse(u)}}, nil
	})
}

func registerMe(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Current user",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: userResponse(u)}, nil
	})
}

func registerAttendance(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "check-in",
		Method:        http.MethodPost,
		Path:          "/attendance/check-in",
		Summary:       "Check in for today",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusUnauthorized, http.StatusConflict},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body AttendanceResponse `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		rec, err := e.CheckIn(ctx, u)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body AttendanceResponse `json:"body"`
		}{Body: attendanceResponse(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-out",
		Method:      http.MethodPost,
		Path:        "/attendance/check-out",
		Summary:     "Check out for today",
		Errors:      []int{http.StatusUnauthorized, http.StatusConflict, http.StatusBadRequest},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body AttendanceResponse `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		rec, err := e.CheckOut(ctx, u)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body AttendanceResponse `json:"body"`
		}{Body: attendanceResponse(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-attendance",
		Method:      http.MethodGet,
		Path:        "/attendance",
		Summary:     "List own attendance history",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []AttendanceResponse `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		recs, err := e.Attendances(ctx, u.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []AttendanceResponse `json:"body"`
		}{Body: mapAttendances(recs)}, nil
	})
}

func registerTasks(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		t, err := e.CreateTask(ctx, u, input.Body.Title, input.Body.Description)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []TaskResponse `json:"body"`
	}, error) {
		if _, authErr := currentUser(ctx, e); authErr != nil {
			return nil, authErr
		}
		tasks, err := e.Tasks(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []TaskResponse `json:"body"`
		}{Body: mapTasks(tasks)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "edit-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{task_id}",
		Summary:     "Edit task title and description (reason mandatory)",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		TaskID string          `path:"task_id"`
		Body   EditTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		t, err := e.EditTask(ctx, u, input.TaskID, input.Body.Title, input.Body.Description, input.Body.Reason)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{task_id}/toggle",
		Summary:     "Toggle task completion",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		TaskID string `path:"task_id"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		t, err := e.ToggleTask(ctx, u, input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})
}

func registerUsers(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "add-user",
		Method:        http.MethodPost,
		Path:          "/users",
		Summary:       "Create account (manager only)",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		Body AddUserRequest `json:"body"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		created, err := e.AddUser(ctx, u, engine.AddUserOptions{
			Username: input.Body.Username,
			Password: input.Body.Password,
			Name:     input.Body.Name,
			Role:     domain.Role(input.Body.Role),
			Shift:    input.Body.Shift,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: userResponse(created)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List accounts (manager only)",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []UserResponse `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		users, err := e.ListUsers(ctx, u)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []UserResponse `json:"body"`
		}{Body: mapUsers(users)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-password",
		Method:      http.MethodPost,
		Path:        "/users/me/password",
		Summary:     "Change own password",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body ChangePasswordRequest `json:"body"`
	}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.ChangePassword(ctx, u, input.Body.CurrentPassword, input.Body.NewPassword); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "changed"}}, nil
	})
}

func registerStock(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-stock",
		Method:      http.MethodGet,
		Path:        "/stock",
		Summary:     "List stock (supervisor or manager)",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []StockItemResponse `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		items, err := e.Stock(ctx, u)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []StockItemResponse `json:"body"`
		}{Body: mapStock(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-stock-item",
		Method:        http.MethodPost,
		Path:          "/stock",
		Summary:       "Add stock item (supervisor or manager)",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Body AddStockItemRequest `json:"body"`
	}) (*struct {
		Body StockItemResponse `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		it, err := e.AddStockItem(ctx, u, input.Body.Name, input.Body.Quantity, input.Body.Unit)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body StockItemResponse `json:"body"`
		}{Body: stockItemResponse(it)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "adjust-stock",
		Method:      http.MethodPatch,
		Path:        "/stock/{item_id}",
		Summary:     "Adjust stock quantity (reason mandatory)",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ItemID string             `path:"item_id"`
		Body   AdjustStockRequest `json:"body"`
	}) (*struct {
		Body StockItemResponse `json:"body"`
	}, error) {
		u, authErr := currentUser(ctx, e)
		if authErr != nil {
			return nil, authErr
		}
		it, err := e.AdjustStock(ctx, u, input.ItemID, input.Body.Quantity, input.Body.Reason)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body StockItemResponse `json:"body"`
		}{Body: stockItemResponse(it)}, nil
	})
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			spec, _ = json.Marshal(api.OpenAPI())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>ShiftDesk API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
    <p style="padding: 1rem; font-family: sans-serif; color: #444;">
      Authenticate via POST /login, then send Authorization: Bearer &lt;token&gt;.
    </p>
  </body>
</html>`, specURL)
}
