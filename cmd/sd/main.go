package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shiftdesk/internal/app"
	"shiftdesk/internal/config"
	"shiftdesk/internal/db"
	"shiftdesk/internal/domain"
	"shiftdesk/internal/engine"
	"shiftdesk/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "sd",
	Short: "ShiftDesk CLI",
	Long: `ShiftDesk manages hotel staff operations from a single workspace.
Core concepts:
- Workspace: your .shiftdesk directory holding the database; shiftdesk.yml beside it tunes shifts and the bootstrap account.
- Accounts: workers, supervisors and managers. Managers create accounts; supervisors and managers manage stock.
- Attendance: one record per person per day; checking in after your shift starts marks you late, and that mark never changes.
- Tasks: shared to-do items. Edits require a reason and every change lands in the task's history.
- Stock: inventory items. Quantity changes require a reason and are audited the same way.
- First run seeds a single manager account from shiftdesk.yml so someone can log in and add the rest.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("SHIFTDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("username", "", "acting username")
	rootCmd.PersistentFlags().String("password", "", "acting user password")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("username", rootCmd.PersistentFlags().Lookup("username"))
	_ = viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(checkinCmd())
	rootCmd.AddCommand(checkoutCmd())
	rootCmd.AddCommand(attendanceCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(stockCmd())
	rootCmd.AddCommand(serveCmd())
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a workspace",
		Long:  "Creates .shiftdesk, writes a default shiftdesk.yml if absent, and seeds the bootstrap manager account.",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			path := config.Path(workspace)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", path)
			}
			e, closeDB, err := app.Open(cmd.Context(), workspace)
			if err != nil {
				return err
			}
			defer closeDB()
			fmt.Printf("Workspace ready. Log in as %q to add accounts.\n", e.Config.Bootstrap.Username)
			return nil
		},
	}
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect workspace config",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSONOrTable(cfg)
		},
	}
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate shiftdesk.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err == nil {
				err = cfg.Validate()
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
	return cmd
}

func whoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the acting user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				return printJSONOrTable(publicUser(actor))
			})
		},
	}
	return cmd
}

func checkinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Check in for today",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				rec, err := e.CheckIn(ctx, actor)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(rec)
				}
				late := ""
				if rec.IsLate {
					late = " (late)"
				}
				fmt.Printf("Checked in at %s on %s%s\n", rec.CheckIn, rec.Date, late)
				return nil
			})
		},
	}
	return cmd
}

func checkoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Check out for today",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				rec, err := e.CheckOut(ctx, actor)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(rec)
				}
				fmt.Printf("Checked out at %s on %s\n", *rec.CheckOut, rec.Date)
				return nil
			})
		},
	}
	return cmd
}

func attendanceCmd() *cobra.Command {
	att := &cobra.Command{Use: "attendance", Short: "Attendance records"}
	att.AddCommand(attendanceListCmd())
	return att
}

func attendanceListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List own attendance, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				recs, err := e.Attendances(ctx, actor.ID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(recs)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Date", "Check-in", "Check-out", "Late"})
				for _, a := range recs {
					out := ""
					if a.CheckOut != nil {
						out = *a.CheckOut
					}
					tw.AppendRow(table.Row{a.Date, a.CheckIn, out, a.IsLate})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func taskCmd() *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long:  "Tasks are shared work items. Editing one requires a reason; every edit and toggle is recorded in the task's history.",
	}
	task.AddCommand(taskAddCmd())
	task.AddCommand(taskListCmd())
	task.AddCommand(taskGetCmd())
	task.AddCommand(taskEditCmd())
	task.AddCommand(taskToggleCmd())
	return task
}

func taskAddCmd() *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				t, err := e.CreateTask(ctx, actor, title, description)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func taskListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				tasks, err := e.Tasks(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Done", "Date", "Shift", "Edits"})
				for _, t := range tasks {
					tw.AppendRow(table.Row{t.ID, t.Title, t.Completed, t.Date, t.Shift, len(t.EditHistory)})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func taskGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get task with full history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				t, err := e.GetTask(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	return cmd
}

func taskEditCmd() *cobra.Command {
	var title, description, reason string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task (reason required)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				t, err := e.EditTask(ctx, actor, id, title, description, reason)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&reason, "reason", "", "reason for the change")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func taskToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Toggle task completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				t, err := e.ToggleTask(ctx, actor, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	return cmd
}

func userCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	user.AddCommand(userAddCmd())
	user.AddCommand(userListCmd())
	user.AddCommand(userPasswdCmd())
	return user
}

func userAddCmd() *cobra.Command {
	var opts engine.AddUserOptions
	var role string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account (manager only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Role = domain.Role(role)
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				u, err := e.AddUser(ctx, actor, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(publicUser(u))
			})
		},
	}
	cmd.Flags().StringVar(&opts.Username, "new-username", "", "username for the new account")
	cmd.Flags().StringVar(&opts.Password, "new-password", "", "password for the new account")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", "worker", "role (worker, supervisor, manager)")
	cmd.Flags().IntVar(&opts.Shift, "shift", 1, "shift number")
	_ = cmd.MarkFlagRequired("new-username")
	_ = cmd.MarkFlagRequired("new-password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func userListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts (manager only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				users, err := e.ListUsers(ctx, actor)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					out := make([]map[string]any, 0, len(users))
					for _, u := range users {
						out = append(out, publicUser(u))
					}
					return printJSON(out)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Username", "Name", "Role", "Shift"})
				for _, u := range users {
					tw.AppendRow(table.Row{u.ID, u.Username, u.Name, u.Role, u.Shift})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func userPasswdCmd() *cobra.Command {
	var newPassword string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change own password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				if err := e.ChangePassword(ctx, actor, viper.GetString("password"), newPassword); err != nil {
					return err
				}
				fmt.Println("password changed")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&newPassword, "new-password", "", "new password")
	_ = cmd.MarkFlagRequired("new-password")
	return cmd
}

func stockCmd() *cobra.Command {
	stock := &cobra.Command{
		Use:   "stock",
		Short: "Manage stock",
		Long:  "Stock tracks inventory items. Supervisors and managers may view and change it; quantity changes require a reason.",
	}
	stock.AddCommand(stockAddCmd())
	stock.AddCommand(stockSetCmd())
	stock.AddCommand(stockListCmd())
	return stock
}

func stockAddCmd() *cobra.Command {
	var name, unit string
	var quantity int
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a stock item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				it, err := e.AddStockItem(ctx, actor, name, quantity, unit)
				if err != nil {
					return err
				}
				return printJSONOrTable(it)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "initial quantity")
	cmd.Flags().StringVar(&unit, "unit", "", "unit of measure")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("unit")
	return cmd
}

func stockSetCmd() *cobra.Command {
	var quantity int
	var reason string
	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Set item quantity (reason required)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				it, err := e.AdjustStock(ctx, actor, id, quantity, reason)
				if err != nil {
					return err
				}
				return printJSONOrTable(it)
			})
		},
	}
	cmd.Flags().IntVar(&quantity, "quantity", 0, "new quantity")
	cmd.Flags().StringVar(&reason, "reason", "", "reason for the change")
	_ = cmd.MarkFlagRequired("quantity")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func stockListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, e engine.Engine, actor domain.User) error {
				items, err := e.Stock(ctx, actor)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Quantity", "Unit", "Last updated"})
				for _, it := range items {
					tw.AppendRow(table.Row{it.ID, it.Name, it.Quantity, it.Unit, it.LastUpdated})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			e, closeDB, err := app.Open(cmd.Context(), workspace)
			if err != nil {
				return err
			}
			defer closeDB()
			secret := e.Config.Auth.JWTSecret
			if secret == "" {
				secret = os.Getenv("SHIFTDESK_JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("set auth.jwt_secret in %s or SHIFTDESK_JWT_SECRET for bearer auth", config.Path(workspace))
			}
			handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: server.AuthConfig{JWTSecret: secret}})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving ShiftDesk API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

// --- helpers ---

// withActor opens the workspace and authenticates the acting user from the
// --username/--password flags (or SHIFTDESK_USERNAME/SHIFTDESK_PASSWORD).
func withActor(ctx context.Context, fn func(context.Context, engine.Engine, domain.User) error) error {
	username := viper.GetString("username")
	password := viper.GetString("password")
	if username == "" || password == "" {
		return fmt.Errorf("--username and --password required (or SHIFTDESK_USERNAME/SHIFTDESK_PASSWORD)")
	}
	workspace := viper.GetString("workspace")
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		return err
	}
	e, closeDB, err := app.Open(ctx, workspace)
	if err != nil {
		return err
	}
	defer closeDB()
	actor, ok, err := e.Authenticate(ctx, username, password)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("invalid credentials")
	}
	return fn(ctx, e, actor)
}

// publicUser strips the password digest before any CLI output.
func publicUser(u domain.User) map[string]any {
	return map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"name":     u.Name,
		"role":     u.Role,
		"shift":    u.Shift,
	}
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
