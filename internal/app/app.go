package app

import (
	"context"
	"fmt"

	"shiftdesk/internal/config"
	"shiftdesk/internal/db"
	"shiftdesk/internal/engine"
	"shiftdesk/internal/migrate"
)

// Open prepares a workspace end to end: directory, database, migrations,
// config and the first-run bootstrap account. Callers own the returned close
// function.
func Open(ctx context.Context, workspace string) (engine.Engine, func() error, error) {
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		return engine.Engine{}, nil, err
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return engine.Engine{}, nil, err
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return engine.Engine{}, nil, fmt.Errorf("migrate: %w", err)
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		conn.Close()
		return engine.Engine{}, nil, err
	}
	e := engine.New(conn, cfg)
	if _, err := e.Bootstrap(ctx); err != nil {
		conn.Close()
		return engine.Engine{}, nil, fmt.Errorf("bootstrap: %w", err)
	}
	return e, conn.Close, nil
}
