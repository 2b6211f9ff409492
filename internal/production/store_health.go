package production

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// DatabaseHealth captures diagnostic information about the production database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	IntegrityCheck   bool
	Assets           int
	Credits          int
	Templates        int
	Projects         int
	Tasks            int
	Archives         int
	Error            string
}

// Health inspects the database and reports row counts and integrity. It
// never fails hard; problems land in the Error field so the CLI can render
// them.
func (s *Store) Health(ctx context.Context) DatabaseHealth {
	ctx = ensureContext(ctx)
	health := DatabaseHealth{DBPath: s.path}

	if _, err := os.Stat(s.path); err == nil {
		health.DatabaseExists = true
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		health.Error = fmt.Sprintf("read schema version: %v", err)
		return health
	}
	health.DatabaseReadable = true
	health.SchemaVersion = strconv.Itoa(version)

	var integrity string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err == nil {
		health.IntegrityCheck = integrity == "ok"
	}

	counts := []struct {
		table string
		dest  *int
	}{
		{"content_assets", &health.Assets},
		{"credits", &health.Credits},
		{"templates", &health.Templates},
		{"projects", &health.Projects},
		{"tasks", &health.Tasks},
		{"archives", &health.Archives},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+c.table).Scan(c.dest); err != nil {
			health.Error = fmt.Sprintf("count %s: %v", c.table, err)
			return health
		}
	}
	return health
}
