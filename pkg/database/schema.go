package database

import (
	"fmt"

	"go.uber.org/zap"
)

// schema holds the dispatch-log table definition. The service owns no other
// persistent state; case records themselves live in the backend registry.
const schema = `
CREATE TABLE IF NOT EXISTS dispatch_log (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	case_type        TEXT NOT NULL,
	filename         TEXT NOT NULL,
	format           TEXT NOT NULL,
	page_count       INTEGER NOT NULL DEFAULT 0,
	annex_count      INTEGER NOT NULL DEFAULT 0,
	recipients       TEXT NOT NULL DEFAULT '',
	registry_case_id TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_dispatch_log_created_at ON dispatch_log(created_at);
`

// EnsureSchema creates the tables this service needs if they do not exist.
func EnsureSchema(db *DB, logger *zap.Logger) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	logger.Debug("Database schema ensured")
	return nil
}
