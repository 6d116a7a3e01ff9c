package db

// Schema holds the DDL applied by the migrate command. Statements are
// idempotent so the command can run on every deploy. Repository tests
// assert their column lists against these statements, so schema and
// SQL cannot drift apart silently.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name    TEXT,
		last_name     TEXT,
		avatar        TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		color       TEXT,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT,
		color       TEXT,
		owner_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS project_members (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role        TEXT NOT NULL DEFAULT 'MEMBER',
		joined_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (project_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		description   TEXT,
		status        TEXT NOT NULL DEFAULT 'TODO',
		priority      TEXT NOT NULL DEFAULT 'MEDIUM',
		due_date      TIMESTAMPTZ,
		category_id   TEXT REFERENCES categories(id) ON DELETE SET NULL,
		project_id    TEXT REFERENCES projects(id) ON DELETE CASCADE,
		assignee_id   TEXT REFERENCES users(id) ON DELETE SET NULL,
		created_by_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type        TEXT NOT NULL,
		title       TEXT NOT NULL,
		message     TEXT NOT NULL,
		read        BOOLEAN NOT NULL DEFAULT false,
		related_id  TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_created_by ON tasks (created_by_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks (assignee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks (project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks (due_date) WHERE due_date IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_project_members_user ON project_members (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, read)`,
}

// TableDDL returns the CREATE TABLE statement for the named table, or
// an empty string when the schema has no such table.
func TableDDL(table string) string {
	prefix := "CREATE TABLE IF NOT EXISTS " + table + " "
	for _, stmt := range Schema {
		if len(stmt) > len(prefix) && stmt[:len(prefix)] == prefix {
			return stmt
		}
	}
	return ""
}
