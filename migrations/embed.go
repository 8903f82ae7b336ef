package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql mysql/*.sql sqlite3/*.sql
var migrationFS embed.FS

// FS returns the migration files for the given driver.
func FS(driver string) (fs.FS, error) {
	return fs.Sub(migrationFS, driver)
}
