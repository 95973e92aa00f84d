package db

import (
	"fmt"

	"github.com/sreejitadass/ContentCrafter/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations and creates supporting indexes.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.GeneratedContent{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	// ddl defines an index or DDL statement to apply.
	type ddl struct {
		name string // Human-readable name for error reporting.
		sql  string // SQL to execute.
	}
	ddls := []ddl{
		{
			name: "idx_generated_contents_user_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_generated_contents_user_id_created_at
				ON generated_contents (user_id, created_at DESC, id DESC)
			`,
		},
		{
			name: "idx_generated_contents_user_id_content_type",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_generated_contents_user_id_content_type
				ON generated_contents (user_id, content_type)
			`,
		},
		{
			name: "idx_users_updated_at_id",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_users_updated_at_id
				ON users (updated_at DESC, id DESC)
			`,
		},
	}
	for _, item := range ddls {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	return nil
}
