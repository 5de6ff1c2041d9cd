package db

import (
	"context"
	"fmt"

	_ "github.com/lib/pq"

	"chatdb/pkg/models"
)

var postgresQueries = catalogQueries{
	tables: `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
	columns: `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`,
	foreignKeys: `
		SELECT kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name
		JOIN information_schema.constraint_column_usage ccu ON tc.constraint_name = ccu.constraint_name
		WHERE tc.table_name = $1 AND tc.constraint_type = 'FOREIGN KEY'`,
	args: func(_ models.SourceConfig, table string) []any {
		if table == "" {
			return nil
		}
		return []any{table}
	},
}

// NewPostgresProvider PostgreSQL 스키마 제공자
func NewPostgresProvider(ctx context.Context, config models.SourceConfig) (*SQLProvider, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		config.Host, config.Port, config.User, config.Password, config.Database)

	db, err := openSQL(ctx, "postgres", dsn, "PostgreSQL")
	if err != nil {
		return nil, err
	}
	return newSQLProvider(db, config, postgresQueries), nil
}
