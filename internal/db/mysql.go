package db

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"chatdb/pkg/models"
)

// mysqlQueries COLUMN_TYPE 은 int(11) unsigned 처럼 길이/부호까지 포함한다
var mysqlQueries = catalogQueries{
	tables: `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`,
	columns: `
		SELECT COLUMN_NAME, COLUMN_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`,
	foreignKeys: `
		SELECT COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
			AND REFERENCED_TABLE_NAME IS NOT NULL`,
	args: func(config models.SourceConfig, table string) []any {
		if table == "" {
			return []any{config.Database}
		}
		return []any{config.Database, table}
	},
}

// NewMySQLProvider MySQL 스키마 제공자
func NewMySQLProvider(ctx context.Context, config models.SourceConfig) (*SQLProvider, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&timeout=60s&readTimeout=30s&writeTimeout=30s",
		config.User, config.Password, config.Host, config.Port, config.Database)

	db, err := openSQL(ctx, "mysql", dsn, "MySQL")
	if err != nil {
		return nil, err
	}
	return newSQLProvider(db, config, mysqlQueries), nil
}
