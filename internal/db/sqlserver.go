package db

import (
	"context"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"

	"chatdb/pkg/models"
)

var sqlServerQueries = catalogQueries{
	tables: `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_CATALOG = DB_NAME()
		ORDER BY TABLE_NAME`,
	columns: `
		SELECT COLUMN_NAME, DATA_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_NAME = @p1
		ORDER BY ORDINAL_POSITION`,
	foreignKeys: `
		SELECT cp.name, tr.name, cr.name
		FROM sys.foreign_key_columns fkc
		JOIN sys.tables tp ON fkc.parent_object_id = tp.object_id
		JOIN sys.columns cp ON fkc.parent_object_id = cp.object_id AND fkc.parent_column_id = cp.column_id
		JOIN sys.tables tr ON fkc.referenced_object_id = tr.object_id
		JOIN sys.columns cr ON fkc.referenced_object_id = cr.object_id AND fkc.referenced_column_id = cr.column_id
		WHERE tp.name = @p1`,
	args: func(_ models.SourceConfig, table string) []any {
		if table == "" {
			return nil
		}
		return []any{table}
	},
}

// NewSQLServerProvider SQL Server 스키마 제공자
func NewSQLServerProvider(ctx context.Context, config models.SourceConfig) (*SQLProvider, error) {
	dsn := fmt.Sprintf("server=%s;port=%d;user id=%s;password=%s;database=%s",
		config.Host, config.Port, config.User, config.Password, config.Database)

	db, err := openSQL(ctx, "sqlserver", dsn, "SQL Server")
	if err != nil {
		return nil, err
	}
	return newSQLProvider(db, config, sqlServerQueries), nil
}
