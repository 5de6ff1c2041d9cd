package db

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/sijms/go-ora/v2"

	"chatdb/pkg/models"
)

// oracleQueries 접속 사용자 소유 테이블만 (이름은 대문자로 저장됨)
var oracleQueries = catalogQueries{
	tables: `SELECT table_name FROM user_tables ORDER BY table_name`,
	columns: `
		SELECT column_name, data_type
		FROM user_tab_columns
		WHERE table_name = :1
		ORDER BY column_id`,
	foreignKeys: `
		SELECT a.column_name, c_pk.table_name, b.column_name
		FROM user_cons_columns a
		JOIN user_constraints c ON a.constraint_name = c.constraint_name
		JOIN user_constraints c_pk ON c.r_constraint_name = c_pk.constraint_name
		JOIN user_cons_columns b ON c_pk.constraint_name = b.constraint_name AND b.position = a.position
		WHERE c.constraint_type = 'R' AND a.table_name = :1`,
	args: func(_ models.SourceConfig, table string) []any {
		if table == "" {
			return nil
		}
		return []any{strings.ToUpper(table)}
	},
}

// NewOracleProvider Oracle 스키마 제공자
func NewOracleProvider(ctx context.Context, config models.SourceConfig) (*SQLProvider, error) {
	dsn := fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		config.User, config.Password, config.Host, config.Port, config.Database)

	db, err := openSQL(ctx, "oracle", dsn, "Oracle")
	if err != nil {
		return nil, err
	}
	return newSQLProvider(db, config, oracleQueries), nil
}
