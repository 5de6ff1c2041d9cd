package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"chatdb/pkg/models"
)

// SQLiteProvider SQLite 파일 스키마 제공자 (PRAGMA 기반)
type SQLiteProvider struct {
	db     *sql.DB
	config models.SourceConfig
}

// NewSQLiteProvider SQLite 스키마 제공자
func NewSQLiteProvider(ctx context.Context, config models.SourceConfig) (*SQLiteProvider, error) {
	path := config.Path
	if path == "" {
		path = config.Database
	}
	if path == "" {
		return nil, fmt.Errorf("SQLite 연결 실패: path 가 비어 있음")
	}

	db, err := openSQL(ctx, "sqlite", path, "SQLite")
	if err != nil {
		return nil, err
	}
	// :memory: DB 는 연결마다 따로 생기므로 하나만 쓴다
	db.SetMaxOpenConns(1)
	return &SQLiteProvider{db: db, config: config}, nil
}

func (p *SQLiteProvider) Type() models.DBType {
	return models.SQLite
}

func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}

func (p *SQLiteProvider) ListTables(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("테이블 목록 조회 실패: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (p *SQLiteProvider) DescribeTable(ctx context.Context, name string) (*models.Table, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, name)
	if err != nil {
		return nil, fmt.Errorf("컬럼 조회 실패: %w", err)
	}
	defer rows.Close()

	table := &models.Table{Name: name, Columns: []models.Column{}}
	for rows.Next() {
		var col models.Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, err
		}
		table.Columns = append(table.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	fks, err := p.db.QueryContext(ctx, `SELECT "from", "table", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`, name)
	if err != nil {
		return nil, fmt.Errorf("외래키 조회 실패: %w", err)
	}
	defer fks.Close()

	for fks.Next() {
		var fk models.ForeignKey
		var to sql.NullString
		if err := fks.Scan(&fk.Column, &fk.RefTable, &to); err != nil {
			return nil, err
		}
		// REFERENCES parent 처럼 컬럼을 생략하면 부모의 기본키를 가리킨다
		fk.RefColumn = strings.TrimSpace(to.String)
		if fk.RefColumn == "" {
			fk.RefColumn = fk.Column
		}
		table.ForeignKeys = append(table.ForeignKeys, fk)
	}
	return table, fks.Err()
}
