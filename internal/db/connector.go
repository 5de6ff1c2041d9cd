package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chatdb/pkg/models"
)

// ErrTableNotFound 테이블(컬렉션)이 없음
var ErrTableNotFound = errors.New("테이블을 찾을 수 없음")

// Provider 스키마 제공자
type Provider interface {
	// Type 데이터베이스 타입 반환
	Type() models.DBType

	// ListTables 테이블(컬렉션) 이름 목록
	ListTables(ctx context.Context) ([]string, error)

	// DescribeTable 컬럼 이름/타입과 선언된 외래 키
	DescribeTable(ctx context.Context, name string) (*models.Table, error)

	// Close 연결 종료
	Close() error
}

// Open 설정에 맞는 제공자를 만들고 연결을 확인
func Open(ctx context.Context, config models.SourceConfig) (Provider, error) {
	switch config.Type {
	case models.MySQL:
		return NewMySQLProvider(ctx, config)
	case models.PostgreSQL:
		return NewPostgresProvider(ctx, config)
	case models.Oracle:
		return NewOracleProvider(ctx, config)
	case models.SQLServer:
		return NewSQLServerProvider(ctx, config)
	case models.SQLite:
		return NewSQLiteProvider(ctx, config)
	case models.MongoDB:
		return NewMongoProvider(ctx, config)
	default:
		return nil, fmt.Errorf("지원하지 않는 데이터베이스 타입: %s", config.Type)
	}
}

// catalogQueries INFORMATION_SCHEMA 계열 카탈로그 조회문
// columns 는 (이름, 타입), foreignKeys 는 (컬럼, 참조 테이블, 참조 컬럼) 을 돌려준다.
type catalogQueries struct {
	tables      string
	columns     string
	foreignKeys string
	// args 조회문 인자 (table 이 빈 문자열이면 테이블 목록용)
	args func(config models.SourceConfig, table string) []any
}

// SQLProvider database/sql 기반 제공자 공통 구현
type SQLProvider struct {
	db      *sql.DB
	config  models.SourceConfig
	queries catalogQueries
}

func newSQLProvider(db *sql.DB, config models.SourceConfig, queries catalogQueries) *SQLProvider {
	return &SQLProvider{db: db, config: config, queries: queries}
}

// openSQL 드라이버로 연결하고 Ping 확인
func openSQL(ctx context.Context, driver, dsn, label string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s 연결 실패: %w", label, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s Ping 실패: %w", label, err)
	}
	return db, nil
}

func (p *SQLProvider) Type() models.DBType {
	return p.config.Type
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *SQLProvider) ListTables(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, p.queries.tables, p.queries.args(p.config, "")...)
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

func (p *SQLProvider) DescribeTable(ctx context.Context, name string) (*models.Table, error) {
	args := p.queries.args(p.config, name)

	rows, err := p.db.QueryContext(ctx, p.queries.columns, args...)
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

	if p.queries.foreignKeys == "" {
		return table, nil
	}
	fks, err := p.db.QueryContext(ctx, p.queries.foreignKeys, args...)
	if err != nil {
		return nil, fmt.Errorf("외래키 조회 실패: %w", err)
	}
	defer fks.Close()

	for fks.Next() {
		var fk models.ForeignKey
		if err := fks.Scan(&fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, err
		}
		table.ForeignKeys = append(table.ForeignKeys, fk)
	}
	return table, fks.Err()
}
