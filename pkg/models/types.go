package models

import "strings"

// DBType 스키마 제공 데이터베이스 종류
type DBType string

const (
	MySQL      DBType = "mysql"
	PostgreSQL DBType = "postgresql"
	Oracle     DBType = "oracle"
	SQLServer  DBType = "sqlserver"
	SQLite     DBType = "sqlite"
	MongoDB    DBType = "mongodb"
)

// Dialect 생성 대상 쿼리 방언
type Dialect string

const (
	// DialectSQL 관계형 SQL
	DialectSQL Dialect = "sql"
	// DialectMongo MongoDB aggregation pipeline
	DialectMongo Dialect = "mongodb"
)

// Dialects 지원하는 방언 목록
var Dialects = []Dialect{DialectSQL, DialectMongo}

// ParseDialect 요청 문자열을 방언으로 변환
// 데이터베이스 종류 이름(mysql, postgresql ...)도 허용한다.
func ParseDialect(s string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sql", "mysql", "postgresql", "postgres", "sqlserver", "oracle", "sqlite":
		return DialectSQL, true
	case "mongodb", "mongo":
		return DialectMongo, true
	default:
		return "", false
	}
}

// DialectFor 데이터베이스 종류의 기본 방언
func DialectFor(t DBType) Dialect {
	if t == MongoDB {
		return DialectMongo
	}
	return DialectSQL
}

// SourceConfig 스키마 소스(데이터베이스) 연결 설정
type SourceConfig struct {
	Name     string `json:"name" koanf:"name" validate:"required"`
	Type     DBType `json:"type" koanf:"type" validate:"required,oneof=mysql postgresql oracle sqlserver sqlite mongodb"`
	Host     string `json:"host,omitempty" koanf:"host"`
	Port     int    `json:"port,omitempty" koanf:"port" validate:"gte=0,lte=65535"`
	User     string `json:"user,omitempty" koanf:"user"`
	Password string `json:"-" koanf:"password"`
	Database string `json:"database,omitempty" koanf:"database"`
	URI      string `json:"uri,omitempty" koanf:"uri"`   // MongoDB 연결 문자열
	Path     string `json:"path,omitempty" koanf:"path"` // SQLite 파일 경로
}

// Column 컬럼(필드) 정보
type Column struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"` // 엔진이 보고한 타입, 모르면 빈 문자열
}

// ForeignKey 선언된 외래 키
type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
}

// Table 테이블(컬렉션) 정보
type Table struct {
	Name        string         `json:"name"`
	Columns     []Column       `json:"columns"`
	ForeignKeys []ForeignKey   `json:"foreign_keys,omitempty"`
	Sample      map[string]any `json:"sample,omitempty"` // 타입 추론용 샘플 문서 (MongoDB)
}

// ColumnNames 컬럼 이름 목록 (선언 순서)
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn 대소문자 구분 없이 컬럼 존재 여부 확인
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// TableFromNames 이름 목록만으로 테이블 정보 생성
func TableFromNames(name string, columns []string) Table {
	t := Table{Name: name, Columns: make([]Column, 0, len(columns))}
	for _, c := range columns {
		c = strings.TrimSpace(c)
		if c != "" {
			t.Columns = append(t.Columns, Column{Name: c})
		}
	}
	return t
}

// Schema 전체 스키마 정보
type Schema struct {
	Database string  `json:"database"`
	Tables   []Table `json:"tables"`
	DBType   DBType  `json:"db_type"`
}

// Table 이름으로 테이블 조회
func (s *Schema) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if strings.EqualFold(s.Tables[i].Name, name) {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// Classification 컬럼 분류 결과
type Classification struct {
	Numeric             []string `json:"numeric"`
	Categorical         []string `json:"categorical"`
	NumericFallback     bool     `json:"numeric_fallback"`
	CategoricalFallback bool     `json:"categorical_fallback"`
	Source              string   `json:"source"` // type, sample, heuristic
}

// MatchResult 자연어 경로 결과
// 매칭되지 않으면 MatchedConstruct 와 Query 는 nil 이다.
type MatchResult struct {
	MatchedConstruct *string           `json:"matched_construct"`
	Query            *string           `json:"query"`
	Dialect          Dialect           `json:"dialect"`
	Normalized       string            `json:"normalized"`
	Slots            map[string]string `json:"slots,omitempty"`
	UnknownColumns   []string          `json:"unknown_columns,omitempty"`
}

// Matched 매칭 여부
func (r *MatchResult) Matched() bool {
	return r != nil && r.MatchedConstruct != nil
}

// SampleQuery 샘플 쿼리 (자연어 설명 + 쿼리)
type SampleQuery struct {
	Construct       string  `json:"construct"`
	NaturalLanguage string  `json:"natural_language"`
	Query           string  `json:"query"`
	Dialect         Dialect `json:"dialect"`
}

// JoinCandidate 조인 가능 컬럼 쌍
type JoinCandidate struct {
	LeftTable   string `json:"left_table"`
	LeftColumn  string `json:"left_column"`
	RightTable  string `json:"right_table"`
	RightColumn string `json:"right_column"`
}

// SampleRequest 샘플 쿼리 생성 요청
type SampleRequest struct {
	Table      Table    `json:"table"`
	Related    []Table  `json:"related,omitempty"` // 조인 후보 탐색용 다른 테이블
	Dialect    Dialect  `json:"dialect"`
	Constructs []string `json:"constructs,omitempty"` // 비어 있거나 "all" 이면 전체
}
