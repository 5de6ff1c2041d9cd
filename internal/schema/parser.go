// Package schema 스키마 입력 파싱과 컬럼 분류
package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"chatdb/pkg/models"
)

const quoteChars = "`\"'[]"

var (
	createTablePattern = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?(?:[` + "`" + `"\[]?\w+[` + "`" + `"\]]?\.)?[` + "`" + `"\[]?(\w+)[` + "`" + `"\]]?\s*\(`)
	columnPattern      = regexp.MustCompile(`(?i)^\s*[` + "`" + `"\[]?(\w+)[` + "`" + `"\]]?\s+(\w+(?:\s+(?:precision|varying|unsigned))?(?:\s*\([^)]*\))?)`)
	foreignKeyPattern  = regexp.MustCompile(`(?i)FOREIGN\s+KEY\s*\(\s*[` + "`" + `"\[]?(\w+)[` + "`" + `"\]]?\s*\)\s*REFERENCES\s+[` + "`" + `"\[]?(\w+)[` + "`" + `"\]]?\s*\(\s*[` + "`" + `"\[]?(\w+)[` + "`" + `"\]]?\s*\)`)
	inlineRefPattern   = regexp.MustCompile(`(?i)\bREFERENCES\s+[` + "`" + `"\[]?(\w+)[` + "`" + `"\]]?\s*\(\s*[` + "`" + `"\[]?(\w+)[` + "`" + `"\]]?\s*\)`)
)

// constraintPattern 컬럼 정의가 아닌 테이블 제약 조건 줄
var constraintPattern = regexp.MustCompile(`(?i)^(?:PRIMARY\s+KEY|FOREIGN\s+KEY|CONSTRAINT|INDEX|KEY|UNIQUE|CHECK)\b`)

// Parser 스키마 파서
type Parser struct{}

// NewParser 파서 생성
func NewParser() *Parser {
	return &Parser{}
}

// Parse 입력이 JSON 이면 ParseJSON, 아니면 DDL 로 파싱
func (p *Parser) Parse(data []byte, dbType models.DBType) (*models.Schema, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		return p.ParseJSON(data)
	}
	return p.ParseDDL(trimmed, dbType)
}

// ParseJSON JSON 형식 스키마 파싱
// models.Schema 형식과 {"테이블": ["컬럼", ...]} 형식을 모두 받는다.
func (p *Parser) ParseJSON(data []byte) (*models.Schema, error) {
	var schema models.Schema
	if err := json.Unmarshal(data, &schema); err == nil && len(schema.Tables) > 0 {
		return &schema, nil
	}

	var simple map[string][]string
	if err := json.Unmarshal(data, &simple); err != nil {
		return nil, fmt.Errorf("JSON 파싱 실패: %w", err)
	}
	out := &models.Schema{Tables: make([]models.Table, 0, len(simple))}
	for name, cols := range simple {
		out.Tables = append(out.Tables, models.TableFromNames(name, cols))
	}
	sortTables(out.Tables)
	return out, nil
}

// ParseDDL DDL (CREATE TABLE) 문에서 스키마 파싱
func (p *Parser) ParseDDL(ddl string, dbType models.DBType) (*models.Schema, error) {
	schema := &models.Schema{
		DBType: dbType,
		Tables: []models.Table{},
	}

	for _, loc := range createTablePattern.FindAllStringSubmatchIndex(ddl, -1) {
		name := ddl[loc[2]:loc[3]]
		body, ok := balancedBody(ddl[loc[1]:])
		if !ok {
			return nil, fmt.Errorf("DDL 파싱 실패: 테이블 %s 의 괄호가 닫히지 않음", name)
		}

		table := models.Table{Name: name, Columns: []models.Column{}}
		for _, def := range splitTopLevel(body) {
			if fk, ok := parseTableForeignKey(def); ok {
				table.ForeignKeys = append(table.ForeignKeys, fk)
				continue
			}
			if isConstraint(def) {
				continue
			}
			col, ok := parseColumn(def)
			if !ok {
				continue
			}
			table.Columns = append(table.Columns, col)
			if m := inlineRefPattern.FindStringSubmatch(def); m != nil {
				table.ForeignKeys = append(table.ForeignKeys, models.ForeignKey{
					Column: col.Name, RefTable: m[1], RefColumn: m[2],
				})
			}
		}
		schema.Tables = append(schema.Tables, table)
	}

	if len(schema.Tables) == 0 {
		return nil, fmt.Errorf("DDL 파싱 실패: CREATE TABLE 문 없음")
	}
	return schema, nil
}

// balancedBody 여는 괄호 바로 뒤부터 짝이 맞는 닫는 괄호 전까지
func balancedBody(s string) (string, bool) {
	depth := 1
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[:i], true
			}
		}
	}
	return "", false
}

// splitTopLevel 괄호 안이 아닌 콤마로 분리 (DECIMAL(10,2) 보호)
func splitTopLevel(body string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(body[start:]); last != "" {
		parts = append(parts, last)
	}
	return parts
}

func isConstraint(def string) bool {
	return constraintPattern.MatchString(def)
}

func parseColumn(def string) (models.Column, bool) {
	m := columnPattern.FindStringSubmatch(def)
	if m == nil {
		return models.Column{}, false
	}
	return models.Column{
		Name: strings.Trim(m[1], quoteChars),
		Type: strings.Join(strings.Fields(m[2]), " "),
	}, true
}

func parseTableForeignKey(def string) (models.ForeignKey, bool) {
	if !isConstraint(def) {
		return models.ForeignKey{}, false
	}
	m := foreignKeyPattern.FindStringSubmatch(def)
	if m == nil {
		return models.ForeignKey{}, false
	}
	return models.ForeignKey{Column: m[1], RefTable: m[2], RefColumn: m[3]}, true
}

func sortTables(tables []models.Table) {
	slices.SortFunc(tables, func(a, b models.Table) int {
		return strings.Compare(a.Name, b.Name)
	})
}
