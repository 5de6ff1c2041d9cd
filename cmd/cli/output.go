package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"chatdb/pkg/models"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func renderMatch(w io.Writer, r *models.MatchResult, format string) error {
	if format == "json" {
		return renderJSON(w, r)
	}
	if !r.Matched() {
		fmt.Fprintf(w, "❌ 일치하는 구문이 없습니다 (정규화: %q)\n", r.Normalized)
		fmt.Fprintln(w, "💡 'chatdb constructs' 로 지원 구문을 확인하세요")
		return nil
	}

	fmt.Fprintf(w, "✅ %s (%s)\n\n", *r.MatchedConstruct, r.Dialect)
	fmt.Fprintln(w, formatQuery(*r.Query, r.Dialect))
	if len(r.UnknownColumns) > 0 {
		fmt.Fprintf(w, "\n⚠️  테이블에 없는 컬럼: %s\n", strings.Join(r.UnknownColumns, ", "))
	}
	return nil
}

func renderSamples(w io.Writer, samples []models.SampleQuery, format string) error {
	if format == "json" {
		return renderJSON(w, samples)
	}
	if len(samples) == 0 {
		fmt.Fprintln(w, "(샘플 없음)")
		return nil
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "구문", "자연어", "쿼리"})
	for i, s := range samples {
		t.AppendRow(table.Row{i + 1, s.Construct, s.NaturalLanguage, s.Query})
	}
	t.Render()
	return nil
}

func renderJoins(w io.Writer, cands []models.JoinCandidate, format string) error {
	if format == "json" {
		return renderJSON(w, cands)
	}
	if len(cands) == 0 {
		fmt.Fprintln(w, "(조인 후보 없음)")
		return nil
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"왼쪽", "오른쪽"})
	for _, c := range cands {
		t.AppendRow(table.Row{c.LeftTable + "." + c.LeftColumn, c.RightTable + "." + c.RightColumn})
	}
	t.Render()
	return nil
}

// tableSummary 테이블 목록 출력용 행
type tableSummary struct {
	Table          models.Table          `json:"table"`
	Classification models.Classification `json:"classification"`
}

func renderTables(w io.Writer, tables []tableSummary, format string) error {
	if format == "json" {
		return renderJSON(w, tables)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"테이블", "컬럼", "숫자형", "범주형"})
	for _, s := range tables {
		t.AppendRow(table.Row{
			s.Table.Name,
			len(s.Table.Columns),
			strings.Join(s.Classification.Numeric, ", "),
			strings.Join(s.Classification.Categorical, ", "),
		})
	}
	t.Render()
	return nil
}

// renderSchema 테이블 하나의 컬럼 상세
func renderSchema(w io.Writer, s tableSummary) {
	fmt.Fprintf(w, "\n📊 %s\n", s.Table.Name)
	t := newTable(w)
	t.AppendHeader(table.Row{"컬럼", "타입", "분류"})
	numeric := make(map[string]bool, len(s.Classification.Numeric))
	for _, n := range s.Classification.Numeric {
		numeric[n] = true
	}
	for _, c := range s.Table.Columns {
		kind := "범주형"
		if numeric[c.Name] {
			kind = "숫자형"
		}
		t.AppendRow(table.Row{c.Name, c.Type, kind})
	}
	t.Render()
	for _, fk := range s.Table.ForeignKeys {
		fmt.Fprintf(w, "  🔗 %s → %s.%s\n", fk.Column, fk.RefTable, fk.RefColumn)
	}
}

// formatQuery SQL 주요 절 앞에서 줄바꿈
func formatQuery(q string, d models.Dialect) string {
	if d != models.DialectSQL {
		return q
	}
	for _, kw := range []string{" FROM ", " JOIN ", " WHERE ", " GROUP BY ", " HAVING ", " ORDER BY ", " LIMIT "} {
		q = strings.ReplaceAll(q, kw, "\n"+strings.TrimPrefix(kw, " "))
	}
	return q
}
