package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chatdb/internal/db"
	"chatdb/internal/render"
	"chatdb/internal/schema"
	"chatdb/pkg/models"
)

// TableSpec 요청에 직접 넣는 테이블 정의
type TableSpec struct {
	Name    string   `json:"name" binding:"required"`
	Columns []string `json:"columns" binding:"required,min=1"`
}

// NLQueryRequest 자연어 쿼리 요청
// columns 가 있으면 소스를 조회하지 않는다.
type NLQueryRequest struct {
	Text      string   `json:"text" binding:"required"`
	TableName string   `json:"table_name" binding:"required"`
	Source    string   `json:"source,omitempty"`
	Dialect   string   `json:"dialect,omitempty"`
	Columns   []string `json:"columns,omitempty"`
}

// SampleQueriesRequest 샘플 쿼리 요청
type SampleQueriesRequest struct {
	TableName  string      `json:"table_name" binding:"required"`
	Source     string      `json:"source,omitempty"`
	Dialect    string      `json:"dialect,omitempty"`
	Constructs []string    `json:"constructs,omitempty"`
	Columns    []string    `json:"columns,omitempty"`
	Related    []TableSpec `json:"related,omitempty" binding:"omitempty,dive"`
}

// ParseSchemaRequest DDL/JSON 스키마 등록 요청
type ParseSchemaRequest struct {
	Name   string `json:"name" binding:"required"`
	DDL    string `json:"ddl,omitempty"`
	JSON   string `json:"json,omitempty"`
	DBType string `json:"db_type,omitempty"`
}

// TableDetail 테이블 정보와 컬럼 분류
type TableDetail struct {
	Table          models.Table          `json:"table"`
	Classification models.Classification `json:"classification"`
}

func (s *Server) handleWelcome(c *gin.Context) {
	respond(c, gin.H{
		"name":    "chatdb",
		"message": "자연어를 SQL 과 MongoDB 쿼리로 변환합니다",
		"docs":    "/api/v1/constructs",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	respond(c, gin.H{
		"status":  "ok",
		"sources": s.registry.Names(),
	})
}

func (s *Server) handleConstructs(c *gin.Context) {
	respond(c, s.generator.Catalog().Names())
}

func (s *Server) handleSources(c *gin.Context) {
	names := s.registry.Names()
	out := make([]gin.H, 0, len(names))
	for _, name := range names {
		p, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		out = append(out, gin.H{
			"name":    name,
			"type":    p.Type(),
			"default": name == s.defaultSource,
		})
	}
	respond(c, out)
}

func (s *Server) handleTables(c *gin.Context) {
	p, err := s.registry.Get(c.Param("source"))
	if err != nil {
		failErr(c, err)
		return
	}
	tables, err := p.ListTables(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, tables)
}

func (s *Server) handleTable(c *gin.Context) {
	p, err := s.registry.Get(c.Param("source"))
	if err != nil {
		failErr(c, err)
		return
	}
	table, err := p.DescribeTable(c.Request.Context(), c.Param("table"))
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, TableDetail{Table: *table, Classification: schema.Classify(*table)})
}

func (s *Server) handleParseSchema(c *gin.Context) {
	var req ParseSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "잘못된 요청: "+err.Error())
		return
	}

	input := req.DDL
	if input == "" {
		input = req.JSON
	}
	if strings.TrimSpace(input) == "" {
		fail(c, http.StatusBadRequest, "ddl 또는 json 중 하나가 필요합니다")
		return
	}

	dbType := models.DBType(req.DBType)
	if dbType == "" {
		dbType = models.MySQL
	}
	parsed, err := s.parser.Parse([]byte(input), dbType)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if parsed.DBType == "" {
		parsed.DBType = dbType
	}

	s.registry.Register(req.Name, db.NewStaticProvider(parsed))
	s.logger.Info("스키마 등록",
		slog.String("source", req.Name),
		slog.Int("tables", len(parsed.Tables)))
	respond(c, parsed)
}

func (s *Server) handleNLQuery(c *gin.Context) {
	var req NLQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "잘못된 요청: "+err.Error())
		return
	}

	table, dbType, err := s.resolveTable(c.Request.Context(), req.Source, req.TableName, req.Columns)
	if err != nil {
		failErr(c, err)
		return
	}
	dialect, err := resolveDialect(req.Dialect, dbType)
	if err != nil {
		failErr(c, err)
		return
	}

	result, err := s.generator.MatchAndGenerate(req.Text, table, dialect)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, result)
}

func (s *Server) handleSampleQueries(c *gin.Context) {
	var req SampleQueriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "잘못된 요청: "+err.Error())
		return
	}
	ctx := c.Request.Context()

	table, dbType, err := s.resolveTable(ctx, req.Source, req.TableName, req.Columns)
	if err != nil {
		failErr(c, err)
		return
	}
	dialect, err := resolveDialect(req.Dialect, dbType)
	if err != nil {
		failErr(c, err)
		return
	}
	var related []models.Table
	if s.generator.NeedsRelated(req.Constructs) {
		related = s.resolveRelated(ctx, req.Source, table.Name, req.Related, len(req.Columns) > 0)
	}

	samples, err := s.generator.GenerateSamples(models.SampleRequest{
		Table:      table,
		Related:    related,
		Dialect:    dialect,
		Constructs: req.Constructs,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, samples)
}

// resolveTable 요청의 컬럼 목록 또는 소스에서 테이블 정보 조회
func (s *Server) resolveTable(ctx context.Context, source, name string, columns []string) (models.Table, models.DBType, error) {
	if len(columns) > 0 {
		return models.TableFromNames(name, columns), "", nil
	}
	p, err := s.source(source)
	if err != nil {
		return models.Table{}, "", err
	}
	t, err := p.DescribeTable(ctx, name)
	if err != nil {
		return models.Table{}, "", err
	}
	return *t, p.Type(), nil
}

// resolveRelated 조인 후보용 다른 테이블
// 요청에 related 가 있으면 그대로 쓰고, 없으면 소스의 나머지 테이블을 조회한다.
// 조회하지 못한 테이블은 로그만 남기고 뺀다. 그 경우 조인 샘플만 건너뛴다.
func (s *Server) resolveRelated(ctx context.Context, source, base string, specs []TableSpec, inline bool) []models.Table {
	if len(specs) > 0 || inline {
		out := make([]models.Table, len(specs))
		for i, spec := range specs {
			out[i] = models.TableFromNames(spec.Name, spec.Columns)
		}
		return out
	}

	p, err := s.source(source)
	if err != nil {
		return nil
	}
	names, err := p.ListTables(ctx)
	if err != nil {
		s.logger.Warn("관련 테이블 목록 조회 실패", slog.String("source", source), slog.Any("error", err))
		return nil
	}
	others := make([]string, 0, len(names))
	for _, n := range names {
		if !strings.EqualFold(n, base) {
			others = append(others, n)
		}
	}
	tables, failed := db.DescribeEach(ctx, p, others)
	for name, err := range failed {
		s.logger.Warn("관련 테이블 조회 실패", slog.String("table", name), slog.Any("error", err))
	}
	return tables
}

// source 이름이 비어 있으면 기본 소스
func (s *Server) source(name string) (db.Provider, error) {
	if name == "" {
		name = s.defaultSource
	}
	if name == "" {
		return nil, fmt.Errorf("%w: source 또는 columns 가 필요합니다", db.ErrSourceNotFound)
	}
	return s.registry.Get(name)
}

// resolveDialect 요청 값이 없으면 소스 종류의 기본 방언
func resolveDialect(requested string, dbType models.DBType) (models.Dialect, error) {
	if requested == "" {
		return models.DialectFor(dbType), nil
	}
	d, ok := models.ParseDialect(requested)
	if !ok {
		return "", fmt.Errorf("%w: %s", render.ErrUnsupportedDialect, requested)
	}
	return d, nil
}
