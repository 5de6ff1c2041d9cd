// Package query 자연어 경로와 샘플 경로를 묶은 쿼리 생성기
package query

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"chatdb/internal/construct"
	"chatdb/internal/nlp"
	"chatdb/internal/observe"
	"chatdb/internal/render"
	"chatdb/internal/synth"
	"chatdb/pkg/models"
)

// ErrEmptyText 빈 입력
var ErrEmptyText = errors.New("입력 문장이 비어 있음")

// Generator 쿼리 생성기
// 내부 구성 요소가 모두 상태를 갖지 않으므로 여러 요청에서 같이 써도 된다.
type Generator struct {
	catalog     *construct.Catalog
	normalizer  *nlp.Normalizer
	matcher     *construct.Matcher
	extractor   *construct.Extractor
	synthesizer *synth.Synthesizer
	logger      *slog.Logger
	metrics     *observe.Metrics
	seed        uint64
}

// Option 생성기 옵션
type Option func(*Generator)

// WithLogger 단계별 로그 출력 대상
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithMetrics 지표 기록
func WithMetrics(m *observe.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithSeed 0 이 아니면 샘플 생성 난수를 고정한다
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.seed = seed }
}

// NewGenerator 쿼리 생성기 생성 (catalog 가 nil 이면 기본 카탈로그)
func NewGenerator(catalog *construct.Catalog, opts ...Option) *Generator {
	if catalog == nil {
		catalog = construct.Default()
	}
	g := &Generator{
		catalog:     catalog,
		normalizer:  nlp.NewNormalizer(),
		matcher:     construct.NewMatcher(catalog),
		extractor:   construct.NewExtractor(catalog),
		synthesizer: synth.New(catalog),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = observe.OrDiscard(g.logger)
	return g
}

// Catalog 사용 중인 구문 카탈로그
func (g *Generator) Catalog() *construct.Catalog {
	return g.catalog
}

// MatchAndGenerate 자연어 문장을 분류하고 슬롯을 추출해 쿼리로 렌더링
// 어떤 구문과도 일치하지 않으면 오류 없이 MatchedConstruct 와 Query 가 nil 인 결과를 돌려준다.
func (g *Generator) MatchAndGenerate(text string, table models.Table, dialect models.Dialect) (*models.MatchResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if dialect == "" {
		dialect = models.DialectSQL
	}
	if !slices.Contains(models.Dialects, dialect) {
		return nil, fmt.Errorf("%w: %s", render.ErrUnsupportedDialect, dialect)
	}

	normalized := g.normalizer.Normalize(text)
	result := &models.MatchResult{
		Dialect:    dialect,
		Normalized: normalized.String(),
	}

	name, ok := g.matcher.Match(result.Normalized)
	g.metrics.ObserveMatch(name, ok)
	if !ok {
		g.logger.Info("일치하는 구문 없음", slog.String("normalized", result.Normalized))
		return result, nil
	}
	g.logger.Debug("구문 분류", slog.String("construct", name), slog.String("normalized", result.Normalized))

	values, err := g.extractor.Extract(normalized.Original, name)
	if err != nil {
		g.metrics.ObserveExtractionFailure(name)
		g.logger.Warn("슬롯 추출 실패", slog.String("construct", name), slog.Any("error", err))
		return nil, err
	}

	c, err := g.catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	rendered, err := render.Render(c, values, table.Name, dialect)
	if err != nil {
		g.logger.Error("쿼리 렌더링 실패", slog.String("construct", name), slog.Any("error", err))
		return nil, fmt.Errorf("쿼리 렌더링 실패: %w", err)
	}

	result.MatchedConstruct = &name
	result.Query = &rendered
	result.Slots = values.Flat()
	result.UnknownColumns = unknownColumns(values, table)

	if len(result.UnknownColumns) > 0 {
		g.logger.Info("테이블에 없는 컬럼 참조",
			slog.String("table", table.Name),
			slog.Any("columns", result.UnknownColumns))
	}
	return result, nil
}

// unknownColumns 컬럼 슬롯 값 중 테이블에 없는 이름 (정렬, 컬럼 정보가 없으면 검사하지 않음)
func unknownColumns(values construct.SlotValues, table models.Table) []string {
	if len(table.Columns) == 0 {
		return nil
	}

	var out []string
	seen := map[string]bool{}
	for slot, vals := range values {
		if !construct.IsColumnSlot(slot) {
			continue
		}
		for _, v := range vals {
			key := strings.ToLower(v)
			if seen[key] || table.HasColumn(v) {
				continue
			}
			seen[key] = true
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

// GenerateSamples 요청한 구문마다 샘플 (자연어 설명, 쿼리) 쌍 생성
// 구문 하나를 채우지 못하면 건너뛰고 나머지를 계속 만든다.
func (g *Generator) GenerateSamples(req models.SampleRequest) ([]models.SampleQuery, error) {
	if req.Dialect == "" {
		req.Dialect = models.DialectSQL
	}
	if !slices.Contains(models.Dialects, req.Dialect) {
		return nil, fmt.Errorf("%w: %s", render.ErrUnsupportedDialect, req.Dialect)
	}

	report, err := g.synthesizer.Synthesize(g.newRand(), req)
	if err != nil {
		return nil, fmt.Errorf("샘플 생성 실패: %w", err)
	}

	for _, s := range report.Samples {
		g.metrics.ObserveSample(s.Construct, false)
	}
	for _, skip := range report.Skipped {
		g.metrics.ObserveSample(skip.Construct, true)
		g.logger.Info("샘플 건너뜀",
			slog.String("construct", skip.Construct),
			slog.String("table", req.Table.Name),
			slog.Any("error", skip.Err))
	}
	return report.Samples, nil
}

// NeedsRelated 구문 필터에 다른 테이블이 필요한 구문(조인)이 들어 있는지 확인
// 필터가 잘못되면 false 를 돌려주고, 그 오류는 GenerateSamples 가 보고한다.
func (g *Generator) NeedsRelated(constructs []string) bool {
	selected, err := g.catalog.Filter(constructs)
	if err != nil {
		return false
	}
	return slices.ContainsFunc(selected, func(c *construct.Construct) bool {
		return c.HasSlot(construct.SlotJoinTable)
	})
}

// JoinCandidates 기준 테이블과 관련 테이블 사이의 조인 후보
func (g *Generator) JoinCandidates(base models.Table, related ...models.Table) []models.JoinCandidate {
	return synth.JoinCandidates(base, related...)
}

func (g *Generator) newRand() *rand.Rand {
	if g.seed != 0 {
		return rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
