// Package synth 스키마에서 (자연어 설명, 쿼리) 샘플 쌍을 생성한다
package synth

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"

	"chatdb/internal/construct"
	"chatdb/internal/render"
	"chatdb/internal/schema"
	"chatdb/pkg/models"
)

var (
	// ErrEmptySchemaPool 슬롯을 채울 컬럼이 없음
	ErrEmptySchemaPool = errors.New("선택할 컬럼 없음")
	// ErrJoinKeyNotFound 조인 후보 없음
	ErrJoinKeyNotFound = errors.New("조인 키 후보 없음")
)

const (
	minLimit, maxLimit           = 3, 10
	minProjection, maxProjection = 2, 4
	placeholderLiteral           = "sample"
)

// Skip 건너뛴 구문과 사유
type Skip struct {
	Construct string
	Err       error
}

// Report 생성 결과
type Report struct {
	Samples []models.SampleQuery
	Skipped []Skip
}

// Synthesizer 샘플 쿼리 생성기
// 상태가 없으므로 여러 고루틴에서 같이 써도 된다. 난수 소스는 호출마다 넘긴다.
type Synthesizer struct {
	catalog *construct.Catalog
}

// New 생성기 생성
func New(c *construct.Catalog) *Synthesizer {
	return &Synthesizer{catalog: c}
}

// Synthesize 구문마다 슬롯 값을 한 번 골라 쿼리와 자연어 설명을 함께 렌더링
// 구문 하나가 실패해도 나머지는 계속 생성한다. 알 수 없는 구문 이름만 오류로 돌려준다.
func (s *Synthesizer) Synthesize(rng *rand.Rand, req models.SampleRequest) (*Report, error) {
	constructs, err := s.catalog.Filter(req.Constructs)
	if err != nil {
		return nil, err
	}

	cls := schema.Classify(req.Table)
	report := &Report{Samples: []models.SampleQuery{}}

	for _, c := range constructs {
		for _, variant := range c.Samples {
			sample, err := s.synthesizeOne(rng, c, variant, req, cls)
			if err != nil {
				report.Skipped = append(report.Skipped, Skip{Construct: c.Name, Err: err})
				continue
			}
			report.Samples = append(report.Samples, *sample)
		}
	}
	return report, nil
}

func (s *Synthesizer) synthesizeOne(rng *rand.Rand, c *construct.Construct, variant construct.Sample, req models.SampleRequest, cls models.Classification) (*models.SampleQuery, error) {
	values, err := fill(rng, c, variant, req, cls)
	if err != nil {
		return nil, err
	}

	query, err := render.Render(c, values, req.Table.Name, req.Dialect)
	if err != nil {
		return nil, err
	}
	gloss, err := render.Template(variant.Gloss, values, req.Table.Name)
	if err != nil {
		return nil, fmt.Errorf("자연어 설명 렌더링 실패: %w", err)
	}

	return &models.SampleQuery{
		Construct:       c.Name,
		NaturalLanguage: gloss,
		Query:           query,
		Dialect:         req.Dialect,
	}, nil
}

// fill 구문이 선언한 슬롯을 스키마에서 고른 값으로 채운다
func fill(rng *rand.Rand, c *construct.Construct, variant construct.Sample, req models.SampleRequest, cls models.Classification) (construct.SlotValues, error) {
	values := construct.SlotValues{}
	all := req.Table.ColumnNames()

	for _, slot := range c.Slots {
		if values.Has(slot) {
			continue
		}
		if v, ok := variant.Fixed[slot]; ok {
			values.Set(slot, v)
			continue
		}

		switch slot {
		case construct.SlotAggregate, construct.SlotOrderBy:
			col, err := pick(rng, cls.Numeric)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", slot, err)
			}
			values.Set(slot, col)

		case construct.SlotGroupBy:
			col, err := pick(rng, cls.Categorical)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", slot, err)
			}
			values.Set(slot, col)

		case construct.SlotColumn:
			col, err := pick(rng, all)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", slot, err)
			}
			values.Set(slot, col)

		case construct.SlotLimit:
			values.Set(slot, strconv.Itoa(between(rng, minLimit, maxLimit)))

		case construct.SlotOperator, construct.SlotValue:
			op, val := comparison(rng, variant.Comparison, values, cls)
			values.Set(construct.SlotOperator, op)
			values.Set(construct.SlotValue, val)

		case construct.SlotColumns:
			cols, err := subset(rng, all)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", slot, err)
			}
			values.SetList(slot, cols)

		case construct.SlotJoinTable, construct.SlotLeftKey, construct.SlotRightKey:
			candidates := JoinCandidates(req.Table, req.Related...)
			if len(candidates) == 0 {
				return nil, ErrJoinKeyNotFound
			}
			jc := candidates[rng.IntN(len(candidates))]
			values.Set(construct.SlotJoinTable, jc.RightTable)
			values.Set(construct.SlotLeftKey, jc.LeftColumn)
			values.Set(construct.SlotRightKey, jc.RightColumn)

		default:
			return nil, fmt.Errorf("채울 수 없는 슬롯: %s", slot)
		}
	}
	return values, nil
}

// comparison 연산자와 값 생성
// 필터 대상 컬럼이 숫자형이 아니면 "=" 과 고정 리터럴을 쓴다.
func comparison(rng *rand.Rand, spec *construct.Comparison, values construct.SlotValues, cls models.Classification) (string, string) {
	if spec == nil || len(spec.Operators) == 0 {
		return "=", placeholderLiteral
	}
	if col := values.Get(construct.SlotColumn); col != "" && !isNumeric(col, cls) {
		return "=", placeholderLiteral
	}
	op := spec.Operators[rng.IntN(len(spec.Operators))]
	return op, strconv.Itoa(between(rng, spec.Min, spec.Max))
}

func isNumeric(col string, cls models.Classification) bool {
	return !cls.NumericFallback && slices.Contains(cls.Numeric, col)
}

func pick(rng *rand.Rand, pool []string) (string, error) {
	if len(pool) == 0 {
		return "", ErrEmptySchemaPool
	}
	return pool[rng.IntN(len(pool))], nil
}

// subset 2~4개 (컬럼 수 이하) 컬럼을 중복 없이 무작위 순서로 선택
func subset(rng *rand.Rand, pool []string) ([]string, error) {
	if len(pool) == 0 {
		return nil, ErrEmptySchemaPool
	}
	size := min(between(rng, minProjection, maxProjection), len(pool))
	perm := rng.Perm(len(pool))[:size]
	out := make([]string, size)
	for i, idx := range perm {
		out[i] = pool[idx]
	}
	return out, nil
}

func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}
