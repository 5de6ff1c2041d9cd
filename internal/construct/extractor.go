package construct

import (
	"fmt"
	"strings"
)

// Extractor 원문에서 슬롯 값 추출
type Extractor struct {
	catalog *Catalog
}

// NewExtractor 추출기 생성
func NewExtractor(c *Catalog) *Extractor {
	return &Extractor{catalog: c}
}

// Extract 구문의 패턴을 선언 순서대로 원문에 적용해 처음 성공한 패턴의 슬롯 값을 반환
// 분류는 정규화된 텍스트로 하므로 분류된 구문이라도 원문에서 실패할 수 있다.
func (e *Extractor) Extract(original, name string) (SlotValues, error) {
	c, err := e.catalog.Lookup(name)
	if err != nil {
		return nil, err
	}

	for _, p := range c.Patterns {
		m := p.Expr.FindStringSubmatch(original)
		if m == nil {
			continue
		}
		values, ok := bindAll(p, m)
		if !ok {
			continue
		}
		for _, inf := range c.Inferred {
			values.Set(inf.Slot, inf.Infer(original))
		}
		return values, nil
	}

	return nil, &ExtractionError{
		Construct: c.Name,
		Text:      original,
		Reason:    fmt.Sprintf("%d개 패턴 모두 불일치", len(c.Patterns)),
	}
}

// bindAll 캡처 그룹을 슬롯에 배정, 필요한 그룹이 비어 있으면 false
func bindAll(p Pattern, m []string) (SlotValues, bool) {
	values := make(SlotValues, len(p.Bindings))
	for _, b := range p.Bindings {
		captured := strings.TrimSpace(m[b.Group])
		if captured == "" && b.Fallback > 0 {
			captured = strings.TrimSpace(m[b.Fallback])
		}
		if captured == "" {
			return nil, false
		}
		if b.Post != nil {
			captured = b.Post(captured)
		}
		if b.List {
			list := SplitColumns(captured)
			if len(list) == 0 {
				return nil, false
			}
			values.SetList(b.Slot, list)
			continue
		}
		values.Set(b.Slot, captured)
	}
	return values, true
}
