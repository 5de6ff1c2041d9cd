package construct

import (
	"fmt"
	"slices"
	"strings"

	"chatdb/pkg/models"
)

// validate 구문 정의 정합성 검사
//   - 모든 방언 템플릿 존재, 방언 간 자리 표시자 집합 동일
//   - 템플릿 자리 표시자 ⊆ 선언된 슬롯 ∪ {table}
//   - 패턴마다 (바인딩 슬롯 ∪ 추론 슬롯) = 선언된 슬롯
func validate(c *Construct) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("구문 이름이 비어 있음")
	}
	if len(c.Patterns) == 0 {
		return fmt.Errorf("구문 %q: 인식 패턴 없음", c.Name)
	}

	declared := map[string]bool{PlaceholderTable: true}
	for _, s := range c.Slots {
		declared[string(s)] = true
	}

	var reference []string
	for i, d := range models.Dialects {
		t, ok := c.Templates[d]
		if !ok {
			return fmt.Errorf("구문 %q: %s 템플릿 없음", c.Name, d)
		}
		if err := checkTemplate(c.Name, string(d), t, declared); err != nil {
			return err
		}
		ph := t.Placeholders()
		if i == 0 {
			reference = ph
		} else if !slices.Equal(reference, ph) {
			return fmt.Errorf("구문 %q: 방언 간 자리 표시자 불일치 %v / %v", c.Name, reference, ph)
		}
	}

	inferred := map[Slot]bool{}
	for _, inf := range c.Inferred {
		inferred[inf.Slot] = true
	}
	for i, p := range c.Patterns {
		bound := map[Slot]bool{}
		for _, b := range p.Bindings {
			if b.Group < 1 || b.Group > p.Expr.NumSubexp() || b.Fallback > p.Expr.NumSubexp() {
				return fmt.Errorf("구문 %q 패턴 %d: 슬롯 %s 의 그룹 번호가 범위를 벗어남", c.Name, i, b.Slot)
			}
			bound[b.Slot] = true
		}
		for _, s := range c.Slots {
			if !bound[s] && !inferred[s] {
				return fmt.Errorf("구문 %q 패턴 %d: 슬롯 %s 가 채워지지 않음", c.Name, i, s)
			}
		}
		for s := range bound {
			if !c.HasSlot(s) {
				return fmt.Errorf("구문 %q 패턴 %d: 선언되지 않은 슬롯 %s", c.Name, i, s)
			}
		}
	}

	for i, s := range c.Samples {
		if err := checkTemplate(c.Name, fmt.Sprintf("sample[%d]", i), s.Gloss, declared); err != nil {
			return err
		}
		for slot := range s.Fixed {
			if !c.HasSlot(slot) {
				return fmt.Errorf("구문 %q sample[%d]: 선언되지 않은 고정 슬롯 %s", c.Name, i, slot)
			}
		}
	}
	return nil
}

func checkTemplate(construct, label string, t Template, declared map[string]bool) error {
	for _, ph := range t.Placeholders() {
		if !declared[ph] {
			return fmt.Errorf("구문 %q %s: 선언되지 않은 자리 표시자 {%s}", construct, label, ph)
		}
	}
	for slot := range t.Format {
		if !declared[string(slot)] {
			return fmt.Errorf("구문 %q %s: 선언되지 않은 슬롯 포맷터 %s", construct, label, slot)
		}
	}
	return nil
}
