// Package construct 쿼리 구문 카탈로그, 구문 분류기, 슬롯 추출기
//
// 구문(Construct)은 인식 패턴, 캡처 그룹 → 슬롯 바인딩, 방언별 쿼리 템플릿,
// 샘플 생성용 자연어 템플릿을 한 곳에 선언한다. 카탈로그 순서가 곧 분류 우선순위다.
package construct

import (
	"fmt"
	"regexp"
	"strings"

	"chatdb/pkg/models"
)

// Binding 캡처 그룹 → 슬롯
type Binding struct {
	Slot     Slot
	Group    int
	Fallback int                 // Group 이 비어 있을 때 대신 쓸 그룹 (0 이면 없음)
	Post     func(string) string // 값 후처리
	List     bool                // 콤마 목록으로 분리
}

// Pattern 인식 패턴 하나와 그 바인딩
type Pattern struct {
	Expr     *regexp.Regexp
	Bindings []Binding
}

// Inference 캡처가 아닌 원문 전체에서 값을 정하는 슬롯
type Inference struct {
	Slot  Slot
	Infer func(original string) string
}

// Comparison 샘플 생성 시 연산자/값 범위
type Comparison struct {
	Operators []string
	Min, Max  int
}

// Sample 샘플 쿼리 변형
// Fixed 에 있는 슬롯은 스키마에서 고르지 않고 고정값을 쓴다.
type Sample struct {
	Gloss      Template
	Fixed      map[Slot]string
	Comparison *Comparison
}

// Construct 쿼리 구문 정의
type Construct struct {
	Name      string
	Slots     []Slot
	Patterns  []Pattern
	Inferred  []Inference
	Templates map[models.Dialect]Template
	Samples   []Sample
}

// HasSlot 구문이 슬롯을 선언했는지 여부
func (c *Construct) HasSlot(s Slot) bool {
	for _, slot := range c.Slots {
		if slot == s {
			return true
		}
	}
	return false
}

// Template 방언 템플릿 조회
func (c *Construct) Template(d models.Dialect) (Template, bool) {
	t, ok := c.Templates[d]
	return t, ok
}

// Catalog 구문 목록 (선언 순서 = 우선순위)
type Catalog struct {
	constructs []*Construct
	byName     map[string]*Construct
}

// NewCatalog 검증 후 카탈로그 생성
func NewCatalog(constructs ...*Construct) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]*Construct, len(constructs))}
	for _, con := range constructs {
		if err := validate(con); err != nil {
			return nil, err
		}
		key := strings.ToLower(con.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("구문 이름 중복: %s", con.Name)
		}
		c.byName[key] = con
		c.constructs = append(c.constructs, con)
	}
	return c, nil
}

// MustCatalog NewCatalog 실패 시 panic
func MustCatalog(constructs ...*Construct) *Catalog {
	c, err := NewCatalog(constructs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Constructs 우선순위 순서의 구문 목록
func (c *Catalog) Constructs() []*Construct {
	return c.constructs
}

// Names 구문 이름 목록
func (c *Catalog) Names() []string {
	names := make([]string, len(c.constructs))
	for i, con := range c.constructs {
		names[i] = con.Name
	}
	return names
}

// Lookup 이름으로 구문 조회 (대소문자 무시)
func (c *Catalog) Lookup(name string) (*Construct, error) {
	con, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConstruct, name)
	}
	return con, nil
}

// Filter 이름 목록에 해당하는 구문 (카탈로그 순서 유지)
// 목록이 비었거나 "all" 이 있으면 전체를 돌려준다.
func (c *Catalog) Filter(names []string) ([]*Construct, error) {
	if len(names) == 0 {
		return c.constructs, nil
	}
	want := make(map[*Construct]bool, len(names))
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), "all") {
			return c.constructs, nil
		}
		con, err := c.Lookup(name)
		if err != nil {
			return nil, err
		}
		want[con] = true
	}
	out := make([]*Construct, 0, len(want))
	for _, con := range c.constructs {
		if want[con] {
			out = append(out, con)
		}
	}
	return out, nil
}
