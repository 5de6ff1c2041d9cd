package construct

// Matcher 정규화된 텍스트를 구문으로 분류
type Matcher struct {
	catalog *Catalog
}

// NewMatcher 분류기 생성
func NewMatcher(c *Catalog) *Matcher {
	return &Matcher{catalog: c}
}

// Match 카탈로그 순서대로 패턴을 시도해 처음 일치하는 구문 이름을 반환
// 일치하는 구문이 없으면 ok 는 false 이다.
func (m *Matcher) Match(normalized string) (name string, ok bool) {
	for _, c := range m.catalog.Constructs() {
		for _, p := range c.Patterns {
			if p.Expr.MatchString(normalized) {
				return c.Name, true
			}
		}
	}
	return "", false
}
