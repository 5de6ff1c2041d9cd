package construct

import (
	"regexp"
	"sort"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Formatter 슬롯 값을 템플릿에 들어갈 문자열로 변환
type Formatter func(values []string) string

// Template 방언별 쿼리 템플릿
// Format 에 등록되지 않은 슬롯은 값을 ", " 로 이어 그대로 넣는다.
type Template struct {
	Text   string
	Format map[Slot]Formatter
}

// Placeholders 템플릿이 참조하는 자리 표시자 이름 (중복 제거, 정렬)
func (t Template) Placeholders() []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(t.Text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// Expand 자리 표시자마다 resolve 결과를 넣는다
// resolve 가 false 를 돌려주면 해당 자리 이름을 missing 으로 모아 반환한다.
func (t Template) Expand(resolve func(name string) (string, bool)) (string, []string) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(t.Text, func(token string) string {
		name := token[1 : len(token)-1]
		value, ok := resolve(name)
		if !ok {
			missing = append(missing, name)
			return token
		}
		return value
	})
	return out, missing
}
