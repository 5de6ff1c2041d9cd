package construct

import (
	"regexp"
	"sort"
	"strings"
)

// Operator 비교 연산자의 방언별 표현
type Operator struct {
	Symbol string // SQL
	Mongo  string
	Phrase string // 자연어 설명
}

// operators 정규 SQL 기호 → 연산자
var operators = map[string]Operator{
	">":  {Symbol: ">", Mongo: "$gt", Phrase: "greater than"},
	"<":  {Symbol: "<", Mongo: "$lt", Phrase: "less than"},
	">=": {Symbol: ">=", Mongo: "$gte", Phrase: "greater than or equal to"},
	"<=": {Symbol: "<=", Mongo: "$lte", Phrase: "less than or equal to"},
	"=":  {Symbol: "=", Mongo: "$eq", Phrase: "equal to"},
	"!=": {Symbol: "!=", Mongo: "$ne", Phrase: "not equal to"},
}

// operatorPhrases 인식하는 표현 → 정규 SQL 기호
// 패턴의 연산자 그룹은 이 표에서 만들어지므로 인식되는 표현은 모두 매핑을 가진다.
var operatorPhrases = map[string]string{
	"greater than or equal to": ">=",
	"at least":                 ">=",
	">=":                       ">=",
	"less than or equal to":    "<=",
	"at most":                  "<=",
	"<=":                       "<=",
	"greater than":             ">",
	"more than":                ">",
	"greater":                  ">",
	"more":                     ">",
	"above":                    ">",
	">":                        ">",
	"less than":                "<",
	"fewer than":               "<",
	"less":                     "<",
	"below":                    "<",
	"<":                        "<",
	"not equal to":             "!=",
	"not":                      "!=",
	"!=":                       "!=",
	"<>":                       "!=",
	"equal to":                 "=",
	"equals":                   "=",
	"equal":                    "=",
	"is":                       "=",
	"=":                        "=",
}

var spaceRun = regexp.MustCompile(`\s+`)

// OperatorSymbol 연산자 표현을 정규 SQL 기호로 변환
// 알 수 없는 표현은 "=" 로 처리한다.
func OperatorSymbol(phrase string) string {
	key := spaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(phrase)), " ")
	if sym, ok := operatorPhrases[key]; ok {
		return sym
	}
	return "="
}

// LookupOperator 정규 기호로 연산자 조회
func LookupOperator(symbol string) (Operator, bool) {
	op, ok := operators[symbol]
	return op, ok
}

// operatorExpr 연산자 표현 하나를 잡는 캡처 그룹
// 긴 표현이 먼저 오도록 정렬해서 "greater than or equal to" 가 "greater" 보다 우선한다.
var operatorExpr = buildOperatorExpr()

func buildOperatorExpr() string {
	var words, symbols []string
	for phrase := range operatorPhrases {
		if isWordPhrase(phrase) {
			words = append(words, phrase)
		} else {
			symbols = append(symbols, phrase)
		}
	}
	byLength := func(list []string) {
		sort.Slice(list, func(i, j int) bool {
			if len(list[i]) != len(list[j]) {
				return len(list[i]) > len(list[j])
			}
			return list[i] < list[j]
		})
	}
	byLength(words)
	byLength(symbols)

	wordAlts := make([]string, 0, len(words))
	for _, w := range words {
		wordAlts = append(wordAlts, strings.ReplaceAll(w, " ", `\s+`))
	}
	wordAlt := `(?:` + strings.Join(wordAlts, "|") + `)\b`

	symAlts := make([]string, 0, len(symbols))
	for _, s := range symbols {
		symAlts = append(symAlts, regexp.QuoteMeta(s))
	}
	return `(` + wordAlt + `|` + strings.Join(symAlts, "|") + `)`
}

func isWordPhrase(s string) bool {
	for _, r := range s {
		if r != ' ' && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
