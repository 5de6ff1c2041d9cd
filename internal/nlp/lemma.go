package nlp

import "strings"

// irregularNouns 규칙으로 처리되지 않는 복수형
var irregularNouns = map[string]string{
	"people":    "person",
	"children":  "child",
	"men":       "man",
	"women":     "woman",
	"mice":      "mouse",
	"geese":     "goose",
	"feet":      "foot",
	"teeth":     "tooth",
	"indices":   "index",
	"matrices":  "matrix",
	"vertices":  "vertex",
	"criteria":  "criterion",
	"analyses":  "analysis",
	"phenomena": "phenomenon",
}

// invariantNouns 단수/복수 형태가 같은 단어
var invariantNouns = toSet("series", "species", "news", "means")

// Lemmatize 명사 기준 표제어 추출
// 영문자로만 이루어진 토큰만 변환하고, 컬럼명처럼 숫자나 밑줄이 섞인 토큰은 그대로 둔다.
func Lemmatize(token string) string {
	if len(token) <= 3 || !isAlpha(token) {
		return token
	}
	if base, ok := irregularNouns[token]; ok {
		return base
	}
	if _, ok := invariantNouns[token]; ok {
		return token
	}

	switch {
	case strings.HasSuffix(token, "ies") && len(token) > 4:
		return strings.TrimSuffix(token, "ies") + "y"
	case strings.HasSuffix(token, "sses"):
		return strings.TrimSuffix(token, "es")
	case strings.HasSuffix(token, "xes"),
		strings.HasSuffix(token, "ches"),
		strings.HasSuffix(token, "shes"),
		strings.HasSuffix(token, "zes"):
		return strings.TrimSuffix(token, "es")
	case strings.HasSuffix(token, "ss"),
		strings.HasSuffix(token, "us"),
		strings.HasSuffix(token, "is"):
		return token
	case strings.HasSuffix(token, "s"):
		return strings.TrimSuffix(token, "s")
	}
	return token
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
