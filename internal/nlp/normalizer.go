// Package nlp 자연어 입력 정규화 (토큰화, 불용어 제거, 표제어 추출)
package nlp

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// tokenPattern 음수, 단어, 비교 연산 기호, 그 밖의 문장 부호 한 글자
var tokenPattern = regexp.MustCompile(`-[0-9]+(?:\.[0-9]+)?|[A-Za-z0-9_]+(?:\.[0-9]+)?|>=|<=|!=|<>|[^\sA-Za-z0-9_]`)

// NormalizedText 정규화 결과
// 구문 분류는 Tokens 로 하고, 슬롯 추출은 Original 로 한다.
type NormalizedText struct {
	Original string
	Tokens   []string
}

// String 토큰을 공백으로 이어 붙인 문자열
func (n NormalizedText) String() string {
	return strings.Join(n.Tokens, " ")
}

// Normalizer 텍스트 정규화기
type Normalizer struct{}

// NewNormalizer 정규화기 생성
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize 소문자 변환, 토큰화, 불용어 제거, 표제어 추출
func (n *Normalizer) Normalize(text string) NormalizedText {
	lower := cases.Lower(language.English).String(text)

	raw := Tokenize(lower)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if IsStopword(tok) {
			continue
		}
		tokens = append(tokens, Lemmatize(tok))
	}
	return NormalizedText{Original: text, Tokens: tokens}
}

// Tokenize 단어/기호 단위로 분리
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}
