package construct

import (
	"errors"
	"fmt"
)

var (
	// ErrComponentExtraction 분류된 구문의 어떤 패턴으로도 슬롯을 채우지 못함
	ErrComponentExtraction = errors.New("슬롯 추출 실패")
	// ErrUnknownConstruct 카탈로그에 없는 구문 이름
	ErrUnknownConstruct = errors.New("알 수 없는 구문")
)

// ExtractionError 슬롯 추출 실패 상세
type ExtractionError struct {
	Construct string
	Text      string
	Reason    string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: construct=%q text=%q: %s", ErrComponentExtraction, e.Construct, e.Text, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return ErrComponentExtraction
}
