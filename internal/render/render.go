// Package render 구문 템플릿에 슬롯 값을 넣어 방언별 쿼리를 만든다
package render

import (
	"errors"
	"fmt"
	"strings"

	"chatdb/internal/construct"
	"chatdb/pkg/models"
)

var (
	// ErrMissingPlaceholder 템플릿이 참조하는 슬롯 값이 없음
	ErrMissingPlaceholder = errors.New("슬롯 값 누락")
	// ErrUnsupportedDialect 템플릿이 없는 방언
	ErrUnsupportedDialect = errors.New("지원하지 않는 방언")
)

// MissingPlaceholderError 누락된 자리 표시자 상세
type MissingPlaceholderError struct {
	Construct   string
	Dialect     models.Dialect
	Placeholder string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("%s: construct=%q dialect=%s placeholder={%s}", ErrMissingPlaceholder, e.Construct, e.Dialect, e.Placeholder)
}

func (e *MissingPlaceholderError) Unwrap() error {
	return ErrMissingPlaceholder
}

// Render 구문의 방언 템플릿 렌더링
func Render(c *construct.Construct, values construct.SlotValues, table string, dialect models.Dialect) (string, error) {
	t, ok := c.Template(dialect)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDialect, dialect)
	}
	out, err := Template(t, values, table)
	if err != nil {
		var mp *MissingPlaceholderError
		if errors.As(err, &mp) {
			mp.Construct = c.Name
			mp.Dialect = dialect
		}
		return "", err
	}
	return out, nil
}

// Template 템플릿 하나 렌더링 (샘플 자연어 템플릿에도 사용)
// 자리 표시자를 모두 채운 뒤 한 번에 치환하므로 값 안의 중괄호는 다시 해석되지 않는다.
func Template(t construct.Template, values construct.SlotValues, table string) (string, error) {
	out, missing := t.Expand(func(name string) (string, bool) {
		if name == construct.PlaceholderTable {
			return table, true
		}
		slot := construct.Slot(name)
		vals, ok := values[slot]
		if !ok {
			return "", false
		}
		if f, ok := t.Format[slot]; ok {
			return f(vals), true
		}
		return strings.Join(vals, ", "), true
	})
	if len(missing) > 0 {
		return "", &MissingPlaceholderError{Placeholder: missing[0]}
	}
	return out, nil
}
