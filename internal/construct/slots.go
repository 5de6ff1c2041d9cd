package construct

import "strings"

// Slot 템플릿 자리 표시자 이름
type Slot string

const (
	SlotAggregate Slot = "aggregate"
	SlotGroupBy   Slot = "group_by"
	SlotFunction  Slot = "function"
	SlotLimit     Slot = "limit"
	SlotOrderBy   Slot = "order_by"
	SlotColumn    Slot = "column"
	SlotOperator  Slot = "operator"
	SlotValue     Slot = "value"
	SlotColumns   Slot = "columns"
	SlotJoinTable Slot = "join_table"
	SlotLeftKey   Slot = "left_key"
	SlotRightKey  Slot = "right_key"
)

// PlaceholderTable 모든 템플릿에서 쓸 수 있는 테이블(컬렉션) 이름 자리
const PlaceholderTable = "table"

// columnSlots 값이 컬럼 이름인 슬롯
var columnSlots = map[Slot]bool{
	SlotAggregate: true,
	SlotGroupBy:   true,
	SlotOrderBy:   true,
	SlotColumn:    true,
	SlotColumns:   true,
	SlotLeftKey:   true,
}

// IsColumnSlot 슬롯 값이 기준 테이블의 컬럼 이름인지 여부
func IsColumnSlot(s Slot) bool {
	return columnSlots[s]
}

// SlotValues 슬롯 이름 → 값 목록
// 단일 값 슬롯은 원소 하나, 다중 컬럼 슬롯은 순서와 중복을 그대로 유지한다.
type SlotValues map[Slot][]string

// Set 단일 값 설정
func (v SlotValues) Set(s Slot, value string) {
	v[s] = []string{value}
}

// SetList 다중 값 설정
func (v SlotValues) SetList(s Slot, values []string) {
	v[s] = append([]string(nil), values...)
}

// Get 첫 번째 값, 없으면 빈 문자열
func (v SlotValues) Get(s Slot) string {
	if vals := v[s]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// List 전체 값 목록
func (v SlotValues) List(s Slot) []string {
	return v[s]
}

// Has 슬롯 값 존재 여부
func (v SlotValues) Has(s Slot) bool {
	_, ok := v[s]
	return ok
}

// Clone 복사본
func (v SlotValues) Clone() SlotValues {
	out := make(SlotValues, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// Flat 응답용 평탄화 (다중 값은 ", " 로 연결)
func (v SlotValues) Flat() map[string]string {
	out := make(map[string]string, len(v))
	for k, vals := range v {
		out[string(k)] = strings.Join(vals, ", ")
	}
	return out
}
