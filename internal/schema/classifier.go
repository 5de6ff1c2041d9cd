package schema

import (
	"encoding/json"
	"strings"

	"chatdb/pkg/models"
)

// 분류 근거
const (
	SourceType      = "type"
	SourceSample    = "sample"
	SourceHeuristic = "heuristic"
)

// numericTypes 숫자형으로 보는 기본 타입 이름 (괄호, 부호 수식어 제거 후 비교)
var numericTypes = map[string]bool{
	"tinyint": true, "smallint": true, "mediumint": true, "int": true, "integer": true, "bigint": true,
	"int2": true, "int4": true, "int8": true, "long": true,
	"decimal": true, "dec": true, "numeric": true, "number": true,
	"float": true, "float4": true, "float8": true, "double": true, "real": true,
	"binary_float": true, "binary_double": true,
	"money": true, "smallmoney": true,
	"serial": true, "smallserial": true, "bigserial": true,
}

// numericSuffixes 타입 정보가 없을 때 숫자형으로 보는 컬럼 이름 접미사
var numericSuffixes = []string{"amount", "qty", "price", "num", "count", "total"}

// IsNumericType 엔진이 보고한 타입 이름이 숫자형인지 확인
// "int(11) unsigned", "DOUBLE PRECISION", "NUMBER(10,2)" 처럼 수식어가 붙어도 기본 이름으로 판단한다.
func IsNumericType(typeName string) bool {
	base := strings.ToLower(strings.TrimSpace(typeName))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = base[:i]
	}
	if fields := strings.Fields(base); len(fields) > 0 {
		base = fields[0]
	}
	return numericTypes[base]
}

// IsNumericValue 샘플 값이 숫자인지 확인
func IsNumericValue(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	default:
		return false
	}
}

// IsNumericName 컬럼 이름 접미사로 숫자형 추정
func IsNumericName(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range numericSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// Classify 컬럼을 숫자형/범주형으로 분류
//
// 컬럼마다 타입 정보 → 샘플 값 → 이름 접미사 순서로 판단한다.
// 한쪽이 비면 전체 컬럼을 그 쪽 후보로 쓰고 fallback 플래그를 남긴다.
func Classify(table models.Table) models.Classification {
	result := models.Classification{
		Numeric:     []string{},
		Categorical: []string{},
		Source:      classificationSource(table),
	}
	if len(table.Columns) == 0 {
		return result
	}

	for _, col := range table.Columns {
		if isNumericColumn(col, table.Sample) {
			result.Numeric = append(result.Numeric, col.Name)
		} else {
			result.Categorical = append(result.Categorical, col.Name)
		}
	}

	if len(result.Numeric) == 0 {
		result.Numeric = table.ColumnNames()
		result.NumericFallback = true
	}
	if len(result.Categorical) == 0 {
		result.Categorical = table.ColumnNames()
		result.CategoricalFallback = true
	}
	return result
}

func isNumericColumn(col models.Column, sample map[string]any) bool {
	if col.Type != "" {
		return IsNumericType(col.Type)
	}
	if v, ok := sample[col.Name]; ok && v != nil {
		return IsNumericValue(v)
	}
	return IsNumericName(col.Name)
}

func classificationSource(table models.Table) string {
	for _, col := range table.Columns {
		if col.Type != "" {
			return SourceType
		}
	}
	if len(table.Sample) > 0 {
		return SourceSample
	}
	return SourceHeuristic
}
