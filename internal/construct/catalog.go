package construct

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"chatdb/pkg/models"
)

// 구문 이름
const (
	GroupByAggregation = "group by with aggregation"
	GroupByCount       = "group by with count"
	OrderByLimit       = "order by with limit"
	WhereClause        = "where clause"
	HavingClause       = "having clause"
	SelectColumns      = "select columns"
	Join               = "join"
)

const valueExpr = `(-?\d+(?:\.\d+)?|'[^']*'|"[^"]*"|\w+)`

// re 대소문자 무시 패턴 컴파일 ({op}, {value} 는 공용 그룹으로 치환)
func re(expr string) *regexp.Regexp {
	expr = strings.ReplaceAll(expr, "{op}", operatorExpr)
	expr = strings.ReplaceAll(expr, "{value}", valueExpr)
	return regexp.MustCompile(`(?i)` + expr)
}

func bind(slot Slot, group int) Binding {
	return Binding{Slot: slot, Group: group}
}

var (
	// numberPattern JSON 숫자 문법 (007 같은 값은 문자열로 남긴다)
	numberPattern  = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	averagePattern = regexp.MustCompile(`(?i)\b(?:average|avg|mean)\b`)
	andSeparator   = regexp.MustCompile(`(?i)\s+and\s+`)
)

// inferFunction 원문에 평균 관련 단어가 있으면 avg, 아니면 sum
func inferFunction(original string) string {
	if averagePattern.MatchString(original) {
		return "avg"
	}
	return "sum"
}

// unquote 따옴표로 감싼 값의 따옴표 제거
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '\'' || v[0] == '"') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// SplitColumns "a, b and c" → [a b c] (순서와 중복 유지)
func SplitColumns(s string) []string {
	s = andSeparator.ReplaceAllString(s, ",")
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if len(part) > 4 && strings.EqualFold(part[:4], "and ") {
			part = strings.TrimSpace(part[4:])
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SQL 포맷터

func sqlLiteral(values []string) string {
	v := strings.Join(values, ", ")
	if numberPattern.MatchString(v) {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func sqlOperator(values []string) string {
	return OperatorSymbol(strings.Join(values, " "))
}

// MongoDB 포맷터

func jsonLiteral(values []string) string {
	v := strings.Join(values, ", ")
	if numberPattern.MatchString(v) {
		return v
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func mongoOperator(values []string) string {
	if op, ok := LookupOperator(OperatorSymbol(strings.Join(values, " "))); ok {
		return op.Mongo
	}
	return "$eq"
}

func mongoProjection(values []string) string {
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = fmt.Sprintf("%q: 1", v)
	}
	return strings.Join(fields, ", ")
}

// 자연어 포맷터

func glossOperator(values []string) string {
	if op, ok := LookupOperator(OperatorSymbol(strings.Join(values, " "))); ok {
		return op.Phrase
	}
	return "equal to"
}

var comparisonFormat = map[models.Dialect]map[Slot]Formatter{
	models.DialectSQL:   {SlotOperator: sqlOperator, SlotValue: sqlLiteral},
	models.DialectMongo: {SlotOperator: mongoOperator, SlotValue: jsonLiteral},
}

var glossComparison = map[Slot]Formatter{SlotOperator: glossOperator}

func groupByAggregation() *Construct {
	return &Construct{
		Name:  GroupByAggregation,
		Slots: []Slot{SlotAggregate, SlotGroupBy, SlotFunction},
		Patterns: []Pattern{
			{
				Expr:     re(`\b(?:total|sum|aggregate|average|avg|mean)\s+(?:of\s+)?(\w+)\s+(?:by|per|for\s+each|grouped\s+by|across|over|based\s+on)\s+(\w+)`),
				Bindings: []Binding{bind(SlotAggregate, 1), bind(SlotGroupBy, 2)},
			},
			{
				Expr:     re(`\b(?:group|aggregate|break\s+down)\s+(\w+)\s+(?:total|sum|average|avg)\s+(?:by|per|for\s+each|across|over)\s+(\w+)`),
				Bindings: []Binding{bind(SlotAggregate, 1), bind(SlotGroupBy, 2)},
			},
			{
				Expr:     re(`\b(?:total|sum|average|avg)\s+(\w+)\s+(?:in|for)\s+each\s+(\w+)`),
				Bindings: []Binding{bind(SlotAggregate, 1), bind(SlotGroupBy, 2)},
			},
			{
				Expr:     re(`\b(?:by|per|for|across|over)\s+(\w+)\s+(?:show|display|get)\s+(?:the\s+)?(?:total|sum|average|avg)\s+(?:of\s+)?(\w+)`),
				Bindings: []Binding{bind(SlotGroupBy, 1), bind(SlotAggregate, 2)},
			},
		},
		Inferred: []Inference{{Slot: SlotFunction, Infer: inferFunction}},
		Templates: map[models.Dialect]Template{
			models.DialectSQL: {
				Text: `SELECT {group_by}, {function}({aggregate}) AS {function}_{aggregate} FROM {table} GROUP BY {group_by}`,
			},
			models.DialectMongo: {
				Text: `db.{table}.aggregate([{"$group": {"_id": "${group_by}", "{function}_{aggregate}": {"${function}": "${aggregate}"}}}, {"$project": {"_id": 0, "{group_by}": "$_id", "{function}_{aggregate}": 1}}])`,
			},
		},
		Samples: []Sample{
			{
				Gloss: Template{Text: "Calculate the total {aggregate} grouped by {group_by}"},
				Fixed: map[Slot]string{SlotFunction: "sum"},
			},
			{
				Gloss: Template{Text: "Find the average {aggregate} for each {group_by}"},
				Fixed: map[Slot]string{SlotFunction: "avg"},
			},
		},
	}
}

func groupByCount() *Construct {
	return &Construct{
		Name:  GroupByCount,
		Slots: []Slot{SlotGroupBy},
		Patterns: []Pattern{
			{Expr: re(`\b(?:count|number\s+of|total\s+number\s+of)\s+(\w+)\s+(?:by|per|for\s+each|grouped\s+by|across|over)\s+(\w+)`), Bindings: []Binding{bind(SlotGroupBy, 2)}},
			{Expr: re(`\bhow\s+many\s+(\w+)\s+(?:for\s+each|by|per|in\s+each|across|over)\s+(\w+)`), Bindings: []Binding{bind(SlotGroupBy, 2)}},
			{Expr: re(`\bdistribution\s+of\s+(\w+)\s+(?:by|across|over|per)\s+(\w+)`), Bindings: []Binding{bind(SlotGroupBy, 2)}},
			{Expr: re(`\bfrequency\s+of\s+(\w+)\s+(?:by|per|across)\s+(\w+)`), Bindings: []Binding{bind(SlotGroupBy, 2)}},
			{Expr: re(`\bcount\s+(\w+)\s+(?:in|by|per|for)\s+(\w+)`), Bindings: []Binding{bind(SlotGroupBy, 2)}},
		},
		Templates: map[models.Dialect]Template{
			models.DialectSQL: {
				Text: `SELECT {group_by}, COUNT(*) AS count FROM {table} GROUP BY {group_by}`,
			},
			models.DialectMongo: {
				Text: `db.{table}.aggregate([{"$group": {"_id": "${group_by}", "count": {"$sum": 1}}}, {"$project": {"_id": 0, "{group_by}": "$_id", "count": 1}}])`,
			},
		},
		Samples: []Sample{
			{Gloss: Template{Text: "Count the number of records for each {group_by}"}},
		},
	}
}

func orderByLimit() *Construct {
	return &Construct{
		Name:  OrderByLimit,
		Slots: []Slot{SlotLimit, SlotOrderBy},
		Patterns: []Pattern{
			{
				Expr:     re(`\b(?:top|first)\s+(\d+)\s+(\w+)\s+(?:by|ordered\s+by|sorted\s+by|based\s+on)\s+(\w+)`),
				Bindings: []Binding{bind(SlotLimit, 1), bind(SlotOrderBy, 3)},
			},
			{
				Expr:     re(`\b(?:find|get|show|display)\s+(\d+)\s+(?:highest|largest|biggest|most|maximum)\s+(\w+)`),
				Bindings: []Binding{bind(SlotLimit, 1), bind(SlotOrderBy, 2)},
			},
			{
				Expr:     re(`\b(?:highest|largest|biggest|maximum)\s+(\d+)\s+(\w+)(?:\s+(?:by|based\s+on)\s+(\w+))?`),
				Bindings: []Binding{bind(SlotLimit, 1), {Slot: SlotOrderBy, Group: 3, Fallback: 2}},
			},
			{
				Expr:     re(`\blimit\s+(?:to\s+)?(\d+)\s+(?:highest|largest|biggest)\s+(\w+)`),
				Bindings: []Binding{bind(SlotLimit, 1), bind(SlotOrderBy, 2)},
			},
		},
		Templates: map[models.Dialect]Template{
			models.DialectSQL: {
				Text: `SELECT * FROM {table} ORDER BY {order_by} DESC LIMIT {limit}`,
			},
			models.DialectMongo: {
				Text: `db.{table}.aggregate([{"$sort": {"{order_by}": -1}}, {"$limit": {limit}}, {"$project": {"_id": 0}}])`,
			},
		},
		Samples: []Sample{
			{Gloss: Template{Text: "Show the top {limit} records sorted by {order_by} in descending order"}},
		},
	}
}

func whereClause() *Construct {
	comparison := []Binding{
		bind(SlotColumn, 1),
		{Slot: SlotOperator, Group: 2, Post: OperatorSymbol},
		{Slot: SlotValue, Group: 3, Post: unquote},
	}
	return &Construct{
		Name:  WhereClause,
		Slots: []Slot{SlotColumn, SlotOperator, SlotValue},
		Patterns: []Pattern{
			{Expr: re(`\b(?:where|when|whose|with)\s+(\w+)\s*(?:is\s+)?{op}\s*{value}`), Bindings: comparison},
			{Expr: re(`\bfilter\s+\w+\s+by\s+(\w+)\s*(?:is\s+)?{op}\s*{value}`), Bindings: comparison},
		},
		Templates: map[models.Dialect]Template{
			models.DialectSQL: {
				Text:   `SELECT * FROM {table} WHERE {column} {operator} {value}`,
				Format: comparisonFormat[models.DialectSQL],
			},
			models.DialectMongo: {
				Text:   `db.{table}.aggregate([{"$match": {"{column}": {"{operator}": {value}}}}, {"$project": {"_id": 0}}])`,
				Format: comparisonFormat[models.DialectMongo],
			},
		},
		Samples: []Sample{
			{
				Gloss:      Template{Text: "Filter records where {column} is {operator} {value}", Format: glossComparison},
				Comparison: &Comparison{Operators: []string{">", "<", ">=", "<=", "="}, Min: 1, Max: 100},
			},
		},
	}
}

func havingClause() *Construct {
	having := []Binding{
		bind(SlotGroupBy, 1),
		bind(SlotAggregate, 2),
		{Slot: SlotOperator, Group: 3, Post: OperatorSymbol},
		{Slot: SlotValue, Group: 4, Post: unquote},
	}
	const tail = `\s+having\s+(?:an?\s+|the\s+)?(?:(?:total|sum|average|avg|mean)\s+)?(?:of\s+)?(\w+)\s*(?:is\s+)?{op}\s*{value}`
	return &Construct{
		Name:  HavingClause,
		Slots: []Slot{SlotGroupBy, SlotAggregate, SlotFunction, SlotOperator, SlotValue},
		Patterns: []Pattern{
			{Expr: re(`\b(?:grouped\s+by|group\s+by|by|per|for\s+each)\s+(\w+)` + tail), Bindings: having},
			{Expr: re(`\b(\w+)` + tail), Bindings: having},
		},
		Inferred: []Inference{{Slot: SlotFunction, Infer: inferFunction}},
		Templates: map[models.Dialect]Template{
			models.DialectSQL: {
				Text:   `SELECT {group_by}, {function}({aggregate}) AS {function}_{aggregate} FROM {table} GROUP BY {group_by} HAVING {function}({aggregate}) {operator} {value}`,
				Format: comparisonFormat[models.DialectSQL],
			},
			models.DialectMongo: {
				Text:   `db.{table}.aggregate([{"$group": {"_id": "${group_by}", "{function}_{aggregate}": {"${function}": "${aggregate}"}}}, {"$match": {"{function}_{aggregate}": {"{operator}": {value}}}}, {"$project": {"_id": 0, "{group_by}": "$_id", "{function}_{aggregate}": 1}}])`,
				Format: comparisonFormat[models.DialectMongo],
			},
		},
		Samples: []Sample{
			{
				Gloss:      Template{Text: "Group by {group_by} having total {aggregate} {operator} {value}", Format: glossComparison},
				Fixed:      map[Slot]string{SlotFunction: "sum"},
				Comparison: &Comparison{Operators: []string{">", "<", ">=", "<="}, Min: 10, Max: 200},
			},
		},
	}
}

func selectColumns() *Construct {
	const list = `(\w+(?:\s*,\s*(?:and\s+)?\w+)*(?:\s+and\s+\w+)?)`
	return &Construct{
		Name:  SelectColumns,
		Slots: []Slot{SlotColumns},
		Patterns: []Pattern{
			{
				Expr:     re(`\b(?:select|show|display|get|list|find)\s+(?:only\s+)?(?:the\s+)?(?:specific\s+)?(?:columns?|fields?)\s+` + list),
				Bindings: []Binding{{Slot: SlotColumns, Group: 1, List: true}},
			},
			{
				Expr:     re(`\b(?:select|show|display|get|list)\s+(\w+(?:\s*,\s*(?:and\s+)?\w+)+(?:\s+and\s+\w+)?)\s+from\b`),
				Bindings: []Binding{{Slot: SlotColumns, Group: 1, List: true}},
			},
		},
		Templates: map[models.Dialect]Template{
			models.DialectSQL: {
				Text: `SELECT {columns} FROM {table}`,
			},
			models.DialectMongo: {
				Text:   `db.{table}.aggregate([{"$project": {"_id": 0, {columns}}}])`,
				Format: map[Slot]Formatter{SlotColumns: mongoProjection},
			},
		},
		Samples: []Sample{
			{Gloss: Template{Text: "Select specific columns {columns} from {table}"}},
		},
	}
}

func join() *Construct {
	keys := []Binding{
		bind(SlotJoinTable, 1),
		bind(SlotLeftKey, 2),
		{Slot: SlotRightKey, Group: 3, Fallback: 2},
	}
	const on = `\s+(?:on|using|by)\s+(?:\w+\.)?(\w+)(?:\s*=\s*(?:\w+\.)?(\w+))?`
	return &Construct{
		Name:  Join,
		Slots: []Slot{SlotJoinTable, SlotLeftKey, SlotRightKey},
		Patterns: []Pattern{
			{Expr: re(`\bjoin\s+(?:with\s+)?(?:the\s+)?(\w+)` + on), Bindings: keys},
			{Expr: re(`\b(?:join|combine|merge)\s+\w+\s+(?:and|with)\s+(\w+)` + on), Bindings: keys},
		},
		Templates: map[models.Dialect]Template{
			models.DialectSQL: {
				Text: `SELECT * FROM {table} JOIN {join_table} ON {table}.{left_key} = {join_table}.{right_key}`,
			},
			models.DialectMongo: {
				Text: `db.{table}.aggregate([{"$lookup": {"from": "{join_table}", "localField": "{left_key}", "foreignField": "{right_key}", "as": "{join_table}"}}, {"$unwind": "${join_table}"}])`,
			},
		},
		Samples: []Sample{
			{Gloss: Template{Text: "Join {table} with {join_table} on {table}.{left_key} = {join_table}.{right_key}"}},
		},
	}
}

var defaultCatalog = MustCatalog(
	groupByAggregation(),
	groupByCount(),
	orderByLimit(),
	whereClause(),
	havingClause(),
	selectColumns(),
	join(),
)

// Default 기본 구문 카탈로그
func Default() *Catalog {
	return defaultCatalog
}
