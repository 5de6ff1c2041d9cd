package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"chatdb/internal/construct"
	"chatdb/pkg/models"
)

func lookup(t *testing.T, name string) *construct.Construct {
	t.Helper()
	c, err := construct.Default().Lookup(name)
	require.NoError(t, err)
	return c
}

// pipeline db.<table>.aggregate([...]) 의 스테이지 목록
func pipeline(t *testing.T, table, query string) []bson.M {
	t.Helper()
	prefix := "db." + table + ".aggregate("
	require.True(t, strings.HasPrefix(query, prefix), query)
	require.True(t, strings.HasSuffix(query, ")"), query)
	body := strings.TrimSuffix(strings.TrimPrefix(query, prefix), ")")

	var doc struct {
		Stages []bson.M `bson:"stages"`
	}
	require.NoError(t, bson.UnmarshalExtJSON([]byte(`{"stages": `+body+`}`), false, &doc), query)
	return doc.Stages
}

func stageNames(stages []bson.M) []string {
	names := make([]string, 0, len(stages))
	for _, s := range stages {
		for k := range s {
			names = append(names, k)
		}
	}
	return names
}

func TestRender_SQL(t *testing.T) {
	tests := []struct {
		construct string
		values    construct.SlotValues
		want      string
	}{
		{
			construct.GroupByAggregation,
			construct.SlotValues{construct.SlotAggregate: {"revenue"}, construct.SlotGroupBy: {"region"}, construct.SlotFunction: {"sum"}},
			"SELECT region, sum(revenue) AS sum_revenue FROM sales GROUP BY region",
		},
		{
			construct.GroupByCount,
			construct.SlotValues{construct.SlotGroupBy: {"region"}},
			"SELECT region, COUNT(*) AS count FROM sales GROUP BY region",
		},
		{
			construct.OrderByLimit,
			construct.SlotValues{construct.SlotLimit: {"5"}, construct.SlotOrderBy: {"revenue"}},
			"SELECT * FROM sales ORDER BY revenue DESC LIMIT 5",
		},
		{
			construct.WhereClause,
			construct.SlotValues{construct.SlotColumn: {"price"}, construct.SlotOperator: {">"}, construct.SlotValue: {"100"}},
			"SELECT * FROM sales WHERE price > 100",
		},
		{
			construct.WhereClause,
			construct.SlotValues{construct.SlotColumn: {"region"}, construct.SlotOperator: {"!="}, construct.SlotValue: {"O'Brien"}},
			"SELECT * FROM sales WHERE region != 'O''Brien'",
		},
		{
			construct.HavingClause,
			construct.SlotValues{
				construct.SlotGroupBy: {"region"}, construct.SlotAggregate: {"revenue"}, construct.SlotFunction: {"avg"},
				construct.SlotOperator: {"<="}, construct.SlotValue: {"12.5"},
			},
			"SELECT region, avg(revenue) AS avg_revenue FROM sales GROUP BY region HAVING avg(revenue) <= 12.5",
		},
		{
			construct.SelectColumns,
			construct.SlotValues{construct.SlotColumns: {"name", "price", "name"}},
			"SELECT name, price, name FROM sales",
		},
		{
			construct.Join,
			construct.SlotValues{construct.SlotJoinTable: {"customers"}, construct.SlotLeftKey: {"customer_id"}, construct.SlotRightKey: {"id"}},
			"SELECT * FROM sales JOIN customers ON sales.customer_id = customers.id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.construct, func(t *testing.T) {
			got, err := Render(lookup(t, tt.construct), tt.values, "sales", models.DialectSQL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Mongo(t *testing.T) {
	tests := []struct {
		construct string
		values    construct.SlotValues
		stages    []string
	}{
		{
			construct.GroupByAggregation,
			construct.SlotValues{construct.SlotAggregate: {"revenue"}, construct.SlotGroupBy: {"region"}, construct.SlotFunction: {"sum"}},
			[]string{"$group", "$project"},
		},
		{
			construct.GroupByCount,
			construct.SlotValues{construct.SlotGroupBy: {"region"}},
			[]string{"$group", "$project"},
		},
		{
			construct.OrderByLimit,
			construct.SlotValues{construct.SlotLimit: {"5"}, construct.SlotOrderBy: {"revenue"}},
			[]string{"$sort", "$limit", "$project"},
		},
		{
			construct.WhereClause,
			construct.SlotValues{construct.SlotColumn: {"status"}, construct.SlotOperator: {"="}, construct.SlotValue: {`say "hi"`}},
			[]string{"$match", "$project"},
		},
		{
			construct.HavingClause,
			construct.SlotValues{
				construct.SlotGroupBy: {"region"}, construct.SlotAggregate: {"revenue"}, construct.SlotFunction: {"sum"},
				construct.SlotOperator: {">"}, construct.SlotValue: {"1000"},
			},
			[]string{"$group", "$match", "$project"},
		},
		{
			construct.SelectColumns,
			construct.SlotValues{construct.SlotColumns: {"name", "price"}},
			[]string{"$project"},
		},
		{
			construct.Join,
			construct.SlotValues{construct.SlotJoinTable: {"customers"}, construct.SlotLeftKey: {"customer_id"}, construct.SlotRightKey: {"id"}},
			[]string{"$lookup", "$unwind"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.construct, func(t *testing.T) {
			got, err := Render(lookup(t, tt.construct), tt.values, "sales", models.DialectMongo)
			require.NoError(t, err)
			assert.Equal(t, tt.stages, stageNames(pipeline(t, "sales", got)))
		})
	}
}

func TestRender_MongoValues(t *testing.T) {
	got, err := Render(lookup(t, construct.OrderByLimit),
		construct.SlotValues{construct.SlotLimit: {"7"}, construct.SlotOrderBy: {"price"}},
		"products", models.DialectMongo)
	require.NoError(t, err)
	assert.Equal(t, `db.products.aggregate([{"$sort": {"price": -1}}, {"$limit": 7}, {"$project": {"_id": 0}}])`, got)
	assert.EqualValues(t, 7, pipeline(t, "products", got)[1]["$limit"])

	got, err = Render(lookup(t, construct.WhereClause),
		construct.SlotValues{construct.SlotColumn: {"price"}, construct.SlotOperator: {">="}, construct.SlotValue: {"10"}},
		"products", models.DialectMongo)
	require.NoError(t, err)
	assert.Equal(t, `db.products.aggregate([{"$match": {"price": {"$gte": 10}}}, {"$project": {"_id": 0}}])`, got)

	got, err = Render(lookup(t, construct.SelectColumns),
		construct.SlotValues{construct.SlotColumns: {"name", "price"}},
		"products", models.DialectMongo)
	require.NoError(t, err)
	assert.Equal(t, `db.products.aggregate([{"$project": {"_id": 0, "name": 1, "price": 1}}])`, got)
}

func TestRender_LiteralValues(t *testing.T) {
	where := lookup(t, construct.WhereClause)
	tests := []struct {
		value string
		sql   string
		mongo any
	}{
		{"100", "SELECT * FROM customers WHERE zip = 100", int32(100)},
		{"-5", "SELECT * FROM customers WHERE zip = -5", int32(-5)},
		{"0.25", "SELECT * FROM customers WHERE zip = 0.25", 0.25},
		{"0", "SELECT * FROM customers WHERE zip = 0", int32(0)},
		{"007", "SELECT * FROM customers WHERE zip = '007'", "007"},
		{"00.5", "SELECT * FROM customers WHERE zip = '00.5'", "00.5"},
		{"O'Brien", "SELECT * FROM customers WHERE zip = 'O''Brien'", "O'Brien"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			values := construct.SlotValues{construct.SlotColumn: {"zip"}, construct.SlotOperator: {"="}, construct.SlotValue: {tt.value}}

			got, err := Render(where, values, "customers", models.DialectSQL)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, got)

			got, err = Render(where, values, "customers", models.DialectMongo)
			require.NoError(t, err)
			match, ok := pipeline(t, "customers", got)[0]["$match"].(bson.M)
			require.True(t, ok, got)
			zip, ok := match["zip"].(bson.M)
			require.True(t, ok, got)
			assert.Equal(t, tt.mongo, zip["$eq"])
		})
	}
}

func TestRender_MissingPlaceholder(t *testing.T) {
	_, err := Render(lookup(t, construct.OrderByLimit),
		construct.SlotValues{construct.SlotLimit: {"5"}},
		"sales", models.DialectSQL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingPlaceholder)

	var mp *MissingPlaceholderError
	require.ErrorAs(t, err, &mp)
	assert.Equal(t, construct.OrderByLimit, mp.Construct)
	assert.Equal(t, models.DialectSQL, mp.Dialect)
	assert.Equal(t, "order_by", mp.Placeholder)
}

func TestRender_UnsupportedDialect(t *testing.T) {
	_, err := Render(lookup(t, construct.GroupByCount),
		construct.SlotValues{construct.SlotGroupBy: {"region"}}, "sales", models.Dialect("cypher"))
	assert.ErrorIs(t, err, ErrUnsupportedDialect)
}

func TestTemplate_ValuesAreNotReinterpreted(t *testing.T) {
	got, err := Template(construct.Template{Text: "{column} = {value}"},
		construct.SlotValues{construct.SlotColumn: {"{value}"}, construct.SlotValue: {"1"}}, "t")
	require.NoError(t, err)
	assert.Equal(t, "{value} = 1", got)
}

func TestTemplate_TableIsVerbatim(t *testing.T) {
	got, err := Template(construct.Template{Text: "FROM {table}"}, construct.SlotValues{}, "Order Items")
	require.NoError(t, err)
	assert.Equal(t, "FROM Order Items", got)
}
