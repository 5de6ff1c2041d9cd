package construct

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdb/internal/nlp"
	"chatdb/pkg/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{
		GroupByAggregation,
		GroupByCount,
		OrderByLimit,
		WhereClause,
		HavingClause,
		SelectColumns,
		Join,
	}, c.Names())

	for _, con := range c.Constructs() {
		for _, d := range models.Dialects {
			_, ok := con.Template(d)
			assert.True(t, ok, "%s: %s 템플릿", con.Name, d)
		}
		assert.NotEmpty(t, con.Samples, con.Name)
	}
}

func TestMatch(t *testing.T) {
	norm := nlp.NewNormalizer()
	m := NewMatcher(Default())

	tests := []struct {
		input string
		want  string
	}{
		{"Total revenue by region", GroupByAggregation},
		{"Find the average salary for each department", GroupByAggregation},
		{"How many orders for each region?", GroupByCount},
		{"Count the orders by region", GroupByCount},
		{"Show the top 5 products by revenue", OrderByLimit},
		{"Show top 3 customers by revenue where region is west", OrderByLimit},
		{"Find products where price is greater than 100", WhereClause},
		{"Group by region having total sales above 500", HavingClause},
		{"Select name, price from products", SelectColumns},
		{"Join customers on customer_id", Join},
		{"sum of sales by region having sum above 100", GroupByAggregation},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := m.Match(norm.Normalize(tt.input).String())
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := m.Match(norm.Normalize("Hello there").String())
	assert.False(t, ok)
	_, ok = m.Match("")
	assert.False(t, ok)
}

func TestMatch_PrecedenceFollowsDeclarationOrder(t *testing.T) {
	text := "sum of sales by region having sum above 100"

	having, err := Default().Lookup(HavingClause)
	require.NoError(t, err)
	var havingMatches bool
	for _, p := range having.Patterns {
		havingMatches = havingMatches || p.Expr.MatchString(text)
	}
	require.True(t, havingMatches)

	got, ok := NewMatcher(Default()).Match(text)
	require.True(t, ok)
	assert.Equal(t, GroupByAggregation, got)
}

func TestExtract(t *testing.T) {
	e := NewExtractor(Default())

	tests := []struct {
		name      string
		construct string
		input     string
		want      SlotValues
	}{
		{
			name:      "sum by",
			construct: GroupByAggregation,
			input:     "Total revenue by region",
			want:      SlotValues{SlotAggregate: {"revenue"}, SlotGroupBy: {"region"}, SlotFunction: {"sum"}},
		},
		{
			name:      "average for each",
			construct: GroupByAggregation,
			input:     "Find the average salary for each department",
			want:      SlotValues{SlotAggregate: {"salary"}, SlotGroupBy: {"department"}, SlotFunction: {"avg"}},
		},
		{
			name:      "swapped capture order",
			construct: GroupByAggregation,
			input:     "By region show the total of revenue",
			want:      SlotValues{SlotAggregate: {"revenue"}, SlotGroupBy: {"region"}, SlotFunction: {"sum"}},
		},
		{
			name:      "how many",
			construct: GroupByCount,
			input:     "How many orders for each region?",
			want:      SlotValues{SlotGroupBy: {"region"}},
		},
		{
			name:      "top n by",
			construct: OrderByLimit,
			input:     "Show the top 5 products by revenue",
			want:      SlotValues{SlotLimit: {"5"}, SlotOrderBy: {"revenue"}},
		},
		{
			name:      "n highest",
			construct: OrderByLimit,
			input:     "Show 10 highest salaries",
			want:      SlotValues{SlotLimit: {"10"}, SlotOrderBy: {"salaries"}},
		},
		{
			name:      "phrase operator",
			construct: WhereClause,
			input:     "Find products where price is greater than 100",
			want:      SlotValues{SlotColumn: {"price"}, SlotOperator: {">"}, SlotValue: {"100"}},
		},
		{
			name:      "symbol operator",
			construct: WhereClause,
			input:     "customers whose age >= 21",
			want:      SlotValues{SlotColumn: {"age"}, SlotOperator: {">="}, SlotValue: {"21"}},
		},
		{
			name:      "negation with quoted value",
			construct: WhereClause,
			input:     "orders where status is not 'shipped'",
			want:      SlotValues{SlotColumn: {"status"}, SlotOperator: {"!="}, SlotValue: {"shipped"}},
		},
		{
			name:      "filter by",
			construct: WhereClause,
			input:     "filter orders by amount below 50",
			want:      SlotValues{SlotColumn: {"amount"}, SlotOperator: {"<"}, SlotValue: {"50"}},
		},
		{
			name:      "having total",
			construct: HavingClause,
			input:     "Group by region having total sales above 500",
			want: SlotValues{
				SlotGroupBy: {"region"}, SlotAggregate: {"sales"}, SlotFunction: {"sum"},
				SlotOperator: {">"}, SlotValue: {"500"},
			},
		},
		{
			name:      "having average",
			construct: HavingClause,
			input:     "departments having average salary at least 50000",
			want: SlotValues{
				SlotGroupBy: {"departments"}, SlotAggregate: {"salary"}, SlotFunction: {"avg"},
				SlotOperator: {">="}, SlotValue: {"50000"},
			},
		},
		{
			name:      "select from",
			construct: SelectColumns,
			input:     "Select name, price from products",
			want:      SlotValues{SlotColumns: {"name", "price"}},
		},
		{
			name:      "columns with and",
			construct: SelectColumns,
			input:     "show columns name, price and category",
			want:      SlotValues{SlotColumns: {"name", "price", "category"}},
		},
		{
			name:      "join single key",
			construct: Join,
			input:     "Join customers on customer_id",
			want:      SlotValues{SlotJoinTable: {"customers"}, SlotLeftKey: {"customer_id"}, SlotRightKey: {"customer_id"}},
		},
		{
			name:      "join qualified keys",
			construct: Join,
			input:     "join orders with customers on orders.customer_id = customers.id",
			want:      SlotValues{SlotJoinTable: {"customers"}, SlotLeftKey: {"customer_id"}, SlotRightKey: {"id"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(tt.input, tt.construct)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			con, err := Default().Lookup(tt.construct)
			require.NoError(t, err)
			assert.Len(t, got, len(con.Slots))
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := NewExtractor(Default())
	inputs := map[string]string{
		GroupByAggregation: "Total revenue by region",
		OrderByLimit:       "Show the top 5 products by revenue",
		WhereClause:        "Find readings where temp < -5",
		HavingClause:       "Group by region having total sales above 500",
		SelectColumns:      "show columns name, price and category",
		Join:               "join orders with customers on orders.customer_id = customers.id",
	}
	for name, input := range inputs {
		first, err := e.Extract(input, name)
		require.NoError(t, err, name)
		second, err := e.Extract(input, name)
		require.NoError(t, err, name)
		assert.Equal(t, first, second, name)
	}
}

func TestExtract_ClassifiedButNotExtractable(t *testing.T) {
	input := "count the orders by region"

	name, ok := NewMatcher(Default()).Match(nlp.NewNormalizer().Normalize(input).String())
	require.True(t, ok)
	require.Equal(t, GroupByCount, name)

	_, err := NewExtractor(Default()).Extract(input, name)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrComponentExtraction)

	var ee *ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, GroupByCount, ee.Construct)
	assert.Equal(t, input, ee.Text)
}

func TestExtract_UnknownConstruct(t *testing.T) {
	_, err := NewExtractor(Default()).Extract("anything", "window function")
	assert.ErrorIs(t, err, ErrUnknownConstruct)
}

func TestOperatorSymbol(t *testing.T) {
	tests := map[string]string{
		"greater than":             ">",
		"Greater  Than":            ">",
		"at least":                 ">=",
		"greater than or equal to": ">=",
		"fewer than":               "<",
		"at most":                  "<=",
		"not":                      "!=",
		"<>":                       "!=",
		"equals":                   "=",
		"is":                       "=",
		"resembles":                "=",
	}
	for in, want := range tests {
		assert.Equal(t, want, OperatorSymbol(in), in)
	}
}

func TestOperatorExpr_CoversEveryPhrase(t *testing.T) {
	whole := regexp.MustCompile(`(?i)^` + operatorExpr + `$`)
	for phrase, sym := range operatorPhrases {
		assert.True(t, whole.MatchString(phrase), phrase)
		_, ok := LookupOperator(sym)
		assert.True(t, ok, "%s → %s", phrase, sym)
	}
}

func TestCatalog_Filter(t *testing.T) {
	c := Default()

	all, err := c.Filter(nil)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	all, err = c.Filter([]string{"ALL"})
	require.NoError(t, err)
	assert.Len(t, all, 7)

	some, err := c.Filter([]string{"join", "Where Clause"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, WhereClause, some[0].Name)
	assert.Equal(t, Join, some[1].Name)

	_, err = c.Filter([]string{"where clause", "pivot"})
	assert.ErrorIs(t, err, ErrUnknownConstruct)
}

func TestNewCatalog_Validation(t *testing.T) {
	valid := func() *Construct {
		return &Construct{
			Name:     "limit only",
			Slots:    []Slot{SlotLimit},
			Patterns: []Pattern{{Expr: re(`\blimit\s+(\d+)`), Bindings: []Binding{bind(SlotLimit, 1)}}},
			Templates: map[models.Dialect]Template{
				models.DialectSQL:   {Text: "SELECT * FROM {table} LIMIT {limit}"},
				models.DialectMongo: {Text: `db.{table}.aggregate([{"$limit": {limit}}])`},
			},
		}
	}

	_, err := NewCatalog(valid())
	require.NoError(t, err)

	tests := map[string]func(c *Construct){
		"undeclared placeholder": func(c *Construct) {
			c.Templates[models.DialectSQL] = Template{Text: "SELECT {column} FROM {table} LIMIT {limit}"}
		},
		"dialect mismatch": func(c *Construct) {
			c.Templates[models.DialectMongo] = Template{Text: `db.{table}.aggregate([])`}
		},
		"missing dialect": func(c *Construct) {
			delete(c.Templates, models.DialectMongo)
		},
		"unbound slot": func(c *Construct) {
			c.Patterns[0].Bindings = nil
		},
		"group out of range": func(c *Construct) {
			c.Patterns[0].Bindings = []Binding{bind(SlotLimit, 2)}
		},
		"no patterns": func(c *Construct) {
			c.Patterns = nil
		},
		"gloss placeholder": func(c *Construct) {
			c.Samples = []Sample{{Gloss: Template{Text: "Show {value} rows"}}}
		},
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			_, err := NewCatalog(c)
			assert.Error(t, err)
		})
	}

	_, err = NewCatalog(valid(), valid())
	assert.Error(t, err)
}

func TestSplitColumns(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitColumns("a, b and c"))
	assert.Equal(t, []string{"a", "a"}, SplitColumns("a,a"))
	assert.Equal(t, []string{"name", "price"}, SplitColumns("name ,and price"))
	assert.Empty(t, SplitColumns(" , "))
}
