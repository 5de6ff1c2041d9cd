package db

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdb/pkg/models"
)

func TestSQLProvider_MySQL(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	cfg := models.SourceConfig{Name: "shop", Type: models.MySQL, Database: "shop"}
	p := newSQLProvider(mockDB, cfg, mysqlQueries)

	mock.ExpectQuery(`FROM INFORMATION_SCHEMA.TABLES`).
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("customers").AddRow("orders"))

	tables, err := p.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)

	mock.ExpectQuery(`FROM INFORMATION_SCHEMA.COLUMNS`).
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "COLUMN_TYPE"}).
			AddRow("order_id", "bigint(20) unsigned").
			AddRow("customer_id", "int(11)").
			AddRow("status", "varchar(20)"))
	mock.ExpectQuery(`FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE`).
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME"}).
			AddRow("customer_id", "customers", "customer_id"))

	table, err := p.DescribeTable(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, "orders", table.Name)
	assert.Equal(t, []models.Column{
		{Name: "order_id", Type: "bigint(20) unsigned"},
		{Name: "customer_id", Type: "int(11)"},
		{Name: "status", Type: "varchar(20)"},
	}, table.Columns)
	assert.Equal(t, []models.ForeignKey{{Column: "customer_id", RefTable: "customers", RefColumn: "customer_id"}}, table.ForeignKeys)
	assert.Equal(t, models.MySQL, p.Type())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLProvider_TableNotFound(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	p := newSQLProvider(mockDB, models.SourceConfig{Type: models.PostgreSQL}, postgresQueries)

	mock.ExpectQuery(`FROM information_schema.columns`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}))

	_, err = p.DescribeTable(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrTableNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLProvider_QueryError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	p := newSQLProvider(mockDB, models.SourceConfig{Type: models.SQLServer}, sqlServerQueries)
	mock.ExpectQuery(`FROM INFORMATION_SCHEMA.TABLES`).WillReturnError(errors.New("login failed"))

	_, err = p.ListTables(context.Background())
	assert.ErrorContains(t, err, "login failed")
}

func TestOracleQueries_UppercaseTableName(t *testing.T) {
	assert.Equal(t, []any{"ORDERS"}, oracleQueries.args(models.SourceConfig{}, "orders"))
	assert.Nil(t, oracleQueries.args(models.SourceConfig{}, ""))
}

func TestSQLiteProvider(t *testing.T) {
	ctx := context.Background()
	p, err := NewSQLiteProvider(ctx, models.SourceConfig{Name: "local", Type: models.SQLite, Path: ":memory:"})
	require.NoError(t, err)
	defer p.Close()

	_, err = p.db.ExecContext(ctx, `
		CREATE TABLE customers (customer_id INTEGER PRIMARY KEY, name TEXT, credit REAL);
		CREATE TABLE orders (
			order_id INTEGER PRIMARY KEY,
			customer_id INTEGER REFERENCES customers(customer_id),
			amount NUMERIC(10,2),
			status VARCHAR(20)
		);`)
	require.NoError(t, err)

	tables, err := p.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)

	orders, err := p.DescribeTable(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"order_id", "customer_id", "amount", "status"}, orders.ColumnNames())
	assert.Equal(t, "NUMERIC(10,2)", orders.Columns[2].Type)
	assert.Equal(t, []models.ForeignKey{{Column: "customer_id", RefTable: "customers", RefColumn: "customer_id"}}, orders.ForeignKeys)

	_, err = p.DescribeTable(ctx, "missing")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestNewSQLiteProvider_RequiresPath(t *testing.T) {
	_, err := NewSQLiteProvider(context.Background(), models.SourceConfig{Type: models.SQLite})
	assert.Error(t, err)
}

func TestOpen_UnsupportedType(t *testing.T) {
	_, err := Open(context.Background(), models.SourceConfig{Type: "db2"})
	assert.Error(t, err)
}

// countingProvider 호출 횟수를 세는 제공자
type countingProvider struct {
	*StaticProvider
	lists     atomic.Int32
	describes atomic.Int32
}

func (c *countingProvider) ListTables(ctx context.Context) ([]string, error) {
	c.lists.Add(1)
	return c.StaticProvider.ListTables(ctx)
}

func (c *countingProvider) DescribeTable(ctx context.Context, name string) (*models.Table, error) {
	c.describes.Add(1)
	return c.StaticProvider.DescribeTable(ctx, name)
}

func shopSchema() *models.Schema {
	return &models.Schema{
		DBType: models.MySQL,
		Tables: []models.Table{
			models.TableFromNames("orders", []string{"order_id", "customer_id"}),
			models.TableFromNames("customers", []string{"customer_id", "name"}),
		},
	}
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	inner := &countingProvider{StaticProvider: NewStaticProvider(shopSchema())}
	p := NewCachedProvider(inner, time.Minute)

	for range 3 {
		tables, err := p.ListTables(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"orders", "customers"}, tables)

		table, err := p.DescribeTable(ctx, "orders")
		require.NoError(t, err)
		assert.Equal(t, "orders", table.Name)
	}
	assert.Equal(t, int32(1), inner.lists.Load())
	assert.Equal(t, int32(1), inner.describes.Load())

	_, err := p.DescribeTable(ctx, "ghost")
	assert.ErrorIs(t, err, ErrTableNotFound)
	_, err = p.DescribeTable(ctx, "ghost")
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.Equal(t, int32(3), inner.describes.Load(), "오류는 캐시하지 않음")

	p.(*CachedProvider).Invalidate()
	_, err = p.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.lists.Load())

	assert.Same(t, inner, NewCachedProvider(inner, 0))
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(shopSchema())
	assert.Equal(t, models.MySQL, p.Type())

	table, err := p.DescribeTable(context.Background(), "CUSTOMERS")
	require.NoError(t, err)
	assert.Equal(t, []string{"customer_id", "name"}, table.ColumnNames())

	_, err = p.DescribeTable(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("shop", NewStaticProvider(shopSchema()))
	r.Register("archive", NewStaticProvider(&models.Schema{}))

	assert.Equal(t, []string{"archive", "shop"}, r.Names())

	p, err := r.Get("shop")
	require.NoError(t, err)
	assert.Equal(t, models.MySQL, p.Type())

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrSourceNotFound)

	require.NoError(t, r.Close())
	assert.Empty(t, r.Names())
}

func TestDescribeTables(t *testing.T) {
	p := NewStaticProvider(shopSchema())

	tables, err := DescribeTables(context.Background(), p, []string{"customers", "orders"})
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "customers", tables[0].Name)
	assert.Equal(t, "orders", tables[1].Name)

	_, err = DescribeTables(context.Background(), p, []string{"orders", "ghost"})
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestRegistry_Connect(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	err := r.Connect(context.Background(), []models.SourceConfig{
		{Name: "a", Type: models.SQLite, Path: ":memory:"},
		{Name: "b", Type: models.SQLite, Path: ":memory:"},
		{Name: "c", Type: models.SQLite, Path: ":memory:"},
	}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, r.Names())

	p, err := r.Get("b")
	require.NoError(t, err)
	assert.Equal(t, models.SQLite, p.Type())
}

func TestRegistry_ConnectFailureRegistersNothing(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	err := r.Connect(context.Background(), []models.SourceConfig{
		{Name: "ok", Type: models.SQLite, Path: ":memory:"},
		{Name: "broken", Type: models.SQLite},
	}, time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "소스 broken")
	assert.Empty(t, r.Names())
}

// flakyProvider 지정한 테이블 조회만 실패하는 제공자
type flakyProvider struct {
	*StaticProvider
	fail string
}

func (f *flakyProvider) DescribeTable(ctx context.Context, name string) (*models.Table, error) {
	if name == f.fail {
		return nil, errors.New("permission denied")
	}
	return f.StaticProvider.DescribeTable(ctx, name)
}

func TestDescribeEach(t *testing.T) {
	p := &flakyProvider{StaticProvider: NewStaticProvider(shopSchema()), fail: "orders"}

	tables, failed := DescribeEach(context.Background(), p, []string{"orders", "customers", "ghost"})
	require.Len(t, tables, 1)
	assert.Equal(t, "customers", tables[0].Name)
	require.Len(t, failed, 2)
	assert.EqualError(t, failed["orders"], "permission denied")
	assert.ErrorIs(t, failed["ghost"], ErrTableNotFound)

	tables, failed = DescribeEach(context.Background(), p, []string{"customers"})
	assert.Len(t, tables, 1)
	assert.Nil(t, failed)
}
