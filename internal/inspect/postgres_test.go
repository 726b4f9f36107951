package inspect

import (
	"context"
	"errors"
	"testing"

	"db-sync/internal/schema"
	"db-sync/internal/sqltest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const (
	pgColumnsHeader = "| column_name | udt_name | character_maximum_length | numeric_precision | numeric_scale | datetime_precision | is_nullable | column_default | is_identity | collation_name |\n"
	pgIndexesHeader = "| relname | indisprimary | indisunique | amname | attname | ord | desc |\n"
)

func TestPostgres_LoadTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(sqltest.Escape(pgTableQuery)).
		WithArgs("sales", "orders").
		WillReturnRows(sqltest.Rows("| coalesce |\n| customer orders |"))
	mock.ExpectQuery(sqltest.Escape(pgColumnsQuery)).
		WithArgs("sales", "orders").
		WillReturnRows(sqltest.Rows(`
+-------------+-------------+--------------------------+-------------------+---------------+--------------------+-------------+------------------------------------+-------------+----------------+
| column_name | udt_name    | character_maximum_length | numeric_precision | numeric_scale | datetime_precision | is_nullable | column_default                     | is_identity | collation_name |
+-------------+-------------+--------------------------+-------------------+---------------+--------------------+-------------+------------------------------------+-------------+----------------+
| id          | int8        | NULL                     | 64                | 0             | NULL               | NO          | nextval('orders_id_seq'::regclass) | NO          | NULL           |
| customer_id | int4        | NULL                     | 32                | 0             | NULL               | NO          | NULL                               | NO          | NULL           |
| total       | numeric     | NULL                     | 10                | 2             | NULL               | NO          | 0.00                               | NO          | NULL           |
| note        | varchar     | 255                      | NULL              | NULL          | NULL               | YES         | NULL                               | NO          | C              |
| created_at  | timestamptz | NULL                     | NULL              | NULL          | 6                  | NO          | now()                              | NO          | NULL           |
+-------------+-------------+--------------------------+-------------------+---------------+--------------------+-------------+------------------------------------+-------------+----------------+
`))
	mock.ExpectQuery(sqltest.Escape(pgIndexesQuery)).
		WithArgs("sales", "orders").
		WillReturnRows(sqltest.Rows(`
+-----------------------------+--------------+-------------+--------+-------------+-----+-------+
| relname                     | indisprimary | indisunique | amname | attname     | ord | desc  |
+-----------------------------+--------------+-------------+--------+-------------+-----+-------+
| orders_pkey                 | true         | true        | btree  | id          | 1   | false |
| orders_customer_created_idx | false        | false       | btree  | created_at  | 2   | true  |
| orders_customer_created_idx | false        | false       | btree  | customer_id | 1   | false |
+-----------------------------+--------------+-------------+--------+-------------+-----+-------+
`))
	mock.ExpectQuery(sqltest.Escape(pgForeignKeysQuery)).
		WithArgs("sales", "orders").
		WillReturnRows(sqltest.Rows(`
+--------------------+-------------+-----------+---------+-------------+-------------+-----+
| conname            | attname     | relname   | attname | confupdtype | confdeltype | ord |
+--------------------+-------------+-----------+---------+-------------+-------------+-----+
| orders_customer_fk | customer_id | customers | id      | a           | c           | 1   |
+--------------------+-------------+-----------+---------+-------------+-------------+-----+
`))

	in := NewPostgres(db, "sales")
	require.Equal(t, "postgres", in.Dialect().Name())
	table, err := in.LoadTable(context.Background(), "orders")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	comment, ok := table.Option(schema.OptionComment)
	require.True(t, ok)
	require.Equal(t, "customer orders", comment.Value)

	id, _ := table.Column("id")
	require.Equal(t, &schema.IntegerType{T: schema.TypeBigint}, id.Type)
	require.True(t, id.HasAutoIncrement())
	_, ok = id.Definition(schema.DefDefault)
	require.False(t, ok)

	total, _ := table.Column("total")
	require.Equal(t, &schema.FloatingType{T: schema.TypeDecimal, Precision: 10, Scale: 2}, total.Type)
	def, ok := total.Definition(schema.DefDefault)
	require.True(t, ok)
	require.Equal(t, schema.DefaultExpr("0.00"), def)

	note, _ := table.Column("note")
	require.Equal(t, &schema.CharType{T: schema.TypeVarchar, Length: 255, Collation: "C"}, note.Type)
	require.Equal(t, []schema.Definition{&schema.Nullable{Null: true}}, note.Definitions)
	require.Equal(t, "total", note.Previous)

	created, _ := table.Column("created_at")
	require.Equal(t, &schema.TimeType{T: schema.TypeTimestamp, Precision: 6, TimeZone: true}, created.Type)

	pk, ok := table.Index("orders_pkey")
	require.True(t, ok)
	require.Equal(t, schema.IndexPrimary, pk.Kind)
	idx, ok := table.Index("orders_customer_created_idx")
	require.True(t, ok)
	require.Equal(t, []schema.IndexColumn{
		{Name: "customer_id"},
		{Name: "created_at", Order: schema.SortDesc},
	}, idx.Columns)

	fk, ok := table.ForeignKey("orders_customer_fk")
	require.True(t, ok)
	require.Equal(t, &schema.Reference{Table: "customers", Columns: []string{"id"}}, fk.Reference)
	require.Equal(t, schema.ActionNoAction, fk.OnUpdate)
	require.Equal(t, schema.ActionCascade, fk.OnDelete)
}

func TestPostgres_LoadTableErrors(t *testing.T) {
	expect := func(t *testing.T, columns, indexes string) *Postgres {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		mock.ExpectQuery(sqltest.Escape(pgTableQuery)).
			WithArgs("public", "things").
			WillReturnRows(sqltest.Rows("| coalesce |\n| NULL |"))
		mock.ExpectQuery(sqltest.Escape(pgColumnsQuery)).
			WithArgs("public", "things").
			WillReturnRows(sqltest.Rows(pgColumnsHeader + columns))
		if indexes != "" {
			mock.ExpectQuery(sqltest.Escape(pgIndexesQuery)).
				WithArgs("public", "things").
				WillReturnRows(sqltest.Rows(pgIndexesHeader + indexes))
		}
		return NewPostgres(db, "")
	}

	t.Run("UnknownType", func(t *testing.T) {
		in := expect(t, "| pos | point | NULL | NULL | NULL | NULL | NO | NULL | NO | NULL |", "")
		_, err := in.LoadTable(context.Background(), "things")
		var typeErr *TypeError
		require.True(t, errors.As(err, &typeErr))
		require.Equal(t, "point", typeErr.Raw)
	})

	t.Run("AccessMethod", func(t *testing.T) {
		in := expect(t,
			"| tags | text | NULL | NULL | NULL | NULL | NO | NULL | NO | NULL |",
			"| things_tags_idx | false | false | gin | tags | 1 | false |")
		_, err := in.LoadTable(context.Background(), "things")
		var metaErr *MetadataError
		require.True(t, errors.As(err, &metaErr))
		require.Equal(t, "things_tags_idx", metaErr.Index)
	})

	t.Run("NoColumns", func(t *testing.T) {
		in := expect(t, "", "")
		_, err := in.LoadTable(context.Background(), "things")
		require.EqualError(t, err, "table things has no columns")
	})
}

func TestPgReferenceOption(t *testing.T) {
	for code, want := range map[string]schema.ReferenceOption{
		"a": schema.ActionNoAction,
		"r": schema.ActionRestrict,
		"c": schema.ActionCascade,
		"n": schema.ActionSetNull,
	} {
		got, err := pgReferenceOption(code)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := pgReferenceOption("d")
	require.Error(t, err)
}
