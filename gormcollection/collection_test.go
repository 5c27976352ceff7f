package gormcollection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Alp4ka/docpager"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tUser struct {
	ID     uint
	Name   string
	Status string
}

func (tUser) TableName() string { return "users" }

func Test_Query_Exec(t *testing.T) {
	tests := []struct {
		name          string
		filter        docpager.Filter
		projection    docpager.Projection
		orderings     docpager.Orderings
		skip          int
		limit         int
		expectedQuery string
		expectedArgs  int
	}{
		{
			name:          "filter sort skip and limit",
			filter:        docpager.Filter{"status": "active"},
			orderings:     docpager.Orderings{{Column: "name", Direction: docpager.DirectionASC}},
			skip:          10,
			limit:         10,
			expectedQuery: "^SELECT \\* FROM " + qt + "users" + qt + " WHERE " + qt + "status" + qt + " = " + ph + " ORDER BY name ASC LIMIT 10 OFFSET 10$",
			expectedArgs:  1,
		},
		{
			name:          "first page has no offset",
			limit:         5,
			expectedQuery: "^SELECT \\* FROM " + qt + "users" + qt + " LIMIT 5$",
		},
		{
			name:          "included fields",
			projection:    docpager.Projection{{Field: "id", Include: true}, {Field: "name", Include: true}},
			limit:         3,
			expectedQuery: "^SELECT " + qt + "id" + qt + "," + qt + "name" + qt + " FROM " + qt + "users" + qt + " LIMIT 3$",
		},
		{
			name:       "excluded fields",
			projection: docpager.Projection{{Field: "status", Include: false}},
			limit:      3,
			expectedQuery: "^SELECT (?:" + qt + "users" + qt + "\\.)?" + qt + "id" + qt + "," +
				"(?:" + qt + "users" + qt + "\\.)?" + qt + "name" + qt + " FROM " + qt + "users" + qt + " LIMIT 3$",
		},
		{
			name:      "multi column sort",
			orderings: docpager.Orderings{{Column: "status", Direction: docpager.DirectionDESC}, {Column: "id", Direction: docpager.DirectionASC}},
			skip:      2,
			limit:     2,
			expectedQuery: "^SELECT \\* FROM " + qt + "users" + qt +
				" ORDER BY status DESC, id ASC LIMIT 2 OFFSET 2$",
		},
	}

	for _, sqlMockFn := range _sqlMockFnList {
		for _, tt := range tests {
			dialect, db, dbMock, err := sqlMockFn()
			t.Run(fmt.Sprintf("%s %s", dialect, tt.name), func(t *testing.T) {
				if err != nil {
					t.Fatalf("gorm open: %v", err)
				}

				expectation := dbMock.ExpectQuery(tt.expectedQuery)
				if tt.expectedArgs > 0 {
					expectation = expectation.WithArgs(sqlmock.AnyArg())
				}
				expectation.WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status"}).AddRow(1, "John Doe", "active"))

				coll := New[tUser](db.Model(&tUser{}))
				docs, err := coll.Find(tt.filter, nil).
					Select(tt.projection).
					Sort(tt.orderings).
					Skip(tt.skip).
					Limit(tt.limit).
					Exec(context.Background())
				require.NoError(t, err)
				require.Len(t, docs, 1)
				assert.Equal(t, "John Doe", docs[0].Name)

				assert.NoError(t, dbMock.ExpectationsWereMet())
			})
		}
	}
}

func Test_Collection_Count(t *testing.T) {
	for _, sqlMockFn := range _sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM " + qt + "users" + qt + " WHERE " + qt + "status" + qt + " = " + ph + "$").
				WithArgs("active").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

			count, err := New[tUser](db.Model(&tUser{})).Count(context.Background(), docpager.Filter{"status": "active"})
			require.NoError(t, err)
			assert.Equal(t, int64(25), count)
			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_Collection_Count_Error(t *testing.T) {
	_, db, dbMock, err := newGORMPostgresMock()
	require.NoError(t, err)

	boom := errors.New("connection refused")
	dbMock.ExpectQuery("^SELECT count").WillReturnError(boom)

	_, err = New[tUser](db.Model(&tUser{})).Count(context.Background(), nil)
	require.ErrorIs(t, err, boom)
}

func Test_Collection_ScopesAreIndependent(t *testing.T) {
	_, db, dbMock, err := newGORMPostgresMock()
	require.NoError(t, err)

	coll := New[tUser](db.Model(&tUser{}))

	dbMock.ExpectQuery(`^SELECT \* FROM "users" WHERE "status" = \$1 LIMIT 1$`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	dbMock.ExpectQuery(`^SELECT count\(\*\) FROM "users"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	_, err = coll.Find(docpager.Filter{"status": "x"}, nil).Limit(1).Exec(context.Background())
	require.NoError(t, err)

	count, err := coll.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_Paginator_OverGORM(t *testing.T) {
	for _, sqlMockFn := range _sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			rows := sqlmock.NewRows([]string{"id", "name", "status"})
			for i := 11; i <= 20; i++ {
				rows.AddRow(i, fmt.Sprintf("user %d", i), "active")
			}

			dbMock.ExpectQuery("^SELECT \\* FROM " + qt + "users" + qt + " WHERE " + qt + "status" + qt + " = " + ph +
				" ORDER BY id ASC LIMIT 10 OFFSET 10$").
				WithArgs("active").
				WillReturnRows(rows)
			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM " + qt + "users" + qt + " WHERE " + qt + "status" + qt + " = " + ph + "$").
				WithArgs("active").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

			p := docpager.New[tUser](New[tUser](db.Model(&tUser{})))
			res, err := p.Paginate(
				context.Background(),
				docpager.Filter{"status": "active"},
				docpager.NewOptions().
					WithPage(2).
					WithLimit(10).
					WithSort(docpager.OrderBy{Column: "id", Direction: docpager.DirectionASC}),
			)
			require.NoError(t, err)

			assert.Equal(t, int64(25), res.Count)
			assert.Equal(t, 10, res.Limit)
			assert.Equal(t, 2, *res.Page)
			assert.Equal(t, 3, *res.Pages)
			assert.Nil(t, res.Offset)
			require.Len(t, res.Docs, 10)
			assert.Equal(t, uint(11), res.Docs[0].ID)
			assert.Equal(t, uint(20), res.Docs[9].ID)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_Paginator_OverGORM_LeanRecords(t *testing.T) {
	_, db, dbMock, err := newGORMPostgresMock()
	require.NoError(t, err)

	dbMock.ExpectQuery(`^SELECT \* FROM "users" LIMIT 2$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(7, "a").AddRow(8, "b"))
	dbMock.ExpectQuery(`^SELECT count\(\*\) FROM "users"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	p := docpager.New[docpager.Record](New[docpager.Record](db.Table("users")), docpager.WithIDField("id"))
	res, err := p.Paginate(context.Background(), nil, docpager.NewOptions().WithLimit(2).WithLean(true))
	require.NoError(t, err)

	require.Len(t, res.Docs, 2)
	assert.Equal(t, "7", res.Docs[0]["id"])
	assert.Equal(t, "b", res.Docs[1]["name"])
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_Paginator_OverGORM_CountOnly(t *testing.T) {
	_, db, dbMock, err := newGORMPostgresMock()
	require.NoError(t, err)

	dbMock.ExpectQuery(`^SELECT count\(\*\) FROM "users"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(40))

	res, err := docpager.Paginate[tUser](context.Background(), New[tUser](db.Model(&tUser{})), nil, docpager.NewOptions().WithLimit(0))
	require.NoError(t, err)

	assert.Nil(t, res.Docs)
	assert.Equal(t, int64(40), res.Count)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_Paginator_OverGORM_FindError(t *testing.T) {
	_, db, dbMock, err := newGORMPostgresMock()
	require.NoError(t, err)

	boom := errors.New("relation \"users\" does not exist")
	dbMock.ExpectQuery(`^SELECT \* FROM "users"`).WillReturnError(boom)
	dbMock.ExpectQuery(`^SELECT count`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err = docpager.New[tUser](New[tUser](db.Model(&tUser{}))).Paginate(context.Background(), nil, nil)
	require.ErrorIs(t, err, docpager.ErrFind)
	require.ErrorIs(t, err, boom)
}

func Test_Collection_WithLogger(t *testing.T) {
	_, db, dbMock, err := newGORMPostgresMock()
	require.NoError(t, err)

	var buf bytes.Buffer
	coll := New[tUser](db.Model(&tUser{}), WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	dbMock.ExpectQuery(`^SELECT count`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err = coll.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"component":"gorm"`)
	assert.Contains(t, buf.String(), "SELECT count(*)")
}
