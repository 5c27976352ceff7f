package gormcollection

import (
	"fmt"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type tMockFn func() (string, *gorm.DB, sqlmock.Sqlmock, error)

var _sqlMockFnList = []tMockFn{
	newGORMMySQLMock,
	newGORMPostgresMock,
}

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	return newGORMMock("mysql", func(conn gorm.ConnPool) gorm.Dialector {
		return mysql.New(mysql.Config{
			Conn:                      conn,
			SkipInitializeWithVersion: true,
		})
	})
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	return newGORMMock("postgres", func(conn gorm.ConnPool) gorm.Dialector {
		return postgres.New(postgres.Config{
			Conn: conn,
		})
	})
}

// newGORMMock opens gorm over sqlmock. Expectations match in any order since
// the paginator runs find and count concurrently; a single connection keeps
// the mock from being driven by two statements at once.
func newGORMMock(dialect string, fnDialector func(gorm.ConnPool) gorm.Dialector) (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}
	mockDB.SetMaxOpenConns(1)
	mock.MatchExpectationsInOrder(false)

	db, err := gorm.Open(fnDialector(mockDB), &gorm.Config{})
	if err != nil {
		return "", nil, nil, fmt.Errorf("gorm open %s: %w", dialect, err)
	}

	return dialect, db.Debug(), mock, nil
}

// Quoted identifiers and placeholders differ per dialect.
const (
	qt = "[`\"]"
	ph = `(?:\$\d|\?)`
)
