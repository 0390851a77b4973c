package db

import (
	"context"
	"database/sql"
)

// Session abstracts statement execution so that the collection layer can be
// exercised against a mock in tests.
type Session interface {
	// Execute runs a statement and returns the number of affected rows
	Execute(ctx context.Context, query string, values ...interface{}) (int64, error)

	// ExecuteIter runs a query and materializes the result set
	ExecuteIter(ctx context.Context, query string, values ...interface{}) (ResultSet, error)

	Close() error
}

type ResultSet interface {
	Values() []map[string]interface{}
}

type sqlResultSet struct {
	values []map[string]interface{}
}

func (r *sqlResultSet) Values() []map[string]interface{} {
	return r.values
}

type sqlSession struct {
	ref *sql.DB
}

func (s *sqlSession) Execute(ctx context.Context, query string, values ...interface{}) (int64, error) {
	result, err := s.ref.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		// Statements like PRAGMA report no row count
		return 0, nil
	}
	return affected, nil
}

func (s *sqlSession) ExecuteIter(ctx context.Context, query string, values ...interface{}) (ResultSet, error) {
	rows, err := s.ref.QueryContext(ctx, query, values...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	items := make([]map[string]interface{}, 0)
	for rows.Next() {
		row, err := mapScan(rows, columns)
		if err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &sqlResultSet{values: items}, nil
}

func (s *sqlSession) Close() error {
	return s.ref.Close()
}

func mapScan(rows *sql.Rows, columns []string) (map[string]interface{}, error) {
	values := make([]interface{}, len(columns))
	for i := range values {
		values[i] = new(interface{})
	}

	if err := rows.Scan(values...); err != nil {
		return nil, err
	}

	mapped := make(map[string]interface{}, len(columns))
	for i, column := range columns {
		mapped[column] = *(values[i].(*interface{}))
	}

	return mapped, nil
}
