package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"photobroom/internal/catalog"
	"photobroom/internal/photo"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// executor runs every statement issued by the backend.
type executor struct {
	q       querier
	dialect Dialect
	logger  catalog.Logger
	// fault, when set, may fail a statement before it reaches the driver.
	fault func(statement string) error
}

func (e executor) prepare(statement string) (string, error) {
	if e.fault != nil {
		if err := e.fault(statement); err != nil {
			return "", err
		}
	}
	e.logger.Debug("executing statement", "sql", statement)
	return e.dialect.Rebind(statement), nil
}

func (e executor) exec(statement string, a args) (sql.Result, error) {
	stmt, err := e.prepare(statement)
	if err != nil {
		return nil, err
	}
	return e.q.ExecContext(context.Background(), stmt, e.dialect.Bind(a)...)
}

// query runs a statement returning rows. Callers must close the rows before
// issuing the next statement: SQLite runs on a single connection.
func (e executor) query(statement string, a args) (*sql.Rows, error) {
	stmt, err := e.prepare(statement)
	if err != nil {
		return nil, err
	}
	return e.q.QueryContext(context.Background(), stmt, e.dialect.Bind(a)...)
}

func (e executor) queryRow(statement string, a args, dest ...any) error {
	stmt, err := e.prepare(statement)
	if err != nil {
		return err
	}
	return e.q.QueryRowContext(context.Background(), stmt, e.dialect.Bind(a)...).Scan(dest...)
}

// insert runs an INSERT and returns the id of the new row.
func (e executor) insert(statement string, a args) (int64, error) {
	if e.dialect.ReturningId() {
		var id int64
		if err := e.queryRow(statement+" RETURNING id", a, &id); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := e.exec(statement, a)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ids runs a query selecting a single id column.
func (e executor) ids(statement string, a args) ([]photo.Id, error) {
	rows, err := e.query(statement, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []photo.Id
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		out = append(out, photo.Id(id))
	}
	return out, rows.Err()
}

// inList expands ids into named parameters prefix0, prefix1... stored in a
// and returns the placeholder list. An empty list yields NULL, which matches
// nothing.
func inList(prefix string, ids []photo.Id, a args) string {
	if len(ids) == 0 {
		return "NULL"
	}
	params := make([]string, len(ids))
	for i, id := range ids {
		name := fmt.Sprintf("%s%d", prefix, i)
		a[name] = int64(id)
		params[i] = ":" + name
	}
	return strings.Join(params, ",")
}
