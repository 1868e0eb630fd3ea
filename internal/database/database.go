/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"               // PostgreSQL driver
	_ "github.com/microsoft/go-mssqldb" // SQL Server driver

	"github.com/ocomsoft/fleetschema/internal/types"
)

// DriverName returns the database/sql driver registered for dialect
func DriverName(dialect types.Dialect) (string, error) {
	switch dialect {
	case types.DialectSQLite:
		return sqliteDriver, nil
	case types.DialectSQLServer:
		return "sqlserver", nil
	case types.DialectPostgreSQL:
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", dialect)
	}
}

// GooseDialect returns the goose dialect name for dialect
func GooseDialect(dialect types.Dialect) (string, error) {
	switch dialect {
	case types.DialectSQLite:
		return "sqlite3", nil
	case types.DialectSQLServer:
		return "sqlserver", nil
	case types.DialectPostgreSQL:
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", dialect)
	}
}

// Open opens and pings a connection. SQLite connections are limited to a single
// connection with foreign key enforcement switched on.
func Open(ctx context.Context, dialect types.Dialect, dsn string) (*sql.DB, error) {
	driver, err := DriverName(dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if dialect == types.DialectSQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return db, nil
}
