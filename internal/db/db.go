package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"modernc.org/sqlite"
)

// FoldFunc is the SQL function that case-folds text with full Unicode rules.
// SQLite's built-in lower() only folds ASCII, so "Š" and "š" would differ.
const FoldFunc = "fold"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(FoldFunc, 1, fold); err != nil {
		panic(fmt.Sprintf("registering %s: %v", FoldFunc, err))
	}
}

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return cases.Fold().String(v), nil
	case []byte:
		return cases.Fold().String(string(v)), nil
	}
	return args[0], nil
}

// Open opens a SQLite database connection and configures pragmas.
//
// foreign_keys and busy_timeout are passed in the DSN so every pooled
// connection gets them, not just the first one. Times are written in SQLite's
// own format so DATETIME columns compare correctly in range queries.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	return db, nil
}

func dsn(path string) string {
	params := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}
