package query

import "fmt"

// Dialect selects database-specific SQL syntax.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// ParseDialect maps a database driver name to its Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Postgres, fmt.Errorf("unsupported dialect: %s", driver)
	}
}

// Placeholder returns the positional parameter marker for index n (1-based).
func (d Dialect) Placeholder(n int) string {
	if d == SQLite {
		return fmt.Sprintf("?%d", n)
	}
	return fmt.Sprintf("$%d", n)
}

// Like returns the case-insensitive pattern-matching operator.
func (d Dialect) Like() string {
	if d == SQLite {
		return "LIKE"
	}
	return "ILIKE"
}

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}
