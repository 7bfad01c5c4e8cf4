package postgres

import (
	"context"
	"database/sql"
)

// Queryer é satisfeito tanto por *sql.DB quanto por *sql.Tx, permitindo que os
// repositórios executem a mesma query dentro ou fora de uma transação
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Queryer = (*sql.DB)(nil)
	_ Queryer = (*sql.Tx)(nil)
)
