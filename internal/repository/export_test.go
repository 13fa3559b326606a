package repository

import "github.com/jackc/pgx/v5/pgxpool"

// TestPool exposes the connection pool to external test packages.
func (r *Repository) TestPool() *pgxpool.Pool { return r.pool }
