package migrations

import (
	"embed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

// Up накатывает схему слота сессий, миграции зашиты в бинарь
func Up(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(embedded)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.Up(db, "sql")
}
