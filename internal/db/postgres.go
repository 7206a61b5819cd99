package db

import (
	"context"
	"fmt"
	"log"

	"fleet-backend/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(cfg *config.Config) *pgxpool.Pool {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		cfg.Journal.DB.User,
		cfg.Journal.DB.Password,
		cfg.Journal.DB.Host,
		cfg.Journal.DB.Port,
		cfg.Journal.DB.Name,
	)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	return pool
}
