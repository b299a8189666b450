package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ingredient-intel/iie/internal/infrastructure/database/postgres"
	"github.com/ingredient-intel/iie/internal/infrastructure/database/redis"
)

// checkPostgres verifies the database pool is reachable before the HTTP
// server starts accepting traffic.
func checkPostgres(ctx context.Context, pool *pgxpool.Pool) error {
	return postgres.HealthCheck(ctx, pool)
}

// checkRedis verifies the cache's backing Redis client is reachable.
func checkRedis(ctx context.Context, cache redis.Cache) error {
	return cache.Ping(ctx)
}
