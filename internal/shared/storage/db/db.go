package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"smart-file-manager/internal/shared/telemetry"
)

// Role selects the connection pool profile for a process kind.
type Role int

const (
	RoleServer Role = iota
	RoleLambda
	RoleMigrate
)

// Pool is the database/sql pool sizing applied to the metadata database.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
	PingTimeout time.Duration
}

// Each Lambda container serves one request at a time, so it keeps its pool tiny.
var rolePools = map[Role]Pool{
	RoleServer:  {MaxOpen: 10, MaxIdle: 5, MaxLifetime: time.Hour, MaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second},
	RoleLambda:  {MaxOpen: 2, MaxIdle: 1, MaxLifetime: 15 * time.Minute, MaxIdleTime: 30 * time.Second, PingTimeout: 3 * time.Second},
	RoleMigrate: {MaxOpen: 1, MaxIdle: 1, MaxLifetime: time.Hour, MaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second},
}

var (
	openDB = sql.Open

	sharedMu sync.Mutex
	sharedDB *sql.DB
)

// RuntimeRole reports RoleLambda inside AWS Lambda and RoleServer elsewhere.
func RuntimeRole() Role {
	if strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != "" {
		return RoleLambda
	}
	return RoleServer
}

// PoolFor returns the role's pool with DB_* environment overrides applied.
// Malformed overrides are logged and ignored.
func PoolFor(role Role) Pool {
	p, ok := rolePools[role]
	if !ok {
		p = rolePools[RoleServer]
	}
	ints := map[string]*int{
		"DB_MAX_OPEN_CONNS": &p.MaxOpen,
		"DB_MAX_IDLE_CONNS": &p.MaxIdle,
	}
	for key, dst := range ints {
		if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v <= 0 {
				telemetry.Warn("db.env.invalid", map[string]any{"key": key, "value": raw})
				continue
			}
			*dst = v
		}
	}
	durations := map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME":  &p.MaxLifetime,
		"DB_CONN_MAX_IDLE_TIME": &p.MaxIdleTime,
		"DB_PING_TIMEOUT":       &p.PingTimeout,
	}
	for key, dst := range durations {
		if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
			v, err := time.ParseDuration(raw)
			if err != nil || v <= 0 {
				telemetry.Warn("db.env.invalid", map[string]any{"key": key, "value": raw})
				continue
			}
			*dst = v
		}
	}
	return p
}

// Open connects for the given role. Lambda containers share one handle
// across warm invocations; other roles get a fresh pool.
func Open(ctx context.Context, databaseURL string, role Role) (*sql.DB, error) {
	if role != RoleLambda {
		return Connect(ctx, databaseURL, PoolFor(role))
	}

	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedDB != nil {
		return sharedDB, nil
	}
	conn, err := Connect(ctx, databaseURL, PoolFor(role))
	if err != nil {
		return nil, err
	}
	sharedDB = conn
	telemetry.Info("db.shared.init", nil)
	return conn, nil
}

// Connect opens a pgx-backed *sql.DB sized by pool and pings it.
func Connect(ctx context.Context, databaseURL string, pool Pool) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}

	conn, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(pool.MaxOpen)
	conn.SetMaxIdleConns(pool.MaxIdle)
	conn.SetConnMaxLifetime(pool.MaxLifetime)
	conn.SetConnMaxIdleTime(pool.MaxIdleTime)

	timeout := pool.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	telemetry.Info("db.connect", map[string]any{"max_open": pool.MaxOpen, "max_idle": pool.MaxIdle})
	return conn, nil
}
