package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"puzzlewager"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres    Postgres
	Redis       Redis
	Chain       Chain
	Puzzle      Puzzle
	Security    Security
	Leaderboard Leaderboard
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// DSN renders the keyword/value connection string pgx understands.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Redis holds cache + lock + pub/sub configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Chain describes the on-chain deployment this instance mirrors.
type Chain struct {
	ID              string `env:"CHAIN_ID" envDefault:"8453"`
	EventsChannel   string `env:"CHAIN_EVENTS_CHANNEL" envDefault:"chain:record-events"`
	OperatorAddress string `env:"OPERATOR_ADDRESS,notEmpty"`
}

// Puzzle groups gameplay defaults for the off-chain session service.
type Puzzle struct {
	LockTTL      time.Duration `env:"PUZZLE_LOCK_TTL" envDefault:"10s"`
	LockWait     time.Duration `env:"PUZZLE_LOCK_WAIT" envDefault:"3s"`
	TickInterval time.Duration `env:"PUZZLE_TICK_INTERVAL" envDefault:"1s"`
}

// Security stores secrets for signing and session tokens.
type Security struct {
	JWTSecret        string `env:"JWT_SECRET,notEmpty"`
	SignerPrivateKey string `env:"PUZZLE_MASTER_PRIVATE_KEY,notEmpty"`
}

// Leaderboard governs aggregation and cache behavior.
type Leaderboard struct {
	RefreshInterval time.Duration `env:"LEADERBOARD_REFRESH_INTERVAL" envDefault:"30s"`
	ProtocolFeeBps  int64         `env:"LEADERBOARD_PROTOCOL_FEE_BPS" envDefault:"250"`
	CacheTTL        time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"5m"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
