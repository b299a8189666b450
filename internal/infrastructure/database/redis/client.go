package redis

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ingredient-intel/iie/internal/infrastructure/monitoring/logging"
	"github.com/ingredient-intel/iie/pkg/errors"
)

var (
	ErrClientClosed   = errors.New(errors.CodeInternal, "redis client is closed")
	ErrInvalidMode    = errors.New(errors.CodeInvalidParam, "invalid redis mode")
	ErrConnectionFailed = errors.New(errors.CodeDatabaseError, "redis connection failed")
)

type RedisConfig struct {
	Mode            string        `mapstructure:"mode"` // standalone, sentinel, cluster
	Addr            string        `mapstructure:"addr"`
	MasterName      string        `mapstructure:"master_name"`
	SentinelAddrs   []string      `mapstructure:"sentinel_addrs"`
	ClusterAddrs    []string      `mapstructure:"cluster_addrs"`
	Password        string        `mapstructure:"password"`
	Username        string        `mapstructure:"username"`
	DB              int           `mapstructure:"db"`
	PoolSize        int           `mapstructure:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	MaxIdleTime     time.Duration `mapstructure:"max_idle_time"`
	PoolTimeout     time.Duration `mapstructure:"pool_timeout"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	TLSEnabled      bool          `mapstructure:"tls_enabled"`
	TLSCertFile     string        `mapstructure:"tls_cert_file"`
	TLSKeyFile      string        `mapstructure:"tls_key_file"`
	TLSCAFile       string        `mapstructure:"tls_ca_file"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
}

type Client struct {
	rdb    redis.UniversalClient
	config *RedisConfig
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

func NewClient(cfg *RedisConfig, log logging.Logger) (*Client, error) {
	applyDefaults(cfg)

	var rdb redis.UniversalClient
	var err error

	tlsConfig, err := buildTLSConfig(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Mode {
	case "cluster":
		rdb = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           cfg.ClusterAddrs,
			Username:        cfg.Username,
			Password:        cfg.Password,
			PoolSize:        cfg.PoolSize,
			MinIdleConns:    cfg.MinIdleConns,
			ConnMaxIdleTime: cfg.MaxIdleTime,
			DialTimeout:     cfg.DialTimeout,
			ReadTimeout:     cfg.ReadTimeout,
			WriteTimeout:    cfg.WriteTimeout,
			TLSConfig:       tlsConfig,
			MaxRetries:      cfg.MaxRetries,
			MinRetryBackoff: cfg.MinRetryBackoff,
			MaxRetryBackoff: cfg.MaxRetryBackoff,
		})
	case "sentinel":
		rdb = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:      cfg.MasterName,
			SentinelAddrs:   cfg.SentinelAddrs,
			Username:        cfg.Username,
			Password:        cfg.Password,
			DB:              cfg.DB,
			PoolSize:        cfg.PoolSize,
			MinIdleConns:    cfg.MinIdleConns,
			ConnMaxIdleTime: cfg.MaxIdleTime,
			DialTimeout:     cfg.DialTimeout,
			ReadTimeout:     cfg.ReadTimeout,
			WriteTimeout:    cfg.WriteTimeout,
			TLSConfig:       tlsConfig,
			MaxRetries:      cfg.MaxRetries,
			MinRetryBackoff: cfg.MinRetryBackoff,
			MaxRetryBackoff: cfg.MaxRetryBackoff,
		})
	case "standalone":
		fallthrough
	default:
		if cfg.Mode != "" && cfg.Mode != "standalone" {
			log.Warn("Invalid redis mode, defaulting to standalone", logging.String("mode", cfg.Mode))
		}
		rdb = redis.NewClient(&redis.Options{
			Addr:            cfg.Addr,
			Username:        cfg.Username,
			Password:        cfg.Password,
			DB:              cfg.DB,
			PoolSize:        cfg.PoolSize,
			MinIdleConns:    cfg.MinIdleConns,
			ConnMaxIdleTime: cfg.MaxIdleTime,
			DialTimeout:     cfg.DialTimeout,
			ReadTimeout:     cfg.ReadTimeout,
			WriteTimeout:    cfg.WriteTimeout,
			TLSConfig:       tlsConfig,
			MaxRetries:      cfg.MaxRetries,
			MinRetryBackoff: cfg.MinRetryBackoff,
			MaxRetryBackoff: cfg.MaxRetryBackoff,
		})
	}

	client := &Client{
		rdb:    rdb,
		config: cfg,
		logger: log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		rdb.Close()
		return nil, ErrConnectionFailed
	}

	log.Info("Redis client connected",
		logging.String("mode", cfg.Mode),
		logging.String("addr", cfg.Addr),
	)

	return client, nil
}

func applyDefaults(cfg *RedisConfig) {
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10 * runtime.GOMAXPROCS(0)
	}
	if cfg.MinIdleConns == 0 {
		cfg.MinIdleConns = 5
	}
	if cfg.MaxIdleTime == 0 {
		cfg.MaxIdleTime = 5 * time.Minute
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.MinRetryBackoff == 0 {
		cfg.MinRetryBackoff = 8 * time.Millisecond
	}
	if cfg.MaxRetryBackoff == 0 {
		cfg.MaxRetryBackoff = 512 * time.Millisecond
	}
}

func buildTLSConfig(cfg *RedisConfig) (*tls.Config, error) {
	if !cfg.TLSEnabled {
		return nil, nil
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.TLSInsecure,
	}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load tls keypair: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if cfg.TLSCAFile != "" {
		caCert, err := os.ReadFile(cfg.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read ca cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		caCertPool.AppendCertsFromPEM(caCert)
		tlsConfig.RootCAs = caCertPool
	}

	return tlsConfig, nil
}

func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrClientClosed
	}
	c.mu.RUnlock()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.rdb.Close()
	if err == nil {
		c.logger.Info("Closed Redis client")
	} else {
		c.logger.Error("Failed to close Redis client", logging.Err(err))
	}
	return err
}

func (c *Client) Pipeline() redis.Pipeliner {
	return c.rdb.Pipeline()
}

// Commands
//
// Every command below follows the same shape: forward to the underlying
// client unless this Client has been closed, in which case return a Cmd
// that already carries ErrClientClosed. guarded factors that branch out
// once instead of repeating it per method.

// guarded runs call unless c is closed, in which case it returns a Cmd of
// the same type pre-populated with ErrClientClosed via newErrCmd.
func guarded[T any](c *Client, newErrCmd func(error) T, call func() T) T {
	if c.isClosed() {
		return newErrCmd(ErrClientClosed)
	}
	return call()
}

func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	return guarded(c, errorStringCmd, func() *redis.StringCmd { return c.rdb.Get(ctx, key) })
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return guarded(c, errorStatusCmd, func() *redis.StatusCmd { return c.rdb.Set(ctx, key, value, expiration) })
}

func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return guarded(c, errorIntCmd, func() *redis.IntCmd { return c.rdb.Del(ctx, keys...) })
}

func (c *Client) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	return guarded(c, errorIntCmd, func() *redis.IntCmd { return c.rdb.Exists(ctx, keys...) })
}

func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	return guarded(c, errorBoolCmd, func() *redis.BoolCmd { return c.rdb.Expire(ctx, key, expiration) })
}

func (c *Client) TTL(ctx context.Context, key string) *redis.DurationCmd {
	return guarded(c, errorDurationCmd, func() *redis.DurationCmd { return c.rdb.TTL(ctx, key) })
}

func (c *Client) Incr(ctx context.Context, key string) *redis.IntCmd {
	return guarded(c, errorIntCmd, func() *redis.IntCmd { return c.rdb.Incr(ctx, key) })
}

func (c *Client) IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd {
	return guarded(c, errorIntCmd, func() *redis.IntCmd { return c.rdb.IncrBy(ctx, key, value) })
}

func (c *Client) Decr(ctx context.Context, key string) *redis.IntCmd {
	return guarded(c, errorIntCmd, func() *redis.IntCmd { return c.rdb.Decr(ctx, key) })
}

func (c *Client) HGet(ctx context.Context, key, field string) *redis.StringCmd {
	return guarded(c, errorStringCmd, func() *redis.StringCmd { return c.rdb.HGet(ctx, key, field) })
}

func (c *Client) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	return guarded(c, errorIntCmd, func() *redis.IntCmd { return c.rdb.HSet(ctx, key, values...) })
}

func (c *Client) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	return guarded(c, errorMapStringStringCmd, func() *redis.MapStringStringCmd { return c.rdb.HGetAll(ctx, key) })
}

func (c *Client) HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd {
	return guarded(c, errorIntCmd, func() *redis.IntCmd { return c.rdb.HDel(ctx, key, fields...) })
}

func (c *Client) ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd {
	return guarded(c, errorIntCmd, func() *redis.IntCmd { return c.rdb.ZAdd(ctx, key, members...) })
}

func (c *Client) ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd {
	return guarded(c, errorStringSliceCmd, func() *redis.StringSliceCmd { return c.rdb.ZRangeByScore(ctx, key, opt) })
}

func (c *Client) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) *redis.ZSliceCmd {
	return guarded(c, errorZSliceCmd, func() *redis.ZSliceCmd { return c.rdb.ZRevRangeWithScores(ctx, key, start, stop) })
}

func (c *Client) ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	return guarded(c, errorIntCmd, func() *redis.IntCmd { return c.rdb.ZRem(ctx, key, members...) })
}

func (c *Client) ZScore(ctx context.Context, key, member string) *redis.FloatCmd {
	return guarded(c, errorFloatCmd, func() *redis.FloatCmd { return c.rdb.ZScore(ctx, key, member) })
}

func (c *Client) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	return guarded(c, errorScanCmd, func() *redis.ScanCmd { return c.rdb.Scan(ctx, cursor, match, count) })
}

// Helper methods

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func errorStringCmd(err error) *redis.StringCmd {
	cmd := redis.NewStringCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

func errorStatusCmd(err error) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

func errorIntCmd(err error) *redis.IntCmd {
	cmd := redis.NewIntCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

func errorBoolCmd(err error) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

func errorDurationCmd(err error) *redis.DurationCmd {
	cmd := redis.NewDurationCmd(context.Background(), 0)
	cmd.SetErr(err)
	return cmd
}

func errorMapStringStringCmd(err error) *redis.MapStringStringCmd {
	cmd := redis.NewMapStringStringCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

func errorStringSliceCmd(err error) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

func errorZSliceCmd(err error) *redis.ZSliceCmd {
	cmd := redis.NewZSliceCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

func errorFloatCmd(err error) *redis.FloatCmd {
	cmd := redis.NewFloatCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

func errorScanCmd(err error) *redis.ScanCmd {
	cmd := redis.NewScanCmd(context.Background(), nil)
	cmd.SetErr(err)
	return cmd
}
