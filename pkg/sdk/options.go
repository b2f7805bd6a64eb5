package searchr

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dbPath string

	addrs     []string
	password  string
	redisDB   int
	queueName string
	keyPrefix string

	indexDir    string
	maxPageSize int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		dbPath:    "data/searchr.db",
		queueName: "index",
		keyPrefix: "hotqueue:",
		indexDir:  "data/index",
	}
}

// WithDatabase sets the primary store path.
func WithDatabase(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dbPath = path
	})
}

// WithRedis configures the broker holding the index queue.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisDB selects the logical Redis database.
func WithRedisDB(db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisDB = db
	})
}

// WithQueue overrides the queue name and key prefix. They must match the
// daemon's configuration or changes will never be indexed.
func WithQueue(name, keyPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queueName = name
		c.keyPrefix = keyPrefix
	})
}

// WithIndexDir sets the index directory used by Search and IndexStatus.
func WithIndexDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexDir = dir
	})
}

// WithMaxPageSize caps per_page for listings and searches. Default: 100.
func WithMaxPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPageSize = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
