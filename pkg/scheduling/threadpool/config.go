package threadpool

import (
	"bytes"
	"errors"
	"io"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/common/validation"
)

// Kind selects the pool implementation built by New.
type Kind string

const (
	KindFixed        Kind = "fixed"
	KindElastic      Kind = "elastic"
	KindWorkStealing Kind = "work_stealing"
)

const (
	// DefaultQueueCapacity bounds the fixed queue and each stealing bucket.
	DefaultQueueCapacity = 200

	// DefaultElasticQueueCapacity bounds the elastic queue.
	DefaultElasticQueueCapacity = 1000

	// DefaultElasticIdleWait is how long an elastic worker above core
	// waits for a task before retiring.
	DefaultElasticIdleWait = 10 * time.Second

	// DefaultStealingIdleWait is how long a stealing worker waits before
	// rescanning the buckets.
	DefaultStealingIdleWait = time.Second
)

// Config holds configuration options for creating a pool. Zero values
// are replaced by the defaults of the selected Kind.
type Config struct {
	// Kind selects the implementation. Empty means KindFixed.
	Kind Kind `yaml:"kind"`

	// Name labels the pool in logs and metrics. Empty means a name
	// derived from the pool's instance ID.
	Name string `yaml:"name"`

	// Workers is the worker count, or the core count for elastic pools.
	// Defaults to runtime.GOMAXPROCS(0).
	Workers int `yaml:"workers"`

	// MaxWorkers caps elastic growth. Defaults to 2*Workers.
	MaxWorkers int `yaml:"max_workers"`

	// QueueCapacity bounds the queue, or each bucket of a stealing pool.
	QueueCapacity int `yaml:"queue_capacity"`

	// IdleWait is the timed-wait bound of elastic and stealing queues.
	IdleWait time.Duration `yaml:"idle_wait"`

	// Logger receives pool events. Defaults to a no-op logger.
	Logger Logger `yaml:"-"`

	// PanicHandler is called after a task panics. err wraps
	// errors.ErrTaskPanicked and carries a stack trace.
	PanicHandler func(task Task, err error) `yaml:"-"`

	// OnWorkerStart is called when a worker starts.
	OnWorkerStart func(workerID int) `yaml:"-"`

	// OnWorkerStop is called when a worker stops.
	OnWorkerStop func(workerID int) `yaml:"-"`
}

// DefaultConfig returns the default configuration for kind.
func DefaultConfig(kind Kind) Config {
	return Config{Kind: kind}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Kind == "" {
		c.Kind = KindFixed
	}
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = NewNopLogger()
	}

	switch c.Kind {
	case KindElastic:
		if c.MaxWorkers == 0 {
			c.MaxWorkers = 2 * c.Workers
		}
		if c.QueueCapacity == 0 {
			c.QueueCapacity = DefaultElasticQueueCapacity
		}
		if c.IdleWait == 0 {
			c.IdleWait = DefaultElasticIdleWait
		}
	case KindWorkStealing:
		if c.QueueCapacity == 0 {
			c.QueueCapacity = DefaultQueueCapacity
		}
		if c.IdleWait == 0 {
			c.IdleWait = DefaultStealingIdleWait
		}
	default:
		if c.QueueCapacity == 0 {
			c.QueueCapacity = DefaultQueueCapacity
		}
	}
	return c
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()

	if err := validation.ValidateOneOf("threadpool", "kind", string(c.Kind),
		string(KindFixed), string(KindElastic), string(KindWorkStealing)); err != nil {
		return err
	}
	if err := validation.ValidatePositive("threadpool", "workers", c.Workers); err != nil {
		return err
	}
	if err := validation.ValidatePositive("threadpool", "queue_capacity", c.QueueCapacity); err != nil {
		return err
	}

	switch c.Kind {
	case KindElastic:
		if err := validation.ValidateAtLeast("threadpool", "max_workers", c.MaxWorkers, c.Workers); err != nil {
			return err
		}
		return validation.ValidatePositiveDuration("threadpool", "idle_wait", c.IdleWait)
	case KindWorkStealing:
		return validation.ValidatePositiveDuration("threadpool", "idle_wait", c.IdleWait)
	}
	return nil
}

// ParseConfig decodes a YAML pool configuration. Unknown fields are
// rejected and durations use Go syntax such as "10s".
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, tperrors.NewOperationError("threadpool", "ParseConfig", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes a YAML pool configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, tperrors.NewOperationError("threadpool", "LoadConfig", err).
			WithContext("path=" + path)
	}
	return ParseConfig(data)
}

// New builds the pool selected by config.Kind.
func New(config Config) (Pool, error) {
	var (
		pool Pool
		err  error
	)
	switch config.withDefaults().Kind {
	case KindFixed:
		var p *FixedPool
		if p, err = NewFixedWithConfig(config); err == nil {
			pool = p
		}
	case KindElastic:
		var p *ElasticPool
		if p, err = NewElasticWithConfig(config); err == nil {
			pool = p
		}
	case KindWorkStealing:
		var p *StealingPool
		if p, err = NewStealingWithConfig(config); err == nil {
			pool = p
		}
	default:
		err = config.Validate()
	}
	if err != nil {
		return nil, err
	}
	return pool, nil
}
