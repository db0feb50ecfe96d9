package internal

import "time"

type Config struct {
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	EventBufferSize   int           `env:"EVENT_BUFFER_SIZE,required=true"`
	NumberOfWorkers   int           `env:"NUMBER_OF_WORKERS,required=true"`
	MaxTxAttempts     int           `env:"MAX_TX_ATTEMPTS,default=8"`
	TxRetryDelay      time.Duration `env:"TX_RETRY_DELAY,default=5ms"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL,required=true"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,required=true"`
	LimitMessages     *int          `env:"LIMIT_MESSAGES"`
	DebugPort         int           `env:"DEBUG_PORT,default=0"`
	SearchIndexPath   string        `env:"SEARCH_INDEX_PATH"`
	SearchLimit       int           `env:"SEARCH_LIMIT,default=50"`

	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=0s"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=16"`
}
