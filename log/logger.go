package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger *zap.SugaredLogger
	config = Config{}
)

// Config controls the process logger, stdout is left to command output
type Config struct {
	Debug bool
	// File is an optional extra output path
	File string
}

// Configure replaces the settings used by New. It drops a logger built
// under the previous settings.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		_ = logger.Sync()
	}
	config = cfg
	logger = nil
}

// New returns the same logger all the time
func New() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		return logger
	}

	base, err := build(config)
	if err != nil {
		panic(err)
	}

	logger = base.Sugar()
	return logger
}

// Nop returns a logger that discards everything, for tests
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func build(cfg Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Encoding = "json"
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if cfg.Debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	zcfg.OutputPaths = []string{"stderr"}
	if cfg.File != "" {
		zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.File)
	}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	return zcfg.Build()
}
