/*
Package zlog provides named zap loggers sharing one configuration
*/
package zlog

import (
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go-ml.dev/pkg/ordinal/fu"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/xerrors"
	"os"
	"strings"
	"sync"
	"time"
)

/*
Config is the logging configuration
*/
type Config struct {
	Level          string `mapstructure:"level"`   // debug, info, warn or error
	Path           string `mapstructure:"path"`    // rotated log file prefix, no file if empty
	Console        bool   `mapstructure:"console"` // also write to stderr
	RotationHours  int    `mapstructure:"rotation_hours"`
	MaxAgeDays     int    `mapstructure:"max_age_days"`
	RotationSizeMB int    `mapstructure:"rotation_size_mb"`
}

/*
DefaultConfig returns the console only configuration, debug level in dev mode
*/
func DefaultConfig(dev bool) Config {
	c := Config{
		Level:          "warn",
		Console:        true,
		RotationHours:  24,
		MaxAgeDays:     7,
		RotationSizeMB: 30,
	}
	if dev {
		c.Level = "debug"
		c.RotationHours = 1
		c.MaxAgeDays = 1
		c.RotationSizeMB = 10
	}
	return c
}

func (c Config) level() (zapcore.Level, error) {
	var l zapcore.Level
	if c.Level == "" {
		return zapcore.WarnLevel, nil
	}
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(c.Level)))); err != nil {
		return l, xerrors.Errorf("bad log level `%v`: %w", c.Level, err)
	}
	return l, nil
}

func newSugared(name string, c Config) (*zap.SugaredLogger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}
	var syncers []zapcore.WriteSyncer
	if c.Console {
		syncers = append(syncers, zapcore.Lock(os.Stderr))
	}
	if c.Path != "" {
		opts := []rotatelogs.Option{
			rotatelogs.WithRotationTime(time.Duration(fu.Maxi(c.RotationHours, 1)) * time.Hour),
			rotatelogs.WithMaxAge(time.Duration(fu.Maxi(c.MaxAgeDays, 1)) * 24 * time.Hour),
		}
		if c.RotationSizeMB > 0 {
			opts = append(opts, rotatelogs.WithRotationSize(int64(c.RotationSizeMB)*1024*1024))
		}
		w, err := rotatelogs.New(c.Path+".%Y%m%d%H", opts...)
		if err != nil {
			return nil, xerrors.Errorf("failed to open log file %v: %w", c.Path, err)
		}
		syncers = append(syncers, zapcore.AddSync(w))
	}
	if len(syncers) == 0 {
		return zap.NewNop().Sugar(), nil
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "time",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "line",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + level.CapitalString() + "]")
		},
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
		},
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(syncers...),
		zap.NewAtomicLevelAt(lvl))
	// Logger methods add one frame
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Named(name).Sugar(), nil
}

/*
Logger is a named logger which can be reconfigured on the fly
*/
type Logger struct {
	name  string
	mutex sync.RWMutex
	zlog  *zap.SugaredLogger
}

func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) Sugar() *zap.SugaredLogger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.zlog
}

func (l *Logger) set(z *zap.SugaredLogger) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	_ = l.zlog.Sync()
	l.zlog = z
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Sugar().Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Sugar().Infof(format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Sugar().Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Sugar().Errorf(format, args...)
}

func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.Sugar().Infow(msg, keysAndValues...)
}

func (l *Logger) Sync() error {
	return l.Sugar().Sync()
}

var (
	loggers = map[string]*Logger{}
	mutex   sync.Mutex
	config  = DefaultConfig(false)
)

/*
Get returns the named logger, creating it with the current configuration if required
*/
func Get(name string) *Logger {
	mutex.Lock()
	defer mutex.Unlock()
	if l, ok := loggers[name]; ok {
		return l
	}
	z, err := newSugared(name, config)
	if err != nil {
		z = zap.NewNop().Sugar()
	}
	l := &Logger{name: name, zlog: z}
	loggers[name] = l
	return l
}

/*
Configure replaces the configuration of all existing and future loggers
*/
func Configure(c Config) error {
	mutex.Lock()
	defer mutex.Unlock()
	if _, err := newSugared("", c); err != nil {
		return err
	}
	config = c
	for name, l := range loggers {
		z, err := newSugared(name, c)
		if err != nil {
			return err
		}
		l.set(z)
	}
	return nil
}

/*
Current returns the active configuration
*/
func Current() Config {
	mutex.Lock()
	defer mutex.Unlock()
	return config
}

/*
Sync flushes all loggers
*/
func Sync() {
	mutex.Lock()
	defer mutex.Unlock()
	for _, l := range loggers {
		_ = l.Sync()
	}
}
