package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

// Format 日志输出格式
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// NewLogger 构造 zap 日志器。level 为空时读取 LOG_LEVEL 环境变量，仍无效时使用 info。
// 日志写到 stderr，stdout 留给替换报告。
func NewLogger(level string, format Format) (*zap.Logger, error) {
	atomic := zap.NewAtomicLevel()
	if strings.TrimSpace(level) == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if err := atomic.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		_ = atomic.UnmarshalText([]byte(defaultLogLevel))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey:     "message",
		TimeKey:        "timestamp",
		LevelKey:       "severity",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
	}

	switch format {
	case FormatJSON:
	case FormatConsole, "":
		format = FormatConsole
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("不支持的日志格式 %q (可用: console, json)", format)
	}

	cfg := zap.Config{
		Level:             atomic,
		Encoding:          string(format),
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     atomic.Level() > zapcore.DebugLevel,
		DisableStacktrace: true,
	}

	return cfg.Build()
}
