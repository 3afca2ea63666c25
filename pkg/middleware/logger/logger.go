package logger

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ServiceEnv struct {
	Platform string
	Service  string
	Env      string
}

type LogConfig struct {
	Path     string
	LogLevel string
	ServiceEnv
}

var (
	mu     sync.RWMutex
	sugar  = otelzap.New(zap.NewNop()).Sugar()
	writer *lumberjack.Logger
)

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func Init(conf *LogConfig) {
	level := parseLevel(conf.LogLevel)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if conf.Env == "dev" {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), level),
	}

	mu.Lock()
	defer mu.Unlock()
	if conf.Path != "" {
		writer = &lumberjack.Logger{
			Filename:   conf.Path,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(writer), level))
	}

	l := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(2),
		zap.Fields(
			zap.String("platform", conf.Platform),
			zap.String("service", conf.Service),
			zap.String("env", conf.Env),
		))
	sugar = otelzap.New(l, otelzap.WithMinLevel(level)).Sugar()
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = sugar.Sync()
	if writer != nil {
		_ = writer.Close()
	}
}

func with(ctx context.Context) otelzap.SugaredLoggerWithCtx {
	mu.RLock()
	defer mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	return sugar.Ctx(ctx)
}

func Debugf(ctx context.Context, format string, args ...any) { with(ctx).Debugf(format, args...) }

func Infof(ctx context.Context, format string, args ...any) { with(ctx).Infof(format, args...) }

func Warnf(ctx context.Context, format string, args ...any) { with(ctx).Warnf(format, args...) }

func Errorf(ctx context.Context, format string, args ...any) { with(ctx).Errorf(format, args...) }

func Fatalf(ctx context.Context, format string, args ...any) { with(ctx).Fatalf(format, args...) }

// LogWithWriter is the access log middleware.
func LogWithWriter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path
		ctx.Next()

		status := ctx.Writer.Status()
		format := "%s %s %d %s ip=%s"
		args := []any{ctx.Request.Method, path, status, time.Since(start), ctx.ClientIP()}
		switch {
		case status >= 500:
			Errorf(ctx, format, args...)
		case status >= 400:
			Warnf(ctx, format, args...)
		default:
			Infof(ctx, format, args...)
		}
	}
}
