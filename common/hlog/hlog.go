package hlog

import (
	"context"
	"io"
	"log"
)

const defaultFlags = log.LstdFlags | log.Lshortfile | log.Lmicroseconds

var (
	// 提供默认记录器供使用
	logger FullLogger = newDefaultLogger(defaultFlags)

	// 提供系统记录器供使用，编码器内部日志均经由它输出
	sysLogger FullLogger = &systemLogger{
		logger: newDefaultLogger(defaultFlags),
		prefix: systemLogPrefix,
	}
)

// SetOutput 设置默认记录器和系统记录器的写入器。默认为 os.Stderr。
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
	sysLogger.SetOutput(w)
}

// SetLevel 设置日志的输出级别，低于该级别将不输出。默认级别为 LevelTrace。并发不安全。
func SetLevel(lv Level) {
	logger.SetLevel(lv)
	sysLogger.SetLevel(lv)
}

// DefaultLogger 返回默认记录器。
func DefaultLogger() FullLogger {
	return logger
}

// SystemLogger 返回系统日志记录器。该函数不建议业务端使用。
func SystemLogger() FullLogger {
	return sysLogger
}

// SetSystemLogger 设置系统记录器。并发不安全，在使用 SystemLogger 和全局函数后不得调用。
func SetSystemLogger(v FullLogger) {
	sysLogger = &systemLogger{
		logger: v,
		prefix: systemLogPrefix,
	}
}

// SetLogger 设置默认记录器和系统记录器。并发不安全。
func SetLogger(v FullLogger) {
	logger = v
	SetSystemLogger(v)
}

func Trace(v ...any)  { logger.Trace(v...) }
func Debug(v ...any)  { logger.Debug(v...) }
func Info(v ...any)   { logger.Info(v...) }
func Notice(v ...any) { logger.Notice(v...) }
func Warn(v ...any)   { logger.Warn(v...) }
func Error(v ...any)  { logger.Error(v...) }

// Fatal 调用默认记录器的 Fatal 方法，然后 os.Exit(1)。
func Fatal(v ...any) { logger.Fatal(v...) }

func Tracef(format string, v ...any)  { logger.Tracef(format, v...) }
func Debugf(format string, v ...any)  { logger.Debugf(format, v...) }
func Infof(format string, v ...any)   { logger.Infof(format, v...) }
func Noticef(format string, v ...any) { logger.Noticef(format, v...) }
func Warnf(format string, v ...any)   { logger.Warnf(format, v...) }
func Errorf(format string, v ...any)  { logger.Errorf(format, v...) }

// Fatalf 调用默认记录器的 Fatalf 方法，然后 os.Exit(1)。
func Fatalf(format string, v ...any) { logger.Fatalf(format, v...) }

func CtxTracef(ctx context.Context, format string, v ...any)  { logger.CtxTracef(ctx, format, v...) }
func CtxDebugf(ctx context.Context, format string, v ...any)  { logger.CtxDebugf(ctx, format, v...) }
func CtxInfof(ctx context.Context, format string, v ...any)   { logger.CtxInfof(ctx, format, v...) }
func CtxNoticef(ctx context.Context, format string, v ...any) { logger.CtxNoticef(ctx, format, v...) }
func CtxWarnf(ctx context.Context, format string, v ...any)   { logger.CtxWarnf(ctx, format, v...) }
func CtxErrorf(ctx context.Context, format string, v ...any)  { logger.CtxErrorf(ctx, format, v...) }
func CtxFatalf(ctx context.Context, format string, v ...any)  { logger.CtxFatalf(ctx, format, v...) }
