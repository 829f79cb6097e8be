// Package zerologger 提供基于 zerolog 的 hlog.FullLogger 实现，输出结构化 JSON 日志。
//
//	hlog.SetLogger(zerologger.New(os.Stderr))
package zerologger

import (
	"context"
	"fmt"
	"io"

	"github.com/favbox/h1wire/common/hlog"
	"github.com/rs/zerolog"
)

var _ hlog.FullLogger = (*Logger)(nil)

// Logger 把 hlog 的分级日志转发给 zerolog。
type Logger struct {
	l zerolog.Logger
}

// New 创建写入 w 的记录器，每条日志带有时间戳。
func New(w io.Writer) *Logger {
	return From(zerolog.New(w).With().Timestamp().Logger())
}

// From 包装一个已配置好的 zerolog.Logger。
func From(l zerolog.Logger) *Logger {
	return &Logger{l: l}
}

// Unwrap 返回底层的 zerolog.Logger。
func (l *Logger) Unwrap() zerolog.Logger {
	return l.l
}

func (l *Logger) SetOutput(w io.Writer)  { l.l = l.l.Output(w) }
func (l *Logger) SetLevel(lv hlog.Level) { l.l = l.l.Level(toZerologLevel(lv)) }

func (l *Logger) Trace(v ...any)  { l.emit(&l.l, hlog.LevelTrace, fmt.Sprint(v...)) }
func (l *Logger) Debug(v ...any)  { l.emit(&l.l, hlog.LevelDebug, fmt.Sprint(v...)) }
func (l *Logger) Info(v ...any)   { l.emit(&l.l, hlog.LevelInfo, fmt.Sprint(v...)) }
func (l *Logger) Notice(v ...any) { l.emit(&l.l, hlog.LevelNotice, fmt.Sprint(v...)) }
func (l *Logger) Warn(v ...any)   { l.emit(&l.l, hlog.LevelWarn, fmt.Sprint(v...)) }
func (l *Logger) Error(v ...any)  { l.emit(&l.l, hlog.LevelError, fmt.Sprint(v...)) }
func (l *Logger) Fatal(v ...any)  { l.emit(&l.l, hlog.LevelFatal, fmt.Sprint(v...)) }

func (l *Logger) Tracef(format string, v ...any) {
	l.emit(&l.l, hlog.LevelTrace, fmt.Sprintf(format, v...))
}

func (l *Logger) Debugf(format string, v ...any) {
	l.emit(&l.l, hlog.LevelDebug, fmt.Sprintf(format, v...))
}

func (l *Logger) Infof(format string, v ...any) {
	l.emit(&l.l, hlog.LevelInfo, fmt.Sprintf(format, v...))
}

func (l *Logger) Noticef(format string, v ...any) {
	l.emit(&l.l, hlog.LevelNotice, fmt.Sprintf(format, v...))
}

func (l *Logger) Warnf(format string, v ...any) {
	l.emit(&l.l, hlog.LevelWarn, fmt.Sprintf(format, v...))
}

func (l *Logger) Errorf(format string, v ...any) {
	l.emit(&l.l, hlog.LevelError, fmt.Sprintf(format, v...))
}

func (l *Logger) Fatalf(format string, v ...any) {
	l.emit(&l.l, hlog.LevelFatal, fmt.Sprintf(format, v...))
}

// 上下文中通过 zerolog.Logger.WithContext 携带的记录器优先，否则使用自身。
func (l *Logger) ctxLogger(ctx context.Context) *zerolog.Logger {
	if zl := zerolog.Ctx(ctx); zl != nil && zl.GetLevel() != zerolog.Disabled {
		return zl
	}
	return &l.l
}

func (l *Logger) CtxTracef(ctx context.Context, format string, v ...any) {
	l.emit(l.ctxLogger(ctx), hlog.LevelTrace, fmt.Sprintf(format, v...))
}

func (l *Logger) CtxDebugf(ctx context.Context, format string, v ...any) {
	l.emit(l.ctxLogger(ctx), hlog.LevelDebug, fmt.Sprintf(format, v...))
}

func (l *Logger) CtxInfof(ctx context.Context, format string, v ...any) {
	l.emit(l.ctxLogger(ctx), hlog.LevelInfo, fmt.Sprintf(format, v...))
}

func (l *Logger) CtxNoticef(ctx context.Context, format string, v ...any) {
	l.emit(l.ctxLogger(ctx), hlog.LevelNotice, fmt.Sprintf(format, v...))
}

func (l *Logger) CtxWarnf(ctx context.Context, format string, v ...any) {
	l.emit(l.ctxLogger(ctx), hlog.LevelWarn, fmt.Sprintf(format, v...))
}

func (l *Logger) CtxErrorf(ctx context.Context, format string, v ...any) {
	l.emit(l.ctxLogger(ctx), hlog.LevelError, fmt.Sprintf(format, v...))
}

func (l *Logger) CtxFatalf(ctx context.Context, format string, v ...any) {
	l.emit(l.ctxLogger(ctx), hlog.LevelFatal, fmt.Sprintf(format, v...))
}

// Fatal 级别由 zerolog 负责在写出后退出进程。
func (l *Logger) emit(zl *zerolog.Logger, lv hlog.Level, msg string) {
	var e *zerolog.Event
	switch lv {
	case hlog.LevelTrace:
		e = zl.Trace()
	case hlog.LevelDebug:
		e = zl.Debug()
	case hlog.LevelInfo:
		e = zl.Info()
	case hlog.LevelNotice:
		e = zl.Info().Bool("notice", true)
	case hlog.LevelWarn:
		e = zl.Warn()
	case hlog.LevelError:
		e = zl.Error()
	default:
		e = zl.Fatal()
	}
	e.Msg(msg)
}

func toZerologLevel(lv hlog.Level) zerolog.Level {
	switch lv {
	case hlog.LevelTrace:
		return zerolog.TraceLevel
	case hlog.LevelDebug:
		return zerolog.DebugLevel
	case hlog.LevelInfo, hlog.LevelNotice:
		return zerolog.InfoLevel
	case hlog.LevelWarn:
		return zerolog.WarnLevel
	case hlog.LevelError:
		return zerolog.ErrorLevel
	}
	return zerolog.FatalLevel
}
