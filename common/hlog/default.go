package hlog

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
)

// 基于标准库 log 的默认记录器，只负责分级与格式化。
type defaultLogger struct {
	std   *log.Logger
	level Level
	depth int
}

func newDefaultLogger(flags int) *defaultLogger {
	return &defaultLogger{
		std:   log.New(os.Stderr, "", flags),
		depth: 4,
	}
}

func (l *defaultLogger) SetOutput(w io.Writer) { l.std.SetOutput(w) }
func (l *defaultLogger) SetLevel(lv Level)     { l.level = lv }

func (l *defaultLogger) Trace(v ...any)  { l.logf(LevelTrace, nil, v...) }
func (l *defaultLogger) Debug(v ...any)  { l.logf(LevelDebug, nil, v...) }
func (l *defaultLogger) Info(v ...any)   { l.logf(LevelInfo, nil, v...) }
func (l *defaultLogger) Notice(v ...any) { l.logf(LevelNotice, nil, v...) }
func (l *defaultLogger) Warn(v ...any)   { l.logf(LevelWarn, nil, v...) }
func (l *defaultLogger) Error(v ...any)  { l.logf(LevelError, nil, v...) }
func (l *defaultLogger) Fatal(v ...any)  { l.logf(LevelFatal, nil, v...) }

func (l *defaultLogger) Tracef(format string, v ...any)  { l.logf(LevelTrace, &format, v...) }
func (l *defaultLogger) Debugf(format string, v ...any)  { l.logf(LevelDebug, &format, v...) }
func (l *defaultLogger) Infof(format string, v ...any)   { l.logf(LevelInfo, &format, v...) }
func (l *defaultLogger) Noticef(format string, v ...any) { l.logf(LevelNotice, &format, v...) }
func (l *defaultLogger) Warnf(format string, v ...any)   { l.logf(LevelWarn, &format, v...) }
func (l *defaultLogger) Errorf(format string, v ...any)  { l.logf(LevelError, &format, v...) }
func (l *defaultLogger) Fatalf(format string, v ...any)  { l.logf(LevelFatal, &format, v...) }

// 默认记录器不读取上下文内容。
func (l *defaultLogger) CtxTracef(_ context.Context, format string, v ...any) {
	l.logf(LevelTrace, &format, v...)
}

func (l *defaultLogger) CtxDebugf(_ context.Context, format string, v ...any) {
	l.logf(LevelDebug, &format, v...)
}

func (l *defaultLogger) CtxInfof(_ context.Context, format string, v ...any) {
	l.logf(LevelInfo, &format, v...)
}

func (l *defaultLogger) CtxNoticef(_ context.Context, format string, v ...any) {
	l.logf(LevelNotice, &format, v...)
}

func (l *defaultLogger) CtxWarnf(_ context.Context, format string, v ...any) {
	l.logf(LevelWarn, &format, v...)
}

func (l *defaultLogger) CtxErrorf(_ context.Context, format string, v ...any) {
	l.logf(LevelError, &format, v...)
}

func (l *defaultLogger) CtxFatalf(_ context.Context, format string, v ...any) {
	l.logf(LevelFatal, &format, v...)
}

func (l *defaultLogger) logf(lv Level, format *string, v ...any) {
	if l.level > lv {
		return
	}
	msg := lv.String()
	if format != nil {
		msg += fmt.Sprintf(*format, v...)
	} else {
		msg += fmt.Sprint(v...)
	}
	_ = l.std.Output(l.depth, msg)
	if lv == LevelFatal {
		os.Exit(1)
	}
}
