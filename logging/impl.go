package logging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	impl struct {
		name  string
		level AtomicLevel
		inUTC bool

		appenders []Appender
	}

	// LogEntry embeds a zapcore Entry and slice of Fields.
	LogEntry struct {
		zapcore.Entry
		fields []zapcore.Field
	}
)

// skipToLogCaller is the number of frames between `runtime.Caller` and the user's call site:
// getCaller <- newLogEntry <- format* <- build closure <- emit <- Info/Debugf/... <- caller.
const skipToLogCaller = 6

func (imp *impl) newLogEntry(logLevel Level) *LogEntry {
	ret := &LogEntry{}
	ret.Time = time.Now()
	ret.Level = logLevel.AsZap()
	ret.LoggerName = imp.name
	ret.Caller = getCaller()

	return ret
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) Desugar() *zap.Logger {
	return imp.AsZap().Desugar()
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Level() zapcore.Level {
	return imp.GetLevel().AsZap()
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}

	return &impl{
		name:      newName,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		appenders: imp.appenders,
	}
}

func (imp *impl) Named(name string) *zap.SugaredLogger {
	return imp.AsZap().Named(name)
}

func (imp *impl) Sync() error {
	var errs []error
	for _, appender := range imp.appenders {
		if err := appender.Sync(); err != nil {
			errs = append(errs, err)
		}
	}

	return multierr.Combine(errs...)
}

func (imp *impl) With(args ...interface{}) *zap.SugaredLogger {
	return imp.AsZap().With(args...)
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	// Appenders that are also a `zapcore.Core` (the observer used by tests) are teed into the
	// returned logger so that zap-native callers still reach them.
	var copiedCores []zapcore.Core
	for _, appender := range imp.appenders {
		if core, ok := appender.(zapcore.Core); ok {
			copiedCores = append(copiedCores, core)
		}
	}

	config := NewZapLoggerConfig()
	config.Level = GlobalLogLevel
	ret := zap.Must(config.Build()).Sugar().Named(imp.name)
	for _, core := range copiedCores {
		ret = ret.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, core)
		}))
	}

	return ret
}

func (imp *impl) shouldLog(logLevel Level) bool {
	if GlobalLogLevel.Level() == zapcore.DebugLevel {
		return true
	}

	return logLevel >= imp.level.Get()
}

func (imp *impl) write(entry *LogEntry) {
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}

	for _, appender := range imp.appenders {
		if err := appender.Write(entry.Entry, entry.fields); err != nil {
			fmt.Fprint(os.Stderr, err)
		}
	}
}

// emit writes the entry built by `build` when enabled. `build` is only invoked when the entry
// will be written.
func (imp *impl) emit(enabled bool, build func() *LogEntry) {
	if !enabled {
		return
	}
	imp.write(build())
}

// emitFatal always writes the entry and exits the process.
func (imp *impl) emitFatal(build func() *LogEntry) {
	imp.write(build())
	os.Exit(1)
}

// Constructs the log message by forwarding to `fmt.Sprint`.
func (imp *impl) format(logLevel Level, args ...interface{}) *LogEntry {
	logEntry := imp.newLogEntry(logLevel)
	logEntry.Message = fmt.Sprint(args...)
	return logEntry
}

// Constructs the log message by forwarding to `fmt.Sprintf`.
func (imp *impl) formatf(logLevel Level, template string, args ...interface{}) *LogEntry {
	logEntry := imp.newLogEntry(logLevel)
	logEntry.Message = fmt.Sprintf(template, args...)
	return logEntry
}

// Turns `keysAndValues` into zap fields where the odd elements are the keys and their following even
// counterpart is the value.
func (imp *impl) formatw(logLevel Level, msg string, keysAndValues ...interface{}) *LogEntry {
	logEntry := imp.newLogEntry(logLevel)
	logEntry.Message = msg

	logEntry.fields = make([]zapcore.Field, 0, len(keysAndValues)/2)
	for keyIdx := 0; keyIdx < len(keysAndValues); keyIdx += 2 {
		keyObj := keysAndValues[keyIdx]
		var keyStr string
		if stringer, ok := keyObj.(fmt.Stringer); ok {
			keyStr = stringer.String()
		} else {
			keyStr = fmt.Sprintf("%v", keyObj)
		}

		if keyIdx+1 < len(keysAndValues) {
			logEntry.fields = append(logEntry.fields, zap.Any(keyStr, keysAndValues[keyIdx+1]))
		} else {
			// API mis-use. Slip in an error value rather than silently dropping the key.
			logEntry.fields = append(logEntry.fields, zap.Any(keyStr, errors.New("unpaired log key")))
		}
	}

	return logEntry
}

func (imp *impl) Debug(args ...interface{}) {
	imp.emit(imp.shouldLog(DEBUG), func() *LogEntry { return imp.format(DEBUG, args...) })
}

func (imp *impl) CDebug(ctx context.Context, args ...interface{}) {
	imp.emit(imp.shouldLog(DEBUG) || IsDebugMode(ctx), func() *LogEntry { return imp.format(DEBUG, args...) })
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.emit(imp.shouldLog(DEBUG), func() *LogEntry { return imp.formatf(DEBUG, template, args...) })
}

func (imp *impl) CDebugf(ctx context.Context, template string, args ...interface{}) {
	imp.emit(imp.shouldLog(DEBUG) || IsDebugMode(ctx), func() *LogEntry { return imp.formatf(DEBUG, template, args...) })
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.emit(imp.shouldLog(DEBUG), func() *LogEntry { return imp.formatw(DEBUG, msg, keysAndValues...) })
}

func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.emit(imp.shouldLog(DEBUG) || IsDebugMode(ctx), func() *LogEntry { return imp.formatw(DEBUG, msg, keysAndValues...) })
}

func (imp *impl) Info(args ...interface{}) {
	imp.emit(imp.shouldLog(INFO), func() *LogEntry { return imp.format(INFO, args...) })
}

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.emit(imp.shouldLog(INFO), func() *LogEntry { return imp.formatf(INFO, template, args...) })
}

func (imp *impl) CInfof(ctx context.Context, template string, args ...interface{}) {
	imp.emit(imp.shouldLog(INFO) || IsDebugMode(ctx), func() *LogEntry { return imp.formatf(INFO, template, args...) })
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.emit(imp.shouldLog(INFO), func() *LogEntry { return imp.formatw(INFO, msg, keysAndValues...) })
}

func (imp *impl) Warn(args ...interface{}) {
	imp.emit(imp.shouldLog(WARN), func() *LogEntry { return imp.format(WARN, args...) })
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.emit(imp.shouldLog(WARN), func() *LogEntry { return imp.formatf(WARN, template, args...) })
}

func (imp *impl) CWarnf(ctx context.Context, template string, args ...interface{}) {
	imp.emit(imp.shouldLog(WARN) || IsDebugMode(ctx), func() *LogEntry { return imp.formatf(WARN, template, args...) })
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.emit(imp.shouldLog(WARN), func() *LogEntry { return imp.formatw(WARN, msg, keysAndValues...) })
}

func (imp *impl) Error(args ...interface{}) {
	imp.emit(imp.shouldLog(ERROR), func() *LogEntry { return imp.format(ERROR, args...) })
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.emit(imp.shouldLog(ERROR), func() *LogEntry { return imp.formatf(ERROR, template, args...) })
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.emit(imp.shouldLog(ERROR), func() *LogEntry { return imp.formatw(ERROR, msg, keysAndValues...) })
}

// These Fatal* methods log as errors then exit the process.
func (imp *impl) Fatal(args ...interface{}) {
	imp.emitFatal(func() *LogEntry { return imp.format(ERROR, args...) })
}

func (imp *impl) Fatalf(template string, args ...interface{}) {
	imp.emitFatal(func() *LogEntry { return imp.formatf(ERROR, template, args...) })
}

func (imp *impl) Fatalw(msg string, keysAndValues ...interface{}) {
	imp.emitFatal(func() *LogEntry { return imp.formatw(ERROR, msg, keysAndValues...) })
}

// Return example: "logging/impl_test.go:36".
func getCaller() zapcore.EntryCaller {
	var ok bool
	var entryCaller zapcore.EntryCaller
	entryCaller.PC, entryCaller.File, entryCaller.Line, ok = runtime.Caller(skipToLogCaller)
	if !ok {
		return entryCaller
	}
	entryCaller.Defined = true

	runtimeFunc := runtime.FuncForPC(entryCaller.PC)
	if runtimeFunc != nil {
		entryCaller.Function = runtimeFunc.Name()
	}

	return entryCaller
}
