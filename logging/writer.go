package logging

import (
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newFileWriter returns a size-rotated writer for config.Filename.
func newFileWriter(config Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   config.Filename,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
		LocalTime:  true,
	}
}

// getWriteSyncer picks the destination for config.Output. The returned
// closer releases the log file, if any.
func getWriteSyncer(config Config) (zapcore.WriteSyncer, func() error) {
	noop := func() error { return nil }

	switch config.Output {
	case OutputStderr:
		return zapcore.Lock(os.Stderr), noop
	case OutputFile:
		file := newFileWriter(config)
		return zapcore.AddSync(file), file.Close
	case OutputBoth:
		file := newFileWriter(config)
		return zapcore.NewMultiWriteSyncer(
			zapcore.Lock(os.Stdout),
			zapcore.AddSync(file),
		), file.Close
	default:
		return zapcore.Lock(os.Stdout), noop
	}
}
