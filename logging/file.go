package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewFileLogger returns a logger that writes to the console like NewLogger and also appends
// JSON lines to a size-rotated file at path. Close the returned io.Closer when done.
func NewFileLogger(name, path string, debug bool) (Logger, io.Closer) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	config := NewLoggerConfig()
	config.Level = zap.NewAtomicLevelAt(level)

	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    16,
		MaxBackups: 3,
	}
	fileEncoder := config.EncoderConfig
	fileEncoder.EncodeLevel = zapcore.LowercaseLevelEncoder
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoder), zapcore.AddSync(rotated), level)

	logger := zap.Must(config.Build(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})))
	return &impl{name: name, SugaredLogger: logger.Sugar().Named(name)}, rotated
}
