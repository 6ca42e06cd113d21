package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var zapLog *zap.Logger

// New builds a development logger at the given level. Stacktraces are hidden.
func New(level zapcore.Level) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("Jan _2 15:04:05.000000000")
	encoderConfig.StacktraceKey = "" // to hide stacktrace info
	config.EncoderConfig = encoderConfig

	return config.Build()
}

// InitLogger sets up the package-level logger used by Info, Warn and friends.
func InitLogger(level zapcore.Level) error {
	l, err := New(level)
	if err != nil {
		return err
	}
	zapLog = l.WithOptions(zap.AddCallerSkip(1))
	return nil
}

// L returns the package-level logger without the extra caller skip, for
// injection into handlers and reporters.
func L() *zap.Logger {
	if zapLog == nil {
		return zap.NewNop()
	}
	return zapLog.WithOptions(zap.AddCallerSkip(-1))
}

func Info(message string, fields ...zap.Field) {
	zapLog.Info(message, fields...)
}

func Warn(message string, fields ...zap.Field) {
	zapLog.Warn(message, fields...)
}

func Debug(message string, fields ...zap.Field) {
	zapLog.Debug(message, fields...)
}

func Error(message string, fields ...zap.Field) {
	zapLog.Error(message, fields...)
}

func Fatal(message string, fields ...zap.Field) {
	zapLog.Fatal(message, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	return zapLog.Sync()
}
