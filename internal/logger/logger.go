package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New создаёт логгер: JSON в режиме release, цветной консольный в остальных.
func New(mode string) (*zap.Logger, error) {
	var config zap.Config

	if mode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return config.Build()
}

// Sync сбрасывает буферы, ошибку игнорируем (stderr на linux не синхронизируется)
func Sync(log *zap.Logger) {
	if log != nil {
		_ = log.Sync()
	}
}
