package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GO_ENV=dev は開発用フォーマット、それ以外は JSON
func New(goEnv string, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var zcfg zap.Config
	if goEnv == "dev" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	return zcfg.Build()
}
