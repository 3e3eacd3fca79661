// Package logging builds the service's zap logger.
package logging

import (
	"os"

	"github.com/kasuganosora/questservice/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a development logger when debug is set and a production
// JSON logger otherwise. A non-empty cfg.FilePath tees output into a
// size-rotated file.
func New(debug bool, cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.FilePath == "" {
		if debug {
			return zap.NewDevelopment()
		}
		return zap.NewProduction()
	}

	var (
		encCfg zapcore.EncoderConfig
		level  zapcore.Level
	)
	if debug {
		encCfg = zap.NewDevelopmentEncoderConfig()
		level = zapcore.DebugLevel
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		level = zapcore.InfoLevel
	}

	file := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})

	consoleEnc := zapcore.NewConsoleEncoder(encCfg)
	if !debug {
		consoleEnc = zapcore.NewJSONEncoder(encCfg)
	}
	core := zapcore.NewTee(
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), file, level),
	)
	return zap.New(core, zap.AddCaller()), nil
}
