package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none normal debug"`
	Destination string `yaml:"destination,omitempty" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	ConsoleLogger LoggerConfig  `yaml:"console"`
	FileLogger    *LoggerConfig `yaml:"file,omitempty"`
}

// Prepare returns configured zap logger. Console output goes to stderr so
// that rendered documents can be written to stdout. verbose raises the
// console level to debug.
func (conf *LoggingConfig) Prepare(verbose bool) (*zap.Logger, error) {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder

	level := conf.ConsoleLogger.Level
	if verbose {
		level = "debug"
	}
	cores := []zapcore.Core{consoleCore(level, zapcore.NewConsoleEncoder(ec))}

	if fl := conf.FileLogger; fl != nil && fl.Level != "none" && fl.Destination != "" {
		flags := os.O_CREATE | os.O_WRONLY
		if fl.Mode == "append" {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(fl.Destination, flags, 0644)
		if err != nil {
			return nil, fmt.Errorf("unable to access file log destination (%s): %w", fl.Destination, err)
		}
		lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
		if fl.Level == "debug" {
			lvl = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(f), lvl))
	}
	return zap.New(zapcore.NewTee(cores...)).Named("mathcell"), nil
}

func consoleCore(level string, enc zapcore.Encoder) zapcore.Core {
	var floor zapcore.Level
	switch level {
	case "debug":
		floor = zapcore.DebugLevel
	case "normal":
		floor = zapcore.InfoLevel
	default:
		return zapcore.NewNopCore()
	}
	return zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= floor
	}))
}
