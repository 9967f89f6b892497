package config

import (
	"os"
	"path/filepath"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ConfigureLogging sets the logrus level from config and, when a log file
// path is given, mirrors all levels into a rotating file.
func ConfigureLogging(cfg *Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
		log.Warnf("unknown log level %q, using info", cfg.LogLevel)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: false})
	log.SetOutput(os.Stdout)

	if cfg.LogFilePath == "" {
		return
	}

	logDir := filepath.Dir(cfg.LogFilePath)
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
			log.Fatalf("create log directory: %v", err)
		}
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    100,
		MaxBackups: 30,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	}

	fileFmt := &log.TextFormatter{DisableColors: true, FullTimestamp: true}
	log.AddHook(lfshook.NewHook(lfshook.WriterMap{
		log.PanicLevel: rotating,
		log.FatalLevel: rotating,
		log.ErrorLevel: rotating,
		log.WarnLevel:  rotating,
		log.InfoLevel:  rotating,
		log.DebugLevel: rotating,
		log.TraceLevel: rotating,
	}, fileFmt))
}
