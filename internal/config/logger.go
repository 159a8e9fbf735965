package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/simp-lee/logger"
)

// SetupLogger builds the process logger from cfg and installs it as the slog
// default. The caller must Close it on shutdown.
func SetupLogger(cfg *LogConfig) (*logger.Logger, error) {
	opts := cfg.options()
	if opts == nil {
		return nil, errors.New("log config is nil")
	}
	log, err := logger.New(opts...)
	if err != nil {
		return nil, err
	}
	log.SetDefault()
	return log, nil
}

// options translates the config into logger options. Context middleware is
// always installed so request-scoped attributes (request_id, locale) reach
// every record logged with a request context.
func (c *LogConfig) options() []logger.Option {
	if c == nil {
		return nil
	}
	format := outputFormat(c.Format)
	color := c.Color == nil || *c.Color

	opts := []logger.Option{
		logger.WithLevel(parseLevel(c.Level)),
		logger.WithMiddleware(logger.ContextMiddleware()),
		logger.WithConsoleFormat(format),
		logger.WithConsoleColor(color),
	}
	if c.FilePath == "" {
		return opts
	}

	opts = append(opts, logger.WithFilePath(c.FilePath), logger.WithFileFormat(format))
	if c.MaxSizeMB > 0 {
		opts = append(opts, logger.WithMaxSizeMB(c.MaxSizeMB))
	}
	if c.RetentionDays > 0 {
		opts = append(opts, logger.WithRetentionDays(c.RetentionDays))
	}
	if c.MaxBackups > 0 {
		opts = append(opts, logger.WithMaxBackups(c.MaxBackups))
	}
	if c.CompressRotated != nil {
		opts = append(opts, logger.WithCompressRotated(*c.CompressRotated))
	}
	return opts
}

func outputFormat(s string) logger.OutputFormat {
	switch strings.ToLower(s) {
	case "json":
		return logger.FormatJSON
	case "text":
		return logger.FormatText
	}
	return logger.FormatCustom
}

// parseLevel maps a level name to slog; unknown names mean info.
func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}
