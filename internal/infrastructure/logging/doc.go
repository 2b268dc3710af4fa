// Package logging provides structured logging for switchbotd.
//
// It wraps log/slog so every entry carries the service name and build
// version. Output is JSON by default and plain text when
// logging.format is "text".
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("polling started", "interval", 60)
//
// Never log API tokens or secrets. Log a device id or a key prefix instead.
package logging
