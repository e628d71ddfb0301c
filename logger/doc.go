// Package logger provides structured logging for childprocess using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields. The library logs process
// launches and exits at debug level and escalations at warn, so a host that
// never configures logging only sees problems.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("process")
//	log.Debug("launched", logger.Fields(logger.FieldPID, pid))
package logger
