// Package logger provides structured logging for the converter.
//
// It wraps zerolog behind the Logger interface so components can be handed a
// capturing TestLogger or a no-op logger in tests:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("component", "pipeline")
//	log.InfoWithFields("Batch completed", map[string]interface{}{
//	    "batch": 3,
//	    "processed": 150,
//	})
//
// Console output is colored and written to stderr. When logging.file is set
// the same events are also appended to that file as JSON.
package logger
