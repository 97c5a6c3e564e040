package logger

import "go.uber.org/zap"

// Standard field names for consistent structured logging across EBR.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldBatchID     = "batch_id"
	FieldRecipeID    = "recipe_id"
	FieldTemplateID  = "template_id"
	FieldEquipmentID = "equipment_id"
	FieldEventID     = "event_id"

	// Components
	FieldComponent = "component"

	// Operations
	FieldOperation = "operation"
	FieldMethod    = "method"
	FieldPath      = "path"

	// Errors
	FieldError = "error"

	// Status
	FieldStatus = "status"

	// Network
	FieldPort = "port"
	FieldHost = "host"

	// Retry
	FieldAttempt     = "attempt"
	FieldMaxAttempts = "max_attempts"
)

// Debugw logs a debug message with key-value pairs via the global logger
func Debugw(msg string, keysAndValues ...interface{}) {
	Logger.Debugw(msg, keysAndValues...)
}

// Infow logs an info message with key-value pairs via the global logger
func Infow(msg string, keysAndValues ...interface{}) {
	Logger.Infow(msg, keysAndValues...)
}

// Warnw logs a warning message with key-value pairs via the global logger
func Warnw(msg string, keysAndValues ...interface{}) {
	Logger.Warnw(msg, keysAndValues...)
}

// Errorw logs an error message with key-value pairs via the global logger
func Errorw(msg string, keysAndValues ...interface{}) {
	Logger.Errorw(msg, keysAndValues...)
}

// ComponentLogger returns a logger pre-tagged with a component name.
//
//	log := logger.ComponentLogger("qmib")
//	log.Infow("Publishing batch record", logger.FieldBatchID, id)
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.With(FieldComponent, name)
}

// ChildLogger creates a logger with additional persistent fields
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	if parent == nil {
		parent = Logger
	}
	return parent.With(keysAndValues...)
}
