package errors

import "fmt"

// Common error types.
var (
	// Config errors. These are fatal before any pipeline step runs.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")

	// Workflow errors.
	ErrWorkflowParse      = fmt.Errorf("failed to parse workflow")
	ErrWorkflowValidation = fmt.Errorf("invalid workflow")
	ErrUnknownEvent       = fmt.Errorf("unknown event type")
	ErrUnknownJob         = fmt.Errorf("unknown job")

	// Step failures. Any of these fails the pipeline run.
	ErrLintFailed   = fmt.Errorf("lint check failed")
	ErrBuildFailed  = fmt.Errorf("distribution build failed")
	ErrVerifyFailed = fmt.Errorf("distribution verification failed")
	ErrUploadFailed = fmt.Errorf("artifact upload failed")

	// Rule errors.
	ErrRuleConfig    = fmt.Errorf("invalid rule configuration")
	ErrRuleScript    = fmt.Errorf("rule script error")
	ErrRuleExecution = fmt.Errorf("error executing rule")
	ErrRuleLoad      = fmt.Errorf("failed to load rule")

	// Generic errors.
	ErrInvalidPath   = fmt.Errorf("invalid path")
	ErrValidation    = fmt.Errorf("validation failed")
	ErrAlreadyExists = fmt.Errorf("already exists")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
