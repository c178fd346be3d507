package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "logging.level")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"console", "json"}
}

// maxSimulatedRanks bounds --simulate; every rank is a goroutine pair.
const maxSimulatedRanks = 1024

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLibrary()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateRun()...)

	return errors
}

func (c *Config) validateLibrary() []ValidationError {
	var errors []ValidationError

	// the path is only needed when talking to a real library
	if c.Run.Simulate == 0 && strings.TrimSpace(c.Library.Path) == "" {
		errors = append(errors, ValidationError{
			Field:   "library.path",
			Value:   c.Library.Path,
			Message: "cannot be empty",
		})
	}
	if strings.ContainsRune(c.Library.Path, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "library.path",
			Value:   c.Library.Path,
			Message: "contains invalid null character",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if !slices.Contains(ValidLogFormats(), c.Logging.Format) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateRun() []ValidationError {
	var errors []ValidationError

	if c.Run.Simulate < 0 || c.Run.Simulate > maxSimulatedRanks {
		errors = append(errors, ValidationError{
			Field:   "run.simulate",
			Value:   c.Run.Simulate,
			Message: fmt.Sprintf("must be between 0 and %d", maxSimulatedRanks),
		})
	}

	return errors
}
