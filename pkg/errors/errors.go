package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryPattern       ErrorCategory = "pattern"
	CategoryExtraction    ErrorCategory = "extraction"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryMatch         ErrorCategory = "match"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeDirectoryError ErrorCode = "directory_error"

	// Pattern errors
	CodePatternInvalid    ErrorCode = "pattern_invalid"
	CodePatternSchema     ErrorCode = "pattern_schema"
	CodeRegexCompile      ErrorCode = "regex_compile"
	CodeDuplicateField    ErrorCode = "duplicate_field"
	CodeUnsupportedFormat ErrorCode = "unsupported_format"

	// Extraction errors
	CodeTextExtraction ErrorCode = "text_extraction_failed"
	CodeRulePanic      ErrorCode = "rule_panic"

	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeMissingField  ErrorCode = "missing_field"
	CodeOutOfRange    ErrorCode = "out_of_range"

	// Configuration errors
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeMissingConfig  ErrorCode = "missing_config"
	CodeConfigConflict ErrorCode = "config_conflict"

	// Match errors
	CodePropertyList ErrorCode = "property_list_invalid"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// BillscanError is the base error type for all application errors.
//
// A document that simply matches no pattern is not an error and never
// travels through this type; these categories carry genuine faults only.
type BillscanError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *BillscanError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *BillscanError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *BillscanError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryPattern, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryExtraction, CategoryMatch, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *BillscanError) WithContext(key string, value interface{}) *BillscanError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *BillscanError) WithSuggestion(suggestion string) *BillscanError {
	e.Suggestion = suggestion
	return e
}

// New creates a new BillscanError
func New(category ErrorCategory, code ErrorCode, message string) *BillscanError {
	return &BillscanError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with BillscanError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *BillscanError {
	if err == nil {
		return nil
	}

	return &BillscanError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *BillscanError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeDirectoryError:
		message = fmt.Sprintf("directory error: %s", path)
		suggestion = "ensure the directory exists and is accessible"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *BillscanError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// PatternError creates a vendor-pattern-related error
func PatternError(code ErrorCode, file string, detail string, err error) *BillscanError {
	var message string
	var suggestion string

	switch code {
	case CodePatternInvalid:
		message = fmt.Sprintf("invalid pattern file %s: %s", file, detail)
		suggestion = "fix the pattern definition; other patterns are unaffected"
	case CodePatternSchema:
		message = fmt.Sprintf("pattern file %s violates the pattern schema: %s", file, detail)
		suggestion = "compare the file against a known-good pattern definition"
	case CodeRegexCompile:
		message = fmt.Sprintf("regex in pattern file %s does not compile: %s", file, detail)
		suggestion = "test the expression with RE2 syntax; lookaheads are not supported"
	case CodeDuplicateField:
		message = fmt.Sprintf("pattern file %s declares field %q more than once", file, detail)
		suggestion = "merge the duplicate field entries into one"
	case CodeUnsupportedFormat:
		message = fmt.Sprintf("pattern file %s has an unsupported extension", file)
		suggestion = "use .json, .yaml or .yml pattern files"
	default:
		message = fmt.Sprintf("pattern error in %s: %s", file, detail)
		suggestion = "check the pattern file and try again"
	}

	var result *BillscanError
	if err != nil {
		result = Wrap(err, CategoryPattern, code, message)
	} else {
		result = New(CategoryPattern, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("pattern_file", file)
}

// ExtractionError creates an extraction-related error
func ExtractionError(code ErrorCode, stage string, err error) *BillscanError {
	var message string
	var suggestion string

	switch code {
	case CodeTextExtraction:
		message = fmt.Sprintf("text extraction failed during %s", stage)
		suggestion = "verify the document is readable and try again"
	case CodeRulePanic:
		message = fmt.Sprintf("extraction rule panicked during %s", stage)
		suggestion = "this is likely a bug in a rule definition - report it with the document"
	default:
		message = fmt.Sprintf("extraction error during %s", stage)
		suggestion = "check the document and the active patterns"
	}

	var result *BillscanError
	if err != nil {
		result = Wrap(err, CategoryExtraction, code, message)
	} else {
		result = New(CategoryExtraction, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("stage", stage)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *BillscanError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "ensure amounts contain at least one digit (e.g., '123,45')"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeOutOfRange:
		message = fmt.Sprintf("value out of range in field '%s': %v", field, value)
		suggestion = "ensure the value is within the acceptable range"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *BillscanError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *BillscanError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	case CodeConfigConflict:
		message = fmt.Sprintf("configuration conflict with setting '%s': %v", setting, value)
		suggestion = "resolve the conflicting settings or use default values"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *BillscanError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// MatchError creates a property-matching-related error
func MatchError(code ErrorCode, detail string, err error) *BillscanError {
	var message string
	var suggestion string

	switch code {
	case CodePropertyList:
		message = fmt.Sprintf("invalid property list: %s", detail)
		suggestion = "every property needs a non-empty id"
	default:
		message = fmt.Sprintf("match error: %s", detail)
		suggestion = "review the addresses being compared"
	}

	var result *BillscanError
	if err != nil {
		result = Wrap(err, CategoryMatch, code, message)
	} else {
		result = New(CategoryMatch, code, message)
	}

	return result.WithSuggestion(suggestion)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *BillscanError {
	var message string
	var suggestion string

	switch code {
	case CodeUnexpectedError:
		message = fmt.Sprintf("unexpected error during %s", operation)
		suggestion = "this is likely a bug - please report it with the error details"
	default:
		message = fmt.Sprintf("internal error during %s", operation)
		suggestion = "try again or contact support if the problem persists"
	}

	var result *BillscanError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total        int                   `json:"total"`
	ByCategory   map[ErrorCategory]int `json:"by_category"`
	ByCode       map[ErrorCode]int     `json:"by_code"`
	Errors       []*BillscanError      `json:"errors"`
	SampleErrors []*BillscanError      `json:"sample_errors,omitempty"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*BillscanError) *ErrorSummary {
	if len(errs) == 0 {
		return &ErrorSummary{
			Total:      0,
			ByCategory: make(map[ErrorCategory]int),
			ByCode:     make(map[ErrorCode]int),
			Errors:     []*BillscanError{},
		}
	}

	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	// Include sample errors (max 5)
	maxSamples := 5
	if len(errs) > maxSamples {
		summary.SampleErrors = errs[:maxSamples]
	} else {
		summary.SampleErrors = errs
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCategory checks if the summary contains errors of the given category
func (es *ErrorSummary) HasCategory(category ErrorCategory) bool {
	count, exists := es.ByCategory[category]
	return exists && count > 0
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// Utility functions

// IsBillscanError checks if an error is a BillscanError
func IsBillscanError(err error) bool {
	_, ok := err.(*BillscanError)
	return ok
}

// AsBillscanError extracts a BillscanError from an error chain
func AsBillscanError(err error) (*BillscanError, bool) {
	var billscanErr *BillscanError
	if errors.As(err, &billscanErr) {
		return billscanErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already a BillscanError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *BillscanError {
	if err == nil {
		return nil
	}

	if billscanErr, ok := AsBillscanError(err); ok {
		return billscanErr
	}

	return Wrap(err, category, code, message)
}
