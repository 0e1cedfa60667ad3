package cmd

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"bill-extraction-service/pkg/errors"
	"bill-extraction-service/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleCLIError prints a friendly rendering of err and returns the exit
// code the process should use.
func HandleCLIError(err error) int {
	return NewCLIErrorHandler().HandleError(err)
}

// HandleError handles errors and provides user-friendly messages
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	// Log the error
	h.logger.WithError(err).Error("Command failed")

	// Handle BillscanError with detailed information
	if billscanErr, ok := errors.AsBillscanError(err); ok {
		return h.handleBillscanError(billscanErr)
	}

	// Multi-error summaries carry their own exit code
	if summary, ok := err.(*errors.ErrorSummary); ok {
		fmt.Fprintf(os.Stderr, "Error: %s\n", summary.Error())
		return summary.GetExitCode()
	}

	// Handle other error types
	return h.handleGenericError(err)
}

// handleBillscanError handles BillscanError with detailed context
func (h *CLIErrorHandler) handleBillscanError(err *errors.BillscanError) int {
	// Print the main error message
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	// Add context information if available
	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	// Add suggestion if available
	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	// Add category-specific help
	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	// Show underlying error in verbose mode
	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-BillscanError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	// Check for common system errors and provide better messages
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	if h.isDiskFullError(err) {
		fmt.Fprintf(os.Stderr, "Error: Insufficient disk space\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Free up disk space and try again\n")
		return 2
	}

	// Generic error handling
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if h.verbose {
		fmt.Fprintf(os.Stderr, "\nFor more details, check the logs or run with --verbose flag\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Ensure you have proper permissions to access the file`

	case errors.CategoryPattern:
		return `Pattern error help:
• Run 'billscan patterns validate' to see every broken pattern file
• Verify the file is valid JSON or YAML with name and fields keys
• Test regexes against RE2 syntax; lookaheads are not supported
• A broken pattern is skipped, other patterns keep working`

	case errors.CategoryExtraction:
		return `Extraction error help:
• Verify the document file contains readable text
• Run 'billscan extract --rank' to see which patterns recognize it
• Check the active patterns with 'billscan patterns list'`

	case errors.CategoryValidation:
		return `Validation error help:
• Check that all required fields have values
• The properties CSV needs a header row with id and address columns
• Ensure amounts contain digits (separators do not matter)`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'billscan --help' to see all available options`

	case errors.CategoryMatch:
		return `Match error help:
• Every property needs a non-empty id and an address
• Try lowering --min-confidence to see near misses
• Verify the bill actually carries a consumption address`

	default:
		return `For more help:
• Use 'billscan --help' for general help
• Use 'billscan <command> --help' for command-specific help
• Report bugs or ask for help on the project repository`
	}
}

// Error detection helpers

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}

func (h *CLIErrorHandler) isDiskFullError(err error) bool {
	if err == syscall.ENOSPC {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left") ||
		strings.Contains(errStr, "disk full") ||
		strings.Contains(errStr, "device full")
}
