// Package cmd provides command implementations for the transfigure CLI.
package cmd

// Exit codes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUsage indicates the command line could not be parsed.
	ExitUsage = 2

	// ExitFatal indicates resolution or output failed.
	ExitFatal = 100
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitUsage:
		return "Usage Error"
	case ExitFatal:
		return "Fatal Error"
	default:
		return "Unknown"
	}
}
