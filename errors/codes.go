package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Process lifecycle errors
const (
	// ErrCodeLaunchFailed indicates native process creation failed or the
	// Spec could not be launched at all.
	ErrCodeLaunchFailed ErrorCode = "LAUNCH_FAILED"
	// ErrCodeTimeout indicates a bounded wait elapsed before the process exited.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeIO indicates a pipe or redirection endpoint could not be set up.
	ErrCodeIO ErrorCode = "IO_ERROR"
	// ErrCodeInvalidState indicates the operation is not valid in the current lifecycle phase.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
	// ErrCodeEscalationFailed indicates the process survived forceful termination.
	ErrCodeEscalationFailed ErrorCode = "ESCALATION_FAILED"
	// ErrCodeExitStatus indicates a process run to completion exited non-zero.
	ErrCodeExitStatus ErrorCode = "EXIT_STATUS"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure inside the library.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:          true,
	ErrCodeLaunchFailed:     false,
	ErrCodeEscalationFailed: false,
	ErrCodeExitStatus:       false,
	ErrCodeInternal:         false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
