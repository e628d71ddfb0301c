// Package errors provides the structured error type shared by every
// childprocess package.
//
// Each failure carries a machine-readable ErrorCode (LAUNCH_FAILED, TIMEOUT,
// IO_ERROR, INVALID_STATE, ESCALATION_FAILED, ...), a human-readable message,
// optional details and the underlying cause. Two AppErrors compare equal
// under errors.Is when their codes match, so sentinel values work:
//
//	if errors.Is(err, process.ErrLaunch) { ... }
package errors
