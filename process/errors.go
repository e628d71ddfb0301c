package process

import "github.com/iconoclast/childprocess/errors"

// Sentinels for errors.Is. They match any AppError with the same code.
var (
	ErrLaunch       = errors.New(errors.ErrCodeLaunchFailed, "launch failed")
	ErrTimeout      = errors.New(errors.ErrCodeTimeout, "timed out")
	ErrIO           = errors.New(errors.ErrCodeIO, "stream setup failed")
	ErrInvalidState = errors.New(errors.ErrCodeInvalidState, "invalid state")
	ErrEscalation   = errors.New(errors.ErrCodeEscalationFailed, "escalation failed")
)
