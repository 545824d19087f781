package errors

import "fmt"

// Error codes used across argorun. Codes are stable identifiers meant for log
// filtering, not for user-facing messages.
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeSubmitFailed  = "SUBMIT_FAILED"
	CodeStatusFailed  = "STATUS_FAILED"
	CodeNotifyFailed  = "NOTIFY_FAILED"
)

type ArgoRunError struct {
	Code    string
	Message string
	Err     error
}

func (e *ArgoRunError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ArgoRunError) Unwrap() error {
	return e.Err
}

func New(code, message string) *ArgoRunError {
	return &ArgoRunError{Code: code, Message: message}
}

func Wrap(err error, code, message string) *ArgoRunError {
	return &ArgoRunError{Code: code, Message: message, Err: err}
}
