package submission

import (
	"fmt"
)

// DefaultMessage is shown when the failure carries nothing more useful
const DefaultMessage = "Please try again."

// Kind classifies a submission failure
type Kind string

const (
	KindNetwork   Kind = "network"
	KindTimeout   Kind = "timeout"
	KindCancelled Kind = "cancelled"
	KindStatus    Kind = "status"
	KindDecode    Kind = "decode"
	KindRender    Kind = "render"
	KindConfig    Kind = "config"
)

// Error is returned by Submit for every failure. Message is the API's own
// message when one was returned.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("submission %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("submission %s (HTTP %d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("submission %s: %v", e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("submission %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("submission %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Displayable returns the message to show the patient
func (e *Error) Displayable() string {
	switch {
	case e.Kind == KindTimeout:
		return "The request timed out. " + DefaultMessage
	case e.Message != "":
		return e.Message
	}
	return DefaultMessage
}
