package commons

import "fmt"

type errorWrapper struct {
	tag   string
	msg   string
	cause error
}

// MetaError generates an error with a cached tag
type MetaError func(msg string) error

// MetaWrapError generates an error with a cached tag, wrapping a cause.
// The cause stays reachable through errors.Is and errors.As.
type MetaWrapError func(cause error, msg string) error

const errFormat = "[%s] %s"

func (err errorWrapper) Error() string {
	if err.cause == nil {
		return fmt.Sprintf(errFormat, err.tag, err.msg)
	}
	if err.msg == "" {
		return fmt.Sprintf(errFormat, err.tag, err.cause.Error())
	}
	return fmt.Sprintf(errFormat+": %s", err.tag, err.msg, err.cause.Error())
}

func (err errorWrapper) Unwrap() error {
	return err.cause
}

// NewTaggedError generates an error generator given a tag
func NewTaggedError(tag string) MetaError {
	return func(msg string) error {
		return errorWrapper{tag: tag, msg: msg}
	}
}

// NewTaggedWrapper generates an error generator given a tag.
func NewTaggedWrapper(tag string) MetaWrapError {
	return func(cause error, msg string) error {
		return errorWrapper{tag: tag, msg: msg, cause: cause}
	}
}
