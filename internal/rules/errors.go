package rules

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per ConfigError kind.
var (
	ErrMissingField    = errors.New("missing field")
	ErrInvalidKeywords = errors.New("invalid keywords")
	ErrInvalidChildren = errors.New("invalid children")
	ErrInvalidNode     = errors.New("invalid node")
	ErrInvalidName     = errors.New("invalid directory name")
)

// ErrorKind classifies a malformed layout node.
type ErrorKind uint8

const (
	MissingField ErrorKind = iota + 1
	InvalidKeywords
	InvalidChildren
	InvalidNode
	InvalidName
)

func (k ErrorKind) sentinel() error {
	switch k {
	case MissingField:
		return ErrMissingField
	case InvalidKeywords:
		return ErrInvalidKeywords
	case InvalidChildren:
		return ErrInvalidChildren
	case InvalidNode:
		return ErrInvalidNode
	case InvalidName:
		return ErrInvalidName
	}
	return errors.New("unknown config error")
}

// ConfigError reports the first malformed node found while compiling a
// layout. Path is the destination under construction when the error was
// found: the parent path for node-level errors, the node's own path once its
// name is known.
type ConfigError struct {
	Kind   ErrorKind
	Field  string
	Path   string
	Detail string
}

func (e *ConfigError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Field != "" {
		msg += fmt.Sprintf(" %q", e.Field)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" at %q", e.Path)
	} else {
		msg += " at top level"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Kind.sentinel()
}
