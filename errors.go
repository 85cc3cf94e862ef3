package elastic

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for the mapping core.
var (
	// ErrMapping signals that type metadata could not be constructed.
	ErrMapping = errors.New("elastic: mapping error")
	// ErrConversion signals that a value could not be coerced between
	// document and domain shapes.
	ErrConversion = errors.New("elastic: conversion error")
	// ErrInvalidArgument signals a caller contract violation.
	ErrInvalidArgument = errors.New("elastic: invalid argument")
	// ErrNotFound signals a missing document in a Backend.
	ErrNotFound = errors.New("elastic: document not found")
)

// MappingError wraps ErrMapping with the offending entity type and reason.
type MappingError struct {
	Type   string
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s: type %s: %s", ErrMapping.Error(), e.Type, e.Reason)
}

func (e *MappingError) Unwrap() error { return ErrMapping }

func newMappingError(t reflect.Type, format string, args ...any) error {
	return &MappingError{Type: t.String(), Reason: fmt.Sprintf(format, args...)}
}

// ConversionError wraps ErrConversion with the property name and the source
// and target shapes of the failed coercion.
type ConversionError struct {
	Property string
	From     string
	To       string
	Reason   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: property %q: cannot convert %s to %s: %s",
		ErrConversion.Error(), e.Property, e.From, e.To, e.Reason)
}

func (e *ConversionError) Unwrap() error { return ErrConversion }

func newConversionError(property string, raw any, target reflect.Type, format string, args ...any) error {
	return &ConversionError{
		Property: property,
		From:     valueShape(raw),
		To:       target.String(),
		Reason:   fmt.Sprintf(format, args...),
	}
}

// valueShape names the document-side shape of a raw value for diagnostics.
func valueShape(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case Document:
		return "nested document"
	case []any:
		return "sequence"
	default:
		return fmt.Sprintf("scalar (%T)", t)
	}
}
