// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package validation provides struct validation for configuration and
// API request bodies using go-playground/validator.
//
// A single validator instance is shared process-wide. Validation
// failures are translated into field-level messages suitable for API
// responses, so handlers never leak raw validator internals to clients.
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Get returns the shared validator instance, creating it on first use.
func Get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// FieldError describes a single failed validation rule on one field.
type FieldError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the namespaced field that failed validation.
func (e FieldError) Field() string { return e.field }

// Tag returns the validation rule that failed.
func (e FieldError) Tag() string { return e.tag }

// Message returns the human-readable description of the failure.
func (e FieldError) Message() string { return e.message }

// Error implements the error interface.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

// StructError aggregates every field failure found in one struct.
type StructError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *StructError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return strings.Join(msgs, "; ")
}

// Details returns a field-to-message map for API error payloads.
func (e *StructError) Details() map[string]string {
	details := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		details[f.field] = f.message
	}
	return details
}

// ValidateStruct validates s against its `validate` struct tags.
// It returns nil when every rule passes, and a *StructError listing
// each failed field otherwise.
func ValidateStruct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError: s was not a struct at all.
		return fmt.Errorf("validation: %w", err)
	}

	structErr := &StructError{Fields: make([]FieldError, 0, len(invalid))}
	for _, fe := range invalid {
		structErr.Fields = append(structErr.Fields, FieldError{
			field:   fieldName(fe),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: translate(fe),
		})
	}
	return structErr
}

// fieldName strips the outermost struct name from the namespace so
// messages read "server.port" rather than "Config.Server.Port".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

// messageTemplates maps rules that need no parameter to their message.
var messageTemplates = map[string]string{
	"required": "is required",
	"url":      "must be a valid URL",
	"uuid":     "must be a valid UUID",
	"oneof":    "must be one of the allowed values",
}

// translate renders a failed rule as a human-readable message.
func translate(fe validator.FieldError) string {
	if msg, ok := messageTemplates[fe.Tag()]; ok {
		if fe.Tag() == "oneof" {
			return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
		}
		return msg
	}

	switch fe.Tag() {
	case "min", "gte":
		return boundMessage(fe, "at least")
	case "max", "lte":
		return boundMessage(fe, "at most")
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// boundMessage phrases min/max rules differently for strings, where
// the parameter is a length, and numbers, where it is a value.
func boundMessage(fe validator.FieldError, bound string) string {
	if _, ok := fe.Value().(string); ok {
		return fmt.Sprintf("must be %s %s characters", bound, fe.Param())
	}
	return fmt.Sprintf("must be %s %s", bound, fe.Param())
}
