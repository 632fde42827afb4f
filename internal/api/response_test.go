// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/parleyhq/parley/internal/logging"
)

func TestResponseWriter_Success(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)

	data := map[string]string{"message": "hello"}
	NewResponseWriter(w, r).Success(data)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	var response APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if !response.Success {
		t.Error("Expected Success to be true")
	}
	if response.Error != nil {
		t.Error("Expected Error to be nil")
	}
	if response.Meta == nil {
		t.Fatal("Expected Meta to not be nil")
	}
	if response.Meta.Timestamp.IsZero() {
		t.Error("Expected Timestamp to be set")
	}
}

func TestResponseWriter_Created(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/test", nil)

	NewResponseWriter(w, r).Created(map[string]int{"id": 123})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}

	var response APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !response.Success {
		t.Error("Expected Success to be true")
	}
}

func TestResponseWriter_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/test", nil)

	NewResponseWriter(w, r).NoContent()

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Error("Expected empty body for NoContent")
	}
}

func TestResponseWriter_BadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/test", nil)

	NewResponseWriter(w, r).BadRequest("bad input")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var response APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Success {
		t.Error("Expected Success to be false")
	}
	if response.Error == nil {
		t.Fatal("Expected Error to be set")
	}
	if response.Error.Code != ErrCodeBadRequest {
		t.Errorf("Error.Code = %q, want %q", response.Error.Code, ErrCodeBadRequest)
	}
	if response.Error.Message != "bad input" {
		t.Errorf("Error.Message = %q", response.Error.Message)
	}
}

func TestResponseWriter_NotFound(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)

	NewResponseWriter(w, r).NotFound("Conversation not found")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	var response APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Error == nil || response.Error.Code != ErrCodeNotFound {
		t.Errorf("Error = %+v, want code %q", response.Error, ErrCodeNotFound)
	}
}

func TestResponseWriter_ValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/test", nil)

	details := map[string]string{"text": "is required"}
	NewResponseWriter(w, r).ValidationError("Request validation failed", details)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var response APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Error == nil {
		t.Fatal("Expected Error to be set")
	}
	if response.Error.Code != ErrCodeValidationFailed {
		t.Errorf("Error.Code = %q, want %q", response.Error.Code, ErrCodeValidationFailed)
	}

	decoded, ok := response.Error.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("Details type = %T, want map", response.Error.Details)
	}
	if decoded["text"] != "is required" {
		t.Errorf("Details[text] = %v", decoded["text"])
	}
}

func TestResponseWriter_ServiceUnavailable(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/test", nil)

	NewResponseWriter(w, r).ServiceUnavailable("Session limit reached, try again later")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}

	var response APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Error == nil || response.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("Error = %+v, want code %q", response.Error, ErrCodeServiceUnavailable)
	}
}

func TestResponseWriter_ExternalServiceError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/test", nil)

	NewResponseWriter(w, r).ExternalServiceError("model runtime", errors.New("connection refused"))

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}

	var response APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Error == nil || response.Error.Code != ErrCodeExternalServiceFail {
		t.Errorf("Error = %+v, want code %q", response.Error, ErrCodeExternalServiceFail)
	}
	if response.Error.Message != "External service unavailable: model runtime" {
		t.Errorf("Error.Message = %q", response.Error.Message)
	}
}

func TestResponseWriter_RequestIDPropagated(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := logging.ContextWithRequestID(r.Context(), "req-test-42")
	r = r.WithContext(ctx)

	NewResponseWriter(w, r).NotFound("nope")

	var response APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Error == nil || response.Error.RequestID != "req-test-42" {
		t.Errorf("Error.RequestID = %+v, want req-test-42", response.Error)
	}
	if response.Meta == nil || response.Meta.RequestID != "req-test-42" {
		t.Errorf("Meta.RequestID = %+v, want req-test-42", response.Meta)
	}
}
