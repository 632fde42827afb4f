// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/parleyhq/parley/internal/inference"
)

// newRuntimeServer starts a stub model runtime sidecar. Handlers receive the
// decoded request body and return the value to encode as the response.
func newRuntimeServer(t *testing.T, handlers map[string]func(t *testing.T, body []byte) interface{}) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/meta", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, metaResponse{SepToken: "</s>", Model: "barcor-redial"})
	})
	for path, handler := range handlers {
		h := handler
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				t.Errorf("Failed to read request body: %v", err)
			}
			writeJSON(t, w, h(t, body))
		})
	}

	return httptest.NewServer(mux)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("Failed to encode response: %v", err)
	}
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURL = serverURL
	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestNew(t *testing.T) {
	server := newRuntimeServer(t, nil)
	defer server.Close()

	client := newTestClient(t, server.URL)

	if got, want := client.SepToken(), "</s>"; got != want {
		t.Errorf("SepToken() = %q, want %q", got, want)
	}
	if got, want := client.Name(), "barcor-redial"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestNew_NoBaseURL(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err != ErrNoBaseURL {
		t.Errorf("New() error = %v, want ErrNoBaseURL", err)
	}
}

func TestNew_MetaFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("Expected error when metadata fetch fails, got nil")
	}
}

func TestClient_Encode(t *testing.T) {
	server := newRuntimeServer(t, map[string]func(t *testing.T, body []byte) interface{}{
		"/v1/encode": func(t *testing.T, body []byte) interface{} {
			var req encodeRequest
			if err := json.Unmarshal(body, &req); err != nil {
				t.Errorf("Failed to decode encode request: %v", err)
			}
			if got, want := req.Text, "User: hi</s>System: hello"; got != want {
				t.Errorf("Request text = %q, want %q", got, want)
			}
			if got, want := req.Truncation, "left"; got != want {
				t.Errorf("Request truncation = %q, want %q", got, want)
			}
			if got, want := req.MaxLength, 200; got != want {
				t.Errorf("Request max_length = %d, want %d", got, want)
			}
			if !req.AddSpecialTokens {
				t.Error("Request add_special_tokens = false, want true")
			}
			return encodeResponse{IDs: []int{101, 7592, 102}}
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	ids, err := client.Encode(context.Background(), "User: hi</s>System: hello", inference.EncodeOptions{
		MaxLength:        200,
		Truncation:       inference.TruncationLeft,
		AddSpecialTokens: true,
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if want := []int{101, 7592, 102}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Encode() = %v, want %v", ids, want)
	}
}

func TestClient_Decode(t *testing.T) {
	server := newRuntimeServer(t, map[string]func(t *testing.T, body []byte) interface{}{
		"/v1/decode": func(t *testing.T, body []byte) interface{} {
			var req decodeRequest
			if err := json.Unmarshal(body, &req); err != nil {
				t.Errorf("Failed to decode decode request: %v", err)
			}
			if !req.SkipSpecialTokens {
				t.Error("Request skip_special_tokens = false, want true")
			}
			return decodeResponse{Text: "System: sure, what do you like?"}
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	text, err := client.Decode(context.Background(), []int{5, 6, 7}, true)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if want := "System: sure, what do you like?"; text != want {
		t.Errorf("Decode() = %q, want %q", text, want)
	}
}

func TestClient_Pad(t *testing.T) {
	server := newRuntimeServer(t, map[string]func(t *testing.T, body []byte) interface{}{
		"/v1/pad": func(t *testing.T, body []byte) interface{} {
			var req padRequest
			if err := json.Unmarshal(body, &req); err != nil {
				t.Errorf("Failed to decode pad request: %v", err)
			}
			if got, want := req.MultipleOf, 8; got != want {
				t.Errorf("Request multiple_of = %d, want %d", got, want)
			}
			return inference.Batch{
				InputIDs:      [][]int{{1, 2, 0, 0, 0, 0, 0, 0}},
				AttentionMask: [][]int{{1, 1, 0, 0, 0, 0, 0, 0}},
			}
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	batch, err := client.Pad(context.Background(), [][]int{{1, 2}}, inference.PadOptions{MaxLength: 2, MultipleOf: 8})
	if err != nil {
		t.Fatalf("Pad failed: %v", err)
	}
	if got, want := batch.Size(), 1; got != want {
		t.Errorf("Batch size = %d, want %d", got, want)
	}
	if got, want := len(batch.InputIDs[0]), 8; got != want {
		t.Errorf("Padded length = %d, want %d", got, want)
	}
}

func TestClient_Score(t *testing.T) {
	server := newRuntimeServer(t, map[string]func(t *testing.T, body []byte) interface{}{
		"/v1/score": func(t *testing.T, body []byte) interface{} {
			return scoreResponse{Logits: [][]float64{{0.1, 0.9, 0.3}}}
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	logits, err := client.Score(context.Background(), inference.Batch{
		InputIDs:      [][]int{{1, 2, 3}},
		AttentionMask: [][]int{{1, 1, 1}},
	})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if want := [][]float64{{0.1, 0.9, 0.3}}; !reflect.DeepEqual(logits, want) {
		t.Errorf("Score() = %v, want %v", logits, want)
	}
}

func TestClient_Generate(t *testing.T) {
	server := newRuntimeServer(t, map[string]func(t *testing.T, body []byte) interface{}{
		"/v1/generate": func(t *testing.T, body []byte) interface{} {
			var req generateRequest
			if err := json.Unmarshal(body, &req); err != nil {
				t.Errorf("Failed to decode generate request: %v", err)
			}
			if got, want := req.Params.NumBeams, 1; got != want {
				t.Errorf("Request num_beams = %d, want %d", got, want)
			}
			if !req.Params.ReturnStepScores {
				t.Error("Request return_step_scores = false, want true")
			}
			return inference.Generation{
				Sequences:  [][]int{{2, 100, 101, 102}},
				StepScores: [][]float64{{0.5, 0.5}, {0.9, 0.1}},
			}
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	gen, err := client.Generate(context.Background(), inference.Batch{
		InputIDs:      [][]int{{1, 2}},
		AttentionMask: [][]int{{1, 1}},
	}, inference.GenerateParams{
		NumBeams:         1,
		MinNewTokens:     5,
		MaxNewTokens:     5,
		ReturnStepScores: true,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got, want := len(gen.Sequences), 1; got != want {
		t.Errorf("Sequences length = %d, want %d", got, want)
	}
	if got, want := len(gen.StepScores), 2; got != want {
		t.Errorf("StepScores length = %d, want %d", got, want)
	}
}

func TestClient_ServerError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{name: "internal server error", statusCode: http.StatusInternalServerError},
		{name: "bad request", statusCode: http.StatusBadRequest},
		{name: "not found", statusCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/v1/meta", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, metaResponse{SepToken: "</s>", Model: "m"})
			})
			mux.HandleFunc("/v1/encode", func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", tt.statusCode)
			})
			server := httptest.NewServer(mux)
			defer server.Close()

			client := newTestClient(t, server.URL)

			_, err := client.Encode(context.Background(), "hi", inference.EncodeOptions{})
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	server := newRuntimeServer(t, nil)
	client := newTestClient(t, server.URL)
	server.Close()

	if _, err := client.Encode(context.Background(), "hi", inference.EncodeOptions{}); err == nil {
		t.Error("Expected network error for Encode, got nil")
	}
	if _, err := client.Score(context.Background(), inference.Batch{}); err == nil {
		t.Error("Expected network error for Score, got nil")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := newRuntimeServer(t, map[string]func(t *testing.T, body []byte) interface{}{
		"/v1/decode": func(t *testing.T, body []byte) interface{} {
			time.Sleep(100 * time.Millisecond)
			return decodeResponse{Text: "late"}
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Decode(ctx, []int{1}, true); err == nil {
		t.Error("Expected error for cancelled context, got nil")
	}
}
