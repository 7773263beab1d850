package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header 'Bearer test-key', got '%s'", r.Header.Get("Authorization"))
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if body["model"] != "gpt-test" {
			t.Errorf("unexpected model %v", body["model"])
		}
		if msgs, ok := body["messages"].([]interface{}); !ok || len(msgs) != 2 {
			t.Errorf("expected system and user messages, got %v", body["messages"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1234567890,
			"model": "gpt-test",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "glossy lips, pale skin"},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIOptions{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		MaxRetries: -1,
	}, testLogger())

	got, err := client.Complete(context.Background(), "gpt-test", "sys", "user", Options{Temperature: 0.7, NumPredict: 64})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "glossy lips, pale skin" {
		t.Errorf("Complete() = %q", got)
	}
}

func TestOpenAIClient_ErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad model", "type": "invalid_request_error", "code": "model_not_found"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIOptions{BaseURL: server.URL, APIKey: "k", MaxRetries: -1}, testLogger())

	_, err := client.Complete(context.Background(), "nope", "", "user", Options{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Retryable {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}
