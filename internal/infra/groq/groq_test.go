package groq_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"voice-doctor/internal/domain"
	"voice-doctor/internal/infra/groq"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patient.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVEfmt fake audio"), 0o644); err != nil {
		t.Fatalf("writing audio: %v", err)
	}
	return path
}

func TestTranscriber_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			http.Error(w, "bad auth header "+got, http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("model") != "whisper-large-v3" || r.FormValue("language") != "en" {
			http.Error(w, "unexpected fields", http.StatusBadRequest)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": "my knee hurts"})
	}))
	defer server.Close()

	stt := groq.NewTranscriber(domain.NewCredential("test-key"), "", "", groq.Config{BaseURL: server.URL + "/"})

	text, err := stt.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if text != "my knee hurts" {
		t.Errorf("text: got %q, want %q", text, "my knee hurts")
	}
}

func TestTranscriber_Errors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	cfg := groq.Config{BaseURL: server.URL + "/"}

	stt := groq.NewTranscriber(domain.NewCredential("test-key"), "", "", cfg)
	_, err := stt.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing file: got %v, want not found", err)
	}

	_, err = stt.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("server error: got %v, want upstream", err)
	}
	if calls.Load() != 1 {
		t.Errorf("requests: got %d, want 1 (no retries)", calls.Load())
	}

	noKey := groq.NewTranscriber(domain.Credential{}, "", "", cfg)
	_, err = noKey.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, domain.ErrAuth) {
		t.Errorf("missing key: got %v, want auth", err)
	}
	if calls.Load() != 1 {
		t.Error("missing key must fail before any request")
	}
}

func TestVisionClient_Ask(t *testing.T) {
	var gotPrompt, gotURL, gotModel string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content []struct {
					Type     string `json:"type"`
					Text     string `json:"text"`
					ImageURL struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotModel = req.Model
		for _, part := range req.Messages[0].Content {
			switch part.Type {
			case "text":
				gotPrompt = part.Text
			case "image_url":
				gotURL = part.ImageURL.URL
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   req.Model,
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": "  With what I see, I think you have eczema.  ",
					},
				},
			},
		})
	}))
	defer server.Close()

	client := groq.NewVisionClient(domain.NewCredential("test-key"), "", groq.Config{BaseURL: server.URL + "/"})

	answer, err := client.Ask(context.Background(), "doctor prompt my skin itches", domain.EncodedImage{Data: "AAEC", MediaType: "image/png"})
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}

	if answer != "With what I see, I think you have eczema." {
		t.Errorf("answer: got %q", answer)
	}
	if gotModel != groq.DefaultVisionModel {
		t.Errorf("model: got %q", gotModel)
	}
	if gotPrompt != "doctor prompt my skin itches" {
		t.Errorf("prompt: got %q", gotPrompt)
	}
	if !strings.HasPrefix(gotURL, "data:image/png;base64,AAEC") {
		t.Errorf("image url: got %q", gotURL)
	}
}

func TestVisionClient_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := groq.NewVisionClient(domain.NewCredential("bad-key"), "", groq.Config{BaseURL: server.URL + "/"})

	_, err := client.Ask(context.Background(), "prompt", domain.EncodedImage{Data: "AAEC", MediaType: "image/jpeg"})
	if !errors.Is(err, domain.ErrAuth) {
		t.Errorf("got %v, want auth", err)
	}
}
