package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voice-doctor/internal/domain"
	"voice-doctor/internal/infra/gemini"
)

func TestVisionClient_Ask(t *testing.T) {
	var gotMime, gotData, gotText string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Contents []struct {
				Parts []struct {
					Text       string `json:"text"`
					InlineData *struct {
						MimeType string `json:"mimeType"`
						Data     string `json:"data"`
					} `json:"inlineData"`
				} `json:"parts"`
			} `json:"contents"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for _, p := range req.Contents[0].Parts {
			if p.InlineData != nil {
				gotMime, gotData = p.InlineData.MimeType, p.InlineData.Data
			} else {
				gotText = p.Text
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"role": "model", "parts": []map[string]string{
					{"text": "With what I see, "},
					{"text": "I think you have a bruise."},
				}}},
			},
		})
	}))
	defer server.Close()

	client := gemini.NewVisionClientWithURL(domain.NewCredential("test-key"), "gemini-test", 0, server.URL)

	answer, err := client.Ask(context.Background(), "what is this", domain.EncodedImage{Data: "AAEC", MediaType: "image/png"})
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}

	if answer != "With what I see, I think you have a bruise." {
		t.Errorf("answer: got %q", answer)
	}
	if gotText != "what is this" || gotMime != "image/png" || gotData != "AAEC" {
		t.Errorf("request parts: text=%q mime=%q data=%q", gotText, gotMime, gotData)
	}
}

func TestVisionClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "forbidden", status: http.StatusForbidden, body: `{}`, want: domain.ErrAuth},
		{name: "quota", status: http.StatusTooManyRequests, body: `{}`, want: domain.ErrUpstream},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, want: domain.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := gemini.NewVisionClientWithURL(domain.NewCredential("k"), "m", 0, server.URL)
			_, err := client.Ask(context.Background(), "p", domain.EncodedImage{Data: "AA==", MediaType: "image/jpeg"})
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVisionClient_MissingKey(t *testing.T) {
	client := gemini.NewVisionClientWithURL(domain.Credential{}, "m", 0, "http://127.0.0.1:1")
	_, err := client.Ask(context.Background(), "p", domain.EncodedImage{})
	if !errors.Is(err, domain.ErrAuth) {
		t.Errorf("got %v, want auth", err)
	}
}

func TestVisionClient_InvalidImageData(t *testing.T) {
	client := gemini.NewVisionClientWithURL(domain.NewCredential("k"), "m", 0, "http://127.0.0.1:1")
	_, err := client.Ask(context.Background(), "p", domain.EncodedImage{Data: "not base64!", MediaType: "image/png"})
	if !errors.Is(err, domain.ErrCodec) {
		t.Errorf("got %v, want codec", err)
	}
}
