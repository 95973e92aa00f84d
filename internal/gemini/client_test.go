package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerate_Success(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "Hello "}, {"text": "world"}]}}],
			"usageMetadata": {"promptTokenCount": 7, "candidatesTokenCount": 11, "totalTokenCount": 18},
			"modelVersion": "gemini-1.5-pro-002"
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "gemini-1.5-pro", server.URL, 5*time.Second)
	result, errGenerate := client.Generate(context.Background(), "write something", nil)
	if errGenerate != nil {
		t.Fatalf("generate: %v", errGenerate)
	}
	if result.Text != "Hello world" {
		t.Fatalf("expected concatenated parts, got %q", result.Text)
	}
	if result.Model != "gemini-1.5-pro-002" {
		t.Fatalf("expected model version from response, got %q", result.Model)
	}
	if result.Usage.TotalTokenCount != 18 {
		t.Fatalf("expected total tokens 18, got %d", result.Usage.TotalTokenCount)
	}
	if gotPath != "/v1beta/models/gemini-1.5-pro:generateContent" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key in query, got %q", gotKey)
	}
}

func TestGenerate_InlineImageInRequest(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "caption"}]}}]}`))
	}))
	defer server.Close()

	client := NewClient("k", "m", server.URL, 5*time.Second)
	image := &InlineImage{MIMEType: "image/png", Data: []byte{0x89, 0x50, 0x4e, 0x47}}
	if _, errGenerate := client.Generate(context.Background(), "prompt", image); errGenerate != nil {
		t.Fatalf("generate: %v", errGenerate)
	}

	var decoded struct {
		Contents []struct {
			Parts []struct {
				Text       string `json:"text"`
				InlineData *struct {
					MIMEType string `json:"mime_type"`
					Data     string `json:"data"`
				} `json:"inline_data"`
			} `json:"parts"`
		} `json:"contents"`
	}
	if errUnmarshal := json.Unmarshal(gotBody, &decoded); errUnmarshal != nil {
		t.Fatalf("unmarshal request: %v", errUnmarshal)
	}
	if len(decoded.Contents) != 1 || len(decoded.Contents[0].Parts) != 2 {
		t.Fatalf("expected one content block with text and image parts, got %s", gotBody)
	}
	imagePart := decoded.Contents[0].Parts[1]
	if imagePart.InlineData == nil || imagePart.InlineData.MIMEType != "image/png" {
		t.Fatalf("expected inline image data, got %s", gotBody)
	}
	if imagePart.InlineData.Data != base64.StdEncoding.EncodeToString(image.Data) {
		t.Fatalf("expected base64 image bytes, got %q", imagePart.InlineData.Data)
	}
}

func TestGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer server.Close()

	client := NewClient("k", "m", server.URL, 5*time.Second)
	_, errGenerate := client.Generate(context.Background(), "prompt", nil)
	if errGenerate == nil {
		t.Fatalf("expected error for non-200 status")
	}
	if !strings.Contains(errGenerate.Error(), "429") {
		t.Fatalf("expected status code in error, got %v", errGenerate)
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewClient("k", "m", server.URL, 5*time.Second)
	if _, errGenerate := client.Generate(context.Background(), "prompt", nil); errGenerate == nil {
		t.Fatalf("expected error for empty candidates")
	}
}

func TestGenerate_MissingCredentials(t *testing.T) {
	client := NewClient("", "m", "", 0)
	if _, errGenerate := client.Generate(context.Background(), "prompt", nil); errGenerate == nil {
		t.Fatalf("expected error for missing api key")
	}
}
