package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewS3Publisher(t *testing.T) {
	cfg := S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:4566", // LocalStack-like endpoint
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	}

	p, err := NewS3Publisher(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewS3Publisher() error = %v", err)
	}

	if p.bucket != cfg.Bucket {
		t.Errorf("bucket = %v, want %v", p.bucket, cfg.Bucket)
	}
	if p.region != cfg.Region {
		t.Errorf("region = %v, want %v", p.region, cfg.Region)
	}
}

func TestS3Publisher_Publish_MockServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT method, got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/test-bucket/avatars/abc.gif") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "image/gif" {
			t.Errorf("unexpected content type: %s", ct)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		if !bytes.Contains(body, []byte("GIF89a")) {
			t.Errorf("unexpected body: %q", body)
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        server.URL,
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	}

	p, err := NewS3Publisher(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewS3Publisher() error = %v", err)
	}

	url, err := p.Publish(context.Background(), "avatars/abc.gif", "image/gif", bytes.NewReader([]byte("GIF89a-payload")))
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	expectedURL := server.URL + "/test-bucket/avatars/abc.gif"
	if url != expectedURL {
		t.Errorf("url = %v, want %v", url, expectedURL)
	}
}
