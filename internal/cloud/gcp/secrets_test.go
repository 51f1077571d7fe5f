package gcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeSecretPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "full path with version",
			input:    "projects/my-project/secrets/github-token/versions/3",
			expected: "projects/my-project/secrets/github-token/versions/3",
		},
		{
			name:     "full path without version",
			input:    "projects/other/secrets/github-token",
			expected: "projects/other/secrets/github-token/versions/latest",
		},
		{
			name:     "bare secret name",
			input:    "github-token",
			expected: "projects/test-project/secrets/github-token/versions/latest",
		},
		{
			name:     "name with leading path",
			input:    "secrets/github-app-key",
			expected: "projects/test-project/secrets/github-app-key/versions/latest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeSecretPath("test-project", tt.input); got != tt.expected {
				t.Errorf("normalizeSecretPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func clearProjectEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCP_PROJECT", "GCLOUD_PROJECT"} {
		t.Setenv(key, "")
	}
}

func TestResolveProjectID_Env(t *testing.T) {
	clearProjectEnv(t)
	t.Setenv("GCP_PROJECT", "env-project")

	got, err := resolveProjectID(context.Background(), "http://127.0.0.1:0/unused")
	if err != nil {
		t.Fatalf("resolveProjectID() error = %v", err)
	}
	if got != "env-project" {
		t.Errorf("resolveProjectID() = %q, want env-project", got)
	}
}

func TestResolveProjectID_Metadata(t *testing.T) {
	clearProjectEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Metadata-Flavor") != "Google" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("meta-project\n"))
	}))
	defer server.Close()

	got, err := resolveProjectID(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("resolveProjectID() error = %v", err)
	}
	if got != "meta-project" {
		t.Errorf("resolveProjectID() = %q, want meta-project", got)
	}
}

func TestResolveProjectID_MetadataErrors(t *testing.T) {
	clearProjectEnv(t)

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non-200", status: http.StatusNotFound, body: "missing"},
		{name: "empty body", status: http.StatusOK, body: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			if _, err := resolveProjectID(context.Background(), server.URL); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSecretManagerClient_Close_Nil(t *testing.T) {
	c := &SecretManagerClient{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
}

var _ SecretFetcher = (*SecretManagerClient)(nil)
