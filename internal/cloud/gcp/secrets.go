// Package gcp provides the Google Cloud integrations used by ghreport: Secret
// Manager for GitHub credentials and structured logging for Cloud Logging.
package gcp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

const (
	metadataProjectURL = "http://metadata.google.internal/computeMetadata/v1/project/project-id"
	secretFetchTimeout = 10 * time.Second
)

// SecretFetcher fetches GitHub credentials stored as secrets.
type SecretFetcher interface {
	FetchSecret(ctx context.Context, secretPath string) (string, error)
	Close() error
}

// SecretManagerClient reads secrets from GCP Secret Manager.
type SecretManagerClient struct {
	client    *secretmanager.Client
	projectID string
}

// NewSecretManagerClient creates a Secret Manager client. projectID may be empty, in
// which case it is resolved from the environment or the metadata server.
func NewSecretManagerClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*SecretManagerClient, error) {
	if projectID == "" {
		var err error
		projectID, err = resolveProjectID(ctx, metadataProjectURL)
		if err != nil {
			return nil, fmt.Errorf("failed to get project ID: %w", err)
		}
	}

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}

	return &SecretManagerClient{
		client:    client,
		projectID: projectID,
	}, nil
}

// resolveProjectID checks the usual project environment variables, then the
// metadata server at metadataURL.
func resolveProjectID(ctx context.Context, metadataURL string) (string, error) {
	for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCP_PROJECT", "GCLOUD_PROJECT"} {
		if projectID := os.Getenv(key); projectID != "" {
			return projectID, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata request: %w", err)
	}
	req.Header.Set("Metadata-Flavor", "Google")

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch project ID from metadata server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("metadata server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read metadata response: %w", err)
	}

	projectID := strings.TrimSpace(string(body))
	if projectID == "" {
		return "", fmt.Errorf("empty project ID from metadata server")
	}
	return projectID, nil
}

// FetchSecret returns the payload of a secret version with surrounding whitespace
// removed. secretPath is one of:
//   - projects/PROJECT_ID/secrets/NAME/versions/VERSION
//   - projects/PROJECT_ID/secrets/NAME (latest version)
//   - NAME (latest version in the client's project)
func (c *SecretManagerClient) FetchSecret(ctx context.Context, secretPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, secretFetchTimeout)
	defer cancel()

	name := normalizeSecretPath(c.projectID, secretPath)
	result, err := c.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %w", name, err)
	}

	value := strings.TrimSpace(string(result.GetPayload().GetData()))
	if value == "" {
		return "", fmt.Errorf("secret %s is empty", name)
	}
	return value, nil
}

func normalizeSecretPath(projectID, secretPath string) string {
	if strings.HasPrefix(secretPath, "projects/") && strings.Contains(secretPath, "/versions/") {
		return secretPath
	}
	if strings.HasPrefix(secretPath, "projects/") && strings.Contains(secretPath, "/secrets/") {
		return secretPath + "/versions/latest"
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, path.Base(secretPath))
}

// Close closes the Secret Manager client
func (c *SecretManagerClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
