package main

import (
	"testing"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("NUXEO_API_USER", "")
	t.Setenv("NUXEO_API_PASS", "")
	t.Setenv("NUXEO_REST_API", "")
	t.Setenv("NUXEO_FILEIMPORTER_API", "")

	cfg := configFromEnv()

	if cfg.Username != "Administrator" {
		t.Errorf("Username = %q, want Administrator", cfg.Username)
	}
	if cfg.BaseURL != "http://localhost:8080/nuxeo/site/api/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.ImporterURL != "http://localhost:8080/nuxeo/site/fileImporter" {
		t.Errorf("ImporterURL = %q", cfg.ImporterURL)
	}
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("NUXEO_API_USER", "svc-mirror")
	t.Setenv("NUXEO_API_PASS", "hunter2")
	t.Setenv("NUXEO_REST_API", "https://repo.example.org/nuxeo/site/api/v1")
	t.Setenv("NUXEO_FILEIMPORTER_API", "https://repo.example.org/nuxeo/site/fileImporter")

	cfg := configFromEnv()

	if cfg.Username != "svc-mirror" || cfg.Password != "hunter2" {
		t.Error("Credentials not taken from environment")
	}
	if cfg.BaseURL != "https://repo.example.org/nuxeo/site/api/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.ImporterURL != "https://repo.example.org/nuxeo/site/fileImporter" {
		t.Errorf("ImporterURL = %q", cfg.ImporterURL)
	}
}
