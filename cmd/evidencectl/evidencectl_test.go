package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// --- truncate tests ---

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short string unchanged", "abc", 10, "abc"},
		{"exact length unchanged", "abcde", 5, "abcde"},
		{"truncated with ellipsis", "abcdefghij", 8, "abcde..."},
		{"tiny max", "abcdef", 3, "abc"},
		{"empty string", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestStringAt(t *testing.T) {
	m := map[string]any{"name": "ev-1", "size": float64(10), "nested": map[string]any{}}

	if got := stringAt(m, "name"); got != "ev-1" {
		t.Errorf("stringAt(name) = %q, want %q", got, "ev-1")
	}
	if got := stringAt(m, "size"); got != "" {
		t.Errorf("stringAt(size) = %q, want empty for non-string", got)
	}
	if got := stringAt(m, "missing"); got != "" {
		t.Errorf("stringAt(missing) = %q, want empty", got)
	}
}

// --- client tests ---

func TestClientGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/evidence/ev-1" {
			t.Errorf("path = %q, want /api/evidence/ev-1", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	serverURL = srv.URL
	client := newClient()

	var resp map[string]any
	if err := client.getJSON("/api/evidence/ev-1", &resp); err != nil {
		t.Fatalf("getJSON() error = %v", err)
	}
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
}

func TestClientGetJSON_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "evidence not found"})
	}))
	defer srv.Close()

	serverURL = srv.URL
	client := newClient()

	var resp map[string]any
	err := client.getJSON("/api/evidence/missing", &resp)
	if err == nil {
		t.Fatal("getJSON() expected error")
	}
	if want := "server returned 404: evidence not found"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestClientGetHealthJSON_Degraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "degraded",
			"checks": map[string]bool{"ipfs": false, "hotChain": true, "coldChain": true},
		})
	}))
	defer srv.Close()

	serverURL = srv.URL
	client := newClient()

	var resp map[string]any
	if err := client.getHealthJSON("/health", &resp); err != nil {
		t.Fatalf("getHealthJSON() error = %v, want per-check body on 503", err)
	}
	if resp["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", resp["status"])
	}
	checks, ok := resp["checks"].(map[string]any)
	if !ok {
		t.Fatalf("checks missing from degraded response: %v", resp)
	}
	if checks["ipfs"] != false {
		t.Errorf("checks.ipfs = %v, want false", checks["ipfs"])
	}
}

func TestClientGetHealthJSON_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "proxy error"})
	}))
	defer srv.Close()

	serverURL = srv.URL
	client := newClient()

	var resp map[string]any
	if err := client.getHealthJSON("/health", &resp); err == nil {
		t.Fatal("getHealthJSON() expected error for 502")
	}
}

func TestClientUploadFile(t *testing.T) {
	payloadPath := filepath.Join(t.TempDir(), "sample.bin")
	if err := os.WriteFile(payloadPath, []byte("evidence01"), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm() error = %v", err)
		}
		if got := r.FormValue("investigationId"); got != "inv-1" {
			t.Errorf("investigationId = %q, want inv-1", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile() error = %v", err)
		}
		defer file.Close()
		if header.Filename != "sample.bin" {
			t.Errorf("filename = %q, want sample.bin", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "evidence01" {
			t.Errorf("payload = %q, want evidence01", data)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "evidenceId": "ev-1"})
	}))
	defer srv.Close()

	serverURL = srv.URL
	client := newClient()

	result, err := client.uploadFile("/api/evidence/upload", payloadPath, map[string]string{
		"investigationId": "inv-1",
	})
	if err != nil {
		t.Fatalf("uploadFile() error = %v", err)
	}
	if result["evidenceId"] != "ev-1" {
		t.Errorf("evidenceId = %v, want ev-1", result["evidenceId"])
	}
}

func TestClientDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
		_, _ = w.Write([]byte("pdfbytes"))
	}))
	defer srv.Close()

	serverURL = srv.URL
	client := newClient()

	data, name, err := client.downloadFile("/api/evidence/ev-1/file")
	if err != nil {
		t.Fatalf("downloadFile() error = %v", err)
	}
	if string(data) != "pdfbytes" {
		t.Errorf("data = %q, want pdfbytes", data)
	}
	if name != "report.pdf" {
		t.Errorf("name = %q, want report.pdf", name)
	}
}
