package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type serviceClient struct {
	baseURL string
	http    *http.Client
}

func newClient() *serviceClient {
	return &serviceClient{
		baseURL: serverURL,
		http: &http.Client{
			// Uploads can be large; leave room for slow links.
			Timeout: 5 * time.Minute,
		},
	}
}

// getJSON performs a GET request and decodes the response.
func (c *serviceClient) getJSON(path string, v any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeServerError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// getHealthJSON decodes the health envelope. The endpoint reports degraded
// dependencies with a 503 that still carries the per-check body, so both
// codes are decoded rather than rejected.
func (c *serviceClient) getHealthJSON(path string, v any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return decodeServerError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// uploadFile streams a multipart upload and returns the decoded response.
func (c *serviceClient) uploadFile(path, filePath string, fields map[string]string) (map[string]any, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		var err error
		defer func() { pw.CloseWithError(err) }()

		for k, v := range fields {
			if err = mw.WriteField(k, v); err != nil {
				return
			}
		}
		var fw io.Writer
		if fw, err = mw.CreateFormFile("file", filepath.Base(filePath)); err != nil {
			return
		}
		if _, err = io.Copy(fw, f); err != nil {
			return
		}
		err = mw.Close()
	}()

	resp, err := c.http.Post(c.baseURL+path, mw.FormDataContentType(), pr)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeServerError(resp)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}
	return result, nil
}

// downloadFile fetches raw payload bytes plus the server-suggested filename.
func (c *serviceClient) downloadFile(path string) ([]byte, string, error) {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", decodeServerError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read payload: %w", err)
	}

	name := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			name = params["filename"]
		}
	}
	return data, name, nil
}

// decodeServerError extracts the error envelope, falling back to the raw body.
func decodeServerError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, envelope.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
}
