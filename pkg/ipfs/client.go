// Package ipfs stores and retrieves opaque evidence payloads by content
// address through the IPFS HTTP API.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/ipfs/boxo/files"
	shell "github.com/ipfs/go-ipfs-api"
)

// Client wraps one IPFS API endpoint. The underlying shell is built lazily on
// first use and shared by every in-flight request thereafter; it is safe for
// concurrent use and is never re-created per call.
type Client struct {
	apiURL string
	logger *slog.Logger

	once sync.Once
	sh   *shell.Shell
}

// NewClient creates a client for the IPFS API at apiURL. No connection is
// opened until the first operation.
func NewClient(apiURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{apiURL: apiURL, logger: logger}
}

func (c *Client) shell() *shell.Shell {
	c.once.Do(func() {
		c.logger.Info("initializing IPFS client", "url", c.apiURL)
		c.sh = shell.NewShell(c.apiURL)
	})
	return c.sh
}

// addResponse is the IPFS add result for a single file.
type addResponse struct {
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// Put uploads the payload, requests pinning so the daemon retains it, and
// returns the CIDv1 content address. Semantically identical bytes tend toward
// the same address, which the store exploits for deduplication.
func (c *Client) Put(ctx context.Context, r io.Reader) (string, error) {
	file := files.NewReaderFile(r)
	dir := files.NewSliceDirectory([]files.DirEntry{files.FileEntry("", file)})
	body := files.NewMultiFileReader(dir, true, false)

	resp, err := c.shell().Request("add").
		Option("pin", true).
		Option("cid-version", 1).
		Body(body).
		Send(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Close()

	if resp.Error != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, resp.Error)
	}

	var out addResponse
	if err := json.NewDecoder(resp.Output).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode add response: %v", ErrWriteFailed, err)
	}
	if out.Hash == "" {
		return "", fmt.Errorf("%w: empty content address in add response", ErrWriteFailed)
	}

	c.logger.Info("payload pinned to IPFS", "cid", out.Hash, "size", out.Size)
	return out.Hash, nil
}

// Get retrieves the full payload for a content address, consuming the cat
// stream chunk by chunk and concatenating into one contiguous buffer.
func (c *Client) Get(ctx context.Context, cid string) ([]byte, error) {
	resp, err := c.shell().Request("cat", cid).Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: cid %s: %v", ErrReadFailed, cid, err)
	}
	defer resp.Close()

	if resp.Error != nil {
		if isUnknownAddress(resp.Error) {
			return nil, fmt.Errorf("%w: cid %s", ErrNotFound, cid)
		}
		return nil, fmt.Errorf("%w: cid %s: %v", ErrReadFailed, cid, resp.Error)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Output); err != nil {
		return nil, fmt.Errorf("%w: cid %s: %v", ErrReadFailed, cid, err)
	}

	c.logger.Info("payload retrieved from IPFS", "cid", cid, "size", buf.Len())
	return buf.Bytes(), nil
}

// HealthCheck reports whether the IPFS daemon is reachable. Best effort; any
// failure is false, never an error.
func (c *Client) HealthCheck(ctx context.Context) bool {
	resp, err := c.shell().Request("version").Send(ctx)
	if err != nil {
		c.logger.Warn("IPFS daemon not reachable", "error", err)
		return false
	}
	defer resp.Close()

	if resp.Error != nil {
		c.logger.Warn("IPFS version probe rejected", "error", resp.Error)
		return false
	}

	var out struct {
		Version string `json:"Version"`
	}
	if err := json.NewDecoder(resp.Output).Decode(&out); err != nil {
		return false
	}
	c.logger.Debug("IPFS daemon reachable", "version", out.Version)
	return true
}

// isUnknownAddress matches daemon errors for addresses it cannot resolve.
func isUnknownAddress(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid path") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "no link named") ||
		strings.Contains(msg, "invalid cid")
}
