package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const fetchTimeout = 2 * time.Minute

// Fetch downloads a remote dataset to dest, retrying transient failures with
// exponential backoff. The file is written atomically via a temp file so a
// partial download never shadows an existing dataset.
func Fetch(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	client := &http.Client{Timeout: fetchTimeout}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("server returned %s", resp.Status)
		default:
			return backoff.Permanent(fmt.Errorf("server returned %s", resp.Status))
		}

		tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
		if err != nil {
			return backoff.Permanent(err)
		}
		defer os.Remove(tmp.Name())

		if _, err := io.Copy(tmp, resp.Body); err != nil {
			tmp.Close()
			return err
		}
		if err := tmp.Close(); err != nil {
			return err
		}
		return os.Rename(tmp.Name(), dest)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)

	if err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		slog.Warn("dataset fetch retrying", "url", url, "error", err, "wait", wait)
	}); err != nil {
		return fmt.Errorf("fetch dataset: %w", err)
	}

	slog.Info("dataset downloaded", "url", url, "dest", dest)
	return nil
}
