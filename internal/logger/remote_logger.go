package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

// RemoteOptions configures shipping of context logs to a Loki-compatible
// push endpoint. An empty URI disables shipping.
type RemoteOptions struct {
	URI string
	Job string
}

var (
	remoteMu   sync.RWMutex
	remoteOpts = RemoteOptions{Job: "product-api"}
	httpClient = &http.Client{Timeout: 5 * time.Second}
)

func ConfigureRemote(opts RemoteOptions) {
	if opts.Job == "" {
		opts.Job = "product-api"
	}
	remoteMu.Lock()
	remoteOpts = opts
	remoteMu.Unlock()
}

func remote() RemoteOptions {
	remoteMu.RLock()
	defer remoteMu.RUnlock()
	return remoteOpts
}

// sendLog ships one entry in the background. Failures only reach stderr.
func sendLog(level slog.Level, message string, attrs []slog.Attr) {
	opts := remote()
	if opts.URI == "" {
		return
	}

	go func() {
		jsonData, err := json.Marshal(buildLogEntry(opts.Job, level, message, attrs, time.Now()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal remote log entry: %v\n", err)
			return
		}

		req, err := http.NewRequest(http.MethodPost, opts.URI, bytes.NewBuffer(jsonData))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create request for remote log: %v\n", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to send to remote log: %v\n", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			fmt.Fprintf(os.Stderr, "Remote log returned error status: %d\n", resp.StatusCode)
		}
	}()
}
