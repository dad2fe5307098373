package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/titorm/fodmap-facil-sub001/models"
)

// CollectorClient posts event batches to the external analytics collector.
type CollectorClient struct {
	client *http.Client
	url    string
	apiKey string
}

func NewCollectorClient() *CollectorClient {
	return &CollectorClient{
		client: &http.Client{Timeout: 15 * time.Second},
		url:    os.Getenv("TELEMETRY_COLLECTOR_URL"),
		apiKey: os.Getenv("TELEMETRY_API_KEY"),
	}
}

func (c *CollectorClient) Send(events []models.TelemetryEvent) error {
	if c.url == "" {
		return fmt.Errorf("TELEMETRY_COLLECTOR_URL not set")
	}

	body := map[string]any{"events": events}
	b, _ := json.Marshal(body)

	req, err := http.NewRequest(http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("collector request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBytes, _ := io.ReadAll(resp.Body)
		// surface the collector's own error message when it sends one
		var colErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBytes, &colErr) == nil && colErr.Error != "" {
			return fmt.Errorf("collector error (%d): %s", resp.StatusCode, colErr.Error)
		}
		return fmt.Errorf("collector error (%d): %s", resp.StatusCode, string(respBytes))
	}
	return nil
}
