package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"memberportal/internal/model"
)

// TelemetryService sends fire-and-forget progress beacons. Beacons are
// purely observational: a dropped beacon never affects the flow.
type TelemetryService struct {
	beaconURL  string
	httpClient *http.Client
}

// NewTelemetryService creates a telemetry client. An empty URL disables
// all sends.
func NewTelemetryService(beaconURL string) *TelemetryService {
	return &TelemetryService{
		beaconURL: beaconURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SendBeacon posts one progress notification and drops any failure.
func (s *TelemetryService) SendBeacon(ctx context.Context, beacon *model.ProgressBeacon) {
	if s.beaconURL == "" {
		return
	}
	body, err := json.Marshal(beacon)
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.beaconURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("[Telemetry] beacon dropped: %v", err)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
