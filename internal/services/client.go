package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"theater-booking-platform/internal/models"
)

// apiClient is the shared JSON-over-HTTP plumbing of the upstream clients.
type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// apiErrorEnvelope is the structured error body the backend APIs return.
type apiErrorEnvelope struct {
	Error struct {
		Kind          string   `json:"kind"`
		Code          string   `json:"code"`
		Message       string   `json:"message"`
		Field         string   `json:"field"`
		BookedSeats   []string `json:"booked_seats"`
		ReservedSeats []string `json:"reserved_seats"`
	} `json:"error"`
}

// doJSON performs one request. Transport failures become NetworkError;
// structured error bodies are mapped onto the error taxonomy.
func (c *apiClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &models.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var envelope apiErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	switch envelope.Error.Kind {
	case "seat_conflict":
		return &models.SeatConflictError{
			BookedSeats:   envelope.Error.BookedSeats,
			ReservedSeats: envelope.Error.ReservedSeats,
		}
	case "security":
		return &models.SecurityError{Code: models.SecurityErrorCode(envelope.Error.Code)}
	case "validation":
		return &models.ValidationError{Field: envelope.Error.Field, Message: envelope.Error.Message}
	}
	if envelope.Error.Message != "" {
		return fmt.Errorf("upstream error: %s", envelope.Error.Message)
	}
	return fmt.Errorf("upstream returned status %d", resp.StatusCode)
}
