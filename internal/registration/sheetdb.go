package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BackendSheetDB names the SheetDB spreadsheet backend.
const BackendSheetDB = "sheetdb"

// SheetDB appends rows to a spreadsheet through the SheetDB REST API.
type SheetDB struct {
	endpoint string
	client   *http.Client
}

type sheetRow struct {
	SerialNo string `json:"sn no."`
	Name     string `json:"name"`
	Game     string `json:"game"`
	UserID   string `json:"user id"`
}

type sheetPayload struct {
	Data []sheetRow `json:"data"`
}

// NewSheetDB builds a client for endpoint. A zero timeout leaves requests unbounded.
func NewSheetDB(endpoint string, timeout time.Duration) *SheetDB {
	return &SheetDB{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name implements Store.
func (s *SheetDB) Name() string { return BackendSheetDB }

// Submit posts the record; only 201 Created counts as accepted.
func (s *SheetDB) Submit(ctx context.Context, rec Record) error {
	// The sheet numbers rows itself when the serial column is left empty.
	body, err := json.Marshal(sheetPayload{Data: []sheetRow{{
		Name:   rec.Name,
		Game:   rec.Game,
		UserID: rec.UserID,
	}}})
	if err != nil {
		return fmt.Errorf("sheetdb: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sheetdb: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sheetdb: post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("sheetdb: status %d: %w", resp.StatusCode, ErrRejected)
	}
	return nil
}
