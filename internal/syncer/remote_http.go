package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPRemote stores the snapshot as a single JSON document at a fixed
// URL: GET to load, PUT to save. Any dumb blob endpoint works.
type HTTPRemote struct {
	url    string
	client *http.Client
}

func NewHTTPRemote(url string) *HTTPRemote {
	return &HTTPRemote{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *HTTPRemote) Load(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return Snapshot{}, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Snapshot{}, ErrNoSnapshot
	}
	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("remote load: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return Snapshot{}, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return Snapshot{}, ErrNoSnapshot
	}
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("remote load: %w", err)
	}
	return snap, nil
}

func (r *HTTPRemote) Save(ctx context.Context, snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("remote save: unexpected status %d", resp.StatusCode)
	}
	return nil
}

var _ RemoteStore = (*HTTPRemote)(nil)
