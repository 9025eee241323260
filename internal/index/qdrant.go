package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vkotliar/gavel/internal/model"
)

// pointNamespace derives stable Qdrant point UUIDs from chunk IDs.
// Qdrant only accepts integers or UUIDs as point IDs, and a stable
// derivation makes Upsert idempotent across ingest runs.
var pointNamespace = uuid.MustParse("8f6f2c6e-3f6a-4d2b-9b0f-6e1c0d9a41b7")

// QdrantIndex is a minimal REST client to a Qdrant collection using
// cosine distance.
type QdrantIndex struct {
	baseURL    string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

// NewQdrantIndex creates a client for the configured collection. Call
// EnsureCollection before the first Upsert.
func NewQdrantIndex(cfg model.QdrantConfig, dimension int) (*QdrantIndex, error) {
	if cfg.BaseURL == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("%w: qdrant backend needs a base URL and collection", model.ErrConfiguration)
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &QdrantIndex{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  dimension,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// EnsureCollection creates the collection if it does not exist. Qdrant
// returns 200 when the collection already exists with the same schema.
func (q *QdrantIndex) EnsureCollection(ctx context.Context) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     q.dimension,
			"distance": "Cosine",
		},
	}
	return q.putJSON(ctx, fmt.Sprintf("%s/collections/%s", q.baseURL, q.collection), body, nil)
}

// Upsert writes entries as points, waiting for the operation to be
// applied so a search immediately after ingest sees the new points.
func (q *QdrantIndex) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		if len(e.Vector) != q.dimension {
			return fmt.Errorf("index: entry %s has dimension %d, want %d", e.ChunkID, len(e.Vector), q.dimension)
		}
		points[i] = map[string]any{
			"id":     uuid.NewSHA1(pointNamespace, []byte(e.ChunkID)).String(),
			"vector": e.Vector,
			"payload": map[string]any{
				"chunk_id":   e.ChunkID,
				"section":    e.Section,
				"page_start": e.PageStart,
				"page_end":   e.PageEnd,
			},
		}
	}
	body := map[string]any{"points": points}
	return q.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", q.baseURL, q.collection), body, nil)
}

// Search runs a top-K similarity query with payloads.
func (q *QdrantIndex) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	if topK <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", q.baseURL, q.collection)
	if err := q.postJSON(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		h := Hit{Similarity: r.Score}
		if v, ok := r.Payload["chunk_id"].(string); ok {
			h.ChunkID = v
		}
		if v, ok := r.Payload["section"].(string); ok {
			h.Section = v
		}
		if v, ok := r.Payload["page_start"].(float64); ok {
			h.PageStart = int(v)
		}
		if v, ok := r.Payload["page_end"].(float64); ok {
			h.PageEnd = int(v)
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// Count reports the exact number of points in the collection.
func (q *QdrantIndex) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", q.baseURL, q.collection)
	if err := q.postJSON(ctx, url, map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Clear drops and recreates the collection.
func (q *QdrantIndex) Clear(ctx context.Context) error {
	url := fmt.Sprintf("%s/collections/%s", q.baseURL, q.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	q.setHeaders(req)
	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: qdrant delete: %v", model.ErrServiceUnavailable, err)
	}
	drain(resp)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant DELETE %s failed: %s", url, resp.Status)
	}
	return q.EnsureCollection(ctx)
}

func (q *QdrantIndex) putJSON(ctx context.Context, url string, body, out any) error {
	return q.doJSON(ctx, http.MethodPut, url, body, out)
}

func (q *QdrantIndex) postJSON(ctx context.Context, url string, body, out any) error {
	return q.doJSON(ctx, http.MethodPost, url, body, out)
}

func (q *QdrantIndex) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	q.setHeaders(req)

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: qdrant %s: %v", model.ErrServiceUnavailable, method, err)
	}
	defer drain(resp)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (q *QdrantIndex) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
