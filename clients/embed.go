package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/maastricht-university/diarize-pipeline/errs"
)

// --- Speaker embedding (/embed) ---
type EmbedReq struct {
	SampleRate int         `json:"sample_rate"`
	Clips      [][]float32 `json:"clips"`
}
type EmbedResp struct {
	Embeddings [][]float64 `json:"embeddings"`
	Dim        int         `json:"dim,omitempty"`
}

// Embed sends one batch of clips and returns one vector per clip, in order.
func (h *HTTP) Embed(ctx context.Context, url string, sampleRate int, clips [][]float32) (*EmbedResp, error) {
	reqBody, err := json.Marshal(EmbedReq{SampleRate: sampleRate, Clips: clips})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(url, "/")+"/embed", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.do(req, "embed")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out EmbedResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errs.Service("embed", err, "decode response")
	}
	return &out, nil
}
