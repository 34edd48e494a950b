package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/maastricht-university/diarize-pipeline/errs"
)

// --- Voice activity detection (/vad) ---
type Region struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}
type VADResp struct {
	Regions []Region `json:"regions"`
	Error   string   `json:"error,omitempty"`
}

// VAD uploads the audio file and returns the speech timeline. The token is
// sent as a bearer credential for gated models.
func (h *HTTP) VAD(ctx context.Context, url, token, wavPath string) (*VADResp, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	fd, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}
	if err = w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(url, "/")+"/vad", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.do(req, "vad")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out VADResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errs.Service("vad", err, "decode response")
	}
	if out.Error != "" {
		return nil, errs.Service("vad", nil, "%s", out.Error)
	}
	return &out, nil
}
