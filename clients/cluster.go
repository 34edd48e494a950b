package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/maastricht-university/diarize-pipeline/errs"
)

// --- Clustering (/cluster) ---
type ClusterReq struct {
	Features  [][]float64 `json:"features"`
	NClusters int         `json:"n_clusters"`
	Method    string      `json:"method"`
	Linkage   string      `json:"linkage,omitempty"`
}

type ClusterResp struct {
	ClusterLabels []int `json:"cluster_labels"`
}

func (h *HTTP) Cluster(ctx context.Context, url string, features [][]float64, k int, linkage string) (*ClusterResp, error) {
	reqBody, err := json.Marshal(ClusterReq{Features: features, NClusters: k, Method: "agglomerative", Linkage: linkage})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(url, "/")+"/cluster", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.do(req, "cluster")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out ClusterResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errs.Service("cluster", err, "decode response")
	}
	return &out, nil
}
