package reputation

import (
	"context"
	"encoding/json"
)

// HashLookup adapts the VirusTotal file report to the vendor-hit count the
// attachment scorer consumes.
type HashLookup struct {
	vt *VirusTotalClient
}

// NewHashLookup wraps a VirusTotal client as a hash-reputation provider.
func NewHashLookup(vt *VirusTotalClient) *HashLookup {
	return &HashLookup{vt: vt}
}

// CheckFileHash returns how many vendors flagged the hash as malicious.
func (h *HashLookup) CheckFileHash(ctx context.Context, hash string) (int, json.RawMessage, error) {
	stats, raw, err := h.vt.CheckFileHash(ctx, hash)
	if err != nil {
		return 0, nil, err
	}
	return stats.Malicious, raw, nil
}
