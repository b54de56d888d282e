// Package store persists evidence bundles keyed by content id.
package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/evidence-cli/internal/model"
)

// Store defines the persistence interface for evidence bundles.
type Store interface {
	// SaveEvidence inserts or replaces the bundle for contentID.
	SaveEvidence(ctx context.Context, contentID string, bundle *model.EvidenceBundle) error
	// GetEvidence returns the stored bundle, or nil when none exists.
	GetEvidence(ctx context.Context, contentID string) (*model.EvidenceBundle, error)

	Migrate(ctx context.Context) error
	Close() error
}

// ErrInvalidContentID is returned for a blank content id.
var ErrInvalidContentID = eris.New("store: content id is required")

func encodeBundle(contentID string, bundle *model.EvidenceBundle) ([]byte, error) {
	if strings.TrimSpace(contentID) == "" {
		return nil, ErrInvalidContentID
	}
	if bundle == nil {
		return nil, eris.New("store: bundle is nil")
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal bundle")
	}
	return data, nil
}

func decodeBundle(data []byte) (*model.EvidenceBundle, error) {
	var b model.EvidenceBundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal bundle")
	}
	return &b, nil
}
