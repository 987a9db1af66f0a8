package store

import (
	"context"
	"fmt"

	"github.com/usefloww/floww/internal/core"
)

// Seeder is a RecordStore that can also be populated with grant records
// and hierarchy edges, e.g. from config seeds.
type Seeder interface {
	core.RecordStore

	PutGrant(ctx context.Context, grant core.Grant) error
	SetParent(ctx context.Context, scopeID, parentID string) error
}

// Build constructs a store from its config type and raw options block.
func Build(storageType string, options map[string]any) (Seeder, error) {
	switch storageType {
	case "", "memory":
		return NewMemory(), nil
	case "file":
		opts, err := DecodeFileOptions(options)
		if err != nil {
			return nil, err
		}
		return NewFile(opts)
	default:
		return nil, fmt.Errorf("unknown storage type '%s'", storageType)
	}
}
