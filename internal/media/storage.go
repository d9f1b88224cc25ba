// Package media handles uploaded assets: object storage behind a small
// interface and a background cleaner for best-effort deletion.
package media

import (
	"context"
	"io"
)

// Storage persists and removes uploaded assets. Save returns the public
// location of the stored object; Delete accepts that same location or the
// raw key.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, location string) error
}
