package drive

import (
	"context"
	"encoding/json"

	"golang.org/x/oauth2"
)

// ClientInterface defines the storage and activity operations used by the API
type ClientInterface interface {
	ChildLister
	List(ctx context.Context, ts oauth2.TokenSource, q string) ([]*File, error)
	Get(ctx context.Context, ts oauth2.TokenSource, fileID string) (*File, error)
	ExportDocument(ctx context.Context, ts oauth2.TokenSource, file *File) (*Document, error)
	QueryActivity(ctx context.Context, ts oauth2.TokenSource, ancestorID string, pageSize int64) (json.RawMessage, error)
}
