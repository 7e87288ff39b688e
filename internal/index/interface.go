package index

import (
	"context"

	"github.com/drive-intranet/internal/drive"
	"golang.org/x/oauth2"
)

// ManagerInterface defines the interface for index manager operations
type ManagerInterface interface {
	Refresh(ctx context.Context, ts oauth2.TokenSource) (int, error)
	Contains(file *drive.File) bool
	Filter(files []*drive.File) []*drive.File
	Snapshot() Snapshot
	Ready() bool
	RootID() string
}
