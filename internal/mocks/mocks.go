package mocks

import (
	"context"
	"encoding/json"

	"github.com/drive-intranet/internal/drive"
	"golang.org/x/oauth2"
)

// MockDriveClient is a mock implementation of the Drive client
type MockDriveClient struct {
	ListFunc           func(ctx context.Context, ts oauth2.TokenSource, q string) ([]*drive.File, error)
	ListChildrenFunc   func(ctx context.Context, ts oauth2.TokenSource, folderID string) ([]*drive.File, error)
	GetFunc            func(ctx context.Context, ts oauth2.TokenSource, fileID string) (*drive.File, error)
	ExportDocumentFunc func(ctx context.Context, ts oauth2.TokenSource, file *drive.File) (*drive.Document, error)
	QueryActivityFunc  func(ctx context.Context, ts oauth2.TokenSource, ancestorID string, pageSize int64) (json.RawMessage, error)
}

// List mocks the List method
func (m *MockDriveClient) List(ctx context.Context, ts oauth2.TokenSource, q string) ([]*drive.File, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ts, q)
	}
	return []*drive.File{}, nil
}

// ListChildren mocks the ListChildren method
func (m *MockDriveClient) ListChildren(ctx context.Context, ts oauth2.TokenSource, folderID string) ([]*drive.File, error) {
	if m.ListChildrenFunc != nil {
		return m.ListChildrenFunc(ctx, ts, folderID)
	}
	return []*drive.File{}, nil
}

// Get mocks the Get method
func (m *MockDriveClient) Get(ctx context.Context, ts oauth2.TokenSource, fileID string) (*drive.File, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, ts, fileID)
	}
	return &drive.File{
		ID:       fileID,
		Name:     "mock-file",
		MimeType: "text/plain",
	}, nil
}

// ExportDocument mocks the ExportDocument method
func (m *MockDriveClient) ExportDocument(ctx context.Context, ts oauth2.TokenSource, file *drive.File) (*drive.Document, error) {
	if m.ExportDocumentFunc != nil {
		return m.ExportDocumentFunc(ctx, ts, file)
	}
	if file.MimeType != drive.DocumentMimeType {
		return nil, drive.ErrNotExportable
	}
	return &drive.Document{
		Markdown: "# " + file.Name,
		Text:     file.Name,
		Excerpt:  file.Name,
	}, nil
}

// QueryActivity mocks the QueryActivity method
func (m *MockDriveClient) QueryActivity(ctx context.Context, ts oauth2.TokenSource, ancestorID string, pageSize int64) (json.RawMessage, error) {
	if m.QueryActivityFunc != nil {
		return m.QueryActivityFunc(ctx, ts, ancestorID, pageSize)
	}
	return json.RawMessage(`{"activities":[]}`), nil
}

// MockTokenProvider is a mock source of the token used for background refreshes
type MockTokenProvider struct {
	LatestTokenSourceFunc func() (oauth2.TokenSource, bool)
}

// LatestTokenSource mocks the LatestTokenSource method
func (m *MockTokenProvider) LatestTokenSource() (oauth2.TokenSource, bool) {
	if m.LatestTokenSourceFunc != nil {
		return m.LatestTokenSourceFunc()
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "mock-token"}), true
}
