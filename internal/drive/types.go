package drive

import (
	"errors"
	"fmt"
	"strconv"

	gdrive "google.golang.org/api/drive/v3"
)

const (
	// FolderMimeType is the MIME type Drive uses for folders
	FolderMimeType = "application/vnd.google-apps.folder"
	// DocumentMimeType is the MIME type of Google Docs
	DocumentMimeType = "application/vnd.google-apps.document"
	// SpreadsheetMimeType is the MIME type of Google Sheets
	SpreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	// PresentationMimeType is the MIME type of Google Slides
	PresentationMimeType = "application/vnd.google-apps.presentation"

	// FileFields is the partial response selector for a file record
	FileFields = "id,name,mimeType,modifiedTime,iconLink,webViewLink,size,owners,parents"
)

// ErrNotExportable is returned when a preview is requested for a file that is not a Google Doc
var ErrNotExportable = errors.New("file cannot be exported as a document")

// Owner is the subset of a Drive user returned with a file
type Owner struct {
	DisplayName  string `json:"displayName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// File is a file record as returned by the storage API
type File struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MimeType     string   `json:"mimeType"`
	ModifiedTime string   `json:"modifiedTime,omitempty"`
	IconLink     string   `json:"iconLink,omitempty"`
	WebViewLink  string   `json:"webViewLink,omitempty"`
	Size         string   `json:"size,omitempty"`
	Owners       []Owner  `json:"owners,omitempty"`
	Parents      []string `json:"parents,omitempty"`
}

// IsFolder reports whether the file is a folder
func (f *File) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// HasParent reports whether folderID is an immediate parent of the file
func (f *File) HasParent(folderID string) bool {
	for _, p := range f.Parents {
		if p == folderID {
			return true
		}
	}
	return false
}

func fromDrive(item *gdrive.File) *File {
	if item == nil {
		return nil
	}
	f := &File{
		ID:           item.Id,
		Name:         item.Name,
		MimeType:     item.MimeType,
		ModifiedTime: item.ModifiedTime,
		IconLink:     item.IconLink,
		WebViewLink:  item.WebViewLink,
		Parents:      item.Parents,
	}
	// Size is only present for binary content, Google Docs have none
	if item.Size > 0 {
		f.Size = strconv.FormatInt(item.Size, 10)
	}
	for _, o := range item.Owners {
		if o == nil {
			continue
		}
		f.Owners = append(f.Owners, Owner{DisplayName: o.DisplayName, EmailAddress: o.EmailAddress})
	}
	return f
}

// UpstreamError carries a failed upstream response so it can be surfaced verbatim
type UpstreamError struct {
	Op     string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.Status, e.Body)
}
