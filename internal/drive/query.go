package drive

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// typeGroups maps the short type filters accepted by search to MIME types
var typeGroups = map[string]string{
	"docs":   DocumentMimeType,
	"sheets": SpreadsheetMimeType,
	"slides": PresentationMimeType,
}

// SearchQuery describes a full-text or name search
type SearchQuery struct {
	Text     string
	Type     string // docs, sheets, slides or a raw MIME type
	NameOnly bool
}

// Validate rejects type filters that are neither a known group nor a MIME type
func (s SearchQuery) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Text, validation.Length(0, 512)),
		validation.Field(&s.Type, validation.By(func(value interface{}) error {
			t, _ := value.(string)
			if t == "" || strings.Contains(t, "/") {
				return nil
			}
			if _, ok := typeGroups[t]; !ok {
				return fmt.Errorf("must be one of docs, sheets, slides or a MIME type")
			}
			return nil
		})),
	)
}

// Build returns the Drive query string for the search
func (s SearchQuery) Build() string {
	parts := []string{"trashed = false"}

	if text := strings.TrimSpace(s.Text); text != "" {
		if s.NameOnly {
			parts = append(parts, fmt.Sprintf("name contains '%s'", EscapeQueryValue(text)))
		} else {
			parts = append(parts, fmt.Sprintf("fullText contains '%s'", EscapeQueryValue(text)))
		}
	}

	if mimeType := s.mimeType(); mimeType != "" {
		parts = append(parts, fmt.Sprintf("mimeType = '%s'", EscapeQueryValue(mimeType)))
	}

	return strings.Join(parts, " and ")
}

func (s SearchQuery) mimeType() string {
	if s.Type == "" {
		return ""
	}
	if mt, ok := typeGroups[s.Type]; ok {
		return mt
	}
	if strings.Contains(s.Type, "/") {
		return s.Type
	}
	return ""
}

// OrderFor returns the sort order for a list query. Drive does not sort
// fullText searches, they come back in relevance order.
func OrderFor(q string) string {
	if strings.Contains(q, "fullText contains ") {
		return ""
	}
	return "modifiedTime desc"
}

// ChildrenQuery returns the query listing the non-trashed children of a folder
func ChildrenQuery(folderID string) string {
	return fmt.Sprintf("'%s' in parents and trashed = false", EscapeQueryValue(folderID))
}

// EscapeQueryValue escapes a value for use inside a single-quoted query string
func EscapeQueryValue(v string) string {
	// Escaping the backslash isn't documented but is accepted
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}
