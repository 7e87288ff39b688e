package drive

import "testing"

func TestSearchQuery_Build(t *testing.T) {
	tests := []struct {
		name     string
		query    SearchQuery
		expected string
	}{
		{
			name:     "empty",
			query:    SearchQuery{},
			expected: "trashed = false",
		},
		{
			name:     "full text",
			query:    SearchQuery{Text: "budget 2025"},
			expected: "trashed = false and fullText contains 'budget 2025'",
		},
		{
			name:     "name only",
			query:    SearchQuery{Text: "budget", NameOnly: true},
			expected: "trashed = false and name contains 'budget'",
		},
		{
			name:     "quotes escaped everywhere",
			query:    SearchQuery{Text: `it's Bob's`},
			expected: `trashed = false and fullText contains 'it\'s Bob\'s'`,
		},
		{
			name:     "backslash escaped",
			query:    SearchQuery{Text: `a\b`},
			expected: `trashed = false and fullText contains 'a\\b'`,
		},
		{
			name:     "docs group",
			query:    SearchQuery{Type: "docs"},
			expected: "trashed = false and mimeType = 'application/vnd.google-apps.document'",
		},
		{
			name:     "sheets group with text",
			query:    SearchQuery{Text: "q3", Type: "sheets"},
			expected: "trashed = false and fullText contains 'q3' and mimeType = 'application/vnd.google-apps.spreadsheet'",
		},
		{
			name:     "slides group",
			query:    SearchQuery{Type: "slides"},
			expected: "trashed = false and mimeType = 'application/vnd.google-apps.presentation'",
		},
		{
			name:     "raw mime type",
			query:    SearchQuery{Type: "application/pdf"},
			expected: "trashed = false and mimeType = 'application/pdf'",
		},
		{
			name:     "unknown group ignored",
			query:    SearchQuery{Type: "videos"},
			expected: "trashed = false",
		},
		{
			name:     "whitespace text ignored",
			query:    SearchQuery{Text: "   "},
			expected: "trashed = false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Build(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSearchQuery_Validate(t *testing.T) {
	valid := []SearchQuery{
		{},
		{Text: "hello"},
		{Type: "docs"},
		{Type: "sheets"},
		{Type: "slides"},
		{Type: "application/pdf"},
	}
	for _, q := range valid {
		if err := q.Validate(); err != nil {
			t.Errorf("Expected %+v to be valid, got %v", q, err)
		}
	}

	if err := (SearchQuery{Type: "videos"}).Validate(); err == nil {
		t.Error("Expected unknown type group to be rejected")
	}
}

func TestChildrenQuery(t *testing.T) {
	if got := ChildrenQuery("folder-1"); got != "'folder-1' in parents and trashed = false" {
		t.Errorf("Unexpected children query: %s", got)
	}
}

func TestOrderFor(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"full text search", SearchQuery{Text: "plan"}.Build(), ""},
		{"name search", SearchQuery{Text: "plan", NameOnly: true}.Build(), "modifiedTime desc"},
		{"type only", SearchQuery{Type: "docs"}.Build(), "modifiedTime desc"},
		{"children", ChildrenQuery("folder-1"), "modifiedTime desc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OrderFor(tt.query); got != tt.expected {
				t.Errorf("OrderFor(%q) = %q, expected %q", tt.query, got, tt.expected)
			}
		})
	}
}
