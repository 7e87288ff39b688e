package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/drive-intranet/internal/config"
	"github.com/drive-intranet/internal/metrics"
	"github.com/drive-intranet/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/driveactivity/v2"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	// maxExportSize caps the HTML read back from a document export
	maxExportSize = 10 << 20

	defaultActivityEndpoint = "https://driveactivity.googleapis.com/"
)

// Client talks to the Drive and Drive Activity APIs on behalf of a signed-in user
type Client struct {
	endpoint         string
	activityEndpoint string
	pageSize         int64
	limiter          *rate.Limiter
	retry            utils.RetryConfig
	httpClient       *http.Client
}

// NewClient creates a new Drive client
func NewClient(cfg config.DriveConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	return &Client{
		endpoint:         cfg.Endpoint,
		activityEndpoint: cfg.ActivityEndpoint,
		pageSize:         pageSize,
		limiter:          rate.NewLimiter(limit, 1),
		retry:            utils.DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetRetryConfig overrides the retry policy for upstream calls
func (c *Client) SetRetryConfig(rc utils.RetryConfig) {
	c.retry = rc
}

func (c *Client) authClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, ts)
}

func (c *Client) driveService(ctx context.Context, ts oauth2.TokenSource) (*gdrive.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(c.authClient(ctx, ts))}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	svc, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return svc, nil
}

// call paces and retries a single upstream operation
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := utils.RetryWithBackoff(ctx, c.retry, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return fn()
	})
	metrics.RecordUpstreamCall(op, time.Since(start), err)
	if err != nil {
		return wrapUpstream(op, err)
	}
	return nil
}

// List runs a single files.list request with the given query
func (c *Client) List(ctx context.Context, ts oauth2.TokenSource, q string) ([]*File, error) {
	page, _, err := c.listPage(ctx, ts, q, c.pageSize, "")
	return page, err
}

// ListChildren lists every non-trashed child of a folder, following page tokens
func (c *Client) ListChildren(ctx context.Context, ts oauth2.TokenSource, folderID string) ([]*File, error) {
	q := ChildrenQuery(folderID)

	var (
		files     []*File
		pageToken string
	)
	for {
		page, next, err := c.listPage(ctx, ts, q, c.pageSize, pageToken)
		if err != nil {
			return nil, err
		}
		files = append(files, page...)
		if next == "" {
			break
		}
		pageToken = next
	}

	logrus.Debugf("Listed %d children of folder %s", len(files), folderID)
	return files, nil
}

func (c *Client) listPage(ctx context.Context, ts oauth2.TokenSource, q string, pageSize int64, pageToken string) ([]*File, string, error) {
	svc, err := c.driveService(ctx, ts)
	if err != nil {
		return nil, "", err
	}

	logrus.Debugf("Drive list query: %s (page size: %d)", q, pageSize)

	call := svc.Files.List().
		Q(q).
		Fields(googleapi.Field(fmt.Sprintf("files(%s),nextPageToken", FileFields))).
		PageSize(pageSize).
		IncludeItemsFromAllDrives(true).
		SupportsAllDrives(true).
		Context(ctx)
	if orderBy := OrderFor(q); orderBy != "" {
		call = call.OrderBy(orderBy)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	var list *gdrive.FileList
	err = c.call(ctx, "Drive list", func() error {
		var err error
		list, err = call.Do()
		return err
	})
	if err != nil {
		return nil, "", err
	}

	files := make([]*File, 0, len(list.Files))
	for _, item := range list.Files {
		if f := fromDrive(item); f != nil {
			files = append(files, f)
		}
	}
	return files, list.NextPageToken, nil
}

// Get fetches the metadata of a single file
func (c *Client) Get(ctx context.Context, ts oauth2.TokenSource, fileID string) (*File, error) {
	svc, err := c.driveService(ctx, ts)
	if err != nil {
		return nil, err
	}

	var item *gdrive.File
	err = c.call(ctx, "Drive get", func() error {
		var err error
		item, err = svc.Files.Get(fileID).
			Fields(googleapi.Field(FileFields)).
			SupportsAllDrives(true).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return fromDrive(item), nil
}

// ExportDocument exports a Google Doc as HTML and converts it to markdown and plain text
func (c *Client) ExportDocument(ctx context.Context, ts oauth2.TokenSource, file *File) (*Document, error) {
	if file.MimeType != DocumentMimeType {
		return nil, ErrNotExportable
	}

	svc, err := c.driveService(ctx, ts)
	if err != nil {
		return nil, err
	}

	var body []byte
	err = c.call(ctx, "Drive export", func() error {
		resp, err := svc.Files.Export(file.ID, "text/html").Context(ctx).Download()
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxExportSize))
		return err
	})
	if err != nil {
		return nil, err
	}

	return newDocument(string(body), file.WebViewLink)
}

// QueryActivity returns the activity feed under the given ancestor folder.
// The response body is returned byte for byte.
func (c *Client) QueryActivity(ctx context.Context, ts oauth2.TokenSource, ancestorID string, pageSize int64) (json.RawMessage, error) {
	payload, err := json.Marshal(&driveactivity.QueryDriveActivityRequest{
		AncestorName: "items/" + ancestorID,
		PageSize:     pageSize,
		ConsolidationStrategy: &driveactivity.ConsolidationStrategy{
			Legacy: &driveactivity.Legacy{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode activity request: %w", err)
	}

	endpoint := c.activityEndpoint
	if endpoint == "" {
		endpoint = defaultActivityEndpoint
	}
	queryURL := strings.TrimRight(endpoint, "/") + "/v2/activity:query"
	httpClient := c.authClient(ctx, ts)

	logrus.Debugf("Activity query under %s (page size: %d)", ancestorID, pageSize)

	var raw []byte
	err = c.call(ctx, "Activity query", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, queryURL, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := googleapi.CheckResponse(resp); err != nil {
			return err
		}
		raw, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.Debugf("Retrieved %d bytes of activity under %s", len(raw), ancestorID)
	return raw, nil
}

func wrapUpstream(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		body := gerr.Body
		if body == "" {
			body = gerr.Message
		}
		return &UpstreamError{Op: op, Status: gerr.Code, Body: body}
	}
	return fmt.Errorf("%s failed: %w", op, err)
}
