package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// DefaultBaseURL is the remote store's REST endpoint.
const DefaultBaseURL = "https://www.googleapis.com/drive/v3"

// defaultPageSize is the page size used when the caller does not set one.
// 100 is the API default; the maximum is 1000.
const defaultPageSize = 100

// itemFields is the projection requested for every item. Limiting fields
// keeps responses small; everything here maps onto Item.
const itemFields = "id,name,mimeType,description,createdTime,modifiedTime,size,parents"

// TokenSource provides bearer tokens for API requests and accepts an
// invalidation signal after an authentication failure. Defined at the
// consumer per Go convention; internal/auth provides the implementation.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// Client is a read-only HTTP client for the content store's listing API.
// Every request carries a bearer token from the TokenSource; a 401
// response invalidates the cached token and retries the identical
// request exactly once with a fresh token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
	userAgent  string
}

// NewClient creates a listing client. baseURL defaults to
// DefaultBaseURL, httpClient to http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, token TokenSource, logger *slog.Logger, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		token:      token,
		logger:     logger,
		userAgent:  userAgent,
	}
}

// ListOptions controls a ListChildren call.
type ListOptions struct {
	// MIMEFilter restricts results to one MIME type when non-empty.
	MIMEFilter string
	// OrderBy is the API sort expression, e.g. "name" or "modifiedTime desc".
	OrderBy string
	// PageSize caps items per page; 0 means the client default.
	PageSize int
	// PageToken continues a previous listing.
	PageToken string
}

// ListChildren returns one page of the direct children of folderID,
// excluding trashed items.
func (c *Client) ListChildren(ctx context.Context, folderID string, opts ListOptions) (*Listing, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	if opts.MIMEFilter != "" {
		q += fmt.Sprintf(" and mimeType = '%s'", opts.MIMEFilter)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	query := url.Values{
		"q":        {q},
		"pageSize": {strconv.Itoa(pageSize)},
		"fields":   {fmt.Sprintf("nextPageToken,files(%s)", itemFields)},
	}

	if opts.OrderBy != "" {
		query.Set("orderBy", opts.OrderBy)
	}

	if opts.PageToken != "" {
		query.Set("pageToken", opts.PageToken)
	}

	body, err := c.get(ctx, "/files", query)
	if err != nil {
		return nil, err
	}

	var lr listResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("drive: decoding list response: %w", err)
	}

	items := make([]Item, 0, len(lr.Files))
	for i := range lr.Files {
		items = append(items, lr.Files[i].toItem(c.logger))
	}

	return &Listing{Items: items, NextPageToken: lr.NextPageToken}, nil
}

// ListAllChildren pages through ListChildren until no continuation token
// remains, concatenating results in arrival order. Callers must not
// assume a bounded page count.
func (c *Client) ListAllChildren(ctx context.Context, folderID string, opts ListOptions) ([]Item, error) {
	var items []Item

	opts.PageToken = ""

	page := 1

	for {
		listing, err := c.ListChildren(ctx, folderID, opts)
		if err != nil {
			return nil, err
		}

		items = append(items, listing.Items...)

		c.logger.Debug("fetched listing page",
			slog.String("folder_id", folderID),
			slog.Int("page", page),
			slog.Int("count", len(listing.Items)),
		)

		if listing.NextPageToken == "" {
			return items, nil
		}

		opts.PageToken = listing.NextPageToken
		page++
	}
}

// ListSubfolders returns all direct subfolders of parentID ordered by name.
func (c *Client) ListSubfolders(ctx context.Context, parentID string) ([]Item, error) {
	return c.ListAllChildren(ctx, parentID, ListOptions{
		MIMEFilter: MIMEFolder,
		OrderBy:    "name",
	})
}

// GetItem retrieves metadata for a single item by ID.
func (c *Client) GetItem(ctx context.Context, id string) (*Item, error) {
	query := url.Values{"fields": {itemFields}}

	body, err := c.get(ctx, "/files/"+url.PathEscape(id), query)
	if err != nil {
		return nil, err
	}

	var fr fileResource
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, fmt.Errorf("drive: decoding item response: %w", err)
	}

	item := fr.toItem(c.logger)

	return &item, nil
}

// get executes an authenticated GET and returns the response body.
// On a 401 it invalidates the token source and retries the identical
// request once; a second 401 surfaces as ErrUnauthorized. Other non-2xx
// responses surface as *APIError with status and body.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqID := uuid.NewString()

	body, status, err := c.getOnce(ctx, path, query, reqID)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		c.logger.Warn("unauthorized response, refreshing token and retrying",
			slog.String("path", path),
			slog.String("request_id", reqID),
		)

		c.token.Invalidate()

		body, status, err = c.getOnce(ctx, path, query, reqID)
		if err != nil {
			return nil, err
		}
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		apiErr := &APIError{
			StatusCode: status,
			Body:       string(body),
			Err:        classifyStatus(status),
		}

		c.logger.Error("remote request failed",
			slog.String("path", path),
			slog.String("request_id", reqID),
			slog.Int("status", status),
		)

		return nil, apiErr
	}

	return body, nil
}

// getOnce executes a single authenticated GET (no retry) and returns the
// body and status. Transport errors are returned as-is.
func (c *Client) getOnce(ctx context.Context, path string, query url.Values, reqID string) ([]byte, int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("drive: creating request: %w", err)
	}

	tok, err := c.token.Token(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("drive: obtaining token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tok)

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("drive: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("drive: reading response: %w", err)
	}

	return body, resp.StatusCode, nil
}
