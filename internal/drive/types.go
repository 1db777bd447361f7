package drive

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Well-known MIME types in the remote store.
const (
	MIMEFolder = "application/vnd.google-apps.folder"
	MIMEPdf    = "application/pdf"
)

// Item represents one node (file or folder) in the remote store.
// Fields are normalized from the API response — callers never see raw
// API data. An Item is an immutable snapshot per fetch; only aggregate
// indexer results are cached, never individual items.
type Item struct {
	ID          string
	Name        string
	MIMEType    string
	Description string
	CreatedAt   time.Time
	ModifiedAt  time.Time // zero when the API omits or mangles the timestamp
	Size        int64
	Parents     []string
}

// IsFolder reports whether the item is a folder node.
func (i Item) IsFolder() bool {
	return i.MIMEType == MIMEFolder
}

// Listing is one page of children plus the continuation token, empty on
// the last page.
type Listing struct {
	Items         []Item
	NextPageToken string
}

// fileResource mirrors the API's files resource JSON exactly.
// Unexported — callers use Item via toItem() normalization.
type fileResource struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MimeType     string   `json:"mimeType"`
	Description  string   `json:"description"`
	CreatedTime  string   `json:"createdTime"`
	ModifiedTime string   `json:"modifiedTime"`
	Size         sizeText `json:"size"`
	Parents      []string `json:"parents"`
}

// sizeText handles the API quirk that file sizes arrive as quoted
// decimal strings ("size": "12345") rather than JSON numbers.
type sizeText int64

func (s *sizeText) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		// Some mirrors of the API emit a bare number; accept both.
		var n int64
		if numErr := json.Unmarshal(data, &n); numErr != nil {
			return err
		}

		*s = sizeText(n)

		return nil
	}

	var n int64
	for _, c := range raw {
		if c < '0' || c > '9' {
			return nil // malformed size is treated as unknown, not fatal
		}

		n = n*10 + int64(c-'0')
	}

	*s = sizeText(n)

	return nil
}

type listResponse struct {
	Files         []fileResource `json:"files"`
	NextPageToken string         `json:"nextPageToken"`
}

// toItem normalizes an API files resource into our Item type.
func (f *fileResource) toItem(logger *slog.Logger) Item {
	return Item{
		ID:          f.ID,
		Name:        f.Name,
		MIMEType:    f.MimeType,
		Description: f.Description,
		CreatedAt:   parseTimestamp(f.CreatedTime, "createdTime", f.ID, logger),
		ModifiedAt:  parseTimestamp(f.ModifiedTime, "modifiedTime", f.ID, logger),
		Size:        int64(f.Size),
		Parents:     f.Parents,
	}
}

// parseTimestamp parses an RFC3339 timestamp. Missing or malformed
// values yield the zero time so downstream heuristics can tell "no
// timestamp" apart from a real one; malformed values are logged.
func parseTimestamp(raw, field, itemID string, logger *slog.Logger) time.Time {
	if raw == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logger.Warn("invalid timestamp on remote item",
			slog.String("field", field),
			slog.String("item_id", itemID),
			slog.String("raw", raw),
		)

		return time.Time{}
	}

	return t
}
