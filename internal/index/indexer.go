package index

import (
	"context"
	"log/slog"
	"strings"

	"github.com/driveshelf/driveshelf/internal/cache"
	"github.com/driveshelf/driveshelf/internal/drive"
	"github.com/driveshelf/driveshelf/internal/overlay"
)

// Lister is the slice of the drive client the indexers consume.
// Defined here per "accept interfaces, return structs"; *drive.Client is
// the real implementation.
type Lister interface {
	ListAllChildren(ctx context.Context, folderID string, opts drive.ListOptions) ([]drive.Item, error)
	ListSubfolders(ctx context.Context, parentID string) ([]drive.Item, error)
}

// Folders holds the top-level folder ID for each content category.
// An empty ID means the category is not configured and indexes as empty.
type Folders struct {
	Newsletters string
	Recordings  string
	Resources   string
	Committees  string
}

// Indexer builds the categorized collections served to the site. It is
// the resilience boundary: any failure below it — unreachable remote,
// bad credentials, missing config — is logged and comes back as an empty
// collection, so one broken category never takes down unrelated pages.
type Indexer struct {
	lister  Lister
	cache   *cache.Cache
	overlay overlay.Source
	folders Folders
	logger  *slog.Logger
}

// New creates an Indexer. overlaySource may be nil when no local
// metadata overlay exists.
func New(lister Lister, resultCache *cache.Cache, overlaySource overlay.Source, folders Folders, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}

	if resultCache == nil {
		resultCache = cache.New(nil, 0, logger)
	}

	return &Indexer{
		lister:  lister,
		cache:   resultCache,
		overlay: overlaySource,
		folders: folders,
		logger:  logger,
	}
}

// configured reports whether this category can be served: it needs both
// a folder ID and a listing client. Either missing means "feature not
// configured" — the indexer returns empty without touching the network.
func (ix *Indexer) configured(folderID, category string) bool {
	if folderID == "" || ix.lister == nil {
		ix.logger.Debug("category not configured",
			slog.String("category", category),
		)

		return false
	}

	return true
}

// isDocumentMIME reports whether the MIME type is one of the document
// formats shown on newsletter, resource, and committee pages.
func isDocumentMIME(mimeType string) bool {
	switch mimeType {
	case drive.MIMEPdf,
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return true
	default:
		return false
	}
}

// isAudioMIME reports whether the MIME type is playable audio.
func isAudioMIME(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio/")
}

// foundFile is one file reached during a walk, with the folder context
// it was found under.
type foundFile struct {
	item       drive.Item
	folder     drive.Item // zero Item for root-level files
	folderYear int        // year the enclosing folder encodes, 0 if none
}

// walkWithYearFolders lists rootID's files plus the files of any
// year-coded subfolder, deduplicating by item ID (the same file can be
// reachable both from the root scan and a year-folder scan). Files whose
// MIME type fails mimeOK are dropped.
func (ix *Indexer) walkWithYearFolders(ctx context.Context, rootID string, mimeOK func(string) bool) ([]foundFile, error) {
	children, err := ix.lister.ListAllChildren(ctx, rootID, drive.ListOptions{OrderBy: "name"})
	if err != nil {
		return nil, err
	}

	var found []foundFile

	seen := make(map[string]bool)

	add := func(f foundFile) {
		if f.item.ID == "" || seen[f.item.ID] {
			return
		}

		seen[f.item.ID] = true
		found = append(found, f)
	}

	for _, child := range children {
		if !child.IsFolder() {
			if mimeOK(child.MIMEType) {
				add(foundFile{item: child})
			}

			continue
		}

		year, isYear := FolderYear(child.Name)
		if !isYear {
			continue
		}

		inner, err := ix.lister.ListAllChildren(ctx, child.ID, drive.ListOptions{OrderBy: "name"})
		if err != nil {
			return nil, err
		}

		for _, f := range inner {
			if f.IsFolder() || !mimeOK(f.MIMEType) {
				continue
			}

			add(foundFile{item: f, folder: child, folderYear: year})
		}
	}

	return found, nil
}

// lookupOverlay fetches overlay records for the given items. A missing
// or failing overlay source yields an empty map — overlay data is an
// enhancement, never a dependency.
func (ix *Indexer) lookupOverlay(ctx context.Context, items []drive.Item) map[string]overlay.Record {
	if ix.overlay == nil || len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	records, err := ix.overlay.Lookup(ctx, ids)
	if err != nil {
		ix.logger.Warn("overlay lookup failed, continuing without overrides",
			slog.Int("items", len(ids)),
			slog.String("error", err.Error()),
		)

		return nil
	}

	return records
}

// empty is the logged empty-result exit shared by all indexers.
func emptyResult[T any](logger *slog.Logger, category string, err error) []T {
	if err != nil {
		logger.Error("indexer degraded to empty result",
			slog.String("category", category),
			slog.String("error", err.Error()),
		)
	}

	return []T{}
}

// fallbackDate derives a date from an item's modified time when no
// filename strategy hit. Returns ok=false when the timestamp is absent.
func fallbackDate(item drive.Item) (ParsedDate, bool) {
	if item.ModifiedAt.IsZero() {
		return ParsedDate{}, false
	}

	t := item.ModifiedAt.UTC()

	return ParsedDate{Year: t.Year(), Month: int(t.Month())}, true
}
