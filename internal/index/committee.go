package index

import (
	"context"
	"sort"
	"time"

	"github.com/driveshelf/driveshelf/internal/cache"
	"github.com/driveshelf/driveshelf/internal/drive"
)

// committeeCacheKeyPrefix namespaces committee listings per folder.
const committeeCacheKeyPrefix = "committee-files-"

// CommitteeFile is one committee document with its overlay metadata
// merged in.
type CommitteeFile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	IsProtected bool      `json:"isProtected"`
	Size        string    `json:"size"`
	ModifiedAt  time.Time `json:"modifiedAt"`
	PreviewURL  string    `json:"previewUrl"`
	DownloadURL string    `json:"downloadUrl"`
}

// CommitteeFiles returns the documents of one committee folder sorted by
// name, with overlay display names, categories, and protection applied.
// folderID may name any committee's folder; when empty, the configured
// default committee folder is used. Any failure returns an empty
// collection.
func (ix *Indexer) CommitteeFiles(ctx context.Context, folderID string) []CommitteeFile {
	if folderID == "" {
		folderID = ix.folders.Committees
	}

	if !ix.configured(folderID, "committee-files") {
		return []CommitteeFile{}
	}

	key := committeeCacheKeyPrefix + folderID

	result, err := cache.WithCache(ctx, ix.cache, key, 0, func(ctx context.Context) ([]CommitteeFile, error) {
		return ix.fetchCommitteeFiles(ctx, folderID)
	})
	if err != nil {
		return emptyResult[CommitteeFile](ix.logger, "committee-files", err)
	}

	return result
}

func (ix *Indexer) fetchCommitteeFiles(ctx context.Context, folderID string) ([]CommitteeFile, error) {
	items, err := ix.lister.ListAllChildren(ctx, folderID, drive.ListOptions{OrderBy: "name"})
	if err != nil {
		return nil, err
	}

	docs := items[:0:0]
	for _, it := range items {
		if !it.IsFolder() && isDocumentMIME(it.MIMEType) {
			docs = append(docs, it)
		}
	}

	records := ix.lookupOverlay(ctx, docs)

	files := make([]CommitteeFile, 0, len(docs))

	for _, it := range docs {
		description, protected := StripMarker(it.Description)
		rec := records[it.ID]

		displayName := rec.DisplayName
		if displayName == "" {
			displayName = StripExtension(it.Name)
		}

		// A stored password protects the file even without a
		// description marker.
		if rec.Password != "" {
			protected = true
		}

		files = append(files, CommitteeFile{
			ID:          it.ID,
			Name:        it.Name,
			DisplayName: displayName,
			Category:    rec.Category,
			Description: description,
			IsProtected: protected,
			Size:        FormatSize(it.Size),
			ModifiedAt:  it.ModifiedAt,
			PreviewURL:  drive.PreviewURL(it.ID),
			DownloadURL: drive.DownloadURL(it.ID),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}
