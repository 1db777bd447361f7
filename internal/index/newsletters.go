package index

import (
	"context"
	"log/slog"
	"sort"

	"github.com/driveshelf/driveshelf/internal/cache"
	"github.com/driveshelf/driveshelf/internal/drive"
)

// newslettersCacheKey is the cache key for the newsletter collection.
const newslettersCacheKey = "newsletters"

// Newsletter is one newsletter issue ready for display.
type Newsletter struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	DateLabel   string `json:"dateLabel"`
	Size        string `json:"size"`
	PreviewURL  string `json:"previewUrl"`
	DownloadURL string `json:"downloadUrl"`
}

// Newsletters returns all newsletter issues sorted newest first
// (year desc, month desc). Issues whose filename yields no date and
// whose modified timestamp is unusable are dropped with a warning —
// an undated newsletter cannot be placed in the archive. Any failure
// returns an empty collection.
func (ix *Indexer) Newsletters(ctx context.Context) []Newsletter {
	if !ix.configured(ix.folders.Newsletters, "newsletters") {
		return []Newsletter{}
	}

	result, err := cache.WithCache(ctx, ix.cache, newslettersCacheKey, 0, func(ctx context.Context) ([]Newsletter, error) {
		return ix.fetchNewsletters(ctx)
	})
	if err != nil {
		return emptyResult[Newsletter](ix.logger, "newsletters", err)
	}

	return result
}

func (ix *Indexer) fetchNewsletters(ctx context.Context) ([]Newsletter, error) {
	found, err := ix.walkWithYearFolders(ctx, ix.folders.Newsletters, isDocumentMIME)
	if err != nil {
		return nil, err
	}

	newsletters := make([]Newsletter, 0, len(found))

	for _, f := range found {
		date, ok := ParseDate(f.item.Name)
		if !ok {
			date, ok = fallbackDate(f.item)
		}

		if !ok {
			// Policy: skip rather than crash. The file stays in the
			// store; it just cannot be shelved without a date.
			ix.logger.Warn("dropping newsletter with no parseable date",
				slog.String("item_id", f.item.ID),
				slog.String("name", f.item.Name),
			)

			continue
		}

		newsletters = append(newsletters, Newsletter{
			ID:          f.item.ID,
			Title:       StripExtension(f.item.Name),
			Year:        date.Year,
			Month:       date.Month,
			DateLabel:   date.Label(),
			Size:        FormatSize(f.item.Size),
			PreviewURL:  drive.PreviewURL(f.item.ID),
			DownloadURL: drive.DownloadURL(f.item.ID),
		})
	}

	sort.SliceStable(newsletters, func(i, j int) bool {
		if newsletters[i].Year != newsletters[j].Year {
			return newsletters[i].Year > newsletters[j].Year
		}

		return newsletters[i].Month > newsletters[j].Month
	})

	return newsletters, nil
}
