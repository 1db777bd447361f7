package index

import (
	"context"
	"sort"

	"github.com/driveshelf/driveshelf/internal/cache"
	"github.com/driveshelf/driveshelf/internal/drive"
)

// recordingsCacheKey is the cache key for the recordings collection.
const recordingsCacheKey = "recordings"

// Recording is one meeting recording ready for display.
type Recording struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
	Month     int    `json:"month,omitempty"`
	DateLabel string `json:"dateLabel"`
	Duration  string `json:"duration,omitempty"`
	Size      string `json:"size"`
	StreamURL string `json:"streamUrl"`
}

// Recordings returns all meeting recordings sorted by year descending,
// then title ascending. A recording with no date in its filename falls
// back to its year folder, then to its modified timestamp — recordings
// are never dropped for lack of a date, unlike newsletters. Any failure
// returns an empty collection.
func (ix *Indexer) Recordings(ctx context.Context) []Recording {
	if !ix.configured(ix.folders.Recordings, "recordings") {
		return []Recording{}
	}

	result, err := cache.WithCache(ctx, ix.cache, recordingsCacheKey, 0, func(ctx context.Context) ([]Recording, error) {
		return ix.fetchRecordings(ctx)
	})
	if err != nil {
		return emptyResult[Recording](ix.logger, "recordings", err)
	}

	return result
}

func (ix *Indexer) fetchRecordings(ctx context.Context) ([]Recording, error) {
	found, err := ix.walkWithYearFolders(ctx, ix.folders.Recordings, isAudioMIME)
	if err != nil {
		return nil, err
	}

	recordings := make([]Recording, 0, len(found))

	for _, f := range found {
		date, _, hasDate := FindDate(f.item.Name)

		switch {
		case hasDate:
		case f.folderYear != 0:
			date = ParsedDate{Year: f.folderYear}
		default:
			// Best-effort default: the upload time is usually within
			// days of the meeting.
			date, _ = fallbackDate(f.item)
		}

		duration, _, _ := FindDuration(f.item.Name)

		recordings = append(recordings, Recording{
			ID:        f.item.ID,
			Title:     CleanTitle(f.item.Name),
			Year:      date.Year,
			Month:     date.Month,
			DateLabel: date.Label(),
			Duration:  duration,
			Size:      FormatSize(f.item.Size),
			StreamURL: drive.StreamURL(f.item.ID),
		})
	}

	sort.SliceStable(recordings, func(i, j int) bool {
		if recordings[i].Year != recordings[j].Year {
			return recordings[i].Year > recordings[j].Year
		}

		return recordings[i].Title < recordings[j].Title
	})

	return recordings, nil
}
