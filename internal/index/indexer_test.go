package index

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveshelf/driveshelf/internal/cache"
	"github.com/driveshelf/driveshelf/internal/drive"
	"github.com/driveshelf/driveshelf/internal/overlay"
)

// fakeLister serves canned listings per folder ID and counts calls.
type fakeLister struct {
	children map[string][]drive.Item
	calls    int
	err      error
}

func (f *fakeLister) ListAllChildren(_ context.Context, folderID string, _ drive.ListOptions) ([]drive.Item, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	return f.children[folderID], nil
}

func (f *fakeLister) ListSubfolders(_ context.Context, parentID string) ([]drive.Item, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	var folders []drive.Item

	for _, it := range f.children[parentID] {
		if it.IsFolder() {
			folders = append(folders, it)
		}
	}

	return folders, nil
}

func folder(id, name string) drive.Item {
	return drive.Item{ID: id, Name: name, MIMEType: drive.MIMEFolder}
}

func pdf(id, name string, modified time.Time) drive.Item {
	return drive.Item{ID: id, Name: name, MIMEType: drive.MIMEPdf, Size: 1024, ModifiedAt: modified}
}

func audio(id, name string) drive.Item {
	return drive.Item{ID: id, Name: name, MIMEType: "audio/mpeg", Size: 4096}
}

func newTestIndexer(lister Lister, folders Folders, src overlay.Source) *Indexer {
	return New(lister, cache.New(cache.NewMemory(), time.Minute, nil), src, folders, nil)
}

func TestNewsletters_SortedNewestFirst(t *testing.T) {
	lister := &fakeLister{children: map[string][]drive.Item{
		"nl-root": {
			pdf("n1", "January 2025.pdf", time.Time{}),
			pdf("n2", "December 2025.pdf", time.Time{}),
			folder("y2026", "2026"),
		},
		"y2026": {
			pdf("n3", "February 2026.pdf", time.Time{}),
		},
	}}

	ix := newTestIndexer(lister, Folders{Newsletters: "nl-root"}, nil)

	got := ix.Newsletters(context.Background())
	require.Len(t, got, 3)

	assert.Equal(t, []string{"n3", "n2", "n1"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "February 2026", got[0].DateLabel)
	assert.Equal(t, 2026, got[0].Year)
	assert.Equal(t, 2, got[0].Month)
	assert.Equal(t, "1.0 KB", got[0].Size)
	assert.Equal(t, drive.PreviewURL("n3"), got[0].PreviewURL)
	assert.Equal(t, drive.DownloadURL("n3"), got[0].DownloadURL)
}

func TestNewsletters_UndatedIssueIsDropped(t *testing.T) {
	modified := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	lister := &fakeLister{children: map[string][]drive.Item{
		"nl-root": {
			pdf("n1", "January 2025.pdf", time.Time{}),
			// No date in the name and no modified timestamp: dropped.
			pdf("n2", "Special Edition.pdf", time.Time{}),
			// No date in the name but a usable modified timestamp: kept.
			pdf("n3", "Members Update.pdf", modified),
		},
	}}

	ix := newTestIndexer(lister, Folders{Newsletters: "nl-root"}, nil)

	got := ix.Newsletters(context.Background())
	require.Len(t, got, 2, "exactly one issue must be dropped")

	assert.Equal(t, "n1", got[0].ID)
	assert.Equal(t, "n3", got[1].ID)
	assert.Equal(t, 2024, got[1].Year)
	assert.Equal(t, 6, got[1].Month)
}

func TestNewsletters_DeduplicatesAcrossTraversalPaths(t *testing.T) {
	shared := pdf("dup", "March 2025.pdf", time.Time{})

	lister := &fakeLister{children: map[string][]drive.Item{
		"nl-root": {shared, folder("y2025", "2025")},
		"y2025":   {shared},
	}}

	ix := newTestIndexer(lister, Folders{Newsletters: "nl-root"}, nil)

	got := ix.Newsletters(context.Background())
	assert.Len(t, got, 1)
}

func TestNewsletters_RemoteFailureYieldsEmpty(t *testing.T) {
	lister := &fakeLister{err: errors.New("remote unreachable")}
	ix := newTestIndexer(lister, Folders{Newsletters: "nl-root"}, nil)

	got := ix.Newsletters(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNewsletters_NotConfiguredMakesNoCalls(t *testing.T) {
	lister := &fakeLister{}
	ix := newTestIndexer(lister, Folders{}, nil)

	got := ix.Newsletters(context.Background())
	assert.Empty(t, got)
	assert.Zero(t, lister.calls)
}

func TestNewsletters_SecondCallServedFromCache(t *testing.T) {
	lister := &fakeLister{children: map[string][]drive.Item{
		"nl-root": {pdf("n1", "January 2025.pdf", time.Time{})},
	}}

	ix := newTestIndexer(lister, Folders{Newsletters: "nl-root"}, nil)

	first := ix.Newsletters(context.Background())
	callsAfterFirst := lister.calls

	second := ix.Newsletters(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, lister.calls, "cached run must not hit the remote")
}

func TestRecordings_DateFallbacks(t *testing.T) {
	lister := &fakeLister{children: map[string][]drive.Item{
		"rec-root": {
			audio("r1", "Guest Speaker January 2026.mp3"),
			folder("y2024", "2024"),
			{
				ID: "r3", Name: "Open Forum.mp3", MIMEType: "audio/mpeg",
				ModifiedAt: time.Date(2023, 5, 2, 0, 0, 0, 0, time.UTC),
			},
			pdf("skip", "Agenda January 2026.pdf", time.Time{}),
		},
		"y2024": {
			audio("r2", "Roundtable.mp3"),
		},
	}}

	ix := newTestIndexer(lister, Folders{Recordings: "rec-root"}, nil)

	got := ix.Recordings(context.Background())
	require.Len(t, got, 3, "non-audio files are excluded")

	byID := make(map[string]Recording)
	for _, r := range got {
		byID[r.ID] = r
	}

	// Filename date wins.
	assert.Equal(t, 2026, byID["r1"].Year)
	assert.Equal(t, "Guest Speaker", byID["r1"].Title)

	// Year folder fallback.
	assert.Equal(t, 2024, byID["r2"].Year)

	// Modified-time fallback keeps the recording rather than dropping it.
	assert.Equal(t, 2023, byID["r3"].Year)

	// Sorted year desc, then title asc.
	assert.Equal(t, []string{"r1", "r2", "r3"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestResources_CategoriesAndProtection(t *testing.T) {
	lister := &fakeLister{children: map[string][]drive.Item{
		"res-root": {
			folder("cat1", "Cooperation with the Professional Community (CPC)"),
			folder("cat2", "Public Relations"),
		},
		"cat1": {
			{
				ID: "d1", Name: "Budget.pdf", MIMEType: drive.MIMEPdf, Size: 2048,
				Description: "Quarterly budget [protected]",
			},
		},
		"cat2": {
			{ID: "d2", Name: "Press Kit.pdf", MIMEType: drive.MIMEPdf},
			{ID: "d3", Name: "Archive.zip", MIMEType: "application/zip"},
		},
	}}

	ix := newTestIndexer(lister, Folders{Resources: "res-root"}, nil)

	got := ix.Resources(context.Background())
	require.Len(t, got, 2)

	cpc := got[0]
	assert.Equal(t, "cooperation-with-the-professional-community-cpc", cpc.Slug)
	assert.Equal(t, "Cooperation With The Professional Community CPC", cpc.Name)
	require.Len(t, cpc.Resources, 1)
	assert.True(t, cpc.Resources[0].IsProtected)
	assert.Equal(t, "Quarterly budget", cpc.Resources[0].Description)

	pr := got[1]
	require.Len(t, pr.Resources, 1, "non-document MIME types are excluded")
	assert.Equal(t, "d2", pr.Resources[0].ID)
	assert.False(t, pr.Resources[0].IsProtected)
}

func TestCommitteeFiles_OverlayMergeAndSort(t *testing.T) {
	lister := &fakeLister{children: map[string][]drive.Item{
		"com-1": {
			{ID: "c2", Name: "zoning-report.pdf", MIMEType: drive.MIMEPdf},
			{ID: "c1", Name: "agenda.pdf", MIMEType: drive.MIMEPdf, Description: "Draft [password]"},
		},
	}}

	src := overlay.Static{
		"c2": {DisplayName: "Zoning Report 2026", Password: "hunter2", Category: "Reports"},
	}

	ix := newTestIndexer(lister, Folders{Committees: "com-1"}, src)

	got := ix.CommitteeFiles(context.Background(), "")
	require.Len(t, got, 2)

	// Sorted by remote name.
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "agenda", got[0].DisplayName)
	assert.True(t, got[0].IsProtected, "description marker protects the file")
	assert.Equal(t, "Draft", got[0].Description)

	assert.Equal(t, "Zoning Report 2026", got[1].DisplayName)
	assert.Equal(t, "Reports", got[1].Category)
	assert.True(t, got[1].IsProtected, "stored password protects the file")
}

func TestCommitteeFiles_CacheKeyPerFolder(t *testing.T) {
	lister := &fakeLister{children: map[string][]drive.Item{
		"com-1": {{ID: "c1", Name: "a.pdf", MIMEType: drive.MIMEPdf}},
		"com-2": {{ID: "c2", Name: "b.pdf", MIMEType: drive.MIMEPdf}},
	}}

	ix := newTestIndexer(lister, Folders{}, nil)

	first := ix.CommitteeFiles(context.Background(), "com-1")
	second := ix.CommitteeFiles(context.Background(), "com-2")

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID, "folders must not share a cache entry")
}

func TestIndexers_NilListerYieldsEmpty(t *testing.T) {
	ix := New(nil, nil, nil, Folders{Newsletters: "nl", Recordings: "rec"}, nil)

	assert.Empty(t, ix.Newsletters(context.Background()))
	assert.Empty(t, ix.Recordings(context.Background()))
}
