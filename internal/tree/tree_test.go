package tree

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveshelf/driveshelf/internal/drive"
	"github.com/driveshelf/driveshelf/internal/overlay"
)

// fakeLister serves canned listings per folder ID. Listing calls arrive
// from multiple goroutines, so the counter is locked.
type fakeLister struct {
	children map[string][]drive.Item

	mu    sync.Mutex
	calls int
	errOn string
}

func (f *fakeLister) ListAllChildren(_ context.Context, folderID string, _ drive.ListOptions) ([]drive.Item, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.errOn != "" && folderID == f.errOn {
		return nil, errors.New("listing failed")
	}

	return f.children[folderID], nil
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func folder(id, name string) drive.Item {
	return drive.Item{ID: id, Name: name, MIMEType: drive.MIMEFolder}
}

func file(id, name string) drive.Item {
	return drive.Item{ID: id, Name: name, MIMEType: drive.MIMEPdf, Size: 2048}
}

func TestBuild_MaterializesHierarchy(t *testing.T) {
	lister := &fakeLister{children: map[string][]drive.Item{
		"root": {
			file("f1", "readme.pdf"),
			folder("sub", "Minutes"),
		},
		"sub": {
			file("f2", "january.pdf"),
		},
	}}

	b := NewBuilder(lister, nil, 0, 0, nil)

	root, err := b.Build(context.Background(), "root", "Shared Drive")
	require.NoError(t, err)

	assert.Equal(t, "Shared Drive", root.Name)
	assert.True(t, root.IsFolder)
	require.Len(t, root.Children, 2)

	sub := root.Children[0]
	assert.Equal(t, "sub", sub.ID)
	assert.True(t, sub.IsFolder)
	assert.Equal(t, "root", sub.ParentID)
	require.Len(t, sub.Children, 1)
	assert.Equal(t, "f2", sub.Children[0].ID)

	f1 := root.Children[1]
	assert.False(t, f1.IsFolder)
	assert.Equal(t, "2.0 KB", f1.Size)
	assert.Empty(t, f1.Children)
}

func TestBuild_SortsFoldersFirstThenByName(t *testing.T) {
	lister := &fakeLister{children: map[string][]drive.Item{
		"root": {
			file("f-b", "beta.pdf"),
			folder("d-z", "Zoning"),
			file("f-a", "alpha.pdf"),
			folder("d-a", "Archives"),
		},
	}}

	b := NewBuilder(lister, nil, 0, 0, nil)

	root, err := b.Build(context.Background(), "root", "Root")
	require.NoError(t, err)
	require.Len(t, root.Children, 4)

	var names []string
	for _, c := range root.Children {
		names = append(names, c.Name)
	}

	assert.Equal(t, []string{"Archives", "Zoning", "alpha.pdf", "beta.pdf"}, names)
}

func TestBuild_PrunesAtDepthLimit(t *testing.T) {
	lister := &fakeLister{children: map[string][]drive.Item{
		"root": {folder("l2", "Level 2")},
		"l2":   {folder("l3", "Level 3")},
		"l3":   {file("deep", "deep.pdf")},
	}}

	b := NewBuilder(lister, nil, 2, 0, nil)

	root, err := b.Build(context.Background(), "root", "Root")
	require.NoError(t, err)

	l2 := root.Children[0]
	require.Len(t, l2.Children, 1)

	// Level 3 is included as a leaf but never expanded.
	l3 := l2.Children[0]
	assert.True(t, l3.IsFolder)
	assert.Empty(t, l3.Children)
	assert.Equal(t, 2, lister.callCount())
}

func TestBuild_MergesOverlayOntoFiles(t *testing.T) {
	lister := &fakeLister{children: map[string][]drive.Item{
		"root": {
			file("f1", "zoning-report.pdf"),
			{ID: "f2", Name: "agenda.pdf", MIMEType: drive.MIMEPdf, Description: "Draft [protected]"},
		},
	}}

	src := overlay.Static{
		"f1": {DisplayName: "Zoning Report 2026", Category: "Reports", Password: "hunter2"},
	}

	b := NewBuilder(lister, src, 0, 0, nil)

	root, err := b.Build(context.Background(), "root", "Root")
	require.NoError(t, err)
	require.Len(t, root.Children, 2)

	f2, f1 := root.Children[0], root.Children[1]

	assert.Equal(t, "Zoning Report 2026", f1.DisplayName)
	assert.Equal(t, "Reports", f1.Category)
	assert.True(t, f1.IsProtected, "stored password protects the file")

	assert.True(t, f2.IsProtected, "description marker protects the file")
	assert.Empty(t, f2.DisplayName)
}

func TestBuild_ListingFailurePropagates(t *testing.T) {
	lister := &fakeLister{
		children: map[string][]drive.Item{
			"root": {folder("bad", "Broken")},
		},
		errOn: "bad",
	}

	b := NewBuilder(lister, nil, 0, 0, nil)

	_, err := b.Build(context.Background(), "root", "Root")
	assert.Error(t, err)
}

func TestBuild_WideTreeCompletesWithSmallLimit(t *testing.T) {
	children := map[string][]drive.Item{}

	var top []drive.Item

	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		top = append(top, folder(id, "Folder "+id))
		children[id] = []drive.Item{file("file-"+id, id+".pdf")}
	}

	children["root"] = top

	b := NewBuilder(&fakeLister{children: children}, nil, 0, 1, nil)

	root, err := b.Build(context.Background(), "root", "Root")
	require.NoError(t, err)
	assert.Len(t, root.Children, 6)

	for _, c := range root.Children {
		assert.Len(t, c.Children, 1)
	}
}
