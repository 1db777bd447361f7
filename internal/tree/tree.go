// Package tree builds the recursive folder/file tree used by the
// administrative browsing view. Sibling listings are fetched in
// parallel through a bounded worker group, and recursion stops at a
// configurable depth so a pathological folder structure cannot exhaust
// the process.
package tree

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/driveshelf/driveshelf/internal/drive"
	"github.com/driveshelf/driveshelf/internal/index"
	"github.com/driveshelf/driveshelf/internal/overlay"
)

// Defaults applied when the corresponding Builder field is zero.
const (
	DefaultMaxDepth      = 10
	DefaultParallelLists = 8
)

// Node is one node of the materialized tree. Folders carry Children;
// files carry the overlay-merged metadata.
type Node struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	MIMEType    string  `json:"mimeType,omitempty"`
	Size        string  `json:"size,omitempty"`
	ParentID    string  `json:"parentId,omitempty"`
	DisplayName string  `json:"displayName,omitempty"`
	Category    string  `json:"category,omitempty"`
	IsProtected bool    `json:"isProtected,omitempty"`
	IsFolder    bool    `json:"isFolder"`
	Children    []*Node `json:"children,omitempty"`
}

// Lister is the slice of the drive client the builder consumes.
type Lister interface {
	ListAllChildren(ctx context.Context, folderID string, opts drive.ListOptions) ([]drive.Item, error)
}

// Builder constructs folder trees. Zero-value limits select the
// defaults above.
type Builder struct {
	lister        Lister
	overlay       overlay.Source
	logger        *slog.Logger
	maxDepth      int
	parallelLists int
}

// NewBuilder creates a Builder. overlaySource may be nil.
func NewBuilder(lister Lister, overlaySource overlay.Source, maxDepth, parallelLists int, logger *slog.Logger) *Builder {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}

	if parallelLists < 1 {
		parallelLists = DefaultParallelLists
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		lister:        lister,
		overlay:       overlaySource,
		logger:        logger,
		maxDepth:      maxDepth,
		parallelLists: parallelLists,
	}
}

// Build returns the fully materialized tree rooted at folderID. Folders
// deeper than the depth limit are included as leaf folder nodes with no
// children, with a warning logged — pruning beats failing for a browse
// view.
func (b *Builder) Build(ctx context.Context, folderID, folderName string) (*Node, error) {
	root := &Node{
		ID:       folderID,
		Name:     folderName,
		MIMEType: drive.MIMEFolder,
		IsFolder: true,
	}

	g, ctx := errgroup.WithContext(ctx)

	// The semaphore bounds concurrent listing calls. Goroutine creation
	// itself stays unbounded — limiting it with errgroup.SetLimit would
	// deadlock once every running goroutine blocks spawning its
	// children.
	sem := semaphore.NewWeighted(int64(b.parallelLists))

	b.expand(ctx, g, sem, root, 1)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.mergeOverlay(ctx, root)
	sortTree(root)

	return root, nil
}

// expand schedules the listing of node's children on the group and
// recurses into subfolders. Child slices are only written by the
// goroutine that owns the node, so no locking is needed beyond the
// group's own synchronization.
func (b *Builder) expand(ctx context.Context, g *errgroup.Group, sem *semaphore.Weighted, node *Node, depth int) {
	if depth > b.maxDepth {
		b.logger.Warn("folder tree pruned at depth limit",
			slog.String("folder_id", node.ID),
			slog.String("name", node.Name),
			slog.Int("max_depth", b.maxDepth),
		)

		return
	}

	g.Go(func() error {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}

		items, err := b.lister.ListAllChildren(ctx, node.ID, drive.ListOptions{OrderBy: "name"})

		sem.Release(1)

		if err != nil {
			return err
		}

		children := make([]*Node, 0, len(items))

		for _, it := range items {
			child := &Node{
				ID:       it.ID,
				Name:     it.Name,
				MIMEType: it.MIMEType,
				ParentID: node.ID,
				IsFolder: it.IsFolder(),
			}

			if !child.IsFolder {
				child.Size = index.FormatSize(it.Size)

				_, protected := index.StripMarker(it.Description)
				child.IsProtected = protected
			}

			children = append(children, child)
		}

		node.Children = children

		for _, child := range children {
			if child.IsFolder {
				b.expand(ctx, g, sem, child, depth+1)
			}
		}

		return nil
	})
}

// mergeOverlay applies overlay records onto every file node in the tree.
func (b *Builder) mergeOverlay(ctx context.Context, root *Node) {
	if b.overlay == nil {
		return
	}

	var (
		ids   []string
		files []*Node
	)

	walk(root, func(n *Node) {
		if !n.IsFolder {
			ids = append(ids, n.ID)
			files = append(files, n)
		}
	})

	if len(ids) == 0 {
		return
	}

	records, err := b.overlay.Lookup(ctx, ids)
	if err != nil {
		b.logger.Warn("overlay lookup failed, tree rendered without overrides",
			slog.Int("files", len(ids)),
			slog.String("error", err.Error()),
		)

		return
	}

	for _, f := range files {
		rec, ok := records[f.ID]
		if !ok {
			continue
		}

		if rec.DisplayName != "" {
			f.DisplayName = rec.DisplayName
		}

		if rec.Category != "" {
			f.Category = rec.Category
		}

		if rec.Password != "" {
			f.IsProtected = true
		}
	}
}

// walk visits every node depth-first.
func walk(n *Node, visit func(*Node)) {
	visit(n)

	for _, c := range n.Children {
		walk(c, visit)
	}
}

// sortTree orders every child list folders-first, then by name. Listing
// pages arrive in parallel, so ordering is imposed after collection to
// keep output deterministic.
func sortTree(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		if n.Children[i].IsFolder != n.Children[j].IsFolder {
			return n.Children[i].IsFolder
		}

		return n.Children[i].Name < n.Children[j].Name
	})

	for _, c := range n.Children {
		if c.IsFolder {
			sortTree(c)
		}
	}
}
