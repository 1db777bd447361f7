package index

import (
	"context"
	"sort"

	"github.com/driveshelf/driveshelf/internal/cache"
	"github.com/driveshelf/driveshelf/internal/drive"
)

// resourcesCacheKey is the cache key for the resource collection.
const resourcesCacheKey = "resources"

// Resource is one member resource document ready for display.
type Resource struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsProtected bool   `json:"isProtected"`
	Size        string `json:"size"`
	PreviewURL  string `json:"previewUrl"`
	DownloadURL string `json:"downloadUrl"`
}

// ResourceCategory groups resources under one category folder. The slug
// is the stable lookup key; Name is the acronym-aware display form.
type ResourceCategory struct {
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	Resources []Resource `json:"resources"`
}

// Resources returns the resource categories in the category-defined
// order (subfolder name order), each category's documents sorted by
// title. Any failure returns an empty collection.
func (ix *Indexer) Resources(ctx context.Context) []ResourceCategory {
	if !ix.configured(ix.folders.Resources, "resources") {
		return []ResourceCategory{}
	}

	result, err := cache.WithCache(ctx, ix.cache, resourcesCacheKey, 0, func(ctx context.Context) ([]ResourceCategory, error) {
		return ix.fetchResources(ctx)
	})
	if err != nil {
		return emptyResult[ResourceCategory](ix.logger, "resources", err)
	}

	return result
}

func (ix *Indexer) fetchResources(ctx context.Context) ([]ResourceCategory, error) {
	subfolders, err := ix.lister.ListSubfolders(ctx, ix.folders.Resources)
	if err != nil {
		return nil, err
	}

	categories := make([]ResourceCategory, 0, len(subfolders))

	for _, folder := range subfolders {
		files, err := ix.lister.ListAllChildren(ctx, folder.ID, drive.ListOptions{OrderBy: "name"})
		if err != nil {
			return nil, err
		}

		slug := Slugify(folder.Name)
		category := ResourceCategory{
			Slug:      slug,
			Name:      DisplayName(slug),
			Resources: []Resource{},
		}

		for _, f := range files {
			if f.IsFolder() || !isDocumentMIME(f.MIMEType) {
				continue
			}

			description, protected := StripMarker(f.Description)

			category.Resources = append(category.Resources, Resource{
				ID:          f.ID,
				Title:       StripExtension(f.Name),
				Description: description,
				IsProtected: protected,
				Size:        FormatSize(f.Size),
				PreviewURL:  drive.PreviewURL(f.ID),
				DownloadURL: drive.DownloadURL(f.ID),
			})
		}

		sort.SliceStable(category.Resources, func(i, j int) bool {
			return category.Resources[i].Title < category.Resources[j].Title
		})

		categories = append(categories, category)
	}

	return categories, nil
}
