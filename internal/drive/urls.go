package drive

import "fmt"

// Generated URLs are pure string templates keyed only by item ID — no
// network calls are needed to produce them.

// PreviewURL returns the embeddable preview page for an item.
func PreviewURL(id string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/preview", id)
}

// DownloadURL returns the direct-download URL for an item.
func DownloadURL(id string) string {
	return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", id)
}

// StreamURL returns the inline-view URL for an item, used as the audio
// source for recordings.
func StreamURL(id string) string {
	return fmt.Sprintf("https://drive.google.com/uc?export=view&id=%s", id)
}
