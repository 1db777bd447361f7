package index

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// acronyms are tokens kept fully upper-case by DisplayName. Folder names
// in the store use these freely ("CPC", "AGM Minutes", "FAQ").
var acronyms = map[string]bool{
	"agm": true,
	"cpc": true,
	"faq": true,
	"pdf": true,
	"ps":  true,
}

var titleCaser = cases.Title(language.English)

// nonAlphanumeric matches runs of characters that are neither letters
// nor digits, for slug collapsing.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a stable, URL-safe lookup key from a human-readable
// folder name: lowercased, non-alphanumeric runs collapsed to single
// hyphens, leading/trailing hyphens trimmed.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = nonAlphanumeric.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}

// DisplayName formats a slug (or any hyphen/space separated name) back
// into title-case words, preserving known acronyms upper-case.
// Slugify and DisplayName round-trip to display equivalence, not byte
// equality: "Cooperation with the Professional Community (CPC)" →
// "cooperation-with-the-professional-community-cpc" →
// "Cooperation With The Professional Community CPC".
func DisplayName(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})

	for i, w := range words {
		if acronyms[strings.ToLower(w)] {
			words[i] = strings.ToUpper(w)
			continue
		}

		words[i] = titleCaser.String(strings.ToLower(w))
	}

	return strings.Join(words, " ")
}

// StripExtension removes the final file extension from a name.
func StripExtension(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// Size formatting thresholds.
const (
	sizeKB = 1024
	sizeMB = 1024 * 1024
)

// FormatSize returns a human-readable size string with fixed precision
// ("812 B", "24.5 KB", "1.3 MB"). Content files never reach GB.
func FormatSize(bytes int64) string {
	switch {
	case bytes >= sizeMB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(sizeMB))
	case bytes >= sizeKB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(sizeKB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// protectionMarkers are the reserved description tokens that flag a file
// as protected. Matching is case-insensitive.
var protectionMarkers = []string{"[protected]", "[password]"}

// StripMarker reports whether description carries a protection marker
// and returns the description with the marker removed and whitespace
// trimmed, safe to show to end users.
func StripMarker(description string) (cleaned string, protected bool) {
	cleaned = description

	for _, marker := range protectionMarkers {
		lower := strings.ToLower(cleaned)

		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}

		protected = true
		cleaned = cleaned[:idx] + cleaned[idx+len(marker):]
	}

	return strings.TrimSpace(cleaned), protected
}

// durationPattern matches the duration annotations members put in
// recording names: "(45 min)", "45min", "1h 20m", "47:12".
var durationPattern = regexp.MustCompile(`(?i)\(?\b(\d{1,2}h(?:\s?\d{1,2}m)?|\d{1,3}\s?min(?:utes)?|\d{1,2}:\d{2}(?::\d{2})?)\b\)?`)

// FindDuration extracts a duration annotation from a recording name.
// Returns the normalized label and the matched substring, or ok=false.
func FindDuration(name string) (label, matched string, ok bool) {
	m := durationPattern.FindString(name)
	if m == "" {
		return "", "", false
	}

	label = strings.Trim(m, "() ")
	label = strings.TrimSuffix(strings.ToLower(label), "utes") // "minutes" → "min"

	return label, m, true
}

// CleanTitle strips the extension and any recognized date and duration
// substrings from a recording name, collapsing leftover separators. The
// date is shown separately, so leaving it in the title would duplicate
// it.
func CleanTitle(name string) string {
	title := StripExtension(name)

	// FindDate reports matches against the underscore-normalized form,
	// so normalize first to keep the strip aligned.
	title = strings.ReplaceAll(title, "_", " ")

	if _, matched, ok := FindDate(title); ok {
		title = strings.Replace(title, matched, " ", 1)
	}

	if _, matched, ok := FindDuration(title); ok {
		title = strings.Replace(title, matched, " ", 1)
	}

	title = strings.NewReplacer("_", " ", "-", " ").Replace(title)
	title = strings.Join(strings.Fields(title), " ")

	return strings.Trim(title, " -–")
}
