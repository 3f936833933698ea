package domain

import "strings"

// UnknownArtist is the display fallback when no contributor resolves and the
// song carries no stored artist text.
const UnknownArtist = "Unknown Artist"

// attributionSeparator joins contributor names in display strings and is
// shared by download filenames, search results and slugs.
const attributionSeparator = " x "

type Contributor struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

// Attribution is the canonical multi-artist credit for a song: uploader
// first, then collaborators in join order, deduplicated by exact name with
// first-seen winning.
type Attribution struct {
	DisplayName  string        `json:"displayName"`
	Contributors []Contributor `json:"contributors"`
}

// BuildAttribution assembles an Attribution from an ordered contributor list.
// It is a pure function of its inputs so every call site (filenames, search,
// slugs) derives the same display string. fallback is the song's stored
// artist text, used only when no contributor has a usable name.
func BuildAttribution(contributors []Contributor, fallback string) Attribution {
	seen := make(map[string]struct{}, len(contributors))
	kept := make([]Contributor, 0, len(contributors))
	names := make([]string, 0, len(contributors))

	for _, c := range contributors {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		kept = append(kept, Contributor{ID: c.ID, Name: name})
		names = append(names, name)
	}

	display := strings.Join(names, attributionSeparator)
	if display == "" {
		display = strings.TrimSpace(fallback)
	}
	if display == "" {
		display = UnknownArtist
	}

	return Attribution{DisplayName: display, Contributors: kept}
}
