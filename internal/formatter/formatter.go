// package formatter renders catalog snapshots as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat maps a flag value to a [Format]. "markdown" and "text" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q (use csv, md or txt)", shared.ErrInvalidArgument, s)
}

// CatalogExport is a display-ready snapshot of the catalog.
type CatalogExport struct {
	GeneratedAt time.Time
	Artists     []ArtistEntry
	Playlists   []PlaylistEntry
}

type ArtistEntry struct {
	ID    string
	Name  string
	Songs []SongEntry
}

type SongEntry struct {
	ID    string
	Title string
}

// PlaylistEntry carries the owner's username, empty for unowned playlists.
type PlaylistEntry struct {
	ID    string
	Name  string
	Owner string
}

// SongCount returns the number of songs across all artists.
func (e *CatalogExport) SongCount() int {
	n := 0
	for _, a := range e.Artists {
		n += len(a.Songs)
	}
	return n
}

// NewCatalogExport groups songs under their artists, keeping the order of each input slice.
// owners maps user IDs to usernames; playlists whose owner is missing from it keep the raw ID.
func NewCatalogExport(artists []*models.Artist, songs []*models.Song, playlists []*models.Playlist, owners map[string]string) *CatalogExport {
	export := &CatalogExport{GeneratedAt: time.Now().UTC()}

	index := make(map[string]int, len(artists))
	for i, a := range artists {
		index[a.ID()] = i
		export.Artists = append(export.Artists, ArtistEntry{ID: a.ID(), Name: a.Name()})
	}

	for _, s := range songs {
		i, ok := index[s.ArtistID()]
		if !ok {
			continue
		}
		export.Artists[i].Songs = append(export.Artists[i].Songs, SongEntry{ID: s.ID(), Title: s.Title()})
	}

	for _, p := range playlists {
		entry := PlaylistEntry{ID: p.ID(), Name: p.Name()}
		if p.HasOwner() {
			entry.Owner = p.OwnerID()
			if name, ok := owners[p.OwnerID()]; ok {
				entry.Owner = name
			}
		}
		export.Playlists = append(export.Playlists, entry)
	}

	return export
}

// ExportToCSV writes one row per song with columns: Song ID, Title, Artist ID, Artist
func ExportToCSV(export *CatalogExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Song ID", "Title", "Artist ID", "Artist"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, artist := range export.Artists {
		for _, song := range artist.Songs {
			if err := writer.Write([]string{song.ID, song.Title, artist.ID, artist.Name}); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders artists with their songs, then playlists.
func ExportToMarkdown(export *CatalogExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Catalog\n\n")
	buf.WriteString(fmt.Sprintf("**Generated**: %s\n", export.GeneratedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("**Artists**: %d\n", len(export.Artists)))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n", export.SongCount()))
	buf.WriteString(fmt.Sprintf("**Playlists**: %d\n\n", len(export.Playlists)))

	buf.WriteString("## Artists\n\n")
	for _, artist := range export.Artists {
		buf.WriteString(fmt.Sprintf("### %s\n\n", artist.Name))
		if len(artist.Songs) == 0 {
			buf.WriteString("_No songs_\n\n")
			continue
		}
		for i, song := range artist.Songs {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, song.Title))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Playlists\n\n")
	for _, playlist := range export.Playlists {
		if playlist.Owner != "" {
			buf.WriteString(fmt.Sprintf("- %s (%s)\n", playlist.Name, playlist.Owner))
		} else {
			buf.WriteString(fmt.Sprintf("- %s\n", playlist.Name))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders one "Artist - Title" line per song followed by the playlist names.
func ExportToText(export *CatalogExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", export.SongCount()))

	n := 0
	for _, artist := range export.Artists {
		for _, song := range artist.Songs {
			n++
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", n, artist.Name, song.Title))
		}
	}

	buf.WriteString(fmt.Sprintf("\nPlaylists: %d\n\n", len(export.Playlists)))
	for _, playlist := range export.Playlists {
		buf.WriteString(playlist.Name + "\n")
	}

	return buf.Bytes(), nil
}

// Export renders export in the given format.
func Export(export *CatalogExport, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
}

// WriteExport renders export and writes it to path.
//
// Defaults to catalog_export_{epoch}.{format} in the working directory.
func WriteExport(export *CatalogExport, format Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("catalog_export_%d.%s", export.GeneratedAt.Unix(), format)
	}

	data, err := Export(export, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
