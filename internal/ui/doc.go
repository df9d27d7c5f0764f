// Package ui renders CLI output with lipgloss.
//
// [Palette] styles one-line status messages (titles, success, errors, warnings, hints) and [Table] lays out
// listings of users, artists, songs and playlists with a bordered header row.
//
// Styling is dropped when the output is not a terminal, so piped output stays plain text.
package ui
