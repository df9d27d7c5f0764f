// Package models defines domain entities and persistence interfaces for the setlist catalog service.
//
// Persistent entities:
//   - [User] : Accounts with a unique username and an opaque password hash
//   - [Artist] : Catalog artists, owners of songs
//   - [Song] : Songs, each referencing exactly one existing artist
//   - [Playlist] : Named playlists with an optional owning user
//
// All entities embed [Record], which carries the generated ID, the per-table sequence number
// used for insertion ordering, and timestamps. Entities validate their own required fields
// before the repositories persist them.
//
// The store interfaces ([UserStore], [ArtistStore], [SongStore], [PlaylistStore]) describe what
// the auth and HTTP layers need from persistence; the repositories package implements them over SQLite.
package models
