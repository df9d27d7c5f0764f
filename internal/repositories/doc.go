// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles create and read operations with atomic sequence generation for insertion ordering.
// Records carry a deleted_at timestamp; soft-deleted rows are excluded from every query.
//
// Key Implementations:
//   - [UserRepository] : The credential store, with username lookups and soft deletes
//   - [ArtistRepository] : Catalog artists
//   - [SongRepository] : Songs, inserted only after their artist is confirmed to exist
//   - [PlaylistRepository] : Playlists with optional owners
//
// Sequence numbers give a stable insertion order independent of UUIDs and creation timestamps.
// [NextSequence] increments the per-table counter inside the caller's transaction, so a row and its
// sequence number are committed together.
//
// Username uniqueness is enforced by the users table's UNIQUE constraint, which makes concurrent
// signups for the same name race-free: exactly one insert wins and the rest map to
// [shared.ErrDuplicateUsername].
package repositories
