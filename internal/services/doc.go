// Package services implements a typed client for the setlist HTTP API.
//
// # API Client
//
// [APIService] wraps an [http.Client] with the endpoints the server exposes. Raw [APIService.Get] and
// [APIService.Post] return the response as-is; the typed methods decode JSON and turn error replies into an
// [APIError] that unwraps to the matching sentinel from the shared package:
//   - [shared.ErrDuplicateUsername] : signup with a taken username
//   - [shared.ErrInvalidCredentials] : login rejected
//   - [shared.ErrUnauthorized] : missing, expired or revoked token
//   - [shared.ErrArtistNotFound] : song created for an unknown artist
//   - [shared.ErrRateLimited] : too many signup or login attempts
//   - [shared.ErrAPIRequest] : anything else
//
// # Tokens
//
// [APIService.Login] returns the access token as an [oauth2.Token]. Once set with [APIService.SetToken], every
// request goes through [oauth2.NewClient] with a static token source, which adds the bearer header.
// [SaveToken] and [LoadToken] keep the token between CLI invocations.
package services
