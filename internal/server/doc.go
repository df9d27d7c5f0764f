// Package server provides HTTP routing, middleware, and the JSON handlers for the setlist API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("POST /api/songs"), so one path can
// carry a public GET and an authenticated POST.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// [AuthHandler] serves signup, login and the current user; [CatalogHandler] serves artists, songs and playlists.
//
// # Sessions
//
// [RequireAuth] reads the bearer token, resolves it to a user through a [SessionResolver], and stores the user in
// the request context for [UserFromContext]. Every rejection is a 401 with a WWW-Authenticate challenge.
//
// # Errors
//
// Handlers return domain errors and let writeError map them to a status and a {"detail": ...} body.
// Anything unmapped is logged and reported as a 500 without its message.
//
// # Rate Limiting
//
// [RateLimiter] keeps a token bucket per client address for signup and login, plus an optional global bucket.
package server
