package server

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// Dependencies are the services the API router is built from.
type Dependencies struct {
	Accounts  AccountService
	Sessions  SessionResolver
	Artists   models.ArtistStore
	Songs     models.SongStore
	Playlists models.PlaylistStore
	DB        Pinger
	Logger    *log.Logger

	// AuthLimiter throttles signup and login per client. Nil disables it.
	AuthLimiter *RateLimiter
	// GlobalRateLimit caps requests per second across all clients. Zero disables it.
	GlobalRateLimit float64
}

// NewAPI builds the router serving every setlist endpoint.
func NewAPI(deps Dependencies) *BasicRouter {
	logger := deps.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	router := NewBasicRouter()
	router.Use(
		RequestID(logger),
		Logging(),
		Recover(),
		GlobalRateLimit(deps.GlobalRateLimit, 0),
	)

	router.Handler(NewHealthHandler(deps.DB))
	router.Handler(NewAuthHandler(deps.Accounts, deps.Sessions, deps.AuthLimiter))
	router.Handler(NewCatalogHandler(deps.Artists, deps.Songs, deps.Playlists, deps.Sessions))

	return router
}
