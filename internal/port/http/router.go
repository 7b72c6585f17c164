package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fwwzhai/thrifty-backend/internal/identity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/platform/metrics"
	"github.com/fwwzhai/thrifty-backend/internal/service"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Listings      *service.ListingService
	Relationships *service.RelationshipService
	Feed          *service.FeedService
	Notifications *service.NotificationService
	Users         *service.UserService
	Verifier      *identity.Verifier
	Sessions      *identity.SessionBroadcaster
	Metrics       *metrics.Manager
	Log           logger.Logger
}

func NewRouter(deps Deps) http.Handler {
	listings := &listingHandler{listings: deps.Listings, log: deps.Log}
	rels := &relationshipHandler{rels: deps.Relationships, log: deps.Log}
	notifications := &notificationHandler{notifications: deps.Notifications, log: deps.Log}
	users := &userHandler{users: deps.Users, log: deps.Log}
	streams := &streamHandler{
		feed:          deps.Feed,
		notifications: deps.Notifications,
		sessions:      deps.Sessions,
		log:           deps.Log,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(deps.Log))
	r.Use(requestMetrics(deps.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(jwtAuth(deps.Verifier))

		r.Route("/listings", func(r chi.Router) {
			r.Post("/", listings.create)
			r.Get("/mine", listings.listMine)
			r.Get("/{listingID}", listings.get)
			r.Delete("/{listingID}", listings.delete)
			r.Post("/{listingID}/order", listings.placeOrder)
			r.Post("/{listingID}/order/repair", listings.repairSale)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", rels.listWishlist)
			r.Post("/{listingID}/toggle", rels.toggleWishlist)
		})

		r.Route("/follows", func(r chi.Router) {
			r.Get("/following", rels.listFollowing)
			r.Get("/followers", rels.listFollowers)
			r.Get("/{targetID}", rels.followStatus)
			r.Put("/{targetID}", rels.follow)
			r.Delete("/{targetID}", rels.unfollow)
		})

		r.Route("/inbox", func(r chi.Router) {
			r.Get("/", notifications.list)
			r.Post("/{entryID}/read", notifications.markRead)
			r.Delete("/{entryID}", notifications.delete)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/purchases", listings.listPurchases)
			r.Get("/sold", listings.listSold)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", users.register)
			r.Get("/{userID}", users.getProfile)
			r.Put("/me", users.updateProfile)
		})

		// Clients report sign-out so live streams for that user tear
		// down instead of idling until the socket times out.
		r.Post("/session/signout", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := identity.UserIDFromContext(r.Context())
			deps.Sessions.Announce(identity.SessionEvent{UserID: userID, State: identity.SignedOut})
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/ws/feed", streams.feedStream)
		r.Get("/ws/inbox", streams.inboxStream)
	})

	return r
}
