package admin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New builds the console with every model admin registered in menu order.
// A nil notifier disables change notifications.
func New(store Store, notifier Notifier, log *slog.Logger, perPage int) (*Site, error) {
	if notifier == nil {
		notifier = Notifiers(nil)
	}
	s, err := newSite(log, perPage)
	if err != nil {
		return nil, err
	}
	bg := &background{next: notifier, log: log}
	s.notify = bg
	notifier = bg

	register(s, clientAdmin(store))
	register(s, categoryAdmin(store))
	register(s, productAdmin(store, notifier))
	register(s, drinkVariantAdmin(store))
	register(s, orderAdmin(store, notifier))
	register(s, orderItemAdmin(store))
	register(s, bookingAdmin(store, notifier))
	return s, nil
}

// Wait blocks until notifications already dispatched have been delivered or ctx is done.
func (s *Site) Wait(ctx context.Context) error {
	if s.notify == nil {
		return nil
	}
	return s.notify.wait(ctx)
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler routes /admin, /api and /health. ping, when set, is checked by /health.
func (s *Site) Handler(ping func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/", http.StatusFound)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "healthy", Timestamp: time.Now().UTC()}
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				s.log.Error("health check failed", "error", err)
				resp.Status = "unavailable"
				s.writeJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}
		s.writeJSON(w, http.StatusOK, resp)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/", s.handleIndex)
		for _, m := range s.models {
			m.mount(r)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		for _, m := range s.models {
			m.mountAPI(r)
		}
	})
	return r
}
