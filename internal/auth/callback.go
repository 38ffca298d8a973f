// Package auth serves the login callback the identity provider redirects to
// after sign-in.
//
// The callback only routes the browser: the client SDK completes sign-in and
// sends ID tokens to the profile tools, which verify them. No code exchange
// or session is created here.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// CallbackPath is the route the identity provider is configured with.
const CallbackPath = "/api/auth/callback"

// Options configures the router. Empty paths default to /dashboard and
// /error.
type Options struct {
	SuccessPath string
	ErrorPath   string
	Logger      *zap.Logger
}

// NewRouter returns the HTTP handler for the callback and a health probe.
func NewRouter(opts Options) http.Handler {
	if opts.SuccessPath == "" {
		opts.SuccessPath = "/dashboard"
	}
	if opts.ErrorPath == "" {
		opts.ErrorPath = "/error"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get(CallbackPath, callbackHandler(opts))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

func callbackHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := opts.Logger.With(zap.String("request_id", middleware.GetReqID(r.Context())))

		code := r.URL.Query().Get("code")
		if code == "" {
			logger.Warn("login callback without code",
				zap.String("error", r.URL.Query().Get("error")))
			http.Redirect(w, r, opts.ErrorPath, http.StatusFound)
			return
		}

		logger.Info("login callback accepted")
		http.Redirect(w, r, opts.SuccessPath, http.StatusFound)
	}
}
