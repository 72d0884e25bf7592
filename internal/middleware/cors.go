package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/cors"
	"github.com/gobwas/glob"
)

// CORSOptions lists the origins allowed to call the API from a browser.
type CORSOptions struct {
	// AllowedOrigins are matched exactly.
	AllowedOrigins []string
	// OriginPatterns are glob patterns; '*' does not cross a '.'.
	OriginPatterns []string
}

// CORS returns the cross-origin middleware. An invalid pattern is an error.
func CORS(opts CORSOptions) (func(http.Handler) http.Handler, error) {
	patterns := make([]glob.Glob, 0, len(opts.OriginPatterns))
	for _, p := range opts.OriginPatterns {
		g, err := glob.Compile(p, '.')
		if err != nil {
			return nil, fmt.Errorf("compiling origin pattern %q: %w", p, err)
		}
		patterns = append(patterns, g)
	}

	allowed := slices.Clone(opts.AllowedOrigins)
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			if slices.Contains(allowed, origin) {
				return true
			}
			for _, g := range patterns {
				if g.Match(origin) {
					return true
				}
			}
			slog.Debug("cors origin blocked", "origin", origin)
			return false
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}), nil
}
