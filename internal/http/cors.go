package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// createCORSMiddleware returns nil unless CORS is enabled with at least one usable
// origin. Clients authenticate with bearer tokens, so credentialed requests stay off.
func createCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOrigins, logger)
	if len(origins) == 0 {
		logger.Warn("cors enabled without valid origins, cors will not be applied")
		return nil
	}

	config := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}

	logger.Info("cors enabled", slog.Any("origins", origins))
	return cors.New(config)
}

// parseOrigins splits a comma-separated origin list. Entries that are not an http(s)
// scheme and host are skipped, since cors.New panics on them.
func parseOrigins(allowOrigins string, logger *slog.Logger) []string {
	var origins []string
	for part := range strings.SplitSeq(allowOrigins, ",") {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if origin == "*" {
			return []string{"*"}
		}
		if !validOrigin(origin) {
			logger.Warn("ignoring invalid cors origin", slog.String("origin", origin))
			continue
		}
		origins = append(origins, strings.TrimSuffix(origin, "/"))
	}
	return origins
}

func validOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Path == "" || u.Path == "/"
}
