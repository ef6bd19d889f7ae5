package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/avelara/seatsync/internal/config"
)

func rosterContext(e *echo.Echo, userID uint64, target string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	// Mirror how echo binds a request to its registered route.
	c.SetPath("/v1/events/:id/guests")
	c.Set("user_id", userID)
	return c
}

// Two events on the same registered route must never share a cache
// entry: the key has to discriminate by the concrete URL, not the
// route template.
func TestCacheKey_DistinctEvents(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache"}

	k1 := cacheKey(cfg, rosterContext(e, 42, "/v1/events/1/guests"))
	k2 := cacheKey(cfg, rosterContext(e, 42, "/v1/events/2/guests"))
	require.NotEqual(t, k1, k2, "different events must produce different keys")
}

func TestCacheKey_DistinctUsersAndQueries(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache"}

	sameTwice := cacheKey(cfg, rosterContext(e, 42, "/v1/events/1/guests"))
	require.Equal(t, sameTwice, cacheKey(cfg, rosterContext(e, 42, "/v1/events/1/guests")),
		"identical requests must hit the same entry")

	otherUser := cacheKey(cfg, rosterContext(e, 43, "/v1/events/1/guests"))
	require.NotEqual(t, sameTwice, otherUser, "one user's roster must not serve another's request")

	withQuery := cacheKey(cfg, rosterContext(e, 42, "/v1/events/1/guests?limit=5"))
	require.NotEqual(t, sameTwice, withQuery, "the query string is part of the key")
}
