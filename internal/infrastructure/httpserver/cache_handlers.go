package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/polycache/polycache/internal/core/domain/cache"
)

// PutEntryRequest carries a cache write. The value can be any
// JSON-serializable shape; it is stored as its raw JSON encoding.
type PutEntryRequest struct {
	Value json.RawMessage `json:"value"`
	// TTL is an optional duration string like "90s" or "1h". Empty applies
	// the coordinator default; "none" stores a never-expiring entry.
	TTL string `json:"ttl"`
}

// EntryResponse is the shape of every read/write reply.
type EntryResponse struct {
	Registry string          `json:"registry"`
	Key      string          `json:"key"`
	Found    bool            `json:"found"`
	Value    json.RawMessage `json:"value,omitempty"`
}

func (s *Server) getEntry(c echo.Context) error {
	registry := c.Param("registry")
	key := c.Param("key")

	value, hit, err := s.cache.Get(c.Request().Context(), registry, key, nil)
	if err != nil {
		return cacheHTTPError(err)
	}
	return c.JSON(http.StatusOK, EntryResponse{
		Registry: registry,
		Key:      key,
		Found:    hit,
		Value:    json.RawMessage(value),
	})
}

func (s *Server) putEntry(c echo.Context) error {
	registry := c.Param("registry")
	key := c.Param("key")

	var req PutEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Value) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "value is required")
	}

	var ttl time.Duration
	switch req.TTL {
	case "":
	case "none":
		ttl = -1
	default:
		parsed, err := time.ParseDuration(req.TTL)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid ttl")
		}
		ttl = parsed
	}

	stored, _, err := s.cache.Put(c.Request().Context(), registry, key, req.Value, ttl)
	if err != nil {
		return cacheHTTPError(err)
	}
	return c.JSON(http.StatusOK, EntryResponse{
		Registry: registry,
		Key:      key,
		Found:    true,
		Value:    json.RawMessage(stored),
	})
}

func (s *Server) deleteEntry(c echo.Context) error {
	if err := s.cache.Delete(c.Request().Context(), c.Param("registry"), c.Param("key")); err != nil {
		return cacheHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) clearAll(c echo.Context) error {
	if err := s.cache.Clear(c.Request().Context()); err != nil {
		return cacheHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) forceSweep(c echo.Context) error {
	s.cache.Sweep(c.Request().Context())
	return c.NoContent(http.StatusAccepted)
}

func cacheHTTPError(err error) error {
	if errors.Is(err, cache.ErrRegistryNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
