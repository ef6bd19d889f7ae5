package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avelara/seatsync/internal/model"
	"github.com/avelara/seatsync/internal/repository"
)

// EventHandler bundles the repositories needed for event CRUD.
type EventHandler struct {
	EventRepo *repository.EventRepo
	GuestRepo *repository.GuestRepo
	TableRepo *repository.TableRepo
}

// NewEventHandler constructs an EventHandler and panics on nil
// dependencies.
func NewEventHandler(events *repository.EventRepo, guests *repository.GuestRepo, tables *repository.TableRepo) *EventHandler {
	if events == nil || guests == nil || tables == nil {
		panic("nil repository passed to NewEventHandler")
	}
	return &EventHandler{EventRepo: events, GuestRepo: guests, TableRepo: tables}
}

// Create handles POST /v1/events.
func (h *EventHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	e := model.Event{OwnerID: ownerID, Name: req.Name}
	if err := h.EventRepo.Create(c.Request().Context(), &e); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusCreated, e)
}

// List handles GET /v1/events.
func (h *EventHandler) List(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	events, err := h.EventRepo.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"count": len(events), "items": events})
}

// Get handles GET /v1/events/:id and includes the event's guests and
// tables so a seating chart can render from one response.
func (h *EventHandler) Get(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid event id"})
	}
	ctx := c.Request().Context()

	e, err := h.EventRepo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	guests, err := h.GuestRepo.ListByEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	tables, err := h.TableRepo.ListByEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"event": e, "guests": guests, "tables": tables})
}

// Delete handles DELETE /v1/events/:id.  Deletion cascades to the
// event's guests and tables.
func (h *EventHandler) Delete(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid event id"})
	}
	if err := h.EventRepo.DeleteByIDAndOwner(c.Request().Context(), id, ownerID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Reset handles POST /v1/events/:id/reset: clears all table
// assignments and deletes the event's tables while preserving the
// guest roster.
func (h *EventHandler) Reset(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid event id"})
	}
	if err := h.EventRepo.Reset(c.Request().Context(), id, ownerID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
