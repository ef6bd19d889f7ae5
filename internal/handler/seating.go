package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/avelara/seatsync/internal/queue"
	"github.com/avelara/seatsync/internal/repository"
	"github.com/avelara/seatsync/internal/seating"
	queue_publisher "github.com/avelara/seatsync/internal/service"
)

// defaultSuggestLimit caps autocomplete responses when the caller
// does not pass an explicit limit.
const defaultSuggestLimit = 10

// SeatingHandler exposes the seating synchronization engine over
// HTTP: auto-assign, bulk save, guest search and autocomplete.
type SeatingHandler struct {
	Engine    *seating.Engine
	EventRepo *repository.EventRepo
	Log       zerolog.Logger
}

// NewSeatingHandler constructs a SeatingHandler and panics on nil
// dependencies.
func NewSeatingHandler(engine *seating.Engine, events *repository.EventRepo, log zerolog.Logger) *SeatingHandler {
	if engine == nil || events == nil {
		panic("nil dependency passed to NewSeatingHandler")
	}
	return &SeatingHandler{Engine: engine, EventRepo: events, Log: log}
}

// ownEvent verifies the event exists and belongs to the caller.  On
// failure the response has already been written and ok is false.
func (h *SeatingHandler) ownEvent(c echo.Context) (eventID, ownerID uint64, ok bool) {
	ownerID, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return 0, 0, false
	}
	eventID, valid := pathID(c, "id")
	if !valid {
		_ = c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid event id"})
		return 0, 0, false
	}
	if _, err := h.EventRepo.GetByIDAndOwner(c.Request().Context(), eventID, ownerID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			_ = c.JSON(http.StatusNotFound, map[string]string{"error": "event not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		return 0, 0, false
	}
	return eventID, ownerID, true
}

// AutoAssign handles POST /v1/events/:id/auto-assign.
func (h *SeatingHandler) AutoAssign(c echo.Context) error {
	eventID, ownerID, ok := h.ownEvent(c)
	if !ok {
		return nil
	}

	out, err := h.Engine.AutoAssign(c.Request().Context(), eventID)
	if err != nil {
		return engineFail(c, err)
	}

	h.publish(queue.SeatingSyncedEvent{
		EventID:        eventID,
		OwnerID:        ownerID,
		Operation:      "auto_assign",
		AssignedCount:  out.AssignedCount,
		TotalProcessed: out.Result.TotalProcessed,
		FailedChunks:   len(out.Result.Errors),
	})

	return c.JSON(http.StatusOK, map[string]any{
		"success":        out.Result.Success,
		"assigned_count": out.AssignedCount,
		"errors":         out.Result.Errors,
	})
}

// BulkSave handles POST /v1/events/:id/bulk-save.  The response is
// always a result object: partial failures come back with
// success=false and the itemized failed chunks, never as an HTTP
// error, so the caller can retry just the affected records.
func (h *SeatingHandler) BulkSave(c echo.Context) error {
	eventID, ownerID, ok := h.ownEvent(c)
	if !ok {
		return nil
	}

	var req struct {
		GuestChanges []seating.GuestChange `json:"guest_changes"`
		TableChanges []seating.TableChange `json:"table_changes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}

	result, err := h.Engine.BulkSave(c.Request().Context(), req.GuestChanges, req.TableChanges)
	if err != nil {
		return engineFail(c, err)
	}

	h.publish(queue.SeatingSyncedEvent{
		EventID:        eventID,
		OwnerID:        ownerID,
		Operation:      "bulk_save",
		TotalProcessed: result.TotalProcessed,
		FailedChunks:   len(result.Errors),
	})

	return c.JSON(http.StatusOK, result)
}

// FindGuest handles GET /v1/events/:id/guests/find?q=.
func (h *SeatingHandler) FindGuest(c echo.Context) error {
	eventID, _, ok := h.ownEvent(c)
	if !ok {
		return nil
	}
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "q is required"})
	}

	match, err := h.Engine.FindGuest(c.Request().Context(), query, eventID)
	if err != nil {
		return engineFail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "match": match})
}

// Suggest handles GET /v1/events/:id/guests/suggest?q=&limit=.
func (h *SeatingHandler) Suggest(c echo.Context) error {
	eventID, _, ok := h.ownEvent(c)
	if !ok {
		return nil
	}
	limit := defaultSuggestLimit
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	names, err := h.Engine.SuggestNames(c.Request().Context(), c.QueryParam("q"), eventID, limit)
	if err != nil {
		return engineFail(c, err)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{"count": len(names), "items": names})
}

// publish emits the domain event in the background.  Seating state is
// already durable, so a publish failure only costs the notification.
func (h *SeatingHandler) publish(ev queue.SeatingSyncedEvent) {
	ev.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishSeatingSynced(ctx, h.Log, ev)
	}()
}
