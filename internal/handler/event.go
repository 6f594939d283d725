package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/eventhub/eventhub-go/internal/middleware"
	"github.com/eventhub/eventhub-go/internal/model"
	"github.com/eventhub/eventhub-go/internal/service"
)

// EventHandler handles HTTP requests for events and attendance.
type EventHandler struct {
	service *service.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{service: svc}
}

// HandleListAll handles GET /api/v1/events requests.
func (h *EventHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, func(ctx context.Context, _ int64) ([]model.Event, error) {
		return h.service.ListAll(ctx)
	})
}

// HandleGuestSearch handles GET /api/v1/events/search?q= requests.
func (h *EventHandler) HandleGuestSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	h.writeList(w, r, func(ctx context.Context, _ int64) ([]model.Event, error) {
		return h.service.GuestSearch(ctx, term)
	})
}

// HandleGet handles GET /api/v1/events/{eventID} requests.
func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.service.Get(r.Context(), eventID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.EventResponse{Success: true, Data: event})
}

// HandleFeed handles GET /api/v1/me/feed requests.
func (h *EventHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.service.Feed)
}

// HandleSearch handles GET /api/v1/me/feed/search?q= requests.
func (h *EventHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	h.writeList(w, r, func(ctx context.Context, userID int64) ([]model.Event, error) {
		return h.service.Search(ctx, term, userID)
	})
}

// HandleMine handles GET /api/v1/me/events requests.
func (h *EventHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.service.Mine)
}

// HandleAttending handles GET /api/v1/me/attending requests.
func (h *EventHandler) HandleAttending(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.service.Attending)
}

// HandleCreate handles POST /api/v1/events requests.
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req model.CreateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.EventResponse{Success: true, Data: event})
}

// HandleUpdate handles PUT /api/v1/events/{eventID} requests.
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req model.UpdateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.service.Update(r.Context(), userID, eventID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.EventResponse{Success: true, Data: event})
}

// HandleDelete handles DELETE /api/v1/events/{eventID} requests.
func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r, h.service.Delete, "event deleted")
}

// HandleJoin handles POST /api/v1/events/{eventID}/join requests. Joining an
// event twice is not an error.
func (h *EventHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r, h.service.Join, "")
}

// HandleLeave handles DELETE /api/v1/events/{eventID}/join requests.
func (h *EventHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r, h.service.Leave, "left event")
}

func (h *EventHandler) writeList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID int64) ([]model.Event, error)) {
	var userID int64
	if id, ok := middleware.IdentityFromContext(r.Context()); ok {
		userID = id.UserID()
	}

	events, err := list(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) writeStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, eventID int64) error, msg string) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := op(r.Context(), userID, eventID); err != nil {
		if errors.Is(err, service.ErrAlreadyJoined) {
			writeJSON(w, http.StatusOK, messageResponse(err.Error()))
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: msg})
}

func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse("Access Denied"))
		return 0, false
	}
	return id.UserID(), true
}
