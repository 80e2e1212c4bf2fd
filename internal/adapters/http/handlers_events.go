package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"evenex/internal/adapters/markdown"
	eventStore "evenex/internal/adapters/storage/event"
	"evenex/internal/application/listutil"
	"evenex/internal/application/orchestrators"
	eventDomain "evenex/internal/domain/event"
)

// listEvents runs the paged upcoming-events query shared by the API and the index page.
func (h *Handler) listEvents(r *http.Request, p listutil.Params) ([]eventDomain.Event, listutil.PageInfo, error) {
	f := eventStore.ListFilter{
		From:     h.deps.Now().UnixMilli(),
		Category: p.Category,
		Search:   p.Search,
	}
	total, err := h.deps.Events.CountUpcoming(r.Context(), f)
	if err != nil {
		return nil, listutil.PageInfo{}, err
	}
	info := listutil.NewPageInfo(p.Page, p.PerPage, total)
	events, err := h.deps.Events.ListUpcoming(r.Context(), f, info.PerPage, info.Offset())
	if err != nil {
		return nil, info, err
	}
	if events == nil {
		events = []eventDomain.Event{}
	}
	return events, info, nil
}

// handleListEvents serves GET /api/events?page=N&limit=N&category=C&q=S with upcoming events.
// The total match count is returned in X-Total-Count.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	p, err := listutil.Parse(r.URL.Query())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	events, info, err := h.listEvents(r, p)
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(info.Total))
	writeJSON(w, http.StatusOK, events)
}

// handleGetEvent serves GET /api/events/{slug}: the event value the client export consumes.
func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.deps.Events.GetBySlug(r.Context(), r.PathValue("slug"))
	if errors.Is(err, eventDomain.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, msgEventNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// handleCreateEvent serves POST /api/events.
func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.CreateEventInput
	if err := strictDecode(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	ev, err := orchestrators.ExecuteCreateEvent(r.Context(), input, orchestrators.CreateEventDeps{
		Events:     h.deps.Events,
		GenerateID: h.deps.GenerateID,
		Now:        h.deps.Now,
	})
	switch {
	case errors.Is(err, orchestrators.ErrInvalidEvent):
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, orchestrators.ErrSlugTaken):
		writeJSONError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		slog.Error("create_event_failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, msgCreateEventFailed)
		return
	}

	w.Header().Set("Location", "/api/events/"+ev.Slug)
	writeJSON(w, http.StatusCreated, ev)
}

type inviteRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type inviteResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"messageId"`
}

func (h *Handler) sendInvite(r *http.Request, slug string, req inviteRequest) (string, error) {
	res, err := orchestrators.ExecuteSendCalendarInvite(r.Context(), orchestrators.SendCalendarInviteInput{
		Slug:   slug,
		Email:  req.Email,
		Name:   req.Name,
		Origin: h.requestOrigin(r),
	}, orchestrators.SendCalendarInviteDeps{
		Events:      h.deps.Events,
		Encoder:     h.deps.Encoder,
		Sender:      h.deps.Sender,
		DisplayZone: h.deps.DisplayZone,
		Perf:        h.deps.Perf,
		FromAddress: h.deps.FromAddress,
	})
	return res.MessageID, err
}

// handleInviteAPI serves POST /api/events/{slug}/invite.
func (h *Handler) handleInviteAPI(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	slug := r.PathValue("slug")
	msgID, err := h.sendInvite(r, slug, req)
	switch {
	case errors.Is(err, orchestrators.ErrInvalidRecipient):
		writeJSONError(w, http.StatusBadRequest, msgInvalidRecipient)
		return
	case errors.Is(err, orchestrators.ErrEventNotFound):
		writeJSONError(w, http.StatusNotFound, msgEventNotFound)
		return
	case err != nil:
		slog.Error("invite_failed", "slug", slug, "error", err)
		writeJSONError(w, http.StatusInternalServerError, msgInviteFailed)
		return
	}
	writeJSON(w, http.StatusAccepted, inviteResponse{Status: "queued", MessageID: msgID})
}

// handleIndexPage serves GET / with the upcoming events; bad paging values fall back to defaults.
func (h *Handler) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	p, _ := listutil.Parse(r.URL.Query())
	events, info, err := h.listEvents(r, p)
	if err != nil {
		internalError(w, err)
		return
	}
	h.renderPage(w, r, http.StatusOK, "index.html", map[string]any{
		"Title":    "Upcoming events",
		"Events":   events,
		"Page":     info,
		"Params":   p,
		"PrevPage": p.Query(info.Page - 1),
		"NextPage": p.Query(info.Page + 1),
	})
}

// handleEventPage serves GET /events/{slug}, the URL written into every artifact.
func (h *Handler) handleEventPage(w http.ResponseWriter, r *http.Request) {
	h.renderEvent(w, r, http.StatusOK, nil)
}

// handleInviteForm serves POST /events/{slug}/invite from the event page form.
func (h *Handler) handleInviteForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	req := inviteRequest{
		Email: strings.TrimSpace(r.PostFormValue("email")),
		Name:  strings.TrimSpace(r.PostFormValue("name")),
	}

	_, err := h.sendInvite(r, r.PathValue("slug"), req)
	switch {
	case err == nil:
		h.renderEvent(w, r, http.StatusOK, map[string]any{"Flash": "Invite sent to " + req.Email})
	case errors.Is(err, orchestrators.ErrInvalidRecipient):
		h.renderEvent(w, r, http.StatusBadRequest, map[string]any{"FormError": msgInvalidRecipient, "FormEmail": req.Email, "FormName": req.Name})
	case errors.Is(err, orchestrators.ErrEventNotFound):
		h.renderPage(w, r, http.StatusNotFound, "not_found.html", map[string]any{"Title": msgEventNotFound})
	default:
		slog.Error("invite_failed", "slug", r.PathValue("slug"), "error", err)
		h.renderEvent(w, r, http.StatusInternalServerError, map[string]any{"FormError": msgInviteFailed})
	}
}

func (h *Handler) renderEvent(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	ev, err := h.deps.Events.GetBySlug(r.Context(), r.PathValue("slug"))
	if errors.Is(err, eventDomain.ErrNotFound) {
		h.renderPage(w, r, http.StatusNotFound, "not_found.html", map[string]any{"Title": msgEventNotFound})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	data := map[string]any{
		"Title":       ev.Title,
		"Event":       ev,
		"Location":    ev.ServerLocation(),
		"Description": markdown.ToHTML(ev.Description),
		"CalendarURL": "/calendar/" + ev.Slug,
		"Flash":       "",
		"FormError":   "",
		"FormEmail":   "",
		"FormName":    "",
	}
	for k, v := range extra {
		data[k] = v
	}
	h.renderPage(w, r, status, "event.html", data)
}
