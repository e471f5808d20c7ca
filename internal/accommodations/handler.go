package accommodations

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lodgelist/lodgelist/internal/core"
	"github.com/lodgelist/lodgelist/internal/platform/httpx"
	"github.com/lodgelist/lodgelist/internal/shared"
)

// Handler exposes the listing verbs over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers accommodation routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.search)
	r.Get("/count", h.count)
	r.Post("/", h.create)
	r.Get("/slug/{slug}", h.getBySlug)
	r.Get("/{id}", h.getByID)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.softDelete)
	r.Delete("/{id}/purge", h.hardDelete)
	r.Post("/{id}/restore", h.restore)
	r.Put("/{id}/visibility", h.updateVisibility)
	r.Post("/{id}/moderate", h.moderate)
}

func searchFilter(r *http.Request) core.Filter {
	filter := core.Filter{}
	q := r.URL.Query()
	if v := q.Get("destination_id"); v != "" {
		filter["destination_id"] = v
	}
	if v := q.Get("owner_id"); v != "" {
		filter["owner_id"] = v
	}
	if v := q.Get("featured"); v != "" {
		filter["featured"] = v == "true"
	}
	if v := q.Get("q"); v != "" {
		filter["q"] = v
	}
	return filter
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	res := h.service.Search(r.Context(), actor, core.SearchParams{
		Filter: searchFilter(r),
		Page:   shared.PageFromRequest(r),
	})
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	res := h.service.Count(r.Context(), actor, searchFilter(r))
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "malformed request body")
		return
	}
	actor := shared.ActorFromContext(r.Context())
	res := h.service.Create(r.Context(), actor, input)
	httpx.Respond(w, http.StatusCreated, res)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	res := h.service.GetByID(r.Context(), actor, chi.URLParam(r, "id"))
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) getBySlug(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	res := h.service.GetBySlug(r.Context(), actor, chi.URLParam(r, "slug"))
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var input UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "malformed request body")
		return
	}
	actor := shared.ActorFromContext(r.Context())
	res := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), input)
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	res := h.service.SoftDelete(r.Context(), actor, chi.URLParam(r, "id"))
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) hardDelete(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	res := h.service.HardDelete(r.Context(), actor, chi.URLParam(r, "id"))
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	res := h.service.Restore(r.Context(), actor, chi.URLParam(r, "id"))
	httpx.Respond(w, http.StatusOK, res)
}

type visibilityRequest struct {
	Visibility string `json:"visibility"`
}

func (h *Handler) updateVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "malformed request body")
		return
	}
	actor := shared.ActorFromContext(r.Context())
	res := h.service.UpdateVisibility(r.Context(), actor, chi.URLParam(r, "id"), core.Visibility(req.Visibility))
	httpx.Respond(w, http.StatusOK, res)
}

type moderateRequest struct {
	Action string `json:"action"`
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "malformed request body")
		return
	}
	actor := shared.ActorFromContext(r.Context())
	res := h.service.Moderate(r.Context(), actor, chi.URLParam(r, "id"), core.Action(req.Action))
	httpx.Respond(w, http.StatusOK, res)
}
