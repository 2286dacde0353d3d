package accounts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quarrydesk/quarrydesk/internal/platform/httpx"
	"github.com/quarrydesk/quarrydesk/internal/shared"
)

// Handler exposes the chart of accounts over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the account routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/seed", h.seed)
	r.Get("/{accountID}", h.get)
	r.Post("/{accountID}/reparent", h.reparent)
	r.Post("/{accountID}/deactivate", h.deactivate)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	quarryID := shared.QuarryFromContext(r.Context())
	items, err := h.service.List(r.Context(), quarryID)
	if err != nil {
		h.logger.Error("failed to list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": items})
}

func (h *Handler) seed(w http.ResponseWriter, r *http.Request) {
	quarryID := shared.QuarryFromContext(r.Context())
	created, err := h.service.Seed(r.Context(), quarryID)
	if err != nil {
		h.logger.Error("failed to seed chart of accounts", slog.Int64("quarry_id", quarryID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"created": created})
}

type createAccountRequest struct {
	Code         string `json:"code" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Category     string `json:"category" validate:"required"`
	AccountType  string `json:"account_type"`
	ParentID     *int64 `json:"parent_id"`
	DisplayOrder int    `json:"display_order"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in := CreateInput{
		QuarryID:     shared.QuarryFromContext(r.Context()),
		Code:         req.Code,
		Name:         req.Name,
		Category:     Category(req.Category),
		Type:         AccountType(req.AccountType),
		ParentID:     req.ParentID,
		DisplayOrder: req.DisplayOrder,
		ActorID:      shared.ActorFromContext(r.Context()),
	}
	if err := in.Validate(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Error("failed to create account", slog.String("code", req.Code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "account id must be numeric")
		return
	}
	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

type reparentRequest struct {
	ParentID *int64 `json:"parent_id"`
}

func (h *Handler) reparent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "account id must be numeric")
		return
	}
	var req reparentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.service.Reparent(r.Context(), id, req.ParentID, shared.ActorFromContext(r.Context())); err != nil {
		h.logger.Error("failed to reparent account", slog.Int64("account_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "account id must be numeric")
		return
	}
	if err := h.service.Deactivate(r.Context(), id, shared.ActorFromContext(r.Context())); err != nil {
		h.logger.Error("failed to deactivate account", slog.Int64("account_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
