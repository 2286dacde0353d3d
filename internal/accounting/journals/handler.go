package journals

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quarrydesk/quarrydesk/internal/platform/httpx"
	"github.com/quarrydesk/quarrydesk/internal/shared"
)

// Handler exposes the journal entry engine over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the journal routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{entryID}", h.get)
	r.Post("/{entryID}/post", h.post)
	r.Post("/{entryID}/reverse", h.reverse)
}

type journalLineRequest struct {
	AccountID int64           `json:"account_id" validate:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo"`
}

type createJournalRequest struct {
	EntryDate    string               `json:"entry_date" validate:"required"`
	Reference    string               `json:"reference"`
	Description  string               `json:"description"`
	Type         string               `json:"type" validate:"required"`
	SourceModule string               `json:"source_module" validate:"required"`
	SourceID     string               `json:"source_id" validate:"required,uuid"`
	Lines        []journalLineRequest `json:"lines" validate:"required,min=2,dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createJournalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "entry_date must be formatted YYYY-MM-DD")
		return
	}
	sourceID, err := uuid.Parse(req.SourceID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "source_id must be a UUID")
		return
	}
	in := CreateInput{
		QuarryID:     shared.QuarryFromContext(r.Context()),
		EntryDate:    entryDate,
		Reference:    req.Reference,
		Description:  req.Description,
		Type:         EntryType(req.Type),
		SourceModule: req.SourceModule,
		SourceID:     sourceID,
		ActorID:      shared.ActorFromContext(r.Context()),
		Lines:        toLineInputs(req.Lines),
	}
	if err := in.Validate(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Error("failed to draft journal entry", slog.String("reference", req.Reference), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "entryID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "entry id must be numeric")
		return
	}
	entry, err := h.service.Post(r.Context(), id, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.logger.Error("failed to post journal entry", slog.Int64("entry_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

type reverseRequest struct {
	Memo string `json:"memo"`
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "entryID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "entry id must be numeric")
		return
	}
	var req reverseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	entry, err := h.service.Reverse(r.Context(), ReverseInput{
		EntryID: id,
		ActorID: shared.ActorFromContext(r.Context()),
		Memo:    req.Memo,
	})
	if err != nil {
		h.logger.Error("failed to reverse journal entry", slog.Int64("entry_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	quarryID := shared.QuarryFromContext(r.Context())
	page := shared.ParsePagination(r)
	entries, err := h.service.List(r.Context(), quarryID, page.PerPage, page.Offset())
	if err != nil {
		h.logger.Error("failed to list journal entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries, "page": page.Page})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "entryID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "entry id must be numeric")
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func toLineInputs(lines []journalLineRequest) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
			Memo:      line.Memo,
		})
	}
	return out
}
