package importcsv

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerbook/internal/account"
	"github.com/MrJamesThe3rd/ledgerbook/internal/importer"
	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
)

type Handler struct {
	svc       *importer.Service
	maxUpload int64
}

func NewHandler(svc *importer.Service, maxUploadBytes int64) *Handler {
	return &Handler{
		svc:       svc,
		maxUpload: maxUploadBytes,
	}
}

// Routes expects to be mounted below a path carrying the account {id}.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/preview", h.preview)
	r.Post("/", h.importStatement)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, _, err := h.readUpload(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.svc.Preview(r.Context(), id, data)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toPreviewResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mapping, err := h.readUpload(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.svc.Import(r.Context(), id, data, mapping)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toImportResponse(res)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// readUpload returns the uploaded "file" part and the optional "mapping"
// JSON field.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, *statement.ColumnMapping, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, nil, fmt.Errorf("failed to parse form: %w", err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("file field is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	raw := r.FormValue("mapping")
	if raw == "" {
		return data, nil, nil
	}

	var m statement.ColumnMapping
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, nil, fmt.Errorf("invalid mapping: %w", err)
	}

	return data, &m, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
	case errors.Is(err, statement.ErrNoHeaders),
		errors.Is(err, statement.ErrNoRows),
		errors.Is(err, statement.ErrInvalidWorkbook),
		errors.Is(err, statement.ErrNoSheets),
		errors.Is(err, statement.ErrInvalidMapping),
		errors.Is(err, importer.ErrNoMapping):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("import failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
