package queuehandlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	authdomain "github.com/Black-And-White-Club/antrian/app/modules/auth/domain"
	queueservice "github.com/Black-And-White-Club/antrian/app/modules/queue/application"
	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	"github.com/Black-And-White-Club/antrian/pkg/httpapi"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

const (
	// maxImportBytes bounds uploaded import files.
	maxImportBytes = 8 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handlers serves the queue HTTP endpoints.
type Handlers interface {
	HandleGetQueue(w http.ResponseWriter, r *http.Request)
	HandleGetPublicQueue(w http.ResponseWriter, r *http.Request)
	HandleSubmitEntries(w http.ResponseWriter, r *http.Request)
	HandleImportEntries(w http.ResponseWriter, r *http.Request)
	HandleMoveEntry(w http.ResponseWriter, r *http.Request)
	HandleConsolidate(w http.ResponseWriter, r *http.Request)
	HandlePromote(w http.ResponseWriter, r *http.Request)
	HandleClearCurrent(w http.ResponseWriter, r *http.Request)
	HandleListArchive(w http.ResponseWriter, r *http.Request)
	HandleDeleteArchive(w http.ResponseWriter, r *http.Request)
	HandleDeleteArchivedRound(w http.ResponseWriter, r *http.Request)
	HandleExportArchive(w http.ResponseWriter, r *http.Request)
	HandleArchiveChart(w http.ResponseWriter, r *http.Request)
}

// QueueHandlers implements Handlers on top of the queue service.
type QueueHandlers struct {
	service queueservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewQueueHandlers creates a new QueueHandlers instance.
func NewQueueHandlers(service queueservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &QueueHandlers{service: service, logger: logger, tracer: tracer}
}

// Routes registers the authenticated queue endpoints on r.
func Routes(r chi.Router, h Handlers) {
	r.Get("/", h.HandleGetQueue)
	r.Post("/entries", h.HandleSubmitEntries)
	r.Post("/entries/import", h.HandleImportEntries)
	r.Post("/moves", h.HandleMoveEntry)
	r.Post("/consolidate", h.HandleConsolidate)
	r.Post("/rounds/{roundID}/promote", h.HandlePromote)
	r.Post("/current/clear", h.HandleClearCurrent)

	r.Route("/archive", func(r chi.Router) {
		r.Get("/", h.HandleListArchive)
		r.Delete("/", h.HandleDeleteArchive)
		r.Get("/export", h.HandleExportArchive)
		r.Get("/chart", h.HandleArchiveChart)
		r.Delete("/{roundID}", h.HandleDeleteArchivedRound)
	})
}

type submitRequest struct {
	Entries []queuedomain.Request `json:"entries"`
}

type moveRequest struct {
	queuedomain.Move
	Consolidate bool `json:"consolidate"`
}

type outcomeResponse struct {
	Queue queuedomain.Snapshot `json:"queue"`
	Added []queuedomain.Entry  `json:"added"`
}

type archiveResponse struct {
	Rounds []queuedomain.Round `json:"rounds"`
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *QueueHandlers) userID(w http.ResponseWriter, r *http.Request) (queuedomain.UserID, bool) {
	id, ok := authdomain.UserIDFromContext(r.Context())
	if !ok {
		httpapi.WriteJSON(w, http.StatusUnauthorized, httpapi.ErrorBody{
			Code:    "unauthorized",
			Message: "missing authentication",
		})
		return 0, false
	}
	return queuedomain.UserID(id), true
}

func (h *QueueHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpapi.WriteError(r.Context(), w, h.logger, err)
}

func (h *QueueHandlers) HandleGetQueue(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	snap, err := h.service.GetQueue(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, snap)
}

// HandleGetPublicQueue needs no identity; the owner is named in the path.
func (h *QueueHandlers) HandleGetPublicQueue(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.GetPublicQueue(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, snap)
}

func (h *QueueHandlers) HandleSubmitEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.service.SubmitBatch(r.Context(), userID, req.Entries)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, outcomeResponse{Queue: out.Snapshot, Added: out.Added})
}

// HandleImportEntries accepts a multipart upload in the "file" field.
func (h *QueueHandlers) HandleImportEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, uploadError(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, r, uploadError(err))
		return
	}

	out, err := h.service.ImportBatch(r.Context(), userID, header.Filename, data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, outcomeResponse{Queue: out.Snapshot, Added: out.Added})
}

func (h *QueueHandlers) HandleMoveEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	snap, err := h.service.MoveEntry(r.Context(), userID, req.Move, req.Consolidate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, snap)
}

func (h *QueueHandlers) HandleConsolidate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	snap, err := h.service.Consolidate(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, snap)
}

func (h *QueueHandlers) HandlePromote(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	roundID, err := queuedomain.ParseRoundID(chi.URLParam(r, "roundID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	snap, err := h.service.Promote(r.Context(), userID, roundID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, snap)
}

func (h *QueueHandlers) HandleClearCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	res, err := h.service.ClearCurrent(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

func (h *QueueHandlers) HandleListArchive(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	rounds, err := h.service.ListArchived(r.Context(), userID, r.URL.Query().Get("since"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if rounds == nil {
		rounds = []queuedomain.Round{}
	}
	httpapi.WriteJSON(w, http.StatusOK, archiveResponse{Rounds: rounds})
}

func (h *QueueHandlers) HandleDeleteArchive(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	n, err := h.service.DeleteAllArchived(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

func (h *QueueHandlers) HandleDeleteArchivedRound(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	roundID, err := queuedomain.ParseRoundID(chi.URLParam(r, "roundID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.DeleteArchived(r.Context(), userID, roundID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QueueHandlers) HandleExportArchive(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	data, err := h.service.ExportArchive(r.Context(), userID, r.URL.Query().Get("since"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeFile(w, xlsxContentType, "archive.xlsx", data)
}

func (h *QueueHandlers) HandleArchiveChart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	data, err := h.service.ArchiveChart(r.Context(), userID, r.URL.Query().Get("since"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeFile(w, "image/png", "", data)
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("upload exceeds %d bytes: %w", tooLarge.Limit, queuedomain.ErrInvalidRequest)
	}
	return fmt.Errorf("reading upload field \"file\": %w: %w", err, queuedomain.ErrInvalidRequest)
}

func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
