package templates

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/patient-reminder-service/internal/domains/templates/models"
	"github.com/sangkips/patient-reminder-service/internal/handlers"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

type Handler struct {
	svc *Service
}

func NewHandler(db models.DBTX, engine *templating.Engine, loader ContextLoader) *Handler {
	return &Handler{svc: NewService(NewRepository(db), engine, loader)}
}

func (h *Handler) RegisterTemplateRoutes(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Get("/variables", h.listVariables)
	r.Post("/preview", h.preview)
	r.Get("/", h.listTemplates)
	r.Post("/", h.createTemplate)
	r.Get("/{id}", h.getTemplate)
	r.Put("/{id}", h.updateTemplate)
	r.Delete("/{id}", h.deleteTemplate)
	r.Post("/{id}/render", h.renderTemplate)
}

// respondWithServiceError maps service errors onto status codes.
func respondWithServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, ErrTemplateNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "TEMPLATE_NOT_FOUND", ErrTemplateNotFound.Error())
	case errors.Is(err, ErrPatientNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "PATIENT_NOT_FOUND", ErrPatientNotFound.Error())
	case errors.Is(err, ErrSystemTemplate):
		handlers.RespondWithError(w, http.StatusForbidden, "SYSTEM_TEMPLATE", ErrSystemTemplate.Error())
	case errors.Is(err, ErrTemplateInactive):
		handlers.RespondWithError(w, http.StatusConflict, "TEMPLATE_INACTIVE", ErrTemplateInactive.Error())
	case errors.Is(err, ErrTemplateInvalid):
		handlers.RespondWithErrorDetails(w, http.StatusUnprocessableEntity, "TEMPLATE_INVALID", errorMessage(err, ErrTemplateInvalid), errorDetails(err))
	case errors.Is(err, ErrUnknownVariable):
		handlers.RespondWithErrorDetails(w, http.StatusUnprocessableEntity, "UNKNOWN_VARIABLE", errorMessage(err, ErrUnknownVariable), errorDetails(err))
	case errors.Is(err, ErrOptOutRequired):
		handlers.RespondWithError(w, http.StatusBadRequest, "OPT_OUT_REQUIRED", ErrOptOutRequired.Error())
	case errors.Is(err, ErrNameRequired):
		handlers.RespondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", ErrNameRequired.Error())
	case errors.Is(err, ErrBodyRequired):
		handlers.RespondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", ErrBodyRequired.Error())
	case errors.Is(err, ErrInvalidCategory):
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_CATEGORY", errorMessage(err, ErrInvalidCategory))
	case errors.Is(err, ErrInvalidChannel):
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_CHANNEL", errorMessage(err, ErrInvalidChannel))
	default:
		log.Error().Err(err).Msg("Failed to " + action)
		handlers.RespondWithError(w, http.StatusInternalServerError, "TEMPLATE_REQUEST_FAILED", "Failed to "+action+": "+err.Error())
	}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Categories(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "list categories")
		return
	}
	handlers.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) listVariables(w http.ResponseWriter, r *http.Request) {
	var namespaces []string
	if raw := r.URL.Query().Get("namespaces"); raw != "" {
		namespaces = strings.Split(raw, ",")
	}
	handlers.RespondWithJSON(w, http.StatusOK, h.svc.Variables(namespaces))
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Preview(req)
	if err != nil {
		respondWithServiceError(w, err, "preview template")
		return
	}
	handlers.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	page, pageSize := handlers.PageParams(r)
	query := r.URL.Query()

	params := ListTemplatesParams{
		Page:     page,
		PageSize: pageSize,
		Category: query.Get("category"),
		Channel:  query.Get("channel"),
		Search:   query.Get("search"),
	}
	if raw := query.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_FILTER", "active must be true or false")
			return
		}
		params.Active = &active
	}

	response, err := h.svc.ListTemplates(r.Context(), params)
	if err != nil {
		respondWithServiceError(w, err, "list templates")
		return
	}
	handlers.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	tmpl, err := h.svc.CreateTemplate(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "create template")
		return
	}
	handlers.RespondWithJSON(w, http.StatusCreated, tmpl)
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_TEMPLATE_ID", "Invalid template ID format")
		return
	}

	tmpl, err := h.svc.GetTemplate(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "get template")
		return
	}
	handlers.RespondWithJSON(w, http.StatusOK, tmpl)
}

func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_TEMPLATE_ID", "Invalid template ID format")
		return
	}

	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	tmpl, err := h.svc.UpdateTemplate(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, err, "update template")
		return
	}
	handlers.RespondWithJSON(w, http.StatusOK, tmpl)
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_TEMPLATE_ID", "Invalid template ID format")
		return
	}

	if err := h.svc.DeleteTemplate(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_TEMPLATE_ID", "Invalid template ID format")
		return
	}

	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if req.PatientID == 0 {
		handlers.RespondWithError(w, http.StatusBadRequest, "MISSING_PATIENT_ID", "patient_id is required")
		return
	}

	result, err := h.svc.Render(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, err, "render template")
		return
	}
	handlers.RespondWithJSON(w, http.StatusOK, result)
}
