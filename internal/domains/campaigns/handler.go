package campaigns

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/patient-reminder-service/internal/domains/appointments"
	"github.com/sangkips/patient-reminder-service/internal/domains/campaigns/models"
	"github.com/sangkips/patient-reminder-service/internal/domains/messages"
	"github.com/sangkips/patient-reminder-service/internal/domains/templates"
	"github.com/sangkips/patient-reminder-service/internal/handlers"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

type Handler struct {
	svc *Service
}

func NewHandler(db models.DBTX, engine *templating.Engine, loader templates.ContextLoader, queue QueuePublisher) *Handler {
	campaignRepo := NewRepository(db)
	messagesRepo := messages.NewRepository(db)
	templatesRepo := templates.NewRepository(db)
	apptsRepo := appointments.NewRepository(db)
	return &Handler{svc: NewService(campaignRepo, messagesRepo, templatesRepo, apptsRepo, loader, engine, queue)}
}

func (h *Handler) RegisterCampaignRoutes(r chi.Router) {
	r.Post("/", h.createCampaign)
	r.Post("/{id}/send", h.sendCampaign)
	r.Post("/{id}/personalized-preview", h.personalizedPreview)
	r.Get("/", h.listCampaigns)
	r.Get("/{id}", h.getCampaign)
}

// respondWithServiceError maps service errors to API error codes.
func respondWithServiceError(w http.ResponseWriter, err error, fallbackCode, fallbackMsg string) {
	switch {
	case errors.Is(err, ErrCampaignNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "CAMPAIGN_NOT_FOUND", err.Error())
	case errors.Is(err, ErrTemplateNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "TEMPLATE_NOT_FOUND", err.Error())
	case errors.Is(err, ErrPatientNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "PATIENT_NOT_FOUND", err.Error())
	case errors.Is(err, ErrRecipientNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "RECIPIENT_NOT_FOUND", err.Error())
	case errors.Is(err, ErrTemplateInactive):
		handlers.RespondWithError(w, http.StatusConflict, "TEMPLATE_INACTIVE", err.Error())
	case errors.Is(err, ErrNoRecipients):
		handlers.RespondWithError(w, http.StatusBadRequest, "EMPTY_RECIPIENTS", err.Error())
	case errors.Is(err, ErrInvalidCampaignStatus):
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_CAMPAIGN_STATUS", err.Error())
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrTemplateRequired), errors.Is(err, ErrChannelMismatch):
		handlers.RespondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		log.Error().Err(err).Str("code", fallbackCode).Msg(fallbackMsg)
		handlers.RespondWithError(w, http.StatusInternalServerError, fallbackCode, fallbackMsg+": "+err.Error())
	}
}

func (h *Handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req CreateCampaignRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	campaign, err := h.svc.CreateCampaign(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "CAMPAIGN_CREATE_FAILED", "Failed to create campaign")
		return
	}

	handlers.RespondWithJSON(w, http.StatusCreated, withStats(campaign, CampaignStats{}))
}

func (h *Handler) sendCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, err := handlers.PathID(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_CAMPAIGN_ID", "Invalid campaign ID format")
		return
	}

	var req SendCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	response, err := h.svc.SendCampaign(r.Context(), campaignID, req)
	if err != nil {
		respondWithServiceError(w, err, "CAMPAIGN_SEND_FAILED", "Failed to send campaign")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	page, pageSize := handlers.PageParams(r)

	params := ListCampaignsParams{
		Page:     page,
		PageSize: pageSize,
		Channel:  r.URL.Query().Get("channel"),
		Status:   r.URL.Query().Get("status"),
	}

	response, err := h.svc.ListCampaigns(r.Context(), params)
	if err != nil {
		handlers.RespondWithError(w, http.StatusInternalServerError, "CAMPAIGNS_LIST_FAILED", "Failed to list campaigns: "+err.Error())
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) getCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_CAMPAIGN_ID", "Invalid campaign ID format")
		return
	}

	response, err := h.svc.GetCampaign(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "CAMPAIGN_GET_FAILED", "Failed to get campaign")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) personalizedPreview(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_CAMPAIGN_ID", "Invalid campaign ID format")
		return
	}

	var req PersonalizedPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if req.PatientID == 0 {
		handlers.RespondWithError(w, http.StatusBadRequest, "MISSING_PATIENT_ID", "patient_id is required")
		return
	}

	response, err := h.svc.PersonalizedPreview(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, err, "PREVIEW_FAILED", "Failed to generate preview")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, response)
}
