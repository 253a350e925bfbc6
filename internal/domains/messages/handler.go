package messages

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/patient-reminder-service/internal/domains/messages/models"
	"github.com/sangkips/patient-reminder-service/internal/handlers"
)

type Handler struct {
	svc *Service
}

func NewHandler(db models.DBTX) *Handler {
	repo := NewRepository(db)
	return &Handler{svc: NewService(repo)}
}

func (h *Handler) RegisterMessageRoutes(r chi.Router) {
	r.Get("/", h.listMessages)
	r.Get("/{id}", h.getMessage)
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("campaign_id")
	if raw == "" {
		handlers.RespondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", "campaign_id is required")
		return
	}
	campaignID, err := handlers.PathID(raw)
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_CAMPAIGN_ID", "Invalid campaign ID format")
		return
	}

	page, pageSize := handlers.PageParams(r)
	response, err := h.svc.ListCampaignMessages(r.Context(), campaignID, r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			handlers.RespondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		log.Error().Err(err).Int32("campaign_id", campaignID).Msg("Failed to list messages")
		handlers.RespondWithError(w, http.StatusInternalServerError, "MESSAGES_LIST_FAILED", "Failed to list messages: "+err.Error())
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) getMessage(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_MESSAGE_ID", "Invalid message ID format")
		return
	}

	msg, err := h.svc.GetMessage(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			handlers.RespondWithError(w, http.StatusNotFound, "MESSAGE_NOT_FOUND", "Message not found")
			return
		}
		handlers.RespondWithError(w, http.StatusInternalServerError, "MESSAGE_GET_FAILED", "Failed to get message: "+err.Error())
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, msg)
}
