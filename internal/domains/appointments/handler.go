package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/patient-reminder-service/internal/domains/appointments/models"
	"github.com/sangkips/patient-reminder-service/internal/handlers"
)

type Handler struct {
	svc *Service
}

func NewHandler(db models.DBTX) *Handler {
	return &Handler{svc: NewService(NewRepository(db))}
}

func (h *Handler) RegisterAppointmentRoutes(r chi.Router) {
	r.Post("/", h.createAppointment)
	r.Get("/", h.listAppointments)
	r.Get("/{id}", h.getAppointment)
	r.Patch("/{id}/status", h.updateStatus)
}

func respondWithServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, ErrAppointmentNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "APPOINTMENT_NOT_FOUND", err.Error())
	case errors.Is(err, ErrPatientNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "PATIENT_NOT_FOUND", err.Error())
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidTime), errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrServiceRequired), errors.Is(err, ErrInvalidStatus):
		handlers.RespondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		log.Error().Err(err).Msg("Failed to " + action)
		handlers.RespondWithError(w, http.StatusInternalServerError, "APPOINTMENT_REQUEST_FAILED", "Failed to "+action+": "+err.Error())
	}
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if req.PatientID == 0 {
		handlers.RespondWithError(w, http.StatusBadRequest, "MISSING_PATIENT_ID", "patient_id is required")
		return
	}

	appt, err := h.svc.CreateAppointment(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "create appointment")
		return
	}
	handlers.RespondWithJSON(w, http.StatusCreated, appt)
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	patientID, err := handlers.PathID(r.URL.Query().Get("patient_id"))
	if err != nil || patientID == 0 {
		handlers.RespondWithError(w, http.StatusBadRequest, "MISSING_PATIENT_ID", "patient_id query parameter is required")
		return
	}

	var from *time.Time
	if r.URL.Query().Get("upcoming") == "true" {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		from = &today
	}

	items, err := h.svc.ListForPatient(r.Context(), patientID, from)
	if err != nil {
		respondWithServiceError(w, err, "list appointments")
		return
	}
	handlers.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_APPOINTMENT_ID", "Invalid appointment ID format")
		return
	}

	appt, err := h.svc.GetAppointment(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "get appointment")
		return
	}
	handlers.RespondWithJSON(w, http.StatusOK, appt)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_APPOINTMENT_ID", "Invalid appointment ID format")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	appt, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondWithServiceError(w, err, "update appointment status")
		return
	}
	handlers.RespondWithJSON(w, http.StatusOK, appt)
}
