package patients

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/patient-reminder-service/internal/domains/patients/models"
	"github.com/sangkips/patient-reminder-service/internal/handlers"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

type Handler struct {
	svc *Service
}

func NewHandler(db models.DBTX) *Handler {
	repo := NewRepository(db)
	return &Handler{svc: NewService(repo)}
}

func (h *Handler) RegisterPatientRoutes(r chi.Router) {
	r.Post("/", h.createPatient)
	r.Get("/", h.listPatients)
	r.Get("/{id}", h.getPatient)
}

// PatientResponse is the API response format for patients
type PatientResponse struct {
	ID          int32    `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Phone       string   `json:"phone"`
	Email       *string  `json:"email,omitempty"`
	Balance     *float64 `json:"balance,omitempty"`
	Credits     *int32   `json:"credits,omitempty"`
	HasPackage  *bool    `json:"has_package,omitempty"`
	PackageName *string  `json:"package_name,omitempty"`
	LastVisit   *string  `json:"last_visit,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

func toPatientResponse(patient models.Patient) PatientResponse {
	resp := PatientResponse{
		ID:        patient.ID,
		FirstName: patient.FirstName,
		LastName:  patient.LastName,
		Phone:     patient.Phone,
		CreatedAt: patient.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if patient.Email.Valid {
		resp.Email = &patient.Email.String
	}
	if patient.Balance.Valid {
		resp.Balance = &patient.Balance.Float64
	}
	if patient.Credits.Valid {
		resp.Credits = &patient.Credits.Int32
	}
	if patient.HasPackage.Valid {
		resp.HasPackage = &patient.HasPackage.Bool
	}
	if patient.PackageName.Valid {
		resp.PackageName = &patient.PackageName.String
	}
	if patient.LastVisit.Valid {
		visit := patient.LastVisit.Time.Format(templating.LayoutISODate)
		resp.LastVisit = &visit
	}

	return resp
}

func (h *Handler) createPatient(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	patient, err := h.svc.CreatePatient(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrFirstNameRequired), errors.Is(err, ErrPhoneRequired),
			errors.Is(err, ErrInvalidLastVisit), errors.Is(err, ErrNegativeCredits):
			handlers.RespondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			log.Error().Err(err).Msg("Failed to create patient")
			handlers.RespondWithError(w, http.StatusInternalServerError, "PATIENT_CREATE_FAILED", "Failed to create patient: "+err.Error())
		}
		return
	}

	handlers.RespondWithJSON(w, http.StatusCreated, toPatientResponse(patient))
}

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	page, pageSize := handlers.PageParams(r)

	response, err := h.svc.ListPatients(r.Context(), page, pageSize, r.URL.Query().Get("search"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list patients")
		handlers.RespondWithError(w, http.StatusInternalServerError, "PATIENTS_LIST_FAILED", "Failed to list patients: "+err.Error())
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) getPatient(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_PATIENT_ID", "Invalid patient ID format")
		return
	}

	patient, err := h.svc.GetPatient(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			handlers.RespondWithError(w, http.StatusNotFound, "PATIENT_NOT_FOUND", "Patient not found")
			return
		}
		handlers.RespondWithError(w, http.StatusInternalServerError, "PATIENT_GET_FAILED", "Failed to get patient: "+err.Error())
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, toPatientResponse(patient))
}
