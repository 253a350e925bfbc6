package patients

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/sangkips/patient-reminder-service/internal/domains/patients/models"
	"github.com/sangkips/patient-reminder-service/internal/handlers"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

var (
	ErrPatientNotFound   = errors.New("patient not found")
	ErrFirstNameRequired = errors.New("first_name is required")
	ErrPhoneRequired     = errors.New("phone is required")
	ErrInvalidLastVisit  = errors.New("last_visit must be formatted as YYYY-MM-DD")
	ErrNegativeCredits   = errors.New("credits cannot be negative")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreatePatientRequest struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Phone       string   `json:"phone"`
	Email       *string  `json:"email"`
	Balance     *float64 `json:"balance"`
	Credits     *int32   `json:"credits"`
	HasPackage  *bool    `json:"has_package"`
	PackageName *string  `json:"package_name"`
	LastVisit   *string  `json:"last_visit"`
}

type ListPatientsResponse struct {
	Data       []PatientResponse   `json:"data"`
	Pagination handlers.Pagination `json:"pagination"`
}

func (s *Service) CreatePatient(ctx context.Context, req CreatePatientRequest) (models.Patient, error) {
	params := models.CreatePatientParams{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       stringToNullString(req.Email),
		PackageName: stringToNullString(req.PackageName),
	}
	if params.FirstName == "" {
		return models.Patient{}, ErrFirstNameRequired
	}
	if params.Phone == "" {
		return models.Patient{}, ErrPhoneRequired
	}
	if req.Balance != nil {
		params.Balance = sql.NullFloat64{Float64: *req.Balance, Valid: true}
	}
	if req.Credits != nil {
		if *req.Credits < 0 {
			return models.Patient{}, ErrNegativeCredits
		}
		params.Credits = sql.NullInt32{Int32: *req.Credits, Valid: true}
	}
	if req.HasPackage != nil {
		params.HasPackage = sql.NullBool{Bool: *req.HasPackage, Valid: true}
	}
	if req.LastVisit != nil && *req.LastVisit != "" {
		visit, err := time.Parse(templating.LayoutISODate, *req.LastVisit)
		if err != nil {
			return models.Patient{}, ErrInvalidLastVisit
		}
		params.LastVisit = sql.NullTime{Time: visit, Valid: true}
	}

	return s.repo.CreatePatient(ctx, params)
}

func (s *Service) GetPatient(ctx context.Context, id int32) (models.Patient, error) {
	patient, err := s.repo.GetPatient(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Patient{}, ErrPatientNotFound
	}
	return patient, err
}

func (s *Service) ListPatients(ctx context.Context, page, pageSize int32, search string) (*ListPatientsResponse, error) {
	page, pageSize, offset := handlers.NormalizePage(page, pageSize)
	query := stringToNullString(&search)

	patients, err := s.repo.ListPatients(ctx, models.ListPatientsParams{
		Search: query,
		Limit:  pageSize,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	totalCount, err := s.repo.CountPatients(ctx, query)
	if err != nil {
		return nil, err
	}

	data := make([]PatientResponse, len(patients))
	for i, patient := range patients {
		data[i] = toPatientResponse(patient)
	}

	return &ListPatientsResponse{
		Data:       data,
		Pagination: handlers.NewPagination(page, pageSize, totalCount),
	}, nil
}

func stringToNullString(s *string) sql.NullString {
	if s == nil || strings.TrimSpace(*s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(*s), Valid: true}
}
