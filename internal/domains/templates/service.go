package templates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/patient-reminder-service/internal/domains/templates/models"
	"github.com/sangkips/patient-reminder-service/internal/handlers"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

// ContextLoader builds the render context for a patient and, optionally, one
// of their appointments. Missing rows are reported as sql.ErrNoRows.
type ContextLoader interface {
	LoadContext(ctx context.Context, patientID int32, appointmentID *int32) (*templating.Context, error)
}

type Service struct {
	repo   Repository
	engine *templating.Engine
	loader ContextLoader
}

func NewService(repo Repository, engine *templating.Engine, loader ContextLoader) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		loader: loader,
	}
}

type TemplateRequest struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Channel  string   `json:"channel"`
	Subject  *string  `json:"subject"`
	Body     string   `json:"body"`
	Tags     []string `json:"tags"`
	IsActive *bool    `json:"is_active"`
}

type ListTemplatesParams struct {
	Page     int32
	PageSize int32
	Category string
	Channel  string
	Active   *bool
	Search   string
}

type ListTemplatesResponse struct {
	Data       []models.MessageTemplate `json:"data"`
	Pagination handlers.Pagination      `json:"pagination"`
}

type PreviewRequest struct {
	Body    string              `json:"body"`
	Subject string              `json:"subject,omitempty"`
	Context *templating.Context `json:"context,omitempty"`
}

type PreviewResponse struct {
	Subject *templating.RenderResult `json:"subject,omitempty"`
	Body    templating.RenderResult  `json:"body"`
}

type RenderRequest struct {
	PatientID     int32  `json:"patient_id"`
	AppointmentID *int32 `json:"appointment_id,omitempty"`
}

type RenderResponse struct {
	TemplateID int32                    `json:"template_id"`
	Channel    string                   `json:"channel"`
	Subject    *templating.RenderResult `json:"subject,omitempty"`
	Body       templating.RenderResult  `json:"body"`
}

// validated is a request that passed authoring checks, normalized for storage.
type validated struct {
	name      string
	category  string
	channel   string
	subject   sql.NullString
	body      string
	variables []string
	tags      []string
}

func (s *Service) validate(req TemplateRequest) (validated, error) {
	v := validated{
		name:     strings.TrimSpace(req.Name),
		category: strings.TrimSpace(req.Category),
		channel:  strings.TrimSpace(req.Channel),
		body:     req.Body,
		tags:     req.Tags,
	}
	if v.name == "" {
		return v, validationError(ErrNameRequired, "")
	}
	if strings.TrimSpace(v.body) == "" {
		return v, validationError(ErrBodyRequired, "")
	}
	if !isCategory(v.category) {
		return v, validationError(ErrInvalidCategory, v.category)
	}
	if v.channel == "" {
		v.channel = ChannelSMS
	}
	if v.channel != ChannelSMS && v.channel != ChannelEmail {
		return v, validationError(ErrInvalidChannel, v.channel)
	}
	if v.tags == nil {
		v.tags = []string{}
	}

	parts := []string{v.body}
	if v.channel == ChannelEmail && req.Subject != nil && *req.Subject != "" {
		v.subject = sql.NullString{String: *req.Subject, Valid: true}
		parts = append(parts, *req.Subject)
	}

	vars, err := s.inspect(parts...)
	if err != nil {
		return v, err
	}
	v.variables = vars

	if v.category == CategoryMarketing && !hasOptOut(v.body) {
		return v, validationError(ErrOptOutRequired, "")
	}
	return v, nil
}

// inspect checks that every part parses and references only schema paths,
// and returns the referenced paths in first-seen order.
func (s *Service) inspect(parts ...string) ([]string, error) {
	vars := make([]string, 0)
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			vars = append(vars, path)
		}
	}

	for _, part := range parts {
		if err := s.engine.Validate(part); err != nil {
			return nil, structuralError(err)
		}
		blocks, _ := templating.ParseConditionals(part)
		for _, block := range blocks {
			cond, err := templating.ParseCondition(block.Condition)
			if err != nil {
				return nil, validationError(ErrTemplateInvalid, err.Error())
			}
			add(cond.Path)
		}
		for _, path := range templating.ParseVariables(part) {
			add(path)
		}
	}

	unknown := make([]string, 0)
	for _, path := range vars {
		if !templating.IsKnownVariable(path) {
			unknown = append(unknown, path)
		}
	}
	if len(unknown) > 0 {
		return nil, validationError(ErrUnknownVariable, strings.Join(unknown, ", "))
	}
	return vars, nil
}

func isCategory(id string) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// hasOptOut reports whether body contains an opt-out keyword as a whole word
// in capitals.
func hasOptOut(body string) bool {
	words := strings.FieldsFunc(body, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, word := range words {
		for _, keyword := range optOutKeywords {
			if word == keyword {
				return true
			}
		}
	}
	return false
}

func (s *Service) CreateTemplate(ctx context.Context, req TemplateRequest) (models.MessageTemplate, error) {
	v, err := s.validate(req)
	if err != nil {
		return models.MessageTemplate{}, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return s.repo.CreateTemplate(ctx, models.CreateTemplateParams{
		Name:      v.name,
		Category:  v.category,
		Channel:   v.channel,
		Subject:   v.subject,
		Body:      v.body,
		Variables: v.variables,
		Tags:      v.tags,
		IsActive:  isActive,
	})
}

func (s *Service) GetTemplate(ctx context.Context, id int32) (models.MessageTemplate, error) {
	tmpl, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MessageTemplate{}, notFoundError(id)
		}
		return models.MessageTemplate{}, err
	}
	return tmpl, nil
}

func (s *Service) UpdateTemplate(ctx context.Context, id int32, req TemplateRequest) (models.MessageTemplate, error) {
	existing, err := s.GetTemplate(ctx, id)
	if err != nil {
		return models.MessageTemplate{}, err
	}
	if existing.IsSystem {
		return models.MessageTemplate{}, ErrSystemTemplate
	}

	v, err := s.validate(req)
	if err != nil {
		return models.MessageTemplate{}, err
	}

	isActive := existing.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	tmpl, err := s.repo.UpdateTemplate(ctx, models.UpdateTemplateParams{
		ID:        id,
		Name:      v.name,
		Category:  v.category,
		Channel:   v.channel,
		Subject:   v.subject,
		Body:      v.body,
		Variables: v.variables,
		Tags:      v.tags,
		IsActive:  isActive,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.MessageTemplate{}, notFoundError(id)
	}
	return tmpl, err
}

func (s *Service) DeleteTemplate(ctx context.Context, id int32) error {
	existing, err := s.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return ErrSystemTemplate
	}

	rows, err := s.repo.DeleteTemplate(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFoundError(id)
	}
	return nil
}

func (s *Service) ListTemplates(ctx context.Context, params ListTemplatesParams) (*ListTemplatesResponse, error) {
	page, pageSize, offset := handlers.NormalizePage(params.Page, params.PageSize)

	category := nullString(params.Category)
	channel := nullString(params.Channel)
	search := nullString(params.Search)
	active := sql.NullBool{}
	if params.Active != nil {
		active = sql.NullBool{Bool: *params.Active, Valid: true}
	}

	items, err := s.repo.ListTemplates(ctx, models.ListTemplatesParams{
		Category: category,
		Channel:  channel,
		Active:   active,
		Search:   search,
		Limit:    pageSize,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	totalCount, err := s.repo.CountTemplates(ctx, models.CountTemplatesParams{
		Category: category,
		Channel:  channel,
		Active:   active,
		Search:   search,
	})
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []models.MessageTemplate{}
	}

	return &ListTemplatesResponse{
		Data:       items,
		Pagination: handlers.NewPagination(page, pageSize, totalCount),
	}, nil
}

// Categories lists every category with the number of active templates in it.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	rows, err := s.repo.CountTemplatesByCategory(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}

	result := make([]Category, len(categories))
	for i, c := range categories {
		c.Count = counts[c.ID]
		result[i] = c
	}
	return result, nil
}

// Variables lists the schema entries of the named namespaces, or the whole
// schema when none are named.
func (s *Service) Variables(namespaces []string) []templating.Variable {
	if len(namespaces) == 0 {
		return templating.AllVariables()
	}
	tctx := &templating.Context{}
	for _, ns := range namespaces {
		switch strings.TrimSpace(ns) {
		case templating.NamespacePatient:
			tctx.Patient = &templating.Patient{}
		case templating.NamespaceAppointment:
			tctx.Appointment = &templating.Appointment{}
		case templating.NamespaceClinic:
			tctx.Clinic = &templating.Clinic{}
		}
	}
	return templating.AvailableVariables(tctx)
}

// Preview renders an unsaved body, and subject when given, against the
// supplied context or the sample patient.
func (s *Service) Preview(req PreviewRequest) (*PreviewResponse, error) {
	if strings.TrimSpace(req.Body) == "" {
		return nil, validationError(ErrBodyRequired, "")
	}
	tctx := req.Context
	if tctx == nil {
		tctx = SampleContext()
	}

	resp := &PreviewResponse{Body: s.engine.Render(req.Body, tctx)}
	if req.Subject != "" {
		subject := s.engine.Render(req.Subject, tctx)
		resp.Subject = &subject
	}
	return resp, nil
}

// Render renders a stored template for one patient. Successful renders count
// towards the template's usage.
func (s *Service) Render(ctx context.Context, id int32, req RenderRequest) (*RenderResponse, error) {
	tmpl, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tmpl.IsActive {
		return nil, ErrTemplateInactive
	}

	tctx, err := s.loader.LoadContext(ctx, req.PatientID, req.AppointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("load render context: %w", err)
	}

	resp := &RenderResponse{
		TemplateID: tmpl.ID,
		Channel:    tmpl.Channel,
		Body:       s.engine.Render(tmpl.Body, tctx),
	}
	if tmpl.Subject.Valid {
		subject := s.engine.Render(tmpl.Subject.String, tctx)
		resp.Subject = &subject
	}

	if resp.Body.Success {
		if err := s.repo.IncrementTemplateUsage(ctx, tmpl.ID); err != nil {
			log.Warn().Err(err).Int32("template_id", tmpl.ID).Msg("Failed to record template usage")
		}
	}
	return resp, nil
}

// SeedSystemTemplates validates the bundled templates and upserts them.
func (s *Service) SeedSystemTemplates(ctx context.Context) (int, error) {
	builtin, err := LoadSystemTemplates()
	if err != nil {
		return 0, err
	}

	for _, st := range builtin {
		req := TemplateRequest{
			Name:     st.Name,
			Category: st.Category,
			Channel:  st.Channel,
			Body:     st.Body,
			Tags:     st.Tags,
		}
		if st.Subject != "" {
			req.Subject = &st.Subject
		}
		v, err := s.validate(req)
		if err != nil {
			return 0, fmt.Errorf("system template %s: %w", st.Key, err)
		}

		if _, err := s.repo.UpsertSystemTemplate(ctx, models.UpsertSystemTemplateParams{
			SystemKey: st.Key,
			Name:      v.name,
			Category:  v.category,
			Channel:   v.channel,
			Subject:   v.subject,
			Body:      v.body,
			Variables: v.variables,
			Tags:      v.tags,
		}); err != nil {
			return 0, fmt.Errorf("seed system template %s: %w", st.Key, err)
		}
		log.Debug().Str("system_key", st.Key).Msg("Seeded system template")
	}

	return len(builtin), nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
