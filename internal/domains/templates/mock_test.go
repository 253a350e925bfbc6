package templates

import (
	"context"
	"database/sql"
	"time"

	"github.com/sangkips/patient-reminder-service/internal/domains/templates/models"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

// mockRepository keeps templates in memory.
type mockRepository struct {
	templates map[int32]models.MessageTemplate
	nextID    int32

	createCalls    []models.CreateTemplateParams
	upsertCalls    []models.UpsertSystemTemplateParams
	usageCalls     []int32
	listParams     models.ListTemplatesParams
	categoryCounts []models.CountTemplatesByCategoryRow

	listError error
}

func newMockRepository(seed ...models.MessageTemplate) *mockRepository {
	m := &mockRepository{templates: make(map[int32]models.MessageTemplate), nextID: 1}
	for _, t := range seed {
		m.templates[t.ID] = t
		if t.ID >= m.nextID {
			m.nextID = t.ID + 1
		}
	}
	return m
}

func (m *mockRepository) CreateTemplate(ctx context.Context, params models.CreateTemplateParams) (models.MessageTemplate, error) {
	m.createCalls = append(m.createCalls, params)
	t := models.MessageTemplate{
		ID:        m.nextID,
		Name:      params.Name,
		Category:  params.Category,
		Channel:   params.Channel,
		Subject:   params.Subject,
		Body:      params.Body,
		Variables: params.Variables,
		Tags:      params.Tags,
		IsActive:  params.IsActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.templates[t.ID] = t
	m.nextID++
	return t, nil
}

func (m *mockRepository) GetTemplate(ctx context.Context, id int32) (models.MessageTemplate, error) {
	t, ok := m.templates[id]
	if !ok {
		return models.MessageTemplate{}, sql.ErrNoRows
	}
	return t, nil
}

func (m *mockRepository) UpdateTemplate(ctx context.Context, params models.UpdateTemplateParams) (models.MessageTemplate, error) {
	t, ok := m.templates[params.ID]
	if !ok || t.IsSystem {
		return models.MessageTemplate{}, sql.ErrNoRows
	}
	t.Name = params.Name
	t.Category = params.Category
	t.Channel = params.Channel
	t.Subject = params.Subject
	t.Body = params.Body
	t.Variables = params.Variables
	t.Tags = params.Tags
	t.IsActive = params.IsActive
	m.templates[t.ID] = t
	return t, nil
}

func (m *mockRepository) DeleteTemplate(ctx context.Context, id int32) (int64, error) {
	t, ok := m.templates[id]
	if !ok || t.IsSystem {
		return 0, nil
	}
	delete(m.templates, id)
	return 1, nil
}

func (m *mockRepository) ListTemplates(ctx context.Context, params models.ListTemplatesParams) ([]models.MessageTemplate, error) {
	m.listParams = params
	if m.listError != nil {
		return nil, m.listError
	}
	var items []models.MessageTemplate
	for _, t := range m.templates {
		if params.Category.Valid && t.Category != params.Category.String {
			continue
		}
		items = append(items, t)
	}
	return items, nil
}

func (m *mockRepository) CountTemplates(ctx context.Context, params models.CountTemplatesParams) (int64, error) {
	var n int64
	for _, t := range m.templates {
		if params.Category.Valid && t.Category != params.Category.String {
			continue
		}
		n++
	}
	return n, nil
}

func (m *mockRepository) CountTemplatesByCategory(ctx context.Context) ([]models.CountTemplatesByCategoryRow, error) {
	return m.categoryCounts, nil
}

func (m *mockRepository) IncrementTemplateUsage(ctx context.Context, id int32) error {
	m.usageCalls = append(m.usageCalls, id)
	return nil
}

func (m *mockRepository) UpsertSystemTemplate(ctx context.Context, params models.UpsertSystemTemplateParams) (models.MessageTemplate, error) {
	m.upsertCalls = append(m.upsertCalls, params)
	return models.MessageTemplate{
		SystemKey: sql.NullString{String: params.SystemKey, Valid: true},
		Name:      params.Name,
		IsSystem:  true,
	}, nil
}

var _ Repository = (*mockRepository)(nil)

// mockLoader serves a fixed context for one patient.
type mockLoader struct {
	patientID int32
	context   *templating.Context
	err       error

	appointmentIDs []*int32
}

func (m *mockLoader) LoadContext(ctx context.Context, patientID int32, appointmentID *int32) (*templating.Context, error) {
	m.appointmentIDs = append(m.appointmentIDs, appointmentID)
	if m.err != nil {
		return nil, m.err
	}
	if patientID != m.patientID {
		return nil, sql.ErrNoRows
	}
	return m.context, nil
}

var _ ContextLoader = (*mockLoader)(nil)

func newTestService(repo *mockRepository, loader *mockLoader) *Service {
	if loader == nil {
		loader = &mockLoader{}
	}
	return NewService(repo, templating.New(), loader)
}

func ptr[T any](v T) *T {
	return &v
}
