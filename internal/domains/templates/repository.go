package templates

import (
	"context"

	"github.com/sangkips/patient-reminder-service/internal/domains/templates/models"
)

type Repository interface {
	CreateTemplate(ctx context.Context, params models.CreateTemplateParams) (models.MessageTemplate, error)
	GetTemplate(ctx context.Context, id int32) (models.MessageTemplate, error)
	UpdateTemplate(ctx context.Context, params models.UpdateTemplateParams) (models.MessageTemplate, error)
	DeleteTemplate(ctx context.Context, id int32) (int64, error)
	ListTemplates(ctx context.Context, params models.ListTemplatesParams) ([]models.MessageTemplate, error)
	CountTemplates(ctx context.Context, params models.CountTemplatesParams) (int64, error)
	CountTemplatesByCategory(ctx context.Context) ([]models.CountTemplatesByCategoryRow, error)
	IncrementTemplateUsage(ctx context.Context, id int32) error
	UpsertSystemTemplate(ctx context.Context, params models.UpsertSystemTemplateParams) (models.MessageTemplate, error)
}

type repository struct {
	q *models.Queries
}

func NewRepository(db models.DBTX) Repository {
	return &repository{q: models.New(db)}
}

func (r *repository) CreateTemplate(ctx context.Context, params models.CreateTemplateParams) (models.MessageTemplate, error) {
	return r.q.CreateTemplate(ctx, params)
}

func (r *repository) GetTemplate(ctx context.Context, id int32) (models.MessageTemplate, error) {
	return r.q.GetTemplate(ctx, id)
}

func (r *repository) UpdateTemplate(ctx context.Context, params models.UpdateTemplateParams) (models.MessageTemplate, error) {
	return r.q.UpdateTemplate(ctx, params)
}

func (r *repository) DeleteTemplate(ctx context.Context, id int32) (int64, error) {
	return r.q.DeleteTemplate(ctx, id)
}

func (r *repository) ListTemplates(ctx context.Context, params models.ListTemplatesParams) ([]models.MessageTemplate, error) {
	return r.q.ListTemplates(ctx, params)
}

func (r *repository) CountTemplates(ctx context.Context, params models.CountTemplatesParams) (int64, error) {
	return r.q.CountTemplates(ctx, params)
}

func (r *repository) CountTemplatesByCategory(ctx context.Context) ([]models.CountTemplatesByCategoryRow, error) {
	return r.q.CountTemplatesByCategory(ctx)
}

func (r *repository) IncrementTemplateUsage(ctx context.Context, id int32) error {
	return r.q.IncrementTemplateUsage(ctx, id)
}

func (r *repository) UpsertSystemTemplate(ctx context.Context, params models.UpsertSystemTemplateParams) (models.MessageTemplate, error) {
	return r.q.UpsertSystemTemplate(ctx, params)
}
