package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/sangkips/patient-reminder-service/internal/domains/campaigns/models"
	templatesModels "github.com/sangkips/patient-reminder-service/internal/domains/templates/models"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

func newPreviewService(campaign models.Campaign, tmpl templatesModels.MessageTemplate, loader *mockLoader) *Service {
	return NewService(
		&mockCampaignRepo{campaign: campaign},
		&mockMessagesRepo{},
		&mockTemplatesRepo{template: tmpl},
		&mockAppointmentsRepo{},
		loader,
		templating.New(),
		&mockQueue{},
	)
}

// Test: Basic template rendering with all fields
func TestPersonalizedPreview_BasicRendering(t *testing.T) {
	ctx := context.Background()

	service := newPreviewService(
		models.Campaign{ID: 1, TemplateID: 7},
		templatesModels.MessageTemplate{ID: 7, Body: "Hi {patient.firstName}, {clinic.name} misses you! Call {clinic.phone}.", IsActive: true},
		&mockLoader{contexts: map[int32]*templating.Context{100: patientContext("John", nil)}},
	)

	result, err := service.PersonalizedPreview(ctx, 1, PersonalizedPreviewRequest{PatientID: 100})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := "Hi John, Luxe Spa misses you! Call (555) 987-6543."
	if result.Result.Message != expected {
		t.Errorf("Expected rendered message %q, got %q", expected, result.Result.Message)
	}
	if !result.Result.Success {
		t.Errorf("Expected successful render, got errors %v", result.Result.Errors)
	}
	if result.UsedTemplate != "Hi {patient.firstName}, {clinic.name} misses you! Call {clinic.phone}." {
		t.Errorf("Expected used template to be the campaign template, got %q", result.UsedTemplate)
	}
	if result.PatientID != 100 {
		t.Errorf("Expected patient ID 100, got %d", result.PatientID)
	}
	if result.Result.SegmentCount != 1 {
		t.Errorf("Expected 1 segment, got %d", result.Result.SegmentCount)
	}
}

// Test: Missing values render empty and are reported
func TestPersonalizedPreview_MissingFields(t *testing.T) {
	ctx := context.Background()

	service := newPreviewService(
		models.Campaign{ID: 2, TemplateID: 7},
		templatesModels.MessageTemplate{ID: 7, Body: "Hi {patient.firstName}! Balance: {patient.balance}", IsActive: true},
		&mockLoader{contexts: map[int32]*templating.Context{200: patientContext("Jane", nil)}},
	)

	result, err := service.PersonalizedPreview(ctx, 2, PersonalizedPreviewRequest{PatientID: 200})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Result.Message != "Hi Jane! Balance: " {
		t.Errorf("Expected missing balance to render empty, got %q", result.Result.Message)
	}
	if len(result.Result.Variables.Missing) != 1 || result.Result.Variables.Missing[0] != "patient.balance" {
		t.Errorf("Expected patient.balance reported missing, got %v", result.Result.Variables.Missing)
	}
	if len(result.Result.Warnings) == 0 {
		t.Error("Expected a missing variable warning")
	}
}

// Test: Conditional blocks use the patient's data
func TestPersonalizedPreview_Conditional(t *testing.T) {
	ctx := context.Background()

	service := newPreviewService(
		models.Campaign{ID: 3, TemplateID: 7},
		templatesModels.MessageTemplate{ID: 7, Body: "Hi {patient.firstName}.{if patient.balance > 0} You owe {patient.balance}.{/if}", IsActive: true},
		&mockLoader{contexts: map[int32]*templating.Context{
			1: patientContext("Owing", ptr(150.5)),
			2: patientContext("Clear", ptr(0.0)),
		}},
	)

	owing, err := service.PersonalizedPreview(ctx, 3, PersonalizedPreviewRequest{PatientID: 1})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if owing.Result.Message != "Hi Owing. You owe $150.50." {
		t.Errorf("Unexpected message %q", owing.Result.Message)
	}

	settled, err := service.PersonalizedPreview(ctx, 3, PersonalizedPreviewRequest{PatientID: 2})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if settled.Result.Message != "Hi Clear." {
		t.Errorf("Unexpected message %q", settled.Result.Message)
	}
}

// Test: Override template parameter
func TestPersonalizedPreview_OverrideTemplate(t *testing.T) {
	ctx := context.Background()

	service := newPreviewService(
		models.Campaign{ID: 4, TemplateID: 7},
		templatesModels.MessageTemplate{ID: 7, Body: "Original: Hello {patient.firstName}", IsActive: true},
		&mockLoader{contexts: map[int32]*templating.Context{300: patientContext("Alice", nil)}},
	)

	override := "Override: Hi {patient.firstName} from {clinic.name}!"
	result, err := service.PersonalizedPreview(ctx, 4, PersonalizedPreviewRequest{
		PatientID:        300,
		OverrideTemplate: &override,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Result.Message != "Override: Hi Alice from Luxe Spa!" {
		t.Errorf("Unexpected message %q", result.Result.Message)
	}
	if result.UsedTemplate != override {
		t.Errorf("Expected used template to be the override, got %q", result.UsedTemplate)
	}
}

// Test: Empty override falls back to the campaign template
func TestPersonalizedPreview_EmptyOverrideTemplate(t *testing.T) {
	ctx := context.Background()

	service := newPreviewService(
		models.Campaign{ID: 5, TemplateID: 7},
		templatesModels.MessageTemplate{ID: 7, Body: "Base: {patient.firstName}", IsActive: true},
		&mockLoader{contexts: map[int32]*templating.Context{1: patientContext("Bob", nil)}},
	)

	empty := ""
	result, err := service.PersonalizedPreview(ctx, 5, PersonalizedPreviewRequest{PatientID: 1, OverrideTemplate: &empty})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Result.Message != "Base: Bob" {
		t.Errorf("Expected base template to be used, got %q", result.Result.Message)
	}
}

// Test: A structurally broken override is reported, not rendered
func TestPersonalizedPreview_BrokenOverride(t *testing.T) {
	ctx := context.Background()

	service := newPreviewService(
		models.Campaign{ID: 6, TemplateID: 7},
		templatesModels.MessageTemplate{ID: 7, Body: "Base", IsActive: true},
		&mockLoader{contexts: map[int32]*templating.Context{1: patientContext("Bob", nil)}},
	)

	broken := "{if patient.balance > 0}You owe money"
	result, err := service.PersonalizedPreview(ctx, 6, PersonalizedPreviewRequest{PatientID: 1, OverrideTemplate: &broken})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Result.Success {
		t.Error("Expected unsuccessful render")
	}
	if len(result.Result.Errors) == 0 || !strings.Contains(result.Result.Errors[0], templating.ErrMsgUnterminatedConditional) {
		t.Errorf("Expected an unterminated conditional error, got %v", result.Result.Errors)
	}
}

// Test: Email templates also render their subject
func TestPersonalizedPreview_EmailSubject(t *testing.T) {
	ctx := context.Background()

	service := newPreviewService(
		models.Campaign{ID: 7, TemplateID: 9, Channel: "email"},
		templatesModels.MessageTemplate{
			ID:       9,
			Channel:  "email",
			Subject:  sql.NullString{String: "Forms for {patient.firstName}", Valid: true},
			Body:     "Please complete your forms.",
			IsActive: true,
		},
		&mockLoader{contexts: map[int32]*templating.Context{1: patientContext("Eve", nil)}},
	)

	result, err := service.PersonalizedPreview(ctx, 7, PersonalizedPreviewRequest{PatientID: 1})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Subject == nil || result.Subject.Message != "Forms for Eve" {
		t.Errorf("Unexpected subject %+v", result.Subject)
	}
}

// Test: Campaign not found
func TestPersonalizedPreview_CampaignNotFound(t *testing.T) {
	service := NewService(
		&mockCampaignRepo{err: sql.ErrNoRows},
		&mockMessagesRepo{},
		&mockTemplatesRepo{},
		&mockAppointmentsRepo{},
		&mockLoader{},
		templating.New(),
		&mockQueue{},
	)

	_, err := service.PersonalizedPreview(context.Background(), 999, PersonalizedPreviewRequest{PatientID: 1})
	if !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("Expected ErrCampaignNotFound, got %v", err)
	}
}

// Test: Patient not found
func TestPersonalizedPreview_PatientNotFound(t *testing.T) {
	service := newPreviewService(
		models.Campaign{ID: 1, TemplateID: 7},
		templatesModels.MessageTemplate{ID: 7, Body: "Hi", IsActive: true},
		&mockLoader{contexts: map[int32]*templating.Context{}},
	)

	_, err := service.PersonalizedPreview(context.Background(), 1, PersonalizedPreviewRequest{PatientID: 999})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("Expected ErrPatientNotFound, got %v", err)
	}
}

// Test: Campaign template was deleted
func TestPersonalizedPreview_TemplateNotFound(t *testing.T) {
	service := newPreviewService(
		models.Campaign{ID: 1, TemplateID: 8},
		templatesModels.MessageTemplate{ID: 7, Body: "Hi", IsActive: true},
		&mockLoader{},
	)

	_, err := service.PersonalizedPreview(context.Background(), 1, PersonalizedPreviewRequest{PatientID: 1})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Expected ErrTemplateNotFound, got %v", err)
	}
}

// Test: Database errors pass through wrapped
func TestPersonalizedPreview_DatabaseErrors(t *testing.T) {
	campaignErr := NewService(
		&mockCampaignRepo{err: errDatabase},
		&mockMessagesRepo{},
		&mockTemplatesRepo{},
		&mockAppointmentsRepo{},
		&mockLoader{},
		templating.New(),
		&mockQueue{},
	)
	if _, err := campaignErr.PersonalizedPreview(context.Background(), 1, PersonalizedPreviewRequest{PatientID: 1}); !errors.Is(err, errDatabase) {
		t.Errorf("Expected campaign database error, got %v", err)
	}

	loaderErr := newPreviewService(
		models.Campaign{ID: 1, TemplateID: 7},
		templatesModels.MessageTemplate{ID: 7, Body: "Hi", IsActive: true},
		&mockLoader{err: errDatabase},
	)
	_, err := loaderErr.PersonalizedPreview(context.Background(), 1, PersonalizedPreviewRequest{PatientID: 1})
	if !errors.Is(err, errDatabase) {
		t.Errorf("Expected loader database error, got %v", err)
	}
	if errors.Is(err, ErrPatientNotFound) {
		t.Error("Database error should not be reported as a missing patient")
	}
}
