package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/domain"
	"tradeflow/internal/mapping"
	"tradeflow/internal/pdfform"
	"tradeflow/internal/port"
	"tradeflow/internal/service"
	"tradeflow/mocks"
)

func extractedData() *domain.ExtractedData {
	return &domain.ExtractedData{
		CustomerName:  "Jane Doe",
		InvoiceNumber: "INV-42",
		Total:         150,
		LineItems:     []domain.LineItem{},
	}
}

func stubTemplate(id uuid.UUID, saved domain.MappingList) *domain.Template {
	return &domain.Template{
		ID:            id,
		Name:          "Service Form",
		Bucket:        "test-bucket",
		ObjectKey:     "templates/" + id.String() + "/form.pdf",
		SavedMappings: saved,
	}
}

func TestPrepareUsesSavedMappings(t *testing.T) {
	id := uuid.New()
	saved := domain.MappingList{{TargetField: "BillTo_Name", SourceKey: "customerName"}}
	tpl := stubTemplate(id, saved)

	repo := new(mocks.MockTemplateRepo)
	storage := new(mocks.MockObjectStorage)
	matcher := new(mocks.MockFieldMatcher)
	repo.On("GetByID", mock.Anything, id).Return(tpl, nil)
	storage.On("Download", mock.Anything, tpl.Bucket, tpl.ObjectKey).Return(formTemplate(), nil)

	svc := service.NewGenerationService(repo, storage, mapping.NewResolver(matcher))
	configs, err := svc.Prepare(context.Background(), []uuid.UUID{id}, extractedData())

	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, []domain.FieldMapping(saved), configs[0].Mappings)
	// A saved mapping short-circuits the cascade; no smart match happens.
	matcher.AssertNumberOfCalls(t, "Suggest", 0)
}

func TestPrepareFallsBackToSuggestion(t *testing.T) {
	id := uuid.New()
	tpl := stubTemplate(id, nil)
	suggested := []domain.FieldMapping{{TargetField: "Total", SourceKey: "total"}}

	repo := new(mocks.MockTemplateRepo)
	storage := new(mocks.MockObjectStorage)
	matcher := new(mocks.MockFieldMatcher)
	repo.On("GetByID", mock.Anything, id).Return(tpl, nil)
	storage.On("Download", mock.Anything, tpl.Bucket, tpl.ObjectKey).Return(formTemplate(), nil)
	matcher.On("Suggest", mock.Anything, []string{"BillTo_Name", "Total"}, mock.Anything).
		Return(port.Suggestion{Mappings: suggested})

	svc := service.NewGenerationService(repo, storage, mapping.NewResolver(matcher))
	configs, err := svc.Prepare(context.Background(), []uuid.UUID{id}, extractedData())

	require.NoError(t, err)
	assert.Equal(t, suggested, configs[0].Mappings)
}

func TestPrepareHeuristicWhenSuggestionUnavailable(t *testing.T) {
	id := uuid.New()
	tpl := stubTemplate(id, nil)

	repo := new(mocks.MockTemplateRepo)
	storage := new(mocks.MockObjectStorage)
	matcher := new(mocks.MockFieldMatcher)
	repo.On("GetByID", mock.Anything, id).Return(tpl, nil)
	storage.On("Download", mock.Anything, tpl.Bucket, tpl.ObjectKey).Return(formTemplate(), nil)
	matcher.On("Suggest", mock.Anything, mock.Anything, mock.Anything).Return(port.Suggestion{})

	svc := service.NewGenerationService(repo, storage, mapping.NewResolver(matcher))
	configs, err := svc.Prepare(context.Background(), []uuid.UUID{id}, extractedData())

	require.NoError(t, err)
	assert.Contains(t, configs[0].Mappings, domain.FieldMapping{TargetField: "BillTo_Name", SourceKey: "customerName"})
	assert.Contains(t, configs[0].Mappings, domain.FieldMapping{TargetField: "Total", SourceKey: "total"})
}

func TestPrepareWithoutDataProposesNothing(t *testing.T) {
	id := uuid.New()
	tpl := stubTemplate(id, nil)

	repo := new(mocks.MockTemplateRepo)
	storage := new(mocks.MockObjectStorage)
	matcher := new(mocks.MockFieldMatcher)
	repo.On("GetByID", mock.Anything, id).Return(tpl, nil)
	storage.On("Download", mock.Anything, tpl.Bucket, tpl.ObjectKey).Return(formTemplate(), nil)

	svc := service.NewGenerationService(repo, storage, mapping.NewResolver(matcher))
	configs, err := svc.Prepare(context.Background(), []uuid.UUID{id}, nil)

	require.NoError(t, err)
	assert.Empty(t, configs[0].Mappings)
	matcher.AssertNumberOfCalls(t, "Suggest", 0)
}

func TestPrepareDefaultsFilenamePattern(t *testing.T) {
	id := uuid.New()
	tpl := stubTemplate(id, domain.MappingList{{TargetField: "Total", SourceKey: "total"}})

	repo := new(mocks.MockTemplateRepo)
	storage := new(mocks.MockObjectStorage)
	repo.On("GetByID", mock.Anything, id).Return(tpl, nil)
	storage.On("Download", mock.Anything, tpl.Bucket, tpl.ObjectKey).Return(formTemplate(), nil)

	svc := service.NewGenerationService(repo, storage, mapping.NewResolver(new(mocks.MockFieldMatcher)))
	configs, err := svc.Prepare(context.Background(), []uuid.UUID{id}, extractedData())

	require.NoError(t, err)
	assert.Equal(t, "{TemplateName}_{CustomerName}_{Date}", configs[0].FilenamePattern)
}

func TestPrepareAbortsOnMalformedTemplate(t *testing.T) {
	id := uuid.New()
	tpl := stubTemplate(id, nil)

	repo := new(mocks.MockTemplateRepo)
	storage := new(mocks.MockObjectStorage)
	repo.On("GetByID", mock.Anything, id).Return(tpl, nil)
	storage.On("Download", mock.Anything, tpl.Bucket, tpl.ObjectKey).Return([]byte("not a pdf"), nil)

	svc := service.NewGenerationService(repo, storage, mapping.NewResolver(new(mocks.MockFieldMatcher)))
	_, err := svc.Prepare(context.Background(), []uuid.UUID{id}, extractedData())
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestGenerateFillsAndPersistsSettings(t *testing.T) {
	id := uuid.New()
	tpl := stubTemplate(id, nil)
	mappings := []domain.FieldMapping{{TargetField: "BillTo_Name", SourceKey: "customerName"}}

	repo := new(mocks.MockTemplateRepo)
	storage := new(mocks.MockObjectStorage)
	repo.On("GetByID", mock.Anything, id).Return(tpl, nil)
	storage.On("Download", mock.Anything, tpl.Bucket, tpl.ObjectKey).Return(formTemplate(), nil)
	repo.On("UpdateSettings", mock.Anything, id, domain.TemplateSettings{
		Mappings:        mappings,
		FilenamePattern: "{TemplateName}_{InvoiceNumber}",
	}).Return(nil)

	svc := service.NewGenerationService(repo, storage, mapping.NewResolver(new(mocks.MockFieldMatcher)))
	artifacts, err := svc.Generate(context.Background(), []service.RunRequest{{
		TemplateID:      id,
		Mappings:        mappings,
		FilenamePattern: "{TemplateName}_{InvoiceNumber}",
	}}, extractedData())

	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "ServiceForm_INV-42.pdf", artifacts[0].Filename)

	values, err := pdfform.ReadFieldValues(artifacts[0].Bytes)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", values["BillTo_Name"])

	repo.AssertExpectations(t)
}

func TestGenerateFailsWholeRunOnFillError(t *testing.T) {
	good, bad := uuid.New(), uuid.New()
	goodTpl := stubTemplate(good, nil)
	badTpl := stubTemplate(bad, nil)

	repo := new(mocks.MockTemplateRepo)
	storage := new(mocks.MockObjectStorage)
	repo.On("GetByID", mock.Anything, good).Return(goodTpl, nil)
	repo.On("GetByID", mock.Anything, bad).Return(badTpl, nil)
	storage.On("Download", mock.Anything, goodTpl.Bucket, goodTpl.ObjectKey).Return(formTemplate(), nil)
	storage.On("Download", mock.Anything, badTpl.Bucket, badTpl.ObjectKey).Return([]byte("garbage"), nil)

	svc := service.NewGenerationService(repo, storage, mapping.NewResolver(new(mocks.MockFieldMatcher)))
	_, err := svc.Generate(context.Background(), []service.RunRequest{
		{TemplateID: good}, {TemplateID: bad},
	}, extractedData())

	require.Error(t, err)
	// No settings are written for a failed run.
	repo.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateSurvivesSettingsWriteFailure(t *testing.T) {
	id := uuid.New()
	tpl := stubTemplate(id, nil)

	repo := new(mocks.MockTemplateRepo)
	storage := new(mocks.MockObjectStorage)
	repo.On("GetByID", mock.Anything, id).Return(tpl, nil)
	storage.On("Download", mock.Anything, tpl.Bucket, tpl.ObjectKey).Return(formTemplate(), nil)
	repo.On("UpdateSettings", mock.Anything, id, mock.Anything).Return(assert.AnError)

	svc := service.NewGenerationService(repo, storage, mapping.NewResolver(new(mocks.MockFieldMatcher)))
	artifacts, err := svc.Generate(context.Background(), []service.RunRequest{{TemplateID: id}}, extractedData())

	require.NoError(t, err)
	assert.Len(t, artifacts, 1)
}
