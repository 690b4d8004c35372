package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"alfredoptarigan/ats-resume-analyzer/internal/models"
	"alfredoptarigan/ats-resume-analyzer/internal/repositories"
)

const acceptedExtension = ".pdf"

type SubmissionRequest struct {
	JobDescription string
	AnalysisType   string
	Document       *UploadedDocument
	// OwnerID is set only by authenticated transports.
	OwnerID *uint
}

type SubmissionResult struct {
	// AnalysisID is zero when nothing was persisted.
	AnalysisID      uint
	Text            string
	InferenceFailed bool
}

// Analyzer runs one submission: validate, normalize, resolve, infer, persist.
type Analyzer interface {
	Submit(ctx context.Context, req SubmissionRequest) (*SubmissionResult, error)
}

type AnalyzerOptions struct {
	MaxFileSize int64
	// PersistFailedInference stores gateway failure text as the analysis result.
	PersistFailedInference bool
}

type analyzer struct {
	repo       repositories.AnalysisRepository
	normalizer DocumentNormalizer
	catalog    *PromptCatalog
	gateway    InferenceGateway
	index      AnalysisIndex
	opts       AnalyzerOptions
}

// NewAnalyzer wires the pipeline. index may be nil.
func NewAnalyzer(
	repo repositories.AnalysisRepository,
	normalizer DocumentNormalizer,
	catalog *PromptCatalog,
	gateway InferenceGateway,
	index AnalysisIndex,
	opts AnalyzerOptions,
) Analyzer {
	return &analyzer{
		repo:       repo,
		normalizer: normalizer,
		catalog:    catalog,
		gateway:    gateway,
		index:      index,
		opts:       opts,
	}
}

func (a *analyzer) Submit(ctx context.Context, req SubmissionRequest) (*SubmissionResult, error) {
	tmpl, err := a.validate(req)
	if err != nil {
		return nil, err
	}

	log.Printf("📄 Rendering first page of %q (%d bytes)\n", req.Document.Filename, req.Document.Size)
	image, err := a.normalizer.Normalize(ctx, req.Document)
	if err != nil {
		return nil, err
	}

	log.Printf("🤖 Requesting %s analysis from Gemini...\n", tmpl.Key)
	outcome := a.gateway.Infer(ctx, req.JobDescription, image, tmpl)

	result := &SubmissionResult{
		Text:            outcome.Text,
		InferenceFailed: outcome.Failed,
	}

	if outcome.Failed && !a.opts.PersistFailedInference {
		log.Println("⚠️  Inference failed; result not persisted")
		return result, nil
	}

	record := &models.Analysis{
		UserID:         req.OwnerID,
		JobDescription: req.JobDescription,
		AnalysisType:   tmpl.Key,
		Result:         outcome.Text,
	}
	id, err := a.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	result.AnalysisID = id
	log.Printf("💾 Analysis %d saved\n", id)

	if a.index != nil {
		if err := a.index.Index(ctx, record); err != nil {
			log.Printf("⚠️  Warning: Failed to index analysis %d: %v\n", id, err)
		}
	}

	return result, nil
}

func (a *analyzer) validate(req SubmissionRequest) (PromptTemplate, error) {
	doc := req.Document
	if doc == nil || doc.Filename == "" {
		return PromptTemplate{}, ErrDocumentRequired
	}

	if strings.ToLower(filepath.Ext(doc.Filename)) != acceptedExtension {
		return PromptTemplate{}, ErrInvalidFileType
	}

	if a.opts.MaxFileSize > 0 && doc.Size > a.opts.MaxFileSize {
		return PromptTemplate{}, fileTooLarge(a.opts.MaxFileSize)
	}

	if strings.TrimSpace(req.JobDescription) == "" {
		return PromptTemplate{}, ErrJobDescriptionRequired
	}

	return a.catalog.Resolve(strings.TrimSpace(req.AnalysisType))
}
