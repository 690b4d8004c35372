package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"alfredoptarigan/ats-resume-analyzer/internal/models"
	"alfredoptarigan/ats-resume-analyzer/internal/repositories"
)

type analyzerFixture struct {
	repo       *repositories.MemoryAnalysisRepository
	normalizer *fakeNormalizer
	gateway    *fakeGateway
	index      *fakeIndex
	analyzer   Analyzer
}

func newAnalyzerFixture(outcome InferenceOutcome, persistFailed bool) *analyzerFixture {
	f := &analyzerFixture{
		repo:       repositories.NewMemoryAnalysisRepository(),
		normalizer: &fakeNormalizer{},
		gateway:    &fakeGateway{outcome: outcome},
		index:      &fakeIndex{},
	}
	f.analyzer = NewAnalyzer(f.repo, f.normalizer, NewPromptCatalog(), f.gateway, f.index, AnalyzerOptions{
		MaxFileSize:            16 * 1024 * 1024,
		PersistFailedInference: persistFailed,
	})
	return f
}

func TestSubmitMatchAnalysis(t *testing.T) {
	f := newAnalyzerFixture(InferenceOutcome{Text: "Percentage match: 78%\nMissing keywords: Kubernetes"}, true)

	res, err := f.analyzer.Submit(context.Background(), SubmissionRequest{
		JobDescription: "Senior Go engineer",
		AnalysisType:   PromptMatch,
		Document:       NewUploadedDocument("resume.pdf", []byte("%PDF-1.4")),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.InferenceFailed {
		t.Fatalf("unexpected failure")
	}
	if !strings.HasPrefix(res.Text, "Percentage match: 78%") {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if f.repo.Count() != 1 {
		t.Fatalf("expected one stored analysis, got %d", f.repo.Count())
	}

	stored, err := f.repo.FindByID(context.Background(), res.AnalysisID, models.AnonymousOwner())
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.AnalysisType != PromptMatch || stored.JobDescription != "Senior Go engineer" || stored.Result != res.Text {
		t.Fatalf("unexpected stored analysis: %+v", stored)
	}
	if f.gateway.lastTmpl.Key != PromptMatch || f.gateway.lastText != "Senior Go engineer" {
		t.Fatalf("unexpected gateway call: %q %q", f.gateway.lastTmpl.Key, f.gateway.lastText)
	}
	if len(f.index.indexed) != 1 || f.index.indexed[0] != res.AnalysisID {
		t.Fatalf("expected analysis to be indexed, got %v", f.index.indexed)
	}
}

func TestSubmitRecordsOwner(t *testing.T) {
	f := newAnalyzerFixture(InferenceOutcome{Text: "ok"}, true)
	owner := uint(7)

	res, err := f.analyzer.Submit(context.Background(), SubmissionRequest{
		JobDescription: "jd",
		AnalysisType:   PromptProfile,
		Document:       NewUploadedDocument("CV.PDF", []byte("%PDF-1.4")),
		OwnerID:        &owner,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := f.repo.FindByID(context.Background(), res.AnalysisID, models.UserOwner(8)); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected other owner to get not found, got %v", err)
	}
	if _, err := f.repo.FindByID(context.Background(), res.AnalysisID, models.AnonymousOwner()); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected anonymous scope to get not found, got %v", err)
	}
	if _, err := f.repo.FindByID(context.Background(), res.AnalysisID, models.UserOwner(owner)); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	pdf := NewUploadedDocument("resume.pdf", []byte("%PDF-1.4"))

	tests := []struct {
		name string
		req  SubmissionRequest
		want error
	}{
		{"no document", SubmissionRequest{JobDescription: "jd", AnalysisType: PromptMatch}, ErrDocumentRequired},
		{"empty filename", SubmissionRequest{JobDescription: "jd", AnalysisType: PromptMatch, Document: NewUploadedDocument("", []byte("x"))}, ErrDocumentRequired},
		{"wrong extension", SubmissionRequest{JobDescription: "jd", AnalysisType: PromptMatch, Document: NewUploadedDocument("resume.docx", []byte("x"))}, ErrInvalidFileType},
		{"too large", SubmissionRequest{JobDescription: "jd", AnalysisType: PromptMatch, Document: &UploadedDocument{Filename: "big.pdf", Size: 16*1024*1024 + 1}}, ErrFileTooLarge},
		{"blank job description", SubmissionRequest{JobDescription: "  \n\t", AnalysisType: PromptMatch, Document: pdf}, ErrJobDescriptionRequired},
		{"unknown analysis type", SubmissionRequest{JobDescription: "jd", AnalysisType: "foo", Document: pdf}, ErrInvalidPromptKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAnalyzerFixture(InferenceOutcome{Text: "unused"}, true)

			_, err := f.analyzer.Submit(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if f.normalizer.calls != 0 || f.gateway.calls != 0 {
				t.Fatalf("no pipeline stage may run on invalid input (normalize=%d infer=%d)", f.normalizer.calls, f.gateway.calls)
			}
			if f.repo.Count() != 0 {
				t.Fatalf("nothing may be stored on invalid input")
			}
		})
	}
}

func TestSubmitFileTooLargeMessage(t *testing.T) {
	f := newAnalyzerFixture(InferenceOutcome{}, true)
	_, err := f.analyzer.Submit(context.Background(), SubmissionRequest{
		JobDescription: "jd",
		AnalysisType:   PromptMatch,
		Document:       &UploadedDocument{Filename: "big.pdf", Size: 20 * 1024 * 1024},
	})
	if err == nil || err.Error() != "File size exceeds the maximum allowed size of 16 MB" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubmitUnreadablePDF(t *testing.T) {
	f := newAnalyzerFixture(InferenceOutcome{Text: "unused"}, true)
	f.normalizer.err = documentProcessing(errors.New("document has no pages"))

	_, err := f.analyzer.Submit(context.Background(), SubmissionRequest{
		JobDescription: "jd",
		AnalysisType:   PromptProfile,
		Document:       NewUploadedDocument("empty.pdf", []byte("%PDF-1.4")),
	})
	if !errors.Is(err, ErrDocumentProcessing) {
		t.Fatalf("expected ErrDocumentProcessing, got %v", err)
	}
	if f.gateway.calls != 0 || f.repo.Count() != 0 {
		t.Fatalf("inference and persistence must not run")
	}
}

func TestSubmitInferenceFailurePersistedByDefault(t *testing.T) {
	f := newAnalyzerFixture(InferenceOutcome{Text: InferenceErrorPrefix + "quota exceeded", Failed: true}, true)

	res, err := f.analyzer.Submit(context.Background(), SubmissionRequest{
		JobDescription: "jd",
		AnalysisType:   PromptMatch,
		Document:       NewUploadedDocument("resume.pdf", []byte("%PDF-1.4")),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.InferenceFailed || !strings.HasPrefix(res.Text, InferenceErrorPrefix) {
		t.Fatalf("unexpected result %+v", res)
	}
	if f.repo.Count() != 1 || res.AnalysisID == 0 {
		t.Fatalf("expected failure text to be stored")
	}
}

func TestSubmitInferenceFailureNotPersisted(t *testing.T) {
	f := newAnalyzerFixture(InferenceOutcome{Text: InferenceErrorPrefix + "timeout", Failed: true}, false)

	res, err := f.analyzer.Submit(context.Background(), SubmissionRequest{
		JobDescription: "jd",
		AnalysisType:   PromptMatch,
		Document:       NewUploadedDocument("resume.pdf", []byte("%PDF-1.4")),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.AnalysisID != 0 || f.repo.Count() != 0 {
		t.Fatalf("failure must not be stored when the policy is off")
	}
	if len(f.index.indexed) != 0 {
		t.Fatalf("nothing should be indexed")
	}
}

func TestSubmitIndexFailureIsNotFatal(t *testing.T) {
	f := newAnalyzerFixture(InferenceOutcome{Text: "ok"}, true)
	f.index.indexErr = errBoom

	res, err := f.analyzer.Submit(context.Background(), SubmissionRequest{
		JobDescription: "jd",
		AnalysisType:   PromptMatch,
		Document:       NewUploadedDocument("resume.pdf", []byte("%PDF-1.4")),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.AnalysisID == 0 {
		t.Fatalf("analysis should still be stored")
	}
}
