package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"alfredoptarigan/ats-resume-analyzer/internal/models"
)

// buildPDF assembles a minimal PDF with the given number of blank pages and
// a correct cross-reference table.
func buildPDF(pages int) []byte {
	var objects []string
	kids := ""
	for i := 0; i < pages; i++ {
		if i > 0 {
			kids += " "
		}
		kids += fmt.Sprintf("%d 0 R", i+3)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages),
	)
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

type fakeParser struct {
	pages    int
	err      error
	trimErr  error
	trimmed  []byte
	calls    int
	lastData []byte
}

func (f *fakeParser) PageCount(data []byte) (int, error) {
	f.calls++
	f.lastData = data
	return f.pages, f.err
}

func (f *fakeParser) FirstPage(data []byte) ([]byte, error) {
	if f.trimErr != nil {
		return nil, f.trimErr
	}
	if f.trimmed != nil {
		return f.trimmed, nil
	}
	return data, nil
}

type fakeRasterizer struct {
	err   error
	calls int
	pdfs  [][]byte
}

func (f *fakeRasterizer) RenderFirstPage(ctx context.Context, pdf []byte) (image.Image, error) {
	f.calls++
	f.pdfs = append(f.pdfs, pdf)
	if f.err != nil {
		return nil, f.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	return img, nil
}

type fakeNormalizer struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeNormalizer) Normalize(ctx context.Context, doc *UploadedDocument) (*ImagePayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &ImagePayload{MIMEType: ImageMIMEType, Data: []byte{0xff, 0xd8, 0xff}}, nil
}

type fakeGateway struct {
	outcome  InferenceOutcome
	calls    int
	lastText string
	lastTmpl PromptTemplate
}

func (f *fakeGateway) Infer(ctx context.Context, contextText string, image *ImagePayload, tmpl PromptTemplate) InferenceOutcome {
	f.calls++
	f.lastText = contextText
	f.lastTmpl = tmpl
	return f.outcome
}

type fakeGemini struct {
	text        string
	err         error
	parts       []string
	image       *ImagePayload
	hadDeadline bool
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (f *fakeGemini) GenerateFromImage(ctx context.Context, contextText string, image *ImagePayload, instruction string) (string, error) {
	_, f.hadDeadline = ctx.Deadline()
	f.parts = []string{contextText, instruction}
	f.image = image
	return f.text, f.err
}

type fakeIndex struct {
	indexed  []uint
	removed  []uint
	results  []uint
	indexErr error
	owner    models.OwnerScope
}

func (f *fakeIndex) InitCollection(ctx context.Context) error { return nil }

func (f *fakeIndex) Index(ctx context.Context, analysis *models.Analysis) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexed = append(f.indexed, analysis.ID)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, query string, limit int, owner models.OwnerScope) ([]uint, error) {
	f.owner = owner
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func (f *fakeIndex) Remove(ctx context.Context, analysisID uint) error {
	f.removed = append(f.removed, analysisID)
	return nil
}

var errBoom = errors.New("boom")
