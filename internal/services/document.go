package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"log"
	"os/exec"
)

const ImageMIMEType = "image/jpeg"

var errRenderFailed = errors.New("could not render the first page")

// UploadedDocument is a resume as received from the client. Open is called at
// most once, after the declared size has been checked.
type UploadedDocument struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

func NewUploadedDocument(filename string, data []byte) *UploadedDocument {
	return &UploadedDocument{
		Filename: filename,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// ImagePayload is the rendered first page, ready for the model.
type ImagePayload struct {
	MIMEType string
	Data     []byte
}

type DocumentNormalizer interface {
	Normalize(ctx context.Context, doc *UploadedDocument) (*ImagePayload, error)
}

type documentNormalizer struct {
	parser      PDFParserService
	rasterizer  Rasterizer
	maxSize     int64
	jpegQuality int
}

func NewDocumentNormalizer(
	parser PDFParserService,
	rasterizer Rasterizer,
	maxSize int64,
	jpegQuality int,
) DocumentNormalizer {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = jpeg.DefaultQuality
	}
	return &documentNormalizer{
		parser:      parser,
		rasterizer:  rasterizer,
		maxSize:     maxSize,
		jpegQuality: jpegQuality,
	}
}

func (n *documentNormalizer) Normalize(ctx context.Context, doc *UploadedDocument) (*ImagePayload, error) {
	data, err := n.read(doc)
	if err != nil {
		return nil, err
	}

	pages, err := n.parser.PageCount(data)
	if err != nil {
		return nil, documentProcessing(err)
	}
	if pages == 0 {
		return nil, documentProcessing(errors.New("document has no pages"))
	}

	firstPage, err := n.parser.FirstPage(data)
	if err != nil {
		return nil, documentProcessing(err)
	}

	img, err := n.rasterizer.RenderFirstPage(ctx, firstPage)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("rasterizer unavailable: %w", err)
		}
		// rasterizer output stays in the server log
		log.Printf("⚠️  Failed to render %s: %v\n", doc.Filename, err)
		return nil, documentProcessing(errRenderFailed)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: n.jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode page image: %w", err)
	}

	return &ImagePayload{MIMEType: ImageMIMEType, Data: buf.Bytes()}, nil
}

func (n *documentNormalizer) read(doc *UploadedDocument) ([]byte, error) {
	if doc == nil || doc.Open == nil {
		return nil, ErrDocumentRequired
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer rc.Close()

	reader := io.Reader(rc)
	if n.maxSize > 0 {
		reader = io.LimitReader(rc, n.maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if n.maxSize > 0 && int64(len(data)) > n.maxSize {
		return nil, fileTooLarge(n.maxSize)
	}
	if len(data) == 0 {
		return nil, documentProcessing(errors.New("document is empty"))
	}
	return data, nil
}
