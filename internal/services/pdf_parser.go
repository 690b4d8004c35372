package services

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type PDFParserService interface {
	// PageCount decodes the whole document and reports its page count.
	PageCount(data []byte) (int, error)
	// FirstPage returns a standalone PDF holding only page 1 of data.
	FirstPage(data []byte) ([]byte, error)
}

type pdfParserService struct{}

var disableConfigDir sync.Once

func NewPDFParserService() PDFParserService {
	disableConfigDir.Do(api.DisableConfigDir)
	return &pdfParserService{}
}

// pdfcpu commands write to their configuration, so every call gets its own.
func trimConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func (p *pdfParserService) PageCount(data []byte) (count int, err error) {
	// the decoder panics on some truncated inputs
	defer func() {
		if r := recover(); r != nil {
			count, err = 0, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	return r.NumPage(), nil
}

func (p *pdfParserService) FirstPage(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Trim(bytes.NewReader(data), &out, []string{"1"}, trimConfig()); err != nil {
		return nil, fmt.Errorf("failed to extract first page: %w", err)
	}
	return out.Bytes(), nil
}
