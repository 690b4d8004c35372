package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"
)

// Rasterizer renders page 1 of an in-memory PDF.
type Rasterizer interface {
	RenderFirstPage(ctx context.Context, pdf []byte) (image.Image, error)
}

// PopplerRasterizer shells out to poppler's pdftoppm. The PDF goes in on
// stdin and the PNG comes back on stdout, so nothing touches the disk.
type PopplerRasterizer struct {
	binary string
	dpi    int
}

func NewPopplerRasterizer(binary string, dpi int) *PopplerRasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 150
	}
	return &PopplerRasterizer{binary: binary, dpi: dpi}
}

func (r *PopplerRasterizer) RenderFirstPage(ctx context.Context, pdf []byte) (image.Image, error) {
	args := []string{
		"-png",
		"-r", strconv.Itoa(r.dpi),
		"-f", "1",
		"-l", "1",
		"-singlefile",
		"-",
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stdin = bytes.NewReader(pdf)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered page: %w", err)
	}
	return img, nil
}
