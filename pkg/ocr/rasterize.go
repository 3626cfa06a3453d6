package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

// Rasterizer renders PDF bytes into ordered page images.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([]image.Image, error)
}

// Runner lets tests stub external commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Log zerolog.Logger
}

// Run executes name with args and captures both streams.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	ev := r.Log.Debug()
	if err != nil {
		ev = r.Log.Error().Err(err).Str("stderr", snippet(errb.String(), 8<<10))
	}
	ev.Str("cmd", name).Str("args", strings.Join(args, " ")).Dur("duration", time.Since(start)).Msg("exec")
	return out.Bytes(), errb.Bytes(), err
}

// Pdftoppm rasterizes with poppler's pdftoppm.
type Pdftoppm struct {
	Bin      string
	DPI      int
	MaxPages int
	Runner   Runner
}

// Rasterize writes pdf to a temp dir, renders up to MaxPages PNG pages and
// decodes them in page order.
func (p *Pdftoppm) Rasterize(ctx context.Context, pdf []byte) ([]image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "pfa-pdf-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, err
	}
	bin := p.Bin
	if bin == "" {
		bin = "pdftoppm"
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 300
	}
	args := []string{"-r", strconv.Itoa(dpi), "-png"}
	if p.MaxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(p.MaxPages))
	}
	prefix := filepath.Join(tmpDir, "page")
	args = append(args, in, prefix)
	if _, errb, err := p.Runner.Run(ctx, bin, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, snippet(strings.TrimSpace(string(errb)), 200))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		return nil, ErrNoPages
	}
	sort.Slice(matches, func(i, j int) bool { return pageNumber(matches[i]) < pageNumber(matches[j]) })
	pages := make([]image.Image, 0, len(matches))
	for _, m := range matches {
		img, err := imaging.Open(m)
		if err != nil {
			return nil, fmt.Errorf("decode page %s: %w", filepath.Base(m), err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}

// pageNumber extracts N from ".../page-N.png" (pdftoppm may zero-pad N).
func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	i := strings.LastIndexByte(base, '-')
	n, _ := strconv.Atoi(base[i+1:])
	return n
}
