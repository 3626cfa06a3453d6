// Package ocr wraps the document-understanding engines that turn a receipt
// page image into CORD-style markup, and the PDF rasterizer feeding them.
package ocr

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Model turns one page image into the model's raw markup string.
type Model interface {
	Infer(ctx context.Context, img image.Image) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, img image.Image) (string, error)

// Infer calls f.
func (f ModelFunc) Infer(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}

// Options selects and configures an engine.
type Options struct {
	Engine   string // "donut" or "tesseract"
	URL      string
	ModelID  string
	Token    string
	Timeout  time.Duration
	Language string
}

// NewModel constructs the engine named in o.Engine.
func NewModel(o Options, log zerolog.Logger) (Model, error) {
	switch o.Engine {
	case "", "donut":
		if o.URL == "" {
			return nil, fmt.Errorf("donut engine requires an inference URL")
		}
		return NewDonutClient(o.URL, o.ModelID, o.Token, o.Timeout, log), nil
	case "tesseract":
		return NewTesseractModel(o.Language, log), nil
	default:
		return nil, fmt.Errorf("unknown receipt engine %q", o.Engine)
	}
}

// shared defers construction of a Model until the first Infer and reuses
// the same handle for the life of the process.
type shared struct {
	once    sync.Once
	factory func() (Model, error)
	m       Model
	err     error
}

// Shared returns a Model that builds its underlying engine once, on first
// use. A construction error is returned by every call.
func Shared(factory func() (Model, error)) Model {
	return &shared{factory: factory}
}

func (s *shared) Infer(ctx context.Context, img image.Image) (string, error) {
	s.once.Do(func() {
		s.m, s.err = s.factory()
	})
	if s.err != nil {
		return "", fmt.Errorf("load model: %w", s.err)
	}
	return s.m.Infer(ctx, img)
}
