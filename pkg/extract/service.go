// Package extract runs the receipt pipeline: classify the upload, turn it
// into one page image, invoke the document model once and parse its markup
// into draft transactions.
package extract

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/rs/zerolog"

	"pfa/pkg/ocr"
	"pfa/pkg/receipt"
)

// Service is safe for concurrent use; the model handle is shared.
type Service struct {
	model    ocr.Model
	raster   ocr.Rasterizer
	parser   *receipt.Parser
	log      zerolog.Logger
	maxSide  int
	maxBytes int64
	engine   string
}

// Option customises a Service.
type Option func(*Service)

// WithParser replaces the default CORD parser.
func WithParser(p *receipt.Parser) Option { return func(s *Service) { s.parser = p } }

// WithMaxSide bounds the longest page edge before inference.
func WithMaxSide(n int) Option { return func(s *Service) { s.maxSide = n } }

// WithMaxBytes rejects uploads larger than n bytes (0 disables the check).
func WithMaxBytes(n int64) Option { return func(s *Service) { s.maxBytes = n } }

// WithEngine names the engine in logs.
func WithEngine(name string) Option { return func(s *Service) { s.engine = name } }

// New builds a Service around a model and a rasterizer.
func New(model ocr.Model, raster ocr.Rasterizer, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		model:   model,
		raster:  raster,
		parser:  receipt.NewParser(receipt.CORDGrammar, nil),
		log:     log,
		maxSide: ocr.MaxSide,
		engine:  "donut",
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Extract runs the pipeline for one upload. Input problems come back as
// *InputError before the model is called; model failures as *ExternalFailure.
func (s *Service) Extract(ctx context.Context, up Upload) (*Response, error) {
	if len(up.Data) == 0 {
		return nil, inputErr(ErrEmptyUpload, nil)
	}
	if s.maxBytes > 0 && int64(len(up.Data)) > s.maxBytes {
		return nil, inputErr(ErrTooLarge, nil)
	}

	start := time.Now()
	kind := up.Kind()
	page, err := s.page(ctx, kind, up.Data)
	if err != nil {
		return nil, err
	}

	out, err := s.model.Infer(ctx, page)
	if err != nil {
		s.log.Error().Err(err).Str("file", up.Filename).Str("engine", s.engine).Msg("receipt inference failed")
		return nil, &ExternalFailure{Stage: "document model", Err: err}
	}

	resp := buildResponse(s.parser, out, "donut-"+kind)
	resp.Diagnostics.Engine = s.engine
	s.log.Info().
		Str("file", up.Filename).
		Str("source", resp.Diagnostics.Source).
		Str("engine", s.engine).
		Int("items", resp.Diagnostics.Items).
		Bool("date_detected", resp.Diagnostics.DateDetected).
		Dur("duration", time.Since(start)).
		Msg("receipt extracted")
	return resp, nil
}

// ParseMarkup skips the model and parses already captured markup.
func (s *Service) ParseMarkup(raw, source string) *Response {
	resp := buildResponse(s.parser, raw, source)
	resp.Diagnostics.Engine = s.engine
	return resp
}

func (s *Service) page(ctx context.Context, kind string, data []byte) (image.Image, error) {
	if kind == KindPDF {
		if s.raster == nil {
			return nil, inputErr(ErrRasterize, errors.New("no rasterizer configured"))
		}
		pages, err := s.raster.Rasterize(ctx, data)
		if err != nil || len(pages) == 0 {
			if err == nil {
				err = ocr.ErrNoPages
			}
			s.log.Warn().Err(err).Msg("pdf rasterization failed")
			return nil, inputErr(ErrRasterize, err)
		}
		return ocr.FitPage(pages[0], s.maxSide), nil
	}
	img, err := ocr.DecodeImage(data, s.maxSide)
	if err != nil {
		return nil, inputErr(ErrUnsupportedImage, err)
	}
	return img, nil
}
