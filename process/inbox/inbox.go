// Package inbox watches a directory for receipt images and PDFs and feeds
// every new, stable file through the extraction pipeline with a small
// worker pool.
package inbox

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"pfa/pkg/extract"
)

var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".pdf":  "application/pdf",
}

// ProcessedDir is the subdirectory handled files are moved into.
const ProcessedDir = "processed"

// Extractor runs the receipt pipeline on one upload.
type Extractor interface {
	Extract(ctx context.Context, up extract.Upload) (*extract.Response, error)
}

// Result is reported for every processed file, successful or not.
type Result struct {
	Path     string
	Upload   extract.Upload
	Response *extract.Response
	Err      error
}

// Watcher processes the files of Dir. Handle is called from worker
// goroutines; returning nil marks the file done (and moves it when Move is set).
type Watcher struct {
	Dir       string
	Workers   int
	Extractor Extractor
	Handle    func(ctx context.Context, r Result) error
	Move      bool
	Debounce  time.Duration
	Log       zerolog.Logger

	mu   sync.Mutex
	seen map[string]bool
}

// IsSupported reports whether name looks like a receipt file.
func IsSupported(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	_, ok := extMime[strings.ToLower(filepath.Ext(name))]
	return ok
}

// MimeFromExt maps a file extension to its content type.
func MimeFromExt(name string) string {
	return extMime[strings.ToLower(filepath.Ext(name))]
}

// ListFiles returns the supported file names directly inside dir, sorted.
func ListFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) workers() int {
	if w.Workers <= 0 {
		return runtime.NumCPU()
	}
	return w.Workers
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return 300 * time.Millisecond
	}
	return w.Debounce
}

// claim returns false if name was already queued.
func (w *Watcher) claim(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen == nil {
		w.seen = make(map[string]bool)
	}
	if w.seen[name] {
		return false
	}
	w.seen[name] = true
	return true
}

// Scan processes the files currently in Dir and returns when all are done.
func (w *Watcher) Scan(ctx context.Context) error {
	if w.Extractor == nil {
		return errors.New("inbox: no extractor configured")
	}
	fileCh := make(chan string)
	done := w.startPool(ctx, fileCh)
	w.enqueueExisting(ctx, fileCh)
	close(fileCh)
	<-done
	return ctx.Err()
}

// Run scans Dir, then keeps processing new files until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Extractor == nil {
		return errors.New("inbox: no extractor configured")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.Dir); err != nil {
		return err
	}

	fileCh := make(chan string, 256)
	done := w.startPool(ctx, fileCh)
	w.enqueueExisting(ctx, fileCh)
	w.Log.Info().Str("dir", w.Dir).Dur("debounce", w.debounce()).Msg("watching inbox")

	err = w.watchLoop(ctx, fw, fileCh)
	close(fileCh)
	<-done
	return err
}

func (w *Watcher) enqueueExisting(ctx context.Context, fileCh chan<- string) {
	for _, name := range ListFiles(w.Dir) {
		if !w.claim(name) {
			continue
		}
		select {
		case fileCh <- name:
		case <-ctx.Done():
			return
		}
	}
}

// watchLoop debounces create/write events so a file is queued only after
// it stopped changing.
func (w *Watcher) watchLoop(ctx context.Context, fw *fsnotify.Watcher, fileCh chan<- string) error {
	pending := map[string]time.Time{}
	tick := w.debounce() / 2
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if filepath.Dir(ev.Name) != filepath.Clean(w.Dir) || !IsSupported(name) {
				continue
			}
			pending[name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) < w.debounce() { // not stable yet
					continue
				}
				delete(pending, name)
				if !w.claim(name) {
					continue
				}
				select {
				case fileCh <- name:
				case <-ctx.Done():
					return nil
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) startPool(ctx context.Context, fileCh <-chan string) <-chan struct{} {
	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < w.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				if ctx.Err() != nil {
					continue
				}
				w.processFile(ctx, name)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

func (w *Watcher) processFile(ctx context.Context, name string) {
	path := filepath.Join(w.Dir, name)
	res := Result{Path: path, Upload: extract.Upload{Filename: name, ContentType: MimeFromExt(name)}}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
	} else {
		res.Upload.Data = data
		res.Response, res.Err = w.Extractor.Extract(ctx, res.Upload)
	}

	log := w.Log.With().Str("file", name).Logger()
	if res.Err != nil {
		log.Warn().Err(res.Err).Msg("receipt failed")
	} else {
		log.Info().Int("items", res.Response.Diagnostics.Items).Msg("receipt processed")
	}
	if w.Handle != nil {
		if err := w.Handle(ctx, res); err != nil {
			log.Error().Err(err).Msg("handle result failed")
			return
		}
	}
	if w.Move && res.Err == nil {
		if err := moveToProcessed(path, filepath.Join(w.Dir, ProcessedDir)); err != nil {
			log.Warn().Err(err).Msg("failed to move processed file")
		}
	}
}

// maxProcessedBytes bounds the size of archived images; larger ones are
// downscaled on the way into the processed directory.
const maxProcessedBytes = 1_000_000

// moveToProcessed moves src into dstDir, attempting an atomic rename and
// falling back to copy+remove.
func moveToProcessed(src, dstDir string) error {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(dstDir, filepath.Base(src))
	fi, err := os.Stat(src)
	if err != nil {
		return err
	}
	if fi.Size() > maxProcessedBytes && MimeFromExt(src) != "application/pdf" {
		if shrinkInto(src, dst, fi.Size()) == nil {
			return os.Remove(src)
		}
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyRemove(src, dst)
}

// shrinkInto saves a downscaled copy of src at dst, scaling the area by
// roughly maxProcessedBytes/size.
func shrinkInto(src, dst string, size int64) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}
	scale := math.Sqrt(float64(maxProcessedBytes) / float64(size))
	scale = math.Max(0.1, math.Min(scale, 0.95))
	newW := int(math.Max(1, math.Round(float64(img.Bounds().Dx())*scale)))
	return imaging.Save(imaging.Resize(img, newW, 0, imaging.Lanczos), dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
