package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pfa/pkg/extract"
)

type fakeExtractor struct {
	mu    sync.Mutex
	names []string
}

func (f *fakeExtractor) Extract(ctx context.Context, up extract.Upload) (*extract.Response, error) {
	f.mu.Lock()
	f.names = append(f.names, up.Filename)
	f.mu.Unlock()
	if string(up.Data) == "bad" {
		return nil, errors.New("model down")
	}
	return &extract.Response{Diagnostics: extract.Diagnostics{Source: "donut-" + up.Kind(), Items: 1}}, nil
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.PNG", "a.jpg", "notes.txt", ".hidden.png", "c.pdf"} {
		writeFile(t, dir, n, "x")
	}
	_ = os.Mkdir(filepath.Join(dir, "sub.png"), 0o755)
	got := ListFiles(dir)
	want := []string{"a.jpg", "b.PNG", "c.pdf"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	if MimeFromExt("x.PDF") != "application/pdf" || MimeFromExt("x.doc") != "" {
		t.Fatalf("unexpected mime mapping")
	}
}

func TestScanProcessesAndMoves(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.jpg", "img")
	writeFile(t, dir, "two.pdf", "pdf")
	writeFile(t, dir, "three.png", "bad")
	writeFile(t, dir, "skip.txt", "x")

	fx := &fakeExtractor{}
	var mu sync.Mutex
	results := map[string]Result{}
	w := &Watcher{
		Dir:       dir,
		Workers:   2,
		Extractor: fx,
		Move:      true,
		Log:       zerolog.Nop(),
		Handle: func(ctx context.Context, r Result) error {
			mu.Lock()
			results[r.Upload.Filename] = r
			mu.Unlock()
			return nil
		},
	}
	if err := w.Scan(context.Background()); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %v", results)
	}
	if results["two.pdf"].Response.Diagnostics.Source != "donut-pdf" || results["two.pdf"].Upload.ContentType != "application/pdf" {
		t.Fatalf("pdf not classified: %+v", results["two.pdf"])
	}
	if results["three.png"].Err == nil {
		t.Fatalf("failed extraction should be reported")
	}
	if _, err := os.Stat(filepath.Join(dir, ProcessedDir, "one.jpg")); err != nil {
		t.Fatalf("processed file should be moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "three.png")); err != nil {
		t.Fatalf("failed file must stay in the inbox: %v", err)
	}

	// A second scan does not pick the same files again.
	if err := w.Scan(context.Background()); err != nil {
		t.Fatalf("rescan: %v", err)
	}
	sort.Strings(fx.names)
	if len(fx.names) != 3 {
		t.Fatalf("files processed twice: %v", fx.names)
	}
}

func TestScanRequiresExtractor(t *testing.T) {
	if err := (&Watcher{Dir: t.TempDir()}).Scan(context.Background()); err == nil {
		t.Fatalf("expected error without extractor")
	}
}

func TestRunPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "existing.png", "img")

	got := make(chan string, 4)
	w := &Watcher{
		Dir:       dir,
		Workers:   1,
		Extractor: &fakeExtractor{},
		Debounce:  40 * time.Millisecond,
		Log:       zerolog.Nop(),
		Handle: func(ctx context.Context, r Result) error {
			got <- r.Upload.Filename
			return nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	wait := func(want string) {
		t.Helper()
		select {
		case name := <-got:
			if name != want {
				t.Fatalf("got %s want %s", name, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
	wait("existing.png")
	writeFile(t, dir, "new.jpg", "img")
	wait("new.jpg")

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not stop")
	}
}

func TestMoveToProcessedShrinksLargeImages(t *testing.T) {
	if testing.Short() {
		t.Skip("writes a large image")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "big.png")
	writeNoisePNG(t, src, 1200, 1200)
	fi, _ := os.Stat(src)
	if fi.Size() <= maxProcessedBytes {
		t.Skip("noise image compressed below threshold")
	}
	if err := moveToProcessed(src, filepath.Join(dir, ProcessedDir)); err != nil {
		t.Fatalf("move: %v", err)
	}
	out, err := os.Stat(filepath.Join(dir, ProcessedDir, "big.png"))
	if err != nil {
		t.Fatalf("missing processed image: %v", err)
	}
	if out.Size() >= fi.Size() {
		t.Fatalf("image was not shrunk: %d >= %d", out.Size(), fi.Size())
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source should be removed")
	}
}
