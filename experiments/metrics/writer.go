package metrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"

	"mixtree/mixture"
)

const (
	MixFile      = "mixing_data.csv"
	FrontierFile = "stats.csv"
	WalkFile     = "walks.csv"
	CountFile    = "dkd.csv"
	TerminalFile = "td.csv"
)

var (
	mixHeader      = []string{"mean", "sd", "depth", "k", "varphi2", "children"}
	frontierHeader = []string{"mean", "sd", "k", "depth"}
	countHeader    = []string{"depth", "k", "delta"}
	terminalHeader = []string{"depth"}
)

// Writer appends records as CSV rows. It is safe for concurrent use.
type Writer struct {
	mu        sync.Mutex
	mix       *csv.Writer
	frontier  *csv.Writer
	walks     *csv.Writer
	counts    *csv.Writer
	terminals *csv.Writer
	closers   []io.Closer
}

// NewWriter writes each record kind to its own stream, starting every stream
// with a header row.
func NewWriter(mix, frontier, walks, counts, terminals io.Writer) *Writer {
	w := &Writer{
		mix:       csv.NewWriter(mix),
		frontier:  csv.NewWriter(frontier),
		walks:     csv.NewWriter(walks),
		counts:    csv.NewWriter(counts),
		terminals: csv.NewWriter(terminals),
	}
	// Header errors are sticky in csv.Writer and surface on Flush.
	_ = w.mix.Write(mixHeader)
	_ = w.frontier.Write(frontierHeader)
	_ = w.walks.Write(mixHeader)
	_ = w.counts.Write(countHeader)
	_ = w.terminals.Write(terminalHeader)
	return w
}

// CreateWriter creates dir and one CSV file per record kind inside it.
func CreateWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	names := []string{MixFile, FrontierFile, WalkFile, CountFile, TerminalFile}
	files := make([]*os.File, 0, len(names))
	for _, name := range names {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			return nil, fmt.Errorf("failed to create %s: %w", name, err)
		}
		files = append(files, f)
	}

	w := NewWriter(files[0], files[1], files[2], files[3], files[4])
	w.closers = lo.Map(files, func(f *os.File, _ int) io.Closer { return f })
	return w, nil
}

func (w *Writer) WriteMix(r NodeRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mix.Write(nodeRow(r)); err != nil {
		return fmt.Errorf("failed to write mix row: %w", err)
	}
	return nil
}

func (w *Writer) WriteFrontier(rs []FrontierRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, r := range rs {
		row := []string{formatFloat(r.Mean), formatFloat(r.SD), strconv.Itoa(r.K), strconv.Itoa(r.Depth)}
		if err := w.frontier.Write(row); err != nil {
			return fmt.Errorf("failed to write frontier row: %w", err)
		}
	}
	return nil
}

func (w *Writer) WriteWalk(r NodeRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.walks.Write(nodeRow(r)); err != nil {
		return fmt.Errorf("failed to write walk row: %w", err)
	}
	return nil
}

func (w *Writer) WriteCount(r CountRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	row := []string{strconv.Itoa(r.Depth), strconv.Itoa(r.K), strconv.Itoa(r.Delta)}
	if err := w.counts.Write(row); err != nil {
		return fmt.Errorf("failed to write count row: %w", err)
	}
	return nil
}

func (w *Writer) WriteTerminal(depth int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.terminals.Write([]string{strconv.Itoa(depth)}); err != nil {
		return fmt.Errorf("failed to write terminal row: %w", err)
	}
	return nil
}

// Flush pushes buffered rows to the underlying streams.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, cw := range []*csv.Writer{w.mix, w.frontier, w.walks, w.counts, w.terminals} {
		cw.Flush()
		if err := cw.Error(); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close flushes and closes any files opened by CreateWriter.
func (w *Writer) Close() error {
	errs := []error{w.Flush()}
	for _, c := range w.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func nodeRow(r NodeRecord) []string {
	children := lo.Map(r.Children, func(d mixture.Dist, _ int) string {
		return "(" + formatFloat(d.Mean) + ", " + formatFloat(d.SD) + ")"
	})
	return []string{
		formatFloat(r.Mean),
		formatFloat(r.SD),
		strconv.Itoa(r.Depth),
		strconv.Itoa(r.K),
		formatFloat(r.Varphi2),
		strings.Join(children, ", "),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
