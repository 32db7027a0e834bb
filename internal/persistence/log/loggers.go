package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"realmtick.io/internal/sim/tick"
)

// JSONLZstdWriter appends JSON lines to one zstd file per UTC day. Every
// Write ends its own zstd frame so readers never see a truncated frame.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu     sync.Mutex
	curDay string
	f      *os.File
	enc    *zstd.Encoder
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	day := w.now().UTC().Format(time.DateOnly)
	if day != w.curDay || w.f == nil {
		if err := w.rotateLocked(day); err != nil {
			return err
		}
	}

	w.enc.Reset(w.f)
	bw := bufio.NewWriter(w.enc)
	if _, err := bw.Write(b); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := w.enc.Close(); err != nil {
		return err
	}
	return w.f.Sync()
}

func (w *JSONLZstdWriter) rotateLocked(day string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForDay(day), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.curDay = day
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err error
	if w.f != nil {
		err = w.f.Close()
		w.f = nil
	}
	w.enc = nil
	w.curDay = ""
	return err
}

func (w *JSONLZstdWriter) pathForDay(day string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, day))
}

// ReportLogger archives one JSONL entry per tick run (compressed).
type ReportLogger struct{ w *JSONLZstdWriter }

func NewReportLogger(dir string) *ReportLogger {
	return &ReportLogger{w: NewJSONLZstdWriter(dir, "ticks")}
}

func (l *ReportLogger) WriteRun(run *tick.TickRun) error { return l.w.Write(run) }
func (l *ReportLogger) Close() error                     { return l.w.Close() }

// ReadReports decodes every archived run under dir, oldest file first.
func ReadReports(dir string) ([]tick.TickRun, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "ticks-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []tick.TickRun
	for _, p := range paths {
		runs, err := readFile(dec, p)
		if err != nil {
			return out, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		out = append(out, runs...)
	}
	return out, nil
}

func readFile(dec *zstd.Decoder, path string) ([]tick.TickRun, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := dec.Reset(f); err != nil {
		return nil, err
	}

	var out []tick.TickRun
	r := bufio.NewReaderSize(dec, 64*1024)
	for {
		line, err := r.ReadString('\n')
		if s := strings.TrimSpace(line); s != "" {
			var run tick.TickRun
			if jerr := json.Unmarshal([]byte(s), &run); jerr != nil {
				return out, jerr
			}
			out = append(out, run)
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
