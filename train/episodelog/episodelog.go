// Package episodelog records one row per training episode (or NEAT
// generation) in a zstd-compressed Parquet file.
package episodelog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

var ErrClosed = errors.New("episode log is closed")

// Row summarizes one episode. For NEAT runs an episode is a generation and
// Reward holds the best fitness.
type Row struct {
	Mode        string  `parquet:"mode,dict"`
	Preset      string  `parquet:"preset,dict"`
	Episode     int32   `parquet:"episode"`
	Steps       int32   `parquet:"steps"`
	Score       int32   `parquet:"score"`
	Best        int32   `parquet:"best"`
	Reward      float32 `parquet:"reward"`
	MeanFitness float32 `parquet:"mean_fitness"`
	Epsilon     float32 `parquet:"epsilon"`
	Loss        float32 `parquet:"loss"`
	States      int32   `parquet:"states"`
	DurationUs  int64   `parquet:"duration_us"`
}

// Writer streams rows into path+".tmp" and renames it into place on Close.
type Writer struct {
	path    string
	tmpPath string

	file   *os.File
	writer *parquet.GenericWriter[Row]
	rows   int
}

func Create(path string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("episode log path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[Row](f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
	)
	w.SetKeyValueMetadata("schema", "flappy_episode_v1")

	return &Writer{path: path, tmpPath: tmpPath, file: f, writer: w}, nil
}

func (w *Writer) Path() string { return w.path }
func (w *Writer) Rows() int    { return w.rows }

func (w *Writer) Write(rows ...Row) error {
	if w.writer == nil {
		return ErrClosed
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := w.writer.Write(rows); err != nil {
		return fmt.Errorf("write episode rows: %w", err)
	}
	w.rows += len(rows)
	return nil
}

// Close flushes the file and moves it to its final path. A log with no
// rows is removed instead.
func (w *Writer) Close() error {
	if w.writer == nil {
		return nil
	}

	closeErr := w.writer.Close()
	w.writer = nil
	_ = w.file.Sync()
	fileErr := w.file.Close()
	w.file = nil

	if closeErr != nil {
		return fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return fmt.Errorf("close parquet file: %w", fileErr)
	}

	if w.rows == 0 {
		_ = os.Remove(w.tmpPath)
		return nil
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// Read loads every row of a finished log.
func Read(path string) ([]Row, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("read episode log %s: %w", path, err)
	}
	return rows, nil
}
