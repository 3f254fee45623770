// Package store reads and writes the pipeline's columnar artifacts as
// snappy-compressed Parquet files. Writes replace the target path atomically
// via a temporary file and rename; the pipeline guarantees a single writer
// per output path within a run, and no cross-process locking is attempted.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/verdemapa/climate-etl-service/internal/domain"
)

// ParquetStore persists observation and series tables by path.
type ParquetStore struct{}

// New creates a ParquetStore.
func New() *ParquetStore {
	return &ParquetStore{}
}

// WriteObservations writes a raw extraction batch.
func (s *ParquetStore) WriteObservations(path string, rows []domain.RawObservation) error {
	return writeFile(path, rows)
}

// ReadObservations loads a raw extraction batch.
func (s *ParquetStore) ReadObservations(path string) ([]domain.RawObservation, error) {
	return readFile[domain.RawObservation](path)
}

// WriteCanonical writes the processed canonical table.
func (s *ParquetStore) WriteCanonical(path string, rows []domain.CanonicalObservation) error {
	return writeFile(path, rows)
}

// ReadCanonical loads a processed canonical table.
func (s *ParquetStore) ReadCanonical(path string) ([]domain.CanonicalObservation, error) {
	return readFile[domain.CanonicalObservation](path)
}

// WriteSeries overwrites the persisted point series.
func (s *ParquetStore) WriteSeries(path string, rows []domain.SeriesRow) error {
	return writeFile(path, rows)
}

// ReadSeries loads the persisted point series. A missing file satisfies
// errors.Is(err, fs.ErrNotExist).
func (s *ParquetStore) ReadSeries(path string) ([]domain.SeriesRow, error) {
	return readFile[domain.SeriesRow](path)
}

// writeFile writes rows to path via a .tmp intermediate file so readers never
// observe a partial table.
func writeFile[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	w := parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Snappy))
	if _, err := w.Write(rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("close parquet writer: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func readFile[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}
