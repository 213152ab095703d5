package gymserver

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/pandarack/gym-server/log"
)

// MetadataStore persists the per-file ImageRecord mapping as a single JSON
// document next to the uploaded files. Every access reads or writes the
// whole document; there is no partial or streamed access. A mutex
// serializes read-modify-write cycles so interleaved requests cannot drop
// each other's updates.
type MetadataStore struct {
	mu   sync.Mutex
	path string
}

func NewMetadataStore(uploadDir string) *MetadataStore {
	return &MetadataStore{
		path: filepath.Join(uploadDir, MetadataFilename),
	}
}

// read loads the backing document. A missing or malformed file reads as an
// empty mapping: the catalog stays available and the condition is logged
// instead of surfaced.
func (s *MetadataStore) read() map[string]ImageRecord {
	records := map[string]ImageRecord{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("fail to read metadata document, treating as empty",
				zap.String("path", s.path), zap.Error(err), log.SourceMetadata)
		}
		return records
	}

	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn("malformed metadata document, treating as empty",
			zap.String("path", s.path), zap.Error(err), log.SourceMetadata)
		return map[string]ImageRecord{}
	}

	return records
}

func (s *MetadataStore) write(records map[string]ImageRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Get returns the record stored for a filename.
func (s *MetadataStore) Get(filename string) (ImageRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.read()[filename]
	return record, ok
}

// All returns the full filename to record mapping.
func (s *MetadataStore) All() map[string]ImageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

// Upsert stores a record under a filename, replacing any previous one.
func (s *MetadataStore) Upsert(filename string, record ImageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.read()
	records[filename] = record
	return s.write(records)
}

// Remove deletes the record of a filename. Removing an absent filename is
// a no-op.
func (s *MetadataStore) Remove(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.read()
	if _, ok := records[filename]; !ok {
		return nil
	}

	delete(records, filename)
	return s.write(records)
}

// Rename moves a record under a new filename, applying an update function
// to it in the same write. It is used when an edit replaces the backing
// file.
func (s *MetadataStore) Rename(oldFilename, newFilename string, update func(*ImageRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.read()
	record, ok := records[oldFilename]
	if !ok {
		return ErrNotFound
	}

	if update != nil {
		update(&record)
	}

	delete(records, oldFilename)
	records[newFilename] = record
	return s.write(records)
}
