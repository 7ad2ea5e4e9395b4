package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/dcmanaus/laudosgo/internal/models"
)

// CollectionFile is the name of the serialized record collection inside the
// data directory.
const CollectionFile = "atendimentos.json"

// FileStore persists the collection as a single JSON array, rewriting the
// whole file on every mutation. Collection sizes are small, so the rewrite
// stays cheap. All mutations are serialized by a mutex.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates the data directory if needed and returns a store
// backed by <dataDir>/atendimentos.json.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}
	return &FileStore{path: filepath.Join(dataDir, CollectionFile)}, nil
}

// LoadAll returns every record in insertion order.
func (s *FileStore) LoadAll() []models.Atendimento {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Append adds the record unless its NumeroLaudo already exists.
func (s *FileStore) Append(a models.Atendimento) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lista := s.loadLocked()
	for _, existing := range lista {
		if existing.NumeroLaudo == a.NumeroLaudo {
			log.Printf("⚠️ Atendimento %s already exists, skipping append", a.NumeroLaudo)
			return
		}
	}
	lista = append(lista, a)
	s.saveLocked(lista)
	log.Printf("✅ Atendimento saved: %s", a.NumeroLaudo)
}

// Remove deletes all records matching the id and persists the result.
func (s *FileStore) Remove(numeroLaudo string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lista := s.loadLocked()
	kept := lista[:0]
	for _, a := range lista {
		if a.NumeroLaudo != numeroLaudo {
			kept = append(kept, a)
		}
	}
	s.saveLocked(kept)
	log.Printf("🗑️ Removed %s: %d -> %d records", numeroLaudo, len(lista), len(kept))
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) loadLocked() []models.Atendimento {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("❌ Failed to read %s: %v", s.path, err)
		}
		return []models.Atendimento{}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Atendimento{}
	}

	var lista []models.Atendimento
	if err := json.Unmarshal(data, &lista); err != nil {
		// Corrupt file: treated as empty, the next write recreates it.
		log.Printf("⚠️ %s is invalid/corrupt, starting from an empty list: %v", s.path, err)
		return []models.Atendimento{}
	}
	return lista
}

func (s *FileStore) saveLocked(lista []models.Atendimento) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(lista); err != nil {
		log.Printf("❌ Failed to serialize atendimentos: %v", err)
		return
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		log.Printf("❌ Failed to write %s: %v", s.path, err)
	}
}
