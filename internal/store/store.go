package store

import (
	"fmt"

	"github.com/dcmanaus/laudosgo/internal/config"
	"github.com/dcmanaus/laudosgo/internal/database"
	"github.com/dcmanaus/laudosgo/internal/models"
)

// Store is the durable collection of atendimentos, independent of backing
// technology. Mutations never surface errors: duplicate appends and backend
// failures are logged and swallowed, because the user's document was already
// generated by the time the record is written.
type Store interface {
	// LoadAll returns every record in insertion order. An absent, empty or
	// corrupt backing store yields an empty slice.
	LoadAll() []models.Atendimento

	// Append adds the record and persists the full collection. A record with
	// the same NumeroLaudo already present makes this a logged no-op.
	Append(models.Atendimento)

	// Remove deletes all records matching the given NumeroLaudo (expected 0
	// or 1) and persists the result. Removing a nonexistent id is a no-op.
	Remove(numeroLaudo string)

	// Close releases backend resources. Idempotent.
	Close() error
}

// New builds the store selected by cfg.StorageBackend.
func New(cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case config.BackendFile:
		return NewFileStore(cfg.DataDir)
	case config.BackendRemote:
		local, err := NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return NewRemoteStore(local, cfg.Remote), nil
	case config.BackendDB:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&models.Atendimento{}); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating atendimentos schema: %w", err)
		}
		return NewDBStore(db), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
