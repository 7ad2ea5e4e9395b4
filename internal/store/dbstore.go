package store

import (
	"errors"
	"log"

	"github.com/dcmanaus/laudosgo/internal/database"
	"github.com/dcmanaus/laudosgo/internal/models"
	"gorm.io/gorm"
)

// DBStore is the relational variant of the Store contract, backed by the
// atendimentos table. Write serialization is delegated to PostgreSQL; the
// unique index on numero_laudo backs the duplicate check.
type DBStore struct {
	db *database.DB
}

// NewDBStore wraps an already-connected database.
func NewDBStore(db *database.DB) *DBStore {
	return &DBStore{db: db}
}

// LoadAll returns every record in insertion order.
func (s *DBStore) LoadAll() []models.Atendimento {
	var lista []models.Atendimento
	if err := s.db.Order("id ASC").Find(&lista).Error; err != nil {
		log.Printf("❌ Failed to load atendimentos: %v", err)
		return []models.Atendimento{}
	}
	return lista
}

// Append inserts the record unless its NumeroLaudo already exists.
func (s *DBStore) Append(a models.Atendimento) {
	var existing models.Atendimento
	err := s.db.Where("numero_laudo = ?", a.NumeroLaudo).First(&existing).Error
	if err == nil {
		log.Printf("⚠️ Atendimento %s already exists, skipping append", a.NumeroLaudo)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("❌ Failed to check atendimento %s: %v", a.NumeroLaudo, err)
		return
	}
	if err := s.db.Create(&a).Error; err != nil {
		log.Printf("❌ Failed to save atendimento %s: %v", a.NumeroLaudo, err)
		return
	}
	log.Printf("✅ Atendimento saved: %s", a.NumeroLaudo)
}

// Remove deletes all records matching the id. A nonexistent id is a no-op.
func (s *DBStore) Remove(numeroLaudo string) {
	res := s.db.Where("numero_laudo = ?", numeroLaudo).Delete(&models.Atendimento{})
	if res.Error != nil {
		log.Printf("❌ Failed to remove atendimento %s: %v", numeroLaudo, res.Error)
		return
	}
	log.Printf("🗑️ Removed %s: %d record(s)", numeroLaudo, res.RowsAffected)
}

// Close closes the underlying database (stopping the embedded server when
// one is running).
func (s *DBStore) Close() error {
	return s.db.Close()
}
