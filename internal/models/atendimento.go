package models

import (
	"gorm.io/datatypes"
)

// Origem values for an Atendimento.
const (
	OrigemChuvas        = "Chuvas"
	OrigemRegularizacao = "Regularizacao"
	OrigemIncendios     = "Incendios"
	OrigemManual        = "Manual"
)

// Atendimento is one stored field-inspection summary and the document
// artifact generated for it. Records are immutable: created once, deleted
// by explicit user action, never updated in place.
type Atendimento struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"-"`
	Origem       string         `gorm:"column:origem;not null;index" json:"origem"`
	NumeroLaudo  string         `gorm:"column:numero_laudo;uniqueIndex;not null" json:"numero_laudo"`
	Bairro       string         `gorm:"column:bairro" json:"bairro"`
	Latitude     string         `gorm:"column:latitude" json:"latitude"`
	Longitude    string         `gorm:"column:longitude" json:"longitude"`
	DataVistoria string         `gorm:"column:data_vistoria" json:"data_vistoria"`
	GrauRisco    string         `gorm:"column:grau_risco" json:"grau_risco"`
	Arquivo      string         `gorm:"column:arquivo" json:"arquivo"`
	DataRegistro string         `gorm:"column:data_registro" json:"data_registro"`
	Contexto     datatypes.JSON `gorm:"column:contexto;type:jsonb" json:"contexto,omitempty"`
}

// TableName specifies the table name
func (Atendimento) TableName() string {
	return "atendimentos"
}
