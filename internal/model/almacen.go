package model

import "time"

// RegistroKV is one key of the local durable store when backed by SQL.
type RegistroKV struct {
	Clave     string `gorm:"primaryKey;size:64"`
	Valor     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (RegistroKV) TableName() string { return "almacen_local" }
