package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"novapos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Keys of the local durable store. Each holds one JSON document.
const (
	ClaveProductos      = "nova_products"
	ClaveClientes       = "nova_clients"
	ClaveProveedores    = "nova_suppliers"
	ClaveVentas         = "nova_sales_header"
	ClaveVentaDetalles  = "nova_sales_detail"
	ClaveCompras        = "nova_purchases_header"
	ClaveCompraDetalles = "nova_purchases_detail"
	ClaveMovimientos    = "nova_movements"
	ClaveAuditoria      = "nova_audit"
	ClaveUltimaSync     = "nova_last_sync"
	ClaveOutbox         = "nova_outbox"
	ClaveDLQ            = "nova_dlq"
	ClaveSecuencia      = "nova_seq"
)

// KVRepository is the local durable store. GuardarLote must apply every key
// or none so a ledger write never lands half persisted.
type KVRepository interface {
	Cargar(ctx context.Context, clave string) ([]byte, bool, error)
	GuardarLote(ctx context.Context, lote Lote) error
	Ping(ctx context.Context) error
}

// Lote is a set of keys to persist together.
type Lote map[string][]byte

// JSON encodes v under clave.
func (l Lote) JSON(clave string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("codificar %s: %w", clave, err)
	}
	l[clave] = b
	return nil
}

// CargarJSON decodes the document stored under clave into dst. A missing key
// leaves dst untouched and reports false.
func CargarJSON(ctx context.Context, r KVRepository, clave string, dst any) (bool, error) {
	b, ok, err := r.Cargar(ctx, clave)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("decodificar %s: %w", clave, err)
	}
	return true, nil
}

type gormKVRepo struct{ db *gorm.DB }

func NewGormKVRepository(db *gorm.DB) KVRepository { return &gormKVRepo{db: db} }

func (r *gormKVRepo) Cargar(ctx context.Context, clave string) ([]byte, bool, error) {
	var reg model.RegistroKV
	err := r.db.WithContext(ctx).Where("clave = ?", clave).First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return reg.Valor, true, nil
}

func (r *gormKVRepo) GuardarLote(ctx context.Context, lote Lote) error {
	if len(lote) == 0 {
		return nil
	}
	ahora := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for clave, valor := range lote {
			reg := model.RegistroKV{Clave: clave, Valor: valor, UpdatedAt: ahora}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "clave"}},
				DoUpdates: clause.AssignmentColumns([]string{"valor", "updated_at"}),
			}).Create(&reg).Error
			if err != nil {
				return fmt.Errorf("guardar %s: %w", clave, err)
			}
		}
		return nil
	})
}

func (r *gormKVRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
