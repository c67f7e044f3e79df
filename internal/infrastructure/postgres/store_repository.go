package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo consulta de sucursales sobre PostgreSQL.
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador.
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

// GetByID obtiene la sucursal o (nil, nil) si no existe.
func (r *StoreRepo) GetByID(ctx context.Context, id int64) (*entity.Store, error) {
	var s entity.Store
	err := r.q.QueryRow(ctx, `SELECT id, name, location FROM store WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Location)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get store", err)
	}
	return &s, nil
}

// Upsert crea o actualiza la sucursal.
func (r *StoreRepo) Upsert(ctx context.Context, s entity.Store) error {
	query := `
		INSERT INTO store (id, name, location) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, location = EXCLUDED.location`
	_, err := r.q.Exec(ctx, query, s.ID, s.Name, s.Location)
	return wrap("upsert store", err)
}
