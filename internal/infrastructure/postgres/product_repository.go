package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `product_id, store_id, name, category, quantity, updated_at`

// ProductRepo registros de stock por (producto, sucursal). Usable con pool o tx.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Get obtiene el registro de la clave o (nil, nil).
func (r *ProductRepo) Get(ctx context.Context, key entity.ProductKey) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM product WHERE product_id = $1 AND store_id = $2`
	return r.getOne(ctx, "get product", query, key)
}

// GetForUpdate igual que Get, bloqueando la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, key entity.ProductKey) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM product WHERE product_id = $1 AND store_id = $2 FOR UPDATE`
	return r.getOne(ctx, "get product for update", query, key)
}

// ListByProduct registros del producto en todas las sucursales.
func (r *ProductRepo) ListByProduct(ctx context.Context, productID int64) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM product WHERE product_id = $1 ORDER BY store_id`
	return r.list(ctx, "list product by product", query, productID)
}

// ListByStore registros de la sucursal ordenados por producto.
func (r *ProductRepo) ListByStore(ctx context.Context, storeID int64) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM product WHERE store_id = $1 ORDER BY product_id`
	return r.list(ctx, "list product by store", query, storeID)
}

// Save inserta o reemplaza el registro (upsert por clave compuesta).
func (r *ProductRepo) Save(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO product (product_id, store_id, name, category, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id, store_id)
		DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category,
			quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		p.Key.ProductID, p.Key.StoreID, p.Name, p.Category, p.Quantity, p.UpdatedAt,
	)
	return wrap("save product", err)
}

// Delete elimina el registro de la clave.
func (r *ProductRepo) Delete(ctx context.Context, key entity.ProductKey) error {
	_, err := r.q.Exec(ctx, `DELETE FROM product WHERE product_id = $1 AND store_id = $2`,
		key.ProductID, key.StoreID)
	return wrap("delete product", err)
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, key entity.ProductKey) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, key.ProductID, key.StoreID).Scan(
		&p.Key.ProductID, &p.Key.StoreID, &p.Name, &p.Category, &p.Quantity, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	return &p, nil
}

func (r *ProductRepo) list(ctx context.Context, op, query string, arg int64) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.Key.ProductID, &p.Key.StoreID, &p.Name, &p.Category, &p.Quantity, &p.UpdatedAt); err != nil {
			return nil, wrap("scan product", err)
		}
		list = append(list, &p)
	}
	return list, wrap(op, rows.Err())
}
