package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/dto"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/pkg/retryqueue"
)

// FailedStockUpdate actualización de stock que no pudo aplicarse y espera reproceso.
type FailedStockUpdate struct {
	ID         string
	StoreID    int64
	ProductID  int64
	Quantity   int
	Cause      string
	EnqueuedAt time.Time
}

func (uc *UseCase) enqueueFailed(storeID, productID int64, quantity int, cause error) {
	op := FailedStockUpdate{
		ID:         uuid.New().String(),
		StoreID:    storeID,
		ProductID:  productID,
		Quantity:   quantity,
		Cause:      cause.Error(),
		EnqueuedAt: uc.now(),
	}
	uc.failed.Enqueue(op)
	uc.log.Error().Err(cause).
		Str("operation_id", op.ID).
		Int64("store_id", storeID).
		Int64("product_id", productID).
		Int("quantity", quantity).
		Int("pending", uc.failed.Len()).
		Msg("actualización de stock encolada para reproceso")
}

// DrainFailedOperations reprocesa la cola de operaciones fallidas en orden de llegada.
// Cada operación se aplica bajo el lock de su producto y sin pasar por reintentos ni circuit
// breaker; si vuelve a fallar se descarta.
func (uc *UseCase) DrainFailedOperations(ctx context.Context) retryqueue.DrainReport {
	report := uc.failed.Drain(ctx, uc.replay)
	if report.Processed > 0 {
		uc.log.Info().
			Int("processed", report.Processed).
			Int("failed", report.Failed).
			Int("pending", uc.failed.Len()).
			Msg("cola de operaciones fallidas procesada")
	}
	return report
}

func (uc *UseCase) replay(ctx context.Context, op FailedStockUpdate) error {
	defer uc.locks.Lock(op.ProductID)()

	if _, err := uc.applyStockUpdate(ctx, op.StoreID, op.ProductID, op.Quantity); err != nil {
		uc.log.Warn().Err(err).
			Str("operation_id", op.ID).
			Int64("store_id", op.StoreID).
			Int64("product_id", op.ProductID).
			Msg("reproceso fallido, operación descartada")
		return err
	}
	return nil
}

// PendingFailedOperations devuelve las operaciones en cola sin consumirlas.
func (uc *UseCase) PendingFailedOperations() []dto.FailedOperationResponse {
	ops := uc.failed.Snapshot()
	out := make([]dto.FailedOperationResponse, 0, len(ops))
	for _, op := range ops {
		out = append(out, dto.FailedOperationResponse{
			ID:         op.ID,
			StoreID:    op.StoreID,
			ProductID:  op.ProductID,
			Quantity:   op.Quantity,
			Cause:      op.Cause,
			EnqueuedAt: op.EnqueuedAt,
		})
	}
	return out
}

// RunDrainLoop drena la cola cada interval hasta que ctx se cancele. Bloquea; lanzar en una goroutine.
func (uc *UseCase) RunDrainLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.DrainFailedOperations(ctx)
		}
	}
}
