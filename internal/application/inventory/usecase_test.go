package inventory_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/dto"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/inventory"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/repository"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/infrastructure/cache"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/infrastructure/memory"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/pkg/resilience"
)

// ─────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ─────────────────────────────────────────────────────────────────────────────

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.InventoryChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev entity.InventoryChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Action)
	}
	return out
}

func (p *recordingPublisher) Count(action string) int {
	n := 0
	for _, a := range p.Actions() {
		if a == action {
			n++
		}
	}
	return n
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) IncrementCounter(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[name]++
}

func (m *countingMetrics) Get(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

// flakyTxRunner falla con ErrTransientStorage las primeras `failures` transacciones.
type flakyTxRunner struct {
	inner    inventory.TxRunner
	mu       sync.Mutex
	failures int
	calls    int

	inside, maxInside int32
}

func (r *flakyTxRunner) FailNext(n int) {
	r.mu.Lock()
	r.failures = n
	r.mu.Unlock()
}

func (r *flakyTxRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *flakyTxRunner) Run(ctx context.Context, fn func(products repository.ProductRepository) error) error {
	r.mu.Lock()
	r.calls++
	fail := r.failures > 0
	if fail {
		r.failures--
	}
	r.mu.Unlock()
	if fail {
		return fmt.Errorf("%w: conexión perdida", domain.ErrTransientStorage)
	}

	n := atomic.AddInt32(&r.inside, 1)
	for {
		m := atomic.LoadInt32(&r.maxInside)
		if n <= m || atomic.CompareAndSwapInt32(&r.maxInside, m, n) {
			break
		}
	}
	defer atomic.AddInt32(&r.inside, -1)
	time.Sleep(100 * time.Microsecond)
	return r.inner.Run(ctx, fn)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	uc        *inventory.UseCase
	products  *memory.ProductRepository
	tx        *flakyTxRunner
	guard     *resilience.Guard
	publisher *recordingPublisher
	metrics   *countingMetrics
	clock     *fakeClock
}

type fixtureOpts struct {
	threshold uint32
	cooldown  time.Duration
	products  []entity.Product
}

const cacheTTL = time.Minute

func newFixture(t *testing.T, o fixtureOpts) *fixture {
	t.Helper()
	if o.threshold == 0 {
		o.threshold = 50
	}
	if o.cooldown == 0 {
		o.cooldown = time.Minute
	}
	products := memory.NewProductRepository(o.products...)
	stores := memory.NewStoreRepository(
		entity.Store{ID: 1, Name: "Central", Location: "Av. Principal"},
		entity.Store{ID: 2, Name: "Norte", Location: "Calle 80"},
	)
	clock := &fakeClock{now: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	c, err := cache.NewMemoryCache[[]dto.ProductResponse](100, cache.WithClock(clock.Now))
	require.NoError(t, err)

	tx := &flakyTxRunner{inner: memory.NewTxRunner(products)}
	guard := resilience.NewGuard(
		resilience.RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, Multiplier: 2},
		resilience.BreakerSettings{
			Name:             "updateProductStock",
			FailureThreshold: o.threshold,
			Cooldown:         o.cooldown,
			HalfOpenMaxCalls: 1,
			RollingWindow:    time.Minute,
		},
		domain.IsTransient,
		zerolog.Nop(),
	)
	pub := &recordingPublisher{}
	met := &countingMetrics{}
	uc := inventory.NewUseCase(tx, products, stores, c, guard, pub, met, zerolog.Nop(), inventory.Options{
		CacheTTL:       cacheTTL,
		FaultInjection: true,
	})
	return &fixture{uc: uc, products: products, tx: tx, guard: guard, publisher: pub, metrics: met, clock: clock}
}

func notebook(storeID int64, qty int) entity.Product {
	return entity.Product{
		Key:      entity.ProductKey{ProductID: 2, StoreID: storeID},
		Name:     "Notebook",
		Category: "Computer",
		Quantity: qty,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Escenarios de referencia
// ─────────────────────────────────────────────────────────────────────────────

func TestEscenario1_CrearYListar(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()

	created, err := f.uc.CreateProduct(ctx, 1, dto.CreateProductRequest{ID: 2, Name: "Notebook", Category: "Computer", Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, created.Quantity)
	require.NotNil(t, created.Store)
	assert.Equal(t, "Central", created.Store.Name)

	list, err := f.uc.GetInventoryByStore(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, 10, list[0].Quantity)
	assert.Equal(t, 1, f.publisher.Count(entity.ActionCreateProduct))
}

func TestEscenario2_ActualizarYStockCentral(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 10)}})
	ctx := context.Background()

	ok, err := f.uc.UpdateProductStock(ctx, 1, 2, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	total, err := f.uc.GetCentralStock(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	assert.Equal(t, 1, f.metrics.Get(inventory.MetricStockUpdates))
	assert.Equal(t, []string{entity.ActionStockUpdateRequested, entity.ActionUpdateStock}, f.publisher.Actions())
}

func TestEscenario3_CantidadNegativaNoModifica(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 5)}})
	ctx := context.Background()

	ok, err := f.uc.UpdateProductStock(ctx, 1, 2, -1)
	require.NoError(t, err)
	assert.False(t, ok)

	total, _ := f.uc.GetCentralStock(ctx, 2)
	assert.Equal(t, 5, total)
	assert.Zero(t, f.publisher.Count(entity.ActionUpdateStock))
	assert.Empty(t, f.uc.PendingFailedOperations(), "la cantidad negativa no es un fallo reintentable")
}

func TestEscenario4_FalloSimuladoSeEncolaYSeReprocesa(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 5)}})
	ctx := context.Background()

	ok, err := f.uc.UpdateProductStock(ctx, 1, 2, inventory.DefaultFaultSentinel)
	require.NoError(t, err)
	assert.False(t, ok)

	pending := f.uc.PendingFailedOperations()
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].StoreID)
	assert.Equal(t, int64(2), pending[0].ProductID)
	assert.Equal(t, inventory.DefaultFaultSentinel, pending[0].Quantity)

	report := f.uc.DrainFailedOperations(ctx)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Failed, "el reproceso vuelve a fallar y se descarta")
	assert.Empty(t, f.uc.PendingFailedOperations())

	total, _ := f.uc.GetCentralStock(ctx, 2)
	assert.Equal(t, 5, total)
	assert.Zero(t, f.publisher.Count(entity.ActionUpdateStock))
}

func TestEscenario5_EliminarProductoInexistente(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 5)}})
	ctx := context.Background()

	before, err := f.uc.GetInventoryByStore(ctx, 1)
	require.NoError(t, err)

	err = f.uc.DeleteProductFromStore(ctx, 1, 99)
	assert.ErrorIs(t, err, domain.ErrProductNotInStore)

	f.clock.Advance(cacheTTL + time.Second)
	after, err := f.uc.GetInventoryByStore(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Zero(t, f.publisher.Count(entity.ActionDeleteProduct))
}

// ─────────────────────────────────────────────────────────────────────────────
// Propiedades
// ─────────────────────────────────────────────────────────────────────────────

func TestUpdateProductStock_ConcurrenteSerializaPorProducto(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 0), notebook(2, 0)}})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 40; i++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			store := int64(1 + q%2)
			ok, err := f.uc.UpdateProductStock(ctx, store, 2, q)
			assert.NoError(t, err)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&f.tx.maxInside), "un solo escritor por producto en todas las sucursales")
	assert.Equal(t, 40, f.publisher.Count(entity.ActionUpdateStock))

	p, err := f.products.Get(ctx, entity.ProductKey{ProductID: 2, StoreID: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity%2, "la sucursal 1 solo recibe cantidades pares")
	assert.Greater(t, p.Quantity, 0)
}

func TestUpdateProductStock_SucursalInexistente(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 5)}})

	ok, err := f.uc.UpdateProductStock(context.Background(), 77, 2, 3)
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
	assert.Empty(t, f.uc.PendingFailedOperations())
}

func TestUpdateProductStock_ProductoNoEstaEnSucursal(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 5)}})

	ok, err := f.uc.UpdateProductStock(context.Background(), 2, 2, 3)
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrProductNotInStore)
	assert.Equal(t, 1, f.tx.Calls(), "los errores de dominio no se reintentan")
}

func TestUpdateProductStock_FalloTransitorioSeRecuperaConReintento(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 5)}})
	f.tx.FailNext(2)

	ok, err := f.uc.UpdateProductStock(context.Background(), 1, 2, 9)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, f.tx.Calls())
	assert.Equal(t, 1, f.publisher.Count(entity.ActionUpdateStock), "un solo evento por mutación aplicada")
}

func TestUpdateProductStock_ReprocesoAplicaTrasRecuperacion(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 5)}})
	ctx := context.Background()
	f.tx.FailNext(3)

	ok, err := f.uc.UpdateProductStock(ctx, 1, 2, 12)
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, f.uc.PendingFailedOperations(), 1)

	report := f.uc.DrainFailedOperations(ctx)
	assert.Equal(t, 1, report.Processed)
	assert.Zero(t, report.Failed)

	total, _ := f.uc.GetCentralStock(ctx, 2)
	assert.Equal(t, 12, total)
	assert.Equal(t, 1, f.publisher.Count(entity.ActionUpdateStock))
}

func TestUpdateProductStock_CircuitoAbiertoCortocircuitaYSeRecupera(t *testing.T) {
	f := newFixture(t, fixtureOpts{
		products:  []entity.Product{notebook(1, 5)},
		threshold: 3,
		cooldown:  40 * time.Millisecond,
	})
	ctx := context.Background()
	f.tx.FailNext(3)

	ok, _ := f.uc.UpdateProductStock(ctx, 1, 2, 6)
	assert.False(t, ok)
	assert.Equal(t, resilience.StateOpen, f.guard.State())

	calls := f.tx.Calls()
	ok, err := f.uc.UpdateProductStock(ctx, 1, 2, 7)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, calls, f.tx.Calls(), "con el circuito abierto no se toca el almacén")
	assert.Len(t, f.uc.PendingFailedOperations(), 2)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, resilience.StateHalfOpen, f.guard.State())

	ok, err = f.uc.UpdateProductStock(ctx, 1, 2, 8)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, resilience.StateClosed, f.guard.State())

	states := f.uc.BreakerStates()
	require.Len(t, states, 1)
	assert.Equal(t, resilience.StateClosed, states[0].State)
}

func TestGetCentralStock_SumaTodasLasSucursales(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 4), notebook(2, 6)}})

	total, err := f.uc.GetCentralStock(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 10, total)

	total, err = f.uc.GetCentralStock(context.Background(), 404)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGetInventoryByStore_VentanaDeLecturaDesactualizada(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 5)}})
	ctx := context.Background()

	first, err := f.uc.GetInventoryByStore(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	ok, err := f.uc.UpdateProductStock(ctx, 1, 2, 50)
	require.NoError(t, err)
	require.True(t, ok)

	stale, err := f.uc.GetInventoryByStore(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, stale[0].Quantity, "la escritura no invalida la caché")

	f.clock.Advance(cacheTTL)
	fresh, err := f.uc.GetInventoryByStore(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 50, fresh[0].Quantity)
}

func TestGetInventoryByStore_ModificarResultadoNoAlteraLaCache(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 5)}})
	ctx := context.Background()

	miss, err := f.uc.GetInventoryByStore(ctx, 1)
	require.NoError(t, err)
	require.Len(t, miss, 1)
	require.NotNil(t, miss[0].Store)
	miss[0].Name = "alterado"
	miss[0].Store.Name = "alterada"

	hit, err := f.uc.GetInventoryByStore(ctx, 1)
	require.NoError(t, err)
	require.Len(t, hit, 1)
	assert.Equal(t, "Notebook", hit[0].Name)
	assert.Equal(t, "Central", hit[0].Store.Name)
	hit[0].Quantity = 999
	hit[0].Store.Location = "otra"

	again, err := f.uc.GetInventoryByStore(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, again[0].Quantity)
	assert.Equal(t, "Central", again[0].Store.Name)
	assert.NotEqual(t, "otra", again[0].Store.Location)
}

func TestGetInventoryByStore_SucursalSinProductosDevuelveListaVacia(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	list, err := f.uc.GetInventoryByStore(context.Background(), 999)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestCreateProduct_ClaveExistenteSeReemplaza(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 5)}})
	ctx := context.Background()

	_, err := f.uc.CreateProduct(ctx, 1, dto.CreateProductRequest{ID: 2, Name: "Notebook Pro", Category: "Computer", Quantity: 1})
	require.NoError(t, err)

	p, _ := f.products.Get(ctx, entity.ProductKey{ProductID: 2, StoreID: 1})
	assert.Equal(t, "Notebook Pro", p.Name)
	assert.Equal(t, 1, p.Quantity)
}

func TestCreateProduct_Validaciones(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()

	_, err := f.uc.CreateProduct(ctx, 1, dto.CreateProductRequest{ID: 0, Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateProduct(ctx, 1, dto.CreateProductRequest{ID: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateProduct(ctx, 1, dto.CreateProductRequest{ID: 3, Name: "x", Quantity: -2})
	assert.ErrorIs(t, err, domain.ErrNegativeQuantity)

	_, err = f.uc.CreateProduct(ctx, 42, dto.CreateProductRequest{ID: 3, Name: "x", Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
	assert.Zero(t, f.publisher.Count(entity.ActionCreateProduct))
}

func TestDeleteProductFromStore_EliminaYPublica(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 5), notebook(2, 3)}})
	ctx := context.Background()

	require.NoError(t, f.uc.DeleteProductFromStore(ctx, 1, 2))

	p, _ := f.products.Get(ctx, entity.ProductKey{ProductID: 2, StoreID: 1})
	assert.Nil(t, p)
	total, _ := f.uc.GetCentralStock(ctx, 2)
	assert.Equal(t, 3, total, "la otra sucursal no se ve afectada")
	assert.Equal(t, 1, f.publisher.Count(entity.ActionDeleteProduct))
}

func TestRunDrainLoop_ProcesaPeriodicamente(t *testing.T) {
	f := newFixture(t, fixtureOpts{products: []entity.Product{notebook(1, 5)}})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.tx.FailNext(3)

	ok, _ := f.uc.UpdateProductStock(ctx, 1, 2, 21)
	require.False(t, ok)

	go f.uc.RunDrainLoop(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		total, _ := f.uc.GetCentralStock(context.Background(), 2)
		return total == 21
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, f.uc.PendingFailedOperations())
}
