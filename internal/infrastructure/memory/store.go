// Package memory implementa los puertos de persistencia sobre mapas en
// memoria. Se usa en tests y como modo demo sin base de datos. La exclusión
// es a nivel de store: Run toma el lock completo, así que dos lotes
// concurrentes sobre la misma llave quedan serializados y el CAS por llave
// detecta cualquier carrera residual.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tu-usuario/retail-analytics/internal/application/importer"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
)

var (
	_ repository.CatalogRepository     = (*Store)(nil)
	_ repository.StockRepository       = (*Store)(nil)
	_ repository.SalesRepository       = (*Store)(nil)
	_ repository.DemandRepository      = (*Store)(nil)
	_ repository.EOQResultRepository   = (*Store)(nil)
	_ repository.ImportBatchRepository = (*Store)(nil)
	_ importer.TxRunner                = (*Store)(nil)
)

type demandKey struct {
	key    entity.ProductBranchKey
	period time.Time
}

// Store almacén en memoria con todos los puertos del sistema.
type Store struct {
	mu      sync.RWMutex
	catalog map[entity.ProductBranchKey]struct{}
	stock   map[entity.ProductBranchKey]entity.Stock
	sales   []entity.SaleLine
	demand  map[demandKey]entity.DemandHistoryBucket
	eoq     map[entity.ProductBranchKey]entity.EOQResult
	batches map[string]entity.ImportBatch
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		catalog: make(map[entity.ProductBranchKey]struct{}),
		stock:   make(map[entity.ProductBranchKey]entity.Stock),
		demand:  make(map[demandKey]entity.DemandHistoryBucket),
		eoq:     make(map[entity.ProductBranchKey]entity.EOQResult),
		batches: make(map[string]entity.ImportBatch),
	}
}

// SeedProduct da de alta un producto en el catálogo con su stock inicial.
func (s *Store) SeedProduct(key entity.ProductBranchKey, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog[key] = struct{}{}
	s.stock[key] = entity.Stock{
		ProductID: key.ProductID,
		BranchID:  key.BranchID,
		Quantity:  quantity,
		UpdatedAt: time.Now().UTC(),
	}
}

// StockQuantity devuelve la cantidad actual de una llave (0 si no existe).
func (s *Store) StockQuantity(key entity.ProductBranchKey) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stock[key].Quantity
}

// ── CatalogRepository ────────────────────────────────────────────────────────

func (s *Store) Exists(_ context.Context, keys []entity.ProductBranchKey) (map[entity.ProductBranchKey]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[entity.ProductBranchKey]struct{})
	for _, k := range keys {
		if _, ok := s.catalog[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out, nil
}

func (s *Store) CurrentStock(_ context.Context, keys []entity.ProductBranchKey) (map[entity.ProductBranchKey]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[entity.ProductBranchKey]int64)
	for _, k := range keys {
		if st, ok := s.stock[k]; ok {
			out[k] = st.Quantity
		}
	}
	return out, nil
}

// ── StockRepository (fuera de transacción) ───────────────────────────────────

func (s *Store) Get(_ context.Context, key entity.ProductBranchKey) (*entity.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(key), nil
}

func (s *Store) GetForUpdate(ctx context.Context, key entity.ProductBranchKey) (*entity.Stock, error) {
	return s.Get(ctx, key)
}

func (s *Store) CompareAndDecrement(_ context.Context, key entity.ProductBranchKey, expected, delta int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compareAndDecrementLocked(key, expected, delta), nil
}

func (s *Store) getLocked(key entity.ProductBranchKey) *entity.Stock {
	if st, ok := s.stock[key]; ok {
		cp := st
		return &cp
	}
	// Igual que el backend SQL: llave ausente se reporta con cantidad 0
	return &entity.Stock{ProductID: key.ProductID, BranchID: key.BranchID}
}

func (s *Store) compareAndDecrementLocked(key entity.ProductBranchKey, expected, delta int64) bool {
	st, ok := s.stock[key]
	if !ok || st.Quantity != expected {
		return false
	}
	st.Quantity -= delta
	st.UpdatedAt = time.Now().UTC()
	s.stock[key] = st
	return true
}

// ── SalesRepository ──────────────────────────────────────────────────────────

func (s *Store) InsertLines(_ context.Context, lines []entity.SaleLine) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, lines...)
	return len(lines), nil
}

// ── DemandRepository ─────────────────────────────────────────────────────────

func (s *Store) UpsertBuckets(_ context.Context, buckets []entity.DemandHistoryBucket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range buckets {
		s.demand[demandKey{key: b.Key(), period: b.PeriodDate}] = b
	}
	return nil
}

func (s *Store) ListByKey(_ context.Context, key entity.ProductBranchKey, from, to time.Time) ([]entity.DemandHistoryBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.DemandHistoryBucket
	for dk, b := range s.demand {
		if dk.key != key {
			continue
		}
		if dk.period.Before(from) || dk.period.After(to) {
			continue
		}
		out = append(out, b)
	}
	sortBucketsByPeriod(out)
	return out, nil
}

// ── EOQResultRepository ──────────────────────────────────────────────────────

func (s *Store) UpsertResult(_ context.Context, result *entity.EOQResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eoq[result.Key()] = *result
	return nil
}

func (s *Store) GetByKey(_ context.Context, key entity.ProductBranchKey) (*entity.EOQResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.eoq[key]; ok {
		cp := r
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) List(_ context.Context, branchID *int64, limit int) ([]*entity.EOQResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.EOQResult, 0)
	for _, r := range s.eoq {
		if branchID != nil && r.BranchID != *branchID {
			continue
		}
		cp := r
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ── ImportBatchRepository ────────────────────────────────────────────────────

func (s *Store) Save(_ context.Context, batch *entity.ImportBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[batch.BatchID] = *batch
	return nil
}

func (s *Store) GetByID(_ context.Context, batchID string) (*entity.ImportBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.batches[batchID]; ok {
		cp := b
		return &cp, nil
	}
	return nil, nil
}

// ── TxRunner ─────────────────────────────────────────────────────────────────

// Run ejecuta fn con exclusión total sobre el store y semántica de rollback:
// si fn falla, el stock, las ventas y los lotes vuelven al estado previo.
func (s *Store) Run(_ context.Context, fn func(
	stockRepo repository.StockRepository,
	salesRepo repository.SalesRepository,
	batchRepo repository.ImportBatchRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked()
	tx := &txStore{s: s}
	if err := fn(tx, tx, tx); err != nil {
		s.restoreLocked(snap)
		return err
	}
	return nil
}

type snapshot struct {
	stock   map[entity.ProductBranchKey]entity.Stock
	sales   int
	batches map[string]entity.ImportBatch
}

func (s *Store) snapshotLocked() snapshot {
	stock := make(map[entity.ProductBranchKey]entity.Stock, len(s.stock))
	for k, v := range s.stock {
		stock[k] = v
	}
	batches := make(map[string]entity.ImportBatch, len(s.batches))
	for k, v := range s.batches {
		batches[k] = v
	}
	return snapshot{stock: stock, sales: len(s.sales), batches: batches}
}

func (s *Store) restoreLocked(snap snapshot) {
	s.stock = snap.stock
	s.sales = s.sales[:snap.sales]
	s.batches = snap.batches
}

// txStore repositorios atados a la "transacción": operan sin tomar locks
// porque Run ya sostiene el lock exclusivo.
type txStore struct {
	s *Store
}

func (t *txStore) Get(_ context.Context, key entity.ProductBranchKey) (*entity.Stock, error) {
	return t.s.getLocked(key), nil
}

func (t *txStore) GetForUpdate(_ context.Context, key entity.ProductBranchKey) (*entity.Stock, error) {
	return t.s.getLocked(key), nil
}

func (t *txStore) CompareAndDecrement(_ context.Context, key entity.ProductBranchKey, expected, delta int64) (bool, error) {
	return t.s.compareAndDecrementLocked(key, expected, delta), nil
}

func (t *txStore) InsertLines(_ context.Context, lines []entity.SaleLine) (int, error) {
	t.s.sales = append(t.s.sales, lines...)
	return len(lines), nil
}

func (t *txStore) Save(_ context.Context, batch *entity.ImportBatch) error {
	t.s.batches[batch.BatchID] = *batch
	return nil
}

func (t *txStore) GetByID(_ context.Context, batchID string) (*entity.ImportBatch, error) {
	if b, ok := t.s.batches[batchID]; ok {
		cp := b
		return &cp, nil
	}
	return nil, nil
}

func sortBucketsByPeriod(buckets []entity.DemandHistoryBucket) {
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].PeriodDate.Before(buckets[j].PeriodDate)
	})
}
