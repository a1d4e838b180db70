package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/domain"
	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

var (
	_ repository.PositionRepository = (*PositionRepo)(nil)
	_ repository.LotRepository      = (*LotRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.SectorRepository   = (*SectorRepo)(nil)
	_ repository.FarmRepository     = (*FarmRepo)(nil)
)

// PositionRepo posiciones de stock en memoria.
type PositionRepo struct {
	s *Store
}

func (r *PositionRepo) Get(ctx context.Context, companyID, productID, sectorID string, lotID *string) (*entity.StockPosition, error) {
	p := r.s.positions[posKey(companyID, productID, sectorID, lotID)]
	if p == nil {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *PositionRepo) GetForUpdate(ctx context.Context, companyID, productID, sectorID string, lotID *string) (*entity.StockPosition, error) {
	return r.Get(ctx, companyID, productID, sectorID, lotID)
}

func (r *PositionRepo) Upsert(ctx context.Context, pos *entity.StockPosition) error {
	c := *pos
	r.s.positions[posKey(pos.CompanyID, pos.ProductID, pos.SectorID, pos.LotID)] = &c
	return nil
}

func (r *PositionRepo) ReserveIfAvailable(ctx context.Context, companyID, productID, sectorID string, lotID *string, qty decimal.Decimal) (*entity.StockPosition, error) {
	p := r.s.positions[posKey(companyID, productID, sectorID, lotID)]
	if p == nil || p.Available().LessThan(qty) {
		return nil, nil
	}
	p.QuantityReserved = p.QuantityReserved.Add(qty)
	p.UpdatedAt = time.Now()
	c := *p
	return &c, nil
}

func (r *PositionRepo) ReleaseReserved(ctx context.Context, companyID, productID, sectorID string, lotID *string, qty decimal.Decimal) (*entity.StockPosition, error) {
	p := r.s.positions[posKey(companyID, productID, sectorID, lotID)]
	if p == nil {
		return nil, nil
	}
	p.QuantityReserved = p.QuantityReserved.Sub(qty)
	if p.QuantityReserved.LessThan(decimal.Zero) {
		p.QuantityReserved = decimal.Zero
	}
	p.UpdatedAt = time.Now()
	c := *p
	return &c, nil
}

func (r *PositionRepo) DeductIfAvailable(ctx context.Context, companyID, productID, sectorID string, lotID *string, qty decimal.Decimal) (*entity.StockPosition, error) {
	p := r.s.positions[posKey(companyID, productID, sectorID, lotID)]
	if p == nil || p.Available().LessThan(qty) {
		return nil, nil
	}
	p.QuantityOnHand = p.QuantityOnHand.Sub(qty)
	p.LastMovementAt = time.Now()
	c := *p
	return &c, nil
}

func (r *PositionRepo) SumOnHandByLot(ctx context.Context, companyID, lotID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.s.positions {
		if p.CompanyID == companyID && p.LotID != nil && *p.LotID == lotID {
			total = total.Add(p.QuantityOnHand)
		}
	}
	return total, nil
}

func (r *PositionRepo) ListBySector(ctx context.Context, companyID, sectorID string) ([]*entity.StockPosition, error) {
	var out []*entity.StockPosition
	for _, p := range r.s.positions {
		if p.CompanyID == companyID && p.SectorID == sectorID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// LotRepo lotes en memoria.
type LotRepo struct {
	s *Store
}

func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	for _, l := range r.s.lots {
		if l.CompanyID == lot.CompanyID && l.ProductID == lot.ProductID &&
			strings.EqualFold(l.Number, lot.Number) {
			return &domain.ConflictError{Constraint: "uq_lots_product_number", Cause: fmt.Errorf("número %s duplicado", lot.Number)}
		}
	}
	c := *lot
	r.s.lots[lot.ID] = &c
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Lot, error) {
	l := r.s.lots[id]
	if l == nil || l.CompanyID != companyID {
		return nil, nil
	}
	c := *l
	return &c, nil
}

func (r *LotRepo) GetByNumber(ctx context.Context, companyID, productID, number string) (*entity.Lot, error) {
	for _, l := range r.s.lots {
		if l.CompanyID == companyID && l.ProductID == productID && strings.EqualFold(l.Number, number) {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

func (r *LotRepo) UpdateStatus(ctx context.Context, companyID, id, status string) error {
	l := r.s.lots[id]
	if l == nil || l.CompanyID != companyID {
		return fmt.Errorf("lote %s no existe", id)
	}
	l.Status = status
	l.UpdatedAt = time.Now()
	return nil
}

func (r *LotRepo) NextSequence(ctx context.Context, companyID, productID string) (int64, error) {
	key := companyID + "|" + productID
	r.s.lotSeqs[key]++
	return r.s.lotSeqs[key], nil
}

func (r *LotRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.s.lots {
		if l.CompanyID == companyID && l.ProductID == productID {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *LotRepo) ListActive(ctx context.Context, companyID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.s.lots {
		if l.CompanyID == companyID && l.Status == entity.LotStatusActive {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// MovementRepo log de movimientos en memoria.
type MovementRepo struct {
	s *Store
}

func (r *MovementRepo) CreateHeader(ctx context.Context, m *entity.Movement) error {
	for _, ex := range r.s.movements {
		if ex.CompanyID == m.CompanyID && ex.DocumentNumber == m.DocumentNumber {
			return &domain.ConflictError{Constraint: "uq_movements_document_number", Cause: fmt.Errorf("documento %s duplicado", m.DocumentNumber)}
		}
	}
	c := *m
	c.Items = nil
	r.s.movements[m.ID] = &c
	return nil
}

func (r *MovementRepo) CreateItem(ctx context.Context, item *entity.MovementItem) error {
	r.s.items[item.MovementID] = append(r.s.items[item.MovementID], *item)
	return nil
}

func (r *MovementRepo) UpdateTotal(ctx context.Context, movementID string, total decimal.Decimal) error {
	m := r.s.movements[movementID]
	if m == nil {
		return fmt.Errorf("movimiento %s no existe", movementID)
	}
	m.TotalValue = total
	return nil
}

func (r *MovementRepo) UpdateStatus(ctx context.Context, in *entity.Movement) error {
	m := r.s.movements[in.ID]
	if m == nil || m.CompanyID != in.CompanyID {
		return fmt.Errorf("movimiento %s no existe", in.ID)
	}
	m.Status = in.Status
	m.ApprovedBy = in.ApprovedBy
	m.CancelledBy = in.CancelledBy
	m.CancelReason = in.CancelReason
	m.UpdatedAt = time.Now()
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Movement, error) {
	m := r.s.movements[id]
	if m == nil || m.CompanyID != companyID {
		return nil, nil
	}
	c := *m
	c.Items = append([]entity.MovementItem(nil), r.s.items[id]...)
	return &c, nil
}

func (r *MovementRepo) List(ctx context.Context, companyID string, f repository.MovementFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if m.CompanyID != companyID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.From != nil && m.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && m.Date.After(*f.To) {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MovementRepo) NextDocumentNumber(ctx context.Context, companyID, typeCode string, year int) (int64, error) {
	key := fmt.Sprintf("%s|%s|%d", companyID, typeCode, year)
	r.s.docSeqs[key]++
	return r.s.docSeqs[key], nil
}

// ProductRepo productos en memoria.
type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	c := *p
	r.s.products[p.ID] = &c
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p := r.s.products[id]
	if p == nil {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *ProductRepo) List(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.CompanyID == companyID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InternalCode < out[j].InternalCode })
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SectorRepo sectores en memoria.
type SectorRepo struct {
	s *Store
}

func (r *SectorRepo) Create(ctx context.Context, sec *entity.Sector) error {
	c := *sec
	r.s.sectors[sec.ID] = &c
	return nil
}

func (r *SectorRepo) GetByID(ctx context.Context, id string) (*entity.Sector, error) {
	s := r.s.sectors[id]
	if s == nil {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (r *SectorRepo) ListByFarm(ctx context.Context, companyID, farmID string) ([]*entity.Sector, error) {
	var out []*entity.Sector
	for _, s := range r.s.sectors {
		if s.CompanyID == companyID && s.FarmID == farmID {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FarmRepo fincas en memoria.
type FarmRepo struct {
	s *Store
}

// NewFarmRepo construye el repo de fincas atado al store.
func NewFarmRepo(s *Store) *FarmRepo { return &FarmRepo{s: s} }

func (r *FarmRepo) Create(ctx context.Context, f *entity.Farm) error {
	c := *f
	r.s.farms[f.ID] = &c
	return nil
}

func (r *FarmRepo) GetByID(ctx context.Context, id string) (*entity.Farm, error) {
	f := r.s.farms[id]
	if f == nil {
		return nil, nil
	}
	c := *f
	return &c, nil
}

func (r *FarmRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Farm, error) {
	var out []*entity.Farm
	for _, f := range r.s.farms {
		if f.CompanyID == companyID {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
