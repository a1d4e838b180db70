// Package memory implementa los puertos de persistencia sobre mapas en
// memoria, con semántica transaccional por snapshot. Respaldo de los tests de
// casos de uso; no es apto para producción.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/agrocampo/agro-inventario/internal/application/ports"
	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu sync.Mutex

	positions map[string]*entity.StockPosition // key: posKey
	lots      map[string]*entity.Lot           // key: id
	movements map[string]*entity.Movement      // key: id
	items     map[string][]entity.MovementItem // key: movement id
	products  map[string]*entity.Product       // key: id
	sectors   map[string]*entity.Sector        // key: id
	farms     map[string]*entity.Farm          // key: id

	lotSeqs map[string]int64 // key: companyID|productID
	docSeqs map[string]int64 // key: companyID|typeCode|year
}

// NewStore crea el estado vacío.
func NewStore() *Store {
	return &Store{
		positions: map[string]*entity.StockPosition{},
		lots:      map[string]*entity.Lot{},
		movements: map[string]*entity.Movement{},
		items:     map[string][]entity.MovementItem{},
		products:  map[string]*entity.Product{},
		sectors:   map[string]*entity.Sector{},
		farms:     map[string]*entity.Farm{},
		lotSeqs:   map[string]int64{},
		docSeqs:   map[string]int64{},
	}
}

func posKey(companyID, productID, sectorID string, lotID *string) string {
	lot := "<nil>"
	if lotID != nil {
		lot = *lotID
	}
	return strings.Join([]string{companyID, productID, sectorID, lot}, "|")
}

// SeedProduct, SeedSector, SeedFarm y SeedLot cargan datos maestros para tests.
func (s *Store) SeedProduct(p *entity.Product) { s.products[p.ID] = p }
func (s *Store) SeedSector(sec *entity.Sector) { s.sectors[sec.ID] = sec }
func (s *Store) SeedFarm(f *entity.Farm)       { s.farms[f.ID] = f }
func (s *Store) SeedLot(l *entity.Lot)         { s.lots[l.ID] = l }

// SeedPosition carga una posición existente.
func (s *Store) SeedPosition(p *entity.StockPosition) {
	s.positions[posKey(p.CompanyID, p.ProductID, p.SectorID, p.LotID)] = p
}

// Position devuelve la posición tal como está en el store (nil si no existe).
func (s *Store) Position(companyID, productID, sectorID string, lotID *string) *entity.StockPosition {
	return s.positions[posKey(companyID, productID, sectorID, lotID)]
}

// Movements devuelve todos los movimientos registrados (con items), sin orden garantizado.
func (s *Store) Movements() []*entity.Movement {
	out := make([]*entity.Movement, 0, len(s.movements))
	for _, m := range s.movements {
		c := *m
		c.Items = append([]entity.MovementItem(nil), s.items[m.ID]...)
		out = append(out, &c)
	}
	return out
}

// Repos devuelve el juego de repositorios atado al store.
func (s *Store) Repos() ports.Repos {
	return ports.Repos{
		Positions: &PositionRepo{s: s},
		Lots:      &LotRepo{s: s},
		Movements: &MovementRepo{s: s},
		Products:  &ProductRepo{s: s},
		Sectors:   &SectorRepo{s: s},
	}
}

// snapshot copia profunda del estado mutable (para rollback).
func (s *Store) snapshot() *Store {
	snap := NewStore()
	for k, v := range s.positions {
		c := *v
		snap.positions[k] = &c
	}
	for k, v := range s.lots {
		c := *v
		snap.lots[k] = &c
	}
	for k, v := range s.movements {
		c := *v
		snap.movements[k] = &c
	}
	for k, v := range s.items {
		snap.items[k] = append([]entity.MovementItem(nil), v...)
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.sectors {
		snap.sectors[k] = v
	}
	for k, v := range s.farms {
		snap.farms[k] = v
	}
	for k, v := range s.lotSeqs {
		snap.lotSeqs[k] = v
	}
	for k, v := range s.docSeqs {
		snap.docSeqs[k] = v
	}
	return snap
}

func (s *Store) restore(snap *Store) {
	s.positions = snap.positions
	s.lots = snap.lots
	s.movements = snap.movements
	s.items = snap.items
	s.products = snap.products
	s.sectors = snap.sectors
	s.farms = snap.farms
	s.lotSeqs = snap.lotSeqs
	s.docSeqs = snap.docSeqs
}

// TxRunner corre el callback contra el store; si falla, restaura el snapshot
// previo para imitar el rollback de una transacción real.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner en memoria.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

var _ ports.TxRunner = (*TxRunner)(nil)

// Run ejecuta fn con repos del store; error = rollback total.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := r.s.snapshot()
	if err := fn(r.s.Repos()); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}
