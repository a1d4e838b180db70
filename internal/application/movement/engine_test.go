package movement_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrocampo/agro-inventario/internal/application/ledger"
	"github.com/agrocampo/agro-inventario/internal/application/movement"
	"github.com/agrocampo/agro-inventario/internal/domain"
	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "00000000-0000-0000-0000-0000000000c0"
	testActorID   = "00000000-0000-0000-0000-0000000000a0"
	testFarmID    = "00000000-0000-0000-0000-0000000000f0"
	testProductID = "00000000-0000-0000-0000-0000000000d1"
	testProduct2  = "00000000-0000-0000-0000-0000000000d2"
	testSectorID  = "00000000-0000-0000-0000-0000000000e1"
	testSector2ID = "00000000-0000-0000-0000-0000000000e2"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strptr(s string) *string { return &s }

// newFixture monta un store con finca, dos sectores y dos productos sembrados,
// y devuelve el motor de movimientos armado sobre repos en memoria.
func newFixture(t *testing.T) (*memory.Store, *movement.Engine) {
	t.Helper()
	store := memory.NewStore()
	store.SeedFarm(&entity.Farm{ID: testFarmID, CompanyID: testCompanyID, Name: "La Esperanza", Status: "active"})
	store.SeedSector(&entity.Sector{ID: testSectorID, CompanyID: testCompanyID, FarmID: testFarmID, Name: "Bodega Central", Type: entity.SectorTypeWarehouse})
	store.SeedSector(&entity.Sector{ID: testSector2ID, CompanyID: testCompanyID, FarmID: testFarmID, Name: "Silo Norte", Type: entity.SectorTypeSilo})
	store.SeedProduct(&entity.Product{ID: testProductID, CompanyID: testCompanyID, InternalCode: "FER-001", Name: "Fertilizante NPK", UnitMeasure: "kg"})
	store.SeedProduct(&entity.Product{ID: testProduct2, CompanyID: testCompanyID, InternalCode: "SEM-002", Name: "Semilla de maíz", UnitMeasure: "kg"})

	repos := store.Repos()
	policy := ledger.DefaultPolicy()
	ledgerUC := ledger.NewLedgerUseCase(memory.NewTxRunner(store), repos.Products, repos.Sectors, repos.Lots, policy)
	engine := movement.NewEngine(memory.NewTxRunner(store), ledgerUC, repos.Products, repos.Sectors, memory.NewFarmRepo(store), repos.Lots, repos.Movements, policy)
	return store, engine
}

func seedPosition(store *memory.Store, productID, sectorID string, onHand, reserved, cost string) {
	store.SeedPosition(&entity.StockPosition{
		ID:               "pos-" + productID + "-" + sectorID,
		CompanyID:        testCompanyID,
		ProductID:        productID,
		SectorID:         sectorID,
		QuantityOnHand:   dec(onHand),
		QuantityReserved: dec(reserved),
		UnitCost:         dec(cost),
		LastMovementAt:   time.Now(),
	})
}

func inboundInput(items ...movement.CreateItemInput) movement.CreateInput {
	return movement.CreateInput{
		CompanyID:           testCompanyID,
		ActorID:             testActorID,
		FarmID:              testFarmID,
		Type:                entity.MovementTypeIN,
		Date:                time.Now(),
		DestinationSectorID: strptr(testSectorID),
		Items:               items,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateComplete
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateComplete_EntradaCreaPosicionYNumeraDocumento(t *testing.T) {
	store, engine := newFixture(t)

	mov, err := engine.CreateComplete(context.Background(), inboundInput(
		movement.CreateItemInput{ProductID: testProductID, Quantity: dec("100"), UnitValue: dec("10")},
	))
	require.NoError(t, err)
	require.NotNil(t, mov)

	assert.Equal(t, entity.MovementStatusPending, mov.Status)
	assert.Equal(t, fmt.Sprintf("ENT-%d-000001", time.Now().Year()), mov.DocumentNumber)
	assert.True(t, mov.TotalValue.Equal(dec("1000")), "total = 100 * 10")
	require.Len(t, mov.Items, 1)

	pos := store.Position(testCompanyID, testProductID, testSectorID, nil)
	require.NotNil(t, pos, "la entrada debe crear la posición")
	assert.True(t, pos.QuantityOnHand.Equal(dec("100")))
	assert.True(t, pos.UnitCost.Equal(dec("10")))
}

func TestCreateComplete_NumeracionConsecutivaPorTipoYAnio(t *testing.T) {
	_, engine := newFixture(t)
	year := time.Now().Year()

	m1, err := engine.CreateComplete(context.Background(), inboundInput(
		movement.CreateItemInput{ProductID: testProductID, Quantity: dec("10"), UnitValue: dec("5")},
	))
	require.NoError(t, err)
	m2, err := engine.CreateComplete(context.Background(), inboundInput(
		movement.CreateItemInput{ProductID: testProductID, Quantity: dec("10"), UnitValue: dec("5")},
	))
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("ENT-%d-000001", year), m1.DocumentNumber)
	assert.Equal(t, fmt.Sprintf("ENT-%d-000002", year), m2.DocumentNumber)

	// Una salida arranca su propia secuencia.
	out, err := engine.CreateComplete(context.Background(), movement.CreateInput{
		CompanyID:      testCompanyID,
		ActorID:        testActorID,
		FarmID:         testFarmID,
		Type:           entity.MovementTypeOUT,
		Date:           time.Now(),
		OriginSectorID: strptr(testSectorID),
		Items: []movement.CreateItemInput{
			{ProductID: testProductID, Quantity: dec("5"), UnitValue: dec("5")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("SAL-%d-000001", year), out.DocumentNumber)
}

func TestCreateComplete_EntradaRecalculaPromedioPonderado(t *testing.T) {
	store, engine := newFixture(t)
	seedPosition(store, testProductID, testSectorID, "100", "0", "10")

	// 100@10 + 50@16 -> (1000+800)/150 = 12
	_, err := engine.CreateComplete(context.Background(), inboundInput(
		movement.CreateItemInput{ProductID: testProductID, Quantity: dec("50"), UnitValue: dec("16")},
	))
	require.NoError(t, err)

	pos := store.Position(testCompanyID, testProductID, testSectorID, nil)
	assert.True(t, pos.QuantityOnHand.Equal(dec("150")))
	assert.True(t, pos.UnitCost.Equal(dec("12")), "promedio ponderado: (100*10+50*16)/150 = 12, fue %s", pos.UnitCost)
}

func TestCreateComplete_SalidaNoTocaElCosto(t *testing.T) {
	store, engine := newFixture(t)
	seedPosition(store, testProductID, testSectorID, "100", "0", "12")

	_, err := engine.CreateComplete(context.Background(), movement.CreateInput{
		CompanyID:      testCompanyID,
		ActorID:        testActorID,
		FarmID:         testFarmID,
		Type:           entity.MovementTypeOUT,
		Date:           time.Now(),
		OriginSectorID: strptr(testSectorID),
		Items: []movement.CreateItemInput{
			{ProductID: testProductID, Quantity: dec("40"), UnitValue: dec("12")},
		},
	})
	require.NoError(t, err)

	pos := store.Position(testCompanyID, testProductID, testSectorID, nil)
	assert.True(t, pos.QuantityOnHand.Equal(dec("60")))
	assert.True(t, pos.UnitCost.Equal(dec("12")), "la salida no recalcula el promedio")
}

func TestCreateComplete_FallaDeUnItemAbortaTodo(t *testing.T) {
	store, engine := newFixture(t)
	seedPosition(store, testProductID, testSectorID, "100", "0", "10")
	seedPosition(store, testProduct2, testSectorID, "5", "0", "20")

	// El primer item alcanza; el segundo no: nada debe quedar aplicado.
	_, err := engine.CreateComplete(context.Background(), movement.CreateInput{
		CompanyID:      testCompanyID,
		ActorID:        testActorID,
		FarmID:         testFarmID,
		Type:           entity.MovementTypeOUT,
		Date:           time.Now(),
		OriginSectorID: strptr(testSectorID),
		Items: []movement.CreateItemInput{
			{ProductID: testProductID, Quantity: dec("30"), UnitValue: dec("10")},
			{ProductID: testProduct2, Quantity: dec("50"), UnitValue: dec("20")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	p1 := store.Position(testCompanyID, testProductID, testSectorID, nil)
	p2 := store.Position(testCompanyID, testProduct2, testSectorID, nil)
	assert.True(t, p1.QuantityOnHand.Equal(dec("100")), "el item válido también debe revertirse")
	assert.True(t, p2.QuantityOnHand.Equal(dec("5")))
	assert.Empty(t, store.Movements(), "no debe quedar cabecera del movimiento abortado")
}

func TestCreateComplete_ValidacionAcumulaCampos(t *testing.T) {
	_, engine := newFixture(t)

	_, err := engine.CreateComplete(context.Background(), movement.CreateInput{
		CompanyID: testCompanyID,
		FarmID:    testFarmID,
		Type:      entity.MovementTypeOUT, // requiere sector origen
		Date:      time.Now(),
		Items: []movement.CreateItemInput{
			{ProductID: "", Quantity: decimal.Zero, UnitValue: dec("-1")},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "origin_sector_id")
	assert.Contains(t, verr.Fields, "items[0].product_id")
	assert.Contains(t, verr.Fields, "items[0].quantity")
	assert.Contains(t, verr.Fields, "items[0].unit_value")
}

func TestCreateComplete_ProductoDeOtraEmpresaEsNotFound(t *testing.T) {
	store, engine := newFixture(t)
	store.SeedProduct(&entity.Product{ID: "ajeno", CompanyID: "otra-empresa", InternalCode: "X", Name: "Ajeno"})

	_, err := engine.CreateComplete(context.Background(), inboundInput(
		movement.CreateItemInput{ProductID: "ajeno", Quantity: dec("1"), UnitValue: dec("1")},
	))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateComplete_TrasladoMueveStockEntreSectores(t *testing.T) {
	store, engine := newFixture(t)
	seedPosition(store, testProductID, testSectorID, "80", "0", "15")

	mov, err := engine.CreateComplete(context.Background(), movement.CreateInput{
		CompanyID:           testCompanyID,
		ActorID:             testActorID,
		FarmID:              testFarmID,
		Type:                entity.MovementTypeTRANSFER,
		Date:                time.Now(),
		OriginSectorID:      strptr(testSectorID),
		DestinationSectorID: strptr(testSector2ID),
		Items: []movement.CreateItemInput{
			{ProductID: testProductID, Quantity: dec("30"), UnitValue: dec("15")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("TRA-%d-000001", time.Now().Year()), mov.DocumentNumber)

	origin := store.Position(testCompanyID, testProductID, testSectorID, nil)
	dest := store.Position(testCompanyID, testProductID, testSector2ID, nil)
	assert.True(t, origin.QuantityOnHand.Equal(dec("50")))
	require.NotNil(t, dest)
	assert.True(t, dest.QuantityOnHand.Equal(dec("30")))
	assert.True(t, dest.UnitCost.Equal(dec("15")), "destino vacío hereda el costo de origen")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de estados: approve / confirm
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_Confirm_FlujoCompleto(t *testing.T) {
	_, engine := newFixture(t)
	ctx := context.Background()

	mov, err := engine.CreateComplete(ctx, inboundInput(
		movement.CreateItemInput{ProductID: testProductID, Quantity: dec("10"), UnitValue: dec("5")},
	))
	require.NoError(t, err)
	require.Equal(t, entity.MovementStatusPending, mov.Status)

	approved, err := engine.Approve(ctx, testCompanyID, mov.ID, testActorID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, testActorID, *approved.ApprovedBy)

	confirmed, err := engine.Confirm(ctx, testCompanyID, mov.ID, testActorID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusConfirmed, confirmed.Status)
}

func TestApprove_SoloDesdePending(t *testing.T) {
	_, engine := newFixture(t)
	ctx := context.Background()

	mov, err := engine.CreateComplete(ctx, inboundInput(
		movement.CreateItemInput{ProductID: testProductID, Quantity: dec("10"), UnitValue: dec("5")},
	))
	require.NoError(t, err)
	_, err = engine.Approve(ctx, testCompanyID, mov.ID, testActorID)
	require.NoError(t, err)

	// Aprobar dos veces es transición inválida.
	_, err = engine.Approve(ctx, testCompanyID, mov.ID, testActorID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestConfirm_RequiereAprobacionPrevia(t *testing.T) {
	_, engine := newFixture(t)
	ctx := context.Background()

	mov, err := engine.CreateComplete(ctx, inboundInput(
		movement.CreateItemInput{ProductID: testProductID, Quantity: dec("10"), UnitValue: dec("5")},
	))
	require.NoError(t, err)

	_, err = engine.Confirm(ctx, testCompanyID, mov.ID, testActorID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "pending -> confirmed salta la aprobación")
}

func TestTransition_MovimientoDeOtraEmpresaEsNotFound(t *testing.T) {
	_, engine := newFixture(t)
	ctx := context.Background()

	mov, err := engine.CreateComplete(ctx, inboundInput(
		movement.CreateItemInput{ProductID: testProductID, Quantity: dec("10"), UnitValue: dec("5")},
	))
	require.NoError(t, err)

	_, err = engine.Approve(ctx, "otra-empresa", mov.ID, testActorID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancel
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_RevierteEfectosYDejaCompensatorio(t *testing.T) {
	store, engine := newFixture(t)
	ctx := context.Background()

	mov, err := engine.CreateComplete(ctx, inboundInput(
		movement.CreateItemInput{ProductID: testProductID, Quantity: dec("100"), UnitValue: dec("10")},
	))
	require.NoError(t, err)

	cancelled, err := engine.Cancel(ctx, testCompanyID, mov.ID, testActorID, "pedido anulado")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, testActorID, *cancelled.CancelledBy)
	assert.Equal(t, "pedido anulado", cancelled.CancelReason)

	// El stock volvió a su estado previo.
	pos := store.Position(testCompanyID, testProductID, testSectorID, nil)
	assert.True(t, pos.QuantityOnHand.IsZero(), "la entrada cancelada debe deshacerse")

	// Queda un movimiento compensatorio confirmado enlazado al original.
	var inverse *entity.Movement
	for _, m := range store.Movements() {
		if m.ReversalOfID != nil && *m.ReversalOfID == mov.ID {
			inverse = m
		}
	}
	require.NotNil(t, inverse, "debe existir el movimiento de reversión")
	assert.Equal(t, entity.MovementTypeOUT, inverse.Type, "una entrada se revierte con una salida")
	assert.Equal(t, entity.MovementStatusConfirmed, inverse.Status)
	require.Len(t, inverse.Items, 1)
	assert.True(t, inverse.Items[0].Quantity.Equal(dec("100")))
}

func TestCancel_ConfirmadoEsInvalido(t *testing.T) {
	store, engine := newFixture(t)
	ctx := context.Background()

	mov, err := engine.CreateComplete(ctx, inboundInput(
		movement.CreateItemInput{ProductID: testProductID, Quantity: dec("100"), UnitValue: dec("10")},
	))
	require.NoError(t, err)
	_, err = engine.Approve(ctx, testCompanyID, mov.ID, testActorID)
	require.NoError(t, err)
	_, err = engine.Confirm(ctx, testCompanyID, mov.ID, testActorID)
	require.NoError(t, err)

	_, err = engine.Cancel(ctx, testCompanyID, mov.ID, testActorID, "tarde")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "confirmado es terminal")

	pos := store.Position(testCompanyID, testProductID, testSectorID, nil)
	assert.True(t, pos.QuantityOnHand.Equal(dec("100")), "el intento fallido no debe tocar el stock")
}

func TestCancel_SalidaSinStockDeVueltaFalla(t *testing.T) {
	store, engine := newFixture(t)
	ctx := context.Background()
	seedPosition(store, testProductID, testSectorID, "100", "0", "10")

	mov, err := engine.CreateComplete(ctx, movement.CreateInput{
		CompanyID:           testCompanyID,
		ActorID:             testActorID,
		FarmID:              testFarmID,
		Type:                entity.MovementTypeIN,
		Date:                time.Now(),
		DestinationSectorID: strptr(testSector2ID),
		Items: []movement.CreateItemInput{
			{ProductID: testProductID, Quantity: dec("20"), UnitValue: dec("10")},
		},
	})
	require.NoError(t, err)

	// Si alguien ya consumió el stock ingresado, la cancelación no puede revertir.
	_, err = engine.CreateComplete(ctx, movement.CreateInput{
		CompanyID:      testCompanyID,
		ActorID:        testActorID,
		FarmID:         testFarmID,
		Type:           entity.MovementTypeOUT,
		Date:           time.Now(),
		OriginSectorID: strptr(testSector2ID),
		Items: []movement.CreateItemInput{
			{ProductID: testProductID, Quantity: dec("15"), UnitValue: dec("10")},
		},
	})
	require.NoError(t, err)

	_, err = engine.Cancel(ctx, testCompanyID, mov.ID, testActorID, "anular entrada")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := engine.GetByID(ctx, testCompanyID, mov.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPending, got.Status, "la cancelación fallida no cambia el estado")
}

// ──────────────────────────────────────────────────────────────────────────────
// GetByID / List
// ──────────────────────────────────────────────────────────────────────────────

func TestGetByID_IncluyeItems(t *testing.T) {
	_, engine := newFixture(t)
	ctx := context.Background()

	mov, err := engine.CreateComplete(ctx, inboundInput(
		movement.CreateItemInput{ProductID: testProductID, Quantity: dec("10"), UnitValue: dec("5")},
		movement.CreateItemInput{ProductID: testProduct2, Quantity: dec("4"), UnitValue: dec("25")},
	))
	require.NoError(t, err)

	got, err := engine.GetByID(ctx, testCompanyID, mov.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.True(t, got.TotalValue.Equal(dec("150")), "total = 10*5 + 4*25")
}

func TestGetByID_InexistenteEsNotFound(t *testing.T) {
	_, engine := newFixture(t)
	_, err := engine.GetByID(context.Background(), testCompanyID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
