package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrocampo/agro-inventario/internal/application/ledger"
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
	testProductID = "00000000-0000-0000-0000-0000000000p1"
	testSectorID  = "00000000-0000-0000-0000-0000000000s1"
	testSector2ID = "00000000-0000-0000-0000-0000000000s2"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// newFixture monta un store con producto, finca y dos sectores sembrados.
func newFixture(t *testing.T, policy ledger.Policy) (*memory.Store, *ledger.LedgerUseCase) {
	t.Helper()
	store := memory.NewStore()
	store.SeedFarm(&entity.Farm{ID: testFarmID, CompanyID: testCompanyID, Name: "La Esperanza", Status: "active"})
	store.SeedProduct(&entity.Product{
		ID: testProductID, CompanyID: testCompanyID,
		InternalCode: "FER-001", Name: "Fertilizante NPK", UnitMeasure: "kg",
	})
	store.SeedSector(&entity.Sector{ID: testSectorID, CompanyID: testCompanyID, FarmID: testFarmID, Name: "Bodega Central", Type: entity.SectorTypeWarehouse})
	store.SeedSector(&entity.Sector{ID: testSector2ID, CompanyID: testCompanyID, FarmID: testFarmID, Name: "Silo Norte", Type: entity.SectorTypeSilo})

	repos := store.Repos()
	uc := ledger.NewLedgerUseCase(memory.NewTxRunner(store), repos.Products, repos.Sectors, repos.Lots, policy)
	return store, uc
}

func seedPosition(store *memory.Store, sectorID string, onHand, reserved, cost string) {
	store.SeedPosition(&entity.StockPosition{
		ID:               "pos-" + sectorID,
		CompanyID:        testCompanyID,
		ProductID:        testProductID,
		SectorID:         sectorID,
		QuantityOnHand:   dec(onHand),
		QuantityReserved: dec(reserved),
		UnitCost:         dec(cost),
		LastMovementAt:   time.Now(),
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjust
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_FijaValorAbsolutoYRegistraMovimiento(t *testing.T) {
	store, uc := newFixture(t, ledger.DefaultPolicy())
	seedPosition(store, testSectorID, "100", "0", "10")

	// Recuento físico: 90 unidades (faltante de 10).
	result, err := uc.Adjust(context.Background(), ledger.AdjustInput{
		CompanyID:   testCompanyID,
		ActorID:     testActorID,
		ProductID:   testProductID,
		SectorID:    testSectorID,
		NewQuantity: dec("90"),
		Reason:      "recuento físico mensual",
	})
	require.NoError(t, err)
	assert.True(t, result.Previous.Equal(dec("100")), "previous debe ser 100")
	assert.True(t, result.New.Equal(dec("90")), "new debe ser 90")
	assert.True(t, result.Delta.Equal(dec("-10")), "delta debe ser -10")

	pos := store.Position(testCompanyID, testProductID, testSectorID, nil)
	require.NotNil(t, pos)
	assert.True(t, pos.QuantityOnHand.Equal(dec("90")))
	assert.True(t, pos.UnitCost.Equal(dec("10")), "el ajuste no cambia el costo promedio")

	// El ajuste queda auditado como movimiento ADJUST_OUT confirmado.
	movs := store.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeADJUSTOUT, movs[0].Type)
	assert.Equal(t, entity.MovementStatusConfirmed, movs[0].Status)
	require.Len(t, movs[0].Items, 1)
	assert.True(t, movs[0].Items[0].Quantity.Equal(dec("10")), "el item lleva el delta en valor absoluto")
}

func TestAdjust_SinCambioNoGeneraMovimiento(t *testing.T) {
	store, uc := newFixture(t, ledger.DefaultPolicy())
	seedPosition(store, testSectorID, "50", "0", "8")

	result, err := uc.Adjust(context.Background(), ledger.AdjustInput{
		CompanyID:   testCompanyID,
		ActorID:     testActorID,
		ProductID:   testProductID,
		SectorID:    testSectorID,
		NewQuantity: dec("50"),
	})
	require.NoError(t, err)
	assert.True(t, result.Delta.IsZero())
	assert.Empty(t, store.Movements(), "recuento que coincide no debe auditar nada")
}

func TestAdjust_CantidadNegativaRechazada(t *testing.T) {
	_, uc := newFixture(t, ledger.DefaultPolicy())

	_, err := uc.Adjust(context.Background(), ledger.AdjustInput{
		CompanyID:   testCompanyID,
		ProductID:   testProductID,
		SectorID:    testSectorID,
		NewQuantity: dec("-5"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAdjust_NoPuedeBajarDeLoReservado(t *testing.T) {
	store, uc := newFixture(t, ledger.DefaultPolicy())
	seedPosition(store, testSectorID, "100", "30", "10")

	_, err := uc.Adjust(context.Background(), ledger.AdjustInput{
		CompanyID:   testCompanyID,
		ProductID:   testProductID,
		SectorID:    testSectorID,
		NewQuantity: dec("20"), // reservado = 30
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	pos := store.Position(testCompanyID, testProductID, testSectorID, nil)
	assert.True(t, pos.QuantityOnHand.Equal(dec("100")), "la posición no debe cambiar tras el rollback")
}

func TestAdjust_ProductoDeOtraEmpresaEsNotFound(t *testing.T) {
	_, uc := newFixture(t, ledger.DefaultPolicy())

	_, err := uc.Adjust(context.Background(), ledger.AdjustInput{
		CompanyID:   "otra-empresa",
		ProductID:   testProductID,
		SectorID:    testSectorID,
		NewQuantity: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reserve / Release
// ──────────────────────────────────────────────────────────────────────────────

func TestReserve_DescuentaDelDisponible(t *testing.T) {
	store, uc := newFixture(t, ledger.DefaultPolicy())
	seedPosition(store, testSectorID, "100", "20", "10")

	pos, err := uc.Reserve(context.Background(), ledger.ReserveInput{
		CompanyID: testCompanyID,
		ProductID: testProductID,
		SectorID:  testSectorID,
		Quantity:  dec("30"),
	})
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.True(t, pos.QuantityReserved.Equal(dec("50")))
	assert.True(t, pos.QuantityOnHand.Equal(dec("100")), "reservar no toca el on-hand")
	assert.True(t, pos.Available().Equal(dec("50")))
}

func TestReserve_DosReservasNoCompartenElMismoMargen(t *testing.T) {
	store, uc := newFixture(t, ledger.DefaultPolicy())
	seedPosition(store, testSectorID, "100", "0", "10")

	in := ledger.ReserveInput{
		CompanyID: testCompanyID,
		ProductID: testProductID,
		SectorID:  testSectorID,
		Quantity:  dec("60"),
	}
	first, err := uc.Reserve(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.QuantityReserved.Equal(dec("60")))

	// La primera reserva ya consumió el margen: la segunda ve disponible 40 y
	// no aplica. La guarda condicional no permite sobre-reservar el mismo cupo.
	second, err := uc.Reserve(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, second, "dos reservas de 60 sobre 100 no caben; la segunda debe rechazarse")

	after := store.Position(testCompanyID, testProductID, testSectorID, nil)
	assert.True(t, after.QuantityReserved.Equal(dec("60")), "reservado final debe ser solo el de la primera")
	assert.True(t, after.Available().Equal(dec("40")))
}

func TestReserve_DisponibleInsuficienteDevuelveNil(t *testing.T) {
	store, uc := newFixture(t, ledger.DefaultPolicy())
	seedPosition(store, testSectorID, "100", "80", "10")

	pos, err := uc.Reserve(context.Background(), ledger.ReserveInput{
		CompanyID: testCompanyID,
		ProductID: testProductID,
		SectorID:  testSectorID,
		Quantity:  dec("30"), // disponible = 20
	})
	require.NoError(t, err)
	assert.Nil(t, pos, "sin margen la reserva no aplica y no hay error")

	after := store.Position(testCompanyID, testProductID, testSectorID, nil)
	assert.True(t, after.QuantityReserved.Equal(dec("80")), "lo reservado no debe moverse")
}

func TestReserve_CantidadNoPositivaRechazada(t *testing.T) {
	_, uc := newFixture(t, ledger.DefaultPolicy())

	_, err := uc.Reserve(context.Background(), ledger.ReserveInput{
		CompanyID: testCompanyID,
		ProductID: testProductID,
		SectorID:  testSectorID,
		Quantity:  decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRelease_ModoToleranteRecortaACero(t *testing.T) {
	store, uc := newFixture(t, ledger.DefaultPolicy())
	seedPosition(store, testSectorID, "100", "10", "10")

	// Liberar más de lo reservado: recorta a cero, sin error.
	pos, err := uc.Release(context.Background(), ledger.ReserveInput{
		CompanyID: testCompanyID,
		ProductID: testProductID,
		SectorID:  testSectorID,
		Quantity:  dec("25"),
	})
	require.NoError(t, err)
	assert.True(t, pos.QuantityReserved.IsZero(), "reservado nunca queda negativo")
}

func TestRelease_ModoEstrictoFallaSiExcede(t *testing.T) {
	store, uc := newFixture(t, ledger.Policy{StrictRelease: true, ConflictRetries: 1})
	seedPosition(store, testSectorID, "100", "10", "10")

	_, err := uc.Release(context.Background(), ledger.ReserveInput{
		CompanyID: testCompanyID,
		ProductID: testProductID,
		SectorID:  testSectorID,
		Quantity:  dec("25"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	after := store.Position(testCompanyID, testProductID, testSectorID, nil)
	assert.True(t, after.QuantityReserved.Equal(dec("10")), "en modo estricto no se toca nada")
}

func TestRelease_PosicionInexistenteDevuelveCero(t *testing.T) {
	store, uc := newFixture(t, ledger.DefaultPolicy())

	pos, err := uc.Release(context.Background(), ledger.ReserveInput{
		CompanyID: testCompanyID,
		ProductID: testProductID,
		SectorID:  testSectorID,
		Quantity:  dec("5"),
	})
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.True(t, pos.QuantityReserved.IsZero())
	assert.True(t, pos.QuantityOnHand.IsZero())
	assert.Empty(t, pos.ID, "la posición sintética no tiene fila que la respalde; no debe traer ID")
	assert.Nil(t, store.Position(testCompanyID, testProductID, testSectorID, nil),
		"liberar sobre posición inexistente no debe crearla")
}

// ──────────────────────────────────────────────────────────────────────────────
// Transfer
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_ConservaCostoDeOrigenEnDestinoVacio(t *testing.T) {
	store, uc := newFixture(t, ledger.DefaultPolicy())
	seedPosition(store, testSectorID, "100", "0", "12.50")

	result, err := uc.Transfer(context.Background(), ledger.TransferInput{
		CompanyID:      testCompanyID,
		ActorID:        testActorID,
		ProductID:      testProductID,
		OriginSectorID: testSectorID,
		DestSectorID:   testSector2ID,
		Quantity:       dec("40"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.MovementID)

	origin := store.Position(testCompanyID, testProductID, testSectorID, nil)
	dest := store.Position(testCompanyID, testProductID, testSector2ID, nil)
	assert.True(t, origin.QuantityOnHand.Equal(dec("60")))
	assert.True(t, origin.UnitCost.Equal(dec("12.50")), "el costo de origen no cambia")
	require.NotNil(t, dest)
	assert.True(t, dest.QuantityOnHand.Equal(dec("40")))
	assert.True(t, dest.UnitCost.Equal(dec("12.50")), "destino vacío hereda el costo de origen")

	// Queda un movimiento TRANSFER confirmado como rastro.
	movs := store.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeTRANSFER, movs[0].Type)
	assert.Equal(t, entity.MovementStatusConfirmed, movs[0].Status)
}

func TestTransfer_MezclaCostoSiDestinoTieneStock(t *testing.T) {
	store, uc := newFixture(t, ledger.DefaultPolicy())
	seedPosition(store, testSectorID, "50", "0", "16")
	seedPosition(store, testSector2ID, "100", "0", "10")

	// 100@10 + 50@16 = (1000+800)/150 = 12
	_, err := uc.Transfer(context.Background(), ledger.TransferInput{
		CompanyID:      testCompanyID,
		ActorID:        testActorID,
		ProductID:      testProductID,
		OriginSectorID: testSectorID,
		DestSectorID:   testSector2ID,
		Quantity:       dec("50"),
	})
	require.NoError(t, err)

	dest := store.Position(testCompanyID, testProductID, testSector2ID, nil)
	assert.True(t, dest.QuantityOnHand.Equal(dec("150")))
	assert.True(t, dest.UnitCost.Equal(dec("12")), "costo promedio ponderado: (100*10+50*16)/150 = 12")
}

func TestTransfer_DisponibleInsuficienteAborta(t *testing.T) {
	store, uc := newFixture(t, ledger.DefaultPolicy())
	seedPosition(store, testSectorID, "100", "80", "10")

	_, err := uc.Transfer(context.Background(), ledger.TransferInput{
		CompanyID:      testCompanyID,
		ActorID:        testActorID,
		ProductID:      testProductID,
		OriginSectorID: testSectorID,
		DestSectorID:   testSector2ID,
		Quantity:       dec("30"), // disponible = 20
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, store.Position(testCompanyID, testProductID, testSector2ID, nil), "destino no debe crearse")
	assert.Empty(t, store.Movements(), "no debe quedar rastro de un traslado fallido")
}

func TestTransfer_MismoSectorRechazado(t *testing.T) {
	_, uc := newFixture(t, ledger.DefaultPolicy())

	_, err := uc.Transfer(context.Background(), ledger.TransferInput{
		CompanyID:      testCompanyID,
		ProductID:      testProductID,
		OriginSectorID: testSectorID,
		DestSectorID:   testSectorID,
		Quantity:       dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tope de lote en ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_RespetaTopeDelLote(t *testing.T) {
	store, uc := newFixture(t, ledger.DefaultPolicy())
	lotID := "00000000-0000-0000-0000-0000000000l1"
	store.SeedLot(&entity.Lot{
		ID: lotID, CompanyID: testCompanyID, ProductID: testProductID,
		Number: "FER-20250101-0001", InitialQuantity: dec("100"),
		Status: entity.LotStatusActive,
	})
	store.SeedPosition(&entity.StockPosition{
		ID: "pos-lote", CompanyID: testCompanyID, ProductID: testProductID,
		SectorID: testSectorID, LotID: &lotID,
		QuantityOnHand: dec("80"), QuantityReserved: decimal.Zero, UnitCost: dec("10"),
	})

	// Subir a 130 superaría la cantidad inicial del lote (100).
	_, err := uc.Adjust(context.Background(), ledger.AdjustInput{
		CompanyID:   testCompanyID,
		ActorID:     testActorID,
		ProductID:   testProductID,
		SectorID:    testSectorID,
		LotID:       &lotID,
		NewQuantity: dec("130"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	// Subir a 100 exacto sí es válido.
	_, err = uc.Adjust(context.Background(), ledger.AdjustInput{
		CompanyID:   testCompanyID,
		ActorID:     testActorID,
		ProductID:   testProductID,
		SectorID:    testSectorID,
		LotID:       &lotID,
		NewQuantity: dec("100"),
	})
	assert.NoError(t, err)
}
