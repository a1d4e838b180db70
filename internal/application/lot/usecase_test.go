package lot_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrocampo/agro-inventario/internal/application/lot"
	"github.com/agrocampo/agro-inventario/internal/domain"
	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/domain/inventory"
	"github.com/agrocampo/agro-inventario/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "00000000-0000-0000-0000-0000000000c0"
	testActorID   = "00000000-0000-0000-0000-0000000000a0"
	testProductID = "00000000-0000-0000-0000-0000000000d1"
	testSectorID  = "00000000-0000-0000-0000-0000000000e1"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newFixture(t *testing.T) (*memory.Store, *lot.TrackerUseCase) {
	t.Helper()
	store := memory.NewStore()
	store.SeedProduct(&entity.Product{
		ID: testProductID, CompanyID: testCompanyID,
		InternalCode: "FER-001", Name: "Fertilizante NPK", UnitMeasure: "kg", TrackByLot: true,
	})
	repos := store.Repos()
	uc := lot.NewTrackerUseCase(memory.NewTxRunner(store), repos.Products, repos.Lots, lot.Config{
		ExpiryWarningDays: 30,
		ConflictRetries:   3,
	})
	return store, uc
}

func createInput(number string) lot.CreateLotInput {
	return lot.CreateLotInput{
		CompanyID:       testCompanyID,
		ActorID:         testActorID,
		ProductID:       testProductID,
		Number:          number,
		ManufactureDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		InitialQuantity: dec("100"),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateLot
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateLot_NumeroAutogenerado(t *testing.T) {
	_, uc := newFixture(t)

	l, err := uc.CreateLot(context.Background(), createInput(""))
	require.NoError(t, err)

	// Prefijo de los tres primeros caracteres del código interno + fecha de hoy.
	want := fmt.Sprintf("FER-%s-0001", time.Now().Format("20060102"))
	assert.Equal(t, want, l.Number)
	assert.Equal(t, entity.LotStatusActive, l.Status)

	// El consecutivo por producto avanza en cada lote.
	l2, err := uc.CreateLot(context.Background(), createInput(""))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("FER-%s-0002", time.Now().Format("20060102")), l2.Number)
}

func TestCreateLot_NumeroDelCaller(t *testing.T) {
	_, uc := newFixture(t)

	l, err := uc.CreateLot(context.Background(), createInput("LOTE-PROVEEDOR-77"))
	require.NoError(t, err)
	assert.Equal(t, "LOTE-PROVEEDOR-77", l.Number)
}

func TestCreateLot_NumeroDuplicadoEsErrDuplicate(t *testing.T) {
	_, uc := newFixture(t)

	_, err := uc.CreateLot(context.Background(), createInput("LOTE-A"))
	require.NoError(t, err)

	// El choque es case-insensitive y con número del caller no se reintenta.
	_, err = uc.CreateLot(context.Background(), createInput("lote-a"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateLot_ValidacionDeEntrada(t *testing.T) {
	_, uc := newFixture(t)

	expiry := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) // anterior a fabricación
	in := createInput("")
	in.InitialQuantity = decimal.Zero
	in.ExpiryDate = &expiry

	_, err := uc.CreateLot(context.Background(), in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "initial_quantity")
	assert.Contains(t, verr.Fields, "expiry_date")
}

func TestCreateLot_ProductoDeOtraEmpresaEsNotFound(t *testing.T) {
	_, uc := newFixture(t)

	in := createInput("")
	in.CompanyID = "otra-empresa"
	_, err := uc.CreateLot(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// GenerateNumber
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerateNumber_PrefijoExplicito(t *testing.T) {
	_, uc := newFixture(t)

	n, err := uc.GenerateNumber(context.Background(), testCompanyID, testProductID, "urea")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("UREA-%s-0001", time.Now().Format("20060102")), n,
		"el prefijo del caller se normaliza a mayúsculas")
}

func TestGenerateNumber_ConsumeSecuenciaCompartida(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()

	n1, err := uc.GenerateNumber(ctx, testCompanyID, testProductID, "")
	require.NoError(t, err)
	l, err := uc.CreateLot(ctx, createInput(""))
	require.NoError(t, err)

	today := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("FER-%s-0001", today), n1)
	assert.Equal(t, fmt.Sprintf("FER-%s-0002", today), l.Number,
		"generar número y crear lote comparten el consecutivo del producto")
}

// ──────────────────────────────────────────────────────────────────────────────
// MarkConsumed
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkConsumed_ConStockRemanenteFalla(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()

	l, err := uc.CreateLot(ctx, createInput("LOTE-B"))
	require.NoError(t, err)
	store.SeedPosition(&entity.StockPosition{
		ID: "pos-1", CompanyID: testCompanyID, ProductID: testProductID,
		SectorID: testSectorID, LotID: &l.ID,
		QuantityOnHand: dec("10"), QuantityReserved: decimal.Zero, UnitCost: dec("5"),
	})

	_, err = uc.MarkConsumed(ctx, testCompanyID, l.ID, testActorID)
	assert.ErrorIs(t, err, domain.ErrLotStillHasStock)
}

func TestMarkConsumed_ConStockCeroEIdempotente(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()

	l, err := uc.CreateLot(ctx, createInput("LOTE-C"))
	require.NoError(t, err)
	// Posición del lote en cero: consumido por completo.
	store.SeedPosition(&entity.StockPosition{
		ID: "pos-1", CompanyID: testCompanyID, ProductID: testProductID,
		SectorID: testSectorID, LotID: &l.ID,
		QuantityOnHand: decimal.Zero, QuantityReserved: decimal.Zero, UnitCost: dec("5"),
	})

	got, err := uc.MarkConsumed(ctx, testCompanyID, l.ID, testActorID)
	require.NoError(t, err)
	assert.Equal(t, entity.LotStatusConsumed, got.Status)

	// Repetir no falla y devuelve el mismo estado.
	again, err := uc.MarkConsumed(ctx, testCompanyID, l.ID, testActorID)
	require.NoError(t, err)
	assert.Equal(t, entity.LotStatusConsumed, again.Status)
}

func TestMarkConsumed_LoteInexistenteEsNotFound(t *testing.T) {
	_, uc := newFixture(t)

	_, err := uc.MarkConsumed(context.Background(), testCompanyID, "no-existe", testActorID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Classify / ListByProduct
// ──────────────────────────────────────────────────────────────────────────────

func TestClassify_UsaVentanaConfigurada(t *testing.T) {
	_, uc := newFixture(t)

	inWindow := time.Now().AddDate(0, 0, 10)
	outWindow := time.Now().AddDate(0, 0, 90)
	past := time.Now().AddDate(0, 0, -1)

	assert.Equal(t, inventory.LotSemVencimento, uc.Classify(&entity.Lot{}))
	assert.Equal(t, inventory.LotVencendo, uc.Classify(&entity.Lot{ExpiryDate: &inWindow}))
	assert.Equal(t, inventory.LotValido, uc.Classify(&entity.Lot{ExpiryDate: &outWindow}))
	assert.Equal(t, inventory.LotVencido, uc.Classify(&entity.Lot{ExpiryDate: &past}))
}

func TestListByProduct_SoloLotesDelProducto(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()
	store.SeedProduct(&entity.Product{
		ID: "otro-producto", CompanyID: testCompanyID,
		InternalCode: "SEM-002", Name: "Semilla de maíz", UnitMeasure: "kg",
	})

	_, err := uc.CreateLot(ctx, createInput("LOTE-1"))
	require.NoError(t, err)
	_, err = uc.CreateLot(ctx, createInput("LOTE-2"))
	require.NoError(t, err)
	otherIn := createInput("LOTE-AJENO")
	otherIn.ProductID = "otro-producto"
	_, err = uc.CreateLot(ctx, otherIn)
	require.NoError(t, err)

	lots, err := uc.ListByProduct(ctx, testCompanyID, testProductID)
	require.NoError(t, err)
	assert.Len(t, lots, 2)
	for _, l := range lots {
		assert.Equal(t, testProductID, l.ProductID)
	}
}
