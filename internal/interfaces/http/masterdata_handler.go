package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocampo/agro-inventario/internal/application/dto"
	"github.com/agrocampo/agro-inventario/internal/application/masterdata"
)

// MasterDataHandler alta y consulta de empresas, fincas, sectores y productos.
type MasterDataHandler struct {
	uc *masterdata.UseCase
}

// NewMasterDataHandler construye el handler de datos maestros.
func NewMasterDataHandler(uc *masterdata.UseCase) *MasterDataHandler {
	return &MasterDataHandler{uc: uc}
}

// CreateCompany da de alta un tenant (ruta pública, como el registro).
func (h *MasterDataHandler) CreateCompany(c *fiber.Ctx) error {
	var in dto.CreateCompanyRequest
	if !parseAndValidate(c, &in) {
		return nil
	}
	company, err := h.uc.CreateCompany(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToCompanyResponse(company))
}

// CreateFarm da de alta una finca de la empresa del token.
func (h *MasterDataHandler) CreateFarm(c *fiber.Ctx) error {
	var in dto.CreateFarmRequest
	if !parseAndValidate(c, &in) {
		return nil
	}
	farm, err := h.uc.CreateFarm(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToFarmResponse(farm))
}

// ListFarms lista las fincas de la empresa.
func (h *MasterDataHandler) ListFarms(c *fiber.Ctx) error {
	list, err := h.uc.ListFarms(c.Context(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.FarmResponse, 0, len(list))
	for _, f := range list {
		out = append(out, dto.ToFarmResponse(f))
	}
	return c.JSON(fiber.Map{"total": len(out), "farms": out})
}

// CreateSector da de alta un sector dentro de una finca.
func (h *MasterDataHandler) CreateSector(c *fiber.Ctx) error {
	var in dto.CreateSectorRequest
	if !parseAndValidate(c, &in) {
		return nil
	}
	sector, err := h.uc.CreateSector(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSectorResponse(sector))
}

// ListSectors lista los sectores de una finca (query farm_id).
func (h *MasterDataHandler) ListSectors(c *fiber.Ctx) error {
	farmID := c.Query("farm_id")
	if farmID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "farm_id requerido", Fields: []string{"farm_id"}})
	}
	list, err := h.uc.ListSectors(c.Context(), GetCompanyID(c), farmID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.SectorResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ToSectorResponse(s))
	}
	return c.JSON(fiber.Map{"total": len(out), "sectors": out})
}

// CreateProduct da de alta un producto de la empresa.
func (h *MasterDataHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if !parseAndValidate(c, &in) {
		return nil
	}
	product, err := h.uc.CreateProduct(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductResponse(product))
}

// ListProducts lista los productos de la empresa (query limit, offset).
func (h *MasterDataHandler) ListProducts(c *fiber.Ctx) error {
	list, err := h.uc.ListProducts(c.Context(), GetCompanyID(c), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ToProductResponse(p))
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}
