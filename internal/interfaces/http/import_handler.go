package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/retail-analytics/internal/application/dto"
	"github.com/tu-usuario/retail-analytics/internal/application/importer"
	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/infrastructure/ingest"
)

// ImportHandler maneja la importación de archivos de ventas POS y la consulta
// de auditoría por lote.
type ImportHandler struct {
	uc *importer.ImportUseCase
}

// NewImportHandler construye el handler.
func NewImportHandler(uc *importer.ImportUseCase) *ImportHandler {
	return &ImportHandler{uc: uc}
}

// Import godoc
// @Summary      Importar lote de ventas POS
// @Description  Recibe un archivo .csv o .xlsx con líneas de venta, valida
//               existencia por llave (producto, sucursal), concilia el stock
//               todo-o-nada, agrega demanda diaria y recalcula EOQ para las
//               llaves tocadas.
// @Tags         imports
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Archivo de ventas (.csv o .xlsx)"
// @Success      200   {object}  dto.ImportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.StockViolationResponse
// @Router       /api/imports [post]
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "MISSING_FILE", Message: "se requiere el campo multipart 'file'",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_FILE", Message: "no se pudo abrir el archivo",
		})
	}
	defer file.Close()

	lines, err := ingest.Parse(file, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code: "INVALID_FILE", Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}

	report, err := h.uc.Import(c.Context(), lines, costsFromForm(c))
	if err != nil {
		var sve *domain.StockViolationError
		if errors.As(err, &sve) {
			return c.Status(fiber.StatusConflict).JSON(stockViolationResponse(sve))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}
	return c.JSON(dto.FromImportReport(report))
}

// GetBatchDeductions godoc
// @Summary      Consultar deducciones de un lote
// @Tags         imports
// @Produce      json
// @Param        batch_id  path  string  true  "Identificador del lote"
// @Success      200  {object}  dto.BatchDeductionsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/imports/{batch_id}/deductions [get]
func (h *ImportHandler) GetBatchDeductions(c *fiber.Ctx) error {
	batchID := c.Params("batch_id")
	deductions, err := h.uc.LookupBatch(c.Context(), batchID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Code: "NOT_FOUND", Message: "lote no encontrado",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}
	return c.JSON(dto.BatchDeductionsResponse{
		BatchID:    batchID,
		Deductions: dto.FromDeductions(deductions),
	})
}

// costsFromForm lee los costos EOQ opcionales de los campos del formulario.
// Devuelve nil (usar defaults de configuración) si no vino ninguno.
func costsFromForm(c *fiber.Ctx) *importer.CostInputs {
	var in dto.ImportCostsRequest
	if err := c.BodyParser(&in); err != nil {
		return nil
	}
	if in == (dto.ImportCostsRequest{}) {
		return nil
	}
	return &importer.CostInputs{
		HoldingCost:     in.HoldingCost,
		OrderingCost:    in.OrderingCost,
		UnitCost:        in.UnitCost,
		LeadTimeDays:    in.LeadTimeDays,
		ConfidenceLevel: in.ConfidenceLevel,
	}
}

func stockViolationResponse(sve *domain.StockViolationError) dto.StockViolationResponse {
	violations := make([]dto.StockViolationDTO, 0, len(sve.Violations))
	for _, v := range sve.Violations {
		violations = append(violations, dto.StockViolationDTO{
			ProductID: v.ProductID,
			BranchID:  v.BranchID,
			Current:   v.Current,
			Requested: v.Requested,
			Projected: v.Projected,
		})
	}
	return dto.StockViolationResponse{
		Code:       "INSUFFICIENT_STOCK",
		Message:    "el lote se rechazó completo: una o más llaves quedarían con stock negativo",
		Violations: violations,
	}
}
