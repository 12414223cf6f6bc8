package dto

// ListQuery filtros comunes para listados.
type ListQuery struct {
	BranchID *int64 `query:"branch_id"`
	Limit    int    `query:"limit" validate:"min=0,max=500"`
}

// DefaultLimit aplica el límite por defecto si no viene en la query.
func (q *ListQuery) DefaultLimit() {
	if q.Limit <= 0 {
		q.Limit = 100
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StockViolationDTO detalle por llave de un rechazo de lote.
type StockViolationDTO struct {
	ProductID int64 `json:"product_id"`
	BranchID  int64 `json:"branch_id"`
	Current   int64 `json:"current_stock"`
	Requested int64 `json:"requested"`
	Projected int64 `json:"projected"`
}

// StockViolationResponse cuerpo de error cuando el lote completo se rechaza
// por stock insuficiente.
type StockViolationResponse struct {
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Violations []StockViolationDTO `json:"violations"`
}
