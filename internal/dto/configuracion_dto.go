package dto

// GuardarConfiguracionRequest upserts a batch of settings in one category.
type GuardarConfiguracionRequest struct {
	Valores map[string]string `json:"valores" validate:"required,min=1"`
}

// ImportacionResponse summarizes a CSV bulk import: rows inserted plus the
// per-row validation errors of the rejected ones.
type ImportacionResponse struct {
	Importados int      `json:"importados"`
	Errores    []string `json:"errores,omitempty"`
}
