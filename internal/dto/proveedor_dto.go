package dto

type CrearProveedorRequest struct {
	Nombre    string  `json:"nombre" validate:"required"`
	Contacto  *string `json:"contacto"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Direccion *string `json:"direccion"`

	RazonSocial   *string `json:"razon_social"`
	RFC           *string `json:"rfc" validate:"omitempty,min=12,max=13"`
	RegimenFiscal *string `json:"regimen_fiscal"`
	CodigoPostal  *string `json:"codigo_postal" validate:"omitempty,len=5"`
}

type ActualizarProveedorRequest = CrearProveedorRequest

type ProveedorResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Contacto  *string `json:"contacto,omitempty"`
	Telefono  *string `json:"telefono,omitempty"`
	Email     *string `json:"email,omitempty"`
	Direccion *string `json:"direccion,omitempty"`
	RFC       *string `json:"rfc,omitempty"`
	Activo    bool    `json:"activo"`
}
