package dto

type CrearClienteRequest struct {
	Nombre      string  `json:"nombre" validate:"required"`
	Apellido    *string `json:"apellido"`
	Telefono    *string `json:"telefono"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Direccion   *string `json:"direccion"`
	TipoCliente string  `json:"tipo_cliente" validate:"omitempty,oneof=mostrador corporativo"`

	RazonSocial   *string `json:"razon_social"`
	RFC           *string `json:"rfc" validate:"omitempty,min=12,max=13"`
	RegimenFiscal *string `json:"regimen_fiscal"`
	CodigoPostal  *string `json:"codigo_postal" validate:"omitempty,len=5"`
	UsoCFDI       *string `json:"uso_cfdi"`
}

type ActualizarClienteRequest = CrearClienteRequest

type ClienteResponse struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Apellido    *string `json:"apellido,omitempty"`
	Telefono    *string `json:"telefono,omitempty"`
	Email       *string `json:"email,omitempty"`
	TipoCliente string  `json:"tipo_cliente"`
	RFC         *string `json:"rfc,omitempty"`
}
