package dto

type ClienteRequest struct {
	ID       string `json:"id"       validate:"omitempty,max=64"`
	Nombre   string `json:"nombre"   validate:"required,max=200"`
	Telefono string `json:"telefono" validate:"max=40"`
	Tipo     string `json:"tipo"     validate:"omitempty,oneof=Casual Frecuente VIP"`
}

type ProveedorRequest struct {
	ID            string `json:"id"             validate:"omitempty,max=64"`
	Nombre        string `json:"nombre"         validate:"required,max=200"`
	Telefono      string `json:"telefono"       validate:"max=40"`
	CondicionPago string `json:"condicion_pago" validate:"omitempty,oneof=Contado Crédito"`
}
