package model

// TipoCliente classifies customers for the POS client picker.
type TipoCliente string

const (
	ClienteCasual    TipoCliente = "Casual"
	ClienteFrecuente TipoCliente = "Frecuente"
	ClienteVIP       TipoCliente = "VIP"
)

type Cliente struct {
	ID       string      `json:"id"`
	Nombre   string      `json:"name"`
	Telefono string      `json:"phone"`
	Tipo     TipoCliente `json:"type"`
}

// CondicionPago is the payment term agreed with a supplier.
type CondicionPago string

const (
	PagoContado CondicionPago = "Contado"
	PagoCredito CondicionPago = "Crédito"
)

type Proveedor struct {
	ID            string        `json:"id"`
	Nombre        string        `json:"name"`
	Telefono      string        `json:"phone"`
	CondicionPago CondicionPago `json:"paymentType"`
}
