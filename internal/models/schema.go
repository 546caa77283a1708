package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotCanonical is returned when a document parses as JSON but does not
// resemble the canonical invoice shape at all.
var ErrNotCanonical = errors.New("document does not match the canonical invoice schema")

// CanonicalInvoice is the fixed structure every extracted invoice must carry.
// The JSON keys are the Portuguese field names of the expense-report template
// the extraction prompt asks for; every leaf is a string, and a field the
// extraction could not resolve holds "" rather than being absent or null.
type CanonicalInvoice struct {
	Issuer     IssuerIdentity  `json:"Identificacao do Emitente"`
	Client     ClientIdentity  `json:"Identificacao do Cliente"`
	DateTime   InvoiceDateTime `json:"Data e Hora da Factura"`
	Numbers    InvoiceNumbers  `json:"Numero da Factura"`
	Total      string          `json:"Valor Total"`
	Tax        TaxBreakdown    `json:"IVA e Base Tributavel"`
	Payment    PaymentInfo     `json:"Pagamento"`
	Processing ProcessingInfo  `json:"Outras Informacoes"`
}

type IssuerIdentity struct {
	Name    string `json:"Nome"`
	Address string `json:"Morada"`
	TaxID   string `json:"NIF"`
	Contact string `json:"Contacto"`
}

type ClientIdentity struct {
	Name    string `json:"Nome"`
	TaxID   string `json:"NIF"`
	Address string `json:"Morada"`
}

type InvoiceDateTime struct {
	Date string `json:"Data"`
	Time string `json:"Hora"`
}

type InvoiceNumbers struct {
	Receipt    string `json:"Factura-recibo"`
	References string `json:"Documentos referenciados"`
}

type TaxBreakdown struct {
	TaxableBase  string `json:"Base tributavel"`
	VATPercent   string `json:"IVA (%)"`
	TotalWithVAT string `json:"Valor Total com IVA"`
}

type PaymentInfo struct {
	Method string `json:"Forma de pagamento"`
	Amount string `json:"Valor"`
}

type ProcessingInfo struct {
	Software    string `json:"Software"`
	Operator    string `json:"Emp."`
	ProcessedAt string `json:"Data de processamento"`
}

var canonicalKeys = []string{
	"Identificacao do Emitente",
	"Identificacao do Cliente",
	"Data e Hora da Factura",
	"Numero da Factura",
	"Valor Total",
	"IVA e Base Tributavel",
	"Pagamento",
	"Outras Informacoes",
}

// ParseCanonicalInvoice validates an untyped JSON document coming from the
// structuring stage before it is accepted into the domain model. The document
// must be a JSON object carrying at least one canonical top-level key; leaves
// the producer omitted are default-filled with the empty string. Anything else
// is rejected rather than persisted as-is.
func ParseCanonicalInvoice(data []byte) (*CanonicalInvoice, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCanonical, err)
	}

	found := 0
	for _, key := range canonicalKeys {
		if _, ok := probe[key]; ok {
			found++
		}
	}
	if found == 0 {
		return nil, ErrNotCanonical
	}

	var inv CanonicalInvoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCanonical, err)
	}

	return &inv, nil
}

// JSON marshals the invoice with the full canonical key set. The result is
// what gets persisted, so a stored document always carries every key even
// when the producer omitted some.
func (c *CanonicalInvoice) JSON() (json.RawMessage, error) {
	return json.Marshal(c)
}
