package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDocument = `{
	"Identificacao do Emitente": {"Nome": "Padaria Central", "Morada": "Rua A, Luanda", "NIF": "500123456", "Contacto": "923000000"},
	"Identificacao do Cliente": {"Nome": "Empresa X", "NIF": "500654321", "Morada": "Rua B"},
	"Data e Hora da Factura": {"Data": "2024-03-15", "Hora": "14:32"},
	"Numero da Factura": {"Factura-recibo": "FR 2024/123", "Documentos referenciados": ""},
	"Valor Total": "KZ 500,00",
	"IVA e Base Tributavel": {"Base tributavel": "KZ 438,60", "IVA (%)": "14", "Valor Total com IVA": "KZ 500,00"},
	"Pagamento": {"Forma de pagamento": "Multicaixa", "Valor": "KZ 500,00"},
	"Outras Informacoes": {"Software": "PHC", "Emp.": "001", "Data de processamento": "2024-03-15"}
}`

func TestParseCanonicalInvoice(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		inv, err := ParseCanonicalInvoice([]byte(fullDocument))
		require.NoError(t, err)

		assert.Equal(t, "Padaria Central", inv.Issuer.Name)
		assert.Equal(t, "KZ 500,00", inv.Total)
		assert.Equal(t, "Multicaixa", inv.Payment.Method)
		assert.Equal(t, "KZ 500,00", inv.Payment.Amount)
		assert.Equal(t, "14", inv.Tax.VATPercent)
	})

	t.Run("missing sections default to empty strings", func(t *testing.T) {
		partial := `{"Valor Total": "KZ 100,00", "Pagamento": {"Valor": "KZ 100,00"}}`

		inv, err := ParseCanonicalInvoice([]byte(partial))
		require.NoError(t, err)

		assert.Equal(t, "KZ 100,00", inv.Total)
		assert.Equal(t, "KZ 100,00", inv.Payment.Amount)
		assert.Equal(t, "", inv.Payment.Method)
		assert.Equal(t, "", inv.Issuer.Name)
		assert.Equal(t, "", inv.DateTime.Date)
	})

	t.Run("rejects non-object documents", func(t *testing.T) {
		for _, doc := range []string{`[]`, `"text"`, `42`, `not json at all`} {
			_, err := ParseCanonicalInvoice([]byte(doc))
			assert.ErrorIs(t, err, ErrNotCanonical, "document: %s", doc)
		}
	})

	t.Run("rejects objects with no canonical keys", func(t *testing.T) {
		_, err := ParseCanonicalInvoice([]byte(`{"foo": "bar", "amount": 12}`))
		assert.ErrorIs(t, err, ErrNotCanonical)
	})
}

func TestCanonicalInvoiceJSON(t *testing.T) {
	t.Run("persisted document carries every canonical key", func(t *testing.T) {
		inv, err := ParseCanonicalInvoice([]byte(`{"Valor Total": "KZ 100,00"}`))
		require.NoError(t, err)

		raw, err := inv.JSON()
		require.NoError(t, err)

		var probe map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &probe))
		for _, key := range canonicalKeys {
			assert.Contains(t, probe, key)
		}
	})

	t.Run("round trip preserves values", func(t *testing.T) {
		inv, err := ParseCanonicalInvoice([]byte(fullDocument))
		require.NoError(t, err)

		raw, err := inv.JSON()
		require.NoError(t, err)

		again, err := ParseCanonicalInvoice(raw)
		require.NoError(t, err)
		assert.Equal(t, inv, again)
	})
}
