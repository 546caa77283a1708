package service

import (
	"strings"
	"testing"

	"facturas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExtractionPrompt(t *testing.T) {
	rawText := "FACTURA-RECIBO FR 2024/123\nTotal: KZ 500,00\nIVA 14%"

	prompt := buildExtractionPrompt(rawText)

	// The OCR text goes into the prompt verbatim.
	assert.True(t, strings.HasSuffix(prompt, rawText))
	// The instructions and the target shape precede it.
	assert.Contains(t, prompt, "Identificação do Emitente")
	assert.Contains(t, prompt, "retorne em formato json igual a esse")
	assert.Contains(t, prompt, `"Valor Total": "KZ 500,00"`)
	assert.Contains(t, prompt, "traga apenas a chave com valor string vazio")
}

func TestParseStructuredReply(t *testing.T) {
	valid := `{"Valor Total": "KZ 500,00", "Pagamento": {"Forma de pagamento": "Numerário", "Valor": "KZ 500,00"}}`

	t.Run("plain JSON object", func(t *testing.T) {
		doc, err := parseStructuredReply(valid)
		require.NoError(t, err)
		assert.Equal(t, "KZ 500,00", doc.Total)
		assert.Equal(t, "Numerário", doc.Payment.Method)
	})

	t.Run("object wrapped in markdown fences", func(t *testing.T) {
		doc, err := parseStructuredReply("```json\n" + valid + "\n```")
		require.NoError(t, err)
		assert.Equal(t, "KZ 500,00", doc.Total)
	})

	t.Run("object surrounded by prose", func(t *testing.T) {
		doc, err := parseStructuredReply("Aqui está o resultado:\n" + valid + "\nEspero ter ajudado.")
		require.NoError(t, err)
		assert.Equal(t, "KZ 500,00", doc.Total)
	})

	t.Run("no JSON object at all", func(t *testing.T) {
		_, err := parseStructuredReply("Não consegui processar a factura.")
		assert.Error(t, err)
	})

	t.Run("object with none of the expected keys", func(t *testing.T) {
		_, err := parseStructuredReply(`{"result": "ok", "total": 500}`)
		assert.ErrorIs(t, err, models.ErrNotCanonical)
	})

	t.Run("bare array with no object is rejected", func(t *testing.T) {
		_, err := parseStructuredReply(`["KZ 500,00", "KZ 100,00"]`)
		assert.Error(t, err)
	})
}
