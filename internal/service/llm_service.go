package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"facturas/internal/models"
	"facturas/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

var ErrStructuringFailed = errors.New("invoice structuring failed")

// canonicalExample is the JSON shape the model is asked to reproduce. It
// matches models.CanonicalInvoice field for field.
const canonicalExample = `{"Identificacao do Emitente":{"Nome":"","Morada":"","NIF":"","Contacto":""},"Identificacao do Cliente":{"Nome":"","NIF":"","Morada":""},"Data e Hora da Factura":{"Data":"","Hora":""},"Numero da Factura":{"Factura-recibo":"","Documentos referenciados":""},"Valor Total":"KZ 500,00","IVA e Base Tributavel":{"Base tributavel":"","IVA (%)":"","Valor Total com IVA":""},"Pagamento":{"Forma de pagamento":"","Valor":""},"Outras Informacoes":{"Software":"","Emp.":"","Data de processamento":""}}`

const extractionTemplate = `Extrai as informações da factura acima, para um modelo de comprovativo de despesas de representação:
    1.	Identificação do Emitente: Inclua ‘Nome’, ‘Morada’, ‘NIF’ e ‘Contacto’.
    2.	Identificação do Cliente: Inclua ‘Nome’, ‘NIF’ e ‘Morada’.
    3.	Data e Hora da Factura: Inclua ‘Data’ e ‘Hora’.
    4.	Número da Factura: Inclua ‘Factura-recibo’ e ‘Documentos referenciados’.
    5.	Valor Total: Inclua o campo ‘Total’.
    6.	IVA e Base Tributável: Inclua ‘Base tributável’, ‘IVA (%)’ e ‘Valor Total com IVA’.
    7.	Pagamento: Inclua ‘Forma de pagamento’ e ‘Valor’.
    8.	Outras Informações: Inclua ‘Software’, ‘Emp.’ e ‘Data de processamento’.
retorne em formato json igual a esse: ` + canonicalExample

// buildExtractionPrompt appends the OCR text to the extraction instructions.
// The raw text goes in verbatim; no truncation or cleanup happens here.
func buildExtractionPrompt(rawText string) string {
	return extractionTemplate + `. As informações que não encontrares traga apenas a chave com valor string vazio.: ` + rawText
}

// LLMService turns raw invoice text into structured data through GigaChat.
type LLMService struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = "És um assistente que extrai dados de facturas e responde apenas com JSON válido, sem comentários ou markdown."
	model.Temperature = 0.1

	return &LLMService{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Structure asks the model to fill the canonical invoice schema from the
// extracted text. Replies that are not JSON objects, or objects without any
// of the expected sections, are rejected.
func (s *LLMService) Structure(ctx context.Context, rawText string) (*models.CanonicalInvoice, error) {
	content, err := s.generate(ctx, buildExtractionPrompt(rawText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructuringFailed, err)
	}

	doc, err := parseStructuredReply(content)
	if err != nil {
		s.logger.Warn("LLM returned an unusable reply",
			zap.Int("reply_length", len(content)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrStructuringFailed, err)
	}

	s.logger.Info("Invoice structuring completed", zap.Int("text_length", len(rawText)))
	return doc, nil
}

func (s *LLMService) generate(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// parseStructuredReply extracts the JSON object from a model reply and
// validates it against the canonical invoice schema. Markdown fences and
// surrounding prose are tolerated; a missing or malformed object is not.
func parseStructuredReply(content string) (*models.CanonicalInvoice, error) {
	jsonStart := strings.Index(content, "{")
	jsonEnd := strings.LastIndex(content, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return nil, fmt.Errorf("no JSON object in reply: %s", content)
	}

	jsonStr := content[jsonStart : jsonEnd+1]

	doc, err := models.ParseCanonicalInvoice([]byte(jsonStr))
	if err != nil {
		jsonStr = strings.TrimSpace(jsonStr)
		jsonStr = strings.TrimPrefix(jsonStr, "```json")
		jsonStr = strings.TrimPrefix(jsonStr, "```")
		jsonStr = strings.TrimSuffix(jsonStr, "```")
		jsonStr = strings.TrimSpace(jsonStr)

		doc, err = models.ParseCanonicalInvoice([]byte(jsonStr))
		if err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
