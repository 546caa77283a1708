package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"facturas/pkg/config"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrExtractionFailed  = errors.New("text extraction failed")
)

// OCRService converts uploaded invoice documents into plain text. Images go
// through Tesseract, PDFs through go-fitz. The Tesseract engine is created,
// used once and torn down per invocation; engines are never pooled across
// requests.
type OCRService struct {
	language string
	logger   *zap.Logger
}

func NewOCRService(cfg *config.OCRConfig, logger *zap.Logger) *OCRService {
	return &OCRService{
		language: cfg.Language,
		logger:   logger,
	}
}

// ExtractText extracts text from an image or PDF file.
// Supported formats: .jpg, .jpeg, .png, .pdf
func (s *OCRService) ExtractText(ctx context.Context, filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	var text string
	var err error

	switch ext {
	case ".pdf":
		text, err = s.extractTextFromPDF(filePath)
	case ".jpg", ".jpeg", ".png":
		text, err = s.recognizeImage(ctx, filePath)
	default:
		return "", fmt.Errorf("%w: %s (supported: jpg, jpeg, png, pdf)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text recognized in %s", ErrExtractionFailed, ext)
	}

	s.logger.Info("OCR extraction completed",
		zap.String("file", filePath),
		zap.String("format", ext),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}

// ExtractTextFromReader persists the upload to a temporary file, extracts its
// text and removes the file again. The upload is a transient OCR input, not a
// retained artifact.
func (s *OCRService) ExtractTextFromReader(ctx context.Context, reader io.Reader, fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	tmpFile, err := os.CreateTemp("", "invoice-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := io.Copy(tmpFile, reader); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to persist upload: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to persist upload: %w", err)
	}

	return s.ExtractText(ctx, tmpFile.Name())
}

// recognizeImage runs a scoped Tesseract client. The blocking engine call
// runs in its own goroutine so the context deadline is honored; the goroutine
// still closes the client when the engine returns.
func (s *OCRService) recognizeImage(ctx context.Context, path string) (string, error) {
	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		client := gosseract.NewClient()
		defer client.Close()

		if err := client.SetLanguage(s.language); err != nil {
			ch <- result{err: err}
			return
		}
		if err := client.SetImage(path); err != nil {
			ch <- result{err: err}
			return
		}

		text, err := client.Text()
		ch <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.text, res.err
	}
}

func (s *OCRService) extractTextFromPDF(pdfPath string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder

	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", pdfPath),
				zap.Error(err),
			)
			continue
		}

		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	return textBuilder.String(), nil
}
