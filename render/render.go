// Package render lays out a contestation and encodes it as DOCX or plain text.
package render

import (
	"errors"
	"fmt"
	"time"

	"contestacao-backend/models"

	"go.uber.org/zap"
)

// ErrRenderFailed wraps every encoder fault
var ErrRenderFailed = errors.New("failed to render document")

// Format selects the output encoding
type Format string

const (
	FormatDocx Format = "docx"
	FormatText Format = "txt"
)

// ParseFormat accepts "docx", "txt" and "text"
func ParseFormat(s string) (Format, error) {
	switch s {
	case "docx":
		return FormatDocx, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown document format: %q", s)
	}
}

// Margins are page margins in centimetres
type Margins struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// Config holds the fixed texts and page settings of the document
type Config struct {
	Letterhead  string
	Tagline     string
	Attachments []string
	Margins     Margins
	FontFamily  string
	// FontSize is in points
	FontSize int
	// Now is the clock used for the date stamp
	Now func() time.Time
}

// DefaultAttachments is the checklist printed under DOCUMENTOS ANEXOS
var DefaultAttachments = []string{
	"Procuração com poderes especiais",
	"Documentos constitutivos da empresa ré",
	"Termos e Condições da plataforma Brazino777",
	"Registros de apostas do Autor",
	"Laudo pericial (quando disponível)",
}

// DefaultConfig returns the standard letterhead, A4 margins and Times New Roman 12pt
func DefaultConfig() Config {
	return Config{
		Letterhead:  "MINHA HONRA JUS",
		Tagline:     "Excelência em Documentos Jurídicos",
		Attachments: DefaultAttachments,
		Margins:     Margins{Top: 3, Bottom: 2, Left: 3, Right: 3},
		FontFamily:  "Times New Roman",
		FontSize:    12,
		Now:         time.Now,
	}
}

// Renderer produces contestation documents
type Renderer struct {
	cfg Config
}

// NewRenderer creates a renderer, filling unset fields from DefaultConfig
func NewRenderer(cfg Config) *Renderer {
	def := DefaultConfig()
	if cfg.Letterhead == "" {
		cfg.Letterhead = def.Letterhead
	}
	if cfg.Tagline == "" {
		cfg.Tagline = def.Tagline
	}
	if cfg.Attachments == nil {
		cfg.Attachments = def.Attachments
	}
	if cfg.Margins == (Margins{}) {
		cfg.Margins = def.Margins
	}
	if cfg.FontFamily == "" {
		cfg.FontFamily = def.FontFamily
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = def.FontSize
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	return &Renderer{cfg: cfg}
}

// Render lays out the model and encodes it. Missing metadata is replaced by
// placeholders. On failure no partial output is returned.
func (r *Renderer) Render(model models.RenderModel, format Format) ([]byte, error) {
	blocks := r.Layout(model)

	var (
		out []byte
		err error
	)
	switch format {
	case FormatDocx:
		out, err = encodeDocx(blocks, r.cfg)
	case FormatText:
		out, err = encodePlain(blocks)
	default:
		err = fmt.Errorf("unknown document format: %q", format)
	}
	if err != nil {
		zap.L().Error("failed to render document",
			zap.String("format", string(format)),
			zap.Int("sections", len(model.Sections)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	zap.L().Debug("document rendered",
		zap.String("format", string(format)),
		zap.Int("sections", len(model.Sections)),
		zap.Int("bytes", len(out)),
	)
	return out, nil
}

// Filename returns the download name for a document rendered at now
func Filename(format Format, now time.Time) string {
	return fmt.Sprintf("contestacao_%s.%s", now.Format("20060102_150405"), Extension(format))
}

// Extension returns the file extension for format, without the dot
func Extension(format Format) string {
	if format == FormatDocx {
		return "docx"
	}
	return "txt"
}

// ContentType returns the MIME type for format
func ContentType(format Format) string {
	switch format {
	case FormatDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
