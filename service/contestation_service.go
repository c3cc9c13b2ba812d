package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"contestacao-backend/config"
	"contestacao-backend/extractor"
	"contestacao-backend/llm"
	"contestacao-backend/models"
	"contestacao-backend/parser"
	"contestacao-backend/render"
	"contestacao-backend/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrExtractionFailed     = errors.New("failed to extract text from PDF")
	ErrGenerationFailed     = errors.New("failed to generate contestation")
	ErrContestationTooShort = errors.New("contestation is empty or too short")
	ErrResultNotFound       = errors.New("result not found")
	ErrStoreFailed          = errors.New("failed to store result")
	ErrInvalidSections      = errors.New("invalid sections payload")
)

// DefaultMinLength is the shortest contestation text accepted, in characters
const DefaultMinLength = 50

// Document names used in extraction errors
const (
	DocumentPetition = "petição inicial"
	DocumentTemplate = "modelo de contestação"
)

// ExtractionError reports which uploaded document could not be read
type ExtractionError struct {
	Document string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Document, e.Err)
}

// Unwrap matches both ErrExtractionFailed and the underlying cause
func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtractionFailed, e.Err}
}

//go:embed samples/response.txt
var sampleResponse string

// ContestationService runs the extraction, generation, parsing and rendering pipeline
type ContestationService struct {
	extractor      extractor.Extractor
	generator      llm.Generator
	store          storage.ResultStore
	renderer       *render.Renderer
	minLength      int
	lawyer         config.Lawyer
	defaultComarca string
	now            func() time.Time
}

// ContestationServiceOption is a functional option for ContestationService
type ContestationServiceOption func(*ContestationService)

// WithExtractor sets the PDF text extractor
func WithExtractor(e extractor.Extractor) ContestationServiceOption {
	return func(s *ContestationService) {
		s.extractor = e
	}
}

// WithGenerator sets the language model backend
func WithGenerator(g llm.Generator) ContestationServiceOption {
	return func(s *ContestationService) {
		s.generator = g
	}
}

// WithResultStore sets the result store
func WithResultStore(store storage.ResultStore) ContestationServiceOption {
	return func(s *ContestationService) {
		s.store = store
	}
}

// WithRenderer sets the document renderer
func WithRenderer(r *render.Renderer) ContestationServiceOption {
	return func(s *ContestationService) {
		s.renderer = r
	}
}

// WithMinLength sets the minimum contestation length
func WithMinLength(n int) ContestationServiceOption {
	return func(s *ContestationService) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// WithLawyer sets the signing lawyer used as default metadata
func WithLawyer(l config.Lawyer) ContestationServiceOption {
	return func(s *ContestationService) {
		s.lawyer = l
	}
}

// WithDefaultComarca sets the district used when the case data has none
func WithDefaultComarca(comarca string) ContestationServiceOption {
	return func(s *ContestationService) {
		s.defaultComarca = comarca
	}
}

// WithClock sets the clock used for dates shown on the result page
func WithClock(now func() time.Time) ContestationServiceOption {
	return func(s *ContestationService) {
		s.now = now
	}
}

// NewContestationService creates a new contestation service
func NewContestationService(opts ...ContestationServiceOption) *ContestationService {
	s := &ContestationService{
		minLength: DefaultMinLength,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = render.NewRenderer(render.Config{Now: s.now})
	}
	return s
}

// ProcessRequest holds the two uploaded PDFs
type ProcessRequest struct {
	PetitionPDF      []byte
	PetitionFilename string
	TemplatePDF      []byte
	TemplateFilename string
}

// ProcessResult represents the stored raw model response
type ProcessResult struct {
	ResultID string
	Raw      string
}

// Process extracts both documents, asks the model for a contestation and stores the raw answer
func (s *ContestationService) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	if s.extractor == nil {
		return nil, errors.New("extractor not set")
	}
	if s.generator == nil {
		return nil, errors.New("generator not set")
	}
	if s.store == nil {
		return nil, errors.New("result store not set")
	}

	var petitionText, templateText string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := s.extractor.Extract(gctx, req.PetitionPDF)
		if err != nil {
			return &ExtractionError{Document: DocumentPetition, Err: err}
		}
		petitionText = text
		return nil
	})
	g.Go(func() error {
		text, err := s.extractor.Extract(gctx, req.TemplatePDF)
		if err != nil {
			return &ExtractionError{Document: DocumentTemplate, Err: err}
		}
		templateText = text
		return nil
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("PDF extraction failed",
			zap.String("stage", "extract"),
			zap.String("petition_file", req.PetitionFilename),
			zap.Int("petition_bytes", len(req.PetitionPDF)),
			zap.String("template_file", req.TemplateFilename),
			zap.Int("template_bytes", len(req.TemplatePDF)),
			zap.Error(err),
		)
		return nil, err
	}

	raw, err := s.generator.Generate(ctx, llm.ContestationPrompt,
		llm.PetitionDocument(petitionText),
		llm.TemplateDocument(templateText),
	)
	if err != nil {
		zap.L().Error("model call failed",
			zap.String("stage", "generate"),
			zap.Int("petition_chars", len(petitionText)),
			zap.Int("template_chars", len(templateText)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	id, err := s.StoreResult(ctx, raw)
	if err != nil {
		return nil, err
	}

	return &ProcessResult{ResultID: id, Raw: raw}, nil
}

// StoreResult saves a raw model response and returns its id
func (s *ContestationService) StoreResult(ctx context.Context, raw string) (string, error) {
	if s.store == nil {
		return "", errors.New("result store not set")
	}
	id, err := s.store.Put(ctx, raw)
	if err != nil {
		zap.L().Error("failed to store result", zap.String("stage", "store"), zap.Int("chars", len(raw)), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return id, nil
}

// StoreSample saves a canned model response, for exercising the result page without a model
func (s *ContestationService) StoreSample(ctx context.Context) (string, error) {
	return s.StoreResult(ctx, SampleResponse(s.now()))
}

// SampleResponse returns the canned model response dated at now
func SampleResponse(now time.Time) string {
	return strings.ReplaceAll(sampleResponse, "{{DATA}}", now.Format("02/01/2006"))
}

// ResultView is everything the result page and the API show for one response
type ResultView struct {
	ID           string
	CaseData     models.CaseData
	CaseDataJSON string
	Contestation string
	Sections     []models.Section
	// Document is the render model prefilled from the case data and configured lawyer
	Document models.RenderModel
	Date     string
}

// Analyze splits a raw model response into case data and sections
func (s *ContestationService) Analyze(raw string) (*ResultView, error) {
	data, contestation := parser.ExtractResponse(raw)

	if n := utf8.RuneCountInString(contestation); n < s.minLength {
		zap.L().Error("contestation too short",
			zap.String("stage", "analyze"),
			zap.Int("chars", n),
			zap.Int("min", s.minLength),
		)
		return nil, ErrContestationTooShort
	}

	sections := parser.BuildSections(contestation)

	dataJSON, err := indentJSON(data.Raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode case data: %w", err)
	}

	return &ResultView{
		CaseData:     data,
		CaseDataJSON: dataJSON,
		Contestation: contestation,
		Sections:     sections,
		Document:     s.documentDefaults(data, sections),
		Date:         s.now().Format("02/01/2006"),
	}, nil
}

// GetResult loads a stored response and analyzes it
func (s *ContestationService) GetResult(ctx context.Context, id string) (*ResultView, error) {
	if s.store == nil {
		return nil, errors.New("result store not set")
	}

	result, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to load result: %w", err)
	}

	view, err := s.Analyze(result.Content)
	if err != nil {
		return nil, err
	}
	view.ID = id
	return view, nil
}

// DeleteResult removes a stored response
func (s *ContestationService) DeleteResult(ctx context.Context, id string) error {
	if s.store == nil {
		return errors.New("result store not set")
	}
	return s.store.Delete(ctx, id)
}

// Render produces the document for model in the given format
func (s *ContestationService) Render(model models.RenderModel, format render.Format) ([]byte, error) {
	return s.renderer.Render(model, format)
}

// RenderRequest is the metadata submitted with a download.
// Sections, when set, is the JSON list of {titulo, paragrafos} edited on the result page.
type RenderRequest struct {
	Metadata models.RenderModel
	Sections string
	ResultID string
}

// BuildRenderModel assembles the document model for a download. Without an
// explicit sections payload the sections are rebuilt from the stored result,
// which also fills any metadata the request left empty.
func (s *ContestationService) BuildRenderModel(ctx context.Context, req RenderRequest) (models.RenderModel, error) {
	model := req.Metadata
	model.Sections = nil

	if strings.TrimSpace(req.Sections) != "" {
		var sections []models.RenderSection
		if err := json.Unmarshal([]byte(req.Sections), &sections); err != nil {
			return models.RenderModel{}, fmt.Errorf("%w: %v", ErrInvalidSections, err)
		}
		model.Sections = sections
	}

	if model.Sections == nil && req.ResultID != "" {
		view, err := s.GetResult(ctx, req.ResultID)
		if err != nil {
			return models.RenderModel{}, err
		}
		model = mergeMetadata(model, view.Document)
		model.Sections = view.Document.Sections
	}

	return model, nil
}

// mergeMetadata fills the empty fields of m from defaults
func mergeMetadata(m, defaults models.RenderModel) models.RenderModel {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&m.Forum, defaults.Forum)
	fill(&m.District, defaults.District)
	fill(&m.ProcessNumber, defaults.ProcessNumber)
	fill(&m.PlaintiffName, defaults.PlaintiffName)
	fill(&m.DefendantName, defaults.DefendantName)
	fill(&m.LawyerName, defaults.LawyerName)
	fill(&m.LawyerState, defaults.LawyerState)
	fill(&m.LawyerNumber, defaults.LawyerNumber)
	return m
}

func (s *ContestationService) documentDefaults(data models.CaseData, sections []models.Section) models.RenderModel {
	comarca := data.Processo.Comarca
	if comarca == "" {
		comarca = s.defaultComarca
	}
	return models.RenderModel{
		Forum:         data.Processo.Foro,
		District:      comarca,
		ProcessNumber: data.Processo.Numero,
		PlaintiffName: data.Autor.Nome,
		DefendantName: data.Reu.Nome,
		LawyerName:    s.lawyer.Name,
		LawyerState:   s.lawyer.State,
		LawyerNumber:  s.lawyer.Number,
		Sections:      render.FromSections(sections),
	}
}

// indentJSON encodes v with two-space indentation and without HTML escaping
func indentJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
