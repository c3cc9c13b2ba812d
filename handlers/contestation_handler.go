package handlers

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"contestacao-backend/models"
	"contestacao-backend/parser"
	"contestacao-backend/render"
	"contestacao-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Messages shown on the upload form
const (
	msgMissingFiles     = "Ambos os arquivos (petição e modelo) são necessários"
	msgNoFileSelected   = "Nenhum arquivo selecionado"
	msgNotPDF           = "Os arquivos devem ser PDFs"
	msgTooLarge         = "O arquivo enviado é muito grande. O limite é de %dMB."
	msgNoResult         = "Nenhum resultado encontrado. Por favor, envie os documentos novamente."
	msgResultNotFound   = "Resultado não encontrado. Por favor, envie os documentos novamente."
	msgInvalidResult    = "A contestação gerada está vazia ou inválida. Por favor, tente novamente."
	msgRenderResult     = "Erro ao renderizar resultado."
	msgExtractPetition  = "Erro ao extrair texto da petição inicial"
	msgExtractTemplate  = "Erro ao extrair texto do modelo de contestação"
	msgGeneration       = "Erro ao processar PDFs com o modelo de linguagem. Tente novamente."
	msgStoreFailed      = "Falha ao salvar resultado em arquivo"
	msgInternal         = "Erro interno do servidor. Por favor, tente novamente."
	msgDocxFailed       = "Erro ao gerar documento Word"
	msgTextFailed       = "Erro ao gerar arquivo de texto"
	msgInvalidSections  = "O parâmetro secoes não é um JSON válido"
	resultCookieMaxAge  = 24 * 60 * 60
	defaultResultCookie = "result_id"
)

// Templates parses the embedded HTML pages
func Templates() *template.Template {
	return template.Must(template.New("").
		Funcs(template.FuncMap{"hasSuffix": strings.HasSuffix}).
		ParseFS(templateFS, "templates/*.html"))
}

// ContestationHandler handles HTTP requests for contestations
type ContestationHandler struct {
	service        *service.ContestationService
	maxUploadBytes int64
	resultCookie   string
}

// NewContestationHandler creates a new contestation handler
func NewContestationHandler(contestationService *service.ContestationService, maxUploadBytes int64, resultCookie string) *ContestationHandler {
	if resultCookie == "" {
		resultCookie = defaultResultCookie
	}
	return &ContestationHandler{
		service:        contestationService,
		maxUploadBytes: maxUploadBytes,
		resultCookie:   resultCookie,
	}
}

type indexPage struct {
	Error       string
	MaxUploadMB int64
}

func (h *ContestationHandler) renderIndex(c *gin.Context, status int, message string) {
	c.HTML(status, "index.html", indexPage{Error: message, MaxUploadMB: h.maxUploadMB()})
}

func (h *ContestationHandler) maxUploadMB() int64 {
	return h.maxUploadBytes / (1024 * 1024)
}

func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// Index handles GET /
func (h *ContestationHandler) Index(c *gin.Context) {
	h.renderIndex(c, http.StatusOK, "")
}

// uploadError is a rejected upload with its HTTP status and machine code
type uploadError struct {
	status  int
	code    string
	message string
}

// readUploads validates and reads the two multipart PDFs
func (h *ContestationHandler) readUploads(c *gin.Context) (service.ProcessRequest, *uploadError) {
	tooLarge := &uploadError{
		status:  http.StatusRequestEntityTooLarge,
		code:    "FILE_TOO_LARGE",
		message: fmt.Sprintf(msgTooLarge, h.maxUploadMB()),
	}

	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			return service.ProcessRequest{}, tooLarge
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	petitionFile, errPetition := c.FormFile("peticao")
	templateFile, errTemplate := c.FormFile("modelo")
	for _, err := range []error{errPetition, errTemplate} {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return service.ProcessRequest{}, tooLarge
		}
	}
	if errPetition != nil || errTemplate != nil {
		// An input submitted without a selection arrives as an empty form value
		if h.fieldSubmitted(c, "peticao") && h.fieldSubmitted(c, "modelo") {
			return service.ProcessRequest{}, &uploadError{http.StatusBadRequest, "NO_FILE_SELECTED", msgNoFileSelected}
		}
		return service.ProcessRequest{}, &uploadError{http.StatusBadRequest, "MISSING_FILES", msgMissingFiles}
	}

	if petitionFile.Filename == "" || templateFile.Filename == "" {
		return service.ProcessRequest{}, &uploadError{http.StatusBadRequest, "NO_FILE_SELECTED", msgNoFileSelected}
	}
	if !isPDF(petitionFile.Filename) || !isPDF(templateFile.Filename) {
		return service.ProcessRequest{}, &uploadError{http.StatusBadRequest, "INVALID_FILE_TYPE", msgNotPDF}
	}

	petitionData, err := readFile(petitionFile)
	if err != nil {
		return service.ProcessRequest{}, &uploadError{http.StatusInternalServerError, "FILE_READ_ERROR", msgInternal}
	}
	templateData, err := readFile(templateFile)
	if err != nil {
		return service.ProcessRequest{}, &uploadError{http.StatusInternalServerError, "FILE_READ_ERROR", msgInternal}
	}

	return service.ProcessRequest{
		PetitionPDF:      petitionData,
		PetitionFilename: petitionFile.Filename,
		TemplatePDF:      templateData,
		TemplateFilename: templateFile.Filename,
	}, nil
}

func (h *ContestationHandler) fieldSubmitted(c *gin.Context, name string) bool {
	form := c.Request.MultipartForm
	if form == nil {
		return false
	}
	if _, ok := form.File[name]; ok {
		return true
	}
	_, ok := form.Value[name]
	return ok
}

func isPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// processFailure maps a pipeline error to a status, code and user message
func processFailure(err error) (int, string, string) {
	var extErr *service.ExtractionError
	switch {
	case errors.As(err, &extErr):
		if extErr.Document == service.DocumentTemplate {
			return http.StatusInternalServerError, "EXTRACTION_FAILED", msgExtractTemplate
		}
		return http.StatusInternalServerError, "EXTRACTION_FAILED", msgExtractPetition
	case errors.Is(err, service.ErrGenerationFailed):
		return http.StatusInternalServerError, "GENERATION_FAILED", msgGeneration
	case errors.Is(err, service.ErrStoreFailed):
		return http.StatusInternalServerError, "STORE_FAILED", msgStoreFailed
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", msgInternal
	}
}

// Process handles POST /process
func (h *ContestationHandler) Process(c *gin.Context) {
	req, uploadErr := h.readUploads(c)
	if uploadErr != nil {
		zap.L().Warn("upload rejected", zap.String("code", uploadErr.code), zap.Int64("bytes", c.Request.ContentLength))
		h.renderIndex(c, uploadErr.status, uploadErr.message)
		return
	}

	result, err := h.service.Process(c.Request.Context(), req)
	if err != nil {
		status, _, message := processFailure(err)
		h.renderIndex(c, status, message)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.resultCookie, result.ResultID, resultCookieMaxAge, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/resultado?id="+url.QueryEscape(result.ResultID))
}

// Result handles GET /resultado
func (h *ContestationHandler) Result(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		id, _ = c.Cookie(h.resultCookie)
	}
	if id == "" {
		h.renderIndex(c, http.StatusBadRequest, msgNoResult)
		return
	}

	view, err := h.service.GetResult(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResultNotFound):
			h.renderIndex(c, http.StatusBadRequest, msgResultNotFound)
		case errors.Is(err, service.ErrContestationTooShort):
			h.renderIndex(c, http.StatusBadRequest, msgInvalidResult)
		default:
			zap.L().Error("failed to load result", zap.String("result_id", id), zap.Error(err))
			h.renderIndex(c, http.StatusInternalServerError, msgRenderResult)
		}
		return
	}

	c.HTML(http.StatusOK, "resultado.html", view)
}

// DownloadDocx handles GET /download/docx
func (h *ContestationHandler) DownloadDocx(c *gin.Context) {
	h.download(c, render.FormatDocx, msgDocxFailed)
}

// DownloadText handles GET /download/txt
func (h *ContestationHandler) DownloadText(c *gin.Context) {
	h.download(c, render.FormatText, msgTextFailed)
}

func (h *ContestationHandler) download(c *gin.Context, format render.Format, failure string) {
	req := service.RenderRequest{
		Metadata: models.RenderModel{
			Forum:         c.Query("foro"),
			District:      c.Query("comarca"),
			ProcessNumber: c.Query("numero_processo"),
			PlaintiffName: c.Query("autor_nome"),
			DefendantName: c.Query("reu_nome"),
			LawyerName:    c.Query("advogado_nome"),
			LawyerState:   c.Query("advogado_estado"),
			LawyerNumber:  c.Query("advogado_numero"),
		},
		Sections: c.Query("secoes"),
		ResultID: c.Query("id"),
	}

	model, err := h.service.BuildRenderModel(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSections):
			errorJSON(c, http.StatusBadRequest, "INVALID_SECTIONS", msgInvalidSections)
		case errors.Is(err, service.ErrResultNotFound):
			errorJSON(c, http.StatusNotFound, "NOT_FOUND", msgResultNotFound)
		default:
			zap.L().Error("failed to build document", zap.String("format", string(format)), zap.Error(err))
			errorJSON(c, http.StatusInternalServerError, "RENDER_FAILED", failure)
		}
		return
	}

	data, err := h.service.Render(model, format)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "RENDER_FAILED", failure)
		return
	}

	filename := render.Filename(format, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, render.ContentType(format), data)
}

// ProcessAPI handles POST /api/process
func (h *ContestationHandler) ProcessAPI(c *gin.Context) {
	req, uploadErr := h.readUploads(c)
	if uploadErr != nil {
		errorJSON(c, uploadErr.status, uploadErr.code, uploadErr.message)
		return
	}

	result, err := h.service.Process(c.Request.Context(), req)
	if err != nil {
		status, code, message := processFailure(err)
		errorJSON(c, status, code, message)
		return
	}

	data, contestation := parser.ExtractResponse(result.Raw)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"result":      result.Raw,
			"json_data":   data.Raw,
			"contestacao": contestation,
			"result_id":   result.ResultID,
		},
	})
}

// GetResultAPI handles GET /api/results/:id
func (h *ContestationHandler) GetResultAPI(c *gin.Context) {
	id := c.Param("id")

	view, err := h.service.GetResult(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResultNotFound):
			errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Result not found")
		case errors.Is(err, service.ErrContestationTooShort):
			errorJSON(c, http.StatusUnprocessableEntity, "CONTESTATION_TOO_SHORT", msgInvalidResult)
		default:
			zap.L().Error("failed to load result", zap.String("result_id", id), zap.Error(err))
			errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", msgInternal)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":          view.ID,
			"json_data":   view.CaseData.Raw,
			"contestacao": view.Contestation,
			"secoes":      view.Sections,
			"documento":   view.Document,
			"data":        view.Date,
		},
	})
}

// DeleteResultAPI handles DELETE /api/results/:id
func (h *ContestationHandler) DeleteResultAPI(c *gin.Context) {
	if err := h.service.DeleteResult(c.Request.Context(), c.Param("id")); err != nil {
		zap.L().Error("failed to delete result", zap.String("result_id", c.Param("id")), zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete result")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DebugSample handles GET /debug/sample
func (h *ContestationHandler) DebugSample(c *gin.Context) {
	id, err := h.service.StoreSample(c.Request.Context())
	if err != nil {
		h.renderIndex(c, http.StatusInternalServerError, msgStoreFailed)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.resultCookie, id, resultCookieMaxAge, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/resultado?id="+url.QueryEscape(id))
}

// RegisterRoutes wires the contestation endpoints onto r
func RegisterRoutes(r *gin.Engine, h *ContestationHandler, debugRoutes bool) {
	r.SetHTMLTemplate(Templates())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/", h.Index)
	r.POST("/process", h.Process)
	r.GET("/resultado", h.Result)
	r.GET("/download/docx", h.DownloadDocx)
	r.GET("/download/txt", h.DownloadText)

	// API routes
	api := r.Group("/api")
	{
		api.POST("/process", h.ProcessAPI)
		api.GET("/results/:id", h.GetResultAPI)
		api.DELETE("/results/:id", h.DeleteResultAPI)
	}

	if debugRoutes {
		r.GET("/debug/sample", h.DebugSample)
	}
}
