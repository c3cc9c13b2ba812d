package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"contestacao-backend/config"
	"contestacao-backend/service"
	"contestacao-backend/storage"

	"github.com/gin-gonic/gin"
)

const testResponse = "```json\n" + `{"processo": {"numero": "1000123-45.2024.8.26.0100", "comarca": "Campinas"},
"autor": {"nome": "Fulano de Tal"}, "reu": {"nome": "Brazino777 Ltda"}, "pedidos": []}` + "\n```\n" + `
DO MÉRITO
Não há qualquer dano a ser indenizado ao autor nos presentes autos.
DOS PEDIDOS
a) Improcedência total dos pedidos
`

type stubExtractor struct {
	fail map[string]error
}

func (s stubExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if err, ok := s.fail[string(data)]; ok {
		return "", err
	}
	return string(data), nil
}

type stubGenerator struct {
	response string
}

func (s stubGenerator) Generate(ctx context.Context, prompt string, documents ...string) (string, error) {
	return s.response, nil
}

type testServer struct {
	router *gin.Engine
	svc    *service.ContestationService
}

func newTestServer(t *testing.T, ext stubExtractor, maxUpload int64, debug bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewContestationService(
		service.WithExtractor(ext),
		service.WithGenerator(stubGenerator{response: testResponse}),
		service.WithResultStore(storage.NewMemoryStorage()),
		service.WithLawyer(config.Lawyer{Name: "MARIA SOUZA", State: "SP", Number: "123.456"}),
		service.WithDefaultComarca("São Paulo"),
		service.WithClock(func() time.Time { return time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC) }),
	)
	r := gin.New()
	RegisterRoutes(r, NewContestationHandler(svc, maxUpload, ""), debug)
	return &testServer{router: r, svc: svc}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// multipartUpload builds a form with one file part per entry; an empty
// filename produces a part the way browsers send an empty file input
func multipartUpload(t *testing.T, path string, files map[string][2]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, f := range files {
		part, err := mw.CreateFormFile(field, f[0])
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write([]byte(f[1]))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validFiles() map[string][2]string {
	return map[string][2]string{
		"peticao": {"peticao.pdf", "texto da petição"},
		"modelo":  {"Modelo.PDF", "texto do modelo"},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	return env
}

func TestHealthAndIndex(t *testing.T) {
	s := newTestServer(t, stubExtractor{}, 16<<20, false)

	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("health: %d %s", w.Code, w.Body.String())
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("index: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `name="peticao"`) || !strings.Contains(w.Body.String(), "16MB") {
		t.Errorf("index page missing upload form")
	}
}

func TestProcess_Validation(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string][2]string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "missing template",
			files:      map[string][2]string{"peticao": {"peticao.pdf", "x"}},
			wantStatus: http.StatusBadRequest,
			wantMsg:    msgMissingFiles,
		},
		{
			name: "nothing selected",
			files: map[string][2]string{
				"peticao": {"", ""},
				"modelo":  {"", ""},
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    msgNoFileSelected,
		},
		{
			name: "not a pdf",
			files: map[string][2]string{
				"peticao": {"peticao.pdf", "x"},
				"modelo":  {"modelo.docx", "x"},
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    msgNotPDF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, stubExtractor{}, 16<<20, false)
			w := s.do(multipartUpload(t, "/process", tt.files))
			if w.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantMsg) {
				t.Errorf("body should contain %q", tt.wantMsg)
			}
		})
	}
}

func TestProcess_TooLarge(t *testing.T) {
	s := newTestServer(t, stubExtractor{}, 1024, false)

	files := validFiles()
	files["peticao"] = [2]string{"peticao.pdf", strings.Repeat("x", 4096)}

	w := s.do(multipartUpload(t, "/process", files))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: got %d, want 413", w.Code)
	}
	if !strings.Contains(w.Body.String(), "muito grande") {
		t.Errorf("body should explain the upload limit")
	}

	w = s.do(multipartUpload(t, "/api/process", files))
	if env := decodeEnvelope(t, w); w.Code != http.StatusRequestEntityTooLarge || env.Error.Code != "FILE_TOO_LARGE" {
		t.Errorf("api: got %d %+v", w.Code, env.Error)
	}
}

func TestProcess_ExtractionFailure(t *testing.T) {
	s := newTestServer(t, stubExtractor{fail: map[string]error{"texto do modelo": errors.New("no text")}}, 16<<20, false)

	w := s.do(multipartUpload(t, "/process", validFiles()))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, msgExtractTemplate) {
		t.Errorf("body should name the template document")
	}
	if strings.Contains(body, "no text") {
		t.Errorf("internal error leaked to the page")
	}
}

func TestProcess_RedirectAndResult(t *testing.T) {
	s := newTestServer(t, stubExtractor{}, 16<<20, false)

	w := s.do(multipartUpload(t, "/process", validFiles()))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303 (%s)", w.Code, w.Body.String())
	}
	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil || loc.Path != "/resultado" || loc.Query().Get("id") == "" {
		t.Fatalf("unexpected redirect %q", w.Header().Get("Location"))
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == defaultResultCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != loc.Query().Get("id") {
		t.Fatalf("result cookie not set: %v", w.Result().Cookies())
	}

	// without ?id the cookie is used
	req := httptest.NewRequest(http.MethodGet, "/resultado", nil)
	req.AddCookie(cookie)
	w = s.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("result page: got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"DO MÉRITO", "DOS PEDIDOS", "Improcedência total dos pedidos", "05/03/2024", "Fulano de Tal", "MARIA SOUZA"} {
		if !strings.Contains(body, want) {
			t.Errorf("result page missing %q", want)
		}
	}
}

func TestResult_Errors(t *testing.T) {
	s := newTestServer(t, stubExtractor{}, 16<<20, false)

	shortID, err := s.svc.StoreResult(context.Background(), "curto demais")
	if err != nil {
		t.Fatalf("StoreResult: %v", err)
	}

	tests := []struct {
		path    string
		wantMsg string
	}{
		{"/resultado", msgNoResult},
		{"/resultado?id=00000000-0000-4000-8000-000000000000", msgResultNotFound},
		{"/resultado?id=../../etc/passwd", msgResultNotFound},
		{"/resultado?id=" + shortID, msgInvalidResult},
	}
	for _, tt := range tests {
		w := s.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", tt.path, w.Code)
		}
		if !strings.Contains(w.Body.String(), tt.wantMsg) {
			t.Errorf("%s: body should contain %q", tt.path, tt.wantMsg)
		}
	}
}

func TestDownload(t *testing.T) {
	s := newTestServer(t, stubExtractor{}, 16<<20, false)
	id, err := s.svc.StoreResult(context.Background(), testResponse)
	if err != nil {
		t.Fatalf("StoreResult: %v", err)
	}

	t.Run("text rebuilt from result", func(t *testing.T) {
		q := url.Values{"id": {id}, "autor_nome": {"Outro Autor"}}
		w := s.do(httptest.NewRequest(http.MethodGet, "/download/txt?"+q.Encode(), nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status: got %d (%s)", w.Code, w.Body.String())
		}
		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "contestacao_") || !strings.HasSuffix(cd, `.txt"`) {
			t.Errorf("Content-Disposition: %q", cd)
		}
		body := w.Body.String()
		for _, want := range []string{"Autor: Outro Autor", "Réu: Brazino777 Ltda", "DOS PEDIDOS", "a) Improcedência total dos pedidos"} {
			if !strings.Contains(body, want) {
				t.Errorf("text document missing %q", want)
			}
		}
	})

	t.Run("docx with explicit sections", func(t *testing.T) {
		q := url.Values{"secoes": {`[{"titulo": "DO MÉRITO", "paragrafos": ["Sem dano."]}]`}}
		w := s.do(httptest.NewRequest(http.MethodGet, "/download/docx?"+q.Encode(), nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status: got %d (%s)", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "wordprocessingml") {
			t.Errorf("Content-Type: %q", ct)
		}
		if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
			t.Errorf("body is not a zip package")
		}
	})

	t.Run("placeholders without any input", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/download/txt", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status: got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "[NÚMERO DO PROCESSO]") {
			t.Errorf("expected placeholders in the empty document")
		}
	})

	t.Run("invalid sections", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/download/docx?secoes=%5B%7B", nil))
		env := decodeEnvelope(t, w)
		if w.Code != http.StatusBadRequest || env.Success || env.Error.Code != "INVALID_SECTIONS" {
			t.Errorf("got %d %+v", w.Code, env)
		}
	})
}

func TestAPI(t *testing.T) {
	s := newTestServer(t, stubExtractor{}, 16<<20, false)

	w := s.do(multipartUpload(t, "/api/process", validFiles()))
	if w.Code != http.StatusOK {
		t.Fatalf("api process: got %d (%s)", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	var processed struct {
		Result      string                 `json:"result"`
		JSONData    map[string]interface{} `json:"json_data"`
		Contestacao string                 `json:"contestacao"`
		ResultID    string                 `json:"result_id"`
	}
	if err := json.Unmarshal(env.Data, &processed); err != nil {
		t.Fatalf("data: %v", err)
	}
	if processed.Result != testResponse || processed.ResultID == "" {
		t.Errorf("unexpected result: %+v", processed)
	}
	if !strings.HasPrefix(processed.Contestacao, "DO MÉRITO") {
		t.Errorf("contestacao: %q", processed.Contestacao)
	}
	if _, ok := processed.JSONData["autor"]; !ok {
		t.Errorf("json_data missing autor: %v", processed.JSONData)
	}

	path := "/api/results/" + processed.ResultID
	w = s.do(httptest.NewRequest(http.MethodGet, path, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get result: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"secoes"`) {
		t.Errorf("result view missing sections")
	}

	for i := 0; i < 2; i++ {
		if w = s.do(httptest.NewRequest(http.MethodDelete, path, nil)); w.Code != http.StatusOK {
			t.Errorf("delete #%d: got %d", i+1, w.Code)
		}
	}

	w = s.do(httptest.NewRequest(http.MethodGet, path, nil))
	if env := decodeEnvelope(t, w); w.Code != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
		t.Errorf("after delete: got %d %+v", w.Code, env.Error)
	}

	w = s.do(multipartUpload(t, "/api/process", map[string][2]string{"peticao": {"a.pdf", "x"}}))
	if env := decodeEnvelope(t, w); w.Code != http.StatusBadRequest || env.Error.Code != "MISSING_FILES" {
		t.Errorf("missing file: got %d %+v", w.Code, env.Error)
	}
}

func TestDebugSample(t *testing.T) {
	off := newTestServer(t, stubExtractor{}, 16<<20, false)
	if w := off.do(httptest.NewRequest(http.MethodGet, "/debug/sample", nil)); w.Code != http.StatusNotFound {
		t.Errorf("debug route should be disabled, got %d", w.Code)
	}

	on := newTestServer(t, stubExtractor{}, 16<<20, true)
	w := on.do(httptest.NewRequest(http.MethodGet, "/debug/sample", nil))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", w.Code)
	}

	w = on.do(httptest.NewRequest(http.MethodGet, w.Header().Get("Location"), nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "João da Silva") {
		t.Errorf("sample result page: got %d", w.Code)
	}
}
