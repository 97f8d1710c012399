package handlers

import (
	"bytes"
	"encoding/json"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-builder/internal/export"
	"invoice-builder/internal/health"
	"invoice-builder/internal/models"
	"invoice-builder/internal/render"
	"invoice-builder/internal/session"
)

type testServer struct {
	hub    *session.Hub
	router *mux.Router
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	fonts, err := render.LoadFonts("", "")
	require.NoError(t, err)
	raster := render.NewRasterizer(fonts, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	exporter := export.NewExporter(raster, export.Options{Factor: 1, SuppressShadow: true})
	opts := render.OptionsFor("en", "¥")

	hub := session.NewHub(session.Config{ItemRows: 3, Padding: 32, Render: opts})
	invoice := NewInvoiceHandler(hub, exporter, opts)
	previewH := NewPreviewHandler(hub, opts.Formatter, 793.7, 32)
	page := NewPageHandler("en", 3, 793.7, 32)
	healthH := NewHealthHandler(health.NewHealthChecker(nil, hub.Len))

	r := mux.NewRouter()
	r.HandleFunc("/", page.BuilderPage).Methods("GET")
	r.HandleFunc("/ws/preview", previewH.Live).Methods("GET")
	r.HandleFunc("/api/sessions/{id}/preview.png", invoice.SessionPreview).Methods("GET")
	r.HandleFunc("/api/sessions/{id}/export/{format}", invoice.SessionExport).Methods("GET")
	r.HandleFunc("/api/invoices/totals", invoice.Totals).Methods("POST")
	r.HandleFunc("/api/invoices/export/{format}", invoice.Export).Methods("POST")
	r.HandleFunc("/api/preview/scale", previewH.Scale).Methods("POST")
	r.HandleFunc("/health", healthH.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthH.ReadinessHealth).Methods("GET")

	return &testServer{hub: hub, router: r}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

const sampleState = `{
	"recipient": "Acme Corp",
	"items": [
		{"name": "Design", "quantity": 3, "unit_price": 1500},
		{"name": "Hosting", "quantity": 1, "unit_price": 500}
	],
	"tax_rate": 10
}`

func TestTotals(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do("POST", "/api/invoices/totals", sampleState)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.TotalsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.Totals{Subtotal: 5000, Tax: 500, Total: 5500}, resp.Totals)
	assert.Equal(t, "Acme Corp", resp.State.Recipient)
}

func TestTotalsBadBody(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do("POST", "/api/invoices/totals", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
}

func TestStatelessExportPDF(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do("POST", "/api/invoices/export/pdf", sampleState)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestStatelessExportUnsupportedFormat(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do("POST", "/api/invoices/export/gif", sampleState)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionExportMissingSessionIsNoContent(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do("GET", "/api/sessions/does-not-exist/export/png", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestSessionExportPNG(t *testing.T) {
	srv := newTestServer(t)
	s := srv.hub.Create()

	rec := srv.do("GET", "/api/sessions/"+s.ID+"/export/png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="invoice.png"`, rec.Header().Get("Content-Disposition"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 794, img.Bounds().Dx())
	assert.Equal(t, 1123, img.Bounds().Dy())
}

func TestSessionPreview(t *testing.T) {
	srv := newTestServer(t)
	s := srv.hub.Create()

	rec := srv.do("GET", "/api/sessions/"+s.ID+"/preview.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 794, img.Bounds().Dx(), "preview matches the img width set by the page")
	assert.Equal(t, 1123, img.Bounds().Dy())

	rec = srv.do("GET", "/api/sessions/unknown/preview.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScale(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do("POST", "/api/preview/scale", `{"container_width": 500}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ScaleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 436/793.7, resp.Scale, 1e-9)
	assert.Equal(t, "top center", resp.Origin)
	assert.True(t, strings.HasPrefix(resp.Transform, "scale(0.549"))

	rec = srv.do("POST", "/api/preview/scale", `{"container_width": 1200}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1.0, resp.Scale)

	rec = srv.do("POST", "/api/preview/scale", `{"container_width": 40}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBuilderPage(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do("GET", "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<title>INVOICE</title>")
	assert.Contains(t, body, `data-item="2"`)
	assert.NotContains(t, body, `data-item="3"`)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, http.StatusOK, srv.do("GET", "/health", "").Code)

	rec := srv.do("GET", "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"disabled"`)
}

type wsMessage struct {
	Type      string              `json:"type"`
	ID        string              `json:"id"`
	Scale     float64             `json:"scale"`
	Transform string              `json:"transform"`
	Revision  int                 `json:"revision"`
	State     models.InvoiceState `json:"state"`
	Totals    models.Totals       `json:"totals"`
	Display   displayTotals       `json:"display"`
	Error     string              `json:"error"`
}

func readMessage(t *testing.T, ws *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsMessage
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func TestLivePreviewSession(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/preview"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	hello := readMessage(t, ws)
	assert.Equal(t, MsgSession, hello.Type)
	require.NotEmpty(t, hello.ID)
	assert.Equal(t, 1, srv.hub.Len())

	initial := readMessage(t, ws)
	assert.Equal(t, MsgState, initial.Type)
	assert.Len(t, initial.State.Items, 3)
	assert.Equal(t, "¥0", initial.Display.Total)

	// an unmeasurable container produces no scale message
	require.NoError(t, ws.WriteJSON(map[string]any{"type": "resize"}))
	require.NoError(t, ws.WriteJSON(map[string]any{"type": "resize", "width": 500}))
	scale := readMessage(t, ws)
	assert.Equal(t, MsgScale, scale.Type)
	assert.InDelta(t, 436/793.7, scale.Scale, 1e-9)

	require.NoError(t, ws.WriteJSON(map[string]any{
		"type": "edit", "field": "item", "index": 0, "item_field": "unit_price", "value": "2000",
	}))
	require.NoError(t, ws.WriteJSON(map[string]any{
		"type": "edit", "field": "item", "index": 0, "item_field": "quantity", "value": "2",
	}))
	readMessage(t, ws)
	state := readMessage(t, ws)
	assert.Equal(t, 2, state.Revision)
	assert.Equal(t, models.Totals{Subtotal: 4000, Tax: 400, Total: 4400}, state.Totals)
	assert.Equal(t, displayTotals{Subtotal: "¥4,000", Tax: "¥400", Total: "¥4,400"}, state.Display)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "edit", "field": "item", "index": 9, "item_field": "name", "value": "x"}))
	bad := readMessage(t, ws)
	assert.Equal(t, MsgError, bad.Type)
	assert.Contains(t, bad.Error, "out of range")

	// a frame that does not decode is answered, the session stays up
	require.NoError(t, ws.WriteJSON(map[string]any{"type": "edit", "field": "recipient", "value": 5}))
	malformed := readMessage(t, ws)
	assert.Equal(t, MsgError, malformed.Type)
	assert.Contains(t, malformed.Error, "invalid message")
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, MsgError, readMessage(t, ws).Type)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "edit", "field": "recipient", "value": "Acme"}))
	after := readMessage(t, ws)
	assert.Equal(t, MsgState, after.Type)
	assert.Equal(t, 3, after.Revision)
	assert.Equal(t, "Acme", after.State.Recipient)
	assert.Equal(t, 1, srv.hub.Len())

	// the export reflects what the page shows
	rec := srv.do("GET", "/api/sessions/"+hello.ID+"/export/png", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, ws.Close())
	assert.Eventually(t, func() bool { return srv.hub.Len() == 0 }, 5*time.Second, 10*time.Millisecond)

	rec = srv.do("GET", "/api/sessions/"+hello.ID+"/export/pdf", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
