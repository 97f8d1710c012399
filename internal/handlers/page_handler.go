package handlers

import (
	"html/template"
	"net/http"

	log "github.com/sirupsen/logrus"

	"invoice-builder/internal/render"
	"invoice-builder/templates"
)

// formLabels adds the captions that only appear on the builder form
type formLabels struct {
	render.Labels
	Recipient     string
	SenderName    string
	SenderAddress string
	Items         string
}

type pageData struct {
	Title        string
	Locale       string
	Labels       formLabels
	Rows         []int
	NominalWidth float64
	Padding      float64
}

type PageHandler struct {
	templates *template.Template
	data      pageData
}

func NewPageHandler(locale string, itemRows int, nominalWidth, padding float64) *PageHandler {
	// Parse all templates from embedded filesystem
	tmpl := template.Must(template.ParseFS(templates.FS, "*.html"))

	labels, _ := render.LabelsFor(locale)
	rows := make([]int, itemRows)
	for i := range rows {
		rows[i] = i
	}

	return &PageHandler{
		templates: tmpl,
		data: pageData{
			Title:        labels.Title,
			Locale:       locale,
			Labels:       formLabelsFor(labels),
			Rows:         rows,
			NominalWidth: nominalWidth,
			Padding:      padding,
		},
	}
}

// BuilderPage serves the invoice builder
func (h *PageHandler) BuilderPage(w http.ResponseWriter, r *http.Request) {
	if err := h.templates.ExecuteTemplate(w, "invoice_builder.html", h.data); err != nil {
		log.Printf("[Page] Failed to render builder: %v", err)
	}
}

func formLabelsFor(l render.Labels) formLabels {
	if l.Title == "請求書" {
		return formLabels{Labels: l, Recipient: "宛名", SenderName: "差出人", SenderAddress: "住所", Items: "明細"}
	}
	return formLabels{Labels: l, Recipient: "Bill to", SenderName: "From", SenderAddress: "Address", Items: "Items"}
}
