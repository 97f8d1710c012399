package models

// DefaultItemCount is the number of item rows a new invoice starts with
const DefaultItemCount = 10

// InvoiceItem represents one line of the invoice
type InvoiceItem struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// InvoiceState is everything the user can edit on the builder form
type InvoiceState struct {
	IssueDate     string        `json:"issue_date"`
	DueDate       string        `json:"due_date"`
	Recipient     string        `json:"recipient"`
	SenderName    string        `json:"sender_name"`
	SenderPhone   string        `json:"sender_phone"`
	SenderAddress string        `json:"sender_address"`
	Items         []InvoiceItem `json:"items"`
	TaxRate       float64       `json:"tax_rate"`
	BankInfo      string        `json:"bank_info"`
	Notes         string        `json:"notes"`
}

// Totals is derived from InvoiceState and is never stored on its own
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Amount returns quantity times unit price for a single item
func (i InvoiceItem) Amount() float64 {
	return i.Quantity * i.UnitPrice
}

// EditRequest is one field-level change coming from the builder form
type EditRequest struct {
	Field     string `json:"field"`
	Index     int    `json:"index"`
	ItemField string `json:"item_field"`
	Value     string `json:"value"`
}

// ScaleRequest asks for the preview scale of a container width
type ScaleRequest struct {
	ContainerWidth float64 `json:"container_width"`
}

// ScaleResponse carries the preview scale and its CSS transform
type ScaleResponse struct {
	Scale     float64 `json:"scale"`
	Transform string  `json:"transform"`
	Origin    string  `json:"origin"`
}

// TotalsResponse pairs a state with the totals computed from it
type TotalsResponse struct {
	Revision int          `json:"revision,omitempty"`
	State    InvoiceState `json:"state"`
	Totals   Totals       `json:"totals"`
}
