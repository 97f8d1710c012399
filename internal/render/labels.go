package render

import "golang.org/x/text/language"

// Labels are the fixed captions printed on the document
type Labels struct {
	Title     string
	IssueDate string
	DueDate   string
	Phone     string
	Item      string
	Quantity  string
	UnitPrice string
	Amount    string
	Subtotal  string
	Tax       string
	Total     string
	BankInfo  string
	Notes     string
}

var englishLabels = Labels{
	Title:     "INVOICE",
	IssueDate: "Issue date",
	DueDate:   "Due date",
	Phone:     "Tel",
	Item:      "Item",
	Quantity:  "Qty",
	UnitPrice: "Unit price",
	Amount:    "Amount",
	Subtotal:  "Subtotal",
	Tax:       "Tax",
	Total:     "Total",
	BankInfo:  "Payment details",
	Notes:     "Notes",
}

var japaneseLabels = Labels{
	Title:     "請求書",
	IssueDate: "発行日",
	DueDate:   "支払期限",
	Phone:     "Tel",
	Item:      "品名",
	Quantity:  "数量",
	UnitPrice: "単価",
	Amount:    "金額",
	Subtotal:  "小計",
	Tax:       "消費税",
	Total:     "合計",
	BankInfo:  "お振込先",
	Notes:     "備考",
}

// LabelsFor picks the caption set for a locale. Japanese needs a CJK font.
func LabelsFor(locale string) (Labels, language.Tag) {
	tag, err := language.Parse(locale)
	if err != nil {
		return englishLabels, language.English
	}
	if base, _ := tag.Base(); base.String() == "ja" {
		return japaneseLabels, language.Japanese
	}
	return englishLabels, tag
}

// OptionsFor builds document options for a locale and currency glyph
func OptionsFor(locale, symbol string) Options {
	labels, tag := LabelsFor(locale)
	return Options{Labels: labels, Formatter: NewFormatter(tag, symbol)}
}
