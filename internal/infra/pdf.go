package infra

// pdf.go: invoice receipt rendering using go-pdf/fpdf.
// Receipts are 80mm thermal-roll style: header, invoice number and date,
// item table, taxes, round-off, grand total and payment breakdown.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"klikpos/internal/model"

	"github.com/go-pdf/fpdf"
)

// RenderInvoicePDF renders a receipt for inv and returns the PDF bytes.
func RenderInvoicePDF(inv *model.SalesInvoice, company string) ([]byte, error) {
	lines := len(inv.Items) + len(inv.Taxes) + len(inv.Payments)
	height := 90 + float64(lines)*5

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(company), "", 1, "C", false, 0, "")

	title := "Sales Invoice"
	if inv.IsReturn {
		title = "Credit Note"
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, inv.Number, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, inv.PostedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Customer: "+inv.Customer), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range inv.Items {
		name := item.ItemName
		if name == "" {
			name = item.ItemCode
		}
		if len(name) > 24 {
			name = name[:23] + "."
		}
		pdf.CellFormat(col1, 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, item.Qty.String(), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, item.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	row := func(label, value string) {
		pdf.CellFormat(col1+col2, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, value, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 7)
	row("Net total:", inv.NetTotal.StringFixed(2))
	for _, tax := range inv.Taxes {
		row(tax.Account+":", tax.Amount.StringFixed(2))
	}
	if !inv.RoundOffAmount.IsZero() {
		row("Rounding adjustment:", inv.RoundOffAmount.Neg().StringFixed(2))
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, FormatAmount(inv.Currency, inv.RoundedTotal, 2), "", 1, "R", false, 0, "")

	// ── Payments ─────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	for _, p := range inv.Payments {
		row(p.ModeOfPayment+":", p.Amount.StringFixed(2))
	}
	if inv.ChangeAmount.IsPositive() {
		row("Change:", inv.ChangeAmount.StringFixed(2))
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteInvoicePDF renders inv into storagePath and returns the file path.
func WriteInvoicePDF(inv *model.SalesInvoice, company, storagePath string) (string, error) {
	data, err := RenderInvoicePDF(inv, company)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	path := filepath.Join(storagePath, inv.Number+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return path, nil
}
