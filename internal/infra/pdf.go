package infra

// pdf.go — quote sheet generation using go-pdf/fpdf.
// Generates an A4 document with:
//   - Issuer letterhead block (company, registration, contact, seal)
//   - Quote number and issue date
//   - Line table (name, options, unit price, quantity, amount) with add-on sub-rows
//   - Discount and truncation lines (if applicable)
//   - Supply amount / VAT split, bold grand total
//   - Bank account footer
//
// The output file is saved to storagePath/quote_{number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// GenerateQuotePDF renders doc to an A4 PDF under storagePath (created if
// needed). Returns the absolute path to the generated file.
func GenerateQuotePDF(doc *QuoteDocument, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("quote_%s.pdf", doc.Number)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30 // total margins = 30mm

	// ── Title ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(contentW, 12, "QUOTATION", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Issuer block ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, doc.Issuer.CompanyName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	if doc.Issuer.Registration != "" {
		pdf.CellFormat(contentW, 4, "Reg. "+doc.Issuer.Registration, "", 1, "L", false, 0, "")
	}
	if doc.Issuer.Representative != "" {
		pdf.CellFormat(contentW, 4, "Rep. "+doc.Issuer.Representative, "", 1, "L", false, 0, "")
	}
	if doc.Issuer.Address != "" {
		pdf.CellFormat(contentW, 4, doc.Issuer.Address, "", 1, "L", false, 0, "")
	}
	if doc.Issuer.Phone != "" {
		pdf.CellFormat(contentW, 4, "Tel. "+doc.Issuer.Phone, "", 1, "L", false, 0, "")
	}
	if doc.Issuer.SealImagePath != "" {
		if _, err := os.Stat(doc.Issuer.SealImagePath); err == nil {
			pdf.ImageOptions(doc.Issuer.SealImagePath, pageW-45, 30, 25, 25, false,
				fpdf.ImageOptions{ReadDpi: true}, 0, "")
		}
	}
	pdf.Ln(2)

	// ── Quote info ───────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW/2, 5, "No. "+doc.Number, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/2, 5, "Date: "+doc.Date, "", 1, "R", false, 0, "")
	if doc.Customer != "" {
		pdf.CellFormat(contentW, 5, "Customer: "+doc.Customer, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Line table header ────────────────────────────────────────────────────
	col1 := contentW * 0.34 // name
	col2 := contentW * 0.22 // options
	col3 := contentW * 0.16 // unit price
	col4 := contentW * 0.10 // qty
	col5 := contentW * 0.18 // amount

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Options", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Unit Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col5, 6, "Amount", "B", 1, "R", false, 0, "")

	// ── Line rows ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	for _, line := range doc.Lines {
		name := truncateRunes(line.Name, 34)
		pdf.CellFormat(col1, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, line.Options, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 6, FormatKRW(line.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, fmt.Sprintf("%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col5, 6, FormatKRW(line.UnitPrice*int64(line.Quantity)), "", 1, "R", false, 0, "")

		for _, addon := range line.Addons {
			pdf.CellFormat(col1, 5, "  + "+addon.Name, "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 5, "", "", 0, "L", false, 0, "")
			pdf.CellFormat(col3, 5, FormatKRW(addon.UnitPrice), "", 0, "R", false, 0, "")
			pdf.CellFormat(col4, 5, fmt.Sprintf("%d", addon.Quantity), "", 0, "C", false, 0, "")
			pdf.CellFormat(col5, 5, FormatKRW(addon.UnitPrice*int64(addon.Quantity)), "", 1, "R", false, 0, "")
		}
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := col1 + col2 + col3 + col4

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(labelW, 5, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 5, FormatKRW(doc.Subtotal), "", 1, "R", false, 0, "")

	if doc.DiscountAmount > 0 {
		pdf.CellFormat(labelW, 5, fmt.Sprintf("Discount (%d%%):", doc.DiscountRate), "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 5, "-"+FormatKRW(doc.DiscountAmount), "", 1, "R", false, 0, "")
	}
	if doc.TruncationAmount > 0 {
		pdf.CellFormat(labelW, 5, "Rounding adj.:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 5, "-"+FormatKRW(doc.TruncationAmount), "", 1, "R", false, 0, "")
	}

	pdf.CellFormat(labelW, 5, "Supply amount:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 5, FormatKRW(doc.SupplyAmount), "", 1, "R", false, 0, "")
	if doc.VATIncluded {
		pdf.CellFormat(labelW, 5, "VAT (included):", "", 0, "R", false, 0, "")
	} else {
		pdf.CellFormat(labelW, 5, "VAT (10%):", "", 0, "R", false, 0, "")
	}
	pdf.CellFormat(col5, 5, FormatKRW(doc.VAT), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 8, "TOTAL:", "T", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 8, FormatKRW(doc.GrandTotal), "T", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	if doc.Issuer.BankAccount != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(contentW, 4, "Bank account: "+doc.Issuer.BankAccount, "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

// truncateRunes cuts long names on rune boundaries so multibyte product
// names never emit invalid UTF-8 into the document.
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
