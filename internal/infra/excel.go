package infra

// excel.go — spreadsheet export using excelize. Same layout as the PDF quote
// sheet: issuer block, line table with add-on sub-rows, totals block.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const quoteSheet = "Quote"

// GenerateQuoteXLSX renders doc to an .xlsx file under storagePath.
// Returns the absolute path to the generated file.
func GenerateQuoteXLSX(doc *QuoteDocument, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("xlsx: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("quote_%s.xlsx", doc.Number)
	filePath := filepath.Join(storagePath, fileName)

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(quoteSheet)
	if err != nil {
		return "", fmt.Errorf("xlsx: create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(quoteSheet, "A", "A", 32)
	f.SetColWidth(quoteSheet, "B", "B", 24)
	f.SetColWidth(quoteSheet, "C", "E", 14)

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	money, _ := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	boldMoney, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 3})

	row := 1
	set := func(col string, v any) {
		f.SetCellValue(quoteSheet, fmt.Sprintf("%s%d", col, row), v)
	}

	set("A", "QUOTATION")
	f.SetCellStyle(quoteSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), bold)
	row += 2

	set("A", doc.Issuer.CompanyName)
	f.SetCellStyle(quoteSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), bold)
	row++
	if doc.Issuer.Registration != "" {
		set("A", "Reg. "+doc.Issuer.Registration)
		row++
	}
	if doc.Issuer.Address != "" {
		set("A", doc.Issuer.Address)
		row++
	}
	if doc.Issuer.Phone != "" {
		set("A", "Tel. "+doc.Issuer.Phone)
		row++
	}
	row++

	set("A", "No. "+doc.Number)
	set("E", "Date: "+doc.Date)
	row++
	if doc.Customer != "" {
		set("A", "Customer: "+doc.Customer)
		row++
	}
	row++

	// Line table
	headerRow := row
	set("A", "Item")
	set("B", "Options")
	set("C", "Unit Price")
	set("D", "Qty")
	set("E", "Amount")
	f.SetCellStyle(quoteSheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("E%d", headerRow), bold)
	row++

	for _, line := range doc.Lines {
		set("A", line.Name)
		set("B", line.Options)
		set("C", line.UnitPrice)
		set("D", line.Quantity)
		set("E", line.UnitPrice*int64(line.Quantity))
		row++
		for _, addon := range line.Addons {
			set("A", "  + "+addon.Name)
			set("C", addon.UnitPrice)
			set("D", addon.Quantity)
			set("E", addon.UnitPrice*int64(addon.Quantity))
			row++
		}
	}
	f.SetCellStyle(quoteSheet, fmt.Sprintf("C%d", headerRow+1), fmt.Sprintf("E%d", row-1), money)
	row++

	// Totals block
	totals := func(label string, amount int64, style int) {
		set("D", label)
		set("E", amount)
		f.SetCellStyle(quoteSheet, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), style)
		row++
	}

	totals("Subtotal", doc.Subtotal, money)
	if doc.DiscountAmount > 0 {
		totals(fmt.Sprintf("Discount (%d%%)", doc.DiscountRate), -doc.DiscountAmount, money)
	}
	if doc.TruncationAmount > 0 {
		totals("Rounding adj.", -doc.TruncationAmount, money)
	}
	totals("Supply amount", doc.SupplyAmount, money)
	if doc.VATIncluded {
		totals("VAT (included)", doc.VAT, money)
	} else {
		totals("VAT (10%)", doc.VAT, money)
	}
	totals("TOTAL", doc.GrandTotal, boldMoney)

	if doc.Issuer.BankAccount != "" {
		row++
		set("A", "Bank account: "+doc.Issuer.BankAccount)
	}

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("xlsx: write file: %w", err)
	}

	return filePath, nil
}
