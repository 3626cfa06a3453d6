package main

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"pfa/models"
	"pfa/pkg/money"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet   = "Transactions"
	maxExportRows = 10000
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// buildTransactionsXLSX renders rows as a single-sheet workbook.
func buildTransactionsXLSX(rows []txnRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	headers := []string{"Date", "Type", "Category", "Description", "Amount"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}

	var totalMinor int64
	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}
		write(1, r.Date.Format(time.DateOnly))
		write(2, string(r.Type))
		write(3, deref(r.Category, ""))
		write(4, deref(r.Description, ""))
		write(5, money.MinorToFloat(r.AmountMinor))
		if r.Type == models.TxnExpense {
			totalMinor += r.AmountMinor
		}
	}
	sumRow := len(rows) + 2
	_ = f.SetCellValue(exportSheet, fmt.Sprintf("D%d", sumRow), "Total expenses")
	_ = f.SetCellValue(exportSheet, fmt.Sprintf("E%d", sumRow), money.MinorToFloat(totalMinor))

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(exportSheet, "A1", "E1", style)
	}
	if style, err := f.NewStyle(&excelize.Style{NumFmt: 4}); err == nil { // #,##0.00
		_ = f.SetCellStyle(exportSheet, "E2", fmt.Sprintf("E%d", sumRow), style)
	}
	_ = f.SetColWidth(exportSheet, "A", "B", 12)
	_ = f.SetColWidth(exportSheet, "C", "C", 20)
	_ = f.SetColWidth(exportSheet, "D", "D", 48)
	_ = f.SetColWidth(exportSheet, "E", "E", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf, nil
}

func exportTransactionsHandler(c *gin.Context) {
	uid := currentUserID(c)
	f, err := parseTxnFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := queryTxnRows(f, uid, 0, maxExportRows)
	if err != nil {
		reqLogger(c).Error().Err(err).Msg("export query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	buf, err := buildTransactionsXLSX(rows)
	if err != nil {
		reqLogger(c).Error().Err(err).Msg("export render failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	name := fmt.Sprintf("transactions-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
