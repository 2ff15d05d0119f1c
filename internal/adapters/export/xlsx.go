// internal/adapters/export/xlsx.go

// Package export writes the session snapshot (collections, items, orders) to
// a spreadsheet workbook for offline review.
package export

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/dropdash/internal/core/domain"
)

// Snapshot is the materialized store state handed to the exporter
type Snapshot struct {
	Collections []domain.Collection
	Items       map[int64][]domain.Item
	Orders      []domain.Order
}

// WriteFile writes the snapshot workbook to the given path
func WriteFile(snap Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()
	return WriteWorkbook(snap, f)
}

// WriteWorkbook writes an xlsx workbook with one sheet per entity group
func WriteWorkbook(snap Snapshot, w io.Writer) error {
	file := xlsx.NewFile()

	if err := writeCollectionsSheet(file, snap.Collections); err != nil {
		return err
	}
	if err := writeItemsSheet(file, snap.Items); err != nil {
		return err
	}
	if err := writeOrdersSheet(file, snap.Orders); err != nil {
		return err
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeCollectionsSheet(file *xlsx.File, collections []domain.Collection) error {
	sheet, err := file.AddSheet("Collections")
	if err != nil {
		return fmt.Errorf("add worksheet: %w", err)
	}
	addHeaderRow(sheet, []string{
		"ID", "Name", "Release Date", "Capital", "Qty", "Stock Qty", "Status", "Total Sales",
	})

	for _, c := range collections {
		row := sheet.AddRow()
		row.AddCell().SetInt64(c.ID)
		row.AddCell().Value = c.Name
		row.AddCell().Value = c.ReleaseDate.Format(time.DateOnly)
		row.AddCell().Value = c.Capital.StringFixed(2)
		row.AddCell().SetInt(c.Qty)
		row.AddCell().SetInt(c.StockQty)
		row.AddCell().Value = string(c.Status)
		row.AddCell().Value = c.TotalSales.StringFixed(2)
	}
	sheet.SetColWidth(1, 8, 15)
	return nil
}

func writeItemsSheet(file *xlsx.File, items map[int64][]domain.Item) error {
	sheet, err := file.AddSheet("Items")
	if err != nil {
		return fmt.Errorf("add worksheet: %w", err)
	}
	addHeaderRow(sheet, []string{
		"ID", "Collection ID", "Name", "Price", "Status", "Notes",
	})

	collectionIDs := make([]int64, 0, len(items))
	for id := range items {
		collectionIDs = append(collectionIDs, id)
	}
	sort.Slice(collectionIDs, func(a, b int) bool { return collectionIDs[a] < collectionIDs[b] })

	for _, collectionID := range collectionIDs {
		for _, item := range items[collectionID] {
			row := sheet.AddRow()
			row.AddCell().SetInt64(item.ID)
			row.AddCell().SetInt64(item.CollectionID)
			row.AddCell().Value = item.Name
			row.AddCell().Value = item.Price.StringFixed(2)
			row.AddCell().Value = string(item.Status)
			row.AddCell().Value = item.Notes
		}
	}
	sheet.SetColWidth(1, 6, 15)
	return nil
}

func writeOrdersSheet(file *xlsx.File, orders []domain.Order) error {
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("add worksheet: %w", err)
	}
	addHeaderRow(sheet, []string{
		"ID", "Customer", "Lines", "Total", "Payment Status", "Payment Method", "Created",
	})

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetInt64(o.ID)
		row.AddCell().Value = o.CustomerName
		row.AddCell().SetInt(len(o.Lines))
		row.AddCell().Value = o.Total.StringFixed(2)
		if o.Payment != nil {
			row.AddCell().Value = string(o.Payment.Status)
			row.AddCell().Value = o.Payment.Method
		} else {
			row.AddCell().Value = ""
			row.AddCell().Value = ""
		}
		row.AddCell().Value = o.CreatedAt.Format(time.DateOnly)
	}
	sheet.SetColWidth(1, 7, 15)
	return nil
}

func addHeaderRow(sheet *xlsx.Sheet, headers []string) {
	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
	}
}
