package datasets

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"autoserve/backend/internal/domain"
)

// LoadCustomersXLSX reads customers from the named sheet of an Excel
// workbook, using the same header-mapped columns as the CSV loader.
// Rows with unparseable coordinates are skipped rather than failing the
// whole import: operator spreadsheets routinely carry a few bad rows.
func LoadCustomersXLSX(path, sheet string) ([]domain.Customer, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := headerIndex(rows[0])
	var customers []domain.Customer
	for i, row := range rows[1:] {
		customer, err := customerFromRow(row, index, i+2)
		if err != nil || customer.ID == "" {
			continue
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

// LoadServiceCentersXLSX reads service centers from the named sheet.
func LoadServiceCentersXLSX(path, sheet string) ([]domain.ServiceCenter, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := headerIndex(rows[0])
	var centers []domain.ServiceCenter
	for i, row := range rows[1:] {
		center, err := serviceCenterFromRow(row, index, i+2)
		if err != nil || center.ID == "" {
			continue
		}
		centers = append(centers, center)
	}
	return centers, nil
}

// ExportIndexXLSX writes the built index as a workbook with one row per
// customer/rank pair, for operators auditing the precomputed rankings.
func ExportIndexXLSX(path string, index domain.TopKIndex, customers []domain.Customer, centers []domain.ServiceCenter) error {
	centerNames := make(map[string]string, len(centers))
	for _, center := range centers {
		centerNames[center.ID] = center.Name
	}

	workbook := excelize.NewFile()
	defer workbook.Close()

	const sheet = "AssignmentIndex"
	sheetIndex, err := workbook.NewSheet(sheet)
	if err != nil {
		return err
	}

	writer, err := workbook.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := writer.SetRow("A1", []interface{}{
		"Customer ID", "Customer Name", "Rank", "Service Center ID", "Service Center Name",
	}); err != nil {
		return err
	}

	rowNum := 2
	for _, customer := range customers {
		entry, ok := index.EntryFor(customer.ID)
		if !ok {
			continue
		}
		for rank, centerID := range entry {
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			row := []interface{}{customer.ID, customer.Name, rank + 1, centerID, centerNames[centerID]}
			if err := writer.SetRow(cell, row); err != nil {
				return err
			}
			rowNum++
		}
	}

	if err := writer.Flush(); err != nil {
		return err
	}
	workbook.SetActiveSheet(sheetIndex)
	_ = workbook.DeleteSheet("Sheet1")
	return workbook.SaveAs(path)
}
