// Package export renders equipment lists and inventory documents as XLSX
// workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/inventar/internal/model"
)

// ContentType is the MIME type of the produced workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateFmt = "02.01.2006"

var statusLabels = map[string]string{
	model.StatusReserve:    "Резерв",
	model.StatusRepair:     "В ремонте",
	model.StatusInUse:      "В работе",
	model.StatusToTransfer: "К передаче",
	model.StatusToWriteOff: "К списанию",
	model.StatusWrittenOff: "Списано",
}

var documentTitles = map[string]string{
	model.DocumentTransfer: "Акт приёма-передачи оборудования",
	model.DocumentWriteOff: "Акт списания оборудования",
}

// StatusLabel returns the display name of an equipment status.
func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

var equipmentHeaders = []any{
	"№", "Организация", "Тип", "Наименование", "Инв. номер", "Номер ПК",
	"Серийный номер", "Модель", "Статус", "Закреплено за", "Дата ввода",
}

// EquipmentList writes items as a single-sheet workbook, one row per item.
func EquipmentList(w io.Writer, items []model.Equipment) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Оборудование"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &equipmentHeaders); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := boldRow(f, sheet, 1, len(equipmentHeaders)); err != nil {
		return err
	}

	for i, e := range items {
		var commissioned string
		if e.CommissioningDate != nil {
			commissioned = e.CommissioningDate.Format(dateFmt)
		}
		row := []any{
			i + 1, e.OrganizationCode, e.TypeName, e.Name, e.InventoryNumber, e.PCNumber,
			e.SerialNumber, e.Model, StatusLabel(e.Status), e.AssignedToName, commissioned,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	f.SetColWidth(sheet, "A", "A", 6)
	f.SetColWidth(sheet, "B", "C", 14)
	f.SetColWidth(sheet, "D", "D", 36)
	f.SetColWidth(sheet, "E", "I", 18)
	f.SetColWidth(sheet, "J", "J", 28)
	f.SetColWidth(sheet, "K", "K", 14)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

var lineHeaders = []any{"№", "Наименование", "Тип", "Инв. номер", "Номер ПК"}

// DocumentAct writes an inventory document as a printable act: a header,
// the numbered lines from their snapshots and signature rows.
func DocumentAct(w io.Writer, doc *model.InventoryDocument) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Акт"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	title, ok := documentTitles[doc.DocType]
	if !ok {
		return fmt.Errorf("document %s: %w %q", doc.Number, model.ErrUnknownDocumentType, doc.DocType)
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s № %s от %s", title, doc.Number, doc.Date.Format(dateFmt)))
	f.MergeCell(sheet, "A1", "E1")
	f.SetCellValue(sheet, "A2", "Организация:")
	f.SetCellValue(sheet, "B2", doc.OrganizationName)

	row := 3
	if doc.FromEmployeeName != "" {
		f.SetCellValue(sheet, cellName(1, row), "Сдал:")
		f.SetCellValue(sheet, cellName(2, row), doc.FromEmployeeName)
		row++
	}
	if doc.ToEmployeeName != "" {
		f.SetCellValue(sheet, cellName(1, row), "Принял:")
		f.SetCellValue(sheet, cellName(2, row), doc.ToEmployeeName)
		row++
	}
	if doc.Comment != "" {
		f.SetCellValue(sheet, cellName(1, row), "Комментарий:")
		f.SetCellValue(sheet, cellName(2, row), doc.Comment)
		row++
	}

	row++
	if err := f.SetSheetRow(sheet, cellName(1, row), &lineHeaders); err != nil {
		return fmt.Errorf("writing line header: %w", err)
	}
	if err := boldRow(f, sheet, row, len(lineHeaders)); err != nil {
		return err
	}
	for i, l := range doc.Lines {
		row++
		values := []any{i + 1, l.NameSnapshot, l.TypeSnapshot, l.InventoryNumberSnapshot, l.PCNumberSnapshot}
		if err := f.SetSheetRow(sheet, cellName(1, row), &values); err != nil {
			return fmt.Errorf("writing line %d: %w", i+1, err)
		}
	}

	row += 2
	f.SetCellValue(sheet, cellName(1, row), fmt.Sprintf("Всего позиций: %d", len(doc.Lines)))
	for _, who := range []string{"Сдал", "Принял"} {
		row += 2
		f.SetCellValue(sheet, cellName(1, row), who+": ____________________ / ____________________")
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 40)
	f.SetColWidth(sheet, "C", "E", 18)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func boldRow(f *excelize.File, sheet string, row, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	return f.SetCellStyle(sheet, cellName(1, row), cellName(cols, row), style)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
