package reports

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"logistica/frontend/allocation"
	"logistica/models"
)

var scheduleHeader = []string{
	"Data", "Transportadora", "Remessa Saída", "Nota Venda", "NFD", "Cliente",
	"BDV", "OV", "Motivo", "Estado Produto", "Volume NF", "Status", "Destino",
	"Recebido", "Estado Recebido", "Observações",
}

func scheduleRecord(s models.ReturnSchedule) []string {
	received := "Não"
	if s.Received {
		received = "Sim"
	}
	return []string{
		s.Date, s.Carrier, s.OutboundShipment, s.SalesNote, s.NFD, s.Client,
		s.BDV, s.OV, s.ReturnReason, s.ProductState, strconv.Itoa(s.NFVolume),
		s.Status, s.StorageDest, received, s.ReceivedState, s.ReceiptNotes,
	}
}

// writeSchedulesCSV uses the importer's header names so the file can be
// appended back.
func writeSchedulesCSV(w io.Writer, schedules []models.ReturnSchedule) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	if err := writer.Write(scheduleHeader); err != nil {
		return err
	}
	for _, s := range schedules {
		if err := writer.Write(scheduleRecord(s)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

const schedulesSheet = "Agendamentos"

func writeSchedulesXLSX(w io.Writer, schedules []models.ReturnSchedule) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", schedulesSheet); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}

	for i, h := range scheduleHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(schedulesSheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(schedulesSheet, cell, cell, headerStyle); err != nil {
			return err
		}
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(schedulesSheet, colName, colName, 18); err != nil {
			return err
		}
	}

	volumeCol := 11
	for r, s := range schedules {
		for c, v := range scheduleRecord(s) {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			var value any = v
			if c+1 == volumeCol {
				value = s.NFVolume
			}
			if err := f.SetCellValue(schedulesSheet, cell, value); err != nil {
				return err
			}
		}
	}
	if len(schedules) > 0 {
		if err := f.AutoFilter(schedulesSheet, "A1:P1", nil); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeAllocationsCSV(w io.Writer, entries []models.AllocationEntry) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	if err := writer.Write([]string{"Posição", "Prédio", "Nível", "NFD", "SKU", "Volume", "Alocado por", "Data"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			allocation.Code(e.Building, e.Level),
			strconv.Itoa(e.Building),
			strconv.Itoa(e.Level),
			e.NFD,
			e.SKU,
			strconv.Itoa(e.AllocatedVolume),
			e.AllocatedBy,
			e.CreatedAt.Local().Format("02/01/2006 15:04"),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
