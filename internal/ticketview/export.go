package ticketview

import (
	"errors"
	"strconv"
	"time"

	"github.com/deskline/support-portal/internal/domain"
)

// ErrNothingToExport is returned when the filtered set is empty.
var ErrNothingToExport = errors.New("nothing to export")

// NothingToExportMessage is the explanation shown instead of an empty file.
const NothingToExportMessage = "Não há chamados para exportar com os filtros atuais."

// ExportTimeLayout formats timestamps in export rows.
const ExportTimeLayout = "02/01/2006 15:04:05"

// ExportSheetName is the worksheet name of the exported workbook.
const ExportSheetName = "Chamados"

// Column is a fixed export column with a width hint in characters.
type Column struct {
	Label string
	Width float64
}

// ExportColumns lists the export columns in order.
var ExportColumns = []Column{
	{Label: "ID", Width: 10},
	{Label: "Assunto", Width: 40},
	{Label: "Descrição", Width: 60},
	{Label: "Solicitante", Width: 20},
	{Label: "Categoria", Width: 15},
	{Label: "Prioridade", Width: 12},
	{Label: "Status", Width: 15},
	{Label: "Data Abertura", Width: 20},
	{Label: "Data Resolução", Width: 20},
	{Label: "Última Atualização", Width: 20},
}

// Row is one exported ticket, aligned with ExportColumns.
type Row []string

// Project maps tickets onto export rows, one per ticket in the given order.
// Timestamps are rendered in loc; absent timestamps become empty cells.
func Project(tickets []domain.Ticket, loc *time.Location) ([]Row, error) {
	if len(tickets) == 0 {
		return nil, ErrNothingToExport
	}
	if loc == nil {
		loc = time.Local
	}
	rows := make([]Row, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		rows = append(rows, Row{
			strconv.FormatInt(t.Number, 10),
			t.Title,
			t.Description,
			t.Requester,
			t.Category,
			PriorityLabel(t.Priority),
			StatusLabel(t.Status),
			formatTime(&t.CreatedAt, loc),
			formatTime(t.ResolvedAt, loc),
			formatTime(&t.UpdatedAt, loc),
		})
	}
	return rows, nil
}

// ExportFileName names the workbook after the export date.
func ExportFileName(now time.Time) string {
	return "chamados_export_" + now.Format(DateLayout) + ".xlsx"
}

func formatTime(ts *time.Time, loc *time.Location) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	return ts.In(loc).Format(ExportTimeLayout)
}
