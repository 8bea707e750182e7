package schedules

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"logistica/infrastructure/ingest"
	"logistica/models"
)

const (
	fieldDate             ingest.Field = "date"
	fieldCarrier          ingest.Field = "carrier"
	fieldOutboundShipment ingest.Field = "outboundShipment"
	fieldSalesNote        ingest.Field = "salesNote"
	fieldNFD              ingest.Field = "nfd"
	fieldClient           ingest.Field = "client"
	fieldBDV              ingest.Field = "bdv"
	fieldOV               ingest.Field = "ov"
	fieldReturnReason     ingest.Field = "returnReason"
	fieldProductState     ingest.Field = "productState"
	fieldNFVolume         ingest.Field = "nfVolume"
	fieldStatus           ingest.Field = "status"
	fieldStorageDest      ingest.Field = "storageDest"
)

// Mapping lists the accepted header aliases per schedule field.
var Mapping = ingest.Mapping{
	{Field: fieldDate, Label: "Data", Aliases: []string{"Data", "Data Agendamento"}, Required: true},
	{Field: fieldCarrier, Aliases: []string{"Transportadora"}},
	{Field: fieldOutboundShipment, Aliases: []string{"Remessa Saída", "Remessa Saida", "Remessa"}},
	{Field: fieldSalesNote, Aliases: []string{"Nota Venda", "NF Venda"}},
	{Field: fieldNFD, Aliases: []string{"NFD", "NF Devolução", "NF Devolucao"}},
	{Field: fieldClient, Label: "Cliente", Aliases: []string{"Cliente"}, Required: true},
	{Field: fieldBDV, Aliases: []string{"BDV"}},
	{Field: fieldOV, Aliases: []string{"OV"}},
	{Field: fieldReturnReason, Aliases: []string{"Motivo", "Motivo Devolução"}},
	{Field: fieldProductState, Aliases: []string{"Estado Produto", "Estado"}},
	{Field: fieldNFVolume, Aliases: []string{"Volume NF", "Volumes"}},
	{Field: fieldStatus, Aliases: []string{"Status"}},
	{Field: fieldStorageDest, Aliases: []string{"Destino", "Destino Armazenagem"}},
}

// NewID returns the schedule id for the index-th record created at now.
func NewID(now time.Time, index int) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.Itoa(index)
}

// ParseSchedules reads a schedule CSV. Rows without date or client are
// dropped. Ids are derived from now and the row position among kept rows.
func ParseSchedules(data []byte, now time.Time) ([]models.ReturnSchedule, error) {
	table, err := ingest.Parse(data, Mapping)
	if err != nil {
		return nil, err
	}

	out := make([]models.ReturnSchedule, 0, len(table.Rows))
	for _, row := range table.Rows {
		s := models.ReturnSchedule{
			Date:             row.String(fieldDate),
			Carrier:          row.String(fieldCarrier),
			OutboundShipment: row.String(fieldOutboundShipment),
			SalesNote:        row.String(fieldSalesNote),
			NFD:              row.String(fieldNFD),
			Client:           row.String(fieldClient),
			BDV:              row.String(fieldBDV),
			OV:               row.String(fieldOV),
			ReturnReason:     row.String(fieldReturnReason),
			ProductState:     row.String(fieldProductState),
			NFVolume:         row.Int(fieldNFVolume),
			Status:           NormalizeStatus(row.String(fieldStatus)),
			StorageDest:      row.String(fieldStorageDest),
			CreatedAt:        now,
		}
		if s.Date == "" || s.Client == "" {
			continue
		}
		s.ID = NewID(now, len(out))
		out = append(out, s)
	}
	return out, nil
}

// NormalizeStatus maps a status to its canonical spelling. Unknown and empty
// values become Agendado.
func NormalizeStatus(status string) string {
	status = strings.TrimSpace(status)
	for _, s := range models.ScheduleStatuses {
		if strings.EqualFold(s, status) {
			return s
		}
	}
	return models.StatusScheduled
}

// ValidStatus reports whether status is one of the canonical statuses.
func ValidStatus(status string) bool {
	for _, s := range models.ScheduleStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// AppendSchedules concatenates batch after existing. NFDs are not deduplicated.
func AppendSchedules(existing, batch []models.ReturnSchedule) []models.ReturnSchedule {
	out := make([]models.ReturnSchedule, 0, len(existing)+len(batch))
	out = append(out, existing...)
	return append(out, batch...)
}

// DuplicateNFDs returns, sorted, every non-empty NFD held by more than one
// schedule.
func DuplicateNFDs(items []models.ReturnSchedule) []string {
	counts := make(map[string]int, len(items))
	for _, s := range items {
		if s.NFD != "" {
			counts[s.NFD]++
		}
	}
	var dups []string
	for nfd, n := range counts {
		if n > 1 {
			dups = append(dups, nfd)
		}
	}
	sort.Strings(dups)
	return dups
}

// SplitNFDs splits a manual entry on commas, semicolons and line breaks,
// dropping blanks and repeats.
func SplitNFDs(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
