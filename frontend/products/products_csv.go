package products

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"logistica/infrastructure/ingest"
	"logistica/models"
)

// csvColumns is the export layout: the primary alias of each mapped field,
// then the unit, which imports ignore.
var csvColumns = []ingest.Field{
	fieldSKU, fieldItem, fieldDescription, fieldCategory,
	fieldNetWeight, fieldGrossWeight, fieldVolume,
	fieldHeight, fieldWidth, fieldLength,
	fieldPalletHeight, fieldPalletBase,
	fieldBarcode, fieldPackaging, fieldMeasurementUnit, fieldQuantity, fieldClassification,
}

func primaryAlias(f ingest.Field) string {
	for _, c := range Mapping {
		if c.Field == f {
			return c.Aliases[0]
		}
	}
	return string(f)
}

// WriteCSV writes products in the importer's vocabulary: ";" delimiter and
// comma decimals, so the file can be uploaded back unchanged. The delimiter
// and quote characters are removed from text values since the importer does
// not honour quoting.
func WriteCSV(w io.Writer, products []models.Product) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	header := make([]string, 0, len(csvColumns)+1)
	for _, f := range csvColumns {
		header = append(header, primaryAlias(f))
	}
	header = append(header, "Unidade")
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, p := range products {
		h, wd, l := ingest.SplitDimensions(p.Dimensions)
		record := []string{
			sanitize(p.SKU),
			sanitize(p.Item),
			sanitize(p.Description),
			sanitize(p.Category),
			ingest.FormatDecimalComma(p.NetWeight),
			ingest.FormatDecimalComma(p.GrossWeight),
			ingest.FormatDecimalComma(p.Volume),
			ingest.FormatDecimalComma(h),
			ingest.FormatDecimalComma(wd),
			ingest.FormatDecimalComma(l),
			strconv.Itoa(p.Palletization.Height),
			strconv.Itoa(p.Palletization.Base),
			sanitize(p.Barcode),
			sanitize(p.Packaging),
			sanitize(p.MeasurementUnit),
			strconv.Itoa(p.Quantity),
			sanitize(p.Classification),
			p.Unit,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

var sanitizer = strings.NewReplacer(";", ",", `"`, "", "\r", " ", "\n", " ")

func sanitize(s string) string {
	return strings.TrimSpace(sanitizer.Replace(s))
}
