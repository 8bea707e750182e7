package products

import (
	"strings"

	"logistica/infrastructure/apperr"
	"logistica/infrastructure/ingest"
	"logistica/models"
)

const (
	fieldSKU             ingest.Field = "sku"
	fieldItem            ingest.Field = "item"
	fieldDescription     ingest.Field = "description"
	fieldCategory        ingest.Field = "category"
	fieldNetWeight       ingest.Field = "netWeight"
	fieldGrossWeight     ingest.Field = "grossWeight"
	fieldVolume          ingest.Field = "volume"
	fieldHeight          ingest.Field = "height"
	fieldWidth           ingest.Field = "width"
	fieldLength          ingest.Field = "length"
	fieldPalletHeight    ingest.Field = "palletHeight"
	fieldPalletBase      ingest.Field = "palletBase"
	fieldBarcode         ingest.Field = "barcode"
	fieldPackaging       ingest.Field = "packaging"
	fieldMeasurementUnit ingest.Field = "measurementUnit"
	fieldQuantity        ingest.Field = "quantity"
	fieldClassification  ingest.Field = "classification"
)

// Mapping lists the accepted header aliases per product field. The first
// alias of each column is the one written by WriteCSV.
var Mapping = ingest.Mapping{
	{Field: fieldSKU, Label: "SKU", Aliases: []string{"SKU", "Cod Produto", "Código"}, Required: true},
	{Field: fieldItem, Aliases: []string{"Item"}},
	{Field: fieldDescription, Label: "Descrição", Aliases: []string{"Descrição", "Descricao", "Description"}, Required: true},
	{Field: fieldCategory, Aliases: []string{"Des Categoria", "Categoria", "Category"}},
	{Field: fieldNetWeight, Aliases: []string{"Peso Líquido", "Peso Liquido"}},
	{Field: fieldGrossWeight, Aliases: []string{"Peso Bruto"}},
	{Field: fieldVolume, Aliases: []string{"Volume", "Cubagem"}},
	{Field: fieldHeight, Aliases: []string{"Altura"}},
	{Field: fieldWidth, Aliases: []string{"Largura"}},
	{Field: fieldLength, Aliases: []string{"Comprimento"}},
	{Field: fieldPalletHeight, Aliases: []string{"Lastro Altura", "Paletização Altura"}},
	{Field: fieldPalletBase, Aliases: []string{"Lastro Base", "Paletização Base"}},
	{Field: fieldBarcode, Aliases: []string{"EAN", "Código de Barras", "Codigo de Barras"}},
	{Field: fieldPackaging, Aliases: []string{"Embalagem"}},
	{Field: fieldMeasurementUnit, Aliases: []string{"Unidade de Medida", "UM"}},
	{Field: fieldQuantity, Aliases: []string{"Quantidade", "Qtd"}},
	{Field: fieldClassification, Aliases: []string{"Classificação", "Classificacao", "Curva", "ABC"}},
}

// ValidUnit reports whether unit is a known warehouse unit.
func ValidUnit(unit string) bool {
	for _, u := range models.Units {
		if u == unit {
			return true
		}
	}
	return false
}

// NormalizeUnit upper-cases and trims a unit code.
func NormalizeUnit(unit string) string {
	return strings.ToUpper(strings.TrimSpace(unit))
}

// ParseProducts reads a product CSV for one unit. Rows without SKU or
// description are dropped; every record is stamped with unit.
func ParseProducts(data []byte, unit string) ([]models.Product, error) {
	unit = NormalizeUnit(unit)
	if !ValidUnit(unit) {
		return nil, apperr.Validation("unidade inválida: " + unit)
	}
	table, err := ingest.Parse(data, Mapping)
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, len(table.Rows))
	for _, row := range table.Rows {
		p := models.Product{
			SKU:         row.String(fieldSKU),
			Item:        row.String(fieldItem),
			Description: row.String(fieldDescription),
			Category:    row.String(fieldCategory),
			NetWeight:   row.Float(fieldNetWeight),
			GrossWeight: row.Float(fieldGrossWeight),
			Volume:      row.Float(fieldVolume),
			Dimensions:  ingest.Dimensions(row.Float(fieldHeight), row.Float(fieldWidth), row.Float(fieldLength)),
			Palletization: models.Palletization{
				Height: row.Int(fieldPalletHeight),
				Base:   row.Int(fieldPalletBase),
			},
			Barcode:         row.String(fieldBarcode),
			Packaging:       row.String(fieldPackaging),
			MeasurementUnit: row.String(fieldMeasurementUnit),
			Quantity:        row.Int(fieldQuantity),
			Classification:  row.String(fieldClassification),
			Unit:            unit,
		}
		if p.SKU == "" || p.Description == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ReconcileUnit replaces every existing record of unit with batch. Records of
// other units keep their order and values; SKUs missing from batch are gone.
func ReconcileUnit(existing, batch []models.Product, unit string) []models.Product {
	out := make([]models.Product, 0, len(existing)+len(batch))
	for _, p := range existing {
		if p.Unit != unit {
			out = append(out, p)
		}
	}
	return append(out, batch...)
}
