package labels

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
)

// NFDLabelData is one received return note. Volumes pages are printed, one
// per volume.
type NFDLabelData struct {
	NFD         string
	Client      string
	Volumes     int
	State       string
	Destination string
	ReceivedAt  time.Time
}

// PositionLabelData identifies one Rua 08 position.
type PositionLabelData struct {
	Code     string
	Building int
	Level    int
}

func renderNFDLabelsPDF(labels []NFDLabelData, printedAt time.Time) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("nenhuma etiqueta para gerar")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Etiquetas NFD", false)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for li, label := range labels {
		nfd := strings.TrimSpace(label.NFD)
		if nfd == "" {
			return nil, fmt.Errorf("etiqueta sem NFD")
		}
		barcodePNG, err := renderCode128PNG(nfd, 1200, 260)
		if err != nil {
			return nil, err
		}
		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		imageName := "nfd-barcode-" + strconv.Itoa(li)
		pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))

		client := strings.TrimSpace(label.Client)
		if client == "" {
			client = "Cliente não informado"
		}
		destination := strings.TrimSpace(label.Destination)
		if destination == "" {
			destination = "-"
		}
		state := strings.TrimSpace(label.State)
		if state == "" {
			state = "-"
		}
		receivedText := "-"
		if !label.ReceivedAt.IsZero() {
			receivedText = label.ReceivedAt.Format("02/01/2006")
		}

		volumes := label.Volumes
		if volumes < 1 {
			volumes = 1
		}
		for v := 1; v <= volumes; v++ {
			pdf.AddPage()
			pageW, pageH := pdf.GetPageSize()
			margin := 12.0
			pdf.SetLineWidth(0.35)
			pdf.Rect(margin, margin, pageW-2*margin, pageH-2*margin, "")

			pdf.SetY(margin + 6)
			clientFont := fitFontSizeForWidth(pdf, "Helvetica", "B", 40, 18, tr(client), pageW-2*margin-8)
			pdf.SetFont("Helvetica", "B", clientFont)
			pdf.CellFormat(0, 18, tr(client), "", 1, "C", false, 0, "")

			pdf.SetFont("Helvetica", "B", 52)
			pdf.CellFormat(0, 24, "NFD "+tr(nfd), "", 1, "C", false, 0, "")

			pdf.SetFont("Helvetica", "B", 30)
			pdf.CellFormat(0, 14, fmt.Sprintf("VOLUME %d/%d", v, volumes), "", 1, "C", false, 0, "")

			pdf.SetFont("Helvetica", "", 15)
			pdf.CellFormat(0, 8, tr("Estado: "+state), "", 1, "C", false, 0, "")
			pdf.CellFormat(0, 8, tr("Destino: "+destination), "", 1, "C", false, 0, "")
			pdf.CellFormat(0, 8, tr("Recebido: "+receivedText+"   Impresso: "+printedAt.Format("02/01/2006")), "", 1, "C", false, 0, "")

			imgW := 220.0
			imgH := 46.0
			x := (pageW - imgW) / 2
			y := pageH - margin - imgH - 20
			pdf.ImageOptions(imageName, x, y, imgW, imgH, false, opt, 0, "")
			pdf.SetXY(margin, y+imgH+2)
			pdf.SetFont("Helvetica", "B", 20)
			pdf.CellFormat(pageW-2*margin, 10, tr(nfd), "", 0, "C", false, 0, "")
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func renderPositionLabelsPDF(labels []PositionLabelData) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("nenhuma etiqueta para gerar")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Etiquetas Rua 08", false)
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		barcodePNG, err := renderCode128PNG(label.Code, 1200, 220)
		if err != nil {
			return nil, err
		}

		pdf.AddPage()
		pageW, pageH := pdf.GetPageSize()
		margin := 12.0
		pdf.SetLineWidth(0.35)
		pdf.Rect(margin, margin, pageW-2*margin, pageH-2*margin, "")

		pdf.SetY(margin + 8)
		pdf.SetFont("Helvetica", "B", 28)
		pdf.CellFormat(0, 14, "RUA 08", "", 1, "C", false, 0, "")

		codeFont := fitFontSizeForWidth(pdf, "Helvetica", "B", 96, 40, label.Code, pageW-2*margin-10)
		pdf.SetFont("Helvetica", "B", codeFont)
		pdf.CellFormat(0, 40, label.Code, "", 1, "C", false, 0, "")

		pdf.SetFont("Helvetica", "B", 26)
		pdf.CellFormat(0, 14, fmt.Sprintf("PREDIO %02d   NIVEL %d", label.Building, label.Level), "", 1, "C", false, 0, "")

		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		imageName := "position-barcode-" + strconv.Itoa(i)
		pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
		imgW := 230.0
		imgH := 50.0
		pdf.ImageOptions(imageName, (pageW-imgW)/2, pageH-margin-imgH-8, imgW, imgH, false, opt, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func fitFontSizeForWidth(pdf *gofpdf.Fpdf, family, style string, base, min float64, text string, maxWidth float64) float64 {
	if maxWidth <= 0 {
		return min
	}
	size := base
	pdf.SetFont(family, style, size)
	for size > min && pdf.GetStringWidth(text) > maxWidth {
		size -= 0.5
		pdf.SetFont(family, style, size)
	}
	return size
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, toNRGBA(scaled)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
