// Package docgen renders inspection report documents (laudos) as PDF.
package docgen

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Campo is one named slot in a report template: the form label shown to the
// user and the placeholder name carried in the field mapping.
type Campo struct {
	Label string
	Name  string
}

// CamposBase is the field set shared by every report type.
var CamposBase = []Campo{
	{"Nº do Laudo", "numero_laudo"},
	{"Solicitação (n° Processo, Ofício, OS, etc)", "n_processo"},
	{"Endereço (Rua, Quadra, Lote)", "endereco"},
	{"Bairro", "bairro"},
	{"Latitude", "latitude"},
	{"Longitude", "longitude"},
	{"Data da Vistoria", "data_vistoria"},
	{"Data do relatório", "data_relatorio"},
}

// CamposChuvas extends the base set with the affected resident's data.
var CamposChuvas = append([]Campo{
	{"Nome", "nome"},
	{"CPF", "cpf"},
	{"Telefone", "telefone"},
}, CamposBase...)

type modelo struct {
	Titulo string
	Campos []Campo
}

// One template per inspection type. Every template expects every named slot:
// missing values render as empty strings, never as dropped rows.
var modelos = map[string]modelo{
	"chuvas":        {"LAUDO DE VISTORIA - CHUVAS", CamposChuvas},
	"regularizacao": {"LAUDO DE VISTORIA - REGULARIZAÇÃO FUNDIÁRIA", CamposBase},
	"incendios":     {"LAUDO DE OCORRÊNCIA - INCÊNDIOS", CamposBase},
}

// FieldsFor returns the ordered field set of the given report type.
func FieldsFor(tipo string) ([]Campo, error) {
	m, ok := modelos[tipo]
	if !ok {
		return nil, fmt.Errorf("unknown report template %q", tipo)
	}
	return m.Campos, nil
}

const (
	pageWidth   = 210.0 // A4 portrait, mm
	marginSide  = 15.0
	imageWidth  = 100.0 // fixed display width for embedded images
	labelColumn = 70.0
	qrSize      = 22.0
)

type laudoImage struct {
	slot    int
	path    string
	caption string
}

// Laudo builds one report document. Image references registered through
// AddImage are bound to this instance's pdf object and are not portable
// across instances.
type Laudo struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	tipo   string
	modelo modelo
	images []laudoImage
}

// New creates a builder for the given report type. An unknown type means the
// template cannot be located and fails the current request.
func New(tipo string) (*Laudo, error) {
	m, ok := modelos[tipo]
	if !ok {
		return nil, fmt.Errorf("unknown report template %q", tipo)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginSide, 20, marginSide)
	pdf.SetAutoPageBreak(true, 20)

	return &Laudo{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		tipo:   tipo,
		modelo: m,
	}, nil
}

// AddImage saves a reference to an image file already written to a readable
// path and registers it with this document instance. slot 1 is the map
// snapshot, slots 2..7 the uploaded photos.
func (l *Laudo) AddImage(slot int, path, caption string) error {
	l.pdf.RegisterImageOptions(path, gofpdf.ImageOptions{ReadDpi: true})
	if err := l.pdf.Error(); err != nil {
		return fmt.Errorf("registering image %s: %w", path, err)
	}
	l.images = append(l.images, laudoImage{slot: slot, path: path, caption: caption})
	return nil
}

// Render lays out the document from the accumulated field mapping. Keys not
// named by the template (the free-form fire fields) are appended after the
// template rows in a stable order; image/caption placeholders and the year
// stamp are handled separately and skipped here.
func (l *Laudo) Render(contexto map[string]string) {
	pdf, tr := l.pdf, l.tr

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, tr("DEFESA CIVIL MUNICIPAL"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr(l.modelo.Titulo), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Exercício %s", contexto["ano"])), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	rendered := map[string]bool{"ano": true, "grau_risco": true}
	for i := 1; i <= 7; i++ {
		rendered["imagem"+strconv.Itoa(i)] = true
		rendered["descricao"+strconv.Itoa(i)] = true
	}

	for _, campo := range l.modelo.Campos {
		l.fieldRow(campo.Label, contexto[campo.Name])
		rendered[campo.Name] = true
	}
	l.fieldRow("Grau de Risco", contexto["grau_risco"])

	var extras []string
	for name := range contexto {
		if !rendered[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		l.fieldRow(name, contexto[name])
	}

	for _, img := range l.sortedImages() {
		l.imageSection(img)
	}
}

// Output finalizes the document with the verification QR code and returns
// the PDF bytes.
func (l *Laudo) Output(numeroLaudo string) ([]byte, error) {
	pdf, tr := l.pdf, l.tr

	qrPng, err := qrcode.Encode("laudo:"+numeroLaudo, qrcode.Low, 256)
	if err != nil {
		return nil, fmt.Errorf("encoding verification QR: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr_laudo", opts, bytes.NewReader(qrPng))
	pdf.ImageOptions("qr_laudo", pageWidth-marginSide-qrSize, 297-20-qrSize, qrSize, qrSize, false, opts, 0, "")

	pdf.SetY(-18)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Laudo Nº %s", numeroLaudo)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (l *Laudo) fieldRow(label, value string) {
	pdf, tr := l.pdf, l.tr
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(labelColumn, 7, tr(label), "1", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(pageWidth-2*marginSide-labelColumn, 7, tr(value), "1", 1, "L", false, 0, "")
}

func (l *Laudo) sortedImages() []laudoImage {
	imgs := append([]laudoImage(nil), l.images...)
	sort.Slice(imgs, func(i, j int) bool { return imgs[i].slot < imgs[j].slot })
	return imgs
}

func (l *Laudo) imageSection(img laudoImage) {
	pdf, tr := l.pdf, l.tr

	info := pdf.GetImageInfo(img.path)
	height := imageWidth * 0.75
	if info != nil && info.Width() > 0 {
		height = imageWidth * info.Height() / info.Width()
	}

	_, pageHeight := pdf.GetPageSize()
	if pdf.GetY()+height+14 > pageHeight-20 {
		pdf.AddPage()
	}

	x := (pageWidth - imageWidth) / 2
	pdf.Ln(4)
	pdf.ImageOptions(img.path, x, pdf.GetY(), imageWidth, 0, true, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, tr(img.caption), "", 1, "C", false, 0, "")
}
