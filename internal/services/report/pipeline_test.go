package report

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/dcmanaus/laudosgo/internal/models"
	"github.com/dcmanaus/laudosgo/internal/store"
)

func tinyImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0x7f
	}
	img.Set(4, 4, color.RGBA{R: 0xff, A: 0xff})
	return img
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, tinyImage()); err != nil {
		t.Fatalf("Failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

func tinyJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, tinyImage(), nil); err != nil {
		t.Fatalf("Failed to encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

type mapCall struct {
	lat, lon string
}

func newTestPipeline(t *testing.T) (*Pipeline, store.Store, *[]mapCall) {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	p, err := NewPipeline(st, t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}

	calls := &[]mapCall{}
	mapPNG := tinyPNG(t)
	p.renderMap = func(lat, lon string) ([]byte, error) {
		*calls = append(*calls, mapCall{lat, lon})
		return mapPNG, nil
	}
	return p, st, calls
}

func baseContext(numeroLaudo string) map[string]string {
	return map[string]string{
		"numero_laudo":   numeroLaudo,
		"n_processo":     "2026/0042",
		"endereco":       "Rua das Flores, Q10, L05",
		"bairro":         "Compensa",
		"latitude":       "",
		"longitude":      "",
		"data_vistoria":  "10/03/2026",
		"data_relatorio": "11/03/2026",
		"grau_risco":     "Alto",
	}
}

func emptySlots() []ImageSlot {
	return make([]ImageSlot, LastPhotoSlot-FirstPhotoSlot+1)
}

func TestNoCoordinatesSkipsMapGenerator(t *testing.T) {
	p, _, calls := newTestPipeline(t)

	contexto := baseContext("LR-001")
	if _, err := p.Process("regularizacao", contexto, emptySlots()); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(*calls) != 0 {
		t.Errorf("Map generator invoked %d times with empty coordinates", len(*calls))
	}
	if v, ok := contexto["imagem1"]; !ok || v != "" {
		t.Errorf("imagem1 must be bound empty, got %q (present=%v)", v, ok)
	}
	if v, ok := contexto["descricao1"]; !ok || v != "" {
		t.Errorf("descricao1 must be bound empty, got %q (present=%v)", v, ok)
	}
}

func TestEmptyPhotoSlotsAlwaysBound(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	contexto := baseContext("LR-002")
	if _, err := p.Process("regularizacao", contexto, emptySlots()); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	for i := FirstPhotoSlot; i <= LastPhotoSlot; i++ {
		for _, key := range []string{"imagem" + strconv.Itoa(i), "descricao" + strconv.Itoa(i)} {
			if v, ok := contexto[key]; !ok {
				t.Errorf("%s omitted from the field mapping", key)
			} else if v != "" {
				t.Errorf("%s should be empty, got %q", key, v)
			}
		}
	}
}

func TestRainEndToEnd(t *testing.T) {
	p, st, calls := newTestPipeline(t)

	contexto := baseContext("")
	contexto["latitude"] = "-3.1"
	contexto["longitude"] = "-60.0"
	contexto["nome"] = "Maria da Silva"
	contexto["cpf"] = "000.000.000-00"
	contexto["telefone"] = "(92) 99999-0000"

	id, err := p.Process("chuvas", contexto, emptySlots())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if !regexp.MustCompile(`^\d{14}$`).MatchString(id) {
		t.Errorf("Expected timestamp-style report id, got %q", id)
	}
	if len(*calls) != 1 || (*calls)[0].lat != "-3.1" || (*calls)[0].lon != "-60.0" {
		t.Errorf("Map generator calls mismatch: %+v", *calls)
	}

	arquivo := "Chuvas_" + id + ".pdf"
	data, err := os.ReadFile(filepath.Join(p.uploadDir, arquivo))
	if err != nil {
		t.Fatalf("Artifact %s not written: %v", arquivo, err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Artifact is not a PDF")
	}

	lista := st.LoadAll()
	if len(lista) != 1 {
		t.Fatalf("Expected exactly one record, got %d", len(lista))
	}
	got := lista[0]
	if got.Origem != models.OrigemChuvas {
		t.Errorf("origem = %q, want %q", got.Origem, models.OrigemChuvas)
	}
	if got.Latitude != "-3.1" || got.Longitude != "-60.0" {
		t.Errorf("coordinates = %q/%q", got.Latitude, got.Longitude)
	}
	if got.Arquivo != arquivo {
		t.Errorf("arquivo = %q, want %q", got.Arquivo, arquivo)
	}
}

func TestDuplicateReportIDKeepsSingleRecord(t *testing.T) {
	p, st, _ := newTestPipeline(t)

	for i := 0; i < 2; i++ {
		if _, err := p.Process("regularizacao", baseContext("LR-001"), emptySlots()); err != nil {
			t.Fatalf("Process %d failed: %v", i, err)
		}
	}

	lista := st.LoadAll()
	if len(lista) != 1 {
		t.Fatalf("Expected 1 record after duplicate submission, got %d", len(lista))
	}
	if lista[0].NumeroLaudo != "LR-001" {
		t.Errorf("Unexpected record id %q", lista[0].NumeroLaudo)
	}
}

func TestUploadedPhotoSavedDeterministically(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	slots := emptySlots()
	slots[0] = ImageSlot{
		Filename:  "IMG_0001.jpg",
		Data:      tinyJPEG(t),
		Descricao: "Muro com rachaduras",
	}

	contexto := baseContext("LR-010")
	if _, err := p.Process("regularizacao", contexto, slots); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	path := filepath.Join(p.uploadDir, "regularizacao_img2_LR-010.jpg")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Photo not saved at deterministic path: %v", err)
	}
	if contexto["imagem2"] != path {
		t.Errorf("imagem2 = %q, want %q", contexto["imagem2"], path)
	}
	if contexto["descricao2"] != "Muro com rachaduras" {
		t.Errorf("descricao2 = %q", contexto["descricao2"])
	}
}

func TestUnknownTemplateFailsRequest(t *testing.T) {
	p, st, _ := newTestPipeline(t)

	if _, err := p.Process("vendaval", baseContext("LR-001"), emptySlots()); err == nil {
		t.Fatal("Expected error for unknown report type")
	}
	if len(st.LoadAll()) != 0 {
		t.Error("No record may be appended when the template is missing")
	}
}

func TestManualRecordBuild(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	record := p.BuildRecord(models.OrigemManual, "", map[string]string{"bairro": "Centro"})
	if record.NumeroLaudo == "" {
		t.Error("Blank report id must be generated")
	}
	if record.Origem != models.OrigemManual {
		t.Errorf("origem = %q", record.Origem)
	}
	if record.Arquivo != "" {
		t.Error("Manual records carry no artifact")
	}
	if record.Bairro != "Centro" {
		t.Errorf("bairro = %q", record.Bairro)
	}
}
