package docgen

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestNewUnknownTemplate(t *testing.T) {
	if _, err := New("vendaval"); err == nil {
		t.Fatal("Expected error for unknown template")
	}
}

func TestFieldsFor(t *testing.T) {
	campos, err := FieldsFor("chuvas")
	if err != nil {
		t.Fatalf("FieldsFor failed: %v", err)
	}
	if len(campos) != len(CamposChuvas) {
		t.Errorf("Expected %d fields, got %d", len(CamposChuvas), len(campos))
	}
	if campos[0].Name != "nome" {
		t.Errorf("First chuvas field should be nome, got %s", campos[0].Name)
	}

	if _, err := FieldsFor("vendaval"); err == nil {
		t.Error("Expected error for unknown type")
	}
}

func TestRenderProducesPDF(t *testing.T) {
	laudo, err := New("regularizacao")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Sparse context: missing slots must render as empty, not fail.
	contexto := map[string]string{
		"numero_laudo": "LR-001",
		"bairro":       "São José",
		"ano":          "2026",
	}
	laudo.Render(contexto)

	out, err := laudo.Output("LR-001")
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("Output is not a PDF document")
	}
}

func TestAddImageEmbeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foto.png")

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("Failed to write png: %v", err)
	}

	laudo, err := New("chuvas")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := laudo.AddImage(2, path, "Fachada do imóvel"); err != nil {
		t.Fatalf("AddImage failed: %v", err)
	}

	laudo.Render(map[string]string{"ano": "2026"})
	withImage, err := laudo.Output("LR-002")
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}

	plain, err := New("chuvas")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	plain.Render(map[string]string{"ano": "2026"})
	withoutImage, err := plain.Output("LR-002")
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}

	if len(withImage) <= len(withoutImage) {
		t.Error("Document with an embedded image should be larger than without")
	}
}

func TestAddImageMissingFile(t *testing.T) {
	laudo, err := New("incendios")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := laudo.AddImage(2, filepath.Join(t.TempDir(), "missing.png"), "x"); err == nil {
		t.Error("Expected error when the image path is unreadable")
	}
}
