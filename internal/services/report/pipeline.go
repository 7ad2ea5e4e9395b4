// Package report orchestrates laudo generation: map snapshot, uploaded
// photos, document rendering and record registration.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/disintegration/imaging"

	"github.com/dcmanaus/laudosgo/internal/models"
	"github.com/dcmanaus/laudosgo/internal/services/docgen"
	"github.com/dcmanaus/laudosgo/internal/services/staticmap"
	"github.com/dcmanaus/laudosgo/internal/store"
)

const (
	// FirstPhotoSlot..LastPhotoSlot are the uploaded photo slots; slot 1 is
	// reserved for the map snapshot.
	FirstPhotoSlot = 2
	LastPhotoSlot  = 7

	mapCaption    = "Localização Geográfica"
	maxPhotoWidth = 1600
	registroFmt   = "02/01/2006 15:04:05"
)

// ImageSlot carries one optional uploaded photo with its caption. A nil or
// empty Data means the slot was left blank.
type ImageSlot struct {
	Filename  string
	Data      []byte
	Descricao string
}

// Pipeline generates the document artifact for a submission and registers
// the resulting atendimento.
type Pipeline struct {
	store     store.Store
	uploadDir string

	// renderMap is swappable in tests; defaults to staticmap.Render.
	renderMap func(lat, lon string) ([]byte, error)
	now       func() time.Time
}

// NewPipeline wires the pipeline to its store and artifact directory.
func NewPipeline(st store.Store, uploadDir string) (*Pipeline, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir %s: %w", uploadDir, err)
	}
	return &Pipeline{
		store:     st,
		uploadDir: uploadDir,
		renderMap: staticmap.Render,
		now:       time.Now,
	}, nil
}

// Process runs the full pipeline for one submission and returns the report
// id. Every failure is logged here and reported as a plain error for the
// web layer to turn into a 500; nothing is partially committed after a
// render failure.
func (p *Pipeline) Process(tipo string, contexto map[string]string, slots []ImageSlot) (string, error) {
	laudo, err := docgen.New(tipo)
	if err != nil {
		log.Printf("❌ Failed to process laudo (%s): %v", tipo, err)
		return "", err
	}

	numeroLaudo := strings.TrimSpace(contexto["numero_laudo"])
	if numeroLaudo == "" {
		numeroLaudo = p.now().Format("20060102150405")
		contexto["numero_laudo"] = numeroLaudo
	}
	contexto["ano"] = strconv.Itoa(p.now().Year())

	p.bindMapSnapshot(laudo, contexto, numeroLaudo)
	p.bindPhotos(laudo, contexto, tipo, numeroLaudo, slots)

	laudo.Render(contexto)
	output, err := laudo.Output(numeroLaudo)
	if err != nil {
		log.Printf("❌ Failed to render laudo (%s): %v", tipo, err)
		return "", err
	}

	arquivo := fmt.Sprintf("%s_%s.pdf", title(tipo), numeroLaudo)
	if err := os.WriteFile(filepath.Join(p.uploadDir, arquivo), output, 0o644); err != nil {
		log.Printf("❌ Failed to save laudo %s: %v", arquivo, err)
		return "", err
	}
	log.Printf("✅ Laudo generated: %s", arquivo)

	p.store.Append(p.buildRecord(title(tipo), numeroLaudo, contexto, arquivo))
	return numeroLaudo, nil
}

// BuildRecord constructs an atendimento for the manual-entry path, which
// registers a record directly without generating a document.
func (p *Pipeline) BuildRecord(origem, numeroLaudo string, contexto map[string]string) models.Atendimento {
	numeroLaudo = strings.TrimSpace(numeroLaudo)
	if numeroLaudo == "" {
		numeroLaudo = p.now().Format("20060102150405")
	}
	return p.buildRecord(origem, numeroLaudo, contexto, "")
}

// Append registers an already-built record.
func (p *Pipeline) Append(a models.Atendimento) {
	p.store.Append(a)
}

func (p *Pipeline) buildRecord(origem, numeroLaudo string, contexto map[string]string, arquivo string) models.Atendimento {
	raw, err := json.Marshal(contexto)
	if err != nil {
		raw = nil
	}
	return models.Atendimento{
		Origem:       origem,
		NumeroLaudo:  numeroLaudo,
		Bairro:       contexto["bairro"],
		Latitude:     contexto["latitude"],
		Longitude:    contexto["longitude"],
		DataVistoria: contexto["data_vistoria"],
		GrauRisco:    contexto["grau_risco"],
		Arquivo:      arquivo,
		DataRegistro: p.now().Format(registroFmt),
		Contexto:     raw,
	}
}

// bindMapSnapshot fills slot 1. With both coordinates present the snapshot
// is rendered and embedded; otherwise, or on any failure, the image and its
// caption are bound as empty placeholders.
func (p *Pipeline) bindMapSnapshot(laudo *docgen.Laudo, contexto map[string]string, numeroLaudo string) {
	contexto["imagem1"] = ""
	contexto["descricao1"] = ""

	lat, lon := contexto["latitude"], contexto["longitude"]
	if lat == "" || lon == "" {
		return
	}

	img, err := p.renderMap(lat, lon)
	if err != nil {
		log.Printf("❌ Failed to generate map snapshot: %v", err)
		return
	}

	path := filepath.Join(p.uploadDir, fmt.Sprintf("mapa_%s.png", numeroLaudo))
	if err := os.WriteFile(path, img, 0o644); err != nil {
		log.Printf("❌ Failed to save map snapshot: %v", err)
		return
	}
	if err := laudo.AddImage(1, path, mapCaption); err != nil {
		log.Printf("❌ Failed to embed map snapshot: %v", err)
		return
	}
	contexto["imagem1"] = path
	contexto["descricao1"] = mapCaption
}

// bindPhotos fills slots 2..7. Every slot binds both placeholders even when
// blank; the templates expect every named slot.
func (p *Pipeline) bindPhotos(laudo *docgen.Laudo, contexto map[string]string, tipo, numeroLaudo string, slots []ImageSlot) {
	for i := FirstPhotoSlot; i <= LastPhotoSlot; i++ {
		imgKey := "imagem" + strconv.Itoa(i)
		descKey := "descricao" + strconv.Itoa(i)
		contexto[imgKey] = ""
		contexto[descKey] = ""

		idx := i - FirstPhotoSlot
		if idx >= len(slots) {
			continue
		}
		slot := slots[idx]
		contexto[descKey] = slot.Descricao
		if len(slot.Data) == 0 {
			continue
		}

		path := filepath.Join(p.uploadDir, fmt.Sprintf("%s_img%d_%s.jpg", tipo, i, numeroLaudo))
		if err := p.savePhoto(slot.Data, path); err != nil {
			log.Printf("❌ Failed to save photo %d (%s): %v", i, slot.Filename, err)
			continue
		}
		if err := laudo.AddImage(i, path, slot.Descricao); err != nil {
			log.Printf("❌ Failed to embed photo %d: %v", i, err)
			continue
		}
		contexto[imgKey] = path
	}
}

// savePhoto normalizes an upload to JPEG at the deterministic slot path,
// downscaling very large photos to keep artifacts small.
func (p *Pipeline) savePhoto(data []byte, path string) error {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decoding upload: %w", err)
	}
	if img.Bounds().Dx() > maxPhotoWidth {
		img = imaging.Resize(img, maxPhotoWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(90)); err != nil {
		return fmt.Errorf("saving photo: %w", err)
	}
	return nil
}

// title uppercases the first rune: "chuvas" -> "Chuvas".
func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
