package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/dcmanaus/laudosgo/internal/services/docgen"
	"github.com/dcmanaus/laudosgo/internal/services/report"
	"github.com/dcmanaus/laudosgo/internal/websocket"
)

const maxUploadBytes = 32 << 20

type formPage struct {
	Titulo string
	Action string
	Campos []docgen.Campo
	Slots  []int
}

func photoSlots() []int {
	var slots []int
	for i := report.FirstPhotoSlot; i <= report.LastPhotoSlot; i++ {
		slots = append(slots, i)
	}
	return slots
}

func (r *Router) chuvasForm(w http.ResponseWriter, req *http.Request) {
	r.render(w, "laudo_form.html", formPage{
		Titulo: "Laudo de Vistoria - Chuvas",
		Action: "/chuvas",
		Campos: docgen.CamposChuvas,
		Slots:  photoSlots(),
	})
}

func (r *Router) chuvasSubmit(w http.ResponseWriter, req *http.Request) {
	r.submitLaudo(w, req, "chuvas", docgen.CamposChuvas, "Erro ao gerar laudo de Chuvas.")
}

func (r *Router) regularizacaoForm(w http.ResponseWriter, req *http.Request) {
	r.render(w, "laudo_form.html", formPage{
		Titulo: "Laudo de Vistoria - Regularização Fundiária",
		Action: "/regularizacao",
		Campos: docgen.CamposBase,
		Slots:  photoSlots(),
	})
}

func (r *Router) regularizacaoSubmit(w http.ResponseWriter, req *http.Request) {
	r.submitLaudo(w, req, "regularizacao", docgen.CamposBase, "Erro ao gerar laudo de Regularização.")
}

func (r *Router) incendiosForm(w http.ResponseWriter, req *http.Request) {
	r.render(w, "incendios.html", formPage{
		Campos: docgen.CamposBase,
		Slots:  photoSlots(),
	})
}

// incendiosSubmit accepts the fire form loosely: every posted field goes
// into the context and the base keys are backfilled when absent.
func (r *Router) incendiosSubmit(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Erro ao gerar laudo de Incêndios.", http.StatusInternalServerError)
		return
	}

	contexto := make(map[string]string)
	for key, values := range req.MultipartForm.Value {
		if len(values) > 0 {
			contexto[key] = values[0]
		}
	}
	for _, campo := range docgen.CamposBase {
		if _, ok := contexto[campo.Name]; !ok {
			contexto[campo.Name] = ""
		}
	}
	if _, ok := contexto["grau_risco"]; !ok {
		contexto["grau_risco"] = ""
	}

	r.runPipeline(w, req, "incendios", contexto, "Erro ao gerar laudo de Incêndios.")
}

// submitLaudo handles the fixed-field report types (chuvas, regularizacao).
func (r *Router) submitLaudo(w http.ResponseWriter, req *http.Request, tipo string, campos []docgen.Campo, errMsg string) {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, errMsg, http.StatusInternalServerError)
		return
	}

	contexto := make(map[string]string, len(campos)+1)
	for _, campo := range campos {
		contexto[campo.Name] = req.FormValue(campo.Name)
	}
	contexto["grau_risco"] = req.FormValue("grau_risco")

	r.runPipeline(w, req, tipo, contexto, errMsg)
}

func (r *Router) runPipeline(w http.ResponseWriter, req *http.Request, tipo string, contexto map[string]string, errMsg string) {
	slots := collectSlots(req)

	numeroLaudo, err := r.pipeline.Process(tipo, contexto, slots)
	if err != nil {
		http.Error(w, errMsg, http.StatusInternalServerError)
		return
	}

	r.hub.Broadcast(websocket.Event{Type: "atendimento_added", NumeroLaudo: numeroLaudo})
	http.Redirect(w, req, "/atendimentos", http.StatusFound)
}

// collectSlots reads the optional photo uploads and captions for slots 2..7.
func collectSlots(req *http.Request) []report.ImageSlot {
	slots := make([]report.ImageSlot, 0, report.LastPhotoSlot-report.FirstPhotoSlot+1)
	for i := report.FirstPhotoSlot; i <= report.LastPhotoSlot; i++ {
		slot := report.ImageSlot{
			Descricao: req.FormValue("descricao" + strconv.Itoa(i)),
		}

		file, header, err := req.FormFile(fmt.Sprintf("imagem%d", i))
		if err == nil && header.Filename != "" {
			data, readErr := io.ReadAll(file)
			file.Close()
			if readErr != nil {
				log.Printf("❌ Failed to read upload %s: %v", header.Filename, readErr)
			} else {
				slot.Filename = header.Filename
				slot.Data = data
			}
		}

		slots = append(slots, slot)
	}
	return slots
}
