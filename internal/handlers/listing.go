package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/dcmanaus/laudosgo/internal/models"
	"github.com/dcmanaus/laudosgo/internal/websocket"
)

type listingPage struct {
	Atendimentos     []models.Atendimento
	AtendimentosJSON string
}

// atendimentos renders the listing table plus a serialized copy of the
// records for the map overlay script.
func (r *Router) atendimentos(w http.ResponseWriter, req *http.Request) {
	lista := r.store.LoadAll()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(lista); err != nil {
		log.Printf("❌ Failed to serialize atendimentos: %v", err)
		http.Error(w, "Erro ao listar atendimentos.", http.StatusInternalServerError)
		return
	}

	r.render(w, "atendimentos.html", listingPage{
		Atendimentos:     lista,
		AtendimentosJSON: buf.String(),
	})
}

// excluirAtendimento removes a record by id. The generated artifact files
// are deliberately kept on disk.
func (r *Router) excluirAtendimento(w http.ResponseWriter, req *http.Request) {
	numeroLaudo := mux.Vars(req)["numero_laudo"]
	r.store.Remove(numeroLaudo)
	r.hub.Broadcast(websocket.Event{Type: "atendimento_removed", NumeroLaudo: numeroLaudo})
	http.Redirect(w, req, "/atendimentos", http.StatusFound)
}

// download streams a stored artifact as an attachment. All storage variants
// serve the local artifact directory.
func (r *Router) download(w http.ResponseWriter, req *http.Request) {
	nome := filepath.Base(mux.Vars(req)["arquivo"])
	caminho := filepath.Join(r.cfg.UploadDir, nome)

	if _, err := os.Stat(caminho); err != nil {
		http.Error(w, fmt.Sprintf("Arquivo %s não encontrado.", nome), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nome))
	http.ServeFile(w, req, caminho)
}

type manualRecordRequest struct {
	Origem       string `json:"origem"`
	NumeroLaudo  string `json:"numero_laudo"`
	Bairro       string `json:"bairro"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	DataVistoria string `json:"data_vistoria"`
	GrauRisco    string `json:"grau_risco"`
}

// inserirAtendimento registers a manual record directly, with no document
// artifact.
func (r *Router) inserirAtendimento(w http.ResponseWriter, req *http.Request) {
	var body manualRecordRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	origem := body.Origem
	if origem == "" {
		origem = models.OrigemManual
	}

	contexto := map[string]string{
		"bairro":        body.Bairro,
		"latitude":      body.Latitude,
		"longitude":     body.Longitude,
		"data_vistoria": body.DataVistoria,
		"grau_risco":    body.GrauRisco,
	}

	record := r.pipeline.BuildRecord(origem, body.NumeroLaudo, contexto)
	r.pipeline.Append(record)
	r.hub.Broadcast(websocket.Event{Type: "atendimento_added", NumeroLaudo: record.NumeroLaudo})

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":      true,
		"numero_laudo": record.NumeroLaudo,
	})
}
