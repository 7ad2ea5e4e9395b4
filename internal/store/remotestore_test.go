package store

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dcmanaus/laudosgo/internal/config"
	"github.com/dcmanaus/laudosgo/internal/models"
)

// fakeContentsAPI emulates the repository contents endpoint: GET returns the
// stored blob, PUT replaces it.
type fakeContentsAPI struct {
	mu       sync.Mutex
	content  []byte
	sha      string
	getCount int
	putCount int
}

func (f *fakeContentsAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			f.getCount++
			if f.content == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"content": base64.StdEncoding.EncodeToString(f.content),
				"sha":     f.sha,
			})
		case http.MethodPut:
			f.putCount++
			var body struct {
				Content string `json:"content"`
				SHA     string `json:"sha"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			raw, err := base64.StdEncoding.DecodeString(body.Content)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.content = raw
			f.sha = "sha-updated"
			json.NewEncoder(w).Encode(map[string]string{"sha": f.sha})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func newRemoteStore(t *testing.T, api *fakeContentsAPI, token string) (*RemoteStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	local, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create local cache: %v", err)
	}

	return NewRemoteStore(local, config.RemoteConfig{
		Token:   token,
		Repo:    "defesacivil/atendimentos",
		Branch:  "main",
		Path:    "data/atendimentos.json",
		APIBase: srv.URL,
	}), srv
}

func TestRemoteLazyPullPopulatesEmptyCache(t *testing.T) {
	seed, _ := json.Marshal([]models.Atendimento{sampleRecord("LR-100")})
	api := &fakeContentsAPI{content: seed, sha: "sha-1"}
	s, _ := newRemoteStore(t, api, "test-token")

	lista := s.LoadAll()
	if len(lista) != 1 || lista[0].NumeroLaudo != "LR-100" {
		t.Fatalf("Expected pulled record LR-100, got %+v", lista)
	}
	if api.getCount == 0 {
		t.Error("Expected a remote fetch on first read")
	}
}

func TestRemotePushOnMutation(t *testing.T) {
	api := &fakeContentsAPI{}
	s, _ := newRemoteStore(t, api, "test-token")

	s.Append(sampleRecord("LR-200"))

	if api.putCount != 1 {
		t.Fatalf("Expected 1 push after append, got %d", api.putCount)
	}
	var remote []models.Atendimento
	if err := json.Unmarshal(api.content, &remote); err != nil {
		t.Fatalf("Pushed content is not valid JSON: %v", err)
	}
	if len(remote) != 1 || remote[0].NumeroLaudo != "LR-200" {
		t.Errorf("Pushed collection mismatch: %+v", remote)
	}

	s.Remove("LR-200")
	if api.putCount != 2 {
		t.Errorf("Expected a push after remove, got %d", api.putCount)
	}
}

func TestRemoteWithoutTokenStaysLocal(t *testing.T) {
	api := &fakeContentsAPI{}
	s, _ := newRemoteStore(t, api, "")

	s.Append(sampleRecord("LR-300"))

	if api.getCount != 0 || api.putCount != 0 {
		t.Errorf("Tokenless store must not touch the remote: %d gets, %d puts", api.getCount, api.putCount)
	}
	if len(s.LoadAll()) != 1 {
		t.Error("Local operations must keep working without a token")
	}
}
