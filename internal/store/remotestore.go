package store

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dcmanaus/laudosgo/internal/config"
	"github.com/dcmanaus/laudosgo/internal/models"
)

// RemoteStore keeps the serialized collection mirrored in a remote
// repository file via the contents API. The remote copy is the source of
// truth: the local FileStore is a cache populated lazily from the remote on
// first read when empty, and every mutation pushes the updated collection.
// Push and pull are best-effort: failures are logged, never retried, and
// never surfaced to the caller.
type RemoteStore struct {
	local  *FileStore
	cfg    config.RemoteConfig
	client *http.Client

	mu     sync.Mutex
	pulled bool
}

// NewRemoteStore wraps a local file store with remote-repository sync.
func NewRemoteStore(local *FileStore, cfg config.RemoteConfig) *RemoteStore {
	if cfg.Token == "" {
		log.Printf("⚠️ Remote sync disabled: no GITHUB_TOKEN configured, operating local-only")
	}
	return &RemoteStore{
		local: local,
		cfg:   cfg,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// LoadAll returns every record, pulling the remote collection into the local
// cache first if the cache is empty.
func (s *RemoteStore) LoadAll() []models.Atendimento {
	s.ensurePulled()
	return s.local.LoadAll()
}

// Append adds the record locally and pushes the updated collection.
func (s *RemoteStore) Append(a models.Atendimento) {
	s.ensurePulled()
	s.local.Append(a)
	s.push()
}

// Remove deletes matching records locally and pushes the updated collection.
func (s *RemoteStore) Remove(numeroLaudo string) {
	s.ensurePulled()
	s.local.Remove(numeroLaudo)
	s.push()
}

// Close is a no-op for the remote backend.
func (s *RemoteStore) Close() error { return nil }

func (s *RemoteStore) enabled() bool {
	return s.cfg.Token != "" && s.cfg.Repo != ""
}

func (s *RemoteStore) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", s.cfg.APIBase, s.cfg.Repo, s.cfg.Path)
}

type contentsResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// ensurePulled populates the empty local cache from the remote copy once per
// process lifetime.
func (s *RemoteStore) ensurePulled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pulled || !s.enabled() {
		return
	}
	s.pulled = true

	if len(s.local.LoadAll()) > 0 {
		return
	}

	remote, _, err := s.fetch()
	if err != nil {
		log.Printf("⚠️ Remote pull failed, continuing with local cache: %v", err)
		return
	}
	if remote == nil {
		return // nothing on the remote yet
	}
	if err := os.WriteFile(s.local.path, remote, 0o644); err != nil {
		log.Printf("❌ Failed to write pulled collection: %v", err)
		return
	}
	log.Printf("✅ Pulled atendimentos collection from %s", s.cfg.Repo)
}

// fetch retrieves the remote collection bytes and their blob sha. A missing
// remote file returns (nil, "", nil).
func (s *RemoteStore) fetch() ([]byte, string, error) {
	req, err := http.NewRequest(http.MethodGet, s.contentsURL()+"?ref="+s.cfg.Branch, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("contents GET returned %d: %s", resp.StatusCode, body)
	}

	var cr contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, "", err
	}
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(cr.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("decoding remote content: %w", err)
	}
	return raw, cr.SHA, nil
}

// push uploads the current local collection, treating the remote as the
// source of truth for subsequent cold starts.
func (s *RemoteStore) push() {
	if !s.enabled() {
		return
	}

	data, err := os.ReadFile(s.local.path)
	if err != nil {
		log.Printf("❌ Remote push skipped, cannot read local collection: %v", err)
		return
	}

	// Current blob sha is required when updating an existing file.
	_, sha, err := s.fetch()
	if err != nil {
		log.Printf("⚠️ Remote push failed (sha lookup): %v", err)
		return
	}

	payload := map[string]string{
		"message": "sync atendimentos",
		"content": base64.StdEncoding.EncodeToString(data),
		"branch":  s.cfg.Branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("❌ Remote push failed (marshal): %v", err)
		return
	}

	req, err := http.NewRequest(http.MethodPut, s.contentsURL(), bytes.NewReader(body))
	if err != nil {
		log.Printf("❌ Remote push failed (request): %v", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("⚠️ Remote push failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("⚠️ Remote push returned %d: %s", resp.StatusCode, respBody)
		return
	}
	log.Printf("☁️ Pushed atendimentos collection to %s", s.cfg.Repo)
}
