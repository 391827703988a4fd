package replup

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

const (
	fakeWorkspaceID   = "0a1b2c3d-4e5f-6a7b-8c9d-0e1f2a3b4c5d"
	fakeWorkspacePath = "/repls/AbCd"
	fakeSessionCookie = "replup-session"
	fakeToken         = "stream-token"
)

// fakePlatform serves the platform HTTP API and evaluation stream from a single test server.
type fakePlatform struct {
	srv *httptest.Server
	// evalFrames are sent in order when the eval command is received.
	evalFrames []string

	mu       sync.Mutex
	files    map[string]string
	commands []string
}

func newFakePlatform(t *testing.T, evalFrames ...string) *fakePlatform {
	t.Helper()

	p := &fakePlatform{
		evalFrames: evalFrames,
		files:      map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /languages/nodejs", p.handleBootstrap)
	mux.HandleFunc("GET "+fakeWorkspacePath, p.handleWorkspace)
	mux.HandleFunc("GET /data/repls/signed_urls/{id}/{path...}", p.handleSignedURLs)
	mux.HandleFunc("PUT /write/{path...}", p.handleWrite)
	mux.HandleFunc("POST /data/repls/{id}/gen_repl_token", p.handleToken)
	mux.HandleFunc("/ws", p.handleStream)

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)

	return p
}

func (p *fakePlatform) apiURL() string { return p.srv.URL }
func (p *fakePlatform) streamURL() string { return "ws" + strings.TrimPrefix(p.srv.URL, "http") + "/ws" }
func (p *fakePlatform) workspaceURL() string { return p.srv.URL + fakeWorkspacePath }

func (p *fakePlatform) uploadedFiles() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	files := make(map[string]string, len(p.files))
	for k, v := range p.files {
		files[k] = v
	}
	return files
}

func (p *fakePlatform) uploadedPaths() []string {
	files := p.uploadedFiles()
	paths := make([]string, 0, len(files))
	for k := range files {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}

func (p *fakePlatform) streamCommands() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.commands)
}

func (p *fakePlatform) hasSession(r *http.Request) bool {
	_, err := r.Cookie(fakeSessionCookie)
	return err == nil
}

func (p *fakePlatform) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: fakeSessionCookie, Value: "s1", Path: "/"})
	http.Redirect(w, r, fakeWorkspacePath, http.StatusFound)
}

func (p *fakePlatform) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, `<script>window.__DATA__={"repl":{"id":"%s","language":"nodejs"}}</script>`, fakeWorkspaceID)
}

func (p *fakePlatform) handleSignedURLs(w http.ResponseWriter, r *http.Request) {
	if !p.hasSession(r) || r.PathValue("id") != fakeWorkspaceID {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	resp := map[string]any{
		"urls_by_action": map[string]string{
			"write": p.srv.URL + "/write/" + r.PathValue("path"),
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (p *fakePlatform) handleWrite(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	p.files[r.PathValue("path")] = string(b)
	p.mu.Unlock()
}

func (p *fakePlatform) handleToken(w http.ResponseWriter, r *http.Request) {
	if !p.hasSession(r) || r.PathValue("id") != fakeWorkspaceID {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	_ = json.NewEncoder(w).Encode(fakeToken)
}

func (p *fakePlatform) handleStream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer c.Close()

	send := func(frame string) {
		_ = c.WriteMessage(websocket.TextMessage, []byte(frame))
	}

	for {
		_, frame, err := c.ReadMessage()
		if err != nil {
			return
		}

		var msg struct {
			Command string `json:"command"`
			Data    string `json:"data"`
		}
		if err := json.Unmarshal(frame, &msg); err != nil {
			return
		}

		p.mu.Lock()
		p.commands = append(p.commands, msg.Command)
		p.mu.Unlock()

		switch msg.Command {
		case "auth":
			if msg.Data != fakeToken {
				return
			}
			send(`{"command":"ready"}`)
		case "stop", "reset":
			send(`{"command":"ready"}`)
		case "eval":
			for _, f := range p.evalFrames {
				send(f)
			}
		}
	}
}

// expand replaces the `{{workspace}}` placeholder with the workspace URL of the platform.
func (p *fakePlatform) expand(s string) string {
	return strings.ReplaceAll(s, "{{workspace}}", p.workspaceURL())
}
