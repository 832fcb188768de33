package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/teamup-web/internal/api"
	"github.com/isdelr/teamup-web/internal/api/handlers"
	"github.com/isdelr/teamup-web/internal/auth"
	"github.com/isdelr/teamup-web/internal/services"
	"github.com/isdelr/teamup-web/internal/session"
	"github.com/isdelr/teamup-web/internal/websocket"
)

// tokens maps bearer tokens issued by the fake backend to their owners.
var tokens = map[string]map[string]any{
	"tok-1": {"user_id": 1, "username": "ana", "roles": []string{"Backend"}},
	"tok-2": {"user_id": 2, "username": "bob", "roles": []string{"Frontend"}},
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// backend mimics the collaboration REST API and records state-changing calls.
type backend struct {
	*httptest.Server

	mu    sync.Mutex
	calls []string
}

func (b *backend) record(call string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
}

func (b *backend) recorded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func fakeBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Username, Password string }
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
			return
		}
		token := "tok-1"
		if creds.Username == "bob" {
			token = "tok-2"
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
	})
	mux.HandleFunc("GET /api/profile", func(w http.ResponseWriter, r *http.Request) {
		user, ok := tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, user)
	})
	mux.HandleFunc("GET /api/projects/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "title": "Chess engine", "description": "d", "status": "open", "tags": "go,ai", "ownerId": 1},
			{"id": 2, "title": "Garden planner", "description": "d", "status": "open", "tags": []string{"react"}, "ownerId": 2},
		})
	})
	project := map[string]any{
		"id": 1, "title": "R&D <Go> tools", "description": "a < b & c", "status": "open",
		"tags": []string{"c++", "r&d"}, "ownerId": 1, "repo_link": "javascript:alert(1)",
	}
	mux.HandleFunc("GET /api/projects/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, project)
	})
	mux.HandleFunc("POST /api/projects/1/upvote/{user}", func(w http.ResponseWriter, r *http.Request) {
		b.record("upvote " + r.PathValue("user"))
		writeJSON(w, http.StatusOK, project)
	})
	mux.HandleFunc("DELETE /api/projects/1/vote/{user}", func(w http.ResponseWriter, r *http.Request) {
		b.record("removeVote " + r.PathValue("user"))
		writeJSON(w, http.StatusOK, project)
	})
	mux.HandleFunc("GET /api/projects/2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 2, "title": "Garden planner", "status": "open", "ownerId": 2,
			"members_roles": []string{"Backend"},
			"requests":      []map[string]any{{"id": 5, "user_id": 1, "role": "Backend", "status": "pending"}},
		})
	})
	mux.HandleFunc("POST /api/projects/2/", func(w http.ResponseWriter, r *http.Request) {
		b.record("request " + r.URL.Path)
		writeJSON(w, http.StatusCreated, map[string]any{"id": 6, "user_id": 1, "role": "Backend", "status": "pending"})
	})
	mux.HandleFunc("GET /api/users/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": "ana"})
	})
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

// browser is a cookie-aware client that echoes the CSRF token the app
// hands out, the way the single-page app does.
type browser struct {
	*http.Client
	csrf string
}

// newApp starts the web client against backendURL and returns a browser for
// it.
func newApp(t *testing.T, backendURL string) (*httptest.Server, *browser) {
	t.Helper()
	cookies, err := auth.NewCookieManager("router-test-secret", "teamup_session", time.Hour, false)
	if err != nil {
		t.Fatal(err)
	}
	csrfKey, err := auth.DeriveCSRFKey("router-test-secret")
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	stores := map[string]*session.MemoryStorage{}
	storage := func(sid string) session.Storage {
		mu.Lock()
		defer mu.Unlock()
		if stores[sid] == nil {
			stores[sid] = session.NewMemoryStorage()
		}
		return stores[sid]
	}

	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	backend := services.NewBackend(backendURL+"/api", 2*time.Second)
	router := api.NewRouter(api.Deps{
		Sessions:       handlers.NewSessionLoader(cookies, storage, backend, time.Hour, hub),
		Cookies:        cookies,
		Hub:            hub,
		DB:             okPinger{},
		AllowedOrigins: []string{"http://localhost:5173"},
		CSRFKey:        csrfKey,
	})
	app := httptest.NewServer(router)
	t.Cleanup(app.Close)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return app, &browser{Client: client}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// send issues the request as built. Unsafe methods carry the last CSRF
// token seen, fetching one first when the browser has none.
func (b *browser) send(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	if !safeMethod(req.Method) && req.Header.Get(handlers.CSRFHeader) == "" {
		if b.csrf == "" {
			root, _ := http.NewRequest(http.MethodGet, req.URL.Scheme+"://"+req.URL.Host+"/api/v1/", nil)
			b.send(t, root)
		}
		req.Header.Set(handlers.CSRFHeader, b.csrf)
	}
	resp, err := b.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if tok := resp.Header.Get(handlers.CSRFHeader); tok != "" {
		b.csrf = tok
	}
	var out map[string]any
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func do(t *testing.T, b *browser, method, url, body string, header map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return b.send(t, req)
}

func TestSessionFlow(t *testing.T) {
	app, client := newApp(t, fakeBackend(t).URL)
	base := app.URL + "/api/v1"

	resp, body := do(t, client, "GET", base+"/", "", nil)
	if resp.StatusCode != http.StatusOK || body["landing"] != true {
		t.Fatalf("anonymous root: %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, client, "POST", base+"/login", `{"username":"ana","password":"wrong"}`, nil)
	if resp.StatusCode != http.StatusUnauthorized || body["error"] != "Incorrect username or password" {
		t.Fatalf("bad login: %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, client, "POST", base+"/login", `{"username":"ana","password":"secret"}`, nil)
	if resp.StatusCode != http.StatusOK || body["greeting"] != "Welcome back, ana" {
		t.Fatalf("login: %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, client, "GET", base+"/", "", nil)
	if body["landing"] != false {
		t.Fatalf("signed-in root: %d %v", resp.StatusCode, body)
	}
	user, _ := body["user"].(map[string]any)
	if user["id"] != "1" {
		t.Errorf("user id = %v, want canonical \"1\"", user["id"])
	}

	resp, _ = do(t, client, "POST", base+"/logout", "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	_, body = do(t, client, "GET", base+"/", "", nil)
	if body["landing"] != true {
		t.Errorf("root after logout: %v", body)
	}
}

func TestAuthRequired(t *testing.T) {
	app, client := newApp(t, fakeBackend(t).URL)

	resp, body := do(t, client, "GET", app.URL+"/api/v1/profile", "", nil)
	if resp.StatusCode != http.StatusUnauthorized || body["redirect"] != "/login" {
		t.Errorf("json caller: %d %v", resp.StatusCode, body)
	}

	resp, _ = do(t, client, "GET", app.URL+"/api/v1/me/projects", "", map[string]string{"Accept": "text/html"})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Errorf("html caller: %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestProjectsSearch(t *testing.T) {
	app, client := newApp(t, fakeBackend(t).URL)

	resp, body := do(t, client, "GET", app.URL+"/api/v1/projects?q=CHESS", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	projects, _ := body["projects"].([]any)
	if len(projects) != 1 || body["total"] != float64(2) {
		t.Fatalf("body = %v", body)
	}
	tags := projects[0].(map[string]any)["tags"].([]any)
	if len(tags) != 2 || tags[0] != "go" {
		t.Errorf("tags = %v", tags)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	app, client := newApp(t, fakeBackend(t).URL)
	base := app.URL + "/api/v1"
	do(t, client, "POST", base+"/login", `{"username":"ana","password":"secret"}`, nil)

	resp, body := do(t, client, "DELETE", base+"/projects/1", "", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("delete without confirm: %d %v", resp.StatusCode, body)
	}
}

func TestBackendUnavailable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()

	app, client := newApp(t, url)
	resp, body := do(t, client, "GET", app.URL+"/api/v1/projects", "", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d %v", resp.StatusCode, body)
	}
}

func TestHealthz(t *testing.T) {
	app, client := newApp(t, fakeBackend(t).URL)
	resp, body := do(t, client, "GET", app.URL+"/healthz", "", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz: %d %v", resp.StatusCode, body)
	}
}

func TestSignInAsAnotherUser_DoesNotInheritVotes(t *testing.T) {
	be := fakeBackend(t)
	app, client := newApp(t, be.URL)
	base := app.URL + "/api/v1"

	do(t, client, "POST", base+"/login", `{"username":"ana","password":"secret"}`, nil)
	resp, body := do(t, client, "POST", base+"/projects/1/vote", `{"direction":"upvoted"}`, nil)
	if resp.StatusCode != http.StatusOK || body["vote"] != "upvoted" {
		t.Fatalf("ana upvote: %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, client, "POST", base+"/login", `{"username":"bob","password":"secret"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bob login: %d %v", resp.StatusCode, body)
	}
	_, body = do(t, client, "GET", base+"/projects/1", "", nil)
	if body["vote"] != "none" {
		t.Errorf("bob sees vote %v, want none", body["vote"])
	}

	do(t, client, "POST", base+"/projects/1/vote", `{"direction":"upvoted"}`, nil)
	want := []string{"upvote 1", "upvote 2"}
	if got := be.recorded(); !reflect.DeepEqual(got, want) {
		t.Errorf("backend vote calls = %v, want %v", got, want)
	}
}

func TestLogin_RotatesSessionCookie(t *testing.T) {
	app, client := newApp(t, fakeBackend(t).URL)
	base := app.URL + "/api/v1"

	do(t, client, "GET", base+"/", "", nil)
	before := sessionCookie(t, client, app.URL)
	do(t, client, "POST", base+"/login", `{"username":"ana","password":"secret"}`, nil)
	if after := sessionCookie(t, client, app.URL); after == before {
		t.Error("session cookie unchanged after sign-in")
	}
	_, body := do(t, client, "GET", base+"/", "", nil)
	if body["landing"] != false {
		t.Errorf("signed-in state lost across rotation: %v", body)
	}
}

func sessionCookie(t *testing.T, b *browser, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range b.Jar.Cookies(u) {
		if c.Name == "teamup_session" {
			return c.Value
		}
	}
	t.Fatal("no session cookie")
	return ""
}

func TestProjectDetail_TextSentAsEntered(t *testing.T) {
	app, client := newApp(t, fakeBackend(t).URL)

	resp, body := do(t, client, "GET", app.URL+"/api/v1/projects/1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d %v", resp.StatusCode, body)
	}
	project, _ := body["project"].(map[string]any)
	if project["title"] != "R&D <Go> tools" {
		t.Errorf("title = %q", project["title"])
	}
	if tags, _ := project["tags"].([]any); len(tags) != 2 || tags[0] != "c++" || tags[1] != "r&d" {
		t.Errorf("tags = %v", project["tags"])
	}
	if project["description"] != "a < b & c" {
		t.Errorf("description = %q", project["description"])
	}
	if project["descriptionHtml"] != "a &lt; b &amp; c" {
		t.Errorf("descriptionHtml = %q", project["descriptionHtml"])
	}
	if _, ok := project["repoLink"]; ok {
		t.Errorf("javascript: repo link was sent: %v", project["repoLink"])
	}
}

func TestCrossSitePost_Rejected(t *testing.T) {
	be := fakeBackend(t)
	app, client := newApp(t, be.URL)
	base := app.URL + "/api/v1"
	do(t, client, "POST", base+"/login", `{"username":"ana","password":"secret"}`, nil)

	// A form or fetch from another site: simple content type, no token.
	req, _ := http.NewRequest("POST", base+"/projects/1/vote", strings.NewReader(`{"direction":"upvoted"}`))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set(handlers.CSRFHeader, "forged")
	resp, _ := client.send(t, req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("forged token: %d, want 403", resp.StatusCode)
	}

	// Even with a valid token, an untrusted origin is refused.
	resp, _ = do(t, client, "POST", base+"/projects/1/vote", `{"direction":"upvoted"}`, map[string]string{"Origin": "https://evil.example"})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("untrusted origin: %d, want 403", resp.StatusCode)
	}

	if got := be.recorded(); len(got) != 0 {
		t.Errorf("backend received votes: %v", got)
	}

	resp, _ = do(t, client, "POST", base+"/projects/1/vote", `{"direction":"upvoted"}`, map[string]string{"Origin": "http://localhost:5173"})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("trusted origin: %d, want 200", resp.StatusCode)
	}
}

func TestNonJSONBody_Rejected(t *testing.T) {
	be := fakeBackend(t)
	app, client := newApp(t, be.URL)
	base := app.URL + "/api/v1"
	do(t, client, "POST", base+"/login", `{"username":"ana","password":"secret"}`, nil)

	resp, body := do(t, client, "POST", base+"/projects/1/vote", `{"direction":"upvoted"}`, map[string]string{"Content-Type": "text/plain"})
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("text/plain body: %d %v, want 415", resp.StatusCode, body)
	}
	if got := be.recorded(); len(got) != 0 {
		t.Errorf("backend received votes: %v", got)
	}

	resp, _ = do(t, client, "POST", base+"/projects/1/vote", `{"direction":"upvoted"}`, map[string]string{"Content-Type": "application/json; charset=utf-8"})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("json with charset: %d, want 200", resp.StatusCode)
	}
}

func TestRequestJoin_SecondRequestConflicts(t *testing.T) {
	be := fakeBackend(t)
	app, client := newApp(t, be.URL)
	base := app.URL + "/api/v1"
	do(t, client, "POST", base+"/login", `{"username":"ana","password":"secret"}`, nil)

	resp, body := do(t, client, "POST", base+"/projects/2/requests", `{"role":"Backend"}`, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("repeat request: %d %v, want 409", resp.StatusCode, body)
	}
	if got := be.recorded(); len(got) != 0 {
		t.Errorf("backend received %v", got)
	}
}
