package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter() chi.Router {
	router := chi.NewRouter()
	router.Route(Prefix, func(r chi.Router) {
		New(r, "test")
	})
	return router
}

func TestNewServesHelloUnderPrefix(t *testing.T) {
	router := newTestRouter()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/hello/world", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := strings.TrimSpace(resp.Body.String()); body != `{"message":"Hello World"}` {
		t.Fatalf("unexpected body %s", body)
	}
	if link := resp.Header().Get("Link"); link != "" {
		t.Fatalf("expected no schema Link header, got %q", link)
	}
}

func TestNewDocumentsServerPrefix(t *testing.T) {
	router := newTestRouter()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/openapi.json", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var doc struct {
		Info struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Paths map[string]map[string]struct {
			Tags      []string `json:"tags"`
			Responses map[string]struct {
				Description string                     `json:"description"`
				Content     map[string]json.RawMessage `json:"content"`
			} `json:"responses"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}

	if doc.Info.Title != Title || doc.Info.Version != "test" {
		t.Fatalf("unexpected info: %+v", doc.Info)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != Prefix {
		t.Fatalf("expected server URL %s, got %+v", Prefix, doc.Servers)
	}
	get, ok := doc.Paths["/hello/world"]["get"]
	if !ok {
		t.Fatalf("expected GET /hello/world, got %v", doc.Paths)
	}
	if got := get.Responses["404"].Description; got != "Not Found" {
		t.Fatalf("expected 404 description Not Found, got %q", got)
	}
	if _, ok := get.Responses["200"].Content["application/cbor"]; !ok {
		t.Fatal("expected CBOR content documented on the 200 response")
	}
}

func TestNewServesDocs(t *testing.T) {
	router := newTestRouter()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/docs", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
