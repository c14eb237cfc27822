package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"docbase/internal/embedding"
	emocks "docbase/internal/embedding/mocks"
	"docbase/internal/handlers"
	"docbase/internal/pipeline"
	pmocks "docbase/internal/pipeline/mocks"
	"docbase/internal/search"
	"docbase/internal/service"
	"docbase/internal/storage"
	"docbase/internal/upload"
	"docbase/internal/vectorstore"
)

type routerEnv struct {
	router  http.Handler
	factory *emocks.MockFactory
	queue   *pmocks.MockEnqueuer
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	dir := t.TempDir()

	metaDB, err := storage.New(filepath.Join(dir, "meta.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { _ = metaDB.Close() })
	if err := storage.Migrate(metaDB); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	vecDB, err := vectorstore.Open(filepath.Join(dir, "vectors.db"))
	if err != nil {
		t.Fatalf("vectorstore.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = vecDB.Close() })

	registry := vectorstore.NewRegistry(vecDB, 16)
	docs := vectorstore.NewDocumentRepo(vecDB, registry)
	collections := storage.NewCollectionRepo(metaDB)
	files := storage.NewFileRepo(metaDB)

	uploads, err := upload.NewStore(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("upload.NewStore() error = %v", err)
	}

	factory := emocks.NewMockFactory(ctrl)
	queue := pmocks.NewMockEnqueuer(ctrl)

	deps := &Deps{
		Collections:      service.NewCollectionService(collections, files, docs, registry, uploads),
		Files:            service.NewFileService(collections, files, docs, uploads, queue),
		SearchEngine:     search.NewEngine(collections, docs, factory),
		EmbeddingFactory: factory,
		MetaDB:           metaDB,
		VectorDB:         vecDB,
	}

	return &routerEnv{
		router:  NewRouter(deps),
		factory: factory,
		queue:   queue,
	}
}

func (e *routerEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *routerEnv) createCollection(t *testing.T) handlers.CollectionResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/collections", handlers.CollectionRequest{
		Name:              "release notes",
		EmbeddingProvider: "google",
		EmbeddingModel:    "models/text-embedding-004",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create collection status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp handlers.CollectionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode collection response: %v", err)
	}
	return resp
}

func (e *routerEnv) uploadFile(t *testing.T, collectionID, filename, content string) handlers.FileResponse {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/collections/"+collectionID+"/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp handlers.FileResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode file response: %v", err)
	}
	return resp
}

func TestRouter_CollectionLifecycle(t *testing.T) {
	env := newRouterEnv(t)

	created := env.createCollection(t)
	if created.ID == "" {
		t.Fatal("created collection has empty id")
	}
	if created.EmbeddingDimensions != 768 {
		t.Errorf("dimensions = %d, want 768 from catalog", created.EmbeddingDimensions)
	}

	w := env.do(t, http.MethodGet, "/api/collections", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var listed handlers.PagedResponse
	if err := json.NewDecoder(w.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if listed.Total != 1 {
		t.Errorf("list total = %d, want 1", listed.Total)
	}

	w = env.do(t, http.MethodPut, "/api/collections/"+created.ID, handlers.CollectionRequest{
		Name:              "renamed notes",
		EmbeddingProvider: "google",
		EmbeddingModel:    "models/text-embedding-004",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/collections/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got handlers.CollectionResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if got.Name != "renamed notes" {
		t.Errorf("name = %q, want %q", got.Name, "renamed notes")
	}

	if w = env.do(t, http.MethodDelete, "/api/collections/"+created.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w = env.do(t, http.MethodGet, "/api/collections/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestRouter_CollectionValidation(t *testing.T) {
	env := newRouterEnv(t)

	w := env.do(t, http.MethodPost, "/api/collections", handlers.CollectionRequest{
		Name:              "",
		EmbeddingProvider: "google",
		EmbeddingModel:    "models/text-embedding-004",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty name status = %d, want 400", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/collections", handlers.CollectionRequest{
		Name:              "notes",
		EmbeddingProvider: "google",
		EmbeddingModel:    "models/unknown",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown model status = %d, want 422", w.Code)
	}
}

func TestRouter_FileLifecycle(t *testing.T) {
	env := newRouterEnv(t)
	collection := env.createCollection(t)

	env.queue.EXPECT().Enqueue(pipeline.JobExtractFile, gomock.Any()).Return(nil)
	file := env.uploadFile(t, collection.ID, "notes.md", "# Release\n\nShipped search.")
	if file.Status != "uploaded" {
		t.Errorf("status = %q, want uploaded", file.Status)
	}

	w := env.do(t, http.MethodGet, "/api/files/"+file.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get file status = %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/collections/"+collection.ID+"/files", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list files status = %d", w.Code)
	}
	var listed handlers.PagedResponse
	if err := json.NewDecoder(w.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if listed.Total != 1 {
		t.Errorf("list total = %d, want 1", listed.Total)
	}

	// A freshly uploaded file is not retryable.
	w = env.do(t, http.MethodPost, "/api/files/"+file.ID+"/retry", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("retry status = %d, want 409", w.Code)
	}

	if w = env.do(t, http.MethodDelete, "/api/files/"+file.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete file status = %d, body = %s", w.Code, w.Body.String())
	}
	if w = env.do(t, http.MethodGet, "/api/files/"+file.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestRouter_UploadToMissingCollection(t *testing.T) {
	env := newRouterEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "notes.txt")
	fmt.Fprint(part, "content")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/collections/no-such-collection/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("upload status = %d, want 404", w.Code)
	}
}

func TestRouter_Search(t *testing.T) {
	env := newRouterEnv(t)
	collection := env.createCollection(t)

	embedder := emocks.NewMockEmbedder(gomock.NewController(t))
	env.factory.EXPECT().New(gomock.Any()).Return(embedder, nil)
	embedder.EXPECT().EmbedQuery(gomock.Any(), "release highlights").Return(make([]float32, 768), nil)

	w := env.do(t, http.MethodPost, "/api/collections/"+collection.ID+"/search", handlers.SearchRequest{
		Query: "release highlights",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp handlers.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode search response: %v", err)
	}
	if resp.Results == nil {
		t.Error("results should decode to an empty slice, not null")
	}
	if len(resp.Results) != 0 {
		t.Errorf("results = %d, want 0 for empty collection", len(resp.Results))
	}
}

func TestRouter_SearchValidation(t *testing.T) {
	env := newRouterEnv(t)
	collection := env.createCollection(t)

	w := env.do(t, http.MethodPost, "/api/collections/"+collection.ID+"/search", handlers.SearchRequest{
		Query: "   ",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank query status = %d, want 400", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/collections/no-such-collection/search", handlers.SearchRequest{
		Query: "anything",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing collection status = %d, want 404", w.Code)
	}
}

func TestRouter_EmbeddingProviders(t *testing.T) {
	env := newRouterEnv(t)
	env.factory.EXPECT().Providers().Return(embedding.Catalog())

	w := env.do(t, http.MethodGet, "/api/embeddings/providers", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("providers status = %d", w.Code)
	}
	var resp struct {
		Providers []embedding.ProviderInfo `json:"providers"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode providers response: %v", err)
	}
	if len(resp.Providers) == 0 {
		t.Error("providers list is empty")
	}
}

func TestRouter_Healthz(t *testing.T) {
	env := newRouterEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", w.Code)
	}
	var resp handlers.HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.Checks["metadata_db"] != "ok" || resp.Checks["vector_db"] != "ok" {
		t.Errorf("checks = %v, want both ok", resp.Checks)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	env := newRouterEnv(t)

	w := env.do(t, http.MethodPatch, "/api/collections", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH /api/collections status = %d, want 405", w.Code)
	}
}

func TestRouter_CORSApplied(t *testing.T) {
	env := newRouterEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/collections", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
