package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"docbase/internal/pipeline"
	pmocks "docbase/internal/pipeline/mocks"
	"docbase/internal/scheduler"
	"docbase/internal/service"
	"docbase/internal/storage"
	"docbase/internal/upload"
	"docbase/internal/vectorstore"
)

type testEnv struct {
	collections *storage.CollectionRepo
	files       *storage.FileRepo
	docs        *vectorstore.DocumentRepo
	registry    *vectorstore.Registry
	uploads     *upload.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
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
	uploads, err := upload.NewStore(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("upload.NewStore() error = %v", err)
	}

	return &testEnv{
		collections: storage.NewCollectionRepo(metaDB),
		files:       storage.NewFileRepo(metaDB),
		docs:        vectorstore.NewDocumentRepo(vecDB, registry),
		registry:    registry,
		uploads:     uploads,
	}
}

func (e *testEnv) collectionService() *service.CollectionService {
	return service.NewCollectionService(e.collections, e.files, e.docs, e.registry, e.uploads)
}

func validInput() service.CollectionInput {
	return service.CollectionInput{
		Name:              "release notes",
		Description:       "engineering release notes",
		EmbeddingProvider: "google",
		EmbeddingModel:    "models/text-embedding-004",
	}
}

func TestCollectionService_Create(t *testing.T) {
	env := newTestEnv(t)
	svc := env.collectionService()
	ctx := context.Background()

	record, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if record.EmbeddingDimensions != 768 {
		t.Errorf("dimensions = %d, want 768 from catalog", record.EmbeddingDimensions)
	}

	// The vector table must exist with the catalog dimensionality.
	table := vectorstore.TableNameFor(record.ID)
	handle, err := env.registry.Resolve(ctx, table)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if handle.Dimension != 768 {
		t.Errorf("table dimension = %d, want 768", handle.Dimension)
	}
}

func TestCollectionService_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.collectionService()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*service.CollectionInput)
	}{
		{"empty name", func(in *service.CollectionInput) { in.Name = "  " }},
		{"empty provider", func(in *service.CollectionInput) { in.EmbeddingProvider = "" }},
		{"empty model", func(in *service.CollectionInput) { in.EmbeddingModel = "" }},
		{"negative dimensions", func(in *service.CollectionInput) { in.EmbeddingDimensions = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			if _, err := svc.Create(ctx, in); !errors.Is(err, service.ErrInvalidInput) {
				t.Errorf("Create() error = %v, want ErrInvalidInput", err)
			}
		})
	}

	t.Run("unknown model", func(t *testing.T) {
		in := validInput()
		in.EmbeddingModel = "models/unknown"
		if _, err := svc.Create(ctx, in); !errors.Is(err, service.ErrConfiguration) {
			t.Errorf("Create() error = %v, want ErrConfiguration", err)
		}
	})
}

func TestCollectionService_Create_DuplicateName(t *testing.T) {
	env := newTestEnv(t)
	svc := env.collectionService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInput()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, validInput()); !errors.Is(err, service.ErrConflict) {
		t.Errorf("second Create() error = %v, want ErrConflict", err)
	}
}

func TestCollectionService_Update_EmbeddingImmutableWithDocuments(t *testing.T) {
	env := newTestEnv(t)
	svc := env.collectionService()
	ctx := context.Background()

	record, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Name changes are fine at any time.
	in := validInput()
	in.Name = "renamed"
	if _, err := svc.Update(ctx, record.ID, in); err != nil {
		t.Fatalf("Update() name change error = %v", err)
	}

	// Stage a document, then try to switch the model.
	table := vectorstore.TableNameFor(record.ID)
	err = env.docs.InsertPending(ctx, table, []*vectorstore.Document{{Text: "x", FileID: "f1"}})
	if err != nil {
		t.Fatalf("InsertPending() error = %v", err)
	}

	in.EmbeddingProvider = "openai"
	in.EmbeddingModel = "text-embedding-3-small"
	if _, err := svc.Update(ctx, record.ID, in); !errors.Is(err, service.ErrConfiguration) {
		t.Errorf("Update() error = %v, want ErrConfiguration", err)
	}
}

func TestCollectionService_Update_RebuildsEmptyTable(t *testing.T) {
	env := newTestEnv(t)
	svc := env.collectionService()
	ctx := context.Background()

	record, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	in := validInput()
	in.Name = "renamed"
	in.EmbeddingProvider = "openai"
	in.EmbeddingModel = "text-embedding-3-small"
	updated, err := svc.Update(ctx, record.ID, in)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.EmbeddingDimensions != 1536 {
		t.Errorf("dimensions = %d, want 1536", updated.EmbeddingDimensions)
	}

	handle, err := env.registry.Resolve(ctx, vectorstore.TableNameFor(record.ID))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if handle.Dimension != 1536 {
		t.Errorf("rebuilt table dimension = %d, want 1536", handle.Dimension)
	}
}

func TestCollectionService_Delete(t *testing.T) {
	env := newTestEnv(t)
	svc := env.collectionService()
	ctx := context.Background()

	record, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	path, _, err := env.uploads.Save("a.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	err = env.files.Insert(ctx, &storage.FileRecord{
		ID: "f1", Filename: "a.txt", Path: path, ContentType: "text/plain",
		CollectionID: record.ID, Status: storage.FileStatusUploaded,
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	paths, err := svc.Delete(ctx, record.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(paths) != 1 || paths[0] != path {
		t.Errorf("Delete() paths = %v, want [%s]", paths, path)
	}

	if _, err := svc.Get(ctx, record.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := env.registry.Resolve(ctx, vectorstore.TableNameFor(record.ID)); !errors.Is(err, vectorstore.ErrTableNotFound) {
		t.Errorf("Resolve() after delete error = %v, want ErrTableNotFound", err)
	}
	if _, err := env.files.GetByID(ctx, "f1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("file record should be gone, got %v", err)
	}

	if _, err := svc.Delete(ctx, record.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestFileService_Upload(t *testing.T) {
	env := newTestEnv(t)
	ctrl := gomock.NewController(t)
	queue := pmocks.NewMockEnqueuer(ctrl)
	ctx := context.Background()

	record, err := env.collectionService().Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	svc := service.NewFileService(env.collections, env.files, env.docs, env.uploads, queue)

	var queuedFileID string
	queue.EXPECT().Enqueue(pipeline.JobExtractFile, gomock.Any()).
		DoAndReturn(func(_ string, args scheduler.Args) error {
			queuedFileID = args["file_id"]
			return nil
		})

	file, err := svc.Upload(ctx, record.ID, "notes.txt", "text/plain", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if file.Status != storage.FileStatusUploaded {
		t.Errorf("status = %s, want uploaded", file.Status)
	}
	if queuedFileID != file.ID {
		t.Errorf("queued file id = %s, want %s", queuedFileID, file.ID)
	}

	stored, err := env.files.GetByID(ctx, file.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Size != int64(len("content")) {
		t.Errorf("size = %d", stored.Size)
	}
}

func TestFileService_Upload_CollectionMissing(t *testing.T) {
	env := newTestEnv(t)
	ctrl := gomock.NewController(t)
	svc := service.NewFileService(env.collections, env.files, env.docs, env.uploads, pmocks.NewMockEnqueuer(ctrl))

	_, err := svc.Upload(context.Background(), "missing", "a.txt", "text/plain", strings.NewReader("x"))
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Upload() error = %v, want ErrNotFound", err)
	}
}

func TestFileService_Upload_EnqueueFails(t *testing.T) {
	env := newTestEnv(t)
	ctrl := gomock.NewController(t)
	queue := pmocks.NewMockEnqueuer(ctrl)
	ctx := context.Background()

	record, err := env.collectionService().Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	svc := service.NewFileService(env.collections, env.files, env.docs, env.uploads, queue)

	queue.EXPECT().Enqueue(pipeline.JobExtractFile, gomock.Any()).
		Return(errors.New("job queue is full"))

	if _, err := svc.Upload(ctx, record.ID, "notes.txt", "text/plain", strings.NewReader("content")); err == nil {
		t.Fatal("Upload() should surface the enqueue failure")
	}

	// The record must land in a retryable status, not stay stranded at
	// uploaded with no job behind it.
	files, _, err := env.files.ListByCollection(ctx, record.ID, storage.FileFilter{}, storage.Page{})
	if err != nil {
		t.Fatalf("ListByCollection() error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %d, want 1", len(files))
	}
	if files[0].Status != storage.FileStatusChunkFailed {
		t.Errorf("status = %s, want chunk_failed", files[0].Status)
	}

	queue.EXPECT().Enqueue(pipeline.JobExtractFile, gomock.Any()).Return(nil)
	retried, err := svc.Retry(ctx, files[0].ID)
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if retried.Status != storage.FileStatusUploaded {
		t.Errorf("retried status = %s, want uploaded", retried.Status)
	}
}

func TestFileService_Retry(t *testing.T) {
	tests := []struct {
		name    string
		status  storage.FileStatus
		wantJob string
		wantErr bool
	}{
		{"chunk_failed restarts extraction", storage.FileStatusChunkFailed, pipeline.JobExtractFile, false},
		{"failed re-dispatches embedding", storage.FileStatusFailed, pipeline.JobEmbedDocuments, false},
		{"partial re-dispatches embedding", storage.FileStatusPartialFailed, pipeline.JobEmbedDocuments, false},
		{"uploaded not retryable", storage.FileStatusUploaded, "", true},
		{"success not retryable", storage.FileStatusSuccess, "", true},
		{"embedding not retryable", storage.FileStatusEmbedding, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctrl := gomock.NewController(t)
			queue := pmocks.NewMockEnqueuer(ctrl)
			ctx := context.Background()

			record, err := env.collectionService().Create(ctx, validInput())
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			err = env.files.Insert(ctx, &storage.FileRecord{
				ID: "f1", Filename: "a.txt", Path: "/tmp/a.txt", ContentType: "text/plain",
				CollectionID: record.ID, Status: storage.FileStatusUploaded,
			})
			if err != nil {
				t.Fatalf("Insert() error = %v", err)
			}
			if err := env.files.UpdateStatus(ctx, "f1", tt.status); err != nil {
				t.Fatalf("UpdateStatus() error = %v", err)
			}

			if tt.wantJob != "" {
				queue.EXPECT().Enqueue(tt.wantJob, scheduler.Args{"file_id": "f1"}).Return(nil)
			}

			svc := service.NewFileService(env.collections, env.files, env.docs, env.uploads, queue)
			_, err = svc.Retry(ctx, "f1")
			if tt.wantErr {
				var nre *service.StatusNotRetryableError
				if !errors.As(err, &nre) {
					t.Errorf("Retry() error = %v, want StatusNotRetryableError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Retry() error = %v", err)
			}
		})
	}
}

func TestFileService_DeleteAll(t *testing.T) {
	env := newTestEnv(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	record, err := env.collectionService().Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, id := range []string{"f1", "f2", "f3"} {
		err := env.files.Insert(ctx, &storage.FileRecord{
			ID: id, Filename: id + ".txt", Path: "/tmp/" + id + ".txt", ContentType: "text/plain",
			CollectionID: record.ID, Status: storage.FileStatusSuccess,
		})
		if err != nil {
			t.Fatalf("Insert(%s) error = %v", id, err)
		}
	}

	svc := service.NewFileService(env.collections, env.files, env.docs, env.uploads, pmocks.NewMockEnqueuer(ctrl))
	results, err := svc.DeleteAll(ctx, record.ID)
	if err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("DeleteAll() returned %d results, want 3", len(results))
	}
	for _, res := range results {
		if !res.OK {
			t.Errorf("item %s failed: %s", res.ID, res.Error)
		}
	}

	remaining, _, err := env.files.ListByCollection(ctx, record.ID, storage.FileFilter{}, storage.Page{})
	if err != nil {
		t.Fatalf("ListByCollection() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("%d files remain after DeleteAll()", len(remaining))
	}
}

func TestSweeper_SweepOrphanTables(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	record, err := env.collectionService().Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// A table no collection row claims.
	if _, err := env.registry.CreateIfAbsent(ctx, "collection_orphaned", 4); err != nil {
		t.Fatalf("CreateIfAbsent() error = %v", err)
	}

	sweeper := service.NewSweeper(env.collections, env.registry)
	dropped, err := sweeper.SweepOrphanTables(ctx)
	if err != nil {
		t.Fatalf("SweepOrphanTables() error = %v", err)
	}
	if !slices.Contains(dropped, "collection_orphaned") {
		t.Errorf("dropped = %v, want collection_orphaned included", dropped)
	}

	// The live collection's table survives.
	if _, err := env.registry.Resolve(ctx, vectorstore.TableNameFor(record.ID)); err != nil {
		t.Errorf("live table should survive the sweep: %v", err)
	}
	if _, err := env.registry.Resolve(ctx, "collection_orphaned"); !errors.Is(err, vectorstore.ErrTableNotFound) {
		t.Errorf("orphan table should be gone, got %v", err)
	}
}
