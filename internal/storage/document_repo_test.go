package storage

import (
	"context"
	"errors"
	"testing"
)

func TestDocumentRepo_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepo(newTestDB(t))

	doc := &DocumentRecord{Path: "docs/a.md", Format: "md", Hash: "h1", ChunkCount: 2}
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatal("Upsert() did not assign an ID")
	}

	updated := &DocumentRecord{Path: "docs/a.md", Format: "md", Hash: "h2", IndexVersion: "v2", ChunkCount: 5}
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	if updated.ID != doc.ID {
		t.Errorf("Upsert() changed ID from %s to %s", doc.ID, updated.ID)
	}

	got, err := repo.GetByPath(ctx, "docs/a.md")
	if err != nil {
		t.Fatalf("GetByPath() error = %v", err)
	}
	if got.Hash != "h2" || got.IndexVersion != "v2" || got.ChunkCount != 5 || got.Format != "md" {
		t.Errorf("GetByPath() = %+v, want hash h2, version v2 and 5 chunks", got)
	}
	if got.IndexedAt.IsZero() {
		t.Error("GetByPath() IndexedAt is zero")
	}
}

func TestDocumentRepo_Upsert_KeepsProvidedID(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))

	doc := &DocumentRecord{ID: "fixed-id", Path: "b.txt", Format: "txt", Hash: "h"}
	if err := repo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if doc.ID != "fixed-id" {
		t.Errorf("Upsert() ID = %s, want fixed-id", doc.ID)
	}
}

func TestDocumentRepo_GetByPath_NotFound(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))

	got, err := repo.GetByPath(context.Background(), "missing.md")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByPath() error = %v, want ErrNotFound", err)
	}
	if got != nil {
		t.Errorf("GetByPath() = %+v, want nil", got)
	}
}

func TestDocumentRepo_ListAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewDocumentRepo(db)

	for _, path := range []string{"z.md", "a.md", "m/n.md"} {
		if err := repo.Upsert(ctx, &DocumentRecord{Path: path, Format: "md", Hash: "h"}); err != nil {
			t.Fatalf("Upsert(%s) error = %v", path, err)
		}
	}

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	wantOrder := []string{"a.md", "m/n.md", "z.md"}
	if len(docs) != len(wantOrder) {
		t.Fatalf("List() returned %d documents, want %d", len(docs), len(wantOrder))
	}
	for i, want := range wantOrder {
		if docs[i].Path != want {
			t.Errorf("List()[%d].Path = %s, want %s", i, docs[i].Path, want)
		}
	}

	chunks := NewChunkRepo(db)
	rec := &ChunkRecord{ID: "c1", DocumentID: docs[0].ID, SourceFile: "a.md", Content: "x"}
	if err := chunks.ReplaceByDocument(ctx, docs[0].ID, []*ChunkRecord{rec}); err != nil {
		t.Fatalf("ReplaceByDocument() error = %v", err)
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	docs, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("List() after DeleteAll() = %d documents", len(docs))
	}
	if ids, _ := chunks.ListIDs(ctx); len(ids) != 0 {
		t.Errorf("chunks survived DeleteAll(): %v", ids)
	}
}
