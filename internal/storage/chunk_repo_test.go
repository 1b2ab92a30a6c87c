package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"athena-kb/internal/document"
)

func seedDocument(t *testing.T, repo *DocumentRepo, path string) *DocumentRecord {
	t.Helper()
	doc := &DocumentRecord{Path: path, Format: "md", Hash: "hash"}
	if err := repo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	return doc
}

func TestChunkRepo_ReplaceByDocument(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	doc := seedDocument(t, NewDocumentRepo(db), "guide.md")
	repo := NewChunkRepo(db)

	heading := "Intro > Setup"
	page := 3
	first := []*ChunkRecord{
		{ID: "c0", DocumentID: doc.ID, SourceFile: "guide.md", ChunkIndex: 0, Content: "zero", HeadingContext: &heading},
		{ID: "c1", DocumentID: doc.ID, SourceFile: "guide.md", ChunkIndex: 1, Content: "one", PageNumber: &page},
	}
	if err := repo.ReplaceByDocument(ctx, doc.ID, first); err != nil {
		t.Fatalf("ReplaceByDocument() error = %v", err)
	}

	got, err := repo.ListBySource(ctx, "guide.md")
	if err != nil {
		t.Fatalf("ListBySource() error = %v", err)
	}
	if !reflect.DeepEqual(got, first) {
		t.Errorf("ListBySource() = %+v, want %+v", got, first)
	}

	second := []*ChunkRecord{
		{ID: "c2", DocumentID: doc.ID, SourceFile: "guide.md", ChunkIndex: 0, Content: "replacement"},
	}
	if err := repo.ReplaceByDocument(ctx, doc.ID, second); err != nil {
		t.Fatalf("ReplaceByDocument() second call error = %v", err)
	}

	ids, err := repo.ListIDsByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"c2"}) {
		t.Errorf("ListIDsByDocument() = %v, want [c2]", ids)
	}
}

func TestChunkRepo_ReplaceByDocument_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	docs := NewDocumentRepo(db)
	a := seedDocument(t, docs, "a.md")
	b := seedDocument(t, docs, "b.md")
	repo := NewChunkRepo(db)

	original := []*ChunkRecord{{ID: "keep", DocumentID: a.ID, SourceFile: "a.md", Content: "keep me"}}
	if err := repo.ReplaceByDocument(ctx, a.ID, original); err != nil {
		t.Fatalf("ReplaceByDocument() error = %v", err)
	}

	bad := []*ChunkRecord{
		{ID: "new", DocumentID: a.ID, SourceFile: "a.md", Content: "new"},
		{ID: "stray", DocumentID: b.ID, SourceFile: "b.md", Content: "wrong owner"},
	}
	if err := repo.ReplaceByDocument(ctx, a.ID, bad); err == nil {
		t.Fatal("ReplaceByDocument() expected error for foreign chunk")
	}

	ids, err := repo.ListIDsByDocument(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"keep"}) {
		t.Errorf("ListIDsByDocument() after failed replace = %v, want [keep]", ids)
	}
}

func TestChunkRepo_ReplaceByDocument_UnknownDocument(t *testing.T) {
	repo := NewChunkRepo(newTestDB(t))

	chunks := []*ChunkRecord{{ID: "c", DocumentID: "ghost", SourceFile: "x.md", Content: "x"}}
	if err := repo.ReplaceByDocument(context.Background(), "ghost", chunks); err == nil {
		t.Error("ReplaceByDocument() expected foreign key error")
	}
}

func TestChunkRepo_GetByID(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	doc := seedDocument(t, NewDocumentRepo(db), "g.md")
	repo := NewChunkRepo(db)

	if err := repo.ReplaceByDocument(ctx, doc.ID, []*ChunkRecord{
		{ID: "c0", DocumentID: doc.ID, SourceFile: "g.md", Content: "text"},
	}); err != nil {
		t.Fatalf("ReplaceByDocument() error = %v", err)
	}

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "existing chunk", id: "c0"},
		{name: "missing chunk", id: "nope", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetByID() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if got.Content != "text" || got.HeadingContext != nil || got.PageNumber != nil {
				t.Errorf("GetByID() = %+v", got)
			}
		})
	}
}

func TestChunkRepo_ContentLengthsAndIDs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	doc := seedDocument(t, NewDocumentRepo(db), "len.md")
	repo := NewChunkRepo(db)

	if err := repo.ReplaceByDocument(ctx, doc.ID, []*ChunkRecord{
		{ID: "a", DocumentID: doc.ID, SourceFile: "len.md", ChunkIndex: 0, Content: "abc"},
		{ID: "b", DocumentID: doc.ID, SourceFile: "len.md", ChunkIndex: 1, Content: "日本"},
	}); err != nil {
		t.Fatalf("ReplaceByDocument() error = %v", err)
	}

	lengths, err := repo.ContentLengths(ctx)
	if err != nil {
		t.Fatalf("ContentLengths() error = %v", err)
	}
	total := 0
	for _, n := range lengths {
		total += n
	}
	if len(lengths) != 2 || total != 9 {
		t.Errorf("ContentLengths() = %v, want byte lengths 3 and 6", lengths)
	}

	ids, err := repo.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Errorf("ListIDs() = %v, want [a b]", ids)
	}
}

func TestChunkRecord_RoundTrip(t *testing.T) {
	heading := "A > B"
	c := document.Chunk{ID: "id", Content: "c", SourceFile: "f.md", ChunkIndex: 4, HeadingContext: &heading}

	rec := NewChunkRecord("doc", c)
	if rec.DocumentID != "doc" {
		t.Errorf("DocumentID = %s, want doc", rec.DocumentID)
	}
	if got := rec.Chunk(); !reflect.DeepEqual(got, c) {
		t.Errorf("Chunk() = %+v, want %+v", got, c)
	}
}
