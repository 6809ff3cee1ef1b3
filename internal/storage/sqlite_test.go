package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/yomitori/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(t.TempDir() + "/db.sqlite")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateUserAndAuthenticate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateUser(ctx, "alice", "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if id == "" {
		t.Fatal("empty user id")
	}

	u, err := store.Authenticate(ctx, "alice", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u == nil || u.ID != id || u.Username != "alice" {
		t.Errorf("user = %+v", u)
	}

	u, err = store.Authenticate(ctx, "alice", "wrong")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u != nil {
		t.Error("wrong password should return nil user")
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "bob", "bob@example.com", "pw"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := store.CreateUser(ctx, "bob", "other@example.com", "pw")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate username: got %v", err)
	}
	_, err = store.CreateUser(ctx, "robert", "bob@example.com", "pw")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate email: got %v", err)
	}
}

func TestSaveAndListDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner, _ := store.CreateUser(ctx, "carol", "carol@example.com", "pw")

	settings := models.ExtractionSettings{
		TargetLanguage:     "French",
		OCRMode:            "Document Scan",
		PreserveFormatting: true,
		SeparatePages:      true,
	}
	id, err := store.SaveDocument(ctx, owner, "Contract", []string{"Hello", "World"}, []string{"a.png", "b.png"}, settings)
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	docs, err := store.ListDocuments(ctx, owner)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	doc := docs[0]
	if doc.ID != id || doc.Name != "Contract" {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Settings != settings {
		t.Errorf("settings round-trip mismatch: %+v != %+v", doc.Settings, settings)
	}
	if len(doc.Texts) != 2 || doc.Texts[1] != "World" || doc.Names[0] != "a.png" {
		t.Errorf("texts/names round-trip mismatch: %+v", doc)
	}
}

func TestGetDocument_OwnerScoped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner, _ := store.CreateUser(ctx, "dave", "dave@example.com", "pw")
	other, _ := store.CreateUser(ctx, "eve", "eve@example.com", "pw")

	id, _ := store.SaveDocument(ctx, owner, "Doc", []string{"t"}, []string{"n"}, models.ExtractionSettings{})

	if _, err := store.GetDocument(ctx, owner, id); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
	if _, err := store.GetDocument(ctx, other, id); err == nil {
		t.Error("cross-owner read should fail")
	}
}

func TestDeleteDocument_OwnerMismatchIsSilentNoop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner, _ := store.CreateUser(ctx, "frank", "frank@example.com", "pw")
	other, _ := store.CreateUser(ctx, "grace", "grace@example.com", "pw")

	id, _ := store.SaveDocument(ctx, owner, "Doc", []string{"t"}, []string{"n"}, models.ExtractionSettings{})

	ok, err := store.DeleteDocument(ctx, other, id)
	if err != nil {
		t.Fatalf("DeleteDocument by non-owner errored: %v", err)
	}
	if ok {
		t.Error("non-owner delete should report false")
	}
	if docs, _ := store.ListDocuments(ctx, owner); len(docs) != 1 {
		t.Error("record should be intact after non-owner delete")
	}

	ok, err = store.DeleteDocument(ctx, owner, id)
	if err != nil || !ok {
		t.Errorf("owner delete: ok=%v err=%v", ok, err)
	}
	if docs, _ := store.ListDocuments(ctx, owner); len(docs) != 0 {
		t.Error("record should be gone after owner delete")
	}
}
