package session

import (
	"testing"

	"github.com/hyperjump/yomitori/internal/models"
)

func TestCreateGetDelete(t *testing.T) {
	store := NewStore()
	sess := store.Create("u1", "alice")
	if sess.Token == "" {
		t.Fatal("empty token")
	}
	got := store.Get(sess.Token)
	if got == nil || got.UserID != "u1" || got.Username != "alice" {
		t.Errorf("Get = %+v", got)
	}
	store.Delete(sess.Token)
	if store.Get(sess.Token) != nil {
		t.Error("session should be gone after Delete")
	}
}

func TestItemsLifecycle(t *testing.T) {
	store := NewStore()
	sess := store.Create("u1", "alice")

	store.AppendItems(sess.Token, []models.ExtractionItem{{SourceName: "a.png", Text: "one"}})
	store.AppendItems(sess.Token, []models.ExtractionItem{{SourceName: "b.png", Text: "two"}})

	items := store.Items(sess.Token)
	if len(items) != 2 || items[0].SourceName != "a.png" || items[1].Text != "two" {
		t.Errorf("items = %+v", items)
	}

	if !store.UpdateItemText(sess.Token, 1, "edited") {
		t.Fatal("UpdateItemText failed")
	}
	if store.Items(sess.Token)[1].Text != "edited" {
		t.Error("edit not applied")
	}
	if store.UpdateItemText(sess.Token, 5, "x") {
		t.Error("out-of-range edit should fail")
	}

	store.ReplaceItems(sess.Token, []models.ExtractionItem{{SourceName: "c.png", Text: "three"}})
	if got := store.Items(sess.Token); len(got) != 1 || got[0].SourceName != "c.png" {
		t.Errorf("replace failed: %+v", got)
	}

	store.Clear(sess.Token)
	if len(store.Items(sess.Token)) != 0 {
		t.Error("Clear should drop items")
	}
	if store.Get(sess.Token) == nil {
		t.Error("Clear must keep the session alive")
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	store := NewStore()
	sess := store.Create("u1", "alice")
	store.AppendItems(sess.Token, []models.ExtractionItem{{SourceName: "a.png", Text: "one"}})

	items := store.Items(sess.Token)
	items[0].Text = "mutated"
	if store.Items(sess.Token)[0].Text != "one" {
		t.Error("Items must return a copy")
	}
}
