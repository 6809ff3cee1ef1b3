package extract

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

// mockModel returns canned responses keyed by image content.
type mockModel struct {
	responses map[string]string
	err       error
	failAfter int // fail when this many calls have succeeded; -1 disables
	calls     int
}

func newMockModel(responses map[string]string) *mockModel {
	return &mockModel{responses: responses, failAfter: -1}
}

func (m *mockModel) Generate(_ context.Context, _ string, image []byte, _ string) (string, error) {
	if m.failAfter >= 0 && m.calls >= m.failAfter {
		return "", m.err
	}
	m.calls++
	return m.responses[string(image)], nil
}

func (m *mockModel) Name() string { return "mock" }

func TestExtractAll_AccumulatesInOrder(t *testing.T) {
	model := newMockModel(map[string]string{
		"img-a": "Hello",
		"img-b": "<b>World</b>",
	})
	e := NewExtractor(model, zap.NewNop())
	items, skips, err := e.ExtractAll(context.Background(), []File{
		{Name: "a.png", Data: []byte("img-a"), MIMEType: "image/png"},
		{Name: "b.png", Data: []byte("img-b"), MIMEType: "image/png"},
	}, "extract")
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if len(skips) != 0 {
		t.Errorf("unexpected skips: %v", skips)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].SourceName != "a.png" || items[0].Text != "Hello" {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[1].Text != "**World**" {
		t.Errorf("normalization not applied: %q", items[1].Text)
	}
}

func TestExtractAll_EmptyResponseIsSoftSkip(t *testing.T) {
	model := newMockModel(map[string]string{
		"img-a": "text",
		"img-b": "   \n ",
	})
	e := NewExtractor(model, zap.NewNop())
	items, skips, err := e.ExtractAll(context.Background(), []File{
		{Name: "a.png", Data: []byte("img-a")},
		{Name: "b.png", Data: []byte("img-b")},
	}, "extract")
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
	if len(skips) != 1 || skips[0].Name != "b.png" {
		t.Errorf("expected b.png skipped, got %v", skips)
	}
}

func TestExtractAll_BatchFatalRetainsPartialResults(t *testing.T) {
	model := newMockModel(map[string]string{"img-a": "first"})
	model.failAfter = 1
	model.err = errors.New("quota exceeded")
	e := NewExtractor(model, zap.NewNop())
	items, _, err := e.ExtractAll(context.Background(), []File{
		{Name: "a.png", Data: []byte("img-a")},
		{Name: "b.png", Data: []byte("img-b")},
		{Name: "c.png", Data: []byte("img-c")},
	}, "extract")
	if err == nil {
		t.Fatal("expected batch-fatal error")
	}
	if len(items) != 1 || items[0].Text != "first" {
		t.Errorf("partial results should be retained, got %v", items)
	}
}

func TestExtractOne(t *testing.T) {
	model := newMockModel(map[string]string{"img": "<i>note</i>"})
	e := NewExtractor(model, zap.NewNop())
	item, err := e.ExtractOne(context.Background(), File{Name: "x.jpg", Data: []byte("img"), MIMEType: "image/jpeg"}, "p")
	if err != nil {
		t.Fatalf("ExtractOne: %v", err)
	}
	if item == nil || item.Text != "*note*" {
		t.Errorf("item = %+v", item)
	}
}

func TestExtractOne_NoText(t *testing.T) {
	e := NewExtractor(newMockModel(nil), zap.NewNop())
	item, err := e.ExtractOne(context.Background(), File{Name: "x.png", Data: []byte("img")}, "p")
	if err != nil {
		t.Fatalf("ExtractOne: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil item for empty response, got %+v", item)
	}
}

func TestIsPDF(t *testing.T) {
	if !isPDF(File{Name: "scan.PDF"}) {
		t.Error("extension match should be case-insensitive")
	}
	if !isPDF(File{Name: "x", MIMEType: "application/pdf"}) {
		t.Error("mime match")
	}
	if isPDF(File{Name: "scan.png", MIMEType: "image/png"}) {
		t.Error("png is not a pdf")
	}
}
