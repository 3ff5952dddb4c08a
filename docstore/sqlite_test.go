package docstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kiezwerk/kiez/docstore"
)

func newTestSQLite(t *testing.T) *docstore.SQLite {
	t.Helper()
	s, err := docstore.NewSQLite(filepath.Join(t.TempDir(), "kiez.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load fresh db: %v", err)
	}
	if len(doc.Districts) != 0 {
		t.Errorf("fresh db Districts = %+v", doc.Districts)
	}

	if err := s.Save(ctx, sampleDocument()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Districts) != 1 || got.Districts[0].Stores[0].StoreID != "st-alex" {
		t.Errorf("Districts = %+v", got.Districts)
	}
}

func TestSQLiteSaveReplacesSingleRow(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleDocument()); err != nil {
		t.Fatal(err)
	}
	first, _ := s.Load(ctx)

	next := first.Clone()
	next.Districts[0].DistName = "Berlin-Mitte"
	if err := s.Save(ctx, next); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Districts[0].DistName != "Berlin-Mitte" {
		t.Errorf("DistName = %q, want replacement to win", got.Districts[0].DistName)
	}
	if got.Revision == first.Revision {
		t.Error("revision unchanged across saves")
	}
}

func TestSQLiteReopenKeepsDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiez.db")
	ctx := context.Background()

	s, err := docstore.NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, sampleDocument()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := docstore.NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	got, err := s2.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Districts) != 1 {
		t.Errorf("Districts = %+v after reopen", got.Districts)
	}
}
