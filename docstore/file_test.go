package docstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kiezwerk/kiez/catalog"
	"github.com/kiezwerk/kiez/docstore"
)

func sampleDocument() catalog.Document {
	return catalog.Document{
		Districts: []catalog.District{
			{
				DistrictID: "mitte",
				DistName:   "Mitte",
				Stores: []catalog.Store{
					{
						StoreID: "st-alex", StoreName: "Alexanderplatz Foods", Address: "Alexanderplatz 1",
						Products: []catalog.Product{{Item: "coffee", Price: 7.5}},
					},
				},
			},
		},
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	fs, err := docstore.NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	ctx := context.Background()

	if err := fs.Save(ctx, sampleDocument()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Districts) != 1 || got.Districts[0].DistrictID != "mitte" {
		t.Errorf("Districts = %+v", got.Districts)
	}
	if got.Districts[0].Stores[0].Products[0].Price != 7.5 {
		t.Errorf("price = %v", got.Districts[0].Stores[0].Products[0].Price)
	}
	if got.Revision == "" {
		t.Error("saved document carries no revision")
	}
}

func TestFileMissingIsEmptyCatalog(t *testing.T) {
	fs, err := docstore.NewFile(filepath.Join(t.TempDir(), "nope", "catalog.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	doc, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Districts) != 0 {
		t.Errorf("Districts = %+v, want empty", doc.Districts)
	}
}

func TestFileCorruptIsUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	fs, err := docstore.NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	_, err = fs.Load(context.Background())
	if !errors.Is(err, catalog.ErrStorageUnavailable) {
		t.Errorf("err = %v, want ErrStorageUnavailable", err)
	}
}

func TestFileRevisionChangesPerSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	fs, err := docstore.NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := fs.Save(ctx, sampleDocument()); err != nil {
		t.Fatal(err)
	}
	first, _ := fs.Load(ctx)
	if err := fs.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	second, _ := fs.Load(ctx)

	if first.Revision == "" || first.Revision == second.Revision {
		t.Errorf("revisions %q and %q, want distinct non-empty", first.Revision, second.Revision)
	}
}

func TestFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, err := docstore.NewFile(filepath.Join(dir, "catalog.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Save(context.Background(), sampleDocument()); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "catalog.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir contents = %v, want only catalog.json", names)
	}
}
