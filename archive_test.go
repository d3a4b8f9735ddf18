package psarc_test

import (
	"testing"

	"github.com/psarc-go/psarc"
)

func TestAddFileAndFindFile(t *testing.T) {
	a := psarc.NewArchive()
	if err := a.AddFile(psarc.NewFile("dir/sub/leaf.txt", []byte("x"))); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	f := a.FindFile("dir/sub/leaf.txt")
	if f == nil {
		t.Fatal("FindFile returned nil for an inserted path")
	}
	if f.Path() != "dir/sub/leaf.txt" {
		t.Errorf("Path() = %q", f.Path())
	}

	if a.FindFile("dir/sub/missing.txt") != nil {
		t.Error("FindFile should return nil for a missing leaf")
	}
	if a.FindFile("nope/leaf.txt") != nil {
		t.Error("FindFile should return nil for a missing directory")
	}
}

func TestAddFileLeadingSlash(t *testing.T) {
	a := psarc.NewArchive()
	if err := a.AddFile(psarc.NewFile("/a/b.bin", []byte("x"))); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if a.FindFile("a/b.bin") == nil {
		t.Error("expected leading slash to be stripped during insertion")
	}
}

func TestManifestSlotIsSeparateFromTree(t *testing.T) {
	a := psarc.NewArchive()
	if err := a.AddFile(psarc.NewFile("PSArcManifest.bin", []byte("manifest"))); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if a.Manifest() == nil {
		t.Fatal("expected manifest slot to be populated")
	}
	if got := a.GetFileCount(); got != 1 {
		t.Errorf("GetFileCount() = %d, want 1 (manifest only, inclusive convention)", got)
	}
	if len(a.Root().Files()) != 0 {
		t.Error("manifest must not appear in the directory tree")
	}
}

func TestGetFileCountInclusiveOfManifest(t *testing.T) {
	a := psarc.NewArchive()
	a.SetManifest(psarc.NewFile("PSArcManifest.bin", nil))
	if err := a.AddFile(psarc.NewFile("a.bin", []byte("x"))); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if err := a.AddFile(psarc.NewFile("b.bin", []byte("y"))); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if got := a.GetFileCount(); got != 3 {
		t.Errorf("GetFileCount() = %d, want 3", got)
	}
}

func TestIterateOrderManifestFirstFilesBeforeSubdirs(t *testing.T) {
	a := psarc.NewArchive()
	a.SetManifest(psarc.NewFile("PSArcManifest.bin", nil))

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("AddFile: %v", err)
		}
	}
	must(a.AddFile(psarc.NewFile("root1.bin", []byte("1"))))
	must(a.AddFile(psarc.NewFile("dir/nested.bin", []byte("2"))))
	must(a.AddFile(psarc.NewFile("root2.bin", []byte("3"))))

	order := a.Iterate()
	if len(order) != 4 {
		t.Fatalf("Iterate() returned %d files, want 4", len(order))
	}
	want := []string{"PSArcManifest.bin", "root1.bin", "root2.bin", "dir/nested.bin"}
	for i, w := range want {
		if order[i].Path() != w {
			t.Errorf("Iterate()[%d] = %q, want %q", i, order[i].Path(), w)
		}
	}
}

func TestAddFileDuplicateLeafFails(t *testing.T) {
	a := psarc.NewArchive()
	if err := a.AddFile(psarc.NewFile("a.bin", []byte("1"))); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	err := a.AddFile(psarc.NewFile("a.bin", []byte("2")))
	if err == nil {
		t.Fatal("expected InsertError on duplicate leaf")
	}
	if psarc.StatusOf(err) != psarc.StatusInsertError {
		t.Errorf("StatusOf(err) = %v, want StatusInsertError", psarc.StatusOf(err))
	}
}
