package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

type zipFile struct {
	name string
	data []byte
}

func zipBytes(t *testing.T, files ...zipFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range files {
		fw, err := w.Create(f.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func collect(t *testing.T, path string) (entries []Entry, failures []string) {
	t.Helper()
	err := Walk(context.Background(), path, func(e Entry, err error) error {
		if err != nil {
			failures = append(failures, e.Path)
			return nil
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk(%s): %v", path, err)
	}
	return entries, failures
}

func paths(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func TestWalkSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Foo.class")
	writeFile(t, path, []byte{0xCA, 0xFE})

	entries, failures := collect(t, path)
	if len(failures) != 0 {
		t.Fatalf("failures = %v", failures)
	}
	if len(entries) != 1 || entries[0].Path != path || !bytes.Equal(entries[0].Data, []byte{0xCA, 0xFE}) {
		t.Errorf("entries = %+v", entries)
	}
}

func TestWalkJar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.jar")
	writeFile(t, path, zipBytes(t,
		zipFile{"META-INF/MANIFEST.MF", []byte("Manifest-Version: 1.0\n")},
		zipFile{"com/example/A.class", []byte{1}},
		zipFile{"com/example/B.class", []byte{2}},
	))

	entries, _ := collect(t, path)
	want := []string{path + "!/com/example/A.class", path + "!/com/example/B.class"}
	if got := paths(entries); !slices.Equal(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
	if entries[1].Name != "com/example/B.class" || entries[1].Data[0] != 2 {
		t.Errorf("entry = %+v", entries[1])
	}
}

func TestWalkNestedJar(t *testing.T) {
	inner := zipBytes(t, zipFile{"c/D.class", []byte{4}})
	path := filepath.Join(t.TempDir(), "dist.zip")
	writeFile(t, path, zipBytes(t,
		zipFile{"E.class", []byte{5}},
		zipFile{"lib/inner.jar", inner},
		zipFile{"lib/broken.jar", []byte("not a zip")},
	))

	entries, failures := collect(t, path)
	want := []string{path + "!/E.class", path + "!/lib/inner.jar!/c/D.class"}
	if got := paths(entries); !slices.Equal(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
	if !slices.Equal(failures, []string{path + "!/lib/broken.jar"}) {
		t.Errorf("failures = %v", failures)
	}
}

func TestWalkDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "A.class"), []byte{1})
	writeFile(t, filepath.Join(root, "a", "notes.txt"), []byte("skip"))
	writeFile(t, filepath.Join(root, "b", "lib.jar"), zipBytes(t, zipFile{"B.class", []byte{2}}))

	entries, _ := collect(t, root)
	want := []string{
		filepath.Join(root, "a", "A.class"),
		filepath.Join(root, "b", "lib.jar") + "!/B.class",
	}
	if got := paths(entries); !slices.Equal(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestWalkErrors(t *testing.T) {
	dir := t.TempDir()

	if err := Walk(context.Background(), filepath.Join(dir, "missing"), nil); err == nil {
		t.Error("Walk on a missing path succeeded")
	}

	txt := filepath.Join(dir, "readme.txt")
	writeFile(t, txt, []byte("x"))
	if err := Walk(context.Background(), txt, nil); err == nil {
		t.Error("Walk on an unsupported file succeeded")
	}

	jar := filepath.Join(dir, "app.jar")
	writeFile(t, jar, zipBytes(t, zipFile{"A.class", nil}, zipFile{"B.class", nil}))
	stop := errors.New("stop")
	calls := 0
	err := Walk(context.Background(), jar, func(Entry, error) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("Walk = %v after %d calls, want stop after 1", err, calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Walk(ctx, jar, func(Entry, error) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("Walk with cancelled context = %v", err)
	}
}

func TestFind(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "app.jar")
	writeFile(t, jar, zipBytes(t,
		zipFile{"com/example/A.class", []byte{1}},
		zipFile{"com/example/B.class", []byte{2}},
	))

	e, err := Find(context.Background(), jar, "com/example/B.class")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !bytes.Equal(e.Data, []byte{2}) {
		t.Errorf("Data = %v", e.Data)
	}

	if _, err := Find(context.Background(), jar, "com/example/C.class"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find missing entry error = %v, want ErrNotFound", err)
	}
}

func TestClassification(t *testing.T) {
	for _, name := range []string{"A.class", "a/B.CLASS"} {
		if !IsClass(name) {
			t.Errorf("IsClass(%q) = false", name)
		}
	}
	for _, name := range []string{"a.jar", "b.ZIP", "c.war"} {
		if !IsArchive(name) {
			t.Errorf("IsArchive(%q) = false", name)
		}
	}
	if IsClass("A.java") || IsArchive("A.class") {
		t.Error("misclassified source or class file")
	}
}
