// Package archive enumerates class file entries in plain files, directory
// trees, jar and zip files, and jars nested inside zips.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jstruct.archive")

// Separator joins a container path and the name of an entry inside it.
const Separator = "!/"

// maxNesting bounds how deep archives inside archives are opened.
const maxNesting = 3

var ErrNotFound = errors.New("entry not found")

var errStop = errors.New("stop walking")

// Entry is one class file and the bytes it holds.
type Entry struct {
	// Path identifies the entry, with Separator between nested containers.
	Path string
	// Name is the entry name inside its innermost container, or the file
	// path for class files on disk.
	Name string
	Data []byte
}

// WalkFunc is called for every class entry. A non-nil err reports an entry
// or container that could not be read; e.Path names it and e.Data is nil.
// Returning an error stops the walk and Walk returns it.
type WalkFunc func(e Entry, err error) error

func IsClass(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".class")
}

func IsArchive(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jar", ".zip", ".war":
		return true
	}
	return false
}

// Walk calls fn for every class entry reachable from path.
func Walk(ctx context.Context, path string, fn WalkFunc) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	switch {
	case info.IsDir():
		return walkDir(ctx, path, fn)
	case IsArchive(path):
		return walkZipFile(ctx, path, fn)
	case IsClass(path):
		return walkFile(path, fn)
	default:
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// Find returns the entry whose Name or Path equals name.
func Find(ctx context.Context, path, name string) (Entry, error) {
	var found Entry
	err := Walk(ctx, path, func(e Entry, err error) error {
		if err != nil {
			log.Debugf("skipping %s: %v", e.Path, err)
			return nil
		}
		if e.Name == name || e.Path == name {
			found = e
			return errStop
		}
		return nil
	})
	switch {
	case errors.Is(err, errStop):
		return found, nil
	case err != nil:
		return Entry{}, err
	default:
		return Entry{}, fmt.Errorf("%s in %s: %w", name, path, ErrNotFound)
	}
}

func walkFile(path string, fn WalkFunc) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fn(Entry{Path: path, Name: path}, fmt.Errorf("read %s: %w", path, err))
	}
	return fn(Entry{Path: path, Name: path, Data: data}, nil)
}

func walkDir(ctx context.Context, root string, fn WalkFunc) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fn(Entry{Path: p, Name: p}, fmt.Errorf("walk %s: %w", p, err))
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case IsClass(p):
			return walkFile(p, fn)
		case IsArchive(p):
			return walkZipFile(ctx, p, fn)
		}
		return nil
	})
}

func walkZipFile(ctx context.Context, path string, fn WalkFunc) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fn(Entry{Path: path, Name: path}, fmt.Errorf("open zip %s: %w", path, err))
	}
	defer r.Close()

	log.Debugf("opened %s (%d entries)", path, len(r.File))
	return walkZip(ctx, &r.Reader, path, 0, fn)
}

func walkZip(ctx context.Context, r *zip.Reader, container string, depth int, fn WalkFunc) error {
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			continue
		}

		entryPath := container + Separator + f.Name
		switch {
		case IsClass(f.Name):
			data, err := readZipEntry(f)
			if err != nil {
				err = fn(Entry{Path: entryPath, Name: f.Name}, err)
			} else {
				err = fn(Entry{Path: entryPath, Name: f.Name, Data: data}, nil)
			}
			if err != nil {
				return err
			}

		case IsArchive(f.Name):
			if depth+1 >= maxNesting {
				log.Debugf("not descending into %s", entryPath)
				continue
			}
			if err := walkNested(ctx, f, entryPath, depth+1, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func walkNested(ctx context.Context, f *zip.File, entryPath string, depth int, fn WalkFunc) error {
	data, err := readZipEntry(f)
	if err != nil {
		return fn(Entry{Path: entryPath, Name: f.Name}, err)
	}
	nested, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fn(Entry{Path: entryPath, Name: f.Name}, fmt.Errorf("open jar %s as zip: %w", entryPath, err))
	}
	log.Debugf("opened %s (%d entries)", entryPath, len(nested.File))
	return walkZip(ctx, nested, entryPath, depth, fn)
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}
