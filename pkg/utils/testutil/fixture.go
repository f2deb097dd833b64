package testutil

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/m-mizutani/gt"
)

// BuildZip creates an in-memory ZIP archive. Keys ending in "/" become
// directory entries.
func BuildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	for _, name := range names {
		writer, err := zipWriter.Create(name)
		gt.NoError(t, err)

		if content := entries[name]; content != "" {
			_, err = writer.Write([]byte(content))
			gt.NoError(t, err)
		}
	}

	gt.NoError(t, zipWriter.Close())
	return buf.Bytes()
}

// SegmentZip builds the archive of one election segment: a top-level
// directory holding one sub-collection directory per key of files.
func SegmentZip(t *testing.T, topDir string, files map[string]map[string]string) []byte {
	t.Helper()

	entries := map[string]string{topDir + "/": ""}
	for sub, contents := range files {
		entries[topDir+"/"+sub+"/"] = ""
		for name, content := range contents {
			entries[topDir+"/"+sub+"/"+name] = content
		}
	}
	return BuildZip(t, entries)
}

// WriteTree creates files below root. Keys are slash-separated relative
// paths; keys ending in "/" create empty directories.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			gt.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		gt.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// Tree returns every file and directory below root keyed by slash-separated
// relative path. Directories end in "/" and map to "", other non-regular
// entries map to "@" followed by their mode.
func Tree(t *testing.T, root string) map[string]string {
	t.Helper()

	tree := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			tree[rel+"/"] = ""
			return nil
		}

		if !d.Type().IsRegular() {
			tree[rel] = "@" + d.Type().String()
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[rel] = string(data)
		return nil
	})
	gt.NoError(t, err)

	return tree
}
