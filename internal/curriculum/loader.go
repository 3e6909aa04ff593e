package curriculum

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader imports curriculum documents from YAML files under a directory.
// It is used to seed the session history with curated curricula and is
// read-only once NewLoader returns.
type Loader struct {
	rootDir   string
	documents map[string]*Document
}

// NewLoader creates a loader and reads every curriculum file under rootDir.
// A missing rootDir yields an empty loader.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir:   rootDir,
		documents: make(map[string]*Document),
	}

	if _, err := os.Stat(rootDir); os.IsNotExist(err) {
		return l, nil
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading curricula: %w", err)
	}

	slog.Info("curricula loaded", "dir", rootDir, "documents", len(l.documents))
	return l, nil
}

// Documents returns all loaded documents, newest first.
func (l *Loader) Documents() []*Document {
	docs := make([]*Document, 0, len(l.documents))
	for _, d := range l.documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs
}

func (l *Loader) loadAll() error {
	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			return l.loadDocument(path)
		}
		return nil
	})
}

func (l *Loader) loadDocument(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		slog.Warn("skipping invalid curriculum YAML", "path", path, "error", err)
		return nil
	}

	if doc.ID == "" || len(doc.Periods) == 0 {
		return nil // Not a curriculum file
	}
	if doc.DurationCount < 1 {
		doc.DurationCount = len(doc.Periods)
	}

	l.documents[doc.ID] = &doc

	return nil
}

// EncodeYAML writes d in the same YAML form the loader reads.
func EncodeYAML(w io.Writer, d *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode curriculum: %w", err)
	}
	return enc.Close()
}
