package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// HTMLArchive keeps the raw HTML of every fetched results page so a crawl
// can be parsed again offline.
type HTMLArchive struct {
	dir string
}

func NewHTMLArchive(dir string) (*HTMLArchive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create html dir: %w", err)
	}
	return &HTMLArchive{dir: dir}, nil
}

// Save writes page N as page_000N.html and returns its path.
func (a *HTMLArchive) Save(page int, html string) (string, error) {
	path := filepath.Join(a.dir, fmt.Sprintf("page_%04d.html", page))
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("could not save page %d: %w", page, err)
	}
	return path, nil
}

// ListHTML returns the .html files in dir sorted by name, which is page
// order for files written by Save.
func ListHTML(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
