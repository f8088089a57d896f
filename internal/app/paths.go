package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved filesystem locations the app writes to.
type Paths struct {
	Root       string // directory holding the database, e.g. .advise/
	DB         string // .advise/advise.db
	Vocabulary string // optional vocabulary file, absolute when set
}

// NewPaths resolves the storage and vocabulary paths from configuration.
func NewPaths(dbPath, vocabularyPath string) (*Paths, error) {
	db, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	p := &Paths{Root: filepath.Dir(db), DB: db}
	if vocabularyPath != "" {
		v, err := filepath.Abs(vocabularyPath)
		if err != nil {
			return nil, fmt.Errorf("resolve vocabulary path: %w", err)
		}
		p.Vocabulary = v
	}
	return p, nil
}

// EnsureDirs creates the storage directory if it does not exist.
func (p *Paths) EnsureDirs() error {
	if err := os.MkdirAll(p.Root, 0755); err != nil {
		return fmt.Errorf("create %s: %w", p.Root, err)
	}
	return nil
}
