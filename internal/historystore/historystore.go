// Package historystore provides the history-persistence collaborator: a
// two-method store(sequence<string>) / commands() pair, called once at
// construction and once at session exit. FileStore is the default
// implementation, backed by a YAML file.
package historystore

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store persists and restores a session's command history ring. Session
// calls Commands once at construction and Store once at exit.
type Store interface {
	Store(commands []string) error
	Commands() ([]string, error)
}

// Memory is a Store that keeps history only for the lifetime of the
// process; it never touches disk. Useful in tests and for sessions that
// opt out of persistence.
type Memory struct {
	commands []string
}

// NewMemory returns an in-memory store, optionally seeded with prior
// commands (newest last).
func NewMemory(seed []string) *Memory {
	return &Memory{commands: append([]string(nil), seed...)}
}

func (m *Memory) Store(commands []string) error {
	m.commands = append([]string(nil), commands...)
	return nil
}

func (m *Memory) Commands() ([]string, error) {
	return append([]string(nil), m.commands...), nil
}

// fileDoc is the on-disk shape of FileStore's YAML file.
type fileDoc struct {
	Commands []string `yaml:"commands"`
}

// FileStore persists history as a YAML document at Path. A missing file is
// treated as empty history, not an error.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Store(commands []string) error {
	doc := fileDoc{Commands: commands}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "historystore: marshalling history")
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return errors.Wrapf(err, "historystore: writing %s", f.Path)
	}
	return nil
}

func (f *FileStore) Commands() ([]string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "historystore: reading %s", f.Path)
	}
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "historystore: parsing %s", f.Path)
	}
	return doc.Commands, nil
}
