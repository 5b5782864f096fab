// Package snapshot stores copies of the item table in a bare git repository
// using plumbing objects (blobs and refs). It backs destructive migrations.
package snapshot

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// Ensure Store implements domain.SnapshotCatalog.
var _ domain.SnapshotCatalog = (*Store)(nil)

// RefPrefix is the namespace of snapshot refs.
//
//	refs/gtd/snapshots/
//	  <name>      → blob (table as CSV)
//	  <name>_002  → blob (second snapshot with the same name)
const RefPrefix = "refs/gtd/snapshots/"

// Store implements domain.Snapshotter using git plumbing.
type Store struct {
	repo *git.Repository
	mu   sync.Mutex
}

// Open opens the bare repository at path, creating it if needed.
func Open(path string) (*Store, error) {
	repo, err := git.PlainOpen(path)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(path, true)
	}
	if err != nil {
		return nil, fmt.Errorf("open snapshot repository: %w", err)
	}
	return &Store{repo: repo}, nil
}

// NewWithRepo creates a Store over an existing repository instance.
func NewWithRepo(repo *git.Repository) *Store {
	return &Store{repo: repo}
}

// Snapshot stores header and rows as a CSV blob under name and returns the
// ref name. An existing name gets a sequence suffix instead of being replaced.
func (s *Store) Snapshot(ctx context.Context, name string, header []string, rows []domain.Row) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := encodeTable(header, rows)
	if err != nil {
		return "", err
	}
	hash, err := s.writeBlob(data)
	if err != nil {
		return "", err
	}

	refName, err := s.freeRef(name)
	if err != nil {
		return "", err
	}
	ref := plumbing.NewHashReference(refName, hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return "", fmt.Errorf("set snapshot ref: %w", err)
	}
	return refName.String(), nil
}

// List returns the names of stored snapshots, sorted.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	var names []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if name, ok := strings.CutPrefix(ref.Name().String(), RefPrefix); ok {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate refs: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the table stored under name.
func (s *Store) Load(name string) ([]string, [][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := s.repo.Reference(plumbing.ReferenceName(RefPrefix+name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil, fmt.Errorf("snapshot %q: %w", name, domain.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("get snapshot ref: %w", err)
	}
	data, err := s.readBlob(ref.Hash())
	if err != nil {
		return nil, nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

// freeRef returns the first unused ref name for name.
func (s *Store) freeRef(name string) (plumbing.ReferenceName, error) {
	for seq := 1; ; seq++ {
		candidate := RefPrefix + name
		if seq > 1 {
			candidate = fmt.Sprintf("%s%s_%03d", RefPrefix, name, seq)
		}
		refName := plumbing.ReferenceName(candidate)
		_, err := s.repo.Reference(refName, false)
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return refName, nil
		}
		if err != nil {
			return "", fmt.Errorf("check snapshot ref: %w", err)
		}
	}
}

// writeBlob writes data to a blob and returns the hash.
func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}
	if _, writeErr := writer.Write(data); writeErr != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", writeErr)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}
	return hash, nil
}

func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob data: %w", err)
	}
	return data, nil
}

func encodeTable(header []string, rows []domain.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("encode snapshot header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			if str, ok := v.(string); ok {
				record[i] = str
				continue
			}
			record[i] = domain.CellText(v)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("encode snapshot row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
