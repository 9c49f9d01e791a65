// Package state holds the adapter's single persisted blob: the book detail
// cache, the reader cache, known authors and the latest-releases dedup set.
// The host owns persistence as an opaque JSON string; LoadFile/SaveFile add
// an atomic on-disk representation for the standalone server.
package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
)

// blob is the serialized schema. Field names are part of the host contract.
type blob struct {
	Authors          []domain.AuthorEntity          `json:"authors"`
	Readers          map[string]domain.ReaderEntity `json:"readers"`
	BookDetails      map[string]domain.BookDetail   `json:"bookDetails"`
	LatestReleaseIDs []string                       `json:"latestReleaseIds"`
}

// State is the shared mutable resource of the adapter. Cached entries are
// never evicted; they live as long as the persisted blob does.
type State struct {
	mu     sync.Mutex
	data   blob
	latest map[string]struct{}
	path   string
}

// New returns an empty state.
func New() *State {
	s := &State{}
	s.data = emptyBlob()
	s.latest = make(map[string]struct{})
	return s
}

func emptyBlob() blob {
	return blob{
		Readers:     make(map[string]domain.ReaderEntity),
		BookDetails: make(map[string]domain.BookDetail),
	}
}

// Restore deserializes a persisted blob. Absent or corrupt input initializes
// an empty state rather than failing startup.
func Restore(serialized string) *State {
	s := New()
	if serialized == "" {
		return s
	}
	var b blob
	if err := json.Unmarshal([]byte(serialized), &b); err != nil {
		slog.Warn("persisted state is corrupt, starting empty", "error", err)
		return s
	}
	if b.Readers == nil {
		b.Readers = make(map[string]domain.ReaderEntity)
	}
	if b.BookDetails == nil {
		b.BookDetails = make(map[string]domain.BookDetail)
	}
	s.data = b
	for _, id := range b.LatestReleaseIDs {
		s.latest[id] = struct{}{}
	}
	return s
}

// Replace swaps in the contents restored from a persisted blob, in place: the
// load path and any existing references to this State stay valid, so later
// saves still reach the same file.
func (s *State) Replace(serialized string) {
	restored := Restore(serialized)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = restored.data
	s.latest = restored.latest
}

// Serialize produces the JSON blob handed back to the host.
func (s *State) Serialize() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(s.data)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// LoadFile restores state from a file, starting empty when the file does not
// exist or cannot be parsed.
func LoadFile(path string) *State {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("state file unreadable, starting empty", "path", path, "error", err)
		}
		s := New()
		s.path = path
		return s
	}
	s := Restore(string(data))
	s.path = path
	return s
}

// SaveFile atomically writes the blob to the path it was loaded from. A state
// without a path (host-managed persistence) is a no-op.
func (s *State) SaveFile() error {
	if s.path == "" {
		return nil
	}
	serialized, err := s.Serialize()
	if err != nil {
		return err
	}
	dir := filepath.Dir(filepath.Clean(s.path))
	tmp, err := os.CreateTemp(dir, ".librivox-state-*.json.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	_, werr := tmp.WriteString(serialized)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(name)
		if werr != nil {
			return werr
		}
		return cerr
	}
	if err := os.Rename(name, s.path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// Book returns a cached book detail.
func (s *State) Book(key string) (domain.BookDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.data.BookDetails[key]
	return d, ok
}

// PutBook stores a book detail under its canonical key.
func (s *State) PutBook(key string, d domain.BookDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.BookDetails[key] = d
}

// Reader returns a cached reader.
func (s *State) Reader(id string) (domain.ReaderEntity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.Readers[id]
	return r, ok
}

// PutReader caches a reader keyed by id.
func (s *State) PutReader(r domain.ReaderEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Readers[r.ID] = r
}

// RememberAuthor records an author in the persisted author list, replacing a
// previous entry with the same id.
func (s *State) RememberAuthor(a domain.AuthorEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.data.Authors {
		if existing.ID == a.ID {
			s.data.Authors[i] = a
			return
		}
	}
	s.data.Authors = append(s.data.Authors, a)
}

// MarkLatest adds ids to the latest-releases dedup set. The set only grows.
func (s *State) MarkLatest(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.latest[id]; ok {
			continue
		}
		s.latest[id] = struct{}{}
		s.data.LatestReleaseIDs = append(s.data.LatestReleaseIDs, id)
	}
}

// IsLatest reports whether id was already surfaced as a latest release.
func (s *State) IsLatest(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.latest[id]
	return ok
}

// Reset drops every cached entry and the dedup set.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = emptyBlob()
	s.latest = make(map[string]struct{})
}

// Stats reports cache sizes for logging and the state endpoint.
func (s *State) Stats() (books, readers, authors, latest int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.BookDetails), len(s.data.Readers), len(s.data.Authors), len(s.data.LatestReleaseIDs)
}
