// Package project owns the in-memory website project: its files, the active
// file, the prompt and the generation lifecycle.
package project

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"codecanvas/internal/format"
	"codecanvas/internal/metrics"
	"codecanvas/internal/types"
)

// IndexFile is preferred as the active file after a generation.
const IndexFile = "index.html"

var fileNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+\.[A-Za-z0-9]+$`)

// ErrFileNotFound is returned when selecting a name that is not in the project.
var ErrFileNotFound = errors.New("file not found")

// ValidationError rejects a user-created file name.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Change describes what a store mutation touched.
type Change struct {
	FilesChanged     bool // file list or some file content changed
	SelectionChanged bool // the active file changed
	FilesRevision    uint64
	SelectionRev     uint64
}

// Snapshot is a consistent copy of the store state.
type Snapshot struct {
	Files         []types.File
	Active        string // empty when no file is active
	FilesRevision uint64
	SelectionRev  uint64
}

// ActiveFile returns the active file from the snapshot.
func (s Snapshot) ActiveFile() (types.File, bool) {
	if s.Active == "" {
		return types.File{}, false
	}
	for _, f := range s.Files {
		if f.Name == s.Active {
			return f, true
		}
	}
	return types.File{}, false
}

// FormatTicket identifies the file and content a formatting request was made
// for. Results are only committed while both still match.
type FormatTicket struct {
	Name    string
	Content string
}

// Store is the single owner of the project's files.
type Store struct {
	mu           sync.RWMutex
	files        []types.File
	active       string
	filesRev     uint64
	selectionRev uint64

	listenersMu sync.RWMutex
	listeners   []func(Change)
}

func NewStore() *Store {
	return &Store{}
}

// Subscribe registers fn to be called after every mutation. Listeners run
// outside the store lock and may read the store.
func (s *Store) Subscribe(fn func(Change)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify(c Change) {
	if !c.FilesChanged && !c.SelectionChanged {
		return
	}
	s.listenersMu.RLock()
	listeners := append([]func(Change){}, s.listeners...)
	s.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(c)
	}
}

// bump must be called with mu held.
func (s *Store) bump(files, selection bool) Change {
	if files {
		s.filesRev++
	}
	if selection {
		s.selectionRev++
	}
	return Change{
		FilesChanged:     files,
		SelectionChanged: selection,
		FilesRevision:    s.filesRev,
		SelectionRev:     s.selectionRev,
	}
}

func (s *Store) indexOf(name string) int {
	for i, f := range s.files {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// ReplaceAll swaps in a new file list and reselects the active file:
// index.html if present, else the first file, else none.
func (s *Store) ReplaceAll(files []types.File) {
	s.mu.Lock()
	s.files = append([]types.File(nil), files...)
	s.active = ""
	if s.indexOf(IndexFile) >= 0 {
		s.active = IndexFile
	} else if len(s.files) > 0 {
		s.active = s.files[0].Name
	}
	c := s.bump(true, true)
	s.mu.Unlock()

	metrics.FileOps.WithLabelValues("replace").Inc()
	s.notify(c)
}

// Select makes name the active file.
func (s *Store) Select(name string) error {
	s.mu.Lock()
	if s.indexOf(name) < 0 {
		s.mu.Unlock()
		return fmt.Errorf("select %q: %w", name, ErrFileNotFound)
	}
	if s.active == name {
		s.mu.Unlock()
		return nil
	}
	s.active = name
	c := s.bump(false, true)
	s.mu.Unlock()

	metrics.FileOps.WithLabelValues("select").Inc()
	s.notify(c)
	return nil
}

// SetActiveContent replaces the active file's content. It reports whether
// anything changed; without an active file it is a no-op.
func (s *Store) SetActiveContent(content string) bool {
	s.mu.Lock()
	i := s.indexOf(s.active)
	if s.active == "" || i < 0 || s.files[i].Content == content {
		s.mu.Unlock()
		return false
	}
	s.files[i].Content = content
	c := s.bump(true, false)
	s.mu.Unlock()

	metrics.FileOps.WithLabelValues("edit").Inc()
	s.notify(c)
	return true
}

// Create appends an empty file and makes it active. The name must carry an
// extension and must not collide, case-insensitively, with an existing file.
func (s *Store) Create(name string) error {
	if !fileNamePattern.MatchString(name) {
		metrics.FileOps.WithLabelValues("create_rejected").Inc()
		return &ValidationError{
			Name:   name,
			Reason: `Invalid file name. Please use a valid name with an extension (e.g., "about.html").`,
		}
	}

	s.mu.Lock()
	for _, f := range s.files {
		if strings.EqualFold(f.Name, name) {
			s.mu.Unlock()
			metrics.FileOps.WithLabelValues("create_rejected").Inc()
			return &ValidationError{Name: name, Reason: fmt.Sprintf("A file named %q already exists.", name)}
		}
	}
	s.files = append(s.files, types.File{Name: name})
	s.active = name
	c := s.bump(true, true)
	s.mu.Unlock()

	metrics.FileOps.WithLabelValues("create").Inc()
	s.notify(c)
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Files:         append([]types.File(nil), s.files...),
		Active:        s.active,
		FilesRevision: s.filesRev,
		SelectionRev:  s.selectionRev,
	}
}

// ActiveTicket returns a formatting ticket for the active file.
func (s *Store) ActiveTicket() (FormatTicket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(s.active)
	if s.active == "" || i < 0 {
		return FormatTicket{}, false
	}
	return FormatTicket{Name: s.files[i].Name, Content: s.files[i].Content}, true
}

// ApplyFormatted commits formatter output for the ticket's file. The result
// is discarded when the file is no longer active, its content moved on since
// the ticket was taken, or the output only differs in surrounding whitespace.
func (s *Store) ApplyFormatted(t FormatTicket, formatted string) (applied bool, stale bool) {
	s.mu.Lock()
	i := s.indexOf(t.Name)
	if s.active != t.Name || i < 0 || s.files[i].Content != t.Content {
		s.mu.Unlock()
		return false, true
	}
	if format.Equivalent(formatted, s.files[i].Content) {
		s.mu.Unlock()
		return false, false
	}
	s.files[i].Content = formatted
	c := s.bump(true, false)
	s.mu.Unlock()

	metrics.FileOps.WithLabelValues("edit").Inc()
	s.notify(c)
	return true, false
}
