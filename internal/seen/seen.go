package seen

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/queensdev/devnews/internal/logger"
)

// Set is the persistent identity cache of links the pipeline has already
// processed. It gates the expensive per-item work (enrichment fetch,
// filtering); the later (title, link) dedup against history is a separate
// concern.
//
// On disk the set is one link per line, sorted, optionally suffixed with
// ",<RFC3339>" recording when the link was first seen. Bare lines come from
// older files and are kept regardless of retention.
type Set struct {
	path      string
	retention time.Duration // 0 keeps entries forever
	mu        sync.RWMutex
	firstSeen map[string]time.Time
}

func New(path string, retentionDays int) *Set {
	return &Set{
		path:      path,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		firstSeen: make(map[string]time.Time),
	}
}

// Load reads the set from disk. A missing or unreadable file is not an
// error: the run starts with an empty set.
func (s *Set) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("seen file unreadable, starting empty", "path", s.path, "error", err)
		}
		return
	}
	defer f.Close()

	var cutoff time.Time
	if s.retention > 0 {
		cutoff = time.Now().Add(-s.retention)
	}

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		link, at := parseLine(line)
		if !cutoff.IsZero() && !at.IsZero() && at.Before(cutoff) {
			continue
		}
		s.firstSeen[link] = at
	}
	if err := sc.Err(); err != nil {
		logger.Warn("seen file partially read", "path", s.path, "error", err)
	}
}

func parseLine(line string) (string, time.Time) {
	idx := strings.LastIndex(line, ",")
	if idx < 0 {
		return line, time.Time{}
	}
	if at, err := time.Parse(time.RFC3339, line[idx+1:]); err == nil {
		return line[:idx], at
	}
	// Not a timestamp suffix, the comma belongs to the link itself.
	return line, time.Time{}
}

func (s *Set) Contains(link string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.firstSeen[link]
	return ok
}

func (s *Set) Add(link string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.firstSeen[link]; !ok {
		s.firstSeen[link] = time.Now().UTC()
	}
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.firstSeen)
}

// Save writes the full set back, sorted for stable diffs, via a temp file
// and rename so a concurrent reader never sees a half-written list. The
// first-seen suffix is only written when retention is enabled; with
// retention off the file stays a plain single-column link list.
func (s *Set) Save() error {
	s.mu.RLock()
	lines := make([]string, 0, len(s.firstSeen))
	for link, at := range s.firstSeen {
		if s.retention > 0 && !at.IsZero() {
			lines = append(lines, link+","+at.Format(time.RFC3339))
		} else {
			lines = append(lines, link)
		}
	}
	s.mu.RUnlock()

	sort.Strings(lines)

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create seen dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create seen temp file: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write seen file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close seen file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace seen file: %w", err)
	}
	return nil
}
