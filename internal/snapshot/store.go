// Package snapshot persists daily KPI snapshots so a past day's
// dashboard state can be restored. One snapshot per calendar date;
// saving twice on the same date overwrites.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"kpideck/internal/feed"
	"kpideck/internal/report"
)

const fileName = "snapshots.jsonl"

// Snapshot captures the manually entered dashboard figures of one day.
// Sections never filled that day are nil.
type Snapshot struct {
	Date        string                    `json:"date"` // YYYY-MM-DD
	Timestamp   time.Time                 `json:"timestamp"`
	Performance *feed.PerformanceDTO      `json:"performance,omitempty"`
	Coverage    *report.CoverageResult    `json:"coverage,omitempty"`
	Activity    *report.ActivityResult    `json:"activity,omitempty"`
	Application *report.ApplicationResult `json:"application,omitempty"`
	Defense     *report.DefenseResult     `json:"defense,omitempty"`
}

// Store is a date-keyed snapshot collection backed by a JSONL file.
type Store struct {
	mu        sync.RWMutex
	dir       string
	snapshots map[string]Snapshot
}

// NewStore creates an empty store persisting under dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:       dir,
		snapshots: make(map[string]Snapshot),
	}
}

// Load reads the snapshot file. A missing file is not an error.
func (s *Store) Load() error {
	path := filepath.Join(s.dir, fileName)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var snap Snapshot
		if err := json.Unmarshal(scanner.Bytes(), &snap); err != nil {
			log.Warn().Err(err).Msg("Skipping invalid JSON line in snapshot file")
			continue
		}
		s.snapshots[snap.Date] = snap
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading snapshot file: %w", err)
	}

	log.Info().Int("count", len(s.snapshots)).Msg("Loaded snapshots")
	return nil
}

// Save upserts the snapshot under its date and persists the full set.
func (s *Store) Save(snap Snapshot) error {
	if snap.Date == "" {
		return fmt.Errorf("snapshot has no date")
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snap.Date] = snap
	return s.flush()
}

// Get returns the snapshot for a date key.
func (s *Store) Get(date string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[date]
	return snap, ok
}

// List returns all snapshots, newest date first.
func (s *Store) List() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// Delete removes a date's snapshot and persists. Deleting a missing
// date reports false without touching the file.
func (s *Store) Delete(date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[date]; !ok {
		return false, nil
	}
	delete(s.snapshots, date)
	return true, s.flush()
}

// flush writes every snapshot to a temp file and renames it over the
// live one, sorted by date for stable diffs. Callers hold s.mu, which
// also serializes writers on the shared temp file.
func (s *Store) flush() error {
	out := make([]Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	path := filepath.Join(s.dir, fileName)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, snap := range out {
		if err := encoder.Encode(snap); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush snapshot file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	log.Debug().Int("count", len(out)).Msg("Snapshots persisted")
	return nil
}
