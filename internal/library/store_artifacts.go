package library

import (
	"context"
	"encoding/json"
	"fmt"

	"litman/internal/fileutil"
	"litman/internal/services"
)

// LoadContent returns the stored content artifact.
func (s *Store) LoadContent(ctx context.Context, id int64) (string, error) {
	item, err := s.mustGet(ctx, id, "load content")
	if err != nil {
		return "", err
	}
	data, ok, err := fileutil.ReadFileIfExists(item.ContentPath)
	if err != nil {
		return "", fmt.Errorf("read content artifact: %w", err)
	}
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "library", "load content", item.ContentPath, nil)
	}
	return string(data), nil
}

// SaveAnalysis overwrites the analysis artifact and marks the item analyzed.
func (s *Store) SaveAnalysis(ctx context.Context, id int64, text string) error {
	item, err := s.mustGet(ctx, id, "save analysis")
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(item.AnalysisPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write analysis artifact: %w", err)
	}
	stamp := nowStamp()
	if _, err := s.execWithRetry(ctx, `UPDATE items SET analyzed_at = ?, updated_at = ? WHERE id = ?`, stamp, stamp, id); err != nil {
		return fmt.Errorf("mark analyzed: %w", err)
	}

	s.mu.Lock()
	entry := s.cached(id)
	entry.analysis, entry.hasAnalysis = text, true
	s.mu.Unlock()
	return nil
}

// LoadAnalysis returns the analysis text. ok is false when none was saved.
func (s *Store) LoadAnalysis(ctx context.Context, id int64) (text string, ok bool, err error) {
	s.mu.RLock()
	if entry, hit := s.cache[id]; hit && entry.hasAnalysis {
		text = entry.analysis
		s.mu.RUnlock()
		return text, true, nil
	}
	s.mu.RUnlock()

	item, err := s.mustGet(ctx, id, "load analysis")
	if err != nil {
		return "", false, err
	}
	if !item.HasAnalysis() {
		return "", false, nil
	}
	data, found, err := fileutil.ReadFileIfExists(item.AnalysisPath)
	if err != nil {
		return "", false, fmt.Errorf("read analysis artifact: %w", err)
	}
	if !found {
		return "", false, nil
	}

	s.mu.Lock()
	entry := s.cached(id)
	entry.analysis, entry.hasAnalysis = string(data), true
	s.mu.Unlock()
	return string(data), true, nil
}

// AppendChat adds one entry to the conversation log and rewrites the file.
func (s *Store) AppendChat(ctx context.Context, id int64, entry ChatEntry) error {
	item, err := s.mustGet(ctx, id, "append chat")
	if err != nil {
		return err
	}
	log, err := s.loadChat(item)
	if err != nil {
		return err
	}
	next := make([]ChatEntry, len(log), len(log)+1)
	copy(next, log)
	next = append(next, entry)
	if err := s.writeChat(item, next); err != nil {
		return err
	}
	return s.touch(ctx, id)
}

// LoadChat returns a copy of the conversation log.
func (s *Store) LoadChat(ctx context.Context, id int64) ([]ChatEntry, error) {
	item, err := s.mustGet(ctx, id, "load chat")
	if err != nil {
		return nil, err
	}
	log, err := s.loadChat(item)
	if err != nil {
		return nil, err
	}
	out := make([]ChatEntry, len(log))
	copy(out, log)
	return out, nil
}

// ClearChat empties the conversation log.
func (s *Store) ClearChat(ctx context.Context, id int64) error {
	item, err := s.mustGet(ctx, id, "clear chat")
	if err != nil {
		return err
	}
	if err := s.writeChat(item, []ChatEntry{}); err != nil {
		return err
	}
	return s.touch(ctx, id)
}

func (s *Store) loadChat(item *Item) ([]ChatEntry, error) {
	s.mu.RLock()
	if entry, hit := s.cache[item.ID]; hit && entry.hasChat {
		log := entry.chat
		s.mu.RUnlock()
		return log, nil
	}
	s.mu.RUnlock()

	data, ok, err := fileutil.ReadFileIfExists(item.ChatPath)
	if err != nil {
		return nil, fmt.Errorf("read chat artifact: %w", err)
	}
	var log []ChatEntry
	if ok && len(data) > 0 {
		if err := json.Unmarshal(data, &log); err != nil {
			return nil, fmt.Errorf("decode chat artifact: %w", err)
		}
	}

	s.mu.Lock()
	entry := s.cached(item.ID)
	entry.chat, entry.hasChat = log, true
	s.mu.Unlock()
	return log, nil
}

func (s *Store) writeChat(item *Item, log []ChatEntry) error {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("encode chat artifact: %w", err)
	}
	if err := fileutil.WriteFileAtomic(item.ChatPath, data, 0o644); err != nil {
		return fmt.Errorf("write chat artifact: %w", err)
	}
	s.mu.Lock()
	entry := s.cached(item.ID)
	entry.chat, entry.hasChat = log, true
	s.mu.Unlock()
	return nil
}

// SaveNotes overwrites the note metadata for an item.
func (s *Store) SaveNotes(ctx context.Context, id int64, notes []Note) error {
	item, err := s.mustGet(ctx, id, "save notes")
	if err != nil {
		return err
	}
	if notes == nil {
		notes = []Note{}
	}
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	if err := fileutil.WriteFileAtomic(item.NotesPath, data, 0o644); err != nil {
		return fmt.Errorf("write notes artifact: %w", err)
	}
	saved := make([]Note, len(notes))
	copy(saved, notes)
	s.mu.Lock()
	entry := s.cached(id)
	entry.notes, entry.hasNotes = saved, true
	s.mu.Unlock()
	return s.touch(ctx, id)
}

// LoadNotes returns the note metadata for an item, or nil when none exist.
func (s *Store) LoadNotes(ctx context.Context, id int64) ([]Note, error) {
	item, err := s.mustGet(ctx, id, "load notes")
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	if entry, hit := s.cache[id]; hit && entry.hasNotes {
		notes := copyNotes(entry.notes)
		s.mu.RUnlock()
		return notes, nil
	}
	s.mu.RUnlock()

	data, ok, err := fileutil.ReadFileIfExists(item.NotesPath)
	if err != nil {
		return nil, fmt.Errorf("read notes artifact: %w", err)
	}
	var notes []Note
	if ok {
		if err := json.Unmarshal(data, &notes); err != nil {
			return nil, fmt.Errorf("decode notes artifact: %w", err)
		}
	}

	s.mu.Lock()
	entry := s.cached(id)
	entry.notes, entry.hasNotes = notes, true
	s.mu.Unlock()
	return copyNotes(notes), nil
}

func copyNotes(notes []Note) []Note {
	if notes == nil {
		return nil
	}
	out := make([]Note, len(notes))
	copy(out, notes)
	return out
}
