package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"litman/internal/fileutil"
	"litman/internal/services"
	"litman/internal/textutil"
)

// Create inserts an item for sourcePath and writes its content artifact. It
// fails with services.ErrDuplicate when the source path is already stored.
func (s *Store) Create(ctx context.Context, sourcePath, content string, refined bool) (*Item, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, services.Wrap(services.ErrValidation, "library", "create", "source path required", nil)
	}
	existing, err := s.GetBySourcePath(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, services.Wrap(services.ErrDuplicate, "library", "create", sourcePath, nil)
	}

	displayName := textutil.DisplayName(sourcePath)
	timestamp := nowStamp()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO items (source_path, display_name, content_refined, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		sourcePath, displayName, boolToInt(refined), timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	item := &Item{ID: id, SourcePath: sourcePath, DisplayName: displayName}
	item.ContentPath = artifactPath(s.artifactDir, id, displayName, ArtifactContent)
	item.AnalysisPath = artifactPath(s.artifactDir, id, displayName, ArtifactAnalysis)
	item.ChatPath = artifactPath(s.artifactDir, id, displayName, ArtifactConversation)
	item.NotesPath = artifactPath(s.artifactDir, id, displayName, ArtifactNotes)

	if err := fileutil.WriteFileAtomic(item.ContentPath, []byte(content), 0o644); err != nil {
		_, _ = s.execWithRetry(ctx, `DELETE FROM items WHERE id = ?`, id)
		return nil, fmt.Errorf("write content artifact: %w", err)
	}
	if _, err := s.execWithRetry(ctx,
		`UPDATE items SET content_path = ?, analysis_path = ?, chat_path = ?, notes_path = ? WHERE id = ?`,
		item.ContentPath, item.AnalysisPath, item.ChatPath, item.NotesPath, id,
	); err != nil {
		_ = fileutil.RemoveIfExists(item.ContentPath)
		_, _ = s.execWithRetry(ctx, `DELETE FROM items WHERE id = ?`, id)
		return nil, fmt.Errorf("record artifact paths: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches an item by identifier. A missing item returns nil, nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetBySourcePath fetches an item by its source path. A missing item returns nil, nil.
func (s *Store) GetBySourcePath(ctx context.Context, sourcePath string) (*Item, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+itemColumns+` FROM items WHERE source_path = ?`, sourcePath)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item by path: %w", err)
	}
	return item, nil
}

// List returns every item in insertion order.
func (s *Store) List(ctx context.Context) ([]*Item, error) {
	return s.query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
}

// ListMissingAnalysis returns items whose analysis has never been saved.
func (s *Store) ListMissingAnalysis(ctx context.Context) ([]*Item, error) {
	return s.query(ctx, `SELECT `+itemColumns+` FROM items WHERE analyzed_at IS NULL ORDER BY id`)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*Item, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Remove deletes the item row and all of its artifacts.
func (s *Store) Remove(ctx context.Context, id int64) error {
	item, err := s.mustGet(ctx, id, "remove")
	if err != nil {
		return err
	}
	if _, err := s.execWithRetry(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.evict(id)
	if err := fileutil.RemoveIfExists(item.ContentPath, item.AnalysisPath, item.ChatPath, item.NotesPath); err != nil {
		return fmt.Errorf("remove artifacts: %w", err)
	}
	return nil
}

func (s *Store) mustGet(ctx context.Context, id int64, op string) (*Item, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "library", op, fmt.Sprintf("item %d", id), nil)
	}
	return item, nil
}

func (s *Store) touch(ctx context.Context, id int64) error {
	_, err := s.execWithRetry(ctx, `UPDATE items SET updated_at = ? WHERE id = ?`, nowStamp(), id)
	return err
}
