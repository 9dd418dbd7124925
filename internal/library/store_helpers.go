package library

import (
	"database/sql"
	"time"
)

const itemColumns = "id, source_path, display_name, content_path, analysis_path, chat_path, notes_path, content_refined, analyzed_at, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id             int64
		sourcePath     string
		displayName    string
		contentPath    sql.NullString
		analysisPath   sql.NullString
		chatPath       sql.NullString
		notesPath      sql.NullString
		contentRefined int64
		analyzedRaw    sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&sourcePath,
		&displayName,
		&contentPath,
		&analysisPath,
		&chatPath,
		&notesPath,
		&contentRefined,
		&analyzedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	return &Item{
		ID:             id,
		SourcePath:     sourcePath,
		DisplayName:    displayName,
		ContentPath:    contentPath.String,
		AnalysisPath:   analysisPath.String,
		ChatPath:       chatPath.String,
		NotesPath:      notesPath.String,
		ContentRefined: contentRefined != 0,
		AnalyzedAt:     parseTime(analyzedRaw),
		CreatedAt:      parseTime(createdRaw),
		UpdatedAt:      parseTime(updatedRaw),
	}, nil
}

func parseTime(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
