package library

import (
	"fmt"
	"path/filepath"
	"time"

	"litman/internal/textutil"
)

// ArtifactKind names one derived artifact of an Item.
type ArtifactKind string

const (
	ArtifactContent      ArtifactKind = "content"
	ArtifactAnalysis     ArtifactKind = "analysis"
	ArtifactConversation ArtifactKind = "conversation"
	ArtifactNotes        ArtifactKind = "notes"
)

var artifactSuffix = map[ArtifactKind]string{
	ArtifactContent:      "_content.txt",
	ArtifactAnalysis:     "_analysis.md",
	ArtifactConversation: "_chat.json",
	ArtifactNotes:        "_notes.json",
}

// Item is one ingested document.
type Item struct {
	ID             int64
	SourcePath     string
	DisplayName    string
	ContentPath    string
	AnalysisPath   string
	ChatPath       string
	NotesPath      string
	ContentRefined bool
	AnalyzedAt     time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasAnalysis reports whether an analysis artifact has been saved.
func (i *Item) HasAnalysis() bool {
	return i != nil && !i.AnalyzedAt.IsZero()
}

// Conversation log roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatEntry is one line of an item's conversation log.
type ChatEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}

// Note is a saved annotation on a document page.
type Note struct {
	Page      int       `json:"page"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// artifactPath returns <dir>/<id>-<safe name><suffix>.
func artifactPath(dir string, id int64, displayName string, kind ArtifactKind) string {
	name := fmt.Sprintf("%d-%s%s", id, textutil.SanitizeFileName(displayName), artifactSuffix[kind])
	return filepath.Join(dir, name)
}
