package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is either editable rich-text content or an uploaded file
// reference. Content updates bump the version counter.
type Document struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	ApplicationID  *uuid.UUID `json:"application_id"`
	FolderID       *uuid.UUID `json:"folder_id"`
	Name           string     `json:"name"`
	Content        string     `json:"content"` // sanitized HTML, empty for uploads
	ObjectKey      string     `json:"object_key,omitempty"`
	FileURL        string     `json:"file_url,omitempty"`
	ContentType    string     `json:"content_type,omitempty"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Folder is a hierarchical container for documents. ParentID nil means root
// level; ApplicationID links a folder 1:1 to its application.
type Folder struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	ParentID       *uuid.UUID `json:"parent_id"`
	ApplicationID  *uuid.UUID `json:"application_id"`
	Name           string     `json:"name"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Bookmark struct {
	ID             uuid.UUID   `json:"id"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	OpportunityID  uuid.UUID   `json:"opportunity_id"`
	CreatedAt      time.Time   `json:"created_at"`
	Opportunity    Opportunity `json:"opportunity"`
}

type Chat struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	Role      string    `json:"role"` // user, assistant
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
