package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/openfund/grantdesk/internal/models"
)

const documentCols = `id, organization_id, application_id, folder_id, name, content, object_key,
	file_url, content_type, version, created_at, updated_at`

// Documents belong to one organization; every statement below keys on it.
const (
	getDocumentSQL = "SELECT %s FROM documents WHERE id = $1 AND organization_id = $2"

	updateDocumentSQL = `
		UPDATE documents
		SET name = $3, content = $4, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING %s`

	moveDocumentSQL = `
		UPDATE documents SET folder_id = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2`

	deleteDocumentSQL = "DELETE FROM documents WHERE id = $1 AND organization_id = $2"

	listDocumentsSQL = "SELECT %s FROM documents WHERE organization_id = $1 AND %s ORDER BY updated_at DESC"
)

func scanDocument(scan func(dest ...interface{}) error) (models.Document, error) {
	var d models.Document
	err := scan(
		&d.ID, &d.OrganizationID, &d.ApplicationID, &d.FolderID, &d.Name, &d.Content, &d.ObjectKey,
		&d.FileURL, &d.ContentType, &d.Version, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

type CreateDocumentParams struct {
	OrganizationID uuid.UUID
	ApplicationID  *uuid.UUID
	FolderID       *uuid.UUID
	Name           string
	Content        string // already sanitized
	ObjectKey      string
	FileURL        string
	ContentType    string
}

func (s *Store) CreateDocument(ctx context.Context, p CreateDocumentParams) (*models.Document, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO documents (organization_id, application_id, folder_id, name, content, object_key, file_url, content_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, documentCols), p.OrganizationID, p.ApplicationID, p.FolderID, p.Name, p.Content, p.ObjectKey, p.FileURL, p.ContentType)

	d, err := scanDocument(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("insert failed: %w", err)
	}
	return &d, nil
}

func (s *Store) GetDocument(ctx context.Context, orgID, id uuid.UUID) (*models.Document, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(getDocumentSQL, documentCols), id, orgID)
	d, err := scanDocument(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}
	return &d, nil
}

// UpdateDocumentContent replaces the rich-text body and bumps the version
// counter in the same statement.
func (s *Store) UpdateDocumentContent(ctx context.Context, orgID, id uuid.UUID, name, content string) (*models.Document, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(updateDocumentSQL, documentCols), id, orgID, name, content)

	d, err := scanDocument(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("content update failed: %w", err)
	}
	return &d, nil
}

func (s *Store) MoveDocument(ctx context.Context, orgID, id uuid.UUID, folderID *uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, moveDocumentSQL, id, orgID, folderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, deleteDocumentSQL, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) ListDocumentsByApplication(ctx context.Context, orgID, appID uuid.UUID) ([]models.Document, error) {
	return s.listDocuments(ctx, "application_id = $2", orgID, appID)
}

func (s *Store) ListDocumentsByFolder(ctx context.Context, orgID, folderID uuid.UUID) ([]models.Document, error) {
	return s.listDocuments(ctx, "folder_id = $2", orgID, folderID)
}

func (s *Store) listDocuments(ctx context.Context, where string, orgID uuid.UUID, arg interface{}) ([]models.Document, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(listDocumentsSQL, documentCols, where), orgID, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Folders

const folderCols = `id, organization_id, parent_id, application_id, name, created_at, updated_at`

func scanFolder(scan func(dest ...interface{}) error) (models.Folder, error) {
	var f models.Folder
	err := scan(&f.ID, &f.OrganizationID, &f.ParentID, &f.ApplicationID, &f.Name, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (s *Store) CreateFolder(ctx context.Context, orgID uuid.UUID, parentID, applicationID *uuid.UUID, name string) (*models.Folder, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO folders (organization_id, parent_id, application_id, name)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`, folderCols), orgID, parentID, applicationID, name)

	f, err := scanFolder(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("insert failed: %w", err)
	}
	return &f, nil
}

func (s *Store) RenameFolder(ctx context.Context, orgID, id uuid.UUID, name string) (*models.Folder, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE folders SET name = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING %s
	`, folderCols), id, orgID, name)

	f, err := scanFolder(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("rename failed: %w", err)
	}
	return &f, nil
}

func (s *Store) MoveFolder(ctx context.Context, orgID, id uuid.UUID, parentID *uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE folders SET parent_id = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
	`, id, orgID, parentID)
	return err
}

func (s *Store) DeleteFolder(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM folders WHERE id = $1 AND organization_id = $2", id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListFolders returns the children of parentID, or root folders when
// parentID is nil.
func (s *Store) ListFolders(ctx context.Context, orgID uuid.UUID, parentID *uuid.UUID) ([]models.Folder, error) {
	var rows pgx.Rows
	var err error
	if parentID == nil {
		rows, err = s.pool.Query(ctx, fmt.Sprintf(
			"SELECT %s FROM folders WHERE organization_id = $1 AND parent_id IS NULL ORDER BY name", folderCols), orgID)
	} else {
		rows, err = s.pool.Query(ctx, fmt.Sprintf(
			"SELECT %s FROM folders WHERE organization_id = $1 AND parent_id = $2 ORDER BY name", folderCols), orgID, *parentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		f, err := scanFolder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}
