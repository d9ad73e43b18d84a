// Package drive models Google Drive items and wraps the Drive v3 and Docs v1
// APIs used by the assistant.
package drive

import (
	"context"
	"fmt"
	"time"
)

const (
	MimeFolder       = "application/vnd.google-apps.folder"
	MimeDocument     = "application/vnd.google-apps.document"
	MimeSpreadsheet  = "application/vnd.google-apps.spreadsheet"
	MimePresentation = "application/vnd.google-apps.presentation"

	// RootFolderID is the alias Drive accepts for the user's My Drive root.
	RootFolderID = "root"
)

type Kind string

const (
	KindFolder       Kind = "folder"
	KindDocument     Kind = "document"
	KindSpreadsheet  Kind = "spreadsheet"
	KindPresentation Kind = "presentation"
	KindOther        Kind = "other"
)

// Item is the metadata of one Drive file or folder. Path is derived by the
// crawler from the ancestor names.
type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	Parents      []string  `json:"parents,omitempty"`
	ModifiedTime time.Time `json:"modifiedTime"`
	Path         string    `json:"path"`
}

func (i Item) Kind() Kind {
	switch i.MimeType {
	case MimeFolder:
		return KindFolder
	case MimeDocument:
		return KindDocument
	case MimeSpreadsheet:
		return KindSpreadsheet
	case MimePresentation:
		return KindPresentation
	default:
		return KindOther
	}
}

func (i Item) IsFolder() bool {
	return i.MimeType == MimeFolder
}

// PrimaryParent returns the first parent id. Drive reports at most one
// meaningful parent per item.
func (i Item) PrimaryParent() string {
	if len(i.Parents) == 0 {
		return ""
	}
	return i.Parents[0]
}

// DisplayName prefers the path so duplicated names stay distinguishable.
func (i Item) DisplayName() string {
	if i.Path != "" {
		return i.Path
	}
	return i.Name
}

// WebURL returns the browser link for the item.
func (i Item) WebURL() string {
	if i.ID == "" {
		return ""
	}
	switch i.Kind() {
	case KindFolder:
		return fmt.Sprintf("https://drive.google.com/drive/folders/%s", i.ID)
	case KindDocument:
		return DocumentURL(i.ID)
	case KindSpreadsheet:
		return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", i.ID)
	case KindPresentation:
		return fmt.Sprintf("https://docs.google.com/presentation/d/%s/edit", i.ID)
	default:
		return fmt.Sprintf("https://drive.google.com/file/d/%s/view", i.ID)
	}
}

func DocumentURL(docID string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", docID)
}

// Page is one page of a folder listing.
type Page struct {
	Items         []Item
	NextPageToken string
}

type CreatedDocument struct {
	ID  string
	URL string
}

// Lister lists the direct, non-trashed children of a folder one page at a time.
type Lister interface {
	ListChildren(ctx context.Context, folderID, pageToken string) (*Page, error)
}

// ContentReader extracts the text content of an item.
type ContentReader interface {
	ReadContent(ctx context.Context, item Item) (string, error)
}

type Mover interface {
	MoveItem(ctx context.Context, itemID, oldParentID, newParentID string) error
}

type DocumentWriter interface {
	CreateDocument(ctx context.Context, title string) (*CreatedDocument, error)
	InsertText(ctx context.Context, docID, text string, index int64) error
	ReplaceContent(ctx context.Context, docID, text string) error
}

// Workspace is everything the assistant needs from Google for one user.
type Workspace interface {
	Lister
	ContentReader
	Mover
	DocumentWriter
}

// Connector builds a Workspace authorised with the user's stored credential.
type Connector interface {
	Connect(ctx context.Context, userID string) (Workspace, error)
}
