package drive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"google.golang.org/api/docs/v1"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	listFields = "nextPageToken, files(id, name, mimeType, parents, modifiedTime)"

	// folderSummaryLimit caps how many children are listed when the content of
	// a folder is requested.
	folderSummaryLimit = 10

	// maxContentBytes bounds downloads of exported documents.
	maxContentBytes = 4 << 20
)

// Client wraps the Drive and Docs services for one authorised user.
type Client struct {
	files    *drivev3.Service
	docs     *docs.Service
	pageSize int64
	retry    RetryPolicy
}

var _ Workspace = (*Client)(nil)

type ClientConfig struct {
	PageSize int64
	Retry    RetryPolicy
}

// NewClient creates both services. Callers pass option.WithTokenSource for a
// user credential.
func NewClient(ctx context.Context, cfg ClientConfig, opts ...option.ClientOption) (*Client, error) {
	filesSrv, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	docsSrv, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}

	if cfg.PageSize <= 0 || cfg.PageSize > 1000 {
		cfg.PageSize = 1000
	}
	if cfg.Retry.MaxTries == 0 {
		cfg.Retry = DefaultRetryPolicy()
	}

	return &Client{
		files:    filesSrv,
		docs:     docsSrv,
		pageSize: cfg.PageSize,
		retry:    cfg.Retry,
	}, nil
}

// ListChildren returns one page of the non-trashed children of folderID.
func (c *Client) ListChildren(ctx context.Context, folderID, pageToken string) (*Page, error) {
	req := c.files.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderID))).
		Fields(listFields).
		PageSize(c.pageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Corpora("user").
		Context(ctx)
	if pageToken != "" {
		req = req.PageToken(pageToken)
	}

	resp, err := req.Do()
	if err != nil {
		return nil, fmt.Errorf("list children of %s: %w", folderID, err)
	}

	page := &Page{
		Items:         make([]Item, 0, len(resp.Files)),
		NextPageToken: resp.NextPageToken,
	}
	for _, f := range resp.Files {
		page.Items = append(page.Items, toItem(f))
	}
	return page, nil
}

// ReadContent returns the text of a document, slide deck, spreadsheet (CSV)
// or plain-text file, and a short listing for folders.
func (c *Client) ReadContent(ctx context.Context, item Item) (string, error) {
	switch {
	case item.IsFolder():
		return c.summariseFolder(ctx, item)
	case item.MimeType == MimeDocument, item.MimeType == MimePresentation:
		return c.export(ctx, item.ID, "text/plain")
	case item.MimeType == MimeSpreadsheet:
		return c.export(ctx, item.ID, "text/csv")
	case strings.HasPrefix(item.MimeType, "text/"):
		return RetryRead(ctx, c.retry, func() (string, error) {
			resp, err := c.files.Files.Get(item.ID).SupportsAllDrives(true).Context(ctx).Download()
			if err != nil {
				return "", err
			}
			defer resp.Body.Close()
			return readBody(resp.Body)
		})
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContent, item.MimeType)
	}
}

func (c *Client) export(ctx context.Context, fileID, mimeType string) (string, error) {
	return RetryRead(ctx, c.retry, func() (string, error) {
		resp, err := c.files.Files.Export(fileID, mimeType).Context(ctx).Download()
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		return readBody(resp.Body)
	})
}

func (c *Client) summariseFolder(ctx context.Context, folder Item) (string, error) {
	page, err := RetryRead(ctx, c.retry, func() (*drivev3.FileList, error) {
		return c.files.Files.List().
			Q(fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folder.ID))).
			Fields("files(name, mimeType)").
			PageSize(folderSummaryLimit).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx).
			Do()
	})
	if err != nil {
		return "", err
	}

	if len(page.Files) == 0 {
		return fmt.Sprintf("Folder '%s' is empty.", folder.Name), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Folder '%s' contains:\n", folder.Name)
	for _, f := range page.Files {
		fmt.Fprintf(&sb, "- %s (%s)\n", f.Name, f.MimeType)
	}
	if len(page.Files) >= folderSummaryLimit {
		sb.WriteString("(and possibly more...)\n")
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// MoveItem re-parents a file. An empty oldParentID only adds the new parent.
func (c *Client) MoveItem(ctx context.Context, itemID, oldParentID, newParentID string) error {
	req := c.files.Files.Update(itemID, &drivev3.File{}).
		AddParents(newParentID).
		Fields("id, parents").
		SupportsAllDrives(true).
		Context(ctx)
	if oldParentID != "" {
		req = req.RemoveParents(oldParentID)
	}

	if _, err := req.Do(); err != nil {
		return fmt.Errorf("move %s to %s: %w", itemID, newParentID, err)
	}
	return nil
}

func (c *Client) CreateDocument(ctx context.Context, title string) (*CreatedDocument, error) {
	doc, err := c.docs.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create document %q: %w", title, err)
	}
	return &CreatedDocument{
		ID:  doc.DocumentId,
		URL: DocumentURL(doc.DocumentId),
	}, nil
}

// InsertText inserts text at index. A new document body starts at index 1.
func (c *Client) InsertText(ctx context.Context, docID, text string, index int64) error {
	if text == "" {
		return nil
	}
	if index < 1 {
		index = 1
	}

	_, err := c.docs.Documents.BatchUpdate(docID, &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{
			{
				InsertText: &docs.InsertTextRequest{
					Location: &docs.Location{Index: index},
					Text:     text,
				},
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("insert text into %s: %w", docID, err)
	}
	return nil
}

// ReplaceContent clears the document body and writes text in its place.
func (c *Client) ReplaceContent(ctx context.Context, docID, text string) error {
	doc, err := RetryRead(ctx, c.retry, func() (*docs.Document, error) {
		return c.docs.Documents.Get(docID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("get document %s: %w", docID, err)
	}

	var requests []*docs.Request
	// The final newline of the body segment cannot be deleted.
	if end := bodyEndIndex(doc); end-1 > 1 {
		requests = append(requests, &docs.Request{
			DeleteContentRange: &docs.DeleteContentRangeRequest{
				Range: &docs.Range{StartIndex: 1, EndIndex: end - 1},
			},
		})
	}
	requests = append(requests, &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Location: &docs.Location{Index: 1},
			Text:     text,
		},
	})

	_, err = c.docs.Documents.BatchUpdate(docID, &docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("replace content of %s: %w", docID, err)
	}
	return nil
}

func bodyEndIndex(doc *docs.Document) int64 {
	if doc == nil || doc.Body == nil || len(doc.Body.Content) == 0 {
		return 1
	}
	return doc.Body.Content[len(doc.Body.Content)-1].EndIndex
}

func toItem(f *drivev3.File) Item {
	item := Item{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		Parents:  f.Parents,
	}
	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			item.ModifiedTime = t
		}
	}
	return item
}

func readBody(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxContentBytes))
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(data), nil
}

func escapeQuery(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}
