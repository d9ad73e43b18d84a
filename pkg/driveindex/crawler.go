package driveindex

import (
	"context"
	"fmt"
	"time"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/pkg/drive"
)

// CrawlError reports the folder whose listing failed. The crawl is aborted and
// no partial index is produced.
type CrawlError struct {
	FolderID string
	Err      error
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl failed listing folder %s: %v", e.FolderID, e.Err)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}

// Crawler walks the Drive tree breadth-first from the root.
type Crawler struct {
	retry       drive.RetryPolicy
	pageTimeout time.Duration
	logger      logger.ILogger
}

// NewCrawler bounds every page request by pageTimeout (zero disables it).
func NewCrawler(retry drive.RetryPolicy, pageTimeout time.Duration, log logger.ILogger) *Crawler {
	return &Crawler{retry: retry, pageTimeout: pageTimeout, logger: log}
}

type queuedFolder struct {
	id   string
	path string
}

// Crawl returns every non-trashed item reachable from the root with its path
// set. All pages of a folder are collected before the next folder is visited.
func (c *Crawler) Crawl(ctx context.Context, lister drive.Lister) ([]drive.Item, error) {
	items := make([]drive.Item, 0)
	queue := []queuedFolder{{id: drive.RootFolderID}}
	visited := map[string]bool{drive.RootFolderID: true}
	folders := 0

	for len(queue) > 0 {
		folder := queue[0]
		queue = queue[1:]
		folders++

		pageToken := ""
		for {
			if err := ctx.Err(); err != nil {
				return nil, &CrawlError{FolderID: folder.id, Err: err}
			}

			token := pageToken
			page, err := drive.RetryRead(ctx, c.retry, func() (*drive.Page, error) {
				return c.listPage(ctx, lister, folder.id, token)
			})
			if err != nil {
				c.logger.Error(constant.ModuleCrawler, "Folder listing failed", map[string]interface{}{
					"folder_id": folder.id,
					"error":     err,
				})
				return nil, &CrawlError{FolderID: folder.id, Err: err}
			}

			for _, item := range page.Items {
				if folder.path == "" {
					item.Path = item.Name
				} else {
					item.Path = folder.path + "/" + item.Name
				}
				items = append(items, item)

				if item.IsFolder() && !visited[item.ID] {
					visited[item.ID] = true
					queue = append(queue, queuedFolder{id: item.ID, path: item.Path})
				}
			}

			pageToken = page.NextPageToken
			if pageToken == "" {
				break
			}
		}
	}

	c.logger.Info(constant.ModuleCrawler, "Crawl finished", map[string]interface{}{
		"items":   len(items),
		"folders": folders,
	})
	return items, nil
}

func (c *Crawler) listPage(ctx context.Context, lister drive.Lister, folderID, pageToken string) (*drive.Page, error) {
	if c.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.pageTimeout)
		defer cancel()
	}
	page, err := lister.ListChildren(ctx, folderID, pageToken)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return &drive.Page{}, nil
	}
	return page, nil
}
