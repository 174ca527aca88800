package notion

import (
	"context"
	"fmt"
	"strings"

	"donesync/internal/blocks"
	"donesync/internal/logging"
)

const (
	// MaxBlocksPerRequest is the host's ceiling on children per create or append call.
	MaxBlocksPerRequest = 100
	// MaxRichTextLength is the host's ceiling on characters per rich text run.
	MaxRichTextLength = 2000

	pageURLTemplate = "https://notion.so/%s"
)

// PageAPI is the subset of Client the Publisher drives.
type PageAPI interface {
	CreatePage(ctx context.Context, parentID, title string, children []Object) (*Page, error)
	AppendChildren(ctx context.Context, blockID string, children []Object) error
}

// Publisher creates a page and delivers its blocks in ceiling-sized batches.
type Publisher struct {
	api       PageAPI
	logger    logging.Logger
	batchSize int
}

// Result describes what reached the host.
type Result struct {
	PageID    string
	URL       string
	Total     int
	Delivered int
	Requests  int
}

func NewPublisher(api PageAPI, logger logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Publisher{
		api:       api,
		logger:    logger,
		batchSize: MaxBlocksPerRequest,
	}
}

// Plan returns the block count carried by each call for a document of n
// blocks: the creation call first, then every append call in order.
func Plan(n int) []int {
	sizes := []int{min(n, MaxBlocksPerRequest)}
	for i := MaxBlocksPerRequest; i < n; i += MaxBlocksPerRequest {
		end := i + MaxBlocksPerRequest
		if end > n {
			end = n
		}
		sizes = append(sizes, end-i)
	}
	return sizes
}

// Publish creates a child page of parentID titled title and appends the rest
// of doc. Calls are strictly sequential. A failed creation returns the host
// error; a failed append returns a *PartialPublishError alongside the result
// delivered so far.
func (p *Publisher) Publish(ctx context.Context, parentID, title string, doc blocks.Document) (*Result, error) {
	objs, err := EncodeDocument(doc)
	if err != nil {
		return nil, err
	}

	first := objs[:min(len(objs), p.batchSize)]
	p.logger.Debug("notion.create", "parent", parentID, "blocks", len(first))

	page, err := p.api.CreatePage(ctx, parentID, title, first)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	res := &Result{
		PageID:    page.ID,
		URL:       PageURL(page),
		Total:     len(objs),
		Delivered: len(first),
		Requests:  1,
	}
	log := p.logger.WithFields(map[string]any{"page_id": page.ID})
	log.Info("notion.created", "url", res.URL)

	for i := len(first); i < len(objs); i += p.batchSize {
		end := i + p.batchSize
		if end > len(objs) {
			end = len(objs)
		}
		batch := objs[i:end]

		log.Debug("notion.append", "batch", res.Requests, "blocks", len(batch))
		if err := p.api.AppendChildren(ctx, page.ID, batch); err != nil {
			log.Debug("notion.append failed", "delivered", res.Delivered, "total", res.Total, "error", err)
			return res, &PartialPublishError{
				PageID:    res.PageID,
				URL:       res.URL,
				Delivered: res.Delivered,
				Total:     res.Total,
				Err:       err,
			}
		}
		res.Delivered += len(batch)
		res.Requests++
	}

	return res, nil
}

// PageURL returns the URL the host reported, or one derived from the page id.
func PageURL(page *Page) string {
	if u := strings.TrimSpace(page.URL); u != "" {
		return u
	}
	return fmt.Sprintf(pageURLTemplate, strings.ReplaceAll(page.ID, "-", ""))
}
