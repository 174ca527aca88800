package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"donesync/internal/blocks"
	"donesync/internal/logging"
	"donesync/internal/notion"
	"donesync/internal/source"
	"donesync/internal/storage"
)

const (
	CodeCreateFailed = "NOTION_CREATE_FAILED"
	CodeAppendFailed = "NOTION_APPEND_FAILED"
)

// Sync publishes one summary file as a child page.
type Sync struct {
	Publisher *notion.Publisher
	History   storage.HistoryStore // optional
	Logger    logging.Logger
	Progress  io.Writer
	ParentID  string
	DryRun    bool
}

// Outcome is what a Run produced.
type Outcome struct {
	Title  string
	Blocks int
	Plan   []int
	Result *notion.Result
}

func (s *Sync) Run(ctx context.Context, path, title string) (*Outcome, error) {
	summary, err := s.loadStage(path, title)
	if err != nil {
		return nil, err
	}

	doc := s.convertStage(summary)
	out := &Outcome{
		Title:  summary.Title,
		Blocks: len(doc),
		Plan:   notion.Plan(len(doc)),
	}

	if s.DryRun {
		s.printf("🧪 Dry run: 1 create call + %d append calls %v\n", len(out.Plan)-1, out.Plan)
		return out, nil
	}

	res, err := s.publishStage(ctx, summary, doc)
	out.Result = res
	s.recordStage(ctx, summary, len(doc), res, err)
	return out, err
}

func (s *Sync) loadStage(path, title string) (*source.Summary, error) {
	summary, err := source.Load(path, title)
	if err != nil {
		return nil, err
	}
	s.printf("📄 Loaded %s (title %q)\n", summary.Path, summary.Title)
	return summary, nil
}

func (s *Sync) convertStage(summary *source.Summary) blocks.Document {
	start := time.Now()
	doc := blocks.Convert(summary.Body)
	s.logger().Debug("convert.done", "blocks", len(doc), "elapsed", time.Since(start))
	s.printf("🧱 Converted into %d blocks\n", len(doc))
	return doc
}

func (s *Sync) publishStage(ctx context.Context, summary *source.Summary, doc blocks.Document) (*notion.Result, error) {
	s.printf("🚀 Publishing to Notion...\n")
	res, err := s.Publisher.Publish(ctx, s.ParentID, summary.Title, doc)
	if err == nil {
		s.printf("✅ Created page with %d blocks in %d requests\n", res.Delivered, res.Requests)
		return res, nil
	}

	var partial *notion.PartialPublishError
	if errors.As(err, &partial) {
		s.printf("⚠️  Page created at %s but only %d of %d blocks were appended\n", partial.URL, partial.Delivered, partial.Total)
		return res, goerrors.Wrap(err, goerrors.CategoryCommand, "notion block append failed").WithTextCode(CodeAppendFailed)
	}
	return res, goerrors.Wrap(err, goerrors.CategoryCommand, "notion page creation failed").WithTextCode(CodeCreateFailed)
}

// recordStage never fails the run; ledger problems are only logged.
func (s *Sync) recordStage(ctx context.Context, summary *source.Summary, total int, res *notion.Result, pubErr error) {
	if s.History == nil {
		return
	}

	e := storage.Entry{
		Title:      summary.Title,
		SourcePath: summary.Path,
		ParentID:   s.ParentID,
		Total:      total,
		Status:     storage.StatusOK,
	}
	if res != nil {
		e.PageID = res.PageID
		e.URL = res.URL
		e.Delivered = res.Delivered
	}
	if pubErr != nil {
		e.Status = storage.StatusFailed
		if res != nil {
			e.Status = storage.StatusPartial
		}
		e.Error = pubErr.Error()
	}

	if _, err := s.History.Record(ctx, e); err != nil {
		s.printf("⚠️  History not recorded: %v\n", err)
	}
}

func (s *Sync) printf(format string, args ...any) {
	if s.Progress == nil {
		return
	}
	fmt.Fprintf(s.Progress, format, args...)
}

func (s *Sync) logger() logging.Logger {
	if s.Logger == nil {
		return logging.NoOp()
	}
	return s.Logger
}
