package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/kxiao02/pptweaver/internal/compose"
	"github.com/kxiao02/pptweaver/internal/parser"
	"github.com/kxiao02/pptweaver/internal/schemacache"
	"github.com/kxiao02/pptweaver/internal/segment"
)

// Worker processes a single generation job: parse the document, load the
// template's induced schemas, segment, compose.
type Worker struct {
	cache  *schemacache.Store
	log    *slog.Logger
	segCfg segment.Config

	pdfFallbackPdftotext bool
}

func NewWorker(cache *schemacache.Store, log *slog.Logger, segCfg segment.Config, pdfFallback bool) *Worker {
	return &Worker{
		cache:                cache,
		log:                  log,
		segCfg:               segCfg,
		pdfFallbackPdftotext: pdfFallback,
	}
}

// Process runs the full generation pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "template_id", job.TemplateID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = w.pdfFallbackPdftotext
	}

	tree, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		tree.Title = job.Title
	}
	if len(tree.Children) == 0 {
		log.Warn("document has no content")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 2: Load induced schemas. Induction itself ran at template
	// registration; a missing mapping means the template was never
	// registered (or was invalidated since).
	job.SetStatus(StatusLoadingSchemas, "loading schemas")
	mapping, err := w.cache.Load(job.TemplateID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Error("template not registered", "template_id", job.TemplateID)
			job.AddError(fmt.Sprintf("template %s is not registered", job.TemplateID))
		} else {
			log.Error("schema load failed", "error", err)
			job.AddError(fmt.Sprintf("load schemas: %s", err))
		}
		job.SetStatus(StatusFailed, "loading schemas")
		return
	}

	// Phase 3: Segment
	job.SetStatus(StatusSegmenting, "segmenting")
	sections, segWarnings := segment.Split(tree, job.SlideCount, w.segCfg)
	job.SetSections(len(sections))
	log.Info("segmented document", "sections", len(sections), "target", job.SlideCount)

	if len(sections) == 0 {
		log.Warn("no sections produced")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "segmenting")
		return
	}

	// Phase 4: Compose. Cancellation mid-build discards everything.
	job.SetStatus(StatusComposing, "composing")
	pres, composeWarnings, err := compose.Build(ctx, mapping, sections, compose.Options{Title: job.Title})
	if err != nil {
		log.Error("compose failed", "error", err)
		job.AddError(fmt.Sprintf("compose: %s", err))
		job.SetStatus(StatusFailed, "composing")
		return
	}

	warnings := append(segWarnings, composeWarnings...)
	job.SetResult(pres, warnings)
	log.Info("generation complete", "slides", len(pres.Slides), "warnings", len(warnings))
	job.SetStatus(StatusCompleted, "done")
}
