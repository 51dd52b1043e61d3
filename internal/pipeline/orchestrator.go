package pipeline

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/coverletter-agent/internal/composition"
	"github.com/jonathan/coverletter-agent/internal/extraction"
	"github.com/jonathan/coverletter-agent/internal/fetch"
	"github.com/jonathan/coverletter-agent/internal/ingestion"
	"github.com/jonathan/coverletter-agent/internal/types"
)

// Analyzer extracts hiring criteria from job and company text.
type Analyzer interface {
	Analyze(ctx context.Context, jobText, companyText string) (*types.JobAnalysis, error)
}

// Writer composes a cover letter.
type Writer interface {
	Compose(ctx context.Context, analysis *types.JobAnalysis, resumeText string) (*types.GeneratedContent, error)
}

// ResumeReader turns an uploaded file into résumé text.
type ResumeReader func(ctx context.Context, data []byte, fileName string) (*types.Resume, error)

// Upload is a résumé file submitted by the user.
type Upload struct {
	FileName string
	Data     []byte
}

// Outcome is the uniform result of every orchestrator action.
type Outcome struct {
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
}

// Progress steps.
const (
	StepFetch   = "fetch"
	StepExtract = "extract"
	StepIngest  = "ingest"
	StepCompose = "compose"
)

// ProgressEvent represents a progress update during an orchestrator action
type ProgressEvent struct {
	SessionID string `json:"session_id"`
	Stage     int    `json:"stage"`
	Step      string `json:"step"`
	Message   string `json:"message"`
	Content   any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options configures an Orchestrator.
type Options struct {
	FetchTimeout      time.Duration
	CompletionTimeout time.Duration
	ReadResume        ResumeReader
	OnProgress        ProgressCallback
}

// Default per-call timeouts.
const (
	DefaultFetchTimeout      = 30 * time.Second
	DefaultCompletionTimeout = 60 * time.Second
)

// Orchestrator drives sessions through the wizard. It holds no session state of its own, so one
// Orchestrator can serve any number of sessions.
type Orchestrator struct {
	fetcher  fetch.Source
	analyzer Analyzer
	writer   Writer
	opts     Options
}

// NewOrchestrator wires the pipeline stages.
func NewOrchestrator(fetcher fetch.Source, analyzer Analyzer, writer Writer, opts Options) *Orchestrator {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.CompletionTimeout <= 0 {
		opts.CompletionTimeout = DefaultCompletionTimeout
	}
	if opts.ReadResume == nil {
		opts.ReadResume = ingestion.ExtractResumeText
	}
	return &Orchestrator{fetcher: fetcher, analyzer: analyzer, writer: writer, opts: opts}
}

// WithProgress returns a copy of the orchestrator that reports progress to cb.
func (o *Orchestrator) WithProgress(cb ProgressCallback) *Orchestrator {
	out := *o
	out.opts.OnProgress = cb
	return &out
}

// Analyze fetches the job posting and optional company page concurrently, extracts the hiring
// criteria, and moves the session to Analyzed. Only an empty job posting blocks the analysis.
func (o *Orchestrator) Analyze(ctx context.Context, s *Session, jobURL, companyURL string) Outcome {
	if err := CanApply(s.State(), EventAnalysisCompleted); err != nil {
		return o.fail(s, KindInvalidTransition, err)
	}
	jobURL = strings.TrimSpace(jobURL)
	companyURL = strings.TrimSpace(companyURL)
	if jobURL == "" {
		return o.fail(s, KindInvalidInput, errors.New("job URL is required"))
	}

	o.emit(s, StepFetch, "Fetching job posting", nil)
	jobText, companyText := o.fetchBoth(ctx, jobURL, companyURL)
	log.Printf("[PIPELINE] session %s: job text %d chars, company text %d chars", s.ID, len([]rune(jobText)), len([]rune(companyText)))
	if jobText == "" {
		return o.fail(s, KindMissingContent, extraction.ErrMissingContent)
	}

	o.emit(s, StepExtract, "Analyzing job posting", nil)
	extractCtx, cancel := context.WithTimeout(ctx, o.opts.CompletionTimeout)
	defer cancel()
	analysis, err := o.analyzer.Analyze(extractCtx, jobText, companyText)
	if err != nil {
		if errors.Is(err, extraction.ErrMissingContent) {
			return o.fail(s, KindMissingContent, err)
		}
		return o.fail(s, KindExtractionFailed, err)
	}

	if err := s.apply(AnalysisCompleted(jobURL, companyURL, analysis)); err != nil {
		return o.fail(s, KindInvalidTransition, err)
	}
	o.emit(s, StepExtract, "Analysis complete", analysis)
	return Outcome{Success: true}
}

// fetchBoth runs both fetches and joins them. Fetches never fail, so the join always completes
// with two strings; an empty company URL is not fetched.
func (o *Orchestrator) fetchBoth(ctx context.Context, jobURL, companyURL string) (jobText, companyText string) {
	var g errgroup.Group
	g.Go(func() error {
		fetchCtx, cancel := context.WithTimeout(ctx, o.opts.FetchTimeout)
		defer cancel()
		jobText = o.fetcher.Content(fetchCtx, jobURL)
		return nil
	})
	if companyURL != "" {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, o.opts.FetchTimeout)
			defer cancel()
			companyText = o.fetcher.Content(fetchCtx, companyURL)
			return nil
		})
	}
	_ = g.Wait()
	return jobText, companyText
}

// AttachResume ingests an uploaded résumé. An upload with no text leaves the session unchanged.
func (o *Orchestrator) AttachResume(ctx context.Context, s *Session, upload Upload) Outcome {
	if err := CanApply(s.State(), EventResumeAttached); err != nil {
		return o.fail(s, KindInvalidTransition, err)
	}

	o.emit(s, StepIngest, "Reading résumé", nil)
	resume, err := o.opts.ReadResume(ctx, upload.Data, upload.FileName)
	switch {
	case errors.Is(err, ingestion.ErrEmptyUpload):
		return o.fail(s, KindEmptyUpload, err)
	case errors.Is(err, ingestion.ErrTooLarge):
		return o.fail(s, KindFileTooLarge, err)
	case errors.Is(err, ingestion.ErrUnsupportedFormat):
		return o.fail(s, KindUnsupportedFormat, err)
	case err != nil:
		return o.fail(s, KindUnreadableUpload, err)
	case resume.IsEmpty():
		return o.fail(s, KindEmptyUpload, ingestion.ErrEmptyUpload)
	}

	if err := s.apply(ResumeAttached(resume)); err != nil {
		return o.fail(s, KindInvalidTransition, err)
	}
	o.emit(s, StepIngest, "Résumé attached", resume)
	return Outcome{Success: true}
}

// Generate composes a cover letter from the session's analysis and résumé. Each call replaces
// the previously generated content.
func (o *Orchestrator) Generate(ctx context.Context, s *Session) Outcome {
	if err := CanApply(s.State(), EventContentGenerated); err != nil {
		return o.fail(s, KindInvalidTransition, err)
	}
	snap := s.Snapshot
	if snap.Resume.IsEmpty() {
		return o.fail(s, KindMissingResume, composition.ErrMissingResume)
	}

	o.emit(s, StepCompose, "Writing cover letter", nil)
	composeCtx, cancel := context.WithTimeout(ctx, o.opts.CompletionTimeout)
	defer cancel()
	content, err := o.writer.Compose(composeCtx, snap.Analysis, snap.Resume.Text)
	switch {
	case errors.Is(err, composition.ErrMissingAnalysis):
		return o.fail(s, KindInvalidTransition, err)
	case errors.Is(err, composition.ErrMissingResume):
		return o.fail(s, KindMissingResume, err)
	case err != nil:
		return o.fail(s, KindCompositionFailed, err)
	}

	if err := s.apply(ContentGenerated(content)); err != nil {
		return o.fail(s, KindInvalidTransition, err)
	}
	o.emit(s, StepCompose, "Cover letter ready", content)
	return Outcome{Success: true}
}

// Back returns the session to the previous wizard step.
func (o *Orchestrator) Back(s *Session) Outcome {
	if err := s.apply(GoBack()); err != nil {
		return o.fail(s, KindInvalidTransition, err)
	}
	return Outcome{Success: true}
}

// Reset discards everything the session captured.
func (o *Orchestrator) Reset(s *Session) Outcome {
	if err := s.apply(Reset()); err != nil {
		return o.fail(s, KindInvalidTransition, err)
	}
	return Outcome{Success: true}
}

func (o *Orchestrator) fail(s *Session, kind ErrorKind, cause error) Outcome {
	log.Printf("[PIPELINE] session %s (%s): %s: %v", s.ID, s.State(), kind, cause)
	return Outcome{Success: false, Error: Message(kind, s.Locale), Kind: kind}
}

func (o *Orchestrator) emit(s *Session, step, message string, content any) {
	if o.opts.OnProgress != nil {
		o.opts.OnProgress(ProgressEvent{
			SessionID: s.ID,
			Stage:     s.Stage(),
			Step:      step,
			Message:   message,
			Content:   content,
		})
	}
}
