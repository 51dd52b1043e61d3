package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/coverletter-agent/internal/ingestion"
	"github.com/jonathan/coverletter-agent/internal/pipeline"
	"github.com/jonathan/coverletter-agent/internal/types"
)

// Envelope is the uniform response body of every session endpoint.
type Envelope struct {
	Success bool               `json:"success"`
	Data    any                `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
	Kind    pipeline.ErrorKind `json:"kind,omitempty"`
}

// CreateSessionRequest represents the optional request body for POST /sessions
type CreateSessionRequest struct {
	Locale string `json:"locale,omitempty" validate:"omitempty,oneof=ko en"`
}

// CreateSessionResponse is returned when a session is created
type CreateSessionResponse struct {
	SessionID string         `json:"session_id"`
	Token     string         `json:"token"`
	State     pipeline.State `json:"state"`
	Stage     int            `json:"stage"`
}

// AnalyzeRequest represents the request body for POST /sessions/{id}/analyze.
// An empty job URL is reported by the pipeline as invalid input in the session's locale.
type AnalyzeRequest struct {
	JobURL     string `json:"job_url" validate:"omitempty,url,max=2048"`
	CompanyURL string `json:"company_url,omitempty" validate:"omitempty,url,max=2048"`
}

// ResumeView is the résumé metadata returned to clients; the extracted text stays server-side.
type ResumeView struct {
	FileName   string `json:"file_name,omitempty"`
	Format     string `json:"format,omitempty"`
	Characters int    `json:"characters"`
}

// SessionView represents a session in API responses
type SessionView struct {
	SessionID  string                  `json:"session_id"`
	State      pipeline.State          `json:"state"`
	Stage      int                     `json:"stage"`
	Locale     pipeline.Locale         `json:"locale"`
	JobURL     string                  `json:"job_url,omitempty"`
	CompanyURL string                  `json:"company_url,omitempty"`
	Analysis   *types.JobAnalysis      `json:"analysis,omitempty"`
	Resume     *ResumeView             `json:"resume,omitempty"`
	Content    *types.GeneratedContent `json:"content,omitempty"`
	CreatedAt  string                  `json:"created_at"`
	UpdatedAt  string                  `json:"updated_at"`
}

func newSessionView(s *pipeline.Session) SessionView {
	snap := s.Snapshot
	view := SessionView{
		SessionID:  s.ID,
		State:      s.State(),
		Stage:      s.Stage(),
		Locale:     s.Locale,
		JobURL:     snap.JobURL,
		CompanyURL: snap.CompanyURL,
		Analysis:   snap.Analysis,
		Content:    snap.Content,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  s.UpdatedAt.Format(time.RFC3339),
	}
	if snap.Resume != nil {
		view.Resume = &ResumeView{
			FileName:   snap.Resume.FileName,
			Format:     snap.Resume.Format,
			Characters: snap.Resume.Characters,
		}
	}
	return view
}

// handleCreateSession starts a new wizard session and issues its bearer token
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validateRequest(&req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	locale := pipeline.ParseLocale(req.Locale)
	if req.Locale == "" {
		locale = pipeline.ParseLocale(r.Header.Get("Accept-Language"))
	}

	sess := pipeline.NewSession(locale)
	if err := s.store.Create(r.Context(), sess); err != nil {
		log.Printf("[session] create failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	token, err := s.tokens.GenerateToken(sess.ID)
	if err != nil {
		log.Printf("[session] token for %s failed: %v", sess.ID, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to issue session token")
		return
	}

	log.Printf("[session] created %s (locale %s)", sess.ID, sess.Locale)
	s.jsonResponse(w, http.StatusCreated, Envelope{
		Success: true,
		Data: CreateSessionResponse{
			SessionID: sess.ID,
			Token:     token,
			State:     sess.State(),
			Stage:     sess.Stage(),
		},
	})
}

// handleGetSession returns the current session view
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, Envelope{Success: true, Data: newSessionView(sess)})
}

// handleDeleteSession discards a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	mu := s.sessionLock(id)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.sessionError(w, err)
		return
	}
	s.locks.Delete(id)
	s.jsonResponse(w, http.StatusOK, Envelope{Success: true})
}

// handleAnalyze fetches and analyzes the job posting (wizard step 1)
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAnalyze(w, r)
	if !ok {
		return
	}
	s.runAction(w, r, func(ctx context.Context, sess *pipeline.Session) pipeline.Outcome {
		return s.orchestrator.Analyze(ctx, sess, req.JobURL, req.CompanyURL)
	})
}

// handleAnalyzeStream runs the analysis and streams progress as Server-Sent Events
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAnalyze(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	orch := s.orchestrator.WithProgress(func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", event); err != nil {
			log.Printf("[sse] progress write failed: %v", err)
		}
	})

	id := r.PathValue("id")
	env, _, err := s.act(r.Context(), id, func(ctx context.Context, sess *pipeline.Session) pipeline.Outcome {
		return orch.Analyze(ctx, sess, req.JobURL, req.CompanyURL)
	})
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	if err := sse.WriteEvent("result", env); err != nil {
		log.Printf("[sse] result write failed: %v", err)
		return
	}
	status := "failed"
	if env.Success {
		status = "completed"
	}
	sse.WriteComplete(id, status)
}

// handleAttachResume ingests an uploaded résumé (wizard step 2)
func (s *Server) handleAttachResume(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, ingestion.MaxUploadBytes+(1<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		kind := pipeline.KindEmptyUpload
		if errors.As(err, &tooLarge) {
			kind = pipeline.KindFileTooLarge
		}
		s.kindResponse(w, r, kind)
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(file, ingestion.MaxUploadBytes+1))
	if err != nil {
		log.Printf("[upload] read failed: %v", err)
		s.kindResponse(w, r, pipeline.KindEmptyUpload)
		return
	}

	upload := pipeline.Upload{FileName: header.Filename, Data: data}
	s.runAction(w, r, func(ctx context.Context, sess *pipeline.Session) pipeline.Outcome {
		return s.orchestrator.AttachResume(ctx, sess, upload)
	})
}

// handleGenerate composes the cover letter (wizard step 3)
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.runAction(w, r, func(ctx context.Context, sess *pipeline.Session) pipeline.Outcome {
		return s.orchestrator.Generate(ctx, sess)
	})
}

// handleBack returns the session to the previous step
func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.runAction(w, r, func(_ context.Context, sess *pipeline.Session) pipeline.Outcome {
		return s.orchestrator.Back(sess)
	})
}

// handleReset clears the session back to step 1
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.runAction(w, r, func(_ context.Context, sess *pipeline.Session) pipeline.Outcome {
		return s.orchestrator.Reset(sess)
	})
}

// handleCoverLetterMarkdown returns the raw Markdown for copy-to-clipboard
func (s *Server) handleCoverLetterMarkdown(w http.ResponseWriter, r *http.Request) {
	content, ok := s.coverLetter(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, content.CoverLetter); err != nil {
		log.Printf("Error writing cover letter: %v", err)
	}
}

// handleCoverLetterHTML returns the cover letter rendered as an HTML page
func (s *Server) handleCoverLetterHTML(w http.ResponseWriter, r *http.Request) {
	content, ok := s.coverLetter(w, r)
	if !ok {
		return
	}
	page, err := RenderCoverLetterHTML(content)
	if err != nil {
		log.Printf("[render] %s: %v", r.PathValue("id"), err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to render cover letter")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		log.Printf("Error writing cover letter: %v", err)
	}
}

func (s *Server) coverLetter(w http.ResponseWriter, r *http.Request) (*types.GeneratedContent, bool) {
	id := r.PathValue("id")
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.sessionError(w, err)
		return nil, false
	}
	if sess.Snapshot.Content == nil {
		s.errorResponse(w, HTTPStatus(&ErrNoCoverLetter{SessionID: id}), "No cover letter has been generated yet")
		return nil, false
	}
	return sess.Snapshot.Content, true
}

// runAction loads the session, runs one orchestrator action under the session lock, persists a
// successful result, and writes the envelope.
func (s *Server) runAction(w http.ResponseWriter, r *http.Request, action func(context.Context, *pipeline.Session) pipeline.Outcome) {
	env, status, err := s.act(r.Context(), r.PathValue("id"), action)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, status, env)
}

func (s *Server) act(ctx context.Context, id string, action func(context.Context, *pipeline.Session) pipeline.Outcome) (Envelope, int, error) {
	mu := s.sessionLock(id)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pipeline.ErrSessionNotFound) {
			// Pruned or deleted elsewhere.
			s.locks.Delete(id)
		}
		return Envelope{}, 0, err
	}

	outcome := action(ctx, sess)
	if !outcome.Success {
		return Envelope{
			Success: false,
			Data:    newSessionView(sess),
			Error:   outcome.Error,
			Kind:    outcome.Kind,
		}, StatusForKind(outcome.Kind), nil
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return Envelope{}, 0, err
	}
	return Envelope{Success: true, Data: newSessionView(sess)}, http.StatusOK, nil
}

// kindResponse reports a failure detected before the orchestrator runs, localized for the session.
func (s *Server) kindResponse(w http.ResponseWriter, r *http.Request, kind pipeline.ErrorKind) {
	locale := pipeline.DefaultLocale
	if sess, err := s.store.Get(r.Context(), r.PathValue("id")); err == nil {
		locale = sess.Locale
	}
	s.jsonResponse(w, StatusForKind(kind), Envelope{
		Success: false,
		Error:   pipeline.Message(kind, locale),
		Kind:    kind,
	})
}

func (s *Server) sessionError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[session] %v", err)
		s.errorResponse(w, status, "Internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

func (s *Server) decodeAnalyze(w http.ResponseWriter, r *http.Request) (AnalyzeRequest, bool) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return req, false
	}
	req.JobURL = strings.TrimSpace(req.JobURL)
	req.CompanyURL = strings.TrimSpace(req.CompanyURL)
	if err := s.validateRequest(&req); err != nil {
		s.jsonResponse(w, HTTPStatus(err), Envelope{
			Success: false,
			Error:   err.Error(),
			Kind:    pipeline.KindInvalidInput,
		})
		return req, false
	}
	return req, true
}

// validateRequest runs struct validation and reports the first failing field.
func (s *Server) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: fe.Field(), Message: "failed '" + fe.Tag() + "' check"}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// decodeOptionalJSON decodes r.Body into v, treating an empty body as an empty object.
func decodeOptionalJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
