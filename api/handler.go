package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/server"
	"github.com/kbukum/speakerkit/service"
	"github.com/kbukum/speakerkit/speakerdb"
	"github.com/kbukum/speakerkit/storage"
	"github.com/kbukum/speakerkit/transcript"
)

// Backend is the service surface the handlers call.
type Backend interface {
	Diarize(ctx context.Context, in service.DiarizeInput) (*transcript.Diarization, error)
	Identify(ctx context.Context, in service.IdentifyInput) (*service.IdentifyResult, error)
	TranscribeDiarized(ctx context.Context, in service.TranscribeInput) (*service.TranscriptResult, error)
	TranscribeIdentified(ctx context.Context, in service.TranscribeInput) (*service.TranscriptResult, error)
	Register(ctx context.Context, in service.RegisterInput) (*service.EnrollResult, error)
	AddSample(ctx context.Context, speakerID string, in service.SampleInput) (*service.EnrollResult, error)
	ListSpeakers(ctx context.Context) (*service.SpeakerList, error)
	GetSpeaker(ctx context.Context, id string) (*speakerdb.Speaker, error)
	DeleteSpeaker(ctx context.Context, id string) error
	Stats(ctx context.Context) (*service.StatsResult, error)
	Health(ctx context.Context) *service.HealthReport
}

var _ Backend = (*service.Service)(nil)

// Info is reported by GET /.
type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	DocsURL     string `json:"docs_url"`
	HealthURL   string `json:"health_url"`
}

// Handler serves the API routes.
type Handler struct {
	backend Backend
	stager  *storage.Stager
	info    Info
	log     *logger.Logger
	now     func() time.Time
}

// NewHandler creates a Handler. Empty Info fields get defaults.
func NewHandler(backend Backend, stager *storage.Stager, info Info, log *logger.Logger) *Handler {
	if info.Name == "" {
		info.Name = "Speaker Diarization API"
	}
	if info.Description == "" {
		info.Description = "Speaker diarization, recognition and speaker-attributed transcription"
	}
	if info.DocsURL == "" {
		info.DocsURL = "/docs"
	}
	if info.HealthURL == "" {
		info.HealthURL = "/health"
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		backend: backend,
		stager:  stager,
		info:    info,
		log:     log.WithComponent("api"),
		now:     time.Now,
	}
}

func (h *Handler) elapsed(start time.Time) float64 {
	return transcript.RoundMillis(h.now().Sub(start).Seconds())
}

// fail renders err. Server-side failures are logged; client errors are not.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	if appErr, ok := errors.AsAppError(err); ok {
		status = appErr.HTTPStatus
	}
	if status >= http.StatusInternalServerError {
		h.log.WithContext(c.Request.Context()).Error(op+" failed", map[string]interface{}{
			"error":  err.Error(),
			"status": status,
		})
	}
	server.RespondWithError(c, err)
}

func (h *Handler) health(c *gin.Context) {
	server.RespondOK(c, h.backend.Health(c.Request.Context()))
}

func (h *Handler) root(c *gin.Context) {
	server.RespondOK(c, h.info)
}

type diarizedSegment struct {
	Speaker  string  `json:"speaker"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

type diarizeResponse struct {
	Segments       []diarizedSegment `json:"segments"`
	NumSpeakers    int               `json:"num_speakers"`
	AudioDuration  float64           `json:"audio_duration"`
	ProcessingTime float64           `json:"processing_time"`
	Exclusive      bool              `json:"exclusive"`
}

func (h *Handler) diarize(c *gin.Context) {
	start := h.now()
	hints, err := formHints(c)
	if err != nil {
		h.fail(c, "diarize", err)
		return
	}
	exclusive, err := formBool(c, "exclusive")
	if err != nil {
		h.fail(c, "diarize", err)
		return
	}
	upload, err := h.stage(c)
	if err != nil {
		h.fail(c, "diarize", err)
		return
	}
	defer h.stager.Release(upload)

	dr, err := h.backend.Diarize(c.Request.Context(), service.DiarizeInput{
		AudioPath: upload.Path,
		Hints:     hints,
		Exclusive: exclusive,
	})
	if err != nil {
		h.fail(c, "diarize", err)
		return
	}

	segments := make([]diarizedSegment, 0, len(dr.Segments))
	for _, s := range dr.Segments {
		segments = append(segments, diarizedSegment{Speaker: s.Speaker, Start: s.Start, End: s.End, Duration: s.Duration()})
	}
	server.RespondOK(c, diarizeResponse{
		Segments:       segments,
		NumSpeakers:    dr.NumSpeakers,
		AudioDuration:  dr.AudioDuration,
		ProcessingTime: h.elapsed(start),
		Exclusive:      dr.Exclusive,
	})
}

type enrollResponse struct {
	*service.EnrollResult
	Message string `json:"message"`
}

func (h *Handler) registerSpeaker(c *gin.Context) {
	extract, err := formBool(c, "extract_segments")
	if err != nil {
		h.fail(c, "register speaker", err)
		return
	}
	upload, err := h.stage(c)
	if err != nil {
		h.fail(c, "register speaker", err)
		return
	}
	defer h.stager.Release(upload)

	res, err := h.backend.Register(c.Request.Context(), service.RegisterInput{
		SampleInput: service.SampleInput{AudioPath: upload.Path, Source: upload.Name, ExtractSegments: extract},
		Name:        c.PostForm("speaker_name"),
	})
	if err != nil {
		h.fail(c, "register speaker", err)
		return
	}
	server.RespondOK(c, enrollResponse{
		EnrollResult: res,
		Message:      fmt.Sprintf("Speaker registered successfully with %d embedding(s)", res.Added),
	})
}

func (h *Handler) addSample(c *gin.Context) {
	extract, err := formBool(c, "extract_segments")
	if err != nil {
		h.fail(c, "add sample", err)
		return
	}
	upload, err := h.stage(c)
	if err != nil {
		h.fail(c, "add sample", err)
		return
	}
	defer h.stager.Release(upload)

	res, err := h.backend.AddSample(c.Request.Context(), c.Param("id"), service.SampleInput{
		AudioPath:       upload.Path,
		Source:          upload.Name,
		ExtractSegments: extract,
	})
	if err != nil {
		h.fail(c, "add sample", err)
		return
	}
	server.RespondOK(c, enrollResponse{
		EnrollResult: res,
		Message:      fmt.Sprintf("Added %d new embedding(s) to speaker", res.Added),
	})
}

func (h *Handler) listSpeakers(c *gin.Context) {
	list, err := h.backend.ListSpeakers(c.Request.Context())
	if err != nil {
		h.fail(c, "list speakers", err)
		return
	}
	server.RespondOK(c, list)
}

func (h *Handler) getSpeaker(c *gin.Context) {
	sp, err := h.backend.GetSpeaker(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get speaker", err)
		return
	}
	server.RespondOK(c, sp)
}

func (h *Handler) deleteSpeaker(c *gin.Context) {
	id := c.Param("id")
	if err := h.backend.DeleteSpeaker(c.Request.Context(), id); err != nil {
		h.fail(c, "delete speaker", err)
		return
	}
	server.RespondOK(c, gin.H{"message": fmt.Sprintf("Speaker %s deleted successfully", id)})
}

type identifyResponse struct {
	*service.IdentifyResult
	ProcessingTime float64 `json:"processing_time"`
}

func (h *Handler) identify(c *gin.Context) {
	start := h.now()
	hints, err := formHints(c)
	if err != nil {
		h.fail(c, "identify", err)
		return
	}
	threshold, err := formFloat(c, "similarity_threshold")
	if err != nil {
		h.fail(c, "identify", err)
		return
	}
	upload, err := h.stage(c)
	if err != nil {
		h.fail(c, "identify", err)
		return
	}
	defer h.stager.Release(upload)

	res, err := h.backend.Identify(c.Request.Context(), service.IdentifyInput{
		AudioPath: upload.Path,
		Hints:     hints,
		Threshold: threshold,
	})
	if err != nil {
		h.fail(c, "identify", err)
		return
	}
	server.RespondOK(c, identifyResponse{IdentifyResult: res, ProcessingTime: h.elapsed(start)})
}

type transcriptResponse struct {
	*transcript.Transcript
	ProcessingTime float64 `json:"processing_time"`
}

type identifiedTranscriptResponse struct {
	*transcript.Transcript
	Mapping        map[string]*string `json:"speaker_mapping"`
	NumIdentified  int                `json:"num_identified"`
	ProcessingTime float64            `json:"processing_time"`
}

func (h *Handler) transcribeInput(c *gin.Context) (service.TranscribeInput, error) {
	var in service.TranscribeInput
	var err error
	if in.Hints, err = formHints(c); err != nil {
		return in, err
	}
	if in.Threshold, err = formFloat(c, "similarity_threshold"); err != nil {
		return in, err
	}
	in.Language = c.PostForm("language")
	return in, nil
}

func (h *Handler) transcribeDiarized(c *gin.Context) {
	start := h.now()
	in, err := h.transcribeInput(c)
	if err != nil {
		h.fail(c, "transcribe", err)
		return
	}
	upload, err := h.stage(c)
	if err != nil {
		h.fail(c, "transcribe", err)
		return
	}
	defer h.stager.Release(upload)
	in.AudioPath = upload.Path
	in.Threshold = nil

	res, err := h.backend.TranscribeDiarized(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "transcribe", err)
		return
	}
	server.RespondOK(c, transcriptResponse{Transcript: res.Transcript, ProcessingTime: h.elapsed(start)})
}

func (h *Handler) transcribeIdentified(c *gin.Context) {
	start := h.now()
	in, err := h.transcribeInput(c)
	if err != nil {
		h.fail(c, "transcribe", err)
		return
	}
	upload, err := h.stage(c)
	if err != nil {
		h.fail(c, "transcribe", err)
		return
	}
	defer h.stager.Release(upload)
	in.AudioPath = upload.Path

	res, err := h.backend.TranscribeIdentified(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "transcribe", err)
		return
	}
	mapping := res.Mapping
	if mapping == nil {
		mapping = map[string]*string{}
	}
	server.RespondOK(c, identifiedTranscriptResponse{
		Transcript:     res.Transcript,
		Mapping:        mapping,
		NumIdentified:  res.NumIdentified,
		ProcessingTime: h.elapsed(start),
	})
}

func (h *Handler) stats(c *gin.Context) {
	st, err := h.backend.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, "stats", err)
		return
	}
	server.RespondOK(c, st)
}
