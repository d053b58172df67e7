package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/utils"
)

type TranscriptHandler struct {
	interviews  services.InterviewService
	transcripts services.TranscriptService
	archive     services.ArchiveService // optional
	live        *interview.Registry
}

func NewTranscriptHandler(interviews services.InterviewService, transcripts services.TranscriptService, archive services.ArchiveService, live *interview.Registry) *TranscriptHandler {
	return &TranscriptHandler{interviews: interviews, transcripts: transcripts, archive: archive, live: live}
}

func (h *TranscriptHandler) List(c *gin.Context) {
	caps, ok := requireCaps(c)
	if !ok {
		return
	}

	iv, err := h.interviews.Get(c.Request.Context(), caps, c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var items []models.Utterance
	if ctrl, ok := h.live.Get(iv.InterviewID); ok && !ctrl.Ended() {
		items = ctrl.Utterances()
	} else {
		items, err = h.transcripts.List(c.Request.Context(), iv.UserID, iv.InterviewID)
		if err != nil {
			writeError(c, err)
			return
		}
	}
	if items == nil {
		items = []models.Utterance{}
	}
	c.JSON(http.StatusOK, gin.H{"interview_id": iv.InterviewID, "items": items})
}

// Download redirects to the archived transcript when one exists and serves
// the stored text otherwise.
func (h *TranscriptHandler) Download(c *gin.Context) {
	const op = "TranscriptHandler.Download"

	caps, ok := requireCaps(c)
	if !ok {
		return
	}

	iv, err := h.interviews.Get(c.Request.Context(), caps, c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if iv.Status != models.StatusCompleted {
		writeError(c, utils.E(utils.CodePrecondition, op, "interview is not completed", nil))
		return
	}

	if h.archive != nil {
		if url, err := h.archive.DownloadURL(c.Request.Context(), iv.InterviewID); err == nil {
			c.Redirect(http.StatusFound, url)
			return
		}
	}

	if strings.TrimSpace(iv.Transcript) == "" {
		writeError(c, utils.E(utils.CodeNotFound, op, "transcript is empty", utils.ErrEmptyTranscript))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="interview-`+iv.InterviewID+`.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(iv.Transcript))
}
