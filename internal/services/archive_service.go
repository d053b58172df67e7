package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yoockh/yoointerview/internal/models"
	pgrepo "github.com/yoockh/yoointerview/internal/repositories/postgres"
	"github.com/yoockh/yoointerview/internal/storage"
	"github.com/yoockh/yoointerview/internal/utils"
)

const downloadURLTTL = 15 * time.Minute

type ArchiveService interface {
	// Archive uploads the flattened transcript of a completed interview.
	Archive(ctx context.Context, iv models.Interview) (*models.TranscriptArchive, error)
	// DownloadURL returns a short-lived URL for the latest archived
	// transcript of interviewID.
	DownloadURL(ctx context.Context, interviewID string) (string, error)
}

type archiveService struct {
	repo     pgrepo.ArchiveRepository
	uploader storage.Uploader
	signer   storage.Signer
}

func NewArchiveService(repo pgrepo.ArchiveRepository, uploader storage.Uploader, signer storage.Signer) ArchiveService {
	return &archiveService{repo: repo, uploader: uploader, signer: signer}
}

func objectName(iv models.Interview) string {
	return fmt.Sprintf("transcripts/%s/%s.txt", iv.UserID, iv.InterviewID)
}

func (s *archiveService) Archive(ctx context.Context, iv models.Interview) (*models.TranscriptArchive, error) {
	const op = "ArchiveService.Archive"

	if iv.UserID == "" || iv.InterviewID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and interview_id are required", nil)
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeInternal, op, "uploader is not configured", nil)
	}
	if strings.TrimSpace(iv.Transcript) == "" {
		return nil, utils.E(utils.CodePrecondition, op, "transcript is empty", utils.ErrEmptyTranscript)
	}

	storedPath, err := s.uploader.Upload(ctx, objectName(iv), "text/plain; charset=utf-8", strings.NewReader(iv.Transcript))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload transcript", err)
	}

	row := &models.TranscriptArchive{
		ID:          uuid.NewString(),
		UserID:      iv.UserID,
		InterviewID: iv.InterviewID,
		ObjectPath:  storedPath,
		SizeBytes:   int64(len(iv.Transcript)),
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist archive metadata", err)
	}
	return row, nil
}

func (s *archiveService) DownloadURL(ctx context.Context, interviewID string) (string, error) {
	const op = "ArchiveService.DownloadURL"

	if s.signer == nil {
		return "", utils.E(utils.CodePrecondition, op, "signed urls are not configured", nil)
	}
	row, err := s.repo.LatestByInterview(ctx, interviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", utils.E(utils.CodeNotFound, op, "transcript not archived", err)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to load archive", err)
	}

	url, err := s.signer.SignedGetURL(ctx, row.ObjectPath, downloadURLTTL)
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "failed to sign url", err)
	}
	return url, nil
}
