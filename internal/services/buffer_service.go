package services

import (
	"context"
	"time"

	"github.com/yoockh/yoointerview/internal/models"
	mongorepo "github.com/yoockh/yoointerview/internal/repositories/mongo"
	"github.com/yoockh/yoointerview/internal/utils"
)

type BufferService interface {
	InsertAudioChunk(ctx context.Context, interviewID string, chunkIndex int64, audioURL, audioBase64 *string) (*models.AudioChunk, error)
	MarkSTT(ctx context.Context, interviewID string, chunkIndex int64, rawText string, confidence float64, status models.ChunkStatus, processingMS int64) error
	ListByInterview(ctx context.Context, interviewID string, limit int64) ([]models.AudioChunk, error)
}

type bufferService struct {
	chunks mongorepo.ChunkRepository
	ttl    time.Duration
}

func NewBufferService(chunks mongorepo.ChunkRepository, ttl time.Duration) BufferService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &bufferService{chunks: chunks, ttl: ttl}
}

func (s *bufferService) InsertAudioChunk(ctx context.Context, interviewID string, chunkIndex int64, audioURL, audioBase64 *string) (*models.AudioChunk, error) {
	const op = "BufferService.InsertAudioChunk"

	if interviewID == "" || chunkIndex <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id is required and chunk_index must be > 0", nil)
	}
	if audioURL == nil && audioBase64 == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "audio_base64 or audio_url required", nil)
	}

	now := time.Now().UTC()
	doc := &models.AudioChunk{
		InterviewID: interviewID,
		ChunkIndex:  chunkIndex,
		AudioURL:    audioURL,
		AudioBase64: audioBase64,
		STTStatus:   models.ChunkPending,
		Timestamp:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	if err := s.chunks.InsertChunk(ctx, doc); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to insert audio chunk", err)
	}
	return doc, nil
}

func (s *bufferService) MarkSTT(ctx context.Context, interviewID string, chunkIndex int64, rawText string, confidence float64, status models.ChunkStatus, processingMS int64) error {
	const op = "BufferService.MarkSTT"

	if interviewID == "" || chunkIndex <= 0 || status == "" {
		return utils.E(utils.CodeInvalidArgument, op, "interview_id, chunk_index (>0), and status are required", nil)
	}
	if err := s.chunks.UpdateSTT(ctx, interviewID, chunkIndex, rawText, confidence, status, processingMS); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update stt fields", err)
	}
	return nil
}

func (s *bufferService) ListByInterview(ctx context.Context, interviewID string, limit int64) ([]models.AudioChunk, error) {
	const op = "BufferService.ListByInterview"

	if interviewID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id is required", nil)
	}
	out, err := s.chunks.ListByInterview(ctx, interviewID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list audio chunks", err)
	}
	return out, nil
}
