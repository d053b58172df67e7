package mongo

import (
	"context"
	"time"

	"github.com/yoockh/yoointerview/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ChunkRepository interface {
	InsertChunk(ctx context.Context, c *models.AudioChunk) error
	UpdateSTT(ctx context.Context, interviewID string, chunkIndex int64, rawText string, confidence float64, status models.ChunkStatus, processingMS int64) error
	ListByInterview(ctx context.Context, interviewID string, limit int64) ([]models.AudioChunk, error)
}

type chunkRepo struct {
	col *mongo.Collection
}

func NewChunkRepo(db *mongo.Database) ChunkRepository {
	return &chunkRepo{col: db.Collection("audio_chunks")}
}

func (r *chunkRepo) InsertChunk(ctx context.Context, c *models.AudioChunk) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	if c.STTStatus == "" {
		c.STTStatus = models.ChunkPending
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *chunkRepo) UpdateSTT(ctx context.Context, interviewID string, chunkIndex int64, rawText string, confidence float64, status models.ChunkStatus, processingMS int64) error {
	set := bson.M{
		"raw_text":       rawText,
		"stt_confidence": confidence,
		"stt_status":     status,
	}
	if processingMS > 0 {
		set["processing_time_ms"] = processingMS
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID, "chunk_index": chunkIndex},
		bson.M{"$set": set},
	)
	return err
}

func (r *chunkRepo) ListByInterview(ctx context.Context, interviewID string, limit int64) ([]models.AudioChunk, error) {
	if limit <= 0 {
		limit = 200
	}

	cur, err := r.col.Find(ctx,
		bson.M{"interview_id": interviewID},
		options.Find().
			SetSort(bson.D{{Key: "chunk_index", Value: 1}}).
			SetLimit(limit).
			SetProjection(bson.M{"audio_base64": 0}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AudioChunk
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
