package services

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	AudioStream    = "audio:stream"
	FeedbackStream = "feedback:stream"
)

// STTChannel carries recognition results for one interview.
func STTChannel(interviewID string) string { return "interview:" + interviewID + ":stt" }

// StatusChannel carries chunk and feedback progress for one interview.
func StatusChannel(interviewID string) string { return "interview:" + interviewID + ":status" }

type FeedbackQueue interface {
	Enqueue(ctx context.Context, interviewID string) error
}

type streamQueue struct {
	rdb    *redis.Client
	stream string
}

func NewFeedbackQueue(rdb *redis.Client) FeedbackQueue {
	return &streamQueue{rdb: rdb, stream: FeedbackStream}
}

func (q *streamQueue) Enqueue(ctx context.Context, interviewID string) error {
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{
			"interview_id": interviewID,
			"ts_unix":      strconv.FormatInt(time.Now().UTC().Unix(), 10),
		},
	}).Err()
}
