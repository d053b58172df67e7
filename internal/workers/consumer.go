package workers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// publisher is the pub/sub half of *redis.Client used by the handlers.
type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// streamGroup reads one redis stream through a consumer group with n
// consumers and acks every message after handle returns.
type streamGroup struct {
	rdb            *redis.Client
	stream         string
	group          string
	consumerPrefix string
	n              int
	log            *logrus.Logger
	handle         func(ctx context.Context, msg redis.XMessage)
}

func (g *streamGroup) start(ctx context.Context) {
	if err := g.rdb.XGroupCreateMkStream(ctx, g.stream, g.group, "0").Err(); err != nil && !isBusyGroup(err) {
		g.log.WithError(err).WithField("stream", g.stream).Warn("consumer group create failed")
	}
	for i := 0; i < g.n; i++ {
		go g.run(ctx, g.consumerPrefix+"-"+strconv.Itoa(i+1))
	}
}

func (g *streamGroup) run(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := g.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    g.group,
			Consumer: consumer,
			Streams:  []string{g.stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			g.log.WithError(err).WithField("stream", g.stream).Debug("xreadgroup failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				g.handle(ctx, msg)
				_ = g.rdb.XAck(ctx, g.stream, g.group, msg.ID).Err()
			}
		}
	}
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

func field(msg redis.XMessage, k string) string {
	v, ok := msg.Values[k]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
