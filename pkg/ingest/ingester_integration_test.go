//go:build integration

package ingest

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/pliu/rankset/pkg/clients"
	"github.com/pliu/rankset/pkg/config"
)

func TestIngesterEndToEnd(t *testing.T) {
	topic := fmt.Sprintf("rankset-ingest-%d", time.Now().UnixNano())
	cfg := &config.RanksetConfig{
		KafkaConfig:        &config.KafkaConfig{SeedBrokers: []string{"localhost:9092"}},
		Topic:              topic,
		PublishFrequencyMs: 100,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	producer, err := clients.GetFranzGoClient(cfg.KafkaConfig, "")
	require.NoError(t, err)
	defer producer.Close()
	adm := kadm.NewClient(producer)
	_, err = adm.CreateTopics(ctx, 2, 1, nil, topic)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = adm.DeleteTopics(context.Background(), topic)
	})

	in, err := NewIngesterFromConfig(cfg)
	require.NoError(t, err)
	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- in.Start(runCtx) }()

	// Partitions are discovered before anything is consumed.
	require.Eventually(t, func() bool {
		in.mu.RLock()
		defer in.mu.RUnlock()
		return len(in.partitions) == 2
	}, 10*time.Second, 50*time.Millisecond)
	time.Sleep(2 * time.Second)

	for i := range 100 {
		producer.Produce(ctx, &kgo.Record{Topic: topic, Value: []byte(strconv.Itoa(i))}, nil)
	}
	require.NoError(t, producer.Flush(ctx))

	require.Eventually(t, func() bool {
		return in.statsFor(0).Len()+in.statsFor(1).Len() == 100
	}, 15*time.Second, 100*time.Millisecond)

	stop()
	require.NoError(t, <-done)
}
