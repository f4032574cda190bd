//go:build integration

package clients

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/pliu/rankset/pkg/config"
	"github.com/pliu/rankset/pkg/multiset"
)

const kafkaBroker = "localhost:9092"

func TestKafka_ConsumeSamplesIntoMultiset(t *testing.T) {
	cfg := &config.KafkaConfig{SeedBrokers: []string{kafkaBroker}}
	topic := fmt.Sprintf("rankset-clients-%d", time.Now().UnixNano())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	producer, err := GetFranzGoClient(cfg, "")
	require.NoError(t, err)
	defer producer.Close()
	adm := kadm.NewClient(producer)
	_, err = adm.CreateTopics(ctx, 3, 1, nil, topic)
	require.NoError(t, err)
	defer func() {
		if _, err := adm.DeleteTopics(context.Background(), topic); err != nil {
			t.Logf("failed to delete topic: %v", err)
		}
	}()

	consumer, admin, err := NewConsumerClients(cfg, "", topic)
	require.NoError(t, err)
	defer consumer.Close()
	defer admin.Close()

	details, err := admin.ListTopics(ctx, topic)
	require.NoError(t, err)
	require.Len(t, details[topic].Partitions, 3)

	// The consumer starts at the end of the log; let it settle first.
	consumer.PollFetches(ctxWithTimeout(t, 2*time.Second))

	const numSamples = 300
	for i := range numSamples {
		producer.Produce(ctx, &kgo.Record{Topic: topic, Value: []byte(strconv.Itoa(i % 100))}, nil)
	}
	require.NoError(t, producer.Flush(ctx))

	ms := multiset.New[int64]()
	for ms.Len() < numSamples {
		fetches := consumer.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			break
		}
		fetches.EachError(func(topic string, p int32, err error) {
			assert.NoError(t, fmt.Errorf("kafka fetch error: topic %s, partition %d: %w", topic, p, err))
		})
		fetches.EachRecord(func(r *kgo.Record) {
			v, err := strconv.ParseInt(string(r.Value), 10, 64)
			require.NoError(t, err)
			require.NoError(t, ms.Insert(v))
		})
	}
	require.Equal(t, numSamples, ms.Len())
	require.Equal(t, 3, ms.Count(42))
	median, ok := ms.Select(numSamples / 2)
	require.True(t, ok)
	require.Equal(t, int64(50), median.Key())
}

func ctxWithTimeout(t *testing.T, d time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}
