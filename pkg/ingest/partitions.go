package ingest

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/phuslu/log"
	"github.com/twmb/franz-go/pkg/kerr"

	"github.com/pliu/rankset/pkg/metrics"
)

var ErrTopicNotFound = errors.New("topic not found")

// initialisePartitions creates a window for every partition the topic has
// right now. Partitions added later are picked up when their first record
// arrives.
func (in *Ingester) initialisePartitions(ctx context.Context) error {
	partitions, err := in.getTopicPartitions(ctx)
	if err != nil {
		return err
	}
	log.Info().Msgf("Topic %s has %d partitions", in.topic, len(partitions))

	in.mu.Lock()
	defer in.mu.Unlock()
	for _, p := range partitions {
		if _, ok := in.partitionStats[p]; !ok {
			in.partitionStats[p] = in.newStats()
		}
	}
	for p := range in.partitionStats {
		if !slices.Contains(partitions, p) {
			partitions = append(partitions, p)
		}
	}
	slices.Sort(partitions)
	in.partitions = partitions
	metrics.MonitoredPartitionCount.Set(float64(len(in.partitions)))
	return nil
}

func (in *Ingester) getTopicPartitions(ctx context.Context) ([]int32, error) {
	topicDetails, err := in.admClient.ListTopics(ctx, in.topic)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic %s: %w", in.topic, err)
	}

	td, exists := topicDetails[in.topic]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTopicNotFound, in.topic)
	}
	if td.Err != nil {
		if errors.Is(td.Err, kerr.UnknownTopicOrPartition) {
			return nil, fmt.Errorf("%w: %s", ErrTopicNotFound, in.topic)
		}
		return nil, td.Err
	}

	partitions := td.Partitions.Numbers()
	slices.Sort(partitions)
	return partitions, nil
}
