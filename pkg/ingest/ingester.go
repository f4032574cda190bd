package ingest

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/pliu/rankset/pkg/clients"
	"github.com/pliu/rankset/pkg/config"
	"github.com/pliu/rankset/pkg/metrics"
	"github.com/pliu/rankset/pkg/multiset"
	"github.com/pliu/rankset/pkg/stats"
)

// Ingester consumes integer samples from every partition of a topic and keeps
// a sliding window of them per partition.
type Ingester struct {
	consumerClient   clients.KgoClient
	admClient        clients.KadmClient
	topic            string
	instanceID       string
	windowSize       time.Duration
	publishFrequency time.Duration
	quantiles        []float64
	statsOpts        []multiset.Option
	clock            clock.Clock

	mu             sync.RWMutex
	partitions     []int32
	partitionStats map[int32]*stats.Stats
}

func NewIngesterWithClients(cfg *config.RanksetConfig, consumerClient clients.KgoClient, admClient clients.KadmClient, instanceID string) *Ingester {
	in := &Ingester{
		consumerClient:   consumerClient,
		admClient:        admClient,
		topic:            cfg.Topic,
		instanceID:       instanceID,
		windowSize:       time.Duration(cfg.GetWindowSeconds()) * time.Second,
		publishFrequency: time.Duration(cfg.GetPublishFrequencyMs()) * time.Millisecond,
		quantiles:        cfg.GetQuantiles(),
		clock:            clock.New(),
		partitionStats:   make(map[int32]*stats.Stats),
	}
	if cfg.MaxDistinctValues > 0 {
		in.statsOpts = append(in.statsOpts, multiset.WithMaxNodes(cfg.MaxDistinctValues))
	}
	return in
}

func NewIngesterFromConfig(cfg *config.RanksetConfig) (*Ingester, error) {
	instanceID := "rankset-" + uuid.NewString()
	consumerClient, admClient, err := clients.NewConsumerClients(cfg.KafkaConfig, instanceID, cfg.Topic)
	if err != nil {
		return nil, err
	}
	return NewIngesterWithClients(cfg, consumerClient, admClient, instanceID), nil
}

// Start discovers the topic's partitions and then consumes and publishes
// until ctx is cancelled. It waits for the consume loop to exit and then closes
// both clients.
func (in *Ingester) Start(ctx context.Context) error {
	defer in.consumerClient.Close()
	defer in.admClient.Close()
	log.Info().Msgf("Starting ingester %s for topic %s", in.instanceID, in.topic)

	if err := in.initialisePartitions(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		in.consumeLoop(ctx)
	}()

	ticker := time.NewTicker(in.publishFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("Stopping ingester %s", in.instanceID)
			wg.Wait()
			return nil
		case <-ticker.C:
			in.publishQuantiles()
		}
	}
}

func (in *Ingester) consumeLoop(ctx context.Context) {
	for {
		fetches := in.consumerClient.PollFetches(ctx)

		select {
		case <-ctx.Done():
			return
		default:
			if fetches.IsClientClosed() {
				return
			}

			fetches.EachError(func(topic string, partition int32, err error) {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Warn().Err(err).Str("topic", topic).Str("partition", partitionLabel(partition)).Msg("fetch error")
				metrics.FetchErrorCount.WithLabelValues(partitionLabel(partition)).Inc()
			})

			fetches.EachRecord(in.handleConsumedRecord)
		}
	}
}

func (in *Ingester) handleConsumedRecord(record *kgo.Record) {
	label := partitionLabel(record.Partition)

	value, err := strconv.ParseInt(strings.TrimSpace(string(record.Value)), 10, 64)
	if err != nil {
		log.Debug().Err(err).Str("partition", label).Msg("dropping sample that is not an integer")
		metrics.RejectedSampleCount.WithLabelValues(label, metrics.ReasonParse).Inc()
		return
	}

	if err := in.statsFor(record.Partition).Add(value); err != nil {
		log.Debug().Err(err).Str("partition", label).Int64("value", value).Msg("dropping sample")
		metrics.RejectedSampleCount.WithLabelValues(label, metrics.ReasonCapacity).Inc()
		return
	}
	metrics.IngestedSampleCount.WithLabelValues(label).Inc()
}

// statsFor returns the window for partition, creating it for partitions that
// appeared after discovery.
func (in *Ingester) statsFor(partition int32) *stats.Stats {
	in.mu.RLock()
	s, ok := in.partitionStats[partition]
	in.mu.RUnlock()
	if ok {
		return s
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if s, ok := in.partitionStats[partition]; ok {
		return s
	}
	s = in.newStats()
	in.partitionStats[partition] = s
	in.partitions = append(in.partitions, partition)
	slices.Sort(in.partitions)
	metrics.MonitoredPartitionCount.Set(float64(len(in.partitions)))
	return s
}

func (in *Ingester) newStats() *stats.Stats {
	return stats.NewStatsWithClock(in.windowSize, in.clock, in.statsOpts...)
}

func (in *Ingester) publishQuantiles() {
	in.mu.RLock()
	partitions := slices.Clone(in.partitions)
	in.mu.RUnlock()

	for _, partition := range partitions {
		in.mu.RLock()
		s := in.partitionStats[partition]
		in.mu.RUnlock()

		s.Expire()
		label := partitionLabel(partition)
		metrics.WindowSamples.WithLabelValues(label).Set(float64(s.Len()))
		updateQuantiles(s, in.quantiles, metrics.SampleQuantile, label)
	}
}

func updateQuantiles(s *stats.Stats, quantiles []float64, gauge *prometheus.GaugeVec, label string) {
	res, ok := s.Percentile(quantiles)
	if !ok {
		// An empty window has no quantiles; drop what was published before.
		gauge.DeletePartialMatch(prometheus.Labels{"partition": label})
		return
	}
	for i, q := range quantiles {
		gauge.WithLabelValues(label, quantileLabel(q)).Set(float64(res[i]))
	}
}

func partitionLabel(partition int32) string {
	return strconv.FormatInt(int64(partition), 10)
}

// quantileLabel renders 50 as "p50" and 99.9 as "p99.9".
func quantileLabel(q float64) string {
	return "p" + strconv.FormatFloat(q, 'f', -1, 64)
}
