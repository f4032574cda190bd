package clients

import (
	"context"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/pliu/rankset/pkg/config"
)

// KgoClient is the part of *kgo.Client the ingester consumes through.
type KgoClient interface {
	PollFetches(ctx context.Context) KgoFetches
	Close()
}

// KgoFetches is the part of kgo.Fetches the ingester reads.
type KgoFetches interface {
	IsClientClosed() bool
	EachError(func(string, int32, error))
	EachRecord(func(*kgo.Record))
}

// KadmClient is the part of *kadm.Client used for partition discovery.
type KadmClient interface {
	ListTopics(ctx context.Context, topics ...string) (kadm.TopicDetails, error)
	Close()
}

type franzGoClient struct {
	*kgo.Client
}

func (c franzGoClient) PollFetches(ctx context.Context) KgoFetches {
	return c.Client.PollFetches(ctx)
}

// GetFranzGoClient returns a new franz-go kafka client. If topics are given the
// client consumes every partition of them.
func GetFranzGoClient(cfg *config.KafkaConfig, clientID string, topics ...string) (*kgo.Client, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.SeedBrokers...),
	}
	if clientID != "" {
		opts = append(opts, kgo.ClientID(clientID))
	}
	if len(topics) > 0 {
		opts = append(opts, kgo.ConsumeTopics(topics...), kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()))
	}
	return kgo.NewClient(opts...)
}

// NewConsumerClients builds the consuming client for topic and an admin client
// sharing its own connection.
func NewConsumerClients(cfg *config.KafkaConfig, clientID string, topic string) (KgoClient, KadmClient, error) {
	consumer, err := GetFranzGoClient(cfg, clientID, topic)
	if err != nil {
		return nil, nil, err
	}
	admin, err := GetFranzGoClient(cfg, clientID)
	if err != nil {
		consumer.Close()
		return nil, nil, err
	}
	return franzGoClient{consumer}, kadm.NewClient(admin), nil
}
