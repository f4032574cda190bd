package clients

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pliu/rankset/pkg/config"
)

func TestGetFranzGoClient_DoesNotDial(t *testing.T) {
	cfg := &config.KafkaConfig{SeedBrokers: []string{"localhost:1"}}

	cl, err := GetFranzGoClient(cfg, "rankset-test", "samples")
	require.NoError(t, err)
	cl.Close()

	consumer, admin, err := NewConsumerClients(cfg, "", "samples")
	require.NoError(t, err)
	require.NotNil(t, consumer)
	require.NotNil(t, admin)
	admin.Close()
	consumer.Close()
}
