package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

var (
	SampleQuantile = prom.NewGaugeVec(
		prom.GaugeOpts{
			Name: "rankset_sample_quantile",
			Help: "Quantile of the samples in the sliding window",
		},
		[]string{"partition", "quantile"},
	)
	WindowSamples = prom.NewGaugeVec(
		prom.GaugeOpts{
			Name: "rankset_window_samples",
			Help: "Number of samples currently in the sliding window",
		},
		[]string{"partition"},
	)
	IngestedSampleCount = prom.NewCounterVec(
		prom.CounterOpts{
			Name: "rankset_ingested_sample_count",
			Help: "Total number of samples added to a window",
		},
		[]string{"partition"},
	)
	RejectedSampleCount = prom.NewCounterVec(
		prom.CounterOpts{
			Name: "rankset_rejected_sample_count",
			Help: "Total number of samples that could not be added to a window",
		},
		[]string{"partition", "reason"},
	)
	FetchErrorCount = prom.NewCounterVec(
		prom.CounterOpts{
			Name: "rankset_fetch_error_count",
			Help: "Total number of fetch errors returned by the consumer",
		},
		[]string{"partition"},
	)
	MonitoredPartitionCount = prom.NewGauge(
		prom.GaugeOpts{
			Name: "rankset_monitored_partition_count",
			Help: "Number of partitions of the input topic being tracked",
		},
	)
)

const (
	ReasonParse    = "parse"
	ReasonCapacity = "capacity"
)

func Init() {
	prom.MustRegister(SampleQuantile)
	prom.MustRegister(WindowSamples)
	prom.MustRegister(IngestedSampleCount)
	prom.MustRegister(RejectedSampleCount)
	prom.MustRegister(FetchErrorCount)
	prom.MustRegister(MonitoredPartitionCount)
}
