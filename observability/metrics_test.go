package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.IncStored()
	metrics.IncStored()
	metrics.RecordDelivery(DeliveryPushed)
	metrics.RecordDelivery(DeliveryDropped)
	metrics.RecordDelivery(DeliveryPushed)
	metrics.SetOnline(3)
	metrics.ObserveLatency("send", 10*time.Millisecond)

	req.Equal(2.0, testutil.ToFloat64(metrics.messagesStored))
	req.Equal(2.0, testutil.ToFloat64(metrics.deliveries.WithLabelValues(DeliveryPushed)))
	req.Equal(1.0, testutil.ToFloat64(metrics.deliveries.WithLabelValues(DeliveryDropped)))
	req.Equal(3.0, testutil.ToFloat64(metrics.onlineUsers))
}

func TestMetrics_Nil_Is_Noop(t *testing.T) {
	var metrics *Metrics

	require.NotPanics(t, func() {
		metrics.IncStored()
		metrics.IncStoreError()
		metrics.RecordDelivery(DeliveryOffline)
		metrics.SetOnline(1)
		metrics.ObserveLatency("send", time.Millisecond)
		metrics.SetProcessStats(ProcessStats{RSSBytes: 1})
	})
}

func TestReadProcessStats(t *testing.T) {
	req := require.New(t)
	p, err := SelfProcess()
	req.NoError(err)

	stats, err := ReadProcessStats(p)
	req.NoError(err)
	req.NotZero(stats.PID)
	req.NotZero(stats.RSSBytes)
	req.Positive(stats.Goroutines)
}
