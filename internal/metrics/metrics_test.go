package metrics_test

import (
	"errors"
	"testing"
	"time"

	"novapos/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Registra(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	m.Push("SAVE_SALE", nil)
	m.Push("SAVE_SALE", errors.New("x"))
	m.Snapshot("ok", time.Now())
	m.Pendientes(3)
	m.DeadLetter("SAVE_SALE")

	n, err := testutil.GatherAndCount(reg, "novapos_outbox_push_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = testutil.GatherAndCount(reg, "novapos_outbox_pending", "novapos_outbox_dead_letter_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMetrics_NilNoOp(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Push("SAVE_SALE", nil)
		m.Snapshot("error", time.Now())
		m.Pendientes(1)
		m.DeadLetter("SAVE_SALE")
	})
}
