package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))

	// Second registration on the same registry is rejected.
	err := Register(reg)
	require.Error(t, err)
	var are prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &are)
}

func TestCacheLookupsCounter(t *testing.T) {
	before := testutil.ToFloat64(CacheLookups.WithLabelValues("serpData", "hit"))
	CacheLookups.WithLabelValues("serpData", "hit").Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(CacheLookups.WithLabelValues("serpData", "hit")), 0.001)
}
