package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTransaction(t *testing.T) {
	c := NewCollector()

	c.ObserveTransaction("success", 12_000, time.Millisecond)
	c.ObserveTransaction("success", 30_000, time.Millisecond)
	c.ObserveTransaction("failed", 500, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.counterVec(TransactionCounterType).WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.counterVec(TransactionCounterType).WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.histogram(ComputeUnitsType)))
}

func TestObserveInstructionUsesProgramNames(t *testing.T) {
	c := NewCollector()
	named := solana.NewWallet().PublicKey()
	unnamed := solana.NewWallet().PublicKey()
	c.NameProgram(named, "launchpad")

	c.ObserveInstruction(named)
	c.ObserveInstruction(named)
	c.ObserveInstruction(unnamed)

	vec := c.counterVec(InstructionCounterType)
	assert.Equal(t, 2.0, testutil.ToFloat64(vec.WithLabelValues("launchpad")))
	assert.Equal(t, 1.0, testutil.ToFloat64(vec.WithLabelValues(unnamed.String())))
}

func TestFeesAndLaunches(t *testing.T) {
	c := NewCollector()

	c.RecordFee(1_000_000)
	c.RecordFee(0)
	c.RecordLaunch(true)
	c.RecordLaunch(false)

	assert.Equal(t, 1_000_000.0, testutil.ToFloat64(c.counter(FeesCollectedType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.counterVec(LaunchCounterType).WithLabelValues("failed")))

	c.Reset()
	assert.Equal(t, 0, testutil.CollectAndCount(c.counterVec(LaunchCounterType)))
}

func TestHandlerExposesRegistry(t *testing.T) {
	c := NewCollector()
	c.ObserveTransaction("success", 150, time.Microsecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `launchpad_transactions_total{status="success"} 1`)
	assert.Contains(t, string(body), "launchpad_fees_collected_lamports_total 0")
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	a.RecordFee(10)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.counter(FeesCollectedType)))
}
