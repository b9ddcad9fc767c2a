package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordToolCall(t *testing.T) {
	before := testutil.ToFloat64(toolCalls.WithLabelValues("hdf5", "list_hdf5", "ok"))
	RecordToolCall("hdf5", "list_hdf5", "ok", 10*time.Millisecond)
	RecordToolCall("hdf5", "list_hdf5", "ok", 20*time.Millisecond)

	if got := testutil.ToFloat64(toolCalls.WithLabelValues("hdf5", "list_hdf5", "ok")); got != before+2 {
		t.Errorf("tool calls = %v, want %v", got, before+2)
	}
}

func TestServerGauge(t *testing.T) {
	before := testutil.ToFloat64(connectedServers)
	ServerConnected()
	ServerConnected()
	ServerDisconnected()
	if got := testutil.ToFloat64(connectedServers); got != before+1 {
		t.Errorf("connected = %v, want %v", got, before+1)
	}
}
