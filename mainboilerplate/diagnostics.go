package mainboilerplate

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// DiagnosticsConfig configures application metrics and diagnostics.
type DiagnosticsConfig struct {
	MetricsFile string `long:"metrics-file" env:"METRICS_FILE" description:"Path to which Prometheus metrics are written in text exposition format on exit"`
}

// InitDiagnosticsAndRecover returns a closure which should be deferred. At
// its invocation, metrics are written to the configured MetricsFile (if any).
// A panic is recovered, an attempt is made to write a termination message,
// and the panic is then re-raised.
func InitDiagnosticsAndRecover(cfg DiagnosticsConfig) func() {
	return func() {
		if r := recover(); r != nil {
			// Make a best effort attempt to write a termination message.
			// Bug: https://github.com/kubernetes/kubernetes/issues/31839
			if f, err := os.OpenFile(k8sTerminationLog, os.O_WRONLY, 0777); err == nil {
				fmt.Fprintf(f, "%+v", r)
				f.Close()
			}
			panic(r)
		}
		if cfg.MetricsFile != "" {
			Must(WriteMetrics(cfg.MetricsFile, prometheus.DefaultGatherer), "failed to write metrics")
		}
	}
}

// WriteMetrics writes metrics of the Gatherer to |path| in the Prometheus
// text exposition format.
func WriteMetrics(path string, g prometheus.Gatherer) error {
	return errors.WithMessagef(prometheus.WriteToTextfile(path, g), "writing metrics to %s", path)
}

// Must panics if |err| is non-nil, supplying |msg| and |extra| as
// formatter and fields of the generated panic.
func Must(err error, msg string, extra ...interface{}) {
	if err == nil {
		return
	}
	var f = log.Fields{"err": err}
	for i := 0; i+1 < len(extra); i += 2 {
		f[extra[i].(string)] = extra[i+1]
	}
	log.WithFields(f).Panic(msg)
}

const (
	// k8sTerminationLog is the location to write a termination message for
	// Kubernetes to retrieve.
	//
	// Link: https://kubernetes.io/docs/tasks/debug-application-cluster/determine-reason-pod-failure/#setting-the-termination-log-file
	k8sTerminationLog = "/dev/termination-log"
)
