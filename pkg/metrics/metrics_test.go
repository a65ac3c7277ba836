package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestPush(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tle_test_pushed_total",
		Help: "Test counter",
	})
	reg.MustRegister(counter)
	counter.Inc()

	saved := Gatherer
	Gatherer = reg
	defer func() { Gatherer = saved }()

	var method, path, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := Push(context.Background(), server.URL, ""); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	if method != http.MethodPut {
		t.Errorf("method = %s, want PUT", method)
	}
	if path != "/metrics/job/"+DefaultJob {
		t.Errorf("path = %s, want /metrics/job/%s", path, DefaultJob)
	}
	if !strings.Contains(body, "tle_test_pushed_total") {
		t.Error("pushed body should contain the registered metric")
	}
}

func TestPush_Errors(t *testing.T) {
	if err := Push(context.Background(), "", "job"); err == nil {
		t.Error("Push without url should fail")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if err := Push(context.Background(), server.URL, "job"); err == nil {
		t.Error("Push should fail on a 500 response")
	}
}
