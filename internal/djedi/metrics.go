package djedi

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// Metrics holds lightweight counters for admin API traffic.
type Metrics struct {
	TotalRequests   atomic.Int64
	ReadRequests    atomic.Int64 // GET
	WriteRequests   atomic.Int64 // POST/PUT/PATCH/DELETE
	TransportErrors atomic.Int64

	mu        sync.Mutex
	hosts     map[string]*HostCounts
	status2xx int64
	status3xx int64
	status4xx int64
	status5xx int64
}

// HostCounts splits the requests sent to one host by kind.
type HostCounts struct {
	Reads  int64 `json:"reads" yaml:"reads"`
	Writes int64 `json:"writes" yaml:"writes"`
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics { return &Metrics{hosts: make(map[string]*HostCounts)} }

// IncRequest increments per-host and total request counters.
func (m *Metrics) IncRequest(host, method string) {
	m.TotalRequests.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	hc, ok := m.hosts[host]
	if !ok {
		hc = &HostCounts{}
		m.hosts[host] = hc
	}
	switch strings.ToUpper(method) {
	case http.MethodGet:
		m.ReadRequests.Add(1)
		hc.Reads++
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		m.WriteRequests.Add(1)
		hc.Writes++
	}
}

// IncTransportError counts requests that never produced a response.
func (m *Metrics) IncTransportError() { m.TransportErrors.Add(1) }

// IncStatus tracks status buckets.
func (m *Metrics) IncStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case code >= 500:
		m.status5xx++
	case code >= 400:
		m.status4xx++
	case code >= 300:
		m.status3xx++
	case code >= 200:
		m.status2xx++
	}
}

// MetricsSnapshot is a read-only copy of metrics state.
type MetricsSnapshot struct {
	TotalRequests   int64                 `json:"totalRequests" yaml:"total_requests"`
	ReadRequests    int64                 `json:"readRequests" yaml:"read_requests"`
	WriteRequests   int64                 `json:"writeRequests" yaml:"write_requests"`
	TransportErrors int64                 `json:"transportErrors" yaml:"transport_errors"`
	Hosts           map[string]HostCounts `json:"hosts" yaml:"hosts"`
	Status2xx       int64                 `json:"status2xx" yaml:"status_2xx"`
	Status3xx       int64                 `json:"status3xx" yaml:"status_3xx"`
	Status4xx       int64                 `json:"status4xx" yaml:"status_4xx"`
	Status5xx       int64                 `json:"status5xx" yaml:"status_5xx"`
}

// Snapshot returns a copy of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	hosts := make(map[string]HostCounts, len(m.hosts))
	for k, v := range m.hosts {
		hosts[k] = *v
	}
	return MetricsSnapshot{
		TotalRequests:   m.TotalRequests.Load(),
		ReadRequests:    m.ReadRequests.Load(),
		WriteRequests:   m.WriteRequests.Load(),
		TransportErrors: m.TransportErrors.Load(),
		Hosts:           hosts,
		Status2xx:       m.status2xx,
		Status3xx:       m.status3xx,
		Status4xx:       m.status4xx,
		Status5xx:       m.status5xx,
	}
}
