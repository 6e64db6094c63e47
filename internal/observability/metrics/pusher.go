package metrics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/chantierpro/finance/internal/config"
	obstracing "github.com/chantierpro/finance/internal/observability/tracing"
	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/prometheus/prompb"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/protoadapt"
)

const (
	ExporterRemoteWrite = "prometheus_remote_write"
	ExporterPushgateway = "prometheus_pushgateway"
)

// An export run exits before any scrape, so its collectors are pushed once
// at the end of the run.
type Pusher interface {
	Push(ctx context.Context, gatherer prometheus.Gatherer) error
}

// NewPusher returns nil when pushing is off or misconfigured. The reason is
// logged; the export itself still runs.
func NewPusher(cfg config.Config, log *zap.Logger) Pusher {
	if log == nil {
		log = zap.NewNop()
	}
	pc := cfg.MetricsPush
	exporter := strings.ToLower(strings.TrimSpace(pc.Exporter))
	if exporter == "" {
		return nil
	}
	log = log.With(zap.String("exporter", exporter))

	endpoint := strings.TrimSpace(pc.Endpoint)
	if endpoint == "" {
		log.Warn("metrics push disabled: no endpoint")
		return nil
	}

	switch exporter {
	case ExporterRemoteWrite:
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			log.Warn("metrics push disabled: invalid endpoint", zap.Error(err))
			return nil
		}
		return NewRemoteWritePusher(endpoint, pc.AuthToken)
	case ExporterPushgateway:
		return NewPushgatewayPusher(endpoint, cfg.AppName, map[string]string{
			"environment": strings.TrimSpace(cfg.Environment),
		})
	}
	log.Warn("metrics push disabled: unknown exporter")
	return nil
}

// RemoteWritePusher posts one snappy-compressed prompb.WriteRequest.
type RemoteWritePusher struct {
	endpoint  string
	authToken string
	client    *http.Client
	now       func() time.Time
}

func NewRemoteWritePusher(endpoint, authToken string) *RemoteWritePusher {
	return &RemoteWritePusher{
		endpoint:  endpoint,
		authToken: strings.TrimSpace(authToken),
		client:    obstracing.WrapHTTPClient(&http.Client{Timeout: 5 * time.Second}),
		now:       time.Now,
	}
}

func (p *RemoteWritePusher) Push(ctx context.Context, gatherer prometheus.Gatherer) error {
	if p == nil || gatherer == nil {
		return nil
	}
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather: %w", err)
	}
	series := toTimeSeries(families, p.now().UnixMilli())
	if len(series) == 0 {
		return nil
	}

	payload, err := proto.Marshal(protoadapt.MessageV2Of(&prompb.WriteRequest{Timeseries: series}))
	if err != nil {
		return fmt.Errorf("encode write request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(snappy.Encode(nil, payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-protobuf")
	req.Header.Set("Content-Encoding", "snappy")
	req.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")
	if p.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.authToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("remote write returned %s", resp.Status)
	}
	return nil
}

// PushgatewayPusher replaces the run's group on a Pushgateway.
type PushgatewayPusher struct {
	endpoint string
	job      string
	grouping map[string]string
}

func NewPushgatewayPusher(endpoint, job string, grouping map[string]string) *PushgatewayPusher {
	return &PushgatewayPusher{
		endpoint: strings.TrimSpace(endpoint),
		job:      strings.TrimSpace(job),
		grouping: grouping,
	}
}

func (p *PushgatewayPusher) Push(ctx context.Context, gatherer prometheus.Gatherer) error {
	if p == nil || gatherer == nil {
		return nil
	}
	switch {
	case p.endpoint == "":
		return errors.New("pushgateway endpoint is required")
	case p.job == "":
		return errors.New("pushgateway job is required")
	}

	pusher := push.New(p.endpoint, p.job).Gatherer(gatherer)
	for key, value := range p.grouping {
		if key, value = strings.TrimSpace(key), strings.TrimSpace(value); key != "" && value != "" {
			pusher = pusher.Grouping(key, value)
		}
	}
	return pusher.PushContext(ctx)
}

// toTimeSeries flattens families into one sample per series. Histograms and
// summaries contribute their _sum and _count series only.
func toTimeSeries(families []*dto.MetricFamily, timestampMs int64) []prompb.TimeSeries {
	var series []prompb.TimeSeries
	for _, family := range families {
		for _, m := range family.GetMetric() {
			for _, s := range samplesOf(family.GetType(), m) {
				labels := make([]prompb.Label, 0, len(m.GetLabel())+1)
				labels = append(labels, prompb.Label{Name: "__name__", Value: family.GetName() + s.suffix})
				for _, l := range m.GetLabel() {
					labels = append(labels, prompb.Label{Name: l.GetName(), Value: l.GetValue()})
				}
				slices.SortFunc(labels, func(a, b prompb.Label) int { return strings.Compare(a.Name, b.Name) })
				series = append(series, prompb.TimeSeries{
					Labels:  labels,
					Samples: []prompb.Sample{{Value: s.value, Timestamp: timestampMs}},
				})
			}
		}
	}
	return series
}

type sample struct {
	suffix string
	value  float64
}

func samplesOf(kind dto.MetricType, m *dto.Metric) []sample {
	switch {
	case m == nil:
		return nil
	case kind == dto.MetricType_COUNTER && m.GetCounter() != nil:
		return []sample{{value: m.GetCounter().GetValue()}}
	case kind == dto.MetricType_GAUGE && m.GetGauge() != nil:
		return []sample{{value: m.GetGauge().GetValue()}}
	case kind == dto.MetricType_HISTOGRAM && m.GetHistogram() != nil:
		h := m.GetHistogram()
		return []sample{
			{suffix: "_sum", value: h.GetSampleSum()},
			{suffix: "_count", value: float64(h.GetSampleCount())},
		}
	case kind == dto.MetricType_SUMMARY && m.GetSummary() != nil:
		s := m.GetSummary()
		return []sample{
			{suffix: "_sum", value: s.GetSampleSum()},
			{suffix: "_count", value: float64(s.GetSampleCount())},
		}
	}
	return nil
}
