package collector

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hadoop-jmx-exporter/internal/jmx"
	"github.com/hadoop-jmx-exporter/pkg/logger"
)

// JMXCollector scrapes one service's JMX endpoint on every exposition pull
// and translates selected bean fields into gauges. It holds no state between
// scrapes; a failed fetch yields only the up gauge set to 0 for that cycle.
type JMXCollector struct {
	typ     Type
	cluster string
	url     string
	host    string
	client  *jmx.Client
	rules   []beanRule
	prefix  string
	upDesc  *prometheus.Desc
}

// New constructs a collector bound to (cluster, url) for the given type.
func New(typ Type, cluster, jmxURL string) *JMXCollector {
	prefix := "hadoop_" + typ.Component() + "_" + typ.Service()
	return &JMXCollector{
		typ:     typ,
		cluster: cluster,
		url:     jmxURL,
		host:    hostOf(jmxURL),
		client:  jmx.NewClient(jmx.DefaultTimeout),
		rules:   rulesFor(typ),
		prefix:  prefix,
		upDesc: prometheus.NewDesc(
			prefix+"_up",
			"Whether the "+typ.String()+" JMX endpoint answered the last scrape.",
			[]string{"cluster", "host"},
			nil,
		),
	}
}

func hostOf(jmxURL string) string {
	u, err := url.Parse(jmxURL)
	if err != nil || u.Hostname() == "" {
		return jmxURL
	}
	return u.Hostname()
}

// Describe sends nothing: the metric set depends on which beans the endpoint
// currently exposes, so the collector registers as unchecked.
func (c *JMXCollector) Describe(_ chan<- *prometheus.Desc) {}

// Collect fetches the beans and emits one gauge per selected field.
func (c *JMXCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), jmx.DefaultTimeout+time.Second)
	defer cancel()

	beans, err := c.client.Fetch(ctx, c.url)
	up := 1.0
	if err != nil {
		logger.Warn("jmx scrape failed",
			zap.String("collector", c.typ.String()),
			zap.String("url", c.url),
			zap.Error(err))
		up = 0
	}
	ch <- prometheus.MustNewConstMetric(c.upDesc, prometheus.GaugeValue, up, c.cluster, c.host)
	if err != nil {
		return
	}

	matched := make([]bool, len(c.rules))
	for _, bean := range beans {
		name := bean.Name()
		for i, rule := range c.rules {
			if !strings.Contains(name, rule.match) {
				continue
			}
			if rule.exclude != "" && strings.Contains(name, rule.exclude) {
				continue
			}
			if rule.label == "" {
				// Without a qualifier label a second matching bean would
				// repeat the sample's name and label values, and the
				// registry rejects the whole gather. Keep the first.
				if matched[i] {
					continue
				}
				matched[i] = true
			}
			c.emitFields(ch, bean, rule)
		}
	}
}

func (c *JMXCollector) emitFields(ch chan<- prometheus.Metric, bean jmx.Bean, rule beanRule) {
	var qualName, qualValue string
	if rule.label != "" {
		qualName = rule.label
		qualValue = beanQualifier(bean.Name(), rule.match)
	}
	for _, field := range rule.fields {
		raw, ok := bean[field]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case map[string]interface{}:
			// Composite value: one gauge per numeric sub-key.
			for sub, subRaw := range v {
				if value, ok := numeric(subRaw); ok {
					c.emit(ch, field+"_"+sub, value, qualName, qualValue)
				}
			}
		default:
			if value, ok := numeric(raw); ok {
				c.emit(ch, field, value, qualName, qualValue)
			}
		}
	}
}

func (c *JMXCollector) emit(ch chan<- prometheus.Metric, field string, value float64, qualName, qualValue string) {
	labelNames := []string{"cluster", "host"}
	labelValues := []string{c.cluster, c.host}
	if qualName != "" {
		labelNames = append(labelNames, qualName)
		labelValues = append(labelValues, qualValue)
	}
	desc := prometheus.NewDesc(
		c.prefix+"_"+snakeCase(field),
		"JMX bean field "+field+" of "+c.typ.String()+".",
		labelNames,
		nil,
	)
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value, labelValues...)
}

// beanQualifier returns the bean-name segment after match, up to the next
// comma: RpcActivityForPort8020 yields "8020", Journal-ns1 yields "ns1".
func beanQualifier(name, match string) string {
	rest := name[strings.Index(name, match)+len(match):]
	if i := strings.IndexByte(rest, ','); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// numeric coerces a decoded JSON value into a float64 sample.
func numeric(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// snakeCase turns a JMX field name like MemHeapUsedM into mem_heap_used_m.
func snakeCase(s string) string {
	return strings.ToLower(camelBoundary.ReplaceAllString(s, "${1}_${2}"))
}
