package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "redix"

const (
	TopologyNode        = "node"
	TopologyCluster     = "cluster"
	TopologyReplication = "replication"

	RedirectMoved = "moved"
	RedirectAsk   = "ask"

	OutcomeCommitted = "committed"
	OutcomeAborted   = "aborted"
	OutcomeRetried   = "retried"
	OutcomeDiscarded = "discarded"
)

// Collector groups the client counters. A nil *Collector is valid and
// records nothing.
type Collector struct {
	commands     *prometheus.CounterVec
	redirections *prometheus.CounterVec
	failovers    prometheus.Counter
	transactions *prometheus.CounterVec
}

func New() *Collector {
	return &Collector{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands sent, by topology.",
		}, []string{"topology"}),
		redirections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirections_total",
			Help:      "Cluster redirections followed, by kind.",
		}, []string{"kind"}),
		failovers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replica_failovers_total",
			Help:      "Read commands retried on the primary after a replica failure.",
		}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "MULTI/EXEC transactions, by outcome.",
		}, []string{"outcome"}),
	}
}

// Register adds every counter to registerer.
func (collector *Collector) Register(registerer prometheus.Registerer) error {
	for _, metric := range collector.collectors() {
		if err := registerer.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (collector *Collector) Command(topology string) {
	if collector == nil {
		return
	}
	collector.commands.WithLabelValues(topology).Inc()
}

func (collector *Collector) Redirection(kind string) {
	if collector == nil {
		return
	}
	collector.redirections.WithLabelValues(kind).Inc()
}

func (collector *Collector) Failover() {
	if collector == nil {
		return
	}
	collector.failovers.Inc()
}

func (collector *Collector) Transaction(outcome string) {
	if collector == nil {
		return
	}
	collector.transactions.WithLabelValues(outcome).Inc()
}

func (collector *Collector) Commands(topology string) prometheus.Counter {
	return collector.commands.WithLabelValues(topology)
}

func (collector *Collector) Redirections(kind string) prometheus.Counter {
	return collector.redirections.WithLabelValues(kind)
}

func (collector *Collector) Failovers() prometheus.Counter {
	return collector.failovers
}

func (collector *Collector) Transactions(outcome string) prometheus.Counter {
	return collector.transactions.WithLabelValues(outcome)
}

func (collector *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		collector.commands,
		collector.redirections,
		collector.failovers,
		collector.transactions,
	}
}
