package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/luiz-simples/redix/internal/domain"
)

const (
	TopologyNode        = "node"
	TopologyCluster     = "cluster"
	TopologyReplication = "replication"
)

var ErrInvalidConfig = errors.New("invalid client configuration")

var topologies = []string{TopologyNode, TopologyCluster, TopologyReplication}

// ClientConfig holds everything needed to build a client.
type ClientConfig struct {
	// Endpoints are parameter URIs or host:port pairs. For replication the
	// first endpoint without role=slave is the primary.
	Endpoints []string
	Topology  string

	Protocol         int
	ConnectTimeout   time.Duration
	ReadWriteTimeout time.Duration
	Database         int

	// Exceptions returns error replies as Go errors instead of reply values.
	Exceptions         bool
	TransactionRetries int
	LoadBalancing      bool
	Prefix             string
	ServerVersion      string

	// ClusterSlotsRefresh reloads the slot map after MOVED, at most once per
	// RefreshInterval.
	ClusterSlotsRefresh bool
	RefreshInterval     time.Duration
	MaxRedirections     int

	LogLevel string
}

func Default() *ClientConfig {
	return &ClientConfig{
		Endpoints:       []string{fmt.Sprintf("%s:%d", domain.DefaultHost, domain.DefaultPort)},
		Topology:        TopologyNode,
		Protocol:        domain.DefaultProtocol,
		ConnectTimeout:  domain.DefaultTimeout,
		Exceptions:      true,
		LoadBalancing:   true,
		ServerVersion:   "7.0",
		RefreshInterval: time.Second,
		MaxRedirections: 1,
		LogLevel:        "INFO",
	}
}

func (c *ClientConfig) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("%w: at least one endpoint is required", ErrInvalidConfig)
	}

	if !slices.Contains(topologies, c.Topology) {
		return fmt.Errorf("%w: unknown topology %q (expected one of %s)", ErrInvalidConfig, c.Topology, strings.Join(topologies, ", "))
	}

	if c.Protocol != 2 && c.Protocol != 3 {
		return fmt.Errorf("%w: protocol must be 2 or 3, got %d", ErrInvalidConfig, c.Protocol)
	}

	if c.TransactionRetries < 0 || c.MaxRedirections < 0 {
		return fmt.Errorf("%w: retry budgets cannot be negative", ErrInvalidConfig)
	}

	if c.Database < 0 {
		return fmt.Errorf("%w: database cannot be negative", ErrInvalidConfig)
	}

	if c.Topology == TopologyCluster && c.Database > 0 {
		return fmt.Errorf("%w: cluster nodes only serve database 0", ErrInvalidConfig)
	}

	_, err := c.Parameters()
	return err
}

// Parameters parses every endpoint. Settings the URI does not name are taken
// from the configuration.
func (c *ClientConfig) Parameters() ([]*domain.Parameters, error) {
	base := domain.NewParameters(domain.DefaultHost, domain.DefaultPort)
	base.Protocol = c.Protocol
	base.ReadWriteTimeout = c.ReadWriteTimeout
	base.Database = c.Database
	if c.ConnectTimeout > 0 {
		base.Timeout = c.ConnectTimeout
	}

	params := make([]*domain.Parameters, 0, len(c.Endpoints))

	for _, endpoint := range c.Endpoints {
		param, err := domain.ParseParametersOver(endpoint, base)
		if err != nil {
			return nil, fmt.Errorf("%w: endpoint %q: %v", ErrInvalidConfig, endpoint, err)
		}

		params = append(params, param)
	}

	return params, nil
}

// String returns a formatted string representation of the configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Topology")
	addField("Kind", c.Topology)
	addField("Endpoints", strings.Join(c.Endpoints, ", "))
	addField("Server Version", c.ServerVersion)

	addSection("Connection")
	addField("Protocol", fmt.Sprintf("RESP%d", c.Protocol))
	addField("Connect Timeout", c.ConnectTimeout.String())
	addField("Read/Write Timeout", c.ReadWriteTimeout.String())
	addField("Database", fmt.Sprintf("%d", c.Database))

	addSection("Behaviour")
	addField("Exceptions", fmt.Sprintf("%t", c.Exceptions))
	addField("Transaction Retries", fmt.Sprintf("%d", c.TransactionRetries))
	addField("Key Prefix", c.Prefix)

	switch c.Topology {
	case TopologyReplication:
		addField("Load Balancing", fmt.Sprintf("%t", c.LoadBalancing))
	case TopologyCluster:
		addField("Max Redirections", fmt.Sprintf("%d", c.MaxRedirections))
		addField("Slots Refresh", fmt.Sprintf("%t", c.ClusterSlotsRefresh))
		addField("Refresh Interval", c.RefreshInterval.String())
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
