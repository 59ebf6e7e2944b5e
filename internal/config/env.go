package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "redix"

// Keys shared by env variables (REDIX_*), .env files and CLI flags.
const (
	KeyEndpoints           = "endpoints"
	KeyTopology            = "topology"
	KeyProtocol            = "protocol"
	KeyConnectTimeout      = "connect-timeout"
	KeyReadWriteTimeout    = "read-write-timeout"
	KeyDatabase            = "database"
	KeyExceptions          = "exceptions"
	KeyTransactionRetries  = "transaction-retries"
	KeyLoadBalancing       = "load-balancing"
	KeyPrefix              = "prefix"
	KeyServerVersion       = "server-version"
	KeyClusterSlotsRefresh = "cluster-slots-refresh"
	KeyRefreshInterval     = "refresh-interval"
	KeyMaxRedirections     = "max-redirections"
	KeyLogLevel            = "log-level"
)

// Init loads .env files and binds REDIX_* environment variables.
func Init() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	setDefaults()
}

func setDefaults() {
	defaults := Default()

	viper.SetDefault(KeyEndpoints, strings.Join(defaults.Endpoints, ","))
	viper.SetDefault(KeyTopology, defaults.Topology)
	viper.SetDefault(KeyProtocol, defaults.Protocol)
	viper.SetDefault(KeyConnectTimeout, defaults.ConnectTimeout)
	viper.SetDefault(KeyReadWriteTimeout, defaults.ReadWriteTimeout)
	viper.SetDefault(KeyExceptions, defaults.Exceptions)
	viper.SetDefault(KeyLoadBalancing, defaults.LoadBalancing)
	viper.SetDefault(KeyServerVersion, defaults.ServerVersion)
	viper.SetDefault(KeyRefreshInterval, defaults.RefreshInterval)
	viper.SetDefault(KeyMaxRedirections, defaults.MaxRedirections)
	viper.SetDefault(KeyLogLevel, defaults.LogLevel)
}

// Load reads the client configuration from viper.
func Load() *ClientConfig {
	return &ClientConfig{
		Endpoints:           splitList(viper.GetString(KeyEndpoints)),
		Topology:            strings.ToLower(viper.GetString(KeyTopology)),
		Protocol:            viper.GetInt(KeyProtocol),
		ConnectTimeout:      viper.GetDuration(KeyConnectTimeout),
		ReadWriteTimeout:    viper.GetDuration(KeyReadWriteTimeout),
		Database:            viper.GetInt(KeyDatabase),
		Exceptions:          viper.GetBool(KeyExceptions),
		TransactionRetries:  viper.GetInt(KeyTransactionRetries),
		LoadBalancing:       viper.GetBool(KeyLoadBalancing),
		Prefix:              viper.GetString(KeyPrefix),
		ServerVersion:       viper.GetString(KeyServerVersion),
		ClusterSlotsRefresh: viper.GetBool(KeyClusterSlotsRefresh),
		RefreshInterval:     viper.GetDuration(KeyRefreshInterval),
		MaxRedirections:     viper.GetInt(KeyMaxRedirections),
		LogLevel:            strings.ToUpper(viper.GetString(KeyLogLevel)),
	}
}

// SetupFlags registers the client flags on cmd.
func SetupFlags(cmd *cobra.Command) {
	defaults := Default()
	flags := cmd.PersistentFlags()

	flags.String(KeyEndpoints, strings.Join(defaults.Endpoints, ","), "comma-separated endpoints (host:port or tcp://, tls://, unix:// URIs)")
	flags.String(KeyTopology, defaults.Topology, "node, cluster or replication")
	flags.Int(KeyProtocol, defaults.Protocol, "RESP protocol version (2 or 3)")
	flags.Duration(KeyConnectTimeout, defaults.ConnectTimeout, "dial timeout")
	flags.Duration(KeyReadWriteTimeout, 0, "per-command read/write timeout (0 disables)")
	flags.Int(KeyDatabase, 0, "database selected after connecting")
	flags.Bool(KeyExceptions, defaults.Exceptions, "return error replies as errors")
	flags.Int(KeyTransactionRetries, 0, "retries for transactions aborted by WATCH")
	flags.Bool(KeyLoadBalancing, defaults.LoadBalancing, "send reads to replicas")
	flags.String(KeyPrefix, "", "prefix applied to every key")
	flags.String(KeyServerVersion, defaults.ServerVersion, "command profile version")
	flags.Bool(KeyClusterSlotsRefresh, false, "reload the slot map after MOVED")
	flags.Duration(KeyRefreshInterval, defaults.RefreshInterval, "minimum time between slot map reloads")
	flags.Int(KeyMaxRedirections, defaults.MaxRedirections, "MOVED/ASK redirections followed per command")
	flags.String(KeyLogLevel, defaults.LogLevel, "DEBUG, INFO, WARN or ERROR")
}

// BindFlags makes flags set on cmd or its root override env values.
func BindFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}

	return viper.BindPFlags(cmd.Flags())
}

func splitList(raw string) []string {
	var items []string

	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
