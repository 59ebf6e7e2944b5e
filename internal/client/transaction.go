package client

import (
	"context"

	"github.com/luiz-simples/redix/internal/transaction"
)

// TxOption adjusts the options of one transaction.
type TxOption func(*transaction.Options)

// WithCAS runs commands immediately until Multi is called.
func WithCAS() TxOption {
	return func(options *transaction.Options) {
		options.CAS = true
	}
}

// WithWatch watches keys when the transaction begins and before every retry.
func WithWatch(keys ...string) TxOption {
	return func(options *transaction.Options) {
		options.Watch = append(options.Watch, keys...)
	}
}

func WithRetry(attempts int) TxOption {
	return func(options *transaction.Options) {
		options.Retry = max(attempts, 0)
	}
}

// Transaction begins a transaction on a connection of its own. The caller
// must Close it.
func (client *Client) Transaction(ctx context.Context, opts ...TxOption) (*transaction.MultiExec, error) {
	options := transaction.Options{
		Retry:      client.config.TransactionRetries,
		Exceptions: client.config.Exceptions,
		Metrics:    client.metrics,
	}

	for _, opt := range opts {
		opt(&options)
	}

	options.Watch = client.prefixKeys(options.Watch)

	strategy := client.strategy()

	tx, err := transaction.Begin(ctx, strategy, options)
	if hasError(err) {
		_ = strategy.Disconnect()
		return nil, err
	}

	return tx, nil
}

// MultiExec runs block inside a transaction and closes it afterwards.
func (client *Client) MultiExec(ctx context.Context, block transaction.Block, opts ...TxOption) ([]any, error) {
	tx, err := client.Transaction(ctx, opts...)
	if hasError(err) {
		return nil, err
	}
	defer tx.Close()

	return tx.Execute(ctx, block)
}

func (client *Client) strategy() transaction.Strategy {
	switch {
	case client.cluster != nil:
		return transaction.NewClusterStrategy(client.cluster)
	case client.replication != nil:
		return transaction.NewReplicationStrategy(client.replication)
	}

	return transaction.NewNodeStrategy(client.factory(client.node))
}

func (client *Client) prefixKeys(keys []string) []string {
	if isEmpty(client.config.Prefix) || len(keys) == 0 {
		return keys
	}

	prefixed := make([]string, len(keys))
	for index, key := range keys {
		prefixed[index] = client.config.Prefix + key
	}

	return prefixed
}
