package transaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/logger"
	"github.com/luiz-simples/redix/internal/metrics"
)

type (
	Options struct {
		// CAS runs commands immediately until Multi is called, so reads
		// between WATCH and MULTI see live values.
		CAS bool

		// Watch keys are watched on Begin and again before every retry.
		Watch []string

		// Retry is how many more times a block runs after EXEC was aborted
		// by a watched key.
		Retry int

		// Exceptions turns the first error reply inside EXEC into the
		// returned error instead of a slot in the results.
		Exceptions bool

		Metrics *metrics.Collector
	}

	// Block queues the commands of one attempt. It may run several times.
	Block func(context.Context, *MultiExec) error

	// MultiExec drives MULTI/EXEC through a Strategy. It is not safe for
	// concurrent use.
	MultiExec struct {
		strategy Strategy
		options  Options
		state    State
		commands []domain.Command
		log      *slog.Logger
	}
)

func DefaultOptions() Options {
	return Options{Exceptions: true}
}

// Begin creates the transaction and applies CAS and WATCH from options.
func Begin(ctx context.Context, strategy Strategy, options Options) (*MultiExec, error) {
	tx := &MultiExec{
		strategy: strategy,
		options:  options,
		log:      logger.With("component", "transaction"),
	}

	if err := tx.configure(ctx); hasError(err) {
		return nil, err
	}

	return tx, nil
}

func (tx *MultiExec) State() State {
	return tx.state
}

// Commands returns the queued commands in queue order.
func (tx *MultiExec) Commands() []domain.Command {
	return append([]domain.Command(nil), tx.commands...)
}

// ExecuteCommand queues cmd and returns the QUEUED reply. In CAS mode before
// Multi it runs cmd immediately and returns its real reply. A refused command
// returns *AbortedError and keeps the queue; Discard it.
func (tx *MultiExec) ExecuteCommand(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	if err := tx.initialize(ctx); hasError(err) {
		return nil, err
	}

	if tx.state.Has(StateCAS) {
		return tx.direct(ctx, cmd)
	}

	reply, err := tx.strategy.ExecuteCommand(ctx, cmd)
	if hasError(err) {
		return nil, err
	}

	if reply.IsQueued() {
		tx.commands = append(tx.commands, cmd)
		return reply, nil
	}

	if reply.IsError() {
		return reply, newAborted(tx, reply.Err.Message)
	}

	return nil, tx.protocolError("server did not return a QUEUED status for %s: %s", cmd.ID(), reply)
}

func (tx *MultiExec) Watch(ctx context.Context, keys ...string) (*domain.Reply, error) {
	if !tx.state.watchAllowed() {
		return nil, domain.ErrWatchAfterMulti
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: WATCH requires at least one key", domain.ErrWrongArity)
	}

	reply, err := tx.strategy.Watch(ctx, keyArgs(keys))
	if hasError(err) {
		return nil, err
	}

	if err := replyError(reply); hasError(err) {
		return reply, err
	}

	tx.state.flag(StateWatching)
	return reply, nil
}

func (tx *MultiExec) Unwatch(ctx context.Context) (*domain.Reply, error) {
	reply, err := tx.strategy.Unwatch(ctx)
	if hasError(err) {
		return nil, err
	}

	tx.state.unflag(StateWatching)
	return reply, replyError(reply)
}

// Multi leaves CAS mode and opens the transaction on the server. Outside CAS
// mode it only makes sure MULTI was sent.
func (tx *MultiExec) Multi(ctx context.Context) error {
	if !tx.state.Has(StateCAS) {
		return tx.initialize(ctx)
	}

	if err := tx.initialize(ctx); hasError(err) {
		return err
	}

	tx.state.unflag(StateCAS)

	reply, err := tx.strategy.Multi(ctx)
	if hasError(err) {
		return err
	}

	if err := replyError(reply); hasError(err) {
		return err
	}

	if !reply.IsOK() {
		return tx.protocolError("unexpected reply to MULTI: %s", reply)
	}

	return nil
}

// Discard abandons the queue. When MULTI never reached the server only the
// watched keys are released.
func (tx *MultiExec) Discard(ctx context.Context) error {
	var err error

	switch {
	case tx.state.Has(StateInitialized) && !tx.state.Has(StateCAS):
		_, err = tx.strategy.Discard(ctx)
	case tx.state.Has(StateWatching):
		_, err = tx.strategy.Unwatch(ctx)
	case !tx.state.Has(StateInitialized):
		return nil
	}

	tx.reset()
	tx.state.flag(StateDiscarded)
	tx.options.Metrics.Transaction(metrics.OutcomeDiscarded)

	return err
}

// Exec runs the commands queued through the fluent interface.
func (tx *MultiExec) Exec(ctx context.Context) ([]any, error) {
	return tx.Execute(ctx, nil)
}

// Execute runs EXEC, optionally building the queue with block first, and
// returns one decoded result per queued command in queue order. A
// transaction with nothing queued returns nil without touching the server.
func (tx *MultiExec) Execute(ctx context.Context, block Block) ([]any, error) {
	if tx.state.Has(StateInsideBlock) {
		return nil, domain.ErrNestedTransaction
	}

	if block != nil && len(tx.commands) > 0 {
		_ = tx.Discard(ctx)
		return nil, domain.ErrBlockAfterFluent
	}

	attempts := tx.options.Retry

	for {
		if block != nil {
			if err := tx.runBlock(ctx, block); hasError(err) {
				return nil, err
			}
		}

		if len(tx.commands) == 0 {
			if tx.state.Has(StateWatching) || tx.state.Has(StateInitialized) {
				_ = tx.Discard(ctx)
			}
			return nil, nil
		}

		reply, err := tx.strategy.ExecuteTransaction(ctx)
		if hasError(err) {
			tx.reset()
			return nil, err
		}

		if reply.IsError() {
			tx.reset()
			tx.options.Metrics.Transaction(metrics.OutcomeAborted)
			return nil, reply.Err
		}

		if !reply.IsNil() {
			return tx.collect(reply)
		}

		if block == nil || attempts == 0 {
			tx.reset()
			tx.options.Metrics.Transaction(metrics.OutcomeAborted)
			return nil, newAborted(tx, "the current transaction has been aborted by the server")
		}

		attempts--
		tx.options.Metrics.Transaction(metrics.OutcomeRetried)
		tx.log.Debug("transaction aborted by a watched key, retrying", "remaining", attempts)

		tx.reset()
		if err := tx.configure(ctx); hasError(err) {
			return nil, err
		}
	}
}

// Close releases the connection held by the strategy.
func (tx *MultiExec) Close() error {
	return tx.strategy.Disconnect()
}

func (tx *MultiExec) collect(reply *domain.Reply) ([]any, error) {
	commands := tx.commands
	tx.reset()

	if !reply.IsAggregate() || len(reply.Elems) != len(commands) {
		return nil, tx.protocolError("EXEC returned an unexpected number of replies for %d queued commands", len(commands))
	}

	tx.options.Metrics.Transaction(metrics.OutcomeCommitted)

	results := make([]any, len(commands))

	for index, elem := range reply.Elems {
		if elem.IsError() {
			if tx.options.Exceptions {
				return nil, elem.Err
			}
			results[index] = elem.Err
			continue
		}

		value, err := decode(commands[index], elem)
		if hasError(err) {
			return nil, err
		}
		results[index] = value
	}

	return results, nil
}

// runBlock keeps the transaction open when the block fails on I/O or a
// server error; any other failure discards it.
func (tx *MultiExec) runBlock(ctx context.Context, block Block) error {
	tx.state.flag(StateInsideBlock)
	err := block(ctx, tx)
	tx.state.unflag(StateInsideBlock)

	if hasError(err) && !propagates(err) {
		_ = tx.Discard(ctx)
	}

	return err
}

func (tx *MultiExec) direct(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	reply, err := tx.strategy.ExecuteDirect(ctx, cmd)
	if hasError(err) {
		return nil, err
	}

	if tx.options.Exceptions {
		return reply, replyError(reply)
	}

	return reply, nil
}

func (tx *MultiExec) initialize(ctx context.Context) error {
	if tx.state.Has(StateInitialized) {
		return nil
	}

	if !tx.state.Has(StateCAS) {
		if err := tx.strategy.InitializeTransaction(ctx); hasError(err) {
			return err
		}
	}

	tx.state.flag(StateInitialized)
	tx.state.unflag(StateDiscarded)

	return nil
}

func (tx *MultiExec) configure(ctx context.Context) error {
	if tx.options.CAS {
		tx.state.flag(StateCAS)
	}

	if len(tx.options.Watch) == 0 {
		return nil
	}

	_, err := tx.Watch(ctx, tx.options.Watch...)
	return err
}

func (tx *MultiExec) reset() {
	tx.state.reset()
	tx.commands = nil
}

// protocolError drops the connection: the reply stream can no longer be
// trusted to line up with requests.
func (tx *MultiExec) protocolError(format string, args ...any) error {
	if err := tx.strategy.Disconnect(); hasError(err) {
		tx.log.Warn("disconnect after protocol error failed", "error", err)
	}

	return domain.NewProtocolError(format, args...)
}
