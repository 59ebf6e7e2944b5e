package transaction

import (
	"github.com/luiz-simples/redix/internal/domain"
)

// AbortedError reports a transaction that executed nothing: EXEC returned
// nil after a watched key changed, or a command was refused while queuing.
// Tx is the transaction, still usable for Discard or a new attempt.
//
// A refusal from ExecuteCommand outside a block leaves Tx initialized with
// the earlier commands still queued and, on a cluster, the slot still pinned.
// The caller must Discard it; a later Exec would commit the partial queue.
type AbortedError struct {
	Tx     *MultiExec
	Reason string
}

func newAborted(tx *MultiExec, reason string) *AbortedError {
	return &AbortedError{Tx: tx, Reason: reason}
}

func (err *AbortedError) Error() string {
	return domain.ErrTransactionAborted.Error() + ": " + err.Reason
}

func (err *AbortedError) Unwrap() error {
	return domain.ErrTransactionAborted
}
