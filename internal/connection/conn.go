package connection

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"sync"

	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/logger"
	"github.com/luiz-simples/redix/internal/protocol"
)

const bufferSize = 16 * 1024

// Conn is a single-node connection. Reads and writes on one Conn never
// overlap: every exported operation holds the mutex for its full exchange.
type Conn struct {
	params *domain.Parameters

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	parser protocol.Parser
}

func New(params *domain.Parameters) *Conn {
	return &Conn{params: params}
}

// Factory adapts New to domain.ConnectionFactory for routers.
func Factory(params *domain.Parameters) domain.Connection {
	return New(params)
}

func (conn *Conn) Parameters() *domain.Parameters {
	return conn.params
}

func (conn *Conn) Protocol() int {
	return conn.params.Protocol
}

func (conn *Conn) IsConnected() bool {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	return conn.isConnected()
}

func (conn *Conn) Connect(ctx context.Context) error {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	return conn.connect(ctx)
}

func (conn *Conn) Disconnect() error {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	return conn.disconnect()
}

func (conn *Conn) ExecuteCommand(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if err := conn.writeCommands(ctx, cmd); hasError(err) {
		return nil, err
	}

	return conn.readReply(ctx)
}

func (conn *Conn) WriteRequest(ctx context.Context, cmd domain.Command) error {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	return conn.writeCommands(ctx, cmd)
}

// WriteBuffer sends an already encoded payload.
func (conn *Conn) WriteBuffer(ctx context.Context, payload []byte) error {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	return conn.write(ctx, payload)
}

func (conn *Conn) ReadResponse(ctx context.Context) (*domain.Reply, error) {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	return conn.readReply(ctx)
}

// Pipeline writes every command in a single flush and reads exactly one reply
// per command, in order.
func (conn *Conn) Pipeline(ctx context.Context, cmds []domain.Command) ([]*domain.Reply, error) {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if err := conn.writeCommands(ctx, cmds...); hasError(err) {
		return nil, err
	}

	replies := make([]*domain.Reply, 0, len(cmds))

	for range cmds {
		reply, err := conn.readReply(ctx)
		if hasError(err) {
			return replies, err
		}
		replies = append(replies, reply)
	}

	return replies, nil
}

// ReadLine and ReadN expose the buffered stream so Conn itself is a
// protocol.Reader. Callers must hold no other exchange in flight.
func (conn *Conn) ReadLine() ([]byte, error) {
	if !conn.isConnected() {
		return nil, domain.ErrNoConnection
	}

	return protocol.ReadLine(conn.reader)
}

func (conn *Conn) ReadN(n int) ([]byte, error) {
	if !conn.isConnected() {
		return nil, domain.ErrNoConnection
	}

	return protocol.ReadN(conn.reader, n)
}

func (conn *Conn) String() string {
	if isEmpty(conn.params.Alias) {
		return conn.params.String()
	}

	return conn.params.Alias + "@" + conn.params.String()
}

func (conn *Conn) isConnected() bool {
	return conn.conn != nil
}

func (conn *Conn) connect(ctx context.Context) error {
	if conn.isConnected() {
		return nil
	}

	parser, err := protocol.NewParser(conn.params.Protocol)
	if hasError(err) {
		return domain.NewCommunicationError(conn.params.Endpoint(), err)
	}

	socket, err := conn.dial(ctx)
	if hasError(err) {
		return domain.NewCommunicationError(conn.params.Endpoint(), err)
	}

	conn.conn = socket
	conn.reader = bufio.NewReaderSize(socket, bufferSize)
	conn.writer = bufio.NewWriterSize(socket, bufferSize)
	conn.parser = parser

	if err = conn.handshake(ctx); hasError(err) {
		conn.disconnect()
		return err
	}

	logger.Debug("connection established", "endpoint", conn.String(), "protocol", conn.params.Protocol)
	return nil
}

func (conn *Conn) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: conn.params.Timeout}

	if conn.params.Scheme != domain.SchemeTLS {
		return dialer.DialContext(ctx, conn.params.Network(), conn.params.Endpoint())
	}

	tlsDialer := &tls.Dialer{
		NetDialer: dialer,
		Config:    &tls.Config{ServerName: conn.params.Host, MinVersion: tls.VersionTLS12},
	}

	return tlsDialer.DialContext(ctx, conn.params.Network(), conn.params.Endpoint())
}

func (conn *Conn) disconnect() error {
	if !conn.isConnected() {
		return nil
	}

	err := conn.conn.Close()
	conn.conn = nil
	conn.reader = nil
	conn.writer = nil

	logger.Debug("connection closed", "endpoint", conn.String())
	return err
}

func (conn *Conn) writeCommands(ctx context.Context, cmds ...domain.Command) error {
	if err := conn.connect(ctx); hasError(err) {
		return err
	}

	return conn.write(ctx, protocol.SerializeAll(cmds))
}

func (conn *Conn) write(ctx context.Context, payload []byte) error {
	if err := conn.connect(ctx); hasError(err) {
		return err
	}

	if err := ctx.Err(); hasError(err) {
		return err
	}

	if err := conn.conn.SetWriteDeadline(deadline(ctx, conn.params.ReadWriteTimeout)); hasError(err) {
		return conn.fail(err)
	}

	if _, err := conn.writer.Write(payload); hasError(err) {
		return conn.fail(err)
	}

	if err := conn.writer.Flush(); hasError(err) {
		return conn.fail(err)
	}

	return nil
}

// readReply skips out-of-band push messages so request/response pairing
// stays strictly FIFO.
func (conn *Conn) readReply(ctx context.Context) (*domain.Reply, error) {
	if !conn.isConnected() {
		return nil, domain.NewCommunicationError(conn.params.Endpoint(), domain.ErrNoConnection)
	}

	if err := conn.conn.SetReadDeadline(deadline(ctx, conn.params.ReadWriteTimeout)); hasError(err) {
		return nil, conn.fail(err)
	}

	for {
		reply, err := conn.parser.Parse(conn)
		if hasError(err) {
			return nil, conn.fail(err)
		}

		if reply.Kind != domain.KindPush {
			return reply, nil
		}

		logger.Debug("push message skipped", "endpoint", conn.String(), "reply", reply.String())
	}
}

// fail tears the socket down: after a timeout or a framing error the stream
// position is unknown.
func (conn *Conn) fail(err error) error {
	conn.disconnect()

	if domain.IsProtocolError(err) {
		return err
	}

	return domain.NewCommunicationError(conn.params.Endpoint(), err)
}
