package domain

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	SchemeTCP  = "tcp"
	SchemeTLS  = "tls"
	SchemeUnix = "unix"

	DefaultHost     = "127.0.0.1"
	DefaultPort     = 6379
	DefaultProtocol = 2
	DefaultTimeout  = 5 * time.Second

	RolePrimary = "master"
	RoleReplica = "slave"
)

var ErrInvalidParameters = errors.New("invalid connection parameters")

// Parameters identifies one physical endpoint. Values are never mutated
// after construction; use the With* helpers to derive a copy.
type Parameters struct {
	Scheme           string
	Host             string
	Port             int
	Path             string
	Timeout          time.Duration
	ReadWriteTimeout time.Duration
	Protocol         int
	Database         int
	Persistent       bool
	Alias            string
	Role             string
}

func NewParameters(host string, port int) *Parameters {
	return &Parameters{
		Scheme:   SchemeTCP,
		Host:     host,
		Port:     port,
		Timeout:  DefaultTimeout,
		Protocol: DefaultProtocol,
	}
}

// ParseParameters accepts "host:port", "tcp://host:port?opts", "tls://..." and
// "unix:///path/to/socket?opts".
func ParseParameters(raw string) (*Parameters, error) {
	return ParseParametersOver(raw, NewParameters(DefaultHost, DefaultPort))
}

// ParseParametersOver is ParseParameters starting from a copy of base, so
// only the settings the URI names replace the values of base.
func ParseParametersOver(raw string, base *Parameters) (*Parameters, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty endpoint", ErrInvalidParameters)
	}

	if !strings.Contains(raw, "://") {
		raw = SchemeTCP + "://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	params := *base
	params.Scheme = strings.ToLower(parsed.Scheme)

	switch params.Scheme {
	case SchemeTCP, SchemeTLS:
		err = params.applyHostPort(parsed.Host)
	case SchemeUnix:
		params.Host = ""
		params.Port = 0
		params.Path = parsed.Path
		if params.Path == "" {
			err = fmt.Errorf("%w: unix scheme requires a path", ErrInvalidParameters)
		}
	default:
		err = fmt.Errorf("%w: unsupported scheme %q", ErrInvalidParameters, params.Scheme)
	}

	if err != nil {
		return nil, err
	}

	if err = params.applyQuery(parsed.Query()); err != nil {
		return nil, err
	}

	return &params, nil
}

func (params *Parameters) applyHostPort(hostPort string) error {
	if hostPort == "" {
		return nil
	}

	host, port, err := net.SplitHostPort(hostPort)
	if err != nil {
		params.Host = hostPort
		return nil
	}

	if host != "" {
		params.Host = host
	}

	params.Port, err = strconv.Atoi(port)
	if err != nil || params.Port <= 0 {
		return fmt.Errorf("%w: invalid port %q", ErrInvalidParameters, port)
	}

	return nil
}

func (params *Parameters) applyQuery(query url.Values) error {
	var err error

	for key, values := range query {
		value := values[len(values)-1]

		switch strings.ToLower(key) {
		case "protocol":
			params.Protocol, err = strconv.Atoi(value)
			if err == nil && params.Protocol != 2 && params.Protocol != 3 {
				err = errors.New("protocol must be 2 or 3")
			}
		case "timeout":
			params.Timeout, err = time.ParseDuration(value)
		case "read_write_timeout":
			params.ReadWriteTimeout, err = time.ParseDuration(value)
		case "database":
			params.Database, err = strconv.Atoi(value)
		case "persistent":
			params.Persistent, err = strconv.ParseBool(value)
		case "alias":
			params.Alias = value
		case "role":
			params.Role = normalizeRole(value)
		}

		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidParameters, key, err)
		}
	}

	return nil
}

func normalizeRole(role string) string {
	switch strings.ToLower(role) {
	case "master", "primary":
		return RolePrimary
	case "slave", "replica":
		return RoleReplica
	}

	return strings.ToLower(role)
}

func (params *Parameters) Network() string {
	if params.Scheme == SchemeUnix {
		return SchemeUnix
	}

	return SchemeTCP
}

// Endpoint is the dial address and the identity used by routers.
func (params *Parameters) Endpoint() string {
	if params.Scheme == SchemeUnix {
		return params.Path
	}

	return net.JoinHostPort(params.Host, strconv.Itoa(params.Port))
}

func (params *Parameters) String() string {
	return params.Scheme + "://" + params.Endpoint()
}

func (params *Parameters) WithEndpoint(endpoint string) (*Parameters, error) {
	clone := *params
	clone.Scheme = SchemeTCP
	clone.Path = ""
	clone.Alias = ""
	clone.Role = ""

	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	clone.Host = host
	clone.Port, err = strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid port %q", ErrInvalidParameters, port)
	}

	if params.Scheme == SchemeTLS {
		clone.Scheme = SchemeTLS
	}

	return &clone, nil
}

func (params *Parameters) WithRole(role string) *Parameters {
	clone := *params
	clone.Role = normalizeRole(role)
	return &clone
}

func (params *Parameters) WithProtocol(protocol int) *Parameters {
	clone := *params
	clone.Protocol = protocol
	return &clone
}
