package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

var (
	ErrSSHConnection     = errors.New("ssh: connection failed")
	ErrSSHAuthentication = errors.New("ssh: authentication failed")
)

type SSHConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	PrivateKey string
	Timeout    time.Duration
	MaxRetries int
	// Backoff is multiplied by the attempt number between retries.
	Backoff time.Duration
}

type SSHClient struct {
	config SSHConfig
}

func NewSSHClient(cfg SSHConfig) *SSHClient {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = 2 * time.Second
	}
	return &SSHClient{config: cfg}
}

func (c *SSHClient) Addr() string {
	return net.JoinHostPort(c.config.Host, fmt.Sprint(c.config.Port))
}

func (c *SSHClient) authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if c.config.PrivateKey != "" {
		signer, err := ssh.ParsePrivateKey([]byte(c.config.PrivateKey))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid private key", ErrSSHAuthentication)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if c.config.Password != "" {
		methods = append(methods, ssh.Password(c.config.Password))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: no credentials provided", ErrSSHAuthentication)
	}

	return methods, nil
}

func (c *SSHClient) clientConfig() (*ssh.ClientConfig, error) {
	methods, err := c.authMethods()
	if err != nil {
		return nil, err
	}
	return &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            methods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.config.Timeout,
	}, nil
}

// Connect dials the host, retrying with a linear backoff until MaxRetries
// attempts fail or ctx is done.
func (c *SSHClient) Connect(ctx context.Context) (*ssh.Client, error) {
	sshConfig, err := c.clientConfig()
	if err != nil {
		return nil, err
	}

	addr := c.Addr()
	var connectErr error
	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		client, err := c.dial(ctx, addr, sshConfig)
		if err == nil {
			return client, nil
		}
		connectErr = err

		if attempt < c.config.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrSSHConnection, ctx.Err())
			case <-time.After(time.Duration(attempt) * c.config.Backoff):
			}
		}
	}

	errType := "connection failed"
	if errors.Is(connectErr, context.DeadlineExceeded) || isTimeout(connectErr) {
		errType = "connection timed out"
	}
	return nil, fmt.Errorf("%w: %s: %v (after %d attempts)", ErrSSHConnection, errType, connectErr, c.config.MaxRetries)
}

func (c *SSHClient) dial(ctx context.Context, addr string, sshConfig *ssh.ClientConfig) (*ssh.Client, error) {
	dialer := net.Dialer{
		Timeout:   c.config.Timeout,
		KeepAlive: 60 * time.Second,
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// The handshake gets the same deadline as the dial.
	conn.SetDeadline(time.Now().Add(c.config.Timeout))
	sc, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetDeadline(time.Time{})
	return ssh.NewClient(sc, chans, reqs), nil
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline")
}
