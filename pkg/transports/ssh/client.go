// Package ssh uploads inventory documents to a remote host over SFTP.
package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/sftp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

// Client is an SFTP session. It is safe for concurrent use.
type Client struct {
	sftp   *sftp.Client
	conn   *ssh.Client
	logger zerolog.Logger
}

// Dial connects to the host of cfg and opens an SFTP session.
func Dial(ctx context.Context, cfg *Config, logger zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clientConfig, err := cfg.BuildSSHClientConfig()
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err, IsAuthError: true}
	}

	address := cfg.Address()
	logger = logger.With().Str("component", "sftp").Str("address", address).Logger()
	logger.Debug().Msg("Establishing SSH connection")

	dialer := net.Dialer{Timeout: cfg.ConnectionTimeout}
	netConn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err, IsTemporary: true}
	}

	// The handshake does not observe ctx; bound it by the connection timeout.
	_ = netConn.SetDeadline(time.Now().Add(cfg.ConnectionTimeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, address, clientConfig)
	if err != nil {
		_ = netConn.Close()
		return nil, &TransportError{Op: "handshake", Err: err, IsAuthError: isAuthError(err)}
	}
	_ = netConn.SetDeadline(time.Time{})

	conn := ssh.NewClient(sshConn, chans, reqs)
	session, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, &TransportError{Op: "sftp-init", Err: fmt.Errorf("failed to create SFTP client: %w", err), IsTemporary: true}
	}

	logger.Info().Msg("SFTP session established")
	return &Client{sftp: session, conn: conn, logger: logger}, nil
}

// NewClient wraps an established SFTP session. Close closes the session only.
func NewClient(session *sftp.Client, logger zerolog.Logger) *Client {
	return &Client{
		sftp:   session,
		logger: logger.With().Str("component", "sftp").Logger(),
	}
}

// WriteFile replaces the remote file at name with data. The data is written to
// a temporary file in the same directory first, so readers never observe a
// partial document.
func (c *Client) WriteFile(ctx context.Context, name string, data []byte, mode fs.FileMode) error {
	if err := ctx.Err(); err != nil {
		return &TransportError{Op: "write", Path: name, Err: err}
	}

	dir := path.Dir(name)
	if err := c.sftp.MkdirAll(dir); err != nil {
		return &TransportError{Op: "write", Path: name, Err: fmt.Errorf("failed to create remote directory: %w", err)}
	}

	tmp := path.Join(dir, "."+path.Base(name)+"-"+uuid.NewString())
	f, err := c.sftp.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return &TransportError{Op: "write", Path: name, Err: fmt.Errorf("failed to create remote file: %w", err), IsTemporary: true}
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = c.sftp.Remove(tmp)
		return &TransportError{Op: "write", Path: name, Err: err, IsTemporary: true}
	}
	if err := f.Close(); err != nil {
		_ = c.sftp.Remove(tmp)
		return &TransportError{Op: "write", Path: name, Err: err, IsTemporary: true}
	}

	if mode != 0 {
		if err := c.sftp.Chmod(tmp, mode); err != nil {
			c.logger.Warn().Err(err).Str("path", name).Msg("Failed to set file permissions")
		}
	}

	if err := c.rename(ctx, tmp, name); err != nil {
		_ = c.sftp.Remove(tmp)
		return &TransportError{Op: "write", Path: name, Err: err}
	}

	c.logger.Debug().Str("path", name).Int("bytes", len(data)).Msg("Document uploaded")
	return nil
}

// rename moves tmp over name. Servers without the posix-rename extension
// refuse to overwrite, so the target is removed first for them.
func (c *Client) rename(ctx context.Context, tmp, name string) error {
	if err := c.sftp.PosixRename(tmp, name); err == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.sftp.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return c.sftp.Rename(tmp, name)
}

// Remove deletes the remote file at name. A missing file is not an error.
func (c *Client) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return &TransportError{Op: "remove", Path: name, Err: err}
	}
	if err := c.sftp.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &TransportError{Op: "remove", Path: name, Err: err}
	}
	return nil
}

// ReadFile returns the content of the remote file at name.
func (c *Client) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Op: "read", Path: name, Err: err}
	}
	f, err := c.sftp.Open(name)
	if err != nil {
		return nil, &TransportError{Op: "read", Path: name, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &TransportError{Op: "read", Path: name, Err: err, IsTemporary: true}
	}
	return data, nil
}

// Close ends the SFTP session and the SSH connection, if owned.
func (c *Client) Close() error {
	err := c.sftp.Close()
	if c.conn != nil {
		err = errors.Join(err, c.conn.Close())
	}
	return err
}

// isAuthError reports a handshake rejected by every offered auth method.
func isAuthError(err error) bool {
	return strings.Contains(err.Error(), "unable to authenticate")
}
