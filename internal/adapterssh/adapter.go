// SPDX-License-Identifier: MPL-2.0

package adapterssh

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/xec-sh/xec/internal/secure"
	"github.com/xec-sh/xec/internal/xecore"
)

// Adapter executes commands over SSH, pooling connections by target and
// optionally wrapping the remote command in sudo.
type Adapter struct {
	pool    *pool
	askpass *secure.Handler
	logger  *log.Logger
}

// New constructs an SSH adapter. A nil logger falls back to a discard
// logger, matching adapterlocal.New's convention. Pool behavior (idle TTL,
// per-key concurrency) takes package defaults unless overridden via opts.
func New(logger *log.Logger, opts ...PoolOption) *Adapter {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{Prefix: "ssh"})
	}
	return &Adapter{
		pool:    newPool(logger, opts...),
		askpass: secure.NewHandler(),
		logger:  logger,
	}
}

// Capabilities describes what the SSH adapter supports.
func (a *Adapter) Capabilities() xecore.Descriptor {
	return xecore.Descriptor{
		Tag:          xecore.TagSSH,
		Capabilities: xecore.CapabilitySet(xecore.CapStdin | xecore.CapCopy | xecore.CapSudo),
		DefaultShell: "/bin/sh",
	}
}

// IsAvailable is a best-effort check: the SSH adapter has no daemon of its
// own to probe, so it reports true unconditionally — unreachability
// surfaces at Execute time as ConnectionFailedError instead.
func (a *Adapter) IsAvailable(ctx context.Context) bool { return true }

// Dispose closes every pooled connection and any still-open askpass
// sessions.
func (a *Adapter) Dispose(ctx context.Context) error {
	a.pool.closeAll()
	return a.askpass.Cleanup(ctx)
}

// Execute runs req.Command against the target described by
// req.AdapterOptions.(xecore.SSHOptions).
func (a *Adapter) Execute(ctx context.Context, req *xecore.Request) (*xecore.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	opts, ok := req.AdapterOptions.(xecore.SSHOptions)
	if !ok {
		return nil, &xecore.InvalidRequestError{Reason: "adapterssh requires xecore.SSHOptions"}
	}

	startedAt := time.Now()
	target := xecore.Target{Adapter: xecore.TagSSH, Host: opts.Host, Port: effectivePort(opts)}

	conn, err := a.pool.getOrDial(ctx, opts)
	if err != nil {
		return nil, &xecore.ConnectionFailedError{Target: target, Err: err}
	}
	if err := conn.acquire(ctx); err != nil {
		return nil, &xecore.ConnectionFailedError{Target: target, Err: err}
	}
	defer conn.release()

	script := buildCommandLine(req, opts)

	var askpassSession *secure.Session
	if opts.Sudo.Enabled && opts.Sudo.Method == xecore.SudoSecureAskpass {
		sftpClient, err := sftp.NewClient(conn.client)
		if err != nil {
			return nil, &xecore.ConnectionFailedError{Target: target, Err: fmt.Errorf("opening sftp for askpass: %w", err)}
		}
		defer sftpClient.Close()

		askpassSession, err = a.askpass.Open(ctx, &sftpWriter{client: sftpClient}, opts.Sudo.Password)
		if err != nil {
			return nil, &xecore.AuthenticationFailedError{Target: target, Err: err}
		}
		defer func() { _ = a.askpass.Close(ctx, askpassSession) }()
	}

	finalScript, stdinPrefix, cleanup, err := wrapSudo(script, opts.Sudo, sudoShell(opts), a.logger, askpassSession)
	defer cleanup()
	if err != nil {
		return nil, err
	}

	session, err := conn.client.NewSession()
	if err != nil {
		return nil, &xecore.ConnectionFailedError{Target: target, Err: err}
	}
	defer session.Close()

	var stdin io.Reader
	switch {
	case stdinPrefix != nil && req.Stdin != nil:
		stdin = io.MultiReader(stdinPrefix, req.Stdin.Reader())
	case stdinPrefix != nil:
		stdin = stdinPrefix
	case req.Stdin != nil:
		stdin = req.Stdin.Reader()
	}
	if stdin != nil {
		session.Stdin = stdin
	}

	limit := req.EffectiveMaxOutput()
	stdout := newCappedWriter("stdout", limit)
	stderr := newCappedWriter("stderr", limit)
	session.Stdout = stdout
	session.Stderr = stderr

	a.logger.Debug("executing ssh command", "host", opts.Host, "command", req.Command)

	done := make(chan error, 1)
	go func() { done <- session.Run(finalScript) }()

	runCtx := ctx
	var cancelTimeout context.CancelFunc
	if req.Timeout > 0 {
		runCtx, cancelTimeout = context.WithTimeout(ctx, req.Timeout)
		defer cancelTimeout()
	}

	var runErr error
	select {
	case <-runCtx.Done():
		_ = session.Signal(ssh.SIGKILL)
		duration := time.Since(startedAt)
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, &xecore.TimeoutError{Target: target, Budget: req.Timeout, Elapsed: duration}
		}
		return nil, runCtx.Err()
	case runErr = <-done:
	}

	duration := time.Since(startedAt)
	if err := stdout.err(); err != nil {
		return nil, err
	}
	if err := stderr.err(); err != nil {
		return nil, err
	}

	result := xecore.NewResult(xecore.TagSSH, target.String(), req.Command, startedAt)
	result.Duration = duration
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if runErr != nil {
		if exitErr, ok := runErr.(*ssh.ExitError); ok {
			result.ExitCode = exitErr.ExitStatus()
			result.Signal = exitErr.Signal()
		} else {
			return nil, &xecore.ConnectionFailedError{Target: target, Err: runErr}
		}
	}

	if result.ExitCode != 0 && !req.Nothrow {
		return result, &xecore.CommandFailedError{Target: target, Result: result}
	}
	return result, nil
}

// Upload copies a local file to the target via SFTP.
func (a *Adapter) Upload(ctx context.Context, opts xecore.SSHOptions, localPath, remotePath string, mode uint32) error {
	conn, err := a.pool.getOrDial(ctx, opts)
	if err != nil {
		return &xecore.ConnectionFailedError{Target: xecore.Target{Adapter: xecore.TagSSH, Host: opts.Host}, Err: err}
	}
	if err := conn.acquire(ctx); err != nil {
		return &xecore.ConnectionFailedError{Target: xecore.Target{Adapter: xecore.TagSSH, Host: opts.Host}, Err: err}
	}
	defer conn.release()
	client, err := sftp.NewClient(conn.client)
	if err != nil {
		return &xecore.ConnectionFailedError{Target: xecore.Target{Adapter: xecore.TagSSH, Host: opts.Host}, Err: err}
	}
	defer client.Close()
	return upload(client, localPath, remotePath, os.FileMode(mode))
}

// Download copies a remote file from the target via SFTP.
func (a *Adapter) Download(ctx context.Context, opts xecore.SSHOptions, remotePath, localPath string) error {
	conn, err := a.pool.getOrDial(ctx, opts)
	if err != nil {
		return &xecore.ConnectionFailedError{Target: xecore.Target{Adapter: xecore.TagSSH, Host: opts.Host}, Err: err}
	}
	if err := conn.acquire(ctx); err != nil {
		return &xecore.ConnectionFailedError{Target: xecore.Target{Adapter: xecore.TagSSH, Host: opts.Host}, Err: err}
	}
	defer conn.release()
	client, err := sftp.NewClient(conn.client)
	if err != nil {
		return &xecore.ConnectionFailedError{Target: xecore.Target{Adapter: xecore.TagSSH, Host: opts.Host}, Err: err}
	}
	defer client.Close()
	return download(client, remotePath, localPath)
}

// cappedWriter is the SSH-side twin of adapterlocal's cappedBuffer: it
// caps captured stdout/stderr and reports xecore.OutputTooLargeError once
// exceeded, without aborting the in-flight session.Run goroutine (that
// exits on its own once the remote process's pipes close).
type cappedWriter struct {
	stream  string
	limit   int64
	buf     bytes.Buffer
	tripped error
}

func newCappedWriter(stream string, limit int64) *cappedWriter {
	return &cappedWriter{stream: stream, limit: limit}
}

func (c *cappedWriter) Write(p []byte) (int, error) {
	if c.tripped != nil {
		return 0, c.tripped
	}
	if int64(c.buf.Len()+len(p)) > c.limit {
		c.tripped = &xecore.OutputTooLargeError{Stream: c.stream, Limit: c.limit}
		return 0, c.tripped
	}
	return c.buf.Write(p)
}

func (c *cappedWriter) String() string { return c.buf.String() }
func (c *cappedWriter) err() error     { return c.tripped }
