// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/textproto"
	"sort"
	"time"

	"github.com/jlaffaye/ftp"

	"autopress/internal/config"
)

// FTP publishes to a remote directory over FTP. Every operation opens its
// own session so a dropped control connection never outlives one call.
type FTP struct {
	addr      string
	user      string
	pass      string
	remoteDir string
	timeout   time.Duration
}

// NewFTP creates an FTP target. The host defaults to port 21.
func NewFTP(cfg config.FTP) *FTP {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FTP{
		addr:      ftpAddr(cfg.Host),
		user:      cfg.User,
		pass:      cfg.Pass,
		remoteDir: cfg.RemoteDir,
		timeout:   timeout,
	}
}

func (f *FTP) Name() string { return "ftp" }

func (f *FTP) Write(ctx context.Context, name string, data []byte) error {
	return f.session(ctx, "stor "+name, func(c *ftp.ServerConn) error {
		return c.Stor(name, bytes.NewReader(data))
	})
}

func (f *FTP) Delete(ctx context.Context, name string) error {
	return f.session(ctx, "dele "+name, func(c *ftp.ServerConn) error {
		return c.Delete(name)
	})
}

// List returns the plain files in the remote directory.
func (f *FTP) List(ctx context.Context) ([]string, error) {
	var names []string
	err := f.session(ctx, "list", func(c *ftp.ServerConn) error {
		entries, err := c.List(".")
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.Type == ftp.EntryTypeFile {
				names = append(names, e.Name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// session dials, logs in, changes into the remote directory, runs op and
// quits. Errors are classified so a 550 reply surfaces as ErrNotFound.
func (f *FTP) session(ctx context.Context, what string, op func(*ftp.ServerConn) error) error {
	c, err := ftp.Dial(f.addr, ftp.DialWithTimeout(f.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return fmt.Errorf("ftp dial %s: %w", f.addr, err)
	}
	defer func() {
		if err := c.Quit(); err != nil {
			slog.Debug("ftp quit failed", "addr", f.addr, "error", err)
		}
	}()

	if err := c.Login(f.user, f.pass); err != nil {
		if ftpCode(err) == ftp.StatusNotLoggedIn {
			slog.Error("ftp login rejected, check publish.ftp.user and password", "addr", f.addr, "user", f.user)
		}
		return fmt.Errorf("ftp login %s: %w", f.addr, err)
	}

	if f.remoteDir != "" {
		if err := c.ChangeDir(f.remoteDir); err != nil {
			return fmt.Errorf("ftp cwd %s: %w", f.remoteDir, err)
		}
	}

	if err := op(c); err != nil {
		return classifyFTPError(what, err)
	}
	return nil
}

// classifyFTPError maps a "file unavailable" reply onto ErrNotFound.
func classifyFTPError(what string, err error) error {
	if ftpCode(err) == ftp.StatusFileUnavailable {
		return fmt.Errorf("ftp %s: %w (%v)", what, ErrNotFound, err)
	}
	return fmt.Errorf("ftp %s: %w", what, err)
}

// ftpCode extracts the server reply code, or 0 when err is not a reply.
func ftpCode(err error) int {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return tpErr.Code
	}
	return 0
}

func ftpAddr(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, "21")
}
