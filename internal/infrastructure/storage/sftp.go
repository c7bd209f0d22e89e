package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"github.com/pkg/sftp"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"github.com/taskboard/backend/internal/infrastructure/remote"
	"golang.org/x/crypto/ssh"
)

// SFTPStore keeps attachment files in a directory on a remote host. One SSH
// connection is shared and re-dialled after it fails.
type SFTPStore struct {
	ssh *remote.SSHClient
	dir string
	log *logger.Logger

	mu     sync.Mutex
	conn   *ssh.Client
	client *sftp.Client
}

func NewSFTPStore(cfg config.SFTPConfig, log *logger.Logger) *SFTPStore {
	return &SFTPStore{
		ssh: remote.NewSSHClient(remote.SSHConfig{
			Host:       cfg.Host,
			Port:       cfg.Port,
			User:       cfg.User,
			Password:   cfg.Password,
			PrivateKey: cfg.PrivateKey,
			Timeout:    cfg.Timeout,
		}),
		dir: cfg.Dir,
		log: log,
	}
}

var _ ports.FileStore = (*SFTPStore)(nil)

func (s *SFTPStore) session(ctx context.Context) (*sftp.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	conn, err := s.ssh.Connect(ctx)
	if err != nil {
		s.log.Errorw("sftp_connect_failed", "addr", s.ssh.Addr(), "error", err)
		return nil, err
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		s.log.Errorw("sftp_session_failed", "addr", s.ssh.Addr(), "error", err)
		return nil, err
	}
	if err := client.MkdirAll(s.dir); err != nil {
		client.Close()
		conn.Close()
		return nil, fmt.Errorf("create remote dir %s: %w", s.dir, err)
	}
	s.conn, s.client = conn, client
	s.log.Infow("sftp_connected", "addr", s.ssh.Addr(), "dir", s.dir)
	return client, nil
}

// reset drops the cached connection so the next call dials again.
func (s *SFTPStore) reset(client *sftp.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != client {
		return
	}
	s.client.Close()
	s.conn.Close()
	s.client, s.conn = nil, nil
}

func (s *SFTPStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	s.client.Close()
	err := s.conn.Close()
	s.client, s.conn = nil, nil
	return err
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func (s *SFTPStore) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := validKey(key); err != nil {
		return 0, err
	}
	client, err := s.session(ctx)
	if err != nil {
		return 0, err
	}

	tmp := path.Join(s.dir, "."+key+".part")
	f, err := client.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
	if err != nil {
		s.reset(client)
		return 0, err
	}
	n, err := io.Copy(f, contextReader{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = client.PosixRename(tmp, path.Join(s.dir, key))
	}
	if err != nil {
		client.Remove(tmp)
		s.log.Errorw("sftp_save_failed", "key", key, "error", err)
		return 0, err
	}
	return n, nil
}

func (s *SFTPStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	client, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	f, err := client.Open(path.Join(s.dir, key))
	if isNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, key)
	}
	if err != nil {
		s.reset(client)
		return nil, err
	}
	return f, nil
}

func (s *SFTPStore) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	client, err := s.session(ctx)
	if err != nil {
		return err
	}
	err = client.Remove(path.Join(s.dir, key))
	if err != nil && !isNotExist(err) {
		s.reset(client)
		return err
	}
	return nil
}
