package fsys

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"filedeck/internal/errors"
	"filedeck/internal/log"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// RemoteConfig holds connection settings for the SFTP and FTP backends.
type RemoteConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	KeyFile  string
	Timeout  time.Duration
}

func (c RemoteConfig) addr(defaultPort int) string {
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}

func (c RemoteConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

// SFTP is a Filesystem on a remote host reached over SSH.
type SFTP struct {
	client  *sftp.Client
	sshConn *ssh.Client
}

// DialSFTP opens an SSH connection and starts an SFTP session on it.
func DialSFTP(cfg RemoteConfig) (*SFTP, error) {
	auth, err := sshAuth(cfg)
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         cfg.timeout(),
	}

	conn, err := ssh.Dial("tcp", cfg.addr(22), config)
	if err != nil {
		return nil, errors.IOError("ssh dial", cfg.Host, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, errors.IOError("start sftp session", cfg.Host, err)
	}
	return &SFTP{client: client, sshConn: conn}, nil
}

func sshAuth(cfg RemoteConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if cfg.KeyFile != "" {
		key, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, errors.IOError("read key file", cfg.KeyFile, err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, errors.NewConfigError("invalid private key", "backend.key_file", errors.InvalidConfig, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}
	return methods, nil
}

func (s *SFTP) ListChildren(dir string) ([]Child, error) {
	infos, err := s.client.ReadDir(dir)
	if err != nil {
		return nil, errors.IOError("list", dir, err)
	}

	children := make([]Child, 0, len(infos))
	for _, info := range infos {
		children = append(children, Child{
			Name:    info.Name(),
			Path:    path.Join(dir, info.Name()),
			IsDir:   info.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return children, nil
}

func (s *SFTP) CreateDirectory(p string) error {
	if _, err := s.client.Stat(p); err == nil {
		return errors.NewFileError("already exists", p, errors.AlreadyExists, nil)
	}
	if err := s.client.Mkdir(p); err != nil {
		return errors.IOError("create directory", p, err)
	}
	return nil
}

func (s *SFTP) DeleteEntry(p string) error {
	info, err := s.client.Stat(p)
	if err != nil {
		return errors.IOError("delete", p, err)
	}
	if info.IsDir() {
		err = s.client.RemoveAll(p)
	} else {
		err = s.client.Remove(p)
	}
	if err != nil {
		return errors.IOError("delete", p, err)
	}
	return nil
}

// WriteFile uploads to a temporary name and renames it over p.
func (s *SFTP) WriteFile(p string, data []byte) error {
	tmp := path.Join(path.Dir(p), "."+path.Base(p)+".part")
	f, err := s.client.Create(tmp)
	if err != nil {
		return errors.IOError("write", p, err)
	}
	_, werr := io.Copy(f, bytes.NewReader(data))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = s.client.PosixRename(tmp, p)
	}
	if werr != nil {
		if rerr := s.client.Remove(tmp); rerr != nil && !os.IsNotExist(rerr) {
			log.LogWithFields(log.F("path", tmp)).Warnf("failed to remove temp file: %v", rerr)
		}
		return errors.IOError("write", p, werr)
	}
	return nil
}

func (s *SFTP) ReadFile(p string) ([]byte, error) {
	f, err := s.client.Open(p)
	if err != nil {
		return nil, errors.IOError("read", p, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.IOError("read", p, err)
	}
	return data, nil
}

func (s *SFTP) Join(elem ...string) string { return path.Join(elem...) }

func (s *SFTP) Base(p string) string { return path.Base(p) }

func (s *SFTP) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	if s.sshConn != nil {
		return s.sshConn.Close()
	}
	return nil
}
