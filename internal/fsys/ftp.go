package fsys

import (
	"bytes"
	"io"
	"path"
	"sync"

	"filedeck/internal/errors"

	"github.com/jlaffaye/ftp"
)

// ftpConn is the part of *ftp.ServerConn the FTP filesystem drives.
type ftpConn interface {
	List(path string) ([]*ftp.Entry, error)
	MakeDir(path string) error
	Delete(path string) error
	RemoveDirRecur(path string) error
	Stor(path string, r io.Reader) error
	Retr(path string) (io.ReadCloser, error)
	Quit() error
}

// serverConn narrows Retr's *ftp.Response to an io.ReadCloser.
type serverConn struct {
	*ftp.ServerConn
}

func (c serverConn) Retr(p string) (io.ReadCloser, error) {
	return c.ServerConn.Retr(p)
}

// FTP is a Filesystem on an FTP server. Uploads are not atomic: a failed
// transfer may leave a partial file behind.
//
// The control connection carries one command at a time, so every method
// holds mu until its exchange, including any data transfer, is finished.
type FTP struct {
	mu   sync.Mutex
	conn ftpConn
}

// DialFTP connects and logs in.
func DialFTP(cfg RemoteConfig) (*FTP, error) {
	c, err := ftp.Dial(cfg.addr(21), ftp.DialWithTimeout(cfg.timeout()))
	if err != nil {
		return nil, errors.IOError("ftp dial", cfg.Host, err)
	}

	if err := c.Login(cfg.User, cfg.Password); err != nil {
		c.Quit()
		return nil, errors.IOError("ftp login", cfg.Host, err)
	}
	return newFTP(serverConn{c}), nil
}

func newFTP(conn ftpConn) *FTP {
	return &FTP{conn: conn}
}

func (f *FTP) ListChildren(dir string) ([]Child, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.conn.List(dir)
	if err != nil {
		return nil, errors.IOError("list", dir, err)
	}

	children := make([]Child, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		children = append(children, Child{
			Name:    entry.Name,
			Path:    path.Join(dir, entry.Name),
			IsDir:   entry.Type == ftp.EntryTypeFolder,
			Size:    int64(entry.Size),
			ModTime: entry.Time,
		})
	}
	return children, nil
}

// existsLocked reports whether p is listed in its parent. f.mu must be held.
func (f *FTP) existsLocked(p string) bool {
	entries, err := f.conn.List(path.Dir(p))
	if err != nil {
		return false
	}
	name := path.Base(p)
	for _, entry := range entries {
		if entry.Name == name {
			return true
		}
	}
	return false
}

func (f *FTP) CreateDirectory(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.existsLocked(p) {
		return errors.NewFileError("already exists", p, errors.AlreadyExists, nil)
	}
	if err := f.conn.MakeDir(p); err != nil {
		return errors.IOError("create directory", p, err)
	}
	return nil
}

// DeleteEntry tries a file delete first and falls back to a recursive
// directory removal.
func (f *FTP) DeleteEntry(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.conn.Delete(p)
	if err == nil {
		return nil
	}
	if derr := f.conn.RemoveDirRecur(p); derr == nil {
		return nil
	}
	return errors.IOError("delete", p, err)
}

func (f *FTP) WriteFile(p string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.conn.Stor(p, bytes.NewReader(data)); err != nil {
		return errors.IOError("write", p, err)
	}
	return nil
}

// ReadFile keeps the lock until the transfer is drained and closed; the
// server answers the next command only after that.
func (f *FTP) ReadFile(p string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.conn.Retr(p)
	if err != nil {
		return nil, errors.IOError("read", p, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.IOError("read", p, err)
	}
	return data, nil
}

func (f *FTP) Join(elem ...string) string { return path.Join(elem...) }

func (f *FTP) Base(p string) string { return path.Base(p) }

func (f *FTP) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn != nil {
		return f.conn.Quit()
	}
	return nil
}
