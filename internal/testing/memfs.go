package testing

import (
	"io/fs"
	"path"
	"sort"
	"sync"
	"time"
)

type memFile struct {
	data    []byte
	perm    fs.FileMode
	dir     bool
	link    string
	modTime time.Time
}

// MemFS is an in-memory host.FileSystem. Parent directories are not
// required to exist.
type MemFS struct {
	mu     sync.Mutex
	files  map[string]*memFile
	writes int
	now    func() time.Time
}

// NewMemFS creates an empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string]*memFile), now: time.Now}
}

// ReadFile implements host.FileSystem.
func (m *MemFS) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.resolve(name)
	if !ok || f.dir {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), f.data...), nil
}

// WriteFile implements host.FileSystem.
func (m *MemFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.files[path.Clean(name)] = &memFile{data: append([]byte(nil), data...), perm: perm, modTime: m.now()}
	return nil
}

// MkdirAll implements host.FileSystem.
func (m *MemFS) MkdirAll(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for p := path.Clean(name); p != "/" && p != "."; p = path.Dir(p) {
		if _, ok := m.files[p]; !ok {
			m.files[p] = &memFile{dir: true, perm: perm | fs.ModeDir, modTime: m.now()}
		}
	}
	return nil
}

// Stat implements host.FileSystem. Symlinks are followed.
func (m *MemFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.resolve(name)
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return memInfo{name: path.Base(name), f: f}, nil
}

// Symlink implements host.FileSystem.
func (m *MemFS) Symlink(target, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path.Clean(link)]; ok {
		return &fs.PathError{Op: "symlink", Path: link, Err: fs.ErrExist}
	}
	m.writes++
	m.files[path.Clean(link)] = &memFile{link: target, modTime: m.now()}
	return nil
}

// Readlink implements host.FileSystem.
func (m *MemFS) Readlink(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path.Clean(name)]
	if !ok || f.link == "" {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
	}
	return f.link, nil
}

// Remove implements host.FileSystem.
func (m *MemFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path.Clean(name)]; !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	m.writes++
	delete(m.files, path.Clean(name))
	return nil
}

// Set stores a file without counting it as a write.
func (m *MemFS) Set(name string, data []byte) *MemFS {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path.Clean(name)] = &memFile{data: data, perm: 0o644, modTime: m.now()}
	return m
}

// Touch sets the modification time of name, creating a directory entry when
// it does not exist.
func (m *MemFS) Touch(name string, t time.Time) *MemFS {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path.Clean(name)]
	if !ok {
		f = &memFile{dir: true, perm: 0o755 | fs.ModeDir}
		m.files[path.Clean(name)] = f
	}
	f.modTime = t
	return m
}

// Content returns the data stored at name.
func (m *MemFS) Content(name string) (string, bool) {
	data, err := m.ReadFile(name)
	return string(data), err == nil
}

// Perm returns the permission bits stored at name.
func (m *MemFS) Perm(name string) fs.FileMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[path.Clean(name)]; ok {
		return f.perm.Perm()
	}
	return 0
}

// Writes counts mutating calls (WriteFile, Symlink, Remove).
func (m *MemFS) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Paths lists every stored path.
func (m *MemFS) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (m *MemFS) resolve(name string) (*memFile, bool) {
	f, ok := m.files[path.Clean(name)]
	for hops := 0; ok && f.link != "" && hops < 8; hops++ {
		f, ok = m.files[path.Clean(f.link)]
	}
	return f, ok && f.link == ""
}

type memInfo struct {
	name string
	f    *memFile
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return int64(len(i.f.data)) }
func (i memInfo) Mode() fs.FileMode  { return i.f.perm }
func (i memInfo) ModTime() time.Time { return i.f.modTime }
func (i memInfo) IsDir() bool        { return i.f.dir }
func (i memInfo) Sys() any           { return nil }
