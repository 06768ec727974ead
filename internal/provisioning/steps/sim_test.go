package steps

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"

	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/platform/apt"
	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
	"github.com/horilla-opensource/horilla-installer/internal/platform/osrelease"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
	"github.com/horilla-opensource/horilla-installer/internal/render"
	testutil "github.com/horilla-opensource/horilla-installer/internal/testing"
)

const ubuntuNoble = "ID=ubuntu\nID_LIKE=debian\nVERSION_ID=\"24.04\"\nVERSION_CODENAME=noble\n"

const scratchDir = "/tmp/horilla-installer-run"

// simHost is a stateful fake machine. Commands change what later probes
// observe, so whole pipeline runs can be checked for idempotence.
type simHost struct {
	t      *testing.T
	runner *testutil.FakeRunner
	fs     *testutil.MemFS

	mu           sync.Mutex
	installed    map[string]bool
	upgradable   bool
	dockerUp     bool
	running      bool
	adminExists  bool
	crontab      string
	mutations    []string
	dbNeverReady bool
	certbotFails bool
	nginxFails   bool

	buckets *fakeBuckets
	now     time.Time
}

type fakeBuckets struct {
	mu      sync.Mutex
	exists  bool
	created int
}

func (b *fakeBuckets) BucketExists(context.Context, string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exists, nil
}

func (b *fakeBuckets) CreateBucket(context.Context, string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.exists = true
	b.created++
	return nil
}

func newSimHost(t *testing.T) *simHost {
	t.Helper()
	s := &simHost{
		t:         t,
		runner:    testutil.NewFakeRunner(),
		fs:        testutil.NewMemFS(),
		installed: map[string]bool{},
		buckets:   &fakeBuckets{},
		now:       time.Now(),
	}
	s.fs.Set(osrelease.Path, []byte(ubuntuNoble))
	s.fs.Set("/etc/nginx/sites-available/default", []byte("server { listen 80 default_server; }"))
	require.NoError(t, s.fs.Symlink("/etc/nginx/sites-available/default", DefaultSite))

	s.runner.
		OnFunc("apt-get", s.aptGet).
		OnFunc("apt list", func(host.Command) host.Result {
			if s.upgradable {
				return testutil.OK("Listing...\nopenssl/noble-updates 3.0.13 amd64 [upgradable from: 3.0.10]\n")
			}
			return testutil.OK("Listing...\n")
		}).
		OnFunc("dpkg-query", func(cmd host.Command) host.Result {
			if s.isInstalled(cmd.Args[len(cmd.Args)-1]) {
				return testutil.OK("install ok installed")
			}
			return testutil.Fail(1, "dpkg-query: no packages found")
		}).
		On("dpkg --print-architecture", testutil.OK("amd64\n")).
		OnFunc("curl", s.mutate(func(cmd host.Command) {
			s.fs.Set(cmd.Args[len(cmd.Args)-1], []byte("-----BEGIN PGP PUBLIC KEY BLOCK-----"))
		})).
		OnFunc("install", s.mutate(func(cmd host.Command) {
			src, dst := cmd.Args[len(cmd.Args)-2], cmd.Args[len(cmd.Args)-1]
			if data, ok := s.fs.Content(src); ok {
				s.fs.Set(dst, []byte(data))
			}
		})).
		OnFunc("systemctl", s.mutate(func(cmd host.Command) {
			if slices.Contains(cmd.Args, "docker") && s.installed["docker-ce"] {
				s.dockerUp = true
			}
		})).
		OnFunc("docker info", func(host.Command) host.Result {
			if s.dockerUp {
				return testutil.OK("27.3.1")
			}
			return testutil.Fail(1, "Cannot connect to the Docker daemon at unix:///var/run/docker.sock")
		}).
		OnFunc("docker compose", s.compose).
		OnFunc("docker compose version", func(host.Command) host.Result {
			if s.isInstalled("docker-compose-plugin") {
				return testutil.OK("Docker Compose version v2.29.7")
			}
			return testutil.Fail(125, "docker: 'compose' is not a docker command.")
		}).
		OnFunc("nginx -t", func(host.Command) host.Result {
			if s.nginxFails {
				return testutil.Fail(1, "nginx: [emerg] unexpected end of file")
			}
			return testutil.OK("")
		}).
		OnFunc("certbot", func(cmd host.Command) host.Result {
			s.record(cmd)
			if s.certbotFails {
				return testutil.Fail(1, "Certbot failed to authenticate some domains (authenticator: webroot)")
			}
			domain := cmd.Args[slices.Index(cmd.Args, "-d")+1]
			s.fs.Set(render.CertificatePath(domain), []byte("cert"))
			s.fs.Set(render.CertificateKeyPath(domain), []byte("key"))
			return testutil.OK("")
		}).
		OnFunc("git", s.git).
		OnFunc("borg init", s.mutate(func(cmd host.Command) {
			s.fs.Set(filepath.Join(cmd.Args[len(cmd.Args)-1], "config"), []byte("[repository]"))
		})).
		OnFunc("crontab -", func(cmd host.Command) host.Result {
			s.record(cmd)
			s.crontab = string(cmd.Stdin)
			return testutil.OK("")
		}).
		OnFunc("crontab -l", func(host.Command) host.Result {
			if s.crontab == "" {
				return testutil.Fail(1, "no crontab for root")
			}
			return testutil.OK(s.crontab)
		})
	return s
}

func (s *simHost) record(cmd host.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations = append(s.mutations, cmd.String())
}

func (s *simHost) mutate(fn func(host.Command)) func(host.Command) host.Result {
	return func(cmd host.Command) host.Result {
		s.record(cmd)
		fn(cmd)
		return testutil.OK("")
	}
}

func (s *simHost) isInstalled(pkg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installed[pkg]
}

func (s *simHost) aptGet(cmd host.Command) host.Result {
	s.record(cmd)
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case slices.Contains(cmd.Args, "install"):
		for _, pkg := range cmd.Args[slices.Index(cmd.Args, "-y")+1:] {
			s.installed[pkg] = true
		}
	case slices.Contains(cmd.Args, "update"):
		s.fs.Touch(apt.ListsDir, s.now)
	case slices.Contains(cmd.Args, "upgrade"):
		s.upgradable = false
	}
	return testutil.OK("")
}

func (s *simHost) compose(cmd host.Command) host.Result {
	args := cmd.Args
	switch {
	case slices.Contains(args, "up"):
		s.record(cmd)
		s.running = true
		return testutil.OK("")
	case slices.Contains(args, "ps"):
		if !s.running {
			return testutil.OK("")
		}
		health := "healthy"
		if s.dbNeverReady {
			health = "starting"
		}
		return testutil.OK(`{"Service":"db","State":"running","Health":"` + health + `"}` + "\n" +
			`{"Service":"server","State":"running","Health":""}` + "\n")
	case slices.Contains(args, "shell"):
		if s.adminExists {
			return testutil.OK("")
		}
		return testutil.Fail(3, "")
	case slices.Contains(args, "createsuperuser"):
		s.record(cmd)
		s.adminExists = true
		return testutil.OK("Superuser created successfully.")
	}
	s.record(cmd)
	return testutil.OK("")
}

func (s *simHost) git(cmd host.Command) host.Result {
	dir := cmd.Args[1]
	switch {
	case slices.Contains(cmd.Args, "rev-parse"):
		if host.Exists(s.fs, filepath.Join(dir, ".git", "HEAD")) {
			return testutil.OK("3f1c2a9\n")
		}
		return testutil.Fail(1, "")
	case slices.Contains(cmd.Args, "checkout"):
		_ = s.fs.MkdirAll(filepath.Join(dir, ".git"), 0o755)
		s.fs.Set(filepath.Join(dir, ".git", "HEAD"), []byte("3f1c2a9"))
		s.fs.Set(filepath.Join(dir, "requirements.txt"), []byte("Django\n"))
	}
	s.record(cmd)
	return testutil.OK("")
}

// Mutations returns mutating command lines and resets the record.
func (s *simHost) Mutations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.mutations
	s.mutations = nil
	return out
}

// context builds a fresh provisioning context, as a new invocation would.
func (s *simHost) context(cfg *config.Config) *provisioning.Context {
	ctx := provisioning.NewContext(testutil.TestContext(s.t), cfg, host.New(s.runner, s.fs))
	ctx.TempDir = scratchDir
	ctx.Observer = provisioning.NewLogObserver(testr.New(s.t))
	ctx.Buckets = s.buckets
	ctx.Now = func() time.Time {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.now
	}
	ctx.Sleep = func(ctx context.Context, d time.Duration) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.now = s.now.Add(d)
		return ctx.Err()
	}
	ctx.LookPath = func(file string) (string, error) {
		if file == "docker" && !s.isInstalled("docker-ce") {
			return "", errors.New("executable file not found in $PATH")
		}
		return "/usr/bin/" + file, nil
	}
	ctx.Privileged = func() bool { return true }
	ctx.WaitForPort = func(context.Context, string, int, time.Duration) error {
		if !s.running {
			return errors.New("connection refused")
		}
		return nil
	}
	return ctx
}

// run executes the default pipeline once.
func (s *simHost) run(cfg *config.Config) (*provisioning.State, error) {
	ctx := s.context(cfg)
	require.NoError(s.t, provisioning.Preflight(ctx))
	return provisioning.NewPipeline(Default()...).Run(ctx)
}

func commandsWith(lines []string, substr string) []string {
	var out []string
	for _, l := range lines {
		if strings.Contains(l, substr) {
			out = append(out, l)
		}
	}
	return out
}
