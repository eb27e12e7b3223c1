package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"cathub/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The input folder is created; the output folder, metadata file and state
// directory are left for the code under test to create.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "processed")
	cfgVal.Paths.OutputDir = filepath.Join(base, "sources")
	cfgVal.Paths.MetadataFile = filepath.Join(base, "metadata.json")
	cfgVal.Paths.StateDir = filepath.Join(base, ".cathub")
	cfgVal.History.Path = filepath.Join(cfgVal.Paths.StateDir, "history.db")
	if err := os.MkdirAll(cfgVal.Paths.InputDir, 0o755); err != nil {
		t.Fatalf("mkdir input dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithHistoryDisabled turns off the run ledger on the test config.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithoutInputDir removes the input folder so tests can exercise the
// first-run path.
func WithoutInputDir() ConfigOption {
	return func(b *configBuilder) {
		if err := os.RemoveAll(b.cfg.Paths.InputDir); err != nil {
			b.t.Fatalf("remove input dir: %v", err)
		}
	}
}

// ffmpegStub writes its last argument so the caller sees an output file, and
// answers "-encoders" with the codecs cathub needs.
const ffmpegStub = `#!/bin/sh
if [ "$2" = "-encoders" ]; then
  printf ' ------\n V....D libvpx-vp9 VP9\n V....D libwebp WebP\n'
  exit 0
fi
for last; do :; done
printf 'stub output\n' > "$last"
echo "stub ffmpeg $*"
`

// failingStub prints an error and exits non-zero.
const failingStub = "#!/bin/sh\necho \"stub failure $*\" >&2\nexit 1\n"

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return withStubs(ffmpegStub, names...)
}

// WithFailingBinaries is WithStubbedBinaries with stubs that always fail.
func WithFailingBinaries(names ...string) ConfigOption {
	return withStubs(failingStub, names...)
}

func withStubs(script string, names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.InputDir)
}
