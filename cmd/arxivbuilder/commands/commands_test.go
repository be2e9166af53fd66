package commands

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
	"git.home.luguber.info/inful/arxivbuilder/internal/toolchain"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		env     string
		verbose bool
		want    slog.Level
	}{
		{"", false, slog.LevelInfo},
		{"debug", false, slog.LevelDebug},
		{"WARN", false, slog.LevelWarn},
		{"error", false, slog.LevelError},
		{"bogus", false, slog.LevelInfo},
		{"error", true, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(LogLevelEnv, tt.env)
			assert.Equal(t, tt.want, parseLogLevel(tt.verbose))
		})
	}
}

func TestCLIParse_BuildFlags(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{
		"build", "paper", "out",
		"--ignore-img", "logo.png", "--ignore-img", "seal.pdf",
		"-f", "--ref", "v2", "--no-archive",
	})
	require.NoError(t, err)
	assert.Equal(t, "build <src> <dst>", ctx.Command())
	assert.Equal(t, "paper", cli.Build.Source)
	assert.Equal(t, "out", cli.Build.Dest)
	assert.Equal(t, []string{"logo.png", "seal.pdf"}, cli.Build.IgnoreImg)
	assert.True(t, cli.Build.Force)
	assert.True(t, cli.Build.NoArchive)
	assert.Equal(t, "v2", cli.Build.Ref)
	assert.Equal(t, "arxivbuilder.yaml", cli.Config)
}

func TestCLIParse_MissingDestination(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)

	_, err = parser.Parse([]string{"build", "paper"})
	assert.Error(t, err)
}

func newProject(t *testing.T) (src, dst string) {
	t.Helper()
	base := t.TempDir()
	src = filepath.Join(base, "paper")
	dst = filepath.Join(base, "submission")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sections"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "figs"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "root.tex"),
		[]byte("\\begin{document}\n\\input{sections/intro}\n\\end{document}\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sections", "intro.tex"),
		[]byte("Hello \\includegraphics[width=1cm]{figs/plot.png}\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "figs", "plot.png"), []byte("png"), 0o600))
	return src, dst
}

func TestBuildCmd_Run(t *testing.T) {
	t.Setenv(toolchain.SkipEnv, "1")
	src, dst := newProject(t)
	base := filepath.Dir(src)

	cmd := &BuildCmd{
		Target:      Target{Source: src, Dest: dst},
		Report:      filepath.Join(base, "reports", "build.json"),
		MetricsFile: filepath.Join(base, "build.prom"),
	}
	var out bytes.Buffer
	err := cmd.Run(&Global{Stdout: &out}, &CLI{Config: filepath.Join(base, "absent.yaml")})
	require.NoError(t, err)

	root, err := os.ReadFile(filepath.Join(dst, "root.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(root), "Hello \\includegraphics[width=1cm]{plot.png}")
	assert.FileExists(t, filepath.Join(dst, "plot.png"))
	assert.NoDirExists(t, filepath.Join(dst, "sections"))
	assert.Contains(t, out.String(), "Build success")

	data, err := os.ReadFile(cmd.Report)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "success", report["outcome"])
	assert.EqualValues(t, 1, report["inputs_fused"])

	prom, err := os.ReadFile(cmd.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "arxivbuilder_build_outcomes_total")
}

func TestBuildCmd_IgnoreImgFlag(t *testing.T) {
	t.Setenv(toolchain.SkipEnv, "1")
	src, dst := newProject(t)

	cmd := &BuildCmd{Target: Target{Source: src, Dest: dst, IgnoreImg: []string{"plot.png"}}}
	err := cmd.Run(&Global{}, &CLI{Config: filepath.Join(t.TempDir(), "absent.yaml")})
	require.NoError(t, err)

	root, err := os.ReadFile(filepath.Join(dst, "root.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(root), "\\includegraphics[width=1cm]{figs/plot.png}")
	assert.NoFileExists(t, filepath.Join(dst, "plot.png"))
}

func TestBuildCmd_InvalidIgnoreImg(t *testing.T) {
	src, dst := newProject(t)

	cmd := &BuildCmd{Target: Target{Source: src, Dest: dst, IgnoreImg: []string{"figs/plot.png"}}}
	err := cmd.Run(&Global{}, &CLI{Config: filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, err)

	ce, ok := aerrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, aerrors.CategoryValidation, ce.Category())
	assert.NoDirExists(t, dst)
}

func TestBuildCmd_PopulatedDestinationStillWritesReport(t *testing.T) {
	t.Setenv(toolchain.SkipEnv, "1")
	src, dst := newProject(t)
	require.NoError(t, os.MkdirAll(dst, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "keep.txt"), []byte("x"), 0o600))

	reportPath := filepath.Join(t.TempDir(), "report.json")
	cmd := &BuildCmd{Target: Target{Source: src, Dest: dst}, Report: reportPath}
	err := cmd.Run(&Global{}, &CLI{Config: filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, err)

	assert.FileExists(t, filepath.Join(dst, "keep.txt"))
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"outcome": "failed"`)
}

func TestInitCmd_Run(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arxivbuilder.yaml")
	root := &CLI{Config: path}
	var out bytes.Buffer

	require.NoError(t, (&InitCmd{}).Run(&Global{Stdout: &out}, root))
	assert.FileExists(t, path)
	assert.Contains(t, out.String(), "initialized successfully")

	err := (&InitCmd{}).Run(&Global{}, root)
	require.Error(t, err)
	ce, ok := aerrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, aerrors.CategoryAlreadyExists, ce.Category())

	require.NoError(t, (&InitCmd{Force: true}).Run(&Global{}, root))
}

func TestBuildCmd_UsesConfigFile(t *testing.T) {
	t.Setenv(toolchain.SkipEnv, "1")
	src, dst := newProject(t)
	require.NoError(t, os.Rename(filepath.Join(src, "root.tex"), filepath.Join(src, "main.tex")))

	cfgPath := filepath.Join(t.TempDir(), "arxivbuilder.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("root_document: main.tex\n"), 0o600))

	cmd := &BuildCmd{Target: Target{Source: src, Dest: dst}}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: cfgPath}))
	assert.FileExists(t, filepath.Join(dst, "main.tex"))
}
