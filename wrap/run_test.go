package wrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"hoverguard/config"
	"hoverguard/hover"
	"hoverguard/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func testCommands() *cli.Command {
	flags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringSliceFlag{Name: "ext"},
			&cli.StringSliceFlag{Name: "exclude"},
			&cli.BoolFlag{Name: "fail-fast"},
			&cli.BoolFlag{Name: "dry-run"},
			&cli.BoolFlag{Name: "backup"},
		}
	}
	return &cli.Command{
		Name: "test",
		Commands: []*cli.Command{
			{Name: "wrap", Action: Run, Flags: flags()},
			{Name: "check", Action: Check, Flags: flags()},
		},
	}
}

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "main.scss", sampleHover)
	writeFile(t, root, "plain.scss", samplePlain)
	writeFile(t, root, "components/button.scss", "button:hover { opacity: .8; }\n")
	writeFile(t, root, "components/button.css", "button:hover { opacity: .8; }\n")
	writeFile(t, root, "node_modules/lib/lib.scss", "a:hover { color: red; }\n")
	return root
}

func isWrapped(t *testing.T, path string) bool {
	t.Helper()
	return strings.Contains(readFile(t, path), hover.GuardOpen)
}

func TestProcess_Tree(t *testing.T) {
	_, env := setupTestEnv(t)
	root := makeTree(t)

	sum, err := process(context.Background(), root, &env.Cfg.Processing, nil, false, env.Log)
	if err != nil {
		t.Fatalf("process() error = %v", err)
	}

	if sum.Inspected != 3 || sum.Modified != 2 || sum.Wrapped != 2 || sum.Failed != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if !isWrapped(t, filepath.Join(root, "main.scss")) {
		t.Error("main.scss was not wrapped")
	}
	if !isWrapped(t, filepath.Join(root, "components", "button.scss")) {
		t.Error("components/button.scss was not wrapped")
	}
	if isWrapped(t, filepath.Join(root, "components", "button.css")) {
		t.Error("file with other extension was changed")
	}
	if isWrapped(t, filepath.Join(root, "node_modules", "lib", "lib.scss")) {
		t.Error("excluded directory was processed")
	}
	if readFile(t, filepath.Join(root, "plain.scss")) != samplePlain {
		t.Error("file without :hover was changed")
	}

	// second run has nothing to do
	sum, err = process(context.Background(), root, &env.Cfg.Processing, nil, false, env.Log)
	if err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if sum.Modified != 0 {
		t.Errorf("second run modified %d files", sum.Modified)
	}
}

func TestProcess_ContinueOnError(t *testing.T) {
	_, env := setupTestEnv(t)
	root := makeTree(t)
	writeFile(t, root, "a-broken.scss", "a:hover { content: \"\xff\"; }\n")
	writeFile(t, root, "z-broken.scss", "a:hover { content: \"\xfe\"; }\n")

	sum, err := process(context.Background(), root, &env.Cfg.Processing, nil, false, env.Log)
	if err == nil {
		t.Fatal("expected error")
	}
	if n := len(multierr.Errors(errors.Unwrap(err))); n != 2 {
		t.Errorf("expected 2 collected errors, got %d: %v", n, err)
	}
	if !errors.Is(err, ErrEncoding) {
		t.Errorf("error does not wrap ErrEncoding: %v", err)
	}
	if sum.Failed != 2 {
		t.Errorf("Failed = %d, want 2", sum.Failed)
	}
	// files after the failed one were still processed
	if !isWrapped(t, filepath.Join(root, "main.scss")) {
		t.Error("main.scss was not wrapped")
	}
}

func TestProcess_FailFast(t *testing.T) {
	_, env := setupTestEnv(t)
	root := makeTree(t)
	writeFile(t, root, "a-broken.scss", "a:hover { content: \"\xff\"; }\n")

	cfg := env.Cfg.Processing
	cfg.OnError = config.OnErrorAbort

	sum, err := process(context.Background(), root, &cfg, nil, false, env.Log)
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("process() error = %v, want ErrEncoding", err)
	}
	if sum.Failed != 1 || sum.Inspected != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	// "a-broken.scss" comes first, nothing else must be touched
	if isWrapped(t, filepath.Join(root, "main.scss")) {
		t.Error("processing continued after failure")
	}
}

func TestProcess_UnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permissions are not enforced")
	}
	_, env := setupTestEnv(t)
	root := makeTree(t)
	locked := filepath.Join(root, "components")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	sum, err := process(context.Background(), root, &env.Cfg.Processing, nil, false, env.Log)
	if err == nil {
		t.Error("expected error for unreadable directory")
	}
	if sum.Modified != 1 {
		t.Errorf("Modified = %d, want 1", sum.Modified)
	}
}

func TestProcess_Cancelled(t *testing.T) {
	_, env := setupTestEnv(t)
	root := makeTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := process(ctx, root, &env.Cfg.Processing, nil, false, env.Log); !errors.Is(err, context.Canceled) {
		t.Errorf("process() error = %v, want context.Canceled", err)
	}
	if isWrapped(t, filepath.Join(root, "main.scss")) {
		t.Error("cancelled run changed files")
	}
}

func TestRun_Command(t *testing.T) {
	ctx, env := setupTestEnv(t)
	root := makeTree(t)

	err := testCommands().Run(ctx, []string{"test", "wrap", "--ext", ".css", "--exclude", "**/main.scss", root})
	if err != nil {
		t.Fatalf("wrap error = %v", err)
	}
	if !isWrapped(t, filepath.Join(root, "components", "button.css")) {
		t.Error("--ext was not applied")
	}
	if isWrapped(t, filepath.Join(root, "components", "button.scss")) || isWrapped(t, filepath.Join(root, "main.scss")) {
		t.Error("configured extensions must be replaced by --ext")
	}
	if env.DryRun {
		t.Error("DryRun must not be set")
	}
}

func TestRun_DryRunAndBackup(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	root := makeTree(t)

	if err := testCommands().Run(ctx, []string{"test", "wrap", "--dry-run", root}); err != nil {
		t.Fatalf("wrap --dry-run error = %v", err)
	}
	if isWrapped(t, filepath.Join(root, "main.scss")) {
		t.Error("dry run changed files")
	}

	if err := testCommands().Run(ctx, []string{"test", "wrap", "--backup", root}); err != nil {
		t.Fatalf("wrap --backup error = %v", err)
	}
	if got := readFile(t, filepath.Join(root, "main.scss.orig")); got != sampleHover {
		t.Errorf("backup content = %q", got)
	}
}

func TestCheck_Command(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	root := makeTree(t)

	err := testCommands().Run(ctx, []string{"test", "check", root})
	if err == nil || !strings.Contains(err.Error(), "2 file(s)") {
		t.Errorf("check error = %v, want report about 2 files", err)
	}
	if isWrapped(t, filepath.Join(root, "main.scss")) {
		t.Error("check changed files")
	}

	if err := testCommands().Run(ctx, []string{"test", "wrap", root}); err != nil {
		t.Fatalf("wrap error = %v", err)
	}
	if err := testCommands().Run(ctx, []string{"test", "check", root}); err != nil {
		t.Errorf("check after wrap error = %v", err)
	}
}

func TestResolveRoot(t *testing.T) {
	dir := t.TempDir()

	got, err := resolveRoot(dir)
	if err != nil {
		t.Fatalf("resolveRoot() error = %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("resolveRoot() = %q, want absolute path", got)
	}

	if _, err := resolveRoot(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing root")
	}

	file := writeFile(t, dir, "a.scss", "")
	if _, err := resolveRoot(file); err == nil {
		t.Error("expected error for file root")
	}

	// executable directory is used by default
	got, err = resolveRoot("")
	if err != nil {
		t.Fatalf("resolveRoot(\"\") error = %v", err)
	}
	exe, _ := os.Executable()
	exe, _ = filepath.EvalSymlinks(exe)
	if got != filepath.Dir(exe) {
		t.Errorf("resolveRoot(\"\") = %q, want %q", got, filepath.Dir(exe))
	}
}
