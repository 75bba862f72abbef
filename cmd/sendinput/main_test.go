package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/breeze-rmm/sendinput/internal/logging"
	"github.com/breeze-rmm/sendinput/internal/sendinput"
)

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, logLevel, logFormat = "", "", ""
	sendPipe, sendStrict = false, false
	normWidth, normHeight = 0, 0
	configInitForce = false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCollectPayloadsJoinsArguments(t *testing.T) {
	got, err := collectPayloads([]string{`{"type":1,`, `"ki":{"wVk":65}}`}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || string(got[0]) != `{"type":1, "ki":{"wVk":65}}` {
		t.Fatalf("collectPayloads = %q", got)
	}
}

func TestCollectPayloadsReadsStdinLines(t *testing.T) {
	stdin := strings.NewReader("{\"type\":2,\"hi\":{}}\n\n  \r\n{\"type\":1,\"ki\":{}}")
	for _, args := range [][]string{nil, {"-"}} {
		got, err := collectPayloads(args, stdin)
		if err != nil {
			t.Fatal(err)
		}
		if args == nil {
			if len(got) != 2 || string(got[0]) != `{"type":2,"hi":{}}` || string(got[1]) != `{"type":1,"ki":{}}` {
				t.Fatalf("collectPayloads = %q", got)
			}
			stdin = strings.NewReader("{}\n")
			continue
		}
		if len(got) != 1 || string(got[0]) != "{}" {
			t.Fatalf("collectPayloads(-) = %q", got)
		}
	}
}

func TestNormalizeCommand(t *testing.T) {
	out, err := execute(t, "normalize", "960", "540", "--width", "1920", "--height", "1080")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if strings.TrimSpace(out) != "32767 32767" {
		t.Fatalf("normalize output = %q", out)
	}
}

func TestNormalizeCommandRejectsBadCoordinate(t *testing.T) {
	if _, err := execute(t, "normalize", "x", "1", "--width", "10", "--height", "10"); err == nil {
		t.Fatal("expected error for non-numeric coordinate")
	}
}

func TestSendSilentByDefault(t *testing.T) {
	if _, err := execute(t, "send", "not json"); err != nil {
		t.Fatalf("send without --strict should not fail: %v", err)
	}
}

func TestSendStrictReportsDecodeError(t *testing.T) {
	_, err := execute(t, "send", "--strict", `{"type":9}`)
	if !errors.Is(err, sendinput.ErrUnknownType) {
		t.Fatalf("send --strict = %v, want ErrUnknownType", err)
	}
}

func TestConfigInitThenShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sendinput.yaml")

	out, err := execute(t, "config", "init", path)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("config init output = %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := execute(t, "config", "init", path); err == nil {
		t.Fatal("config init should refuse to overwrite without --force")
	}

	out, err = execute(t, "config", "show", "--config", path, "--log-level", "debug")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"log_level: debug", "queue_size: 256", "pipe_path:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config show output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShowRejectsFatalConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sendinput.yaml")
	if err := os.WriteFile(path, []byte("screen_width: 1920\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "config", "show", "--config", path); err == nil {
		t.Fatal("expected error for half-set screen override")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, version) {
		t.Fatalf("version output = %q", out)
	}
}

func TestSendWithJSONLogFormat(t *testing.T) {
	t.Cleanup(func() { logging.Init("text", "info", io.Discard) })

	if _, err := execute(t, "send", "--log-format", "json", "--log-level", "debug", "not json"); err != nil {
		t.Fatalf("send with JSON logging: %v", err)
	}
	if _, err := execute(t, "send", "--log-format", "text", "not json"); err != nil {
		t.Fatalf("switching back to text logging: %v", err)
	}
}
