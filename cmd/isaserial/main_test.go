package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/klog"

	"isaserial/ioport"
	"isaserial/sim"
	"isaserial/uart"
)

func simConsole(t *testing.T) (*uart.SerialPort, *bytes.Buffer) {
	t.Helper()
	out := new(bytes.Buffer)
	bus := sim.NewBus()
	bus.Map(sim.COM1Base, sim.COM1Size, sim.NewUART(out))

	c, err := uart.New(ioport.Window{IO: bus, Base: sim.COM1Base})
	require.NoError(t, err)
	return c, out
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, uart.DefaultConfig, cfg)

	path := filepath.Join(t.TempDir(), "line.yaml")
	require.NoError(t, os.WriteFile(path, []byte("divisor: 12\nword_length: 7\nparity: even\n"), 0o644))

	cfg, err = loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 9600, cfg.Baud())
	require.Equal(t, uint8(0x1a), cfg.LCR())
	require.Equal(t, "\r\n", cfg.LineEnding)
}

func TestLoadConfigRejects(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"unknown.yaml": "baud: 9600\n",
		"invalid.yaml": "divisor: 0\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := loadConfig(path)
		require.Error(t, err, name)
	}

	_, err := loadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestRunLinesAndFile(t *testing.T) {
	c, out := simConsole(t)

	path := filepath.Join(t.TempDir(), "motd")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o644))

	require.NoError(t, run(c, []string{"boot", "ok"}, path, false))
	require.Equal(t, "boot\r\nok\r\none\r\ntwo\r\n", out.String())
}

func TestRunMissingFile(t *testing.T) {
	c, _ := simConsole(t)
	require.Error(t, run(c, nil, filepath.Join(t.TempDir(), "nope"), false))
}

func TestRouteLogOncePerEntry(t *testing.T) {
	c, out := simConsole(t)

	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	require.NoError(t, fs.Set("stderrthreshold", "FATAL"))
	t.Cleanup(func() {
		fs.Set("logtostderr", "true")
		klog.SetOutput(os.Stderr)
	})

	require.NoError(t, routeLog(fs, &uart.LineWriter{Console: c}))
	klog.Infof("info-once")
	klog.Warningf("warning-once")
	klog.Errorf("error-once")
	klog.Flush()

	s := out.String()
	for _, msg := range []string{"info-once", "warning-once", "error-once"} {
		require.Equal(t, 1, strings.Count(s, msg), "%s in %q", msg, s)
	}
	require.Equal(t, 3, strings.Count(s, "\r\n"))
}

func TestSendFileSplitCRLF(t *testing.T) {
	c, out := simConsole(t)

	path := filepath.Join(t.TempDir(), "dos")
	require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo\r"), 0o644))

	require.NoError(t, sendFile(c, path))
	require.Equal(t, "one\r\ntwo\r", out.String())
}
