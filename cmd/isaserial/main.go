package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/mattn/go-tty"
	"gopkg.in/yaml.v2"
	"k8s.io/klog"

	"isaserial/ioport"
	"isaserial/sim"
	"isaserial/uart"
)

func main() {
	klog.InitFlags(nil)

	configPath := flag.String("config", "", "YAML line configuration (default 8-N-1, 115200, CRLF)")
	backend := flag.String("backend", "sim", "Register backend: sim or devport")
	base := flag.Uint("base", uart.COM1, "UART I/O base")
	latency := flag.Int("latency", 0, "Simulated LSR reads per byte before THRE sets (sim only)")
	limit := flag.Int("limit", 0, "Give up after this many LSR polls per byte (0 waits forever)")
	file := flag.String("file", "", "Send this file's contents")
	interactive := flag.Bool("interactive", false, "Send what is typed on the terminal until Ctrl-D")
	trace := flag.Bool("trace", false, "Dump register accesses to stderr on exit")
	logToConsole := flag.Bool("log_to_console", false, "Send log output through the serial console")

	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		klog.Exitf("Config: %v", err)
	}

	// Build the register path
	var (
		pio  ioport.PortIO
		dev  *sim.UART
		host *ioport.DevPort
	)
	switch *backend {
	case "sim":
		bus := sim.NewBus()
		dev = sim.NewUART(os.Stdout)
		dev.TxLatency = *latency
		bus.Map(uint16(*base), sim.COM1Size, dev)
		pio = bus
	case "devport":
		host = &ioport.DevPort{}
		pio = host
	default:
		klog.Exitf("Unknown backend %q", *backend)
	}

	var port uart.RegisterPort = ioport.Window{IO: pio, Base: uint16(*base)}
	rec := &ioport.Recorder{Port: port}
	if *trace {
		port = rec
	}

	opts := []uart.Option{uart.WithConfig(cfg), uart.WithBase(uint16(*base))}
	if *limit > 0 {
		opts = append(opts, uart.WithWaiter(uart.BoundedSpin{Limit: *limit}))
	}
	console, err := uart.New(port, opts...)
	if err != nil {
		klog.Exitf("uart.New: %v", err)
	}

	if *logToConsole {
		if err := routeLog(flag.CommandLine, &uart.LineWriter{Console: console}); err != nil {
			klog.Exitf("log_to_console: %v", err)
		}
	}
	klog.Infof("COM at %#x: %d baud, lcr %#02x", console.Base(), cfg.Baud(), console.LCR())

	if err := run(console, flag.Args(), *file, *interactive); err != nil {
		klog.Errorf("%v", err)
	}

	if *trace {
		dumpTrace(os.Stderr, rec.Trace)
	}
	if host != nil && host.Err() != nil {
		klog.Warningf("Port I/O failed, output may be lost: %v", host.Err())
	}
	if dev != nil {
		dev.Flush()
		if dev.Overruns() > 0 {
			klog.Warningf("%d bytes overwritten in THR", dev.Overruns())
		}
	}
	klog.Flush()
}

// routeLog sends klog output to w. klog copies every entry into the streams
// of all lower severities, so only INFO is given w and the rest discard.
func routeLog(fs *flag.FlagSet, w io.Writer) error {
	if err := fs.Set("logtostderr", "false"); err != nil {
		return err
	}
	klog.SetOutputBySeverity("INFO", w)
	for _, s := range []string{"WARNING", "ERROR", "FATAL"} {
		klog.SetOutputBySeverity(s, io.Discard)
	}
	return nil
}

func loadConfig(path string) (uart.Config, error) {
	cfg := uart.DefaultConfig
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func run(console *uart.SerialPort, lines []string, file string, interactive bool) error {
	for _, l := range lines {
		if _, err := console.WriteString(l); err != nil {
			return err
		}
		if err := console.Newline(); err != nil {
			return err
		}
	}

	if file != "" {
		if err := sendFile(console, file); err != nil {
			return fmt.Errorf("send %s: %w", file, err)
		}
	}

	if interactive {
		return typeLoop(console)
	}
	return nil
}

func sendFile(console uart.Console, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	bar := pb.Full.Start64(fi.Size())
	bar.SetWriter(os.Stderr)
	defer bar.Finish()

	w := &uart.LineWriter{Console: console}
	if _, err := io.Copy(w, bar.NewProxyReader(f)); err != nil {
		return err
	}
	return w.Flush()
}

const (
	ctrlC = 0x03
	ctrlD = 0x04
)

func typeLoop(console uart.Console) error {
	t, err := tty.Open()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer t.Close()

	for {
		r, err := t.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch r {
		case ctrlC, ctrlD:
			return nil
		case '\r', '\n':
			err = console.Newline()
		default:
			_, err = console.WriteString(string(r))
		}
		if err != nil {
			return err
		}
	}
}

func dumpTrace(w io.Writer, t ioport.Trace) {
	data := color.New(color.FgGreen)
	ctrl := color.New(color.FgYellow, color.Bold)
	poll := color.New(color.Faint)

	for _, a := range t {
		c := ctrl
		switch {
		case a.Offset == uart.RegLSR:
			c = poll
		case a.Offset == uart.RegData && !a.DLAB:
			c = data
		}
		c.Fprintln(w, a.String())
	}
}
