package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"procexporter/config"
	"procexporter/exposition"
	"procexporter/metrics_server"
	"procexporter/process"
	"procexporter/process_filter"
	"procexporter/process_gopsutil"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "process-exporter"))

func main() {
	if err := run(); err != nil {
		log.Warn("Fatal: ", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	src, err := newSource(cfg.Source)
	if err != nil {
		return err
	}

	filter, err := process_filter.Compile(cfg.Filter)
	if err != nil {
		return err
	}

	collector := process.NewCollector(src, process.WithPredicate(filter.Match))
	renderer := metrics_server.RendererFunc(func() []byte {
		return []byte(exposition.Format(collector.Collect()))
	})

	srv := metrics_server.New(cfg.ListenAddr, renderer)
	if err := srv.Listen(); err != nil {
		return err
	}

	if filter != nil {
		log.Infoln("Exporting processes matching", filter)
	}
	fmt.Printf("open http://localhost%s/metrics\n", portSuffix(cfg.ListenAddr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx); err != nil {
		return err
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Drain(drainCtx); err != nil {
		log.Warn("Abandoning in-flight connections: ", err)
	}
	return nil
}

func newSource(name string) (process.Source, error) {
	switch name {
	case config.SourceGopsutil:
		return process_gopsutil.NewSource(), nil
	default:
		return nativeSource()
	}
}

// portSuffix turns a listen address into the ":port" part of a local URL.
func portSuffix(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i:]
		}
	}
	return ""
}
