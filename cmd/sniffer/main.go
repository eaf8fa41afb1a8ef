package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ystepanoff/pulserx"
	"github.com/ystepanoff/pulserx/config"
	"github.com/ystepanoff/pulserx/monitor"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file")
	preset := flag.String("preset", "", "Timing preset, overrides decoder.preset")
	replayFile := flag.String("replay", "", "Capture file to play through the host driver")
	calibrate := flag.String("calibrate", "", "Capture file to estimate a timing profile from")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	if *preset != "" {
		cfg.Decoder.Preset = *preset
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
	}

	if *calibrate != "" {
		if err := runCalibrate(*calibrate, cfg, os.Stdout); err != nil {
			log.Fatalf("Calibration failed: %v", err)
		}
		return
	}

	dcfg, err := cfg.DecoderConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	driver, err := pulserx.NewCaptureDriver(cfg.Capture.Pin, cfg.Capture.Depth)
	if err != nil {
		log.Fatalf("Failed to create capture driver: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	rx := pulserx.NewReceiver(driver, dcfg, reg)

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			log.Printf("[Metrics] Listening on %s\r\n", cfg.Metrics.Listen)
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[Metrics] Server failed: %v\r\n", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rx.SetEnabled(true)
	go toggleOnSignal(ctx, rx)

	if *replayFile != "" {
		capture, err := loadCapture(*replayFile)
		if err != nil {
			log.Fatalf("Failed to load capture: %v", err)
		}
		go func() {
			if err := replay(ctx, driver, dcfg.Timing, capture); err != nil {
				log.Printf("[Replay] %v\r\n", err)
			}
		}()
	}

	poller := monitor.NewPoller(rx.Packets, monitor.DisplayFunc(func(text string) {
		fmt.Println(text)
	}), cfg.Monitor.Interval, cfg.Monitor.LockTimeout)
	poller.Run(ctx)

	rx.Close()
	if err := rx.Err(); err != nil {
		log.Printf("Decoder stopped with error: %v", err)
	}
}

// toggleOnSignal pauses and resumes decoding on SIGUSR1, the way leaving and
// reopening the RF screen does on the handheld.
func toggleOnSignal(ctx context.Context, rx *pulserx.Receiver) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			on := !rx.Enabled()
			rx.SetEnabled(on)
			log.Printf("[Sniffer] Decoder enabled=%v\r\n", on)
		}
	}
}
