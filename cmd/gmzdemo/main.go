// Command gmzdemo connects to a Groovy_MiSTer host, streams a static test
// frame at the configured mode's cadence, and serves health/pacer metrics
// on a local HTTP mux.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/groovymister/gomister/internal/config"
	"github.com/groovymister/gomister/internal/metrics"
	"github.com/groovymister/gomister/internal/protocol"
	"github.com/groovymister/gomister/gmz"
)

func main() {
	metricsAddr := flag.String("metrics-addr", "", "HTTP address to serve Prometheus metrics on (empty disables)")
	width := flag.Int("width", 320, "test frame width in pixels")
	height := flag.Int("height", 240, "test frame height in pixels")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("gmz: %v", err)
	}

	out, err := gmz.OpenOutput(cfg.OutputConfig())
	if err != nil {
		log.Fatalf("gmz: open output: %v", err)
	}
	defer out.Close()

	in, err := gmz.OpenInput(cfg.Host, cfg.InputPortOrDefault())
	if err != nil {
		log.Fatalf("gmz: open input: %v", err)
	}
	defer in.Close()

	if err := out.SendInit(); err != nil {
		log.Fatalf("gmz: send_init: %v", err)
	}

	modeline := protocol.Modeline{
		PixelClock: 25.2,
		HActive: uint16(*width), HBegin: uint16(*width + 16), HEnd: uint16(*width + 96), HTotal: uint16(*width + 160),
		VActive: uint16(*height), VBegin: uint16(*height + 10), VEnd: uint16(*height + 12), VTotal: uint16(*height + 45),
	}
	timing, err := out.SwitchRes(modeline)
	if err != nil {
		log.Fatalf("gmz: switch_res: %v", err)
	}

	window := gmz.NewHealthWindow()
	pc := gmz.NewPacer(timing, window)

	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(metrics.New(window, pc))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			log.Printf("gmz: metrics listening on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Printf("gmz: metrics server: %v", err)
			}
		}()
	}

	frame := make([]byte, int(*width)*int(*height))

	done := make(chan struct{})
	go func() {
		defer close(done)
		var frameNum uint32
		for {
			in.Poll()
			outcome := pc.BeginFrame(out)
			switch outcome {
			case gmz.PacerStalled:
				log.Println("gmz: pacer stalled, stopping")
				return
			case gmz.PacerSkip:
				continue
			}
			vsync := gmz.CalcVsyncLine(timing, 1_000_000, 2_000_000, 4_000_000, 2_000_000)
			if err := out.SendFrame(frame, frameNum, 0, vsync); err != nil {
				log.Printf("gmz: send_frame: %v", err)
			}
			frameNum++
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Println("gmz: shutting down")
	case <-done:
	}
}
