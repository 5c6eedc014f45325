// Command mosaicsim composes the devices described in a YAML config into
// one canvas.Layout, sweeps a rainbow across the composite and lights any
// held pad white. Preview devices are served over websockets so a browser
// can stand in for missing hardware.
package main

import (
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/gridmosaic/canvas"
	"github.com/coreman2200/gridmosaic/config"
	"github.com/coreman2200/gridmosaic/device/nrz"
	"github.com/coreman2200/gridmosaic/device/preview"
	"github.com/coreman2200/gridmosaic/device/sim"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		configPath = flag.String("config", "mosaic.yaml", "path to mosaic.yaml")
		fps        = flag.Int("fps", 30, "target frames per second")
		threshold  = flag.Float64("threshold", canvas.DefaultLightThreshold, "layout light threshold 0..1")
		console    = flag.Bool("console", false, "mirror sim devices to the terminal")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg := defaultConfig()
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using built-in demo layout")
	} else {
		cfg = c
	}
	if cfg.Addr != "" {
		*addr = cfg.Addr
	}
	if cfg.FPS > 0 {
		*fps = cfg.FPS
	}

	if _, err := host.Init(); err != nil {
		log.Warn().Err(err).Msg("periph host init failed; SPI devices will fall back to sim")
	}

	lay, poller := canvas.NewPollingLayout(cfg.PollBuffer)
	defer poller.Close()
	if cfg.LightThreshold > 0 {
		lay.SetLightThreshold(cfg.LightThreshold)
	} else {
		lay.SetLightThreshold(*threshold)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	for i, d := range cfg.Devices {
		if err := addDevice(lay, mux, i, d, *console); err != nil {
			log.Fatal().Err(err).Int("device", i).Str("type", d.Type).Msg("layout registration failed")
		}
		log.Info().Int("device", i).Str("type", d.Type).
			Int("x", d.X).Int("y", d.Y).Str("rotation", d.Rotation).
			Msg("device registered")
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", *addr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	stop := make(chan struct{})
	go runDemo(lay, poller, *fps, stop)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	close(stop)
	_ = srv.Close()
}

func defaultConfig() *config.Config {
	return &config.Config{
		Devices: []config.Device{
			{Type: "preview", X: 0, Y: 0, Width: 8, Height: 8},
			{Type: "sim", X: 9, Y: 0, Width: 8, Height: 8},
		},
	}
}

func addDevice(lay *canvas.Layout, mux *http.ServeMux, i int, d config.Device, console bool) error {
	rot, err := config.ParseRotation(d.Rotation)
	if err != nil {
		return err
	}

	switch d.Type {
	case "sim":
		opts := sim.Options{Width: d.Width, Height: d.Height, Floor: d.Floor}
		if console {
			opts.Drawer = screen.New(d.Width * d.Height)
		}
		return lay.Add(d.X, d.Y, rot, sim.Builder(opts))

	case "nrz":
		spiDev := d.SPIDev
		if spiDev == "" {
			spiDev = "/dev/spidev0.0"
		}
		opts := nrz.Options{Width: d.Width, Height: d.Height, Serpentine: d.Serpentine, Floor: d.Floor}
		err := lay.Add(d.X, d.Y, rot, nrz.Builder(spiDev, opts))
		if err == nil {
			return nil
		}
		if _, fatal := err.(*canvas.OverlapError); fatal {
			return err
		}
		log.Warn().Err(err).Str("dev", spiDev).Msg("SPI init failed; falling back to sim")
		return lay.Add(d.X, d.Y, rot, sim.Builder(sim.Options{Width: d.Width, Height: d.Height, Floor: d.Floor}))

	case "preview":
		var pv *preview.Grid
		err := lay.Add(d.X, d.Y, rot, func(sink canvas.Sink) (canvas.Canvas, error) {
			pv = preview.New(sink, preview.Options{Width: d.Width, Height: d.Height, Floor: d.Floor})
			return pv, nil
		})
		if err != nil {
			return err
		}
		mux.HandleFunc(fmt.Sprintf("/ws/%d", i), pv.HandleWS)
		return nil
	}
	return fmt.Errorf("unknown device type %q", d.Type)
}

// runDemo owns all layout mutation: it drains the poller and flushes from
// a single goroutine, which is the layout's concurrency contract.
func runDemo(lay *canvas.Layout, poller *canvas.Poller, fps int, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(max(1, fps)))
	defer ticker.Stop()

	held := map[canvas.Pad]bool{}
	width, height := lay.BoundingBox()
	phase := 0.0

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		for {
			m, ok := poller.Poll()
			if !ok {
				break
			}
			pad := canvas.Pad{X: m.X, Y: m.Y}
			if m.Kind == canvas.Press {
				held[pad] = true
				log.Info().Int("x", m.X).Int("y", m.Y).Msg("press")
			} else {
				delete(held, pad)
			}
		}

		for _, p := range lay.Pads() {
			if held[p] {
				lay.SetPending(p, canvas.Color{R: 1, G: 1, B: 1})
				continue
			}
			u := float64(p.X) / float64(max(1, width-1))
			v := float64(p.Y) / float64(max(1, height-1))
			r, g, b := hsvToRGB(math.Mod(u+v+phase, 1.0), 1.0, 0.8)
			lay.SetPending(p, canvas.Color{R: r, G: g, B: b})
		}
		phase += 0.01

		if err := lay.Flush(); err != nil {
			log.Error().Err(err).Msg("flush failed")
		}
	}
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, v, q
	default:
		return v, p, q
	}
}
