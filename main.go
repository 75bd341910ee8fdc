// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"glow/cmd"
	"glow/internal/config"
	"glow/internal/dsp"
	"glow/internal/engine"
	"glow/internal/led"
	"glow/internal/log"
	"glow/internal/mode"
	"glow/internal/render"
	"glow/internal/server"
	"glow/internal/source"
	"glow/internal/tui"
	"glow/pkg/build"
)

// main wires the controller together in three phases:
//
// 1. Startup (cold path): build info, runtime tuning, argument parsing,
//    one-off commands, stage construction.
// 2. Run (hot path): the pipeline goroutine paces itself on the sample
//    clock; the HTTP server and optional terminal preview run beside it.
// 3. Shutdown (cold path): signal-driven cancellation, sink teardown.
func main() {
	build.Initialize()

	// One thread for the sample-paced pipeline, one for everything else.
	runtime.GOMAXPROCS(2)

	opts, err := cmd.ParseArgs()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if opts.Command == "list" {
		if err := source.Initialize(); err != nil {
			log.Fatalf("portaudio: %v", err)
		}
		defer source.Terminate()
		if err := source.ListDevices(); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}
	if opts.Config == nil {
		// Help or version output already handled by the CLI.
		return
	}
	cfg := opts.Config

	if level, ok := log.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	}

	src, cleanup, err := buildSource(cfg)
	if err != nil {
		log.Fatalf("source: %v", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	acq, err := source.NewAcquirer(src, cfg.Source.SampleRate, cfg.Source.BlockSize)
	if err != nil {
		log.Fatalf("acquirer: %v", err)
	}
	ana, err := dsp.NewAnalyzer(dsp.AnalyzerConfig{
		SampleRate: cfg.Source.SampleRate,
		BlockSize:  cfg.Source.BlockSize,
		BassGain:   cfg.Analysis.BassGain,
		MidGain:    cfg.Analysis.MidGain,
		TrebleGain: cfg.Analysis.TrebleGain,
	})
	if err != nil {
		log.Fatalf("analyzer: %v", err)
	}
	ren, err := render.NewRenderer(render.DefaultConfig(), cfg.LEDs)
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}

	selector := mode.NewSelector(cfg.InitialMode)
	srv := server.New(cfg.Server.Addr, selector)

	sinks, err := buildSinks(cfg, srv)
	if err != nil {
		log.Fatalf("sinks: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	var prog *tea.Program
	sink := led.Sink(sinks)
	if opts.TUI {
		prog = tea.NewProgram(tui.NewModel(selector))
		sink = led.NewMultiSink(sinks, tui.NewPreview(prog))
		g.Go(func() error {
			_, err := prog.Run()
			// Quitting the preview shuts the whole controller down.
			stop()
			return err
		})
		g.Go(func() error {
			<-ctx.Done()
			prog.Quit()
			return nil
		})
	}

	eng, err := engine.New(engine.Config{
		Acquirer: acq,
		Analyzer: ana,
		Smoother: dsp.NewSmoother(dsp.SmootherConfig{
			WindowCap:  cfg.Analysis.SmoothingWindow,
			BassMult:   cfg.Analysis.BassMult,
			MidMult:    cfg.Analysis.MidMult,
			TrebleMult: cfg.Analysis.TrebleMult,
		}),
		Renderer: ren,
		Selector: selector,
		Sink:     sink,
		Topology: cfg.LEDs,
	})
	if err != nil {
		log.Fatalf("engine: %v", err)
	}

	srv.Start()
	log.Infof("%s %s: mode %d (%s), source %s",
		build.GetBuildFlags().Name, build.GetBuildFlags().Version,
		cfg.InitialMode, render.ModeName(cfg.InitialMode), cfg.Source.Kind)

	g.Go(func() error {
		err := eng.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Errorf("%v", err)
	}

	// The server sits inside the MultiSink; one Close covers everything.
	if err := sinks.Close(); err != nil {
		log.Errorf("sink close: %v", err)
	}
}

// buildSource constructs the configured sample source. The returned
// cleanup tears down subsystem state (portaudio) after the source is
// closed.
func buildSource(cfg *config.Config) (source.Source, func(), error) {
	switch cfg.Source.Kind {
	case "portaudio":
		if err := source.Initialize(); err != nil {
			return nil, nil, err
		}
		src, err := source.NewPortAudioSource(cfg.Source.Device, cfg.Source.SampleRate)
		if err != nil {
			source.Terminate()
			return nil, nil, err
		}
		return src, func() { source.Terminate() }, nil
	case "wav":
		src, err := source.NewWAVSource(cfg.Source.WAVPath)
		return src, nil, err
	case "synth":
		src := source.NewSynthSource(cfg.Source.SampleRate,
			cfg.Source.SynthFrequency, cfg.Source.SynthAmplitude)
		return src, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
}

// buildSinks assembles the hardware outputs behind one MultiSink. The
// WebSocket feed is always included; serial and UDP join when enabled.
func buildSinks(cfg *config.Config, srv *server.Server) (*led.MultiSink, error) {
	sinks := []led.Sink{srv}

	if cfg.Sinks.Serial.Enabled {
		s, err := led.NewSerialSink(cfg.Sinks.Serial.Port, cfg.Sinks.Serial.Baud, cfg.LEDs.TotalLEDs())
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.Sinks.UDP.Enabled {
		s, err := led.NewUDPSink(cfg.Sinks.UDP.Address, cfg.LEDs.TotalLEDs())
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return led.NewMultiSink(sinks...), nil
}
