// rtshader is a CLI for generating lighting programs from material files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/rtshader/internal/config"
	"github.com/Faultbox/rtshader/internal/lighting"
	"github.com/Faultbox/rtshader/internal/logger"
	"github.com/Faultbox/rtshader/internal/program"
	"github.com/Faultbox/rtshader/internal/shadergen"
	"github.com/Faultbox/rtshader/pkg/light"
	"github.com/Faultbox/rtshader/pkg/material"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := initLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	command, args := args[0], args[1:]
	switch command {
	case "compile", "c":
		err = cmdCompile(cfg, args)
	case "watch", "w":
		err = cmdWatch(cfg, args)
	case "directive":
		err = cmdDirective(args)
	case "models":
		for _, m := range lighting.Models {
			fmt.Println(m)
		}
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`rtshader - runtime lighting program generator

Usage:
  rtshader [global options] <command> [options]

Global options:
  -config <file>       Config file (default ./rtshader.yaml)
  -debug               Enable debug logging
  -model <name>        Default lighting model (ffp, per_pixel)
  -point/-directional/-spot <n>
                       Light counts passes are compiled against

Commands:
  compile <material>...          Compile every lit pass and print the programs
  watch <material>...            Recompile materials whenever they change
  directive <model>              Print the lighting_stage line for a model
  directive -parse <line>        Parse a lighting_stage line
  models                         List lighting models
  config [-save <file>]          Print or save the effective config

Examples:
  rtshader -point 4 compile brick.yaml
  rtshader -model per_pixel compile -eye 0,2,10 lamp.toml
  rtshader watch materials/*.yaml`)
}

func initLogging(cfg *config.Config) error {
	opts := logger.DefaultOptions()
	opts.Level = cfg.Logging.Level
	if cfg.Logging.LogFile != "" {
		opts = opts.WithFile(cfg.Logging.LogFile, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups)
	}
	return logger.Init(opts)
}

func generatorOptions(cfg *config.Config) shadergen.Options {
	// Validated by config.Load.
	model, _ := lighting.ParseModel(cfg.Shader.LightingModel)
	return shadergen.Options{
		DefaultModel: model,
		Limits:       cfg.Limits(),
	}
}

func cmdCompile(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	eye := fs.String("eye", "0,0,0", "Camera position used to sort preview lights")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: rtshader compile [-eye x,y,z] <material>...")
	}
	eyePos, err := parseVec3(*eye)
	if err != nil {
		return fmt.Errorf("-eye: %w", err)
	}

	gen := shadergen.New(generatorOptions(cfg))
	state := shadergen.RenderState{LightCount: cfg.LightCount()}

	var failed bool
	for _, path := range fs.Args() {
		if err := compileFile(os.Stdout, gen, state, path, eyePos); err != nil {
			logger.Error("compile failed", zap.String("file", path), zap.Error(err))
			failed = true
		}
	}

	hits, misses := gen.Stats()
	logger.Info("compile finished", zap.Int("compiled", misses), zap.Int("reused", hits))
	if failed {
		return errors.New("some materials failed to compile")
	}
	return nil
}

// compileFile compiles one material file and writes the program listings.
// Preview lights in the file, if any, are pushed through the per-light
// update and the resulting slot values are listed as well.
func compileFile(w io.Writer, gen *shadergen.Generator, state shadergen.RenderState, path string, eye mgl32.Vec3) error {
	m, err := material.Load(path)
	if err != nil {
		return err
	}

	compiled, err := gen.CompileMaterial(m, state)
	for i, c := range compiled {
		pass := &m.Passes[i]
		if c == nil {
			fmt.Fprintf(w, "// %s / %s: skipped\n\n", m.Name, pass.Name)
			continue
		}
		fmt.Fprintf(w, "// %s / %s: %s\n", m.Name, pass.Name, c.Lighting.Type())
		if dumpErr := c.Programs.Dump(w); dumpErr != nil {
			return dumpErr
		}
		if len(m.Lights) > 0 {
			lights := append([]light.Light(nil), m.Lights...)
			light.SortByDistance(lights, eye)
			c.Update(pass, program.NewAutoParams(mgl32.Ident4()), lights)
			printSlots(w, c.Lighting.Slots())
		}
		fmt.Fprintln(w)
	}
	return err
}

func printSlots(w io.Writer, slots lighting.SlotList) {
	fmt.Fprintln(w, "slots:")
	for i, s := range slots {
		fmt.Fprintf(w, "  [%d] %s\n", i, s.Type)
		for _, p := range []*program.Parameter{s.Position, s.Direction, s.Attenuation, s.SpotParams, s.Diffuse, s.Specular} {
			if p == nil {
				continue
			}
			v := p.Value()
			fmt.Fprintf(w, "      %-32s (%g, %g, %g, %g)\n", p.Name(), v[0], v[1], v[2], v[3])
		}
	}
}

func cmdWatch(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: rtshader watch <material>...")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := shadergen.New(generatorOptions(cfg))
	state := shadergen.RenderState{LightCount: cfg.LightCount()}
	materials := make(map[string]bool, len(args))

	compile := func(path string) {
		if err := compileFile(os.Stdout, gen, state, path, mgl32.Vec3{}); err != nil {
			logger.Warn("compile failed", zap.String("file", path), zap.Error(err))
		}
	}
	paths := append([]string(nil), args...)
	for _, path := range args {
		materials[absPath(path)] = true
		compile(path)
	}

	// Config edits change limits and light counts, so they trigger a full rebuild.
	cfgPath := cfg.Path()
	if cfgPath != "" {
		paths = append(paths, cfgPath)
	}

	debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	logger.Info("watching materials", zap.Strings("files", args), zap.Duration("debounce", debounce))

	return shadergen.Watch(ctx, paths, debounce, func(path string) {
		if materials[path] {
			compile(path)
			return
		}
		next, err := config.Load()
		if err != nil {
			logger.Warn("config reload failed", zap.String("file", path), zap.Error(err))
			return
		}
		gen.Reconfigure(generatorOptions(next))
		state = shadergen.RenderState{LightCount: next.LightCount()}
		logger.Info("config reloaded", zap.String("file", path))
		for m := range materials {
			compile(m)
		}
	})
}

func cmdDirective(args []string) error {
	fs := flag.NewFlagSet("directive", flag.ExitOnError)
	parse := fs.Bool("parse", false, "Parse a lighting_stage line instead of writing one")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: rtshader directive [-parse] <model|line>")
	}

	if *parse {
		l, err := lighting.ParseDirective(lighting.ParseProperty(strings.Join(fs.Args(), " ")))
		if err != nil {
			return err
		}
		if l == nil {
			return fmt.Errorf("not a %s line", lighting.DirectiveName)
		}
		fmt.Printf("%s (%s)\n", l.Model(), l.Type())
		return nil
	}

	model, err := lighting.ParseModel(fs.Arg(0))
	if err != nil {
		return err
	}
	l, err := lighting.New(model)
	if err != nil {
		return err
	}
	return lighting.WriteDirective(os.Stdout, l)
}

func cmdConfig(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.String("save", "", "Write the effective config to this file")
	fs.Parse(args)

	if *save != "" {
		if err := cfg.SaveTo(*save); err != nil {
			return err
		}
		logger.Info("config saved", zap.String("file", *save))
		return nil
	}

	fmt.Printf("config file:    %s\n", orNone(cfg.Path()))
	fmt.Printf("lighting model: %s\n", cfg.Shader.LightingModel)
	fmt.Printf("lights:         %v\n", cfg.LightCount())
	fmt.Printf("limits:         %+v\n", cfg.Limits())
	fmt.Printf("log level:      %s\n", cfg.Logging.Level)
	return nil
}

func parseVec3(s string) (mgl32.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v mgl32.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
