// Package shadergen compiles material passes into vertex/fragment program
// sets with the configured lighting model and caches the results.
package shadergen

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/rtshader/internal/lighting"
	"github.com/Faultbox/rtshader/internal/logger"
	"github.com/Faultbox/rtshader/internal/program"
	"github.com/Faultbox/rtshader/pkg/light"
	"github.com/Faultbox/rtshader/pkg/material"
)

// ErrNotApplicable is returned for passes that have lighting disabled.
var ErrNotApplicable = errors.New("lighting disabled for pass")

// RenderState is the host state a pass is compiled against.
type RenderState struct {
	// LightCount is the number of lights of each type the pass should handle.
	LightCount light.Counts
}

// Options configures a Generator.
type Options struct {
	DefaultModel lighting.Model
	Limits       program.Limits
}

// DefaultOptions returns per-vertex lighting with the default program limits.
func DefaultOptions() Options {
	return Options{
		DefaultModel: lighting.ModelFFP,
		Limits:       program.DefaultLimits(),
	}
}

// Compiled is the result of compiling one pass.
type Compiled struct {
	Model    lighting.Model
	Lighting lighting.Lighting
	Programs *program.Set
}

// Update pushes the active lights into the compiled programs. lights should
// be sorted by relevance to the renderable, nearest first.
func (c *Compiled) Update(pass *material.Pass, src lighting.AutoParamSource, lights []light.Light) {
	c.Lighting.UpdateGPUProgramsParams(pass, src, lights)
}

// cacheKey captures everything resolution depends on.
type cacheKey struct {
	model    lighting.Model
	counts   light.Counts
	track    material.TrackVertexColour
	specular bool
}

// Generator compiles passes and caches compiled programs by configuration.
type Generator struct {
	opts Options
	log  *zap.Logger

	mu     sync.Mutex
	cache  map[cacheKey]*Compiled
	hits   int
	misses int
}

// New creates a generator.
func New(opts Options) *Generator {
	if opts.DefaultModel == "" {
		opts.DefaultModel = lighting.ModelFFP
	}
	if opts.Limits == (program.Limits{}) {
		opts.Limits = program.DefaultLimits()
	}
	return &Generator{
		opts:  opts,
		log:   logger.Named("shadergen"),
		cache: make(map[cacheKey]*Compiled),
	}
}

// ModelFor returns the lighting model selected by the pass's lighting_stage
// value, or the default model when the pass does not name one.
func (g *Generator) ModelFor(pass *material.Pass) (lighting.Model, error) {
	if pass.LightingStage == "" {
		g.mu.Lock()
		defer g.mu.Unlock()
		return g.opts.DefaultModel, nil
	}
	return lighting.ParseModel(pass.LightingStage)
}

// Compile resolves and assembles the lighting programs of pass. Passes with
// the same model, light counts and lighting flags share one compiled result.
func (g *Generator) Compile(pass *material.Pass, state RenderState) (*Compiled, error) {
	model, err := g.ModelFor(pass)
	if err != nil {
		return nil, fmt.Errorf("pass %q: %w", pass.Name, err)
	}

	l, err := lighting.New(model)
	if err != nil {
		return nil, err
	}
	ok, err := l.PreAddToRenderState(state.LightCount, pass)
	if err != nil {
		return nil, fmt.Errorf("pass %q: %w", pass.Name, err)
	}
	if !ok {
		return nil, fmt.Errorf("pass %q: %w", pass.Name, ErrNotApplicable)
	}

	key := cacheKey{
		model:    model,
		counts:   l.LightCount(),
		track:    l.TrackVertexColour(),
		specular: l.SpecularEnabled(),
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if c, found := g.cache[key]; found {
		g.hits++
		g.log.Debug("program cache hit", zap.String("pass", pass.Name), zap.String("model", string(model)))
		return c, nil
	}
	g.misses++

	set := program.NewSet(g.opts.Limits)
	if err := l.CreateCPUSubPrograms(set); err != nil {
		return nil, fmt.Errorf("pass %q: %w", pass.Name, err)
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("pass %q: %w", pass.Name, err)
	}

	c := &Compiled{Model: model, Lighting: l, Programs: set}
	g.cache[key] = c

	g.log.Debug("compiled pass",
		zap.String("pass", pass.Name),
		zap.String("model", string(model)),
		zap.Ints("lights", key.counts[:]),
		zap.Stringer("track", key.track),
		zap.Bool("specular", key.specular))
	return c, nil
}

// CompileMaterial compiles every lit pass of m. Unlit passes yield a nil
// entry. Failures of individual passes are combined into one error.
func (g *Generator) CompileMaterial(m *material.Material, state RenderState) ([]*Compiled, error) {
	out := make([]*Compiled, len(m.Passes))
	var errs error
	for i := range m.Passes {
		c, err := g.Compile(&m.Passes[i], state)
		if errors.Is(err, ErrNotApplicable) {
			continue
		}
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out[i] = c
	}
	if errs != nil {
		return out, fmt.Errorf("material %q: %w", m.Name, errs)
	}
	return out, nil
}

// Reconfigure replaces the options and drops the cache.
func (g *Generator) Reconfigure(opts Options) {
	fresh := New(opts)
	g.mu.Lock()
	g.opts = fresh.opts
	g.mu.Unlock()
	g.Invalidate()
}

// Invalidate drops every cached program set.
func (g *Generator) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	clear(g.cache)
	g.log.Debug("program cache invalidated")
}

// Stats returns the number of cache hits and misses so far.
func (g *Generator) Stats() (hits, misses int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hits, g.misses
}
