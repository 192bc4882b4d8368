package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/modelforge/build"
	"github.com/pithecene-io/modelforge/cli/config"
	"github.com/pithecene-io/modelforge/creators"
	"github.com/pithecene-io/modelforge/engine"
	"github.com/pithecene-io/modelforge/generate"
	"github.com/pithecene-io/modelforge/iox"
	"github.com/pithecene-io/modelforge/lode"
	"github.com/pithecene-io/modelforge/log"
	"github.com/pithecene-io/modelforge/metrics"
	"github.com/pithecene-io/modelforge/sample"
	"github.com/pithecene-io/modelforge/types"
)

// Exit codes for generate.
const (
	exitSuccess      = 0
	exitBuildFailure = 1
	exitConfigError  = 2
)

// GenerateCommand returns the generate command.
func GenerateCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Usage:   "Registered type to generate (see `modelforge types`)",
		},
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "Number of instances to generate (default 1)",
		},
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "Random seed for reproducible output",
		},
		&cli.IntFlag{
			Name:  "collection-count",
			Usage: "Number of elements in generated collections",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config file (default: ./modelforge.yaml when present)",
		},
		&cli.BoolFlag{
			Name:  "stats",
			Usage: "Print session metrics to stderr",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log every build step to stderr",
		},
	}
	flags = append(flags, OutputFlags()...)
	flags = append(flags, StorageFlags()...)

	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate randomized instances of a registered type",
		ArgsUsage: "[type]",
		Flags:     flags,
		Action:    generateAction,
	}
}

// generateRequest is a fully resolved generate invocation.
type generateRequest struct {
	TypeName        string
	Count           int
	CollectionCount *int
	Seed            *uint64
	Format          string
	Config          *config.Config
	ConfigPath      string
	Store           storeOptions
	Verbose         bool
	LogOutput       io.Writer
}

// generateResult holds what a session produced.
type generateResult struct {
	Session types.SessionMeta
	Type    reflect.Type
	Values  []any
	Stats   metrics.Snapshot
}

func generateAction(c *cli.Context) error {
	req, err := generateRequestFrom(c)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	r, err := newRenderer(c, req.Format, stdout(c))
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	res, err := runGenerate(c.Context, req)
	if c.Bool("stats") && res != nil {
		if serr := renderStats(c, req.Format, res.Stats); serr != nil {
			return serr
		}
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("generate %s: %v", req.TypeName, err), exitCodeFor(err))
	}

	if req.Count == 1 {
		return r.Render(res.Values[0])
	}
	return r.Render(typedSlice(res.Type, res.Values))
}

// exitCodeFor maps a generate failure to its exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrConfiguration):
		return exitConfigError
	default:
		return exitBuildFailure
	}
}

// generateRequestFrom resolves flags over the config file.
func generateRequestFrom(c *cli.Context) (generateRequest, error) {
	req := generateRequest{
		TypeName:  c.String("type"),
		Verbose:   c.Bool("verbose"),
		LogOutput: stderr(c),
	}
	if req.TypeName == "" {
		req.TypeName = c.Args().First()
	}
	if req.TypeName == "" {
		return req, types.ConfigurationError("--type is required")
	}

	cfg, path, err := loadConfig(c.String("config"))
	if err != nil {
		return req, err
	}
	req.Config = cfg
	req.ConfigPath = path

	req.Count = 1
	if cfg != nil && cfg.Count != 0 {
		req.Count = cfg.Count
	}
	if c.IsSet("count") {
		req.Count = c.Int("count")
	}

	if cfg != nil {
		req.Seed = cfg.Seed
		req.Format = cfg.Format
	}
	if c.IsSet("seed") {
		seed := c.Uint64("seed")
		req.Seed = &seed
	}
	if c.IsSet("format") {
		req.Format = c.String("format")
	}
	if c.IsSet("collection-count") {
		n := c.Int("collection-count")
		req.CollectionCount = &n
	}

	req.Store = storeOptionsFrom(c, cfg)
	return req, nil
}

// loadConfig loads path, or config.DefaultFile when path is empty and the
// file exists. A missing default file is not an error.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err != nil {
			return nil, "", nil
		}
		path = config.DefaultFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", types.ConfigurationError("%v", err)
	}
	return cfg, path, nil
}

// newCompiler assembles the default, sample and config-file rules.
func newCompiler(seed *uint64, cfg *config.Config, collectionCount *int) (*build.Compiler, error) {
	c := build.NewCompiler()
	if seed != nil {
		c.WithRandom(generate.NewRandom(*seed))
	}
	c.AddModule(build.DefaultModule{}).AddModule(sample.Module)
	if cfg != nil {
		if err := cfg.Apply(c, sample.Types()); err != nil {
			return nil, err
		}
	}
	if collectionCount != nil {
		if err := creators.AutoPopulateCount.Set(*collectionCount); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// runGenerate builds req.Count instances in one session and persists them
// when a storage backend is configured. The result is returned alongside a
// build error so partial metrics can still be reported.
func runGenerate(ctx context.Context, req generateRequest) (*generateResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	t, ok := sample.Types()[req.TypeName]
	if !ok {
		return nil, types.ConfigurationError("unknown type %q (see `modelforge types`)", req.TypeName)
	}
	if req.Count < 1 {
		return nil, types.ConfigurationError("count must be at least 1, got %d", req.Count)
	}
	if err := req.Store.validate(); err != nil {
		return nil, err
	}

	session := types.SessionMeta{
		SessionID: uuid.NewString(),
		Seed:      req.Seed,
		StartedAt: time.Now(),
	}
	collector := metrics.NewCollector(session.SessionID, req.Store.Backend)

	var logger *log.Logger
	if req.Verbose {
		logger = log.NewDebugLogger(&session, req.LogOutput)
		defer iox.DiscardErr(logger.Sync)
	}

	// Collection counts are process-wide; restore them when the session ends.
	defer creators.AutoPopulateCount.Override(creators.AutoPopulateCount.Get())()

	compiler, err := newCompiler(req.Seed, req.Config, req.CollectionCount)
	if err != nil {
		return nil, err
	}
	conf, err := compiler.Compile()
	if err != nil {
		return nil, err
	}
	strategy, err := engine.New(conf, engine.WithLogger(logger), engine.WithCollector(collector))
	if err != nil {
		return nil, err
	}

	res := &generateResult{Session: session, Type: t}
	for range req.Count {
		v, err := strategy.Create(t)
		if err != nil {
			res.Stats = collector.Snapshot()
			return res, err
		}
		res.Values = append(res.Values, v)
	}

	if req.Store.enabled() {
		if err := persist(ctx, req, &session, collector, res.Values); err != nil {
			res.Stats = collector.Snapshot()
			return res, err
		}
	}

	res.Stats = collector.Snapshot()
	return res, nil
}

// persist writes the fixtures, the config file and a session summary.
func persist(ctx context.Context, req generateRequest, session *types.SessionMeta, collector *metrics.Collector, values []any) error {
	client, err := openClient(ctx, req.Store, lode.ConfigFor(req.Store.Dataset, session))
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	sink := lode.NewInstrumentedSink(client, collector)
	defer iox.DiscardClose(sink)

	if err := sink.WriteFixtures(ctx, lode.Batch{Type: req.TypeName, Values: values}); err != nil {
		return fmt.Errorf("failed to write fixtures: %w", err)
	}

	if req.ConfigPath != "" {
		data, err := os.ReadFile(req.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config for upload: %w", err)
		}
		if err := client.PutFile(ctx, filepath.Base(req.ConfigPath), data); err != nil {
			return fmt.Errorf("failed to store config: %w", err)
		}
	}

	return client.WriteSummary(ctx, collector.Snapshot(), time.Now())
}

// typedSlice converts values to a []t so table rendering sees the element type.
func typedSlice(t reflect.Type, values []any) any {
	s := reflect.MakeSlice(reflect.SliceOf(t), 0, len(values))
	for _, v := range values {
		s = reflect.Append(s, reflect.ValueOf(v))
	}
	return s.Interface()
}
