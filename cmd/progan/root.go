package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/born-ml/progan/internal/config"
	"github.com/born-ml/progan/internal/graph"
	"github.com/born-ml/progan/internal/progan"
	"github.com/born-ml/progan/internal/tensor"
)

// cli holds the state shared by all subcommands.
type cli struct {
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "progan",
		Short: "Progressively growing GAN graph builder",
		Long: `progan builds the generator, discriminator and composite networks of a
progressively growing GAN, one stage per doubling of resolution, and
inspects them.

Settings come from a YAML or HCL file (--config) over the built-in
defaults; PROGAN_SEED and PROGAN_LOG_LEVEL override the file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.yaml, .yml or .hcl)")

	root.AddCommand(
		newSummaryCmd(c),
		newProbeCmd(c),
		newConfigCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) init() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	level, _ := cfg.Level()
	if c.verbose {
		level = zapcore.DebugLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = logger
	return nil
}

// networks is every stage list a builder produces.
type networks[B tensor.Backend] struct {
	builder    *progan.Builder[B]
	gens       []progan.Stage[B]
	discs      []progan.Stage[B]
	composites []progan.Stage[B]
}

func build[B tensor.Backend](cfg *config.Config, backend B, logger *zap.Logger) (*networks[B], error) {
	b, err := progan.NewBuilder(backend, cfg.Weights(), cfg.Hyper(), progan.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	gens, err := b.Generator(cfg.LatentDim, cfg.Blocks, cfg.BaseResolution)
	if err != nil {
		return nil, err
	}
	res := cfg.BaseResolution
	discs, err := b.Discriminator(cfg.Blocks, tensor.Shape{cfg.ImageChannels, res, res})
	if err != nil {
		return nil, err
	}
	gans, err := b.Composite(gens, discs)
	if err != nil {
		return nil, err
	}
	logger.Info("built networks",
		zap.Int("stages", cfg.Blocks),
		zap.Int("max_resolution", gens[len(gens)-1].Resolution),
		zap.Int("generator_params", gens[len(gens)-1].FadeIn.CountParams()),
		zap.Int("discriminator_params", discs[len(discs)-1].FadeIn.CountParams()),
	)
	return &networks[B]{builder: b, gens: gens, discs: discs, composites: gans}, nil
}

// stageRange returns the stage indices selected by --stage (-1 for all).
func stageRange(stage, n int) ([]int, error) {
	if stage >= n || stage < -1 {
		return nil, fmt.Errorf("stage %d out of range [0, %d)", stage, n)
	}
	if stage >= 0 {
		return []int{stage}, nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out, nil
}

// variants lists a stage's distinct models.
func variants[B tensor.Backend](s progan.Stage[B]) []*graph.Model[B] {
	if s.FadeIn == s.Straight {
		return []*graph.Model[B]{s.Straight}
	}
	return []*graph.Model[B]{s.Straight, s.FadeIn}
}
