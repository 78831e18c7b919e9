// Package main provides the CLI entrypoint for contribplot.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/contribplot/internal/config"
	"github.com/verte-zerg/contribplot/internal/contrib"
	"github.com/verte-zerg/contribplot/internal/contribui"
	"github.com/verte-zerg/contribplot/internal/dataset"
	"github.com/verte-zerg/contribplot/internal/logging"
	"github.com/verte-zerg/contribplot/internal/model"
	"github.com/verte-zerg/contribplot/internal/modelfile"
	"github.com/verte-zerg/contribplot/internal/render"
	"github.com/verte-zerg/contribplot/internal/store"
)

const (
	defaultLabel  = "Model"
	defaultFormat = render.FormatPNG
	// Text files do not depend on the terminal that produced them.
	textFileWidth = 80
)

var (
	configPath string
	dbPath     string
	verbose    bool

	fileCfg   config.FileConfig
	envCfg    config.EnvConfig
	logCloser io.Closer

	computeIn      inputFlags
	computeRaw     bool
	computeJSON    bool
	computeSummary bool

	plotIn  inputFlags
	plotOut outputFlags

	compareIn  inputFlags
	compareOut outputFlags

	viewIn    inputFlags
	viewLabel string
)

type inputFlags struct {
	data       string
	sheet      string
	columns    string
	coef       string
	modelsFile string
	names      []string
	saved      []string
}

type outputFlags struct {
	label  string
	out    string
	format string
	width  int
	height int
	color  bool
}

type contributionJSON struct {
	Variable string  `json:"variable"`
	Value    float64 `json:"value"`
}

type resultJSON struct {
	Model         string             `json:"model"`
	Percent       bool               `json:"percent"`
	Contributions []contributionJSON `json:"contributions"`
}

func main() {
	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "contribplot",
		Short:             "Plot linear-model variable contributions",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setup,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "model registry path (default: $XDG_DATA_HOME/contribplot/contribplot.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newComputeCmd())
	rootCmd.AddCommand(newPlotCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newModelCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	env.Apply(&cfg)
	fileCfg = cfg
	envCfg = env

	closer, err := logging.Configure(logging.Options{
		Level:   lo.FromPtr(cfg.Log.Level),
		File:    lo.FromPtr(cfg.Log.File),
		Verbose: verbose,
		Out:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	logCloser = closer
	log.Debug().Str("config", configPath).Str("command", cmd.Name()).Msg("starting")
	return nil
}

func closeLog() {
	if logCloser == nil {
		return
	}
	if err := logCloser.Close(); err != nil {
		// Best-effort close of the log file.
		_ = err
	}
	logCloser = nil
}

func addInputFlags(cmd *cobra.Command, in *inputFlags) {
	cmd.Flags().StringVar(&in.data, "data", "", "dataset file (.csv, .tsv, .xlsx)")
	cmd.Flags().StringVar(&in.sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	cmd.Flags().StringVar(&in.columns, "columns", "", "comma-separated columns to use, in order")
	cmd.Flags().StringVar(&in.coef, "coef", "", "inline coefficients: 2,1 or A=2,B=1")
	cmd.Flags().StringVar(&in.modelsFile, "models", "", "TOML model file")
	cmd.Flags().StringSliceVar(&in.names, "model", nil, "model names to use from --models")
	cmd.Flags().StringSliceVar(&in.saved, "saved", nil, "saved model names")
	_ = cmd.MarkFlagRequired("data")
	cmd.MarkFlagsMutuallyExclusive("coef", "models", "saved")
	cmd.MarkFlagsOneRequired("coef", "models", "saved")
}

func addOutputFlags(cmd *cobra.Command, out *outputFlags) {
	cmd.Flags().StringVar(&out.label, "label", "", "chart label shown in the title")
	cmd.Flags().StringVarP(&out.out, "out", "o", "", "write chart to file (.png, .svg, .txt); default prints to stdout")
	cmd.Flags().StringVar(&out.format, "format", defaultFormat, "image format when --out has no known extension (png, svg)")
	cmd.Flags().IntVar(&out.width, "width", 0, "image width in pixels (0: fit)")
	cmd.Flags().IntVar(&out.height, "height", 0, "image height in pixels (0: fit)")
	cmd.Flags().BoolVar(&out.color, "color", false, "force ANSI colours in text output")
}

func chartConfig(cmd *cobra.Command, out *outputFlags) (model.ChartConfig, error) {
	applyStringConfig(cmd, "label", &out.label, fileCfg.Chart.Label)
	applyStringConfig(cmd, "format", &out.format, fileCfg.Chart.Format)
	applyIntConfig(cmd, "width", &out.width, fileCfg.Chart.Width)
	applyIntConfig(cmd, "height", &out.height, fileCfg.Chart.Height)
	applyBoolConfig(cmd, "color", &out.color, fileCfg.Chart.Color)

	cfg := model.ChartConfig{
		Label:  out.label,
		Format: strings.ToLower(strings.TrimSpace(out.format)),
		Width:  out.width,
		Height: out.height,
		Color:  out.color,
	}
	if err := validateChartConfig(cfg); err != nil {
		return model.ChartConfig{}, err
	}
	return cfg, nil
}

func validateChartConfig(cfg model.ChartConfig) error {
	if cfg.Width < 0 {
		return fmt.Errorf("--width must be >= 0")
	}
	if cfg.Height < 0 {
		return fmt.Errorf("--height must be >= 0")
	}
	return nil
}

func newComputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Print variable contributions",
		Args:  cobra.NoArgs,
		RunE:  runComputeCmd,
	}
	addInputFlags(cmd, &computeIn)
	cmd.Flags().BoolVar(&computeRaw, "raw", false, "print raw contributions instead of percentages")
	cmd.Flags().BoolVar(&computeJSON, "json", false, "print one JSON object per model")
	cmd.Flags().BoolVar(&computeSummary, "summary", false, "print per-variable sums, means and deviations")
	return cmd
}

func runComputeCmd(cmd *cobra.Command, _ []string) error {
	table, specs, err := loadInputs(cmd.Context(), computeIn)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	columns := table.ColumnNames()

	if computeJSON {
		enc := json.NewEncoder(out)
		for _, spec := range specs {
			set, err := computeSet(table, spec)
			if err != nil {
				return err
			}
			if err := enc.Encode(toJSON(spec.Name, set)); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	}

	for i, spec := range specs {
		if len(specs) > 1 {
			if i > 0 {
				if _, err := fmt.Fprintln(out); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
			if _, err := fmt.Fprintf(out, "Model: %s\n", spec.Name); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if computeSummary {
			summaries, err := contrib.Summarize(table, spec.Coefficients)
			if err != nil {
				return fmt.Errorf("failed to summarize model %q: %w", spec.Name, err)
			}
			if err := render.WriteSummary(out, summaries); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			continue
		}
		set, err := computeSet(table, spec)
		if err != nil {
			return err
		}
		if err := render.WriteContributions(out, set, columns); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func computeSet(table model.Table, spec model.ModelSpec) (model.Set, error) {
	if computeRaw {
		set, err := contrib.Compute(table, spec.Coefficients)
		if err != nil {
			return model.Set{}, fmt.Errorf("failed to compute model %q: %w", spec.Name, err)
		}
		return set, nil
	}
	set, err := contrib.Percentages(table, spec.Coefficients)
	if err != nil {
		return model.Set{}, fmt.Errorf("failed to compute model %q: %w", spec.Name, err)
	}
	return set, nil
}

func toJSON(name string, set model.Set) resultJSON {
	return resultJSON{
		Model:   name,
		Percent: set.Percent,
		Contributions: lo.Map(set.Entries(), func(c model.Contribution, _ int) contributionJSON {
			return contributionJSON{Variable: c.Variable, Value: c.Value}
		}),
	}
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot contributions of one model as a horizontal bar chart",
		Args:  cobra.NoArgs,
		RunE:  runPlotCmd,
	}
	addInputFlags(cmd, &plotIn)
	addOutputFlags(cmd, &plotOut)
	return cmd
}

func runPlotCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := chartConfig(cmd, &plotOut)
	if err != nil {
		return err
	}
	table, specs, err := loadInputs(cmd.Context(), plotIn)
	if err != nil {
		return err
	}
	if len(specs) != 1 {
		return fmt.Errorf("plot needs exactly one model, got %d (pick one with --model or use compare)", len(specs))
	}
	spec := specs[0]
	set, err := contrib.Percentages(table, spec.Coefficients)
	if err != nil {
		return fmt.Errorf("failed to compute model %q: %w", spec.Name, err)
	}
	label := cfg.Label
	if label == "" {
		label = spec.Name
	}
	return drawChart(cmd, plotOut.out, cfg, func(r render.Renderer, w io.Writer) error {
		return render.RenderSingleModel(r, w, set, table.ColumnNames(), label)
	})
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Plot contributions of several models side by side",
		Args:  cobra.NoArgs,
		RunE:  runCompareCmd,
	}
	addInputFlags(cmd, &compareIn)
	addOutputFlags(cmd, &compareOut)
	return cmd
}

func runCompareCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := chartConfig(cmd, &compareOut)
	if err != nil {
		return err
	}
	table, specs, err := loadInputs(cmd.Context(), compareIn)
	if err != nil {
		return err
	}
	coll, err := contrib.CompareModels(table, specs)
	if err != nil {
		return fmt.Errorf("failed to compare models: %w", err)
	}
	label := cfg.Label
	if label == "" {
		label = defaultLabel
	}
	return drawChart(cmd, compareOut.out, cfg, func(r render.Renderer, w io.Writer) error {
		return render.RenderMultiModel(r, w, coll, table.ColumnNames(), label)
	})
}

func drawChart(cmd *cobra.Command, path string, cfg model.ChartConfig, draw func(r render.Renderer, w io.Writer) error) error {
	if path == "" {
		if err := draw(render.Text{ForceColor: cfg.Color}, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
		return nil
	}

	var renderer render.Renderer
	format := render.FormatForPath(path)
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".txt"):
		format = "text"
		renderer = render.Text{Width: textFileWidth, ForceColor: cfg.Color}
	default:
		if format == "" {
			format = cfg.Format
		}
		if format != render.FormatPNG && format != render.FormatSVG {
			return fmt.Errorf("%w: %q", render.ErrUnknownFormat, format)
		}
		renderer = render.Image{Format: format, Width: cfg.Width, Height: cfg.Height}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := draw(renderer, file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	log.Info().Str("path", path).Str("format", format).Msg("chart written")
	return nil
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse contributions interactively",
		Args:  cobra.NoArgs,
		RunE:  runViewCmd,
	}
	addInputFlags(cmd, &viewIn)
	cmd.Flags().StringVar(&viewLabel, "label", "", "chart label shown in the title")
	return cmd
}

func runViewCmd(cmd *cobra.Command, _ []string) error {
	applyStringConfig(cmd, "label", &viewLabel, fileCfg.Chart.Label)
	table, specs, err := loadInputs(cmd.Context(), viewIn)
	if err != nil {
		return err
	}
	ui, err := contribui.NewModel(contribui.Input{
		Table:   table,
		Models:  specs,
		Columns: table.ColumnNames(),
		Label:   viewLabel,
	})
	if err != nil {
		return fmt.Errorf("failed to compute contributions: %w", err)
	}
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func loadInputs(ctx context.Context, in inputFlags) (model.Table, []model.ModelSpec, error) {
	table, err := loadTable(in)
	if err != nil {
		return model.Table{}, nil, err
	}
	specs, err := loadModels(ctx, in)
	if err != nil {
		return model.Table{}, nil, err
	}
	log.Debug().
		Str("data", in.data).
		Int("rows", table.Rows()).
		Strs("columns", table.ColumnNames()).
		Int("models", len(specs)).
		Msg("inputs loaded")
	return table, specs, nil
}

func loadTable(in inputFlags) (model.Table, error) {
	var table model.Table
	var err error
	if in.sheet != "" {
		table, err = dataset.LoadXLSX(in.data, in.sheet)
	} else {
		table, err = dataset.Load(in.data)
	}
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to load data: %w", err)
	}
	if cols := dataset.ParseColumnList(in.columns); len(cols) > 0 {
		table, err = dataset.Select(table, cols...)
		if err != nil {
			return model.Table{}, fmt.Errorf("failed to select columns: %w", err)
		}
	}
	return table, nil
}

func loadModels(ctx context.Context, in inputFlags) ([]model.ModelSpec, error) {
	switch {
	case in.coef != "":
		coefs, err := modelfile.ParseInline(in.coef)
		if err != nil {
			return nil, fmt.Errorf("invalid --coef: %w", err)
		}
		return []model.ModelSpec{{Name: defaultLabel, Coefficients: coefs}}, nil
	case in.modelsFile != "":
		specs, err := modelfile.Load(in.modelsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load models: %w", err)
		}
		if len(in.names) > 0 {
			specs, err = modelfile.Select(specs, in.names...)
			if err != nil {
				return nil, fmt.Errorf("failed to select models: %w", err)
			}
		}
		return specs, nil
	case len(in.saved) > 0:
		var specs []model.ModelSpec
		err := withStore(func(st *store.Store) error {
			var err error
			specs, err = st.GetModels(ctx, in.saved)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load saved models: %w", err)
		}
		return specs, nil
	default:
		return nil, fmt.Errorf("one of --coef, --models or --saved is required")
	}
}

func resolveDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if envCfg.DBPath != "" {
		return envCfg.DBPath
	}
	return config.DefaultDBPath()
}

func withStore(fn func(st *store.Store) error) error {
	storePath := resolveDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn().Err(cerr).Str("path", storePath).Msg("failed to close db")
		}
	}()
	return fn(st)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		// Runs without loading the config file.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE:              runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# contribplot configuration
# Uncomment a value to enable it. CLI flags override config values.

[chart]
# label = %q           # Chart label (default: model name, or %q for compare)
# format = %q            # Image format when --out has no extension (png, svg)
# width = 1000             # Image width in pixels
# height = 600             # Image height in pixels
# color = false            # Force ANSI colours in text charts

[log]
# level = "warn"           # trace, debug, info, warn, error
# file = %q
`,
		defaultLabel,
		defaultLabel,
		defaultFormat,
		config.DefaultLogPath(),
	)
}
