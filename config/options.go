// Package config holds the CLI/options singleton: one struct, one init-time
// flag registration, a Task enum selecting the top-level action, and an
// optional YAML overlay for running the same options from a file instead
// of a long command line.
package config

import (
	"flag"
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

type options struct {
	task         string
	modulePath   string
	configFile   string
	seed         string
	forceTypeCG  bool
	narrow       bool
	noColor      bool
	verbose      bool
	renderFormat  string
	outFile       string
	funcIdx       int
	domain        string
	annotateMode  string
}

// Task enumerates the top-level actions the CLI can perform.
const (
	TaskAnalyzeTaint  = "analyze-taint"
	TaskAnalyzeValue  = "analyze-value"
	TaskCallGraphDot  = "callgraph-dot"
	TaskCfgDot        = "cfg-dot"
	TaskAnnotateCfg   = "annotate-cfg"
)

// AnnotateMode enumerates the two output variants of the annotate-cfg task.
const (
	AnnotateModeReplace = "replace"
	AnnotateModeKeep    = "keep"
)

var opts = &options{}

// Opts returns the process-wide options singleton.
func Opts() *options { return opts }

func init() {
	flag.StringVar(&opts.task, "task", TaskAnalyzeTaint,
		"one of: analyze-taint, analyze-value, callgraph-dot, cfg-dot, annotate-cfg")
	flag.StringVar(&opts.modulePath, "module", "", "path to the WebAssembly module to analyze")
	flag.StringVar(&opts.configFile, "config", "", "optional YAML file overlaying these options")
	flag.StringVar(&opts.seed, "seed", "bottom", "summary table seeding mode for defined functions: bottom or top")
	flag.BoolVar(&opts.forceTypeCG, "force-type-based-indirect", false,
		"always resolve CallIndirect via the conservative type-based over-approximation, "+
			"even when the module carries an initialized table")
	flag.BoolVar(&opts.narrow, "narrow", false,
		"has no effect: the analysis runs no narrowing pass after widening converges")
	flag.BoolVar(&opts.noColor, "no-color", false, "disable colorized log output")
	flag.BoolVar(&opts.verbose, "verbose", false, "enable verbose logging")
	flag.StringVar(&opts.renderFormat, "render", "", "if set, also rasterize DOT output to this format (e.g. svg, png)")
	flag.StringVar(&opts.outFile, "o", "", "output file (default: stdout)")
	flag.IntVar(&opts.funcIdx, "func", -1, "function index to target for cfg-dot/annotate-cfg (combined import+defined index space)")
	flag.StringVar(&opts.domain, "domain", "taint", "analysis instance to drive annotate-cfg: taint or value")
	flag.StringVar(&opts.annotateMode, "annotate-mode", AnnotateModeReplace, "annotate-cfg output variant: replace or keep")
}

// ParseArgs parses os.Args, then applies any --config overlay on top of the
// flag-derived defaults. The file is applied first and every flag given
// explicitly on the command line is re-applied last, so an explicit flag
// always has the final word.
func ParseArgs() error {
	flag.Parse()
	if opts.configFile == "" {
		return nil
	}
	raw, err := ioutil.ReadFile(opts.configFile)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", opts.configFile, err)
	}
	var overlay configFile
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("parsing config file %s: %w", opts.configFile, err)
	}
	explicit := map[string]string{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = f.Value.String() })
	opts.applyOverlay(overlay)
	for name, val := range explicit {
		if err := flag.Set(name, val); err != nil {
			return fmt.Errorf("re-applying flag -%s: %w", name, err)
		}
	}
	return nil
}

// configFile mirrors options' fields with exported names and pointer types,
// so yaml.Unmarshal (which only ever sets exported fields via reflection)
// can distinguish "absent from the file" from "explicitly set to the zero
// value" for the boolean flags.
type configFile struct {
	Task         string `yaml:"task"`
	ModulePath   string `yaml:"module"`
	Seed         string `yaml:"seed"`
	ForceTypeCG  *bool  `yaml:"force-type-based-indirect"`
	Narrow       *bool  `yaml:"narrow"`
	NoColor      *bool  `yaml:"no-color"`
	Verbose      *bool  `yaml:"verbose"`
	RenderFormat string `yaml:"render"`
	OutFile      string `yaml:"o"`
}

func (o *options) applyOverlay(overlay configFile) {
	if overlay.Task != "" {
		o.task = overlay.Task
	}
	if overlay.ModulePath != "" {
		o.modulePath = overlay.ModulePath
	}
	if overlay.Seed != "" {
		o.seed = overlay.Seed
	}
	if overlay.RenderFormat != "" {
		o.renderFormat = overlay.RenderFormat
	}
	if overlay.OutFile != "" {
		o.outFile = overlay.OutFile
	}
	if overlay.ForceTypeCG != nil {
		o.forceTypeCG = o.forceTypeCG || *overlay.ForceTypeCG
	}
	if overlay.Narrow != nil {
		o.narrow = o.narrow || *overlay.Narrow
	}
	if overlay.NoColor != nil {
		o.noColor = o.noColor || *overlay.NoColor
	}
	if overlay.Verbose != nil {
		o.verbose = o.verbose || *overlay.Verbose
	}
}

// SetSeedMode overrides the seed mode for the remainder of the process.
// Used by the annotate-cfg task to re-run an analysis under the opposite
// seed mode for its "keep" (before/after) output variant; not exposed as a
// flag since normal runs only ever need one seed mode.
func (o *options) SetSeedMode(mode string) { o.seed = mode }

func (o *options) Task() string           { return o.task }
func (o *options) ModulePath() string     { return o.modulePath }
func (o *options) SeedMode() string       { return o.seed }
func (o *options) ForceTypeBasedCG() bool { return o.forceTypeCG }
func (o *options) Narrow() bool           { return o.narrow }
func (o *options) NoColor() bool          { return o.noColor }
func (o *options) Verbose() bool          { return o.verbose }
func (o *options) RenderFormat() string   { return o.renderFormat }
func (o *options) OutFile() string        { return o.outFile }
func (o *options) FuncIdx() int           { return o.funcIdx }
func (o *options) Domain() string         { return o.domain }
func (o *options) AnnotateMode() string   { return o.annotateMode }

// CanColorize wraps a fatih/color SprintFunc so it becomes a no-op whenever
// colorized output has been disabled (--no-color, or a non-TTY stdout
// decided by the caller).
func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if opts.noColor {
		return fmt.Sprint
	}
	return col
}
