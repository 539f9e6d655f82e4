package config

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/filesystem"
	"github.com/arthur-debert/treegen/pkg/logging"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TREEGEN_"
	// DefaultFileName is the configure output looked up in the object
	// directory.
	DefaultFileName = "config.status.toml"
)

// Settings are the tool's own knobs, under the [treegen] table.
type Settings struct {
	BuildFile           string `koanf:"build_file"`
	FilesPerUnifiedFile int    `koanf:"files_per_unified_file"`
	// Styles optionally points at a YAML file replacing the built-in
	// terminal styles.
	Styles string `koanf:"styles"`
}

// fileLayout is the shape of the configure output file.
type fileLayout struct {
	TopSrcDir        string                 `koanf:"topsrcdir"`
	TopObjDir        string                 `koanf:"topobjdir"`
	Substs           map[string]interface{} `koanf:"substs"`
	Defines          map[string]string      `koanf:"defines"`
	NonGlobalDefines []string               `koanf:"non_global_defines"`
	Settings         Settings               `koanf:"treegen"`
}

// Options select what to load.
type Options struct {
	// Fs is where Path is read from; nil means the real filesystem.
	Fs afero.Fs
	// Path of the configure output. Empty loads defaults and environment
	// only; a missing file at a non-empty Path is an error unless Optional.
	Path     string
	Optional bool
	// Overrides applied last, typically from command-line flags.
	TopSrcDir string
	TopObjDir string
}

// Loaded is the result of Load.
type Loaded struct {
	Config   *types.Config
	Settings Settings
}

// Load layers defaults, the configure output and the environment.
func Load(opts Options) (*Loaded, error) {
	logger := logging.GetLogger("config")
	fsys := opts.Fs
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. configure output
	source := ""
	if opts.Path != "" {
		loaded, err := loadFile(k, fsys, opts.Path, opts.Optional)
		if err != nil {
			return nil, err
		}
		if loaded {
			source = opts.Path
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	// 4. Explicit overrides
	overrides := map[string]interface{}{}
	if opts.TopSrcDir != "" {
		overrides["topsrcdir"] = opts.TopSrcDir
	}
	if opts.TopObjDir != "" {
		overrides["topobjdir"] = opts.TopObjDir
	}
	if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
	}

	// 5. Unmarshal
	var layout fileLayout
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &layout,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &layout, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	cfg := types.NewConfig(layout.TopSrcDir, layout.TopObjDir, layout.Substs, layout.Defines, layout.NonGlobalDefines)
	cfg.Source = source

	logger.Debug().
		Str("source", source).
		Str("topsrcdir", cfg.TopSrcDir).
		Str("topobjdir", cfg.TopObjDir).
		Int("substs", len(layout.Substs)).
		Msg("Configuration loaded")

	return &Loaded{Config: cfg, Settings: layout.Settings}, nil
}

func loadFile(k *koanf.Koanf, fsys afero.Fs, path string, optional bool) (bool, error) {
	parser, err := parserFor(path)
	if err != nil {
		return false, err
	}

	var provider koanf.Provider
	if _, onDisk := fsys.(*afero.OsFs); onDisk {
		exists, statErr := afero.Exists(fsys, path)
		if statErr != nil {
			return false, errors.Wrapf(statErr, errors.ErrFileAccess, "cannot stat %s", path)
		}
		if !exists {
			return false, missing(path, optional)
		}
		provider = file.Provider(path)
	} else {
		content, exists, readErr := filesystem.ReadFileIfExists(fsys, path)
		if readErr != nil {
			return false, readErr
		}
		if !exists {
			return false, missing(path, optional)
		}
		provider = &rawBytesProvider{bytes: content}
	}

	if err := k.Load(provider, parser); err != nil {
		return false, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path).
			WithDetail("path", path)
	}
	return true, nil
}

func missing(path string, optional bool) error {
	if optional {
		return nil
	}
	return errors.Newf(errors.ErrConfigLoad, "configuration file %s does not exist", path).
		WithDetail("path", path)
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigLoad, "unsupported configuration format %q", filepath.Ext(path)).
			WithDetail("path", path)
	}
}

// envKey maps TREEGEN_SUBST_NAME to substs.NAME and TREEGEN_KEY to
// treegen.key.
func envKey(s string) string {
	key := strings.TrimPrefix(s, EnvPrefix)
	if name, ok := strings.CutPrefix(key, "SUBST_"); ok {
		return "substs." + name
	}
	return "treegen." + strings.ToLower(key)
}
