package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/treegen/pkg/backend"
	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/filesystem"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/spf13/afero"
)

const (
	// EnvWriteBuildInfo asks for BuildInfoFile when set.
	EnvWriteBuildInfo = "WRITE_BUILDINFO"
	BuildInfoFile     = "buildinfo.json"
)

func workingDir() (string, error) { return os.Getwd() }

// mergeDiffs collects the diffs of every backend, ordered by output path.
// Diffs of the same path keep backend order.
func mergeDiffs(backends []backend.Backend) ([]FileDiff, error) {
	var diffs []FileDiff
	for _, b := range backends {
		for path, text := range b.FileDiffs() {
			added, deleted, err := filesystem.DiffStat(text)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrInternal, "cannot summarize diff of %s", path)
			}
			diffs = append(diffs, FileDiff{Path: path, Added: added, Deleted: deleted, Text: text})
		}
	}
	sort.SliceStable(diffs, func(i, j int) bool { return diffs[i].Path < diffs[j].Path })
	return diffs, nil
}

// BuildInfo describes the configured target for test harnesses.
type BuildInfo struct {
	OS            string   `json:"os"`
	Processor     string   `json:"processor"`
	Bits          int      `json:"bits,omitempty"`
	Debug         bool     `json:"debug"`
	CrashReporter bool     `json:"crashreporter"`
	Toolkit       string   `json:"toolkit,omitempty"`
	TopSrcDir     string   `json:"topsrcdir"`
	BuildBackends []string `json:"build_backends"`
}

var osNames = map[string]string{
	"Linux":   "linux",
	"WINNT":   "win",
	"Darwin":  "mac",
	"Android": "android",
}

func buildInfo(cfg *types.Config, backends []string) BuildInfo {
	info := BuildInfo{
		OS:            osNames[cfg.Subst("OS_TARGET")],
		Processor:     cfg.Subst("TARGET_CPU"),
		Debug:         cfg.SubstBool("MOZ_DEBUG"),
		CrashReporter: cfg.SubstBool("MOZ_CRASHREPORTER"),
		Toolkit:       cfg.Subst("MOZ_WIDGET_TOOLKIT"),
		TopSrcDir:     cfg.TopSrcDir,
		BuildBackends: backends,
	}
	if info.OS == "" {
		info.OS = "unknown"
	}
	switch info.Processor {
	case "x86_64", "aarch64", "ppc64":
		info.Bits = 64
	case "x86", "arm", "ppc":
		info.Bits = 32
	}
	return info
}

func writeBuildInfo(fsys afero.Fs, cfg *types.Config, backends []string, dryRun bool) error {
	content, err := json.MarshalIndent(buildInfo(cfg, backends), "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode build info")
	}
	w := filesystem.NewAvoidWriter(fsys)
	w.SetDryRun(dryRun)
	_, err = w.Write(filepath.Join(cfg.TopObjDir, BuildInfoFile), append(content, '\n'))
	return err
}
