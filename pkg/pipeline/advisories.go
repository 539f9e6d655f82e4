package pipeline

import (
	"slices"

	"github.com/arthur-debert/treegen/pkg/backend/visualstudio"
	"github.com/arthur-debert/treegen/pkg/types"
)

// Advisory is a platform hint printed after a successful run. Text is
// markdown.
type Advisory struct {
	Name string
	Text string
}

const visualStudioAdvisory = `## Visual Studio

Project files are not generated by default on Windows. Select the
**VisualStudio** backend to get them:

` + "```" + `
treegen --backend RecursiveMake,VisualStudio
` + "```" + `

Projects are written to ` + "`msvc/`" + ` in the object directory.
`

const androidAdvisory = `## Android

Android IDE projects are generated by the Gradle build, not by treegen.
Import the object directory's ` + "`gradle/`" + ` project once the build
has run.
`

func advisories(cfg *types.Config, hostOS string, backends []string) []Advisory {
	var out []Advisory
	if hostOS == "windows" && !slices.Contains(backends, visualstudio.Name) {
		out = append(out, Advisory{Name: "visualstudio", Text: visualStudioAdvisory})
	}
	if cfg.Subst("OS_TARGET") == "Android" {
		out = append(out, Advisory{Name: "android", Text: androidAdvisory})
	}
	return out
}
