package objects

import (
	"strings"

	"github.com/arthur-debert/treegen/pkg/types"
)

// ApplyBinSuffix appends suffix unless name already ends with it. Applying
// it twice is the same as applying it once.
func ApplyBinSuffix(name, suffix string) string {
	if strings.HasSuffix(name, suffix) {
		return name
	}
	return name + suffix
}

type programBase struct {
	baseObject
	linkState
	program    string
	isUnitTest bool
}

func newProgramBase(ctx *types.Context, name, suffixVar string, unitTest bool) programBase {
	return programBase{
		baseObject: newBase(ctx),
		program:    ApplyBinSuffix(name, ctx.Config().Subst(suffixVar)),
		isUnitTest: unitTest,
	}
}

// Program is the binary name, including the binary suffix.
func (p *programBase) Program() string  { return p.program }
func (p *programBase) IsUnitTest() bool { return p.isUnitTest }

// Executable is implemented by every linkable program variant.
type Executable interface {
	Linkable
	Program() string
	IsUnitTest() bool
}

type Program struct{ programBase }

func NewProgram(ctx *types.Context, name string) *Program {
	return &Program{newProgramBase(ctx, name, "BIN_SUFFIX", false)}
}

func (p *Program) Type() Type { return TypeProgram }
func (p *Program) Kind() Kind { return KindTarget }

type HostProgram struct{ programBase }

func NewHostProgram(ctx *types.Context, name string) *HostProgram {
	return &HostProgram{newProgramBase(ctx, name, "HOST_BIN_SUFFIX", false)}
}

func (p *HostProgram) Type() Type { return TypeHostProgram }
func (p *HostProgram) Kind() Kind { return KindHost }

// SimpleProgram is one of several single-source programs of a directory.
type SimpleProgram struct{ programBase }

func NewSimpleProgram(ctx *types.Context, name string, unitTest bool) *SimpleProgram {
	return &SimpleProgram{newProgramBase(ctx, name, "BIN_SUFFIX", unitTest)}
}

func (p *SimpleProgram) Type() Type { return TypeSimpleProgram }
func (p *SimpleProgram) Kind() Kind { return KindTarget }

type HostSimpleProgram struct{ programBase }

func NewHostSimpleProgram(ctx *types.Context, name string) *HostSimpleProgram {
	return &HostSimpleProgram{newProgramBase(ctx, name, "HOST_BIN_SUFFIX", false)}
}

func (p *HostSimpleProgram) Type() Type { return TypeHostSimpleProgram }
func (p *HostSimpleProgram) Kind() Kind { return KindHost }
