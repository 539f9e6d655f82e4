package objects

import (
	"strings"

	"github.com/arthur-debert/treegen/pkg/errors"
)

type variantLibrary interface {
	sharedVariant() SharedVariant
}

// LinkLibrary links lib into consumer. It fails, leaving both objects
// untouched, when the kinds differ, when lib is a component, or when a
// second Rust library would be linked into the same consumer. On success
// lib is appended to the consumer's libraries, its native-link requirement
// is OR-ed into the consumer, and the consumer is recorded in lib's refs.
func LinkLibrary(consumer Linkable, lib Library) error {
	if consumer.ID() == 0 || lib.ID() == 0 {
		return errors.New(errors.ErrInternal, "objects must be registered in an arena before linking")
	}

	if v, ok := lib.(variantLibrary); ok && v.sharedVariant() == VariantComponent {
		return errors.New(errors.ErrWrongKind, "LinkLibrary does not take components").
			WithDetail("library", lib.Basename())
	}

	if lib.Kind() != consumer.Kind() {
		return errors.Newf(errors.ErrWrongKind, "%s != %s", lib.Kind(), consumer.Kind()).
			WithDetail("library", lib.Basename()).
			WithDetail("consumer", describe(consumer))
	}

	state := consumer.links()
	if _, ok := lib.(rustCrate); ok {
		for _, linked := range state.libraries {
			if _, already := linked.(rustCrate); already {
				return errors.Newf(errors.ErrMultipleRustLibraries, "cannot link multiple Rust libraries into %s", describe(consumer)).
					WithDetail("linked", linked.Basename()).
					WithDetail("library", lib.Basename())
			}
		}
	}

	state.libraries = append(state.libraries, lib)
	if lib.RequiresNativeLink() {
		state.native = true
	}
	lib.refs().add(consumer.ID())
	return nil
}

// LinkSystemLibrary appends a system library to consumer. Names starting
// with '$' (make variables) or '-' (raw linker flags) are kept as is;
// others become -l<name> with a GNU toolchain and are decorated with the
// import prefix and suffix otherwise.
func LinkSystemLibrary(consumer Linkable, name string) {
	if !strings.HasPrefix(name, "$") && !strings.HasPrefix(name, "-") {
		cfg := consumer.Context().Config()
		if cfg.SubstBool("GNU_CC") {
			name = "-l" + name
		} else {
			name = cfg.ImportPrefix + name + cfg.ImportSuffix
		}
	}
	state := consumer.links()
	state.systemLibs = append(state.systemLibs, name)
}

// RequireNativeLink marks consumer as needing the C++ linker. The flag is
// never cleared.
func RequireNativeLink(consumer Linkable) {
	consumer.links().native = true
}

// Name is a human readable name for an object, used in messages.
func Name(obj Object) string {
	return describe(obj)
}

func describe(obj Object) string {
	var name string
	switch o := obj.(type) {
	case Library:
		name = o.LibName()
	case Executable:
		name = o.Program()
	case *RustProgram:
		name = o.Name
	case *HostRustProgram:
		name = o.Name
	}
	dir := obj.RelObjDir()
	switch {
	case name == "":
		return obj.Type().String() + ":" + dir
	case dir == "":
		return obj.Type().String() + ":" + name
	default:
		return obj.Type().String() + ":" + dir + "/" + name
	}
}
