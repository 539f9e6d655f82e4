package objects

// Linkable is an object that accumulates linked libraries and system
// libraries.
type Linkable interface {
	Object
	Kind() Kind
	// LinkedLibraries is in link order and may contain duplicates.
	LinkedLibraries() []Library
	LinkedSystemLibraries() []string
	// RequiresNativeLink is true when the object, or anything it links,
	// needs the C++ linker.
	RequiresNativeLink() bool

	links() *linkState
}

type linkState struct {
	libraries  []Library
	systemLibs []string
	native     bool
}

func (s *linkState) LinkedLibraries() []Library {
	return append([]Library(nil), s.libraries...)
}

func (s *linkState) LinkedSystemLibraries() []string {
	return append([]string(nil), s.systemLibs...)
}

func (s *linkState) RequiresNativeLink() bool { return s.native }
func (s *linkState) links() *linkState        { return s }

// refSet is an insertion-ordered set of arena IDs.
type refSet struct {
	ids  []ID
	seen map[ID]struct{}
}

func (r *refSet) add(id ID) {
	if r.seen == nil {
		r.seen = make(map[ID]struct{})
	}
	if _, ok := r.seen[id]; ok {
		return
	}
	r.seen[id] = struct{}{}
	r.ids = append(r.ids, id)
}

func (r *refSet) list() []ID {
	return append([]ID(nil), r.ids...)
}

// Library is a Linkable that other Linkables can link.
type Library interface {
	Linkable
	// Basename is the logical name used for cross-referencing.
	Basename() string
	// LibName is the decorated on-disk file name.
	LibName() string
	// ImportName is what consumers put on their link line.
	ImportName() string
	// Refs lists the IDs of the Linkables linking this library.
	Refs() []ID

	refs() *refSet
}

// ExternalLibrary marks libraries built outside of this tool. They take part
// in linkage but backends emit no compile rules for them.
type ExternalLibrary interface {
	Library
	external()
}

type libraryBase struct {
	baseObject
	linkState
	basename   string
	libName    string
	importName string
	refSet     refSet
}

func newLibraryBase(b baseObject, basename, libName, importName string) libraryBase {
	return libraryBase{
		baseObject: b,
		basename:   basename,
		libName:    libName,
		importName: importName,
	}
}

func (l *libraryBase) Basename() string   { return l.basename }
func (l *libraryBase) LibName() string    { return l.libName }
func (l *libraryBase) ImportName() string { return l.importName }
func (l *libraryBase) Refs() []ID         { return l.refSet.list() }
func (l *libraryBase) refs() *refSet      { return &l.refSet }
