package objects

// Arena owns every build object of a run and hands out stable IDs, so that
// back-references between objects are plain handles instead of pointers.
type Arena struct {
	objects []Object
}

func NewArena() *Arena {
	return &Arena{}
}

// Add registers obj and returns its ID. Registering the same object twice
// returns the existing ID.
func (a *Arena) Add(obj Object) ID {
	b := obj.object()
	if b.id != 0 {
		return b.id
	}
	a.objects = append(a.objects, obj)
	b.id = ID(len(a.objects))
	return b.id
}

// Get resolves an ID.
func (a *Arena) Get(id ID) (Object, bool) {
	if id <= 0 || int(id) > len(a.objects) {
		return nil, false
	}
	return a.objects[id-1], true
}

// Resolve maps IDs to objects, skipping unknown ones.
func (a *Arena) Resolve(ids []ID) []Object {
	out := make([]Object, 0, len(ids))
	for _, id := range ids {
		if obj, ok := a.Get(id); ok {
			out = append(out, obj)
		}
	}
	return out
}

func (a *Arena) Len() int { return len(a.objects) }

// Objects returns all objects in registration order.
func (a *Arena) Objects() []Object {
	return append([]Object(nil), a.objects...)
}

func (a *Arena) Linkables() []Linkable {
	var out []Linkable
	for _, obj := range a.objects {
		if l, ok := obj.(Linkable); ok {
			out = append(out, l)
		}
	}
	return out
}

func (a *Arena) Libraries() []Library {
	var out []Library
	for _, obj := range a.objects {
		if l, ok := obj.(Library); ok {
			out = append(out, l)
		}
	}
	return out
}
