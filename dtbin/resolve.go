package dtbin

import (
	"github.com/pkg/errors"
)

// Resolve follows string records as aliases and returns the first name in
// the chain that is absent or not a string record. An absent name is
// returned unchanged without error, so optional aliases can be tested for.
func (f *File) Resolve(name string) (string, error) {
	visited := make(map[string]bool)
	cur := name
	for {
		ri, ok, err := f.stat(cur)
		if err != nil {
			return "", err
		}
		if !ok || !ri.IsString() {
			return cur, nil
		}
		if visited[cur] {
			return "", errors.Wrapf(ErrCircularAlias, "%q reached again from %q", cur, name)
		}
		if len(visited) >= MaxAliasDepth {
			return "", errors.Wrapf(ErrAliasDepth, "resolving %q", name)
		}
		visited[cur] = true

		target, err := f.ReadString(cur)
		if err != nil {
			return "", err
		}
		cur = target
	}
}

// WriteAlias appends a string record called name whose value is target.
func (f *File) WriteAlias(name, target string) error {
	return f.AppendString(name, target)
}

// ReadResolved resolves name and reads the record it leads to.
func (f *File) ReadResolved(name string) (Value, error) {
	target, err := f.Resolve(name)
	if err != nil {
		return nil, err
	}
	return f.Read(target)
}
