package dtbin

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ExposurePrefix marks the record that exposes a variable to DataTank and
// names its type.
const ExposurePrefix = "Seq_"

// Default type tags.
const (
	TagString     = "String"
	TagRealNumber = "Real Number"
	TagNumberList = "NumberList"
	TagArray      = "Array"
	TagGroup      = "Group"
)

// BaseName strips a trailing "_<digits>" time index from name.
func BaseName(name string) string {
	i := strings.LastIndexByte(name, '_')
	if i < 0 || i == len(name)-1 {
		return name
	}
	for _, c := range name[i+1:] {
		if c < '0' || c > '9' {
			return name
		}
	}
	return name[:i]
}

// ExposureName returns the exposure record name for a variable.
func ExposureName(name string) string {
	return ExposurePrefix + BaseName(name)
}

// Write writes v under name and exposes it with a type tag.
//
// Without WithTime the exposure record must not exist yet. With WithTime the
// exposure record is written only for the first step of the series, and the
// time is stored as the double scalar "<name>_time"; name should carry the
// step index, as in "Var_3".
func (f *File) Write(name string, v any, opts ...WriteOption) error {
	var o writeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.tag == "" {
		tag, err := defaultTag(v)
		if err != nil {
			return errors.Wrapf(err, "writing %q", name)
		}
		o.tag = tag
	}

	exposure := ExposureName(name)
	exposed, err := f.Contains(exposure)
	if err != nil {
		return err
	}
	if !o.hasTime && exposed {
		return errors.Wrapf(ErrExists, "%q", exposure)
	}
	if ok, err := f.Contains(name); err != nil {
		return err
	} else if ok {
		return errors.Wrapf(ErrExists, "%q", name)
	}

	if !exposed {
		if err := f.AppendString(exposure, o.tag); err != nil {
			return err
		}
	}
	if err := f.WriteAnonymous(name, v); err != nil {
		return err
	}
	if o.hasTime {
		return f.AppendScalar(name+"_time", o.time)
	}
	return nil
}

func defaultTag(v any) (string, error) {
	switch x := v.(type) {
	case string, String:
		return TagString, nil
	case *Array:
		if x.Rank() == 1 {
			return TagNumberList, nil
		}
		return TagArray, nil
	case Array:
		if x.Rank() == 1 {
			return TagNumberList, nil
		}
		return TagArray, nil
	case Object:
		return x.DTType(), nil
	}
	if _, ok := scalarOf(v); ok {
		return TagRealNumber, nil
	}
	a, err := ArrayOf(v)
	if err != nil {
		return "", err
	}
	if a.Rank() == 1 {
		return TagNumberList, nil
	}
	return TagArray, nil
}

// ExposedType returns the type tag of a variable, looking up both the exact
// name and its base name.
func (f *File) ExposedType(name string) (string, bool, error) {
	for _, candidate := range []string{ExposurePrefix + name, ExposureName(name)} {
		v, ok, err := f.Lookup(candidate)
		if err != nil {
			return "", false, err
		}
		if !ok {
			continue
		}
		s, isString := v.(String)
		if !isString {
			return "", false, errors.Wrapf(ErrWrongKind, "%q is not a string", candidate)
		}
		return string(s), true, nil
	}
	return "", false, nil
}

// Exposed returns the sorted names of every exposed variable.
func (f *File) Exposed() ([]string, error) {
	names, err := f.Names()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, ExposurePrefix) && len(n) > len(ExposurePrefix) {
			out = append(out, strings.TrimPrefix(n, ExposurePrefix))
		}
	}
	sort.Strings(out)
	return out, nil
}
