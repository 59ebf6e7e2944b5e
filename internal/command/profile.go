package command

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/luiz-simples/redix/internal/domain"
)

const DefaultVersion = "7.0"

var ErrUnsupportedVersion = errors.New("unsupported server version")

// Profile is the command table for one server version. It is immutable;
// With returns an extended copy.
type Profile struct {
	version *semver.Version
	specs   map[string]*Spec
	aliases map[string]string
}

// NewProfile folds every delta up to version. An empty version selects
// DefaultVersion; versions beyond the newest delta get the newest table.
func NewProfile(version string) (*Profile, error) {
	if isEmpty(version) || version == "default" {
		version = DefaultVersion
	}

	target, err := semver.NewVersion(version)
	if hasError(err) {
		return nil, fmt.Errorf("%w %q: %v", ErrUnsupportedVersion, version, err)
	}

	first := semver.MustParse(deltas[0].version)
	if target.LessThan(first) {
		return nil, fmt.Errorf("%w %q: oldest known is %s", ErrUnsupportedVersion, version, deltas[0].version)
	}

	profile := &Profile{
		version: target,
		specs:   make(map[string]*Spec),
		aliases: make(map[string]string),
	}

	for _, delta := range deltas {
		since := semver.MustParse(delta.version)
		if since.GreaterThan(target) {
			break
		}

		for _, spec := range delta.specs {
			stamped := spec.clone()
			stamped.Since = delta.version
			profile.register(stamped)
		}
	}

	return profile, nil
}

// MustProfile is NewProfile for versions known at compile time.
func MustProfile(version string) *Profile {
	profile, err := NewProfile(version)
	if hasError(err) {
		panic(err)
	}
	return profile
}

func (profile *Profile) Version() string {
	return profile.version.Original()
}

func (profile *Profile) Spec(id string) (*Spec, bool) {
	name := normalizeCommandName(id)

	if target, aliased := profile.aliases[name]; aliased {
		name = target
	}

	spec, exists := profile.specs[name]
	return spec, exists
}

func (profile *Profile) Supports(id string) bool {
	_, exists := profile.Spec(id)
	return exists
}

// Create validates id and arity against the table and returns the command.
func (profile *Profile) Create(id string, values ...any) (*Command, error) {
	spec, exists := profile.Spec(id)
	if !exists {
		return nil, fmt.Errorf("%w '%s' for server version %s", domain.ErrUnknownCommand, id, profile.Version())
	}

	args, err := Args(values...)
	if hasError(err) {
		return nil, err
	}

	if err = spec.validate(len(args) + 1); hasError(err) {
		return nil, err
	}

	return newCommand(spec.Name, args, spec)
}

// With returns a copy of the profile that also knows specs. Existing
// entries with the same name are replaced in the copy only.
func (profile *Profile) With(specs ...*Spec) *Profile {
	extended := &Profile{
		version: profile.version,
		specs:   make(map[string]*Spec, len(profile.specs)+len(specs)),
		aliases: make(map[string]string, len(profile.aliases)),
	}

	for name, spec := range profile.specs {
		extended.specs[name] = spec
	}

	for alias, name := range profile.aliases {
		extended.aliases[alias] = name
	}

	for _, spec := range specs {
		extended.register(spec.clone())
	}

	return extended
}

// Commands lists the command names in the profile, sorted.
func (profile *Profile) Commands() []string {
	names := make([]string, 0, len(profile.specs))
	for name := range profile.specs {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}

func (profile *Profile) register(spec *Spec) {
	spec.Name = normalizeCommandName(spec.Name)
	profile.specs[spec.Name] = spec

	for _, alias := range spec.Aliases {
		profile.aliases[normalizeCommandName(alias)] = spec.Name
	}
}
