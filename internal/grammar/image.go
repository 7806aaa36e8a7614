package grammar

import "strings"

// Image reference defaults.
const (
	DefaultRegistry = "hub.docker.com"
	DefaultGroup    = "official"
)

// ImageRef is an image reference split into registry, group and
// `repo:tag` name.
type ImageRef struct {
	Registry string
	Group    string
	Name     string
}

// Image splits a reference on '/'. The last segment is the name, the one
// before it the group, and whatever remains the registry.
func Image(ref string) ImageRef {
	parts := strings.Split(strings.TrimSpace(ref), "/")
	img := ImageRef{
		Registry: DefaultRegistry,
		Group:    DefaultGroup,
		Name:     parts[len(parts)-1],
	}
	if len(parts) >= 2 {
		img.Group = parts[len(parts)-2]
	}
	if len(parts) >= 3 {
		img.Registry = strings.Join(parts[:len(parts)-2], "/")
	}
	return img
}

// Repository returns the name without its tag.
func (i ImageRef) Repository() string {
	repo, _, _ := strings.Cut(i.Name, ":")
	return repo
}

// Tag returns the tag, or "latest" when none is given.
func (i ImageRef) Tag() string {
	if _, tag, ok := strings.Cut(i.Name, ":"); ok && tag != "" {
		return tag
	}
	return "latest"
}
