package psarc

import "strings"

// Directory is one node of an Archive's path tree: a name plus its
// children, both in insertion order.
type Directory struct {
	name string

	dirs  []*Directory
	files []*File
}

func newDirectory(name string) *Directory {
	return &Directory{name: name}
}

// Name returns the directory's own path component.
func (d *Directory) Name() string {
	return d.name
}

// Directories returns the directory's subdirectories in insertion order.
func (d *Directory) Directories() []*Directory {
	return d.dirs
}

// Files returns the directory's direct files in insertion order.
func (d *Directory) Files() []*File {
	return d.files
}

func (d *Directory) findSubdir(name string) *Directory {
	for _, sub := range d.dirs {
		if sub.name == name {
			return sub
		}
	}
	return nil
}

func (d *Directory) findOrCreateSubdir(name string) *Directory {
	if sub := d.findSubdir(name); sub != nil {
		return sub
	}
	sub := newDirectory(name)
	d.dirs = append(d.dirs, sub)
	return sub
}

func (d *Directory) findFile(leaf string) *File {
	for _, f := range d.files {
		if baseName(f.path) == leaf {
			return f
		}
	}
	return nil
}

// splitPath breaks a manifest-style path into its components, dropping a
// leading "/" if present and any empty components it would otherwise
// produce.
func splitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func baseName(p string) string {
	comps := splitPath(p)
	if len(comps) == 0 {
		return p
	}
	return comps[len(comps)-1]
}
