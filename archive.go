package psarc

// Archive is the in-memory tree Upsync parses into and Downsync serializes
// from: a root Directory, an optional manifest File held in its own slot
// (never inside the directory tree), and a count of non-manifest files
//.
type Archive struct {
	root     *Directory
	manifest *File
	fileCount int
}

// NewArchive returns an empty archive with a root directory named "root".
func NewArchive() *Archive {
	return &Archive{root: newDirectory("root")}
}

// Root returns the archive's root directory.
func (a *Archive) Root() *Directory {
	return a.root
}

// Manifest returns the archive's manifest file, or nil if none is set.
func (a *Archive) Manifest() *File {
	return a.manifest
}

// SetManifest installs f as the archive's manifest, replacing any prior one.
func (a *Archive) SetManifest(f *File) {
	a.manifest = f
}

// ClearManifest removes the archive's manifest slot.
func (a *Archive) ClearManifest() {
	a.manifest = nil
}

// isManifestPath reports whether p names the reserved manifest slot,
// matching both the bare and leading-slash spellings.
func isManifestPath(p string) bool {
	return p == "PSArcManifest.bin" || p == "/PSArcManifest.bin"
}

// AddFile inserts f into the tree at the path components of f.Path(),
// creating intermediate directories as needed, or installs it into the
// manifest slot when its path names the reserved manifest file.
// Fails with InsertError if a file already occupies the destination.
func (a *Archive) AddFile(f *File) error {
	if isManifestPath(f.path) {
		a.manifest = f
		return nil
	}

	comps := splitPath(f.path)
	if len(comps) == 0 {
		return wrapStatus(StatusInsertError, ErrInsert, nil)
	}

	dir := a.root
	for _, c := range comps[:len(comps)-1] {
		dir = dir.findOrCreateSubdir(c)
	}
	leaf := comps[len(comps)-1]
	if dir.findFile(leaf) != nil {
		return wrapStatus(StatusInsertError, ErrInsert, nil)
	}
	dir.files = append(dir.files, f)
	a.fileCount++
	return nil
}

// FindFile mirrors AddFile's path walk, returning nil if any component is
// missing.
func (a *Archive) FindFile(p string) *File {
	if isManifestPath(p) {
		return a.manifest
	}

	comps := splitPath(p)
	if len(comps) == 0 {
		return nil
	}

	dir := a.root
	for _, c := range comps[:len(comps)-1] {
		sub := dir.findSubdir(c)
		if sub == nil {
			return nil
		}
		dir = sub
	}
	return dir.findFile(comps[len(comps)-1])
}

// GetFileCount reports the archive's file count including the manifest,
// the inclusive convention pinned from psarc_archive.cpp's
// Archive::GetFileCount.
func (a *Archive) GetFileCount() int {
	n := a.fileCount
	if a.manifest != nil {
		n++
	}
	return n
}

// Iterate returns the archive's files in the order Downsync writes them:
// the manifest first if present, then a breadth-first walk of the
// directory tree with a directory's own files yielded before its
// subdirectories are descended into, all in insertion order.
func (a *Archive) Iterate() []*File {
	var out []*File
	if a.manifest != nil {
		out = append(out, a.manifest)
	}

	queue := []*Directory{a.root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]
		out = append(out, dir.files...)
		queue = append(queue, dir.dirs...)
	}
	return out
}
