// Package pathresolver resolves slash-separated paths to inodes by
// descending a volume's file-system B-tree one directory record at a time.
package pathresolver

import (
	"strings"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/fstree"
)

// DefaultMaxDepth bounds how many path segments Resolve will walk before
// giving up, guarding against a pathological or corrupt directory cycle.
const DefaultMaxDepth = 1024

// RootInodeID is the object identifier of a volume's root directory.
const RootInodeID = 2

// Resolver walks a volume's file-system tree to translate paths into
// inodes. It never follows symlinks: a path segment that names a symlink
// resolves to the symlink's own inode, not its target.
type Resolver struct {
	tree     *fstree.Tree
	caseFold bool
	maxDepth int
}

// New builds a Resolver over tree. caseFold should mirror the volume's
// normalization/case-insensitive incompatible-feature flags, the same way
// fstree.Tree.DirEntry expects. maxDepth of 0 selects DefaultMaxDepth.
func New(tree *fstree.Tree, caseFold bool, maxDepth int) *Resolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Resolver{tree: tree, caseFold: caseFold, maxDepth: maxDepth}
}

// Segments splits a path on '/', dropping the leading slash (if present)
// and any empty segments produced by repeated or trailing slashes.
func Segments(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// Resolve walks path starting from startInodeID, returning the target
// inode's object identifier. An empty path or "/" resolves to startInodeID
// itself. A missing path segment reports (0, false, nil) — resolution
// failure is not an error, it is a miss.
func (r *Resolver) Resolve(startInodeID uint64, path string) (uint64, bool, error) {
	segments := Segments(path)
	if len(segments) == 0 {
		return startInodeID, true, nil
	}
	if len(segments) > r.maxDepth {
		return 0, false, apfserrors.New(apfserrors.DepthExceeded, "pathresolver.Resolve", nil)
	}

	current := startInodeID
	for _, segment := range segments {
		entry, ok, err := r.tree.DirEntry(current, segment, r.caseFold)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, nil
		}
		current = entry.FileID
	}
	return current, true, nil
}

// FullPath reconstructs the path from the volume root to inodeID by
// repeatedly finding the sibling-link record naming inodeID's own entry
// within its parent and walking up to RootInodeID. An inode with no sibling
// record is named by scanning its parent directory (the inode's ParentId)
// for the entry pointing at it. It bounds the walk at maxDepth the same way
// Resolve bounds descent.
func (r *Resolver) FullPath(inodeID uint64) (string, error) {
	if inodeID == RootInodeID {
		return "/", nil
	}

	var names []string
	current := inodeID
	for depth := 0; ; depth++ {
		if depth >= r.maxDepth {
			return "", apfserrors.New(apfserrors.DepthExceeded, "pathresolver.FullPath", nil)
		}

		inode, ok, err := r.tree.Inode(current)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", apfserrors.New(apfserrors.Corruption, "pathresolver.FullPath", nil)
		}

		siblings, err := r.tree.Siblings(current)
		if err != nil {
			return "", err
		}

		var name string
		var parentID uint64
		if len(siblings) > 0 {
			name = siblings[0].Name
			parentID = siblings[0].ParentID
		} else {
			parentID = inode.Value.ParentId
			entries, err := r.tree.ReadDir(parentID)
			if err != nil {
				return "", err
			}
			for _, e := range entries {
				if e.FileID == current {
					name = e.Name
					break
				}
			}
		}
		if name == "" {
			return "", apfserrors.New(apfserrors.Corruption, "pathresolver.FullPath", nil)
		}

		names = append(names, name)
		if parentID == RootInodeID {
			break
		}
		current = parentID
	}

	var sb strings.Builder
	for i := len(names) - 1; i >= 0; i-- {
		sb.WriteByte('/')
		sb.WriteString(names[i])
	}
	return sb.String(), nil
}
