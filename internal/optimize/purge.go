package optimize

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type purgeResult struct {
	files   int
	bytes   int64
	deleted []string
}

func (r *purgeResult) add(o purgeResult) {
	r.files += o.files
	r.bytes += o.bytes
	r.deleted = append(r.deleted, o.deleted...)
}

// purgeTree deletes every regular file and symlink below root, skipping
// any the OS refuses, then removes directories that ended up empty,
// deepest first. Sockets, pipes and device nodes belong to running
// programs and are left alone. root itself is kept. Only a failure to
// read root is returned.
func purgeTree(root string) (purgeResult, error) {
	var res purgeResult
	var dirs []string

	info, err := os.Stat(root)
	if err != nil {
		return res, err
	}
	if !info.IsDir() {
		return res, errors.New(root + " is not a directory")
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		if !removable(d.Type()) {
			return nil
		}
		var size int64
		if d.Type().IsRegular() {
			if fi, err := d.Info(); err == nil {
				size = fi.Size()
			}
		}
		if err := os.Remove(path); err != nil {
			return nil
		}
		res.files++
		res.bytes += size
		res.deleted = append(res.deleted, path)
		return nil
	})
	if err != nil {
		return res, err
	}

	sort.SliceStable(dirs, func(i, j int) bool {
		di, dj := depth(dirs[i]), depth(dirs[j])
		if di != dj {
			return di > dj
		}
		return len(dirs[i]) > len(dirs[j])
	})
	for _, dir := range dirs {
		// Fails harmlessly on anything still holding a locked file.
		_ = os.Remove(dir)
	}
	return res, nil
}

func removable(mode fs.FileMode) bool {
	return mode.IsRegular() || mode&fs.ModeSymlink != 0
}

func depth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}
