package deploy

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// vcsDirs are stripped from the staged tree before transfer; the remote
// copy is a working tree, not a repository.
var vcsDirs = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
}

// StagedFile is one file queued for upload, addressed relative to the
// source root.
type StagedFile struct {
	RelPath string
	AbsPath string
	Mode    os.FileMode
}

// StageTree walks the source tree rooted at dir, excluding VCS metadata.
// Results are sorted by relative path so upload order is deterministic.
func StageTree(dir string) ([]StagedFile, error) {
	var files []StagedFile

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if vcsDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, StagedFile{
			RelPath: filepath.ToSlash(rel),
			AbsPath: path,
			Mode:    info.Mode().Perm(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}
