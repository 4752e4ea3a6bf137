package params

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Pedrokostam/PDFuse/internal/utils"
)

// FindFiles expands the given paths into a classified, indexed input list.
// Files are classified directly; directories are walked up to maxDepth
// levels. Unsupported entries are skipped silently, like any other directory
// noise. With sortAlphabetically the collected paths are ordered by name
// before indexing, otherwise command-line order wins.
func FindFiles(paths []string, maxDepth int, allowOffice, sortAlphabetically bool) []utils.Indexed[SourcePath] {
	var valid []SourcePath
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			log.WithField("path", p).Warn("cannot access input path")
			continue
		}
		if info.IsDir() {
			recurseFolder(p, maxDepth, allowOffice, &valid)
			continue
		}
		sp, err := ClassifyPath(p)
		if err != nil {
			log.WithField("path", p).Warn("unsupported source type")
			continue
		}
		if !allowOffice && sp.Kind == KindOffice {
			log.WithField("path", p).Warn("office document ignored: no converter configured")
			continue
		}
		valid = append(valid, sp)
	}
	if sortAlphabetically {
		sort.Slice(valid, func(i, j int) bool { return valid[i].Path < valid[j].Path })
	}
	indexed := make([]utils.Indexed[SourcePath], len(valid))
	for i, sp := range valid {
		log.WithFields(log.Fields{"path": sp.Path, "kind": sp.Kind.String()}).Info("found file")
		indexed[i] = utils.NewIndexed(i, sp)
	}
	return indexed
}

func recurseFolder(root string, maxDepth int, allowOffice bool, out *[]SourcePath) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, the walk goes on
			return nil
		}
		if d.IsDir() {
			if depthBelow(root, path) > maxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if !isSupported(path, allowOffice) {
			return nil
		}
		if sp, err := ClassifyPath(path); err == nil {
			*out = append(*out, sp)
		}
		return nil
	})
}

func depthBelow(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}
