package stage

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Find returns every regular file under root whose name ends in ext, in
// lexical walk order.
func Find(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), ext) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
