package snapshot

import (
	"os"
	"path/filepath"
)

// Scan walks every file under root with the given extension and
// returns its fingerprint record, content-hashing each file exactly
// once. Used to build the "current" side of ComputeChanges.
func Scan(root string, ext string) ([]Record, error) {
	var out []Record
	err := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			base := filepath.Base(path)
			if base == "bin" || base == "obj" || (base != "." && len(base) > 0 && base[0] == '.') {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ext {
			return nil
		}
		hash, err := HashFile(path)
		if err != nil {
			return err
		}
		out = append(out, Record{
			Path:        path,
			Size:        fi.Size(),
			ModTimeUnix: fi.ModTime().Unix(),
			ContentHash: hash,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
