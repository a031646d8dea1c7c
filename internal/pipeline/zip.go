// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/talentsift/resume-extract/internal/convert"
)

// ExpandZip writes the supported documents of a zip archive into dir and
// returns them as batch inputs named after their base file name. Each entry
// is copied up to limit+1 bytes so that oversized files still reach the
// converter, which rejects them, without filling the disk.
func ExpandZip(r io.ReaderAt, size int64, dir string, limit int64) ([]Input, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	var inputs []Input
	for i, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		base := path.Base(f.Name)
		if strings.HasPrefix(f.Name, "__MACOSX/") || strings.HasPrefix(base, "._") || !convert.Supported(base) {
			continue
		}

		dst := filepath.Join(dir, fmt.Sprintf("%03d-%s", i, base))
		if err := copyEntry(f, dst, limit); err != nil {
			return nil, err
		}
		inputs = append(inputs, Input{Path: dst, FileName: base})
	}
	return inputs, nil
}

func copyEntry(f *zip.File, dst string, limit int64) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, io.LimitReader(rc, limit+1)); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return out.Close()
}
