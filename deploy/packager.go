// Package deploy packages a project and hands it to the remote build
// pipeline.
package deploy

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zip"
	"github.com/meysamhadeli/reactforge/deploy/contracts"
	"github.com/meysamhadeli/reactforge/deploy/models"
	"github.com/meysamhadeli/reactforge/utils"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

// Packager zips a project tree, skipping dependency, build and VCS
// directories and anything the project's .gitignore excludes.
type Packager struct{}

func NewPackager() contracts.IPackager {
	return &Packager{}
}

func (p *Packager) Bundle(root string) (*models.Bundle, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	patterns, err := utils.GetGitignorePatterns(root)
	if err != nil {
		logrus.Warnf("Ignoring unreadable .gitignore: %v", err)
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if utils.IsDefaultIgnored(rel) || utils.IsGitIgnored(rel, patterns) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk project: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to package under %s", root)
	}
	sort.Strings(files)

	var buffer bytes.Buffer
	writer := zip.NewWriter(&buffer)
	for _, rel := range files {
		if err := addFile(writer, root, rel); err != nil {
			_ = writer.Close()
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish bundle: %w", err)
	}

	data := buffer.Bytes()
	return &models.Bundle{
		Data:  data,
		Files: files,
		Hash:  fmt.Sprintf("%016x", xxh3.Hash(data)),
	}, nil
}

func addFile(writer *zip.Writer, root, rel string) error {
	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", rel, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build zip header for %s: %w", rel, err)
	}
	header.Name = rel
	header.Method = zip.Deflate

	w, err := writer.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", rel, err)
	}
	f, err := os.Open(full)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to compress %s: %w", rel, err)
	}
	return nil
}
