// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package depgraph

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// DiscoveredFile is one candidate source file surfaced by discovery, already
// carrying the dotted module/package names the rest of the pipeline needs.
type DiscoveredFile struct {
	AbsPath       string
	RelPath       string // forward-slash, root-relative
	DottedModule  string
	DottedPackage string // empty for a top-level module with no enclosing package
	Size          int64
	ModTime       time.Time
}

// DiscoveryResult is the full output of walking a project root (C2).
type DiscoveryResult struct {
	Files           []DiscoveredFile
	TotalBytes      int64
	SkippedOversized []string
}

// Discover walks root applying the Pattern Matcher (C3) to prune excluded
// directories and files, then derives each candidate file's dotted
// module/package names from its path. Files over opts.MaxFileSizeBytes are
// skipped and recorded rather than analysed.
func Discover(root string, opts Options) (*DiscoveryResult, error) {
	opts.Logger.Info("depscan.discovery.start", "root", root, "extension", opts.SourceExtension)

	matcher := NewPatternMatcher(opts.ExcludePatterns)
	result := &DiscoveryResult{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matcher.ShouldExclude(rel, true) {
				opts.Logger.Debug("depscan.discovery.excluded", "path", rel, "is_dir", true)
				return filepath.SkipDir
			}
			return nil
		}

		if matcher.ShouldExclude(rel, false) {
			opts.Logger.Debug("depscan.discovery.excluded", "path", rel, "is_dir", false)
			return nil
		}
		if filepath.Ext(path) != opts.SourceExtension {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		if info.Size() > opts.MaxFileSizeBytes {
			result.SkippedOversized = append(result.SkippedOversized, rel)
			opts.Logger.Warn("depscan.discovery.file_skipped_oversized",
				"path", rel, "size_bytes", info.Size(), "max_bytes", opts.MaxFileSizeBytes)
			return nil
		}

		dottedModule, dottedPackage := dottedNames(rel, opts.SourceExtension)
		result.Files = append(result.Files, DiscoveredFile{
			AbsPath:       path,
			RelPath:       rel,
			DottedModule:  dottedModule,
			DottedPackage: dottedPackage,
			Size:          info.Size(),
			ModTime:       info.ModTime(),
		})
		result.TotalBytes += info.Size()
		return nil
	})
	if err != nil {
		return nil, newFailure(FailureInput, "failed walking project root "+root, err)
	}
	return result, nil
}

// dottedNames derives a file's dotted module name and the dotted name of its
// enclosing package from a root-relative path. A file named __init__.py
// represents the enclosing directory itself, per the language's package
// convention.
func dottedNames(relPath, ext string) (module, pkg string) {
	trimmed := strings.TrimSuffix(relPath, ext)
	segments := strings.Split(trimmed, "/")
	if segments[len(segments)-1] == "__init__" {
		segments = segments[:len(segments)-1]
	}
	if len(segments) == 0 {
		return "", ""
	}
	module = strings.Join(segments, ".")
	if len(segments) > 1 {
		pkg = strings.Join(segments[:len(segments)-1], ".")
	}
	return module, pkg
}
