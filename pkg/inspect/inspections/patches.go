// Copyright 2026 Chainguard, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package inspections

import (
	"bufio"
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
	"github.com/rpminspect/rpminspect-sub001/pkg/rpm"
)

// Compression suffixes a patch may carry in a source package.
var patchCompression = []string{".gz", ".xz", ".zst", ".bz2"}

func isPatch(p string) bool {
	for _, ext := range patchCompression {
		if s, ok := strings.CutSuffix(p, ext); ok {
			p = s
			break
		}
	}
	return strings.HasSuffix(p, ".patch") || strings.HasSuffix(p, ".diff")
}

// openPatch returns the uncompressed contents of a patch, chosen by the
// file's suffix.
func openPatch(name string, r io.Reader) (io.ReadCloser, error) {
	switch path.Ext(name) {
	case ".gz":
		return gzip.NewReader(r)
	case ".xz":
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xzr), nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	case ".bz2":
		return io.NopCloser(bzip2.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

type patchStats struct {
	Files int `json:"files"`
	Lines int `json:"lines"`
}

// countPatch counts the files a unified diff touches and its changed lines.
func countPatch(r io.Reader) (patchStats, error) {
	var st patchStats
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "+++ "):
			st.Files++
		case strings.HasPrefix(line, "--- "):
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, "-"):
			st.Lines++
		}
	}
	return st, sc.Err()
}

func patchFiles(p *rpm.Package, ignore []string) []rpm.File {
	var out []rpm.File
	for _, f := range p.Files {
		if f.IsRegular() && isPatch(f.Path) && !slices.Contains(ignore, path.Base(f.Path)) {
			out = append(out, f)
		}
	}
	return out
}

// Only source packages carry patches; builds without one get an OK result.
func patches(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	cfg := ictx.Config.Patches
	src := ictx.Build.SourcePackage()
	if src == nil {
		return nil
	}

	files := patchFiles(src, cfg.IgnoreList)
	if len(files) > 0 {
		fsys, err := src.Payload(ctx)
		if err != nil {
			return err
		}
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := checkPatch(fsys, src, f, cfg.FileCountThreshold, cfg.LineCountThreshold, rec); err != nil {
				return err
			}
		}
	}

	if !ictx.IsComparison() {
		return nil
	}
	before := ictx.Comparison.Before.SourcePackage()
	if before == nil {
		return nil
	}
	for _, f := range patchFiles(before, cfg.IgnoreList) {
		name := path.Base(f.Path)
		if slices.ContainsFunc(files, func(af rpm.File) bool { return path.Base(af.Path) == name }) {
			continue
		}
		if err := rec.Regression(ictx,
			results.WithFile(name),
			results.WithNoun(src.Name),
			results.WithVerb("removed"),
			results.WithMessage(fmt.Sprintf("Patch %s was removed from %s", name, src.Name)),
		); err != nil {
			return err
		}
	}
	return nil
}

func checkPatch(fsys fs.FS, src *rpm.Package, f rpm.File, fileThreshold, lineThreshold int, rec *inspect.Recorder) error {
	name := path.Base(f.Path)
	opts := []results.Option{results.WithFile(name), results.WithNoun(src.Name), results.WithArch(src.Arch)}
	empty := func() error {
		return rec.Add(results.Verify, append(opts,
			results.WithMessage(fmt.Sprintf("Patch %s is empty", name)),
			results.WithWaiver(results.Anyone))...)
	}

	if f.Size == 0 {
		return empty()
	}

	fh, err := fsys.Open(rpm.PayloadPath(f.Path))
	if err != nil {
		return err
	}
	defer fh.Close()

	pr, err := openPatch(name, fh)
	if err != nil {
		return fmt.Errorf("decompressing patch %s: %w", name, err)
	}
	defer pr.Close()

	cr := &countingReader{r: pr}
	st, err := countPatch(cr)
	if err != nil {
		return fmt.Errorf("reading patch %s: %w", name, err)
	}
	if cr.n == 0 {
		return empty()
	}
	if st.Files < fileThreshold && st.Lines < lineThreshold {
		return nil
	}
	msg := fmt.Sprintf("Patch %s touches %d %s and %d %s", name, st.Files, plural(st.Files, "file"), st.Lines, plural(st.Lines, "line"))
	return rec.Add(results.Info, append(opts,
		results.WithMessage(msg),
		results.WithDetails(st),
		results.WithWaiver(results.NotWaivable))...)
}
