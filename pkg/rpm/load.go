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

package rpm

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
	rpmutils "github.com/sassoftware/go-rpmutils"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	rihttp "github.com/rpminspect/rpminspect-sub001/pkg/http"
)

// DownloadClient fetches remote builds.
var DownloadClient = rihttp.NewClient(rate.NewLimiter(rate.Limit(4), 1))

// IsRemote reports whether location names a package to download.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// LoadBuild reads every package at location, which is a .rpm file, a
// directory holding .rpm files, or an http(s) URL of a .rpm file. Payloads are
// unpacked under workdir on first use.
func LoadBuild(ctx context.Context, location, workdir string) (*Build, error) {
	ctx, span := otel.Tracer("rpminspect").Start(ctx, "LoadBuild")
	defer span.End()
	log := clog.FromContext(ctx)

	if location == "" {
		return nil, fmt.Errorf("no build specified")
	}

	local := location
	if IsRemote(location) {
		p, err := download(ctx, location, workdir)
		if err != nil {
			return nil, err
		}
		local = p
	}

	fi, err := os.Stat(local)
	if err != nil {
		return nil, fmt.Errorf("reading build %s: %w", location, err)
	}

	var files []string
	if fi.IsDir() {
		err := filepath.WalkDir(local, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".rpm") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", location, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no packages found in %s", location)
		}
	} else {
		files = []string{local}
	}

	b := &Build{Location: location}
	for _, f := range files {
		pkg, err := ReadPackage(f, workdir)
		if err != nil {
			return nil, err
		}
		log.Debugf("loaded %s from %s", pkg.NEVRA, f)
		b.Packages = append(b.Packages, pkg)
	}
	b.Sort()
	return b, nil
}

func download(ctx context.Context, url, workdir string) (string, error) {
	clog.FromContext(ctx).Infof("downloading %s", url)
	dest, _, err := DownloadClient.Download(ctx, url, filepath.Join(workdir, "downloads"))
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	return dest, nil
}

// ReadPackage reads the header of the package file at p.
func ReadPackage(p, workdir string) (*Package, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	pkg, err := fromHeader(r.Header)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	pkg.Location = p
	pkg.extract = func(ctx context.Context) (fs.FS, error) {
		return expand(ctx, p, filepath.Join(workdir, "payloads", pkg.NEVRA.String()))
	}
	return pkg, nil
}

func fromHeader(hdr *rpmutils.RpmHeader) (*Package, error) {
	nevra, err := hdr.GetNEVRA()
	if err != nil {
		return nil, err
	}

	pkg := &Package{
		NEVRA: NEVRA{
			Name:    nevra.Name,
			Epoch:   nevra.Epoch,
			Version: nevra.Version,
			Release: nevra.Release,
			Arch:    nevra.Arch,
		},
	}
	// Optional tags; a missing tag reads as empty.
	pkg.License, _ = hdr.GetString(rpmutils.LICENSE)
	pkg.Summary, _ = hdr.GetString(rpmutils.SUMMARY)
	pkg.SourceRPM, _ = hdr.GetString(rpmutils.SOURCERPM)
	pkg.Requires, _ = hdr.GetStrings(rpmutils.REQUIRENAME)
	pkg.Provides, _ = hdr.GetStrings(rpmutils.PROVIDENAME)

	// Binary packages name the SRPM they came from; source packages do not.
	pkg.Source = pkg.SourceRPM == ""
	if pkg.Source {
		pkg.Arch = "src"
	}

	files, err := hdr.GetFiles()
	if err != nil {
		return nil, fmt.Errorf("reading file list: %w", err)
	}
	for _, fi := range files {
		pkg.Files = append(pkg.Files, File{
			Path:   fi.Name(),
			Size:   fi.Size(),
			Mode:   FileMode(fi.Mode()),
			Owner:  fi.UserName(),
			Group:  fi.GroupName(),
			Digest: fi.Digest(),
			Link:   fi.Linkname(),
			Flags:  fi.Flags(),
		})
	}
	return pkg, nil
}

func expand(ctx context.Context, p, dest string) (fs.FS, error) {
	_, span := otel.Tracer("rpminspect").Start(ctx, "ExpandPayload")
	defer span.End()

	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, err
	}
	if err := r.ExpandPayload(dest); err != nil {
		return nil, fmt.Errorf("unpacking %s: %w", p, err)
	}
	return os.DirFS(dest), nil
}

// Unix file type and permission bits as stored in RPM headers.
const (
	sIFMT   = 0o170000
	sIFDIR  = 0o040000
	sIFLNK  = 0o120000
	sIFCHR  = 0o020000
	sIFBLK  = 0o060000
	sIFIFO  = 0o010000
	sIFSOCK = 0o140000
	sISUID  = 0o4000
	sISGID  = 0o2000
	sISVTX  = 0o1000
)

// FileMode converts an RPM st_mode value to an fs.FileMode.
func FileMode(mode int) fs.FileMode {
	m := fs.FileMode(mode & 0o777)
	if mode&sISUID != 0 {
		m |= fs.ModeSetuid
	}
	if mode&sISGID != 0 {
		m |= fs.ModeSetgid
	}
	if mode&sISVTX != 0 {
		m |= fs.ModeSticky
	}
	switch mode & sIFMT {
	case sIFDIR:
		m |= fs.ModeDir
	case sIFLNK:
		m |= fs.ModeSymlink
	case sIFCHR:
		m |= fs.ModeDevice | fs.ModeCharDevice
	case sIFBLK:
		m |= fs.ModeDevice
	case sIFIFO:
		m |= fs.ModeNamedPipe
	case sIFSOCK:
		m |= fs.ModeSocket
	}
	return m
}
