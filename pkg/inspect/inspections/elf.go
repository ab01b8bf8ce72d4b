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
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/rpminspect/rpminspect-sub001/pkg/rpm"
)

var elfMagic = []byte{'\x7f', 'E', 'L', 'F'}

// openELF parses the payload file at p. It returns nil, nil when the file is
// not an ELF object.
func openELF(fsys fs.FS, p string) (*elf.File, error) {
	f, err := fsys.Open(rpm.PayloadPath(p))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hdr := make([]byte, len(elfMagic))
	if _, err := io.ReadFull(f, hdr); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, nil
		}
		return nil, err
	}
	if !bytes.Equal(hdr, elfMagic) {
		return nil, nil
	}

	rest, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	ef, err := elf.NewFile(bytes.NewReader(append(hdr, rest...)))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p, err)
	}
	return ef, nil
}
