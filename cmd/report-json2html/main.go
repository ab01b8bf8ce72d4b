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

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rpminspect/rpminspect-sub001/pkg/cli"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.ExecuteJSON2HTML(ctx, os.Args[1:], os.Stdout, os.Stderr)
	done()
	os.Exit(code)
}
