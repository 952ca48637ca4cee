// Copyright 2025 Nhat-Nguyen Nguyen
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

package secret

import (
	"context"
	"errors"
	"testing"
)

func TestResolveTrimsSingleTrailingNewline(t *testing.T) {
	got, err := Resolve(context.Background(), "printf 'hunter2\\n\\n'")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "hunter2\n" {
		t.Fatalf("expected one trailing newline trimmed, got %q", got)
	}
}

func TestResolveNonZeroExit(t *testing.T) {
	_, err := Resolve(context.Background(), "echo oops >&2; exit 3")
	var failed *Failed
	if !errors.As(err, &failed) {
		t.Fatalf("expected *Failed, got %v", err)
	}
	if failed.ExitCode != 3 {
		t.Fatalf("expected exit 3, got %d", failed.ExitCode)
	}
	if failed.StderrTail == "" {
		t.Fatal("expected non-empty stderr tail")
	}
}

func TestResolveRejectsOversizedStdout(t *testing.T) {
	_, err := Resolve(context.Background(), "head -c 70000 /dev/zero")
	if !errors.Is(err, ErrStdoutTooLarge) {
		t.Fatalf("expected ErrStdoutTooLarge, got %v", err)
	}
}

func TestResolveNoStdin(t *testing.T) {
	got, err := Resolve(context.Background(), "cat; echo done")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "done" {
		t.Fatalf("expected cat to see closed stdin, got %q", got)
	}
}
