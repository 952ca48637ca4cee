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

package probe

import "testing"

func TestOIDNameKnown(t *testing.T) {
	cases := map[uint32]string{
		23:   "int4",
		25:   "text",
		1700: "numeric",
		3802: "jsonb",
		2950: "uuid",
	}
	for oid, want := range cases {
		if got := OIDName(oid); got != want {
			t.Errorf("OIDName(%d) = %q, want %q", oid, got, want)
		}
	}
}

func TestOIDNameFallsBackToNumber(t *testing.T) {
	if got := OIDName(999999); got != "999999" {
		t.Errorf("OIDName(999999) = %q, want %q", got, "999999")
	}
}
