// Package idgen generates the opaque UUID identifiers spec.md §3 requires
// ("all identifiers are opaque UTF-8 strings (UUIDs in practice); no code
// path interprets their structure"). Grounded on element-hq-dendrite and
// RoseWrightdev-Video-Conferencing, both of which use google/uuid for
// exactly this purpose; supersedes the teacher's tinode/snowflake dependency
// (see SPEC_FULL.md §3).
package idgen

import "github.com/google/uuid"

// New returns a fresh opaque identifier.
func New() string {
	return uuid.NewString()
}
