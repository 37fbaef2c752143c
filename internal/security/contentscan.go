package security

import "strings"

// maxMessageLength is the suspicious-content length threshold of spec.md
// §4.3. Anything longer is flagged regardless of content.
const maxMessageLength = 10000

// suspiciousSubstrings is the fixed rule list of spec.md §4.3: any of these,
// case-sensitive, anywhere in the content, flags it as suspicious.
var suspiciousSubstrings = []string{
	"<script>",
	"javascript:",
	"<?php",
	"exec(",
	"eval(",
	"system(",
	"rm -rf",
	"DROP TABLE",
	"../..",
}

// ScanContent reports whether content trips any of spec.md §4.3's
// suspicious-activity rules: excessive length, embedded script/shell/SQL
// markers, null bytes, command-injection-style path traversal, or repeated
// protocol-command markers that suggest smuggling.
func ScanContent(content string) (suspicious bool, reason string) {
	if len(content) > maxMessageLength {
		return true, "content_too_long"
	}
	if strings.IndexByte(content, 0) >= 0 {
		return true, "null_byte"
	}
	for _, needle := range suspiciousSubstrings {
		if strings.Contains(content, needle) {
			return true, "pattern:" + needle
		}
	}
	upper := strings.ToUpper(content)
	if strings.Contains(upper, "SELECT") && strings.Contains(upper, "FROM") {
		return true, "sql_select"
	}
	if strings.Contains(upper, "UNION") && strings.Contains(upper, "SELECT") {
		return true, "sql_union"
	}
	if strings.Contains(content, "DELETE FROM") && strings.Contains(content, "*") {
		return true, "sql_delete_wildcard"
	}
	if strings.Count(content, "INVITE_USER:") >= 2 || strings.Count(content, "CREATE_ROOM:") >= 2 {
		return true, "repeated_command_marker"
	}
	return false, ""
}
