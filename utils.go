package gymserver

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timestampPrefix matches the numeric prefix the upload naming scheme puts
// in front of a filename. Both the current `12345678_` and the legacy
// `12345678-` separators occur on disk.
var timestampPrefix = regexp.MustCompile(`^\d+[-_]`)

// nonAlphanumeric collapses everything outside [a-z0-9] when cleaning an
// uploaded file's base name.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// StoredFilename builds the on-disk name of an upload:
// `<timestamp>_<cleaned-base><ext>`. The timestamp keeps the last eight
// digits of unix milliseconds so names stay short while remaining unique
// enough within one deployment.
func StoredFilename(originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName)))

	base = strings.Trim(nonAlphanumeric.ReplaceAllString(base, "_"), "_")
	if base == "" {
		base = "image"
	}

	millis := strconv.FormatInt(now.UnixMilli(), 10)
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}

	return fmt.Sprintf("%s_%s%s", millis, base, ext)
}

// FileID returns the stable external identifier of a stored file: its
// base name without the extension.
func FileID(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// StripTimestampPrefix removes a leading numeric-timestamp prefix from an
// id, if present.
func StripTimestampPrefix(id string) string {
	return timestampPrefix.ReplaceAllString(id, "")
}

// TitleCase normalizes a filename-ish token into a human label: hyphens
// and underscores become spaces and every word is title-cased.
func TitleCase(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)

	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// DisplayNameFromFilename derives a human label for a file that has no
// metadata record by dropping the timestamp prefix of its id.
func DisplayNameFromFilename(filename string) string {
	return TitleCase(StripTimestampPrefix(FileID(filename)))
}

// GripLabelFromFilename derives a grip-type label from a filename:
// timestamp prefix and the grip_ marker are dropped before title-casing.
// Ids that are empty after stripping get a generic label.
func GripLabelFromFilename(filename string) string {
	id := StripTimestampPrefix(FileID(filename))
	id = strings.TrimPrefix(id, "grip_")

	label := TitleCase(id)
	if len(label) < 2 {
		return "Grip"
	}
	return label
}

// InferKind classifies a filename as machine or grip when the uploader did
// not declare a kind. The machine_/grip_ prefixes are authoritative; the
// name-list heuristic behind them is a migration shim for files predating
// the prefix convention.
func InferKind(filename string) string {
	id := strings.ToLower(FileID(filename))

	if strings.HasPrefix(id, "machine_") {
		return KindMachine
	}
	if strings.HasPrefix(id, "grip_") {
		return KindGrip
	}

	for _, grip := range gripTypeNames {
		if strings.Contains(id, grip) {
			return KindGrip
		}
	}
	for _, machine := range mainMachineNames {
		if strings.HasPrefix(StripTimestampPrefix(id), machine) {
			return KindMachine
		}
	}

	return KindGrip
}
