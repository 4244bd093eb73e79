package analytics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"badgekit/core"
)

// WriteJSON writes a snapshot as indented JSON.
func WriteJSON(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to export snapshot: %w", err)
	}
	return nil
}

// WriteCSV writes per-badge counts as CSV, sorted by badge key for stable
// output.
func WriteCSV(w io.Writer, snap Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"badge", "awards"}); err != nil {
		return err
	}
	keys := make([]string, 0, len(snap.ByBadge))
	for k := range snap.ByBadge {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := cw.Write([]string{k, strconv.FormatInt(snap.ByBadge[core.BadgeKey(k)], 10)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
