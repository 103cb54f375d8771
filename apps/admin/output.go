package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/trezcool/coachreports/core"
	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/core/transfer"
)

// Output formats
const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"
)

var rowHeader = []string{
	"ID", "TITLE", "KIND", "ACTIVE", "GROUPS",
	"NOT_STARTED", "IN_PROGRESS", "COMPLETED", "NEEDS_HELP",
	"AVG_TIME", "RECIPIENTS", "ASSIGNED",
}

var admissionHeader = []string{
	"ADMITTED", "REASON", "CANDIDATE_SIZE", "AVAILABLE_SPACE", "REMAINING", "SELECTION_COUNT",
}

func checkOutput(format string) error {
	switch format {
	case outputTable, outputYAML, outputJSON:
		return nil
	}
	return core.NewConfigError("output", format, "expected one of table, yaml, json")
}

// writeStructured writes `v` as YAML or JSON.
func writeStructured(w io.Writer, format string, v interface{}) error {
	if format == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable aligns columns on terminals and writes tab separated values otherwise.
func writeTable(w io.Writer, header []string, lines [][]string) error {
	out := w
	var tw *tabwriter.Writer
	if terminal(w) {
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		out = tw
	}

	if _, err := fmt.Fprintln(out, strings.Join(header, "\t")); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, strings.Join(line, "\t")); err != nil {
			return err
		}
	}
	if tw != nil {
		return tw.Flush()
	}
	return nil
}

func writeRows(w io.Writer, format string, rows []progress.TableRow) error {
	if format != outputTable {
		return writeStructured(w, format, rows)
	}

	lines := make([][]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, []string{
			r.ID,
			r.Title,
			string(r.Kind),
			strconv.FormatBool(r.Active),
			strings.Join(r.Groups, ", "),
			strconv.Itoa(r.Tally.NotStarted),
			strconv.Itoa(r.Tally.InProgress),
			strconv.Itoa(r.Tally.Completed),
			strconv.Itoa(r.Tally.NeedsHelp),
			r.AvgTimeSpent.String(),
			strconv.Itoa(r.Recipients),
			strconv.FormatBool(r.HasAssignments),
		})
	}
	return writeTable(w, rowHeader, lines)
}

func writeAdmission(w io.Writer, format string, state transfer.AdmissionState) error {
	if format != outputTable {
		return writeStructured(w, format, state)
	}

	reason := state.Reason
	if reason == "" {
		reason = "-"
	}
	return writeTable(w, admissionHeader, [][]string{{
		strconv.FormatBool(state.Admitted),
		reason,
		strconv.FormatInt(state.CandidateSize, 10),
		strconv.FormatInt(state.AvailableSpace, 10),
		strconv.FormatInt(state.RemainingAfterTransfer, 10),
		strconv.Itoa(state.SelectionCount),
	}})
}
