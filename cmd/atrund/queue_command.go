package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"atrund/internal/config"
	"atrund/internal/spool"
)

type queueRow struct {
	Job       uint32 `json:"job"`
	Queue     string `json:"queue"`
	Class     string `json:"class"`
	Scheduled string `json:"scheduled"`
	Owner     string `json:"owner"`
	State     string `json:"state"`
}

func newQueueCommand(flags *rootFlags) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List the jobs waiting in the spool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			entries, err := spool.List(cfg.Paths.JobDir)
			if err != nil {
				return fmt.Errorf("list spool %s: %w", cfg.Paths.JobDir, err)
			}

			rows := make([]queueRow, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, buildQueueRow(entry))
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			renderQueueRows(cmd, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func buildQueueRow(entry spool.Entry) queueRow {
	row := queueRow{
		Job:       entry.Name.JobNo,
		Queue:     string(entry.Name.Queue),
		Scheduled: entry.Name.Time().Local().Format(time.RFC1123),
		Owner:     ownerLabel(entry.Info.UID),
	}

	switch {
	case entry.Name.IsLock():
		row.Class = "lock"
	case entry.Name.IsBatch():
		row.Class = "batch"
	case entry.Name.IsJob():
		row.Class = "immediate"
	default:
		row.Class = "foreign"
	}

	switch {
	case entry.Name.IsLock() && entry.Info.NLink == 1:
		row.State = "orphaned"
	case entry.Name.IsLock():
		row.State = "held"
	case !entry.Info.Executable:
		row.State = "preparing"
	case entry.Info.NLink > 1:
		row.State = "running"
	default:
		row.State = "ready"
	}
	return row
}

func ownerLabel(uid uint32) string {
	id := strconv.FormatUint(uint64(uid), 10)
	if pw, err := user.LookupId(id); err == nil {
		return pw.Username
	}
	return id
}

func renderQueueRows(cmd *cobra.Command, rows []queueRow) {
	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "spool is empty")
		return
	}

	if isTerminal() {
		fmt.Fprintln(out, renderQueueTable(rows))
		return
	}

	// Plain tab-separated rows for pipes and scripts.
	fmt.Fprintln(out, "JOB\tQUEUE\tCLASS\tSCHEDULED\tOWNER\tSTATE")
	for _, row := range rows {
		fmt.Fprintln(out, strings.Join([]string{
			strconv.FormatUint(uint64(row.Job), 10),
			row.Queue,
			row.Class,
			row.Scheduled,
			row.Owner,
			row.State,
		}, "\t"))
	}
}

// renderQueueTable draws the interactive spool listing: six fixed columns
// with the job number right-aligned.
func renderQueueTable(rows []queueRow) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"JOB", "QUEUE", "CLASS", "SCHEDULED", "OWNER", "STATE"})
	for _, row := range rows {
		tw.AppendRow(table.Row{row.Job, row.Queue, row.Class, row.Scheduled, row.Owner, row.State})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
