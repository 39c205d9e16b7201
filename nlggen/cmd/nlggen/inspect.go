package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casework/CASE-Utility-Verifier/audit"
	"github.com/casework/CASE-Utility-Verifier/nlggen"
)

func newPlanCmd(a *app) *cobra.Command {
	var showManifest bool
	cmd := &cobra.Command{
		Use:   "plan <snapshot.msgpack>",
		Short: "Summarize a plan snapshot written by generate --plan-out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			snap, err := nlggen.DecodeSnapshot(f)
			if err != nil {
				return err
			}

			st := newStyles(a.stdout)
			fmt.Fprintf(a.stdout, "%s v%s (%s)\n", st.title.Render("Plan"), snap.Version, snap.Source)
			for _, g := range snap.Plan.Groups {
				fmt.Fprintf(a.stdout, "\n%s (%d)\n", st.title.Render(g.Title), len(g.Functions))
				for _, fn := range g.Functions {
					fmt.Fprintf(a.stdout, "  %-48s %s\n", fn.Name, st.label.Render(fmt.Sprintf("%d params", len(fn.Params))))
				}
			}
			if len(snap.Diagnostics) > 0 {
				fmt.Fprintf(a.stdout, "\n%s (%d)\n", st.warn.Render("Diagnostics"), len(snap.Diagnostics))
				for _, d := range snap.Diagnostics {
					fmt.Fprintf(a.stdout, "  %s\n", d)
				}
			}
			if showManifest {
				fmt.Fprintln(a.stdout)
				return nlggen.WriteManifest(a.stdout, snap.Plan.Manifest)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showManifest, "manifest", false, "also print the type manifest")
	return cmd
}

func newManifestCmd(a *app) *cobra.Command {
	var diff bool
	cmd := &cobra.Command{
		Use:   "manifest <audit.db>",
		Short: "Print the manifest of the latest recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := audit.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.Runs(ctx, 2)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				return audit.ErrNoRuns
			}
			latest := runs[0]
			entries, err := store.Entries(ctx, latest.ID)
			if err != nil {
				return err
			}

			st := newStyles(a.stdout)
			fmt.Fprintf(a.stdout, "%s %s v%s (%s) %s\n", st.title.Render("Run"), latest.ID, latest.Version, latest.Source,
				st.label.Render(latest.CreatedAt.Format("2006-01-02 15:04:05Z")))
			if !diff {
				fmt.Fprintln(a.stdout)
				return nlggen.WriteManifest(a.stdout, entries)
			}

			if len(runs) < 2 {
				return errors.New("only one run recorded, nothing to diff against")
			}
			older, err := store.Entries(ctx, runs[1].ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s %s v%s\n\n", st.label.Render("compared with"), runs[1].ID, runs[1].Version)
			changes := audit.Diff(older, entries)
			if len(changes) == 0 {
				fmt.Fprintln(a.stdout, st.ok.Render("no manifest changes"))
				return nil
			}
			for _, c := range changes {
				if c.Added {
					fmt.Fprintln(a.stdout, st.added.Render(fmt.Sprintf("+ %-40s %s", c.Entry.Function, c.Entry)))
				} else {
					fmt.Fprintln(a.stdout, st.gone.Render(fmt.Sprintf("- %-40s %s", c.Entry.Function, c.Entry)))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&diff, "diff", false, "show changes against the previous run instead")
	return cmd
}
