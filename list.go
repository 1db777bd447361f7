package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// newNewslettersCmd lists newsletter issues, newest first.
func newNewslettersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "newsletters",
		Short: "List newsletter issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			newsletters := a.indexer.Newsletters(cmd.Context())
			if flagJSON {
				return printJSON(newsletters)
			}

			statusf("%d newsletters\n", len(newsletters))

			rows := make([][]string, 0, len(newsletters))
			for _, n := range newsletters {
				rows = append(rows, []string{n.DateLabel, n.Title, n.Size, n.DownloadURL})
			}

			printTable(os.Stdout, []string{"DATE", "TITLE", "SIZE", "DOWNLOAD"}, rows)

			return nil
		},
	}
}

// newRecordingsCmd lists meeting recordings.
func newRecordingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recordings",
		Short: "List meeting recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			recordings := a.indexer.Recordings(cmd.Context())
			if flagJSON {
				return printJSON(recordings)
			}

			statusf("%d recordings\n", len(recordings))

			rows := make([][]string, 0, len(recordings))
			for _, r := range recordings {
				rows = append(rows, []string{strconv.Itoa(r.Year), r.Title, r.Duration, r.StreamURL})
			}

			printTable(os.Stdout, []string{"YEAR", "TITLE", "DURATION", "STREAM"}, rows)

			return nil
		},
	}
}

// newResourcesCmd lists member resources grouped by category.
func newResourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List member resources by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			categories := a.indexer.Resources(cmd.Context())
			if flagJSON {
				return printJSON(categories)
			}

			rows := make([][]string, 0, len(categories))
			for _, c := range categories {
				for _, r := range c.Resources {
					protected := ""
					if r.IsProtected {
						protected = "yes"
					}

					rows = append(rows, []string{c.Name, r.Title, r.Size, protected})
				}
			}

			printTable(os.Stdout, []string{"CATEGORY", "TITLE", "SIZE", "PROTECTED"}, rows)

			return nil
		},
	}
}

// newCommitteeCmd lists a committee folder's documents.
func newCommitteeCmd() *cobra.Command {
	var flagFolder string

	cmd := &cobra.Command{
		Use:   "committee",
		Short: "List committee files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			files := a.indexer.CommitteeFiles(cmd.Context(), flagFolder)
			if flagJSON {
				return printJSON(files)
			}

			rows := make([][]string, 0, len(files))
			for _, f := range files {
				protected := ""
				if f.IsProtected {
					protected = "yes"
				}

				rows = append(rows, []string{f.DisplayName, f.Category, f.Size, protected})
			}

			printTable(os.Stdout, []string{"NAME", "CATEGORY", "SIZE", "PROTECTED"}, rows)

			return nil
		},
	}

	cmd.Flags().StringVar(&flagFolder, "folder", "", "committee folder ID (default from config)")

	return cmd
}
