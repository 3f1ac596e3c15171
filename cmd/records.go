package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color" //nolint:misspell
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var sectionNames = []string{"books", "rewards", "store-items", "students"}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "list <entity>",
		Short:     "List the records of an entity",
		Example:   "  schoolstore list books --query hóa",
		Args:      cobra.ExactArgs(1),
		ValidArgs: sectionNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, adminContext, shutdown, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = shutdown(cmd.Context()) }()

			section, err := adminContext.Section(args[0])
			if err != nil {
				return err //nolint:wrapcheck // error lists the valid entities
			}

			query, _ := cmd.Flags().GetString("query")
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("size")

			listing, err := section.List(cmd.Context(), query, page, size)
			if err != nil {
				return err //nolint:wrapcheck // already wrapped by the section
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				for _, record := range listing.Records {
					fmt.Fprintln(cmd.OutOrStdout(), string(record))
				}

				return nil
			}

			bold := color.New(color.Bold).SprintFunc()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column padding

			fmt.Fprintf(w, "%s\t%s\t%s\n", bold("KEY"), bold("NAME"), bold("CODE"))

			for _, record := range listing.Records {
				fields := gjson.GetManyBytes(record, "key", "name", "code")
				fmt.Fprintf(w, "%s\t%s\t%s\n", fields[0].String(), fields[1].String(), fields[2].String())
			}

			if err := w.Flush(); err != nil {
				return fmt.Errorf("could not print records: %w", err)
			}

			color.New(color.Faint).Fprintf(cmd.OutOrStdout(), "page %d of %d, %d of %d records match\n",
				listing.Page, listing.Pages, listing.Filtered, listing.Total)

			return nil
		},
	}

	cmd.Flags().StringP("query", "q", "", "only show records whose name or code contains the query")
	cmd.Flags().Int("page", 1, "page to show, starting at 1")
	cmd.Flags().Int("size", 10, "records per page") //nolint:mnd // default page size
	cmd.Flags().Bool("json", false, "print each record as JSON")

	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "export <entity>",
		Short:     "Export the records of an entity as CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: sectionNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, adminContext, shutdown, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = shutdown(cmd.Context()) }()

			section, err := adminContext.Section(args[0])
			if err != nil {
				return err //nolint:wrapcheck // error lists the valid entities
			}

			query, _ := cmd.Flags().GetString("query")

			csv, err := section.Export(cmd.Context(), query)
			if err != nil {
				return err //nolint:wrapcheck // already wrapped by the section
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				_, err = cmd.OutOrStdout().Write(csv)

				return err //nolint:wrapcheck // nothing to add
			}

			if err := os.WriteFile(output, csv, 0o600); err != nil { //nolint:mnd // file permission
				return fmt.Errorf("could not write export: %w", err)
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", section.Name(), output)

			return nil
		},
	}

	cmd.Flags().StringP("query", "q", "", "only export records whose name or code contains the query")
	cmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")

	return cmd
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "reset [entity]",
		Short:     "Replace the records of an entity with the default records",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: sectionNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if len(args) == 0 && !all {
				return fmt.Errorf("%w: name an entity or use --all", errMissingArgument)
			}

			_, adminContext, shutdown, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = shutdown(cmd.Context()) }()

			names := args
			if all {
				names = adminContext.Sections()
			}

			yellow := color.New(color.FgYellow).FprintfFunc()

			for _, name := range names {
				section, err := adminContext.Section(name)
				if err != nil {
					return err //nolint:wrapcheck // error lists the valid entities
				}

				n, err := section.Reset(cmd.Context())
				if err != nil {
					return err //nolint:wrapcheck // already wrapped by the section
				}

				yellow(cmd.OutOrStdout(), "reset %s: %d records\n", name, n)
			}

			return nil
		},
	}

	cmd.Flags().Bool("all", false, "reset all entities")

	return cmd
}
