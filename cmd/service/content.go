package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alasharulary/alash/internal/adapters/content"
	"github.com/alasharulary/alash/internal/app"
	"github.com/alasharulary/alash/internal/domain"
)

func newContentCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect the bundled people, quotes and UI strings",
	}

	cmd.AddCommand(newContentCheckCmd(), newContentSearchCmd(opts))

	return cmd
}

func newContentCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the bundled content and report what it holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := content.Load()
			if err != nil {
				return fmt.Errorf("content is invalid: %w", err)
			}

			return writeContentReport(cmd.OutOrStdout(), store)
		},
	}
}

func writeContentReport(w io.Writer, store *content.Store) error {
	people := store.People()

	placed := 0
	for i := range people {
		if people[i].HasLocation() {
			placed++
		}
	}

	if _, err := fmt.Fprintf(w, "people: %d (%d with a birthplace)\n", len(people), placed); err != nil {
		return err
	}

	for _, lang := range domain.Languages {
		_, err := fmt.Fprintf(w, "%s: %d quotes, %d strings\n",
			lang, len(store.Quotes(lang)), len(store.Strings(lang)))
		if err != nil {
			return err
		}
	}

	return nil
}

type searchOptions struct {
	lang   string
	places bool
}

func newContentSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search people the same way the dashboard does",
		Long: `Search matches names, fields and bios in both languages, ignoring case.
With --places it matches the birthplace list instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := domain.ParseLanguage(opts.lang)
			if err != nil {
				return err
			}

			store, err := content.Load()
			if err != nil {
				return fmt.Errorf("loading content: %w", err)
			}

			cfg, err := loadConfig(root.profile)
			if err != nil {
				return err
			}

			catalog := app.NewCatalogService(app.CatalogServiceConfig{
				Store:  store,
				Logger: newLogger(cfg),
			})

			query := strings.Join(args, " ")

			var found []app.LocalizedPerson
			if opts.places {
				found = catalog.SearchPlaces(cmd.Context(), query, lang)
			} else {
				found = catalog.SearchPeople(cmd.Context(), query, lang)
			}

			return writeSearchResults(cmd.OutOrStdout(), found, opts.places)
		},
	}

	cmd.Flags().StringVarP(&opts.lang, "lang", "l", domain.DefaultLanguage.String(), "display language (kk or en)")
	cmd.Flags().BoolVar(&opts.places, "places", false, "search birthplaces instead of people")

	return cmd
}

func writeSearchResults(w io.Writer, found []app.LocalizedPerson, places bool) error {
	for i := range found {
		p := &found[i]

		detail := strings.Join(p.Categories, ", ")
		if places {
			detail = p.Place
		}

		if _, err := fmt.Fprintf(w, "%-28s %-32s %s\n", p.ID, p.Name, detail); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%d found\n", len(found))

	return err
}
