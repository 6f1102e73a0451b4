package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satindergrewal/pianochords/internal/chord"
	"github.com/satindergrewal/pianochords/internal/termview"
)

var chordsRoot string

func init() {
	chordsCmd.Flags().StringVar(&chordsRoot, "root", "", "Latin root label to transpose to (default from config)")
	rootCmd.AddCommand(chordsCmd)
}

var chordsCmd = &cobra.Command{
	Use:   "chords",
	Short: "List the chord catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		root := chordsRoot
		if root == "" {
			root = cfg.Root
		}

		styles := termview.NewStyles(termview.DefaultTheme)
		cat := chord.NewCatalog()
		kb := chord.StandardKeyboard()
		for _, c := range chord.Categories() {
			out, err := styles.Catalog(cat, c, root, kb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}
