package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/satindergrewal/pianochords/internal/chord"
	"github.com/satindergrewal/pianochords/internal/session"
	"github.com/satindergrewal/pianochords/internal/termview"
)

var (
	showCategory string
	showChord    string
	showRoot     string
)

func init() {
	showCmd.Flags().StringVar(&showCategory, "category", "", "triads, tetrads or extended (default from config)")
	showCmd.Flags().StringVar(&showChord, "chord", "", "chord symbol in C, e.g. Cm7 (default: first of category)")
	showCmd.Flags().StringVar(&showRoot, "root", "", "Latin root label, e.g. Sol or Sib (default from config)")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a transposed chord on a terminal keyboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		if showCategory == "" {
			showCategory = cfg.Category
		}
		if showRoot == "" {
			showRoot = cfg.Root
		}
		if showChord != "" && !cmd.Flags().Changed("category") {
			// pick the category the symbol belongs to
			if shape, err := chord.NewCatalog().Find(showChord); err == nil {
				showCategory = string(shape.Category)
			}
		}

		sess, err := session.New(nil, session.WithLogger(logger.WithPrefix("session")))
		if err != nil {
			return err
		}
		if err := sess.SelectCategory(showCategory); err != nil {
			return err
		}
		if showChord != "" {
			if err := sess.SelectChord(showChord); err != nil {
				return err
			}
		}
		if err := sess.SelectRoot(showRoot); err != nil {
			return err
		}

		log.Debug("rendering", "chord", sess.View().Symbol)
		fmt.Fprintln(cmd.OutOrStdout(), termview.Render(sess.View(), sess.Keyboard()))
		return nil
	},
}
