package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the dataset into the local cache",
	Long:  "Downloads any missing source files into the cache directory. Cached files are reused as-is; delete them to force a fresh download.",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := newLoader(cfg).EnsureLocal(cmd.Context())
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
