// Package cli implements the physics-dump CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcliao/physics-dump/internal/namedb"
	"github.com/spf13/cobra"
)

var namedbPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "physics-dump",
	Short: "Turn legacy physics files into JSON",
	Long:  "A tool for decoding the two legacy physics file formats, and the archive container wrapping the newer one, into JSON on stdout.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&namedbPath, "namedb", "n", "",
		"Name database: a directory of files like monster_names.txt (one name per line, blank lines for gaps), or a .db/.sqlite file")
}

func openNames() (*namedb.Set, error) {
	if namedbPath == "" {
		return namedb.Defaults(), nil
	}
	switch strings.ToLower(filepath.Ext(namedbPath)) {
	case ".db", ".sqlite":
		return namedb.LoadSQLite(namedbPath)
	}
	return namedb.LoadDir(namedbPath)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
