package cli

import (
	"os"

	"github.com/rcliao/physics-dump/internal/namedb"
	"github.com/rcliao/physics-dump/internal/physics"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a physics file to JSON, detecting its format",
		Args:  cobra.ExactArgs(1),
		Run:   runConvert,
	})
	RootCmd.AddCommand(&cobra.Command{
		Use:   "convert-m1 FILE",
		Short: "Convert an older-generation (flat) physics file to JSON",
		Args:  cobra.ExactArgs(1),
		Run:   runConvertM1,
	})
	RootCmd.AddCommand(&cobra.Command{
		Use:   "convert-m2 FILE",
		Short: "Convert a newer-generation (archive) physics file to JSON",
		Args:  cobra.ExactArgs(1),
		Run:   runConvertM2,
	})
}

func convertWith(path string, decode func(f *os.File, names *namedb.Set) (any, error)) {
	names, err := openNames()
	if err != nil {
		exitErr("load name database", err)
	}
	f, err := os.Open(path)
	if err != nil {
		exitErr("open file", err)
	}
	defer f.Close()

	model, err := decode(f, names)
	if err != nil {
		exitErr("convert", err)
	}
	printJSON(model)
}

func runConvert(cmd *cobra.Command, args []string) {
	convertWith(args[0], func(f *os.File, names *namedb.Set) (any, error) {
		return physics.Decode(f, names)
	})
}

func runConvertM1(cmd *cobra.Command, args []string) {
	convertWith(args[0], func(f *os.File, names *namedb.Set) (any, error) {
		return physics.ReadM1(f, names)
	})
}

func runConvertM2(cmd *cobra.Command, args []string) {
	convertWith(args[0], func(f *os.File, names *namedb.Set) (any, error) {
		return physics.ReadM2(f, names)
	})
}
