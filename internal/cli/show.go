package cli

import (
	"os"

	"github.com/rcliao/physics-dump/internal/physics"
	"github.com/rcliao/physics-dump/internal/wad"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "show-wad FILE",
		Short: "Display the header, directory and chunk framing of an archive",
		Args:  cobra.ExactArgs(1),
		Run:   runShowWad,
	})
	RootCmd.AddCommand(&cobra.Command{
		Use:   "show-chunks FILE",
		Short: "Display the chunks of a flat physics file",
		Args:  cobra.ExactArgs(1),
		Run:   runShowChunks,
	})
}

// chunkSummary is the inspection view of a chunk: its tag and sizes, not
// its payload bytes.
type chunkSummary struct {
	Tag        string `json:"tag"`
	NextOffset uint32 `json:"next_offset,omitempty"`
	Size       int    `json:"size"`
}

type wadSummary struct {
	Version          uint16           `json:"version"`
	DataVersion      uint16           `json:"data_version"`
	Name             string           `json:"name"`
	Checksum         uint32           `json:"checksum"`
	DirectoryOffset  uint32           `json:"directory_offset"`
	SubfileCount     uint16           `json:"subfile_count"`
	ExtraDataSize    uint16           `json:"extra_data_size"`
	EntryHeaderSize  uint16           `json:"entry_header_size"`
	DirEntryBaseSize uint16           `json:"directory_entry_base_size"`
	ParentChecksum   uint32           `json:"parent_checksum"`
	Files            [][]chunkSummary `json:"files"`
}

func summarize(chunks []wad.Chunk) []chunkSummary {
	out := make([]chunkSummary, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, chunkSummary{Tag: c.Tag.String(), NextOffset: c.NextOffset, Size: len(c.Data)})
	}
	return out
}

func runShowWad(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		exitErr("open file", err)
	}
	defer f.Close()

	w, err := physics.OpenArchive(f)
	if err != nil {
		exitErr("read archive", err)
	}

	s := wadSummary{
		Version:          w.Version,
		DataVersion:      w.DataVersion,
		Name:             w.Name,
		Checksum:         w.Checksum,
		DirectoryOffset:  w.DirectoryOffset,
		SubfileCount:     w.SubfileCount,
		ExtraDataSize:    w.ExtraDataSize,
		EntryHeaderSize:  w.EntryHeaderSize,
		DirEntryBaseSize: w.DirEntryBaseSize,
		ParentChecksum:   w.ParentChecksum,
		Files:            make([][]chunkSummary, 0, len(w.Files)),
	}
	for _, chunks := range w.Files {
		s.Files = append(s.Files, summarize(chunks))
	}
	printJSON(s)
}

func runShowChunks(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		exitErr("open file", err)
	}
	defer f.Close()

	chunks, err := wad.ReadFlatChunks(f)
	if err != nil {
		exitErr("read chunks", err)
	}
	printJSON(summarize(chunks))
}
