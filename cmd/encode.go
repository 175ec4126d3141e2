package cmd

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/facecam/internal/types"
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode the reference folder and list the known faces",
	Long:  "Computes one embedding per reference image and fails on the first image without a detectable face.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		w, refs, err := loadReferences(cmd.Context(), Cfg)
		if err != nil {
			return err
		}
		defer w.Close()

		printReferences(refs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}

func printReferences(refs []types.Reference) {
	if len(refs) == 0 {
		fmt.Println("No reference images found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tNORM")
	fmt.Fprintln(w, "-\t----\t----")
	for i, r := range refs {
		fmt.Fprintf(w, "%d\t%s\t%.4f\n", i, r.Name, embeddingNorm(r.Embedding))
	}
	w.Flush()
}

func embeddingNorm(e types.Embedding) float64 {
	var sum float64
	for _, v := range e {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
