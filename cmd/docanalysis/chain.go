// chain.go
//
// Document analysis versioning and provenance service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of docanalysis.
// docanalysis is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// docanalysis is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with docanalysis.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/localnerve/docanalysis/internal/models"
	"github.com/spf13/cobra"
)

var chainJSON bool

var chainCmd = &cobra.Command{
	Use:   "chain <documentId>",
	Short: "Show a document's analyses in chain order",
	Args:  cobra.ExactArgs(1),
	RunE:  runChain,
}

func init() {
	chainCmd.Flags().BoolVarP(&chainJSON, "json", "j", false, "output as JSON")
}

func runChain(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	chain, err := a.Chain.GetChain(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if chainJSON {
		return printJSON(cmd, chain)
	}
	return writeChain(cmd.OutOrStdout(), chain)
}

func writeChain(out io.Writer, chain []models.Analysis) error {
	if len(chain) == 0 {
		_, err := fmt.Fprintln(out, "No analyses")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tANALYSIS\tKIND\tMODEL\tGENERATED\tRATING\tFEEDBACK")
	for _, a := range chain {
		rating := "-"
		if a.UserRating != nil {
			rating = fmt.Sprint(*a.UserRating)
		}
		feedback := "-"
		if a.Feedback != nil {
			feedback = truncate(*a.Feedback, 40)
		}
		marker := ""
		if a.IsHead() {
			marker = " (head)"
		}
		fmt.Fprintf(w, "%d\t%s%s\t%s\t%s\t%s\t%s\t%s\n",
			a.Position, a.AnalysisID, marker, a.Content.Data().Kind, a.ModelIdentifier,
			a.GenerationTime.Format(time.RFC3339), rating, feedback)
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
