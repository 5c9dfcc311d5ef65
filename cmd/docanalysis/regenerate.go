// regenerate.go
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
	"github.com/localnerve/docanalysis/internal/services"
	"github.com/spf13/cobra"
)

var regenerateFeedback string

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <documentId> <analysisId>",
	Short: "Append a new analysis that supersedes the current head",
	Long: `Re-run the analysis of a document, guided by reviewer feedback. The analysis id
must be the document's current head; a superseded id is rejected as a conflict.

Example:
  docanalysis regenerate cv-2026 cv-2026-3 --feedback "emphasize leadership"`,
	Args: cobra.ExactArgs(2),
	RunE: runRegenerate,
}

func init() {
	regenerateCmd.Flags().StringVar(&regenerateFeedback, "feedback", "", "reviewer feedback for the model")
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.EnablePipeline(ctx); err != nil {
		return err
	}

	result, err := a.Pipeline.Run(ctx, services.Input{
		Chain: services.ChainOptions{
			DocumentID:            args[0],
			PredecessorAnalysisID: args[1],
			Feedback:              regenerateFeedback,
		},
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}
