// ingest.go
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
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/localnerve/docanalysis/internal/models"
	"github.com/localnerve/docanalysis/internal/services"
	"github.com/spf13/cobra"
)

var (
	ingestOwner       string
	ingestContentType string
	ingestTitle       string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <documentId> <file>",
	Short: "Store a local document and append its first analysis",
	Long: `Store a local file in the blob store, register it under the given document id
and run the analysis pipeline on it, exactly as a storage event would.

Examples:
  docanalysis ingest cv-2026 ./cv.pdf --owner user-1
  docanalysis ingest notes-1 ./notes.txt --owner user-1 --content-type text/plain`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestOwner, "owner", "", "owner of the document (required)")
	ingestCmd.Flags().StringVar(&ingestContentType, "content-type", "", "content type; guessed from the file extension when empty")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title")
	_ = ingestCmd.MarkFlagRequired("owner")
}

func runIngest(cmd *cobra.Command, args []string) error {
	documentID, file := args[0], args[1]

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	contentType := ingestContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(file))
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.EnablePipeline(ctx); err != nil {
		return err
	}

	location := path.Join(ingestOwner, documentID, filepath.Base(file))
	if err := a.Blobs.Put(ctx, location, data, map[string]string{
		"owner":       ingestOwner,
		"contentType": contentType,
	}); err != nil {
		return fmt.Errorf("failed to store %s: %w", file, err)
	}

	if _, err := a.Chain.RegisterDocument(ctx, models.Document{
		DocumentID:     documentID,
		Owner:          ingestOwner,
		SourceLocation: location,
		Title:          ingestTitle,
		ContentType:    contentType,
	}); err != nil {
		return err
	}

	result, err := a.Pipeline.Run(ctx, services.Input{
		RequestorID: ingestOwner,
		Source:      &services.SourceInput{Location: location, ContentType: contentType},
		Chain:       services.ChainOptions{DocumentID: documentID},
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}
