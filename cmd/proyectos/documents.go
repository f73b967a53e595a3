package main

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/cli"
	"github.com/Veraticus/consulta-proyectos/internal/config"
	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/service"
	"github.com/Veraticus/consulta-proyectos/internal/storage"
	"github.com/spf13/cobra"
)

var documentHeaders = []string{"Código", "Archivo", "Tipo", "Tamaño", "Almacenado como"}

func documentRows(docs []model.Document) [][]string {
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []string{
			strconv.Itoa(d.Code), d.OriginalName, d.MimeType, fmt.Sprintf("%d B", d.Size), d.StoredName,
		})
	}
	return rows
}

func documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Attach and list project documents",
	}

	cmd.AddCommand(attachDocumentCmd())
	cmd.AddCommand(listDocumentsCmd())

	return cmd
}

func attachDocumentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <código-proyecto> <archivo>",
		Short: "Copy a file into the document store and attach it to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectCode, err := parseCode(args[0], "project")
			if err != nil {
				return err
			}
			source := config.ExpandPath(args[1])

			return withStorage(ctx, func(cfg *config.Config, store service.Storage) error {
				if _, err := store.GetProject(ctx, projectCode); err != nil {
					return err
				}

				doc := model.Document{
					ProjectCode:  projectCode,
					OriginalName: filepath.Base(source),
					StoredName:   storage.StoredName(source),
				}
				size, mimeType, err := copyDocument(source, filepath.Join(cfg.DocumentsDir, doc.StoredName))
				if err != nil {
					return err
				}
				doc.Size, doc.MimeType = size, mimeType

				if err := store.AttachDocument(ctx, &doc); err != nil {
					_ = os.Remove(filepath.Join(cfg.DocumentsDir, doc.StoredName))
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(),
					cli.FormatSuccess(fmt.Sprintf("Attached %q to project %d as %s", doc.OriginalName, projectCode, doc.StoredName)))
				return nil
			})
		},
	}
}

// copyDocument copies src to dst and returns its size and MIME type.
func copyDocument(src, dst string) (int64, string, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, "", fmt.Errorf("failed to open document: %w", err)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return 0, "", fmt.Errorf("failed to create document directory: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create stored document: %w", err)
	}

	head := make([]byte, 512)
	n, _ := io.ReadFull(in, head)
	head = head[:n]

	size, err := io.Copy(out, io.MultiReader(bytes.NewReader(head), in))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return 0, "", fmt.Errorf("failed to copy document: %w", err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(src)))
	if mimeType == "" {
		mimeType = http.DetectContentType(head)
	}
	return size, mimeType, nil
}

func listDocumentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <código-proyecto>",
		Short: "List a project's documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectCode, err := parseCode(args[0], "project")
			if err != nil {
				return err
			}
			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				docs, err := store.ListDocumentsByProject(ctx, projectCode)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(docs) == 0 {
					_, _ = fmt.Fprintln(out, cli.FormatInfo("No documents attached"))
					return nil
				}
				_, _ = fmt.Fprintln(out, cli.Table(documentHeaders, documentRows(docs)))
				return nil
			})
		},
	}
}
