package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/intake"
	"github.com/ashureev/draft-studio/internal/preview"
	"github.com/spf13/cobra"
)

var (
	prompt      string
	attachments []string
	outPath     string
	draftPath   string
	chromeBin   string
	message     string
)

var createCmd = &cobra.Command{
	Use:     "create",
	Short:   "Draft a complete complaint from a prompt and attachments",
	Example: `  drafter create --prompt "피고소인이 돈을 빌리고 갚지 않았습니다" --file contract.pdf --out draft.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := intake.Collect(attachments)
		if err != nil {
			return err
		}
		draft, err := newClient().Create(cmd.Context(), prompt, files)
		if err != nil {
			return err
		}
		return writeDraft(outPath, &draftFile{Document: draft.Document, Original: draft.Original})
	},
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <section>",
	Short: "Rewrite one section (purpose, facts or reasons) of a draft file in place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, err := domain.ParseSection(args[0])
		if err != nil {
			return err
		}
		d, err := readDraft(draftPath)
		if err != nil {
			return err
		}
		content, err := newClient().Regenerate(cmd.Context(), section, d.Document.Section(section), d.Document.Sections())
		if err != nil {
			return err
		}
		if err := d.Document.SetSection(section, content); err != nil {
			return err
		}
		out := outPath
		if out == "" {
			out = draftPath
		}
		return writeDraft(out, d)
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat <section>",
	Short: "Ask the assistant about one section of a draft file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, err := domain.ParseSection(args[0])
		if err != nil {
			return err
		}
		d, err := readDraft(draftPath)
		if err != nil {
			return err
		}
		reply, err := newClient().Chat(cmd.Context(), section, message, nil, d.Document.Sections())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
		return err
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a draft file to an A4 PDF with a local headless Chrome",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := readDraft(draftPath)
		if err != nil {
			return err
		}
		out := outPath
		if out == "" {
			out = preview.ExportFilename
		}
		res, err := exportDraft(cmd.Context(), d.Document, preview.NewRodRasterizer(chromeBin))
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, res.PDF, 0o644); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages\n", out, res.Pages)
		return err
	},
}

func exportDraft(ctx context.Context, doc *domain.DraftDocument, raster preview.Rasterizer) (*preview.Result, error) {
	renderer, err := preview.NewRenderer()
	if err != nil {
		return nil, err
	}
	exporter := preview.NewExporter(renderer, raster, nil, timeout)
	defer func() { _ = exporter.Close() }()
	return exporter.Export(ctx, doc)
}

func init() {
	createCmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Free-text description of the incident")
	createCmd.Flags().StringSliceVarP(&attachments, "file", "f", nil, "Attachment (.pdf, .docx, .xlsx, .pptx); repeatable")
	createCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the draft here (default stdout)")

	for _, c := range []*cobra.Command{regenerateCmd, chatCmd, exportCmd} {
		c.Flags().StringVarP(&draftPath, "draft", "d", "draft.json", "Draft file")
	}
	regenerateCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the updated draft here (default: overwrite --draft)")
	chatCmd.Flags().StringVarP(&message, "message", "m", "", "Question for the assistant")
	_ = chatCmd.MarkFlagRequired("message")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "PDF path (default legal_document.pdf)")
	exportCmd.Flags().StringVar(&chromeBin, "chrome", os.Getenv("CHROME_BIN"), "Chrome binary (default: auto-detect)")
}
