// Command rawdoc inspects and renders raw report files the way the viewer does.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"dartview/internal/pkg/rawdoc"

	"github.com/spf13/cobra"
)

const excerptLen = 160

type inspection struct {
	File     string              `json:"file"`
	Size     int                 `json:"size"`
	Encoding rawdoc.Encoding     `json:"encoding"`
	Declared string              `json:"declared_charset,omitempty"`
	Kind     string              `json:"kind"`
	Title    string              `json:"title,omitempty"`
	DART     *rawdoc.DARTSummary `json:"dart,omitempty"`
	Excerpt  string              `json:"excerpt"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rawdoc",
		Short:         "Inspect and render raw disclosure documents",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newInspectCmd(), newRenderCmd())
	return root
}

func newInspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Print encoding, kind, title and an excerpt of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				info, err := inspect(path)
				if err != nil {
					return err
				}
				if asJSON {
					if err := writeJSON(out, info); err != nil {
						return err
					}
					continue
				}
				printInspection(out, info)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per file")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		output    string
		query     string
		noOverlay bool
	)

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Write the viewer HTML of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			doc, err := rawdoc.Render(raw, rawdoc.RenderOptions{Query: query, Overlay: !noOverlay})
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(doc.HTML)
				return err
			}
			if err := os.WriteFile(output, doc.HTML, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s %s -> %s\n", args[0], doc.Encoding, doc.Kind, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout")
	cmd.Flags().StringVar(&query, "query", "", "Pre-fill the search overlay")
	cmd.Flags().BoolVar(&noOverlay, "no-overlay", false, "Leave out the search overlay")
	return cmd
}

func inspect(path string) (*inspection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	text, enc, err := rawdoc.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	kind := rawdoc.Classify(text)

	info := &inspection{
		File:     path,
		Size:     len(raw),
		Encoding: enc,
		Declared: rawdoc.DeclaredCharset(raw),
		Kind:     kind.String(),
		Excerpt:  rawdoc.Excerpt(text, kind, excerptLen),
	}

	if kind == rawdoc.KindXML && rawdoc.IsDART(text) {
		summary, err := rawdoc.SummarizeDART(text)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", path, err)
		}
		info.DART = summary
		info.Title = summary.DocumentName
	} else if kind != rawdoc.KindText {
		doc, err := rawdoc.Render(raw, rawdoc.RenderOptions{})
		if err != nil {
			return nil, err
		}
		info.Title = doc.Title
	}

	return info, nil
}

func printInspection(w io.Writer, info *inspection) {
	fmt.Fprintf(w, "%s\n", info.File)
	fmt.Fprintf(w, "  size:     %d\n", info.Size)
	fmt.Fprintf(w, "  encoding: %s", info.Encoding)
	if info.Declared != "" {
		fmt.Fprintf(w, " (declared %s)", info.Declared)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  kind:     %s\n", info.Kind)
	if info.Title != "" {
		fmt.Fprintf(w, "  title:    %s\n", info.Title)
	}
	if info.DART != nil {
		fmt.Fprintf(w, "  company:  %s %s\n", info.DART.CompanyName, info.DART.CompanyCode)
		fmt.Fprintf(w, "  tables:   %d, paragraphs: %d\n", info.DART.Tables, info.DART.Paragraphs)
	}
	fmt.Fprintf(w, "  excerpt:  %s\n", info.Excerpt)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
