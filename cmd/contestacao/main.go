package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"contestacao-backend/config"
	"contestacao-backend/extractor"
	"contestacao-backend/llm"
	"contestacao-backend/logging"
	"contestacao-backend/models"
	"contestacao-backend/parser"
	"contestacao-backend/render"
	"contestacao-backend/service"
	"contestacao-backend/storage"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		flush    = func() {}
	)

	rootCmd := &cobra.Command{
		Use:   "contestacao",
		Short: "Generate contestations from a petition and a template",
		Long: `contestacao drafts a contestation from an initial petition and a
contestation template, both in PDF, using a language model.

It can also work offline on a saved model response:
  - parse it into case data and sections
  - render it as a Word or plain text document`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.Load()
			undo, err := logging.Install(logLevel, "console")
			if err != nil {
				return err
			}
			flush = undo
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			flush()
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(processCmd())

	return rootCmd
}

// readInput reads a file, or stdin when path is "-"
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <response.txt>",
		Short: "Split a saved model response into case data and sections",
		Long: `Parse a raw model response and print its JSON case data, the
contestation text and the section tree.

Example:
  contestacao parse resposta.txt
  cat resposta.txt | contestacao parse -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			data, contestation := parser.ExtractResponse(raw)
			return writeJSON(cmd.OutOrStdout(), struct {
				Data         map[string]interface{} `json:"data"`
				Contestation string                 `json:"contestacao"`
				Sections     []models.Section       `json:"secoes"`
			}{
				Data:         data.Raw,
				Contestation: contestation,
				Sections:     parser.BuildSections(contestation),
			})
		},
	}
}

// metadataFlags are the document fields that can be overridden on the command line
type metadataFlags struct {
	forum, district, processNumber string
	plaintiff, defendant           string
	lawyerName, lawyerState        string
	lawyerNumber                   string
}

func (f *metadataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.forum, "foro", "", "Forum name")
	cmd.Flags().StringVar(&f.district, "comarca", "", "District (comarca)")
	cmd.Flags().StringVar(&f.processNumber, "numero", "", "Process number")
	cmd.Flags().StringVar(&f.plaintiff, "autor", "", "Plaintiff name")
	cmd.Flags().StringVar(&f.defendant, "reu", "", "Defendant name")
	cmd.Flags().StringVar(&f.lawyerName, "advogado", "", "Signing lawyer")
	cmd.Flags().StringVar(&f.lawyerState, "oab-estado", "", "Lawyer bar state")
	cmd.Flags().StringVar(&f.lawyerNumber, "oab-numero", "", "Lawyer bar number")
}

func (f *metadataFlags) apply(m models.RenderModel) models.RenderModel {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&m.Forum, f.forum)
	set(&m.District, f.district)
	set(&m.ProcessNumber, f.processNumber)
	set(&m.PlaintiffName, f.plaintiff)
	set(&m.DefendantName, f.defendant)
	set(&m.LawyerName, f.lawyerName)
	set(&m.LawyerState, f.lawyerState)
	set(&m.LawyerNumber, f.lawyerNumber)
	return m
}

func offlineService() *service.ContestationService {
	cfg, _ := config.Load()
	renderCfg := render.DefaultConfig()
	renderCfg.Letterhead = cfg.Letterhead
	return service.NewContestationService(
		service.WithRenderer(render.NewRenderer(renderCfg)),
		service.WithMinLength(cfg.MinContestationLength),
		service.WithLawyer(cfg.Lawyer),
		service.WithDefaultComarca(cfg.DefaultComarca),
	)
}

func renderCmd() *cobra.Command {
	var (
		meta   metadataFlags
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "render <response.txt>",
		Short: "Render a saved model response as a document",
		Long: `Render a raw model response as a Word (docx) or plain text (txt)
contestation. Metadata defaults come from the case data and the configured
lawyer; flags override them.

Example:
  contestacao render resposta.txt --format docx --out contestacao.docx
  contestacao render resposta.txt --format txt --numero 1000123-45.2024.8.26.0100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			svc := offlineService()
			view, err := svc.Analyze(raw)
			if err != nil {
				return err
			}

			data, err := svc.Render(meta.apply(view.Document), f)
			if err != nil {
				return err
			}

			if out == "-" {
				_, err = io.Copy(cmd.OutOrStdout(), bytes.NewReader(data))
				return err
			}
			if out == "" {
				out = render.Filename(f, time.Now())
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "docx", "Output format (docx, txt)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout (default contestacao_<timestamp>.<ext>)")
	meta.register(cmd)
	return cmd
}

func processCmd() *cobra.Command {
	var printRaw bool

	cmd := &cobra.Command{
		Use:   "process <peticao.pdf> <modelo.pdf>",
		Short: "Run the full pipeline on two PDFs",
		Long: `Extract the text of a petition and a contestation template, send both
to the configured language model and store the raw response.

The provider and store are selected by LLM_PROVIDER and STORAGE_TYPE.

Example:
  contestacao process peticao.pdf modelo.pdf
  contestacao process peticao.pdf modelo.pdf --print > resposta.txt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, _ := config.Load()

			petition, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			template, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}

			model := cfg.GeminiModel
			if llm.Provider(cfg.LLMProvider) == llm.ProviderOllama {
				model = cfg.OllamaModel
			}
			generator, err := llm.NewGenerator(ctx, llm.Config{
				Provider:  llm.Provider(cfg.LLMProvider),
				Model:     model,
				APIKey:    cfg.GeminiAPIKey,
				ProjectID: cfg.GCPProjectID,
				Region:    cfg.VertexAIRegion,
			})
			if err != nil {
				return err
			}

			store, err := storage.NewStorageFromEnv(ctx)
			if err != nil {
				return err
			}

			svc := service.NewContestationService(
				service.WithExtractor(extractor.NewPDFExtractor()),
				service.WithGenerator(generator),
				service.WithResultStore(store),
			)
			result, err := svc.Process(ctx, service.ProcessRequest{
				PetitionPDF:      petition,
				PetitionFilename: args[0],
				TemplatePDF:      template,
				TemplateFilename: args[1],
			})
			if err != nil {
				return err
			}

			if printRaw {
				fmt.Fprint(cmd.OutOrStdout(), result.Raw)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored result %s\n", result.ResultID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&printRaw, "print", false, "Print the raw model response instead of the result id")
	return cmd
}
