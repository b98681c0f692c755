package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/a3tai/mcp-pdf-filler/internal/forms"
	"github.com/a3tai/mcp-pdf-filler/internal/pdf"
)

var (
	templateDir  = flag.String("dir", ".", "Directory containing the template PDF files")
	language     = flag.String("lang", "", "Language edition of bilingual documents: fr, nl")
	outputFormat = flag.String("format", "text", "Output format: text, json")
	outputFile   = flag.String("o", "", "Also write the filled document to this file")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: document id required\n\n")
		printUsage()
		os.Exit(1)
	}

	store, err := pdf.NewDirectoryStore(*templateDir, 100*1024*1024)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	svc, err := pdf.NewService(store, forms.Default(), pdf.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result, err := calibrate(svc, flag.Arg(0), *language)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calibrating %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	if *outputFile != "" {
		filled, err := svc.Generate(pdf.GenerateRequest{Document: result.Document, Values: result.values, Language: *language})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error filling %s: %v\n", result.Document, err)
			os.Exit(1)
		}
		if err := os.WriteFile(*outputFile, filled.Data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *outputFile, err)
			os.Exit(1)
		}
	}

	if err := outputResults(os.Stdout, result, *outputFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("PDF Calibrate - show where every field of a document is drawn")
	fmt.Println()
	fmt.Println("Each field is filled with its own key, the overlay is rendered and read back,")
	fmt.Println("and every text run is printed with its position in PDF points (origin bottom left).")
	fmt.Println("Compare the positions with the template to re-measure coordinates.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -dir       Template directory (default: current directory)")
	fmt.Println("  -lang      Language edition of bilingual documents: fr, nl")
	fmt.Println("  -format    Output format: text (default), json")
	fmt.Println("  -o         Also write the filled document to a file")
	fmt.Println("  -help      Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  pdf_calibrate -dir templates employer")
	fmt.Println("  pdf_calibrate -dir templates -lang nl -o seppt.pdf seppt")
	fmt.Println("  pdf_calibrate -format json procuration")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  pdf_calibrate [OPTIONS] <document>")
}

// CalibrationResult lists the runs of a rendered overlay
type CalibrationResult struct {
	Document string         `json:"document"`
	Language forms.Language `json:"language"`
	Template string         `json:"template"`
	Pages    []PageSize     `json:"pages"`
	Runs     []pdf.TextRun  `json:"runs"`

	values forms.Values
}

// PageSize is the size of one template page in points
type PageSize struct {
	Page   int     `json:"page"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Fields int     `json:"fields"`
}

// calibrate renders document with every key filled by its own name and
// reads the overlay back.
func calibrate(svc *pdf.Service, document, lang string) (*CalibrationResult, error) {
	tpl, err := svc.Template(document)
	if err != nil {
		return nil, err
	}

	values := calibrationValues(tpl)
	overlay, err := svc.RenderOverlay(pdf.GenerateRequest{Document: document, Values: values, Language: lang})
	if err != nil {
		return nil, err
	}

	runs, err := pdf.ReadTextRuns(overlay.Data)
	if err != nil {
		return nil, fmt.Errorf("reading overlay back: %w", err)
	}

	result := &CalibrationResult{
		Document: overlay.Document,
		Language: overlay.Language,
		Template: overlay.Template,
		Runs:     runs,
		values:   values,
	}
	for i, p := range overlay.Pages {
		result.Pages = append(result.Pages, PageSize{Page: i + 1, Width: p.Width, Height: p.Height, Fields: len(p.Placements)})
	}
	return result, nil
}

// calibrationValues fills every field with its key and every group with
// its first option.
func calibrationValues(tpl *forms.Template) forms.Values {
	values := make(forms.Values)
	for _, layout := range tpl.Pages {
		for _, f := range layout.Fields {
			values[f.Key] = forms.Text(f.Key)
		}
		for _, g := range layout.Groups {
			options := make([]string, 0, len(g.Options))
			for o := range g.Options {
				options = append(options, o)
			}
			sort.Strings(options)
			if len(options) > 0 {
				values[g.Key] = forms.Text(options[0])
			}
		}
	}
	return values
}

func outputResults(w io.Writer, result *CalibrationResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "text":
		fmt.Fprintf(w, "%s (%s): %s\n", result.Document, result.Language, result.Template)
		for _, p := range result.Pages {
			fmt.Fprintf(w, "\nPage %d (%.2f x %.2f pt, %d field(s))\n", p.Page, p.Width, p.Height, p.Fields)
			for _, r := range result.Runs {
				if r.Page != p.Page {
					continue
				}
				fmt.Fprintf(w, "  %8.2f %8.2f  %5.1f  %s\n", r.X, r.Y, r.FontSize, r.Text)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (text, json)", format)
	}
}
