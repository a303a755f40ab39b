package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/openapi"
	"github.com/goliatone/go-intake/pkg/prompt"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/validation"
)

const usage = `usage: intake-cli <command> [flags]

commands:
  render     render a form definition to a standalone HTML preview
  validate   check a values document against a form definition
  fill       fill a form interactively on the terminal
  import     derive a form definition draft from an OpenAPI operation
`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	var err error
	switch os.Args[1] {
	case "render":
		err = runRender(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "fill":
		err = runFill(ctx, os.Args[2:])
	case "import":
		err = runImport(ctx, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("intake-cli: %v", err)
	}
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	definition := fs.String("definition", "", "form definition file")
	lang := fs.String("lang", "en", "translation language")
	themePath := fs.String("theme", "", "theme manifest file (optional)")
	variant := fs.String("variant", "", "theme variant (optional)")
	output := fs.String("output", "", "output file (stdout if empty)")
	fs.Parse(args)

	def, bundles, err := loadDefinition(*definition)
	if err != nil {
		return err
	}
	language, err := i18n.ParseLanguage(*lang)
	if err != nil {
		return err
	}

	var opts []render.PreviewOption
	if *themePath != "" {
		manifest, err := loadManifest(*themePath)
		if err != nil {
			return err
		}
		opts = append(opts, render.WithTheme(&render.StaticSelector{Manifest: manifest}, manifest.Name, *variant))
	}
	preview, err := render.NewPreview(render.New(render.WithRegistry(fieldtypes.NewRegistry())), opts...)
	if err != nil {
		return err
	}

	doc, err := preview.Document(render.Input{
		Definition: def,
		Language:   language,
		Bundle:     bundles[language],
	})
	if err != nil {
		return err
	}
	return writeOutput(*output, []byte(doc))
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	definition := fs.String("definition", "", "form definition file")
	valuesPath := fs.String("values", "", "values document (JSON object)")
	fs.Parse(args)

	def, _, err := loadDefinition(*definition)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(*valuesPath)
	if err != nil {
		return err
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("parse values: %w", err)
	}

	result := validation.New().Validate(values, def.Schema)
	if result.Valid() {
		fmt.Println("ok")
		return nil
	}
	for _, violation := range result.AllErrors() {
		fmt.Println(violation)
	}
	os.Exit(1)
	return nil
}

func runFill(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fill", flag.ExitOnError)
	definition := fs.String("definition", "", "form definition file")
	lang := fs.String("lang", "en", "translation language")
	output := fs.String("output", "", "output file (stdout if empty)")
	fs.Parse(args)

	def, bundles, err := loadDefinition(*definition)
	if err != nil {
		return err
	}
	language, err := i18n.ParseLanguage(*lang)
	if err != nil {
		return err
	}

	session := prompt.NewSession(render.New(render.WithRegistry(fieldtypes.NewRegistry())))
	values, result, err := session.Fill(ctx, render.Input{
		Definition: def,
		Language:   language,
		Bundle:     bundles[language],
	})
	if err != nil {
		return err
	}
	if !result.Valid() {
		for _, violation := range result.AllErrors() {
			fmt.Fprintln(os.Stderr, violation)
		}
		return fmt.Errorf("session ended with unresolved violations")
	}

	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(*output, append(payload, '\n'))
}

func runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	source := fs.String("openapi", "", "OpenAPI document file")
	operation := fs.String("operation", "", "operation id to import")
	category := fs.String("category", "CUSTOM", "category for the drafted definition")
	output := fs.String("output", "", "output file (stdout if empty)")
	fs.Parse(args)

	raw, err := os.ReadFile(*source)
	if err != nil {
		return err
	}
	importer := openapi.NewImporter(fieldtypes.NewRegistry())

	var draft openapi.Draft
	if *operation != "" {
		draft, err = importer.Draft(ctx, raw, *operation)
	} else {
		var drafts []openapi.Draft
		drafts, err = importer.Drafts(ctx, raw)
		if err == nil {
			if len(drafts) > 1 {
				for _, candidate := range drafts {
					fmt.Fprintf(os.Stderr, "found operation %s (%s %s)\n", candidate.OperationID, candidate.Method, candidate.Path)
				}
				return fmt.Errorf("multiple operations found, pick one with -operation")
			}
			draft = drafts[0]
		}
	}
	if err != nil {
		return err
	}

	file := forms.DefinitionFile{
		Name:     draft.Name,
		Category: string(forms.ParseCategory(*category)),
		Schema:   draft.Schema.Raw(),
		Mappings: draft.Mappings,
	}
	payload, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(*output, append(payload, '\n'))
}

func loadDefinition(path string) (*forms.FormDefinition, map[i18n.Language]i18n.Bundle, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("-definition is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	file, err := forms.ParseDefinitionFile(raw)
	if err != nil {
		return nil, nil, err
	}
	in, err := file.CreateInput()
	if err != nil {
		return nil, nil, err
	}
	bundles, err := file.Bundles()
	if err != nil {
		return nil, nil, err
	}
	def := &forms.FormDefinition{
		Name:     in.Name,
		Category: in.Category,
		Schema:   in.Schema,
		Layout:   in.Layout,
		Mappings: in.Mappings,
	}
	return def, bundles, nil
}

func loadManifest(path string) (*theme.Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifest theme.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parse theme manifest: %w", err)
	}
	return &manifest, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("written to %s\n", path)
	return nil
}
