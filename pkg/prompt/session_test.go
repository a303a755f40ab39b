package prompt

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/schema"
)

// scriptDriver replays canned answers keyed by prompt message. Repeated
// prompts for the same message consume answers in order.
type scriptDriver struct {
	inputs   map[string][]string
	confirms map[string]bool
	selects  map[string]int
	multi    map[string][]int
	infos    []string
}

func (d *scriptDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	answers := d.inputs[cfg.Message]
	if len(answers) == 0 {
		return "", nil
	}
	answer := answers[0]
	d.inputs[cfg.Message] = answers[1:]
	return answer, nil
}

func (d *scriptDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	return d.confirms[cfg.Message], nil
}

func (d *scriptDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	return d.selects[cfg.Message], nil
}

func (d *scriptDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	return d.multi[cfg.Message], nil
}

func (d *scriptDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	answers := d.inputs[cfg.Message]
	if len(answers) == 0 {
		return "", nil
	}
	answer := answers[0]
	d.inputs[cfg.Message] = answers[1:]
	return answer, nil
}

func (d *scriptDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func sessionDefinition() *forms.FormDefinition {
	return &forms.FormDefinition{
		Name: "Anamnese",
		Schema: schema.MustParse([]byte(`{
			"type": "object",
			"required": ["firstName"],
			"properties": {
				"firstName": {"type": "string", "title": "First Name", "minLength": 2},
				"gender": {"type": "string", "title": "Gender", "enum": ["male", "female"]},
				"allergies": {
					"type": "array", "title": "Allergies",
					"items": {"type": "string", "enum": ["pollen", "nuts"], "enumNames": ["Pollen", "Nuts"]}
				},
				"smoker": {"type": "boolean", "title": "Smoker"},
				"notes": {"type": "string", "title": "Notes", "format": "textarea"}
			}
		}`)),
	}
}

func TestFillCollectsTypedValues(t *testing.T) {
	driver := &scriptDriver{
		inputs:   map[string][]string{"First Name": {"Erika"}, "Notes": {"keine"}},
		selects:  map[string]int{"Gender": 1},
		multi:    map[string][]int{"Allergies": {0}},
		confirms: map[string]bool{"Smoker": true},
	}
	session := NewSession(render.New(), WithDriver(driver))

	values, result, err := session.Fill(context.Background(), render.Input{
		Definition: sessionDefinition(),
		Language:   i18n.English,
	})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("violations: %v", result.AllErrors())
	}

	want := map[string]any{
		"firstName": "Erika",
		"gender":    "female",
		"allergies": []any{"pollen"},
		"smoker":    true,
		"notes":     "keine",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestFillRepromptsInvalidAnswers(t *testing.T) {
	driver := &scriptDriver{
		inputs: map[string][]string{"First Name": {"E", "Erika"}},
	}
	session := NewSession(render.New(), WithDriver(driver))

	values, result, err := session.Fill(context.Background(), render.Input{
		Definition: sessionDefinition(),
		Language:   i18n.English,
	})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("violations after retry: %v", result.AllErrors())
	}
	if values["firstName"] != "Erika" {
		t.Fatalf("firstName = %v, want corrected answer", values["firstName"])
	}
	if len(driver.infos) == 0 {
		t.Fatal("operator should see the violation before the retry")
	}
}

func TestFillGivesUpAfterBoundedRounds(t *testing.T) {
	driver := &scriptDriver{
		inputs: map[string][]string{"First Name": {"E", "E", "E"}},
	}
	session := NewSession(render.New(), WithDriver(driver))

	_, result, err := session.Fill(context.Background(), render.Input{
		Definition: sessionDefinition(),
		Language:   i18n.English,
	})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if result.Valid() {
		t.Fatal("expected the final result to carry the violation")
	}
	if got := result.FieldErrors()["firstName"]; len(got) == 0 {
		t.Fatalf("FieldErrors = %v, want firstName violation", result.FieldErrors())
	}
}
