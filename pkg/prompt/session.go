package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/validation"
)

// maxRounds bounds how often a session re-prompts invalid answers before
// giving up and returning the violations as they stand.
const maxRounds = 3

// Session drives a terminal fill of a published form. Prompts follow the
// same field resolution the HTML renderer uses, so labels, options and
// ordering match what a browser user would see.
type Session struct {
	renderer  *render.Renderer
	validator *validation.Engine
	driver    Driver
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDriver swaps the terminal driver, used by tests.
func WithDriver(driver Driver) SessionOption {
	return func(s *Session) { s.driver = driver }
}

// NewSession constructs a Session with the interactive survey driver.
func NewSession(renderer *render.Renderer, opts ...SessionOption) *Session {
	s := &Session{
		renderer:  renderer,
		validator: validation.New(),
		driver:    NewSurveyDriver(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fill prompts for every field of the form and returns the collected values
// together with the final validation result. Invalid answers are re-prompted
// for a bounded number of rounds; the caller inspects the result before
// submitting.
func (s *Session) Fill(ctx context.Context, in render.Input) (map[string]any, *validation.Result, error) {
	fields, err := s.renderer.Fields(in)
	if err != nil {
		return nil, nil, err
	}

	values := make(map[string]any, len(fields))
	for k, v := range in.Values {
		values[k] = v
	}

	retry := make(map[string]bool, len(fields))
	for _, field := range fields {
		retry[field.Name] = true
	}

	var result *validation.Result
	for round := 0; round < maxRounds; round++ {
		for _, field := range fields {
			if !retry[field.Name] {
				continue
			}
			if err := s.promptField(ctx, field, values); err != nil {
				return nil, nil, err
			}
		}

		result = s.validator.Validate(values, in.Definition.Schema)
		if result.Valid() {
			return values, result, nil
		}

		violations := result.FieldErrors()
		retry = make(map[string]bool, len(violations))
		for _, field := range fields {
			messages, ok := violations[field.Name]
			if !ok {
				continue
			}
			retry[field.Name] = true
			if err := s.driver.Info(ctx, field.Label+": "+strings.Join(messages, "; ")); err != nil {
				return nil, nil, err
			}
		}
		if len(retry) == 0 {
			// only global violations remain, re-prompting cannot fix them
			break
		}
	}
	return values, result, nil
}

func (s *Session) promptField(ctx context.Context, field render.Field, values map[string]any) error {
	switch field.Kind {
	case render.KindToggle:
		answer, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: field.Label,
			Default: isTruthy(field.Value),
			Help:    field.Help,
		})
		if err != nil {
			return err
		}
		values[field.Name] = answer
	case render.KindSelect, render.KindRadio:
		return s.promptChoice(ctx, field, values)
	case render.KindCheckbox:
		return s.promptMultiChoice(ctx, field, values)
	case render.KindTextarea:
		answer, err := s.driver.TextArea(ctx, TextAreaConfig{
			Message: field.Label,
			Default: toText(field.Value),
			Help:    field.Help,
		})
		if err != nil {
			return err
		}
		setText(values, field.Name, answer)
	case render.KindSignature:
		// strokes cannot be captured on a terminal, leave for the browser flow
		return s.driver.Info(ctx, field.Label+": signature capture is skipped in terminal sessions")
	default:
		answer, err := s.driver.Input(ctx, InputConfig{
			Message:   promptMessage(field),
			Default:   toText(field.Value),
			Help:      field.Help,
			Validator: requiredValidator(field),
		})
		if err != nil {
			return err
		}
		setText(values, field.Name, answer)
	}
	return nil
}

func (s *Session) promptChoice(ctx context.Context, field render.Field, values map[string]any) error {
	if len(field.Options) == 0 {
		return fmt.Errorf("prompt: field %q declares no options", field.Name)
	}
	labels := make([]string, len(field.Options))
	defaultIndex := -1
	for i, opt := range field.Options {
		labels[i] = opt.Label
		if field.Value != nil && toText(opt.Value) == toText(field.Value) {
			defaultIndex = i
		}
	}
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      field.Label,
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         field.Help,
	})
	if err != nil {
		return err
	}
	if idx >= 0 && idx < len(field.Options) {
		values[field.Name] = field.Options[idx].Value
	}
	return nil
}

func (s *Session) promptMultiChoice(ctx context.Context, field render.Field, values map[string]any) error {
	if len(field.Options) == 0 {
		return fmt.Errorf("prompt: field %q declares no options", field.Name)
	}
	labels := make([]string, len(field.Options))
	for i, opt := range field.Options {
		labels[i] = opt.Label
	}
	var defaults []int
	if selected, ok := field.Value.([]any); ok {
		for i, opt := range field.Options {
			for _, value := range selected {
				if toText(opt.Value) == toText(value) {
					defaults = append(defaults, i)
				}
			}
		}
	}
	indices, err := s.driver.MultiSelect(ctx, SelectConfig{
		Message:  field.Label,
		Options:  labels,
		Defaults: defaults,
		Help:     field.Help,
	})
	if err != nil {
		return err
	}
	selected := make([]any, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(field.Options) {
			selected = append(selected, field.Options[idx].Value)
		}
	}
	values[field.Name] = selected
	return nil
}

func promptMessage(field render.Field) string {
	if field.Placeholder != "" {
		return field.Label + " (" + field.Placeholder + ")"
	}
	return field.Label
}

func requiredValidator(field render.Field) func(string) error {
	if !field.Required {
		return nil
	}
	return func(answer string) error {
		if strings.TrimSpace(answer) == "" {
			return fmt.Errorf("%s is required", field.Label)
		}
		return nil
	}
}

// setText stores an answer, dropping blanks so required checks see absence
// rather than an empty string the coercion layer would have to special-case.
func setText(values map[string]any, name, answer string) {
	if strings.TrimSpace(answer) == "" {
		delete(values, name)
		return
	}
	values[name] = answer
}

func toText(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func isTruthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes", "ja":
			return true
		}
	}
	return false
}
