package forms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/schema"
)

var testSchema = schema.MustParse([]byte(`{
	"type": "object",
	"required": ["firstName", "lastName", "birthDate"],
	"properties": {
		"firstName": {"type": "string"},
		"lastName": {"type": "string"},
		"birthDate": {"type": "string", "format": "date"}
	}
}`))

var fullMappings = map[string]string{
	"firstName": "FIRST_NAME",
	"lastName":  "LAST_NAME",
	"birthDate": "BIRTH_DATE",
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	return NewService(
		NewMemoryRepository(),
		NewMemoryTranslationRepository(),
		fieldtypes.NewRegistry(),
		WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
	)
}

func TestCreateDraftClearsPreviousDefault(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateDraft(ctx, CreateInput{
		Name: "Anamnesis v1", Category: CategoryAnamnesis, Schema: testSchema, Default: true,
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	second, err := svc.CreateDraft(ctx, CreateInput{
		Name: "Anamnesis v2", Category: CategoryAnamnesis, Schema: testSchema, Default: true,
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	got, err := svc.DefaultForCategory(ctx, CategoryAnamnesis)
	if err != nil {
		t.Fatalf("DefaultForCategory: %v", err)
	}
	if got.ID != second.ID {
		t.Fatalf("default = %s, want %s", got.ID, second.ID)
	}
	reloaded, _ := svc.ByID(ctx, first.ID)
	if reloaded.Default {
		t.Fatal("first definition should have lost its default flag")
	}
}

func TestPublishRequiresMappedFieldTypes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	def, err := svc.CreateDraft(ctx, CreateInput{
		Name:     "Incomplete",
		Category: CategoryAnamnesis,
		Schema:   testSchema,
		Mappings: map[string]string{"firstName": "FIRST_NAME"},
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	_, err = svc.Publish(ctx, def.ID, "dr.smith", false)
	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("Publish error = %v, want PublishError", err)
	}
	if len(pubErr.Missing) != 2 {
		t.Fatalf("missing = %v, want LAST_NAME and BIRTH_DATE", pubErr.Missing)
	}

	reloaded, _ := svc.ByID(ctx, def.ID)
	if reloaded.Status != StatusDraft {
		t.Fatalf("status = %s after failed publish, want DRAFT", reloaded.Status)
	}
}

func TestPublishAndActivateLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	old, _ := svc.CreateDraft(ctx, CreateInput{
		Name: "Old", Category: CategoryAnamnesis, Schema: testSchema, Mappings: fullMappings,
	})
	if _, err := svc.Publish(ctx, old.ID, "dr.smith", true); err != nil {
		t.Fatalf("Publish old: %v", err)
	}

	next, _ := svc.CreateDraft(ctx, CreateInput{
		Name: "Next", Category: CategoryAnamnesis, Schema: testSchema, Mappings: fullMappings,
	})
	published, err := svc.Publish(ctx, next.ID, "dr.jones", true)
	if err != nil {
		t.Fatalf("Publish next: %v", err)
	}
	if !published.Active || published.Status != StatusPublished {
		t.Fatalf("published = %+v, want active PUBLISHED", published)
	}
	if published.PublishedAt == nil || published.PublishedBy != "dr.jones" {
		t.Fatalf("publish metadata missing: %+v", published)
	}

	reloaded, _ := svc.ByID(ctx, old.ID)
	if reloaded.Active {
		t.Fatal("previous definition should have been deactivated")
	}

	active, err := svc.ActiveForCategory(ctx, CategoryAnamnesis)
	if err != nil {
		t.Fatalf("ActiveForCategory: %v", err)
	}
	if active.ID != next.ID {
		t.Fatalf("active = %s, want %s", active.ID, next.ID)
	}
}

func TestActiveForCategoryPrefersNewestPublish(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, _ := svc.CreateDraft(ctx, CreateInput{
		Name: "First", Category: CategoryAnamnesis, Schema: testSchema, Mappings: fullMappings,
	})
	second, _ := svc.CreateDraft(ctx, CreateInput{
		Name: "Second", Category: CategoryAnamnesis, Schema: testSchema, Mappings: fullMappings,
	})

	// The later-created definition is published first, then both end up
	// active at once.
	if _, err := svc.Publish(ctx, second.ID, "admin", true); err != nil {
		t.Fatalf("Publish second: %v", err)
	}
	if _, err := svc.Publish(ctx, first.ID, "admin", false); err != nil {
		t.Fatalf("Publish first: %v", err)
	}
	if _, err := svc.Activate(ctx, first.ID, false); err != nil {
		t.Fatalf("Activate first: %v", err)
	}

	active, err := svc.ActiveForCategory(ctx, CategoryAnamnesis)
	if err != nil {
		t.Fatalf("ActiveForCategory: %v", err)
	}
	if active.ID != first.ID {
		t.Fatalf("active = %s, want the most recently published %s", active.ID, first.ID)
	}
}

func TestPublishedDefinitionsAreImmutable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	def, _ := svc.CreateDraft(ctx, CreateInput{
		Name: "Frozen", Category: CategoryConsent, Schema: testSchema, Mappings: fullMappings,
	})
	if _, err := svc.Publish(ctx, def.ID, "admin", false); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var stateErr *StateError
	if _, err := svc.UpdateDraft(ctx, def.ID, UpdateInput{Name: "Changed"}); !errors.As(err, &stateErr) {
		t.Fatalf("UpdateDraft error = %v, want StateError", err)
	}
	if err := svc.DeleteDraft(ctx, def.ID); !errors.As(err, &stateErr) {
		t.Fatalf("DeleteDraft error = %v, want StateError", err)
	}
}

func TestArchiveClearsActivation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	def, _ := svc.CreateDraft(ctx, CreateInput{
		Name: "Retiring", Category: CategoryAnamnesis, Schema: testSchema, Mappings: fullMappings, Default: true,
	})
	if _, err := svc.Publish(ctx, def.ID, "admin", true); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	archived, err := svc.Archive(ctx, def.ID)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if archived.Active || archived.Default || archived.Status != StatusArchived {
		t.Fatalf("archived = %+v, want inactive non-default ARCHIVED", archived)
	}
	if _, err := svc.ActiveForCategory(ctx, CategoryAnamnesis); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ActiveForCategory error = %v, want ErrNotFound", err)
	}
}

func TestArchiveWorksFromAnyStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, CreateInput{
		Name: "Abandoned draft", Category: CategoryConsent, Schema: testSchema, Default: true,
	})
	archived, err := svc.Archive(ctx, draft.ID)
	if err != nil {
		t.Fatalf("Archive draft: %v", err)
	}
	if archived.Status != StatusArchived || archived.Active || archived.Default {
		t.Fatalf("archived draft = %+v, want inactive non-default ARCHIVED", archived)
	}

	again, err := svc.Archive(ctx, draft.ID)
	if err != nil {
		t.Fatalf("Archive archived: %v", err)
	}
	if again.Status != StatusArchived {
		t.Fatalf("status = %s, want ARCHIVED", again.Status)
	}
}

func TestNewDraftVersionCopiesContentAndTranslations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	def, _ := svc.CreateDraft(ctx, CreateInput{
		Name: "Versioned", Category: CategoryAnamnesis, Schema: testSchema, Mappings: fullMappings,
	})
	if _, err := svc.AddTranslation(ctx, def.ID, i18n.German, i18n.Bundle{
		Fields: map[string]string{"firstName": "Vorname"},
	}); err != nil {
		t.Fatalf("AddTranslation: %v", err)
	}
	if _, err := svc.Publish(ctx, def.ID, "admin", false); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	next, err := svc.NewDraftVersion(ctx, def.ID)
	if err != nil {
		t.Fatalf("NewDraftVersion: %v", err)
	}
	if next.Version != 2 || next.Status != StatusDraft || next.ID == def.ID {
		t.Fatalf("next = %+v, want fresh version-2 draft", next)
	}
	tr, err := svc.TranslationFor(ctx, next.ID, i18n.German)
	if err != nil {
		t.Fatalf("TranslationFor: %v", err)
	}
	if tr.Bundle.FieldLabel("firstName") != "Vorname" {
		t.Fatal("translation should carry over to the new version")
	}
}

func TestDuplicateTranslationIsConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	def, _ := svc.CreateDraft(ctx, CreateInput{
		Name: "Translated", Category: CategoryAnamnesis, Schema: testSchema,
	})
	if _, err := svc.AddTranslation(ctx, def.ID, i18n.German, i18n.Bundle{}); err != nil {
		t.Fatalf("AddTranslation: %v", err)
	}

	var conflict *ConflictError
	if _, err := svc.AddTranslation(ctx, def.ID, i18n.German, i18n.Bundle{}); !errors.As(err, &conflict) {
		t.Fatalf("second AddTranslation error = %v, want ConflictError", err)
	}
	if _, err := svc.AddTranslation(ctx, def.ID, i18n.Language("xx"), i18n.Bundle{}); err == nil {
		t.Fatal("unsupported language should be rejected")
	}
}

func TestTranslationBundlesAreSanitized(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	def, _ := svc.CreateDraft(ctx, CreateInput{
		Name: "Sanitized", Category: CategoryAnamnesis, Schema: testSchema,
	})
	tr, err := svc.AddTranslation(ctx, def.ID, i18n.English, i18n.Bundle{
		Fields: map[string]string{"firstName": `First <script>alert("x")</script>name`},
	})
	if err != nil {
		t.Fatalf("AddTranslation: %v", err)
	}
	if got := tr.Bundle.FieldLabel("firstName"); got != "First name" {
		t.Fatalf("label = %q, want markup stripped", got)
	}
}

type txMarker struct{}

// txSpyRepo records every write that reaches the repository outside of the
// context the transaction runner established.
type txSpyRepo struct {
	Repository
	outside []string
}

func (r *txSpyRepo) record(ctx context.Context, op string) {
	if ctx.Value(txMarker{}) == nil {
		r.outside = append(r.outside, op)
	}
}

func (r *txSpyRepo) Create(ctx context.Context, def *FormDefinition) error {
	r.record(ctx, "Create")
	return r.Repository.Create(ctx, def)
}

func (r *txSpyRepo) Update(ctx context.Context, def *FormDefinition) error {
	r.record(ctx, "Update")
	return r.Repository.Update(ctx, def)
}

func (r *txSpyRepo) ClearDefault(ctx context.Context, category Category) error {
	r.record(ctx, "ClearDefault")
	return r.Repository.ClearDefault(ctx, category)
}

func (r *txSpyRepo) ClearActive(ctx context.Context, category Category) error {
	r.record(ctx, "ClearActive")
	return r.Repository.ClearActive(ctx, category)
}

func TestLifecycleWritesShareOneTransaction(t *testing.T) {
	repo := &txSpyRepo{Repository: NewMemoryRepository()}
	svc := NewService(repo, NewMemoryTranslationRepository(), fieldtypes.NewRegistry(),
		WithTxRunner(func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(context.WithValue(ctx, txMarker{}, true))
		}),
	)
	ctx := context.Background()

	def, err := svc.CreateDraft(ctx, CreateInput{
		Name: "Atomic", Category: CategoryAnamnesis, Schema: testSchema, Mappings: fullMappings, Default: true,
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if _, err := svc.Publish(ctx, def.ID, "admin", true); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := svc.SetDefault(ctx, def.ID); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if _, err := svc.Activate(ctx, def.ID, true); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if len(repo.outside) > 0 {
		t.Fatalf("writes ran outside the transaction runner: %v", repo.outside)
	}
}

func TestPublishAbortsWhenTransactionFails(t *testing.T) {
	boom := errors.New("connection lost")
	failing := false
	repo := NewMemoryRepository()
	svc := NewService(repo, NewMemoryTranslationRepository(), fieldtypes.NewRegistry(),
		WithTxRunner(func(ctx context.Context, fn func(ctx context.Context) error) error {
			if failing {
				return boom
			}
			return fn(ctx)
		}),
	)
	ctx := context.Background()

	def, err := svc.CreateDraft(ctx, CreateInput{
		Name: "Unlucky", Category: CategoryAnamnesis, Schema: testSchema, Mappings: fullMappings,
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	failing = true
	if _, err := svc.Publish(ctx, def.ID, "admin", true); !errors.Is(err, boom) {
		t.Fatalf("Publish error = %v, want transaction failure", err)
	}

	failing = false
	reloaded, _ := svc.ByID(ctx, def.ID)
	if reloaded.Status != StatusDraft || reloaded.Active {
		t.Fatalf("definition = %+v after aborted publish, want inactive DRAFT", reloaded)
	}
}
