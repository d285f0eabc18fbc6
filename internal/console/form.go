package console

import (
	"context"
	"errors"
	"sync"

	"astro-admin-go/internal/apiclient"
	"astro-admin-go/internal/models"
	"astro-admin-go/internal/store"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Form backs a create or edit page. With an id it edits that record,
// otherwise it creates a new one.
type Form[T models.Entity] struct {
	slice   *store.Slice[T]
	banner  *Banner
	id      string
	created string
	updated string

	mu     sync.Mutex
	fields map[string]string
}

func NewCreateForm[T models.Entity](slice *store.Slice[T], banner *Banner) *Form[T] {
	return &Form[T]{slice: slice, banner: banner, created: "Created successfully", updated: "Updated successfully"}
}

func NewEditForm[T models.Entity](slice *store.Slice[T], banner *Banner, id string) *Form[T] {
	f := NewCreateForm(slice, banner)
	f.id = id
	return f
}

func (f *Form[T]) Editing() bool { return f.id != "" }

// Load fetches the record being edited so the form can be prefilled.
func (f *Form[T]) Load(ctx context.Context) (T, error) {
	record, err := f.slice.Get(ctx, f.id)
	if err != nil && !store.IsAborted(err) {
		f.flashError(err)
	}
	return record, err
}

// Submit validates payload and only dispatches when it is valid; field
// messages are kept for display either way.
func (f *Form[T]) Submit(ctx context.Context, payload T) (T, error) {
	var zero T
	if err := f.check(payload); err != nil {
		return zero, err
	}
	var (
		record T
		err    error
	)
	if f.Editing() {
		record, err = f.slice.Update(ctx, f.id, payload)
	} else {
		record, err = f.slice.Create(ctx, payload)
	}
	if err != nil {
		if !store.IsAborted(err) {
			f.flashError(err)
		}
		return zero, err
	}
	if f.banner != nil {
		if f.Editing() {
			f.banner.Success(f.updated)
		} else {
			f.banner.Success(f.created)
		}
	}
	return record, nil
}

// FieldErrors maps field names to the message of the last failed check.
func (f *Form[T]) FieldErrors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.fields))
	for k, v := range f.fields {
		out[k] = v
	}
	return out
}

func (f *Form[T]) check(payload T) error {
	fields := map[string]string{}
	var err error
	if v, ok := any(payload).(validation.Validatable); ok {
		err = v.Validate()
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			for name, fieldErr := range verrs {
				fields[name] = fieldErr.Error()
			}
		}
	}
	f.mu.Lock()
	f.fields = fields
	f.mu.Unlock()
	return err
}

func (f *Form[T]) flashError(err error) {
	if f.banner != nil {
		f.banner.Error(apiclient.Message(err))
	}
}
