package console

import (
	"context"
	"errors"
	"sync"

	"astro-admin-go/internal/apiclient"
)

var ErrDialogClosed = errors.New("console: delete dialog is not open")

// Deleter removes a record by id; *store.Slice implements it.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// DeleteDialog is the confirmation step in front of a delete. Confirming
// deletes the record and navigates to the list route.
type DeleteDialog struct {
	deleter Deleter
	nav     Navigator
	route   string
	banner  *Banner

	mu     sync.Mutex
	open   bool
	target string
}

func NewDeleteDialog(deleter Deleter, nav Navigator, listRoute string, banner *Banner) *DeleteDialog {
	return &DeleteDialog{deleter: deleter, nav: nav, route: listRoute, banner: banner}
}

func (d *DeleteDialog) Open(id string) {
	d.mu.Lock()
	d.open = true
	d.target = id
	d.mu.Unlock()
}

func (d *DeleteDialog) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *DeleteDialog) Target() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target
}

// Cancel closes the dialog without touching any state.
func (d *DeleteDialog) Cancel() {
	d.mu.Lock()
	d.open = false
	d.target = ""
	d.mu.Unlock()
}

// Confirm deletes the target. On failure the dialog stays open so the user
// can retry or cancel.
func (d *DeleteDialog) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return ErrDialogClosed
	}
	id := d.target
	d.mu.Unlock()

	if err := d.deleter.Delete(ctx, id); err != nil {
		if d.banner != nil {
			d.banner.Error(apiclient.Message(err))
		}
		return err
	}
	d.Cancel()
	if d.banner != nil {
		d.banner.Success("Deleted successfully")
	}
	if d.nav != nil {
		d.nav.Navigate(d.route)
	}
	return nil
}
