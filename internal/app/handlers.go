package app

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/idilsaglam/adminpanel/internal/model"
)

// Flash texts shown after successful submissions.
const (
	MsgLoginOK    = "Login successful!"
	MsgRegisterOK = "Registration successful! Please login."
	MsgItemAdded  = "Item added successfully!"
	MsgItemSaved  = "Item updated successfully!"
	MsgItemGone   = "Item deleted successfully!"
)

// ErrInvalidPrice is flashed when a price field does not parse.
var ErrInvalidPrice = errors.New("Invalid price")

// ItemForm carries raw field values from the add or edit form.
type ItemForm struct {
	ID          string
	Name        string
	Description string
	Price       string
}

func (f ItemForm) input() (model.ItemInput, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil {
		return model.ItemInput{}, ErrInvalidPrice
	}
	return model.ItemInput{Name: f.Name, Description: f.Description, Price: p}, nil
}

// Login submits credentials; on success the session is persisted by the API
// client and the dashboard is shown.
func (a *App) Login(ctx context.Context, username, password string) error {
	if _, err := a.api.Login(ctx, username, password); err != nil {
		a.flashError(PageLogin, err)
		return err
	}
	a.flash(PageLogin, KindSuccess, MsgLoginOK)
	a.Navigate(ctx, PageDashboard)
	return nil
}

// Register creates an account. The caller moves to the login page after
// RegisterRedirectDelay.
func (a *App) Register(ctx context.Context, username, password, email string) error {
	if _, err := a.api.Register(ctx, username, password, email); err != nil {
		a.flashError(PageRegister, err)
		return err
	}
	a.flash(PageRegister, KindSuccess, MsgRegisterOK)
	return nil
}

// CreateItem submits the add form and reloads the table on success.
func (a *App) CreateItem(ctx context.Context, form ItemForm) error {
	if err := a.requireAuth(); err != nil {
		a.flashError(PageItems, err)
		return err
	}
	in, err := form.input()
	if err != nil {
		a.flashError(PageItems, err)
		return err
	}
	if _, err := a.api.CreateItem(ctx, in); err != nil {
		a.flashError(PageItems, err)
		return err
	}
	a.flash(PageItems, KindSuccess, MsgItemAdded)
	a.LoadItems(ctx)
	return nil
}

// EditItem fetches an item and opens the edit form with its values.
func (a *App) EditItem(ctx context.Context, id string) error {
	if err := a.requireAuth(); err != nil {
		a.flashError(PageItems, err)
		return err
	}
	it, err := a.api.Item(ctx, id)
	if err != nil {
		a.flashError(PageItems, err)
		return err
	}
	form := ItemForm{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       strconv.FormatFloat(it.Price, 'f', -1, 64),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.edit = &form
	return nil
}

// EditForm returns the open edit form, if any.
func (a *App) EditForm() (ItemForm, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.edit == nil {
		return ItemForm{}, false
	}
	return *a.edit, true
}

// CloseEdit dismisses the edit form without saving.
func (a *App) CloseEdit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.edit = nil
}

// UpdateItem submits the edit form. On failure the form stays open.
func (a *App) UpdateItem(ctx context.Context, form ItemForm) error {
	if err := a.requireAuth(); err != nil {
		a.flashError(PageItems, err)
		return err
	}
	in, err := form.input()
	if err != nil {
		a.flashError(PageItems, err)
		return err
	}
	if _, err := a.api.UpdateItem(ctx, form.ID, in); err != nil {
		a.flashError(PageItems, err)
		return err
	}
	a.CloseEdit()
	a.flash(PageItems, KindSuccess, MsgItemSaved)
	a.LoadItems(ctx)
	return nil
}

// DeleteItem removes an item. Asking for confirmation is the renderer's job.
func (a *App) DeleteItem(ctx context.Context, id string) error {
	if err := a.requireAuth(); err != nil {
		a.flashError(PageItems, err)
		return err
	}
	if err := a.api.DeleteItem(ctx, id); err != nil {
		a.flashError(PageItems, err)
		return err
	}
	a.flash(PageItems, KindSuccess, MsgItemGone)
	a.LoadItems(ctx)
	return nil
}

// Logout clears the session and the cached views, then shows login.
func (a *App) Logout(ctx context.Context) error {
	err := a.sess.Clear(ctx)
	if err != nil {
		a.logger.Warn("clear session", "error", err)
	}

	a.mu.Lock()
	a.stats, a.statsLoaded = model.Stats{}, false
	a.users, a.items, a.edit = nil, nil, nil
	a.mu.Unlock()

	a.Navigate(ctx, PageLogin)
	return err
}
