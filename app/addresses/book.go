package addresses

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/app/notify"
	"github.com/mytheresa/storefront/internal/api"
	"github.com/mytheresa/storefront/internal/validation"
	"github.com/mytheresa/storefront/models"
)

var ErrNotFound = errors.New("address not found")

// AddressProvider is the user-scoped address API.
type AddressProvider interface {
	ListAddresses(ctx context.Context) ([]models.Address, error)
	CreateAddress(ctx context.Context, a models.Address) (*models.Address, error)
	UpdateAddress(ctx context.Context, a models.Address) (*models.Address, error)
	DeleteAddress(ctx context.Context, id primitive.ObjectID) error
}

// Book is the signed-in user's address book.
type Book struct {
	repo    AddressProvider
	notices notify.Notifier
}

func NewBook(r AddressProvider, n notify.Notifier) *Book {
	return &Book{repo: r, notices: n}
}

func (b *Book) List(ctx context.Context) ([]models.Address, error) {
	list, err := b.repo.ListAddresses(ctx)
	if err != nil {
		b.notices.Notify(notify.LevelError, api.Message(err, "Failed to load addresses"))
		return nil, err
	}
	return list, nil
}

// Find returns the stored address with id.
func (b *Book) Find(ctx context.Context, id primitive.ObjectID) (*models.Address, error) {
	list, err := b.repo.ListAddresses(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, ErrNotFound
}

func (b *Book) Create(ctx context.Context, a models.Address) (*models.Address, error) {
	a.ID = primitive.NilObjectID
	if err := validation.Struct(a); err != nil {
		b.notices.Notify(notify.LevelWarning, err.Error())
		return nil, err
	}
	created, err := b.repo.CreateAddress(ctx, a)
	if err != nil {
		b.notices.Notify(notify.LevelError, api.Message(err, "Failed to add address"))
		return nil, err
	}
	b.notices.Notify(notify.LevelSuccess, "Address added")
	return created, nil
}

func (b *Book) Update(ctx context.Context, a models.Address) (*models.Address, error) {
	if err := validation.Struct(a); err != nil {
		b.notices.Notify(notify.LevelWarning, err.Error())
		return nil, err
	}
	updated, err := b.repo.UpdateAddress(ctx, a)
	if err != nil {
		b.notices.Notify(notify.LevelError, api.Message(err, "Failed to update address"))
		return nil, err
	}
	b.notices.Notify(notify.LevelSuccess, "Address updated")
	return updated, nil
}

func (b *Book) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := b.repo.DeleteAddress(ctx, id); err != nil {
		b.notices.Notify(notify.LevelError, api.Message(err, "Failed to delete address"))
		return err
	}
	b.notices.Notify(notify.LevelSuccess, "Address deleted")
	return nil
}
