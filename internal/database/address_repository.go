package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cedra_storefront/internal/models"

	"github.com/gocql/gocql"
)

// AddressRepository est le carnet d'adresses de livraison (keyspace users)
type AddressRepository struct {
	session *gocql.Session
}

func NewAddressRepository(session *gocql.Session) *AddressRepository {
	return &AddressRepository{session: session}
}

// ForUser retourne le carnet d'un utilisateur
func (r *AddressRepository) ForUser(userID string) *UserAddressBook {
	return &UserAddressBook{session: r.session, userID: userID}
}

type UserAddressBook struct {
	session *gocql.Session
	userID  string
}

func (b *UserAddressBook) List(ctx context.Context) ([]models.ShippingAddress, error) {
	iter := b.session.Query(stmtListAddresses, b.userID).WithContext(ctx).Iter()

	var (
		id                                                gocql.UUID
		title, name, mobile, address, cityState, postcode string
		createdAt                                         time.Time
	)
	results := []models.ShippingAddress{}
	for iter.Scan(&id, &title, &name, &mobile, &address, &cityState, &postcode, &createdAt) {
		results = append(results, models.ShippingAddress{
			ID:         id.String(),
			UserID:     b.userID,
			Title:      title,
			Name:       name,
			Mobile:     mobile,
			Address:    address,
			CityState:  cityState,
			PostalCode: postcode,
			CreatedAt:  createdAt,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].CreatedAt.Before(results[j].CreatedAt) })
	return results, nil
}

// Save insère l'adresse ; une adresse n'est jamais mise à jour
func (b *UserAddressBook) Save(ctx context.Context, a models.ShippingAddress) (models.ShippingAddress, error) {
	id, err := gocql.ParseUUID(a.ID)
	if err != nil {
		return models.ShippingAddress{}, fmt.Errorf("identifiant adresse invalide %q: %w", a.ID, err)
	}
	a.UserID = b.userID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	err = b.session.Query(stmtInsertAddress,
		b.userID, id, a.Title, a.Name, a.Mobile, a.Address, a.CityState, a.PostalCode, a.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return models.ShippingAddress{}, err
	}
	return a, nil
}
