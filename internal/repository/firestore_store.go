package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// DefaultCollection holds items when no collection is configured
const DefaultCollection = "inventory"

// itemDoc is the Firestore document shape of an item. Price is kept as a
// decimal string so cents survive the round trip.
type itemDoc struct {
	Name         string    `firestore:"name"`
	NameKey      string    `firestore:"nameKey"`
	Stock        int       `firestore:"stock"`
	ReorderLevel int       `firestore:"reorderLevel"`
	Price        string    `firestore:"price"`
	Category     string    `firestore:"category"`
	Supplier     string    `firestore:"supplier"`
	ImageURL     string    `firestore:"imageUrl"`
	Version      int64     `firestore:"version"`
	LastUpdated  time.Time `firestore:"lastUpdated"`
}

// nameDoc reserves a folded name for one item id
type nameDoc struct {
	ItemID string `firestore:"itemId"`
}

// NewFirestoreClient opens a Firestore client through the Firebase app.
// credentialsFile may be empty to use application default credentials.
func NewFirestoreClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	log.Info().Str("project_id", projectID).Msg("Connected to Firestore")
	return client, nil
}

// FirestoreStore persists items in Firestore. Name uniqueness is enforced by
// a reservation document per folded name, written in the same transaction.
type FirestoreStore struct {
	client *firestore.Client
	items  string
	names  string
	now    func() time.Time
}

// NewFirestoreStore creates a store over collection and its "<collection>_names" index
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{
		client: client,
		items:  collection,
		names:  collection + "_names",
		now:    time.Now,
	}
}

// List retrieves all items ordered by name
func (s *FirestoreStore) List(ctx context.Context) ([]models.InventoryItem, error) {
	iter := s.client.Collection(s.items).OrderBy("nameKey", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	items := []models.InventoryItem{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to list items")
			return nil, fmt.Errorf("failed to list items: %w", err)
		}
		item, err := fromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// Get retrieves an item by id
func (s *FirestoreStore) Get(ctx context.Context, id string) (*models.InventoryItem, error) {
	snap, err := s.client.Collection(s.items).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.NewNotFoundError("item", id)
		}
		log.Error().Err(err).Str("item_id", id).Msg("Failed to get item")
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return fromSnapshot(snap)
}

// FindByName retrieves an item by case-insensitive name
func (s *FirestoreStore) FindByName(ctx context.Context, name string) (*models.InventoryItem, error) {
	key := models.FoldName(name)
	if key == "" {
		return nil, nil
	}

	iter := s.client.Collection(s.items).Where("nameKey", "==", key).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("Failed to find item by name")
		return nil, fmt.Errorf("failed to find item by name: %w", err)
	}
	return fromSnapshot(snap)
}

// Create inserts a new item and reserves its name
func (s *FirestoreStore) Create(ctx context.Context, fields models.NewItem) (*models.InventoryItem, error) {
	id := uuid.New().String()
	doc := itemDoc{
		Name:         fields.Name,
		NameKey:      models.FoldName(fields.Name),
		Stock:        fields.Stock,
		ReorderLevel: fields.ReorderLevel,
		Price:        fields.Price.String(),
		Category:     fields.Category,
		Supplier:     fields.Supplier,
		ImageURL:     fields.ImageURL,
		Version:      1,
		LastUpdated:  s.now().UTC(),
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(s.nameRef(doc.NameKey), nameDoc{ItemID: id}); err != nil {
			return err
		}
		return tx.Create(s.client.Collection(s.items).Doc(id), doc)
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, models.NewConflictError("item", fmt.Sprintf("an item named %q already exists", fields.Name))
		}
		log.Error().Err(err).Str("name", fields.Name).Msg("Failed to create item")
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return doc.toItem(id)
}

// Update applies a partial update, moving the name reservation on rename
func (s *FirestoreStore) Update(ctx context.Context, id string, patch models.ItemPatch) (*models.InventoryItem, error) {
	var updated *models.InventoryItem
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := s.client.Collection(s.items).Doc(id)
		current, err := s.readItem(tx, ref)
		if err != nil {
			return err
		}

		next := *current
		patch.Apply(&next)
		oldKey, newKey := models.FoldName(current.Name), models.FoldName(next.Name)

		if oldKey != newKey {
			owner, err := tx.Get(s.nameRef(newKey))
			if err != nil && status.Code(err) != codes.NotFound {
				return err
			}
			if err == nil && owner.Exists() {
				return models.NewConflictError("item", fmt.Sprintf("an item named %q already exists", next.Name))
			}
		}

		next.Version++
		next.LastUpdated = s.advance(current.LastUpdated)

		if oldKey != newKey {
			if err := tx.Delete(s.nameRef(oldKey)); err != nil {
				return err
			}
			if err := tx.Create(s.nameRef(newKey), nameDoc{ItemID: id}); err != nil {
				return err
			}
		}
		if err := tx.Set(ref, toDoc(&next)); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, s.wrapTxError(err, id, "update item")
	}
	return updated, nil
}

// AdjustStock adds delta to the stock inside a transaction
func (s *FirestoreStore) AdjustStock(ctx context.Context, id string, delta int) (*models.InventoryItem, error) {
	var adjusted *models.InventoryItem
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := s.client.Collection(s.items).Doc(id)
		item, err := s.readItem(tx, ref)
		if err != nil {
			return err
		}

		item.Stock += delta
		item.Version++
		item.LastUpdated = s.advance(item.LastUpdated)

		err = tx.Update(ref, []firestore.Update{
			{Path: "stock", Value: item.Stock},
			{Path: "version", Value: item.Version},
			{Path: "lastUpdated", Value: item.LastUpdated},
		})
		adjusted = item
		return err
	})
	if err != nil {
		return nil, s.wrapTxError(err, id, "adjust stock")
	}
	return adjusted, nil
}

// Delete removes an item and releases its name
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := s.client.Collection(s.items).Doc(id)
		item, err := s.readItem(tx, ref)
		if err != nil {
			return err
		}
		if err := tx.Delete(s.nameRef(models.FoldName(item.Name))); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return s.wrapTxError(err, id, "delete item")
	}
	return nil
}

func (s *FirestoreStore) readItem(tx *firestore.Transaction, ref *firestore.DocumentRef) (*models.InventoryItem, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.NewNotFoundError("item", ref.ID)
		}
		return nil, err
	}
	return fromSnapshot(snap)
}

func (s *FirestoreStore) nameRef(key string) *firestore.DocumentRef {
	return s.client.Collection(s.names).Doc(nameDocID(key))
}

// advance returns a timestamp strictly after prev at Firestore's microsecond precision
func (s *FirestoreStore) advance(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func (s *FirestoreStore) wrapTxError(err error, id, op string) error {
	if models.IsNotFoundError(err) || models.IsConflictError(err) {
		return err
	}
	log.Error().Err(err).Str("item_id", id).Msgf("Failed to %s", op)
	return fmt.Errorf("failed to %s: %w", op, err)
}

// nameDocID escapes a folded name into a valid document id
func nameDocID(key string) string {
	return url.PathEscape(key)
}

func fromSnapshot(snap *firestore.DocumentSnapshot) (*models.InventoryItem, error) {
	var doc itemDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode item %s: %w", snap.Ref.ID, err)
	}
	return doc.toItem(snap.Ref.ID)
}

func (d itemDoc) toItem(id string) (*models.InventoryItem, error) {
	price := decimal.Zero
	if d.Price != "" {
		p, err := decimal.NewFromString(d.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price of item %s: %w", id, err)
		}
		price = p
	}
	return &models.InventoryItem{
		ID:           id,
		Name:         d.Name,
		Stock:        d.Stock,
		ReorderLevel: d.ReorderLevel,
		Price:        price,
		Category:     d.Category,
		Supplier:     d.Supplier,
		ImageURL:     d.ImageURL,
		Version:      d.Version,
		LastUpdated:  d.LastUpdated,
	}, nil
}

func toDoc(item *models.InventoryItem) itemDoc {
	return itemDoc{
		Name:         item.Name,
		NameKey:      models.FoldName(item.Name),
		Stock:        item.Stock,
		ReorderLevel: item.ReorderLevel,
		Price:        item.Price.String(),
		Category:     item.Category,
		Supplier:     item.Supplier,
		ImageURL:     item.ImageURL,
		Version:      item.Version,
		LastUpdated:  item.LastUpdated,
	}
}
