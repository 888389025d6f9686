package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/pitch-backend/internal/errs"
	"github.com/GregMSThompson/pitch-backend/internal/models"
)

type deckStore struct {
	client   *firestore.Client
	clockNow func() time.Time
}

func NewDeckStore(client *firestore.Client) *deckStore {
	return &deckStore{client: client, clockNow: time.Now}
}

func (s *deckStore) decksCollection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("decks")
}

// ReplaceDeck makes rec the user's only deck. Previous decks are removed in
// the same transaction, so readers see either the old deck or the new one.
func (s *deckStore) ReplaceDeck(ctx context.Context, uid string, rec models.Deck) error {
	col := s.decksCollection(uid)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(col).GetAll()
		if err != nil {
			return err
		}
		for _, doc := range existing {
			if doc.Ref.ID == rec.ID {
				continue
			}
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		return tx.Set(col.Doc(rec.ID), rec)
	})
	if err != nil {
		return errs.NewDatabaseError("update", "failed to store deck", err)
	}
	return nil
}

func (s *deckStore) GetDeck(ctx context.Context, uid, deckID string) (*models.Deck, error) {
	doc, err := s.decksCollection(uid).Doc(deckID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NewNotFoundError("deck not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to read deck", err)
	}

	var rec models.Deck
	if err := doc.DataTo(&rec); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse deck data", err)
	}
	if rec.Expired(s.clockNow()) {
		return nil, errs.NewNotFoundError("deck not found")
	}
	rec.ID = doc.Ref.ID
	return &rec, nil
}

// LatestDeck returns the user's current deck.
func (s *deckStore) LatestDeck(ctx context.Context, uid string) (*models.Deck, error) {
	iter := s.decksCollection(uid).OrderBy("createdAt", firestore.Desc).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errs.NewNotFoundError("no deck generated yet")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to read deck", err)
	}

	var rec models.Deck
	if err := doc.DataTo(&rec); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse deck data", err)
	}
	if rec.Expired(s.clockNow()) {
		return nil, errs.NewNotFoundError("no deck generated yet")
	}
	rec.ID = doc.Ref.ID
	return &rec, nil
}

func (s *deckStore) DeleteDeck(ctx context.Context, uid, deckID string) error {
	_, err := s.decksCollection(uid).Doc(deckID).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return errs.NewNotFoundError("deck not found")
	}
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete deck", err)
	}
	return nil
}
