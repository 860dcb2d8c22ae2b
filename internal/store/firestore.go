// ABOUTME: Firestore implementation of the Store interface
// ABOUTME: Production backend; equality-filtered queries only, no server-side ordering

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DefaultCollection is the Firestore collection holding chat messages.
const DefaultCollection = "ChatMessages"

// Document field names. These match the records the mobile clients write.
const (
	fieldOwner     = "owner"
	fieldSender    = "sender"
	fieldText      = "text"
	fieldCreatedAt = "createdAt"
)

// FirestoreStore implements the Store interface against Cloud Firestore.
//
// The project has no composite index provisioned for this collection, so
// queries are restricted to a single equality filter on the owner field.
// Ordering is never requested from the server; LoadAll returns documents in
// whatever order the query yields them.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	logger     *slog.Logger
}

// NewFirestoreStore creates a Firestore-backed store for the given project.
// If collection is empty, DefaultCollection is used. If credentialsFile is
// empty, application default credentials apply.
func NewFirestoreStore(ctx context.Context, projectID, collection, credentialsFile string) (*FirestoreStore, error) {
	logger := slog.Default().With("component", "store")

	if collection == "" {
		collection = DefaultCollection
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	logger.Info("Firestore store initialized", "project", projectID, "collection", collection)
	return &FirestoreStore{
		client:     client,
		collection: collection,
		logger:     logger,
	}, nil
}

// LoadAll fetches every document with the given owner
func (s *FirestoreStore) LoadAll(ctx context.Context, owner string) ([]*Record, error) {
	iter := s.client.Collection(s.collection).Where(fieldOwner, "==", owner).Documents(ctx)
	defer iter.Stop()

	var records []*Record
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading messages: %w", err)
		}

		records = append(records, s.docToRecord(doc))
	}

	return records, nil
}

// docToRecord maps a document snapshot to a Record, coercing the
// store-native timestamp representation as it crosses the boundary.
func (s *FirestoreStore) docToRecord(doc *firestore.DocumentSnapshot) *Record {
	data := doc.Data()

	rec := &Record{ID: doc.Ref.ID}
	rec.Owner, _ = data[fieldOwner].(string)
	rec.Sender, _ = data[fieldSender].(string)
	rec.Text, _ = data[fieldText].(string)

	createdAt, err := coerceTimestamp(data[fieldCreatedAt])
	if err != nil {
		// A record with an unreadable timestamp still belongs to the
		// conversation; it sorts to the front with the zero time.
		s.logger.Warn("uncoercible timestamp on message",
			"id", doc.Ref.ID,
			"error", err)
	}
	rec.CreatedAt = createdAt

	return rec
}

// Append creates one document and returns its store-assigned id
func (s *FirestoreStore) Append(ctx context.Context, rec *Record) (string, error) {
	ref, _, err := s.client.Collection(s.collection).Add(ctx, map[string]any{
		fieldOwner:     rec.Owner,
		fieldSender:    rec.Sender,
		fieldText:      rec.Text,
		fieldCreatedAt: rec.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("adding message: %w", err)
	}

	s.logger.Debug("saved message", "id", ref.ID, "owner", rec.Owner, "sender", rec.Sender)
	return ref.ID, nil
}

// DeleteAll removes every document for the owner.
// There is no transactional multi-document delete here: each document is
// deleted independently and failures are aggregated, so a returned error
// can mean partial completion with orphaned documents left behind.
func (s *FirestoreStore) DeleteAll(ctx context.Context, owner string) error {
	iter := s.client.Collection(s.collection).Where(fieldOwner, "==", owner).Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("listing messages for delete: %w", err)
		}
		refs = append(refs, doc.Ref)
	}

	var errs []error
	deleted := 0
	for _, ref := range refs {
		if _, err := ref.Delete(ctx); err != nil {
			errs = append(errs, fmt.Errorf("deleting message %s: %w", ref.ID, err))
			continue
		}
		deleted++
	}

	s.logger.Debug("deleted messages", "owner", owner, "deleted", deleted, "failed", len(errs))
	return errors.Join(errs...)
}

// Close closes the underlying Firestore client
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
