// File: database/repository/request/requestMongoCrud.go
package requestRepo

import (
	"context"
	"fmt"
	"time"

	"bookline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new pending request document.
func (r *MongoRequestRepo) Create(ctx context.Context, req *models.BookingRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to create booking request: %w", err)
	}
	return nil
}

// GetByID retrieves a request by its unique ID.
func (r *MongoRequestRepo) GetByID(ctx context.Context, id string) (*models.BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.BookingRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking request %s: %w", id, err)
	}
	return &req, nil
}

// ListByParty retrieves requests for one side, newest first.
func (r *MongoRequestRepo) ListByParty(ctx context.Context, role PartyRole, partyID string, includeHidden bool) ([]models.BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	field := "requester_id"
	if role == RoleProvider {
		field = "provider_id"
	}
	filter := bson.M{field: partyID}
	if role == RoleProvider && !includeHidden {
		filter["hidden"] = bson.M{"$ne": true}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking requests for %s %s: %w", role, partyID, err)
	}
	defer cursor.Close(ctx)

	var reqs []models.BookingRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("failed to decode booking requests: %w", err)
	}
	return reqs, nil
}

// Transition performs the compare-and-set status update. The filter matches on
// both id and the expected source status, so a concurrent transition that won
// the race leaves nothing for this update to match.
func (r *MongoRequestRepo) Transition(ctx context.Context, id string, from, to models.RequestStatus, set map[string]any) (*models.BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"status": to, "updated_at": time.Now()}
	for k, v := range set {
		update[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.BookingRequest
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"id": id, "status": from},
		bson.M{"$set": update},
		opts,
	).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to transition booking request %s: %w", id, err)
	}

	// Distinguish a missing request from a lost race.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStaleStatus
}

// AcceptWithAppointment flips a pending request to accepted and inserts the
// appointment inside one Mongo transaction.
func (r *MongoRequestRepo) AcceptWithAppointment(ctx context.Context, id string, appt *models.Appointment) (*models.BookingRequest, error) {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	var updated models.BookingRequest
	txnFn := func(sc mongo.SessionContext) error {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err := r.coll.FindOneAndUpdate(sc,
			bson.M{"id": id, "status": models.RequestStatusPending},
			bson.M{"$set": bson.M{"status": models.RequestStatusAccepted, "updated_at": now}},
			opts,
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			if _, getErr := r.GetByID(sc, id); getErr != nil {
				return getErr
			}
			return ErrStaleStatus
		}
		if err != nil {
			return fmt.Errorf("accept update failed: %w", err)
		}

		if _, err := r.apptColl.InsertOne(sc, appt); err != nil {
			return fmt.Errorf("insert appointment failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrStaleStatus || err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("accept transaction failed: %w", err)
	}

	return &updated, nil
}

// SetHidden flips the provider-side soft-hide flag.
func (r *MongoRequestRepo) SetHidden(ctx context.Context, id string, hidden bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"hidden": hidden, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update hidden flag for request %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
