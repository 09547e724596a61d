package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

const collectionProposals = "proposals"

type ProposalRepository struct {
	col *mongo.Collection
}

func NewProposalRepository(db *mongo.Database) *ProposalRepository {
	return &ProposalRepository{col: db.Collection(collectionProposals)}
}

type proposalDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         string             `bson:"user_id"`
	ClientID       string             `bson:"client_id"`
	Title          string             `bson:"title"`
	TotalAmount    float64            `bson:"total_amount"`
	Status         string             `bson:"status"`
	MagicLinkToken string             `bson:"magic_link_token"`
	SentAt         *time.Time         `bson:"sent_at,omitempty"`
	AcceptedAt     *time.Time         `bson:"accepted_at,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func (d proposalDoc) toDomain() *domain.Proposal {
	return &domain.Proposal{
		ID:             d.ID.Hex(),
		UserID:         d.UserID,
		ClientID:       d.ClientID,
		Title:          d.Title,
		TotalAmount:    d.TotalAmount,
		Status:         domain.ProposalStatus(d.Status),
		MagicLinkToken: d.MagicLinkToken,
		SentAt:         d.SentAt,
		AcceptedAt:     d.AcceptedAt,
		CreatedAt:      d.CreatedAt,
	}
}

// Create inserts a new proposal document. A duplicate magic link token (the
// unique index backstop) surfaces as an error.
func (r *ProposalRepository) Create(ctx context.Context, p *domain.Proposal) (*domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := proposalDoc{
		UserID:         p.UserID,
		ClientID:       p.ClientID,
		Title:          p.Title,
		TotalAmount:    p.TotalAmount,
		Status:         string(p.Status),
		MagicLinkToken: p.MagicLinkToken,
		CreatedAt:      p.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert proposal: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// FindByID retrieves a proposal by id. When userID is non-empty, the query is
// additionally filtered by user_id (ownership scoping).
func (r *ProposalRepository) FindByID(ctx context.Context, id, userID string) (*domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProposalNotFound
	}

	filter := bson.M{"_id": oid}
	if userID != "" {
		filter["user_id"] = userID
	}

	var doc proposalDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, fmt.Errorf("find proposal: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByToken retrieves a proposal by magic link token. Deliberately unscoped:
// the token is the credential on the public share surface.
func (r *ProposalRepository) FindByToken(ctx context.Context, token string) (*domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc proposalDoc
	if err := r.col.FindOne(ctx, bson.M{"magic_link_token": token}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, fmt.Errorf("find proposal by token: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateStatus applies a status change plus the matching lifecycle timestamp.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id string, status domain.ProposalStatus, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrProposalNotFound
	}

	set := bson.M{"status": string(status)}
	switch status {
	case domain.ProposalSent:
		set["sent_at"] = at
	case domain.ProposalAccepted:
		set["accepted_at"] = at
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update proposal status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProposalNotFound
	}
	return nil
}

// List returns a page of proposals matching filter and the total count,
// newest first.
func (r *ProposalRepository) List(ctx context.Context, filter ports.ListProposalsFilter) ([]*domain.Proposal, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"user_id": filter.UserID}
	if filter.ClientID != "" {
		query["client_id"] = filter.ClientID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		query["title"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	dateRange := bson.M{}
	if !filter.DateFrom.IsZero() {
		dateRange["$gte"] = filter.DateFrom
	}
	if !filter.DateTo.IsZero() {
		dateRange["$lte"] = filter.DateTo
	}
	if len(dateRange) > 0 {
		query["created_at"] = dateRange
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count proposals: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list proposals: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Proposal
	for cur.Next(ctx) {
		var doc proposalDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode proposal: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	return out, total, cur.Err()
}

func (r *ProposalRepository) Count(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"user_id": userID})
}

// TotalPipeline sums total_amount over all proposals owned by userID.
func (r *ProposalRepository) TotalPipeline(ctx context.Context, userID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total_amount"}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("pipeline total: %w", err)
	}
	defer cur.Close(ctx)

	var row struct {
		Total float64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, fmt.Errorf("decode pipeline total: %w", err)
		}
	}
	return row.Total, cur.Err()
}

// EnsureIndexes creates necessary indexes on the proposals collection. The
// magic link token index is unique: it is the last line of defence for token
// uniqueness when Redis reservation is unavailable.
func (r *ProposalRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "magic_link_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
