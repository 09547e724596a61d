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
)

const collectionMilestones = "payment_milestones"

type MilestoneRepository struct {
	col *mongo.Collection
}

func NewMilestoneRepository(db *mongo.Database) *MilestoneRepository {
	return &MilestoneRepository{col: db.Collection(collectionMilestones)}
}

type milestoneDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ProjectID   string             `bson:"project_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Amount      float64            `bson:"amount"`
	DueDate     *time.Time         `bson:"due_date,omitempty"`
	Status      string             `bson:"status"`
	PaidAt      *time.Time         `bson:"paid_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d milestoneDoc) toDomain() *domain.PaymentMilestone {
	return &domain.PaymentMilestone{
		ID:          d.ID.Hex(),
		ProjectID:   d.ProjectID,
		Title:       d.Title,
		Description: d.Description,
		Amount:      d.Amount,
		DueDate:     d.DueDate,
		Status:      domain.MilestoneStatus(d.Status),
		PaidAt:      d.PaidAt,
		CreatedAt:   d.CreatedAt,
	}
}

// CreateMany inserts the full schedule for a project as an ordered batch, so
// document ids preserve schedule order.
func (r *MilestoneRepository) CreateMany(ctx context.Context, milestones []*domain.PaymentMilestone) error {
	if len(milestones) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]interface{}, 0, len(milestones))
	for _, m := range milestones {
		docs = append(docs, milestoneDoc{
			ProjectID:   m.ProjectID,
			Title:       m.Title,
			Description: m.Description,
			Amount:      m.Amount,
			DueDate:     m.DueDate,
			Status:      string(m.Status),
			CreatedAt:   m.CreatedAt,
		})
	}

	if _, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("insert milestones: %w", err)
	}
	return nil
}

func (r *MilestoneRepository) FindByID(ctx context.Context, id string) (*domain.PaymentMilestone, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMilestoneNotFound
	}

	var doc milestoneDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("find milestone: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByProject returns a project's milestones in schedule order. ObjectIDs
// are monotonic within the ordered insert, so sorting by _id reproduces the
// insertion order.
func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.PaymentMilestone, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.PaymentMilestone
	for cur.Next(ctx) {
		var doc milestoneDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode milestone: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

// MarkPaid sets status=paid and paid_at on a milestone.
func (r *MilestoneRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrMilestoneNotFound
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"status":  string(domain.MilestonePaid),
		"paid_at": paidAt,
	}})
	if err != nil {
		return fmt.Errorf("mark milestone paid: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrMilestoneNotFound
	}
	return nil
}

// MarkOverdue flips pending milestones due before the cutoff to overdue.
func (r *MilestoneRepository) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx,
		bson.M{
			"status":   string(domain.MilestonePending),
			"due_date": bson.M{"$lt": before},
		},
		bson.M{"$set": bson.M{"status": string(domain.MilestoneOverdue)}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark milestones overdue: %w", err)
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates necessary indexes on the payment_milestones collection.
func (r *MilestoneRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "due_date", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
