package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
)

const collectionProjects = "projects"

type ProjectRepository struct {
	col *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{col: db.Collection(collectionProjects)}
}

type projectDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	ClientID   string             `bson:"client_id"`
	ProposalID string             `bson:"proposal_id,omitempty"`
	Name       string             `bson:"name"`
	Budget     float64            `bson:"budget"`
	Status     string             `bson:"status"`
	StartDate  *time.Time         `bson:"start_date,omitempty"`
	EndDate    *time.Time         `bson:"end_date,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (d projectDoc) toDomain() *domain.Project {
	return &domain.Project{
		ID:         d.ID.Hex(),
		UserID:     d.UserID,
		ClientID:   d.ClientID,
		ProposalID: d.ProposalID,
		Name:       d.Name,
		Budget:     d.Budget,
		Status:     domain.ProjectStatus(d.Status),
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
		CreatedAt:  d.CreatedAt,
	}
}

// Create inserts a new project document and returns it with the server id.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := projectDoc{
		UserID:     p.UserID,
		ClientID:   p.ClientID,
		ProposalID: p.ProposalID,
		Name:       p.Name,
		Budget:     p.Budget,
		Status:     string(p.Status),
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
		CreatedAt:  p.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// FindByID retrieves a project by id. When userID is non-empty, the query is
// additionally filtered by user_id (ownership scoping).
func (r *ProjectRepository) FindByID(ctx context.Context, id, userID string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}

	filter := bson.M{"_id": oid}
	if userID != "" {
		filter["user_id"] = userID
	}

	var doc projectDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByProposalID retrieves the project spawned by the given proposal.
func (r *ProjectRepository) FindByProposalID(ctx context.Context, proposalID string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc projectDoc
	if err := r.col.FindOne(ctx, bson.M{"proposal_id": proposalID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project by proposal: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateStatus applies a status change; end_date is stamped when the project
// reaches a terminal status.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrProjectNotFound
	}

	set := bson.M{"status": string(status)}
	if status == domain.ProjectCompleted || status == domain.ProjectCancelled {
		set["end_date"] = at
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update project status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Count(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"user_id": userID})
}

// EnsureIndexes creates necessary indexes on the projects collection.
func (r *ProjectRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "proposal_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
