package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
)

const storiesCollection = "stories"

type StoryRepository struct {
	coll *mongo.Collection
}

func NewStoryRepository(db *mongo.Database) *StoryRepository {
	return &StoryRepository{coll: db.Collection(storiesCollection)}
}

// mongoStory keeps a denormalised rating average so results can be sorted by it.
type mongoStory struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Title            string             `bson:"title"`
	Content          string             `bson:"content"`
	LanguageCode     string             `bson:"language_code"`
	Type             string             `bson:"type"`
	Status           string             `bson:"status"`
	ModerationReason string             `bson:"moderation_reason,omitempty"`
	UserID           string             `bson:"user_id"`
	Tags             []string           `bson:"tags"`
	Comments         []domain.Comment   `bson:"comments"`
	Ratings          []domain.Rating    `bson:"ratings"`
	RatingAvg        float64            `bson:"rating_avg"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
	Version          int64              `bson:"version"`
}

func toMongoStory(s *domain.Story) mongoStory {
	doc := mongoStory{
		Title:            s.Title,
		Content:          s.Content,
		LanguageCode:     s.LanguageCode,
		Type:             string(s.Type),
		Status:           string(s.Status),
		ModerationReason: s.ModerationReason,
		UserID:           s.UserID,
		Tags:             s.Tags,
		Comments:         s.Comments,
		Ratings:          s.Ratings,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
		Version:          s.Version,
	}
	if avg := s.AverageRating(); avg != nil {
		doc.RatingAvg = *avg
	}
	return doc
}

func (m *mongoStory) toDomain() *domain.Story {
	s := &domain.Story{
		ID:               m.ID.Hex(),
		Title:            m.Title,
		Content:          m.Content,
		LanguageCode:     m.LanguageCode,
		Type:             domain.StoryType(m.Type),
		Status:           domain.StoryStatus(m.Status),
		ModerationReason: m.ModerationReason,
		UserID:           m.UserID,
		Tags:             m.Tags,
		Comments:         m.Comments,
		Ratings:          m.Ratings,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		Version:          m.Version,
	}
	if s.Comments == nil {
		s.Comments = []domain.Comment{}
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return s
}

func (r *StoryRepository) Create(ctx context.Context, s *domain.Story) (*domain.Story, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoStory(s))
	if err != nil {
		return nil, fmt.Errorf("insert story: %w", err)
	}
	created := *s
	created.ID = insertedHex(res)
	return &created, nil
}

func (r *StoryRepository) FindByID(ctx context.Context, id string) (*domain.Story, error) {
	oid, err := objectID(id, domain.ErrStoryNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ms mongoStory
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&ms); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrStoryNotFound
		}
		return nil, fmt.Errorf("find story: %w", err)
	}
	return ms.toDomain(), nil
}

// Replace stores s if the stored copy is still at s.Version, then advances
// s.Version.
func (r *StoryRepository) Replace(ctx context.Context, s *domain.Story) error {
	oid, err := objectID(s.ID, domain.ErrStoryNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoStory(s)
	doc.Version = s.Version + 1
	if err := replaceVersioned(ctx, r.coll, oid, s.Version, doc, domain.ErrStoryNotFound); err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return err
		}
		return fmt.Errorf("replace story: %w", err)
	}
	s.Version = doc.Version
	return nil
}

func (r *StoryRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrStoryNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrStoryNotFound
	}
	return nil
}

func storyFilter(f ports.StoryFilter) bson.M {
	filter := bson.M{}
	if f.LanguageCode != "" {
		filter["language_code"] = f.LanguageCode
	}
	if f.Type != "" {
		filter["type"] = string(f.Type)
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if f.Query != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter["$or"] = bson.A{bson.M{"title": rx}, bson.M{"content": rx}}
	}
	return filter
}

func storySort(s ports.StorySort) bson.D {
	switch s {
	case ports.SortOldest:
		return bson.D{{Key: "created_at", Value: 1}}
	case ports.SortTitle:
		return bson.D{{Key: "title", Value: 1}}
	case ports.SortRatings:
		return bson.D{{Key: "rating_avg", Value: -1}, {Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (r *StoryRepository) Search(ctx context.Context, f ports.StoryFilter) ([]*domain.Story, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := storyFilter(f)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count stories: %w", err)
	}

	page := f.PageRequest.Normalize()
	opts := options.Find().
		SetSort(storySort(f.Sort)).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find stories: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoStory
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode stories: %w", err)
	}
	out := make([]*domain.Story, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

func (r *StoryRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "rating_avg", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("story indexes: %w", err)
	}
	return nil
}
