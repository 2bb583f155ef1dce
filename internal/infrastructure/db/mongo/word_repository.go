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

const wordsCollection = "words"

type WordRepository struct {
	coll *mongo.Collection
}

func NewWordRepository(db *mongo.Database) *WordRepository {
	return &WordRepository{coll: db.Collection(wordsCollection)}
}

type mongoWord struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Original     string               `bson:"original"`
	LanguageCode string               `bson:"language_code"`
	Difficulty   int                  `bson:"difficulty"`
	Approved     bool                 `bson:"approved"`
	AddedByID    string               `bson:"added_by_id"`
	Translations []domain.Translation `bson:"translations"`
	Tags         []string             `bson:"tags"`
	Examples     []string             `bson:"examples,omitempty"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
	Version      int64                `bson:"version"`
}

func toMongoWord(w *domain.Word) mongoWord {
	return mongoWord{
		Original:     w.Original,
		LanguageCode: w.LanguageCode,
		Difficulty:   w.Difficulty,
		Approved:     w.Approved,
		AddedByID:    w.AddedByID,
		Translations: w.Translations,
		Tags:         w.Tags,
		Examples:     w.Examples,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
		Version:      w.Version,
	}
}

func (m *mongoWord) toDomain() *domain.Word {
	w := &domain.Word{
		ID:           m.ID.Hex(),
		Original:     m.Original,
		LanguageCode: m.LanguageCode,
		Difficulty:   m.Difficulty,
		Approved:     m.Approved,
		AddedByID:    m.AddedByID,
		Translations: m.Translations,
		Tags:         m.Tags,
		Examples:     m.Examples,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Version:      m.Version,
	}
	if w.Translations == nil {
		w.Translations = []domain.Translation{}
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	return w
}

func (r *WordRepository) Create(ctx context.Context, w *domain.Word) (*domain.Word, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoWord(w))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrWordExists
		}
		return nil, fmt.Errorf("insert word: %w", err)
	}
	created := *w
	created.ID = insertedHex(res)
	return &created, nil
}

func (r *WordRepository) FindByID(ctx context.Context, id string) (*domain.Word, error) {
	oid, err := objectID(id, domain.ErrWordNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mw mongoWord
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mw); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrWordNotFound
		}
		return nil, fmt.Errorf("find word: %w", err)
	}
	return mw.toDomain(), nil
}

// Replace stores w if the stored copy is still at w.Version, then advances
// w.Version.
func (r *WordRepository) Replace(ctx context.Context, w *domain.Word) error {
	oid, err := objectID(w.ID, domain.ErrWordNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoWord(w)
	doc.Version = w.Version + 1
	if err := replaceVersioned(ctx, r.coll, oid, w.Version, doc, domain.ErrWordNotFound); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrWordExists
		}
		var de *domain.Error
		if errors.As(err, &de) {
			return err
		}
		return fmt.Errorf("replace word: %w", err)
	}
	w.Version = doc.Version
	return nil
}

func (r *WordRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrWordNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete word: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrWordNotFound
	}
	return nil
}

func wordFilter(f ports.WordFilter) bson.M {
	filter := bson.M{}
	if !f.IncludeUnapproved {
		filter["approved"] = true
	}
	if f.LanguageCode != "" {
		filter["language_code"] = f.LanguageCode
	}
	if f.Difficulty > 0 {
		filter["difficulty"] = f.Difficulty
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if f.Query != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter["$or"] = bson.A{bson.M{"original": rx}, bson.M{"translations.text": rx}}
	}
	return filter
}

func (r *WordRepository) Search(ctx context.Context, f ports.WordFilter) ([]*domain.Word, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := wordFilter(f)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count words: %w", err)
	}

	page := f.PageRequest.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find words: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoWord
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode words: %w", err)
	}
	out := make([]*domain.Word, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

func (r *WordRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "original", Value: 1}, {Key: "language_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "approved", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("word indexes: %w", err)
	}
	return nil
}
