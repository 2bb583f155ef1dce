package mongo

import (
	"context"
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

const usersCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Email         string             `bson:"email"`
	Username      string             `bson:"username"`
	PasswordHash  string             `bson:"password_hash"`
	Role          string             `bson:"role"`
	EmailVerified bool               `bson:"email_verified"`
	Preferences   domain.Preferences `bson:"preferences"`
	Points        int                `bson:"points"`
	Streak        int                `bson:"streak"`
	VerifyToken   string             `bson:"verify_token,omitempty"`
	ResetToken    string             `bson:"reset_token,omitempty"`
	ResetTokenExp *time.Time         `bson:"reset_token_exp,omitempty"`
	LastActive    *time.Time         `bson:"last_active,omitempty"`
	LastLoginDate *time.Time         `bson:"last_login_date,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (m *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:            m.ID.Hex(),
		Email:         m.Email,
		Username:      m.Username,
		PasswordHash:  m.PasswordHash,
		Role:          domain.Role(m.Role),
		EmailVerified: m.EmailVerified,
		Preferences:   m.Preferences,
		Points:        m.Points,
		Streak:        m.Streak,
		VerifyToken:   m.VerifyToken,
		ResetToken:    m.ResetToken,
		ResetTokenExp: m.ResetTokenExp,
		LastActive:    m.LastActive,
		LastLoginDate: m.LastLoginDate,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		Email:         user.Email,
		Username:      user.Username,
		PasswordHash:  user.PasswordHash,
		Role:          string(user.Role),
		EmailVerified: user.EmailVerified,
		Preferences:   user.Preferences,
		VerifyToken:   user.VerifyToken,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = insertedHex(res)
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// updateDoc translates upd into $set/$unset. Empty token strings unset the field.
func updateDoc(upd domain.UserUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	unset := bson.M{}

	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.Role != nil {
		set["role"] = string(*upd.Role)
	}
	if upd.EmailVerified != nil {
		set["email_verified"] = *upd.EmailVerified
	}
	if upd.Preferences != nil {
		set["preferences"] = *upd.Preferences
	}
	if upd.VerifyToken != nil {
		if *upd.VerifyToken == "" {
			unset["verify_token"] = ""
		} else {
			set["verify_token"] = *upd.VerifyToken
		}
	}
	if upd.ResetToken != nil {
		if *upd.ResetToken == "" {
			unset["reset_token"] = ""
			unset["reset_token_exp"] = ""
		} else {
			set["reset_token"] = *upd.ResetToken
		}
	}
	if upd.ResetTokenExp != nil {
		set["reset_token_exp"] = *upd.ResetTokenExp
	}
	if upd.LastLoginDate != nil {
		set["last_login_date"] = *upd.LastLoginDate
	}
	if upd.LastActive != nil {
		set["last_active"] = *upd.LastActive
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}

func (r *UserRepository) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	oid, err := objectID(id, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, updateDoc(upd, time.Now().UTC()), domain.ErrUserNotFound)
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, notFound error) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mu mongoUser
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mu); err != nil {
		if isNoDocuments(err) {
			return nil, notFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) UpdateLastActive(ctx context.Context, id string, at time.Time) error {
	oid, err := objectID(id, domain.ErrUserNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"last_active": at}}); err != nil {
		return fmt.Errorf("update last active: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrUserNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Search(ctx context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Query != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter["$or"] = bson.A{bson.M{"email": rx}, bson.M{"username": rx}}
	}
	if f.Role != "" {
		filter["role"] = string(f.Role)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page := f.PageRequest.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}
	out, err := decodeUsers(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *UserRepository) ConsumeVerifyToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	if tokenHash == "" {
		return nil, domain.ErrInvalidVerifyToken
	}
	update := bson.M{
		"$set":   bson.M{"email_verified": true, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"verify_token": ""},
	}
	return r.findOneAndUpdate(ctx, bson.M{"verify_token": tokenHash}, update, domain.ErrInvalidVerifyToken)
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*domain.User, error) {
	if tokenHash == "" {
		return nil, domain.ErrInvalidResetToken
	}
	filter := bson.M{"reset_token": tokenHash, "reset_token_exp": bson.M{"$gt": now}}
	update := bson.M{
		"$set":   bson.M{"password_hash": passwordHash, "updated_at": now},
		"$unset": bson.M{"reset_token": "", "reset_token_exp": ""},
	}
	return r.findOneAndUpdate(ctx, filter, update, domain.ErrInvalidResetToken)
}

func (r *UserRepository) DigestRecipients(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"email_verified": true, "preferences.notifications.email": true})
	if err != nil {
		return nil, fmt.Errorf("find digest recipients: %w", err)
	}
	return decodeUsers(ctx, cur)
}

func decodeUsers(ctx context.Context, cur *mongo.Cursor) ([]*domain.User, error) {
	defer cur.Close(ctx)
	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]*domain.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "verify_token", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "reset_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}
