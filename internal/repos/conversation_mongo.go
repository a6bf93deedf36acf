package repos

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "go.mongodb.org/mongo-driver/bson"
    "go.mongodb.org/mongo-driver/mongo"
    "go.mongodb.org/mongo-driver/mongo/options"

    "github.com/slotter-org/batai-backend/internal/logger"
    "github.com/slotter-org/batai-backend/internal/types"
)

const MongoConversationCollection = "chats"

// chatDoc is one conversation with its turns embedded, matching the layout
// the web client has always written ("messages", camelCase timestamps).
type chatDoc struct {
    ID          string          `bson:"_id"`
    UserID      string          `bson:"userId"`
    UserEmail   string          `bson:"userEmail"`
    Title       string          `bson:"title"`
    Messages    []types.Turn    `bson:"messages"`
    CreatedAt   time.Time       `bson:"createdAt"`
    UpdatedAt   time.Time       `bson:"updatedAt"`
}

func (d *chatDoc) toConversation() (*types.Conversation, error) {
    id, err := uuid.Parse(d.ID)
    if err != nil {
        // Chats written before ids became uuids are not migrated; they read as missing.
        return nil, fmt.Errorf("%w: stored chat has non-uuid id %q", ErrConversationNotFound, d.ID)
    }
    turns := d.Messages
    if turns == nil {
        turns = []types.Turn{}
    }
    return &types.Conversation{
        ID:         id,
        OwnerEmail: d.UserEmail,
        UserID:     d.UserID,
        Title:      d.Title,
        Turns:      turns,
        CreatedAt:  d.CreatedAt,
        UpdatedAt:  d.UpdatedAt,
    }, nil
}

type mongoConversationRepo struct {
    coll    *mongo.Collection
    log     *logger.Logger
}

func NewMongoConversationRepo(db *mongo.Database, baseLog *logger.Logger) ConversationRepo {
    return &mongoConversationRepo{
        coll:   db.Collection(MongoConversationCollection),
        log:    baseLog.With("repo", "ConversationRepo", "driver", "mongo"),
    }
}

// EnsureMongoIndexes creates the owner/recency index List relies on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
    _, err := db.Collection(MongoConversationCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
        Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "updatedAt", Value: -1}},
    })
    if err != nil {
        return fmt.Errorf("failed creating chats index: %w", err)
    }
    return nil
}

func scopedFilter(id uuid.UUID, owner string) bson.D {
    return bson.D{{Key: "_id", Value: id.String()}, {Key: "userEmail", Value: owner}}
}

func (mr *mongoConversationRepo) List(ctx context.Context, owner string) ([]types.ConversationSummary, error) {
    opts := options.Find().
        SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "createdAt", Value: -1}}).
        SetProjection(bson.D{{Key: "messages", Value: 0}})
    cur, err := mr.coll.Find(ctx, bson.D{{Key: "userEmail", Value: owner}}, opts)
    if err != nil {
        mr.log.Error("failed to list conversations", "error", err)
        return nil, fmt.Errorf("failed listing conversations: %w", err)
    }
    defer cur.Close(ctx)

    summaries := []types.ConversationSummary{}
    for cur.Next(ctx) {
        var doc chatDoc
        if err := cur.Decode(&doc); err != nil {
            return nil, fmt.Errorf("failed decoding chat: %w", err)
        }
        conv, err := doc.toConversation()
        if err != nil {
            mr.log.Warn("skipping unreadable chat", "error", err)
            continue
        }
        summaries = append(summaries, conv.Summary())
    }
    if err := cur.Err(); err != nil {
        return nil, fmt.Errorf("failed iterating chats: %w", err)
    }
    return summaries, nil
}

func (mr *mongoConversationRepo) Create(ctx context.Context, conv *types.Conversation) (*types.Conversation, error) {
    if conv.ID == uuid.Nil {
        conv.ID = uuid.New()
    }
    if conv.CreatedAt.IsZero() {
        conv.CreatedAt = time.Now().UTC()
    }
    conv.UpdatedAt = conv.CreatedAt
    if conv.Turns == nil {
        conv.Turns = []types.Turn{}
    }
    doc := chatDoc{
        ID:         conv.ID.String(),
        UserID:     conv.UserID,
        UserEmail:  conv.OwnerEmail,
        Title:      conv.Title,
        Messages:   conv.Turns,
        CreatedAt:  conv.CreatedAt,
        UpdatedAt:  conv.UpdatedAt,
    }
    if _, err := mr.coll.InsertOne(ctx, doc); err != nil {
        mr.log.Error("failed to create conversation", "error", err)
        return nil, fmt.Errorf("failed creating conversation: %w", err)
    }
    return conv, nil
}

func (mr *mongoConversationRepo) Get(ctx context.Context, id uuid.UUID, owner string) (*types.Conversation, error) {
    var doc chatDoc
    if err := mr.coll.FindOne(ctx, scopedFilter(id, owner)).Decode(&doc); err != nil {
        if errors.Is(err, mongo.ErrNoDocuments) {
            return nil, ErrConversationNotFound
        }
        mr.log.Error("failed to get conversation", "conversationID", id, "error", err)
        return nil, fmt.Errorf("failed getting conversation: %w", err)
    }
    return doc.toConversation()
}

func (mr *mongoConversationRepo) ReplaceTurns(ctx context.Context, id uuid.UUID, owner string, turns []types.Turn, title string) (*types.Conversation, error) {
    if turns == nil {
        turns = []types.Turn{}
    }
    set := bson.D{
        {Key: "messages", Value: turns},
        {Key: "updatedAt", Value: time.Now().UTC()},
    }
    if title != "" {
        set = append(set, bson.E{Key: "title", Value: title})
    }
    opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

    var doc chatDoc
    err := mr.coll.FindOneAndUpdate(ctx, scopedFilter(id, owner), bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
    if err != nil {
        if errors.Is(err, mongo.ErrNoDocuments) {
            return nil, ErrConversationNotFound
        }
        mr.log.Error("failed to replace conversation turns", "conversationID", id, "error", err)
        return nil, fmt.Errorf("failed updating conversation: %w", err)
    }
    return doc.toConversation()
}

func (mr *mongoConversationRepo) Delete(ctx context.Context, id uuid.UUID, owner string) error {
    res, err := mr.coll.DeleteOne(ctx, scopedFilter(id, owner))
    if err != nil {
        mr.log.Error("failed to delete conversation", "conversationID", id, "error", err)
        return fmt.Errorf("failed deleting conversation: %w", err)
    }
    if res.DeletedCount == 0 {
        return ErrConversationNotFound
    }
    return nil
}
